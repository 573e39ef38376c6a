// ABOUTME: Proyectos commands for the panel CLI
// ABOUTME: CRUD plus the administrator approval workflow (pending, approve, reject)

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var proyectos = resource[client.Proyecto, client.ProyectoInput]{
	use:     "proyectos",
	aliases: []string{"proyecto", "p"},
	short:   "Manage municipal projects and their approval",
	noun:    "proyecto",
	estados: "pendiente, aprobado, rechazado, planificacion, en-progreso, completado",

	list:   (*client.Client).ListProyectos,
	get:    (*client.Client).GetProyecto,
	create: (*client.Client).CreateProyecto,
	update: (*client.Client).UpdateProyecto,
	remove: (*client.Client).DeleteProyecto,

	headers: []string{"ID", "Nombre", "Responsable", "Estado", "Progreso", "Presupuesto"},
	row: func(p client.Proyecto) []string {
		return []string{p.ID.String(), p.Nombre, p.Responsable, client.EstadoLabel(p.Estado), percent(p.Progreso), money(p.Presupuesto)}
	},
	detail:   formatProyecto,
	bind:     bindProyecto,
	required: []string{"nombre"},
}

func formatProyecto(p client.Proyecto) string {
	return formatFields(
		"ID", p.ID.String(),
		"Nombre", p.Nombre,
		"Descripción", p.Descripcion,
		"Responsable", p.Responsable,
		"Categoría", p.Categoria,
		"Estado", client.EstadoLabel(p.Estado),
		"Inicio", p.FechaInicio,
		"Fin", p.FechaFin,
		"Progreso", percent(p.Progreso),
		"Presupuesto", money(p.Presupuesto),
	)
}

func bindProyecto(cmd *cobra.Command, in *client.ProyectoInput) {
	f := cmd.Flags()
	f.StringVar(&in.Nombre, "nombre", "", "Project name")
	f.StringVar(&in.Descripcion, "descripcion", "", "Description")
	f.StringVar(&in.Responsable, "responsable", "", "Person in charge")
	f.StringVar(&in.Categoria, "categoria", "", "Category")
	f.StringVar(&in.FechaInicio, "fecha-inicio", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&in.FechaFin, "fecha-fin", "", "End date (YYYY-MM-DD)")
	f.StringVar(&in.Estado, "estado", "", "Estado")
	f.Float64Var(&in.Presupuesto, "presupuesto", 0, "Budget")
	f.Float64Var(&in.Progreso, "progreso", 0, "Progress percentage (0-100)")
}

func init() {
	cmd := proyectos.command()

	var page, size int
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List projects awaiting approval (administrators)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runPending(ctx, w, c, max(page-1, 0), size)
			})
		},
	}
	pending.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	pending.Flags().IntVar(&size, "size", 10, "Records per page")

	approve := &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a pending project (administrators)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runDecision(ctx, w, c, client.ID(args[0]), true)
			})
		},
	}

	reject := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending project (administrators)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runDecision(ctx, w, c, client.ID(args[0]), false)
			})
		},
	}

	cmd.AddCommand(pending, approve, reject)
	rootCmd.AddCommand(cmd)
}

// runPending lists the approval queue and returns exit code
func runPending(ctx context.Context, w io.Writer, c *client.Client, page, size int) int {
	return report(w, c.PendingProyectos(ctx, page, size), func(p client.Page[client.Proyecto]) string {
		if len(p.Content) == 0 {
			return "No hay proyectos pendientes de aprobación."
		}
		return formatPage(p, proyectos.headers, proyectos.row)
	})
}

// runDecision approves or rejects id and returns exit code
func runDecision(ctx context.Context, w io.Writer, c *client.Client, id client.ID, approve bool) int {
	var res client.Response[client.ApprovalResponse]
	var verb string
	if approve {
		res, verb = c.ApproveProyecto(ctx, id), "aprobado"
	} else {
		res, verb = c.RejectProyecto(ctx, id), "rechazado"
	}
	return report(w, res, func(a client.ApprovalResponse) string {
		line := fmt.Sprintf("Proyecto %s %s.", id, verb)
		if a.Nombre != "" {
			line = fmt.Sprintf("Proyecto %s (%s) %s.", id, a.Nombre, verb)
		}
		if a.Message != "" {
			line += " " + a.Message
		}
		return line
	})
}

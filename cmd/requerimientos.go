// ABOUTME: Requerimientos commands for the panel CLI
// ABOUTME: CRUD plus estado transitions through the PATCH endpoint

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/gadibarra/panel-municipal/internal/client"
)

var requerimientos = resource[client.Requerimiento, client.RequerimientoInput]{
	use:     "requerimientos",
	aliases: []string{"requerimiento", "r"},
	short:   "Manage citizen and internal requests",
	noun:    "requerimiento",
	estados: "pendiente, en-progreso, completado, aprobado, rechazado",

	list:   (*client.Client).ListRequerimientos,
	get:    (*client.Client).GetRequerimiento,
	create: (*client.Client).CreateRequerimiento,
	update: (*client.Client).UpdateRequerimiento,
	remove: (*client.Client).DeleteRequerimiento,

	headers: []string{"ID", "Título", "Prioridad", "Estado", "Usuario", "Creado"},
	row: func(r client.Requerimiento) []string {
		return []string{r.ID.String(), r.Titulo, r.Prioridad, client.EstadoLabel(r.Estado), r.Usuario, r.FechaCreacion}
	},
	detail: func(r client.Requerimiento) string {
		return formatFields(
			"ID", r.ID.String(),
			"Título", r.Titulo,
			"Descripción", r.Descripcion,
			"Prioridad", r.Prioridad,
			"Estado", client.EstadoLabel(r.Estado),
			"Usuario", r.Usuario,
			"Creado", r.FechaCreacion,
			"Actualizado", r.FechaActualizacion,
		)
	},
	bind: func(cmd *cobra.Command, in *client.RequerimientoInput) {
		f := cmd.Flags()
		f.StringVar(&in.Titulo, "titulo", "", "Title")
		f.StringVar(&in.Descripcion, "descripcion", "", "Description")
		f.StringVar(&in.Prioridad, "prioridad", "", "Priority: alta, media, baja")
		f.StringVar(&in.Estado, "estado", "", "Estado")
	},
	required: []string{"titulo"},
}

func init() {
	cmd := requerimientos.command()
	cmd.AddCommand(&cobra.Command{
		Use:   "estado ID ESTADO",
		Short: "Move a requerimiento to another estado",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runAndExit(cmd, func(ctx context.Context, w io.Writer, c *client.Client) int {
				return runSetEstado(ctx, w, c, client.ID(args[0]), args[1])
			})
		},
	})
	rootCmd.AddCommand(cmd)
}

// runSetEstado patches the estado and returns exit code
func runSetEstado(ctx context.Context, w io.Writer, c *client.Client, id client.ID, estado string) int {
	return report(w, c.SetRequerimientoEstado(ctx, id, estado), func(r client.Requerimiento) string {
		return "Requerimiento " + id.String() + " ahora está " + client.EstadoLabel(r.Estado) + "."
	})
}

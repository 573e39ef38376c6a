// ABOUTME: Section specs binding list screens to client operations
// ABOUTME: Columns, estado filters and row actions for each record type

package listview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
	"github.com/gadibarra/panel-municipal/internal/tui/widgets"
)

// Mensaje read-state filters understood by the backend.
const (
	FilterNoLeido = "no-leido"
	FilterLeido   = "leido"
)

// For returns the list spec of a record section. Dashboard and logout have
// no list.
func For(c *client.Client, s menu.Section) (Spec, bool) {
	switch s {
	case menu.SectionProyectos:
		return proyectosSpec(c), true
	case menu.SectionAprobaciones:
		return aprobacionesSpec(c), true
	case menu.SectionRequerimientos:
		return requerimientosSpec(c), true
	case menu.SectionMensajes:
		return mensajesSpec(c), true
	case menu.SectionFerias:
		return feriasSpec(c), true
	case menu.SectionLocales:
		return localesSpec(c), true
	default:
		return Spec{}, false
	}
}

// toPage converts a listing envelope into display rows.
func toPage[T any](res client.Response[client.Page[T]], row func(T) Row) (Page, error) {
	if err := res.Err(); err != nil {
		return Page{}, err
	}
	p := Page{
		Rows:       make([]Row, 0, len(res.Data.Content)),
		Total:      res.Data.TotalElements,
		TotalPages: res.Data.TotalPages,
	}
	for _, item := range res.Data.Content {
		p.Rows = append(p.Rows, row(item))
	}
	return p, nil
}

// notice turns a mutation envelope into a flash message.
func notice[T any](res client.Response[T], ok string) (string, error) {
	if err := res.Err(); err != nil {
		return "", err
	}
	return ok, nil
}

func deleteAction(del func(ctx context.Context, id client.ID) client.Response[client.Ack], noun string) Action {
	return Action{
		Key:     "d",
		Label:   "Eliminar",
		Confirm: true,
		Run: func(ctx context.Context, row Row) (string, error) {
			return notice(del(ctx, row.ID), fmt.Sprintf("%s %s eliminado", noun, row.ID))
		},
	}
}

func pendingOnly(row Row) bool { return client.IsPendingEstado(row.Estado) }

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func proyectoRow(p client.Proyecto) Row {
	bar := widgets.DefaultProgressBarConfig()
	detail := strings.Join([]string{
		p.Nombre,
		or(p.Descripcion, "Sin descripción"),
		"Responsable: " + or(p.Responsable, "-"),
		"Categoría: " + or(p.Categoria, "-"),
		fmt.Sprintf("Fechas: %s → %s", or(p.FechaInicio, "-"), or(p.FechaFin, "-")),
		fmt.Sprintf("Presupuesto: $%.2f", p.Presupuesto),
		"Estado: " + widgets.EstadoBadge(p.Estado),
		"Progreso: " + widgets.ProgressBarWithLabel(p.Progreso, bar),
	}, "\n")
	return Row{
		ID:     p.ID,
		Estado: p.Estado,
		Cells: []string{
			p.ID.String(), p.Nombre, p.Responsable,
			client.EstadoLabel(p.Estado), fmt.Sprintf("%3.0f%%", p.Progreso),
		},
		Detail: detail,
	}
}

var proyectoColumns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Nombre", Width: 32},
	{Title: "Responsable", Width: 20},
	{Title: "Estado", Width: 14},
	{Title: "Avance", Width: 7},
}

func proyectosSpec(c *client.Client) Spec {
	return Spec{
		Section: menu.SectionProyectos,
		Columns: proyectoColumns,
		Estados: []string{
			"", client.EstadoPendiente, client.EstadoPlanificacion, client.EstadoEnProgreso,
			client.EstadoCompletado, client.EstadoAprobado, client.EstadoRechazado,
		},
		Creatable: true,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.ListProyectos(ctx, opts), proyectoRow)
		},
		Actions: []Action{deleteAction(c.DeleteProyecto, "Proyecto")},
	}
}

func aprobacionesSpec(c *client.Client) Spec {
	decide := func(label string, op func(context.Context, client.ID) client.Response[client.ApprovalResponse]) func(context.Context, Row) (string, error) {
		return func(ctx context.Context, row Row) (string, error) {
			res := op(ctx, row.ID)
			msg := fmt.Sprintf("Proyecto %s %s", row.ID, label)
			if res.Data.Message != "" {
				msg = res.Data.Message
			}
			return notice(res, msg)
		}
	}
	return Spec{
		Section: menu.SectionAprobaciones,
		Columns: proyectoColumns,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.PendingProyectos(ctx, opts.Page, opts.Size), proyectoRow)
		},
		Actions: []Action{
			{Key: "a", Label: "Aprobar", Applies: pendingOnly, Run: decide("aprobado", c.ApproveProyecto)},
			{Key: "x", Label: "Rechazar", Confirm: true, Applies: pendingOnly, Run: decide("rechazado", c.RejectProyecto)},
		},
	}
}

// nextRequerimientoEstado is the workflow step the "s" action applies.
func nextRequerimientoEstado(estado string) (string, bool) {
	switch client.NormalizeEstado(estado) {
	case client.EstadoPendiente:
		return client.EstadoEnProgreso, true
	case client.EstadoEnProgreso:
		return client.EstadoCompletado, true
	default:
		return "", false
	}
}

func requerimientosSpec(c *client.Client) Spec {
	row := func(r client.Requerimiento) Row {
		return Row{
			ID:     r.ID,
			Estado: r.Estado,
			Cells: []string{
				r.ID.String(), r.Titulo, or(r.Prioridad, "-"),
				client.EstadoLabel(r.Estado), shortDate(r.FechaCreacion),
			},
			Detail: strings.Join([]string{
				r.Titulo,
				or(r.Descripcion, "Sin descripción"),
				"Prioridad: " + widgets.PrioridadBadge(r.Prioridad),
				"Estado: " + widgets.EstadoBadge(r.Estado),
				"Creado por: " + or(r.Usuario, "-"),
				"Creado: " + or(r.FechaCreacion, "-"),
				"Actualizado: " + or(r.FechaActualizacion, "-"),
			}, "\n"),
		}
	}
	return Spec{
		Section: menu.SectionRequerimientos,
		Columns: []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Título", Width: 36},
			{Title: "Prioridad", Width: 9},
			{Title: "Estado", Width: 14},
			{Title: "Fecha", Width: 10},
		},
		Estados:   []string{"", client.EstadoPendiente, client.EstadoEnProgreso, client.EstadoCompletado},
		Creatable: true,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.ListRequerimientos(ctx, opts), row)
		},
		Actions: []Action{
			{
				Key:   "s",
				Label: "Avanzar estado",
				Applies: func(r Row) bool {
					_, ok := nextRequerimientoEstado(r.Estado)
					return ok
				},
				Run: func(ctx context.Context, r Row) (string, error) {
					next, _ := nextRequerimientoEstado(r.Estado)
					return notice(c.SetRequerimientoEstado(ctx, r.ID, next),
						fmt.Sprintf("Requerimiento %s: %s", r.ID, client.EstadoLabel(next)))
				},
			},
			deleteAction(c.DeleteRequerimiento, "Requerimiento"),
		},
	}
}

func mensajesSpec(c *client.Client) Spec {
	row := func(m client.Mensaje) Row {
		estado, leido := FilterNoLeido, "no"
		if m.Leido {
			estado, leido = FilterLeido, "sí"
		}
		return Row{
			ID:     m.ID,
			Estado: estado,
			Cells:  []string{m.ID.String(), m.Remitente, m.Destinatario, m.Contenido, leido},
			Detail: fmt.Sprintf("De: %s\nPara: %s\nEnviado: %s\n\n%s",
				or(m.Remitente, "-"), or(m.Destinatario, "-"), or(m.FechaEnvio, "-"), m.Contenido),
		}
	}
	return Spec{
		Section: menu.SectionMensajes,
		Columns: []table.Column{
			{Title: "ID", Width: 6},
			{Title: "De", Width: 14},
			{Title: "Para", Width: 14},
			{Title: "Contenido", Width: 40},
			{Title: "Leído", Width: 5},
		},
		Estados:   []string{"", FilterNoLeido, FilterLeido},
		Creatable: true,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.ListMensajes(ctx, opts), row)
		},
		Actions: []Action{
			{
				Key:     "m",
				Label:   "Marcar leído",
				Applies: func(r Row) bool { return r.Estado == FilterNoLeido },
				Run: func(ctx context.Context, r Row) (string, error) {
					return notice(c.MarkMensajeLeido(ctx, r.ID), fmt.Sprintf("Mensaje %s marcado como leído", r.ID))
				},
			},
			deleteAction(c.DeleteMensaje, "Mensaje"),
		},
	}
}

func feriasSpec(c *client.Client) Spec {
	row := func(f client.Feria) Row {
		return Row{
			ID:     f.ID,
			Estado: f.Estado,
			Cells: []string{
				f.ID.String(), f.Nombre, f.Ubicacion, shortDate(f.FechaInicio), client.EstadoLabel(f.Estado),
			},
			Detail: strings.Join([]string{
				f.Nombre,
				or(f.Descripcion, "Sin descripción"),
				"Ubicación: " + or(f.Ubicacion, "-"),
				fmt.Sprintf("Fechas: %s → %s", or(f.FechaInicio, "-"), or(f.FechaFin, "-")),
				"Estado: " + widgets.EstadoBadge(f.Estado),
			}, "\n"),
		}
	}
	return Spec{
		Section: menu.SectionFerias,
		Columns: []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Nombre", Width: 30},
			{Title: "Ubicación", Width: 24},
			{Title: "Inicio", Width: 10},
			{Title: "Estado", Width: 12},
		},
		Estados:   []string{"", client.EstadoProgramada, client.EstadoActiva, client.EstadoFinalizada},
		Creatable: true,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.ListFerias(ctx, opts), row)
		},
		Actions: []Action{deleteAction(c.DeleteFeria, "Feria")},
	}
}

func localesSpec(c *client.Client) Spec {
	row := func(l client.LocalComercial) Row {
		return Row{
			ID:     l.ID,
			Estado: l.Estado,
			Cells: []string{
				l.ID.String(), l.Nombre, l.Propietario, l.TipoNegocio, client.EstadoLabel(l.Estado),
			},
			Detail: strings.Join([]string{
				l.Nombre,
				"Dirección: " + or(l.Direccion, "-"),
				"Propietario: " + or(l.Propietario, "-"),
				"Contacto: " + or(l.Telefono, "-") + " · " + or(l.Email, "-"),
				"Tipo de negocio: " + or(l.TipoNegocio, "-"),
				"Registrado: " + or(l.FechaRegistro, "-"),
				"Estado: " + widgets.EstadoBadge(l.Estado),
			}, "\n"),
		}
	}
	return Spec{
		Section: menu.SectionLocales,
		Columns: []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Nombre", Width: 28},
			{Title: "Propietario", Width: 20},
			{Title: "Tipo", Width: 16},
			{Title: "Estado", Width: 12},
		},
		Estados:   []string{"", client.EstadoActivo, client.EstadoSuspendido},
		Creatable: true,
		Load: func(ctx context.Context, opts client.ListOptions) (Page, error) {
			return toPage(c.ListLocales(ctx, opts), row)
		},
		Actions: []Action{deleteAction(c.DeleteLocal, "Local")},
	}
}

// shortDate keeps the date part of an ISO timestamp.
func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return or(s, "-")
}

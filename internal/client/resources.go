// ABOUTME: Typed wrappers over the request executor for each backend resource
// ABOUTME: Proyectos and approvals, requerimientos, mensajes, ferias, locales, dashboard, health

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	proyectosPath      = "/api/proyectos"
	requerimientosPath = "/api/requerimientos"
	mensajesPath       = "/api/mensajes"
	feriasPath         = "/api/ferias"
	localesPath        = "/api/locales-comerciales"
	dashboardPath      = "/api/dashboard"
)

func itemPath(base string, id ID) string {
	return base + "/" + url.PathEscape(string(id))
}

// Proyectos

func (c *Client) ListProyectos(ctx context.Context, opts ListOptions) Response[Page[Proyecto]] {
	return Do[Page[Proyecto]](ctx, c, http.MethodGet, proyectosPath+opts.query(), nil, nil)
}

func (c *Client) GetProyecto(ctx context.Context, id ID) Response[Proyecto] {
	return Do[Proyecto](ctx, c, http.MethodGet, itemPath(proyectosPath, id), nil, nil)
}

func (c *Client) CreateProyecto(ctx context.Context, in ProyectoInput) Response[Proyecto] {
	return Do[Proyecto](ctx, c, http.MethodPost, proyectosPath, in, nil)
}

func (c *Client) UpdateProyecto(ctx context.Context, id ID, in ProyectoInput) Response[Proyecto] {
	return Do[Proyecto](ctx, c, http.MethodPut, itemPath(proyectosPath, id), in, nil)
}

func (c *Client) DeleteProyecto(ctx context.Context, id ID) Response[Ack] {
	return Do[Ack](ctx, c, http.MethodDelete, itemPath(proyectosPath, id), nil, nil)
}

// PendingProyectos lists projects awaiting approval.
func (c *Client) PendingProyectos(ctx context.Context, page, size int) Response[Page[Proyecto]] {
	q := ListOptions{Page: page, Size: size}.query()
	return Do[Page[Proyecto]](ctx, c, http.MethodGet, "/admin/pending"+q, nil, nil)
}

// ApproveProyecto approves a pending project.
func (c *Client) ApproveProyecto(ctx context.Context, id ID) Response[ApprovalResponse] {
	return Do[ApprovalResponse](ctx, c, http.MethodPost, itemPath("/admin/approve", id), nil, nil)
}

// RejectProyecto rejects a pending project with the configured method
// (DELETE unless configured to POST).
func (c *Client) RejectProyecto(ctx context.Context, id ID) Response[ApprovalResponse] {
	method := c.cfg.RejectMethod
	if method == "" {
		method = http.MethodDelete
	}
	return Do[ApprovalResponse](ctx, c, method, itemPath("/admin/reject", id), nil, nil)
}

// Requerimientos

func (c *Client) ListRequerimientos(ctx context.Context, opts ListOptions) Response[Page[Requerimiento]] {
	return Do[Page[Requerimiento]](ctx, c, http.MethodGet, requerimientosPath+opts.query(), nil, nil)
}

func (c *Client) GetRequerimiento(ctx context.Context, id ID) Response[Requerimiento] {
	return Do[Requerimiento](ctx, c, http.MethodGet, itemPath(requerimientosPath, id), nil, nil)
}

func (c *Client) CreateRequerimiento(ctx context.Context, in RequerimientoInput) Response[Requerimiento] {
	return Do[Requerimiento](ctx, c, http.MethodPost, requerimientosPath, in, nil)
}

func (c *Client) UpdateRequerimiento(ctx context.Context, id ID, in RequerimientoInput) Response[Requerimiento] {
	return Do[Requerimiento](ctx, c, http.MethodPut, itemPath(requerimientosPath, id), in, nil)
}

// SetRequerimientoEstado requests an estado transition.
func (c *Client) SetRequerimientoEstado(ctx context.Context, id ID, estado string) Response[Requerimiento] {
	body := map[string]string{"estado": estado}
	return Do[Requerimiento](ctx, c, http.MethodPatch, itemPath(requerimientosPath, id), body, nil)
}

func (c *Client) DeleteRequerimiento(ctx context.Context, id ID) Response[Ack] {
	return Do[Ack](ctx, c, http.MethodDelete, itemPath(requerimientosPath, id), nil, nil)
}

// Mensajes

func (c *Client) ListMensajes(ctx context.Context, opts ListOptions) Response[Page[Mensaje]] {
	return Do[Page[Mensaje]](ctx, c, http.MethodGet, mensajesPath+opts.query(), nil, nil)
}

func (c *Client) GetMensaje(ctx context.Context, id ID) Response[Mensaje] {
	return Do[Mensaje](ctx, c, http.MethodGet, itemPath(mensajesPath, id), nil, nil)
}

func (c *Client) SendMensaje(ctx context.Context, in MensajeInput) Response[Mensaje] {
	return Do[Mensaje](ctx, c, http.MethodPost, mensajesPath, in, nil)
}

// MarkMensajeLeido flags a message as read.
func (c *Client) MarkMensajeLeido(ctx context.Context, id ID) Response[Mensaje] {
	body := map[string]bool{"leido": true}
	return Do[Mensaje](ctx, c, http.MethodPatch, itemPath(mensajesPath, id), body, nil)
}

func (c *Client) DeleteMensaje(ctx context.Context, id ID) Response[Ack] {
	return Do[Ack](ctx, c, http.MethodDelete, itemPath(mensajesPath, id), nil, nil)
}

// Ferias

func (c *Client) ListFerias(ctx context.Context, opts ListOptions) Response[Page[Feria]] {
	return Do[Page[Feria]](ctx, c, http.MethodGet, feriasPath+opts.query(), nil, nil)
}

func (c *Client) GetFeria(ctx context.Context, id ID) Response[Feria] {
	return Do[Feria](ctx, c, http.MethodGet, itemPath(feriasPath, id), nil, nil)
}

func (c *Client) CreateFeria(ctx context.Context, in FeriaInput) Response[Feria] {
	return Do[Feria](ctx, c, http.MethodPost, feriasPath, in, nil)
}

func (c *Client) UpdateFeria(ctx context.Context, id ID, in FeriaInput) Response[Feria] {
	return Do[Feria](ctx, c, http.MethodPut, itemPath(feriasPath, id), in, nil)
}

func (c *Client) DeleteFeria(ctx context.Context, id ID) Response[Ack] {
	return Do[Ack](ctx, c, http.MethodDelete, itemPath(feriasPath, id), nil, nil)
}

// Locales comerciales

func (c *Client) ListLocales(ctx context.Context, opts ListOptions) Response[Page[LocalComercial]] {
	return Do[Page[LocalComercial]](ctx, c, http.MethodGet, localesPath+opts.query(), nil, nil)
}

func (c *Client) GetLocal(ctx context.Context, id ID) Response[LocalComercial] {
	return Do[LocalComercial](ctx, c, http.MethodGet, itemPath(localesPath, id), nil, nil)
}

func (c *Client) CreateLocal(ctx context.Context, in LocalComercialInput) Response[LocalComercial] {
	return Do[LocalComercial](ctx, c, http.MethodPost, localesPath, in, nil)
}

func (c *Client) UpdateLocal(ctx context.Context, id ID, in LocalComercialInput) Response[LocalComercial] {
	return Do[LocalComercial](ctx, c, http.MethodPut, itemPath(localesPath, id), in, nil)
}

func (c *Client) DeleteLocal(ctx context.Context, id ID) Response[Ack] {
	return Do[Ack](ctx, c, http.MethodDelete, itemPath(localesPath, id), nil, nil)
}

// Dashboard returns the backend's own summary.
func (c *Client) Dashboard(ctx context.Context) Response[DashboardData] {
	return Do[DashboardData](ctx, c, http.MethodGet, dashboardPath, nil, nil)
}

// summaryPageSize is how many records Summary pulls per resource when it
// has to aggregate on the client.
const summaryPageSize = 1000

// recentLimit is how many requerimientos the summary lists as recent.
const recentLimit = 5

// Summary returns the dashboard summary. When the backend does not serve
// one, it is aggregated from the listings, fetched concurrently.
func (c *Client) Summary(ctx context.Context) Response[DashboardData] {
	resp := c.Dashboard(ctx)
	if resp.Success || resp.Kind != KindNotFound {
		return resp
	}
	c.logger.Debug("Dashboard endpoint missing, aggregating from listings")

	all := ListOptions{Size: summaryPageSize}
	var (
		proyectos      Response[Page[Proyecto]]
		requerimientos Response[Page[Requerimiento]]
		ferias         Response[Page[Feria]]
		locales        Response[Page[LocalComercial]]
		mensajes       Response[Page[Mensaje]]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { proyectos = c.ListProyectos(gctx, all); return proyectos.Err() })
	g.Go(func() error { requerimientos = c.ListRequerimientos(gctx, all); return requerimientos.Err() })
	g.Go(func() error { ferias = c.ListFerias(gctx, all); return ferias.Err() })
	g.Go(func() error { locales = c.ListLocales(gctx, all); return locales.Err() })
	g.Go(func() error { mensajes = c.ListMensajes(gctx, all); return mensajes.Err() })

	if err := g.Wait(); err != nil {
		for _, e := range []error{proyectos.Err(), requerimientos.Err(), ferias.Err(), locales.Err(), mensajes.Err()} {
			// A sibling canceled by the group is not the root cause.
			var apiErr *APIError
			if errors.As(e, &apiErr) && apiErr.Kind != KindCanceled {
				return failure[DashboardData](apiErr.Kind, apiErr.Status, apiErr.Message, apiErr.Message)
			}
		}
		return failure[DashboardData](KindCanceled, 0, err.Error(), "Operación cancelada")
	}

	data := aggregateSummary(proyectos.Data, requerimientos.Data, ferias.Data, locales.Data, mensajes.Data)
	return Response[DashboardData]{Success: true, Data: data, Status: http.StatusOK, Message: "Resumen calculado a partir de los listados"}
}

func aggregateSummary(p Page[Proyecto], r Page[Requerimiento], f Page[Feria], l Page[LocalComercial], m Page[Mensaje]) DashboardData {
	d := DashboardData{
		TotalProyectos:          total(p),
		TotalRequerimientos:     total(r),
		TotalFerias:             total(f),
		TotalLocalesComerciales: total(l),
		Estadisticas: Estadisticas{
			RequerimientosPorEstado: map[string]int{},
			ProyectosPorEstado:      map[string]int{},
		},
	}

	for _, x := range p.Content {
		d.Estadisticas.ProyectosPorEstado[NormalizeEstado(x.Estado)]++
	}
	for _, x := range r.Content {
		d.Estadisticas.RequerimientosPorEstado[NormalizeEstado(x.Estado)]++
	}
	for _, x := range m.Content {
		if !x.Leido {
			d.MensajesNoLeidos++
		}
	}

	recent := append([]Requerimiento(nil), r.Content...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].FechaCreacion > recent[j].FechaCreacion
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	d.RequerimientosRecientes = recent
	return d
}

func total[T any](p Page[T]) int {
	if p.TotalElements > len(p.Content) {
		return p.TotalElements
	}
	return len(p.Content)
}

// HealthCheck reports backend health. After a reachability probe it tries
// the health-family endpoints and returns the first that answers 2xx; a
// reachable backend without any of them is reported as "reachable".
func (c *Client) HealthCheck(ctx context.Context) Response[HealthStatus] {
	if !c.prober.Reachable(ctx) {
		return failure[HealthStatus](KindUnavailable, 0, msgServerUnavailable, "Servidor no disponible")
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	for _, path := range c.cfg.HealthPaths {
		ex, err := c.send(ctx, http.MethodGet, path, nil, header, time.Duration(c.cfg.ProbeTimeout))
		if err != nil {
			if transportKind(ctx, err) == KindCanceled {
				return transportFailure[HealthStatus](ctx, err)
			}
			continue
		}
		if ex.status < 200 || ex.status >= 300 {
			continue
		}

		status := HealthStatus{Path: path, Status: "ok"}
		if obj := ex.body.object(); obj != nil {
			status.Status = orDefault(firstString(obj, "status"), status.Status)
			status.Timestamp = firstString(obj, "timestamp")
			status.Version = firstString(obj, "version")
		}
		return Response[HealthStatus]{Success: true, Data: status, Status: ex.status, Message: "Servidor disponible"}
	}

	return Response[HealthStatus]{
		Success: true,
		Data:    HealthStatus{Status: "reachable", Timestamp: time.Now().UTC().Format(time.RFC3339)},
		Message: "Servidor disponible",
	}
}

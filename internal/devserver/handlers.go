// ABOUTME: HTTP handlers for the development backend's REST resources
// ABOUTME: Generic CRUD over collections, approvals, dashboard summary and health

package devserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gadibarra/panel-municipal/internal/client"
)

const (
	defaultPageSize = 10
	maxPageSize     = 1000
	recentLimit     = 5
)

// resource exposes one collection as REST. build validates and fills a new
// record from its input; apply merges a partial update.
type resource[T, I any] struct {
	noun  string
	col   *collection[T]
	build func(in I, r *http.Request) (T, string)
	apply func(item *T, in I)
}

func (res *resource[T, I]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := pageParams(q)
	writeJSON(w, http.StatusOK, paginate(res.col.filter(q.Get("estado"), q.Get("search")), page, size))
}

func (res *resource[T, I]) get(w http.ResponseWriter, r *http.Request) {
	item, ok := res.col.get(client.ID(chi.URLParam(r, "id")))
	if !ok {
		writeJSONError(w, res.noun+" no encontrado", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (res *resource[T, I]) create(w http.ResponseWriter, r *http.Request) {
	var in I
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}
	item, problem := res.build(in, r)
	if problem != "" {
		writeJSONError(w, problem, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, res.col.create(item))
}

// update serves PUT and PATCH; inputs treat zero fields as unchanged.
func (res *resource[T, I]) update(w http.ResponseWriter, r *http.Request) {
	var in I
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, "Cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}
	item, found, _ := res.col.update(client.ID(chi.URLParam(r, "id")), func(t *T) bool {
		res.apply(t, in)
		return true
	})
	if !found {
		writeJSONError(w, res.noun+" no encontrado", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (res *resource[T, I]) remove(w http.ResponseWriter, r *http.Request) {
	if !res.col.remove(client.ID(chi.URLParam(r, "id"))) {
		writeJSONError(w, res.noun+" no encontrado", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, client.Ack{Message: res.noun + " eliminado"})
}

func (res *resource[T, I]) mount(r chi.Router, path string) {
	r.Get(path, res.list)
	r.Post(path, res.create)
	r.Get(path+"/{id}", res.get)
	r.Put(path+"/{id}", res.update)
	r.Patch(path+"/{id}", res.update)
	r.Delete(path+"/{id}", res.remove)
}

func pageParams(q url.Values) (page, size int) {
	page, size = 0, defaultPageSize
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 {
		size = min(v, maxPageSize)
	}
	return page, size
}

// paginate slices items into a Spring-style page.
func paginate[T any](items []T, page, size int) client.Page[T] {
	total := len(items)
	start := min(page*size, total)
	end := min(start+size, total)
	content := items[start:end]
	if content == nil {
		content = []T{}
	}
	return client.Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
		Pageable:      client.Pageable{PageNumber: page, PageSize: size},
		Empty:         len(content) == 0,
		Sort:          client.Sort{Unsorted: true, Empty: true},
	}
}

func (s *Server) caller(r *http.Request) string {
	if claims := claimsFrom(r); claims != nil {
		return claims.Subject
	}
	return ""
}

func (s *Server) proyectosResource() *resource[client.Proyecto, client.ProyectoInput] {
	return &resource[client.Proyecto, client.ProyectoInput]{
		noun: "Proyecto",
		col:  s.data.proyectos,
		build: func(in client.ProyectoInput, r *http.Request) (client.Proyecto, string) {
			if in.Nombre == "" {
				return client.Proyecto{}, "El nombre del proyecto es requerido"
			}
			p := client.Proyecto{Estado: client.EstadoPendiente}
			applyProyecto(&p, in)
			return p, ""
		},
		apply: applyProyecto,
	}
}

func applyProyecto(p *client.Proyecto, in client.ProyectoInput) {
	setIf(&p.Nombre, in.Nombre)
	setIf(&p.Descripcion, in.Descripcion)
	setIf(&p.Responsable, in.Responsable)
	setIf(&p.FechaInicio, in.FechaInicio)
	setIf(&p.FechaFin, in.FechaFin)
	setIf(&p.Estado, client.NormalizeEstado(in.Estado))
	setIf(&p.Categoria, in.Categoria)
	if in.Progreso != 0 {
		p.Progreso = in.Progreso
	}
	if in.Presupuesto != 0 {
		p.Presupuesto = in.Presupuesto
	}
}

func (s *Server) requerimientosResource() *resource[client.Requerimiento, client.RequerimientoInput] {
	return &resource[client.Requerimiento, client.RequerimientoInput]{
		noun: "Requerimiento",
		col:  s.data.requerimientos,
		build: func(in client.RequerimientoInput, r *http.Request) (client.Requerimiento, string) {
			if in.Titulo == "" {
				return client.Requerimiento{}, "El título del requerimiento es requerido"
			}
			req := client.Requerimiento{
				Estado:        client.EstadoPendiente,
				Prioridad:     client.PrioridadMedia,
				FechaCreacion: s.now().UTC().Format(time.RFC3339),
				Usuario:       s.caller(r),
			}
			s.applyRequerimiento(&req, in)
			return req, ""
		},
		apply: s.applyRequerimiento,
	}
}

func (s *Server) applyRequerimiento(req *client.Requerimiento, in client.RequerimientoInput) {
	setIf(&req.Titulo, in.Titulo)
	setIf(&req.Descripcion, in.Descripcion)
	setIf(&req.Prioridad, in.Prioridad)
	if in.Estado != "" {
		req.Estado = client.NormalizeEstado(in.Estado)
		req.FechaActualizacion = s.now().UTC().Format(time.RFC3339)
	}
}

func (s *Server) mensajesResource() *resource[client.Mensaje, client.MensajeInput] {
	return &resource[client.Mensaje, client.MensajeInput]{
		noun: "Mensaje",
		col:  s.data.mensajes,
		build: func(in client.MensajeInput, r *http.Request) (client.Mensaje, string) {
			if in.Contenido == "" || in.Destinatario == "" {
				return client.Mensaje{}, "Contenido y destinatario son requeridos"
			}
			return client.Mensaje{
				Contenido:    in.Contenido,
				Destinatario: in.Destinatario,
				Remitente:    s.caller(r),
				FechaEnvio:   s.now().UTC().Format(time.RFC3339),
			}, ""
		},
		apply: func(m *client.Mensaje, in client.MensajeInput) {
			setIf(&m.Contenido, in.Contenido)
			setIf(&m.Destinatario, in.Destinatario)
		},
	}
}

// markMensaje serves PATCH on a message: {"leido": bool}.
func (s *Server) markMensaje(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Leido *bool `json:"leido"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Leido == nil {
		writeJSONError(w, "Se requiere el campo leido", http.StatusBadRequest)
		return
	}
	m, found, _ := s.data.mensajes.update(client.ID(chi.URLParam(r, "id")), func(m *client.Mensaje) bool {
		m.Leido = *in.Leido
		return true
	})
	if !found {
		writeJSONError(w, "Mensaje no encontrado", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) feriasResource() *resource[client.Feria, client.FeriaInput] {
	apply := func(f *client.Feria, in client.FeriaInput) {
		setIf(&f.Nombre, in.Nombre)
		setIf(&f.Descripcion, in.Descripcion)
		setIf(&f.FechaInicio, in.FechaInicio)
		setIf(&f.FechaFin, in.FechaFin)
		setIf(&f.Ubicacion, in.Ubicacion)
		setIf(&f.Estado, client.NormalizeEstado(in.Estado))
	}
	return &resource[client.Feria, client.FeriaInput]{
		noun: "Feria",
		col:  s.data.ferias,
		build: func(in client.FeriaInput, r *http.Request) (client.Feria, string) {
			if in.Nombre == "" {
				return client.Feria{}, "El nombre de la feria es requerido"
			}
			f := client.Feria{Estado: client.EstadoProgramada}
			apply(&f, in)
			return f, ""
		},
		apply: apply,
	}
}

func (s *Server) localesResource() *resource[client.LocalComercial, client.LocalComercialInput] {
	apply := func(l *client.LocalComercial, in client.LocalComercialInput) {
		setIf(&l.Nombre, in.Nombre)
		setIf(&l.Direccion, in.Direccion)
		setIf(&l.Propietario, in.Propietario)
		setIf(&l.Telefono, in.Telefono)
		setIf(&l.Email, in.Email)
		setIf(&l.TipoNegocio, in.TipoNegocio)
		setIf(&l.Estado, client.NormalizeEstado(in.Estado))
	}
	return &resource[client.LocalComercial, client.LocalComercialInput]{
		noun: "Local comercial",
		col:  s.data.locales,
		build: func(in client.LocalComercialInput, r *http.Request) (client.LocalComercial, string) {
			if in.Nombre == "" {
				return client.LocalComercial{}, "El nombre del local es requerido"
			}
			l := client.LocalComercial{
				Estado:        client.EstadoActivo,
				FechaRegistro: s.now().UTC().Format(time.DateOnly),
			}
			apply(&l, in)
			return l, ""
		},
		apply: apply,
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Admin approvals

func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r.URL.Query())
	writeJSON(w, http.StatusOK, paginate(s.data.proyectos.filter(client.EstadoPendiente, ""), page, size))
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, client.EstadoAprobado, "Proyecto aprobado")
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, client.EstadoRechazado, "Proyecto rechazado")
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, estado, message string) {
	id := client.ID(chi.URLParam(r, "id"))
	p, found, changed := s.data.proyectos.update(id, func(p *client.Proyecto) bool {
		if !client.IsPendingEstado(p.Estado) {
			return false
		}
		p.Estado = estado
		return true
	})
	switch {
	case !found:
		writeJSONError(w, "Proyecto no encontrado", http.StatusNotFound)
		return
	case !changed:
		writeJSONError(w, "El proyecto no está pendiente de aprobación", http.StatusConflict)
		return
	}

	s.logger.Info("Project decision", "id", id, "estado", estado, "by", s.caller(r))
	writeJSON(w, http.StatusOK, client.ApprovalResponse{ID: p.ID, Nombre: p.Nombre, Estado: p.Estado, Message: message})
}

// Dashboard and health

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	proyectos := s.data.proyectos.all()
	requerimientos := s.data.requerimientos.all()

	d := client.DashboardData{
		TotalProyectos:          len(proyectos),
		TotalRequerimientos:     len(requerimientos),
		TotalFerias:             len(s.data.ferias.all()),
		TotalLocalesComerciales: len(s.data.locales.all()),
		MensajesNoLeidos:        len(s.data.mensajes.filter("no-leido", "")),
		Estadisticas: client.Estadisticas{
			ProyectosPorEstado:      map[string]int{},
			RequerimientosPorEstado: map[string]int{},
		},
	}
	for _, p := range proyectos {
		d.Estadisticas.ProyectosPorEstado[client.NormalizeEstado(p.Estado)]++
	}
	for _, req := range requerimientos {
		d.Estadisticas.RequerimientosPorEstado[client.NormalizeEstado(req.Estado)]++
	}

	sort.SliceStable(requerimientos, func(i, j int) bool {
		return requerimientos[i].FechaCreacion > requerimientos[j].FechaCreacion
	})
	d.RequerimientosRecientes = requerimientos[:min(recentLimit, len(requerimientos))]

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, client.HealthStatus{
		Status:    "UP",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   Version,
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": tokenIssuer, "status": "ok"})
}

func (s *Server) rootOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, HEAD, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

// ABOUTME: Domain records exchanged with the panel backend
// ABOUTME: Proyectos, requerimientos, mensajes, ferias, locales, pages and dashboard data

package client

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// ID is a record identifier. Backends send either strings or numbers.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Proyecto is a municipal project.
type Proyecto struct {
	ID          ID      `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	Responsable string  `json:"responsable,omitempty"`
	FechaInicio string  `json:"fechaInicio,omitempty"`
	FechaFin    string  `json:"fechaFin,omitempty"`
	Estado      string  `json:"estado"`
	Progreso    float64 `json:"progreso,omitempty"`
	Presupuesto float64 `json:"presupuesto,omitempty"`
	Categoria   string  `json:"categoria,omitempty"`
}

// ProyectoInput is the body for creating or updating a project. Zero fields
// are omitted so updates can be partial.
type ProyectoInput struct {
	Nombre      string  `json:"nombre,omitempty"`
	Descripcion string  `json:"descripcion,omitempty"`
	Responsable string  `json:"responsable,omitempty"`
	FechaInicio string  `json:"fechaInicio,omitempty"`
	FechaFin    string  `json:"fechaFin,omitempty"`
	Estado      string  `json:"estado,omitempty"`
	Progreso    float64 `json:"progreso,omitempty"`
	Presupuesto float64 `json:"presupuesto,omitempty"`
	Categoria   string  `json:"categoria,omitempty"`
}

// Requerimiento is a citizen or internal request.
type Requerimiento struct {
	ID                 ID     `json:"id"`
	Titulo             string `json:"titulo"`
	Descripcion        string `json:"descripcion,omitempty"`
	Estado             string `json:"estado"`
	FechaCreacion      string `json:"fechaCreacion,omitempty"`
	FechaActualizacion string `json:"fechaActualizacion,omitempty"`
	Usuario            string `json:"usuario,omitempty"`
	Prioridad          string `json:"prioridad,omitempty"`
}

// RequerimientoInput is the body for creating or updating a requerimiento.
type RequerimientoInput struct {
	Titulo      string `json:"titulo,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Prioridad   string `json:"prioridad,omitempty"`
	Estado      string `json:"estado,omitempty"`
}

// Mensaje is an internal message.
type Mensaje struct {
	ID           ID     `json:"id"`
	Contenido    string `json:"contenido"`
	Remitente    string `json:"remitente,omitempty"`
	Destinatario string `json:"destinatario"`
	FechaEnvio   string `json:"fechaEnvio,omitempty"`
	Leido        bool   `json:"leido"`
}

// MensajeInput is the body for sending a message.
type MensajeInput struct {
	Contenido    string `json:"contenido"`
	Destinatario string `json:"destinatario"`
}

// Feria is a scheduled fair.
type Feria struct {
	ID          ID     `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	FechaInicio string `json:"fechaInicio,omitempty"`
	FechaFin    string `json:"fechaFin,omitempty"`
	Ubicacion   string `json:"ubicacion,omitempty"`
	Estado      string `json:"estado"`
}

// FeriaInput is the body for creating or updating a fair.
type FeriaInput struct {
	Nombre      string `json:"nombre,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	FechaInicio string `json:"fechaInicio,omitempty"`
	FechaFin    string `json:"fechaFin,omitempty"`
	Ubicacion   string `json:"ubicacion,omitempty"`
	Estado      string `json:"estado,omitempty"`
}

// LocalComercial is a registered commercial premises.
type LocalComercial struct {
	ID            ID     `json:"id"`
	Nombre        string `json:"nombre"`
	Direccion     string `json:"direccion,omitempty"`
	Propietario   string `json:"propietario,omitempty"`
	Telefono      string `json:"telefono,omitempty"`
	Email         string `json:"email,omitempty"`
	TipoNegocio   string `json:"tipoNegocio,omitempty"`
	Estado        string `json:"estado"`
	FechaRegistro string `json:"fechaRegistro,omitempty"`
}

// LocalComercialInput is the body for creating or updating a local.
type LocalComercialInput struct {
	Nombre      string `json:"nombre,omitempty"`
	Direccion   string `json:"direccion,omitempty"`
	Propietario string `json:"propietario,omitempty"`
	Telefono    string `json:"telefono,omitempty"`
	Email       string `json:"email,omitempty"`
	TipoNegocio string `json:"tipoNegocio,omitempty"`
	Estado      string `json:"estado,omitempty"`
}

// Pageable locates a page within a listing.
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Sort describes the ordering a backend applied.
type Sort struct {
	Sorted   bool `json:"sorted"`
	Unsorted bool `json:"unsorted"`
	Empty    bool `json:"empty"`
}

// Page is one page of records. It also decodes a bare JSON array as a
// single page so list endpoints that do not paginate still fit.
type Page[T any] struct {
	Content       []T      `json:"content"`
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Pageable      Pageable `json:"pageable"`
	Empty         bool     `json:"empty"`
	Sort          Sort     `json:"sort"`
}

type pageFields[T any] struct {
	Content       []T      `json:"content"`
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Pageable      Pageable `json:"pageable"`
	Empty         bool     `json:"empty"`
	Sort          Sort     `json:"sort"`
}

// UnmarshalJSON accepts a page object or a bare array.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*p = Page[T]{
			Content:       items,
			TotalElements: len(items),
			TotalPages:    1,
			Pageable:      Pageable{PageSize: len(items)},
			Empty:         len(items) == 0,
		}
		return nil
	}

	var f pageFields[T]
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Page[T](f)
	return nil
}

// DashboardData is the summary shown on the landing screen.
type DashboardData struct {
	TotalRequerimientos     int             `json:"totalRequerimientos"`
	TotalProyectos          int             `json:"totalProyectos"`
	TotalFerias             int             `json:"totalFerias"`
	TotalLocalesComerciales int             `json:"totalLocalesComerciales"`
	RequerimientosRecientes []Requerimiento `json:"requerimientosRecientes"`
	MensajesNoLeidos        int             `json:"mensajesNoLeidos"`
	Estadisticas            Estadisticas    `json:"estadisticas"`
}

// Estadisticas counts records per estado.
type Estadisticas struct {
	RequerimientosPorEstado map[string]int `json:"requerimientosPorEstado"`
	ProyectosPorEstado      map[string]int `json:"proyectosPorEstado"`
}

// ApprovalResponse is the answer to approve or reject. Backends return
// either the updated project or a message; both decode here.
type ApprovalResponse struct {
	ID      ID     `json:"id,omitempty"`
	Nombre  string `json:"nombre,omitempty"`
	Estado  string `json:"estado,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ack is the body of operations that only confirm. Any JSON value decodes.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON keeps a bare string, or the message/mensaje/detail field of
// an object, as Message. Other values confirm without a message.
func (a *Ack) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		a.Message = v
	case map[string]any:
		a.Message = firstString(v, "message", "mensaje", "detail")
	}
	return nil
}

// HealthStatus is the payload of the health-family endpoints.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Path      string `json:"path,omitempty"`
}

// ListOptions filters and paginates a listing. Estado "all" means no filter.
type ListOptions struct {
	Page   int
	Size   int
	Estado string
	Search string
}

func (o ListOptions) query() string {
	size := o.Size
	if size <= 0 {
		size = 10
	}
	page := o.Page
	if page < 0 {
		page = 0
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if o.Estado != "" && o.Estado != EstadoAll {
		q.Set("estado", o.Estado)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return "?" + q.Encode()
}

// ABOUTME: Per-record estado values as the backend reports them
// ABOUTME: The backend is authoritative; unknown values are shown verbatim

package client

import "strings"

// EstadoAll disables the estado filter on listings.
const EstadoAll = "all"

// Approval states, shared by requerimientos and the project approval queue.
const (
	EstadoPendiente = "pendiente"
	EstadoAprobado  = "aprobado"
	EstadoRechazado = "rechazado"
)

// Project lifecycle.
const (
	EstadoPlanificacion = "planificacion"
	EstadoEnProgreso    = "en-progreso"
	EstadoCompletado    = "completado"
)

// Fair lifecycle.
const (
	EstadoProgramada = "programada"
	EstadoActiva     = "activa"
	EstadoFinalizada = "finalizada"
)

// Local comercial states.
const (
	EstadoActivo     = "activo"
	EstadoSuspendido = "suspendido"
)

// Requerimiento priorities.
const (
	PrioridadAlta  = "alta"
	PrioridadMedia = "media"
	PrioridadBaja  = "baja"
)

var estadoLabels = map[string]string{
	EstadoPendiente:     "Pendiente",
	EstadoAprobado:      "Aprobado",
	EstadoRechazado:     "Rechazado",
	EstadoPlanificacion: "Planificación",
	EstadoEnProgreso:    "En progreso",
	EstadoCompletado:    "Completado",
	EstadoProgramada:    "Programada",
	EstadoActiva:        "Activa",
	EstadoFinalizada:    "Finalizada",
	EstadoActivo:        "Activo",
	EstadoSuspendido:    "Suspendido",
}

// NormalizeEstado lowercases and maps "en_progreso"/"EN PROGRESO" spellings
// onto the canonical hyphenated form.
func NormalizeEstado(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}

// EstadoLabel returns the display label for an estado, or the raw value
// when it is not one the client knows.
func EstadoLabel(s string) string {
	if label, ok := estadoLabels[NormalizeEstado(s)]; ok {
		return label
	}
	return s
}

// IsPendingEstado reports whether a record is awaiting approval.
func IsPendingEstado(s string) bool {
	return NormalizeEstado(s) == EstadoPendiente
}

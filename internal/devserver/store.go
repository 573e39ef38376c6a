// ABOUTME: In-memory record collections for the development backend
// ABOUTME: Ordered, mutex-guarded collections with estado and text filters, plus seed data

package devserver

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gadibarra/panel-municipal/internal/client"
)

// collection holds records of one resource in insertion order.
type collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	nextID int

	idOf     func(*T) *client.ID
	estadoOf func(*T) string
	textOf   func(*T) string
}

func newCollection[T any](idOf func(*T) *client.ID, estadoOf, textOf func(*T) string, seed ...T) *collection[T] {
	c := &collection[T]{idOf: idOf, estadoOf: estadoOf, textOf: textOf, nextID: 1}
	for _, item := range seed {
		c.insert(item)
	}
	return c
}

func (c *collection[T]) insert(item T) T {
	id := c.idOf(&item)
	if *id == "" {
		*id = client.ID(strconv.Itoa(c.nextID))
	}
	if n, err := strconv.Atoi(string(*id)); err == nil && n >= c.nextID {
		c.nextID = n + 1
	}
	c.items = append(c.items, item)
	return item
}

func (c *collection[T]) indexOf(id client.ID) int {
	return slices.IndexFunc(c.items, func(item T) bool { return *c.idOf(&item) == id })
}

// filter returns the records matching estado (empty or "all" for any) and
// containing search in their text, case-insensitively.
func (c *collection[T]) filter(estado, search string) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	estado = client.NormalizeEstado(estado)
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]T, 0, len(c.items))
	for i := range c.items {
		item := &c.items[i]
		if estado != "" && estado != client.EstadoAll && client.NormalizeEstado(c.estadoOf(item)) != estado {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.textOf(item)), search) {
			continue
		}
		out = append(out, *item)
	}
	return out
}

func (c *collection[T]) get(id client.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false
	}
	return c.items[i], true
}

func (c *collection[T]) create(item T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.idOf(&item) = ""
	return c.insert(item)
}

// update applies fn to the record in place. fn returning false aborts
// without a change and update reports the record unchanged.
func (c *collection[T]) update(id client.ID, fn func(*T) bool) (T, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false, false
	}
	updated := c.items[i]
	if !fn(&updated) {
		return c.items[i], true, false
	}
	c.items[i] = updated
	return updated, true, true
}

func (c *collection[T]) remove(id client.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

func (c *collection[T]) all() []T {
	return c.filter("", "")
}

// store is the dev backend's whole data set.
type store struct {
	proyectos      *collection[client.Proyecto]
	requerimientos *collection[client.Requerimiento]
	mensajes       *collection[client.Mensaje]
	ferias         *collection[client.Feria]
	locales        *collection[client.LocalComercial]
}

func newStore() *store {
	return &store{
		proyectos: newCollection(
			func(p *client.Proyecto) *client.ID { return &p.ID },
			func(p *client.Proyecto) string { return p.Estado },
			func(p *client.Proyecto) string { return p.Nombre + " " + p.Descripcion + " " + p.Responsable },
			seedProyectos...,
		),
		requerimientos: newCollection(
			func(r *client.Requerimiento) *client.ID { return &r.ID },
			func(r *client.Requerimiento) string { return r.Estado },
			func(r *client.Requerimiento) string { return r.Titulo + " " + r.Descripcion },
			seedRequerimientos...,
		),
		mensajes: newCollection(
			func(m *client.Mensaje) *client.ID { return &m.ID },
			func(m *client.Mensaje) string {
				if m.Leido {
					return "leido"
				}
				return "no-leido"
			},
			func(m *client.Mensaje) string { return m.Contenido + " " + m.Remitente + " " + m.Destinatario },
			seedMensajes...,
		),
		ferias: newCollection(
			func(f *client.Feria) *client.ID { return &f.ID },
			func(f *client.Feria) string { return f.Estado },
			func(f *client.Feria) string { return f.Nombre + " " + f.Descripcion + " " + f.Ubicacion },
			seedFerias...,
		),
		locales: newCollection(
			func(l *client.LocalComercial) *client.ID { return &l.ID },
			func(l *client.LocalComercial) string { return l.Estado },
			func(l *client.LocalComercial) string { return l.Nombre + " " + l.Propietario + " " + l.TipoNegocio + " " + l.Direccion },
			seedLocales...,
		),
	}
}

var seedProyectos = []client.Proyecto{
	{Nombre: "Parque Central", Descripcion: "Renovación de áreas verdes y juegos infantiles", Responsable: "Dirección de Obras Públicas", FechaInicio: "2026-02-01", FechaFin: "2026-09-30", Estado: client.EstadoEnProgreso, Progreso: 45, Presupuesto: 250000, Categoria: "infraestructura"},
	{Nombre: "Alcantarillado Sector Norte", Descripcion: "Ampliación de la red de alcantarillado", Responsable: "EMAPA-I", FechaInicio: "2026-05-15", Estado: client.EstadoPendiente, Presupuesto: 480000, Categoria: "saneamiento"},
	{Nombre: "Ciclovía Yahuarcocha", Descripcion: "Ciclovía perimetral de la laguna", Responsable: "Dirección de Movilidad", FechaInicio: "2026-06-01", Estado: client.EstadoPendiente, Presupuesto: 120000, Categoria: "movilidad"},
	{Nombre: "Mercado Amazonas", Descripcion: "Rehabilitación de cubiertas", Responsable: "Dirección de Obras Públicas", FechaInicio: "2025-08-01", FechaFin: "2026-01-31", Estado: client.EstadoCompletado, Progreso: 100, Presupuesto: 90000, Categoria: "infraestructura"},
	{Nombre: "Biblioteca Digital", Descripcion: "Digitalización del archivo histórico", Responsable: "Dirección de Cultura", Estado: client.EstadoPlanificacion, Presupuesto: 35000, Categoria: "cultura"},
}

var seedRequerimientos = []client.Requerimiento{
	{Titulo: "Bache en la calle Bolívar", Descripcion: "Bache profundo frente al número 5-32", Estado: client.EstadoPendiente, FechaCreacion: "2026-03-02T09:15:00Z", Usuario: "funcionario", Prioridad: client.PrioridadAlta},
	{Titulo: "Luminaria apagada", Descripcion: "Poste sin luz en el parque Pedro Moncayo", Estado: client.EstadoEnProgreso, FechaCreacion: "2026-02-27T18:40:00Z", Usuario: "funcionario", Prioridad: client.PrioridadMedia},
	{Titulo: "Recolección de escombros", Descripcion: "Escombros abandonados en la vía a Esperanza", Estado: client.EstadoCompletado, FechaCreacion: "2026-02-10T08:00:00Z", Usuario: "admin", Prioridad: client.PrioridadBaja},
	{Titulo: "Poda de árboles", Descripcion: "Ramas sobre el tendido eléctrico en la avenida Mariano Acosta", Estado: client.EstadoPendiente, FechaCreacion: "2026-03-05T11:20:00Z", Usuario: "funcionario", Prioridad: client.PrioridadMedia},
}

var seedMensajes = []client.Mensaje{
	{Contenido: "Reunión de planificación el lunes a las 9h00", Remitente: "admin", Destinatario: "funcionario", FechaEnvio: "2026-03-01T15:00:00Z"},
	{Contenido: "Informe de avance del Parque Central adjunto", Remitente: "funcionario", Destinatario: "admin", FechaEnvio: "2026-03-03T10:30:00Z"},
	{Contenido: "Recordatorio: feria de emprendedores", Remitente: "admin", Destinatario: "funcionario", FechaEnvio: "2026-02-20T08:45:00Z", Leido: true},
}

var seedFerias = []client.Feria{
	{Nombre: "Feria de Emprendedores", Descripcion: "Productos locales y artesanías", FechaInicio: "2026-04-10", FechaFin: "2026-04-12", Ubicacion: "Plaza de la Ciudad", Estado: client.EstadoProgramada},
	{Nombre: "Feria Gastronómica", Descripcion: "Nogadas, helados de paila y comida típica", FechaInicio: "2026-03-06", FechaFin: "2026-03-08", Ubicacion: "Parque Boyacá", Estado: client.EstadoActiva},
	{Nombre: "Feria del Libro", FechaInicio: "2025-11-14", FechaFin: "2025-11-16", Ubicacion: "Centro Cultural El Cuartel", Estado: client.EstadoFinalizada},
}

var seedLocales = []client.LocalComercial{
	{Nombre: "Heladería Rosalía Suárez", Direccion: "Olmedo 7-75", Propietario: "Rosalía Suárez", Telefono: "062958722", TipoNegocio: "alimentos", Estado: client.EstadoActivo, FechaRegistro: "2024-06-01"},
	{Nombre: "Ferretería El Constructor", Direccion: "Av. Teodoro Gómez 4-12", Propietario: "Luis Pabón", Email: "ventas@elconstructor.ec", TipoNegocio: "ferretería", Estado: client.EstadoActivo, FechaRegistro: "2025-01-20"},
	{Nombre: "Bazar La Merced", Direccion: "Sucre 9-40", Propietario: "Ana Játiva", TipoNegocio: "bazar", Estado: client.EstadoSuspendido, FechaRegistro: "2023-09-12"},
}

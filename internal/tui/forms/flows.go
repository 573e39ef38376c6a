// ABOUTME: Per-section form steps and field validators
// ABOUTME: Required text, ISO dates, amounts and percentages

package forms

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
)

var flows = map[menu.Section][]step{
	menu.SectionProyectos: {
		{name: "Datos", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Nombre", &f.nombre, required),
				huh.NewText().Title("Descripción").CharLimit(500).Value(&f.descripcion),
				text("Responsable", &f.responsable, nil),
				text("Categoría", &f.categoria, nil),
			)
		}},
		{name: "Planificación", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Fecha de inicio (AAAA-MM-DD)", &f.fechaInicio, optionalDate),
				text("Fecha de fin (AAAA-MM-DD)", &f.fechaFin, optionalDate),
				text("Presupuesto (USD)", &f.presupuesto, optionalAmount),
				text("Avance (%)", &f.progreso, validatePercentage),
				huh.NewSelect[string]().
					Title("Estado inicial").
					Options(
						huh.NewOption("Pendiente de aprobación", client.EstadoPendiente),
						huh.NewOption("Planificación", client.EstadoPlanificacion),
					).
					Value(&f.estado),
			)
		}},
	},
	menu.SectionRequerimientos: {
		{name: "Datos", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Título", &f.titulo, required),
				huh.NewText().Title("Descripción").CharLimit(1000).Value(&f.descripcion),
			)
		}},
		{name: "Prioridad", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				huh.NewSelect[string]().
					Title("Prioridad").
					Description("Use ↑/↓ para elegir, Enter para confirmar").
					Options(
						huh.NewOption("Alta", client.PrioridadAlta),
						huh.NewOption("Media", client.PrioridadMedia),
						huh.NewOption("Baja", client.PrioridadBaja),
					).
					Value(&f.prioridad),
			)
		}},
	},
	menu.SectionMensajes: {
		{name: "Mensaje", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Destinatario", &f.destinatario, required),
				huh.NewText().Title("Contenido").CharLimit(2000).Value(&f.contenido).Validate(required),
			)
		}},
	},
	menu.SectionFerias: {
		{name: "Datos", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Nombre", &f.nombre, required),
				huh.NewText().Title("Descripción").CharLimit(500).Value(&f.descripcion),
				text("Ubicación", &f.ubicacion, required),
			)
		}},
		{name: "Fechas", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Fecha de inicio (AAAA-MM-DD)", &f.fechaInicio, optionalDate),
				text("Fecha de fin (AAAA-MM-DD)", &f.fechaFin, optionalDate),
			)
		}},
	},
	menu.SectionLocales: {
		{name: "Datos", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Nombre", &f.nombre, required),
				text("Dirección", &f.direccion, required),
				text("Tipo de negocio", &f.tipoNegocio, nil),
			)
		}},
		{name: "Contacto", build: func(f *fields) *huh.Group {
			return huh.NewGroup(
				text("Propietario", &f.propietario, required),
				text("Teléfono", &f.telefono, nil),
				text("Correo", &f.email, optionalEmail),
			)
		}},
	},
}

func text(title string, value *string, validate func(string) error) *huh.Input {
	in := huh.NewInput().Title(title).CharLimit(200).Value(value)
	if validate != nil {
		in = in.Validate(validate)
	}
	return in
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("campo requerido")
	}
	return nil
}

func optionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return errors.New("use el formato AAAA-MM-DD")
	}
	return nil
}

func optionalAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return errors.New("debe ser un monto positivo")
	}
	return nil
}

func validatePercentage(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 100 {
		return errors.New("debe estar entre 0 y 100")
	}
	return nil
}

func optionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("correo inválido")
	}
	return nil
}

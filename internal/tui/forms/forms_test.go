// ABOUTME: Tests for record creation forms
// ABOUTME: Validates input building, step flow and field validation

package forms

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
)

func TestNew_RecordSectionsOnly(t *testing.T) {
	for _, s := range []menu.Section{
		menu.SectionProyectos, menu.SectionRequerimientos, menu.SectionMensajes,
		menu.SectionFerias, menu.SectionLocales,
	} {
		if f, ok := New(s); !ok || f.Section() != s || f.Step() != 1 {
			t.Errorf("New(%s) = %v", s, ok)
		}
	}
	for _, s := range []menu.Section{menu.SectionDashboard, menu.SectionAprobaciones, menu.SectionLogout} {
		if _, ok := New(s); ok {
			t.Errorf("New(%s) should have no form", s)
		}
	}
}

func TestDefaults(t *testing.T) {
	f, _ := New(menu.SectionRequerimientos)
	in := f.Input().(client.RequerimientoInput)
	if in.Prioridad != client.PrioridadMedia {
		t.Errorf("expected default priority media, got %q", in.Prioridad)
	}

	p, _ := New(menu.SectionProyectos)
	if got := p.Input().(client.ProyectoInput); got.Estado != client.EstadoPendiente || got.Progreso != 0 {
		t.Errorf("unexpected project defaults %+v", got)
	}
}

func TestInput_ProyectoParsesNumbers(t *testing.T) {
	f, _ := New(menu.SectionProyectos)
	f.values.nombre = "  Parque Lineal  "
	f.values.presupuesto = "125000.50"
	f.values.progreso = " 40 "
	f.values.fechaInicio = "2026-05-01"

	in := f.Input().(client.ProyectoInput)
	if in.Nombre != "Parque Lineal" {
		t.Errorf("expected trimmed name, got %q", in.Nombre)
	}
	if in.Presupuesto != 125000.50 || in.Progreso != 40 {
		t.Errorf("unexpected numbers %+v", in)
	}
	if in.FechaInicio != "2026-05-01" {
		t.Errorf("unexpected date %q", in.FechaInicio)
	}
}

func TestInput_PerSection(t *testing.T) {
	m, _ := New(menu.SectionMensajes)
	m.values.destinatario = "funcionario"
	m.values.contenido = "Revisar informe"
	if in := m.Input().(client.MensajeInput); in.Destinatario != "funcionario" || in.Contenido != "Revisar informe" {
		t.Errorf("unexpected mensaje %+v", in)
	}

	l, _ := New(menu.SectionLocales)
	l.values.nombre = "Tienda"
	l.values.email = "tienda@ibarra.ec"
	if in := l.Input().(client.LocalComercialInput); in.Nombre != "Tienda" || in.Email != "tienda@ibarra.ec" {
		t.Errorf("unexpected local %+v", in)
	}

	fe, _ := New(menu.SectionFerias)
	fe.values.ubicacion = "Parque Pedro Moncayo"
	if in := fe.Input().(client.FeriaInput); in.Ubicacion != "Parque Pedro Moncayo" {
		t.Errorf("unexpected feria %+v", in)
	}
}

func TestAdvanceStep(t *testing.T) {
	f, _ := New(menu.SectionFerias)
	f.values.nombre = "Feria del Maíz"

	_, cmd := f.advanceStep()
	if f.Step() != 2 {
		t.Fatalf("expected step 2, got %d", f.Step())
	}
	if cmd == nil {
		t.Error("expected the next form to initialize")
	}

	_, cmd = f.advanceStep()
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(SubmittedMsg)
	if !ok || msg.Section != menu.SectionFerias {
		t.Fatalf("unexpected message %#v", cmd())
	}
	if in := msg.Input.(client.FeriaInput); in.Nombre != "Feria del Maíz" {
		t.Errorf("unexpected input %+v", in)
	}
}

func TestEscCancels(t *testing.T) {
	f, _ := New(menu.SectionMensajes)
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %#v", cmd())
	}
}

func TestRenderProgress_Width(t *testing.T) {
	f, _ := New(menu.SectionProyectos)
	f.SetWidth(100)

	for i, line := range strings.Split(f.renderProgress(), "\n") {
		if w := lipgloss.Width(line); w != 99 {
			t.Errorf("line %d width = %d, want 99", i, w)
		}
	}

	f.SetWidth(20)
	for i, line := range strings.Split(f.renderProgress(), "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("narrow line %d width = %d, want 60", i, w)
		}
	}
}

func TestView(t *testing.T) {
	f, _ := New(menu.SectionLocales)
	view := f.View()
	for _, want := range []string{"Locales comerciales", "Datos", "Contacto", "Paso 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		input    string
		wantErr  bool
	}{
		{"required ok", required, "x", false},
		{"required blank", required, "  ", true},
		{"date empty", optionalDate, "", false},
		{"date ok", optionalDate, "2026-03-05", false},
		{"date bad", optionalDate, "05/03/2026", true},
		{"amount empty", optionalAmount, "", false},
		{"amount ok", optionalAmount, "1500.75", false},
		{"amount negative", optionalAmount, "-1", true},
		{"amount text", optionalAmount, "mil", true},
		{"percent 0", validatePercentage, "0", false},
		{"percent 100", validatePercentage, "100", false},
		{"percent 7.5", validatePercentage, "7.5", false},
		{"percent over", validatePercentage, "101", true},
		{"percent empty", validatePercentage, "", true},
		{"email empty", optionalEmail, "", false},
		{"email ok", optionalEmail, "ana@ibarra.gob.ec", false},
		{"email bad", optionalEmail, "ana@", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validate(tc.input)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for input %q", tc.input)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tc.input, err)
			}
		})
	}
}

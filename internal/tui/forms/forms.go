// ABOUTME: Record creation forms as bubbletea models
// ABOUTME: Step-by-step huh forms with a progress panel, one flow per section

package forms

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/tui/icons"
	"github.com/gadibarra/panel-municipal/internal/tui/menu"
	"github.com/gadibarra/panel-municipal/internal/tui/styles"
)

// SubmittedMsg carries the collected input: a client.ProyectoInput,
// RequerimientoInput, MensajeInput, FeriaInput or LocalComercialInput.
type SubmittedMsg struct {
	Section menu.Section
	Input   any
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

type step struct {
	name  string
	build func(f *fields) *huh.Group
}

// fields holds every editable value as text for huh.
type fields struct {
	nombre      string
	descripcion string
	responsable string
	categoria   string
	fechaInicio string
	fechaFin    string
	presupuesto string
	progreso    string
	estado      string

	titulo    string
	prioridad string

	contenido    string
	destinatario string

	ubicacion string

	direccion   string
	propietario string
	telefono    string
	email       string
	tipoNegocio string
}

// Form manages a creation flow as a bubbletea model
type Form struct {
	section menu.Section
	steps   []step
	step    int
	form    *huh.Form
	values  *fields
	width   int
}

// New returns the creation form for a record section.
func New(section menu.Section) (*Form, bool) {
	steps, ok := flows[section]
	if !ok {
		return nil, false
	}
	f := &Form{
		section: section,
		steps:   steps,
		values:  &fields{prioridad: client.PrioridadMedia, progreso: "0", estado: client.EstadoPendiente},
	}
	f.form = f.buildStep()
	return f, true
}

// Section returns the section the form creates records for
func (f *Form) Section() menu.Section { return f.section }

// Step returns the 1-based current step
func (f *Form) Step() int { return f.step + 1 }

func (f *Form) buildStep() *huh.Form {
	s := f.steps[f.step]
	group := s.build(f.values).
		Title(fmt.Sprintf("Paso %d: %s", f.step+1, s.name))
	return huh.NewForm(group).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f.advanceStep()
	case huh.StateAborted:
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	return f, cmd
}

func (f *Form) advanceStep() (tea.Model, tea.Cmd) {
	if f.step+1 < len(f.steps) {
		f.step++
		f.form = f.buildStep()
		return f, f.form.Init()
	}
	section, input := f.section, f.Input()
	return f, func() tea.Msg { return SubmittedMsg{Section: section, Input: input} }
}

// Input builds the typed request body from the current values.
func (f *Form) Input() any {
	v := f.values
	trim := strings.TrimSpace
	switch f.section {
	case menu.SectionProyectos:
		return client.ProyectoInput{
			Nombre:      trim(v.nombre),
			Descripcion: trim(v.descripcion),
			Responsable: trim(v.responsable),
			Categoria:   trim(v.categoria),
			FechaInicio: trim(v.fechaInicio),
			FechaFin:    trim(v.fechaFin),
			Presupuesto: parseFloat(v.presupuesto),
			Progreso:    parseFloat(v.progreso),
			Estado:      v.estado,
		}
	case menu.SectionRequerimientos:
		return client.RequerimientoInput{
			Titulo:      trim(v.titulo),
			Descripcion: trim(v.descripcion),
			Prioridad:   v.prioridad,
		}
	case menu.SectionMensajes:
		return client.MensajeInput{
			Contenido:    trim(v.contenido),
			Destinatario: trim(v.destinatario),
		}
	case menu.SectionFerias:
		return client.FeriaInput{
			Nombre:      trim(v.nombre),
			Descripcion: trim(v.descripcion),
			Ubicacion:   trim(v.ubicacion),
			FechaInicio: trim(v.fechaInicio),
			FechaFin:    trim(v.fechaFin),
		}
	case menu.SectionLocales:
		return client.LocalComercialInput{
			Nombre:      trim(v.nombre),
			Direccion:   trim(v.direccion),
			Propietario: trim(v.propietario),
			Telefono:    trim(v.telefono),
			Email:       trim(v.email),
			TipoNegocio: trim(v.tipoNegocio),
		}
	}
	return nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

// SetWidth sets the form width for proper rendering
func (f *Form) SetWidth(width int) {
	f.width = width
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.New.String() + " Nuevo registro: " + f.section.Title()))
	sb.WriteString("\n")
	sb.WriteString(f.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(f.form.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render(styles.KeyHint("tab", "siguiente campo", "enter", "continuar", "esc", "cancelar")))
	return sb.String()
}

// renderProgress renders the step progress panel. Every line is exactly
// the panel width.
func (f *Form) renderProgress() string {
	width := max(60, f.width-1)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Accent)

	var steps []string
	for i, s := range f.steps {
		var indicator string
		var nameStyle lipgloss.Style
		switch {
		case i < f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case i == f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		steps = append(steps, indicator+" "+nameStyle.Render(s.name))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │"
	barWidth := width - 5
	filledWidth := ((f.step + 1) * barWidth) / len(f.steps)
	bar := lipgloss.NewStyle().Foreground(styles.Accent).Render(strings.Repeat("━", filledWidth)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filledWidth))

	title := "Progreso"
	topFill := max(0, width-5-lipgloss.Width(title))
	stepsPad := max(0, width-4-lipgloss.Width(stepsLine))

	return borderStyle.Render(strings.Join([]string{
		"┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", topFill) + "┐",
		"│ " + stepsLine + strings.Repeat(" ", stepsPad) + " │",
		"│  " + bar + " │",
		"└" + strings.Repeat("─", width-2) + "┘",
	}, "\n"))
}

package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(24)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	okBar   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnBar = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	overBar = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Row is one employee's week.
type Row struct {
	Employee models.Employee
	Workload models.WorkloadSnapshot
}

type Model struct {
	viewport viewport.Model
	week     time.Time
	rows     []Row
	loc      *time.Location
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), loc: time.Local}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "No active employees. Add one with 'crewplan employee add'."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetWeek replaces the rows shown for the week starting at week.
func (m *Model) SetWeek(week time.Time, loc *time.Location, rows []Row) {
	m.week = week
	m.loc = loc
	m.rows = rows
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Content(m.week, m.loc, m.rows))
}

// Content renders the weekly board as plain text with styled bars.
func Content(week time.Time, loc *time.Location, rows []Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week of %s\n\n", week.Format(constants.DateFormat))
	for _, r := range rows {
		w := r.Workload
		fmt.Fprintf(&b, "%s %s %3.0f%%  %s/%s\n",
			nameStyle.Render(r.Employee.Name), Bar(w.UtilizationPercent), w.UtilizationPercent,
			hours(w.CommittedHours), hours(w.Capacity))
		if len(w.Tasks) == 0 {
			b.WriteString("  " + mutedStyle.Render("no tasks") + "\n")
		}
		for _, t := range w.Tasks {
			when := t.StartTime.In(loc).Format("Mon 01-02 15:04")
			fmt.Fprintf(&b, "  %s %s %s\n", timeStyle.Render(when), t.Title, mutedStyle.Render(string(t.Type)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Bar renders a twenty-cell utilization gauge.
func Bar(percent float64) string {
	cells := min(max(int(percent/5), 0), 20)
	bar := strings.Repeat("█", cells) + strings.Repeat("░", 20-cells)
	switch {
	case percent > 100:
		return overBar.Render(bar)
	case percent >= 80:
		return warnBar.Render(bar)
	default:
		return okBar.Render(bar)
	}
}

func hours(h float64) string {
	return fmt.Sprintf("%gh", float64(int(h*10+0.5))/10)
}

package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	OKStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func Header(format string, args ...any) {
	fmt.Println(HeaderStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...any) {
	fmt.Println(OKStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...any) {
	fmt.Println(WarnStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// UtilizationBar renders a ten-cell utilization gauge colored by load.
func UtilizationBar(percent float64) string {
	cells := int(percent / 10)
	if cells > 10 {
		cells = 10
	}
	if cells < 0 {
		cells = 0
	}
	bar := ""
	for i := range 10 {
		if i < cells {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	style := OKStyle
	switch {
	case percent > 100:
		style = ErrorStyle
	case percent >= 80:
		style = WarnStyle
	}
	return style.Render(bar)
}

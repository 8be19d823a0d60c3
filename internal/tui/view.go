package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateBoard:
		content = docStyle.Render(m.board.View())
	case StateTasks:
		content = docStyle.Render(m.taskList.View())
	case StateAdding:
		content = docStyle.Render(m.form.View())
	case StateConfirmCancel:
		content = m.viewConfirmCancel()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Board", "Tasks"} {
		if m.state == SessionState(i) || (i == int(StateTasks) && m.state > StateTasks) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render("  " + m.status)
	}
	return statusStyle.Render("  " + m.status)
}

func (m Model) viewConfirmCancel() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Cancel this task and remove its calendar event?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/tui/components/tasklist"
)

// actionResultMsg reports a finished scheduler call.
type actionResultMsg struct {
	message string
	err     error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateAdding:
		return m.updateForm(msg)
	case StateConfirmCancel:
		return m.updateConfirmCancel(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// tabs, status line and help
		contentHeight := msg.Height - v - 4
		m.board.SetSize(msg.Width-h, contentHeight)
		m.taskList.SetSize(msg.Width-h, contentHeight)
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.message)
		}
		m.reload()
		return m, nil

	case tasklist.AddTaskMsg:
		m.taskForm = &TaskFormModel{
			Type:  models.TaskTypeInstallation,
			Start: m.defaultStart().Format(constants.DateTimeFormat),
			Hours: "8",
		}
		m.form = NewTaskForm(m.taskForm, m.loc)
		m.state = StateAdding
		return m, m.form.Init()

	case tasklist.StartTaskMsg:
		return m, m.setTaskStatus(msg.ID, models.TaskStatusInProgress)

	case tasklist.CompleteTaskMsg:
		return m, m.setTaskStatus(msg.ID, models.TaskStatusCompleted)

	case tasklist.CancelTaskMsg:
		m.cancelID = msg.ID
		m.state = StateConfirmCancel
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevWeek):
			m.week = m.week.AddDate(0, 0, -7)
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.NextWeek):
			m.week = m.week.AddDate(0, 0, 7)
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.Optimize):
			m.setStatus("Assigning planned tasks...")
			return m, m.optimize()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateBoard:
		m.board, cmd = m.board.Update(msg)
	case StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateTasks
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateTasks
		return m, tea.Batch(cmd, m.createTask(*m.taskForm))
	case huh.StateAborted:
		m.state = StateTasks
	}
	return m, cmd
}

func (m Model) updateConfirmCancel(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.state = StateTasks
		return m, m.setTaskStatus(m.cancelID, models.TaskStatusCancelled)
	case "n", "N", "esc", "q":
		m.state = StateTasks
		m.cancelID = ""
	}
	return m, nil
}

// defaultStart proposes the next working morning inside the shown week.
func (m Model) defaultStart() time.Time {
	day := time.Now().In(m.loc)
	if day.Before(m.week) {
		day = m.week
	}
	start := time.Date(day.Year(), day.Month(), day.Day()+1, constants.DefaultWorkStartHour, 0, 0, 0, m.loc)
	for start.Weekday() == time.Saturday || start.Weekday() == time.Sunday {
		start = start.AddDate(0, 0, 1)
	}
	return start
}

func (m Model) createTask(fm TaskFormModel) tea.Cmd {
	return func() tea.Msg {
		req, err := fm.Request(m.loc)
		if err != nil {
			return actionResultMsg{err: err}
		}
		out, err := m.scheduler.CreateAndSchedule(m.ctx, req)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{message: out.Message, err: out.Err()}
	}
}

func (m Model) setTaskStatus(id string, status models.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		t, err := m.scheduler.SetTaskStatus(m.ctx, id, status)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{message: "Task \"" + t.Title + "\" is now " + string(t.Status)}
	}
}

func (m Model) optimize() tea.Cmd {
	start, end := m.week, m.week.AddDate(0, 0, 7)
	return func() tea.Msg {
		res, err := m.scheduler.Optimize(m.ctx, start, end)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{message: res.Message}
	}
}

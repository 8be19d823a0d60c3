package tasklist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

type AddTaskMsg struct{}

type CancelTaskMsg struct {
	ID string
}

type StartTaskMsg struct {
	ID string
}

type CompleteTaskMsg struct {
	ID string
}

type Item struct {
	Task     models.Task
	Assignee string
	Location *time.Location
}

func (i Item) Title() string {
	if !i.Task.Assigned() {
		return "⚠ " + i.Task.Title
	}
	return i.Task.Title
}

func (i Item) Description() string {
	who := i.Assignee
	if !i.Task.Assigned() {
		who = "unassigned"
	}
	return fmt.Sprintf("%s | %gh | %s | %s | %s",
		i.Task.StartTime.In(i.Location).Format(constants.DateTimeFormat),
		i.Task.EstimatedHours, i.Task.Type, who, i.Task.Status)
}

func (i Item) FilterValue() string { return i.Task.Title + " " + i.Assignee }

type KeyMap struct {
	Add      key.Binding
	Start    key.Binding
	Complete key.Binding
	Cancel   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []Item, width, height int) Model {
	l := list.New(toListItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.Complete, keys.Cancel}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.Complete, keys.Cancel}
	}

	return Model{list: l, keys: keys}
}

func toListItems(items []Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (m *Model) SetItems(items []Item) {
	m.list.SetItems(toListItems(items))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTaskMsg{} }
		case key.Matches(msg, m.keys.Start):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return StartTaskMsg{ID: i.Task.ID} }
			}
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CompleteTaskMsg{ID: i.Task.ID} }
			}
		case key.Matches(msg, m.keys.Cancel):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CancelTaskMsg{ID: i.Task.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No tasks this week.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

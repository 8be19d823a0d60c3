package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/scheduler"
	"github.com/julianstephens/crewplan/internal/tui/components/board"
	"github.com/julianstephens/crewplan/internal/tui/components/tasklist"
	"github.com/julianstephens/crewplan/internal/workload"
)

type SessionState int

const (
	StateBoard SessionState = iota
	StateTasks
	StateAdding
	StateConfirmCancel
)

// tabCount is the number of tab-navigable states
const tabCount = 2

// Store is the read side the board needs.
type Store interface {
	GetEmployees(includeInactive bool) ([]models.Employee, error)
	ListTasks(models.TaskFilter) ([]models.Task, error)
}

type TaskFormModel struct {
	Title  string
	Type   models.TaskType
	Start  string
	Hours  string
	Indoor bool
}

type Model struct {
	ctx       context.Context
	store     Store
	scheduler *scheduler.Scheduler
	loc       *time.Location
	state     SessionState
	keys      KeyMap
	help      help.Model
	board     board.Model
	taskList  tasklist.Model
	form      *huh.Form
	taskForm  *TaskFormModel
	week      time.Time
	status    string
	statusErr bool
	cancelID  string
	quitting  bool
	width     int
	height    int
}

func NewModel(ctx context.Context, store Store, sched *scheduler.Scheduler, loc *time.Location) Model {
	week, _ := workload.WeekBounds(time.Now(), loc)
	m := Model{
		ctx:       ctx,
		store:     store,
		scheduler: sched,
		loc:       loc,
		state:     StateBoard,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		board:     board.New(0, 0),
		taskList:  tasklist.New(nil, 0, 0),
		week:      week,
	}
	m.reload()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.PrevWeek, m.keys.NextWeek, m.keys.Optimize, m.keys.Quit, m.keys.Help}
	if m.state == StateTasks {
		tk := tasklist.DefaultKeyMap()
		keys = append(keys, tk.Add, tk.Start, tk.Complete, tk.Cancel)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevWeek, m.keys.NextWeek, m.keys.Refresh}
	actions := []key.Binding{m.keys.Optimize}
	if m.state == StateTasks {
		tk := tasklist.DefaultKeyMap()
		actions = append(actions, tk.Add, tk.Start, tk.Complete, tk.Cancel)
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload refreshes the board and task list for the current week.
func (m *Model) reload() {
	start, end := m.week, m.week.AddDate(0, 0, 7)

	employees, err := m.store.GetEmployees(false)
	if err != nil {
		m.setError(err)
		return
	}
	names := make(map[string]string, len(employees))
	rows := make([]board.Row, 0, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
		w, err := m.scheduler.Accountant().Snapshot(e, start, end)
		if err != nil {
			m.setError(err)
			return
		}
		rows = append(rows, board.Row{Employee: e, Workload: w})
	}
	m.board.SetWeek(start, m.loc, rows)

	tasks, err := m.store.ListTasks(models.TaskFilter{
		Statuses:    models.ActiveStatuses,
		StartFrom:   start,
		StartBefore: end,
	})
	if err != nil {
		m.setError(err)
		return
	}
	items := make([]tasklist.Item, len(tasks))
	for i, t := range tasks {
		items[i] = tasklist.Item{Task: t, Assignee: names[t.EmployeeID], Location: m.loc}
	}
	m.taskList.SetItems(items)
}

func (m *Model) setError(err error) {
	logger.Warn("Board action failed", "error", err)
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

package workload

import (
	"time"

	"github.com/julianstephens/crewplan/internal/models"
)

// TaskSource lists tasks; the store satisfies it, and so does Overlay.
type TaskSource interface {
	ListTasks(models.TaskFilter) ([]models.Task, error)
}

type EmployeeSource interface {
	GetEmployee(id string) (models.Employee, error)
}

// Accountant derives committed hours and slack from the task store. It keeps
// no state of its own, so every answer reflects the store at call time.
type Accountant struct {
	employees EmployeeSource
	tasks     TaskSource
	loc       *time.Location
}

func New(employees EmployeeSource, tasks TaskSource, loc *time.Location) *Accountant {
	if loc == nil {
		loc = time.UTC
	}
	return &Accountant{employees: employees, tasks: tasks, loc: loc}
}

// WithTasks returns an accountant reading tasks from src instead.
func (a *Accountant) WithTasks(src TaskSource) *Accountant {
	return &Accountant{employees: a.employees, tasks: src, loc: a.loc}
}

// Workload reports the employee's load over [start, end).
func (a *Accountant) Workload(employeeID string, start, end time.Time) (models.WorkloadSnapshot, error) {
	e, err := a.employees.GetEmployee(employeeID)
	if err != nil {
		return models.WorkloadSnapshot{}, err
	}
	return a.Snapshot(e, start, end)
}

// Snapshot is Workload for an already loaded employee.
func (a *Accountant) Snapshot(e models.Employee, start, end time.Time) (models.WorkloadSnapshot, error) {
	tasks, err := a.tasks.ListTasks(models.TaskFilter{
		EmployeeID:  e.ID,
		Statuses:    models.ActiveStatuses,
		StartFrom:   start,
		StartBefore: end,
	})
	if err != nil {
		return models.WorkloadSnapshot{}, err
	}

	var committed float64
	counted := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.CountsTowardCapacity() {
			continue
		}
		committed += t.EstimatedHours
		counted = append(counted, t)
	}
	tasks = counted

	capacity := e.WeeklyHourCap * spanDays(start, end) / 7
	snap := models.WorkloadSnapshot{
		EmployeeID:     e.ID,
		Start:          start,
		End:            end,
		CommittedHours: committed,
		Capacity:       capacity,
		AvailableHours: capacity - committed,
		Tasks:          tasks,
	}
	if capacity > 0 {
		snap.UtilizationPercent = committed / capacity * 100
	}
	return snap, nil
}

// WeekWorkload reports the load of the Monday-aligned week containing at.
func (a *Accountant) WeekWorkload(e models.Employee, at time.Time) (models.WorkloadSnapshot, error) {
	start, end := WeekBounds(at, a.loc)
	return a.Snapshot(e, start, end)
}

// WeekBounds returns the Monday 00:00 to next Monday 00:00 window containing at.
func WeekBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	d := at.In(loc)
	offset := (int(d.Weekday()) + 6) % 7
	start := time.Date(d.Year(), d.Month(), d.Day()-offset, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 7)
}

// spanDays measures [start, end) in wall-clock days, so a week spanning a
// DST change still counts as seven.
func spanDays(start, end time.Time) float64 {
	end = end.In(start.Location())
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	whole := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Sub(time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC))
	frac := clock(end) - clock(start)
	return (whole + frac).Hours() / 24
}

func clock(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/workload"
)

// Candidate is an employee who passed every check for a task window.
type Candidate struct {
	Employee        models.Employee
	Score           float64
	CalendarChecked bool
	Week            models.WorkloadSnapshot
}

// Selector picks the best employee for a task window.
type Selector struct {
	employees  EmployeeLister
	calendar   AvailabilityOracle
	accountant *workload.Accountant
}

func NewSelector(employees EmployeeLister, calendar AvailabilityOracle, accountant *workload.Accountant) *Selector {
	return &Selector{employees: employees, calendar: calendar, accountant: accountant}
}

func (s *Selector) with(employees EmployeeLister, accountant *workload.Accountant) *Selector {
	return &Selector{employees: employees, calendar: s.calendar, accountant: accountant}
}

// Select returns the highest scoring candidate, or nil when nobody qualifies.
func (s *Selector) Select(ctx context.Context, taskType models.TaskType, start time.Time, hours float64) (*Candidate, error) {
	ranked, err := s.Rank(ctx, taskType, start, hours)
	if err != nil || len(ranked) == 0 {
		return nil, err
	}
	return &ranked[0], nil
}

// Rank returns every qualifying candidate, best first. Equal scores keep the
// employee listing order (name, then id).
func (s *Selector) Rank(ctx context.Context, taskType models.TaskType, start time.Time, hours float64) ([]Candidate, error) {
	employees, err := s.employees.GetEmployees(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var ranked []Candidate
	for _, e := range employees {
		if !e.Active || !e.Class.Compatible(taskType) {
			continue
		}
		c, reason, err := s.evaluate(ctx, e, taskType, start, hours, "")
		if err != nil {
			return nil, err
		}
		if reason != "" {
			logger.Debug("Employee disqualified", "employee", e.Name, "reason", reason)
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Evaluate scores one employee. A non-empty reason means the employee is
// disqualified for the window.
func (s *Selector) Evaluate(ctx context.Context, e models.Employee, taskType models.TaskType, start time.Time, hours float64) (Candidate, string, error) {
	if !e.Active {
		return Candidate{}, fmt.Sprintf("%s is inactive", e.Name), nil
	}
	if !e.Class.Compatible(taskType) {
		return Candidate{}, fmt.Sprintf("%s (%s) cannot take %s tasks", e.Name, e.Class, taskType), nil
	}
	return s.evaluate(ctx, e, taskType, start, hours, "")
}

// evaluate runs the calendar and capacity checks. ignoreEvent excludes the
// task's own event when an assigned task is being moved.
func (s *Selector) evaluate(ctx context.Context, e models.Employee, taskType models.TaskType, start time.Time, hours float64, ignoreEvent string) (Candidate, string, error) {
	end := start.Add(models.HoursToDuration(hours))
	c := Candidate{Employee: e}

	if e.HasCalendar() && s.calendar != nil {
		free, err := s.calendarFree(ctx, e.CalendarID, start, end, ignoreEvent)
		switch {
		case err != nil:
			// unknown availability: no bonus, no disqualification
			logger.Warn("Calendar check failed", "employee", e.Name, "error", err)
		case !free:
			return Candidate{}, fmt.Sprintf("%s is busy between %s and %s", e.Name,
				start.Format(constants.DateTimeFormat), end.Format(constants.TimeFormat)), nil
		default:
			c.CalendarChecked = true
			c.Score += constants.ScoreCalendarFree
		}
	}

	week, err := s.accountant.WeekWorkload(e, start)
	if err != nil {
		return Candidate{}, "", fmt.Errorf("failed to compute workload for %s: %w", e.Name, err)
	}
	if week.AvailableHours < hours {
		return Candidate{}, fmt.Sprintf("%s has %.1fh left in the week of %s, needs %.1fh", e.Name,
			week.AvailableHours, week.Start.Format(constants.DateFormat), hours), nil
	}
	c.Week = week
	c.Score += week.AvailableHours / e.WeeklyHourCap * constants.ScoreSlackWeight

	if e.Class.Specialist(taskType) {
		c.Score += constants.ScoreSpecialist
	}
	return c, "", nil
}

func (s *Selector) calendarFree(ctx context.Context, calendarID string, start, end time.Time, ignoreEvent string) (bool, error) {
	if ignoreEvent == "" {
		return s.calendar.IsFree(ctx, calendarID, start, end)
	}
	events, err := s.calendar.Events(ctx, calendarID, start, end)
	if err != nil {
		return false, err
	}
	for _, ev := range events {
		if ev.ID != ignoreEvent && ev.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/julianstephens/crewplan/internal/calendar"
	"github.com/julianstephens/crewplan/internal/constants"
	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/telemetry"
	"github.com/julianstephens/crewplan/internal/workload"
)

// PlanTask stores a planned task without an assignee for a later Optimize run.
func (s *Scheduler) PlanTask(ctx context.Context, req TaskRequest) (models.Task, error) {
	if req.Priority == 0 {
		req.Priority = constants.DefaultPriority
	}
	if err := req.validate(); err != nil {
		return models.Task{}, err
	}
	task := s.newTask(req)
	if err := s.commit(ctx, []models.Task{task}); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// RescheduleTask moves a task to a new window. Weather-dependent installations
// pass the weather gate again, and an assignee must still have room for it.
func (s *Scheduler) RescheduleTask(ctx context.Context, id string, start time.Time, hours float64) (out Outcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.reschedule", attribute.String("task.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	task, err := s.store.GetTask(id)
	if err != nil {
		return Outcome{}, err
	}
	if task.Status.Terminal() {
		return Outcome{}, apperrors.Invalidf("task %s is %s and cannot be rescheduled", task.ID, task.Status)
	}
	if hours <= 0 {
		hours = task.EstimatedHours
	}
	if err := models.ValidateHours(hours); err != nil {
		return Outcome{}, apperrors.Invalidf("%v", err)
	}
	if start.IsZero() {
		return Outcome{}, apperrors.Invalidf("start time is required")
	}

	if gate, blocked := s.weatherGate(ctx, task.Type, task.WeatherDependent, start); blocked {
		return gate, nil
	}

	moved := task
	moved.SetSchedule(start, hours)

	if !task.Assigned() {
		if err := s.commit(ctx, []models.Task{moved}); err != nil {
			return Outcome{}, err
		}
		return Outcome{Task: &moved, Message: fmt.Sprintf("Task %q moved to %s", moved.Title,
			moved.StartTime.In(s.cfg.Location).Format(constants.DateTimeFormat))}, nil
	}

	e, err := s.store.GetEmployee(task.EmployeeID)
	if err != nil {
		return Outcome{}, err
	}

	// the task's current hours and event must not count against its own move
	overlay := workload.NewOverlay(s.store)
	released := task
	released.Status = models.TaskStatusCancelled
	overlay.Put(released)
	sel := s.selector.with(s.store, s.accountant.WithTasks(overlay))

	_, reason, err := sel.evaluate(ctx, e, task.Type, moved.StartTime, hours, task.EventID)
	if err != nil {
		return Outcome{}, err
	}
	if reason != "" {
		return Outcome{Reason: ReasonNoEmployee, Message: reason}, nil
	}

	if err := s.commit(ctx, []models.Task{moved}, e.Stamp()); err != nil {
		return Outcome{}, err
	}
	s.syncEvent(ctx, &moved, e)

	return Outcome{Task: &moved, Message: fmt.Sprintf("Task %q moved to %s for %s", moved.Title,
		moved.StartTime.In(s.cfg.Location).Format(constants.DateTimeFormat), e.Name)}, nil
}

// syncEvent updates the task's existing event, or creates one when the task
// has none yet.
func (s *Scheduler) syncEvent(ctx context.Context, t *models.Task, e models.Employee) {
	if s.calendar == nil || !e.HasCalendar() {
		return
	}
	if t.EventID == "" {
		t.EventID = s.createEvent(ctx, *t, e)
		return
	}
	if err := s.calendar.UpdateEvent(ctx, eventFor(*t, e)); err != nil {
		logger.Warn("Failed to update calendar event", "task", t.ID, "event", t.EventID, "error", err)
	}
}

// ReassignTask hands a task to another employee, who must pass the same
// checks as an explicit assignment. The calendar event moves with the task.
func (s *Scheduler) ReassignTask(ctx context.Context, id, employeeID string) (out Outcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.reassign",
		attribute.String("task.id", id),
		attribute.String("employee.id", employeeID),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	task, err := s.store.GetTask(id)
	if err != nil {
		return Outcome{}, err
	}
	if task.Status.Terminal() {
		return Outcome{}, apperrors.Invalidf("task %s is %s and cannot be reassigned", task.ID, task.Status)
	}
	next, err := s.store.GetEmployee(employeeID)
	if err != nil {
		return Outcome{}, err
	}
	if task.EmployeeID == next.ID {
		return Outcome{Task: &task, Message: fmt.Sprintf("Task %q is already assigned to %s", task.Title, next.Name)}, nil
	}

	c, reason, err := s.selector.Evaluate(ctx, next, task.Type, task.StartTime, task.EstimatedHours)
	if err != nil {
		return Outcome{}, err
	}
	if reason != "" {
		return Outcome{Reason: ReasonNoEmployee, Message: reason}, nil
	}

	stamps := []models.VersionStamp{c.Employee.Stamp()}
	var prev models.Employee
	if task.Assigned() {
		if prev, err = s.store.GetEmployee(task.EmployeeID); err != nil {
			return Outcome{}, err
		}
		stamps = append(stamps, prev.Stamp())
	}

	oldEvent := task.EventID
	task.EmployeeID = next.ID
	task.EventID = ""
	if err := s.commit(ctx, []models.Task{task}, stamps...); err != nil {
		return Outcome{}, err
	}

	s.deleteEvent(ctx, prev.CalendarID, oldEvent)
	task.EventID = s.createEvent(ctx, task, c.Employee)

	return Outcome{Task: &task, Message: fmt.Sprintf("Task %q reassigned to %s", task.Title, next.Name)}, nil
}

// SetTaskStatus applies a status transition. Cancelling a task removes its
// calendar event.
func (s *Scheduler) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	task, err := s.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}
	if task.Status == status {
		return task, nil
	}
	if !task.Status.CanTransition(status) {
		return models.Task{}, apperrors.Invalidf("cannot move task %s from %s to %s", task.ID, task.Status, status)
	}

	var stamps []models.VersionStamp
	var e models.Employee
	if task.Assigned() {
		if e, err = s.store.GetEmployee(task.EmployeeID); err != nil {
			return models.Task{}, err
		}
		stamps = append(stamps, e.Stamp())
	}

	oldEvent := task.EventID
	task.Status = status
	if status == models.TaskStatusCancelled {
		task.EventID = ""
	}
	if err := s.commit(ctx, []models.Task{task}, stamps...); err != nil {
		return models.Task{}, err
	}
	if status == models.TaskStatusCancelled {
		s.deleteEvent(ctx, e.CalendarID, oldEvent)
	}
	logger.Info("Task status changed", "task", task.ID, "status", status)
	return task, nil
}

// DeleteTask removes the task's calendar event, best effort, then the task.
func (s *Scheduler) DeleteTask(ctx context.Context, id string) error {
	task, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if task.Assigned() && task.EventID != "" {
		e, err := s.store.GetEmployee(task.EmployeeID)
		if err != nil {
			logger.Warn("Failed to load assignee for event cleanup", "task", task.ID, "error", err)
		} else {
			s.deleteEvent(ctx, e.CalendarID, task.EventID)
		}
	}
	return s.store.DeleteTask(task.ID)
}

// SuggestInstallationDates proposes up to count weather-safe days starting
// on the preferred date. count 0 returns every qualifying day.
func (s *Scheduler) SuggestInstallationDates(ctx context.Context, hours float64, preferred time.Time, count int) ([]models.InstallationSlot, error) {
	if err := models.ValidateHours(hours); err != nil {
		return nil, apperrors.Invalidf("%v", err)
	}
	q := NewSlotQuery(hours, preferred)
	q.Count = count
	return s.slots.FindInstallationSlots(ctx, q), nil
}

// FindInstallationSlots runs a custom slot query.
func (s *Scheduler) FindInstallationSlots(ctx context.Context, q SlotQuery) []models.InstallationSlot {
	return s.slots.FindInstallationSlots(ctx, q)
}

// Availability reports every active employee's free slots on date along with
// their weekly slack. Employees without a readable calendar get the whole
// working day.
func (s *Scheduler) Availability(ctx context.Context, date time.Time) ([]models.EmployeeAvailability, error) {
	employees, err := s.store.GetEmployees(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	opts := calendar.DefaultSlotOptions()
	opts.WorkStartHour = s.cfg.WorkStartHour
	opts.WorkEndHour = s.cfg.WorkEndHour
	day := calendar.WorkingDay(date, s.cfg.Location, opts)

	out := make([]models.EmployeeAvailability, 0, len(employees))
	for _, e := range employees {
		a := models.EmployeeAvailability{Employee: e, FreeSlots: []models.TimeSlot{day}}
		if e.HasCalendar() && s.calendar != nil {
			slots, err := s.calendar.FreeSlots(ctx, e.CalendarID, date)
			if err != nil {
				logger.Warn("Calendar unavailable, assuming a free day", "employee", e.Name, "error", err)
			} else {
				a.FreeSlots = slots
				a.CalendarChecked = true
			}
		}

		week, err := s.accountant.WeekWorkload(e, date)
		if err != nil {
			return nil, fmt.Errorf("failed to compute workload for %s: %w", e.Name, err)
		}
		a.AvailableHours = week.AvailableHours
		a.UtilizationPercent = week.UtilizationPercent
		out = append(out, a)
	}
	return out, nil
}

// Workload reports an employee's load over [start, end).
func (s *Scheduler) Workload(employeeID string, start, end time.Time) (models.WorkloadSnapshot, error) {
	return s.accountant.Workload(employeeID, start, end)
}

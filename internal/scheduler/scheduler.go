package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/julianstephens/crewplan/internal/constants"
	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/telemetry"
	"github.com/julianstephens/crewplan/internal/workload"
)

// Reason explains why a request produced no task.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonWeather    Reason = "weather"
	ReasonNoEmployee Reason = "no_employee"
)

// Outcome is the result of a scheduling request. Unschedulable requests are
// reported here rather than as errors.
type Outcome struct {
	Task    *models.Task
	Message string
	Reason  Reason
}

func (o Outcome) Scheduled() bool {
	return o.Task != nil
}

// Err converts an unschedulable outcome into an ErrUnschedulable error.
func (o Outcome) Err() error {
	if o.Reason == ReasonNone {
		return nil
	}
	return fmt.Errorf("%s: %w", o.Message, apperrors.ErrUnschedulable)
}

// TaskRequest describes a task to create. Use NewTaskRequest for defaults.
type TaskRequest struct {
	Title            string
	Description      string
	Location         string
	Type             models.TaskType
	Start            time.Time
	DurationHours    float64
	EmployeeID       string
	WeatherDependent bool
	Priority         int
}

func NewTaskRequest(title string, taskType models.TaskType, start time.Time, hours float64) TaskRequest {
	return TaskRequest{
		Title:            title,
		Type:             taskType,
		Start:            start,
		DurationHours:    hours,
		WeatherDependent: true,
		Priority:         constants.DefaultPriority,
	}
}

func (r TaskRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Invalidf("task title cannot be empty")
	}
	if _, err := models.ParseTaskType(string(r.Type)); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	if r.Start.IsZero() {
		return apperrors.Invalidf("start time is required")
	}
	if err := models.ValidateHours(r.DurationHours); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	if r.Priority < constants.MinPriority || r.Priority > constants.MaxPriority {
		return apperrors.Invalidf("priority must be between %d and %d, got %d", constants.MinPriority, constants.MaxPriority, r.Priority)
	}
	return nil
}

// Config holds scheduling parameters.
type Config struct {
	Location      *time.Location
	WorkStartHour int
	WorkEndHour   int
}

func DefaultConfig() Config {
	return Config{
		Location:      time.UTC,
		WorkStartHour: constants.DefaultWorkStartHour,
		WorkEndHour:   constants.DefaultWorkEndHour,
	}
}

type Option func(*Scheduler)

func WithConfig(cfg Config) Option {
	return func(s *Scheduler) { s.cfg = cfg }
}

// WithIDGenerator replaces uuid generation for new tasks.
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) { s.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler assigns tasks to employees. It keeps no state between calls;
// the store is the single source of truth.
type Scheduler struct {
	store      Store
	calendar   AvailabilityOracle
	weather    WeatherOracle
	accountant *workload.Accountant
	selector   *Selector
	slots      *SlotFinder
	cfg        Config
	newID      func() string
	now        func() time.Time
}

// New wires the scheduler. calendar may be nil, in which case calendar checks
// and event sync are skipped.
func New(store Store, calendar AvailabilityOracle, weather WeatherOracle, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		calendar: calendar,
		weather:  weather,
		cfg:      DefaultConfig(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Location == nil {
		s.cfg.Location = time.UTC
	}
	s.accountant = workload.New(store, store, s.cfg.Location)
	s.selector = NewSelector(store, calendar, s.accountant)
	s.slots = NewSlotFinder(weather, s.cfg.Location, s.cfg.WorkStartHour)
	return s
}

func (s *Scheduler) Selector() *Selector {
	return s.selector
}

func (s *Scheduler) Accountant() *workload.Accountant {
	return s.accountant
}

// CreateAndSchedule gates installations on the weather, picks or validates
// an employee, commits the task and syncs it to the employee's calendar.
func (s *Scheduler) CreateAndSchedule(ctx context.Context, req TaskRequest) (out Outcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.create_and_schedule",
		attribute.String("task.type", string(req.Type)),
		attribute.Float64("task.hours", req.DurationHours),
	)
	defer func() {
		telemetry.EndSpan(span, err)
		s.recordOutcome(ctx, req.Type, out, err)
	}()

	if req.Priority == 0 {
		req.Priority = constants.DefaultPriority
	}
	if err := req.validate(); err != nil {
		return Outcome{}, err
	}

	if gate, blocked := s.weatherGate(ctx, req.Type, req.WeatherDependent, req.Start); blocked {
		return gate, nil
	}

	cand, reason, err := s.pickEmployee(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if cand == nil {
		return Outcome{Reason: ReasonNoEmployee, Message: reason}, nil
	}

	task := s.newTask(req)
	task.EmployeeID = cand.Employee.ID
	if err := s.commit(ctx, []models.Task{task}, cand.Employee.Stamp()); err != nil {
		return Outcome{}, err
	}
	task.EventID = s.createEvent(ctx, task, cand.Employee)

	return Outcome{
		Task: &task,
		Message: fmt.Sprintf("Task %q scheduled for %s on %s", task.Title, cand.Employee.Name,
			task.StartTime.In(s.cfg.Location).Format(constants.DateTimeFormat)),
	}, nil
}

func (s *Scheduler) recordOutcome(ctx context.Context, taskType models.TaskType, out Outcome, err error) {
	outcome := "scheduled"
	switch {
	case err != nil:
		outcome = "error"
	case out.Reason != ReasonNone:
		outcome = string(out.Reason)
	}
	telemetry.RecordSchedule(ctx, string(taskType), outcome)
}

// weatherGate blocks weather-dependent installations on days not recommended for installation.
func (s *Scheduler) weatherGate(ctx context.Context, taskType models.TaskType, dependent bool, start time.Time) (Outcome, bool) {
	if taskType != models.TaskTypeInstallation || !dependent {
		return Outcome{}, false
	}
	if rec := s.weather.Recommendation(ctx, start); rec != models.RecommendInstallation {
		date := start.In(s.cfg.Location).Format(constants.DateFormat)
		return Outcome{
			Reason:  ReasonWeather,
			Message: fmt.Sprintf("Weather on %s is not suitable for installation; plan production work instead", date),
		}, true
	}
	return Outcome{}, false
}

// pickEmployee returns the assignee, or nil with a reason when there is none.
func (s *Scheduler) pickEmployee(ctx context.Context, req TaskRequest) (*Candidate, string, error) {
	if req.EmployeeID != "" {
		e, err := s.store.GetEmployee(req.EmployeeID)
		if err != nil {
			return nil, "", err
		}
		c, reason, err := s.selector.Evaluate(ctx, e, req.Type, req.Start, req.DurationHours)
		if err != nil || reason != "" {
			return nil, reason, err
		}
		return &c, "", nil
	}

	c, err := s.selector.Select(ctx, req.Type, req.Start, req.DurationHours)
	if err != nil {
		return nil, "", err
	}
	if c == nil {
		return nil, fmt.Sprintf("No suitable employee available for %s work on %s", req.Type,
			req.Start.In(s.cfg.Location).Format(constants.DateTimeFormat)), nil
	}
	return c, "", nil
}

func (s *Scheduler) newTask(req TaskRequest) models.Task {
	t := models.Task{
		ID:               s.newID(),
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Location:         req.Location,
		Type:             req.Type,
		Status:           models.TaskStatusPlanned,
		WeatherDependent: req.WeatherDependent,
		Priority:         req.Priority,
		CreatedAt:        s.now().UTC().Truncate(time.Second),
	}
	t.SetSchedule(req.Start, req.DurationHours)
	return t
}

func (s *Scheduler) commit(ctx context.Context, tasks []models.Task, stamps ...models.VersionStamp) error {
	err := s.store.CommitTasks(tasks, stamps)
	if errors.Is(err, apperrors.ErrConflict) {
		telemetry.RecordConflict(ctx)
	}
	return err
}

func (s *Scheduler) assign(ctx context.Context, assignments []models.Assignment, stamps []models.VersionStamp) error {
	err := s.store.AssignTasks(assignments, stamps)
	if errors.Is(err, apperrors.ErrConflict) {
		telemetry.RecordConflict(ctx)
	}
	return err
}

func eventFor(t models.Task, e models.Employee) models.CalendarEvent {
	desc := strings.TrimSpace(t.Description)
	if desc != "" {
		desc += "\n\n"
	}
	desc += fmt.Sprintf("Type: %s\nAssigned to: %s", t.Type, e.Name)
	return models.CalendarEvent{
		ID:          t.EventID,
		CalendarID:  e.CalendarID,
		Summary:     t.Title,
		Description: desc,
		Location:    t.Location,
		Start:       t.StartTime,
		End:         t.EndTime,
	}
}

// createEvent puts a committed task on the employee's calendar and stores the
// handle. Failures are logged; the task stays committed without a handle.
func (s *Scheduler) createEvent(ctx context.Context, t models.Task, e models.Employee) string {
	if s.calendar == nil || !e.HasCalendar() {
		return ""
	}
	t.EventID = ""
	id, err := s.calendar.CreateEvent(ctx, eventFor(t, e))
	if err != nil {
		logger.Warn("Failed to create calendar event", "task", t.ID, "employee", e.Name, "error", err)
		return ""
	}
	if err := s.store.SetTaskEvent(t.ID, id); err != nil {
		logger.Warn("Failed to save calendar event handle", "task", t.ID, "event", id, "error", err)
		s.deleteEvent(ctx, e.CalendarID, id)
		return ""
	}
	return id
}

// deleteEvent removes an event best-effort; a missing event counts as removed.
func (s *Scheduler) deleteEvent(ctx context.Context, calendarID, eventID string) {
	if s.calendar == nil || calendarID == "" || eventID == "" {
		return
	}
	if err := s.calendar.DeleteEvent(ctx, calendarID, eventID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("Failed to delete calendar event", "calendar", calendarID, "event", eventID, "error", err)
	}
}

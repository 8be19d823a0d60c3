package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/oracle"
)

// Provider is a calendar backend. Implementations return ErrNotFound for
// missing events and plain errors for everything else.
type Provider interface {
	Name() string
	// ListEvents returns busy events overlapping [start, end).
	ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]models.CalendarEvent, error)
	// CreateEvent stores ev under ev.ID and returns its handle. An event
	// that already exists under that id yields ErrConflict.
	CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, ev models.CalendarEvent) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Service answers availability questions and manages events on top of a Provider.
type Service struct {
	provider Provider
	loc      *time.Location
	slots    models.SlotOptions
	policy   oracle.Policy
}

type Option func(*Service)

// WithLocation sets the location that defines working-day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithSlotOptions(opts models.SlotOptions) Option {
	return func(s *Service) { s.slots = opts }
}

func WithPolicy(p oracle.Policy) Option {
	return func(s *Service) { s.policy = p }
}

func NewService(p Provider, opts ...Option) *Service {
	s := &Service{
		provider: p,
		loc:      time.UTC,
		slots:    DefaultSlotOptions(),
		policy:   oracle.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policy.Retryable = retryable
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) SlotOptions() models.SlotOptions {
	return s.slots
}

// IsFree reports whether no event on the calendar overlaps [start, end).
func (s *Service) IsFree(ctx context.Context, calendarID string, start, end time.Time) (bool, error) {
	events, err := s.Events(ctx, calendarID, start, end)
	if err != nil {
		return false, err
	}
	for _, ev := range events {
		if ev.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// FreeSlots lists the free slots of the working day containing date.
func (s *Service) FreeSlots(ctx context.Context, calendarID string, date time.Time) ([]models.TimeSlot, error) {
	day := WorkingDay(date, s.loc, s.slots)
	events, err := s.Events(ctx, calendarID, day.Start, day.End)
	if err != nil {
		return nil, err
	}
	return ComputeFreeSlots(date, s.loc, events, s.slots), nil
}

// Events lists busy events overlapping [start, end).
func (s *Service) Events(ctx context.Context, calendarID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := s.call(ctx, "list_events", func(ctx context.Context) error {
		var err error
		events, err = s.provider.ListEvents(ctx, calendarID, start, end)
		return err
	})
	return events, err
}

// CreateEvent creates ev on its calendar and returns the provider handle.
// The id is fixed before the first attempt, so a retry after a create that
// reached the provider finds the event instead of adding a second one.
func (s *Service) CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error) {
	if err := ev.Validate(); err != nil {
		return "", apperrors.Invalidf("%v", err)
	}
	if ev.ID == "" {
		ev.ID = NewEventID()
	}
	var id string
	attempts := 0
	err := s.call(ctx, "create_event", func(ctx context.Context) error {
		attempts++
		var err error
		id, err = s.provider.CreateEvent(ctx, ev)
		if err != nil && attempts > 1 && errors.Is(err, apperrors.ErrConflict) {
			id, err = ev.ID, nil
		}
		return err
	})
	return id, err
}

// NewEventID returns an id accepted by every provider (lowercase hex).
func NewEventID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Service) UpdateEvent(ctx context.Context, ev models.CalendarEvent) error {
	if err := ev.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	return s.call(ctx, "update_event", func(ctx context.Context) error {
		return s.provider.UpdateEvent(ctx, ev)
	})
}

func (s *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return s.call(ctx, "delete_event", func(ctx context.Context) error {
		return s.provider.DeleteEvent(ctx, calendarID, eventID)
	})
}

// call wraps provider failures in ErrOracleUnavailable; not-found and
// invalid-input errors pass through.
func (s *Service) call(ctx context.Context, op string, fn func(context.Context) error) error {
	err := oracle.Call(ctx, "calendar", op, s.policy, fn)
	if err == nil || errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) {
		return err
	}
	return apperrors.Oracle(fmt.Sprintf("calendar %s", s.provider.Name()), err)
}

func retryable(err error) bool {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) ||
		errors.Is(err, apperrors.ErrConflict) || errors.Is(err, context.Canceled) {
		return false
	}
	var perm interface{ Permanent() bool }
	if errors.As(err, &perm) {
		return !perm.Permanent()
	}
	return true
}

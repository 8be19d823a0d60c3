package calendar

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

// EventStore is the subset of the store that holds local calendars.
type EventStore interface {
	AddCalendarEvent(models.CalendarEvent) error
	GetCalendarEvent(calendarID, id string) (models.CalendarEvent, error)
	ListCalendarEvents(calendarID string, start, end time.Time) ([]models.CalendarEvent, error)
	UpdateCalendarEvent(models.CalendarEvent) error
	DeleteCalendarEvent(calendarID, id string) error
}

// LocalProvider keeps calendars in the crewplan database.
type LocalProvider struct {
	store EventStore
}

func NewLocalProvider(store EventStore) *LocalProvider {
	return &LocalProvider{store: store}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) ListEvents(_ context.Context, calendarID string, start, end time.Time) ([]models.CalendarEvent, error) {
	return p.store.ListCalendarEvents(calendarID, start, end)
}

func (p *LocalProvider) CreateEvent(_ context.Context, ev models.CalendarEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = NewEventID()
	}
	if _, err := p.store.GetCalendarEvent(ev.CalendarID, ev.ID); err == nil {
		return "", apperrors.Conflictf("calendar event %s already exists", ev.ID)
	}
	if err := p.store.AddCalendarEvent(ev); err != nil {
		return "", err
	}
	return ev.ID, nil
}

func (p *LocalProvider) UpdateEvent(_ context.Context, ev models.CalendarEvent) error {
	return p.store.UpdateCalendarEvent(ev)
}

func (p *LocalProvider) DeleteEvent(_ context.Context, calendarID, eventID string) error {
	return p.store.DeleteCalendarEvent(calendarID, eventID)
}

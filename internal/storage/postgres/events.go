package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

const eventColumns = `id, calendar_id, summary, description, location, start_time, end_time`

func scanEvent(row rowScanner) (models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := row.Scan(&ev.ID, &ev.CalendarID, &ev.Summary, &ev.Description, &ev.Location, &ev.Start, &ev.End); err != nil {
		return models.CalendarEvent{}, err
	}
	ev.Start = ev.Start.UTC()
	ev.End = ev.End.UTC()
	return ev, nil
}

func (s *Store) AddCalendarEvent(ev models.CalendarEvent) error {
	if err := ev.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	_, err := s.db.Exec(`INSERT INTO calendar_events (`+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.CalendarID, ev.Summary, ev.Description, ev.Location, ev.Start.UTC(), ev.End.UTC())
	if err != nil {
		return fmt.Errorf("failed to add calendar event: %w", err)
	}
	return nil
}

func (s *Store) GetCalendarEvent(calendarID, id string) (models.CalendarEvent, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM calendar_events WHERE calendar_id = $1 AND id = $2`, calendarID, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CalendarEvent{}, apperrors.NotFoundf("calendar event %s", id)
		}
		return models.CalendarEvent{}, err
	}
	return ev, nil
}

// ListCalendarEvents returns events overlapping the half-open window [start, end).
func (s *Store) ListCalendarEvents(calendarID string, start, end time.Time) ([]models.CalendarEvent, error) {
	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM calendar_events
		WHERE calendar_id = $1 AND start_time < $2 AND end_time > $3
		ORDER BY start_time, id`,
		calendarID, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) UpdateCalendarEvent(ev models.CalendarEvent) error {
	if err := ev.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	res, err := s.db.Exec(`
		UPDATE calendar_events
		SET summary = $1, description = $2, location = $3, start_time = $4, end_time = $5
		WHERE calendar_id = $6 AND id = $7`,
		ev.Summary, ev.Description, ev.Location, ev.Start.UTC(), ev.End.UTC(), ev.CalendarID, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("calendar event %s", ev.ID)
	}
	return nil
}

func (s *Store) DeleteCalendarEvent(calendarID, id string) error {
	res, err := s.db.Exec(`DELETE FROM calendar_events WHERE calendar_id = $1 AND id = $2`, calendarID, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("calendar event %s", id)
	}
	return nil
}

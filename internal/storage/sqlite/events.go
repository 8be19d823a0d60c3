package sqlite

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
	var start, end string
	if err := row.Scan(&ev.ID, &ev.CalendarID, &ev.Summary, &ev.Description, &ev.Location, &start, &end); err != nil {
		return models.CalendarEvent{}, err
	}
	var err error
	if ev.Start, err = parseTime(start); err != nil {
		return models.CalendarEvent{}, err
	}
	if ev.End, err = parseTime(end); err != nil {
		return models.CalendarEvent{}, err
	}
	return ev, nil
}

func (s *Store) AddCalendarEvent(ev models.CalendarEvent) error {
	if err := ev.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	_, err := s.db.Exec(`INSERT INTO calendar_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.CalendarID, ev.Summary, ev.Description, ev.Location, formatTime(ev.Start), formatTime(ev.End))
	if err != nil {
		return fmt.Errorf("failed to add calendar event: %w", err)
	}
	return nil
}

func (s *Store) GetCalendarEvent(calendarID, id string) (models.CalendarEvent, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM calendar_events WHERE calendar_id = ? AND id = ?`, calendarID, id)
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
		WHERE calendar_id = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time, id`,
		calendarID, formatTime(end), formatTime(start))
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
		SET summary = ?, description = ?, location = ?, start_time = ?, end_time = ?
		WHERE calendar_id = ? AND id = ?`,
		ev.Summary, ev.Description, ev.Location, formatTime(ev.Start), formatTime(ev.End), ev.CalendarID, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("calendar event %s", ev.ID)
	}
	return nil
}

func (s *Store) DeleteCalendarEvent(calendarID, id string) error {
	res, err := s.db.Exec(`DELETE FROM calendar_events WHERE calendar_id = ? AND id = ?`, calendarID, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("calendar event %s", id)
	}
	return nil
}

package models

import (
	"fmt"
	"time"
)

type CalendarEvent struct {
	ID          string    `json:"id"`
	CalendarID  string    `json:"calendar_id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Overlaps reports whether the event intersects the half-open window [start, end).
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	return start.Before(e.End) && end.After(e.Start)
}

func (e CalendarEvent) Validate() error {
	if e.CalendarID == "" {
		return fmt.Errorf("calendar id is required")
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("event end must be after start")
	}
	return nil
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SlotOptions controls free-slot enumeration within a working day.
type SlotOptions struct {
	WorkStartHour int
	WorkEndHour   int
	SlotHours     float64
	Step          time.Duration
}

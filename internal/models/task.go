package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type TaskType string

const (
	TaskTypeInstallation TaskType = "installation"
	TaskTypeProduction   TaskType = "production"
)

// ParseTaskType parses a task type name (case-insensitive).
func ParseTaskType(s string) (TaskType, error) {
	switch t := TaskType(strings.ToLower(strings.TrimSpace(s))); t {
	case TaskTypeInstallation, TaskTypeProduction:
		return t, nil
	default:
		return "", fmt.Errorf("invalid task type %q (expected installation|production)", s)
	}
}

type TaskStatus string

const (
	TaskStatusPlanned    TaskStatus = "planned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ParseTaskStatus parses a status name; "in-progress" is accepted as an alias.
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch st := TaskStatus(norm); st {
	case TaskStatusPlanned, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("invalid task status %q", s)
	}
}

// CountsTowardCapacity reports whether tasks in this status consume weekly hours.
func (s TaskStatus) CountsTowardCapacity() bool {
	return s == TaskStatusPlanned || s == TaskStatusInProgress
}

// Terminal reports whether no further transitions are allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// CanTransition reports whether a task may move from s to next.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case TaskStatusPlanned:
		return next == TaskStatusInProgress || next == TaskStatusCancelled || next == TaskStatusCompleted
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusCancelled
	default:
		return false
	}
}

// ActiveStatuses are the statuses that count toward capacity.
var ActiveStatuses = []TaskStatus{TaskStatusPlanned, TaskStatusInProgress}

type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Location         string     `json:"location,omitempty"`
	Type             TaskType   `json:"type"`
	Status           TaskStatus `json:"status"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	EstimatedHours   float64    `json:"estimated_hours"`
	EmployeeID       string     `json:"employee_id,omitempty"`
	EventID          string     `json:"event_id,omitempty"`
	WeatherDependent bool       `json:"weather_dependent"`
	Priority         int        `json:"priority"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MaxTaskHours caps a task's estimate at a year of wall-clock time, far
// below the point where the duration arithmetic overflows.
const MaxTaskHours = 365 * 24

// ValidateHours checks a task estimate is positive, finite and at most MaxTaskHours.
func ValidateHours(hours float64) error {
	if !(hours > 0) {
		return fmt.Errorf("duration must be greater than zero, got %v", hours)
	}
	if !(hours <= MaxTaskHours) {
		return fmt.Errorf("duration must be at most %d hours, got %v", MaxTaskHours, hours)
	}
	return nil
}

// HoursToDuration converts fractional hours to a duration rounded to whole seconds,
// the resolution at which tasks are persisted.
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours*3600)) * time.Second
}

// SetSchedule moves the task to start and recomputes the end time from hours.
func (t *Task) SetSchedule(start time.Time, hours float64) {
	t.StartTime = start.Truncate(time.Second)
	t.EstimatedHours = hours
	t.EndTime = t.StartTime.Add(HoursToDuration(hours))
}

// Assigned reports whether the task has an assigned employee.
func (t Task) Assigned() bool {
	return t.EmployeeID != ""
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if _, err := ParseTaskType(string(t.Type)); err != nil {
		return err
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	if err := ValidateHours(t.EstimatedHours); err != nil {
		return fmt.Errorf("estimated hours: %w", err)
	}
	if t.Priority < 1 || t.Priority > 5 {
		return fmt.Errorf("priority must be between 1 and 5, got %d", t.Priority)
	}
	if t.StartTime.IsZero() {
		return fmt.Errorf("start time is required")
	}
	if !t.EndTime.Equal(t.StartTime.Add(HoursToDuration(t.EstimatedHours))) {
		return fmt.Errorf("end time %s does not match start %s + %vh",
			t.EndTime.Format(time.RFC3339), t.StartTime.Format(time.RFC3339), t.EstimatedHours)
	}
	return nil
}

// Assignment hands a planned, unassigned task to an employee.
type Assignment struct {
	TaskID     string
	EmployeeID string
}

// TaskFilter narrows task listings. Zero values mean "no constraint".
type TaskFilter struct {
	EmployeeID string
	Unassigned bool
	Statuses   []TaskStatus
	Type       TaskType
	// StartFrom and StartBefore bound StartTime as a half-open range
	StartFrom   time.Time
	StartBefore time.Time
}

// Match reports whether the task satisfies the filter.
func (f TaskFilter) Match(t Task) bool {
	if f.EmployeeID != "" && t.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Unassigned && t.EmployeeID != "" {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.StartFrom.IsZero() && t.StartTime.Before(f.StartFrom) {
		return false
	}
	if !f.StartBefore.IsZero() && !t.StartTime.Before(f.StartBefore) {
		return false
	}
	return true
}

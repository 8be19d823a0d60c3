package models

import (
	"fmt"
	"strings"
	"time"
)

// EmployeeClass is the capability class of an employee
type EmployeeClass string

const (
	ClassInstaller EmployeeClass = "installer"
	ClassProducer  EmployeeClass = "producer"
	ClassBoth      EmployeeClass = "both"
)

// ParseEmployeeClass parses a capability class name (case-insensitive).
func ParseEmployeeClass(s string) (EmployeeClass, error) {
	switch c := EmployeeClass(strings.ToLower(strings.TrimSpace(s))); c {
	case ClassInstaller, ClassProducer, ClassBoth:
		return c, nil
	default:
		return "", fmt.Errorf("invalid employee class %q (expected installer|producer|both)", s)
	}
}

// Compatible reports whether the class may work on the given task type.
// The generalist "both" class satisfies either type.
func (c EmployeeClass) Compatible(t TaskType) bool {
	switch c {
	case ClassBoth:
		return t == TaskTypeInstallation || t == TaskTypeProduction
	case ClassInstaller:
		return t == TaskTypeInstallation
	case ClassProducer:
		return t == TaskTypeProduction
	default:
		return false
	}
}

// Specialist reports whether the class is an exact match for the task type.
func (c EmployeeClass) Specialist(t TaskType) bool {
	return (c == ClassInstaller && t == TaskTypeInstallation) ||
		(c == ClassProducer && t == TaskTypeProduction)
}

// ClassesFor returns the capability classes eligible for a task type.
func ClassesFor(t TaskType) []EmployeeClass {
	switch t {
	case TaskTypeInstallation:
		return []EmployeeClass{ClassInstaller, ClassBoth}
	case TaskTypeProduction:
		return []EmployeeClass{ClassProducer, ClassBoth}
	default:
		return nil
	}
}

type Employee struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email,omitempty"`
	Class         EmployeeClass `json:"class"`
	WeeklyHourCap float64       `json:"weekly_hour_cap"`
	Active        bool          `json:"active"`
	CalendarID    string        `json:"calendar_id,omitempty"`
	// TaskVersion is bumped on every commit touching the employee's tasks
	TaskVersion int64     `json:"task_version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasCalendar reports whether the employee has a linked external calendar.
func (e Employee) HasCalendar() bool {
	return strings.TrimSpace(e.CalendarID) != ""
}

// Stamp returns the version stamp as loaded.
func (e Employee) Stamp() VersionStamp {
	return VersionStamp{EmployeeID: e.ID, Version: e.TaskVersion}
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("employee name cannot be empty")
	}
	if _, err := ParseEmployeeClass(string(e.Class)); err != nil {
		return err
	}
	if !(e.WeeklyHourCap > 0) {
		return fmt.Errorf("weekly hour cap must be greater than zero, got %v", e.WeeklyHourCap)
	}
	return nil
}

// VersionStamp is the optimistic concurrency token of an employee's task set.
type VersionStamp struct {
	EmployeeID string
	Version    int64
}

package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage/postgres"
	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// Migrate applies pending schema migrations
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)

	// Employees
	AddEmployee(models.Employee) error
	GetEmployee(id string) (models.Employee, error)
	// GetEmployees lists employees ordered by name, then id.
	GetEmployees(includeInactive bool) ([]models.Employee, error)
	UpdateEmployee(models.Employee) error
	DeactivateEmployee(id string) error

	// Tasks
	GetTask(id string) (models.Task, error)
	// ListTasks returns matching tasks ordered by start time, then creation time.
	ListTasks(models.TaskFilter) ([]models.Task, error)
	// CommitTasks upserts tasks atomically. Each stamp must match the stored
	// task version of its employee, which is then incremented; otherwise
	// nothing is written and ErrConflict is returned.
	CommitTasks(tasks []models.Task, stamps []models.VersionStamp) error
	// AssignTasks sets the assignee of planned, unassigned tasks atomically,
	// with the same stamp check as CommitTasks. A task that is no longer
	// planned and unassigned yields ErrConflict and nothing is written.
	AssignTasks(assignments []models.Assignment, stamps []models.VersionStamp) error
	SetTaskEvent(taskID, eventID string) error
	DeleteTask(id string) error

	// Local calendar events
	AddCalendarEvent(models.CalendarEvent) error
	GetCalendarEvent(calendarID, id string) (models.CalendarEvent, error)
	ListCalendarEvents(calendarID string, start, end time.Time) ([]models.CalendarEvent, error)
	UpdateCalendarEvent(models.CalendarEvent) error
	DeleteCalendarEvent(calendarID, id string) error

	// Utils
	GetConfigPath() string
}

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// IsPostgres reports whether target is a PostgreSQL connection URL.
func IsPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	_, err := postgres.ValidateConnString(connStr)
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}

// New returns a PostgreSQL store for connection URLs and a SQLite store for file paths.
func New(target string) Provider {
	if IsPostgres(target) {
		return postgres.New(target)
	}
	return sqlite.NewStore(target)
}

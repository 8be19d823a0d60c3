package scheduler

import (
	"context"
	"time"

	"github.com/julianstephens/crewplan/internal/models"
)

// Store is the persistence the scheduler needs. storage.Provider satisfies it.
type Store interface {
	GetEmployee(id string) (models.Employee, error)
	GetEmployees(includeInactive bool) ([]models.Employee, error)
	GetTask(id string) (models.Task, error)
	ListTasks(models.TaskFilter) ([]models.Task, error)
	CommitTasks(tasks []models.Task, stamps []models.VersionStamp) error
	AssignTasks(assignments []models.Assignment, stamps []models.VersionStamp) error
	SetTaskEvent(taskID, eventID string) error
	DeleteTask(id string) error
}

// AvailabilityOracle answers calendar questions and owns calendar events.
// calendar.Service satisfies it.
type AvailabilityOracle interface {
	IsFree(ctx context.Context, calendarID string, start, end time.Time) (bool, error)
	Events(ctx context.Context, calendarID string, start, end time.Time) ([]models.CalendarEvent, error)
	FreeSlots(ctx context.Context, calendarID string, date time.Time) ([]models.TimeSlot, error)
	CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, ev models.CalendarEvent) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// WeatherOracle never fails; implementations degrade to an empty forecast
// and a production recommendation. weather.Service satisfies it.
type WeatherOracle interface {
	Forecast(ctx context.Context, days int) []models.ForecastDay
	Recommendation(ctx context.Context, date time.Time) models.WorkRecommendation
}

// EmployeeLister supplies selector candidates in a stable order.
type EmployeeLister interface {
	GetEmployees(includeInactive bool) ([]models.Employee, error)
}

// fixedEmployees pins the candidate list, and with it the version stamps, for a batch.
type fixedEmployees []models.Employee

func (f fixedEmployees) GetEmployees(includeInactive bool) ([]models.Employee, error) {
	if includeInactive {
		return f, nil
	}
	var out []models.Employee
	for _, e := range f {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

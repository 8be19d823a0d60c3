package postgres

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

// TestStore_Integration runs against a real database.
// Example: POSTGRES_TEST_URL="postgres://crewplan@localhost:5432/crewplan_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	emp := models.Employee{ID: uuid.NewString(), Name: "Integration", Class: models.ClassBoth, WeeklyHourCap: 40, Active: true}
	if err := store.AddEmployee(emp); err != nil {
		t.Fatalf("Failed to add employee: %v", err)
	}
	emp, _ = store.GetEmployee(emp.ID)

	t.Run("CommitAndConflict", func(t *testing.T) {
		task := models.Task{
			ID:       uuid.NewString(),
			Title:    "Install windows",
			Type:     models.TaskTypeInstallation,
			Status:   models.TaskStatusPlanned,
			Priority: 3,
		}
		task.SetSchedule(time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC), 2)
		task.EmployeeID = emp.ID

		if err := store.CommitTasks([]models.Task{task}, []models.VersionStamp{emp.Stamp()}); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		got, err := store.GetTask(task.ID)
		if err != nil {
			t.Fatalf("Failed to get task: %v", err)
		}
		if !got.EndTime.Equal(task.EndTime) {
			t.Errorf("Expected end %s, got %s", task.EndTime, got.EndTime)
		}

		err = store.CommitTasks([]models.Task{task}, []models.VersionStamp{emp.Stamp()})
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}

		if err := store.DeleteTask(task.ID); err != nil {
			t.Fatalf("Failed to delete task: %v", err)
		}
	})

	t.Run("AssignSkipsDeletedTask", func(t *testing.T) {
		current, _ := store.GetEmployee(emp.ID)
		task := models.Task{
			ID:       uuid.NewString(),
			Title:    "Cut profiles",
			Type:     models.TaskTypeProduction,
			Status:   models.TaskStatusPlanned,
			Priority: 3,
		}
		task.SetSchedule(time.Date(2030, 1, 8, 9, 0, 0, 0, time.UTC), 3)
		if err := store.CommitTasks([]models.Task{task}, nil); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		if err := store.DeleteTask(task.ID); err != nil {
			t.Fatalf("Failed to delete task: %v", err)
		}

		err := store.AssignTasks([]models.Assignment{{TaskID: task.ID, EmployeeID: emp.ID}}, []models.VersionStamp{current.Stamp()})
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
		if _, err := store.GetTask(task.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Deleted task came back: %v", err)
		}
	})

	t.Run("CalendarEvents", func(t *testing.T) {
		start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
		ev := models.CalendarEvent{ID: uuid.NewString(), CalendarID: emp.ID, Summary: "Busy", Start: start, End: start.Add(time.Hour)}
		if err := store.AddCalendarEvent(ev); err != nil {
			t.Fatalf("Failed to add event: %v", err)
		}
		events, err := store.ListCalendarEvents(emp.ID, start.Add(30*time.Minute), start.Add(2*time.Hour))
		if err != nil || len(events) != 1 {
			t.Fatalf("Expected 1 overlapping event, got %d (err=%v)", len(events), err)
		}
		if err := store.DeleteCalendarEvent(emp.ID, ev.ID); err != nil {
			t.Fatalf("Failed to delete event: %v", err)
		}
	})
}

package tasks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

func setupContext(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.AddEmployee(models.Employee{
		ID: "e1", Name: "Anna", Class: models.ClassInstaller, WeeklyHourCap: 40, Active: true,
	}); err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}
	return &cli.Context{Store: store, Location: time.UTC}
}

func TestTaskFieldsValidate(t *testing.T) {
	valid := TaskFields{Title: "Roof", Type: "installation", Start: "2026-03-03 08:00", Hours: 8, Priority: 3}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TaskFields)
	}{
		{"bad type", func(f *TaskFields) { f.Type = "repair" }},
		{"priority low", func(f *TaskFields) { f.Priority = 0 }},
		{"priority high", func(f *TaskFields) { f.Priority = 6 }},
		{"zero hours", func(f *TaskFields) { f.Hours = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			if err := f.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTaskFieldsRequest(t *testing.T) {
	ctx := setupContext(t)
	f := TaskFields{Title: "Workshop", Type: "Production", Start: "2026-03-03 09:30", Hours: 4, Priority: 2, Indoor: true}

	req, err := f.request(ctx)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if req.Type != models.TaskTypeProduction {
		t.Errorf("type = %s", req.Type)
	}
	if want := time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC); !req.Start.Equal(want) {
		t.Errorf("start = %s, want %s", req.Start, want)
	}
	if req.WeatherDependent {
		t.Error("indoor task must not be weather dependent")
	}
	if req.Priority != 2 {
		t.Errorf("priority = %d", req.Priority)
	}

	f.Start = "next tuesday"
	if _, err := f.request(ctx); err == nil {
		t.Error("expected error for unparseable start")
	}
}

func TestTaskListFilter(t *testing.T) {
	ctx := setupContext(t)

	tests := []struct {
		name  string
		cmd   TaskListCmd
		check func(t *testing.T, f models.TaskFilter)
	}{
		{"defaults to active", TaskListCmd{}, func(t *testing.T, f models.TaskFilter) {
			if len(f.Statuses) != len(models.ActiveStatuses) {
				t.Errorf("statuses = %v", f.Statuses)
			}
		}},
		{"all statuses", TaskListCmd{All: true}, func(t *testing.T, f models.TaskFilter) {
			if len(f.Statuses) != 0 {
				t.Errorf("statuses = %v", f.Statuses)
			}
		}},
		{"explicit status", TaskListCmd{Status: []string{"in-progress"}}, func(t *testing.T, f models.TaskFilter) {
			if len(f.Statuses) != 1 || f.Statuses[0] != models.TaskStatusInProgress {
				t.Errorf("statuses = %v", f.Statuses)
			}
		}},
		{"employee by name", TaskListCmd{Employee: "anna"}, func(t *testing.T, f models.TaskFilter) {
			if f.EmployeeID != "e1" {
				t.Errorf("employee = %q", f.EmployeeID)
			}
		}},
		{"date range", TaskListCmd{From: "2026-03-02", To: "2026-03-09"}, func(t *testing.T, f models.TaskFilter) {
			if !f.StartFrom.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) ||
				!f.StartBefore.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("range = %s..%s", f.StartFrom, f.StartBefore)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.cmd.filter(ctx)
			if err != nil {
				t.Fatalf("filter failed: %v", err)
			}
			tt.check(t, f)
		})
	}

	for _, bad := range []TaskListCmd{
		{Employee: "nobody"},
		{Status: []string{"paused"}},
		{Type: "repair"},
		{From: "03/02/2026"},
	} {
		if _, err := bad.filter(ctx); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}

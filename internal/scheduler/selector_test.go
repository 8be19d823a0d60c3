package scheduler

import (
	"context"
	"testing"

	"github.com/julianstephens/crewplan/internal/models"
)

func TestSelectScoresFreeSpecialist(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "adam@cal")

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(1, 9), 8)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected a candidate")
	}
	// free calendar + full slack + specialist
	if c.Score != 17 {
		t.Errorf("expected score 17, got %v", c.Score)
	}
	if !c.CalendarChecked {
		t.Error("expected calendar to be checked")
	}
	if c.Week.AvailableHours != 40 {
		t.Errorf("expected 40h available, got %v", c.Week.AvailableHours)
	}
}

func TestSelectDisqualifiesOverCapacity(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Viktor", models.ClassBoth, 40, "")
	for i := range 4 {
		f.commitAssigned(t, "e1", "busy-"+string(rune('a'+i)), models.TaskTypeProduction, at(i, 8), 9)
	}

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeProduction, at(4, 8), 8)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c != nil {
		t.Fatalf("expected no candidate with 4h left, got %s (%v)", c.Employee.Name, c.Score)
	}

	_, reason, err := f.sched.Selector().Evaluate(context.Background(), mustEmployee(t, f, "e1"), models.TaskTypeProduction, at(4, 8), 4)
	if err != nil || reason != "" {
		t.Errorf("a 4h task should still fit, reason=%q err=%v", reason, err)
	}
}

func TestSelectDisqualifiesBusyCalendar(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "adam@cal")
	f.addEmployee(t, "e2", "Beata", models.ClassBoth, 40, "")
	f.calendar.events["adam@cal"] = []models.CalendarEvent{
		{ID: "dentist", CalendarID: "adam@cal", Start: at(1, 10), End: at(1, 11)},
	}

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(1, 9), 4)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c == nil || c.Employee.ID != "e2" {
		t.Fatalf("expected Beata, got %+v", c)
	}

	// an event ending exactly at the task start does not block it
	c, err = f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(1, 11), 4)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c == nil || c.Employee.ID != "e1" {
		t.Fatalf("expected Adam once the window is free, got %+v", c)
	}
}

func TestSelectCalendarFailureDegrades(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "adam@cal")
	f.calendar.fail = true

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(1, 9), 8)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c == nil {
		t.Fatal("calendar failure must not disqualify")
	}
	if c.CalendarChecked || c.Score != 7 {
		t.Errorf("expected unchecked calendar and score 7, got checked=%v score=%v", c.CalendarChecked, c.Score)
	}
}

func TestSelectNeverReturnsIncompatible(t *testing.T) {
	tests := []struct {
		name     string
		taskType models.TaskType
		class    models.EmployeeClass
		want     bool
	}{
		{"installer for installation", models.TaskTypeInstallation, models.ClassInstaller, true},
		{"installer for production", models.TaskTypeProduction, models.ClassInstaller, false},
		{"producer for installation", models.TaskTypeInstallation, models.ClassProducer, false},
		{"producer for production", models.TaskTypeProduction, models.ClassProducer, true},
		{"both for installation", models.TaskTypeInstallation, models.ClassBoth, true},
		{"both for production", models.TaskTypeProduction, models.ClassBoth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupScheduler(t)
			f.addEmployee(t, "e1", "Eva", tt.class, 40, "")

			c, err := f.sched.Selector().Select(context.Background(), tt.taskType, at(1, 9), 4)
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if got := c != nil; got != tt.want {
				t.Errorf("expected candidate=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestSelectIgnoresInactive(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "")
	if err := f.store.DeactivateEmployee("e1"); err != nil {
		t.Fatalf("DeactivateEmployee failed: %v", err)
	}

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(1, 9), 4)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c != nil {
		t.Errorf("expected no candidate, got %s", c.Employee.Name)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e3", "Cyril", models.ClassBoth, 40, "")
	f.addEmployee(t, "e2", "Beata", models.ClassInstaller, 40, "")
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "")

	var first []string
	for i := range 5 {
		ranked, err := f.sched.Selector().Rank(context.Background(), models.TaskTypeInstallation, at(1, 9), 4)
		if err != nil {
			t.Fatalf("Rank failed: %v", err)
		}
		var ids []string
		for _, c := range ranked {
			ids = append(ids, c.Employee.ID)
		}
		if i == 0 {
			first = ids
			continue
		}
		if len(ids) != len(first) {
			t.Fatalf("run %d returned %v, first run %v", i, ids, first)
		}
		for j := range ids {
			if ids[j] != first[j] {
				t.Fatalf("run %d returned %v, first run %v", i, ids, first)
			}
		}
	}

	// equal specialists keep name order, the generalist scores lower
	want := []string{"e1", "e2", "e3"}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, first)
		}
	}
}

func TestSelectPrefersSlack(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassInstaller, 40, "")
	f.addEmployee(t, "e2", "Beata", models.ClassInstaller, 40, "")
	f.commitAssigned(t, "e1", "busy", models.TaskTypeInstallation, at(0, 8), 20)

	c, err := f.sched.Selector().Select(context.Background(), models.TaskTypeInstallation, at(2, 9), 4)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if c == nil || c.Employee.ID != "e2" {
		t.Fatalf("expected the less loaded Beata, got %+v", c)
	}
}

func mustEmployee(t *testing.T, f *fixture, id string) models.Employee {
	t.Helper()
	e, err := f.store.GetEmployee(id)
	if err != nil {
		t.Fatalf("failed to get employee: %v", err)
	}
	return e
}

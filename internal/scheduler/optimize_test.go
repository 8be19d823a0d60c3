package scheduler

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

func planTasks(t *testing.T, f *fixture, reqs ...TaskRequest) []models.Task {
	t.Helper()
	var out []models.Task
	for _, r := range reqs {
		task, err := f.sched.PlanTask(context.Background(), r)
		if err != nil {
			t.Fatalf("PlanTask failed: %v", err)
		}
		out = append(out, task)
	}
	return out
}

func TestOptimizeGreedyOrder(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Petra", models.ClassProducer, 10, "")

	// planned first but starts later, so it is processed second
	tasks := planTasks(t, f,
		NewTaskRequest("Tuesday batch", models.TaskTypeProduction, at(1, 9), 8),
		NewTaskRequest("Monday batch", models.TaskTypeProduction, at(0, 9), 8),
	)

	res, err := f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if res.Assigned != 1 || res.Failed != 1 {
		t.Fatalf("expected 1 assigned and 1 failed, got %+v", res)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].ID != tasks[1].ID {
		t.Fatalf("expected the Monday task to win, got %+v", res.Tasks)
	}

	mon, _ := f.store.GetTask(tasks[1].ID)
	tue, _ := f.store.GetTask(tasks[0].ID)
	if mon.EmployeeID != "e1" || tue.Assigned() {
		t.Errorf("unexpected assignments: monday=%q tuesday=%q", mon.EmployeeID, tue.EmployeeID)
	}

	e := mustEmployee(t, f, "e1")
	if e.TaskVersion != 1 {
		t.Errorf("expected one version bump for the batch, got %d", e.TaskVersion)
	}
}

func TestOptimizeSeesBatchAssignments(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Adam", models.ClassBoth, 40, "")
	f.addEmployee(t, "e2", "Beata", models.ClassBoth, 40, "")

	// overlapping windows cannot go to the same person
	planTasks(t, f,
		NewTaskRequest("A", models.TaskTypeProduction, at(0, 9), 4),
		NewTaskRequest("B", models.TaskTypeProduction, at(0, 11), 4),
		NewTaskRequest("C", models.TaskTypeProduction, at(0, 12), 2),
	)

	res, err := f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if res.Assigned != 2 || res.Failed != 1 {
		t.Fatalf("expected 2 assigned and 1 failed, got %+v", res)
	}
	if res.Tasks[0].EmployeeID == res.Tasks[1].EmployeeID {
		t.Errorf("overlapping tasks went to the same employee %s", res.Tasks[0].EmployeeID)
	}
}

func TestOptimizeRespectsRange(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Petra", models.ClassProducer, 40, "")
	tasks := planTasks(t, f,
		NewTaskRequest("In range", models.TaskTypeProduction, at(1, 9), 2),
		NewTaskRequest("Next week", models.TaskTypeProduction, at(8, 9), 2),
	)

	res, err := f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if res.Assigned != 1 || res.Failed != 0 {
		t.Fatalf("expected only the in-range task, got %+v", res)
	}
	if next, _ := f.store.GetTask(tasks[1].ID); next.Assigned() {
		t.Error("out-of-range task must stay unassigned")
	}

	res, err = f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("second Optimize failed: %v", err)
	}
	if res.Assigned != 0 || res.Failed != 0 {
		t.Errorf("expected nothing left to assign, got %+v", res)
	}
}

func TestOptimizeCreatesEvents(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Petra", models.ClassProducer, 40, "petra@cal")
	tasks := planTasks(t, f, NewTaskRequest("Boxes", models.TaskTypeProduction, at(2, 9), 3))

	if _, err := f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	got, _ := f.store.GetTask(tasks[0].ID)
	if got.EventID == "" {
		t.Fatal("expected event handle after optimize")
	}
	if _, ok := f.calendar.event("petra@cal", got.EventID); !ok {
		t.Errorf("event %s missing from calendar", got.EventID)
	}
}

// deletingStore removes a task right before the batch commit, the way a
// concurrent "task delete" would.
type deletingStore struct {
	*sqlite.Store
	victim string
}

func (d *deletingStore) AssignTasks(assignments []models.Assignment, stamps []models.VersionStamp) error {
	if err := d.Store.DeleteTask(d.victim); err != nil {
		return err
	}
	return d.Store.AssignTasks(assignments, stamps)
}

func TestOptimizeDoesNotResurrectDeletedTask(t *testing.T) {
	f := setupScheduler(t)
	f.addEmployee(t, "e1", "Petra", models.ClassProducer, 40, "cal-petra")
	tasks := planTasks(t, f,
		NewTaskRequest("Boxes", models.TaskTypeProduction, at(0, 9), 4),
		NewTaskRequest("Crates", models.TaskTypeProduction, at(1, 9), 4),
	)

	sched := f.build(&deletingStore{Store: f.store, victim: tasks[1].ID})
	_, err := sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := f.store.GetTask(tasks[1].ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("deleted task came back: %v", err)
	}
	first, _ := f.store.GetTask(tasks[0].ID)
	if first.Assigned() {
		t.Error("a conflicting batch must not assign anything")
	}
	if len(f.calendar.events["cal-petra"]) != 0 {
		t.Errorf("no calendar events expected for a rejected batch, got %v", f.calendar.events["cal-petra"])
	}

	// the next pass sees the deletion and assigns what is left
	res, err := f.sched.Optimize(context.Background(), monday, monday.AddDate(0, 0, 7))
	if err != nil || res.Assigned != 1 {
		t.Fatalf("expected retry to assign 1 task, got %+v, %v", res, err)
	}
}

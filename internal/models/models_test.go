package models

import (
	"math"
	"testing"
	"time"
)

func TestEmployeeClassCompatible(t *testing.T) {
	tests := []struct {
		class      EmployeeClass
		taskType   TaskType
		compatible bool
		specialist bool
	}{
		{ClassInstaller, TaskTypeInstallation, true, true},
		{ClassInstaller, TaskTypeProduction, false, false},
		{ClassProducer, TaskTypeProduction, true, true},
		{ClassProducer, TaskTypeInstallation, false, false},
		{ClassBoth, TaskTypeInstallation, true, false},
		{ClassBoth, TaskTypeProduction, true, false},
		{EmployeeClass("painter"), TaskTypeProduction, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class)+"/"+string(tt.taskType), func(t *testing.T) {
			if got := tt.class.Compatible(tt.taskType); got != tt.compatible {
				t.Errorf("Compatible() = %v, want %v", got, tt.compatible)
			}
			if got := tt.class.Specialist(tt.taskType); got != tt.specialist {
				t.Errorf("Specialist() = %v, want %v", got, tt.specialist)
			}
		})
	}
}

func TestClassesFor(t *testing.T) {
	for _, tt := range []TaskType{TaskTypeInstallation, TaskTypeProduction} {
		for _, c := range ClassesFor(tt) {
			if !c.Compatible(tt) {
				t.Errorf("ClassesFor(%s) returned incompatible class %s", tt, c)
			}
		}
	}
}

func TestEmployeeValidate(t *testing.T) {
	valid := Employee{Name: "Anna", Class: ClassInstaller, WeeklyHourCap: 40}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zeroCap := valid
	zeroCap.WeeklyHourCap = 0
	if err := zeroCap.Validate(); err == nil {
		t.Error("expected error for zero weekly hour cap")
	}

	badClass := valid
	badClass.Class = "welder"
	if err := badClass.Validate(); err == nil {
		t.Error("expected error for unknown class")
	}

	noName := valid
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestTaskSetScheduleKeepsEndInvariant(t *testing.T) {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	for _, hours := range []float64{0.5, 1, 1.1, 7.75, 8, 36} {
		var task Task
		task.SetSchedule(start, hours)
		got := task.EndTime.Sub(task.StartTime).Hours()
		if diff := got - hours; diff > 1.0/3600 || diff < -1.0/3600 {
			t.Errorf("hours=%v: end-start = %vh", hours, got)
		}
	}
}

func TestTaskValidate(t *testing.T) {
	base := Task{
		Title:    "Roof install",
		Type:     TaskTypeInstallation,
		Status:   TaskStatusPlanned,
		Priority: 3,
	}
	base.SetSchedule(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), 8)

	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"priority too low", func(t *Task) { t.Priority = 0 }},
		{"priority too high", func(t *Task) { t.Priority = 6 }},
		{"zero hours", func(t *Task) { t.EstimatedHours = 0 }},
		{"bad type", func(t *Task) { t.Type = "repair" }},
		{"bad status", func(t *Task) { t.Status = "paused" }},
		{"end drift", func(t *Task) { t.EndTime = t.EndTime.Add(time.Minute) }},
		{"empty title", func(t *Task) { t.Title = "" }},
		{"overflowing hours", func(t *Task) { t.SetSchedule(t.StartTime, 1e13) }},
		{"hours above cap", func(t *Task) { t.SetSchedule(t.StartTime, MaxTaskHours+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base
			tt.mutate(&task)
			if err := task.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateHours(t *testing.T) {
	tests := []struct {
		hours   float64
		wantErr bool
	}{
		{0.5, false},
		{MaxTaskHours, false},
		{0, true},
		{-2, true},
		{MaxTaskHours + 0.5, true},
		{1e13, true},
		{math.Inf(1), true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		if err := ValidateHours(tt.hours); (err != nil) != tt.wantErr {
			t.Errorf("ValidateHours(%v) error = %v, wantErr %v", tt.hours, err, tt.wantErr)
		}
	}
}

func TestTaskStatusTransitions(t *testing.T) {
	if !TaskStatusPlanned.CanTransition(TaskStatusInProgress) {
		t.Error("planned -> in_progress should be allowed")
	}
	if !TaskStatusInProgress.CanTransition(TaskStatusCompleted) {
		t.Error("in_progress -> completed should be allowed")
	}
	if TaskStatusCompleted.CanTransition(TaskStatusPlanned) {
		t.Error("completed is terminal")
	}
	if TaskStatusCancelled.CanTransition(TaskStatusInProgress) {
		t.Error("cancelled is terminal")
	}
	if TaskStatusCompleted.CountsTowardCapacity() || TaskStatusCancelled.CountsTowardCapacity() {
		t.Error("terminal statuses must not count toward capacity")
	}
}

func TestParseTaskStatusAlias(t *testing.T) {
	got, err := ParseTaskStatus("In-Progress")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != TaskStatusInProgress {
		t.Errorf("ParseTaskStatus() = %s", got)
	}
}

func TestTaskFilterMatch(t *testing.T) {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	task := Task{EmployeeID: "e1", Status: TaskStatusPlanned, Type: TaskTypeProduction, StartTime: start}

	tests := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"empty filter", TaskFilter{}, true},
		{"employee match", TaskFilter{EmployeeID: "e1"}, true},
		{"employee mismatch", TaskFilter{EmployeeID: "e2"}, false},
		{"unassigned only", TaskFilter{Unassigned: true}, false},
		{"status match", TaskFilter{Statuses: ActiveStatuses}, true},
		{"status mismatch", TaskFilter{Statuses: []TaskStatus{TaskStatusCompleted}}, false},
		{"range inclusive start", TaskFilter{StartFrom: start, StartBefore: start.Add(time.Hour)}, true},
		{"range exclusive end", TaskFilter{StartBefore: start}, false},
		{"type mismatch", TaskFilter{Type: TaskTypeInstallation}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(task); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalendarEventOverlaps(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	ev := CalendarEvent{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)}

	if !ev.Overlaps(day.Add(10*time.Hour+30*time.Minute), day.Add(12*time.Hour)) {
		t.Error("expected overlap")
	}
	// touching boundaries do not overlap
	if ev.Overlaps(day.Add(11*time.Hour), day.Add(12*time.Hour)) {
		t.Error("window starting at event end must not overlap")
	}
	if ev.Overlaps(day.Add(9*time.Hour), day.Add(10*time.Hour)) {
		t.Error("window ending at event start must not overlap")
	}
}

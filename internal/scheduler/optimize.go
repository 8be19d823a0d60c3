package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/telemetry"
	"github.com/julianstephens/crewplan/internal/workload"
)

// OptimizeResult summarizes one batch assignment run.
type OptimizeResult struct {
	Assigned int
	Failed   int
	// Tasks holds the tasks that received an assignee, in processing order
	Tasks   []models.Task
	Message string
}

// Optimize greedily assigns planned, unassigned tasks starting in [start, end).
// Tasks are taken in store order and each sees the assignments made before
// it. All assignments are committed in a single transaction that only writes
// the assignee, so tasks edited, cancelled or deleted meanwhile abort the batch
// with ErrConflict instead of being overwritten.
func (s *Scheduler) Optimize(ctx context.Context, start, end time.Time) (res OptimizeResult, err error) {
	began := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "scheduler.optimize",
		attribute.String("range.start", start.Format(time.RFC3339)),
		attribute.String("range.end", end.Format(time.RFC3339)),
	)
	defer func() {
		telemetry.EndSpan(span, err)
		if err == nil {
			telemetry.RecordOptimize(ctx, res.Assigned, res.Failed, time.Since(began))
		}
	}()

	pending, err := s.store.ListTasks(models.TaskFilter{
		Unassigned:  true,
		Statuses:    []models.TaskStatus{models.TaskStatusPlanned},
		StartFrom:   start,
		StartBefore: end,
	})
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("failed to list unassigned tasks: %w", err)
	}
	if len(pending) == 0 {
		return OptimizeResult{Message: "No unassigned tasks in range"}, nil
	}

	// pin the employee list so the stamps we commit are the ones we scored against
	employees, err := s.store.GetEmployees(false)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("failed to list employees: %w", err)
	}
	byID := make(map[string]models.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	overlay := workload.NewOverlay(s.store)
	sel := s.selector.with(fixedEmployees(employees), s.accountant.WithTasks(overlay))
	booked := make(map[string][]models.Task)

	for _, t := range pending {
		ranked, err := sel.Rank(ctx, t.Type, t.StartTime, t.EstimatedHours)
		if err != nil {
			return OptimizeResult{}, err
		}

		var pick *Candidate
		for i := range ranked {
			if !overlapsAny(booked[ranked[i].Employee.ID], t) {
				pick = &ranked[i]
				break
			}
		}
		if pick == nil {
			res.Failed++
			logger.Debug("No employee for task", "task", t.ID, "title", t.Title,
				"start", t.StartTime.In(s.cfg.Location).Format(constants.DateTimeFormat))
			continue
		}

		t.EmployeeID = pick.Employee.ID
		overlay.Put(t)
		booked[t.EmployeeID] = append(booked[t.EmployeeID], t)
		res.Tasks = append(res.Tasks, t)
		res.Assigned++
	}

	if res.Assigned > 0 {
		var stamps []models.VersionStamp
		for _, e := range employees {
			if len(booked[e.ID]) > 0 {
				stamps = append(stamps, e.Stamp())
			}
		}
		assignments := make([]models.Assignment, len(res.Tasks))
		for i, t := range res.Tasks {
			assignments[i] = models.Assignment{TaskID: t.ID, EmployeeID: t.EmployeeID}
		}
		if err := s.assign(ctx, assignments, stamps); err != nil {
			return OptimizeResult{}, err
		}
		for i := range res.Tasks {
			res.Tasks[i].EventID = s.createEvent(ctx, res.Tasks[i], byID[res.Tasks[i].EmployeeID])
		}
	}

	res.Message = fmt.Sprintf("Assigned %d task(s), %d could not be assigned", res.Assigned, res.Failed)
	logger.Info("Optimize finished", "assigned", res.Assigned, "failed", res.Failed)
	return res, nil
}

// overlapsAny reports whether t overlaps any task already booked in this batch.
func overlapsAny(booked []models.Task, t models.Task) bool {
	for _, b := range booked {
		if t.StartTime.Before(b.EndTime) && t.EndTime.After(b.StartTime) {
			return true
		}
	}
	return false
}

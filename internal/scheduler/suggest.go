package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/julianstephens/crewplan/internal/constants"
	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/telemetry"
)

// Suggestion lists candidate start times for a task, best first, and the
// employee the selector would pick for the first one.
type Suggestion struct {
	Starts []time.Time
	// Assignee is nil when nobody can take the first start
	Assignee *Candidate
	Message  string
}

// Found reports whether at least one start time was proposed.
func (s Suggestion) Found() bool {
	return len(s.Starts) > 0
}

// Suggest proposes up to five start times. Installations take the first
// weather-safe days from the preferred date on; production work takes the
// preferred time on each of the next days. A zero preferred time means now.
func (s *Scheduler) Suggest(ctx context.Context, taskType models.TaskType, hours float64, preferred time.Time) (out Suggestion, err error) {
	if _, perr := models.ParseTaskType(string(taskType)); perr != nil {
		return Suggestion{}, apperrors.Invalidf("%v", perr)
	}
	if err := models.ValidateHours(hours); err != nil {
		return Suggestion{}, apperrors.Invalidf("%v", err)
	}
	if preferred.IsZero() {
		preferred = s.now()
	}
	preferred = preferred.In(s.cfg.Location)

	ctx, span := telemetry.StartSpan(ctx, "scheduler.suggest",
		attribute.String("task.type", string(taskType)),
		attribute.Float64("task.hours", hours),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if taskType == models.TaskTypeInstallation {
		slots, err := s.SuggestInstallationDates(ctx, hours, preferred, constants.DefaultSuggestions)
		if err != nil {
			return Suggestion{}, err
		}
		for _, slot := range slots {
			out.Starts = append(out.Starts, slot.Start)
		}
	} else {
		for i := range constants.DefaultSuggestions {
			out.Starts = append(out.Starts, preferred.AddDate(0, 0, i))
		}
	}

	if !out.Found() {
		out.Message = "No suitable dates found"
		return out, nil
	}

	out.Assignee, err = s.selector.Select(ctx, taskType, out.Starts[0], hours)
	if err != nil {
		return Suggestion{}, err
	}
	out.Message = fmt.Sprintf("Found %d suitable date(s)", len(out.Starts))
	return out, nil
}

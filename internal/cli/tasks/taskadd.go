package tasks

import (
	"fmt"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/scheduler"
)

// TaskFields are the flags shared by task add and task plan.
type TaskFields struct {
	Title       string  `arg:"" help:"Task title."`
	Type        string  `short:"t" help:"Task type (installation|production)." required:""`
	Start       string  `short:"s" help:"Start time (YYYY-MM-DD HH:MM)." required:""`
	Hours       float64 `short:"d" help:"Duration in hours." required:""`
	Indoor      bool    `help:"Installation does not depend on the weather."`
	Priority    int     `short:"p" help:"Priority (1-5, lower is higher priority)." default:"3"`
	Description string  `help:"Task description."`
	Location    string  `short:"l" help:"Job site address."`
}

func (c *TaskFields) Validate() error {
	if _, err := models.ParseTaskType(c.Type); err != nil {
		return err
	}
	if c.Priority < constants.MinPriority || c.Priority > constants.MaxPriority {
		return fmt.Errorf("priority must be between %d and %d", constants.MinPriority, constants.MaxPriority)
	}
	return models.ValidateHours(c.Hours)
}

func (c *TaskFields) request(ctx *cli.Context) (scheduler.TaskRequest, error) {
	taskType, _ := models.ParseTaskType(c.Type)
	start, err := cli.ParseDateTime(c.Start, ctx.Location)
	if err != nil {
		return scheduler.TaskRequest{}, err
	}
	req := scheduler.NewTaskRequest(c.Title, taskType, start, c.Hours)
	req.WeatherDependent = !c.Indoor
	req.Priority = c.Priority
	req.Description = c.Description
	req.Location = c.Location
	return req, nil
}

// TaskAddCmd creates a task and assigns it immediately.
type TaskAddCmd struct {
	TaskFields `embed:""`
	Employee   string `short:"e" help:"Assign to this employee (id or name) instead of picking the best fit."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	if c.Employee != "" {
		e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
		if err != nil {
			return err
		}
		req.EmployeeID = e.ID
	}

	out, err := ctx.Scheduler.CreateAndSchedule(ctx.Base, req)
	if err != nil {
		return err
	}
	if !out.Scheduled() {
		cli.Warning("%s", out.Message)
		if out.Reason == scheduler.ReasonWeather {
			suggestDates(ctx, req)
		}
		return out.Err()
	}

	cli.Success("%s", out.Message)
	fmt.Printf("  id: %s\n", out.Task.ID)
	if out.Task.EventID == "" {
		fmt.Println(cli.MutedStyle.Render("  no calendar event was created"))
	}
	return nil
}

// suggestDates prints the next weather-safe days after a weather refusal.
func suggestDates(ctx *cli.Context, req scheduler.TaskRequest) {
	slots, err := ctx.Scheduler.SuggestInstallationDates(ctx.Base, req.DurationHours, req.Start, 3)
	if err != nil || len(slots) == 0 {
		return
	}
	fmt.Println("Next suitable installation days:")
	for _, s := range slots {
		fmt.Printf("  %s  %s, %.0f°C\n", s.Start.Format(constants.DateTimeFormat), s.Forecast.Condition, s.Forecast.Temperature)
	}
}

// TaskPlanCmd stores an unassigned task for a later optimization run.
type TaskPlanCmd struct {
	TaskFields `embed:""`
}

func (c *TaskPlanCmd) Run(ctx *cli.Context) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	task, err := ctx.Scheduler.PlanTask(ctx.Base, req)
	if err != nil {
		return err
	}
	cli.Success("Planned %q for %s (unassigned)", task.Title, task.StartTime.In(ctx.Location).Format(constants.DateTimeFormat))
	fmt.Printf("  id: %s\n", task.ID)
	return nil
}

package tasks

import (
	"fmt"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/models"
)

type TaskRescheduleCmd struct {
	ID    string  `arg:"" help:"Task id."`
	Start string  `short:"s" help:"New start time (YYYY-MM-DD HH:MM)." required:""`
	Hours float64 `short:"d" help:"New duration in hours. Keeps the current duration when omitted."`
}

func (c *TaskRescheduleCmd) Run(ctx *cli.Context) error {
	start, err := cli.ParseDateTime(c.Start, ctx.Location)
	if err != nil {
		return err
	}
	out, err := ctx.Scheduler.RescheduleTask(ctx.Base, c.ID, start, c.Hours)
	if err != nil {
		return err
	}
	if !out.Scheduled() {
		cli.Warning("%s", out.Message)
		return out.Err()
	}
	cli.Success("%s", out.Message)
	return nil
}

type TaskReassignCmd struct {
	ID       string `arg:"" help:"Task id."`
	Employee string `arg:"" help:"New employee (id or name)."`
}

func (c *TaskReassignCmd) Run(ctx *cli.Context) error {
	e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
	if err != nil {
		return err
	}
	out, err := ctx.Scheduler.ReassignTask(ctx.Base, c.ID, e.ID)
	if err != nil {
		return err
	}
	if !out.Scheduled() {
		cli.Warning("%s", out.Message)
		return out.Err()
	}
	cli.Success("%s", out.Message)
	return nil
}

type TaskStatusCmd struct {
	ID     string `arg:"" help:"Task id."`
	Status string `arg:"" help:"New status (planned|in_progress|completed|cancelled)."`
}

func (c *TaskStatusCmd) Run(ctx *cli.Context) error {
	status, err := models.ParseTaskStatus(c.Status)
	if err != nil {
		return err
	}
	task, err := ctx.Scheduler.SetTaskStatus(ctx.Base, c.ID, status)
	if err != nil {
		return err
	}
	cli.Success("Task %q is now %s", task.Title, task.Status)
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task id."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Scheduler.DeleteTask(ctx.Base, c.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	cli.Success("Deleted task %q", task.Title)
	return nil
}

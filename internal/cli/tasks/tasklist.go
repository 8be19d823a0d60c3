package tasks

import (
	"fmt"
	"strings"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

type TaskListCmd struct {
	Employee   string   `short:"e" help:"Only tasks assigned to this employee (id or name)."`
	Unassigned bool     `short:"u" help:"Only unassigned tasks."`
	Status     []string `help:"Only tasks in these statuses." placeholder:"STATUS"`
	Type       string   `short:"t" help:"Only tasks of this type."`
	From       string   `help:"Only tasks starting on or after this date (YYYY-MM-DD)."`
	To         string   `help:"Only tasks starting before this date (YYYY-MM-DD)."`
	All        bool     `short:"a" help:"Include completed and cancelled tasks."`
}

func (c *TaskListCmd) filter(ctx *cli.Context) (models.TaskFilter, error) {
	f := models.TaskFilter{Unassigned: c.Unassigned}
	if c.Employee != "" {
		e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
		if err != nil {
			return f, err
		}
		f.EmployeeID = e.ID
	}
	for _, s := range c.Status {
		st, err := models.ParseTaskStatus(s)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	if len(f.Statuses) == 0 && !c.All {
		f.Statuses = models.ActiveStatuses
	}
	if c.Type != "" {
		tt, err := models.ParseTaskType(c.Type)
		if err != nil {
			return f, err
		}
		f.Type = tt
	}
	if c.From != "" {
		d, err := cli.ParseDate(c.From, ctx.Location)
		if err != nil {
			return f, err
		}
		f.StartFrom = d
	}
	if c.To != "" {
		d, err := cli.ParseDate(c.To, ctx.Location)
		if err != nil {
			return f, err
		}
		f.StartBefore = d
	}
	return f, nil
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	f, err := c.filter(ctx)
	if err != nil {
		return err
	}
	tasks, err := ctx.Store.ListTasks(f)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	employees, err := ctx.Store.GetEmployees(true)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	cli.Header("Tasks (%d)", len(tasks))
	for _, t := range tasks {
		who := cli.WarnStyle.Render("unassigned")
		if t.Assigned() {
			who = names[t.EmployeeID]
		}
		flags := []string{string(t.Type), fmt.Sprintf("P%d", t.Priority)}
		if t.Type == models.TaskTypeInstallation && !t.WeatherDependent {
			flags = append(flags, "indoor")
		}
		fmt.Printf("  %s  %-6s %-28s %-18s %-11s [%s]\n",
			t.StartTime.In(ctx.Location).Format(constants.DateTimeFormat),
			cli.FormatHours(t.EstimatedHours), t.Title, who, t.Status, strings.Join(flags, ", "))
		fmt.Printf("  %s\n", cli.MutedStyle.Render(t.ID))
	}
	return nil
}

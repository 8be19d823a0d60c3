package employees

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/workload"
)

type EmployeeCmd struct {
	Add        EmployeeAddCmd        `cmd:"" help:"Add an employee."`
	List       EmployeeListCmd       `cmd:"" help:"List employees."`
	Update     EmployeeUpdateCmd     `cmd:"" help:"Update an employee."`
	Deactivate EmployeeDeactivateCmd `cmd:"" help:"Deactivate an employee."`
}

type EmployeeAddCmd struct {
	Name     string  `arg:"" help:"Employee name."`
	Class    string  `short:"c" help:"Capability class (installer|producer|both)." required:""`
	Email    string  `help:"Email address."`
	HourCap  float64 `name:"hour-cap" help:"Weekly hour cap." default:"40"`
	Calendar string  `help:"Calendar id to check availability against."`
}

func (c *EmployeeAddCmd) Validate() error {
	if _, err := models.ParseEmployeeClass(c.Class); err != nil {
		return err
	}
	if c.HourCap <= 0 {
		return fmt.Errorf("hour cap must be greater than zero")
	}
	return nil
}

func (c *EmployeeAddCmd) Run(ctx *cli.Context) error {
	class, _ := models.ParseEmployeeClass(c.Class)
	e := models.Employee{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(c.Name),
		Email:         c.Email,
		Class:         class,
		WeeklyHourCap: c.HourCap,
		Active:        true,
		CalendarID:    c.Calendar,
	}
	if err := ctx.Store.AddEmployee(e); err != nil {
		return err
	}
	cli.Success("Added %s (%s, %s/week) with id %s", e.Name, e.Class, cli.FormatHours(e.WeeklyHourCap), e.ID)
	return nil
}

type EmployeeListCmd struct {
	All bool `short:"a" help:"Include inactive employees."`
}

func (c *EmployeeListCmd) Run(ctx *cli.Context) error {
	employees, err := ctx.Store.GetEmployees(c.All)
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		fmt.Println("No employees found. Add one with 'crewplan employee add'.")
		return nil
	}

	now := time.Now().In(ctx.Location)
	weekStart, _ := workload.WeekBounds(now, ctx.Location)
	cli.Header("Employees (week of %s)", weekStart.Format(constants.DateFormat))
	for _, e := range employees {
		status := ""
		if !e.Active {
			status = cli.MutedStyle.Render(" [inactive]")
		}
		cal := cli.MutedStyle.Render("no calendar")
		if e.HasCalendar() {
			cal = e.CalendarID
		}
		w, err := ctx.Scheduler.Accountant().WeekWorkload(e, now)
		if err != nil {
			return err
		}
		fmt.Printf("  %-24s %-10s %s %5.0f%%  %s/%s  %s%s\n",
			e.Name, e.Class, cli.UtilizationBar(w.UtilizationPercent), w.UtilizationPercent,
			cli.FormatHours(w.CommittedHours), cli.FormatHours(w.Capacity), cal, status)
		fmt.Printf("  %s\n", cli.MutedStyle.Render(e.ID))
	}
	return nil
}

type EmployeeUpdateCmd struct {
	Employee string   `arg:"" help:"Employee id or name."`
	Name     *string  `help:"New name."`
	Class    *string  `short:"c" help:"New capability class (installer|producer|both)."`
	Email    *string  `help:"New email address."`
	HourCap  *float64 `name:"hour-cap" help:"New weekly hour cap."`
	Calendar *string  `help:"New calendar id. Empty unlinks the calendar."`
	Activate bool     `help:"Reactivate an inactive employee."`
}

func (c *EmployeeUpdateCmd) Run(ctx *cli.Context) error {
	e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
	if err != nil {
		return err
	}
	if c.Name != nil {
		e.Name = strings.TrimSpace(*c.Name)
	}
	if c.Class != nil {
		class, err := models.ParseEmployeeClass(*c.Class)
		if err != nil {
			return err
		}
		e.Class = class
	}
	if c.Email != nil {
		e.Email = *c.Email
	}
	if c.HourCap != nil {
		e.WeeklyHourCap = *c.HourCap
	}
	if c.Calendar != nil {
		e.CalendarID = strings.TrimSpace(*c.Calendar)
	}
	if c.Activate {
		e.Active = true
	}
	if err := ctx.Store.UpdateEmployee(e); err != nil {
		return err
	}
	cli.Success("Updated %s", e.Name)
	return nil
}

type EmployeeDeactivateCmd struct {
	Employee string `arg:"" help:"Employee id or name."`
}

func (c *EmployeeDeactivateCmd) Run(ctx *cli.Context) error {
	e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeactivateEmployee(e.ID); err != nil {
		return err
	}

	open, err := ctx.Store.ListTasks(models.TaskFilter{
		EmployeeID: e.ID,
		Statuses:   models.ActiveStatuses,
		StartFrom:  time.Now(),
	})
	if err != nil {
		return err
	}
	cli.Success("Deactivated %s", e.Name)
	if len(open) > 0 {
		cli.Warning("%s still has %d upcoming task(s); use 'crewplan task reassign' to move them", e.Name, len(open))
	}
	return nil
}

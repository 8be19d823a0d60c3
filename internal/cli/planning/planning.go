package planning

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/scheduler"
	"github.com/julianstephens/crewplan/internal/workload"
)

// WorkloadCmd shows weekly utilization for every active employee.
type WorkloadCmd struct {
	Week     string `short:"w" help:"Any date in the week to report (YYYY-MM-DD)." default:"today"`
	Employee string `short:"e" help:"Only this employee (id or name), with task details."`
}

func (c *WorkloadCmd) Run(ctx *cli.Context) error {
	day, err := cli.ParseDate(c.Week, ctx.Location)
	if err != nil {
		return err
	}
	start, end := workload.WeekBounds(day, ctx.Location)

	var employees []models.Employee
	if c.Employee != "" {
		e, err := cli.ResolveEmployee(ctx.Store, c.Employee)
		if err != nil {
			return err
		}
		employees = []models.Employee{e}
	} else if employees, err = ctx.Store.GetEmployees(false); err != nil {
		return err
	}
	if len(employees) == 0 {
		fmt.Println("No active employees.")
		return nil
	}

	cli.Header("Workload %s to %s", start.Format(constants.DateFormat), end.AddDate(0, 0, -1).Format(constants.DateFormat))
	for _, e := range employees {
		w, err := ctx.Scheduler.Workload(e.ID, start, end)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("  %-24s %s %5.0f%%  %s of %s, %s free",
			e.Name, cli.UtilizationBar(w.UtilizationPercent), w.UtilizationPercent,
			cli.FormatHours(w.CommittedHours), cli.FormatHours(w.Capacity), cli.FormatHours(max(w.AvailableHours, 0)))
		if w.Overloaded() {
			line += " " + cli.ErrorStyle.Render("OVERBOOKED")
		}
		fmt.Println(line)

		if c.Employee != "" {
			for _, t := range w.Tasks {
				fmt.Printf("    %s  %-6s %s (%s)\n", t.StartTime.In(ctx.Location).Format(constants.DateTimeFormat),
					cli.FormatHours(t.EstimatedHours), t.Title, t.Type)
			}
		}
	}
	return nil
}

// AvailabilityCmd shows each active employee's free time on a day.
type AvailabilityCmd struct {
	Date string `arg:"" optional:"" help:"Date to check (YYYY-MM-DD, today, tomorrow)." default:"today"`
}

func (c *AvailabilityCmd) Run(ctx *cli.Context) error {
	day, err := cli.ParseDate(c.Date, ctx.Location)
	if err != nil {
		return err
	}
	avail, err := ctx.Scheduler.Availability(ctx.Base, day)
	if err != nil {
		return err
	}
	if len(avail) == 0 {
		fmt.Println("No active employees.")
		return nil
	}

	cli.Header("Availability on %s", day.Format("Mon 2006-01-02"))
	for _, a := range avail {
		note := ""
		if !a.CalendarChecked {
			note = cli.MutedStyle.Render(" (calendar not checked)")
		}
		fmt.Printf("  %-24s %-10s %s free this week%s\n", a.Employee.Name, a.Employee.Class,
			cli.FormatHours(max(a.AvailableHours, 0)), note)
		fmt.Printf("    %s\n", formatSlots(a.FreeSlots, ctx.Location))
	}
	return nil
}

func formatSlots(slots []models.TimeSlot, loc *time.Location) string {
	if len(slots) == 0 {
		return cli.WarnStyle.Render("fully booked")
	}
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.Start.In(loc).Format(constants.TimeFormat) + "-" + s.End.In(loc).Format(constants.TimeFormat)
	}
	return strings.Join(parts, ", ")
}

// SlotsCmd proposes weather-safe installation days.
type SlotsCmd struct {
	Hours   float64 `short:"d" help:"Installation duration in hours." default:"8"`
	From    string  `help:"Preferred first day (YYYY-MM-DD)." default:"today"`
	Count   int     `short:"n" help:"Maximum number of days to propose (0 for all)." default:"5"`
	Horizon int     `help:"Days of forecast to search." default:"14"`
	MinTemp float64 `name:"min-temp" help:"Minimum temperature in °C." default:"5"`
}

func (c *SlotsCmd) Run(ctx *cli.Context) error {
	from, err := cli.ParseDate(c.From, ctx.Location)
	if err != nil {
		return err
	}
	if err := models.ValidateHours(c.Hours); err != nil {
		return err
	}
	q := scheduler.NewSlotQuery(c.Hours, from)
	q.Count = c.Count
	q.HorizonDays = c.Horizon
	q.MinTemp = c.MinTemp

	slots := ctx.Scheduler.FindInstallationSlots(ctx.Base, q)
	if len(slots) == 0 {
		cli.Warning("No suitable installation days in the next %d days", c.Horizon)
		return nil
	}
	cli.Header("Suitable installation days")
	for _, s := range slots {
		fmt.Printf("  %s  %s-%s  %-8s %5.1f°C  %.1fmm\n",
			s.Date.Format("Mon 2006-01-02"),
			s.Start.In(ctx.Location).Format(constants.TimeFormat),
			s.End.In(ctx.Location).Format(constants.TimeFormat),
			s.Forecast.Condition, s.Forecast.Temperature, s.Forecast.Precipitation)
	}
	return nil
}

// SuggestCmd proposes start dates for a task and who should take the first one.
type SuggestCmd struct {
	Type  string  `short:"t" help:"Task type (installation|production)." required:""`
	Hours float64 `short:"d" help:"Estimated duration in hours." default:"8"`
	From  string  `help:"Preferred start (YYYY-MM-DD or YYYY-MM-DD HH:MM). A bare date starts at the beginning of the working day." default:"today"`
}

func (c *SuggestCmd) Validate() error {
	if _, err := models.ParseTaskType(c.Type); err != nil {
		return err
	}
	return models.ValidateHours(c.Hours)
}

func (c *SuggestCmd) Run(ctx *cli.Context) error {
	taskType, _ := models.ParseTaskType(c.Type)
	from, err := preferredStart(c.From, ctx.Location, ctx.Config.Work.StartHour)
	if err != nil {
		return err
	}

	s, err := ctx.Scheduler.Suggest(ctx.Base, taskType, c.Hours, from)
	if err != nil {
		return err
	}
	if !s.Found() {
		cli.Warning("%s", s.Message)
		return nil
	}

	cli.Header("%s for %s of %s work", s.Message, cli.FormatHours(c.Hours), taskType)
	for i, start := range s.Starts {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, start.In(ctx.Location).Format("Mon "+constants.DateTimeFormat))
	}
	if s.Assignee == nil {
		cli.Warning("Nobody is free for the first date")
		return nil
	}
	cli.Success("Best employee for the first date: %s (score %.1f, %s free that week)",
		s.Assignee.Employee.Name, s.Assignee.Score, cli.FormatHours(max(s.Assignee.Week.AvailableHours, 0)))
	return nil
}

// preferredStart accepts a date-time, or a date that is moved to the start of
// the working day.
func preferredStart(s string, loc *time.Location, workStartHour int) (time.Time, error) {
	if t, err := cli.ParseDateTime(s, loc); err == nil {
		return t, nil
	}
	day, err := cli.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), workStartHour, 0, 0, 0, loc), nil
}

// OptimizeCmd assigns every unassigned planned task in a date range.
type OptimizeCmd struct {
	From string `help:"First day of the range (YYYY-MM-DD)." default:"today"`
	Days int    `help:"Number of days in the range." default:"14"`
}

func (c *OptimizeCmd) Run(ctx *cli.Context) error {
	from, err := cli.ParseDate(c.From, ctx.Location)
	if err != nil {
		return err
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be greater than zero")
	}
	to := from.AddDate(0, 0, c.Days)

	ctx.PerformAutomaticBackup()
	res, err := ctx.Scheduler.Optimize(ctx.Base, from, to)
	if err != nil {
		return err
	}
	if res.Assigned == 0 && res.Failed == 0 {
		fmt.Println(res.Message)
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
	for _, t := range res.Tasks {
		fmt.Printf("  %s  %s → %s\n", t.StartTime.In(ctx.Location).Format(constants.DateTimeFormat), t.Title, names[t.EmployeeID])
	}
	if res.Failed > 0 {
		cli.Warning("%s", res.Message)
	} else {
		cli.Success("%s", res.Message)
	}
	return nil
}

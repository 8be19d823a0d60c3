package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/crewplan/internal/backup"
	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly failures do not fail the run
	warnOnly bool
	fn       func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, fn: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, fn: checkBackupsPresent},
	{name: "Data validation", needsDB: true, fn: checkValidation},
	{name: "Employee capacity", needsDB: true, warnOnly: true, fn: checkCapacity},
	{name: "Clock/timezone", fn: func(*cli.Context) error { return checkClockTimezone() }},
	{name: "Weather oracle", warnOnly: true, fn: checkWeather},
	{name: "Calendar oracle", warnOnly: true, fn: checkCalendar},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.fn(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.GetEmployees(true)
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d (run 'crewplan migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if storage.IsPostgres(ctx.Store.GetConfigPath()) {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

// checkValidation verifies stored tasks and employees still satisfy their invariants.
func checkValidation(ctx *cli.Context) error {
	employees, err := ctx.Store.GetEmployees(true)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Employee, len(employees))
	for _, e := range employees {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("employee %s: %w", e.ID, err)
		}
		byID[e.ID] = e
	}

	tasks, err := ctx.Store.ListTasks(models.TaskFilter{})
	if err != nil {
		return err
	}
	var problems []error
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		if !t.Assigned() {
			continue
		}
		e, ok := byID[t.EmployeeID]
		if !ok {
			problems = append(problems, fmt.Errorf("task %s: unknown employee %s", t.ID, t.EmployeeID))
			continue
		}
		if !e.Class.Compatible(t.Type) {
			problems = append(problems, fmt.Errorf("task %s: %s cannot do %s work", t.ID, e.Name, t.Type))
		}
	}
	return errors.Join(problems...)
}

// checkCapacity warns about employees booked over their cap this week.
func checkCapacity(ctx *cli.Context) error {
	employees, err := ctx.Store.GetEmployees(false)
	if err != nil {
		return err
	}
	var over []error
	for _, e := range employees {
		w, err := ctx.Scheduler.Accountant().WeekWorkload(e, time.Now())
		if err != nil {
			return err
		}
		if w.Overloaded() {
			over = append(over, fmt.Errorf("%s is booked %s of %s this week",
				e.Name, cli.FormatHours(w.CommittedHours), cli.FormatHours(w.Capacity)))
		}
	}
	return errors.Join(over...)
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkWeather(ctx *cli.Context) error {
	_, err := ctx.Weather.FetchCurrent(ctx.Base)
	return err
}

func checkCalendar(ctx *cli.Context) error {
	if ctx.Calendar == nil {
		return errors.New("calendar provider is disabled, availability is not checked")
	}
	employees, err := ctx.Store.GetEmployees(false)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, e := range employees {
		if !e.HasCalendar() {
			continue
		}
		if _, err := ctx.Calendar.Events(ctx.Base, e.CalendarID, now, now.Add(24*time.Hour)); err != nil {
			return fmt.Errorf("calendar of %s: %w", e.Name, err)
		}
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/crewplan/internal/backup"
	"github.com/julianstephens/crewplan/internal/calendar"
	"github.com/julianstephens/crewplan/internal/config"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/keyring"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/scheduler"
	"github.com/julianstephens/crewplan/internal/storage"
	"github.com/julianstephens/crewplan/internal/weather"
)

type Context struct {
	// Base is the process context commands derive oracle calls from
	Base      context.Context
	Config    *config.Config
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Weather   *weather.Service
	// Calendar is nil when the calendar provider is "none"
	Calendar *calendar.Service
	Location *time.Location
}

// NewContext wires the oracles and the scheduler around an opened store.
func NewContext(ctx context.Context, cfg *config.Config, store storage.Provider) (*Context, error) {
	loc := cfg.Location()
	c := &Context{Base: ctx, Config: cfg, Store: store, Location: loc}

	cal, err := newCalendar(ctx, cfg, store, loc)
	if err != nil {
		return nil, err
	}
	c.Calendar = cal
	c.Weather = weather.NewService(newWeatherProvider(cfg), weather.WithLocation(loc))

	var avail scheduler.AvailabilityOracle
	if cal != nil {
		avail = cal
	}
	c.Scheduler = scheduler.New(store, avail, c.Weather, scheduler.WithConfig(scheduler.Config{
		Location:      loc,
		WorkStartHour: cfg.Work.StartHour,
		WorkEndHour:   cfg.Work.EndHour,
	}))
	return c, nil
}

func newCalendar(ctx context.Context, cfg *config.Config, store storage.Provider, loc *time.Location) (*calendar.Service, error) {
	opts := calendar.DefaultSlotOptions()
	opts.WorkStartHour = cfg.Work.StartHour
	opts.WorkEndHour = cfg.Work.EndHour

	var p calendar.Provider
	switch cfg.Calendar.Provider {
	case "none":
		return nil, nil
	case "google":
		gp, err := calendar.NewGoogleProvider(ctx, calendar.GoogleConfig{
			CredentialsFile: cfg.Calendar.CredentialsFile,
			Endpoint:        cfg.Calendar.Endpoint,
			Location:        loc,
		})
		if err != nil {
			return nil, err
		}
		p = gp
	default:
		p = calendar.NewLocalProvider(store)
	}
	return calendar.NewService(p, calendar.WithLocation(loc), calendar.WithSlotOptions(opts)), nil
}

// newWeatherProvider resolves the API key from the environment, then the
// keyring. Without a key the weather oracle answers with its defaults.
func newWeatherProvider(cfg *config.Config) weather.Provider {
	key := cfg.Weather.APIKey
	if key == "" {
		v, err := keyring.Get(keyring.WeatherAPIKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read weather API key from keyring", "error", err)
		}
		key = v
	}
	p, err := weather.NewOpenWeatherMap(weather.OpenWeatherMapConfig{
		APIKey:   key,
		Location: cfg.Weather.Location,
		Lang:     cfg.Weather.Lang,
		BaseURL:  cfg.Weather.BaseURL,
	})
	if err != nil {
		logger.Warn("Weather unavailable, installations will be refused", "error", err)
		return weather.Unavailable(err)
	}
	return p
}

// PerformAutomaticBackup snapshots a SQLite database and silently handles errors.
func (c *Context) PerformAutomaticBackup() {
	if storage.IsPostgres(c.Store.GetConfigPath()) {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

var dateTimeLayouts = []string{
	constants.DateTimeFormat,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDateTime parses RFC3339 timestamps as given and naive timestamps in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q (expected YYYY-MM-DD HH:MM)", s)
}

// ParseDate parses YYYY-MM-DD as midnight in loc; "today" and "" mean today.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		n := time.Now().In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	case "tomorrow":
		n := time.Now().In(loc)
		return time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// ResolveEmployee finds an employee by id, or by case-insensitive name.
func ResolveEmployee(store storage.Provider, ref string) (models.Employee, error) {
	if e, err := store.GetEmployee(ref); err == nil {
		return e, nil
	}
	all, err := store.GetEmployees(true)
	if err != nil {
		return models.Employee{}, err
	}
	var match []models.Employee
	for _, e := range all {
		if strings.EqualFold(e.Name, ref) {
			match = append(match, e)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return models.Employee{}, fmt.Errorf("employee %q not found", ref)
	default:
		return models.Employee{}, fmt.Errorf("employee name %q is ambiguous, use the id", ref)
	}
}

// FormatHours renders fractional hours as "7.5h".
func FormatHours(h float64) string {
	return strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64) + "h"
}

package scheduler

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

// SlotQuery describes the installation windows a caller is looking for.
type SlotQuery struct {
	DurationHours  float64
	PreferredStart time.Time
	HorizonDays    int
	MinTemp        float64
	// Count caps the number of slots; 0 returns every qualifying day
	Count int
}

// NewSlotQuery returns a query with the default horizon and temperature floor.
func NewSlotQuery(hours float64, preferred time.Time) SlotQuery {
	return SlotQuery{
		DurationHours:  hours,
		PreferredStart: preferred,
		HorizonDays:    constants.DefaultHorizonDays,
		MinTemp:        constants.DefaultMinInstallTemp,
	}
}

// SlotFinder proposes weather-safe installation days.
type SlotFinder struct {
	weather       WeatherOracle
	loc           *time.Location
	workStartHour int
}

func NewSlotFinder(weather WeatherOracle, loc *time.Location, workStartHour int) *SlotFinder {
	return &SlotFinder{weather: weather, loc: loc, workStartHour: workStartHour}
}

// FindInstallationSlots fetches the forecast once and collects qualifying days.
func (f *SlotFinder) FindInstallationSlots(ctx context.Context, q SlotQuery) []models.InstallationSlot {
	horizon := q.HorizonDays
	if horizon <= 0 {
		horizon = constants.DefaultHorizonDays
	}
	forecast := f.weather.Forecast(ctx, horizon)
	return slices.Collect(InstallationSlots(forecast, q, f.loc, f.workStartHour))
}

// InstallationSlots yields qualifying forecast days in order. The sequence is
// a pure function of its inputs and can be ranged over any number of times.
func InstallationSlots(forecast []models.ForecastDay, q SlotQuery, loc *time.Location, workStartHour int) iter.Seq[models.InstallationSlot] {
	p := q.PreferredStart.In(loc)
	firstDay := time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, loc)
	length := models.HoursToDuration(q.DurationHours)

	return func(yield func(models.InstallationSlot) bool) {
		n := 0
		for _, day := range forecast {
			d := day.Date.In(loc)
			date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
			if date.Before(firstDay) {
				continue
			}
			if !day.SuitableForInstallation || day.Temperature < q.MinTemp {
				continue
			}
			start := time.Date(d.Year(), d.Month(), d.Day(), workStartHour, 0, 0, 0, loc)
			if !yield(models.InstallationSlot{Date: date, Start: start, End: start.Add(length), Forecast: day}) {
				return
			}
			n++
			if q.Count > 0 && n >= q.Count {
				return
			}
		}
	}
}

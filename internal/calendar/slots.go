package calendar

import (
	"time"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

func DefaultSlotOptions() models.SlotOptions {
	return models.SlotOptions{
		WorkStartHour: constants.DefaultWorkStartHour,
		WorkEndHour:   constants.DefaultWorkEndHour,
		SlotHours:     constants.DefaultSlotHours,
		Step:          constants.DefaultSlotStep,
	}
}

// WorkingDay returns the working hours of the day containing date in loc.
func WorkingDay(date time.Time, loc *time.Location, opts models.SlotOptions) models.TimeSlot {
	d := date.In(loc)
	return models.TimeSlot{
		Start: time.Date(d.Year(), d.Month(), d.Day(), opts.WorkStartHour, 0, 0, 0, loc),
		End:   time.Date(d.Year(), d.Month(), d.Day(), opts.WorkEndHour, 0, 0, 0, loc),
	}
}

// ComputeFreeSlots slides a SlotHours window across the working day in Step
// increments and keeps every position that no event overlaps.
func ComputeFreeSlots(date time.Time, loc *time.Location, events []models.CalendarEvent, opts models.SlotOptions) []models.TimeSlot {
	day := WorkingDay(date, loc, opts)
	length := models.HoursToDuration(opts.SlotHours)
	step := opts.Step
	if step <= 0 {
		step = constants.DefaultSlotStep
	}
	if length <= 0 {
		return nil
	}

	var slots []models.TimeSlot
	for cur := day.Start; !cur.Add(length).After(day.End); cur = cur.Add(step) {
		end := cur.Add(length)
		busy := false
		for _, ev := range events {
			if ev.Overlaps(cur, end) {
				busy = true
				break
			}
		}
		if !busy {
			slots = append(slots, models.TimeSlot{Start: cur, End: end})
		}
	}
	return slots
}

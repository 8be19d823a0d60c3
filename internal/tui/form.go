package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/scheduler"
)

// NewTaskForm creates the form for adding a task.
func NewTaskForm(fm *TaskFormModel, loc *time.Location) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.TaskType]().
				Title("Type").
				Options(
					huh.NewOption("Installation", models.TaskTypeInstallation),
					huh.NewOption("Production", models.TaskTypeProduction),
				).
				Value(&fm.Type),
			huh.NewInput().
				Title("Start (YYYY-MM-DD HH:MM)").
				Value(&fm.Start).
				Validate(func(s string) error {
					_, err := time.ParseInLocation(constants.DateTimeFormat, strings.TrimSpace(s), loc)
					return err
				}),
			huh.NewInput().
				Title("Duration (hours)").
				Value(&fm.Hours).
				Validate(func(s string) error {
					_, err := parseHours(s)
					return err
				}),
			huh.NewConfirm().
				Title("Indoor installation (ignore weather)?").
				Value(&fm.Indoor),
		),
	).WithTheme(huh.ThemeDracula())
}

func parseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("duration must be a number of hours")
	}
	if h <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	return h, nil
}

// Request converts a completed form into a scheduling request.
func (fm *TaskFormModel) Request(loc *time.Location) (scheduler.TaskRequest, error) {
	start, err := time.ParseInLocation(constants.DateTimeFormat, strings.TrimSpace(fm.Start), loc)
	if err != nil {
		return scheduler.TaskRequest{}, err
	}
	hours, err := parseHours(fm.Hours)
	if err != nil {
		return scheduler.TaskRequest{}, err
	}
	req := scheduler.NewTaskRequest(strings.TrimSpace(fm.Title), fm.Type, start, hours)
	req.WeatherDependent = !fm.Indoor
	return req, nil
}

package forecast

import (
	"fmt"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

type WeatherCmd struct {
	Current   WeatherCurrentCmd   `cmd:"" help:"Show current conditions." default:"1"`
	Forecast  WeatherForecastCmd  `cmd:"" help:"Show the daily forecast."`
	Recommend WeatherRecommendCmd `cmd:"" help:"Recommend installation or production work for a day."`
}

type WeatherCurrentCmd struct{}

func (c *WeatherCurrentCmd) Run(ctx *cli.Context) error {
	cond, err := ctx.Weather.FetchCurrent(ctx.Base)
	if err != nil {
		return err
	}
	cli.Header("Current weather in %s", ctx.Config.Weather.Location)
	printConditions(cond)
	return nil
}

type WeatherForecastCmd struct {
	Days int `short:"n" help:"Number of days." default:"5"`
}

func (c *WeatherForecastCmd) Run(ctx *cli.Context) error {
	days, err := ctx.Weather.FetchForecast(ctx.Base, c.Days)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("No forecast data available.")
		return nil
	}
	cli.Header("Forecast for %s", ctx.Config.Weather.Location)
	for _, d := range days {
		fmt.Printf("  %s  %-8s %5.1f°C  %4.1fmm  %s\n",
			d.Date.Format("Mon 2006-01-02"), d.Condition, d.Temperature, d.Precipitation, suitability(d.SuitableForInstallation))
	}
	return nil
}

type WeatherRecommendCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, tomorrow)." default:"today"`
}

func (c *WeatherRecommendCmd) Run(ctx *cli.Context) error {
	day, err := cli.ParseDate(c.Date, ctx.Location)
	if err != nil {
		return err
	}
	rec := ctx.Weather.Recommendation(ctx.Base, day)
	switch rec {
	case models.RecommendInstallation:
		cli.Success("%s: good day for installation work", day.Format(constants.DateFormat))
	default:
		cli.Warning("%s: plan production work", day.Format(constants.DateFormat))
	}
	return nil
}

func printConditions(c models.Conditions) {
	fmt.Printf("  Condition:     %s (%s)\n", c.Condition, c.Description)
	fmt.Printf("  Temperature:   %.1f°C\n", c.Temperature)
	fmt.Printf("  Precipitation: %.1fmm\n", c.Precipitation)
	fmt.Printf("  Humidity:      %d%%\n", c.Humidity)
	fmt.Printf("  Wind:          %.1f m/s\n", c.WindSpeed)
	fmt.Printf("  Installation:  %s\n", suitability(c.SuitableForInstallation))
}

func suitability(ok bool) string {
	if ok {
		return cli.OKStyle.Render("suitable")
	}
	return cli.WarnStyle.Render("not suitable")
}

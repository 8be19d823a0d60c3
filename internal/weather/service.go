package weather

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/crewplan/internal/constants"
	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/oracle"
)

var badConditions = map[string]bool{
	"rain":         true,
	"drizzle":      true,
	"thunderstorm": true,
	"snow":         true,
	"mist":         true,
	"fog":          true,
}

// IsSuitableForInstallation is the outdoor-work verdict for a single reading.
func IsSuitableForInstallation(condition string, temperature, precipitationMM float64) bool {
	if temperature < constants.MinInstallFreezingTemp {
		return false
	}
	if precipitationMM > constants.MaxInstallPrecipMM {
		return false
	}
	return !badConditions[strings.ToLower(strings.TrimSpace(condition))]
}

// Service is the weather oracle. It never fails: provider errors degrade to
// conservative answers (no forecast, production work).
type Service struct {
	provider Provider
	loc      *time.Location
	policy   oracle.Policy
	now      func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithPolicy(p oracle.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithClock replaces time.Now for "is it today" decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(p Provider, opts ...Option) *Service {
	s := &Service{
		provider: p,
		loc:      time.UTC,
		policy:   oracle.DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policy.Retryable = retryable
	return s
}

func retryable(err error) bool {
	var p interface{ Permanent() bool }
	if errors.As(err, &p) {
		return !p.Permanent()
	}
	return true
}

// DefaultConditions is reported when current weather is unavailable.
func DefaultConditions() models.Conditions {
	return models.Conditions{
		Condition:               "unknown",
		Description:             "weather unavailable",
		Temperature:             constants.DefaultWeatherTemp,
		Humidity:                constants.DefaultWeatherHumidity,
		SuitableForInstallation: false,
	}
}

// Current returns the current conditions, or DefaultConditions on failure.
func (s *Service) Current(ctx context.Context) models.Conditions {
	c, err := s.FetchCurrent(ctx)
	if err != nil {
		logger.Warn("Current weather unavailable, using defaults", "error", err)
		return DefaultConditions()
	}
	return c
}

// FetchCurrent is Current without degradation.
func (s *Service) FetchCurrent(ctx context.Context) (models.Conditions, error) {
	var c models.Conditions
	err := oracle.Call(ctx, "weather", "current", s.policy, func(ctx context.Context) error {
		var err error
		c, err = s.provider.Current(ctx)
		return err
	})
	if err != nil {
		return models.Conditions{}, apperrors.Oracle("weather", err)
	}
	c.Time = c.Time.In(s.loc)
	return c, nil
}

// Forecast returns at most days daily readings, or none on failure.
func (s *Service) Forecast(ctx context.Context, days int) []models.ForecastDay {
	f, err := s.FetchForecast(ctx, days)
	if err != nil {
		logger.Warn("Weather forecast unavailable", "error", err)
		return nil
	}
	return f
}

// FetchForecast is Forecast without degradation.
func (s *Service) FetchForecast(ctx context.Context, days int) ([]models.ForecastDay, error) {
	var readings []models.Conditions
	err := oracle.Call(ctx, "weather", "forecast", s.policy, func(ctx context.Context) error {
		var err error
		readings, err = s.provider.Forecast(ctx)
		return err
	})
	if err != nil {
		return nil, apperrors.Oracle("weather", err)
	}
	return DailyForecast(readings, s.loc, days), nil
}

// DailyForecast keeps the first midday reading of each calendar day in loc.
func DailyForecast(readings []models.Conditions, loc *time.Location, days int) []models.ForecastDay {
	var out []models.ForecastDay
	seen := make(map[string]bool)
	for _, r := range readings {
		if days > 0 && len(out) >= days {
			break
		}
		local := r.Time.In(loc)
		key := local.Format(constants.DateFormat)
		if seen[key] || local.Hour() < constants.ForecastNoonFromHour || local.Hour() > constants.ForecastNoonToHour {
			continue
		}
		seen[key] = true
		r.Time = local
		out = append(out, models.ForecastDay{
			Date:       time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
			Conditions: r,
		})
	}
	return out
}

// Recommendation answers what kind of work the weather allows on date.
// Today uses current conditions; other days use the forecast; missing data
// means production.
func (s *Service) Recommendation(ctx context.Context, date time.Time) models.WorkRecommendation {
	day := date.In(s.loc).Format(constants.DateFormat)
	if day == s.now().In(s.loc).Format(constants.DateFormat) {
		return recommend(s.Current(ctx).SuitableForInstallation)
	}
	for _, f := range s.Forecast(ctx, constants.DefaultHorizonDays) {
		if f.Date.Format(constants.DateFormat) == day {
			return recommend(f.SuitableForInstallation)
		}
	}
	return models.RecommendProduction
}

func recommend(suitable bool) models.WorkRecommendation {
	if suitable {
		return models.RecommendInstallation
	}
	return models.RecommendProduction
}

func (s *Service) Location() *time.Location {
	return s.loc
}

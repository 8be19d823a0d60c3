package weather

import (
	"context"

	"github.com/julianstephens/crewplan/internal/models"
)

type unavailableError struct{ err error }

func (e unavailableError) Error() string   { return e.err.Error() }
func (e unavailableError) Unwrap() error   { return e.err }
func (e unavailableError) Permanent() bool { return true }

// Unavailable returns a provider that always fails with err, so a Service
// built on it answers with its degraded defaults.
func Unavailable(err error) Provider {
	return unavailable{err: unavailableError{err: err}}
}

type unavailable struct{ err error }

func (u unavailable) Current(context.Context) (models.Conditions, error) {
	return models.Conditions{}, u.err
}

func (u unavailable) Forecast(context.Context) ([]models.Conditions, error) {
	return nil, u.err
}

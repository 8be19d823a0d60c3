package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/julianstephens/crewplan/internal/constants"
	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

type GoogleConfig struct {
	// CredentialsFile is a service-account JSON key with access to the team calendars
	CredentialsFile string
	// Endpoint overrides the API base URL
	Endpoint string
	// Location resolves all-day events
	Location *time.Location
	// HTTPClient replaces the authenticated client; used with test servers
	HTTPClient *http.Client
}

// GoogleProvider reads and writes events through the Google Calendar API v3.
type GoogleProvider struct {
	svc *gcal.Service
	loc *time.Location
}

func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("google calendar requires a credentials file")
		}
		transport, err := htransport.NewTransport(ctx,
			otelhttp.NewTransport(http.DefaultTransport),
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(gcal.CalendarScope),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load google credentials: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: transport,
			Timeout:   constants.OracleTimeout,
		}))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google calendar client: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleProvider{svc: svc, loc: loc}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	call := p.svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			// cancelled and "show as available" events do not block time
			if item.Status == "cancelled" || item.Transparency == "transparent" {
				continue
			}
			ev, err := p.fromAPI(calendarID, item)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, p.mapError(err, calendarID)
	}
	return events, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error) {
	body := toAPI(ev)
	body.Id = ev.ID
	created, err := p.svc.Events.Insert(ev.CalendarID, body).Context(ctx).Do()
	if err != nil {
		return "", p.mapError(err, ev.ID)
	}
	return created.Id, nil
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, ev models.CalendarEvent) error {
	_, err := p.svc.Events.Patch(ev.CalendarID, ev.ID, toAPI(ev)).Context(ctx).Do()
	if err != nil {
		return p.mapError(err, ev.ID)
	}
	return nil
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := p.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return p.mapError(err, eventID)
	}
	return nil
}

func toAPI(ev models.CalendarEvent) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
}

func (p *GoogleProvider) fromAPI(calendarID string, item *gcal.Event) (models.CalendarEvent, error) {
	start, err := p.parseDateTime(item.Start)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("event %s start: %w", item.Id, err)
	}
	end, err := p.parseDateTime(item.End)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("event %s end: %w", item.Id, err)
	}
	return models.CalendarEvent{
		ID:          item.Id,
		CalendarID:  calendarID,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       start,
		End:         end,
	}, nil
}

// parseDateTime handles timed events (DateTime) and all-day events (Date).
func (p *GoogleProvider) parseDateTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("missing time")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	return time.ParseInLocation(constants.DateFormat, dt.Date, p.loc)
}

// permanentError marks client-side API failures that a retry cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string   { return e.err.Error() }
func (e permanentError) Unwrap() error   { return e.err }
func (e permanentError) Permanent() bool { return true }

func (p *GoogleProvider) mapError(err error, subject string) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone:
		return apperrors.NotFoundf("google calendar %s", subject)
	case gerr.Code == http.StatusConflict:
		return apperrors.Conflictf("google calendar %s", subject)
	case gerr.Code >= 400 && gerr.Code < 500 && gerr.Code != http.StatusTooManyRequests:
		return permanentError{err: err}
	default:
		return err
	}
}

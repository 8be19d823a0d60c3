package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/models"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Provider fetches raw readings. Errors are returned as-is; Service degrades them.
type Provider interface {
	Current(ctx context.Context) (models.Conditions, error)
	// Forecast returns readings in chronological order.
	Forecast(ctx context.Context) ([]models.Conditions, error)
}

type OpenWeatherMapConfig struct {
	APIKey string
	// Location is an OpenWeatherMap "q" query, e.g. "Bratislava,SK"
	Location string
	Lang     string
	BaseURL  string
	// HTTPClient defaults to an instrumented client with the oracle timeout
	HTTPClient *http.Client
}

type OpenWeatherMap struct {
	cfg    OpenWeatherMapConfig
	client *http.Client
}

func NewOpenWeatherMap(cfg OpenWeatherMapConfig) (*OpenWeatherMap, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("weather API key is not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Location == "" {
		cfg.Location = "Bratislava,SK"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   constants.OracleTimeout,
		}
	}
	return &OpenWeatherMap{cfg: cfg, client: client}, nil
}

type owmReading struct {
	Dt      int64 `json:"dt"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain map[string]float64 `json:"rain"`
}

type owmForecast struct {
	List []owmReading `json:"list"`
}

// statusError is a non-2xx answer from the API.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openweathermap returned %d: %s", e.code, e.body)
}

// Permanent reports whether retrying cannot help (bad key, unknown city).
func (e *statusError) Permanent() bool {
	return e.code >= 400 && e.code < 500 && e.code != http.StatusTooManyRequests
}

func (c *OpenWeatherMap) Current(ctx context.Context) (models.Conditions, error) {
	var r owmReading
	if err := c.get(ctx, "weather", &r); err != nil {
		return models.Conditions{}, err
	}
	return toConditions(r, "1h"), nil
}

func (c *OpenWeatherMap) Forecast(ctx context.Context) ([]models.Conditions, error) {
	var f owmForecast
	if err := c.get(ctx, "forecast", &f); err != nil {
		return nil, err
	}
	out := make([]models.Conditions, 0, len(f.List))
	for _, r := range f.List {
		out = append(out, toConditions(r, "3h"))
	}
	return out, nil
}

func (c *OpenWeatherMap) get(ctx context.Context, endpoint string, dst any) error {
	q := url.Values{}
	q.Set("q", c.cfg.Location)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// toConditions maps one reading; rainKey selects the precipitation window ("1h" or "3h").
func toConditions(r owmReading, rainKey string) models.Conditions {
	c := models.Conditions{
		Time:          time.Unix(r.Dt, 0).UTC(),
		Condition:     "unknown",
		Temperature:   r.Main.Temp,
		Precipitation: r.Rain[rainKey],
		Humidity:      r.Main.Humidity,
		WindSpeed:     r.Wind.Speed,
	}
	if len(r.Weather) > 0 {
		c.Condition = strings.ToLower(r.Weather[0].Main)
		c.Description = r.Weather[0].Description
	}
	c.SuitableForInstallation = IsSuitableForInstallation(c.Condition, c.Temperature, c.Precipitation)
	return c
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/crewplan/internal/constants"
)

// Environment overrides
const (
	EnvHome         = "CREWPLAN_HOME"
	EnvDBConnection = "CREWPLAN_DB_CONNECTION"
	EnvWeatherKey   = "CREWPLAN_WEATHER_API_KEY"
)

const defaultConfigYAML = `# crewplan configuration
timezone: Europe/Bratislava

# SQLite file path or a PostgreSQL URL without credentials
database:
  path: ""

work:
  start_hour: 8
  end_hour: 17

weather:
  # OpenWeatherMap "q" query; the API key lives in the keyring or CREWPLAN_WEATHER_API_KEY
  location: Bratislava,SK
  lang: sk

calendar:
  # local, google or none
  provider: local
  credentials_file: ""

telemetry:
  # none or stdout
  traces: none
  metrics_addr: ":9464"

daemon:
  interval: 15m
  horizon_days: 14
`

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type WorkConfig struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

type WeatherConfig struct {
	Location string `yaml:"location"`
	Lang     string `yaml:"lang"`
	BaseURL  string `yaml:"base_url,omitempty"`
	// APIKey is only read from the environment or the keyring
	APIKey string `yaml:"-"`
}

type CalendarConfig struct {
	Provider        string `yaml:"provider"`
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint,omitempty"`
}

type TelemetryConfig struct {
	Traces      string `yaml:"traces"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type DaemonConfig struct {
	Interval    time.Duration `yaml:"interval"`
	HorizonDays int           `yaml:"horizon_days"`
}

// Config models <home>/config.yaml.
type Config struct {
	Timezone  string          `yaml:"timezone"`
	Database  DatabaseConfig  `yaml:"database"`
	Work      WorkConfig      `yaml:"work"`
	Weather   WeatherConfig   `yaml:"weather"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Daemon    DaemonConfig    `yaml:"daemon"`

	// Home is the directory holding the config file, logs and the default database
	Home string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default(home string) *Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	cfg.Home = home
	cfg.Database.Path = filepath.Join(home, constants.DefaultDBFile)
	return &cfg
}

// Home resolves the configuration directory: CREWPLAN_HOME, then ~/.config/crewplan.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return ExpandPath(dir)
	}
	return ExpandPath(constants.DefaultConfigDir)
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Path is the config file inside home.
func Path(home string) string {
	return filepath.Join(home, constants.DefaultConfigFile)
}

// Load reads the config file in home, falling back to defaults when it does
// not exist, then applies environment overrides.
func Load(home string) (*Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(Path(home))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", Path(home), err)
		}
	}

	cfg.applyEnv()
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(home, constants.DefaultDBFile)
	}
	if cfg.Database.Path, err = ExpandPath(cfg.Database.Path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBConnection); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvWeatherKey); v != "" {
		c.Weather.APIKey = v
	}
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Work.StartHour < 0 || c.Work.EndHour > 24 || c.Work.StartHour >= c.Work.EndHour {
		return fmt.Errorf("invalid working hours %d-%d", c.Work.StartHour, c.Work.EndHour)
	}
	switch c.Calendar.Provider {
	case "local", "none":
	case "google":
		if c.Calendar.CredentialsFile == "" {
			return fmt.Errorf("calendar provider google requires credentials_file")
		}
	default:
		return fmt.Errorf("unknown calendar provider %q (expected local|google|none)", c.Calendar.Provider)
	}
	switch c.Telemetry.Traces {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q (expected none|stdout)", c.Telemetry.Traces)
	}
	if c.Daemon.Interval <= 0 {
		return fmt.Errorf("daemon interval must be positive, got %s", c.Daemon.Interval)
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WriteDefault creates the config file in home unless one already exists.
// It reports whether a file was written.
func WriteDefault(home string) (bool, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(Path(home), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(defaultConfigYAML); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

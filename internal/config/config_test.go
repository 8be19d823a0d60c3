package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	if err := os.WriteFile(Path(home), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvDBConnection, "")
	t.Setenv(EnvWeatherKey, "")

	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != "Europe/Bratislava" || cfg.Location().String() != "Europe/Bratislava" {
		t.Errorf("unexpected timezone %q", cfg.Timezone)
	}
	if cfg.Database.Path != filepath.Join(home, "crewplan.db") {
		t.Errorf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Work.StartHour != 8 || cfg.Work.EndHour != 17 {
		t.Errorf("unexpected working hours %+v", cfg.Work)
	}
	if cfg.Calendar.Provider != "local" || cfg.Telemetry.Traces != "none" {
		t.Errorf("unexpected providers %+v %+v", cfg.Calendar, cfg.Telemetry)
	}
	if cfg.Daemon.Interval != 15*time.Minute || cfg.Daemon.HorizonDays != 14 {
		t.Errorf("unexpected daemon config %+v", cfg.Daemon)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
timezone: UTC
work:
  start_hour: 7
  end_hour: 15
weather:
  location: Kosice,SK
daemon:
  interval: 1h
`)
	t.Setenv(EnvDBConnection, "postgres://crew@db:5432/crewplan")
	t.Setenv(EnvWeatherKey, "secret")

	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("expected UTC, got %s", cfg.Location())
	}
	if cfg.Work.StartHour != 7 || cfg.Work.EndHour != 15 {
		t.Errorf("unexpected working hours %+v", cfg.Work)
	}
	if cfg.Weather.Location != "Kosice,SK" || cfg.Weather.Lang != "sk" {
		t.Errorf("file values should merge over defaults, got %+v", cfg.Weather)
	}
	if cfg.Database.Path != "postgres://crew@db:5432/crewplan" || cfg.Weather.APIKey != "secret" {
		t.Errorf("environment overrides not applied: %q %q", cfg.Database.Path, cfg.Weather.APIKey)
	}
	if cfg.Daemon.Interval != time.Hour {
		t.Errorf("expected 1h interval, got %s", cfg.Daemon.Interval)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"timezone", "timezone: Mars/Olympus\n", "timezone"},
		{"hours", "work:\n  start_hour: 17\n  end_hour: 8\n", "working hours"},
		{"calendar", "calendar:\n  provider: outlook\n", "calendar provider"},
		{"google without credentials", "calendar:\n  provider: google\n", "credentials_file"},
		{"traces", "telemetry:\n  traces: jaeger\n", "trace exporter"},
		{"yaml", "work: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			writeConfig(t, home, tt.body)
			_, err := Load(home)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested")

	wrote, err := WriteDefault(home)
	if err != nil || !wrote {
		t.Fatalf("expected config to be written, got %v, %v", wrote, err)
	}
	wrote, err = WriteDefault(home)
	if err != nil || wrote {
		t.Fatalf("existing config must be kept, got %v, %v", wrote, err)
	}
	if _, err := Load(home); err != nil {
		t.Errorf("written default must load: %v", err)
	}
}

func TestHome(t *testing.T) {
	t.Setenv(EnvHome, "/srv/crewplan")
	if got, err := Home(); err != nil || got != "/srv/crewplan" {
		t.Errorf("expected CREWPLAN_HOME to win, got %q (%v)", got, err)
	}

	t.Setenv(EnvHome, "")
	got, err := Home()
	if err != nil {
		t.Fatalf("Home failed: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join(".config", "crewplan")) {
		t.Errorf("unexpected default home %q", got)
	}
}

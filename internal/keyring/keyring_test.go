package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSecretLifecycle(t *testing.T) {
	keyring.MockInit()

	if _, err := Get(WeatherAPIKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}
	if err := Set(WeatherAPIKey, "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := Get(WeatherAPIKey)
	if err != nil || got != "abc123" {
		t.Fatalf("expected abc123, got %q (%v)", got, err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("secrets must be stored separately, got %v", err)
	}
	if err := Delete(WeatherAPIKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := Delete(WeatherAPIKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	if err := SetConnectionString(""); err == nil {
		t.Error("expected error for empty connection string")
	}
}

func TestKeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus"))
	if IsAvailable() {
		t.Error("expected keyring to be unavailable")
	}
	if _, err := Get(ConnectionString); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("expected ErrKeyringUnavailable, got %v", err)
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		in      string
		want    Secret
		wantErr bool
	}{
		{"connection-string", ConnectionString, false},
		{"weather-key", WeatherAPIKey, false},
		{"weather", WeatherAPIKey, false},
		{"password", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSecret(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSecret(%q) = %q, %v", tt.in, got, err)
		}
	}
}

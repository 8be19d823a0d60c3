package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/crewplan/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names an entry stored under the application's keyring service.
type Secret string

const (
	ConnectionString Secret = constants.DefaultKeyringUser
	WeatherAPIKey    Secret = constants.WeatherKeyringUser
)

// ParseSecret maps a user-facing name to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "connection-string", "db", string(ConnectionString):
		return ConnectionString, nil
	case "weather-key", "weather", string(WeatherAPIKey):
		return WeatherAPIKey, nil
	default:
		return "", fmt.Errorf("unknown secret %q (expected connection-string|weather-key)", name)
	}
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(ConnectionString)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return Set(ConnectionString, connStr)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

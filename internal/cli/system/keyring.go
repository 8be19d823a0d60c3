package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/keyring"
	"github.com/julianstephens/crewplan/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
}

// KeyringSetCmd stores the database connection string or the weather API key
type KeyringSetCmd struct {
	Name  string `arg:"" help:"Secret name (connection-string|weather-key)."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}

	if secret == keyring.ConnectionString {
		if !strings.HasPrefix(cmd.Value, "postgres://") &&
			!strings.HasPrefix(cmd.Value, "postgresql://") &&
			!strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			cli.Warning("Connection string contains embedded credentials; it will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return err
	}
	cli.Success("%s stored in OS keyring", cmd.Name)
	return nil
}

type KeyringGetCmd struct {
	Name string `arg:"" help:"Secret name (connection-string|weather-key)."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	v, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring, use 'crewplan keyring set' to store one", cmd.Name)
		}
		return err
	}
	if secret == keyring.ConnectionString {
		fmt.Println(maskPassword(v))
	} else {
		fmt.Println(maskSecret(v))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Name string `arg:"" help:"Secret name (connection-string|weather-key)."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Name)
		}
		return err
	}
	cli.Success("%s deleted from OS keyring", cmd.Name)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available on this system")
	}
	cli.Success("OS keyring is available")
	for _, s := range []keyring.Secret{keyring.ConnectionString, keyring.WeatherAPIKey} {
		if _, err := keyring.Get(s); err == nil {
			fmt.Printf("  %s: stored\n", s)
		} else {
			fmt.Printf("  %s: not set\n", s)
		}
	}
	return nil
}

// maskPassword masks the password of a PostgreSQL URL or DSN.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if colon := strings.Index(rest[:at], ":"); colon != -1 {
				return connStr[:idx+3] + rest[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, p := range parts {
		if strings.HasPrefix(p, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}

func maskSecret(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return v[:2] + strings.Repeat("*", len(v)-4) + v[len(v)-2:]
}

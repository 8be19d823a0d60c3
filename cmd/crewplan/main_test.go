package main

import (
	"path/filepath"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/crewplan/internal/config"
	"github.com/julianstephens/crewplan/internal/keyring"
)

func TestResolveDBTarget(t *testing.T) {
	gokeyring.MockInit()
	home := t.TempDir()
	cfg := config.Default(home)
	defaultPath := filepath.Join(home, "crewplan.db")
	cfg.Database.Path = defaultPath

	got, fromKeyring, err := resolveDBTarget("", cfg)
	if err != nil || got != defaultPath || fromKeyring {
		t.Errorf("config path: got %q, %v, %v", got, fromKeyring, err)
	}

	const stored = "postgres://crew:secret@db:5432/crewplan"
	if err := keyring.SetConnectionString(stored); err != nil {
		t.Fatalf("SetConnectionString failed: %v", err)
	}
	got, fromKeyring, err = resolveDBTarget("", cfg)
	if err != nil || got != stored || !fromKeyring {
		t.Errorf("keyring: got %q, %v, %v", got, fromKeyring, err)
	}

	flagPath := filepath.Join(t.TempDir(), "other.db")
	got, fromKeyring, err = resolveDBTarget(flagPath, cfg)
	if err != nil || got != flagPath || fromKeyring {
		t.Errorf("flag: got %q, %v, %v", got, fromKeyring, err)
	}

	t.Setenv(config.EnvDBConnection, "postgres://crew@db/crewplan")
	cfg.Database.Path = "postgres://crew@db/crewplan"
	got, fromKeyring, err = resolveDBTarget("", cfg)
	if err != nil || got != "postgres://crew@db/crewplan" || fromKeyring {
		t.Errorf("env: got %q, %v, %v", got, fromKeyring, err)
	}
}

package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/config"
	"github.com/julianstephens/crewplan/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Back up and delete an existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	wrote, err := config.WriteDefault(ctx.Config.Home)
	if err != nil {
		return err
	}
	if wrote {
		fmt.Printf("Wrote default configuration to: %s\n", config.Path(ctx.Config.Home))
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Force && !storage.IsPostgres(dbPath) {
		if _, err := os.Stat(dbPath); err == nil {
			ctx.PerformAutomaticBackup()
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	cli.Success("Initialized crewplan storage at: %s", dbPath)
	return nil
}

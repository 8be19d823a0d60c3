package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/crewplan/internal/cli"
	"github.com/julianstephens/crewplan/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Base, ctx.Store, ctx.Scheduler, ctx.Location), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board exited with an error: %w", err)
	}
	return nil
}

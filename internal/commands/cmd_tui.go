package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/logging"
	"github.com/colonyops/flypanel/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	page  string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "page",
			Usage:       "page path to open instead of server.start_page",
			Sources:     cli.EnvVars("FLYPANEL_PAGE"),
			Destination: &cmd.page,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	startURL := cfg.StartURL()
	if cmd.page != "" {
		startURL = cfg.PageURL(cmd.page)
	}

	buffer := tui.NewNotificationBuffer()
	p := newPanel(cmd.flags, clock.System{}, buffer.Push)
	defer p.Close()

	m := tui.New(tui.Options{
		Panel:       p,
		Buffer:      buffer,
		StartURL:    startURL,
		PageURL:     cfg.PageURL,
		HistorySize: cfg.TUI.HistorySize,
		Logger:      logging.Component("tui"),
	})

	log.Info().Ctx(logging.WithPage(ctx, startURL)).Msg("starting tui")

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

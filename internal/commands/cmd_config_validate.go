package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/flypanel/internal/core/config"
	"github.com/colonyops/flypanel/internal/core/styles"
	"github.com/colonyops/flypanel/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// ValidationError is one invalid configuration field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "flypanel config validate [options]",
				Description: "Validates the configuration file, checking the server URL, durations, theme, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	errs := fieldErrors(cfg.ValidateDeep(cmd.flags.ConfigPath))
	warnings := cfg.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Errors   []ValidationError          `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    len(errs) == 0,
			Errors:   errs,
			Warnings: warnings,
		}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
		if len(errs) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	return outputText(c.Root().Writer, errs, warnings)
}

func fieldErrors(err error) []ValidationError {
	if err == nil {
		return nil
	}
	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return []ValidationError{{Message: err.Error()}}
	}
	out := make([]ValidationError, len(fe))
	for i, e := range fe {
		out[i] = ValidationError{Field: e.Field, Message: e.Err.Error()}
	}
	return out
}

func outputText(w io.Writer, errs []ValidationError, warnings []config.ValidationWarning) error {
	for _, warn := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.DividerStyle.Render("!"), warn.Item, warn.Message)
	}
	for _, e := range errs {
		_, _ = fmt.Fprintln(w, styles.FailureStyle.Render(fmt.Sprintf("%s %s: %s", styles.IconFailure, e.Field, e.Message)))
	}

	if len(errs) == 0 {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render(styles.IconSuccess+" Configuration is valid"))
		return nil
	}

	_, _ = fmt.Fprintln(w, styles.FailureStyle.Render(fmt.Sprintf("%d error(s) found", len(errs))))
	return cli.Exit("", 1)
}

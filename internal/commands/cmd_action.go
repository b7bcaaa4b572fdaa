package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/panel"
)

type ActionCmd struct {
	flags *Flags
	run   headless
	yes   bool
}

// NewActionCmd creates a new action command.
func NewActionCmd(flags *Flags) *ActionCmd {
	return &ActionCmd{flags: flags, run: headless{flags: flags}}
}

// Register adds the action command to the application.
func (cmd *ActionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "action",
		Usage: "Run a single page action and print the server's feedback",
		Description: `Loads a page, performs one action the way the panel would, and waits
for the server's reply. Rows are addressed by their element id (e.g. row-3).`,
		Flags: cmd.run.cliFlags(),
		Commands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Queue the download offered by a row",
				UsageText: "flypanel action download [options] <row>",
				Action:    cmd.rowTask(dispatch.ActionDownload),
			},
			{
				Name:      "grant",
				Usage:     "Grant an upload slot to a waiting user",
				UsageText: "flypanel action grant [options] <row>",
				Action:    cmd.rowTask(dispatch.ActionGrant),
			},
			{
				Name:      "magnet",
				Usage:     "Copy a row's magnet link to the clipboard",
				UsageText: "flypanel action magnet [options] <row>",
				Action:    cmd.runMagnet,
			},
			{
				Name:      "remove",
				Usage:     "Remove a row's item after confirmation",
				UsageText: "flypanel action remove --yes [options] <row>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "answer the confirmation dialog with yes",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runRemove,
			},
			{
				Name:      "button",
				Usage:     "Press a page button",
				UsageText: "flypanel action button [options] <button-id>",
				Action: cmd.navigate("button", func(d *dispatch.Dispatcher, id string) error {
					return d.PerformButtonAction(id)
				}),
			},
			{
				Name:      "sort",
				Usage:     "Follow a column sort link",
				UsageText: "flypanel action sort [options] <link-id>",
				Action: cmd.navigate("sort", func(d *dispatch.Dispatcher, id string) error {
					return d.SortTable(id)
				}),
			},
		},
	})

	return app
}

func target(c *cli.Command) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", fmt.Errorf("missing element id")
	}
	return id, nil
}

// withPage runs fn against a freshly loaded page.
func (cmd *ActionCmd) withPage(ctx context.Context, fn func(p *panel.Panel, page *panel.Page) error) error {
	p, page, err := cmd.run.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p, page)
}

func (cmd *ActionCmd) rowTask(action string) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		rowID, err := target(c)
		if err != nil {
			return err
		}
		return cmd.withPage(ctx, func(_ *panel.Panel, page *panel.Page) error {
			task, err := page.Dispatcher.RowAction(ctx, rowID, action)
			if err != nil {
				return cmd.run.missingTarget(c, err)
			}
			rep, err := cmd.run.await(ctx, task, Report{Action: action, Target: task.AnchorID})
			if err != nil {
				return err
			}
			return cmd.run.print(c, rep)
		})
	}
}

func (cmd *ActionCmd) runMagnet(ctx context.Context, c *cli.Command) error {
	rowID, err := target(c)
	if err != nil {
		return err
	}
	return cmd.withPage(ctx, func(_ *panel.Panel, page *panel.Page) error {
		if err := page.Dispatcher.CopyMagnet(rowID); err != nil {
			return cmd.run.missingTarget(c, err)
		}
		rep := Report{Action: dispatch.ActionMagnet, Target: rowID + "-" + dispatch.ActionMagnet, Kind: "message"}
		if n, ok := page.Queue.Lookup(rep.Target); ok {
			rep.Text = n.Text
			rep.Success = n.Success
		}
		return cmd.run.print(c, rep)
	})
}

func (cmd *ActionCmd) runRemove(ctx context.Context, c *cli.Command) error {
	rowID, err := target(c)
	if err != nil {
		return err
	}
	return cmd.withPage(ctx, func(p *panel.Panel, page *panel.Page) error {
		if err := page.Dispatcher.RemoveItem(rowID); err != nil {
			return cmd.run.missingTarget(c, err)
		}

		d, _ := page.Modal.Current()
		if !cmd.yes {
			page.Modal.Dismiss()
			return cli.Exit(fmt.Sprintf("%s (pass --yes to confirm)", d.Message), 1)
		}
		page.Modal.Activate(0)

		return cmd.run.print(c, navigation(p, Report{Action: dispatch.ActionRemove, Target: rowID}))
	})
}

func (cmd *ActionCmd) navigate(action string, fn func(d *dispatch.Dispatcher, id string) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		id, err := target(c)
		if err != nil {
			return err
		}
		return cmd.withPage(ctx, func(p *panel.Panel, page *panel.Page) error {
			if err := fn(page.Dispatcher, id); err != nil {
				return cmd.run.missingTarget(c, err)
			}
			return cmd.run.print(c, navigation(p, Report{Action: action, Target: id}))
		})
	}
}

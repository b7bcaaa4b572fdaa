package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/router"
	"github.com/colonyops/flypanel/pkg/iojson"
)

type SubmitCmd struct {
	flags  *Flags
	run    headless
	fields iojson.FileReader[map[string]string]
	sets   []string
}

// NewSubmitCmd creates a new submit command.
func NewSubmitCmd(flags *Flags) *SubmitCmd {
	return &SubmitCmd{flags: flags, run: headless{flags: flags}}
}

// Register adds the submit command to the application.
func (cmd *SubmitCmd) Register(app *cli.Command) *cli.Command {
	flags := append(cmd.run.cliFlags(),
		cmd.fields.Flag(),
		&cli.StringSliceFlag{
			Name:        "set",
			Usage:       "set a field before submitting, as element-id=value (repeatable)",
			Destination: &cmd.sets,
		},
	)

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "submit",
		Usage:     "Submit a page form and print the server's feedback",
		UsageText: "flypanel submit [options] <form-id>",
		Description: `Fills in the named form's fields and submits it the way the panel would.
Field values come from --set or from a JSON object of element id to value,
read from --file or piped on stdin:

  echo '{"search-string":"ubuntu iso"}' | flypanel submit search-form

The search and add-magnet forms clear their text field after submitting.`,
		Flags:  flags,
		Action: cmd.runSubmit,
	})

	return app
}

func (cmd *SubmitCmd) values() (map[string]string, error) {
	values := map[string]string{}
	in, err := cmd.fields.Read()
	switch {
	case errors.Is(err, iojson.ErrNoInput):
	case err != nil:
		return nil, err
	default:
		for k, v := range in {
			values[k] = v
		}
	}
	for _, s := range cmd.sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want element-id=value", s)
		}
		values[k] = v
	}
	return values, nil
}

func (cmd *SubmitCmd) runSubmit(ctx context.Context, c *cli.Command) error {
	formID := c.Args().First()
	if formID == "" {
		return fmt.Errorf("missing form id")
	}

	values, err := cmd.values()
	if err != nil {
		return err
	}

	p, page, err := cmd.run.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !page.Doc.SetValue(id, values[id]) {
			return cli.Exit(fmt.Sprintf("field %q not found on %s", id, page.URL), 2)
		}
	}

	var task *dispatch.Task
	switch formID {
	case dispatch.SearchFormID:
		task, err = page.Dispatcher.SendSearch(ctx)
	case dispatch.MagnetFormID:
		task, err = page.Dispatcher.AddMagnet(ctx)
	default:
		task, err = page.Dispatcher.SubmitForm(ctx, formID)
	}
	if err != nil {
		return cmd.run.missingTarget(c, err)
	}

	rep, err := cmd.run.await(ctx, task, Report{Action: "submit", Target: task.AnchorID})
	if err != nil {
		return err
	}
	if rep.Kind == router.KindRedirect.String() {
		rep = navigation(p, rep)
	}
	return cmd.run.print(c, rep)
}

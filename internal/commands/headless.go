package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/logging"
	"github.com/colonyops/flypanel/internal/core/router"
	"github.com/colonyops/flypanel/internal/core/styles"
	"github.com/colonyops/flypanel/internal/core/transport"
	"github.com/colonyops/flypanel/internal/panel"
	"github.com/colonyops/flypanel/pkg/clipboard"
	"github.com/colonyops/flypanel/pkg/iojson"
)

const defaultWait = 30 * time.Second

// Report is what a one-shot command prints about the action it ran.
type Report struct {
	Action  string `json:"action"`
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// headless runs a single page action without the TUI: load a page, fire
// the action, wait for its result, and report it.
type headless struct {
	flags *Flags
	page  string
	wait  time.Duration
	json  bool
}

func (h *headless) cliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "page",
			Aliases:     []string{"p"},
			Usage:       "page path the action is taken from (defaults to server.start_page)",
			Destination: &h.page,
		},
		&cli.DurationFlag{
			Name:        "wait",
			Usage:       "how long to wait for the server's response",
			Value:       defaultWait,
			Destination: &h.wait,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the result as JSON (default when stdout is not a terminal)",
			Destination: &h.json,
		},
	}
}

// newPanel builds a panel wired to the configured server and clipboard.
func newPanel(flags *Flags, clk clock.Clock, onNotification func(string, infotip.Notification)) *panel.Panel {
	cfg := flags.Config
	client := transport.New(
		transport.WithTimeout(cfg.HTTP.Timeout),
		transport.WithLogger(logging.Component("transport")),
	)
	return panel.New(client, panel.Options{
		Clock:          clk,
		Clipboard:      clipboard.New(cfg.Clipboard.Command),
		TTL:            cfg.Infotip.TTL,
		RejectStale:    cfg.Infotip.RejectStale,
		Strings:        cfg.DispatchStrings(),
		Labels:         cfg.ModalLabels(),
		Icon:           cfg.Modal.Icon,
		Logger:         logging.Component("panel"),
		OnNotification: onNotification,
	})
}

// open loads the requested page.
func (h *headless) open(ctx context.Context) (*panel.Panel, *panel.Page, error) {
	cfg := h.flags.Config
	url := cfg.StartURL()
	if h.page != "" {
		url = cfg.PageURL(h.page)
	}

	p := newPanel(h.flags, clock.System{}, nil)
	page, err := p.Load(ctx, url)
	if err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("load %s: %w", url, err)
	}
	return p, page, nil
}

// await waits for task and converts its result into a report.
func (h *headless) await(ctx context.Context, task *dispatch.Task, rep Report) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, h.wait)
	defer cancel()

	select {
	case <-task.Done():
	case <-ctx.Done():
		task.Cancel()
		return rep, fmt.Errorf("no response within %s", h.wait)
	}

	res := task.Result()
	out := task.Outcome()
	rep.Kind = res.Kind.String()
	rep.Status = out.Status
	switch res.Kind {
	case router.KindRedirect:
		rep.URL = res.URL
		rep.Success = true
	case router.KindMessage:
		rep.Text = res.Text
		rep.Success = res.Success
	default:
		rep.Success = out.Err == nil && out.Status == 200
	}

	log.Debug().Str("action", rep.Action).Str("kind", rep.Kind).Int("status", out.Status).Msg("action complete")
	return rep, nil
}

// navigation reports the navigation an action requested, if any.
func navigation(p *panel.Panel, rep Report) Report {
	select {
	case url := <-p.Navigations():
		rep.Kind = "navigate"
		rep.URL = url
		rep.Success = true
	default:
		rep.Kind = router.KindEmpty.String()
	}
	return rep
}

func (h *headless) print(c *cli.Command, rep Report) error {
	w := c.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	if h.json || !isTerminal(w) {
		return iojson.WriteWith(w, c.Root().ErrWriter, rep)
	}
	return printText(w, rep)
}

func printText(w io.Writer, rep Report) error {
	var line string
	switch {
	case rep.URL != "":
		line = styles.SuccessStyle.Render(styles.IconSuccess) + " " + rep.Action + " " + rep.Target + " -> " + rep.URL
	case rep.Text != "" && rep.Success:
		line = styles.SuccessStyle.Render(styles.IconSuccess+" "+rep.Text) + "  " + styles.DividerStyle.Render(rep.Target)
	case rep.Text != "":
		line = styles.FailureStyle.Render(styles.IconFailure+" "+rep.Text) + "  " + styles.DividerStyle.Render(rep.Target)
	default:
		line = styles.DividerStyle.Render(rep.Action + " " + rep.Target + ": no feedback")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// missingTarget turns ErrNoTarget into a command error with a usable
// message. JSON consumers get the message as an error object on stdout.
func (h *headless) missingTarget(c *cli.Command, err error) error {
	if !errors.Is(err, dispatch.ErrNoTarget) {
		return err
	}
	if w := c.Root().Writer; w != nil && (h.json || !isTerminal(w)) {
		if werr := iojson.WriteError(w, err.Error(), map[string]any{"page": h.page}); werr != nil {
			return werr
		}
	}
	return cli.Exit(err.Error(), 2)
}

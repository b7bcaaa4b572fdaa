// Package clipboard writes text to the system clipboard, either through a
// configured shell command or through the platform's default mechanism.
package clipboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/colonyops/flypanel/pkg/executil"
)

const commandTimeout = 5 * time.Second

// Clipboard copies text. A zero value uses the platform default.
type Clipboard struct {
	// Command, when set, receives the text on stdin (e.g. "wl-copy" or
	// "xclip -selection clipboard").
	Command string

	exec executil.Executor
}

// New returns a Clipboard using command, or the platform default when
// command is empty.
func New(command string) *Clipboard {
	return NewWithExecutor(command, executil.RealExecutor{})
}

// NewWithExecutor is New with a custom command runner.
func NewWithExecutor(command string, exec executil.Executor) *Clipboard {
	return &Clipboard{Command: strings.TrimSpace(command), exec: exec}
}

// WriteText copies text to the clipboard.
func (c *Clipboard) WriteText(text string) error {
	if c.Command == "" {
		if clipboard.Unsupported {
			return fmt.Errorf("clipboard unsupported on this system; set clipboard.command")
		}
		return clipboard.WriteAll(text)
	}

	ex := c.exec
	if ex == nil {
		ex = executil.RealExecutor{}
	}

	parts := strings.Fields(c.Command)
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	return ex.RunInput(ctx, strings.NewReader(text), parts[0], parts[1:]...)
}

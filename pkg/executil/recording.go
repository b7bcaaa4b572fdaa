package executil

import (
	"context"
	"io"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd   string
	Args  []string
	Input string
}

// RecordingExecutor captures commands for testing.
// Configure Errors to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Errors maps command names to their error.
	Errors map[string]error
}

// RunInput records the command and its input and returns the configured error.
func (e *RecordingExecutor) RunInput(_ context.Context, stdin io.Reader, cmd string, args ...string) error {
	var input []byte
	if stdin != nil {
		input, _ = io.ReadAll(stdin)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: args, Input: string(input)})
	return e.Errors[cmd]
}

// Recorded returns a copy of the commands run so far.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedCommand(nil), e.Commands...)
}

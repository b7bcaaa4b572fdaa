// Package executil runs external commands.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// Executor runs commands that consume stdin.
type Executor interface {
	// RunInput executes cmd with stdin as its input. Output is discarded;
	// on failure the error carries the command's stderr.
	RunInput(ctx context.Context, stdin io.Reader, cmd string, args ...string) error
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// RunInput executes cmd feeding it stdin. Stderr is capped at 500 bytes in
// the returned error; the *exec.ExitError is preserved via wrapping.
func (RealExecutor) RunInput(ctx context.Context, stdin io.Reader, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = stdin
	c.Stdout = io.Discard

	var buf bytes.Buffer
	c.Stderr = &limitedWriter{buf: &buf, max: maxStderrLen}

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(buf.String()); msg != "" {
			return fmt.Errorf("%s: %s: %w", cmd, msg, err)
		}
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

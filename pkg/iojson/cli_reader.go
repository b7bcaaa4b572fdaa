package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is named and stdin is a terminal or
// empty.
var ErrNoInput = errors.New("no input provided; use -f flag or pipe JSON input")

// FileReader decodes a T from the file named by its flag, or from stdin.
type FileReader[T any] struct {
	path  string
	stdin *os.File
}

// Flag returns the -f/--file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.path,
	}
}

// Read decodes the input.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.path != "" {
		f, err := os.Open(fr.path)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return Decode[T](f)
	}

	in := fr.in()
	if term.IsTerminal(int(in.Fd())) {
		return input, ErrNoInput
	}
	v, err := Decode[T](in)
	if errors.Is(err, io.EOF) {
		return input, ErrNoInput
	}
	return v, err
}

func (fr *FileReader[T]) in() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}

// Decode reads a single JSON value from r.
func Decode[T any](r io.Reader) (T, error) {
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON: %w", err)
	}
	return v, nil
}

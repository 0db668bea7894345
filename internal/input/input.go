// Package input contains identifiers used in getting Grotto command input
// from CLI or other sources of input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader is a source of raw command lines for an interactive session. The
// engine's parser handles everything after the raw line; a Reader only has to
// produce trimmed lines and report end of input with io.EOF.
type Reader interface {
	// ReadCommand returns the next non-blank line of input, unless blank
	// lines have been allowed with AllowBlank. At end of input it returns an
	// empty string and io.EOF.
	ReadCommand() (string, error)

	// AllowBlank sets whether blank lines are returned rather than skipped.
	// By default they are skipped.
	AllowBlank(allow bool)

	// Close releases any resources held by the reader.
	Close() error
}

// DirectReader implements Reader and reads commands from any generic input
// stream directly. It can be used generically with any io.Reader but does not
// sanitize the input of control and escape sequences.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements Reader and reads commands from stdin using a
// go implementation of the GNU Readline library. This keeps input clear of
// all typing and editing escape sequences and enables the use of line
// history. This should in general probably only be used when directly
// connecting to a TTY for input.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a DirectReader with a buffered reader on the
// provided stream. The returned Reader must have Close() called on it before
// disposal.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates an InteractiveReader and initializes readline.
// The returned Reader must have Close() called on it before disposal to
// properly teardown readline resources.
func NewInteractiveReader() (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: "> ",
	}, nil
}

// Close cleans up resources associated with the DirectReader.
func (dr *DirectReader) Close() error {
	// this function is here so DirectReader implements Reader. For now it
	// doesn't really do anything as the DirectReader does not create
	// resources but it may in the future and callers should treat it as
	// though it must have Close called on it.

	return nil
}

// Close cleans up readline resources and other resources associated with the
// InteractiveReader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadCommand reads the next line from the stream. The returned string will
// only be empty if there is an error reading input, otherwise this function
// is blocked on until a line containing non-space characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dr *DirectReader) ReadCommand() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && dr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadCommand reads the next command from stdin. The returned string will
// only be empty if there is an error, otherwise this function is blocked on
// until a line consisting of more than empty or whitespace-only input is
// read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (ir *InteractiveReader) ReadCommand() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && ir.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// GetPrompt gets the current prompt.
func (ir *InteractiveReader) GetPrompt() string {
	return ir.prompt
}

// Package ui renders conversation state to the terminal and reads user
// input. Presentation only: no network calls, no session logic.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal couples an input reader with an output writer. Tests swap both
// for buffers.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ReadLine prints label and returns one line of input without the
// trailing newline.
func (t *Terminal) ReadLine(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads a line without echoing when stdin is a real terminal,
// and falls back to a plain read otherwise (pipes, tests).
func (t *Terminal) ReadPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return t.ReadLine(label)
	}
	fmt.Fprint(t.out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Pause blocks until the user presses enter.
func (t *Terminal) Pause() {
	fmt.Fprint(t.out, "Press [Enter] to continue...")
	_, _ = t.in.ReadString('\n')
}

// ClearScreen wipes the terminal before a redraw.
func (t *Terminal) ClearScreen() {
	fmt.Fprint(t.out, "\033[2J\033[H")
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package choose implements the raw terminal menu used by the interactive
// configuration flows
package choose

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/appdev-cli/appdev/model"
)

// Selector presents a vertical menu driven by single keystrokes. Keys:
// arrows move, enter commits, escape cancels, 1-9 jump to an option, 0
// jumps to the skip entry when skipping is allowed. Anything else is
// ignored.
type Selector struct {
	logger model.Logger

	in  io.Reader
	out io.Writer

	makeRaw func() (func(), error)
}

// Option is a functional option for configuring a Selector
type Option func(*Selector) error

// WithIO overrides the terminal streams, mainly for tests
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Selector) error {
		s.in = in
		s.out = out
		return nil
	}
}

// WithRawMode overrides how the terminal is switched into raw mode
func WithRawMode(f func() (func(), error)) Option {
	return func(s *Selector) error {
		s.makeRaw = f
		return nil
	}
}

// NewSelector creates a Selector bound to the process terminal
func NewSelector(log model.Logger, opts ...Option) (*Selector, error) {
	s := &Selector{
		logger: log,
		in:     os.Stdin,
		out:    os.Stderr,
	}
	s.makeRaw = s.enterRawMode

	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// enterRawMode disables line buffering and local echo for the duration of
// one selection, the returned function restores the prior state
func (s *Selector) enterRawMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, model.ErrTerminalUnavailable
	}

	prior, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTerminalUnavailable, err)
	}

	return func() { term.Restore(fd, prior) }, nil
}

// Select presents the menu and returns the chosen value, or skipped=true
// when the skip entry was chosen. Fewer than two options short circuit
// without entering interactive mode.
func (s *Selector) Select(prompt string, options []string, allowSkip bool) (choice string, skipped bool, err error) {
	if len(options) == 0 {
		return "", true, nil
	}
	if len(options) == 1 {
		return options[0], false, nil
	}

	restore, err := s.makeRaw()
	if err != nil {
		// a non interactive session still has to produce an answer
		s.logger.Warn("Terminal unavailable, using the first option", "prompt", prompt, "choice", options[0])
		return options[0], false, nil
	}
	defer restore()

	m := &menu{
		prompt:    prompt,
		options:   options,
		allowSkip: allowSkip,
	}

	m.draw(s.out, false)

	buf := make([]byte, 8)
	for {
		n, err := s.in.Read(buf)
		if err != nil || n == 0 {
			// input gone away behaves like cancel
			return s.cancel(m)
		}

		switch key := decodeKey(buf[:n]); key {
		case keyUp:
			m.up()
			m.draw(s.out, true)
		case keyDown:
			m.down()
			m.draw(s.out, true)
		case keyEnter:
			s.endDraw(m)
			if m.onSkip() {
				return "", true, nil
			}
			return m.options[m.cursor], false, nil
		case keyCancel:
			return s.cancel(m)
		case keyNone:
		default:
			// digit jump
			if m.jump(int(key)) {
				m.draw(s.out, true)
			}
		}
	}
}

// cancel implements the escape behavior: skipped when allowed, else the
// first option as a non destructive default
func (s *Selector) cancel(m *menu) (string, bool, error) {
	s.endDraw(m)

	if m.allowSkip {
		return "", true, nil
	}

	s.logger.Debug("Selection cancelled without skip, defaulting to the first option", "prompt", m.prompt)

	return m.options[0], false, nil
}

// endDraw clears the menu so no stale lines remain after selection
func (s *Selector) endDraw(m *menu) {
	fmt.Fprintf(s.out, "\x1b[%dA", m.lines())
	for i := 0; i < m.lines(); i++ {
		fmt.Fprint(s.out, "\x1b[2K\r\n")
	}
	fmt.Fprintf(s.out, "\x1b[%dA", m.lines())
}

type key int

const (
	keyNone key = iota - 5
	keyUp
	keyDown
	keyEnter
	keyCancel
	// values >= 0 are direct jump positions
)

// decodeKey interprets one raw mode read. A terminal delivers a whole
// escape sequence per read, a lone escape byte is a cancel.
func decodeKey(b []byte) key {
	if len(b) == 0 {
		return keyNone
	}

	switch b[0] {
	case 0x1b:
		if len(b) == 1 {
			return keyCancel
		}
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return keyUp
			case 'B':
				return keyDown
			}
		}
		return keyNone
	case '\r', '\n':
		return keyEnter
	case 0x03:
		// interrupt reads as cancel so raw mode is always restored
		return keyCancel
	}

	if b[0] >= '0' && b[0] <= '9' {
		return key(b[0] - '0')
	}

	return keyNone
}

// menu is the mutable selection state, the cursor ranges over the options
// plus one extra position for the skip entry when allowed
type menu struct {
	prompt    string
	options   []string
	allowSkip bool
	cursor    int
}

func (m *menu) onSkip() bool {
	return m.allowSkip && m.cursor == len(m.options)
}

func (m *menu) up() {
	switch {
	case m.cursor == 0, m.onSkip():
		// wraps to the last real option from both the top and the skip entry
		m.cursor = len(m.options) - 1
	default:
		m.cursor--
	}
}

func (m *menu) down() {
	last := len(m.options) - 1

	switch {
	case m.onSkip():
		m.cursor = 0
	case m.cursor == last && m.allowSkip:
		m.cursor = len(m.options)
	case m.cursor == last:
		m.cursor = 0
	default:
		m.cursor++
	}
}

// jump moves to a digit position: 1-9 select options, 0 selects the skip
// entry when allowed. Out of range digits are ignored.
func (m *menu) jump(digit int) bool {
	if digit == 0 {
		if m.allowSkip {
			m.cursor = len(m.options)
			return true
		}
		return false
	}

	if digit <= len(m.options) {
		m.cursor = digit - 1
		return true
	}

	return false
}

func (m *menu) lines() int {
	n := len(m.options) + 1
	if m.allowSkip {
		n++
	}

	return n
}

// draw renders the menu, redraw moves the cursor up and clears exactly the
// previously drawn lines first so scrollback never grows per keystroke
func (m *menu) draw(w io.Writer, redraw bool) {
	if redraw {
		fmt.Fprintf(w, "\x1b[%dA", m.lines())
	}

	clear := ""
	if redraw {
		clear = "\x1b[2K"
	}

	fmt.Fprintf(w, "%s%s\r\n", clear, m.prompt)

	for i, opt := range m.options {
		marker := "  "
		if m.cursor == i {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%s%d. %s\r\n", clear, marker, i+1, opt)
	}

	if m.allowSkip {
		marker := "  "
		if m.onSkip() {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%s0. skip\r\n", clear, marker)
	}
}

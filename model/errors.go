// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoTargetAvailable   = errors.New("no usable destination available")
	ErrTerminalUnavailable = errors.New("terminal unavailable for interactive input")
	ErrNoScheme            = errors.New("no scheme configured")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// SpawnError indicates an executable could not be started at all. It is
// never used for tools that started and then exited non zero.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError carries the structured result of a tool that ran and reported
// failure, already-captured logs included
type ExitError struct {
	Result *RunResult
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.Result.ExitCode)
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

// RunResult is the single outcome of one pipeline invocation. Exactly one
// result is produced per invocation, there is no partial state.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// RawLog is the primary tool's stdout and stderr as captured, ordered
	// exactly within each stream, best effort across the two
	RawLog []byte

	// PrettyLog is the formatter output, nil when no formatter ran. A nil
	// pretty log means unformatted mode, an empty one means the formatter
	// produced nothing.
	PrettyLog []byte

	// Diagnostics holds unique error lines in order of first appearance,
	// only populated on failure
	Diagnostics []string
}

// Failed reports whether the primary tool exited non zero
func (r *RunResult) Failed() bool {
	return r.ExitCode != 0
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package scratch tracks ephemeral files created during a command run and
// guarantees a best effort cleanup on normal exit and on termination signals
package scratch

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/appdev-cli/appdev/model"
)

// Tracker is the process wide registry of ephemeral file paths. One
// instance is constructed at process start and threaded through every
// component that needs scratch files, there is no ambient global.
type Tracker struct {
	logger model.Logger
	dir    string

	paths map[string]struct{}
	mu    sync.Mutex
}

// NewTracker creates a tracker placing files in dir, or the system temp
// directory when dir is empty
func NewTracker(dir string, log model.Logger) *Tracker {
	if dir == "" {
		dir = os.TempDir()
	}

	return &Tracker{
		logger: log,
		dir:    dir,
		paths:  make(map[string]struct{}),
	}
}

// Create makes a new temporary file and registers it for cleanup. The
// extension should include its leading dot, it may be empty.
func (t *Tracker) Create(prefix string, extension string) (string, error) {
	f, err := os.CreateTemp(t.dir, fmt.Sprintf("%s-*%s", prefix, extension))
	if err != nil {
		return "", err
	}

	path := f.Name()
	f.Close()

	t.mu.Lock()
	t.paths[path] = struct{}{}
	t.mu.Unlock()

	t.logger.Debug("Created scratch file", "path", path)

	return path, nil
}

// Remove deletes a tracked file and forgets it. Removing a path twice, or
// a path whose file is already gone, is not an error.
func (t *Tracker) Remove(path string) {
	t.mu.Lock()
	delete(t.paths, path)
	t.mu.Unlock()

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		t.logger.Warn("Could not remove scratch file", "path", path, "error", err)
	}
}

// Sweep removes every tracked path, ignoring individual failures. It is
// safe to call from both normal exit and a signal handler, and calling it
// again after a full sweep is a no-op.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	paths := make([]string, 0, len(t.paths))
	for p := range t.paths {
		paths = append(paths, p)
	}
	t.paths = make(map[string]struct{})
	t.mu.Unlock()

	for _, p := range paths {
		err := os.Remove(p)
		if err != nil && !os.IsNotExist(err) {
			t.logger.Warn("Could not remove scratch file", "path", p, "error", err)
		}
	}
}

// Tracked returns the currently registered paths, sorted
func (t *Tracker) Tracked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res []string
	for p := range t.paths {
		res = append(res, p)
	}
	sort.Strings(res)

	return res
}

// HandleSignals sweeps and exits when a termination signal arrives. The
// returned function uninstalls the handler. In-flight child processes are
// not force killed here, only scratch files are cleaned.
func (t *Tracker) HandleSignals() func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}

		t.logger.Debug("Cleaning up scratch files on signal", "signal", sig)
		t.Sweep()

		if s, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(s))
		}
		os.Exit(1)
	}()

	return func() {
		signal.Stop(sigs)
		close(sigs)
	}
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"github.com/appdev-cli/appdev/config"
	"github.com/appdev-cli/appdev/internal/scratch"
	"github.com/appdev-cli/appdev/model"
	"github.com/appdev-cli/appdev/pipeline"
)

// Option is a functional option for configuring AppDev
type Option func(*AppDev) error

// WithProjectDirectory sets the directory the project lives in, settings
// are loaded relative to it and all tools run inside it
func WithProjectDirectory(dir string) Option {
	return func(a *AppDev) error {
		a.dir = dir
		return nil
	}
}

// WithConfig sets an already loaded configuration, skipping the load from
// the project directory
func WithConfig(cfg *config.Project) Option {
	return func(a *AppDev) error {
		a.cfg = cfg
		return nil
	}
}

// WithTracker sets the scratch file tracker shared with the rest of the
// process
func WithTracker(tracker *scratch.Tracker) Option {
	return func(a *AppDev) error {
		a.tracker = tracker
		return nil
	}
}

// WithLogDirectory sets where per run build logs are persisted
func WithLogDirectory(path string) Option {
	return func(a *AppDev) error {
		a.logDir = path
		return nil
	}
}

// WithRunner sets the command runner used for every subprocess, mainly
// used from tests
func WithRunner(runner model.CommandRunner) Option {
	return func(a *AppDev) error {
		a.runner = runner
		return nil
	}
}

// WithPipelineOptions passes options through to the output pipeline of
// every build tool invocation
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(a *AppDev) error {
		a.pipelineOpts = append(a.pipelineOpts, opts...)
		return nil
	}
}

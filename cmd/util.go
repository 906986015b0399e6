// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SladkyCitron/slogcolor"
	"github.com/choria-io/fisk"

	"github.com/appdev-cli/appdev/config"
	"github.com/appdev-cli/appdev/manager"
	"github.com/appdev-cli/appdev/model"
	"github.com/appdev-cli/appdev/pipeline"
)

// newManager creates the orchestrator plus a cleanup function removing all
// scratch files, the cleanup also runs when a termination signal arrives
func newManager(opts ...manager.Option) (*manager.AppDev, model.Logger, func(), error) {
	logger := newLogger()
	out := newOutputLogger()

	mgr, err := manager.NewManager(logger, out, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	uninstall := mgr.Tracker().HandleSignals()
	cleanup := func() {
		uninstall()
		mgr.Tracker().Sweep()
	}

	return mgr, out, cleanup, nil
}

// runFlags are the flags shared by every command that invokes the build tool
type runFlags struct {
	dir       string
	scheme    string
	platform  string
	raw       bool
	formatter string
}

func (f *runFlags) register(cmd *fisk.CmdClause) {
	cmd.Flag("dir", "Project directory to operate in").StringVar(&f.dir)
	cmd.Flag("scheme", "Scheme to use, overriding the saved configuration").StringVar(&f.scheme)
	cmd.Flag("platform", "Platform to target, overriding the saved configuration").EnumVar(&f.platform, "device", "simulator", "mac")
	cmd.Flag("raw", "Disable the output formatter").UnNegatableBoolVar(&f.raw)
	cmd.Flag("formatter", "Path to the output formatter executable").StringVar(&f.formatter)
}

func (f *runFlags) projectDir() (string, error) {
	if f.dir != "" {
		return f.dir, nil
	}

	return os.Getwd()
}

func (f *runFlags) managerOptions() ([]manager.Option, error) {
	dir, err := f.projectDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if f.scheme != "" {
		cfg.Scheme = f.scheme
	}
	if f.platform != "" {
		cfg.Platform = f.platform
	}

	opts := []manager.Option{
		manager.WithProjectDirectory(dir),
		manager.WithConfig(cfg),
	}

	var popts []pipeline.Option
	if f.raw {
		popts = append(popts, pipeline.WithoutFormatter())
	}
	if f.formatter != "" {
		popts = append(popts, pipeline.WithFormatterPath(f.formatter))
	}
	if len(popts) > 0 {
		opts = append(opts, manager.WithPipelineOptions(popts...))
	}

	return opts, nil
}

// reportResult surfaces the outcome of a build tool run and exits with the
// tool's own exit code on failure so scripts can rely on it
func reportResult(mgr *manager.AppDev, out model.Logger, action string, result *model.RunResult) error {
	if !result.Failed() {
		out.Info(fmt.Sprintf("The %s action succeeded", action))
		return nil
	}

	for _, diag := range result.Diagnostics {
		out.Error(diag)
	}
	out.Error(fmt.Sprintf("The %s action failed with exit code %d", action, result.ExitCode))

	mgr.Tracker().Sweep()
	os.Exit(result.ExitCode)

	return nil
}

func newOutputLogger() model.Logger {
	var level slog.Level

	switch {
	case debug:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	return manager.NewSlogLogger(slog.New(slogcolor.NewHandler(os.Stdout, &slogcolor.Options{Level: level})))
}

func newLogger() model.Logger {
	var level slog.Level

	switch {
	case debug:
		level = slog.LevelDebug
	case info:
		level = slog.LevelInfo
	default:
		level = slog.LevelWarn
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return manager.NewSlogLogger(logger)
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs the primary build tool with its output connected
// to an optional formatter process, capturing raw and pretty logs
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/appdev-cli/appdev/model"
)

// Pipeline connects a primary tool to an optional output formatter. One
// instance serves one invocation style but may be reused for several runs.
type Pipeline struct {
	logger model.Logger
	runner model.CommandRunner

	out    io.Writer
	errOut io.Writer
	cwd    string

	formatterPath  string
	formatterArgs  []string
	fixedPaths     []string
	formatterName  string
	locatorCommand string
	noFormatter    bool
}

// Option is a functional option for configuring a Pipeline
type Option func(*Pipeline) error

// WithOutput sets the writers receiving live output, normally the terminal
func WithOutput(out io.Writer, errOut io.Writer) Option {
	return func(p *Pipeline) error {
		p.out = out
		p.errOut = errOut
		return nil
	}
}

// WithWorkingDirectory sets the directory the primary tool runs in
func WithWorkingDirectory(dir string) Option {
	return func(p *Pipeline) error {
		p.cwd = dir
		return nil
	}
}

// WithFormatterPath pins the formatter executable, skipping discovery
func WithFormatterPath(path string, args ...string) Option {
	return func(p *Pipeline) error {
		p.formatterPath = path
		p.formatterArgs = args
		return nil
	}
}

// WithoutFormatter disables formatter discovery entirely
func WithoutFormatter() Option {
	return func(p *Pipeline) error {
		p.noFormatter = true
		return nil
	}
}

// WithFormatterSearch overrides the fixed candidate paths and the name used
// for the locator and PATH lookups
func WithFormatterSearch(fixedPaths []string, name string) Option {
	return func(p *Pipeline) error {
		p.fixedPaths = fixedPaths
		p.formatterName = name
		return nil
	}
}

// New creates a Pipeline using the provided runner for all subprocesses
func New(log model.Logger, runner model.CommandRunner, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		logger:         log,
		runner:         runner,
		out:            os.Stdout,
		errOut:         os.Stderr,
		fixedPaths:     defaultFormatterPaths,
		formatterName:  defaultFormatterName,
		locatorCommand: defaultLocatorCommand,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run executes the primary tool and produces exactly one RunResult. The
// overall exit code is always the primary tool's, the formatter never
// affects it. Raw log ordering is exact within one stream and best effort
// across the two.
func (p *Pipeline) Run(ctx context.Context, executable string, args []string) (*model.RunResult, error) {
	formatter, ok := p.resolveFormatter(ctx)
	if !ok {
		return p.runPlain(ctx, executable, args)
	}

	return p.runFormatted(ctx, executable, args, formatter)
}

// runPlain captures the primary tool alone, mirroring live to the terminal
func (p *Pipeline) runPlain(ctx context.Context, executable string, args []string) (*model.RunResult, error) {
	raw := &syncBuffer{}

	stdout, stderr, code, err := p.runner.ExecuteStreaming(ctx, model.ExecOptions{
		Command: executable,
		Args:    args,
		Cwd:     p.cwd,
	}, io.MultiWriter(raw, p.out), io.MultiWriter(raw, p.errOut))
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}

		// died to a signal, what was captured is still a failure result
		p.logger.Debug("Primary tool terminated by signal", "command", executable, "error", err)
	}

	result := &model.RunResult{
		ExitCode: code,
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		RawLog:   raw.Bytes(),
	}

	if result.Failed() {
		result.Diagnostics = ExtractDiagnostics(result.RawLog)
		p.logger.Debug("Primary tool failed", "command", executable, "exitcode", code, "diagnostics", len(result.Diagnostics))
	}

	return result, nil
}

// runFormatted starts the formatter first so it is ready to receive input,
// then streams the primary tool's combined output into it
func (p *Pipeline) runFormatted(ctx context.Context, executable string, args []string, formatter string) (*model.RunResult, error) {
	p.logger.Debug("Using output formatter", "formatter", formatter)

	raw := &syncBuffer{}
	pretty := &syncBuffer{}

	feedR, feedW := io.Pipe()

	type formatterOutcome struct {
		code int
		err  error
	}

	done := make(chan formatterOutcome, 1)
	go func() {
		_, _, code, err := p.runner.ExecuteStreaming(ctx, model.ExecOptions{
			Command: formatter,
			Args:    p.formatterArgs,
			Stdin:   feedR,
		}, io.MultiWriter(pretty, p.out), io.MultiWriter(pretty, p.errOut))

		// unblock the feeding side if the formatter died early
		feedR.CloseWithError(io.ErrClosedPipe)

		done <- formatterOutcome{code: code, err: err}
	}()

	feed := &formatterFeed{pipe: feedW, logger: p.logger}

	stdout, stderr, code, primaryErr := p.runner.ExecuteStreaming(ctx, model.ExecOptions{
		Command: executable,
		Args:    args,
		Cwd:     p.cwd,
	}, io.MultiWriter(raw, feed), io.MultiWriter(raw, feed))

	// end of stream for the formatter, then wait for it to finish draining
	feedW.Close()
	outcome := <-done

	var spawn *model.SpawnError
	if primaryErr != nil && errors.As(primaryErr, &spawn) {
		return nil, primaryErr
	}
	if outcome.err != nil && errors.As(outcome.err, &spawn) {
		return nil, outcome.err
	}
	if primaryErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(primaryErr, &exitErr) {
			return nil, primaryErr
		}

		// died to a signal, what was captured is still a failure result
		p.logger.Debug("Primary tool terminated by signal", "command", executable, "error", primaryErr)
	}

	if outcome.err != nil {
		p.logger.Warn("Output formatter failed", "formatter", formatter, "error", outcome.err)
	} else if outcome.code != 0 {
		p.logger.Warn("Output formatter exited non zero", "formatter", formatter, "exitcode", outcome.code)
	}

	prettyLog := pretty.Bytes()
	if prettyLog == nil {
		prettyLog = []byte{}
	}

	result := &model.RunResult{
		ExitCode:  code,
		Stdout:    string(stdout),
		Stderr:    string(stderr),
		RawLog:    raw.Bytes(),
		PrettyLog: prettyLog,
	}

	if result.Failed() {
		result.Diagnostics = ExtractDiagnostics(result.RawLog)
		p.logger.Debug("Primary tool failed", "command", executable, "exitcode", code, "diagnostics", len(result.Diagnostics))
	}

	return result, nil
}

// syncBuffer is a byte buffer safe for two concurrent stream writers. Each
// write lands atomically so chunks from one stream stay contiguous.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Bytes()
}

// formatterFeed forwards chunks into the formatter's stdin and goes quiet
// after the first pipe failure so a dead formatter never fails the capture
type formatterFeed struct {
	pipe   *io.PipeWriter
	logger model.Logger

	mu     sync.Mutex
	broken bool
}

func (f *formatterFeed) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.broken {
		return len(p), nil
	}

	_, err := f.pipe.Write(p)
	if err != nil {
		f.broken = true
		f.logger.Warn("Stopped feeding output formatter", "error", err)
	}

	// the raw capture must never observe a formatter failure
	return len(p), nil
}

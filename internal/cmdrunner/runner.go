// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/appdev-cli/appdev/model"
)

// CommandRunner executes toolchain commands and captures their output
type CommandRunner struct {
	logger model.Logger
}

// NewCommandRunner creates a new CommandRunner instance with the provided logger
func NewCommandRunner(log model.Logger) (*CommandRunner, error) {
	return &CommandRunner{logger: log}, nil
}

// Execute runs a command with the given arguments and returns stdout, stderr, exit code, and any error
func (c *CommandRunner) Execute(ctx context.Context, command string, args ...string) ([]byte, []byte, int, error) {
	return c.ExecuteWithOptions(ctx, model.ExecOptions{Command: command, Args: args})
}

func (c *CommandRunner) ExecuteWithOptions(ctx context.Context, opts model.ExecOptions) ([]byte, []byte, int, error) {
	return c.execute(ctx, opts, nil, nil)
}

// ExecuteStreaming behaves like ExecuteWithOptions but additionally mirrors
// captured bytes to outW and errW as they arrive
func (c *CommandRunner) ExecuteStreaming(ctx context.Context, opts model.ExecOptions, outW io.Writer, errW io.Writer) ([]byte, []byte, int, error) {
	return c.execute(ctx, opts, outW, errW)
}

func (c *CommandRunner) execute(ctx context.Context, opts model.ExecOptions, outW io.Writer, errW io.Writer) ([]byte, []byte, int, error) {
	if opts.Command == "" {
		return nil, nil, 0, errors.New("command not specified")
	}

	logOpts := []any{
		"command", opts.Command, "args", opts.Args,
	}
	if opts.Cwd != "" {
		logOpts = append(logOpts, "cwd", opts.Cwd)
	}

	c.logger.Debug("Running command", logOpts...)

	toCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		toCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// the default cancel behavior kills the child when the context ends,
	// WaitDelay bounds the wait for its pipes should it ignore the kill
	cmd := exec.CommandContext(toCtx, opts.Command, opts.Args...)
	cmd.WaitDelay = 2 * time.Second

	// toolchain commands depend on the user environment, DEVELOPER_DIR in particular
	cmd.Env = append(os.Environ(), opts.Environment...)

	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}

	if opts.Path != "" {
		cmd.Path = opts.Path
	}

	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	stdout := bytes.NewBuffer([]byte{})
	stderr := bytes.NewBuffer([]byte{})

	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if outW != nil {
		cmd.Stdout = io.MultiWriter(stdout, outW)
	}
	if errW != nil {
		cmd.Stderr = io.MultiWriter(stderr, errW)
	}

	err := cmd.Start()
	if err != nil {
		// never started, this is not an exit status
		return nil, nil, -1, &model.SpawnError{Command: opts.Command, Err: err}
	}

	err = cmd.Wait()
	exitCode := cmd.ProcessState.ExitCode()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// we specifically dont want to error when exit codes are >0 but we do want to return the exit code instead
		if exitCode > 0 {
			return stdout.Bytes(), stderr.Bytes(), exitCode, nil
		}

		return stdout.Bytes(), stderr.Bytes(), exitCode, err
	}

	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), exitCode, err
	}

	return stdout.Bytes(), stderr.Bytes(), exitCode, nil
}

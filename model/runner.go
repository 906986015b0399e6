// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"io"
	"time"
)

type ExecOptions struct {
	Command     string
	Args        []string
	Cwd         string
	Environment []string
	Path        string
	Timeout     time.Duration
	Stdin       io.Reader
}

type CommandRunner interface {
	Execute(ctx context.Context, cmd string, args ...string) (stdout []byte, stderr []byte, exitCode int, err error)
	ExecuteWithOptions(ctx context.Context, opts ExecOptions) ([]byte, []byte, int, error)
	ExecuteStreaming(ctx context.Context, opts ExecOptions, outW io.Writer, errW io.Writer) ([]byte, []byte, int, error)
}

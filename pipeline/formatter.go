// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"strings"

	iu "github.com/appdev-cli/appdev/internal/util"
)

var defaultFormatterPaths = []string{
	"/opt/homebrew/bin/xcbeautify",
	"/usr/local/bin/xcbeautify",
}

const (
	defaultFormatterName  = "xcbeautify"
	defaultLocatorCommand = "xcrun"
)

// resolveFormatter finds the formatter executable with a fixed precedence:
// well known installation paths, the toolchain locator, then PATH. First
// success wins, none found means unformatted mode.
func (p *Pipeline) resolveFormatter(ctx context.Context) (string, bool) {
	if p.noFormatter {
		return "", false
	}

	if p.formatterPath != "" {
		return p.formatterPath, true
	}

	for _, candidate := range p.fixedPaths {
		if iu.IsExecutableFile(candidate) {
			return candidate, true
		}
	}

	stdout, _, code, err := p.runner.Execute(ctx, p.locatorCommand, "--find", p.formatterName)
	if err == nil && code == 0 {
		found := strings.TrimSpace(string(stdout))
		if found != "" && iu.IsExecutableFile(found) {
			return found, true
		}
	}

	if found, ok, _ := iu.ExecutableInPath(p.formatterName); ok {
		return found, true
	}

	p.logger.Debug("No output formatter found, running unformatted", "formatter", p.formatterName)

	return "", false
}

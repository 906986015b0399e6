// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/choria-io/fisk"
)

type buildCommand struct {
	runFlags
}

func registerBuildCommand(app *fisk.Application) {
	cmd := &buildCommand{}

	build := app.Command("build", "Build the configured scheme").Action(cmd.buildAction)
	cmd.register(build)
}

func (c *buildCommand) buildAction(_ *fisk.ParseContext) error {
	opts, err := c.managerOptions()
	if err != nil {
		return err
	}

	mgr, out, cleanup, err := newManager(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := mgr.Build(ctx)
	if err != nil {
		return err
	}

	return reportResult(mgr, out, "build", result)
}

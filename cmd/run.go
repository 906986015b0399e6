// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/choria-io/fisk"
)

type runCommand struct {
	runFlags
}

func registerRunCommand(app *fisk.Application) {
	cmd := &runCommand{}

	run := app.Command("run", "Build the configured scheme and launch the product").Action(cmd.runAction)
	cmd.register(run)
}

func (c *runCommand) runAction(_ *fisk.ParseContext) error {
	opts, err := c.managerOptions()
	if err != nil {
		return err
	}

	mgr, out, cleanup, err := newManager(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := mgr.Run(ctx)
	if err != nil {
		return err
	}

	return reportResult(mgr, out, "run", result)
}

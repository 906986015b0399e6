// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/choria-io/fisk"
)

type testCommand struct {
	runFlags
}

func registerTestCommand(app *fisk.Application) {
	cmd := &testCommand{}

	test := app.Command("test", "Run the tests of the configured scheme").Action(cmd.testAction)
	cmd.register(test)
}

func (c *testCommand) testAction(_ *fisk.ParseContext) error {
	opts, err := c.managerOptions()
	if err != nil {
		return err
	}

	mgr, out, cleanup, err := newManager(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := mgr.Test(ctx)
	if err != nil {
		return err
	}

	return reportResult(mgr, out, "test", result)
}

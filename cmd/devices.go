// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"

	"github.com/appdev-cli/appdev/target"
)

type devicesCommand struct {
	jsonFormat bool
}

func registerDevicesCommand(app *fisk.Application) {
	cmd := &devicesCommand{}

	devices := app.Command("devices", "List known devices and simulators").Action(cmd.devicesAction)
	devices.Flag("json", "Output in JSON format").UnNegatableBoolVar(&cmd.jsonFormat)
}

func (c *devicesCommand) devicesAction(_ *fisk.ParseContext) error {
	mgr, _, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := mgr.NewRunner()
	if err != nil {
		return err
	}

	log, err := mgr.Logger("component", "target")
	if err != nil {
		return err
	}

	inventory, err := target.NewInventory(log, runner, mgr.Tracker())
	if err != nil {
		return err
	}

	sims, err := inventory.Simulators(ctx)
	if err != nil {
		return err
	}

	devices, err := inventory.Devices(ctx)
	if err != nil {
		return err
	}

	if c.jsonFormat {
		j, err := json.MarshalIndent(map[string]any{"devices": devices, "simulators": sims}, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(j))

		return nil
	}

	fmt.Println("Devices:")
	if len(devices) == 0 {
		fmt.Println("  none")
	}
	for _, dev := range devices {
		transport := dev.Transport
		if transport == "" {
			transport = "unknown transport"
		}
		fmt.Printf("  %s (%s) %s, %s\n", dev.Name, dev.UDID, dev.Platform, transport)
	}

	fmt.Println()
	fmt.Println("Simulators:")
	if len(sims) == 0 {
		fmt.Println("  none")
	}
	for _, sim := range sims {
		if !sim.Available {
			continue
		}
		fmt.Printf("  %s (%s) %s %s\n", sim.Name, sim.UDID, sim.RuntimeVersion, sim.State)
	}

	return nil
}

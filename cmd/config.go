// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"

	"github.com/appdev-cli/appdev/choose"
	"github.com/appdev-cli/appdev/config"
	"github.com/appdev-cli/appdev/manager"
	"github.com/appdev-cli/appdev/model"
	"github.com/appdev-cli/appdev/target"
)

type configCommand struct {
	dir string
}

func registerConfigCommand(app *fisk.Application) {
	cmd := &configCommand{}

	cfg := app.Command("config", "Manage the project configuration")
	cfg.Flag("dir", "Project directory to operate in").StringVar(&cmd.dir)

	cfg.Command("show", "Show the active configuration").Action(cmd.showAction)
	cfg.Command("select", "Interactively select scheme and destination").Action(cmd.selectAction)
}

func (c *configCommand) projectDir() (string, error) {
	if c.dir != "" {
		return c.dir, nil
	}

	return os.Getwd()
}

func (c *configCommand) showAction(_ *fisk.ParseContext) error {
	dir, err := c.projectDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	yb, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("# %s\n", config.Path(dir))
	fmt.Print(string(yb))

	return nil
}

// selectAction walks the user through scheme, platform and destination
// choices, every step may be skipped to keep the saved value
func (c *configCommand) selectAction(_ *fisk.ParseContext) error {
	dir, err := c.projectDir()
	if err != nil {
		return err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	mgr, out, cleanup, err := newManager(manager.WithProjectDirectory(dir), manager.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer cleanup()

	selector, err := choose.NewSelector(newLogger())
	if err != nil {
		return err
	}

	err = c.selectScheme(mgr, selector, dir, cfg)
	if err != nil {
		return err
	}

	platform, skipped, err := selector.Select("Select a platform", []string{"device", "simulator", "mac"}, true)
	if err != nil {
		return err
	}
	if !skipped {
		cfg.Platform = platform
	}

	switch cfg.Platform {
	case "device":
		err = c.selectDevice(mgr, selector, cfg)
	case "mac":
	default:
		err = c.selectSimulator(mgr, selector, cfg)
	}
	if err != nil {
		return err
	}

	err = config.Save(dir, cfg)
	if err != nil {
		return err
	}

	out.Info(fmt.Sprintf("Saved configuration to %s", config.Path(dir)))

	return nil
}

// selectScheme offers the schemes the build tool reports for the project,
// silently keeping the saved scheme when listing fails
func (c *configCommand) selectScheme(mgr *manager.AppDev, selector *choose.Selector, dir string, cfg *config.Project) error {
	runner, err := mgr.NewRunner()
	if err != nil {
		return err
	}

	args := append(cfg.ProjectSelector(), "-list", "-json")
	stdout, _, code, err := runner.ExecuteWithOptions(ctx, model.ExecOptions{
		Command: "xcodebuild",
		Args:    args,
		Cwd:     dir,
	})
	if err != nil || code != 0 {
		return nil
	}

	var schemes []string
	list := gjson.GetBytes(stdout, "workspace.schemes")
	if !list.Exists() {
		list = gjson.GetBytes(stdout, "project.schemes")
	}
	list.ForEach(func(_, scheme gjson.Result) bool {
		schemes = append(schemes, scheme.String())
		return true
	})

	if len(schemes) == 0 {
		return nil
	}

	scheme, skipped, err := selector.Select("Select a scheme", schemes, true)
	if err != nil {
		return err
	}
	if !skipped {
		cfg.Scheme = scheme
	}

	return nil
}

func (c *configCommand) selectDevice(mgr *manager.AppDev, selector *choose.Selector, cfg *config.Project) error {
	inventory, err := c.inventory(mgr)
	if err != nil {
		return err
	}

	devices, err := inventory.Devices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("no devices known: %w", model.ErrNoTargetAvailable)
	}

	var labels []string
	for _, dev := range devices {
		labels = append(labels, fmt.Sprintf("%s (%s)", dev.Name, dev.UDID))
	}

	choice, skipped, err := selector.Select("Select a device", labels, true)
	if err != nil {
		return err
	}
	if skipped {
		return nil
	}

	for i, label := range labels {
		if label == choice {
			cfg.Device = &config.SavedDestination{ID: devices[i].UDID, Name: devices[i].Name}
			break
		}
	}

	return nil
}

func (c *configCommand) selectSimulator(mgr *manager.AppDev, selector *choose.Selector, cfg *config.Project) error {
	inventory, err := c.inventory(mgr)
	if err != nil {
		return err
	}

	sims, err := inventory.Simulators(ctx)
	if err != nil {
		return err
	}

	var available []target.Simulator
	var labels []string
	for _, sim := range sims {
		if !sim.Available {
			continue
		}
		available = append(available, sim)
		labels = append(labels, fmt.Sprintf("%s (%s)", sim.Name, sim.RuntimeVersion))
	}

	if len(available) == 0 {
		return fmt.Errorf("no simulators available: %w", model.ErrNoTargetAvailable)
	}

	choice, skipped, err := selector.Select("Select a simulator", labels, true)
	if err != nil {
		return err
	}
	if skipped {
		return nil
	}

	for i, label := range labels {
		if label == choice {
			cfg.Simulator = &config.SavedDestination{ID: available[i].UDID, Name: available[i].Name}
			break
		}
	}

	return nil
}

func (c *configCommand) inventory(mgr *manager.AppDev) (*target.Inventory, error) {
	log, err := mgr.Logger("component", "target")
	if err != nil {
		return nil, err
	}

	runner, err := mgr.NewRunner()
	if err != nil {
		return nil, err
	}

	return target.NewInventory(log, runner, mgr.Tracker())
}

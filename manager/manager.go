// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package manager orchestrates the build tools on behalf of the CLI: it
// resolves destinations, composes tool invocations, runs them through the
// output pipeline and persists the captured logs
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/segmentio/ksuid"
	"github.com/tidwall/gjson"

	"github.com/appdev-cli/appdev/config"
	"github.com/appdev-cli/appdev/internal/cmdrunner"
	"github.com/appdev-cli/appdev/internal/facts"
	"github.com/appdev-cli/appdev/internal/scratch"
	"github.com/appdev-cli/appdev/model"
	"github.com/appdev-cli/appdev/pipeline"
	"github.com/appdev-cli/appdev/target"
)

// Actions accepted by RunAction, they map directly onto build tool actions
const (
	ActionBuild = "build"
	ActionTest  = "test"
)

const buildCommand = "xcodebuild"

// AppDev is the main orchestrator behind every CLI command
type AppDev struct {
	log        model.Logger
	userLogger model.Logger

	dir     string
	cfg     *config.Project
	tracker *scratch.Tracker
	runner  model.CommandRunner
	runID   string
	logDir  string

	pipelineOpts []pipeline.Option
}

// NewManager creates a new AppDev instance with the provided loggers
func NewManager(log model.Logger, userLogger model.Logger, opts ...Option) (*AppDev, error) {
	mgr := &AppDev{
		log:        log,
		userLogger: userLogger,
		runID:      ksuid.New().String(),
	}

	for _, opt := range opts {
		err := opt(mgr)
		if err != nil {
			return nil, err
		}
	}

	if mgr.dir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		mgr.dir = dir
	}

	if mgr.cfg == nil {
		cfg, err := config.Load(mgr.dir)
		if err != nil {
			return nil, err
		}
		mgr.cfg = cfg
	}

	if mgr.tracker == nil {
		trackerLog, err := mgr.Logger("component", "scratch")
		if err != nil {
			return nil, err
		}

		mgr.tracker = scratch.NewTracker("", trackerLog)
	}

	if mgr.logDir == "" {
		mgr.logDir = filepath.Join(xdg.StateHome, "appdev", "logs")
	}

	return mgr, nil
}

// Configuration returns the loaded project configuration
func (m *AppDev) Configuration() *config.Project {
	return m.cfg
}

// Tracker returns the scratch file tracker
func (m *AppDev) Tracker() *scratch.Tracker {
	return m.tracker
}

// RunID returns the unique identifier of this invocation, persisted log
// files are named after it
func (m *AppDev) RunID() string {
	return m.runID
}

// Logger creates a new logger with the provided key-value pairs added to the context
func (m *AppDev) Logger(args ...any) (model.Logger, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("invalid logger arguments, must be key value pairs")
	}

	return m.log.With(args...), nil
}

// NewRunner returns the command runner all subprocesses go through
func (m *AppDev) NewRunner() (model.CommandRunner, error) {
	if m.runner != nil {
		return m.runner, nil
	}

	log, err := m.Logger("component", "runner")
	if err != nil {
		return nil, err
	}

	return cmdrunner.NewCommandRunner(log)
}

// ResolveDestination picks the destination the configured platform request
// resolves to right now
func (m *AppDev) ResolveDestination(ctx context.Context) (*model.Destination, error) {
	runner, err := m.NewRunner()
	if err != nil {
		return nil, err
	}

	log, err := m.Logger("component", "target")
	if err != nil {
		return nil, err
	}

	inventory, err := target.NewInventory(log, runner, m.tracker)
	if err != nil {
		return nil, err
	}

	probe, err := target.NewConnectivityProbe(log, runner, m.tracker)
	if err != nil {
		return nil, err
	}

	resolver, err := target.NewResolver(log, inventory, probe)
	if err != nil {
		return nil, err
	}

	return resolver.Resolve(ctx, m.cfg.Request(), m.preferences())
}

func (m *AppDev) preferences() target.Preferences {
	prefs := target.Preferences{
		Family: m.cfg.Family,
		Filter: m.cfg.Filter,
	}

	if m.cfg.Device != nil {
		prefs.DeviceID = m.cfg.Device.ID
		prefs.DeviceName = m.cfg.Device.Name
	}
	if m.cfg.Simulator != nil {
		prefs.SimulatorID = m.cfg.Simulator.ID
		prefs.SimulatorName = m.cfg.Simulator.Name
	}

	return prefs
}

// CommandArguments composes the build tool argument list for an action
// against a resolved destination. The scheme is mandatory, everything else
// is optional.
func (m *AppDev) CommandArguments(action string, dest *model.Destination) ([]string, error) {
	if m.cfg.Scheme == "" {
		return nil, model.ErrNoScheme
	}

	extra, err := m.cfg.SplitExtraArgs()
	if err != nil {
		return nil, err
	}

	var args []string

	args = append(args, m.cfg.ProjectSelector()...)
	args = append(args, "-scheme", m.cfg.Scheme)
	if m.cfg.Configuration != "" {
		args = append(args, "-configuration", m.cfg.Configuration)
	}
	args = append(args, "-destination", dest.Descriptor())
	args = append(args, extra...)
	args = append(args, action)

	return args, nil
}

// RunAction resolves the destination and runs one build tool action through
// the output pipeline, persisting the captured logs. A non zero exit is not
// an error here, callers inspect the result.
func (m *AppDev) RunAction(ctx context.Context, action string) (*model.RunResult, error) {
	dest, err := m.ResolveDestination(ctx)
	if err != nil {
		return nil, err
	}

	return m.runResolvedAction(ctx, action, dest)
}

// runResolvedAction runs one action against an already resolved destination
// so a command never resolves twice within one invocation
func (m *AppDev) runResolvedAction(ctx context.Context, action string, dest *model.Destination) (*model.RunResult, error) {
	m.userLogger.Info(fmt.Sprintf("Running %s for scheme %s on %s", action, m.cfg.Scheme, dest.String()))

	args, err := m.CommandArguments(action, dest)
	if err != nil {
		return nil, err
	}

	runner, err := m.NewRunner()
	if err != nil {
		return nil, err
	}

	log, err := m.Logger("component", "pipeline", "action", action)
	if err != nil {
		return nil, err
	}

	opts := append([]pipeline.Option{pipeline.WithWorkingDirectory(m.dir)}, m.pipelineOpts...)

	pipe, err := pipeline.New(log, runner, opts...)
	if err != nil {
		return nil, err
	}

	result, err := pipe.Run(ctx, buildCommand, args)
	if err != nil {
		return nil, err
	}

	m.persistLogs(action, result)

	return result, nil
}

// Build runs the build action
func (m *AppDev) Build(ctx context.Context) (*model.RunResult, error) {
	return m.RunAction(ctx, ActionBuild)
}

// Test runs the test action
func (m *AppDev) Test(ctx context.Context) (*model.RunResult, error) {
	return m.RunAction(ctx, ActionTest)
}

// Run builds the configured scheme and launches the product on the
// resolved destination. The destination is resolved once and both the
// build and the launch use it, live connectivity changing mid command can
// not split them across different targets.
func (m *AppDev) Run(ctx context.Context) (*model.RunResult, error) {
	dest, err := m.ResolveDestination(ctx)
	if err != nil {
		return nil, err
	}

	result, err := m.runResolvedAction(ctx, ActionBuild, dest)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return result, nil
	}

	product, err := m.buildSettings(ctx, dest)
	if err != nil {
		return nil, err
	}

	err = m.launch(ctx, dest, product)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// productInfo is the subset of build settings needed to install and launch
// the built product
type productInfo struct {
	AppPath  string
	BundleID string
}

// buildSettings asks the build tool for the settings of the configured
// scheme and extracts where the product was placed and its bundle identity
func (m *AppDev) buildSettings(ctx context.Context, dest *model.Destination) (*productInfo, error) {
	args, err := m.CommandArguments(ActionBuild, dest)
	if err != nil {
		return nil, err
	}
	args = append(args, "-showBuildSettings", "-json")

	runner, err := m.NewRunner()
	if err != nil {
		return nil, err
	}

	stdout, stderr, code, err := runner.ExecuteWithOptions(ctx, model.ExecOptions{
		Command: buildCommand,
		Args:    args,
		Cwd:     m.dir,
	})
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("could not read build settings, exit code %d: %s", code, strings.TrimSpace(string(stderr)))
	}

	product, err := parseBuildSettings(stdout)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// parseBuildSettings extracts the product location and bundle identifier
// from the build tool's JSON settings dump
func parseBuildSettings(jb []byte) (*productInfo, error) {
	settings := gjson.GetBytes(jb, "0.buildSettings")
	if !settings.Exists() {
		return nil, fmt.Errorf("no build settings in tool output")
	}

	dir := settings.Get("TARGET_BUILD_DIR").String()
	name := settings.Get("FULL_PRODUCT_NAME").String()
	if dir == "" || name == "" {
		return nil, fmt.Errorf("build settings did not include the product location")
	}

	return &productInfo{
		AppPath:  filepath.Join(dir, name),
		BundleID: settings.Get("PRODUCT_BUNDLE_IDENTIFIER").String(),
	}, nil
}

func (m *AppDev) launch(ctx context.Context, dest *model.Destination, product *productInfo) error {
	switch dest.Kind {
	case model.DestinationSimulator:
		return m.launchSimulator(ctx, dest, product)
	case model.DestinationDevice:
		return m.launchDevice(ctx, dest, product)
	default:
		return m.launchMac(ctx, product)
	}
}

func (m *AppDev) launchSimulator(ctx context.Context, dest *model.Destination, product *productInfo) error {
	runner, err := m.NewRunner()
	if err != nil {
		return err
	}

	// booting an already booted simulator fails, that is fine, a real
	// problem surfaces again at install time
	_, _, code, err := runner.Execute(ctx, "xcrun", "simctl", "boot", dest.ID)
	if err != nil {
		return err
	}
	if code != 0 {
		m.log.Debug("Simulator boot skipped", "simulator", dest.ID, "exitcode", code)
	}

	err = m.runTool(ctx, runner, "install", "xcrun", "simctl", "install", dest.ID, product.AppPath)
	if err != nil {
		return err
	}

	err = m.runTool(ctx, runner, "launch", "xcrun", "simctl", "launch", dest.ID, product.BundleID)
	if err != nil {
		return err
	}

	m.userLogger.Info(fmt.Sprintf("Launched %s on %s", product.BundleID, dest.String()))

	return nil
}

func (m *AppDev) launchDevice(ctx context.Context, dest *model.Destination, product *productInfo) error {
	runner, err := m.NewRunner()
	if err != nil {
		return err
	}

	err = m.runTool(ctx, runner, "install", "xcrun", "devicectl", "device", "install", "app", "--device", dest.ID, product.AppPath)
	if err != nil {
		return err
	}

	err = m.runTool(ctx, runner, "launch", "xcrun", "devicectl", "device", "process", "launch", "--device", dest.ID, product.BundleID)
	if err != nil {
		return err
	}

	m.userLogger.Info(fmt.Sprintf("Launched %s on %s", product.BundleID, dest.String()))

	return nil
}

func (m *AppDev) launchMac(ctx context.Context, product *productInfo) error {
	runner, err := m.NewRunner()
	if err != nil {
		return err
	}

	err = m.runTool(ctx, runner, "launch", "open", product.AppPath)
	if err != nil {
		return err
	}

	m.userLogger.Info(fmt.Sprintf("Launched %s", product.AppPath))

	return nil
}

// runTool runs one launch related tool invocation, turning a non zero exit
// into an error since these steps have no useful partial outcome
func (m *AppDev) runTool(ctx context.Context, runner model.CommandRunner, step string, cmd string, args ...string) error {
	_, stderr, code, err := runner.Execute(ctx, cmd, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%s failed with exit code %d: %s", step, code, strings.TrimSpace(string(stderr)))
	}

	return nil
}

// persistLogs writes the captured logs for later inspection, failures are
// logged and swallowed since the run itself already succeeded or failed on
// its own terms
func (m *AppDev) persistLogs(action string, result *model.RunResult) {
	err := os.MkdirAll(m.logDir, 0755)
	if err != nil {
		m.log.Warn("Could not create log directory", "path", m.logDir, "error", err)
		return
	}

	raw := filepath.Join(m.logDir, fmt.Sprintf("%s-%s.raw.log", m.runID, action))
	err = os.WriteFile(raw, result.RawLog, 0644)
	if err != nil {
		m.log.Warn("Could not persist raw log", "path", raw, "error", err)
	} else {
		m.log.Debug("Persisted raw log", "path", raw)
	}

	if result.PrettyLog == nil {
		return
	}

	pretty := filepath.Join(m.logDir, fmt.Sprintf("%s-%s.pretty.log", m.runID, action))
	err = os.WriteFile(pretty, result.PrettyLog, 0644)
	if err != nil {
		m.log.Warn("Could not persist pretty log", "path", pretty, "error", err)
	} else {
		m.log.Debug("Persisted pretty log", "path", pretty)
	}
}

// Facts gathers the environment report shown by the doctor command
func (m *AppDev) Facts(ctx context.Context) (map[string]any, error) {
	to, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	runner, err := m.NewRunner()
	if err != nil {
		return nil, err
	}

	host, err := facts.HostFacts(to)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"host":      host,
		"toolchain": facts.ToolchainFacts(to, runner),
	}, nil
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package facts gathers the environment report shown by the doctor command
package facts

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/appdev-cli/appdev/model"
)

// HostFacts returns basic information about the machine builds run on
func HostFacts(ctx context.Context) (map[string]any, error) {
	res := map[string]any{}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	res["hostname"] = info.Hostname
	res["os"] = info.OS
	res["platform"] = info.Platform
	res["platform_version"] = info.PlatformVersion
	res["arch"] = info.KernelArch
	res["uptime_seconds"] = info.Uptime

	count, err := cpu.CountsWithContext(ctx, true)
	if err == nil {
		res["cpus"] = count
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		res["memory_total_bytes"] = vm.Total
		res["memory_available_bytes"] = vm.Available
	}

	return res, nil
}

// ToolchainFacts probes the external tools this CLI depends on, failures
// are reported as facts rather than errors so the doctor always answers
func ToolchainFacts(ctx context.Context, runner model.CommandRunner) map[string]any {
	res := map[string]any{}

	stdout, _, code, err := runner.Execute(ctx, "xcodebuild", "-version")
	switch {
	case err != nil:
		res["xcodebuild"] = "not found"
	case code != 0:
		res["xcodebuild"] = "unusable"
	default:
		res["xcodebuild"] = firstLine(stdout)
	}

	for _, tool := range []string{"xcbeautify", "simctl", "devicectl"} {
		args := []string{"--find", tool}
		stdout, _, code, err = runner.Execute(ctx, "xcrun", args...)
		if err != nil || code != 0 {
			res[tool] = "not found"
			continue
		}

		res[tool] = firstLine(stdout)
	}

	return res
}

func firstLine(b []byte) string {
	line, _, _ := strings.Cut(string(b), "\n")
	return strings.TrimSpace(line)
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/appdev-cli/appdev/model"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config")
}

var _ = Describe("Parse", func() {
	It("parses a full configuration", func() {
		cfg, err := Parse([]byte(`
workspace: App.xcworkspace
scheme: App
configuration: Debug
platform: device
device:
  id: DEV1
  name: Test Phone
simulator:
  id: SIM1
  name: Phone-X
family: iPhone
simulator_filter: 'version >= "17"'
extra_args: "-quiet CODE_SIGNING_ALLOWED=NO"
`))
		Expect(err).ToNot(HaveOccurred())

		Expect(cfg.Scheme).To(Equal("App"))
		Expect(cfg.Device.ID).To(Equal("DEV1"))
		Expect(cfg.Simulator.Name).To(Equal("Phone-X"))
		Expect(cfg.Request()).To(Equal(model.RequestDevice))

		args, err := cfg.SplitExtraArgs()
		Expect(err).ToNot(HaveOccurred())
		Expect(args).To(Equal([]string{"-quiet", "CODE_SIGNING_ALLOWED=NO"}))
	})

	It("rejects unknown keys", func() {
		_, err := Parse([]byte("schme: App\n"))
		Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects an unknown platform", func() {
		_, err := Parse([]byte("platform: watch\n"))
		Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects a destination without an id", func() {
		_, err := Parse([]byte("device:\n  name: Test Phone\n"))
		Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects unbalanced extra argument quoting", func() {
		cfg, err := Parse([]byte(`extra_args: "-xcconfig 'unterminated"`))
		Expect(err).ToNot(HaveOccurred())

		_, err = cfg.SplitExtraArgs()
		Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
	})

	It("defaults to a simulator request", func() {
		cfg, err := Parse([]byte("scheme: App\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Request()).To(Equal(model.RequestSimulator))
	})
})

var _ = Describe("ProjectSelector", func() {
	It("prefers the workspace over the project", func() {
		cfg := &Project{Workspace: "App.xcworkspace", Project: "App.xcodeproj"}
		Expect(cfg.ProjectSelector()).To(Equal([]string{"-workspace", "App.xcworkspace"}))

		cfg.Workspace = ""
		Expect(cfg.ProjectSelector()).To(Equal([]string{"-project", "App.xcodeproj"}))

		cfg.Project = ""
		Expect(cfg.ProjectSelector()).To(BeNil())
	})
})

var _ = Describe("Load and Save", func() {
	It("round trips through the project local file", func() {
		td := GinkgoT().TempDir()

		cfg := &Project{
			Scheme:    "App",
			Platform:  "simulator",
			Simulator: &SavedDestination{ID: "SIM1", Name: "Phone-X"},
		}
		Expect(Save(td, cfg)).To(Succeed())

		loaded, err := Load(td)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})

	It("returns an empty configuration when nothing is saved", func() {
		td := GinkgoT().TempDir()

		// keep the per user XDG fallback out of this test
		GinkgoT().Setenv("XDG_CONFIG_HOME", filepath.Join(td, "xdg"))
		xdg.Reload()

		cfg, err := Load(td)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg).To(Equal(&Project{}))
	})

	It("fails on invalid saved content", func() {
		td := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(td, FileName), []byte("platform: 42\n"), 0644)).To(Succeed())

		_, err := Load(td)
		Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
	})
})

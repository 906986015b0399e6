// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/appdev-cli/appdev/config"
	"github.com/appdev-cli/appdev/model"
	"github.com/appdev-cli/appdev/model/modelmocks"
	"github.com/appdev-cli/appdev/pipeline"
)

func TestManager(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Manager")
}

var _ = Describe("Manager", func() {
	var (
		mockctl *gomock.Controller
		log     *modelmocks.MockLogger
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		log = modelmocks.NewQuietLogger(mockctl)
	})

	AfterEach(func() {
		mockctl.Finish()
	})

	newManager := func(cfg *config.Project, opts ...Option) *AppDev {
		opts = append([]Option{
			WithConfig(cfg),
			WithProjectDirectory(GinkgoT().TempDir()),
			WithLogDirectory(filepath.Join(GinkgoT().TempDir(), "logs")),
		}, opts...)

		mgr, err := NewManager(log, log, opts...)
		Expect(err).ToNot(HaveOccurred())

		return mgr
	}

	Describe("NewManager", func() {
		It("loads the configuration from the project directory", func() {
			td := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(td, config.FileName), []byte("scheme: App\n"), 0644)).To(Succeed())

			mgr, err := NewManager(log, log, WithProjectDirectory(td))
			Expect(err).ToNot(HaveOccurred())
			Expect(mgr.Configuration().Scheme).To(Equal("App"))
			Expect(mgr.RunID()).ToNot(BeEmpty())
		})
	})

	Describe("CommandArguments", func() {
		It("composes the full argument list", func() {
			mgr := newManager(&config.Project{
				Workspace:     "App.xcworkspace",
				Scheme:        "App",
				Configuration: "Debug",
				ExtraArgs:     "-quiet CODE_SIGNING_ALLOWED=NO",
			})

			dest := &model.Destination{Kind: model.DestinationSimulator, ID: "SIM1", Name: "Phone-X"}

			args, err := mgr.CommandArguments(ActionTest, dest)
			Expect(err).ToNot(HaveOccurred())
			Expect(args).To(Equal([]string{
				"-workspace", "App.xcworkspace",
				"-scheme", "App",
				"-configuration", "Debug",
				"-destination", "platform=iOS Simulator,id=SIM1",
				"-quiet", "CODE_SIGNING_ALLOWED=NO",
				"test",
			}))
		})

		It("only includes what is configured", func() {
			mgr := newManager(&config.Project{Scheme: "App"})

			args, err := mgr.CommandArguments(ActionBuild, &model.Destination{Kind: model.DestinationMac})
			Expect(err).ToNot(HaveOccurred())
			Expect(args).To(Equal([]string{"-scheme", "App", "-destination", "platform=macOS", "build"}))
		})

		It("requires a scheme", func() {
			mgr := newManager(&config.Project{})

			_, err := mgr.CommandArguments(ActionBuild, &model.Destination{Kind: model.DestinationMac})
			Expect(errors.Is(err, model.ErrNoScheme)).To(BeTrue())
		})
	})

	Describe("RunAction", func() {
		It("runs the build tool and persists the raw log", func() {
			runner := modelmocks.NewMockCommandRunner(mockctl)
			runner.EXPECT().ExecuteStreaming(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, opts model.ExecOptions, outW io.Writer, _ io.Writer) ([]byte, []byte, int, error) {
					Expect(opts.Command).To(Equal("xcodebuild"))
					Expect(opts.Args).To(Equal([]string{
						"-scheme", "App",
						"-destination", "platform=iOS Simulator,id=SIM1",
						"build",
					}))

					out := []byte("compiling\nApp.swift:1:1: error: boom\n")
					outW.Write(out)

					return out, nil, 65, nil
				})

			logDir := filepath.Join(GinkgoT().TempDir(), "logs")
			mgr := newManager(&config.Project{
				Scheme:    "App",
				Platform:  "simulator",
				Simulator: &config.SavedDestination{ID: "SIM1", Name: "Phone-X"},
			},
				WithRunner(runner),
				WithLogDirectory(logDir),
				WithPipelineOptions(pipeline.WithoutFormatter(), pipeline.WithOutput(io.Discard, io.Discard)),
			)

			result, err := mgr.RunAction(context.Background(), ActionBuild)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Failed()).To(BeTrue())
			Expect(result.ExitCode).To(Equal(65))
			Expect(result.Diagnostics).To(Equal([]string{"App.swift:1:1: error: boom"}))

			raw, err := os.ReadFile(filepath.Join(logDir, mgr.RunID()+"-build.raw.log"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring("error: boom"))
		})
	})

	Describe("Run", func() {
		It("resolves the destination once and uses it for build and launch", func() {
			runner := modelmocks.NewMockCommandRunner(mockctl)

			// the connectivity probe may only run a single time, the
			// build and the launch have to target the same device
			runner.EXPECT().ExecuteWithOptions(gomock.Any(), gomock.Cond(func(opts model.ExecOptions) bool {
				return opts.Command == "xcrun"
			})).DoAndReturn(func(_ context.Context, opts model.ExecOptions) ([]byte, []byte, int, error) {
				Expect(opts.Args[:4]).To(Equal([]string{"devicectl", "device", "info", "details"}))

				path := opts.Args[len(opts.Args)-1]
				wired := `{"result":{"connectionProperties":{"transportType":"wired"}}}`
				Expect(os.WriteFile(path, []byte(wired), 0644)).To(Succeed())

				return nil, nil, 0, nil
			}).Times(1)

			runner.EXPECT().ExecuteStreaming(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, opts model.ExecOptions, outW io.Writer, _ io.Writer) ([]byte, []byte, int, error) {
					Expect(opts.Command).To(Equal("xcodebuild"))
					Expect(opts.Args).To(ContainElements("-destination", "platform=iOS,id=DEV1"))

					out := []byte("BUILD SUCCEEDED\n")
					outW.Write(out)

					return out, nil, 0, nil
				})

			runner.EXPECT().ExecuteWithOptions(gomock.Any(), gomock.Cond(func(opts model.ExecOptions) bool {
				return opts.Command == "xcodebuild"
			})).DoAndReturn(func(_ context.Context, opts model.ExecOptions) ([]byte, []byte, int, error) {
				Expect(opts.Args).To(ContainElements("-showBuildSettings", "-json"))

				settings := `[{"buildSettings":{"TARGET_BUILD_DIR":"/tmp/out","FULL_PRODUCT_NAME":"App.app","PRODUCT_BUNDLE_IDENTIFIER":"com.example.App"}}]`

				return []byte(settings), nil, 0, nil
			})

			gomock.InOrder(
				runner.EXPECT().Execute(gomock.Any(), "xcrun", "devicectl", "device", "install", "app", "--device", "DEV1", "/tmp/out/App.app").Return(nil, nil, 0, nil),
				runner.EXPECT().Execute(gomock.Any(), "xcrun", "devicectl", "device", "process", "launch", "--device", "DEV1", "com.example.App").Return(nil, nil, 0, nil),
			)

			mgr := newManager(&config.Project{
				Scheme:   "App",
				Platform: "device",
				Device:   &config.SavedDestination{ID: "DEV1", Name: "Test Phone"},
			},
				WithRunner(runner),
				WithPipelineOptions(pipeline.WithoutFormatter(), pipeline.WithOutput(io.Discard, io.Discard)),
			)

			result, err := mgr.Run(context.Background())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Failed()).To(BeFalse())
		})
	})

	Describe("parseBuildSettings", func() {
		It("extracts the product location and bundle identity", func() {
			product, err := parseBuildSettings([]byte(`[
  {
    "action": "build",
    "target": "App",
    "buildSettings": {
      "TARGET_BUILD_DIR": "/tmp/DerivedData/Build/Products/Debug-iphonesimulator",
      "FULL_PRODUCT_NAME": "App.app",
      "PRODUCT_BUNDLE_IDENTIFIER": "com.example.App"
    }
  }
]`))
			Expect(err).ToNot(HaveOccurred())
			Expect(product.AppPath).To(Equal("/tmp/DerivedData/Build/Products/Debug-iphonesimulator/App.app"))
			Expect(product.BundleID).To(Equal("com.example.App"))
		})

		It("fails when the product location is missing", func() {
			_, err := parseBuildSettings([]byte(`[{"buildSettings": {"FULL_PRODUCT_NAME": "App.app"}}]`))
			Expect(err).To(MatchError(ContainSubstring("product location")))

			_, err = parseBuildSettings([]byte(`{}`))
			Expect(err).To(MatchError(ContainSubstring("no build settings")))
		})
	})
})

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/appdev-cli/appdev/model/modelmocks"
)

func TestScratch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal/Scratch")
}

var _ = Describe("Tracker", func() {
	var (
		ctrl    *gomock.Controller
		tracker *Tracker
		td      string
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		td = GinkgoT().TempDir()
		tracker = NewTracker(td, modelmocks.NewQuietLogger(ctrl))
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Create", func() {
		It("creates and registers a file", func() {
			path, err := tracker.Create("result-bundle", ".xcresult")
			Expect(err).ToNot(HaveOccurred())

			Expect(filepath.Dir(path)).To(Equal(td))
			Expect(filepath.Base(path)).To(HavePrefix("result-bundle-"))
			Expect(strings.HasSuffix(path, ".xcresult")).To(BeTrue())

			_, err = os.Stat(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(tracker.Tracked()).To(Equal([]string{path}))
		})
	})

	Describe("Remove", func() {
		It("is idempotent", func() {
			path, err := tracker.Create("log", ".txt")
			Expect(err).ToNot(HaveOccurred())

			tracker.Remove(path)
			Expect(tracker.Tracked()).To(BeEmpty())
			_, err = os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())

			// second removal of the same path must be harmless
			tracker.Remove(path)
		})

		It("tolerates files removed behind its back", func() {
			path, err := tracker.Create("log", ".txt")
			Expect(err).ToNot(HaveOccurred())

			Expect(os.Remove(path)).To(Succeed())
			tracker.Remove(path)
			Expect(tracker.Tracked()).To(BeEmpty())
		})
	})

	Describe("Sweep", func() {
		It("removes everything and empties the tracked set", func() {
			one, err := tracker.Create("one", ".log")
			Expect(err).ToNot(HaveOccurred())
			two, err := tracker.Create("two", ".log")
			Expect(err).ToNot(HaveOccurred())

			// a file already gone must not fail the sweep
			Expect(os.Remove(one)).To(Succeed())

			tracker.Sweep()

			Expect(tracker.Tracked()).To(BeEmpty())
			_, err = os.Stat(two)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("is a no-op when called again", func() {
			_, err := tracker.Create("one", ".log")
			Expect(err).ToNot(HaveOccurred())

			tracker.Sweep()
			tracker.Sweep()
			Expect(tracker.Tracked()).To(BeEmpty())
		})
	})
})

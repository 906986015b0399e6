// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPackageutil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal/Util")
}

var _ = Describe("VersionCmp", func() {
	It("compares versions as expected for a simple case", func() {
		Expect(VersionCmp("17.2", "17.3", false)).To(Equal(-1))
	})

	It("orders multi segment runtime versions numerically", func() {
		Expect(VersionCmp("17.10", "17.9", false)).To(Equal(1))
		Expect(VersionCmp("16.4", "17.0", false)).To(Equal(-1))
	})

	Context("when ignore_trailing_zeroes is true", func() {
		It("equates versions with unnecessary trailing zero", func() {
			Expect(VersionCmp("17.1.0", "17.1", true)).To(Equal(0))
			Expect(VersionCmp("18.0", "18", true)).To(Equal(0))
			Expect(VersionCmp("18.0.00", "18", true)).To(Equal(0))
		})

		It("compares versions with dashes after normalization", func() {
			Expect(VersionCmp("17.1-1", "17.1.0-0", true)).To(Equal(1))
		})

		It("does not normalize versions if zeros are not trailing", func() {
			Expect(VersionCmp("1.1", "1.0.1", true)).To(Equal(1))
		})
	})

	Context("when ignore_trailing_zeroes is false", func() {
		It("does not equate versions if zeros are not trailing", func() {
			Expect(VersionCmp("1.1", "1.0.1", false)).To(Equal(1))
		})
	})
})

var _ = Describe("FileExists", func() {
	It("detects files and directories", func() {
		td := GinkgoT().TempDir()
		file := filepath.Join(td, "present")
		Expect(os.WriteFile(file, []byte("x"), 0644)).To(Succeed())

		Expect(FileExists(file)).To(BeTrue())
		Expect(FileExists(filepath.Join(td, "absent"))).To(BeFalse())
		Expect(IsDirectory(td)).To(BeTrue())
		Expect(IsDirectory(file)).To(BeFalse())
	})
})

var _ = Describe("IsExecutableFile", func() {
	It("requires a regular file with an execute bit", func() {
		td := GinkgoT().TempDir()
		plain := filepath.Join(td, "plain")
		script := filepath.Join(td, "script")
		Expect(os.WriteFile(plain, []byte("x"), 0644)).To(Succeed())
		Expect(os.WriteFile(script, []byte("#!/bin/sh\n"), 0755)).To(Succeed())

		Expect(IsExecutableFile(plain)).To(BeFalse())
		Expect(IsExecutableFile(script)).To(BeTrue())
		Expect(IsExecutableFile(td)).To(BeFalse())
	})
})

var _ = Describe("ExecutableInPath", func() {
	It("finds well known executables", func() {
		path, found, err := ExecutableInPath("sh")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(path).ToNot(BeEmpty())
	})

	It("reports missing executables", func() {
		_, found, err := ExecutableInPath("definitely-not-a-real-tool")
		Expect(err).To(HaveOccurred())
		Expect(found).To(BeFalse())
	})
})

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractDiagnostics", func() {
	It("returns nothing for clean output", func() {
		raw := []byte("Compiling main.swift\nLinking app\nBuild succeeded\n")
		Expect(ExtractDiagnostics(raw)).To(BeEmpty())
	})

	It("trims and de-duplicates in first occurrence order", func() {
		raw := []byte(
			"  /src/a.swift:3:1: error: use of unresolved identifier 'x'\n" +
				"note: did you mean y\n" +
				"/src/b.swift:9:2: error: missing return\n" +
				"/src/a.swift:3:1: error: use of unresolved identifier 'x'\n")

		Expect(ExtractDiagnostics(raw)).To(Equal([]string{
			"/src/a.swift:3:1: error: use of unresolved identifier 'x'",
			"/src/b.swift:9:2: error: missing return",
		}))
	})

	It("ignores lines without the marker", func() {
		raw := []byte("warning: something minor\nerrors were reported\n")
		Expect(ExtractDiagnostics(raw)).To(BeEmpty())
	})

	It("matches the marker mid line", func() {
		raw := []byte("xcodebuild: error: scheme not found\n")
		Expect(ExtractDiagnostics(raw)).To(Equal([]string{"xcodebuild: error: scheme not found"}))
	})
})

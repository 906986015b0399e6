// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bufio"
	"bytes"
	"strings"
)

const errorMarker = "error:"

// ExtractDiagnostics pulls the error lines out of a raw log: every line
// containing the "error:" marker, trimmed, de-duplicated, in order of
// first occurrence
func ExtractDiagnostics(raw []byte) []string {
	var diags []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, errorMarker) {
			continue
		}

		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}

		diags = append(diags, line)
	}

	return diags
}

// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

// DestinationKind is the class of build/test target a command runs against
type DestinationKind string

const (
	DestinationDevice    DestinationKind = "device"
	DestinationSimulator DestinationKind = "simulator"
	DestinationMac       DestinationKind = "mac"
)

// PlatformRequest is what kind of destination a command asked for before
// resolution happened
type PlatformRequest string

const (
	// RequestDevice prefers a connected physical device but falls back to a simulator
	RequestDevice PlatformRequest = "device"
	// RequestSimulator only ever resolves to a simulator
	RequestSimulator PlatformRequest = "simulator"
	// RequestMac resolves to the local machine without an identifier
	RequestMac PlatformRequest = "mac"
)

// Destination is a resolved build/test target, immutable once resolved
type Destination struct {
	Kind DestinationKind
	ID   string
	Name string
}

// Descriptor renders the destination in the form the build tool expects
// for its -destination argument
func (d *Destination) Descriptor() string {
	switch d.Kind {
	case DestinationMac:
		return "platform=macOS"
	case DestinationDevice:
		return fmt.Sprintf("platform=iOS,id=%s", d.ID)
	default:
		return fmt.Sprintf("platform=iOS Simulator,id=%s", d.ID)
	}
}

func (d *Destination) String() string {
	if d.Kind == DestinationMac {
		return "My Mac"
	}

	return fmt.Sprintf("%s (%s)", d.Name, d.ID)
}

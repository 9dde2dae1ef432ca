// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a Metal Shading Language version.
type Version struct {
	Major uint8
	Minor uint8
}

// Language versions with features the backend gates on.
var (
	Version1_0 = Version{1, 0}
	Version1_1 = Version{1, 1}
	Version1_2 = Version{1, 2}
	Version2_0 = Version{2, 0}
	Version2_1 = Version{2, 1}
	Version2_2 = Version{2, 2}
	Version2_3 = Version{2, 3}
	Version2_4 = Version{2, 4}
	Version3_0 = Version{3, 0}
)

// String returns "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool {
	if v.Major != o.Major {
		return v.Major > o.Major
	}
	return v.Minor >= o.Minor
}

// ParseVersion parses "2.1", "2_1" or the packed form 20100
// (major*10000 + minor*100 + patch). The patch level is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil && n >= 10000 {
		return Version{Major: uint8(n / 10000), Minor: uint8(n / 100 % 100)}, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '_' })
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid MSL version %q", s)
	}
	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("invalid MSL version %q: %w", s, err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("invalid MSL version %q: %w", s, err)
	}
	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

// UnmarshalText lets option files name the version.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText renders the version as "major.minor".
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Platform is the Apple platform family the output targets.
type Platform uint8

const (
	PlatformMacOS Platform = iota
	PlatformIOS
)

func (p Platform) String() string {
	if p == PlatformIOS {
		return "ios"
	}
	return "macos"
}

// UnmarshalText accepts "macos" and "ios" in any case.
func (p *Platform) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "macos", "osx", "mac":
		*p = PlatformMacOS
	case "ios":
		*p = PlatformIOS
	default:
		return fmt.Errorf("unknown platform %q", text)
	}
	return nil
}

// MarshalText renders the platform name.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ArgumentBuffersTier is the argument buffer capability tier of the
// target device.
type ArgumentBuffersTier uint8

const (
	ArgumentBuffersTier1 ArgumentBuffersTier = iota
	ArgumentBuffersTier2
)

// IndexType is the index buffer element type of a vertex shader compiled
// for tessellation.
type IndexType uint8

const (
	IndexTypeNone IndexType = iota
	IndexTypeUInt16
	IndexTypeUInt32
)

var indexTypeNames = []string{"none", "uint16", "uint32"}

func (t IndexType) String() string { return enumText(indexTypeNames, uint8(t)) }

// UnmarshalText accepts "none", "uint16" and "uint32" in any case.
func (t *IndexType) UnmarshalText(text []byte) error {
	n, err := parseEnum("index type", indexTypeNames, text)
	*t = IndexType(n)
	return err
}

// MarshalText renders the index type name.
func (t IndexType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// element returns the Metal type of one index.
func (t IndexType) element() string {
	if t == IndexTypeUInt16 {
		return "ushort"
	}
	return "uint"
}

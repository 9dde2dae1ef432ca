// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReserved(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		// Language keywords
		{"kernel", true},
		{"device", true},
		{"threadgroup", true},
		{"metal", true},
		// Types and functions
		{"texture2d", true},
		{"saturate", true},
		{"simd_sum", true},
		// Shorthands
		{"float4", true},
		{"packed_half3", true},
		{"half3x2", true},
		// Free identifiers
		{"color", false},
		{"float5", false},
		{"packed_float5", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReserved(tt.input))
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", UnnamedIdentifier},
		{"vertex", "_vertex"},
		{"uint2", "_uint2"},
		{"albedo", "albedo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.input), "Escape(%q)", tt.input)
	}
}

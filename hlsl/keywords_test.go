// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReserved(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		// FXC keywords
		{"bool", true},
		{"cbuffer", true},
		{"Texture2D", true},
		{"packoffset", true},
		// Intrinsics
		{"lerp", true},
		{"saturate", true},
		{"WaveActiveSum", true},
		// Type shorthands
		{"float3x4", true},
		{"min16float2", true},
		{"uint64_t", true},
		// Generated stage interface
		{"SPIRV_Cross_Input", true},
		{"stage_output", true},
		// Free identifiers
		{"color", false},
		{"vert_main", false},
		{"float5", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReserved(tt.input))
		})
	}
}

func TestIsCaseInsensitiveReserved(t *testing.T) {
	assert.True(t, IsCaseInsensitiveReserved("Technique"))
	assert.True(t, IsCaseInsensitiveReserved("TEXTURE2D"))
	assert.False(t, IsCaseInsensitiveReserved("sampler2"))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", UnnamedIdentifier},
		{"float", "_float"},
		{"PASS", "_PASS"},
		{"albedo", "albedo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.input), "Escape(%q)", tt.input)
	}
}

func TestTypeShorthands(t *testing.T) {
	for _, name := range []string{"int1", "double4", "half2x3", "float16_t4x4", "bool1x1"} {
		_, ok := typeShorthands[name]
		assert.True(t, ok, name)
	}
	_, ok := typeShorthands["dword2x2"]
	assert.False(t, ok, "dword has no matrix forms")
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		sm     ShaderModel
		want   string
		suffix string
	}{
		{ShaderModel5_0, "SM 5.0", "5_0"},
		{ShaderModel5_1, "SM 5.1", "5_1"},
		{ShaderModel6_0, "SM 6.0", "6_0"},
		{ShaderModel6_1, "SM 6.1", "6_1"},
		{ShaderModel6_2, "SM 6.2", "6_2"},
		{ShaderModel6_3, "SM 6.3", "6_3"},
		{ShaderModel6_4, "SM 6.4", "6_4"},
		{ShaderModel6_5, "SM 6.5", "6_5"},
		{ShaderModel6_6, "SM 6.6", "6_6"},
		{ShaderModel6_7, "SM 6.7", "6_7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sm.String())
			assert.Equal(t, tt.suffix, tt.sm.ProfileSuffix())
		})
	}
}

func TestShaderModel_Features(t *testing.T) {
	tests := []struct {
		name  string
		check func(ShaderModel) bool
		first ShaderModel
	}{
		{"register spaces", ShaderModel.SupportsRegisterSpaces, ShaderModel5_1},
		{"unbounded arrays", ShaderModel.SupportsUnboundedArrays, ShaderModel5_1},
		{"wave ops", ShaderModel.SupportsWaveOps, ShaderModel6_0},
		{"64-bit integers", ShaderModel.Supports64BitIntegers, ShaderModel6_0},
		{"view instancing", ShaderModel.SupportsViewInstancing, ShaderModel6_1},
		{"float16", ShaderModel.SupportsFloat16, ShaderModel6_2},
		{"templated loads", ShaderModel.SupportsTemplatedLoads, ShaderModel6_2},
		{"ray tracing", ShaderModel.SupportsRayTracing, ShaderModel6_3},
		{"64-bit atomics", ShaderModel.Supports64BitAtomics, ShaderModel6_6},
		{"helper lanes", ShaderModel.SupportsHelperLane, ShaderModel6_6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for sm := ShaderModel5_0; sm <= ShaderModel6_7; sm++ {
				assert.Equal(t, sm >= tt.first, tt.check(sm), "%s", sm)
			}
			assert.Equal(t, tt.first, firstSupporting(tt.check))
		})
	}
}

func TestParseShaderModel(t *testing.T) {
	tests := []struct {
		in   string
		want ShaderModel
	}{
		{"5.0", ShaderModel5_0},
		{"51", ShaderModel5_1},
		{"6_0", ShaderModel6_0},
		{"SM 6.2", ShaderModel6_2},
		{"sm6.6", ShaderModel6_6},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShaderModel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseShaderModel("4.0")
	assert.Error(t, err)
}

func TestShaderModel_TextRoundTrip(t *testing.T) {
	text, err := ShaderModel6_3.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "6.3", string(text))

	var sm ShaderModel
	require.NoError(t, sm.UnmarshalText([]byte("6.1")))
	assert.Equal(t, ShaderModel6_1, sm)
	assert.Error(t, sm.UnmarshalText([]byte("seven")))
}

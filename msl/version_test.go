// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  Version
		ok    bool
	}{
		{"2.1", Version2_1, true},
		{"2_3", Version2_3, true},
		{" 1.2 ", Version1_2, true},
		{"2.4.1", Version2_4, true},
		{"20100", Version2_1, true},
		{"30000", Version3_0, true},
		{"2", Version{}, false},
		{"two.one", Version{}, false},
		{"1.2.3.4", Version{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionOrdering(t *testing.T) {
	assert.True(t, Version2_1.AtLeast(Version2_1))
	assert.True(t, Version2_1.AtLeast(Version1_2))
	assert.True(t, Version3_0.AtLeast(Version2_4))
	assert.False(t, Version2_0.AtLeast(Version2_1))
	assert.False(t, Version1_2.AtLeast(Version2_0))
	assert.Equal(t, "2.3", Version2_3.String())
}

func TestVersionText(t *testing.T) {
	var v Version
	require.NoError(t, v.UnmarshalText([]byte("2.2")))
	assert.Equal(t, Version2_2, v)
	text, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2.2", string(text))
	assert.Error(t, v.UnmarshalText([]byte("latest")))
}

func TestPlatformText(t *testing.T) {
	var p Platform
	require.NoError(t, p.UnmarshalText([]byte("iOS")))
	assert.Equal(t, PlatformIOS, p)
	require.NoError(t, p.UnmarshalText([]byte("osx")))
	assert.Equal(t, PlatformMacOS, p)
	assert.Error(t, p.UnmarshalText([]byte("tvos")))
	assert.Equal(t, "ios", PlatformIOS.String())
}

func TestFeatureFlagsString(t *testing.T) {
	assert.Equal(t, "none", FeatureNone.String())
	f := FeatureSimdGroup | FeatureYCbCr
	assert.Equal(t, "SimdGroup, YCbCr", f.String())
	assert.True(t, f.Has(FeatureYCbCr))
	assert.False(t, f.Has(FeatureHalf))
}

func TestIndexTypeText(t *testing.T) {
	var it IndexType
	require.NoError(t, it.UnmarshalText([]byte("UInt16")))
	assert.Equal(t, IndexTypeUInt16, it)
	assert.Equal(t, "ushort", it.element())
	text, err := IndexTypeUInt32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "uint32", string(text))
	assert.Equal(t, "uint", IndexTypeUInt32.element())
	assert.Error(t, it.UnmarshalText([]byte("uint8")))
}

func TestPackSwizzle(t *testing.T) {
	assert.Equal(t, uint32(0), PackSwizzle([4]ComponentSwizzle{}))
	assert.Equal(t, uint32(0x06050403), PackSwizzle([4]ComponentSwizzle{SwizzleR, SwizzleG, SwizzleB, SwizzleA}))
	assert.Equal(t, uint32(0x02010106), PackSwizzle([4]ComponentSwizzle{SwizzleA, SwizzleZero, SwizzleZero, SwizzleOne}))
	assert.Equal(t, "TextureSwizzle, Multiview", (FeatureTextureSwizzle | FeatureMultiview).String())
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstexprSamplerArguments(t *testing.T) {
	tests := []struct {
		name string
		s    ConstexprSampler
		want []string
	}{
		{"defaults", ConstexprSampler{}, nil},
		{"linear", ConstexprSampler{MinFilter: FilterLinear, MagFilter: FilterLinear},
			[]string{"filter::linear"}},
		{"split filters", ConstexprSampler{MagFilter: FilterLinear},
			[]string{"mag_filter::linear", "min_filter::nearest"}},
		{"mipmaps", ConstexprSampler{MipFilter: MipFilterLinear}, []string{"mip_filter::linear"}},
		{"uniform address", ConstexprSampler{SAddress: AddressRepeat, TAddress: AddressRepeat, RAddress: AddressRepeat},
			[]string{"address::repeat"}},
		{"split address", ConstexprSampler{SAddress: AddressMirroredRepeat},
			[]string{"s_address::mirrored_repeat", "t_address::clamp_to_edge", "r_address::clamp_to_edge"}},
		{"pixel coords", ConstexprSampler{Coord: CoordPixel}, []string{"coord::pixel"}},
		{"compare", ConstexprSampler{CompareEnable: true, CompareFunc: CompareLessEqual},
			[]string{"compare_func::less_equal"}},
		{"compare disabled", ConstexprSampler{CompareFunc: CompareLess}, nil},
		{"border", ConstexprSampler{BorderColor: BorderOpaqueWhite}, []string{"border_color::opaque_white"}},
		{"lod clamp", ConstexprSampler{LodClampEnable: true, LodClampMin: 0, LodClampMax: 4.5},
			[]string{"lod_clamp(0.0, 4.5)"}},
		{"anisotropy", ConstexprSampler{AnisotropyEnable: true, MaxAnisotropy: 8}, []string{"max_anisotropy(8)"}},
		{"anisotropy of one", ConstexprSampler{AnisotropyEnable: true, MaxAnisotropy: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.arguments())
		})
	}
}

func TestConstexprSamplerPlanes(t *testing.T) {
	s := ConstexprSampler{Planes: 3}
	assert.Equal(t, uint32(1), s.planes(), "planes need a Y'CbCr conversion")
	s.YCbCrConversionEnable = true
	assert.Equal(t, uint32(3), s.planes())
	assert.Equal(t, uint32(8), s.bpc())
	s.Bpc = 10
	assert.Equal(t, uint32(10), s.bpc())
}

func TestFormatResolutionSubsampling(t *testing.T) {
	tests := []struct {
		r    FormatResolution
		x, y bool
	}{
		{Resolution444, false, false},
		{Resolution422, true, false},
		{Resolution420, true, true},
	}
	for _, tt := range tests {
		x, y := tt.r.subsampled()
		assert.Equal(t, tt.x, x, tt.r.String())
		assert.Equal(t, tt.y, y, tt.r.String())
	}
}

func TestSamplerEnumText(t *testing.T) {
	var a SamplerAddress
	require.NoError(t, a.UnmarshalText([]byte("Clamp_To_Border")))
	assert.Equal(t, AddressClampToBorder, a)

	var m YCbCrModel
	require.NoError(t, m.UnmarshalText([]byte("bt2020")))
	assert.Equal(t, ModelBT2020, m)
	text, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "bt2020", string(text))

	var r YCbCrRange
	assert.Error(t, r.UnmarshalText([]byte("studio")))
	assert.Equal(t, "9", SamplerFilter(9).String())
}

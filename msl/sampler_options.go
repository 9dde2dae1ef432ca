// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strings"
)

// ConstexprSampler describes an inline sampler that replaces a sampler
// descriptor. A sampler with YCbCrConversionEnable also lowers every
// sample through it to a Y'CbCr to RGB conversion.
type ConstexprSampler struct {
	Coord       SamplerCoord       `yaml:"coord,omitempty" toml:"coord"`
	MinFilter   SamplerFilter      `yaml:"minFilter,omitempty" toml:"min_filter"`
	MagFilter   SamplerFilter      `yaml:"magFilter,omitempty" toml:"mag_filter"`
	MipFilter   SamplerMipFilter   `yaml:"mipFilter,omitempty" toml:"mip_filter"`
	SAddress    SamplerAddress     `yaml:"sAddress,omitempty" toml:"s_address"`
	TAddress    SamplerAddress     `yaml:"tAddress,omitempty" toml:"t_address"`
	RAddress    SamplerAddress     `yaml:"rAddress,omitempty" toml:"r_address"`
	CompareFunc SamplerCompareFunc `yaml:"compareFunc,omitempty" toml:"compare_func"`
	BorderColor SamplerBorderColor `yaml:"borderColor,omitempty" toml:"border_color"`

	LodClampMin   float32 `yaml:"lodClampMin,omitempty" toml:"lod_clamp_min"`
	LodClampMax   float32 `yaml:"lodClampMax,omitempty" toml:"lod_clamp_max"`
	MaxAnisotropy int     `yaml:"maxAnisotropy,omitempty" toml:"max_anisotropy"`

	CompareEnable    bool `yaml:"compareEnable,omitempty" toml:"compare_enable"`
	LodClampEnable   bool `yaml:"lodClampEnable,omitempty" toml:"lod_clamp_enable"`
	AnisotropyEnable bool `yaml:"anisotropyEnable,omitempty" toml:"anisotropy_enable"`

	// Y'CbCr conversion.
	YCbCrConversionEnable bool                `yaml:"ycbcrConversionEnable,omitempty" toml:"ycbcr_conversion_enable"`
	Planes                uint32              `yaml:"planes,omitempty" toml:"planes"`
	Resolution            FormatResolution    `yaml:"resolution,omitempty" toml:"resolution"`
	ChromaFilter          SamplerFilter       `yaml:"chromaFilter,omitempty" toml:"chroma_filter"`
	XChromaOffset         ChromaLocation      `yaml:"xChromaOffset,omitempty" toml:"x_chroma_offset"`
	YChromaOffset         ChromaLocation      `yaml:"yChromaOffset,omitempty" toml:"y_chroma_offset"`
	Swizzle               [4]ComponentSwizzle `yaml:"swizzle,omitempty" toml:"swizzle"`
	YCbCrModel            YCbCrModel          `yaml:"ycbcrModel,omitempty" toml:"ycbcr_model"`
	YCbCrRange            YCbCrRange          `yaml:"ycbcrRange,omitempty" toml:"ycbcr_range"`
	Bpc                   uint32              `yaml:"bpc,omitempty" toml:"bpc"`
}

// planes returns the plane count of a Y'CbCr sampler.
func (s *ConstexprSampler) planes() uint32 {
	if !s.YCbCrConversionEnable || s.Planes == 0 {
		return 1
	}
	return s.Planes
}

// bpc returns the bits per component of a Y'CbCr sampler.
func (s *ConstexprSampler) bpc() uint32 {
	if s.Bpc == 0 {
		return 8
	}
	return s.Bpc
}

// arguments renders the constructor arguments of the sampler, leaving out
// the language defaults.
func (s *ConstexprSampler) arguments() []string {
	var args []string
	if s.Coord != CoordNormalized {
		args = append(args, "coord::"+s.Coord.String())
	}
	if s.MinFilter == s.MagFilter {
		if s.MinFilter != FilterNearest {
			args = append(args, "filter::"+s.MinFilter.String())
		}
	} else {
		args = append(args, "mag_filter::"+s.MagFilter.String(), "min_filter::"+s.MinFilter.String())
	}
	if s.MipFilter != MipFilterNone {
		args = append(args, "mip_filter::"+s.MipFilter.String())
	}
	if s.SAddress == s.TAddress && s.TAddress == s.RAddress {
		if s.SAddress != AddressClampToEdge {
			args = append(args, "address::"+s.SAddress.String())
		}
	} else {
		args = append(args, "s_address::"+s.SAddress.String(), "t_address::"+s.TAddress.String(),
			"r_address::"+s.RAddress.String())
	}
	if s.CompareEnable && s.CompareFunc != CompareNever {
		args = append(args, "compare_func::"+s.CompareFunc.String())
	}
	if s.BorderColor != BorderTransparentBlack {
		args = append(args, "border_color::"+s.BorderColor.String())
	}
	if s.LodClampEnable {
		args = append(args, fmt.Sprintf("lod_clamp(%s, %s)", floatArg(s.LodClampMin), floatArg(s.LodClampMax)))
	}
	if s.AnisotropyEnable && s.MaxAnisotropy > 1 {
		args = append(args, fmt.Sprintf("max_anisotropy(%d)", s.MaxAnisotropy))
	}
	return args
}

func floatArg(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// enumText returns the name of v, or its number when out of range.
func enumText(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%d", v)
}

// parseEnum finds text among names, ignoring case.
func parseEnum(what string, names []string, text []byte) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if n == s {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, text)
}

// SamplerCoord selects normalized or pixel coordinates.
type SamplerCoord uint8

const (
	CoordNormalized SamplerCoord = iota
	CoordPixel
)

var coordNames = []string{"normalized", "pixel"}

func (v SamplerCoord) String() string { return enumText(coordNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerCoord) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerCoord) UnmarshalText(text []byte) error {
	n, err := parseEnum("sampler coord", coordNames, text)
	*v = SamplerCoord(n)
	return err
}

// SamplerFilter is a minification, magnification or chroma filter.
type SamplerFilter uint8

const (
	FilterNearest SamplerFilter = iota
	FilterLinear
)

var filterNames = []string{"nearest", "linear"}

func (v SamplerFilter) String() string { return enumText(filterNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerFilter) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerFilter) UnmarshalText(text []byte) error {
	n, err := parseEnum("sampler filter", filterNames, text)
	*v = SamplerFilter(n)
	return err
}

// SamplerMipFilter selects mipmap filtering.
type SamplerMipFilter uint8

const (
	MipFilterNone SamplerMipFilter = iota
	MipFilterNearest
	MipFilterLinear
)

var mipFilterNames = []string{"none", "nearest", "linear"}

func (v SamplerMipFilter) String() string { return enumText(mipFilterNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerMipFilter) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerMipFilter) UnmarshalText(text []byte) error {
	n, err := parseEnum("mip filter", mipFilterNames, text)
	*v = SamplerMipFilter(n)
	return err
}

// SamplerAddress is an addressing mode.
type SamplerAddress uint8

const (
	AddressClampToEdge SamplerAddress = iota
	AddressClampToZero
	AddressClampToBorder
	AddressRepeat
	AddressMirroredRepeat
)

var addressNames = []string{"clamp_to_edge", "clamp_to_zero", "clamp_to_border", "repeat", "mirrored_repeat"}

func (v SamplerAddress) String() string { return enumText(addressNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerAddress) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerAddress) UnmarshalText(text []byte) error {
	n, err := parseEnum("sampler address mode", addressNames, text)
	*v = SamplerAddress(n)
	return err
}

// SamplerCompareFunc is the depth comparison of a comparison sampler.
type SamplerCompareFunc uint8

const (
	CompareNever SamplerCompareFunc = iota
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareEqual
	CompareNotEqual
	CompareAlways
)

var compareNames = []string{"never", "less", "less_equal", "greater", "greater_equal", "equal", "not_equal", "always"}

func (v SamplerCompareFunc) String() string { return enumText(compareNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerCompareFunc) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerCompareFunc) UnmarshalText(text []byte) error {
	n, err := parseEnum("compare function", compareNames, text)
	*v = SamplerCompareFunc(n)
	return err
}

// SamplerBorderColor is the color of clamp_to_border addressing.
type SamplerBorderColor uint8

const (
	BorderTransparentBlack SamplerBorderColor = iota
	BorderOpaqueBlack
	BorderOpaqueWhite
)

var borderNames = []string{"transparent_black", "opaque_black", "opaque_white"}

func (v SamplerBorderColor) String() string { return enumText(borderNames, uint8(v)) }

// MarshalText renders the enum name.
func (v SamplerBorderColor) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *SamplerBorderColor) UnmarshalText(text []byte) error {
	n, err := parseEnum("border color", borderNames, text)
	*v = SamplerBorderColor(n)
	return err
}

// FormatResolution is the chroma subsampling of a multi-planar format.
type FormatResolution uint8

const (
	Resolution444 FormatResolution = iota
	Resolution422
	Resolution420
)

var resolutionNames = []string{"444", "422", "420"}

func (v FormatResolution) String() string { return enumText(resolutionNames, uint8(v)) }

// MarshalText renders the enum name.
func (v FormatResolution) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *FormatResolution) UnmarshalText(text []byte) error {
	n, err := parseEnum("format resolution", resolutionNames, text)
	*v = FormatResolution(n)
	return err
}

// subsampled reports whether chroma is subsampled along x and y.
func (v FormatResolution) subsampled() (x, y bool) {
	return v != Resolution444, v == Resolution420
}

// ChromaLocation is where subsampled chroma samples sit relative to luma.
type ChromaLocation uint8

const (
	ChromaCositedEven ChromaLocation = iota
	ChromaMidpoint
)

var chromaNames = []string{"cosited_even", "midpoint"}

func (v ChromaLocation) String() string { return enumText(chromaNames, uint8(v)) }

// MarshalText renders the enum name.
func (v ChromaLocation) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *ChromaLocation) UnmarshalText(text []byte) error {
	n, err := parseEnum("chroma location", chromaNames, text)
	*v = ChromaLocation(n)
	return err
}

// ComponentSwizzle remaps one component of a Y'CbCr sample.
type ComponentSwizzle uint8

const (
	SwizzleIdentity ComponentSwizzle = iota
	SwizzleZero
	SwizzleOne
	SwizzleR
	SwizzleG
	SwizzleB
	SwizzleA
)

var swizzleNames = []string{"identity", "zero", "one", "r", "g", "b", "a"}

func (v ComponentSwizzle) String() string { return enumText(swizzleNames, uint8(v)) }

// MarshalText renders the enum name.
func (v ComponentSwizzle) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *ComponentSwizzle) UnmarshalText(text []byte) error {
	n, err := parseEnum("component swizzle", swizzleNames, text)
	*v = ComponentSwizzle(n)
	return err
}

// YCbCrModel is the color model conversion applied after range expansion.
type YCbCrModel uint8

const (
	ModelRGBIdentity YCbCrModel = iota
	ModelYCbCrIdentity
	ModelBT709
	ModelBT601
	ModelBT2020
)

var modelNames = []string{"rgb_identity", "ycbcr_identity", "bt709", "bt601", "bt2020"}

func (v YCbCrModel) String() string { return enumText(modelNames, uint8(v)) }

// MarshalText renders the enum name.
func (v YCbCrModel) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *YCbCrModel) UnmarshalText(text []byte) error {
	n, err := parseEnum("ycbcr model", modelNames, text)
	*v = YCbCrModel(n)
	return err
}

// YCbCrRange is the encoded range of Y'CbCr values.
type YCbCrRange uint8

const (
	RangeITUFull YCbCrRange = iota
	RangeITUNarrow
)

var rangeNames = []string{"itu_full", "itu_narrow"}

func (v YCbCrRange) String() string { return enumText(rangeNames, uint8(v)) }

// MarshalText renders the enum name.
func (v YCbCrRange) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText parses the enum name.
func (v *YCbCrRange) UnmarshalText(text []byte) error {
	n, err := parseEnum("ycbcr range", rangeNames, text)
	*v = YCbCrRange(n)
	return err
}

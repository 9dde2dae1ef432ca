// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// ShaderModel represents a DirectX Shader Model version.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel5_0 is the base SM5 version (DirectX 11).
	ShaderModel5_0 ShaderModel = iota

	// ShaderModel5_1 provides improved resource binding (default).
	// This is the recommended minimum for maximum compatibility.
	ShaderModel5_1

	// ShaderModel6_0 introduces wave intrinsics and DXIL.
	ShaderModel6_0

	// ShaderModel6_1 adds SV_ViewID and barycentrics.
	ShaderModel6_1

	// ShaderModel6_2 adds float16 and denorm control.
	ShaderModel6_2

	// ShaderModel6_3 adds DirectX Raytracing (DXR).
	ShaderModel6_3

	// ShaderModel6_4 adds variable rate shading and library subobjects.
	ShaderModel6_4

	// ShaderModel6_5 adds mesh shaders and sampler feedback.
	ShaderModel6_5

	// ShaderModel6_6 adds 64-bit atomics and dynamic resources.
	ShaderModel6_6

	// ShaderModel6_7 adds advanced mesh shaders and work graphs.
	ShaderModel6_7
)

// String returns a human-readable representation of the shader model.
// Example: "SM 5.1", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_1", "6_0"
// Used to construct profiles like "vs_5_1", "ps_6_0".
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// version returns the major and minor version numbers.
func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	case ShaderModel6_0:
		return 6, 0
	case ShaderModel6_1:
		return 6, 1
	case ShaderModel6_2:
		return 6, 2
	case ShaderModel6_3:
		return 6, 3
	case ShaderModel6_4:
		return 6, 4
	case ShaderModel6_5:
		return 6, 5
	case ShaderModel6_6:
		return 6, 6
	case ShaderModel6_7:
		return 6, 7
	default:
		return 5, 1 // Default to 5.1 for unknown
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SupportsWaveOps returns true if this shader model supports wave intrinsics.
// Wave operations were introduced in Shader Model 6.0.
func (sm ShaderModel) SupportsWaveOps() bool {
	return sm >= ShaderModel6_0
}

// Supports64BitIntegers returns true if int64_t and uint64_t are available.
func (sm ShaderModel) Supports64BitIntegers() bool {
	return sm >= ShaderModel6_0
}

// SupportsViewInstancing returns true if SV_ViewID is available.
// View instancing was introduced in Shader Model 6.1.
func (sm ShaderModel) SupportsViewInstancing() bool {
	return sm >= ShaderModel6_1
}

// SupportsFloat16 returns true if this shader model supports native float16.
// Native 16-bit floats were introduced in Shader Model 6.2.
func (sm ShaderModel) SupportsFloat16() bool {
	return sm >= ShaderModel6_2
}

// SupportsTemplatedLoads returns true if byte address buffers accept
// Load<T> and Store<T> for types other than 32-bit words.
func (sm ShaderModel) SupportsTemplatedLoads() bool {
	return sm >= ShaderModel6_2
}

// SupportsRayTracing returns true if this shader model supports ray tracing.
// DirectX Raytracing (DXR) was introduced in Shader Model 6.3.
func (sm ShaderModel) SupportsRayTracing() bool {
	return sm >= ShaderModel6_3
}

// Supports64BitAtomics returns true if this shader model supports 64-bit atomics.
// 64-bit atomics were introduced in Shader Model 6.6.
func (sm ShaderModel) Supports64BitAtomics() bool {
	return sm >= ShaderModel6_6
}

// SupportsHelperLane returns true if IsHelperLane is available.
// It was introduced in Shader Model 6.6.
func (sm ShaderModel) SupportsHelperLane() bool {
	return sm >= ShaderModel6_6
}

// SupportsRegisterSpaces returns true if registers may name a space.
// Register spaces were introduced in Shader Model 5.1.
func (sm ShaderModel) SupportsRegisterSpaces() bool {
	return sm >= ShaderModel5_1
}

// SupportsUnboundedArrays returns true if resource arrays may be declared
// without a size.
func (sm ShaderModel) SupportsUnboundedArrays() bool {
	return sm >= ShaderModel5_1
}

// firstSupporting returns the oldest shader model for which supported
// holds, or ShaderModel6_7 when none does.
func firstSupporting(supported func(ShaderModel) bool) ShaderModel {
	for sm := ShaderModel5_0; sm < ShaderModel6_7; sm++ {
		if supported(sm) {
			return sm
		}
	}
	return ShaderModel6_7
}

// ParseShaderModel parses "5.1", "51", "6_0" or "SM 6.0" style names.
func ParseShaderModel(s string) (ShaderModel, error) {
	key := strings.NewReplacer("SM", "", "sm", "", " ", "", ".", "", "_", "").Replace(s)
	for sm := ShaderModel5_0; sm <= ShaderModel6_7; sm++ {
		major, minor := sm.version()
		if key == fmt.Sprintf("%d%d", major, minor) {
			return sm, nil
		}
	}
	return ShaderModel5_1, fmt.Errorf("unknown shader model %q", s)
}

// UnmarshalText lets option files name the shader model.
func (sm *ShaderModel) UnmarshalText(text []byte) error {
	v, err := ParseShaderModel(string(text))
	if err != nil {
		return err
	}
	*sm = v
	return nil
}

// MarshalText renders the shader model as "major.minor".
func (sm ShaderModel) MarshalText() ([]byte, error) {
	major, minor := sm.version()
	return []byte(fmt.Sprintf("%d.%d", major, minor)), nil
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package msl generates Metal Shading Language source from a SPIR-V module.
//
// The output targets MSL 1.2 through 3.x on macOS and iOS. Features the
// requested Options.Version or Options.Platform lacks fail with
// ErrUnsupportedShaderModel, and TranslationInfo.UsedFeatures reports the
// Metal capabilities the generated code relies on.
//
// # Usage
//
//	module, err := parser.Parse(words)
//	if err != nil {
//	    return err
//	}
//	opts := msl.DefaultOptions()
//	opts.Version = msl.Version2_1
//	source, info, err := msl.Compile(module, opts)
//
// # Resource Binding
//
// Each (stage, set, binding) descriptor maps to a BindTarget through
// Options.Bindings. Buffers, textures and samplers use separate index
// spaces; unmapped resources take the lowest free index of their space.
// With Options.ArgumentBuffers, descriptor sets other than those listed
// in DiscreteDescriptorSets become argument buffer structs whose members
// carry [[id(N)]] attributes.
//
// Samplers listed in Options.ConstexprSamplers are declared inline as
// constexpr samplers. A Y'CbCr conversion on such a sampler expands the
// image into one texture per plane and converts samples to RGB.
//
// # Stage Interface
//
// Inputs and outputs are gathered into main0_in and main0_out structs.
// Tessellation control shaders run as compute kernels writing patch data
// to device buffers; evaluation shaders read it back as post-tessellation
// vertex functions.
package msl

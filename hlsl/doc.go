// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL source from a SPIR-V module.
//
// The output targets both FXC (Shader Model 5.x) and DXC (Shader Model
// 6.x). Features that need a newer shader model than the one requested,
// such as wave intrinsics below 6.0, fail with ErrUnsupportedShaderModel.
//
// # Usage
//
//	module, err := parser.Parse(words)
//	if err != nil {
//	    return err
//	}
//	opts := hlsl.DefaultOptions()
//	opts.ShaderModel = hlsl.ShaderModel6_0
//	source, info, err := hlsl.Compile(module, opts)
//
// # Register Binding
//
// Resources are bound to registers by type and space:
//
//	cbuffer    : register(b#, space#)
//	SRV        : register(t#, space#)
//	UAV        : register(u#, space#)
//	SamplerState : register(s#, space#)
//
// Options.Bindings overrides the register of a (stage, set, binding)
// descriptor. Unmapped resources take the lowest free register of their
// type, and TranslationInfo.AutomaticBindings reports the choice.
//
// # Stage Interface
//
// Inputs and outputs are gathered into SPIRV_Cross_Input and
// SPIRV_Cross_Output structs. User locations become TEXCOORD semantics,
// and matrices take one semantic per column.
package hlsl

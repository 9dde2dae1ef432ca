// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spirv holds the SPIR-V binary vocabulary shared by the parser and the
// backends: opcode and operand enumerations, the module header, a word-stream
// instruction decoder, and a ModuleBuilder that assembles binaries.
//
// The builder is used by fixtures and tools to produce modules without an
// external assembler:
//
//	b := spirv.NewModuleBuilder(spirv.Version1_3)
//	b.AddCapability(spirv.CapabilityShader)
//	void := b.AddTypeVoid()
//	...
//	words := b.Words()
package spirv

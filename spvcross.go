// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spvcross cross-compiles SPIR-V modules to HLSL and the Metal
// Shading Language.
//
// The package wraps the parse, compile and reflect stages behind single
// calls for callers that start from a SPIR-V word stream:
//
//	words, _ := spirv.WordsFromBytes(data)
//	source, info, err := spvcross.CompileMSL(words, msl.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Callers that remap builtins before compiling or query the module after
// compiling use the backend packages directly:
//
//	module, _ := spvcross.Parse(words)
//	c, _ := hlsl.NewCompiler(module, opts)
//	cbuf, _ := c.RemapNumWorkgroupsBuiltin()
//	source, err := c.Compile()
//
// Backends rewrite the module they compile, so each compile starts from a
// fresh parse.
package spvcross

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/msl"
	"github.com/gogpu/spvcross/parser"
)

// Parse decodes and validates a SPIR-V word stream.
func Parse(words []uint32) (*ir.Module, error) {
	module, err := parser.Parse(words)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return module, nil
}

// CompileHLSL compiles a SPIR-V module to HLSL. A nil opts uses
// hlsl.DefaultOptions.
func CompileHLSL(words []uint32, opts *hlsl.Options) (string, *hlsl.TranslationInfo, error) {
	module, err := Parse(words)
	if err != nil {
		return "", nil, err
	}
	return hlsl.Compile(module, opts)
}

// CompileMSL compiles a SPIR-V module to MSL. A nil opts uses
// msl.DefaultOptions.
func CompileMSL(words []uint32, opts *msl.Options) (string, *msl.TranslationInfo, error) {
	module, err := Parse(words)
	if err != nil {
		return "", nil, err
	}
	return msl.Compile(module, opts)
}

// Reflect lists the entry points of a SPIR-V module with their stage
// interface and resources.
func Reflect(words []uint32) (*cross.Reflection, error) {
	module, err := Parse(words)
	if err != nil {
		return nil, err
	}
	r, err := cross.Reflect(module)
	if err != nil {
		return nil, fmt.Errorf("reflect: %w", err)
	}
	return r, nil
}

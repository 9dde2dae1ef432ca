// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command spvcross cross-compiles SPIR-V to HLSL and MSL.
//
// Usage:
//
//	spvcross [global options] <command> [args]
//
// Examples:
//
//	spvcross hlsl --shader-model 6.0 shader.spv
//	spvcross msl --options opts.toml --tables bindings.yaml -o shader.metal shader.spv
//	spvcross reflect --format yaml shader.spv
//	spvcross batch --out-dir build -j 8 shaders/*.spv
package main

import "github.com/gogpu/spvcross/cmd/spvcross/internal/command"

func main() {
	command.Execute()
}

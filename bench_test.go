// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvcross

import (
	"runtime"
	"testing"

	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/msl"
)

type shaderCase struct {
	name  string
	words []uint32
}

// shadersByComplexity ranges from a single copy to loops, calls and
// multi-resource layouts.
var shadersByComplexity = []shaderCase{
	{"vertex_passthrough", testshaders.VertexPassthrough()},
	{"loop_phi", testshaders.LoopPhi()},
	{"function_call", testshaders.FunctionCall()},
	{"texture_variants", testshaders.TextureVariants()},
	{"argument_buffers", testshaders.ArgumentBuffers()},
}

// BenchmarkParse benchmarks decoding a word stream into the ir arena.
func BenchmarkParse(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.words) * 4))
			for b.Loop() {
				if _, err := Parse(sc.words); err != nil {
					b.Fatalf("parse failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkCompileAllBackends benchmarks the full pipeline from words to
// each backend's source.
func BenchmarkCompileAllBackends(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name+"/HLSL", func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.words) * 4))
			var result string
			for b.Loop() {
				var err error
				result, _, err = CompileHLSL(sc.words, hlsl.DefaultOptions())
				if err != nil {
					b.Fatalf("hlsl compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
		b.Run(sc.name+"/MSL", func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.words) * 4))
			var result string
			for b.Loop() {
				var err error
				result, _, err = CompileMSL(sc.words, msl.DefaultOptions())
				if err != nil {
					b.Fatalf("msl compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkReflect benchmarks entry point and resource reflection.
func BenchmarkReflect(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Reflect(sc.words); err != nil {
					b.Fatalf("reflect failed: %v", err)
				}
			}
		})
	}
}

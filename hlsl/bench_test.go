// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl_test

import (
	"testing"

	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/testshaders"
)

func BenchmarkCompile(b *testing.B) {
	for _, f := range testshaders.All() {
		if !f.HLSL {
			continue
		}
		b.Run(f.Name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, _, err := hlsl.Compile(f.Module(), nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

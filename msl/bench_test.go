// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl_test

import (
	"testing"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/msl"
)

func BenchmarkCompile(b *testing.B) {
	for _, f := range testshaders.All() {
		if !f.MSL {
			continue
		}
		b.Run(f.Name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, _, err := msl.Compile(f.Module(), nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

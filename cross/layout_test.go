// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// layoutModule declares struct { float a; vec3 b; vec2 c; float d[2]; }
// without offsets, an explicitly laid out copy of it, and a mat4.
func layoutModule() (m *ir.Module, plain, explicit, mat4 ir.ID) {
	b := testshaders.NewBuilder()
	arr := b.Array(b.Float, 2, 0)
	p := b.AddTypeStruct(b.Float, b.Vec3, b.Vec2, arr)
	e := b.Block("Explicit", []testshaders.Member{
		{Name: "a", Type: b.Float, Offset: 0},
		{Name: "b", Type: b.Vec3, Offset: 4},
		{Name: "c", Type: b.Mat4, Offset: 32, MatrixStride: 16},
	})
	b.Entry(spirv.ExecutionModelGLCompute)
	b.End()
	return b.Module(), ir.ID(p), ir.ID(e), ir.ID(b.Mat4)
}

func TestLayoutRules(t *testing.T) {
	m, plain, _, _ := layoutModule()
	tests := []struct {
		rule    LayoutRule
		offsets []uint32
		size    uint32
	}{
		{LayoutStd140, []uint32{0, 16, 32, 48}, 80},
		{LayoutStd430, []uint32{0, 16, 32, 40}, 48},
		{LayoutScalar, []uint32{0, 4, 16, 24}, 32},
	}
	for _, tt := range tests {
		t.Run(tt.rule.String(), func(t *testing.T) {
			l := NewLayout(m, tt.rule)
			var offsets []uint32
			for i := range 4 {
				offsets = append(offsets, l.MemberOffset(plain, i))
			}
			assert.Equal(t, tt.offsets, offsets)
			assert.Equal(t, tt.size, l.StructSize(plain))
			assert.Equal(t, tt.size, l.DeclaredEnd(plain))
		})
	}
}

func TestLayoutExplicitDecorations(t *testing.T) {
	m, _, explicit, mat4 := layoutModule()
	l := NewLayout(m, LayoutStd140)
	assert.Equal(t, uint32(4), l.MemberOffset(explicit, 1), "offsets win over std140")
	assert.Equal(t, uint32(16), l.MatrixStride(explicit, 2))
	assert.Equal(t, uint32(0), l.MatrixStride(explicit, 0))
	assert.Equal(t, uint32(96), l.DeclaredEnd(explicit))

	assert.Equal(t, uint32(16), l.DefaultMatrixStride(mat4, false))
	assert.Equal(t, uint32(64), l.Size(mat4, false, 0))
	assert.Equal(t, uint32(16), l.Align(mat4, false))
}

func TestRuleFor(t *testing.T) {
	assert.Equal(t, LayoutStd140, RuleFor(spirv.StorageClassUniform))
	assert.Equal(t, LayoutStd430, RuleFor(spirv.StorageClassStorageBuffer))
	assert.Equal(t, LayoutStd430, RuleFor(spirv.StorageClassPushConstant))
	assert.Equal(t, LayoutScalar, RuleFor(spirv.StorageClassPhysicalStorageBuffer))
}

func TestOffsetString(t *testing.T) {
	assert.Equal(t, "0", Offset{}.String())
	assert.Equal(t, "16", Offset{}.Add(16).String())
	assert.Equal(t, "i * 16 + 4", Offset{Const: 4, Terms: []string{"i * 16"}}.String())
	assert.Equal(t, "i * 16", Offset{Terms: []string{"i * 16"}}.String())
	assert.Equal(t, uint32(3), Words(9))
}

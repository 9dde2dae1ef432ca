// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func TestCollectInterface(t *testing.T) {
	b := testshaders.NewBuilder()
	color := b.Input(b.Vec4, 2, "color")
	xform := b.Var(spirv.StorageClassInput, b.Mat4, "xform")
	weights := b.Var(spirv.StorageClassInput, b.Array(b.Vec2, 3, 0), "weights")
	vid := b.Builtin(spirv.StorageClassInput, b.Int, spirv.BuiltInVertexIndex, "gl_VertexIndex")
	pos := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	uv := b.Output(b.Vec2, 1, "uv")
	b.AddDecorate(uv, spirv.DecorationNoPerspective)
	b.Entry(spirv.ExecutionModelVertex, color, xform, weights, vid, pos, uv)
	b.End()
	m := b.Module()

	active := []ir.ID{ir.ID(vid), ir.ID(color), ir.ID(xform), ir.ID(weights), ir.ID(pos), ir.ID(uv)}
	f := CollectInterface(m, m.EntryPoints[0], active)

	require.Len(t, f.Inputs, 4)
	assert.Equal(t, "color", f.Inputs[0].Name)
	assert.Equal(t, uint32(2), f.Inputs[0].Location)

	x := f.Input(ir.ID(xform), -1)
	require.NotNil(t, x)
	assert.Equal(t, uint32(3), x.Location, "first run of four free locations")
	assert.Equal(t, uint32(4), x.Locations)

	w := f.Input(ir.ID(weights), -1)
	require.NotNil(t, w)
	assert.Equal(t, uint32(7), w.Location)
	assert.Equal(t, uint32(3), w.Locations)
	assert.Equal(t, "weights", f.Inputs[2].Name)

	assert.True(t, f.Inputs[3].IsBuiltin)
	assert.Equal(t, spirv.BuiltInVertexIndex, f.Inputs[3].Builtin)
	assert.Equal(t, uint32(8), ConsumedLocations(f.Inputs))

	require.Len(t, f.Outputs, 2)
	assert.Equal(t, "uv", f.Outputs[0].Name)
	assert.True(t, f.Outputs[0].NoPerspective)
	assert.Equal(t, spirv.BuiltInPosition, f.Outputs[1].Builtin)
	assert.Nil(t, f.Output(ir.ID(color), -1))
}

func TestCollectInterfaceBlock(t *testing.T) {
	b := testshaders.NewBuilder()
	st := b.AddTypeStruct(b.Vec4, b.Float, b.Vec4)
	b.AddDecorate(st, spirv.DecorationBlock)
	b.AddMemberName(st, 0, "position")
	b.AddMemberName(st, 1, "size")
	b.AddMemberName(st, 2, "tint")
	b.AddMemberDecorate(st, 0, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	b.AddMemberDecorate(st, 2, spirv.DecorationLocation, 5)
	b.AddMemberDecorate(st, 2, spirv.DecorationFlat)
	out := b.Var(spirv.StorageClassOutput, st, "vout")
	b.AddDecorate(out, spirv.DecorationLocation, 1)
	b.Entry(spirv.ExecutionModelVertex, out)
	b.End()
	m := b.Module()

	f := CollectInterface(m, m.EntryPoints[0], []ir.ID{ir.ID(out)})
	require.Len(t, f.Outputs, 3)
	assert.Equal(t, "size", f.Outputs[0].Name)
	assert.Equal(t, 1, f.Outputs[0].Member)
	assert.Equal(t, uint32(1), f.Outputs[0].Location, "members continue from the block location")
	assert.Equal(t, "tint", f.Outputs[1].Name)
	assert.Equal(t, uint32(5), f.Outputs[1].Location)
	assert.True(t, f.Outputs[1].Flat)
	assert.True(t, f.Outputs[2].IsBuiltin)
	assert.Equal(t, "position", f.Outputs[2].Name)
}

func TestCollectInterfacePerVertex(t *testing.T) {
	b := testshaders.NewBuilder()
	in := b.Input(b.Array(b.Vec4, 3, 0), 0, "normal")
	level := b.Var(spirv.StorageClassOutput, b.Array(b.Float, 4, 0), "gl_TessLevelOuter")
	b.AddDecorate(level, spirv.DecorationBuiltIn, uint32(spirv.BuiltInTessLevelOuter))
	b.AddDecorate(level, spirv.DecorationPatch)
	patch := b.Output(b.Vec4, 1, "extra")
	b.AddDecorate(patch, spirv.DecorationPatch)
	b.Entry(spirv.ExecutionModelGLCompute)
	b.End()
	m := b.Module()

	ep := &ir.EntryPoint{Name: "main", Model: spirv.ExecutionModelTessellationControl}
	f := CollectInterface(m, ep, []ir.ID{ir.ID(in), ir.ID(level), ir.ID(patch)})

	require.Len(t, f.Inputs, 1)
	assert.True(t, f.Inputs[0].PerVertex)
	assert.Equal(t, uint32(3), f.Inputs[0].VertexCount)
	assert.True(t, m.IsVector(f.Inputs[0].Type), "the vertex dimension is removed")
	assert.Equal(t, uint32(1), f.Inputs[0].Locations)

	require.Len(t, f.Outputs, 2)
	assert.True(t, f.Outputs[0].Patch)
	assert.False(t, f.Outputs[0].PerVertex)
	assert.True(t, f.Outputs[1].IsBuiltin)
	assert.False(t, f.Outputs[1].PerVertex, "tessellation levels are per patch")
	assert.True(t, m.IsArray(f.Outputs[1].Type))
}

func TestLocationCount(t *testing.T) {
	b := testshaders.NewBuilder()
	dvec3 := b.AddTypeVector(b.AddTypeFloat(64), 3)
	arr := b.Array(b.Mat4, 2, 0)
	st := b.AddTypeStruct(b.Vec4, dvec3)
	b.Entry(spirv.ExecutionModelVertex)
	b.End()
	m := b.Module()

	assert.Equal(t, uint32(1), LocationCount(m, ir.ID(b.Float)))
	assert.Equal(t, uint32(2), LocationCount(m, ir.ID(dvec3)))
	assert.Equal(t, uint32(4), LocationCount(m, ir.ID(b.Mat4)))
	assert.Equal(t, uint32(8), LocationCount(m, ir.ID(arr)))
	assert.Equal(t, uint32(3), LocationCount(m, ir.ID(st)))
}

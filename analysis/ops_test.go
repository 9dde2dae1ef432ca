// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func TestEffectOf(t *testing.T) {
	tests := []struct {
		op      spirv.Op
		operand []uint32
		want    analysis.Effect
	}{
		{spirv.OpFAdd, nil, analysis.EffectNone},
		{spirv.OpLoad, nil, analysis.EffectRead},
		{spirv.OpImageRead, nil, analysis.EffectRead},
		{spirv.OpStore, nil, analysis.EffectWrite},
		{spirv.OpAtomicIAdd, nil, analysis.EffectWrite},
		{spirv.OpFunctionCall, nil, analysis.EffectWrite},
		{spirv.OpExtInst, []uint32{1, uint32(spirv.GLSLModf), 3, 4}, analysis.EffectWrite},
		{spirv.OpExtInst, []uint32{1, uint32(spirv.GLSLSin), 3}, analysis.EffectNone},
	}
	for _, tt := range tests {
		inst := &ir.Instruction{Op: tt.op, Operands: tt.operand}
		assert.Equal(t, tt.want, analysis.EffectOf(inst), "%v", tt.op)
	}
	assert.Equal(t, "write", analysis.EffectWrite.String())
}

func TestForwardable(t *testing.T) {
	assert.True(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpFMul}))
	assert.True(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpLoad}))
	assert.True(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpImageSampleExplicitLod}))
	assert.False(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpImageSampleImplicitLod}))
	assert.False(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpDPdx}))
	assert.False(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpGroupNonUniformFAdd}))
	assert.False(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpIAddCarry}))
	assert.False(t, analysis.Forwardable(&ir.Instruction{Op: spirv.OpAtomicLoad}))

	assert.True(t, analysis.IsPointerOp(spirv.OpAccessChain))
	assert.False(t, analysis.IsPointerOp(spirv.OpLoad))
	assert.True(t, analysis.IsSubgroupOp(spirv.OpGroupNonUniformBallot))
	assert.True(t, analysis.IsDerivative(spirv.OpFwidth))
}

func TestRelaxedValues(t *testing.T) {
	b := testshaders.NewBuilder()
	lo := b.Input(b.Float, 0, "lo")
	b.AddDecorate(lo, spirv.DecorationRelaxedPrecision)
	hi := b.Input(b.Float, 1, "hi")
	out := b.Output(b.Float, 0, "o")
	f, _ := b.Entry(spirv.ExecutionModelFragment, lo, hi, out)
	a := b.AddLoad(b.Float, lo)
	c := b.AddLoad(b.Float, hi)
	square := b.AddBinaryOp(spirv.OpFMul, b.Float, a, a)
	scaled := b.AddBinaryOp(spirv.OpFMul, b.Float, square, b.F(2))
	mixed := b.AddBinaryOp(spirv.OpFAdd, b.Float, scaled, c)
	b.AddStore(out, mixed)
	b.End()

	m := b.Module()
	relaxed := analysis.RelaxedValues(m, m.MustFunction(ir.ID(f)))
	assert.True(t, relaxed[ir.ID(a)])
	assert.True(t, relaxed[ir.ID(square)])
	assert.True(t, relaxed[ir.ID(scaled)], "constants do not widen")
	assert.False(t, relaxed[ir.ID(c)])
	assert.False(t, relaxed[ir.ID(mixed)])
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// loopShader is a counted loop with loop-carried phis. The labels are
// kept so tests can address the blocks.
type loopShader struct {
	m                                *ir.Module
	fn                               *ir.Function
	entry, header, body, cont, merge ir.ID
	i, sum, iNext, sumNext, cond     ir.ID
}

func buildLoop(t *testing.T) loopShader {
	t.Helper()
	b := testshaders.NewBuilder()
	out := b.Output(b.Float, 0, "result")
	fn, entry := b.Entry(spirv.ExecutionModelFragment, out)
	header, body, cont, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	i, sum, iNext, sumNext := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	b.AddBranch(header)

	b.AddLabelID(header)
	b.AddPhiID(b.Int, i, spirv.PhiEdge{Value: b.I(0), Parent: entry}, spirv.PhiEdge{Value: iNext, Parent: cont})
	b.AddPhiID(b.Float, sum, spirv.PhiEdge{Value: b.F(0), Parent: entry}, spirv.PhiEdge{Value: sumNext, Parent: cont})
	cond := b.AddBinaryOp(spirv.OpSLessThan, b.Bool, i, b.I(4))
	b.AddLoopMerge(merge, cont, spirv.LoopControlNone)
	b.AddBranchConditional(cond, body, merge)

	b.AddLabelID(body)
	b.AddOpID(spirv.OpFAdd, b.Float, sumNext, sum, b.F(1))
	b.AddBranch(cont)

	b.AddLabelID(cont)
	b.AddOpID(spirv.OpIAdd, b.Int, iNext, i, b.I(1))
	b.AddBranch(header)

	b.AddLabelID(merge)
	b.AddStore(out, sum)
	b.End()

	m := b.Module()
	return loopShader{
		m: m, fn: m.MustFunction(ir.ID(fn)),
		entry: ir.ID(entry), header: ir.ID(header), body: ir.ID(body), cont: ir.ID(cont), merge: ir.ID(merge),
		i: ir.ID(i), sum: ir.ID(sum), iNext: ir.ID(iNext), sumNext: ir.ID(sumNext), cond: ir.ID(cond),
	}
}

// entryFunction returns the function of the only entry point of m.
func entryFunction(t *testing.T, m *ir.Module) *ir.Function {
	t.Helper()
	require.Len(t, m.EntryPoints, 1)
	return m.MustFunction(m.EntryPoints[0].Function)
}

// instructions returns every instruction of fn with the given opcode.
func instructions(m *ir.Module, fn *ir.Function, op spirv.Op) []*ir.Instruction {
	var out []*ir.Instruction
	for _, bid := range fn.Blocks {
		for _, inst := range m.MustBlock(bid).Instructions {
			if inst.Op == op {
				out = append(out, inst)
			}
		}
	}
	return out
}

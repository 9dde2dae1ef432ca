// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// RelaxedValues propagates RelaxedPrecision through the expression trees of
// a function. A value is relaxed when it is decorated, when it loads from a
// decorated variable, or when it is arithmetic whose numeric operands are
// all relaxed. Comparisons, conversions and calls are never relaxed.
func RelaxedValues(m *ir.Module, fn *ir.Function) map[ir.ID]bool {
	relaxed := make(map[ir.ID]bool)
	isRelaxed := func(id ir.ID) bool {
		if relaxed[id] {
			return true
		}
		return m.HasDecoration(id, spirv.DecorationRelaxedPrecision)
	}
	cfg := NewCFG(m, fn)
	for _, bid := range cfg.ReversePostOrder() {
		blk := m.MustBlock(bid)
		for _, inst := range blk.Instructions {
			if inst.Result == 0 || !numeric(m, inst.ResultType) {
				continue
			}
			if m.HasDecoration(inst.Result, spirv.DecorationRelaxedPrecision) {
				relaxed[inst.Result] = true
				continue
			}
			switch {
			case inst.Op == spirv.OpLoad:
				if base := BaseVariable(m, inst.Arg(0)); base != 0 && m.HasDecoration(base, spirv.DecorationRelaxedPrecision) {
					relaxed[inst.Result] = true
				}
			case propagates(inst.Op):
				all, some := true, false
				for _, id := range inst.IDOperands() {
					if !numeric(m, m.TypeOf(id)) {
						continue
					}
					if m.KindOf(id) == ir.KindConstant {
						continue
					}
					some = true
					if !isRelaxed(id) {
						all = false
					}
				}
				if all && some {
					relaxed[inst.Result] = true
				}
			}
		}
	}
	return relaxed
}

func numeric(m *ir.Module, t ir.ID) bool {
	if t == 0 || m.KindOf(t) != ir.KindType {
		return false
	}
	switch m.ScalarOf(t).Kind {
	case ir.ScalarFloat, ir.ScalarSint, ir.ScalarUint:
		return m.ScalarOf(t).Width == 32
	}
	return false
}

func propagates(op spirv.Op) bool {
	switch op {
	case spirv.OpFAdd, spirv.OpFSub, spirv.OpFMul, spirv.OpFDiv, spirv.OpFNegate,
		spirv.OpIAdd, spirv.OpISub, spirv.OpIMul, spirv.OpSNegate,
		spirv.OpVectorTimesScalar, spirv.OpMatrixTimesScalar, spirv.OpVectorTimesMatrix,
		spirv.OpMatrixTimesVector, spirv.OpMatrixTimesMatrix, spirv.OpDot,
		spirv.OpCompositeConstruct, spirv.OpCompositeExtract, spirv.OpVectorShuffle,
		spirv.OpCopyObject, spirv.OpSelect, spirv.OpExtInst:
		return true
	}
	return false
}

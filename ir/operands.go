// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "github.com/gogpu/spvcross/spirv"

// imageOperandIndex returns the operand index of the ImageOperands mask for
// image instructions, or -1.
func imageOperandIndex(op spirv.Op) int {
	switch op {
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageFetch, spirv.OpImageRead,
		spirv.OpImageSparseSampleImplicitLod, spirv.OpImageSparseSampleExplicitLod,
		spirv.OpImageSparseFetch:
		return 2
	case spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod,
		spirv.OpImageGather, spirv.OpImageDrefGather, spirv.OpImageWrite:
		return 3
	}
	return -1
}

// ImageOperandIndex returns the operand index of the ImageOperands mask of an
// image instruction, or -1 when the instruction takes none.
func (i *Instruction) ImageOperandIndex() int {
	return imageOperandIndex(i.Op)
}

// hasGroupOperation reports whether a subgroup instruction carries a
// GroupOperation literal after its scope.
func hasGroupOperation(op spirv.Op) bool {
	switch op {
	case spirv.OpGroupNonUniformIAdd, spirv.OpGroupNonUniformFAdd,
		spirv.OpGroupNonUniformIMul, spirv.OpGroupNonUniformFMul,
		spirv.OpGroupNonUniformSMin, spirv.OpGroupNonUniformUMin, spirv.OpGroupNonUniformFMin,
		spirv.OpGroupNonUniformSMax, spirv.OpGroupNonUniformUMax, spirv.OpGroupNonUniformFMax,
		spirv.OpGroupNonUniformBitwiseAnd, spirv.OpGroupNonUniformBitwiseOr, spirv.OpGroupNonUniformBitwiseXor,
		spirv.OpGroupNonUniformLogicalAnd, spirv.OpGroupNonUniformLogicalOr, spirv.OpGroupNonUniformLogicalXor,
		spirv.OpGroupNonUniformBallotBitCount:
		return true
	}
	return false
}

// IDOperands returns the operands of an instruction that name IDs, in
// operand order. Literal operands and phi parent labels are skipped; the
// extended instruction set of OpExtInst is skipped as well.
func (i *Instruction) IDOperands() []ID {
	ops := i.Operands
	out := make([]ID, 0, len(ops))
	add := func(from, to int) {
		for k := from; k < to && k < len(ops); k++ {
			out = append(out, ID(ops[k]))
		}
	}
	switch i.Op {
	case spirv.OpPhi:
		for k := 0; k+1 < len(ops); k += 2 {
			out = append(out, ID(ops[k]))
		}
	case spirv.OpCompositeExtract:
		add(0, 1)
	case spirv.OpCompositeInsert, spirv.OpVectorShuffle:
		add(0, 2)
	case spirv.OpExtInst:
		add(2, len(ops))
	case spirv.OpLoad, spirv.OpArrayLength:
		add(0, 1)
	case spirv.OpStore, spirv.OpCopyMemory:
		add(0, 2)
	case spirv.OpCopyMemorySized:
		add(0, 3)
	default:
		if k := imageOperandIndex(i.Op); k >= 0 {
			add(0, k)
			add(k+1, len(ops))
			break
		}
		if hasGroupOperation(i.Op) {
			add(0, 1)
			add(2, len(ops))
			break
		}
		add(0, len(ops))
	}
	return out
}

// GroupOperation returns the group operation of a subgroup reduction, and
// false when the instruction has none.
func (i *Instruction) GroupOperation() (spirv.GroupOperation, bool) {
	if !hasGroupOperation(i.Op) || len(i.Operands) < 2 {
		return 0, false
	}
	return spirv.GroupOperation(i.Operands[1]), true
}

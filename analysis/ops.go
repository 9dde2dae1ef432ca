// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Effect classifies how an instruction interacts with memory and the
// invocation state.
type Effect uint8

const (
	// EffectNone marks pure value computations.
	EffectNone Effect = iota
	// EffectRead marks instructions whose result depends on memory that a
	// later store, atomic or call may change.
	EffectRead
	// EffectWrite marks instructions with side effects.
	EffectWrite
)

func (e Effect) String() string {
	switch e {
	case EffectRead:
		return "read"
	case EffectWrite:
		return "write"
	}
	return "none"
}

// EffectOf returns the memory effect of an instruction.
func EffectOf(inst *ir.Instruction) Effect {
	switch inst.Op {
	case spirv.OpLoad, spirv.OpImageRead, spirv.OpImageSparseFetch,
		spirv.OpIsHelperInvocationEXT, spirv.OpPtrEqual, spirv.OpPtrNotEqual:
		return EffectRead
	case spirv.OpAtomicLoad, spirv.OpStore, spirv.OpCopyMemory, spirv.OpCopyMemorySized, spirv.OpImageWrite,
		spirv.OpFunctionCall, spirv.OpControlBarrier, spirv.OpMemoryBarrier,
		spirv.OpEmitVertex, spirv.OpEndPrimitive, spirv.OpDemoteToHelperInvocation,
		spirv.OpAtomicStore, spirv.OpAtomicExchange, spirv.OpAtomicCompareExchange,
		spirv.OpAtomicCompareExchangeWeak, spirv.OpAtomicIIncrement, spirv.OpAtomicIDecrement,
		spirv.OpAtomicIAdd, spirv.OpAtomicISub, spirv.OpAtomicSMin, spirv.OpAtomicUMin,
		spirv.OpAtomicSMax, spirv.OpAtomicUMax, spirv.OpAtomicAnd, spirv.OpAtomicOr,
		spirv.OpAtomicXor:
		return EffectWrite
	case spirv.OpExtInst:
		if len(inst.Operands) >= 2 {
			switch spirv.GLSLStd450(inst.Operands[1]) {
			case spirv.GLSLModf, spirv.GLSLFrexp:
				return EffectWrite
			}
		}
	}
	return EffectNone
}

// IsSubgroupOp reports whether an instruction is a subgroup (wave) operation.
func IsSubgroupOp(op spirv.Op) bool {
	return op >= spirv.OpGroupNonUniformElect && op <= spirv.OpGroupNonUniformQuadSwap
}

// IsDerivative reports whether an instruction computes a screen-space
// derivative.
func IsDerivative(op spirv.Op) bool {
	return op >= spirv.OpDPdx && op <= spirv.OpFwidthCoarse
}

// Forwardable reports whether an instruction's result may be inlined at
// its use site instead of being bound to a temporary. Side-effecting,
// convergent and implicit-derivative instructions are never forwarded.
func Forwardable(inst *ir.Instruction) bool {
	if EffectOf(inst) == EffectWrite || IsSubgroupOp(inst.Op) || IsDerivative(inst.Op) {
		return false
	}
	switch inst.Op {
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleDrefImplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjDrefImplicitLod,
		spirv.OpImageSparseSampleImplicitLod, spirv.OpImageQueryLod:
		return false
	case spirv.OpIAddCarry, spirv.OpISubBorrow, spirv.OpUMulExtended, spirv.OpSMulExtended:
		return false
	}
	return true
}

// IsPointerOp reports whether an instruction produces a pointer that is
// resolved lazily into an lvalue expression.
func IsPointerOp(op spirv.Op) bool {
	switch op {
	case spirv.OpAccessChain, spirv.OpInBoundsAccessChain, spirv.OpPtrAccessChain,
		spirv.OpInBoundsPtrAccessChain, spirv.OpImageTexelPointer:
		return true
	}
	return false
}

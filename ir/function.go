// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// Function is an OpFunction with its blocks in declaration order.
type Function struct {
	ID         ID
	ResultType ID
	Type       ID
	Control    spirv.FunctionControl
	Params     []ID
	Blocks     []ID
	// Locals lists Function-storage variables.
	Locals []ID
}

// Entry returns the entry block label.
func (f *Function) Entry() ID {
	if len(f.Blocks) == 0 {
		return 0
	}
	return f.Blocks[0]
}

// MergeKind is the structured merge declared by a block.
type MergeKind uint8

const (
	MergeNone MergeKind = iota
	MergeSelection
	MergeLoop
)

// TerminatorKind is the kind of a block terminator.
type TerminatorKind uint8

const (
	TermNone TerminatorKind = iota
	TermBranch
	TermBranchConditional
	TermSwitch
	TermReturn
	TermReturnValue
	TermKill
	TermUnreachable
	TermTerminateInvocation
)

func (k TerminatorKind) String() string {
	switch k {
	case TermBranch:
		return "Branch"
	case TermBranchConditional:
		return "BranchConditional"
	case TermSwitch:
		return "Switch"
	case TermReturn:
		return "Return"
	case TermReturnValue:
		return "ReturnValue"
	case TermKill:
		return "Kill"
	case TermUnreachable:
		return "Unreachable"
	case TermTerminateInvocation:
		return "TerminateInvocation"
	}
	return "None"
}

// SwitchCase is one literal/target pair of OpSwitch.
type SwitchCase struct {
	Value  uint64
	Target ID
}

// Terminator is the final instruction of a block.
type Terminator struct {
	Kind TerminatorKind

	// Target of Branch.
	Target ID

	// Condition and targets of BranchConditional.
	Condition ID
	True      ID
	False     ID

	// Selector, default and cases of Switch.
	Selector ID
	Default  ID
	Cases    []SwitchCase

	// Value of ReturnValue.
	Value ID
}

// Successors returns the distinct successor labels in operand order.
func (t *Terminator) Successors() []ID {
	var out []ID
	add := func(id ID) {
		for _, have := range out {
			if have == id {
				return
			}
		}
		out = append(out, id)
	}
	switch t.Kind {
	case TermBranch:
		add(t.Target)
	case TermBranchConditional:
		add(t.True)
		add(t.False)
	case TermSwitch:
		add(t.Default)
		for _, c := range t.Cases {
			add(c.Target)
		}
	}
	return out
}

// Block is a basic block. Phis, merge information and the terminator are
// split out of the instruction list.
type Block struct {
	ID       ID
	Function ID

	Phis         []*Instruction
	Instructions []*Instruction

	Merge            MergeKind
	MergeBlock       ID
	ContinueBlock    ID
	SelectionControl spirv.SelectionControl
	LoopControl      spirv.LoopControl

	Terminator Terminator
}

// Instruction is a SPIR-V instruction inside a function.
type Instruction struct {
	Op         spirv.Op
	ResultType ID
	Result     ID
	// Operands follow the result ID; IDs and literals are mixed as in the
	// binary encoding.
	Operands []uint32
	Block    ID
}

// Arg returns operand i as an ID.
func (i *Instruction) Arg(n int) ID {
	if n >= len(i.Operands) {
		RaiseAt(ErrInvalidIR, i.Result, i.Op, "missing operand %d", n)
	}
	return ID(i.Operands[n])
}

// Literal returns operand n as a literal word.
func (i *Instruction) Literal(n int) uint32 {
	if n >= len(i.Operands) {
		RaiseAt(ErrInvalidIR, i.Result, i.Op, "missing operand %d", n)
	}
	return i.Operands[n]
}

// PhiEdge is one incoming value of a phi.
type PhiEdge struct {
	Value  ID
	Parent ID
}

// PhiEdges returns the incoming edges of an OpPhi.
func (i *Instruction) PhiEdges() []PhiEdge {
	edges := make([]PhiEdge, 0, len(i.Operands)/2)
	for k := 0; k+1 < len(i.Operands); k += 2 {
		edges = append(edges, PhiEdge{Value: ID(i.Operands[k]), Parent: ID(i.Operands[k+1])})
	}
	return edges
}

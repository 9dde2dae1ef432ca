// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

type fragmentIDs struct {
	fn, color, block, ubo, header, merge, phi uint32
}

// buildFragment assembles a fragment shader that loops over a uniform count
// and writes the accumulated value to a color output.
func buildFragment(t *testing.T) ([]uint32, fragmentIDs) {
	t.Helper()
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	void := b.AddTypeVoid()
	boolT := b.AddTypeBool()
	f32 := b.AddTypeFloat(32)
	i32 := b.AddTypeInt(32, true)
	vec4 := b.AddTypeVector(f32, 4)
	block := b.AddTypeStruct(i32)
	uboPtr := b.AddTypePointer(spirv.StorageClassUniform, block)
	i32UniformPtr := b.AddTypePointer(spirv.StorageClassUniform, i32)
	outPtr := b.AddTypePointer(spirv.StorageClassOutput, vec4)
	fnType := b.AddTypeFunction(void)

	zero := b.AddConstant(i32, 0)
	one := b.AddConstant(i32, 1)
	fzero := b.AddConstantFloat32(f32, 0)
	fone := b.AddConstantFloat32(f32, 1)

	ubo := b.AddVariable(uboPtr, spirv.StorageClassUniform)
	color := b.AddVariable(outPtr, spirv.StorageClassOutput)

	b.AddName(block, "Params")
	b.AddMemberName(block, 0, "count")
	b.AddName(ubo, "params")
	b.AddDecorate(block, spirv.DecorationBlock)
	b.AddMemberDecorate(block, 0, spirv.DecorationOffset, 0)
	b.AddDecorate(color, spirv.DecorationLocation, 0)

	group := b.AddDecorationGroup()
	b.AddDecorate(group, spirv.DecorationDescriptorSet, 2)
	b.AddDecorate(group, spirv.DecorationBinding, 5)
	b.AddGroupDecorate(group, ubo)

	fn := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	entry := b.AddLabel()
	countPtr := b.AddAccessChain(i32UniformPtr, ubo, zero)
	count := b.AddLoad(i32, countPtr)
	header := b.AllocID()
	body := b.AllocID()
	cont := b.AllocID()
	merge := b.AllocID()
	b.AddBranch(header)

	b.AddLabelID(header)
	i := b.AllocID()
	s := b.AllocID()
	iNext := b.AllocID()
	sNext := b.AllocID()
	b.AddPhiID(i32, i, spirv.PhiEdge{Value: zero, Parent: entry}, spirv.PhiEdge{Value: iNext, Parent: cont})
	b.AddPhiID(f32, s, spirv.PhiEdge{Value: fzero, Parent: entry}, spirv.PhiEdge{Value: sNext, Parent: cont})
	cond := b.AddBinaryOp(spirv.OpSLessThan, boolT, i, count)
	b.AddLoopMerge(merge, cont, spirv.LoopControlNone)
	b.AddBranchConditional(cond, body, merge)

	b.AddLabelID(body)
	b.AddOpID(spirv.OpFAdd, f32, sNext, s, fone)
	b.AddBranch(cont)

	b.AddLabelID(cont)
	b.AddOpID(spirv.OpIAdd, i32, iNext, i, one)
	b.AddBranch(header)

	b.AddLabelID(merge)
	v := b.AddCompositeConstruct(vec4, s, s, s, fone)
	b.AddStore(color, v)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main", []uint32{color})
	b.AddExecutionMode(fn, spirv.ExecutionModeOriginUpperLeft)

	return b.Words(), fragmentIDs{fn: fn, color: color, block: block, ubo: ubo, header: header, merge: merge, phi: i}
}

func TestParseFragment(t *testing.T) {
	words, want := buildFragment(t)

	m, err := Parse(words)
	require.NoError(t, err)

	require.Len(t, m.EntryPoints, 1)
	ep := m.EntryPoints[0]
	assert.Equal(t, "main", ep.Name)
	assert.Equal(t, spirv.ExecutionModelFragment, ep.Model)
	assert.Equal(t, ir.ID(want.fn), ep.Function)
	assert.Equal(t, []ir.ID{ir.ID(want.color)}, ep.Interface)
	assert.True(t, ep.HasMode(spirv.ExecutionModeOriginUpperLeft))

	assert.Equal(t, "Params", m.Name(ir.ID(want.block)))
	assert.Equal(t, "count", m.MemberName(ir.ID(want.block), 0))
	assert.True(t, m.IsBlock(ir.ID(want.block)))

	set, ok := m.Decoration(ir.ID(want.ubo), spirv.DecorationDescriptorSet)
	assert.True(t, ok, "decoration group applied")
	assert.Equal(t, uint32(2), set)
	assert.Equal(t, uint32(5), m.DecorationOr(ir.ID(want.ubo), spirv.DecorationBinding, 0))

	fn := m.MustFunction(ir.ID(want.fn))
	require.Len(t, fn.Blocks, 5)

	header := m.MustBlock(ir.ID(want.header))
	assert.Equal(t, ir.MergeLoop, header.Merge)
	assert.Equal(t, ir.ID(want.merge), header.MergeBlock)
	require.Len(t, header.Phis, 2)
	assert.Equal(t, ir.ID(want.phi), header.Phis[0].Result)
	assert.Len(t, header.Phis[0].PhiEdges(), 2)
	assert.Equal(t, ir.TermBranchConditional, header.Terminator.Kind)

	merge := m.MustBlock(ir.ID(want.merge))
	require.Len(t, merge.Instructions, 2)
	assert.Equal(t, spirv.OpCompositeConstruct, merge.Instructions[0].Op)
	assert.Equal(t, spirv.OpStore, merge.Instructions[1].Op)
	assert.Equal(t, ir.TermReturn, merge.Terminator.Kind)
}

func TestParseBytesRoundTrip(t *testing.T) {
	words, _ := buildFragment(t)
	m, err := ParseBytes(spirv.BytesFromWords(words))
	require.NoError(t, err)
	assert.Len(t, m.Functions(), 1)
}

func TestParseRejectsMalformed(t *testing.T) {
	words, _ := buildFragment(t)

	tests := []struct {
		name  string
		words []uint32
	}{
		{"empty", nil},
		{"header only", words[:3]},
		{"truncated", words[:len(words)-1]},
		{"bad magic", append([]uint32{0xdeadbeef}, words[1:]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.words)
			require.Error(t, err)
			assert.True(t, ir.IsKind(err, ir.ErrInvalidIR), "got %v", err)
		})
	}
}

func TestParseRejectsIDOutOfBound(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.AddTypeVoid()
	words := b.Words()
	words[3] = 1 // bound below the void type's ID

	_, err := Parse(words)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidIR), "got %v", err)
}

func TestParseRejectsUnknownReference(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddBranch(b.AllocID())
	b.AddFunctionEnd()

	_, err := Parse(b.Words())
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidIR), "got %v", err)
}

func TestParseSwitch64(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityInt64)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	u64 := b.AddTypeInt(64, false)
	sel := b.AddConstant(u64, 7, 1)
	fnType := b.AddTypeFunction(void)
	b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	caseBlock := b.AllocID()
	merge := b.AllocID()
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddStatement(spirv.OpSwitch, sel, merge, 7, 1, caseBlock)
	b.AddLabelID(caseBlock)
	b.AddBranch(merge)
	b.AddLabelID(merge)
	b.AddReturn()
	b.AddFunctionEnd()

	m, err := Parse(b.Words())
	require.NoError(t, err)
	head := m.MustBlock(m.Functions()[0].Entry())
	require.Len(t, head.Terminator.Cases, 1)
	assert.Equal(t, uint64(1)<<32|7, head.Terminator.Cases[0].Value)
	assert.Equal(t, ir.ID(caseBlock), head.Terminator.Cases[0].Target)
}

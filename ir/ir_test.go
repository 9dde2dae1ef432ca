// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/spirv"
)

// newTestModule returns a module with float, vec4, a struct of one vec4, a
// pointer to it and a uniform variable.
func newTestModule(t *testing.T) (m *Module, f32, vec4, block, ptr, variable ID) {
	t.Helper()
	m = NewModule(10)
	f32, vec4, block, ptr, variable = 1, 2, 3, 4, 5
	require.NoError(t, m.Define(f32, KindType, &Type{ID: f32, Inner: FloatType{Width: 32}}))
	require.NoError(t, m.Define(vec4, KindType, &Type{ID: vec4, Inner: VectorType{Component: f32, Count: 4}}))
	require.NoError(t, m.Define(block, KindType, &Type{ID: block, Inner: StructType{Members: []ID{vec4}}}))
	require.NoError(t, m.Define(ptr, KindType, &Type{ID: ptr, Inner: PointerType{Storage: spirv.StorageClassUniform, Pointee: block}}))
	require.NoError(t, m.Define(variable, KindVariable, &Variable{ID: variable, Type: ptr, Storage: spirv.StorageClassUniform}))
	m.GlobalOrder = []ID{f32, vec4, block, ptr, variable}
	return m, f32, vec4, block, ptr, variable
}

func TestLookupErrors(t *testing.T) {
	m, f32, _, _, _, variable := newTestModule(t)

	_, err := m.Type(99)
	assert.True(t, IsKind(err, ErrUnknownID))

	_, err = m.Type(0)
	assert.True(t, IsKind(err, ErrUnknownID))

	_, err = m.Variable(f32)
	assert.True(t, IsKind(err, ErrKindMismatch))

	v, err := m.Variable(variable)
	require.NoError(t, err)
	assert.Equal(t, spirv.StorageClassUniform, v.Storage)

	err = m.Define(f32, KindType, &Type{ID: f32, Inner: BoolType{}})
	assert.True(t, IsKind(err, ErrInvalidIR))
}

func TestMustLookupRecover(t *testing.T) {
	m, f32, _, _, _, _ := newTestModule(t)

	run := func() (err error) {
		defer Recover(&err)
		m.MustFunction(f32)
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.Equal(t, ErrKindMismatch, KindOf(err))

	wrapped := fmt.Errorf("hlsl: %w", err)
	assert.True(t, IsKind(wrapped, ErrKindMismatch))
}

func TestRecoverRepanicsForeignValues(t *testing.T) {
	assert.Panics(t, func() {
		var err error
		defer Recover(&err)
		panic("boom")
	})
}

func TestIndexConversions(t *testing.T) {
	assert.Equal(t, uint32(12), Index(12))
	assert.Equal(t, 7, Position(7))

	run := func(i int) (err error) {
		defer Recover(&err)
		Index(i)
		return nil
	}
	assert.NoError(t, run(1<<20))
	err := run(-1)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidIR, KindOf(err))
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewError(ErrInvalidIR, "bad"), "InvalidIR: bad"},
		{NewErrorAt(ErrUnknownID, 7, 0, "missing"), "UnknownID: missing (id %7)"},
		{NewErrorAt(ErrUnsupportedOpcode, 9, spirv.OpImageGather, "no gather"), "UnsupportedOpcode: no gather (id %9, OpImageGather)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
	var target *Error
	assert.True(t, errors.As(fmt.Errorf("x: %w", tests[0].err), &target))
}

func TestDecorationKindChecks(t *testing.T) {
	m, f32, _, block, _, variable := newTestModule(t)

	require.NoError(t, m.SetDecoration(variable, spirv.DecorationBinding, 3))
	require.NoError(t, m.SetDecoration(variable, spirv.DecorationDescriptorSet, 1))
	set, ok := m.Decoration(variable, spirv.DecorationDescriptorSet)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), set)

	err := m.SetDecoration(f32, spirv.DecorationBinding, 0)
	assert.True(t, IsKind(err, ErrKindMismatch), "binding on a type")

	err = m.SetDecoration(f32, spirv.DecorationBlock, 0)
	assert.True(t, IsKind(err, ErrKindMismatch), "block on a scalar")

	require.NoError(t, m.SetDecoration(block, spirv.DecorationBlock, 0))
	assert.True(t, m.IsBlock(block))

	err = m.SetDecoration(42, spirv.DecorationLocation, 0)
	assert.True(t, IsKind(err, ErrUnknownID))

	require.NoError(t, m.UnsetDecoration(variable, spirv.DecorationBinding))
	assert.False(t, m.HasDecoration(variable, spirv.DecorationBinding))
	assert.Equal(t, uint32(9), m.DecorationOr(variable, spirv.DecorationBinding, 9))
}

func TestMemberDecorations(t *testing.T) {
	m, f32, _, block, _, _ := newTestModule(t)

	require.NoError(t, m.SetMemberDecoration(block, 0, spirv.DecorationOffset, 16))
	off, ok := m.MemberDecoration(block, 0, spirv.DecorationOffset)
	assert.True(t, ok)
	assert.Equal(t, uint32(16), off)

	err := m.SetMemberDecoration(block, 1, spirv.DecorationOffset, 0)
	assert.True(t, IsKind(err, ErrKindMismatch), "member out of range")

	err = m.SetMemberDecoration(f32, 0, spirv.DecorationOffset, 0)
	assert.True(t, IsKind(err, ErrKindMismatch), "member of non-struct")

	require.NoError(t, m.SetMemberDecorationString(block, 0, spirv.DecorationUserSemantic, "COLOR"))
	s, ok := m.MemberDecorationString(block, 0, spirv.DecorationUserSemantic)
	assert.True(t, ok)
	assert.Equal(t, "COLOR", s)

	m.SetMemberName(block, 0, "color")
	assert.Equal(t, "color", m.MemberName(block, 0))
	assert.Equal(t, "", m.MemberName(block, 5))

	m.SetMemberExtDecoration(block, 0, ExtPaddingBefore, 12)
	pad, ok := m.MemberExtDecoration(block, 0, ExtPaddingBefore)
	assert.True(t, ok)
	assert.Equal(t, uint32(12), pad)
}

func TestDecorationKindsSorted(t *testing.T) {
	m, _, _, _, _, variable := newTestModule(t)
	require.NoError(t, m.SetDecoration(variable, spirv.DecorationDescriptorSet, 0))
	require.NoError(t, m.SetDecoration(variable, spirv.DecorationBinding, 0))
	require.NoError(t, m.SetDecoration(variable, spirv.DecorationNonWritable, 0))
	require.NoError(t, m.SetDecorationString(variable, spirv.DecorationUserTypeGOOGLE, "structuredbuffer:<float>"))

	assert.Equal(t, []spirv.Decoration{
		spirv.DecorationNonWritable,
		spirv.DecorationBinding,
		spirv.DecorationDescriptorSet,
		spirv.DecorationUserTypeGOOGLE,
	}, m.Decorations(variable).Kinds())
}

func TestAddTypeDeduplicates(t *testing.T) {
	m, f32, vec4, block, _, _ := newTestModule(t)

	assert.Equal(t, vec4, m.AddType(VectorType{Component: f32, Count: 4}))

	vec3 := m.AddType(VectorType{Component: f32, Count: 3})
	assert.NotEqual(t, vec4, vec3)
	assert.Equal(t, vec3, m.AddType(VectorType{Component: f32, Count: 3}))
	assert.Equal(t, uint32(3), m.VectorSize(vec3))

	s := m.AddType(StructType{Members: []ID{vec4}})
	assert.NotEqual(t, block, s, "structs are never merged")
	assert.Contains(t, m.GlobalOrder, vec3)
}

func TestArrayDims(t *testing.T) {
	m, f32, _, _, _, _ := newTestModule(t)
	u32 := m.AddType(IntType{Width: 32})
	two := m.AddConstant(u32, 2)
	three := m.AddConstant(u32, 3)
	inner := m.AddType(ArrayType{Element: f32, Length: three})
	outer := m.AddType(ArrayType{Element: inner, Length: two})
	rt := m.AddType(RuntimeArrayType{Element: outer})

	dims, elem := m.ArrayDims(rt)
	assert.Equal(t, []uint32{0, 2, 3}, dims)
	assert.Equal(t, f32, elem)

	n, ok := m.ArrayLength(outer)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), n)
	assert.True(t, m.SameType(inner, m.AddType(ArrayType{Element: f32, Length: m.AddConstant(u32, 3)})))
}

func TestScalarQueries(t *testing.T) {
	m, f32, vec4, _, _, _ := newTestModule(t)
	mat := m.AddType(MatrixType{Column: vec4, Columns: 3})

	assert.Equal(t, Scalar{Kind: ScalarFloat, Width: 32}, m.ScalarOf(mat))
	assert.Equal(t, f32, m.ScalarTypeOf(mat))
	assert.Equal(t, uint32(3), m.Columns(mat))
	assert.Equal(t, uint32(4), m.VectorSize(mat))
	assert.True(t, m.IsMatrix(mat))
	assert.False(t, m.IsOpaque(mat))
}

func TestScalarKindString(t *testing.T) {
	assert.Equal(t, "float", ScalarFloat.String())
	assert.Equal(t, "sint", ScalarSint.String())
	assert.Equal(t, "uint", ScalarUint.String())
	assert.Equal(t, "bool", ScalarBool.String())
	assert.Equal(t, "scalar(9)", ScalarKind(9).String())
	assert.Equal(t, "atomics on 64-bit uint values",
		fmt.Sprintf("atomics on %d-bit %s values", 64, ScalarUint))
}

func buildBranchingFunction(t *testing.T, m *Module, target ID) {
	t.Helper()
	void := m.AddType(VoidType{})
	fnType := m.AddType(FunctionType{Return: void})
	fnID := m.AllocID()
	entry := m.AllocID()
	require.NoError(t, m.Define(entry, KindBlock, &Block{
		ID: entry, Function: fnID,
		Terminator: Terminator{Kind: TermBranch, Target: target},
	}))
	blocks := []ID{entry}
	if target != 0 && m.KindOf(target) == KindNone && int(target) < int(m.Bound()) {
		require.NoError(t, m.Define(target, KindBlock, &Block{
			ID: target, Function: fnID, Terminator: Terminator{Kind: TermReturn},
		}))
		blocks = append(blocks, target)
	}
	require.NoError(t, m.Define(fnID, KindFunction, &Function{
		ID: fnID, ResultType: void, Type: fnType, Blocks: blocks,
	}))
	m.FunctionOrder = append(m.FunctionOrder, fnID)
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	m, _, _, _, _, _ := newTestModule(t)
	buildBranchingFunction(t, m, m.AllocID())

	errs, err := Validate(m)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.NoError(t, Check(m))
}

func TestValidateRejectsForeignBranch(t *testing.T) {
	m, _, _, _, _, _ := newTestModule(t)
	buildBranchingFunction(t, m, 999)

	errs, err := Validate(m)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "branch target %999")
	assert.True(t, IsKind(Check(m), ErrInvalidIR))
}

func TestValidateStorageMismatch(t *testing.T) {
	m, _, _, _, ptr, _ := newTestModule(t)
	bad := m.AllocID()
	require.NoError(t, m.Define(bad, KindVariable, &Variable{ID: bad, Type: ptr, Storage: spirv.StorageClassPrivate}))
	m.GlobalOrder = append(m.GlobalOrder, bad)

	errs, err := Validate(m)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "does not match pointer storage")
}

func TestTerminatorSuccessors(t *testing.T) {
	term := Terminator{
		Kind: TermSwitch, Default: 4,
		Cases: []SwitchCase{{Value: 1, Target: 5}, {Value: 2, Target: 4}, {Value: 3, Target: 6}},
	}
	assert.Equal(t, []ID{4, 5, 6}, term.Successors())

	ret := Terminator{Kind: TermReturn}
	assert.Empty(t, ret.Successors())
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionEncode(t *testing.T) {
	inst := Instruction{Opcode: OpTypeVector, Words: []uint32{5, 4, 3}}
	words := inst.Encode()
	require.Len(t, words, 4)
	assert.Equal(t, uint32(4<<16|23), words[0])
	assert.Equal(t, []uint32{5, 4, 3}, words[1:])
}

func TestStringPadding(t *testing.T) {
	tests := []struct {
		in    string
		words int
	}{
		{"", 1},
		{"abc", 1},
		{"abcd", 2},
		{"main", 2},
		{"GLSL.std.450", 4},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			enc := EncodeString(tt.in)
			assert.Len(t, enc, tt.words)
			s, n := DecodeString(enc)
			assert.Equal(t, tt.in, s)
			assert.Equal(t, tt.words, n)
		})
	}
}

func TestModuleBuilderSectionOrder(t *testing.T) {
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)
	glsl := b.AddExtInstImport(GLSLStd450ImportName)
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	fn := b.AddFunction(fnType, void, FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(ExecutionModelGLCompute, fn, "main", nil)
	b.AddExecutionMode(fn, ExecutionModeLocalSize, 1, 1, 1)
	b.AddName(fn, "main")

	words := b.Words()
	h, err := DecodeHeader(words)
	require.NoError(t, err)
	assert.Equal(t, Version1_3, h.Version)
	assert.Equal(t, uint32(6), h.Bound)
	assert.Equal(t, uint32(1), glsl)

	insts, err := Instructions(words)
	require.NoError(t, err)
	var ops []Op
	for _, inst := range insts {
		ops = append(ops, inst.Op)
	}
	assert.Equal(t, []Op{
		OpCapability, OpExtInstImport, OpMemoryModel, OpEntryPoint, OpExecutionMode, OpName,
		OpTypeVoid, OpTypeFunction, OpFunction, OpLabel, OpReturn, OpFunctionEnd,
	}, ops)
}

func TestOpHasResult(t *testing.T) {
	tests := []struct {
		op               Op
		result, withType bool
	}{
		{OpStore, false, false},
		{OpTypeInt, true, false},
		{OpLabel, true, false},
		{OpLoad, true, true},
		{OpFAdd, true, true},
		{OpBranch, false, false},
	}
	for _, tt := range tests {
		r, ty := tt.op.HasResult()
		assert.Equal(t, tt.result, r, tt.op.String())
		assert.Equal(t, tt.withType, ty, tt.op.String())
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "OpFAdd", OpFAdd.String())
	assert.Equal(t, "Op9999", Op(9999).String())
	assert.Equal(t, "NonWritable", DecorationNonWritable.String())
	assert.Equal(t, "StorageBuffer", StorageClassStorageBuffer.String())
	assert.Equal(t, "ClipDistance", BuiltInClipDistance.String())
	assert.Equal(t, "GLCompute", ExecutionModelGLCompute.String())
	assert.Equal(t, "Cube", DimCube.String())
}

func TestParseExecutionModel(t *testing.T) {
	for _, s := range []string{"Fragment", "fragment", "frag"} {
		e, err := ParseExecutionModel(s)
		require.NoError(t, err, s)
		assert.Equal(t, ExecutionModelFragment, e, s)
	}
	var e ExecutionModel
	require.NoError(t, e.UnmarshalText([]byte("comp")))
	assert.Equal(t, ExecutionModelGLCompute, e)
	text, err := ExecutionModelTessellationEvaluation.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TessellationEvaluation", string(text))
	_, err = ParseExecutionModel("pixel")
	assert.Error(t, err)
}

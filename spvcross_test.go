// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvcross_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func TestCompileHLSL(t *testing.T) {
	code, info, err := spvcross.CompileHLSL(testshaders.VertexPassthrough(), nil)
	require.NoError(t, err)
	assert.Contains(t, code, "float4 gl_Position : SV_Position;")
	assert.Equal(t, "main", info.EntryPointName)
}

func TestCompileMSL(t *testing.T) {
	code, info, err := spvcross.CompileMSL(testshaders.VertexPassthrough(), nil)
	require.NoError(t, err)
	assert.Contains(t, code, "vertex main0_out main0(main0_in in [[stage_in]])")
	assert.Equal(t, "main0", info.EntryPointName)
}

func TestCompileFixtures(t *testing.T) {
	for _, f := range testshaders.All() {
		t.Run(f.Name, func(t *testing.T) {
			_, _, err := spvcross.CompileHLSL(f.Words, nil)
			assert.Equal(t, f.HLSL, err == nil, "hlsl: %v", err)
			_, _, err = spvcross.CompileMSL(f.Words, nil)
			assert.Equal(t, f.MSL, err == nil, "msl: %v", err)
		})
	}
}

func TestCompileOptionsApply(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.EntryPoint = "missing"
	_, _, err := spvcross.CompileHLSL(testshaders.VertexPassthrough(), opts)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrUnknownID), "got %v", err)
}

func TestParseErrors(t *testing.T) {
	words := testshaders.VertexPassthrough()
	// OpFunctionEnd claiming more words than remain.
	words[len(words)-1] = uint32(spirv.OpFunctionEnd) | 4<<16
	_, err := spvcross.Parse(words)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidIR), "got %v", err)

	_, _, err = spvcross.CompileMSL([]uint32{1, 2, 3}, nil)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidIR), "got %v", err)
}

func TestReflect(t *testing.T) {
	r, err := spvcross.Reflect(testshaders.NumWorkgroups())
	require.NoError(t, err)
	require.Len(t, r.EntryPoints, 1)
	ep := r.EntryPoints[0]
	assert.Equal(t, spirv.ExecutionModelGLCompute, ep.Stage)
	assert.NotEmpty(t, ep.Resources)
}

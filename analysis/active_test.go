// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

func TestReachCallees(t *testing.T) {
	m, err := parser.Parse(testshaders.FunctionCall())
	require.NoError(t, err)
	ep := m.EntryPoints[0]

	r := analysis.Reach(m, ep.Function)
	require.Len(t, r.Functions, 2)
	assert.Equal(t, ep.Function, r.Functions[1], "entry comes last")
	assert.Equal(t, "shade", m.Name(r.Functions[0]))

	var names []string
	for _, v := range r.Variables {
		names = append(names, m.Name(v))
	}
	assert.Equal(t, []string{"material", "light", "FragColor"}, names)
	assert.True(t, r.HasVariable(r.Variables[0]))
	assert.False(t, r.HasVariable(ep.Function))
}

func TestBaseVariable(t *testing.T) {
	m, err := parser.Parse(testshaders.NumWorkgroups())
	require.NoError(t, err)
	fn := entryFunction(t, m)

	chains := instructions(m, fn, spirv.OpAccessChain)
	require.Len(t, chains, 1)
	base := analysis.BaseVariable(m, chains[0].Result)
	assert.Equal(t, "_out", m.Name(base))
	assert.Equal(t, spirv.StorageClassStorageBuffer, analysis.StorageOf(m, chains[0].Result))

	loads := instructions(m, fn, spirv.OpLoad)
	require.NotEmpty(t, loads)
	assert.Equal(t, "gl_NumWorkGroups", m.Name(analysis.BaseVariable(m, loads[0].Result)))

	extracts := instructions(m, fn, spirv.OpCompositeExtract)
	require.Len(t, extracts, 1)
	assert.Zero(t, analysis.BaseVariable(m, extracts[0].Result))
}

func TestBuiltinsUsed(t *testing.T) {
	m, err := parser.Parse(testshaders.DrawParameters())
	require.NoError(t, err)
	r := analysis.Reach(m, m.EntryPoints[0].Function)
	assert.Equal(t, []spirv.BuiltIn{
		spirv.BuiltInPosition, spirv.BuiltInVertexIndex, spirv.BuiltInInstanceIndex,
	}, analysis.BuiltinsUsed(m, r.Variables))
}

func TestWorkgroupSize(t *testing.T) {
	m, err := parser.Parse(testshaders.NumWorkgroups())
	require.NoError(t, err)
	size, spec := analysis.WorkgroupSize(m, m.EntryPoints[0])
	assert.Equal(t, [3]uint32{8, 1, 1}, size)
	assert.Zero(t, spec)

	m, err = parser.Parse(testshaders.LoopPhi())
	require.NoError(t, err)
	size, _ = analysis.WorkgroupSize(m, m.EntryPoints[0])
	assert.Equal(t, [3]uint32{1, 1, 1}, size, "stages without a local size")
}

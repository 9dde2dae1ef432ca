// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

func TestReflect(t *testing.T) {
	m, err := parser.Parse(testshaders.ArgumentBuffers())
	require.NoError(t, err)
	r, err := Reflect(m)
	require.NoError(t, err)
	require.Len(t, r.EntryPoints, 1)

	ep := r.EntryPoints[0]
	assert.Equal(t, "main", ep.Name)
	assert.Equal(t, spirv.ExecutionModelFragment, ep.Stage)
	assert.Equal(t, [3]uint32{}, ep.WorkgroupSize)
	assert.Equal(t, []IOReflection{{Name: "uv", Location: 0, Locations: 1}}, ep.Inputs)
	assert.Equal(t, []IOReflection{{Name: "FragColor", Location: 0, Locations: 1}}, ep.Outputs)

	require.Len(t, ep.Resources, 5)
	assert.Equal(t, ResourceReflection{
		Name: "params", Kind: ResourceUniformBuffer, Set: 0, Binding: 0, Count: 1, ReadOnly: true, BlockSize: 16,
	}, ep.Resources[0])
	assert.Equal(t, "detail", ep.Resources[4].Name)
	assert.Zero(t, ep.Resources[4].BlockSize)
}

func TestReflectCompute(t *testing.T) {
	m, err := parser.Parse(testshaders.NumWorkgroups())
	require.NoError(t, err)
	r, err := Reflect(m)
	require.NoError(t, err)
	ep := r.EntryPoints[0]
	assert.Equal(t, [3]uint32{8, 1, 1}, ep.WorkgroupSize)
	require.Len(t, ep.Inputs, 1)
	assert.Equal(t, "NumWorkgroups", ep.Inputs[0].Builtin)

	data, err := json.Marshal(ep.Resources)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"storage buffer"`)
}

func TestReflectPushConstantSize(t *testing.T) {
	m, err := parser.Parse(testshaders.PushConstants())
	require.NoError(t, err)
	r, err := Reflect(m)
	require.NoError(t, err)
	res := r.EntryPoints[0].Resources
	require.Len(t, res, 1)
	assert.Equal(t, ResourcePushConstant, res[0].Kind)
	assert.Equal(t, uint32(36), res[0].BlockSize)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

func TestOverrides(t *testing.T) {
	fs := spirv.ExecutionModelFragment
	o := NewOverrides[uint32]()
	o.Set(ResourceKey{Stage: fs, Set: 1, Binding: 0}, 7)
	o.Set(ResourceKey{Stage: fs, Set: 0, Binding: 2}, 3)
	o.Set(ResourceKey{Stage: spirv.ExecutionModelVertex, Set: 0, Binding: 0}, 1)
	assert.Equal(t, 3, o.Len())

	v, ok := o.Lookup(ResourceKey{Stage: fs, Set: 1, Binding: 0})
	require.True(t, ok)
	assert.Equal(t, uint32(7), v)
	_, ok = o.Lookup(ResourceKey{Stage: fs, Set: 5, Binding: 0})
	assert.False(t, ok)

	assert.Equal(t, []ResourceKey{
		{Stage: spirv.ExecutionModelVertex, Set: 0, Binding: 0},
		{Stage: fs, Set: 0, Binding: 2},
	}, o.Unused())
	assert.True(t, o.Used(ResourceKey{Stage: fs, Set: 1, Binding: 0}))

	o.ResetUsage()
	assert.Len(t, o.Unused(), 3)
	assert.Equal(t, ResourceKey{Stage: spirv.ExecutionModelVertex}, o.Keys()[0])
}

func TestNilOverrides(t *testing.T) {
	var o *Overrides[string]
	_, ok := o.Lookup(ResourceKey{})
	assert.False(t, ok)
	assert.Zero(t, o.Len())
	assert.Empty(t, o.Unused())
	assert.False(t, o.Used(ResourceKey{}))
}

func TestResourceKeyString(t *testing.T) {
	k := ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 2, Binding: 4}
	assert.Equal(t, "Fragment set=2 binding=4", k.String())
	k = ResourceKey{Stage: spirv.ExecutionModelVertex, Set: PushConstantSet}
	assert.Equal(t, "Vertex push constants", k.String())
}

func TestAllocator(t *testing.T) {
	a := NewAllocator()
	require.NoError(t, a.Claim("texture", 0, 2, 1))
	require.NoError(t, a.Claim("texture", 4, 1, 3))
	require.NoError(t, a.Claim("texture", 1, 1, 1), "a variable may reclaim its own slot")

	err := a.Claim("texture", 1, 1, 2)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding))
	require.NoError(t, a.Claim("sampler", 1, 1, 2), "spaces are independent")

	assert.Equal(t, uint32(2), a.Next("texture", 1, 5))
	assert.Equal(t, uint32(5), a.Next("texture", 2, 6), "runs skip claimed slots")
	assert.Equal(t, uint32(7), a.Next("texture", 0, 7), "zero counts take one slot")

	owner, ok := a.Owner("texture", 4)
	require.True(t, ok)
	assert.Equal(t, ir.ID(3), owner)
	_, ok = a.Owner("buffer", 0)
	assert.False(t, ok)
}

func TestResourceKinds(t *testing.T) {
	assert.True(t, ResourcePushConstant.IsBuffer())
	assert.False(t, ResourceSampledImage.IsBuffer())
	assert.Equal(t, "combined image sampler", ResourceCombinedImageSampler.String())
	assert.Equal(t, "ResourceKind(0)", ResourceKind(0).String())
	text, err := ResourceStorageBuffer.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "storage buffer", string(text))
}

func TestResources(t *testing.T) {
	m, err := parser.Parse(testshaders.ArgumentBuffers())
	require.NoError(t, err)
	all := make([]ir.ID, 0, len(m.GlobalOrder))
	for _, id := range m.GlobalOrder {
		if m.KindOf(id) == ir.KindVariable {
			all = append(all, id)
		}
	}

	res := Resources(m, all)
	require.Len(t, res, 5)
	type row struct {
		name     string
		kind     ResourceKind
		set, bnd uint32
		readOnly bool
	}
	var got []row
	for _, r := range res {
		got = append(got, row{r.Name, r.Kind, r.Set, r.Binding, r.ReadOnly})
	}
	assert.Equal(t, []row{
		{"params", ResourceUniformBuffer, 0, 0, true},
		{"tex", ResourceSampledImage, 0, 1, true},
		{"samp", ResourceSampler, 0, 2, true},
		{"extra", ResourceStorageBuffer, 1, 0, true},
		{"detail", ResourceSampledImage, 1, 3, true},
	}, got)
}

func TestPushConstantResource(t *testing.T) {
	m, err := parser.Parse(testshaders.PushConstants())
	require.NoError(t, err)
	var push ir.ID
	for _, id := range m.GlobalOrder {
		if m.KindOf(id) == ir.KindVariable && m.Name(id) == "push" {
			push = id
		}
	}
	r, ok := ClassifyResource(m, push)
	require.True(t, ok)
	assert.Equal(t, ResourcePushConstant, r.Kind)
	assert.Equal(t, PushConstantSet, r.Set)
	assert.Equal(t, uint32(1), r.Count)
	assert.Equal(t, ResourceKey{Stage: spirv.ExecutionModelFragment, Set: PushConstantSet}, r.Key(spirv.ExecutionModelFragment))
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cmd/spvcross/internal/config"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/msl"
	"github.com/gogpu/spvcross/spirv"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const optionsTOML = `
[hlsl]
shader_model = "6.0"
flip_vertex_y = true

[msl]
version = "2.3"
platform = "ios"
argument_buffers = true
discrete_descriptor_sets = [2]
swizzle_texture_samples = true
swizzle_buffer_index = 11
vertex_index_type = "uint16"
`

const tablesYAML = `
bindings:
  - {stage: frag, set: 0, binding: 1, hlsl: {register: 4, space: 1}, msl: {buffer: 3}}
  - {stage: Vertex, set: 1, binding: 0, msl: {texture: 2}}
rootConstants:
  - {start: 0, end: 16, binding: 0, space: 0}
constexprSamplers:
  - stage: frag
    set: 0
    binding: 2
    sampler: {minFilter: linear, magFilter: linear, sAddress: repeat}
dynamicOffsets:
  - {stage: comp, set: 0, binding: 3, index: 1}
semantics:
  0: POSITION
`

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "opts.toml", optionsTOML), writeFile(t, "tables.yaml", tablesYAML))
	require.NoError(t, err)

	h := cfg.HLSLOptions(logr.Discard())
	assert.Equal(t, hlsl.ShaderModel6_0, h.ShaderModel)
	assert.True(t, h.FlipVertexY)
	target, ok := h.Bindings.Lookup(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 1})
	require.True(t, ok)
	assert.Equal(t, hlsl.BindTarget{Register: 4, Space: 1}, target)
	assert.Equal(t, 1, h.Bindings.Len(), "bindings without an hlsl target are skipped")
	assert.Equal(t, []hlsl.RootConstant{{Start: 0, End: 16}}, h.RootConstants)
	assert.Equal(t, map[uint32]string{0: "POSITION"}, h.Semantics)

	m := cfg.MSLOptions(logr.Discard())
	assert.Equal(t, msl.Version2_3, m.Version)
	assert.Equal(t, msl.PlatformIOS, m.Platform)
	assert.True(t, m.ArgumentBuffers)
	assert.Equal(t, []uint32{2}, m.DiscreteDescriptorSets)
	assert.True(t, m.SwizzleTextureSamples)
	assert.Equal(t, uint32(11), m.SwizzleBufferIndex)
	assert.Equal(t, msl.IndexTypeUInt16, m.VertexIndexType)
	assert.Equal(t, 2, m.Bindings.Len())
	tex, ok := m.Bindings.Lookup(cross.ResourceKey{Stage: spirv.ExecutionModelVertex, Set: 1, Binding: 0})
	require.True(t, ok)
	assert.Equal(t, uint32(2), tex.Texture)
	s, ok := m.ConstexprSamplers.Lookup(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 2})
	require.True(t, ok)
	assert.Equal(t, msl.FilterLinear, s.MinFilter)
	assert.Equal(t, msl.AddressRepeat, s.SAddress)
	idx, ok := m.DynamicOffsets.Lookup(cross.ResourceKey{Stage: spirv.ExecutionModelGLCompute, Set: 0, Binding: 3})
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx)
	// Defaults survive keys the file leaves out.
	assert.Equal(t, uint32(4096), m.TexelBufferTextureWidth)
}

func TestOptionsAreIndependent(t *testing.T) {
	cfg, err := config.Load("", writeFile(t, "tables.yaml", tablesYAML))
	require.NoError(t, err)
	key := cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 1}

	a := cfg.HLSLOptions(logr.Discard())
	_, _ = a.Bindings.Lookup(key)
	b := cfg.HLSLOptions(logr.Discard())
	assert.True(t, a.Bindings.Used(key))
	assert.False(t, b.Bindings.Used(key))

	a.RootConstants[0].End = 64
	assert.Equal(t, uint32(16), cfg.Tables.RootConstants[0].End)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, hlsl.ShaderModel5_1, cfg.File.HLSL.ShaderModel)
	assert.Equal(t, msl.Version2_1, cfg.File.MSL.Version)

	cfg, err = config.Load("", writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Tables.Bindings)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(writeFile(t, "bad.toml", "[hlsl]\nshader_modle = \"6.0\"\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys hlsl.shader_modle")

	_, err = config.Load(writeFile(t, "bad.toml", "[msl]\nplatform = \"android\"\n"), "")
	assert.Error(t, err)

	_, err = config.Load("", writeFile(t, "bad.yaml", "bindings:\n  - {stage: pixel, set: 0, binding: 0}\n"))
	assert.Error(t, err)

	_, err = config.Load("", writeFile(t, "bad.yaml", "rootConstants:\n  - {start: 16, end: 16}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")

	_, err = config.Load("", writeFile(t, "bad.yaml", "samplers: []\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)
}

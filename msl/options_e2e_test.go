// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/msl"
)

func TestTextureSwizzle(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.SwizzleTextureSamples = true
	code, info := compile(t, testshaders.CombinedSampler(), opts)
	assert.Contains(t, code, "sampler ycbcrSmplr [[sampler(0)]], constant uint* spvSwizzleConstants [[buffer(30)]])")
	assert.Contains(t, code, "enum class spvSwizzle : uint")
	assert.Contains(t, code, "spvTextureSwizzle(ycbcr.sample(ycbcrSmplr, uv), spvSwizzleConstants[0])")
	assert.True(t, info.NeedsSwizzleBuffer)
	assert.True(t, info.UsedFeatures.Has(msl.FeatureTextureSwizzle))

	code, info = compile(t, testshaders.CombinedSampler(), nil)
	assert.NotContains(t, code, "spvSwizzle")
	assert.False(t, info.NeedsSwizzleBuffer)
}

func TestTextureSwizzleBufferIndex(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.SwizzleTextureSamples = true
	opts.SwizzleBufferIndex = 12
	code, _ := compile(t, testshaders.TextureVariants(), opts)
	assert.Contains(t, code, "constant uint* spvSwizzleConstants [[buffer(12)]]")
	assert.Contains(t, code, "spvTextureSwizzle(tex.sample(texSmplr, ")
	assert.Contains(t, code, "spvTextureSwizzle(tex.read(uint2(")
	assert.NotContains(t, code, "spvTextureSwizzle(shadow.sample_compare(")
}

func TestTextureSwizzleInArgumentBuffer(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.SwizzleTextureSamples = true
	opts.ArgumentBuffers = true
	err := compileErr(t, testshaders.CombinedSampler(), opts)
	assert.Contains(t, err.Error(), "argument buffer")
}

func TestMultiviewVertex(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Multiview = true
	code, info := compile(t, testshaders.MultiviewVertex(), opts)
	assert.Contains(t, code, "constant uint* spvViewMask [[buffer(24)]]")
	assert.Contains(t, code, "uint spvInstanceIndex [[instance_id]]")
	assert.Contains(t, code, "uint spvBaseInstance [[base_instance]]")
	assert.Contains(t, code, "uint gl_ViewIndex = uint(spvViewMask[0] + (spvInstanceIndex - spvBaseInstance) % spvViewMask[1]);")
	assert.Contains(t, code, "int gl_InstanceIndex = int((spvInstanceIndex - spvBaseInstance) / spvViewMask[1] + spvBaseInstance);")
	assert.Contains(t, code, "uint gl_Layer [[render_target_array_index]];")
	assert.Contains(t, code, "out.gl_Layer = spvViewMask[0] + (spvInstanceIndex - spvBaseInstance) % spvViewMask[1];")
	assert.True(t, info.NeedsViewMaskBuffer)
	assert.True(t, info.UsedFeatures.Has(msl.FeatureMultiview))
}

func TestMultiviewBaseIndexZero(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Multiview = true
	opts.EnableBaseIndexZero = true
	code, _ := compile(t, testshaders.MultiviewVertex(), opts)
	assert.Contains(t, code, "uint gl_ViewIndex = uint(spvViewMask[0] + spvInstanceIndex % spvViewMask[1]);")
	assert.NotContains(t, code, "base_instance")
}

func TestViewIndexWithoutMultiview(t *testing.T) {
	code, info := compile(t, testshaders.MultiviewVertex(), nil)
	assert.Contains(t, code, "uint gl_ViewIndex = uint(0u);")
	assert.NotContains(t, code, "spvViewMask")
	assert.False(t, info.NeedsViewMaskBuffer)
}

func TestMultiviewFragment(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Multiview = true
	err := compileErr(t, testshaders.ViewIndexFragment(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)

	opts.Version = msl.Version2_2
	code, info := compile(t, testshaders.ViewIndexFragment(), opts)
	assert.Contains(t, code, "uint gl_Layer [[render_target_array_index]]")
	assert.Contains(t, code, "uint gl_ViewIndex = uint(gl_Layer);")
	assert.False(t, info.NeedsViewMaskBuffer)
}

func TestDispatchBase(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.DispatchBase = true
	code, info := compile(t, testshaders.DispatchIDs(), opts)
	assert.Contains(t, code, "uint3 spvDispatchBase [[grid_origin]]")
	assert.Contains(t, code, "gl_GlobalInvocationID += uint3(spvDispatchBase * uint3(8, 4, 1));")
	assert.Contains(t, code, "gl_WorkGroupID += uint3(spvDispatchBase);")
	assert.False(t, info.NeedsDispatchBaseBuffer)

	opts.Version = msl.Version1_1
	code, info = compile(t, testshaders.DispatchIDs(), opts)
	assert.Contains(t, code, "constant uint3& spvDispatchBase [[buffer(29)]]")
	assert.NotContains(t, code, "grid_origin")
	assert.True(t, info.NeedsDispatchBaseBuffer)

	code, _ = compile(t, testshaders.DispatchIDs(), nil)
	assert.NotContains(t, code, "spvDispatchBase")
}

func TestVertexForTessellation(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.VertexForTessellation = true
	code, info := compile(t, testshaders.VertexPassthrough(), opts)
	assert.Contains(t, code, "kernel void main0(main0_in in [[stage_in]], device main0_out* spvOut [[buffer(28)]], "+
		"uint3 gl_GlobalInvocationID [[thread_position_in_grid]], uint3 spvStageInputSize [[grid_size]])")
	assert.Contains(t, code, "struct main0_out\n{\n    float4 gl_Position;\n};")
	assert.Contains(t, code, "    if (any(gl_GlobalInvocationID >= spvStageInputSize))\n    {\n        return;\n    }\n")
	assert.Contains(t, code, "device main0_out& out = spvOut[gl_GlobalInvocationID.y * spvStageInputSize.x + gl_GlobalInvocationID.x];")
	assert.Contains(t, code, "out.gl_Position = gl_Position;\n}")
	assert.NotContains(t, code, "return out;")
	assert.True(t, info.NeedsOutputBuffer)
	assert.False(t, info.NeedsIndexBuffer)
	assert.True(t, info.UsedFeatures.Has(msl.FeatureTessellation))
}

func TestVertexForTessellationIndexed(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.VertexForTessellation = true
	opts.VertexIndexType = msl.IndexTypeUInt16
	opts.ShaderIndexBufferIndex = 7
	code, info := compile(t, testshaders.DrawParameters(), opts)
	assert.Contains(t, code, "const device ushort* spvIndices [[buffer(7)]]")
	assert.Contains(t, code, "uint3 spvStageInputOrigin [[stage_in_origin]]")
	assert.Contains(t, code, "int gl_VertexIndex = int(spvIndices[gl_GlobalInvocationID.x]);")
	assert.Contains(t, code, "int gl_InstanceIndex = int(spvStageInputOrigin.y + gl_GlobalInvocationID.y);")
	assert.NotContains(t, code, "[[vertex_id]]")
	assert.True(t, info.NeedsIndexBuffer)
}

func TestVertexForTessellationErrors(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.VertexForTessellation = true
	opts.Version = msl.Version1_1
	err := compileErr(t, testshaders.VertexPassthrough(), opts)
	assert.Contains(t, err.Error(), "requires MSL 1.2")

	opts.Version = msl.Version2_1
	opts.Multiview = true
	err = compileErr(t, testshaders.VertexPassthrough(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
}

func TestEmulateCubeArray(t *testing.T) {
	code, _ := compile(t, testshaders.CubeArray(), nil)
	assert.Contains(t, code, "texturecube_array<float> sky [[texture(0)]]")

	opts := msl.DefaultOptions()
	opts.EmulateCubeArray = true
	code, _ = compile(t, testshaders.CubeArray(), opts)
	face := "spvCubemapTo2DArrayFace(dir.xyz)"
	layer := "uint(" + face + ".z) + uint(round(dir.w)) * 6u"
	assert.Contains(t, code, "texture2d_array<float> sky [[texture(0)]]")
	assert.Contains(t, code, "inline float3 spvCubemapTo2DArrayFace(float3 p)")
	assert.Contains(t, code, "sky.sample(skySmplr, "+face+".xy, "+layer+")")
	assert.Contains(t, code, "sky.gather(skySmplr, "+face+".xy, "+layer+", int2(0), component::y)")
	assert.Contains(t, code, "sky.get_array_size() / 6")
	assert.NotContains(t, code, "texturecube")
}

func TestArrayedSubpassInput(t *testing.T) {
	code, _ := compile(t, testshaders.SubpassInput(), nil)
	assert.Contains(t, code, "albedo.read(uint2(gl_FragCoord.xy))")

	opts := msl.DefaultOptions()
	opts.ArrayedSubpassInput = true
	err := compileErr(t, testshaders.SubpassInput(), opts)
	assert.Contains(t, err.Error(), "requires MSL 2.2")

	opts.Version = msl.Version2_2
	code, _ = compile(t, testshaders.SubpassInput(), opts)
	assert.Contains(t, code, "texture2d_array<float")
	assert.Contains(t, code, "uint gl_Layer [[render_target_array_index]]")
	assert.Contains(t, code, "albedo.read(uint2(gl_FragCoord.xy), gl_Layer)")
}

func TestFeatureOptionsDecode(t *testing.T) {
	opts := msl.DefaultOptions()
	require.NoError(t, opts.VertexIndexType.UnmarshalText([]byte("uint32")))
	assert.Equal(t, msl.IndexTypeUInt32, opts.VertexIndexType)
	assert.Equal(t, uint32(30), opts.SwizzleBufferIndex)
	assert.Equal(t, uint32(24), opts.ViewMaskBufferIndex)
	assert.Equal(t, uint32(21), opts.ShaderIndexBufferIndex)
}

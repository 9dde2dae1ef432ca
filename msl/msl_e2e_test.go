// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/msl"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

func parse(t *testing.T, words []uint32) *ir.Module {
	t.Helper()
	m, err := parser.Parse(words)
	require.NoError(t, err)
	return m
}

// compile translates words with opts, or the defaults when opts is nil.
func compile(t *testing.T, words []uint32, opts *msl.Options) (string, *msl.TranslationInfo) {
	t.Helper()
	code, info, err := msl.Compile(parse(t, words), opts)
	require.NoError(t, err)
	return code, info
}

func compileErr(t *testing.T, words []uint32, opts *msl.Options) error {
	t.Helper()
	_, _, err := msl.Compile(parse(t, words), opts)
	require.Error(t, err)
	return err
}

func TestVertexPassthrough(t *testing.T) {
	code, info := compile(t, testshaders.VertexPassthrough(), nil)

	assert.True(t, strings.HasPrefix(code, "#include <metal_stdlib>\n#include <simd/simd.h>\n"))
	assert.Contains(t, code, "using namespace metal;")
	assert.Contains(t, code, "struct main0_in\n{\n    float4 v [[attribute(0)]];\n};")
	assert.Contains(t, code, "struct main0_out\n{\n    float4 gl_Position [[position]];\n};")
	assert.Contains(t, code, "vertex main0_out main0(main0_in in [[stage_in]])")
	assert.Contains(t, code, "float4 v = in.v;")
	assert.Contains(t, code, "main0_out out = {};")
	assert.Contains(t, code, "    float4 gl_Position;\n    gl_Position = v;\n    out.gl_Position = gl_Position;\n    return out;\n}")
	assert.Equal(t, "main0", info.EntryPointName)
	assert.Equal(t, []uint32{0}, info.InputLocations)
}

func TestFlipVertexY(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.FlipVertexY = true
	code, _ := compile(t, testshaders.VertexPassthrough(), opts)
	assert.Contains(t, code, "out.gl_Position.y = -(out.gl_Position.y);")
}

func TestUnknownEntryPoint(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.EntryPoint = "missing"
	err := compileErr(t, testshaders.VertexPassthrough(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrUnknownID), "got %v", err)
}

func TestIsLocationUsed(t *testing.T) {
	c, err := msl.NewCompiler(parse(t, testshaders.VertexPassthrough()), nil)
	require.NoError(t, err)
	assert.False(t, c.IsLocationUsed(false, 0), "nothing is used before Compile")
	_, err = c.Compile()
	require.NoError(t, err)
	assert.True(t, c.IsLocationUsed(false, 0))
	assert.False(t, c.IsLocationUsed(false, 1))
	assert.False(t, c.IsLocationUsed(true, 0))
}

func TestDiscreteResources(t *testing.T) {
	code, info := compile(t, testshaders.CombinedSampler(), nil)
	assert.Contains(t, code, "fragment main0_out main0(main0_in in [[stage_in]], texture2d<float> ycbcr [[texture(0)]], sampler ycbcrSmplr [[sampler(0)]])")
	assert.Contains(t, code, "ycbcr.sample(ycbcrSmplr, ")
	assert.Contains(t, code, "float4 FragColor [[color(0)]];")
	assert.Equal(t, "[[texture(0)]]", info.ResourceBindings["ycbcr"])
	assert.Len(t, info.AutomaticBindings, 1)
}

func TestReadonlyStorageBuffer(t *testing.T) {
	code, _ := compile(t, testshaders.ReadonlySSBO(), nil)
	assert.Contains(t, code, "const device Data& data [[buffer(0)]]")
	assert.Contains(t, code, "data.color")
}

func TestBindingOverride(t *testing.T) {
	opts := msl.DefaultOptions()
	key := cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 1}
	opts.Bindings.Set(key, msl.BindTarget{Buffer: 5})
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 3, Binding: 3}, msl.BindTarget{Buffer: 6})
	code, info := compile(t, testshaders.ReadonlySSBO(), opts)
	assert.Contains(t, code, "const device Data& data [[buffer(5)]]")
	assert.Empty(t, info.AutomaticBindings)
	assert.Equal(t, []cross.ResourceKey{{Stage: spirv.ExecutionModelFragment, Set: 3, Binding: 3}}, info.UnusedBindings)
}

func TestBindingOrderIndependent(t *testing.T) {
	frag := spirv.ExecutionModelFragment
	overrides := []struct {
		key    cross.ResourceKey
		target msl.BindTarget
	}{
		{cross.ResourceKey{Stage: frag, Set: 3, Binding: 3}, msl.BindTarget{Buffer: 6}},
		{cross.ResourceKey{Stage: frag, Set: 0, Binding: 1}, msl.BindTarget{Buffer: 5}},
		{cross.ResourceKey{Stage: frag, Set: 2, Binding: 0}, msl.BindTarget{Buffer: 7}},
	}
	forward, backward := msl.DefaultOptions(), msl.DefaultOptions()
	for i := range overrides {
		forward.Bindings.Set(overrides[i].key, overrides[i].target)
		j := len(overrides) - 1 - i
		backward.Bindings.Set(overrides[j].key, overrides[j].target)
	}
	code1, info1 := compile(t, testshaders.ReadonlySSBO(), forward)
	code2, info2 := compile(t, testshaders.ReadonlySSBO(), backward)

	assert.Equal(t, code1, code2)
	assert.Contains(t, code1, "[[buffer(5)]]")
	assert.Equal(t, []cross.ResourceKey{
		{Stage: frag, Set: 2, Binding: 0},
		{Stage: frag, Set: 3, Binding: 3},
	}, info1.UnusedBindings)
	assert.Equal(t, info1.UnusedBindings, info2.UnusedBindings)
}

func TestBindingConflict(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelGLCompute, Set: 0, Binding: 0},
		msl.BindTarget{Buffer: 23})
	opts.DynamicOffsets.Set(cross.ResourceKey{Stage: spirv.ExecutionModelGLCompute, Set: 0, Binding: 1}, 0)
	err := compileErr(t, testshaders.DynamicOffsets(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding), "got %v", err)
}

func TestArgumentBuffers(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Version = msl.Version2_0
	opts.ArgumentBuffers = true
	opts.PadArgumentBufferResources = true
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 1, Binding: 0}, msl.BindTarget{Buffer: 0})
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 1, Binding: 3}, msl.BindTarget{Texture: 3})
	code, info := compile(t, testshaders.ArgumentBuffers(), opts)

	assert.Contains(t, code, "struct spvDescriptorSetBuffer0\n{")
	assert.Contains(t, code, "struct spvDescriptorSetBuffer1\n{")
	assert.Contains(t, code, "const device Extra* extra [[id(0)]];")
	assert.Contains(t, code, "array<texture2d<float>, 2> _m1_pad [[id(1)]];")
	assert.Contains(t, code, "texture2d<float> detail [[id(3)]];")
	assert.Contains(t, code, "constant spvDescriptorSetBuffer0& spvDescriptorSet0 [[buffer(0)]]")
	assert.Contains(t, code, "constant spvDescriptorSetBuffer1& spvDescriptorSet1 [[buffer(1)]]")
	assert.Contains(t, code, "spvDescriptorSet1.detail.sample(")
	assert.Contains(t, code, "(*spvDescriptorSet1.extra).bias")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureArgumentBuffers))
	assert.Equal(t, map[uint32]uint32{0: 0, 1: 1}, info.ArgumentBufferIndices)
	assert.Equal(t, "[[id(3)]]", info.ResourceBindings["detail"])
}

func TestArgumentBuffersDiscreteSet(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.ArgumentBuffers = true
	opts.DiscreteDescriptorSets = []uint32{1}
	code, info := compile(t, testshaders.ArgumentBuffers(), opts)
	assert.Contains(t, code, "struct spvDescriptorSetBuffer0")
	assert.NotContains(t, code, "struct spvDescriptorSetBuffer1")
	assert.Contains(t, code, "const device Extra& extra [[buffer(")
	assert.Equal(t, map[uint32]uint32{0: 0}, info.ArgumentBufferIndices)
}

func TestConstexprSampler(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.ConstexprSamplers.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 0}, msl.ConstexprSampler{
		MinFilter: msl.FilterLinear,
		MagFilter: msl.FilterLinear,
		SAddress:  msl.AddressRepeat,
		TAddress:  msl.AddressRepeat,
		RAddress:  msl.AddressRepeat,
	})
	code, info := compile(t, testshaders.CombinedSampler(), opts)
	assert.Contains(t, code, "constexpr sampler ycbcrSmplr(filter::linear, address::repeat);")
	assert.NotContains(t, code, "[[sampler(")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureConstexprSamplers))
}

func TestYCbCrConversion(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.ConstexprSamplers.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 0}, msl.ConstexprSampler{
		MinFilter:             msl.FilterLinear,
		MagFilter:             msl.FilterLinear,
		YCbCrConversionEnable: true,
		Planes:                2,
		Resolution:            msl.Resolution420,
		YCbCrModel:            msl.ModelBT709,
		YCbCrRange:            msl.RangeITUNarrow,
	})
	code, info := compile(t, testshaders.CombinedSampler(), opts)

	assert.Contains(t, code, "texture2d<float> ycbcr [[texture(0)]]")
	assert.Contains(t, code, "texture2d<float> ycbcrPlane1 [[texture(1)]]")
	assert.Contains(t, code, "constexpr sampler ycbcrSmplr(filter::linear);")
	assert.Contains(t, code, ".g = ycbcr.sample(ycbcrSmplr, uv).r;")
	assert.Contains(t, code, ".br = ycbcrPlane1.sample(ycbcrSmplr, uv + float2(0.25, 0.25) / float2(ycbcrPlane1.get_width(), ycbcrPlane1.get_height())).rg;")
	assert.Contains(t, code, ".rgb = float3(")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureYCbCr))
}

func TestYCbCrMidpointChroma(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.ConstexprSamplers.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 0}, msl.ConstexprSampler{
		YCbCrConversionEnable: true,
		Planes:                3,
		Resolution:            msl.Resolution422,
		XChromaOffset:         msl.ChromaMidpoint,
		YCbCrModel:            msl.ModelYCbCrIdentity,
	})
	code, _ := compile(t, testshaders.CombinedSampler(), opts)
	assert.Contains(t, code, "texture2d<float> ycbcrPlane2 [[texture(2)]]")
	assert.Contains(t, code, ".b = ycbcrPlane1.sample(ycbcrSmplr, uv).r;")
	assert.Contains(t, code, ".r = ycbcrPlane2.sample(ycbcrSmplr, uv).r;")
	assert.Contains(t, code, ".rb -= ", "full range centers chroma")
	assert.NotContains(t, code, ".rgb = float3(", "the identity model applies no matrix")
}

func TestLoopPhi(t *testing.T) {
	code, _ := compile(t, testshaders.LoopPhi(), nil)
	assert.Contains(t, code, "int i = 0;")
	assert.Contains(t, code, "float sum = 0.0;")
	assert.Equal(t, 1, strings.Count(code, "int i = "), "the phi is declared once\n%s", code)
	assert.Equal(t, 1, strings.Count(code, "float sum = "), "the phi is declared once\n%s", code)
	assert.Contains(t, code, "result = sum;")
}

func TestPushConstants(t *testing.T) {
	code, _ := compile(t, testshaders.PushConstants(), nil)
	assert.Contains(t, code, "struct Push\n{")
	assert.Contains(t, code, "constant Push& push [[buffer(0)]]")
	assert.Contains(t, code, "push.scale")
}

func TestMatrixVertexInput(t *testing.T) {
	code, _ := compile(t, testshaders.MatrixInput(), nil)
	for i, attr := range []string{"0", "1", "2", "3"} {
		assert.Contains(t, code, "float4 mvp_"+attr+" [[attribute("+attr+")]];", "column %d", i)
	}
	assert.Contains(t, code, "float4 pos [[attribute(4)]];")
	assert.Contains(t, code, "mvp[0] = in.mvp_0;")
	assert.Contains(t, code, "mvp[3] = in.mvp_3;")
}

func TestSampleMask(t *testing.T) {
	code, _ := compile(t, testshaders.SampleMask(), nil)
	assert.Contains(t, code, "[[sample_mask]]")
	assert.Contains(t, code, "uint gl_SampleMask [[sample_mask]];")
	assert.Contains(t, code, "out.gl_SampleMask = uint(gl_SampleMask[0]);")
	assert.NotContains(t, code, "&=")

	opts := msl.DefaultOptions()
	opts.AdditionalFixedSampleMask = 0x3
	code, _ = compile(t, testshaders.SampleMask(), opts)
	assert.Contains(t, code, "gl_SampleMaskIn[0] &= int(0x3u);")
	assert.Contains(t, code, "out.gl_SampleMask &= 0x3u;")
}

func TestFixedSampleMaskWithoutOutput(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.AdditionalFixedSampleMask = 0x1
	code, _ := compile(t, testshaders.LoopPhi(), opts)
	assert.Contains(t, code, "uint gl_SampleMask [[sample_mask]];")
	assert.Contains(t, code, "out.gl_SampleMask = 0x1u;")
}

func TestArrayCopyNesting(t *testing.T) {
	for depth := 1; depth <= 6; depth++ {
		code, _ := compile(t, testshaders.ArrayCopy(depth), nil)
		name := "spvArrayCopyFromThreadGroupToStack" + string(rune('0'+depth))
		assert.Contains(t, code, name+"(local_copy, shared_data);", "depth %d", depth)
		assert.Contains(t, code, "inline void "+name+"(", "depth %d", depth)
		assert.Contains(t, code, "threadgroup float shared_data", "depth %d", depth)
	}
	err := compileErr(t, testshaders.ArrayCopy(7), nil)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedArrayNesting), "got %v", err)
}

func TestSwitchFallthrough(t *testing.T) {
	code, _ := compile(t, testshaders.SwitchFallthrough(), nil)
	assert.Contains(t, code, "switch (")
	assert.Contains(t, code, "case 0:")
	assert.Contains(t, code, "case 1:")
	assert.Contains(t, code, "[[user(locn0), flat]]")
}

func TestSpecConstant(t *testing.T) {
	code, info := compile(t, testshaders.SpecConstant(), nil)
	assert.Contains(t, code, "constant float scale_tmp [[function_constant(3)]];")
	assert.Contains(t, code, "constant float scale = is_function_constant_defined(scale_tmp) ? scale_tmp : 2.0;")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureFunctionConstants))
}

func TestSubgroupReduce(t *testing.T) {
	code, info := compile(t, testshaders.Subgroup(), nil)
	assert.Contains(t, code, "simd_sum(")
	assert.Contains(t, code, "uint gl_SubgroupSize [[thread_execution_width]]")
	assert.Contains(t, code, "kernel void main0(")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureSimdGroup))
	assert.Equal(t, [3]uint32{64, 1, 1}, info.WorkgroupSize)
}

func TestSubgroupQuadFallbackOnIOS(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Platform = msl.PlatformIOS
	code, info := compile(t, testshaders.Subgroup(), opts)
	assert.Contains(t, code, "quad_sum(")
	assert.NotContains(t, code, "simd_sum(")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureQuadGroup))

	opts.IOSUseSimdgroupFunctions = true
	opts.Version = msl.Version2_2
	code, _ = compile(t, testshaders.Subgroup(), opts)
	assert.Contains(t, code, "simd_sum(")
}

func TestSubgroupVersionGate(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Version = msl.Version1_2
	err := compileErr(t, testshaders.Subgroup(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
}

func TestEmulatedSubgroups(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Version = msl.Version1_2
	opts.EmulateSubgroups = true
	code, _ := compile(t, testshaders.Subgroup(), opts)
	assert.NotContains(t, code, "simd_")
	assert.Contains(t, code, "uint gl_SubgroupSize = uint(1u);")
}

func TestQuadOperations(t *testing.T) {
	code, info := compile(t, testshaders.Quad(), nil)
	assert.Contains(t, code, "quad_broadcast(")
	assert.Contains(t, code, ", 0u)")
	assert.Contains(t, code, "quad_shuffle_xor(")
	assert.Contains(t, code, ", 1u)")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureQuadGroup))
}

func TestTessellationControl(t *testing.T) {
	code, info := compile(t, testshaders.TessControl(), nil)
	assert.Contains(t, code, "kernel void main0(")
	assert.Contains(t, code, "uint gl_InvocationID_in [[thread_index_in_threadgroup]]")
	assert.Contains(t, code, "uint gl_PrimitiveID [[threadgroup_position_in_grid]]")
	assert.Contains(t, code, "constant uint* spvIndirectParams [[buffer(29)]]")
	assert.Contains(t, code, "device main0_out* spvOut [[buffer(28)]]")
	assert.Contains(t, code, "device MTLTriangleTessellationFactorsHalf* spvTessLevel [[buffer(26)]]")
	assert.Contains(t, code, "device main0_in* spvIn [[buffer(22)]]")
	assert.Contains(t, code, "device main0_out* gl_out = &spvOut[gl_PrimitiveID * 3];")
	assert.Contains(t, code, "device main0_in* gl_in = &spvIn[gl_PrimitiveID * spvIndirectParams[0]];")
	assert.Regexp(t, `gl_out\[(gl_InvocationID|_\d+)\]\.gl_Position = `, code)
	assert.Contains(t, code, "spvTessLevel[gl_PrimitiveID].edgeTessellationFactor[0] = half(1.0);")
	assert.Contains(t, code, "spvTessLevel[gl_PrimitiveID].edgeTessellationFactor[2] = half(1.0);")
	assert.Contains(t, code, "spvTessLevel[gl_PrimitiveID].insideTessellationFactor = half(1.0);")
	assert.NotContains(t, code, "return out;")
	assert.True(t, info.NeedsIndirectParamsBuffer)
	assert.True(t, info.NeedsOutputBuffer)
	assert.True(t, info.NeedsTessFactorBuffer)
	assert.True(t, info.NeedsInputBuffer)
	assert.False(t, info.NeedsPatchOutputBuffer)
	assert.True(t, info.UsedFeatures.Has(msl.FeatureTessellation))
}

func TestTessellationControlMultiPatch(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.MultiPatchWorkgroup = true
	code, _ := compile(t, testshaders.TessControl(), opts)
	assert.Contains(t, code, "uint3 gl_GlobalInvocationID [[thread_position_in_grid]]")
	assert.Contains(t, code, "uint gl_InvocationID_in = gl_GlobalInvocationID.x % 3;")
	assert.Contains(t, code, "uint gl_PrimitiveID = min(gl_GlobalInvocationID.x / 3, spvIndirectParams[1] - 1);")
}

func TestTessellationEvaluation(t *testing.T) {
	code, info := compile(t, testshaders.TessEval(), nil)
	assert.Contains(t, code, "[[patch(triangle)]] vertex main0_out main0(main0_patchIn patchIn [[stage_in]]")
	assert.Contains(t, code, "float3 gl_TessCoord [[position_in_patch]]")
	assert.Contains(t, code, "struct main0_patchIn\n{")
	assert.Contains(t, code, "patch_control_point<main0_in> gl_in;")
	assert.Contains(t, code, "float4 vColor [[attribute(0)]];")
	assert.Contains(t, code, "patchIn.gl_in[0].gl_Position")
	assert.Contains(t, code, "patchIn.gl_in[0].vColor")
	assert.False(t, info.NeedsInputBuffer)
}

func TestTessellationEvaluationRawInput(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.RawBufferTeseInput = true
	code, info := compile(t, testshaders.TessEval(), opts)
	assert.Contains(t, code, "uint gl_PrimitiveID [[patch_id]]")
	assert.Contains(t, code, "const device main0_in* spvIn [[buffer(22)]]")
	assert.Contains(t, code, "const device main0_in* gl_in = &spvIn[gl_PrimitiveID * spvIndirectParams[0]];")
	assert.Contains(t, code, "gl_in[0].gl_Position")
	assert.NotContains(t, code, "[[stage_in]]")
	assert.True(t, info.NeedsInputBuffer)
	assert.True(t, info.NeedsIndirectParamsBuffer)
}

func TestDynamicOffsets(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.DynamicOffsets.Set(cross.ResourceKey{Stage: spirv.ExecutionModelGLCompute, Set: 0, Binding: 0}, 0)
	code, info := compile(t, testshaders.DynamicOffsets(), opts)
	assert.Contains(t, code, "constant uint* spvDynamicOffsets [[buffer(23)]]")
	assert.Contains(t, code, "device Data& data_base [[buffer(0)]]")
	assert.Contains(t, code, "device Data& data = *(device Data*)((device char*)&data_base + spvDynamicOffsets[0]);")
	assert.True(t, info.NeedsDynamicOffsetsBuffer)
}

func TestHelperInvocation(t *testing.T) {
	err := compileErr(t, testshaders.HelperInvocation(), nil)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
	assert.Contains(t, err.Error(), "2.3")

	opts := msl.DefaultOptions()
	opts.Version = msl.Version2_3
	code, info := compile(t, testshaders.HelperInvocation(), opts)
	assert.Contains(t, code, "simd_is_helper_thread()")
	assert.Contains(t, code, "discard_fragment();")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureHelperInvocation))
	assert.Equal(t, msl.Version2_3, info.RequiredVersion)
}

func TestManualHelperInvocationUpdates(t *testing.T) {
	opts := msl.DefaultOptions()
	opts.Version = msl.Version2_3
	opts.ManualHelperInvocationUpdates = true
	code, _ := compile(t, testshaders.HelperInvocation(), opts)
	assert.Contains(t, code, "bool gl_HelperInvocation = bool(simd_is_helper_thread());")
	assert.Contains(t, code, "gl_HelperInvocation = true;\n")
	assert.Less(t, strings.Index(code, "gl_HelperInvocation = true;"), strings.Index(code, "discard_fragment();"))
}

func TestDrawParameters(t *testing.T) {
	code, _ := compile(t, testshaders.DrawParameters(), nil)
	assert.Contains(t, code, "uint gl_VertexIndex_in [[vertex_id]]")
	assert.Contains(t, code, "uint gl_InstanceIndex_in [[instance_id]]")
	assert.Contains(t, code, "int gl_VertexIndex = int(gl_VertexIndex_in);")
}

func TestFunctionCall(t *testing.T) {
	code, _ := compile(t, testshaders.FunctionCall(), nil)
	assert.Contains(t, code, "static inline __attribute__((always_inline))\nfloat4 shade(float4 l, constant Material& material)")
	assert.Contains(t, code, "normalize(l)")
	assert.Contains(t, code, "shade(light, material)")
}

func TestTextureVariants(t *testing.T) {
	code, _ := compile(t, testshaders.TextureVariants(), nil)
	assert.Contains(t, code, "tex.sample(texSmplr, ")
	assert.Contains(t, code, ", level(0.0))")
	assert.Contains(t, code, "shadow.sample_compare(shadowSmplr, ")
	assert.Contains(t, code, ", 0.5)")
	assert.Contains(t, code, "depth2d<float> shadow [[texture(1)]]")
	assert.Contains(t, code, "tex.get_width(uint(0))")
	assert.Contains(t, code, "tex.get_height(uint(0))")
	assert.Contains(t, code, "tex.read(uint2(")
}

func TestStorageImage(t *testing.T) {
	code, _ := compile(t, testshaders.StorageImage(), nil)
	assert.Contains(t, code, "texture2d<float, access::read> src [[texture(0)]]")
	assert.Contains(t, code, "texture2d<float, access::write> dst [[texture(1)]]")
	assert.Contains(t, code, "src.read(uint2(")
	assert.Contains(t, code, "dst.write(")
	assert.NotContains(t, code, "fence()")
}

func TestAtomics(t *testing.T) {
	code, info := compile(t, testshaders.Atomics(), nil)
	assert.Contains(t, code, "atomic_fetch_add_explicit((threadgroup atomic_uint*)&local_count, 1u, memory_order_relaxed)")
	assert.Contains(t, code, "atomic_fetch_add_explicit((device atomic_uint*)&counter.count, ")
	assert.Contains(t, code, "threadgroup_barrier(mem_flags::mem_threadgroup);")
	assert.True(t, info.UsedFeatures.Has(msl.FeatureAtomics))
}

func TestRequiredVersion(t *testing.T) {
	_, info := compile(t, testshaders.VertexPassthrough(), nil)
	assert.False(t, info.RequiredVersion.AtLeast(msl.Version2_0))
	_, info = compile(t, testshaders.Subgroup(), nil)
	assert.True(t, info.RequiredVersion.AtLeast(msl.Version2_0))
}

func TestAllFixtures(t *testing.T) {
	for _, f := range testshaders.All() {
		t.Run(f.Name, func(t *testing.T) {
			_, _, err := msl.Compile(f.Module(), nil)
			if f.MSL {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

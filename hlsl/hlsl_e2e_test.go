// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
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
func compile(t *testing.T, words []uint32, opts *hlsl.Options) (string, *hlsl.TranslationInfo) {
	t.Helper()
	code, info, err := hlsl.Compile(parse(t, words), opts)
	require.NoError(t, err)
	return code, info
}

func compileErr(t *testing.T, words []uint32, opts *hlsl.Options) error {
	t.Helper()
	_, _, err := hlsl.Compile(parse(t, words), opts)
	require.Error(t, err)
	return err
}

func TestVertexPassthrough(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel5_0
	code, info := compile(t, testshaders.VertexPassthrough(), opts)

	assert.Contains(t, code, "struct SPIRV_Cross_Input")
	assert.Contains(t, code, "float4 v : TEXCOORD0;")
	assert.Contains(t, code, "float4 gl_Position : SV_Position;")
	assert.Contains(t, code, "SPIRV_Cross_Output main(SPIRV_Cross_Input stage_input)")
	assert.Contains(t, code, "v = stage_input.v;")
	assert.Contains(t, code, "void vert_main()\n{\n    gl_Position = v;\n}\n")
	assert.Contains(t, code, "vert_main();")
	assert.Contains(t, code, "stage_output.gl_Position = gl_Position;")
	assert.Equal(t, "main", info.EntryPointName)
	assert.Equal(t, []uint32{0}, info.InputLocations)
}

func TestEntryPointName(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.UseEntryPointName = true
	code, info := compile(t, testshaders.VertexPassthrough(), opts)
	assert.Equal(t, "main", info.EntryPointName)
	assert.Contains(t, code, "SPIRV_Cross_Output main(")

	opts = hlsl.DefaultOptions()
	opts.EntryPoint = "missing"
	err := compileErr(t, testshaders.VertexPassthrough(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrUnknownID), "got %v", err)
}

func TestNumWorkgroupsRemap(t *testing.T) {
	m := parse(t, testshaders.NumWorkgroups())
	c, err := hlsl.NewCompiler(m, nil)
	require.NoError(t, err)
	id, err := c.RemapNumWorkgroupsBuiltin()
	require.NoError(t, err)
	require.NotZero(t, id)
	st := m.Pointee(m.MustVariable(id).Type)
	assert.True(t, m.HasDecoration(st, spirv.DecorationBlock))
	off, ok := m.MemberDecoration(st, 0, spirv.DecorationOffset)
	assert.True(t, ok)
	assert.Zero(t, off)
	again, err := c.RemapNumWorkgroupsBuiltin()
	require.NoError(t, err)
	assert.Equal(t, id, again, "remapping twice returns the same variable")

	code, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, code, "cbuffer SPIRV_Cross_NumWorkgroups : register(b0, space0)")
	assert.Contains(t, code, "uint3 SPIRV_Cross_NumWorkgroups_count : packoffset(c0);")
	assert.Contains(t, code, "SPIRV_Cross_NumWorkgroups_count.x")
	assert.NotContains(t, code, "gl_NumWorkGroups")
	assert.Contains(t, code, "[numthreads(8, 1, 1)]")
	assert.Contains(t, code, "RWByteAddressBuffer _out : register(u0, space0);")

	info := c.Info()
	assert.Equal(t, id, info.NumWorkgroupsID)
	assert.True(t, info.UsedFeatures.Has(hlsl.FeatureNumWorkgroups))
}

func TestNumWorkgroupsRemapUnused(t *testing.T) {
	c, err := hlsl.NewCompiler(parse(t, testshaders.VertexPassthrough()), nil)
	require.NoError(t, err)
	id, err := c.RemapNumWorkgroupsBuiltin()
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestReadonlyStorageBuffer(t *testing.T) {
	code, _ := compile(t, testshaders.ReadonlySSBO(), nil)
	assert.Contains(t, code, "ByteAddressBuffer data : register(t0, space0);")
	assert.NotContains(t, code, "RWByteAddressBuffer")
	assert.Contains(t, code, "asfloat(data.Load4(0))")
	assert.Contains(t, code, "float4 FragColor : SV_Target0;")

	opts := hlsl.DefaultOptions()
	opts.ForceStorageBufferAsUAV = true
	code, _ = compile(t, testshaders.ReadonlySSBO(), opts)
	assert.Contains(t, code, "RWByteAddressBuffer data : register(u0, space0);")
}

func TestForceUAVByKey(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.ForceUAV = []cross.ResourceKey{{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 1}}
	code, _ := compile(t, testshaders.ReadonlySSBO(), opts)
	assert.Contains(t, code, "RWByteAddressBuffer data : register(u0, space0);")
}

func TestLoopPhi(t *testing.T) {
	code, _ := compile(t, testshaders.LoopPhi(), nil)
	assert.Contains(t, code, "int i = 0;")
	assert.Contains(t, code, "float sum = 0.0f;")
	assert.Equal(t, 1, strings.Count(code, "int i = "), "the phi is declared once\n%s", code)
	assert.Equal(t, 1, strings.Count(code, "float sum = "), "the phi is declared once\n%s", code)
	assert.Contains(t, code, "result = sum;")
}

func TestPushConstantsFlattened(t *testing.T) {
	code, _ := compile(t, testshaders.PushConstants(), nil)
	assert.Contains(t, code, "cbuffer Push : register(b0, space0)")
	assert.Contains(t, code, "float4 push_a : packoffset(c0);")
	assert.Contains(t, code, "float4 push_b : packoffset(c1);")
	assert.Contains(t, code, "float push_scale : packoffset(c2);")
}

func TestRootConstants(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.RootConstants = []hlsl.RootConstant{
		{Start: 0, End: 32, Binding: 1},
		{Start: 32, End: 36, Binding: 2},
	}
	code, _ := compile(t, testshaders.PushConstants(), opts)
	assert.Contains(t, code, "cbuffer SPIRV_CROSS_RootConstant_push0 : register(b1, space0)")
	assert.Contains(t, code, "cbuffer SPIRV_CROSS_RootConstant_push1 : register(b2, space0)")
	assert.Contains(t, code, "float push_scale : packoffset(c0);")
	assert.NotContains(t, code, "cbuffer Push")

	t.Run("misaligned", func(t *testing.T) {
		opts := hlsl.DefaultOptions()
		opts.RootConstants = []hlsl.RootConstant{{Start: 2, End: 36}}
		err := compileErr(t, testshaders.PushConstants(), opts)
		assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding), "got %v", err)
	})
	t.Run("uncovered member", func(t *testing.T) {
		opts := hlsl.DefaultOptions()
		opts.RootConstants = []hlsl.RootConstant{{Start: 0, End: 32}}
		err := compileErr(t, testshaders.PushConstants(), opts)
		assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding), "got %v", err)
	})
}

func TestMatrixVertexInput(t *testing.T) {
	code, info := compile(t, testshaders.MatrixInput(), nil)
	assert.Contains(t, code, "float4x4 mvp : TEXCOORD0;")
	assert.Contains(t, code, "float4 pos : TEXCOORD4;")
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, info.InputLocations)

	opts := hlsl.DefaultOptions()
	opts.FlattenMatrixVertexInputSemantics = true
	code, _ = compile(t, testshaders.MatrixInput(), opts)
	for i, sem := range []string{"TEXCOORD0", "TEXCOORD1", "TEXCOORD2", "TEXCOORD3"} {
		assert.Contains(t, code, "float4 mvp_"+string(rune('0'+i))+" : "+sem+";")
		assert.Contains(t, code, "mvp["+string(rune('0'+i))+"] = stage_input.mvp_"+string(rune('0'+i))+";")
	}
	assert.NotContains(t, code, "float4x4 mvp :")
}

func TestVertexSemanticRemap(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.Semantics = map[uint32]string{0: "POSITION"}
	code, _ := compile(t, testshaders.VertexPassthrough(), opts)
	assert.Contains(t, code, "float4 v : POSITION;")
}

func TestSubgroupNeedsShaderModel6(t *testing.T) {
	err := compileErr(t, testshaders.Subgroup(), nil)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)

	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel6_0
	code, info := compile(t, testshaders.Subgroup(), opts)
	assert.Contains(t, code, "WaveActiveSum(")
	assert.Contains(t, code, "WaveGetLaneCount()")
	assert.True(t, info.UsedFeatures.Has(hlsl.FeatureWaveOps))
	assert.Equal(t, hlsl.ShaderModel6_0, info.RequiredShaderModel)
}

func TestQuadOps(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel6_0
	code, _ := compile(t, testshaders.Quad(), opts)
	assert.Contains(t, code, "QuadReadLaneAt(")
	assert.Contains(t, code, "QuadReadAcrossX(")
}

func TestHelperInvocation(t *testing.T) {
	err := compileErr(t, testshaders.HelperInvocation(), nil)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)

	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel6_6
	code, _ := compile(t, testshaders.HelperInvocation(), opts)
	assert.Contains(t, code, "IsHelperLane()")
	assert.Contains(t, code, "discard;")
}

func TestConflictingBinding(t *testing.T) {
	opts := hlsl.DefaultOptions()
	target := hlsl.BindTarget{Space: 0, Register: 5}
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 0, Binding: 1}, target)
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 1, Binding: 3}, target)
	err := compileErr(t, testshaders.ArgumentBuffers(), opts)
	assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding), "got %v", err)
}

func TestBindingOverrides(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.Bindings.Set(cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 1, Binding: 3},
		hlsl.BindTarget{Space: 2, Register: 7})
	unused := cross.ResourceKey{Stage: spirv.ExecutionModelFragment, Set: 5, Binding: 5}
	opts.Bindings.Set(unused, hlsl.BindTarget{Register: 9})
	code, info := compile(t, testshaders.ArgumentBuffers(), opts)

	assert.Contains(t, code, "Texture2D<float4> detail : register(t7, space2);")
	assert.Contains(t, code, "Texture2D<float4> tex : register(t0, space0);")
	assert.Contains(t, code, "SamplerState samp : register(s0, space0);")
	assert.Contains(t, code, "ByteAddressBuffer extra : register(t0, space1);")
	assert.Equal(t, "register(t7, space2)", info.RegisterBindings["detail"])
	assert.Equal(t, []cross.ResourceKey{unused}, info.UnusedBindings)
	assert.NotEmpty(t, info.AutomaticBindings)
}

func TestBindingOrderIndependent(t *testing.T) {
	frag := spirv.ExecutionModelFragment
	overrides := []struct {
		key    cross.ResourceKey
		target hlsl.BindTarget
	}{
		{cross.ResourceKey{Stage: frag, Set: 1, Binding: 3}, hlsl.BindTarget{Space: 2, Register: 7}},
		{cross.ResourceKey{Stage: frag, Set: 0, Binding: 0}, hlsl.BindTarget{Space: 0, Register: 4}},
		{cross.ResourceKey{Stage: frag, Set: 9, Binding: 1}, hlsl.BindTarget{Register: 8}},
		{cross.ResourceKey{Stage: frag, Set: 5, Binding: 5}, hlsl.BindTarget{Register: 9}},
	}
	forward, backward := hlsl.DefaultOptions(), hlsl.DefaultOptions()
	for i := range overrides {
		forward.Bindings.Set(overrides[i].key, overrides[i].target)
		j := len(overrides) - 1 - i
		backward.Bindings.Set(overrides[j].key, overrides[j].target)
	}
	code1, info1 := compile(t, testshaders.ArgumentBuffers(), forward)
	code2, info2 := compile(t, testshaders.ArgumentBuffers(), backward)

	assert.Equal(t, code1, code2)
	assert.Equal(t, info1.UnusedBindings, info2.UnusedBindings)
	assert.Len(t, info1.UnusedBindings, 2)
	assert.Equal(t, info1.RegisterBindings, info2.RegisterBindings)
}

func TestAutoBindingsOmitClauses(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.AutoBindings = hlsl.AutoBindSRV
	code, _ := compile(t, testshaders.ArgumentBuffers(), opts)
	assert.Contains(t, code, "Texture2D<float4> tex;")
	assert.Contains(t, code, "SamplerState samp : register(s0, space0);")
}

func TestShaderModel50OmitsSpaces(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel5_0
	code, _ := compile(t, testshaders.ReadonlySSBO(), opts)
	assert.Contains(t, code, "ByteAddressBuffer data : register(t0);")
}

func TestCombinedSampler(t *testing.T) {
	code, _ := compile(t, testshaders.CombinedSampler(), nil)
	assert.Contains(t, code, "Texture2D<float4> ycbcr : register(t0, space0);")
	assert.Contains(t, code, "SamplerState _ycbcr_sampler : register(s0, space0);")
	assert.Contains(t, code, "ycbcr.Sample(_ycbcr_sampler, ")
}

func TestTextureVariants(t *testing.T) {
	code, _ := compile(t, testshaders.TextureVariants(), nil)
	assert.Contains(t, code, "SamplerComparisonState _shadow_sampler")
	assert.Contains(t, code, ".SampleLevel(")
	assert.Contains(t, code, ".SampleCmp(")
	assert.Contains(t, code, ".GetDimensions(")
	assert.Contains(t, code, ".Load(")
}

func TestSampleMask(t *testing.T) {
	code, _ := compile(t, testshaders.SampleMask(), nil)
	assert.Contains(t, code, "uint gl_SampleMaskIn : SV_Coverage;")
	assert.Contains(t, code, "gl_SampleMaskIn[0] = stage_input.gl_SampleMaskIn;")
	assert.Contains(t, code, "uint gl_SampleMask : SV_Coverage;")
	assert.Contains(t, code, "stage_output.gl_SampleMask = gl_SampleMask[0];")
}

func TestSpecConstantMacro(t *testing.T) {
	code, _ := compile(t, testshaders.SpecConstant(), nil)
	assert.Contains(t, code, "#ifndef SPIRV_CROSS_CONSTANT_ID_3")
	assert.Contains(t, code, "#define SPIRV_CROSS_CONSTANT_ID_3 2.0f")
	assert.Contains(t, code, "static const float scale = SPIRV_CROSS_CONSTANT_ID_3;")
}

func TestStructuredBuffers(t *testing.T) {
	code, _ := compile(t, testshaders.StructuredBuffer(), nil)
	assert.Contains(t, code, "RWByteAddressBuffer particles")
	assert.Contains(t, code, "ByteAddressBuffer sources")

	opts := hlsl.DefaultOptions()
	opts.PreserveStructuredBuffers = true
	code, _ = compile(t, testshaders.StructuredBuffer(), opts)
	assert.Contains(t, code, "RWStructuredBuffer<Particle> particles : register(u0, space0);")
	assert.Contains(t, code, "StructuredBuffer<Particle> sources : register(t0, space0);")
	assert.Contains(t, code, "struct Particle")
}

func TestRowMajorUniform(t *testing.T) {
	code, _ := compile(t, testshaders.RowMajorUBO(), nil)
	assert.Contains(t, code, "float4x4 transforms_mvp : packoffset(c0);")
	assert.NotContains(t, code, "row_major float4x4 transforms_mvp")
}

func TestStorageImageAsSRV(t *testing.T) {
	code, _ := compile(t, testshaders.StorageImage(), nil)
	assert.Contains(t, code, "RWTexture2D<unorm float4> src : register(u0, space0);")
	// dst is an intrinsic, so the image is renamed.
	assert.Contains(t, code, "RWTexture2D<unorm float4> dst_1 : register(u1, space0);")

	opts := hlsl.DefaultOptions()
	opts.NonwritableUAVTextureAsSRV = true
	code, _ = compile(t, testshaders.StorageImage(), opts)
	assert.Contains(t, code, "Texture2D<unorm float4> src : register(t0, space0);")
	assert.Contains(t, code, "RWTexture2D<unorm float4> dst_1 : register(u0, space0);")
}

func TestBaseVertexInstance(t *testing.T) {
	code, _ := compile(t, testshaders.DrawParameters(), nil)
	assert.Contains(t, code, "uint gl_VertexIndex : SV_VertexID;")
	assert.NotContains(t, code, "SPIRV_Cross_VertexInfo")

	opts := hlsl.DefaultOptions()
	opts.SupportNonzeroBaseVertexBaseInstance = true
	code, info := compile(t, testshaders.DrawParameters(), opts)
	assert.Contains(t, code, "cbuffer SPIRV_Cross_VertexInfo")
	assert.Contains(t, code, "+ SPIRV_Cross_BaseVertex;")
	assert.Contains(t, code, "+ SPIRV_Cross_BaseInstance;")
	assert.True(t, info.UsedFeatures.Has(hlsl.FeatureBaseVertex))
}

func TestFlipVertexY(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.FlipVertexY = true
	code, _ := compile(t, testshaders.VertexPassthrough(), opts)
	assert.Contains(t, code, "stage_output.gl_Position.y = -stage_output.gl_Position.y;")
}

func TestFunctionCall(t *testing.T) {
	code, _ := compile(t, testshaders.FunctionCall(), nil)
	assert.Contains(t, code, "float4 shade(float4 l)")
	assert.Contains(t, code, "normalize(l)")
	assert.Contains(t, code, "shade(")
}

func TestAtomicsAndBarriers(t *testing.T) {
	code, _ := compile(t, testshaders.Atomics(), nil)
	assert.Contains(t, code, "groupshared uint local_count;")
	assert.Contains(t, code, "InterlockedAdd(")
	assert.Contains(t, code, "GroupMemoryBarrierWithGroupSync();")
	assert.Contains(t, code, "[numthreads(32, 1, 1)]")
}

func TestSwitchWithoutFallthrough(t *testing.T) {
	code, _ := compile(t, testshaders.SwitchFallthrough(), nil)
	assert.NotContains(t, code, "switch (")
	assert.Contains(t, code, "bool _fallthrough = false;")
	assert.Contains(t, code, "} while (false);")
	assert.Equal(t, 1, strings.Count(code, "result = 2.0f;"), code)
}

func TestTessellationUnsupported(t *testing.T) {
	for _, words := range [][]uint32{testshaders.TessControl(), testshaders.TessEval()} {
		err := compileErr(t, words, nil)
		assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
	}
}

func TestIsLocationUsed(t *testing.T) {
	c, err := hlsl.NewCompiler(parse(t, testshaders.ReadonlySSBO()), nil)
	require.NoError(t, err)
	assert.False(t, c.IsLocationUsed(true, 0), "nothing is used before Compile")
	_, err = c.Compile()
	require.NoError(t, err)
	assert.True(t, c.IsLocationUsed(true, 0))
	assert.False(t, c.IsLocationUsed(true, 1))
	assert.False(t, c.IsLocationUsed(false, 0))
}

func TestDeterministicOutput(t *testing.T) {
	for _, f := range testshaders.All() {
		if !f.HLSL {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			first, _ := compile(t, f.Words, nil)
			second, _ := compile(t, f.Words, nil)
			assert.Equal(t, first, second)
		})
	}
}

func TestAllFixturesWithDefaults(t *testing.T) {
	for _, f := range testshaders.All() {
		t.Run(f.Name, func(t *testing.T) {
			_, _, err := hlsl.Compile(f.Module(), nil)
			if f.HLSL {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

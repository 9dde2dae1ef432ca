// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
)

// Options configures MSL code generation.
type Options struct {
	// Version is the target language version. Defaults to 2.1.
	Version Version `toml:"version"`

	// Platform selects the macOS or iOS flavor of the language.
	Platform Platform `toml:"platform"`

	// EntryPoint selects the entry point to compile by name. If empty, the
	// first entry point is used.
	EntryPoint string `toml:"entry_point"`

	// TexelBufferTextureWidth is the row width of the 2D textures that
	// emulate texel buffers when TextureBufferNative is off.
	TexelBufferTextureWidth uint32 `toml:"texel_buffer_texture_width"`

	// Indices of the auxiliary buffers the runtime binds.
	SwizzleBufferIndex           uint32 `toml:"swizzle_buffer_index"`
	IndirectParamsBufferIndex    uint32 `toml:"indirect_params_buffer_index"`
	ShaderOutputBufferIndex      uint32 `toml:"shader_output_buffer_index"`
	ShaderPatchOutputBufferIndex uint32 `toml:"shader_patch_output_buffer_index"`
	ShaderTessFactorBufferIndex  uint32 `toml:"shader_tess_factor_buffer_index"`
	BufferSizeBufferIndex        uint32 `toml:"buffer_size_buffer_index"`
	ViewMaskBufferIndex          uint32 `toml:"view_mask_buffer_index"`
	DynamicOffsetsBufferIndex    uint32 `toml:"dynamic_offsets_buffer_index"`
	ShaderInputBufferIndex       uint32 `toml:"shader_input_buffer_index"`
	ShaderIndexBufferIndex       uint32 `toml:"shader_index_buffer_index"`
	ShaderPatchInputBufferIndex  uint32 `toml:"shader_patch_input_buffer_index"`

	// DeviceIndex is the value of the DeviceIndex builtin.
	DeviceIndex uint32 `toml:"device_index"`

	// EnableFragOutputMask keeps the fragment outputs whose location bit
	// is set. The others are written to locals and dropped.
	EnableFragOutputMask uint32 `toml:"enable_frag_output_mask"`

	// AdditionalFixedSampleMask is ANDed into the sample mask output.
	// 0xffffffff disables it.
	AdditionalFixedSampleMask uint32 `toml:"additional_fixed_sample_mask"`

	// ArgumentBuffers groups each descriptor set into one argument buffer
	// struct. Requires MSL 2.0.
	ArgumentBuffers bool `toml:"argument_buffers"`

	// ArgumentBuffersTier is the device tier. Tier 1 rejects writable
	// textures inside argument buffers.
	ArgumentBuffersTier ArgumentBuffersTier `toml:"argument_buffers_tier"`

	// PadArgumentBufferResources fills the unused [[id(N)]] slots of an
	// argument buffer with placeholder members.
	PadArgumentBufferResources bool `toml:"pad_argument_buffer_resources"`

	// ForceActiveArgumentBufferResources declares every resource of a
	// descriptor set in its argument buffer, accessed or not.
	ForceActiveArgumentBufferResources bool `toml:"force_active_argument_buffer_resources"`

	// SwizzleTextureSamples applies the per-texture component swizzle
	// stored in the swizzle buffer to samples and gathers.
	SwizzleTextureSamples bool `toml:"swizzle_texture_samples"`

	// Multiview derives gl_ViewIndex from the instance index in vertex
	// shaders and from the render target array index in fragment shaders.
	// The runtime draws every instance once per view and binds the view
	// mask buffer: the first view and the view count.
	Multiview bool `toml:"multiview"`

	// DispatchBase offsets the workgroup and global invocation IDs of
	// compute shaders by the dispatch base. Before MSL 1.2 the base is
	// read from a buffer at IndirectParamsBufferIndex.
	DispatchBase bool `toml:"dispatch_base"`

	// EmulateCubeArray declares cube array textures as 2D array textures
	// of six layers per cube.
	EmulateCubeArray bool `toml:"emulate_cube_array"`

	// ArrayedSubpassInput declares subpass inputs as 2D array textures
	// read at the layer of the fragment.
	ArrayedSubpassInput bool `toml:"arrayed_subpass_input"`

	// VertexForTessellation compiles a vertex shader as a kernel writing
	// its outputs to the buffer at ShaderOutputBufferIndex, for use
	// ahead of a tessellation control stage.
	VertexForTessellation bool `toml:"vertex_for_tessellation"`

	// VertexIndexType is the index buffer type of a vertex shader
	// compiled for tessellation. With an index type the indices are read
	// from the buffer at ShaderIndexBufferIndex.
	VertexIndexType IndexType `toml:"vertex_index_type"`

	// EnableBaseIndexZero assumes the base vertex and base instance are
	// zero.
	EnableBaseIndexZero bool `toml:"enable_base_index_zero"`

	// PadFragmentOutputComponents widens color outputs to four components.
	PadFragmentOutputComponents bool `toml:"pad_fragment_output_components"`

	// IOSSupportBaseVertexInstance allows [[base_vertex]] and
	// [[base_instance]] on iOS.
	IOSSupportBaseVertexInstance bool `toml:"ios_support_base_vertex_instance"`

	// UseFramebufferFetchSubpasses reads subpass inputs as [[color(N)]]
	// fragment inputs instead of textures.
	UseFramebufferFetchSubpasses bool `toml:"use_framebuffer_fetch_subpasses"`

	// InvariantFloatMath disables floating point contraction so invariant
	// outputs compute identically across shaders.
	InvariantFloatMath bool `toml:"invariant_float_math"`

	// TextureBufferNative declares texel buffers as texture_buffer.
	// Requires MSL 2.1; older targets fall back to 2D textures.
	TextureBufferNative bool `toml:"texture_buffer_native"`

	// EnableClipDistanceUserVarying also passes clip distances to the
	// fragment stage as user varyings.
	EnableClipDistanceUserVarying bool `toml:"enable_clip_distance_user_varying"`

	// MultiPatchWorkgroup lets one tessellation control workgroup process
	// several patches.
	MultiPatchWorkgroup bool `toml:"multi_patch_workgroup"`

	// RawBufferTeseInput reads tessellation evaluation inputs from
	// buffers instead of [[stage_in]].
	RawBufferTeseInput bool `toml:"raw_buffer_tese_input"`

	// IOSUseSimdgroupFunctions uses simdgroup functions on iOS. Without
	// it subgroup operations map to quadgroup functions.
	IOSUseSimdgroupFunctions bool `toml:"ios_use_simdgroup_functions"`

	// EmulateSubgroups treats every subgroup as a single invocation.
	EmulateSubgroups bool `toml:"emulate_subgroups"`

	// FixedSubgroupSize replaces the SubgroupSize builtin when non-zero.
	FixedSubgroupSize uint32 `toml:"fixed_subgroup_size"`

	// ForceSampleRateShading adds a [[sample_id]] input so fragments run
	// per sample.
	ForceSampleRateShading bool `toml:"force_sample_rate_shading"`

	// ManualHelperInvocationUpdates keeps gl_HelperInvocation in a local
	// that discard sets.
	ManualHelperInvocationUpdates bool `toml:"manual_helper_invocation_updates"`

	// CheckDiscardedFragStores skips device memory writes of discarded
	// fragments.
	CheckDiscardedFragStores bool `toml:"check_discarded_frag_stores"`

	// SampleDrefLodArrayAsGrad replaces explicit LOD comparison sampling
	// of 2D array depth textures with gradients.
	SampleDrefLodArrayAsGrad bool `toml:"sample_dref_lod_array_as_grad"`

	// ReadWriteTextureFences inserts a fence after writes to read_write
	// textures.
	ReadWriteTextureFences bool `toml:"readwrite_texture_fences"`

	// RelaxedPrecisionHalf declares temporaries of RelaxedPrecision float
	// values as half.
	RelaxedPrecisionHalf bool `toml:"relaxed_precision_half"`

	// FlipVertexY negates the Y of the vertex position output.
	FlipVertexY bool `toml:"flip_vertex_y"`

	// MaxRecompiles caps the emission passes; zero uses the default.
	MaxRecompiles int `toml:"max_recompiles"`

	// Bindings overrides buffer, texture and sampler indices per
	// descriptor. With argument buffers the index is the [[id(N)]].
	Bindings *cross.Overrides[BindTarget] `toml:"-"`

	// DynamicOffsets maps dynamic-offset buffers to their index in the
	// dynamic offsets buffer.
	DynamicOffsets *cross.Overrides[uint32] `toml:"-"`

	// ConstexprSamplers replaces sampler descriptors with inline samplers.
	ConstexprSamplers *cross.Overrides[ConstexprSampler] `toml:"-"`

	// SamplerVars replaces sampler variables with inline samplers by ID.
	SamplerVars map[ir.ID]ConstexprSampler `toml:"-"`

	// InlineUniformBlocks embeds the listed uniform buffers in their
	// argument buffer by value.
	InlineUniformBlocks []cross.ResourceKey `toml:"-"`

	// DiscreteDescriptorSets keeps the listed sets out of argument buffers.
	DiscreteDescriptorSets []uint32 `toml:"discrete_descriptor_sets"`

	// DeviceStorageSets declares the argument buffers of the listed sets
	// in device memory.
	DeviceStorageSets []uint32 `toml:"device_storage_sets"`

	// Logger receives recompile and binding decisions. The zero value
	// discards them.
	Logger logr.Logger `toml:"-"`
}

// DefaultOptions returns options targeting MSL 2.1 on macOS.
func DefaultOptions() *Options {
	return &Options{
		Version:                      Version2_1,
		Platform:                     PlatformMacOS,
		TexelBufferTextureWidth:      4096,
		SwizzleBufferIndex:           30,
		IndirectParamsBufferIndex:    29,
		ShaderOutputBufferIndex:      28,
		ShaderPatchOutputBufferIndex: 27,
		ShaderTessFactorBufferIndex:  26,
		BufferSizeBufferIndex:        25,
		ViewMaskBufferIndex:          24,
		DynamicOffsetsBufferIndex:    23,
		ShaderInputBufferIndex:       22,
		ShaderIndexBufferIndex:       21,
		ShaderPatchInputBufferIndex:  20,
		EnableFragOutputMask:         0xffffffff,
		AdditionalFixedSampleMask:    0xffffffff,
		TextureBufferNative:          true,
		Bindings:                     cross.NewOverrides[BindTarget](),
		DynamicOffsets:               cross.NewOverrides[uint32](),
		ConstexprSamplers:            cross.NewOverrides[ConstexprSampler](),
	}
}

// FeatureFlags indicates which MSL features are used by the generated code.
type FeatureFlags uint32

const (
	// FeatureNone indicates no special features are used.
	FeatureNone FeatureFlags = 0

	// FeatureArgumentBuffers indicates resources live in argument buffers.
	FeatureArgumentBuffers FeatureFlags = 1 << iota

	// FeatureSimdGroup indicates simdgroup functions are used.
	FeatureSimdGroup

	// FeatureQuadGroup indicates quadgroup functions are used.
	FeatureQuadGroup

	// FeatureFunctionConstants indicates specialization constants are
	// function constants.
	FeatureFunctionConstants

	// FeatureTessellation indicates a tessellation stage was lowered.
	FeatureTessellation

	// FeatureHalf indicates half precision types are declared.
	FeatureHalf

	// FeatureAtomics indicates atomic operations are used.
	FeatureAtomics

	// FeatureHelperInvocation indicates helper invocations are queried.
	FeatureHelperInvocation

	// FeatureConstexprSamplers indicates inline samplers are declared.
	FeatureConstexprSamplers

	// FeatureYCbCr indicates a Y'CbCr conversion is expanded.
	FeatureYCbCr

	// FeatureTextureSwizzle indicates texture samples are swizzled.
	FeatureTextureSwizzle

	// FeatureMultiview indicates the view index is derived per view.
	FeatureMultiview
)

var featureNames = []struct {
	flag FeatureFlags
	name string
}{
	{FeatureArgumentBuffers, "ArgumentBuffers"},
	{FeatureSimdGroup, "SimdGroup"},
	{FeatureQuadGroup, "QuadGroup"},
	{FeatureFunctionConstants, "FunctionConstants"},
	{FeatureTessellation, "Tessellation"},
	{FeatureHalf, "Half"},
	{FeatureAtomics, "Atomics"},
	{FeatureHelperInvocation, "HelperInvocation"},
	{FeatureConstexprSamplers, "ConstexprSamplers"},
	{FeatureYCbCr, "YCbCr"},
	{FeatureTextureSwizzle, "TextureSwizzle"},
	{FeatureMultiview, "Multiview"},
}

// Has returns true if the flags contain the specified feature.
func (f FeatureFlags) Has(feature FeatureFlags) bool {
	return f&feature != 0
}

// String returns a human-readable list of enabled features.
func (f FeatureFlags) String() string {
	var features []string
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			features = append(features, fn.name)
		}
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ", ")
}

// TranslationInfo contains metadata about the MSL translation.
type TranslationInfo struct {
	// EntryPointName is the name of the generated entry function.
	EntryPointName string

	// UsedFeatures indicates which language features are used.
	UsedFeatures FeatureFlags

	// RequiredVersion is the minimum language version the output needs.
	RequiredVersion Version

	// ResourceBindings maps resource names to their attribute, for
	// example "[[buffer(0)]]" or "[[id(2)]]".
	ResourceBindings map[string]string

	// AutomaticBindings lists the indices chosen for resources without an
	// override, by variable.
	AutomaticBindings map[ir.ID]BindTarget

	// UnusedBindings lists override keys no active resource matched.
	UnusedBindings []cross.ResourceKey

	// ArgumentBufferIndices maps each argument buffer's descriptor set
	// to its buffer index.
	ArgumentBufferIndices map[uint32]uint32

	// BufferSizeIndices maps the buffers whose runtime array length is
	// queried to their element in the buffer size buffer.
	BufferSizeIndices map[ir.ID]uint32

	// Auxiliary buffers the runtime has to bind.
	NeedsBufferSizeBuffer     bool
	NeedsDynamicOffsetsBuffer bool
	NeedsIndirectParamsBuffer bool
	NeedsOutputBuffer         bool
	NeedsPatchOutputBuffer    bool
	NeedsTessFactorBuffer     bool
	NeedsInputBuffer          bool
	NeedsPatchInputBuffer     bool
	NeedsSwizzleBuffer        bool
	NeedsViewMaskBuffer       bool
	NeedsDispatchBaseBuffer   bool
	NeedsIndexBuffer          bool

	// WorkgroupSize is the compute or tessellation control workgroup size.
	WorkgroupSize [3]uint32

	// InputLocations and OutputLocations list the active locations.
	InputLocations  []uint32
	OutputLocations []uint32

	// HelperFunctions lists the helper functions that were generated.
	HelperFunctions []string
}

// Compiler translates one entry point of a module. Remaps made before
// Compile are kept in the module.
type Compiler struct {
	module *ir.Module
	opts   *Options
	ep     *ir.EntryPoint

	info *TranslationInfo
}

// NewCompiler selects the entry point named in opts and prepares a
// compiler for it.
func NewCompiler(module *ir.Module, opts *Options) (*Compiler, error) {
	if module == nil {
		return nil, ir.NewError(ir.ErrInvalidIR, "module is nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(module.EntryPoints) == 0 {
		return nil, ir.NewError(ir.ErrInvalidIR, "module has no entry points")
	}
	ep := module.EntryPoints[0]
	if opts.EntryPoint != "" {
		found := false
		for _, cand := range module.EntryPoints {
			if cand.Name == opts.EntryPoint {
				ep, found = cand, true
				break
			}
		}
		if !found {
			return nil, ir.NewError(ir.ErrUnknownID, "entry point %q not found", opts.EntryPoint)
		}
	}
	return &Compiler{module: module, opts: opts, ep: ep}, nil
}

// Compile generates the MSL source of the entry point.
func (c *Compiler) Compile() (string, error) {
	w, err := newWriter(c.module, c.opts, c.ep)
	if err != nil {
		return "", fmt.Errorf("msl: %w", err)
	}
	defer w.release()
	e := cross.NewEmitter(c.module, w, c.ep, w.log)
	e.MaxRecompiles = c.opts.MaxRecompiles
	w.emitter = e
	text, err := e.Run()
	if err != nil {
		return "", fmt.Errorf("msl: %w", err)
	}
	c.info = w.translationInfo()
	return text, nil
}

// Info returns the metadata of the last successful Compile.
func (c *Compiler) Info() *TranslationInfo { return c.info }

// IsLocationUsed reports whether an input or output location of the entry
// point is active after the last Compile.
func (c *Compiler) IsLocationUsed(output bool, location uint32) bool {
	if c.info == nil {
		return false
	}
	locs := c.info.InputLocations
	if output {
		locs = c.info.OutputLocations
	}
	i := sort.Search(len(locs), func(i int) bool { return locs[i] >= location })
	return i < len(locs) && locs[i] == location
}

// Compile generates MSL source code from an IR module.
// Returns the MSL source, translation info, or an error.
func Compile(module *ir.Module, options *Options) (string, *TranslationInfo, error) {
	c, err := NewCompiler(module, options)
	if err != nil {
		return "", nil, fmt.Errorf("msl: %w", err)
	}
	text, err := c.Compile()
	if err != nil {
		return "", nil, err
	}
	return text, c.info, nil
}

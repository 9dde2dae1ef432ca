// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_1 for maximum compatibility.
	ShaderModel ShaderModel `toml:"shader_model"`

	// EntryPoint selects the entry point to compile by name. If empty, the
	// first entry point is used.
	EntryPoint string `toml:"entry_point"`

	// UseEntryPointName names the HLSL entry function after the SPIR-V
	// entry point instead of main.
	UseEntryPointName bool `toml:"use_entry_point_name"`

	// PointSizeCompat drops writes to gl_PointSize, which D3D ignores.
	// Without it such writes are an error.
	PointSizeCompat bool `toml:"point_size_compat"`

	// PointCoordCompat replaces gl_PointCoord with (0.5, 0.5).
	PointCoordCompat bool `toml:"point_coord_compat"`

	// SupportNonzeroBaseVertexBaseInstance offsets SV_VertexID and
	// SV_InstanceID by a SPIRV_Cross_VertexInfo constant buffer so they
	// match gl_VertexIndex and gl_InstanceIndex.
	SupportNonzeroBaseVertexBaseInstance bool `toml:"support_nonzero_base_vertex_base_instance"`

	// ForceStorageBufferAsUAV declares every storage buffer as a
	// RWByteAddressBuffer, including read-only ones.
	ForceStorageBufferAsUAV bool `toml:"force_storage_buffer_as_uav"`

	// NonwritableUAVTextureAsSRV declares NonWritable storage images as
	// Texture* SRVs.
	NonwritableUAVTextureAsSRV bool `toml:"nonwritable_uav_texture_as_srv"`

	// Enable16BitTypes emits float16_t and int16_t for 16-bit types
	// instead of the min16 types. Requires SM 6.2.
	Enable16BitTypes bool `toml:"enable_16bit_types"`

	// FlattenMatrixVertexInputSemantics gives every column of a matrix
	// vertex input its own semantic.
	FlattenMatrixVertexInputSemantics bool `toml:"flatten_matrix_vertex_input_semantics"`

	// PreserveStructuredBuffers declares storage buffers tagged with
	// UserTypeGOOGLE as StructuredBuffer and RWStructuredBuffer.
	PreserveStructuredBuffers bool `toml:"preserve_structured_buffers"`

	// RelaxedPrecisionMin16 declares temporaries of RelaxedPrecision values
	// with min16float and min16int.
	RelaxedPrecisionMin16 bool `toml:"relaxed_precision_min16"`

	// FlipVertexY negates the Y of the vertex position output.
	FlipVertexY bool `toml:"flip_vertex_y"`

	// AutoBindings selects register types whose automatically assigned
	// registers are not written out.
	AutoBindings AutoBinding `toml:"auto_bindings"`

	// MaxRecompiles caps the emission passes; zero uses the default.
	MaxRecompiles int `toml:"max_recompiles"`

	// Bindings overrides registers per descriptor.
	Bindings *cross.Overrides[BindTarget] `toml:"-"`

	// RootConstants splits the push constant block into constant buffers
	// by byte range.
	RootConstants []RootConstant `toml:"-"`

	// Semantics renames vertex input semantics by location.
	Semantics map[uint32]string `toml:"-"`

	// ForceUAV declares the listed storage buffers as UAVs.
	ForceUAV []cross.ResourceKey `toml:"-"`

	// Logger receives recompile and binding decisions. The zero value
	// discards them.
	Logger logr.Logger `toml:"-"`
}

// DefaultOptions returns sensible default options for HLSL generation.
// Uses Shader Model 5.1.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel: ShaderModel5_1,
		Bindings:    cross.NewOverrides[BindTarget](),
	}
}

// FeatureFlags indicates which HLSL features are used by the generated code.
type FeatureFlags uint32

const (
	// FeatureNone indicates no special features are used.
	FeatureNone FeatureFlags = 0

	// FeatureWaveOps indicates wave intrinsics are used (SM 6.0+).
	FeatureWaveOps FeatureFlags = 1 << iota

	// FeatureRayTracing indicates ray query objects are used (SM 6.3+).
	FeatureRayTracing

	// FeatureMeshShaders indicates mesh shader features are used (SM 6.5+).
	FeatureMeshShaders

	// Feature64BitIntegers indicates 64-bit integer types are used.
	Feature64BitIntegers

	// Feature64BitAtomics indicates 64-bit atomic operations are used (SM 6.6+).
	Feature64BitAtomics

	// FeatureFloat16 indicates native float16 types are used (SM 6.2+).
	FeatureFloat16

	// FeatureSubgroupOps indicates subgroup builtins are read.
	FeatureSubgroupOps

	// FeatureNumWorkgroups indicates the NumWorkgroups constant buffer is used.
	FeatureNumWorkgroups

	// FeatureBaseVertex indicates the base vertex constant buffer is used.
	FeatureBaseVertex
)

var featureNames = []struct {
	flag FeatureFlags
	name string
}{
	{FeatureWaveOps, "WaveOps"},
	{FeatureRayTracing, "RayTracing"},
	{FeatureMeshShaders, "MeshShaders"},
	{Feature64BitIntegers, "64BitIntegers"},
	{Feature64BitAtomics, "64BitAtomics"},
	{FeatureFloat16, "Float16"},
	{FeatureSubgroupOps, "SubgroupOps"},
	{FeatureNumWorkgroups, "NumWorkgroups"},
	{FeatureBaseVertex, "BaseVertex"},
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

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// EntryPointName is the name of the generated HLSL entry function.
	EntryPointName string

	// UsedFeatures indicates which shader features are used.
	UsedFeatures FeatureFlags

	// RequiredShaderModel is the minimum shader model the output needs.
	RequiredShaderModel ShaderModel

	// RegisterBindings maps resource names to their HLSL register bindings.
	// Format: "resourceName" -> "register(t0, space0)"
	RegisterBindings map[string]string

	// AutomaticBindings lists the registers chosen for resources without
	// an override, by variable.
	AutomaticBindings map[ir.ID]BindTarget

	// UnusedBindings lists override keys no active resource matched.
	UnusedBindings []cross.ResourceKey

	// NumWorkgroupsID is the synthetic constant buffer variable replacing
	// gl_NumWorkGroups, or zero when the builtin is unused.
	NumWorkgroupsID ir.ID

	// InputLocations and OutputLocations list the active locations.
	InputLocations  []uint32
	OutputLocations []uint32

	// HelperFunctions lists any helper functions that were generated.
	HelperFunctions []string
}

// Compiler translates one entry point of a module. Remaps made before
// Compile are kept in the module.
type Compiler struct {
	module *ir.Module
	opts   *Options
	ep     *ir.EntryPoint

	numWorkgroups ir.ID
	info          *TranslationInfo
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

// numWorkgroupsName names the synthetic constant buffer of gl_NumWorkGroups.
const numWorkgroupsName = "SPIRV_Cross_NumWorkgroups"

// RemapNumWorkgroupsBuiltin replaces reads of gl_NumWorkGroups with a
// synthetic constant buffer and returns its variable so the caller can
// bind it. It returns zero when the entry point does not read the builtin.
func (c *Compiler) RemapNumWorkgroupsBuiltin() (ir.ID, error) {
	if c.numWorkgroups != 0 {
		return c.numWorkgroups, nil
	}
	m := c.module
	reach := analysis.Reach(m, c.ep.Function)
	var builtinVar ir.ID
	for _, v := range reach.Variables {
		if b, ok := m.BuiltIn(v); ok && b == spirv.BuiltInNumWorkgroups {
			builtinVar = v
		}
	}
	if builtinVar == 0 {
		return 0, nil
	}
	uvec3 := m.Pointee(m.MustVariable(builtinVar).Type)
	st := m.AddType(ir.StructType{Members: []ir.ID{uvec3}})
	m.SetName(st, numWorkgroupsName)
	m.SetMemberName(st, 0, "count")
	if err := m.SetDecoration(st, spirv.DecorationBlock, 0); err != nil {
		return 0, fmt.Errorf("hlsl: remap gl_NumWorkGroups: %w", err)
	}
	if err := m.SetMemberDecoration(st, 0, spirv.DecorationOffset, 0); err != nil {
		return 0, fmt.Errorf("hlsl: remap gl_NumWorkGroups: %w", err)
	}
	ptr := m.AddType(ir.PointerType{Storage: spirv.StorageClassUniform, Pointee: st})
	v := m.AddVariable(ptr, spirv.StorageClassUniform)
	m.SetName(v, numWorkgroupsName)
	m.SetExtDecoration(v, ir.ExtSynthetic, uint32(builtinVar))
	c.numWorkgroups = v
	return v, nil
}

// Compile generates the HLSL source of the entry point.
func (c *Compiler) Compile() (string, error) {
	if c.numWorkgroups == 0 {
		if _, err := c.RemapNumWorkgroupsBuiltin(); err != nil {
			return "", err
		}
	}
	w, err := newWriter(c.module, c.opts, c.ep, c.numWorkgroups)
	if err != nil {
		return "", fmt.Errorf("hlsl: %w", err)
	}
	e := cross.NewEmitter(c.module, w, c.ep, w.log)
	e.MaxRecompiles = c.opts.MaxRecompiles
	w.emitter = e
	text, err := e.Run()
	if err != nil {
		return "", fmt.Errorf("hlsl: %w", err)
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

// Compile generates HLSL source code from an IR module.
// Returns the HLSL source, translation info, or an error.
func Compile(module *ir.Module, options *Options) (string, *TranslationInfo, error) {
	c, err := NewCompiler(module, options)
	if err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}
	text, err := c.Compile()
	if err != nil {
		return "", nil, err
	}
	return text, c.info, nil
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Identifiers owned by the generated entry point.
const (
	entryName       = "main0"
	inputStruct     = "main0_in"
	outputStruct    = "main0_out"
	patchInStruct   = "main0_patchIn"
	patchOutStruct  = "main0_patchOut"
	inputParam      = "in"
	outputLocal     = "out"
	patchInName     = "patchIn"
	patchOutName    = "patchOut"
	controlInName   = "gl_in"
	controlOutName  = "gl_out"
	tessFactorsTri  = "MTLTriangleTessellationFactorsHalf"
	tessFactorsQuad = "MTLQuadTessellationFactorsHalf"

	bufferSizeName     = "spvBufferSizeConstants"
	dynamicOffsetsName = "spvDynamicOffsets"
	indirectParamsName = "spvIndirectParams"
	tessOutName        = "spvOut"
	tessPatchOutName   = "spvPatchOut"
	tessLevelName      = "spvTessLevel"
	tessInName         = "spvIn"
	tessPatchInName    = "spvPatchIn"
	viewMaskName       = "spvViewMask"
	dispatchBaseName   = "spvDispatchBase"
	indexBufferName    = "spvIndices"
)

// ioKey names one flattened interface block member.
type ioKey struct {
	v      ir.ID
	member int
}

// extMark is a layout decoration set on the module for one compile.
type extMark struct {
	id     ir.ID
	member int
	ext    ir.ExtDecoration
}

// tessInfo describes the buffers a tessellation stage exchanges with the
// runtime.
type tessInfo struct {
	control       bool
	indirect      bool
	patchOut      bool
	inputBuffer   bool
	patchInBuffer bool
	// levelBuffer marks an evaluation shader reading its tessellation
	// levels from the factor buffer.
	levelBuffer bool
	// quads selects the quad factor layout over triangles.
	quads bool
	// vertices is the output patch size of a control shader, or the
	// patch size an evaluation shader declares.
	vertices uint32
	// levelAttr is the first attribute of the tessellation levels read
	// through the evaluation stage input.
	levelAttr uint32
	vars      map[ir.ID]tessVar

	// Entry parameters and locals, named per pass.
	invocation string
	primitive  string
	global     string
	// attr is the next attribute of builtin evaluation stage inputs.
	attr uint32
}

// writer is the MSL dialect of one entry point. Fields above the pass
// marker are computed once; the rest are rebuilt on every emission pass.
type writer struct {
	m    *ir.Module
	opts *Options
	ep   *ir.EntryPoint
	log  logr.Logger

	emitter   *cross.Emitter
	reach     *analysis.Reachability
	iface     *cross.Interface
	resources []cross.Resource
	bindings  map[ir.ID]*binding
	// argSets lists the descriptor sets declared as argument buffers.
	argSets []uint32
	// dynamic maps dynamic-offset buffers to their offset index.
	dynamic map[ir.ID]uint32
	// sizeIndex maps buffers whose runtime array is measured to their
	// element in the buffer size buffer.
	sizeIndex       map[ir.ID]uint32
	needsBufferSize bool
	tess            *tessInfo

	// ioBlocks holds interface variables of block type.
	ioBlocks map[ir.ID]bool
	// activeMembers lists the accessed members of interface blocks.
	activeMembers map[ir.ID]map[int]bool
	skipStruct    map[ir.ID]bool
	// interpolants holds fragment inputs read with interpolation functions.
	interpolants map[ir.ID]bool
	// fnGlobals lists the module-scope variables each helper function
	// reaches, passed as trailing parameters.
	fnGlobals map[ir.ID][]ir.ID
	// fnSizes holds helper functions measuring runtime arrays.
	fnSizes map[ir.ID]bool
	// packedArrays holds struct members declared as arrays of packed
	// vectors, and tailPad the trailing padding of array element structs.
	packedArrays map[ioKey]bool
	tailPad      map[ir.ID]uint32
	marks        []extMark
	// paramSpaces and paramAccess carry the address space and texture
	// access of pointer and image arguments into helper parameters.
	paramSpaces map[ir.ID]string
	paramAccess map[ir.ID]string
	// swizzled holds the textures sampled through the swizzle buffer and
	// fnSwizzle the helper functions receiving it.
	swizzled  map[ir.ID]bool
	fnSwizzle map[ir.ID]bool
	// dispatchBase marks a compute shader offsetting its workgroup IDs.
	dispatchBase bool
	// vertexKernel marks a vertex shader compiled as a kernel writing the
	// tessellation control input buffer.
	vertexKernel bool

	features FeatureFlags
	required Version

	// Pass state.
	ioNames    map[ioKey]string
	samplers   map[ir.ID]string
	planes     map[ir.ID][]string
	parts      map[ir.ID][]string
	rawNames   map[ir.ID]string
	constNames map[string]bool
	inputs     stageIO
	outputs    stageIO
	sampleID   string
	fragCoord  string
	// interpFields maps inputs read with interpolation functions to
	// their interpolant field.
	interpFields map[ir.ID]string
	// helperVar is the HelperInvocation input, or zero.
	helperVar ir.ID
	// layer is the render target array index of a fragment shader.
	layer string
	// view holds the raw instance parameters of a multiview vertex shader.
	view viewNames
	grid kernelGrid
}

// newWriter validates the entry point against the options and resolves
// its interface, layout and bindings.
func newWriter(m *ir.Module, opts *Options, ep *ir.EntryPoint) (_ *writer, err error) {
	w := &writer{
		m: m, opts: opts, ep: ep, log: opts.Logger,
		bindings:      make(map[ir.ID]*binding),
		dynamic:       make(map[ir.ID]uint32),
		sizeIndex:     make(map[ir.ID]uint32),
		ioBlocks:      make(map[ir.ID]bool),
		activeMembers: make(map[ir.ID]map[int]bool),
		skipStruct:    make(map[ir.ID]bool),
		interpolants:  make(map[ir.ID]bool),
		fnGlobals:     make(map[ir.ID][]ir.ID),
		fnSizes:       make(map[ir.ID]bool),
		packedArrays:  make(map[ioKey]bool),
		tailPad:       make(map[ir.ID]uint32),
		paramSpaces:   make(map[ir.ID]string),
		paramAccess:   make(map[ir.ID]string),
		swizzled:      make(map[ir.ID]bool),
		fnSwizzle:     make(map[ir.ID]bool),
		required:      Version1_0,
	}
	defer func() {
		if err != nil {
			w.release()
		}
	}()
	defer ir.Recover(&err)
	if w.log.GetSink() == nil {
		w.log = logr.Discard()
	}
	switch ep.Model {
	case spirv.ExecutionModelVertex, spirv.ExecutionModelFragment, spirv.ExecutionModelGLCompute:
	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation:
		if err := w.check(Version1_2, FeatureTessellation, "tessellation"); err != nil {
			return nil, err
		}
	default:
		return nil, ir.NewError(ir.ErrUnsupportedShaderModel, "%s shaders are not supported by the MSL backend", ep.Model)
	}
	if opts.ArgumentBuffers {
		if err := w.check(Version2_0, FeatureArgumentBuffers, "argument buffers"); err != nil {
			return nil, err
		}
	}
	if opts.VertexForTessellation && ep.Model == spirv.ExecutionModelVertex {
		if opts.Multiview {
			return nil, ir.NewError(ir.ErrUnsupportedShaderModel, "multiview vertex shaders cannot feed tessellation")
		}
		if err := w.check(Version1_2, FeatureTessellation, "vertex shaders for tessellation"); err != nil {
			return nil, err
		}
		w.vertexKernel = true
	}

	w.reach = analysis.Reach(m, ep.Function)
	var io, res []ir.ID
	seen := make(map[ir.ID]bool)
	for _, v := range w.reach.Variables {
		seen[v] = true
		switch m.MustVariable(v).Storage {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			io = append(io, v)
		default:
			res = append(res, v)
		}
	}
	if opts.ArgumentBuffers && opts.ForceActiveArgumentBufferResources {
		for _, v := range m.Variables() {
			if seen[v.ID] || v.Function != 0 {
				continue
			}
			if r, ok := cross.ClassifyResource(m, v.ID); ok && w.inArgumentBuffer(r) {
				res = append(res, v.ID)
			}
		}
	}
	w.iface = cross.CollectInterface(m, ep, io)
	w.resources = cross.Resources(m, res)
	w.dispatchBase = w.usesDispatchBase()

	w.classifyInterface(io)
	if err := w.classifyResources(); err != nil {
		return nil, err
	}
	w.layoutBuffers()
	if err := w.setupTessellation(); err != nil {
		return nil, err
	}
	w.scanFunctions()
	if err := w.assignBindings(); err != nil {
		return nil, err
	}
	w.assignSizeIndices()
	return w, nil
}

// classifyInterface records interface blocks and the members accessed
// through them.
func (w *writer) classifyInterface(io []ir.ID) {
	m := w.m
	for _, v := range m.Variables() {
		if v.Storage != spirv.StorageClassInput && v.Storage != spirv.StorageClassOutput {
			continue
		}
		t := m.Pointee(v.Type)
		for m.IsArray(t) {
			t = m.ElementType(t)
		}
		if m.IsStruct(t) {
			w.skipStruct[t] = true
		}
	}
	for _, v := range io {
		t := m.Pointee(m.MustVariable(v).Type)
		for m.IsArray(t) {
			t = m.ElementType(t)
		}
		if m.IsStruct(t) {
			w.ioBlocks[v] = true
			w.activeMembers[v] = make(map[int]bool)
		}
	}
	if len(w.ioBlocks) == 0 {
		return
	}
	for _, fnID := range w.reach.Functions {
		w.eachInstruction(fnID, func(inst *ir.Instruction) {
			switch inst.Op {
			case spirv.OpAccessChain, spirv.OpInBoundsAccessChain:
				members, ok := w.activeMembers[inst.Arg(0)]
				if !ok || len(inst.Operands) < 2 {
					return
				}
				st := m.Pointee(m.MustVariable(inst.Arg(0)).Type)
				idx := inst.IDOperands()[1:]
				// Per-vertex blocks are indexed by vertex before member.
				if m.IsArray(st) {
					if len(idx) < 2 {
						w.markAllMembers(inst.Arg(0))
						return
					}
					idx = idx[1:]
				}
				if c, err := m.Constant(idx[0]); err == nil {
					members[ir.Position(c.U32())] = true
				}
			case spirv.OpLoad, spirv.OpStore, spirv.OpCopyMemory:
				for _, id := range inst.IDOperands() {
					if _, ok := w.activeMembers[id]; ok {
						w.markAllMembers(id)
					}
				}
			}
		})
	}
}

func (w *writer) markAllMembers(v ir.ID) {
	m := w.m
	st := m.Pointee(m.MustVariable(v).Type)
	for m.IsArray(st) {
		st = m.ElementType(st)
	}
	for i := range m.MemberCount(st) {
		w.activeMembers[v][i] = true
	}
}

// classifyResources collects argument buffer sets and dynamic offsets and
// checks the resources the target cannot express.
func (w *writer) classifyResources() error {
	sets := make(map[uint32]bool)
	for _, r := range w.resources {
		if w.inArgumentBuffer(r) {
			sets[r.Set] = true
			writable := (r.Kind == cross.ResourceStorageImage || r.Kind == cross.ResourceStorageTexelBuffer) && !r.ReadOnly
			if writable && w.opts.ArgumentBuffersTier < ArgumentBuffersTier2 {
				return ir.NewErrorAt(ir.ErrUnsupportedShaderModel, r.Var, spirv.OpVariable,
					"writable texture %q in an argument buffer requires argument buffers tier 2", r.Name)
			}
		}
		switch r.Kind {
		case cross.ResourceUniformBuffer, cross.ResourceStorageBuffer:
			if idx, ok := w.opts.DynamicOffsets.Lookup(r.Key(w.ep.Model)); ok {
				if r.Count != 1 {
					return ir.NewErrorAt(ir.ErrUnsupportedAccessPattern, r.Var, spirv.OpVariable,
						"dynamic offset on buffer array %q", r.Name)
				}
				w.dynamic[r.Var] = idx
			}
		case cross.ResourceAccelerationStructure:
			if err := w.check(Version2_3, 0, "acceleration structures"); err != nil {
				return err
			}
		case cross.ResourceSubpassInput:
			if w.ep.Model != spirv.ExecutionModelFragment {
				return ir.NewErrorAt(ir.ErrUnsupportedOpcode, r.Var, spirv.OpVariable, "subpass input %q outside a fragment shader", r.Name)
			}
			if w.opts.UseFramebufferFetchSubpasses {
				if err := w.checkOn(Version2_3, Version1_0, 0, "framebuffer fetch"); err != nil {
					return err
				}
			}
		case cross.ResourceUniformTexelBuffer, cross.ResourceStorageTexelBuffer:
			if w.opts.TextureBufferNative {
				if err := w.check(Version2_1, 0, "native texture buffers"); err != nil {
					return err
				}
			}
		}
		if r.Count != 1 && (r.Kind == cross.ResourceSampledImage || r.Kind == cross.ResourceStorageImage ||
			r.Kind == cross.ResourceSampler || r.Kind == cross.ResourceCombinedImageSampler) {
			if err := w.check(Version2_0, 0, "arrays of textures and samplers"); err != nil {
				return err
			}
		}
	}
	for set := range sets {
		w.argSets = append(w.argSets, set)
	}
	sort.Slice(w.argSets, func(i, j int) bool { return w.argSets[i] < w.argSets[j] })
	return nil
}

// scanFunctions finds the module-scope variables every helper function
// reaches, runtime array length queries and interpolated inputs.
func (w *writer) scanFunctions() {
	m := w.m
	direct := make(map[ir.ID]map[ir.ID]bool)
	for _, fnID := range w.reach.Functions {
		used := make(map[ir.ID]bool)
		direct[fnID] = used
		w.eachInstruction(fnID, func(inst *ir.Instruction) {
			for _, id := range inst.IDOperands() {
				if m.KindOf(id) != ir.KindVariable {
					continue
				}
				if v := m.MustVariable(id); v.Function == 0 {
					used[id] = true
				}
			}
			switch inst.Op {
			case spirv.OpArrayLength:
				if base := analysis.BaseVariable(m, inst.Arg(0)); base != 0 && m.KindOf(base) == ir.KindVariable {
					w.sizeIndex[base] = 0
					w.needsBufferSize = true
					w.fnSizes[fnID] = true
				}
			case spirv.OpFunctionCall:
				for id := range direct[inst.Arg(0)] {
					used[id] = true
				}
				if w.fnSizes[inst.Arg(0)] {
					w.fnSizes[fnID] = true
				}
				if w.fnSwizzle[inst.Arg(0)] {
					w.fnSwizzle[fnID] = true
				}
			case spirv.OpExtInst:
				w.scanInterpolation(inst)
			case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
				spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
				spirv.OpImageGather, spirv.OpImageFetch:
				w.scanSwizzle(fnID, inst)
			}
		})
	}
	for _, fnID := range w.reach.Functions {
		if fnID == w.ep.Function {
			continue
		}
		var list []ir.ID
		for v := range direct[fnID] {
			if w.passedGlobal(fnID, v) {
				list = append(list, v)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		w.fnGlobals[fnID] = list
	}
	delete(w.fnSizes, w.ep.Function)
	delete(w.fnSwizzle, w.ep.Function)
	for i := len(w.reach.Functions) - 1; i >= 0; i-- {
		w.eachInstruction(w.reach.Functions[i], func(inst *ir.Instruction) {
			if inst.Op == spirv.OpFunctionCall {
				w.scanArguments(inst)
			}
		})
	}
}

// scanArguments records the address space and texture access behind each
// pointer and storage image argument of a call. Callers are scanned
// before callees so parameters forward what their own arguments carry.
func (w *writer) scanArguments(inst *ir.Instruction) {
	m := w.m
	params := m.MustFunction(inst.Arg(0)).Params
	for i, arg := range inst.IDOperands()[1:] {
		if i >= len(params) {
			break
		}
		base := analysis.BaseVariable(m, arg)
		if base == 0 {
			continue
		}
		param := params[i]
		if m.KindOf(base) == ir.KindParameter {
			if s, ok := w.paramSpaces[base]; ok {
				w.paramSpaces[param] = s
			}
			if a, ok := w.paramAccess[base]; ok {
				w.paramAccess[param] = a
			}
			continue
		}
		v := m.MustVariable(base)
		if v.Function != 0 {
			continue
		}
		t := m.TypeOf(arg)
		if m.IsPointer(t) && !m.IsOpaque(m.Pointee(t)) {
			w.paramSpaces[param] = w.varSpace(base)
			continue
		}
		if r, ok := cross.ClassifyResource(m, base); ok && r.Kind == cross.ResourceStorageImage {
			w.paramAccess[param] = w.resourceAccess(r)
		}
	}
}

// passedGlobal reports whether a helper function receives a variable as a
// parameter. Module-scope constants and inline samplers need no passing.
func (w *writer) passedGlobal(fnID, v ir.ID) bool {
	m := w.m
	vr := m.MustVariable(v)
	switch vr.Storage {
	case spirv.StorageClassInput, spirv.StorageClassOutput:
		if w.tess != nil {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fnID, spirv.OpFunction,
				"tessellation stage IO %q accessed outside the entry point", m.Name(v))
		}
		if w.interpolants[v] {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fnID, spirv.OpFunction,
				"interpolated input %q accessed outside the entry point", m.Name(v))
		}
	case spirv.StorageClassUniformConstant:
		if r, ok := cross.ClassifyResource(m, v); ok && r.Kind == cross.ResourceSampler && w.constexprSampler(r) != nil {
			return false
		}
	}
	return true
}

func (w *writer) scanInterpolation(inst *ir.Instruction) {
	m := w.m
	if set, err := m.ExtInstImport(inst.Arg(0)); err != nil || set != spirv.GLSLStd450ImportName {
		return
	}
	switch spirv.GLSLStd450(inst.Literal(1)) {
	case spirv.GLSLInterpolateAtCentroid, spirv.GLSLInterpolateAtSample, spirv.GLSLInterpolateAtOffset:
		base := analysis.BaseVariable(m, inst.Arg(2))
		if base == 0 {
			unsupported(inst, "interpolation of a value that is not an input variable")
		}
		w.needOn(Version2_3, Version2_3, 0, "interpolation functions")
		w.interpolants[base] = true
	}
}

// assignSizeIndices numbers the buffers measured through the buffer size
// buffer in resource order.
func (w *writer) assignSizeIndices() {
	var k uint32
	for _, r := range w.resources {
		if _, ok := w.sizeIndex[r.Var]; ok {
			w.sizeIndex[r.Var] = k
			k++
		}
	}
}

func (w *writer) eachInstruction(fnID ir.ID, fn func(*ir.Instruction)) {
	f := w.m.MustFunction(fnID)
	for _, bid := range f.Blocks {
		for _, inst := range w.m.MustBlock(bid).Instructions {
			fn(inst)
		}
	}
}

// mark sets a layout decoration that release removes again.
func (w *writer) mark(id ir.ID, member int, ext ir.ExtDecoration, value uint32) {
	if member < 0 {
		w.m.SetExtDecoration(id, ext, value)
	} else {
		w.m.SetMemberExtDecoration(id, uint32(member), ext, value)
	}
	w.marks = append(w.marks, extMark{id, member, ext})
}

// release removes the layout decorations of this compile from the module.
func (w *writer) release() {
	for _, d := range w.marks {
		if d.member < 0 {
			w.m.UnsetExtDecoration(d.id, d.ext)
		} else {
			w.m.UnsetMemberExtDecoration(d.id, uint32(d.member), d.ext)
		}
	}
	w.marks = nil
}

// Keywords implements cross.Dialect.
func (w *writer) Keywords() []string {
	out := make([]string, 0, len(reservedKeywords)+len(typeShorthands)+32)
	for k := range reservedKeywords {
		out = append(out, k)
	}
	for k := range typeShorthands {
		out = append(out, k)
	}
	sort.Strings(out)
	out = append(out, entryName, inputStruct, outputStruct, patchInStruct, patchOutStruct,
		inputParam, outputLocal, patchInName, patchOutName, controlInName, controlOutName,
		tessFactorsTri, tessFactorsQuad, bufferSizeName, dynamicOffsetsName, indirectParamsName,
		tessOutName, tessPatchOutName, tessLevelName, tessInName, tessPatchInName,
		swizzleName, viewMaskName, dispatchBaseName, indexBufferName)
	for _, set := range w.argSets {
		out = append(out, argStructName(set), argParamName(set))
	}
	return out
}

// CaseInsensitive implements cross.Dialect.
func (w *writer) CaseInsensitive() bool { return false }

// EmitModule implements cross.Dialect.
func (w *writer) EmitModule(e *cross.Emitter) {
	w.ioNames = make(map[ioKey]string)
	w.samplers = make(map[ir.ID]string)
	w.planes = make(map[ir.ID][]string)
	w.parts = make(map[ir.ID][]string)
	w.rawNames = make(map[ir.ID]string)
	w.constNames = make(map[string]bool)
	w.interpFields = make(map[ir.ID]string)
	w.sampleID, w.fragCoord, w.helperVar = "", "", 0
	w.layer, w.view, w.grid = "", viewNames{}, kernelGrid{}

	e.NameGlobals(w.fixedNames())
	w.nameInterface(e)
	w.nameResources(e)
	w.inputs = w.stageInputs(e)
	w.outputs = w.stageOutputs(e)

	out := e.Out
	out.Line("#include <metal_stdlib>")
	out.Line("#include <simd/simd.h>")
	if w.opts.InvariantFloatMath {
		out.Line("#pragma clang fp contract(off)")
	}
	out.Blank()
	out.Line("using namespace metal;")
	out.Blank()
	w.writeStructs(e, out)
	w.writeSpecConstants(e, out)
	w.writeConstants(e, out)
	w.writeConstexprSamplers(e, out)
	w.writeArgumentBuffers(e, out)
	w.writeStageStructs(out)

	body := &cross.Buffer{}
	prev := e.Swap(body)
	e.EmitFunctions()
	e.Swap(prev)
	e.WriteHelpers(out)
	out.Raw(body.String())
}

// fixedNames pins the identifiers the entry point and runtime rely on.
func (w *writer) fixedNames() map[ir.ID]string {
	m := w.m
	fixed := map[ir.ID]string{w.ep.Function: entryName}
	for _, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		for _, entry := range list {
			if entry.IsBuiltin && entry.Member < 0 {
				input := m.MustVariable(entry.Var).Storage == spirv.StorageClassInput
				fixed[entry.Var] = builtinName(entry.Builtin, input)
			}
		}
	}
	for _, id := range m.GlobalOrder {
		if m.KindOf(id) != ir.KindConstant {
			continue
		}
		if b, ok := m.BuiltIn(id); ok && b == spirv.BuiltInWorkgroupSize {
			fixed[id] = "gl_WorkGroupSize"
		}
	}
	return fixed
}

// builtinName returns the identifier of a builtin. The input and output
// sample masks differ in name.
func builtinName(b spirv.BuiltIn, input bool) string {
	if b == spirv.BuiltInSampleMask && input {
		return "gl_SampleMaskIn"
	}
	return cross.BuiltinName(b)
}

// globalName takes name verbatim when free, else a unique variant.
func globalName(e *cross.Emitter, name string) string {
	if e.Globals.Exact(name) {
		return name
	}
	return e.Globals.Call(name)
}

// nameInterface names the locals standing in for members of interface
// blocks.
func (w *writer) nameInterface(e *cross.Emitter) {
	m := w.m
	for _, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		for _, entry := range list {
			if entry.Member < 0 || !w.entryActive(entry) {
				continue
			}
			key := ioKey{entry.Var, entry.Member}
			if entry.IsBuiltin {
				input := m.MustVariable(entry.Var).Storage == spirv.StorageClassInput
				name := builtinName(entry.Builtin, input)
				e.Globals.Reserve(name)
				w.ioNames[key] = name
				continue
			}
			st := m.Pointee(m.MustVariable(entry.Var).Type)
			for m.IsArray(st) {
				st = m.ElementType(st)
			}
			name := e.MemberName(st, uint32(entry.Member))
			if w.tess == nil {
				name = e.Name(entry.Var) + "_" + name
			}
			w.ioNames[key] = globalName(e, name)
		}
	}
}

// entryActive reports whether an interface entry is accessed. Members of
// blocks count only when an access chain reaches them.
func (w *writer) entryActive(entry cross.IOEntry) bool {
	if entry.Member < 0 {
		return true
	}
	members, ok := w.activeMembers[entry.Var]
	return !ok || members[entry.Member]
}

// ioName returns the local or field holding an interface entry.
func (w *writer) ioName(e *cross.Emitter, entry cross.IOEntry) string {
	if entry.Member < 0 {
		return e.Name(entry.Var)
	}
	return w.ioNames[ioKey{entry.Var, entry.Member}]
}

// translationInfo summarizes the last emission.
func (w *writer) translationInfo() *TranslationInfo {
	info := &TranslationInfo{
		EntryPointName:        entryName,
		UsedFeatures:          w.features,
		RequiredVersion:       w.required,
		ResourceBindings:      make(map[string]string),
		AutomaticBindings:     make(map[ir.ID]BindTarget),
		ArgumentBufferIndices: make(map[uint32]uint32),
		BufferSizeIndices:     make(map[ir.ID]uint32),
	}
	for _, r := range w.resources {
		b, ok := w.bindings[r.Var]
		if !ok {
			continue
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("_%d", r.Var)
		}
		kind := b.primary()
		if b.argument {
			info.ResourceBindings[name] = fmt.Sprintf("[[id(%d)]]", b.id(kind))
		} else {
			info.ResourceBindings[name] = b.attribute(kind)
		}
		if !b.explicit {
			info.AutomaticBindings[r.Var] = b.target
		}
	}
	for _, k := range w.opts.Bindings.Unused() {
		if k.Stage == w.ep.Model {
			info.UnusedBindings = append(info.UnusedBindings, k)
		}
	}
	for _, set := range w.argSets {
		info.ArgumentBufferIndices[set] = set
	}
	for v, k := range w.sizeIndex {
		info.BufferSizeIndices[v] = k
	}
	info.NeedsBufferSizeBuffer = w.needsBufferSize
	info.NeedsDynamicOffsetsBuffer = len(w.dynamic) > 0
	if t := w.tess; t != nil {
		info.NeedsIndirectParamsBuffer = t.indirect
		info.NeedsOutputBuffer = t.control
		info.NeedsPatchOutputBuffer = t.control && t.patchOut
		info.NeedsTessFactorBuffer = t.control || t.levelBuffer
		info.NeedsInputBuffer = t.inputBuffer
		info.NeedsPatchInputBuffer = t.patchInBuffer
	}
	info.NeedsOutputBuffer = info.NeedsOutputBuffer || w.vertexKernel
	info.NeedsIndexBuffer = w.vertexKernel && w.opts.VertexIndexType != IndexTypeNone
	info.NeedsSwizzleBuffer = len(w.swizzled) > 0
	info.NeedsViewMaskBuffer = w.multiviewVertex()
	info.NeedsDispatchBaseBuffer = w.dispatchBase && !w.opts.Version.AtLeast(Version1_2)
	switch w.ep.Model {
	case spirv.ExecutionModelGLCompute:
		info.WorkgroupSize, _ = analysis.WorkgroupSize(w.m, w.ep)
	case spirv.ExecutionModelTessellationControl:
		info.WorkgroupSize = [3]uint32{w.tess.vertices, 1, 1}
	}
	info.InputLocations = w.locations(w.iface.Inputs)
	info.OutputLocations = w.locations(w.iface.Outputs)
	if w.emitter != nil {
		w.emitter.Polyfills().Each(func(p cross.Polyfill) {
			info.HelperFunctions = append(info.HelperFunctions, p.Func())
		})
	}
	return info
}

func (w *writer) locations(entries []cross.IOEntry) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, entry := range entries {
		if entry.IsBuiltin || !w.entryActive(entry) {
			continue
		}
		for i := range entry.Locations {
			loc := entry.Location + i
			if !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

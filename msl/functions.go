// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Functions
// =============================================================================

// FunctionHeader implements cross.Dialect. Helper functions take the
// module-scope variables they reach as trailing parameters.
func (w *writer) FunctionHeader(e *cross.Emitter, fn *ir.Function, entry bool) string {
	m := w.m
	if entry {
		return w.entryHeader(e)
	}
	if m.IsArray(fn.ResultType) {
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fn.ID, spirv.OpFunction, "functions returning arrays")
	}
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, w.ParamDecl(e, p))
	}
	params = append(params, w.globalParams(e, fn.ID)...)
	ret := "void"
	if _, void := m.Inner(fn.ResultType).(ir.VoidType); !void {
		ret = w.TypeName(e, fn.ResultType)
	}
	return fmt.Sprintf("static inline __attribute__((always_inline))\n%s %s(%s)", ret, e.Name(fn.ID), strings.Join(params, ", "))
}

// hasOutputStruct reports whether the entry point returns its outputs.
func (w *writer) hasOutputStruct() bool {
	return len(w.outputs.fields) > 0 && (w.tess == nil || !w.tess.control)
}

// entryHeader returns the signature of the entry point: stage input,
// argument buffers, discrete resources, auxiliary buffers and builtins.
func (w *writer) entryHeader(e *cross.Emitter) string {
	var params []string
	switch {
	case w.tess != nil:
		params = append(params, w.tessStageIn()...)
	case len(w.inputs.fields) > 0:
		params = append(params, fmt.Sprintf("%s %s [[stage_in]]", inputStruct, inputParam))
	}
	params = append(params, w.argumentParams()...)
	params = append(params, w.resourceParams(e)...)
	params = append(params, w.auxParams()...)
	params = append(params, w.inputs.params...)

	ret := "void"
	if w.hasOutputStruct() && !w.vertexKernel {
		ret = outputStruct
	}
	var prefix, qual string
	switch {
	case w.vertexKernel:
		qual = "kernel"
	case w.ep.Model == spirv.ExecutionModelVertex:
		qual = "vertex"
	case w.ep.Model == spirv.ExecutionModelFragment:
		qual = "fragment"
		if w.ep.HasMode(spirv.ExecutionModeEarlyFragmentTests) {
			prefix = "[[early_fragment_tests]] "
		}
	case w.ep.Model == spirv.ExecutionModelTessellationEvaluation:
		qual = "vertex"
		prefix = w.patchAttribute() + " "
	default:
		qual = "kernel"
	}
	return fmt.Sprintf("%s%s %s %s(%s)", prefix, qual, ret, entryName, strings.Join(params, ", "))
}

// FunctionPrologue implements cross.Dialect. The entry point declares
// the stage IO locals and the module-scope variables of the invocation.
func (w *writer) FunctionPrologue(e *cross.Emitter, fn *ir.Function, entry bool) {
	if !entry {
		return
	}
	w.resourcePrologue(e)
	if w.tess != nil {
		w.tessPrologue(e)
	}
	if w.vertexKernel {
		w.kernelPrologue(e)
	}
	for _, l := range w.inputs.locals {
		e.Out.Line("%s", l)
	}
	switch {
	case w.hasOutputStruct() && w.vertexKernel:
		w.kernelOutput(e)
	case w.hasOutputStruct():
		e.Out.Line("%s %s = {};", outputStruct, outputLocal)
	}
	for _, l := range w.outputs.locals {
		e.Out.Line("%s", l)
	}
	w.declareGlobals(e)
}

// declareGlobals declares the private and workgroup variables the entry
// point reaches.
func (w *writer) declareGlobals(e *cross.Emitter) {
	m := w.m
	for _, v := range w.reach.Variables {
		vr := m.MustVariable(v)
		t := m.Pointee(vr.Type)
		name := e.Name(v)
		switch vr.Storage {
		case spirv.StorageClassPrivate:
			if vr.Initializer != 0 {
				e.Out.Line("%s = %s;", e.Decl(t, name), e.ConstantInitializer(vr.Initializer))
			} else {
				e.Out.Line("%s;", e.Decl(t, name))
			}
		case spirv.StorageClassWorkgroup:
			e.Out.Line("threadgroup %s;", e.Decl(t, name))
		}
	}
}

// Return implements cross.Dialect. Entry points copy their outputs into
// the output struct first.
func (w *writer) Return(e *cross.Emitter, value ir.ID, tail bool) {
	if e.InEntry() {
		for _, c := range w.outputs.copies {
			e.Out.Line("%s", c)
		}
		switch {
		case w.hasOutputStruct() && !w.vertexKernel:
			e.Out.Line("return %s;", outputLocal)
		case !tail:
			e.Out.Line("return;")
		}
		return
	}
	switch {
	case value != 0:
		e.Out.Line("return %s;", e.Text(value))
	case !tail:
		e.Out.Line("return;")
	}
}

// =============================================================================
// Stage IO
// =============================================================================

// stageIO is one direction of the entry point interface.
type stageIO struct {
	// fields are the members of the stage struct and patch those of the
	// per-patch struct.
	fields []string
	patch  []string
	// params are builtin entry parameters.
	params []string
	// locals are prologue statements declaring the IO locals.
	locals []string
	// copies are the statements filling the output struct.
	copies []string
}

// attrs renders an attribute list, skipping empty entries.
func attrs(list ...string) string {
	var kept []string
	for _, a := range list {
		if a != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return " [[" + strings.Join(kept, ", ") + "]]"
}

// interpolationAttr returns the sampling and interpolation attribute of
// a fragment input.
func interpolationAttr(entry cross.IOEntry) string {
	switch {
	case entry.Flat:
		return "flat"
	case entry.NoPerspective && entry.Centroid:
		return "centroid_no_perspective"
	case entry.NoPerspective && entry.Sample:
		return "sample_no_perspective"
	case entry.NoPerspective:
		return "center_no_perspective"
	case entry.Centroid:
		return "centroid_perspective"
	case entry.Sample:
		return "sample_perspective"
	}
	return ""
}

func userAttr(loc, component uint32) string {
	if component != 0 {
		return fmt.Sprintf("user(locn%d_%d)", loc, component)
	}
	return fmt.Sprintf("user(locn%d)", loc)
}

// ioPart is one location-sized field of a split interface entry.
type ioPart struct {
	field string
	typ   ir.ID
	// elem selects the part from the local, or "" for the whole value.
	elem string
	loc  uint32
}

// locationParts splits an entry into one field per location. Arrays and
// matrices become a field per element or column.
func (w *writer) locationParts(entry cross.IOEntry, name string) []ioPart {
	m := w.m
	t := entry.Type
	switch {
	case m.IsStruct(t):
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable, "struct stage IO %q", name)
	case m.IsArray(t) || m.IsMatrix(t):
		elem := m.ElementType(t)
		if m.IsStruct(elem) || m.IsArray(elem) || m.IsMatrix(elem) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable, "nested stage IO %q", name)
		}
		var n uint32
		if m.IsMatrix(t) {
			n = m.Columns(t)
		} else {
			n, _ = m.ArrayLength(t)
		}
		parts := make([]ioPart, n)
		for i := range parts {
			parts[i] = ioPart{
				field: fmt.Sprintf("%s_%d", name, i), typ: elem,
				elem: fmt.Sprintf("[%d]", i), loc: entry.Location + ir.Index(i),
			}
		}
		return parts
	}
	return []ioPart{{field: name, typ: t, loc: entry.Location}}
}

func (w *writer) stageInputs(e *cross.Emitter) stageIO {
	var io stageIO
	if w.tess != nil {
		w.tessNames(e, &io)
	}
	w.kernelInputs(e, &io)
	w.viewInputs(e, &io)
	w.dispatchBaseInputs(&io)
	for _, entry := range w.iface.Inputs {
		if !w.entryActive(entry) {
			continue
		}
		name := w.ioName(e, entry)
		switch {
		case w.tess != nil && w.tessInput(e, &io, entry, name):
		case entry.IsBuiltin:
			w.builtinInput(e, &io, entry, name)
		default:
			w.locationInput(e, &io, entry, name)
		}
	}
	if w.tess != nil {
		w.tessFinish(&io)
	}
	if w.ep.Model != spirv.ExecutionModelFragment {
		return io
	}
	if w.opts.ForceSampleRateShading {
		w.ensureSampleID(e, &io)
	}
	for _, r := range w.resources {
		if r.Kind != cross.ResourceSubpassInput || w.opts.UseFramebufferFetchSubpasses {
			continue
		}
		if w.fragCoord == "" {
			w.fragCoord = globalName(e, "gl_FragCoord")
			io.params = append(io.params, fmt.Sprintf("float4 %s [[position]]", w.fragCoord))
		}
		if w.opts.ArrayedSubpassInput {
			w.ensureLayer(e, &io)
		}
	}
	return io
}

// locationInput declares a user input as stage input fields and copies
// them into the local of the entry.
func (w *writer) locationInput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	fragment := w.ep.Model == spirv.ExecutionModelFragment
	src := inputParam + "."
	if fragment && w.interpolants[entry.Var] {
		if entry.Member >= 0 || w.m.IsArray(entry.Type) || w.m.IsMatrix(entry.Type) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable, "interpolation of aggregate input %q", name)
		}
		mode := "perspective"
		if entry.NoPerspective {
			mode = "no_perspective"
		}
		io.fields = append(io.fields, fmt.Sprintf("interpolant<%s, interpolation::%s> %s%s;",
			w.TypeName(e, entry.Type), mode, name, attrs(userAttr(entry.Location, entry.Component))))
		w.interpFields[entry.Var] = src + name
		io.locals = append(io.locals, fmt.Sprintf("%s = %s%s.interpolate_at_center();", e.Decl(entry.Type, name), src, name))
		return
	}
	parts := w.locationParts(entry, name)
	for _, part := range parts {
		var attr string
		if fragment {
			attr = attrs(userAttr(part.loc, entry.Component), interpolationAttr(entry))
		} else {
			attr = attrs(fmt.Sprintf("attribute(%d)", part.loc))
		}
		io.fields = append(io.fields, fmt.Sprintf("%s %s%s;", w.TypeName(e, part.typ), part.field, attr))
	}
	if len(parts) == 1 && parts[0].elem == "" {
		io.locals = append(io.locals, fmt.Sprintf("%s = %s%s;", e.Decl(entry.Type, name), src, name))
		return
	}
	io.locals = append(io.locals, e.Decl(entry.Type, name)+";")
	for _, part := range parts {
		io.locals = append(io.locals, fmt.Sprintf("%s%s = %s%s;", name, part.elem, src, part.field))
	}
}

// builtinParam declares an input builtin as an entry parameter of the
// Metal type. A SPIR-V type that differs is converted into a local.
func (w *writer) builtinParam(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name, typ, attr string) string {
	m := w.m
	if !m.IsArray(entry.Type) && w.TypeName(e, entry.Type) == typ {
		io.params = append(io.params, fmt.Sprintf("%s %s [[%s]]", typ, name, attr))
		return name
	}
	raw := globalName(e, name+"_in")
	io.params = append(io.params, fmt.Sprintf("%s %s [[%s]]", typ, raw, attr))
	w.builtinLocal(e, io, entry, name, raw)
	return raw
}

// builtinLocal declares the local of an input builtin from expr.
func (w *writer) builtinLocal(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name, expr string) {
	m := w.m
	if m.IsArray(entry.Type) {
		expr = "{ " + w.Cast(e, m.ElementType(entry.Type), expr) + " }"
	} else {
		expr = w.Cast(e, entry.Type, expr)
	}
	io.locals = append(io.locals, fmt.Sprintf("%s = %s;", e.Decl(entry.Type, name), expr))
}

// simdStage gates a simdgroup attribute on the stage.
func (w *writer) simdStage(what string) {
	if w.ep.Model == spirv.ExecutionModelGLCompute || w.tess != nil && w.tess.control {
		w.need(Version2_0, FeatureSimdGroup, what)
		return
	}
	w.need(Version2_2, FeatureSimdGroup, what+" outside compute")
}

// quadMode reports whether subgroups lower to quadgroups.
func (w *writer) quadMode() bool {
	return w.opts.Platform == PlatformIOS && !w.opts.IOSUseSimdgroupFunctions
}

func (w *writer) builtinInput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	param := func(typ, attr string) string { return w.builtinParam(e, io, entry, name, typ, attr) }
	local := func(expr string) { w.builtinLocal(e, io, entry, name, expr) }
	model := w.ep.Model
	fail := func() {
		ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable, "builtin %s is not supported in %s shaders",
			cross.BuiltinName(entry.Builtin), model)
	}
	if w.vertexKernel && w.kernelBuiltin(e, io, entry, name) {
		return
	}
	switch entry.Builtin {
	case spirv.BuiltInVertexIndex, spirv.BuiltInVertexID:
		param("uint", "vertex_id")
	case spirv.BuiltInInstanceIndex, spirv.BuiltInInstanceID:
		if w.multiviewVertex() {
			local(w.viewInstance())
			return
		}
		param("uint", "instance_id")
	case spirv.BuiltInBaseVertex, spirv.BuiltInBaseInstance:
		if w.opts.EnableBaseIndexZero {
			local("0u")
			return
		}
		if entry.Builtin == spirv.BuiltInBaseInstance && w.view.base != "" {
			local(w.view.base)
			return
		}
		if w.opts.Platform == PlatformIOS && !w.opts.IOSSupportBaseVertexInstance {
			ir.RaiseAt(ir.ErrUnsupportedShaderModel, entry.Var, spirv.OpVariable,
				"%s on iOS requires ios_support_base_vertex_instance", cross.BuiltinName(entry.Builtin))
		}
		w.need(Version1_1, 0, cross.BuiltinName(entry.Builtin))
		if entry.Builtin == spirv.BuiltInBaseVertex {
			param("uint", "base_vertex")
		} else {
			param("uint", "base_instance")
		}
	case spirv.BuiltInFragCoord:
		w.fragCoord = param("float4", "position")
	case spirv.BuiltInFrontFacing:
		param("bool", "front_facing")
	case spirv.BuiltInPointCoord:
		param("float2", "point_coord")
	case spirv.BuiltInSampleID:
		w.sampleID = param("uint", "sample_id")
	case spirv.BuiltInSamplePosition:
		local(fmt.Sprintf("get_sample_position(%s)", w.ensureSampleID(e, io)))
	case spirv.BuiltInSampleMask:
		param("uint", "sample_mask")
		if w.opts.AdditionalFixedSampleMask != 0xffffffff {
			io.locals = append(io.locals, fmt.Sprintf("%s[0] &= %s;", name,
				w.Cast(e, w.m.ElementType(entry.Type), fmt.Sprintf("0x%xu", w.opts.AdditionalFixedSampleMask))))
		}
	case spirv.BuiltInPrimitiveID:
		if model == spirv.ExecutionModelFragment {
			w.needOn(Version2_2, Version2_3, 0, "gl_PrimitiveID in fragment shaders")
		}
		param("uint", "primitive_id")
	case spirv.BuiltInLayer:
		if w.layer != "" {
			local(w.layer)
			return
		}
		w.needOn(Version2_2, Version2_3, 0, "gl_Layer in fragment shaders")
		w.layer = param("uint", "render_target_array_index")
	case spirv.BuiltInViewIndex:
		w.viewIndexInput(e, io, entry, name)
	case spirv.BuiltInViewportIndex:
		w.need(Version2_3, 0, "gl_ViewportIndex in fragment shaders")
		param("uint", "viewport_array_index")
	case spirv.BuiltInHelperInvocation:
		w.needOn(Version2_3, Version2_3, FeatureHelperInvocation, "gl_HelperInvocation")
		w.helperVar = entry.Var
		local("simd_is_helper_thread()")
	case spirv.BuiltInDeviceIndex:
		local(fmt.Sprintf("%du", w.opts.DeviceIndex))
	case spirv.BuiltInGlobalInvocationID:
		param("uint3", "thread_position_in_grid")
		w.offsetDispatch(e, io, entry, name)
	case spirv.BuiltInLocalInvocationID:
		param("uint3", "thread_position_in_threadgroup")
	case spirv.BuiltInWorkgroupID:
		param("uint3", "threadgroup_position_in_grid")
		w.offsetDispatch(e, io, entry, name)
	case spirv.BuiltInLocalInvocationIndex:
		param("uint", "thread_index_in_threadgroup")
	case spirv.BuiltInNumWorkgroups:
		param("uint3", "threadgroups_per_grid")
	case spirv.BuiltInSubgroupID:
		w.need(Version2_0, FeatureSimdGroup, "gl_SubgroupID")
		param("uint", "simdgroup_index_in_threadgroup")
	case spirv.BuiltInNumSubgroups:
		w.need(Version2_0, FeatureSimdGroup, "gl_NumSubgroups")
		param("uint", "simdgroups_per_threadgroup")
	case spirv.BuiltInSubgroupSize:
		switch {
		case w.opts.EmulateSubgroups:
			local("1u")
		case w.opts.FixedSubgroupSize != 0:
			local(fmt.Sprintf("%du", w.opts.FixedSubgroupSize))
		case w.quadMode():
			local("4u")
		case model == spirv.ExecutionModelGLCompute:
			param("uint", "thread_execution_width")
		default:
			w.simdStage("gl_SubgroupSize")
			param("uint", "threads_per_simdgroup")
		}
	case spirv.BuiltInSubgroupLocalInvocationID:
		switch {
		case w.opts.EmulateSubgroups:
			local("0u")
		case w.quadMode():
			w.need(Version2_0, FeatureQuadGroup, "gl_SubgroupInvocationID")
			param("uint", "thread_index_in_quadgroup")
		default:
			w.simdStage("gl_SubgroupInvocationID")
			param("uint", "thread_index_in_simdgroup")
		}
	default:
		fail()
	}
}

// ensureSampleID returns the sample index parameter, declaring it when
// the shader has none.
func (w *writer) ensureSampleID(e *cross.Emitter, io *stageIO) string {
	if w.sampleID == "" {
		w.sampleID = globalName(e, "gl_SampleID")
		io.params = append(io.params, fmt.Sprintf("uint %s [[sample_id]]", w.sampleID))
	}
	return w.sampleID
}

func (w *writer) stageOutputs(e *cross.Emitter) stageIO {
	var io stageIO
	m := w.m
	sampleMask, layer := false, false
	for _, entry := range w.iface.Outputs {
		if !w.entryActive(entry) {
			continue
		}
		name := w.ioName(e, entry)
		if w.tess != nil && w.tessOutput(e, &io, entry, name) {
			continue
		}
		decl := e.Decl(entry.Type, name)
		if init := m.MustVariable(entry.Var).Initializer; init != 0 && entry.Member < 0 {
			io.locals = append(io.locals, fmt.Sprintf("%s = %s;", decl, e.ConstantInitializer(init)))
		} else {
			io.locals = append(io.locals, decl+";")
		}
		switch {
		case entry.IsBuiltin:
			sampleMask = sampleMask || entry.Builtin == spirv.BuiltInSampleMask
			layer = layer || entry.Builtin == spirv.BuiltInLayer
			w.builtinOutput(e, &io, entry, name)
		case w.ep.Model == spirv.ExecutionModelFragment:
			w.colorOutput(e, &io, entry, name)
		default:
			for _, part := range w.locationParts(entry, name) {
				io.fields = append(io.fields, fmt.Sprintf("%s %s%s;", w.TypeName(e, part.typ), part.field,
					attrs(userAttr(part.loc, entry.Component))))
				io.copies = append(io.copies, fmt.Sprintf("%s.%s = %s%s;", outputLocal, part.field, name, part.elem))
			}
		}
	}
	w.viewLayer(e, &io, layer)
	if w.ep.Model == spirv.ExecutionModelFragment && !sampleMask && w.opts.AdditionalFixedSampleMask != 0xffffffff {
		field := globalName(e, "gl_SampleMask")
		io.fields = append(io.fields, fmt.Sprintf("uint %s [[sample_mask]];", field))
		io.copies = append(io.copies, fmt.Sprintf("%s.%s = 0x%xu;", outputLocal, field, w.opts.AdditionalFixedSampleMask))
	}
	return io
}

// colorOutput declares a fragment color output. Outputs outside the
// enabled mask stay locals.
func (w *writer) colorOutput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	m := w.m
	index := ""
	if idx, ok := m.Decoration(entry.Var, spirv.DecorationIndex); ok {
		index = fmt.Sprintf("index(%d)", idx)
	}
	for _, part := range w.locationParts(entry, name) {
		if part.loc < 32 && w.opts.EnableFragOutputMask&(1<<part.loc) == 0 {
			continue
		}
		typ := w.TypeName(e, part.typ)
		value := name + part.elem
		if n := m.VectorSize(part.typ); w.opts.PadFragmentOutputComponents && n < 4 {
			s := m.ScalarOf(part.typ)
			args := []string{value}
			for k := n; k < 4; k++ {
				if k == 3 {
					args = append(args, w.literal(s, 1))
				} else {
					args = append(args, w.literal(s, 0))
				}
			}
			typ = w.scalarName(s) + "4"
			value = cross.Call(typ, args...)
		}
		io.fields = append(io.fields, fmt.Sprintf("%s %s%s;", typ, part.field, attrs(fmt.Sprintf("color(%d)", part.loc), index)))
		io.copies = append(io.copies, fmt.Sprintf("%s.%s = %s;", outputLocal, part.field, value))
	}
}

func (w *writer) builtinOutput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	m := w.m
	dst := outputLocal + "." + name
	add := func(typ, attr, value string) {
		io.fields = append(io.fields, fmt.Sprintf("%s %s [[%s]];", typ, name, attr))
		io.copies = append(io.copies, fmt.Sprintf("%s = %s;", dst, value))
	}
	switch entry.Builtin {
	case spirv.BuiltInPosition:
		attr := "position"
		if entry.Invariant {
			w.need(Version2_1, 0, "invariant positions")
			attr += ", invariant"
		}
		add("float4", attr, name)
		if w.opts.FlipVertexY {
			io.copies = append(io.copies, fmt.Sprintf("%s.y = -(%s.y);", dst, dst))
		}
	case spirv.BuiltInPointSize:
		add("float", "point_size", name)
	case spirv.BuiltInClipDistance:
		n, _ := m.ArrayLength(entry.Type)
		io.fields = append(io.fields, fmt.Sprintf("float %s [[clip_distance]] [%d];", name, n))
		for i := range n {
			io.copies = append(io.copies, fmt.Sprintf("%s[%d] = %s[%d];", dst, i, name, i))
		}
		if w.opts.EnableClipDistanceUserVarying {
			for i := range n {
				field := fmt.Sprintf("%s_%d", name, i)
				io.fields = append(io.fields, fmt.Sprintf("float %s [[user(clip%d)]];", field, i))
				io.copies = append(io.copies, fmt.Sprintf("%s.%s = %s[%d];", outputLocal, field, name, i))
			}
		}
	case spirv.BuiltInLayer:
		w.needOn(Version2_0, Version2_1, 0, "gl_Layer")
		add("uint", "render_target_array_index", "uint("+name+")")
	case spirv.BuiltInViewportIndex:
		w.needOn(Version2_0, Version2_1, 0, "gl_ViewportIndex")
		add("uint", "viewport_array_index", "uint("+name+")")
	case spirv.BuiltInFragDepth:
		mode := "any"
		switch {
		case w.ep.HasMode(spirv.ExecutionModeDepthGreater):
			mode = "greater"
		case w.ep.HasMode(spirv.ExecutionModeDepthLess):
			mode = "less"
		}
		add("float", "depth("+mode+")", name)
	case spirv.BuiltInSampleMask:
		value := fmt.Sprintf("uint(%s[0])", name)
		add("uint", "sample_mask", value)
		if w.opts.AdditionalFixedSampleMask != 0xffffffff {
			io.copies = append(io.copies, fmt.Sprintf("%s &= 0x%xu;", dst, w.opts.AdditionalFixedSampleMask))
		}
	case spirv.BuiltInFragStencilRefEXT:
		w.need(Version2_1, 0, "stencil reference output")
		add("uint", "stencil", "uint("+name+")")
	default:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable, "output builtin %s is not supported in %s shaders",
			cross.BuiltinName(entry.Builtin), w.ep.Model)
	}
}

func (w *writer) writeStageStructs(out *cross.Buffer) {
	structs := []struct {
		name   string
		fields []string
	}{
		{inputStruct, w.inputs.fields},
		{patchInStruct, w.inputs.patch},
		{outputStruct, w.outputs.fields},
		{patchOutStruct, w.outputs.patch},
	}
	for _, s := range structs {
		if len(s.fields) == 0 {
			continue
		}
		out.Line("struct %s", s.name)
		out.Line("{")
		out.Indent()
		for _, f := range s.fields {
			if w.vertexKernel && s.name == outputStruct {
				f = plainField(f)
			}
			out.Line("%s", f)
		}
		out.Dedent()
		out.Line("};")
		out.Blank()
	}
}

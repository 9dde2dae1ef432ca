// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Constants
// =============================================================================

// writeSpecConstants declares scalar specialization constants. Constants
// with a SpecId become function constants falling back to their default.
func (w *writer) writeSpecConstants(e *cross.Emitter, out *cross.Buffer) {
	specs := e.SpecScalars()
	for _, id := range specs {
		c := w.m.MustConstant(id)
		name := e.Name(id)
		tn := w.TypeName(e, c.Type)
		sid, ok := e.SpecID(id)
		if ok && !w.opts.Version.AtLeast(Version1_2) {
			w.log.Info("function constants need MSL 1.2, using the default value", "constant", name, "specID", sid)
			ok = false
		}
		if !ok {
			out.Line("constant %s %s = %s;", tn, name, e.SpecDefault(id))
			continue
		}
		w.need(Version1_2, FeatureFunctionConstants, "function constants")
		tmp := globalName(e, name+"_tmp")
		out.Line("constant %s %s [[function_constant(%d)]];", tn, tmp, sid)
		out.Line("constant %s %s = is_function_constant_defined(%s) ? %s : %s;", tn, name, tmp, tmp, e.SpecDefault(id))
	}
	if len(specs) > 0 {
		out.Blank()
	}
}

func (w *writer) writeConstants(e *cross.Emitter, out *cross.Buffer) {
	m := w.m
	consts := e.CompositeConstants()
	for _, id := range consts {
		c := m.MustConstant(id)
		name := e.Name(id)
		decl := e.Decl(c.Type, name)
		if b, ok := m.BuiltIn(id); ok && b == spirv.BuiltInWorkgroupSize {
			decl = w.TypeName(e, c.Type) + " " + name + " [[maybe_unused]]"
		}
		if m.IsArray(c.Type) {
			w.constNames[name] = true
		}
		out.Line("constant %s = %s;", decl, e.ConstantInitializer(id))
	}
	if len(consts) > 0 {
		out.Blank()
	}
}

// writeConstexprSamplers declares the inline samplers replacing sampler
// descriptors.
func (w *writer) writeConstexprSamplers(e *cross.Emitter, out *cross.Buffer) {
	n := out.Lines()
	for _, r := range w.resources {
		b := w.bindings[r.Var]
		if b == nil || b.constexpr == nil {
			continue
		}
		if r.Count != 1 {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, r.Var, spirv.OpVariable, "inline sampler array %q", r.Name)
		}
		w.features |= FeatureConstexprSamplers
		if b.constexpr.YCbCrConversionEnable {
			w.features |= FeatureYCbCr
		}
		name := e.Name(r.Var)
		if r.Kind == cross.ResourceCombinedImageSampler {
			name = w.samplerName(e, r.Var)
		}
		if args := b.constexpr.arguments(); len(args) > 0 {
			out.Line("constexpr sampler %s(%s);", name, strings.Join(args, ", "))
		} else {
			out.Line("constexpr sampler %s;", name)
		}
	}
	if out.Lines() > n {
		out.Blank()
	}
}

// =============================================================================
// Resource naming
// =============================================================================

func argStructName(set uint32) string { return fmt.Sprintf("spvDescriptorSetBuffer%d", set) }

func argParamName(set uint32) string { return fmt.Sprintf("spvDescriptorSet%d", set) }

// argBufferSpace returns the address space of the argument buffer of a set.
func (w *writer) argBufferSpace(set uint32) string {
	if slices.Contains(w.opts.DeviceStorageSets, set) {
		return "device"
	}
	return "constant"
}

// bufferSpace returns the address space a buffer resource is bound in.
func bufferSpace(r cross.Resource) string {
	switch {
	case r.Kind == cross.ResourceUniformBuffer || r.Kind == cross.ResourcePushConstant:
		return "constant"
	case r.ReadOnly:
		return "const device"
	}
	return "device"
}

// varSpace returns the address space of a module-scope variable.
func (w *writer) varSpace(v ir.ID) string {
	if r, ok := cross.ClassifyResource(w.m, v); ok && r.Kind.IsBuffer() {
		return bufferSpace(r)
	}
	return addressSpace(w.m.MustVariable(v).Storage)
}

// isBufferArray reports whether v is an array of buffer blocks.
func (w *writer) isBufferArray(v ir.ID) bool {
	b := w.bindings[v]
	if b == nil || !b.res.Kind.IsBuffer() || b.res.Kind == cross.ResourcePushConstant {
		return false
	}
	return w.m.IsArray(w.m.Pointee(w.m.MustVariable(v).Type))
}

// isResourceArray reports whether a resource variable is declared as an
// array.
func (w *writer) isResourceArray(v ir.ID) bool {
	return w.m.IsArray(w.m.Pointee(w.m.MustVariable(v).Type))
}

// resourceTexture spells the texture type of an image resource.
func (w *writer) resourceTexture(r cross.Resource) string {
	return w.textureType(w.imageOf(r.Type), w.resourceAccess(r))
}

// nameResources names the extra parameters resources split into: the raw
// binding of dynamic-offset buffers, one parameter per element of buffer
// arrays and one texture per image plane.
func (w *writer) nameResources(e *cross.Emitter) {
	for _, r := range w.resources {
		b := w.bindings[r.Var]
		if b == nil {
			continue
		}
		name := e.Name(r.Var)
		if _, ok := w.dynamic[r.Var]; ok && !b.argument {
			w.rawNames[r.Var] = globalName(e, name+"_base")
		}
		if w.isBufferArray(r.Var) && !b.argument {
			parts := make([]string, b.count)
			for i := range parts {
				parts[i] = globalName(e, fmt.Sprintf("%s_%d", name, i))
			}
			w.parts[r.Var] = parts
		}
		if b.planes > 1 {
			if b.count != 1 {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, r.Var, spirv.OpVariable, "multi-planar image array %q", r.Name)
			}
			planes := []string{name}
			for k := uint32(1); k < b.planes; k++ {
				planes = append(planes, globalName(e, fmt.Sprintf("%sPlane%d", name, k)))
			}
			w.planes[r.Var] = planes
		}
	}
}

// =============================================================================
// Argument buffers
// =============================================================================

// argMember is one member of an argument buffer struct.
type argMember struct {
	id    uint32
	slots uint32
	space string
	decl  string
}

// arrayDecl declares name as a resource or an array of n resources.
func arrayDecl(t, name, attr string, n uint32, array bool) string {
	if array {
		return fmt.Sprintf("array<%s, %d> %s %s", t, n, name, attr)
	}
	return fmt.Sprintf("%s %s %s", t, name, attr)
}

func idAttr(id uint32) string { return fmt.Sprintf("[[id(%d)]]", id) }

// argMembers lists the members of the argument buffer of a set by id.
func (w *writer) argMembers(e *cross.Emitter, set uint32) []argMember {
	var out []argMember
	add := func(id, slots uint32, space, decl string) {
		out = append(out, argMember{id: id, slots: slots, space: space, decl: decl})
	}
	for _, r := range w.resources {
		b := w.bindings[r.Var]
		if b == nil || !b.argument || r.Set != set {
			continue
		}
		name := e.Name(r.Var)
		array := w.isResourceArray(r.Var)
		switch {
		case b.inline:
			if array {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, r.Var, spirv.OpVariable, "inline uniform block array %q", r.Name)
			}
			add(b.target.Buffer, 1, spaceBuffer, fmt.Sprintf("%s %s %s", e.TypeName(r.Type), name, idAttr(b.target.Buffer)))
		case r.Kind == cross.ResourceAccelerationStructure:
			add(b.target.Buffer, b.count, spaceBuffer, arrayDecl(e.TypeName(r.Type), name, idAttr(b.target.Buffer), b.count, array))
		case r.Kind.IsBuffer():
			decl := fmt.Sprintf("%s %s* %s %s", bufferSpace(r), e.TypeName(r.Type), name, idAttr(b.target.Buffer))
			if array {
				decl += fmt.Sprintf(" [%d]", b.count)
			}
			add(b.target.Buffer, b.count, spaceBuffer, decl)
		}
		if b.usesTexture() {
			tex := w.resourceTexture(r)
			if planes := w.planes[r.Var]; len(planes) > 1 {
				for k, plane := range planes {
					id := b.target.Texture + ir.Index(k)
					add(id, 1, spaceTexture, fmt.Sprintf("%s %s %s", tex, plane, idAttr(id)))
				}
			} else {
				add(b.target.Texture, b.count, spaceTexture, arrayDecl(tex, name, idAttr(b.target.Texture), b.count, array))
			}
		}
		if b.usesSampler() {
			smp := name
			if r.Kind == cross.ResourceCombinedImageSampler {
				smp = w.samplerName(e, r.Var)
			}
			add(b.target.Sampler, b.count, spaceSampler, arrayDecl("sampler", smp, idAttr(b.target.Sampler), b.count, array))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// padMember fills the ids [id, id+n) with placeholders of the kind of
// the member that follows them.
func padMember(name string, id, n uint32, space string) string {
	attr := idAttr(id)
	switch space {
	case spaceTexture:
		return arrayDecl("texture2d<float>", name, attr, n, n > 1)
	case spaceSampler:
		return arrayDecl("sampler", name, attr, n, n > 1)
	}
	if n > 1 {
		return fmt.Sprintf("constant uint* %s %s [%d]", name, attr, n)
	}
	return fmt.Sprintf("constant uint* %s %s", name, attr)
}

func (w *writer) writeArgumentBuffers(e *cross.Emitter, out *cross.Buffer) {
	if len(w.argSets) == 0 {
		return
	}
	w.features |= FeatureArgumentBuffers
	for _, set := range w.argSets {
		out.Line("struct %s", argStructName(set))
		out.Line("{")
		out.Indent()
		var next uint32
		for k, mem := range w.argMembers(e, set) {
			if w.opts.PadArgumentBufferResources && mem.id > next {
				out.Line("%s;", padMember(fmt.Sprintf("_m%d_pad", k), next, mem.id-next, mem.space))
			}
			out.Line("%s;", mem.decl)
			next = max(next, mem.id+mem.slots)
		}
		out.Dedent()
		out.Line("};")
		out.Blank()
	}
}

// argumentParams declares the argument buffers of the entry point.
func (w *writer) argumentParams() []string {
	out := make([]string, 0, len(w.argSets))
	for _, set := range w.argSets {
		out = append(out, fmt.Sprintf("%s %s& %s [[buffer(%d)]]", w.argBufferSpace(set), argStructName(set), argParamName(set), set))
	}
	return out
}

// =============================================================================
// Entry point resources
// =============================================================================

// resourceParams declares the discrete resources of the entry point.
func (w *writer) resourceParams(e *cross.Emitter) []string {
	m := w.m
	var out []string
	for _, r := range w.resources {
		b := w.bindings[r.Var]
		if b == nil || b.argument {
			continue
		}
		name := e.Name(r.Var)
		array := w.isResourceArray(r.Var)
		if r.Kind == cross.ResourceSubpassInput && w.opts.UseFramebufferFetchSubpasses {
			idx, _ := m.Decoration(r.Var, spirv.DecorationInputAttachmentIndex)
			elem := w.scalarName(m.ScalarOf(w.imageOf(r.Type).SampledType))
			out = append(out, fmt.Sprintf("%s4 %s [[color(%d)]]", elem, name, idx))
			continue
		}
		switch {
		case r.Kind == cross.ResourceAccelerationStructure:
			out = append(out, arrayDecl(e.TypeName(r.Type), name, b.attribute(spaceBuffer), b.count, array))
		case r.Kind.IsBuffer():
			space, tn := bufferSpace(r), e.TypeName(r.Type)
			switch {
			case w.parts[r.Var] != nil:
				for i, part := range w.parts[r.Var] {
					out = append(out, fmt.Sprintf("%s %s& %s [[buffer(%d)]]", space, tn, part, b.target.Buffer+ir.Index(i)))
				}
			case w.rawNames[r.Var] != "":
				out = append(out, fmt.Sprintf("%s %s& %s %s", space, tn, w.rawNames[r.Var], b.attribute(spaceBuffer)))
			default:
				out = append(out, fmt.Sprintf("%s %s& %s %s", space, tn, name, b.attribute(spaceBuffer)))
			}
		}
		if b.usesTexture() {
			tex := w.resourceTexture(r)
			if planes := w.planes[r.Var]; len(planes) > 1 {
				for k, plane := range planes {
					out = append(out, fmt.Sprintf("%s %s [[texture(%d)]]", tex, plane, b.target.Texture+ir.Index(k)))
				}
			} else {
				out = append(out, arrayDecl(tex, name, b.attribute(spaceTexture), b.count, array))
			}
		}
		if b.usesSampler() {
			smp := name
			if r.Kind == cross.ResourceCombinedImageSampler {
				smp = w.samplerName(e, r.Var)
			}
			out = append(out, arrayDecl("sampler", smp, b.attribute(spaceSampler), b.count, array))
		}
	}
	return out
}

// auxParams declares the auxiliary buffers of the entry point.
func (w *writer) auxParams() []string {
	var out []string
	for _, aux := range w.auxBuffers() {
		var t string
		switch aux.name {
		case tessOutName:
			t = "device " + outputStruct + "*"
		case tessPatchOutName:
			t = "device " + patchOutStruct + "*"
		case tessLevelName:
			t = "device " + w.tessFactorsType() + "*"
			if w.ep.Model == spirv.ExecutionModelTessellationEvaluation {
				t = "const " + t
			}
		case tessInName:
			t = "device " + inputStruct + "*"
			if w.ep.Model == spirv.ExecutionModelTessellationEvaluation {
				t = "const device " + inputStruct + "*"
			}
		case tessPatchInName:
			t = "const device " + patchInStruct + "*"
		case dispatchBaseName:
			t = "constant uint3&"
		case indexBufferName:
			t = "const device " + w.opts.VertexIndexType.element() + "*"
		default:
			t = "constant uint*"
		}
		out = append(out, fmt.Sprintf("%s %s [[buffer(%d)]]", t, aux.name, aux.index))
	}
	return out
}

// resourcePrologue binds the entry point locals of dynamic-offset buffers
// and buffer arrays.
func (w *writer) resourcePrologue(e *cross.Emitter) {
	for _, r := range w.resources {
		b := w.bindings[r.Var]
		if b == nil || !r.Kind.IsBuffer() || b.inline {
			continue
		}
		name := e.Name(r.Var)
		space, tn := bufferSpace(r), e.TypeName(r.Type)
		if k, ok := w.dynamic[r.Var]; ok {
			src := "&" + w.rawNames[r.Var]
			if b.argument {
				src = argParamName(r.Set) + "." + name
			}
			e.Out.Line("%s %s& %s = *(%s %s*)((%s char*)%s + %s[%d]);",
				space, tn, name, space, tn, space, src, dynamicOffsetsName, k)
			continue
		}
		parts := w.parts[r.Var]
		if parts == nil {
			continue
		}
		e.Out.Line("%s %s* %s[] =", space, tn, name)
		e.Out.Line("{")
		e.Out.Indent()
		for i, part := range parts {
			sep := ","
			if i == len(parts)-1 {
				sep = ""
			}
			e.Out.Line("&%s%s", part, sep)
		}
		e.Out.Dedent()
		e.Out.Line("};")
	}
}

// =============================================================================
// Variable references
// =============================================================================

// VariableRef implements cross.Dialect. Inside the entry point, resources
// in argument buffers are members of the argument buffer parameter.
func (w *writer) VariableRef(e *cross.Emitter, v ir.ID) string {
	name := e.Name(v)
	b := w.bindings[v]
	if b == nil || !b.argument || !e.InEntry() {
		return name
	}
	if _, ok := w.dynamic[v]; ok {
		return name
	}
	if b.res.Kind == cross.ResourceSampler && b.constexpr != nil {
		return name
	}
	ref := argParamName(b.res.Set) + "." + name
	if b.res.Kind.IsBuffer() && !b.inline && !w.isBufferArray(v) {
		return "(*" + ref + ")"
	}
	return ref
}

// SamplerRef implements cross.Dialect.
func (w *writer) SamplerRef(e *cross.Emitter, v ir.ID) string {
	name := w.samplerName(e, v)
	if name == "" || !e.InEntry() {
		return name
	}
	if b := w.bindings[v]; b != nil && b.argument && b.constexpr == nil {
		return argParamName(b.res.Set) + "." + name
	}
	return name
}

// samplerName returns the sampler split off a combined image-sampler
// variable or parameter, or "" when v has none.
func (w *writer) samplerName(e *cross.Emitter, v ir.ID) string {
	m := w.m
	if name, ok := w.samplers[v]; ok {
		return name
	}
	var t ir.ID
	switch m.KindOf(v) {
	case ir.KindVariable:
		t = m.Pointee(m.MustVariable(v).Type)
	case ir.KindParameter:
		t = m.TypeOf(v)
		if m.IsPointer(t) {
			t = m.Pointee(t)
		}
	default:
		return ""
	}
	for m.IsArray(t) {
		t = m.ElementType(t)
	}
	si, ok := m.Inner(t).(ir.SampledImageType)
	if !ok || w.imageOf(si.Image).Dim == spirv.DimBuffer {
		return ""
	}
	var name string
	if m.KindOf(v) == ir.KindVariable {
		name = globalName(e, e.Name(v)+"Smplr")
	} else {
		name = e.FreshLocal(e.LocalName(v) + "Smplr")
	}
	w.samplers[v] = name
	return name
}

// AdjustPointer implements cross.Dialect. Tessellation IO moves into the
// patch arrays, interface block members become their locals and buffer
// arrays dereference the selected element.
func (w *writer) AdjustPointer(e *cross.Emitter, p *cross.Pointer) {
	m := w.m
	root := p.Root
	if p.Texel != nil || m.KindOf(root) != ir.KindVariable {
		return
	}
	if w.tess != nil && w.tessPointer(e, p) {
		return
	}
	switch {
	case w.ioBlocks[root]:
		if len(p.Steps) == 0 || p.Steps[0].Member < 0 {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "interface block %q accessed as a whole", e.Name(root))
		}
		p.Rebase(w.ioNames[ioKey{root, p.Steps[0].Member}], 1, p.Steps[0].Type)
	case w.isBufferArray(root) && len(p.Steps) > 0:
		q := &cross.Pointer{Root: root, Base: p.Base, Storage: p.Storage, BaseType: p.BaseType,
			Steps: p.Steps[:1], Type: p.Steps[0].Type}
		p.Rebase("(*"+e.Lvalue(q)+")", 1, p.Steps[0].Type)
	}
}

// =============================================================================
// Helper function parameters
// =============================================================================

// globalParams declares the module-scope variables a helper function
// receives from its caller.
func (w *writer) globalParams(e *cross.Emitter, fnID ir.ID) []string {
	m := w.m
	var out []string
	for _, v := range w.fnGlobals[fnID] {
		vr := m.MustVariable(v)
		t := m.Pointee(vr.Type)
		name := e.Name(v)
		if b := w.bindings[v]; b != nil {
			out = append(out, w.helperResource(e, fnID, b, name)...)
			continue
		}
		switch vr.Storage {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			if w.ioBlocks[v] {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fnID, spirv.OpFunction,
					"interface block %q accessed outside the entry point", name)
			}
			out = append(out, w.refDecl(e, "thread", t, name))
		case spirv.StorageClassWorkgroup:
			out = append(out, w.refDecl(e, "threadgroup", t, name))
		case spirv.StorageClassPrivate:
			out = append(out, w.refDecl(e, "thread", t, name))
		default:
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fnID, spirv.OpFunction,
				"%s variable %q accessed outside the entry point", vr.Storage, name)
		}
	}
	if w.fnSizes[fnID] {
		out = append(out, "constant uint* "+bufferSizeName)
	}
	if w.fnSwizzle[fnID] {
		out = append(out, "constant uint* "+swizzleName)
	}
	return out
}

// helperResource declares a resource passed to a helper function.
func (w *writer) helperResource(e *cross.Emitter, fnID ir.ID, b *binding, name string) []string {
	r := b.res
	array := w.isResourceArray(r.Var)
	fail := func(what string) {
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fnID, spirv.OpFunction, "%s %q accessed outside the entry point", what, name)
	}
	space := "thread"
	if b.argument {
		space = w.argBufferSpace(r.Set)
	}
	opaque := func(t, n string) string {
		if array {
			return fmt.Sprintf("%s const array<%s, %d>& %s", space, t, b.count, n)
		}
		return t + " " + n
	}
	var out []string
	switch {
	case r.Kind == cross.ResourceSubpassInput && w.opts.UseFramebufferFetchSubpasses:
		elem := w.scalarName(w.m.ScalarOf(w.imageOf(r.Type).SampledType))
		return []string{fmt.Sprintf("%s4 %s", elem, name)}
	case r.Kind == cross.ResourceSubpassInput:
		fail("subpass input")
	case r.Kind == cross.ResourceAccelerationStructure:
		out = append(out, opaque(e.TypeName(r.Type), name))
	case w.isBufferArray(r.Var):
		fail("buffer array")
	case b.inline:
		out = append(out, fmt.Sprintf("%s %s& %s", space, e.TypeName(r.Type), name))
	case r.Kind.IsBuffer():
		out = append(out, fmt.Sprintf("%s %s& %s", bufferSpace(r), e.TypeName(r.Type), name))
	}
	if b.usesTexture() {
		if b.planes > 1 {
			fail("multi-planar image")
		}
		out = append(out, opaque(w.resourceTexture(r), name))
	}
	if b.usesSampler() {
		smp := name
		if r.Kind == cross.ResourceCombinedImageSampler {
			smp = w.samplerName(e, r.Var)
		}
		out = append(out, opaque("sampler", smp))
	}
	return out
}

// CallArgs implements cross.Dialect. Calls pass the module-scope
// variables the callee reaches, mirroring globalParams.
func (w *writer) CallArgs(e *cross.Emitter, callee ir.ID) []string {
	var out []string
	for _, v := range w.fnGlobals[callee] {
		out = append(out, w.VariableRef(e, v))
		if b := w.bindings[v]; b != nil && b.res.Kind == cross.ResourceCombinedImageSampler && b.usesSampler() {
			out = append(out, w.SamplerRef(e, v))
		}
	}
	if w.fnSizes[callee] {
		out = append(out, bufferSizeName)
	}
	if w.fnSwizzle[callee] {
		out = append(out, swizzleName)
	}
	return out
}

// arrayLength lowers OpArrayLength from the buffer size buffer.
func (w *writer) arrayLength(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	base := analysis.BaseVariable(m, inst.Arg(0))
	k, ok := w.sizeIndex[base]
	if !ok || m.KindOf(base) != ir.KindVariable {
		unsupported(inst, "array length of a buffer passed as a pointer")
	}
	if w.isBufferArray(base) {
		unsupported(inst, "array length of an element of a buffer array")
	}
	st := m.Pointee(m.TypeOf(inst.Arg(0)))
	member := inst.Literal(1)
	l := cross.NewLayout(m, cross.RuleFor(m.MustVariable(base).Storage))
	off := l.MemberOffset(st, ir.Position(member))
	stride := l.ArrayStride(m.MemberType(st, member), false, 0)
	size := fmt.Sprintf("%s[%d]", bufferSizeName, k)
	if off > 0 {
		size = fmt.Sprintf("(%s - %d)", size, off)
	}
	e.Bind(inst, fmt.Sprintf("%s / %d", size, stride))
}

// =============================================================================
// Atomics
// =============================================================================

var atomicFuncs = map[spirv.Op]string{
	spirv.OpAtomicExchange:   "atomic_exchange_explicit",
	spirv.OpAtomicIIncrement: "atomic_fetch_add_explicit",
	spirv.OpAtomicIDecrement: "atomic_fetch_sub_explicit",
	spirv.OpAtomicIAdd:       "atomic_fetch_add_explicit",
	spirv.OpAtomicISub:       "atomic_fetch_sub_explicit",
	spirv.OpAtomicSMin:       "atomic_fetch_min_explicit",
	spirv.OpAtomicUMin:       "atomic_fetch_min_explicit",
	spirv.OpAtomicSMax:       "atomic_fetch_max_explicit",
	spirv.OpAtomicUMax:       "atomic_fetch_max_explicit",
	spirv.OpAtomicAnd:        "atomic_fetch_and_explicit",
	spirv.OpAtomicOr:         "atomic_fetch_or_explicit",
	spirv.OpAtomicXor:        "atomic_fetch_xor_explicit",
}

const memoryOrder = "memory_order_relaxed"

// Atomic implements cross.Dialect with the explicit atomic functions on a
// pointer cast to an atomic type.
func (w *writer) Atomic(e *cross.Emitter, inst *ir.Instruction, p *cross.Pointer) {
	m := w.m
	if p.Texel != nil {
		unsupported(inst, "atomics on storage images")
	}
	s := m.ScalarOf(p.Type)
	if s.Kind == ir.ScalarFloat || s.Width != 32 {
		unsupported(inst, "atomics on %d-bit %s values", s.Width, s.Kind)
	}
	space := "device"
	switch p.Storage {
	case spirv.StorageClassWorkgroup:
		space = "threadgroup"
	case spirv.StorageClassStorageBuffer, spirv.StorageClassUniform, spirv.StorageClassPhysicalStorageBuffer:
	default:
		unsupported(inst, "atomics on %s memory", p.Storage)
	}
	w.need(Version1_0, FeatureAtomics, "atomics")
	atomicType := "atomic_uint"
	if s.Kind == ir.ScalarSint {
		atomicType = "atomic_int"
	}
	ptr := fmt.Sprintf("(%s %s*)&%s", space, atomicType, e.Lvalue(p))
	ids := inst.IDOperands()
	switch inst.Op {
	case spirv.OpAtomicLoad:
		e.BindTemp(inst.Result, inst.ResultType, cross.Call("atomic_load_explicit", ptr, memoryOrder))
		return
	case spirv.OpAtomicStore:
		e.Statement("atomic_store_explicit(%s, %s, %s);", ptr, e.Text(ids[3]), memoryOrder)
		return
	case spirv.OpAtomicCompareExchange, spirv.OpAtomicCompareExchangeWeak:
		value, comparator := e.Text(ids[4]), e.Text(ids[5])
		res := e.DeclareResult(inst.Result, inst.ResultType)
		e.Out.Line("do")
		e.Out.Line("{")
		e.Out.Indent()
		e.Out.Line("%s = %s;", res, comparator)
		e.Out.Dedent()
		e.Out.Line("} while (!atomic_compare_exchange_weak_explicit(%s, &%s, %s, %s, %s) && %s == %s);",
			ptr, res, value, memoryOrder, memoryOrder, res, cross.Enclose(comparator))
		return
	}
	fn, ok := atomicFuncs[inst.Op]
	if !ok {
		unsupported(inst, "atomic %s", inst.Op)
	}
	var arg string
	switch inst.Op {
	case spirv.OpAtomicIIncrement, spirv.OpAtomicIDecrement:
		arg = w.literal(s, 1)
	default:
		arg = e.Text(ids[3])
	}
	e.BindTemp(inst.Result, inst.ResultType, cross.Call(fn, ptr, arg, memoryOrder))
}

// =============================================================================
// Array copies
// =============================================================================

// maxArrayCopyDepth is the deepest array nesting the copy helpers take.
const maxArrayCopyDepth = 6

// CopyArray implements cross.Dialect. Metal arrays do not assign, so
// copies go through a template helper per address space pair and depth.
func (w *writer) CopyArray(e *cross.Emitter, t ir.ID, dst, src string, dstStorage, srcStorage spirv.StorageClass) bool {
	depth := e.ArrayDepth(t)
	if depth > maxArrayCopyDepth {
		ir.Raise(ir.ErrUnsupportedArrayNesting, "array copy of %d dimensions, MSL copies at most %d", depth, maxArrayCopyDepth)
	}
	from, fromSpace := w.copySide(srcStorage, src)
	to, toSpace := w.copySide(dstStorage, dst)
	switch to {
	case "Constant":
		ir.Raise(ir.ErrUnsupportedAccessPattern, "array copy into constant memory")
	case "Stack":
		toSpace = "thread"
	}
	switch from {
	case "Device", "ThreadGroup":
		fromSpace = "const " + fromSpace
	case "Stack":
		fromSpace = "thread const"
	}
	name := w.arrayCopyHelper(e, from, to, fromSpace, toSpace, depth)
	e.Out.Line("%s(%s, %s);", name, dst, src)
	return true
}

// copySide names the memory one side of an array copy lives in.
func (w *writer) copySide(sc spirv.StorageClass, text string) (string, string) {
	switch sc {
	case spirv.StorageClassWorkgroup:
		return "ThreadGroup", "threadgroup"
	case spirv.StorageClassStorageBuffer, spirv.StorageClassPhysicalStorageBuffer:
		return "Device", "device"
	case spirv.StorageClassUniform:
		if w.storageBlockText(text) {
			return "Device", "device"
		}
		return "Constant", "constant"
	case spirv.StorageClassPushConstant:
		return "Constant", "constant"
	case spirv.StorageClassPrivate:
		if w.constNames[text] {
			return "Constant", "constant"
		}
	}
	return "Stack", "thread"
}

// storageBlockText reports whether text addresses a Uniform storage class
// buffer declared as a storage buffer.
func (w *writer) storageBlockText(text string) bool {
	e := w.emitter
	for _, r := range w.resources {
		if r.Kind != cross.ResourceStorageBuffer || w.m.MustVariable(r.Var).Storage != spirv.StorageClassUniform {
			continue
		}
		if strings.Contains(text, e.Name(r.Var)) {
			return true
		}
	}
	return false
}

// arrayCopyHelper requests the copy helper of a space pair and depth and
// returns its name. Deeper helpers call the next shallower one.
func (w *writer) arrayCopyHelper(e *cross.Emitter, from, to, fromSpace, toSpace string, depth int) string {
	name := fmt.Sprintf("spvArrayCopyFrom%sTo%s%d", from, to, depth)
	e.Helper(name, func() string {
		inner := "dst[i] = src[i];"
		if depth > 1 {
			inner = w.arrayCopyHelper(e, from, to, fromSpace, toSpace, depth-1) + "(dst[i], src[i]);"
		}
		dims := "ABCDEF"[:depth]
		var params, ext strings.Builder
		params.WriteString("typename T")
		for _, d := range dims {
			params.WriteString(", uint " + string(d))
			ext.WriteString("[" + string(d) + "]")
		}
		return fmt.Sprintf(`template<%s>
inline void %s(%s T (&dst)%s, %s T (&src)%s)
{
    for (uint i = 0; i < A; i++)
    {
        %s
    }
}
`, params.String(), name, toSpace, ext.String(), fromSpace, ext.String(), inner)
	})
	return name
}

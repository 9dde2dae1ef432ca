// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Constants
// =============================================================================

func specMacro(id uint32) string {
	return fmt.Sprintf("SPIRV_CROSS_CONSTANT_ID_%d", id)
}

// writeSpecConstants declares scalar specialization constants, each
// overridable through its SPIRV_CROSS_CONSTANT_ID macro.
func (w *writer) writeSpecConstants(e *cross.Emitter, out *cross.Buffer) {
	specs := e.SpecScalars()
	for _, id := range specs {
		c := w.m.MustConstant(id)
		decl := e.Decl(c.Type, e.Name(id))
		sid, ok := e.SpecID(id)
		if !ok {
			out.Line("static const %s = %s;", decl, e.SpecDefault(id))
			continue
		}
		macro := specMacro(sid)
		out.Line("#ifndef %s", macro)
		out.Line("#define %s %s", macro, e.SpecDefault(id))
		out.Line("#endif")
		out.Line("static const %s = %s;", decl, macro)
	}
	if len(specs) > 0 {
		out.Blank()
	}
}

func (w *writer) writeConstants(e *cross.Emitter, out *cross.Buffer) {
	consts := e.CompositeConstants()
	for _, id := range consts {
		c := w.m.MustConstant(id)
		out.Line("static const %s = %s;", e.Decl(c.Type, e.Name(id)), e.ConstantInitializer(id))
	}
	if len(consts) > 0 {
		out.Blank()
	}
}

// =============================================================================
// Resources
// =============================================================================

// writeVertexInfo declares the base vertex and instance constants when a
// vertex shader reads an index that must include them.
func (w *writer) writeVertexInfo(out *cross.Buffer) {
	if !w.usesVertexInfo() {
		return
	}
	w.features |= FeatureBaseVertex
	out.Line("cbuffer %s", vertexInfo)
	out.Line("{")
	out.Indent()
	out.Line("int %s;", baseVertexName)
	out.Line("int %s;", baseInstName)
	out.Dedent()
	out.Line("};")
	out.Blank()
}

func (w *writer) usesVertexInfo() bool {
	if w.ep.Model != spirv.ExecutionModelVertex || !w.opts.SupportNonzeroBaseVertexBaseInstance {
		return false
	}
	for _, entry := range w.iface.Inputs {
		if !entry.IsBuiltin {
			continue
		}
		switch entry.Builtin {
		case spirv.BuiltInVertexIndex, spirv.BuiltInInstanceIndex, spirv.BuiltInBaseVertex, spirv.BuiltInBaseInstance:
			return true
		}
	}
	return false
}

// resourceSuffix returns the array dimensions of a resource declaration.
func (w *writer) resourceSuffix(e *cross.Emitter, r cross.Resource) string {
	m := w.m
	t := m.Pointee(m.MustVariable(r.Var).Type)
	switch m.Inner(t).(type) {
	case ir.RuntimeArrayType:
		if b := w.bindings[r.Var]; b != nil && b.target.BindingArraySize != nil {
			return fmt.Sprintf("[%d]", *b.target.BindingArraySize)
		}
		return "[]"
	case ir.ArrayType:
		if r.Kind.IsBuffer() || m.IsOpaque(t) {
			return e.ArraySuffix(t)
		}
	}
	return ""
}

func imageOf(m *ir.Module, t ir.ID) ir.ImageType {
	switch inner := m.Inner(t).(type) {
	case ir.SampledImageType:
		return m.Inner(inner.Image).(ir.ImageType)
	case ir.ImageType:
		return inner
	}
	ir.Raise(ir.ErrKindMismatch, "type %d is not an image", t)
	return ir.ImageType{}
}

func (w *writer) writeResources(e *cross.Emitter, out *cross.Buffer) {
	m := w.m
	for _, r := range w.resources {
		name := e.Name(r.Var)
		suffix := w.resourceSuffix(e, r)
		b := w.bindings[r.Var]
		clause := ""
		if b != nil {
			clause = b.clause(w)
		}
		switch r.Kind {
		case cross.ResourceUniformBuffer, cross.ResourcePushConstant:
			switch {
			case r.Kind == cross.ResourcePushConstant && len(w.opts.RootConstants) > 0:
				w.writeRootConstants(e, out, r)
			case w.flattened[r.Var]:
				w.writeCBuffer(e, out, r, e.Name(r.Type), clause, 0, ^uint32(0), 0)
			default:
				out.Line("ConstantBuffer<%s> %s%s%s;", e.Name(r.Type), name, suffix, clause)
				out.Blank()
			}
		case cross.ResourceStorageBuffer:
			rw := w.isUAVBuffer(r)
			if elem, ok := w.structured[r.Var]; ok {
				kind := "StructuredBuffer"
				if rw {
					kind = "RWStructuredBuffer"
				}
				out.Line("%s<%s> %s%s%s;", kind, w.TypeName(e, elem), name, suffix, clause)
			} else {
				kind := "ByteAddressBuffer"
				if rw {
					kind = "RWByteAddressBuffer"
				}
				out.Line("%s %s%s%s;", kind, name, suffix, clause)
			}
		case cross.ResourceSampledImage, cross.ResourceStorageImage,
			cross.ResourceUniformTexelBuffer, cross.ResourceStorageTexelBuffer:
			out.Line("%s %s%s%s;", w.imageTypeName(imageOf(m, r.Type), w.srvHandle[r.Var]), name, suffix, clause)
		case cross.ResourceCombinedImageSampler:
			out.Line("%s %s%s%s;", w.imageTypeName(imageOf(m, r.Type), false), name, suffix, clause)
			out.Line("%s %s%s%s;", w.samplerType(r.Var), w.SamplerRef(e, r.Var), suffix, b.samplerClause(w))
		case cross.ResourceSampler:
			out.Line("%s %s%s%s;", w.samplerType(r.Var), name, suffix, clause)
		case cross.ResourceAccelerationStructure:
			out.Line("RaytracingAccelerationStructure %s%s%s;", name, suffix, clause)
		}
	}
	if len(w.resources) > 0 {
		out.Blank()
	}
}

// writeCBuffer declares a constant buffer holding the members of r whose
// offsets fall in [start, end), packed relative to base.
func (w *writer) writeCBuffer(e *cross.Emitter, out *cross.Buffer, r cross.Resource, name, clause string, start, end, base uint32) {
	m := w.m
	st := r.Type
	l := w.bufferLayout(r.Var)
	var lines []string
	for i := range m.MemberCount(st) {
		off := l.MemberOffset(st, i)
		if off < start || off >= end {
			continue
		}
		mt := m.MemberType(st, ir.Index(i))
		if m.IsArray(mt) {
			if stride := l.ArrayStride(mt, l.MemberRowMajor(st, i), l.MatrixStride(st, i)); stride%16 != 0 {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, r.Var, spirv.OpVariable,
					"array member %d of constant buffer %q has stride %d, not a multiple of 16", i, name, stride)
			}
		}
		rel := off - base
		pack := fmt.Sprintf("c%d", rel/16)
		if rel%16 != 0 {
			pack += "." + string("xyzw"[(rel%16)/4])
		}
		lines = append(lines, fmt.Sprintf("%s%s : packoffset(%s);", w.matrixQualifier(st, i), e.Decl(mt, w.members[r.Var][i]), pack))
	}
	if len(lines) == 0 {
		return
	}
	out.Line("cbuffer %s%s", name, clause)
	out.Line("{")
	out.Indent()
	for _, line := range lines {
		out.Text(line)
	}
	out.Dedent()
	out.Line("};")
	out.Blank()
}

// writeRootConstants splits the push constant block into one constant
// buffer per configured range.
func (w *writer) writeRootConstants(e *cross.Emitter, out *cross.Buffer, r cross.Resource) {
	for k, rc := range w.opts.RootConstants {
		name := fmt.Sprintf("SPIRV_CROSS_RootConstant_%s%d", e.Name(r.Var), k)
		clause := w.registerClause(RegisterTypeB, rc.Binding, rc.Space, true)
		w.writeCBuffer(e, out, r, name, clause, rc.Start, rc.End, rc.Start)
	}
}

// writeGlobals declares private, workgroup and stage IO variables.
func (w *writer) writeGlobals(e *cross.Emitter, out *cross.Buffer) {
	m := w.m
	n := out.Lines()
	for _, v := range w.reach.Variables {
		vr := m.MustVariable(v)
		t := m.Pointee(vr.Type)
		switch vr.Storage {
		case spirv.StorageClassPrivate:
			init := ""
			if vr.Initializer != 0 {
				if m.KindOf(vr.Initializer) == ir.KindConstant {
					init = " = " + e.ConstantInitializer(vr.Initializer)
				} else {
					init = " = " + e.Text(vr.Initializer)
				}
			}
			out.Line("static %s%s;", e.Decl(t, e.Name(v)), init)
		case spirv.StorageClassWorkgroup:
			out.Line("groupshared %s;", e.Decl(t, e.Name(v)))
		}
	}
	for _, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		for _, entry := range list {
			if !w.entryActive(entry) {
				continue
			}
			if entry.IsBuiltin {
				if _, expr := w.builtinExpr(entry.Builtin); expr {
					continue
				}
				if entry.Builtin == spirv.BuiltInPointCoord {
					if !w.opts.PointCoordCompat {
						ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable,
							"gl_PointCoord requires point_coord_compat")
					}
					out.Line("static const float2 %s = float2(0.5f, 0.5f);", w.ioName(e, entry))
					continue
				}
			}
			out.Line("static %s;", e.Decl(entry.Type, w.ioName(e, entry)))
		}
	}
	if out.Lines() > n {
		out.Blank()
	}
}

// =============================================================================
// Variable references
// =============================================================================

// VariableRef implements cross.Dialect.
func (w *writer) VariableRef(e *cross.Emitter, v ir.ID) string {
	if v == w.numWorkgroupsBuiltin && w.numWorkgroups != 0 {
		return w.members[w.numWorkgroups][0]
	}
	if b, ok := w.m.BuiltIn(v); ok {
		if text, ok := w.builtinExpr(b); ok {
			return text
		}
	}
	return e.Name(v)
}

// SamplerRef implements cross.Dialect. Combined image-samplers are split
// into a texture and a sampler named after it.
func (w *writer) SamplerRef(e *cross.Emitter, v ir.ID) string {
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
	if !ok || imageOf(m, si.Image).Dim == spirv.DimBuffer {
		return ""
	}
	var name string
	if m.KindOf(v) == ir.KindVariable {
		name = globalName(e, "_"+e.Name(v)+"_sampler")
	} else {
		name = e.FreshLocal("_" + e.LocalName(v) + "_sampler")
	}
	w.samplers[v] = name
	return name
}

// AdjustPointer implements cross.Dialect. Members of flattened blocks
// become their standalone globals; structured buffers drop the block
// member; byte address buffer arrays fold the array index into the base.
func (w *writer) AdjustPointer(e *cross.Emitter, p *cross.Pointer) {
	m := w.m
	if p.Texel != nil {
		return
	}
	root := p.Root
	switch {
	case w.flattened[root]:
		if len(p.Steps) == 0 || p.Steps[0].Member < 0 {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "constant buffer %q accessed as a whole", e.Name(root))
		}
		p.Rebase(w.members[root][p.Steps[0].Member], 1, p.Steps[0].Type)
	case w.ioBlocks[root]:
		if len(p.Steps) == 0 || p.Steps[0].Member < 0 {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "interface block %q accessed as a whole", e.Name(root))
		}
		p.Rebase(w.ioNames[ioKey{root, p.Steps[0].Member}], 1, p.Steps[0].Type)
	case w.structured[root] != 0:
		k := 0
		if m.IsArray(m.Pointee(m.MustVariable(root).Type)) {
			k = 1
		}
		if len(p.Steps) > k && p.Steps[k].Member == 0 {
			p.DropStep(k)
		}
	case w.byteAddress[root]:
		if m.IsArray(m.Pointee(m.MustVariable(root).Type)) && len(p.Steps) > 0 {
			q := &cross.Pointer{Root: root, Base: p.Base, Storage: p.Storage, BaseType: p.BaseType,
				Steps: p.Steps[:1], Type: p.Steps[0].Type}
			p.Rebase(e.Lvalue(q), 1, p.Steps[0].Type)
		}
	}
}

// =============================================================================
// Byte address buffers
// =============================================================================

func (w *writer) bufferLayout(v ir.ID) cross.Layout {
	return cross.NewLayout(w.m, cross.RuleFor(w.m.MustVariable(v).Storage))
}

// Load implements cross.Dialect for byte address buffers.
func (w *writer) Load(e *cross.Emitter, p *cross.Pointer, inst *ir.Instruction) bool {
	if !w.byteAddress[p.Root] {
		return false
	}
	m := w.m
	l := w.bufferLayout(p.Root)
	off, leaf := e.BufferOffset(p, l)
	t := inst.ResultType
	if m.IsStruct(t) || m.IsArray(t) {
		name := e.DeclareResult(inst.Result, t)
		w.readInto(e, name, p.Base, off, t, leaf, l)
		return true
	}
	e.BindMemory(inst, w.readValue(e, p.Base, off, t, leaf, l))
	return true
}

// Store implements cross.Dialect for byte address buffers.
func (w *writer) Store(e *cross.Emitter, p *cross.Pointer, value ir.ID) bool {
	if !w.byteAddress[p.Root] {
		return false
	}
	m := w.m
	l := w.bufferLayout(p.Root)
	off, leaf := e.BufferOffset(p, l)
	x := e.Value(value)
	src := x.Text
	if (m.IsStruct(p.Type) || m.IsArray(p.Type) || m.IsMatrix(p.Type)) && !x.Atomic {
		src = e.FreshLocal("_store")
		e.Out.Line("%s;", e.Decl(p.Type, src))
		e.Out.Line("%s = %s;", src, x.Text)
	}
	w.writeFrom(e, p.Base, off, p.Type, leaf, l, src)
	e.Invalidate()
	return true
}

// memberLeaf describes member i of st for nested buffer access.
func memberLeaf(m *ir.Module, l cross.Layout, st ir.ID, i int) cross.Leaf {
	return cross.Leaf{
		Type:         m.MemberType(st, ir.Index(i)),
		RowMajor:     l.MemberRowMajor(st, i),
		MatrixStride: l.MatrixStride(st, i),
	}
}

// readInto loads a struct or array into dst member by member.
func (w *writer) readInto(e *cross.Emitter, dst, buf string, off cross.Offset, t ir.ID, leaf cross.Leaf, l cross.Layout) {
	m := w.m
	switch inner := m.Inner(t).(type) {
	case ir.StructType:
		for i := range inner.Members {
			child := memberLeaf(m, l, t, i)
			w.readInto(e, dst+"."+e.MemberName(t, ir.Index(i)), buf, off.Add(l.MemberOffset(t, i)), child.Type, child, l)
		}
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		stride := l.ArrayStride(t, leaf.RowMajor, leaf.MatrixStride)
		child := cross.Leaf{Type: inner.Element, RowMajor: leaf.RowMajor, MatrixStride: leaf.MatrixStride}
		for k := range n {
			w.readInto(e, fmt.Sprintf("%s[%d]", dst, k), buf, off.Add(k*stride), inner.Element, child, l)
		}
	case ir.RuntimeArrayType:
		ir.Raise(ir.ErrUnsupportedAccessPattern, "load of a runtime-sized array")
	default:
		e.Out.Line("%s = %s;", dst, w.readValue(e, buf, off, t, leaf, l))
	}
}

// readValue loads a scalar, vector or matrix.
func (w *writer) readValue(e *cross.Emitter, buf string, off cross.Offset, t ir.ID, leaf cross.Leaf, l cross.Layout) string {
	m := w.m
	s := m.ScalarOf(t)
	size := s.Width / 8
	switch {
	case m.IsMatrix(t):
		cols := m.Columns(t)
		col := m.ElementType(t)
		rows := m.VectorSize(col)
		stride := leaf.MatrixStride
		if stride == 0 {
			stride = l.DefaultMatrixStride(t, leaf.RowMajor)
		}
		if !leaf.RowMajor {
			parts := make([]string, cols)
			for i := range cols {
				parts[i] = w.rawLoad(e, buf, off.Add(i*stride), rows, s, col)
			}
			text, _ := w.Construct(e, t, parts)
			return text
		}
		row := w.m.AddType(ir.VectorType{Component: m.ScalarTypeOf(t), Count: cols})
		parts := make([]string, rows)
		for r := range rows {
			parts[r] = w.rawLoad(e, buf, off.Add(r*stride), cols, s, row)
		}
		return cross.Call("transpose", cross.Call(fmt.Sprintf("%s%dx%d", w.scalarName(s), rows, cols), parts...))
	case m.IsVector(t):
		n := m.VectorSize(t)
		if leaf.ElementStride == 0 || leaf.ElementStride == size {
			return w.rawLoad(e, buf, off, n, s, t)
		}
		scalar := m.ScalarTypeOf(t)
		parts := make([]string, n)
		for i := range n {
			parts[i] = w.rawLoad(e, buf, off.Add(i*leaf.ElementStride), 1, s, scalar)
		}
		text, _ := w.Construct(e, t, parts)
		return text
	}
	return w.rawLoad(e, buf, off, 1, s, t)
}

// rawLoad reads n contiguous components and converts them to type t.
func (w *writer) rawLoad(e *cross.Emitter, buf string, off cross.Offset, n uint32, s ir.Scalar, t ir.ID) string {
	if s.Width != 32 {
		w.need(ShaderModel.SupportsTemplatedLoads, 0, "byte address buffer access to non-32-bit values")
		return fmt.Sprintf("%s.Load<%s>(%s)", buf, w.TypeName(e, t), off)
	}
	method := "Load"
	if n > 1 {
		method = fmt.Sprintf("Load%d", n)
	}
	raw := fmt.Sprintf("%s.%s(%s)", buf, method, off)
	switch s.Kind {
	case ir.ScalarFloat:
		return cross.Call("asfloat", raw)
	case ir.ScalarSint:
		return cross.Call("asint", raw)
	case ir.ScalarBool:
		return "(" + raw + " != 0u)"
	}
	return raw
}

// writeFrom stores src, an atomic expression of type t, at off.
func (w *writer) writeFrom(e *cross.Emitter, buf string, off cross.Offset, t ir.ID, leaf cross.Leaf, l cross.Layout, src string) {
	m := w.m
	switch inner := m.Inner(t).(type) {
	case ir.StructType:
		for i := range inner.Members {
			child := memberLeaf(m, l, t, i)
			w.writeFrom(e, buf, off.Add(l.MemberOffset(t, i)), child.Type, child, l, src+"."+e.MemberName(t, ir.Index(i)))
		}
		return
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		stride := l.ArrayStride(t, leaf.RowMajor, leaf.MatrixStride)
		child := cross.Leaf{Type: inner.Element, RowMajor: leaf.RowMajor, MatrixStride: leaf.MatrixStride}
		for k := range n {
			w.writeFrom(e, buf, off.Add(k*stride), inner.Element, child, l, fmt.Sprintf("%s[%d]", src, k))
		}
		return
	case ir.RuntimeArrayType:
		ir.Raise(ir.ErrUnsupportedAccessPattern, "store of a runtime-sized array")
	}
	s := m.ScalarOf(t)
	size := s.Width / 8
	switch {
	case m.IsMatrix(t):
		cols := m.Columns(t)
		rows := m.VectorSize(m.ElementType(t))
		stride := leaf.MatrixStride
		if stride == 0 {
			stride = l.DefaultMatrixStride(t, leaf.RowMajor)
		}
		if !leaf.RowMajor {
			for i := range cols {
				w.rawStore(e, buf, off.Add(i*stride), rows, s, fmt.Sprintf("%s[%d]", src, i))
			}
			return
		}
		for r := range rows {
			parts := make([]string, cols)
			for c := range cols {
				parts[c] = fmt.Sprintf("%s[%d][%d]", src, c, r)
			}
			row := cross.Call(fmt.Sprintf("%s%d", w.scalarName(s), cols), parts...)
			w.rawStore(e, buf, off.Add(r*stride), cols, s, row)
		}
	case m.IsVector(t):
		n := m.VectorSize(t)
		if leaf.ElementStride == 0 || leaf.ElementStride == size {
			w.rawStore(e, buf, off, n, s, src)
			return
		}
		for i := range n {
			w.rawStore(e, buf, off.Add(i*leaf.ElementStride), 1, s, cross.Enclose(src)+"."+string("xyzw"[i]))
		}
	default:
		w.rawStore(e, buf, off, 1, s, src)
	}
}

// rawStore writes n contiguous components of value.
func (w *writer) rawStore(e *cross.Emitter, buf string, off cross.Offset, n uint32, s ir.Scalar, value string) {
	if s.Width != 32 {
		w.need(ShaderModel.SupportsTemplatedLoads, 0, "byte address buffer access to non-32-bit values")
		e.Out.Line("%s.Store(%s, %s);", buf, off, value)
		return
	}
	method := "Store"
	if n > 1 {
		method = fmt.Sprintf("Store%d", n)
	}
	switch s.Kind {
	case ir.ScalarFloat, ir.ScalarSint:
		value = cross.Call("asuint", value)
	case ir.ScalarBool:
		if n > 1 {
			value = cross.Call(fmt.Sprintf("uint%d", n), value)
		} else {
			value = cross.Enclose(value) + " ? 1u : 0u"
		}
	}
	e.Out.Line("%s.%s(%s, %s);", buf, method, off, value)
}

// arrayLength lowers OpArrayLength from the buffer size.
func (w *writer) arrayLength(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	p := e.Resolve(inst.Arg(0))
	member := inst.Literal(1)
	name := e.DeclareResult(inst.Result, inst.ResultType)
	switch {
	case w.structured[p.Root] != 0:
		stride := e.FreshLocal("_stride")
		e.Out.Line("uint %s;", stride)
		e.Out.Line("%s.GetDimensions(%s, %s);", e.Lvalue(p), name, stride)
	case w.byteAddress[p.Root]:
		l := w.bufferLayout(p.Root)
		st := p.Type
		off := l.MemberOffset(st, ir.Position(member))
		stride := l.ArrayStride(m.MemberType(st, member), false, 0)
		e.Out.Line("%s.GetDimensions(%s);", p.Base, name)
		e.Out.Line("%s = (%s - %d) / %d;", name, name, off, stride)
	default:
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, inst.Result, inst.Op, "array length of a non-buffer pointer")
	}
}

// =============================================================================
// Atomics
// =============================================================================

var atomicFuncs = map[spirv.Op]string{
	spirv.OpAtomicIAdd:                "InterlockedAdd",
	spirv.OpAtomicISub:                "InterlockedAdd",
	spirv.OpAtomicIIncrement:          "InterlockedAdd",
	spirv.OpAtomicIDecrement:          "InterlockedAdd",
	spirv.OpAtomicLoad:                "InterlockedAdd",
	spirv.OpAtomicSMin:                "InterlockedMin",
	spirv.OpAtomicUMin:                "InterlockedMin",
	spirv.OpAtomicSMax:                "InterlockedMax",
	spirv.OpAtomicUMax:                "InterlockedMax",
	spirv.OpAtomicAnd:                 "InterlockedAnd",
	spirv.OpAtomicOr:                  "InterlockedOr",
	spirv.OpAtomicXor:                 "InterlockedXor",
	spirv.OpAtomicExchange:            "InterlockedExchange",
	spirv.OpAtomicStore:               "InterlockedExchange",
	spirv.OpAtomicCompareExchange:     "InterlockedCompareExchange",
	spirv.OpAtomicCompareExchangeWeak: "InterlockedCompareExchange",
}

// Atomic implements cross.Dialect with the Interlocked intrinsics.
func (w *writer) Atomic(e *cross.Emitter, inst *ir.Instruction, p *cross.Pointer) {
	m := w.m
	fn, ok := atomicFuncs[inst.Op]
	if !ok {
		unsupported(inst, "atomic %s", inst.Op)
	}
	s := m.ScalarOf(p.Type)
	if s.Width == 64 {
		w.need(ShaderModel.Supports64BitAtomics, Feature64BitAtomics, "64-bit atomics")
	}
	ids := inst.IDOperands()
	var args []string
	switch inst.Op {
	case spirv.OpAtomicIIncrement:
		args = []string{w.literal(s, 1)}
	case spirv.OpAtomicIDecrement:
		args = []string{"-" + w.literal(s, 1)}
	case spirv.OpAtomicLoad:
		args = []string{w.literal(s, 0)}
	case spirv.OpAtomicISub:
		args = []string{cross.Unary("-", e.Text(ids[3]))}
	case spirv.OpAtomicCompareExchange, spirv.OpAtomicCompareExchangeWeak:
		args = []string{e.Text(ids[5]), e.Text(ids[4])}
	default:
		args = []string{e.Text(ids[3])}
	}
	bab := w.byteAddress[p.Root]
	var result string
	if inst.Op == spirv.OpAtomicStore {
		result = e.FreshLocal("_atomic")
		e.Out.Line("%s %s;", w.TypeName(e, p.Type), result)
	} else {
		result = e.DeclareResult(inst.Result, inst.ResultType)
	}
	out := result
	if bab && s.Kind == ir.ScalarSint {
		out = e.FreshLocal("_atomic")
		e.Out.Line("uint %s;", out)
		for i := range args {
			args[i] = cross.Call("asuint", args[i])
		}
	}
	switch {
	case p.Texel != nil:
		if p.Texel.Sample != "" {
			unsupported(inst, "atomics on multisampled storage images")
		}
		dest := p.Texel.Image + "[" + p.Texel.Coord + "]"
		e.Statement("%s;", cross.Call(fn, append(append([]string{dest}, args...), out)...))
	case bab:
		off, _ := e.BufferOffset(p, w.bufferLayout(p.Root))
		e.Statement("%s.%s;", p.Base, cross.Call(fn, append(append([]string{off.String()}, args...), out)...))
	default:
		e.Statement("%s;", cross.Call(fn, append(append([]string{e.Lvalue(p)}, args...), out)...))
	}
	if out != result {
		e.Out.Line("%s = asint(%s);", result, out)
	}
}

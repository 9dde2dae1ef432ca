// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"math"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Type names
// =============================================================================

// TypeName implements cross.Dialect.
func (w *writer) TypeName(e *cross.Emitter, t ir.ID) string {
	m := w.m
	switch inner := m.Inner(t).(type) {
	case ir.VoidType:
		return "void"
	case ir.BoolType, ir.IntType, ir.FloatType:
		return w.scalarName(m.ScalarOf(t))
	case ir.VectorType:
		return fmt.Sprintf("%s%d", w.scalarName(m.ScalarOf(t)), inner.Count)
	case ir.MatrixType:
		return fmt.Sprintf("%s%dx%d", w.scalarName(m.ScalarOf(t)), inner.Columns, m.VectorSize(inner.Column))
	case ir.StructType:
		return e.Name(t)
	case ir.ArrayType:
		return w.TypeName(e, inner.Element)
	case ir.RuntimeArrayType:
		return w.TypeName(e, inner.Element)
	case ir.ImageType:
		return w.textureType(inner, accessOf(inner))
	case ir.SampledImageType:
		return w.textureType(m.Inner(inner.Image).(ir.ImageType), "")
	case ir.SamplerType:
		return "sampler"
	case ir.OpaqueType:
		w.need(Version2_3, 0, "acceleration structures")
		return "raytracing::instance_acceleration_structure"
	case ir.PointerType:
		return w.TypeName(e, inner.Pointee)
	}
	ir.Raise(ir.ErrKindMismatch, "type %d has no MSL spelling", t)
	return ""
}

// TempTypeName implements cross.Dialect. Relaxed-precision float
// temporaries use half when enabled.
func (w *writer) TempTypeName(e *cross.Emitter, id, t ir.ID) string {
	m := w.m
	if !w.opts.RelaxedPrecisionHalf || !e.Relaxed(id) || m.IsStruct(t) {
		return w.TypeName(e, t)
	}
	s := m.ScalarOf(t)
	if s.Kind != ir.ScalarFloat || s.Width != 32 {
		return w.TypeName(e, t)
	}
	w.features |= FeatureHalf
	switch inner := m.Inner(t).(type) {
	case ir.VectorType:
		return fmt.Sprintf("half%d", inner.Count)
	case ir.MatrixType:
		return fmt.Sprintf("half%dx%d", inner.Columns, m.VectorSize(inner.Column))
	}
	return "half"
}

func (w *writer) scalarName(s ir.Scalar) string {
	w.needScalar(s)
	switch s.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarFloat:
		if s.Width == 16 {
			return "half"
		}
		return "float"
	case ir.ScalarSint:
		switch s.Width {
		case 8:
			return "char"
		case 16:
			return "short"
		case 64:
			return "long"
		}
		return "int"
	case ir.ScalarUint:
		switch s.Width {
		case 8:
			return "uchar"
		case 16:
			return "ushort"
		case 64:
			return "ulong"
		}
		return "uint"
	}
	return "float"
}

// Texture access qualifiers.
const (
	accessRead      = "read"
	accessWrite     = "write"
	accessReadWrite = "read_write"
)

// accessOf returns the access an image type declares. Storage images
// without a qualifier are read-write.
func accessOf(img ir.ImageType) string {
	if !img.IsStorage() {
		return ""
	}
	if img.HasAccess {
		switch img.Access {
		case spirv.AccessQualifierReadOnly:
			return accessRead
		case spirv.AccessQualifierWriteOnly:
			return accessWrite
		}
	}
	return accessReadWrite
}

// textureType spells a texture type with the given access qualifier.
func (w *writer) textureType(img ir.ImageType, access string) string {
	elem := w.scalarName(w.m.ScalarOf(img.SampledType))
	depth := img.Depth == 1 && !img.IsStorage()
	var base string
	switch img.Dim {
	case spirv.Dim1D:
		base = "texture1d"
	case spirv.Dim3D:
		base = "texture3d"
	case spirv.DimCube:
		switch {
		case w.emulatedCube(img) && depth:
			base = "depth2d"
		case w.emulatedCube(img):
			base = "texture2d"
		case depth:
			base = "depthcube"
		default:
			base = "texturecube"
		}
		if img.Arrayed && !w.opts.EmulateCubeArray {
			w.needOn(Version1_1, Version2_0, 0, "cube array textures")
		}
	case spirv.DimSubpassData:
		base = "texture2d"
		img.Arrayed = w.opts.ArrayedSubpassInput
		if img.Multisampled {
			base += "_ms"
			if img.Arrayed {
				w.needOn(Version2_1, Version2_1, 0, "multisampled array textures")
			}
		}
	case spirv.DimBuffer:
		if w.opts.TextureBufferNative {
			base = "texture_buffer"
		} else {
			base = "texture2d"
		}
		img.Arrayed = false
	default:
		base = "texture2d"
		if depth {
			base = "depth2d"
		}
		if img.Multisampled {
			base += "_ms"
			if img.Arrayed {
				w.needOn(Version2_1, Version2_1, 0, "multisampled array textures")
			}
		}
	}
	if img.Arrayed && img.Dim != spirv.Dim3D {
		base += "_array"
	}
	if depth {
		elem = "float"
	}
	if access == "" || access == accessRead && !img.IsStorage() {
		return fmt.Sprintf("%s<%s>", base, elem)
	}
	if access == accessReadWrite {
		w.needOn(Version1_2, Version2_0, 0, "read-write textures")
	}
	return fmt.Sprintf("%s<%s, access::%s>", base, elem, access)
}

// resourceAccess returns the access qualifier of a storage image variable.
func (w *writer) resourceAccess(r cross.Resource) string {
	img := w.imageOf(r.Type)
	switch {
	case !img.IsStorage():
		return ""
	case r.ReadOnly:
		return accessRead
	case r.WriteOnly:
		return accessWrite
	}
	return accessOf(img)
}

// imageOf returns the image type behind an image or sampled image type.
func (w *writer) imageOf(t ir.ID) ir.ImageType {
	switch inner := w.m.Inner(t).(type) {
	case ir.ImageType:
		return inner
	case ir.SampledImageType:
		return w.m.Inner(inner.Image).(ir.ImageType)
	}
	return ir.ImageType{}
}

// addressSpace returns the address space of memory in storage class sc.
func addressSpace(sc spirv.StorageClass) string {
	switch sc {
	case spirv.StorageClassStorageBuffer, spirv.StorageClassPhysicalStorageBuffer:
		return "device"
	case spirv.StorageClassUniform, spirv.StorageClassPushConstant:
		return "constant"
	case spirv.StorageClassWorkgroup:
		return "threadgroup"
	}
	return "thread"
}

// refDecl declares name as a reference in an address space. Arrays bind
// by reference to the whole array.
func (w *writer) refDecl(e *cross.Emitter, space string, t ir.ID, name string) string {
	if w.m.IsArray(t) {
		return fmt.Sprintf("%s %s (&%s)%s", space, e.TypeName(t), name, e.ArraySuffix(t))
	}
	return fmt.Sprintf("%s %s& %s", space, e.TypeName(t), name)
}

// ParamDecl implements cross.Dialect. Pointers become references in the
// address space of their argument; combined image-samplers take two
// parameters.
func (w *writer) ParamDecl(e *cross.Emitter, param ir.ID) string {
	m := w.m
	t := m.TypeOf(param)
	name := e.LocalName(param)
	if m.IsPointer(t) {
		pointee := m.Pointee(t)
		if !m.IsOpaque(pointee) {
			space, ok := w.paramSpaces[param]
			if !ok {
				space = addressSpace(m.PointerStorage(t))
			}
			return w.refDecl(e, space, pointee, name)
		}
		t = pointee
	}
	if m.IsArray(t) && m.IsOpaque(t) {
		elem := m.ElementType(t)
		n := e.ArraySize(t)
		if m.IsStruct(elem) || m.IsArray(elem) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, param, spirv.OpFunctionParameter, "nested opaque array parameter %q", name)
		}
		decl := fmt.Sprintf("thread const array<%s, %s>& %s", w.paramTypeName(e, param, elem), n, name)
		if _, ok := m.Inner(elem).(ir.SampledImageType); ok {
			decl += fmt.Sprintf(", thread const array<sampler, %s>& %s", n, w.SamplerRef(e, param))
		}
		return decl
	}
	switch m.Inner(t).(type) {
	case ir.SampledImageType:
		return fmt.Sprintf("%s %s, sampler %s", w.paramTypeName(e, param, t), name, w.SamplerRef(e, param))
	case ir.ImageType, ir.SamplerType:
		return fmt.Sprintf("%s %s", w.paramTypeName(e, param, t), name)
	}
	return e.Decl(t, name)
}

// paramTypeName spells an opaque parameter type, with the access its
// arguments carry.
func (w *writer) paramTypeName(e *cross.Emitter, param, t ir.ID) string {
	if img, ok := w.m.Inner(t).(ir.ImageType); ok && img.IsStorage() {
		if access, ok := w.paramAccess[param]; ok {
			return w.textureType(img, access)
		}
	}
	return w.TypeName(e, t)
}

// =============================================================================
// Literals and conversions
// =============================================================================

// ScalarLiteral implements cross.Dialect.
func (w *writer) ScalarLiteral(e *cross.Emitter, t ir.ID, c *ir.Constant) string {
	m := w.m
	s := m.ScalarOf(t)
	text, _ := cross.ScalarValue(m, c, "")
	switch s.Kind {
	case ir.ScalarFloat:
		if s.Width == 16 {
			return "half(" + text + ")"
		}
	case ir.ScalarSint:
		switch s.Width {
		case 64:
			if int64(c.U64()) == math.MinInt64 {
				return "(-9223372036854775807l - 1)"
			}
			return text + "l"
		case 16, 8:
			return w.scalarName(s) + "(" + text + ")"
		}
		if c.I32() == math.MinInt32 {
			return "int(0x80000000)"
		}
	case ir.ScalarUint:
		switch s.Width {
		case 64:
			return text + "ul"
		case 16, 8:
			return w.scalarName(s) + "(" + text + "u)"
		}
		return text + "u"
	}
	return text
}

// literal returns the small integer v in scalar type s.
func (w *writer) literal(s ir.Scalar, v int) string {
	switch s.Kind {
	case ir.ScalarBool:
		if v != 0 {
			return "true"
		}
		return "false"
	case ir.ScalarSint:
		if s.Width == 32 {
			return fmt.Sprintf("%d", v)
		}
		return fmt.Sprintf("%s(%d)", w.scalarName(s), v)
	case ir.ScalarUint:
		if s.Width == 32 {
			return fmt.Sprintf("%du", v)
		}
		return fmt.Sprintf("%s(%du)", w.scalarName(s), v)
	}
	if s.Width == 16 {
		return fmt.Sprintf("half(%d.0)", v)
	}
	return fmt.Sprintf("%d.0", v)
}

// Zero implements cross.Dialect.
func (w *writer) Zero(e *cross.Emitter, t ir.ID) string {
	m := w.m
	switch {
	case m.IsScalar(t):
		return w.literal(m.ScalarOf(t), 0)
	case m.IsArray(t):
		ir.Raise(ir.ErrUnsupportedAccessPattern, "array value without storage")
	case m.IsStruct(t):
		return w.TypeName(e, t) + "{}"
	}
	return w.TypeName(e, t) + "(" + w.literal(m.ScalarOf(t), 0) + ")"
}

// Construct implements cross.Dialect. Structs use aggregate
// initialization; arrays are built in a declared temporary.
func (w *writer) Construct(e *cross.Emitter, t ir.ID, args []string) (string, bool) {
	m := w.m
	switch {
	case m.IsArray(t):
		return "", false
	case m.IsStruct(t):
		return w.TypeName(e, t) + "{ " + join(args) + " }", true
	}
	return cross.Call(w.TypeName(e, t), args...), true
}

// Cast implements cross.Dialect.
func (w *writer) Cast(e *cross.Emitter, to ir.ID, expr string) string {
	return cross.Call(w.TypeName(e, to), expr)
}

// Bitcast implements cross.Dialect.
func (w *writer) Bitcast(e *cross.Emitter, from, to ir.ID, expr string) string {
	m := w.m
	if from == to || m.SameType(from, to) {
		return expr
	}
	fs, ts := m.ScalarOf(from), m.ScalarOf(to)
	if fs.Width*m.VectorSize(from) != ts.Width*m.VectorSize(to) {
		ir.Raise(ir.ErrUnsupportedOpcode, "bitcast between values of %d and %d bits",
			fs.Width*m.VectorSize(from), ts.Width*m.VectorSize(to))
	}
	return "as_type<" + w.TypeName(e, to) + ">(" + expr + ")"
}

func join(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// =============================================================================
// Struct declarations
// =============================================================================

func (w *writer) writeStructs(e *cross.Emitter, out *cross.Buffer) {
	m := w.m
	for _, st := range e.Structs() {
		if w.skipStruct[st] || hasBuiltinMember(m, st) {
			continue
		}
		out.Line("struct %s", e.Name(st))
		out.Line("{")
		out.Indent()
		n := m.MemberCount(st)
		for i := range n {
			if pad, ok := m.MemberExtDecoration(st, ir.Index(i), ir.ExtPaddingBefore); ok {
				out.Line("char _m%d_pad[%d];", i, pad)
			}
			mt := w.memberType(st, i)
			name := e.MemberName(st, ir.Index(i))
			switch {
			case w.isPacked(st, i):
				out.Line("packed_%s %s;", w.TypeName(e, mt), name)
			case w.packedArrays[ioKey{st, i}]:
				out.Line("packed_%s;", e.Decl(mt, name))
			default:
				out.Line("%s;", e.Decl(mt, name))
			}
		}
		if pad := w.tailPad[st]; pad > 0 {
			out.Line("char _m%d_pad[%d];", n, pad)
		}
		out.Dedent()
		out.Line("};")
		out.Blank()
	}
}

func hasBuiltinMember(m *ir.Module, st ir.ID) bool {
	for i := range m.MemberCount(st) {
		if _, ok := m.MemberBuiltIn(st, ir.Index(i)); ok {
			return true
		}
	}
	return false
}

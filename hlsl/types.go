// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strings"

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
		// floatCxR: HLSL rows hold SPIR-V columns.
		return fmt.Sprintf("%s%dx%d", w.scalarName(m.ScalarOf(t)), inner.Columns, m.VectorSize(inner.Column))
	case ir.StructType:
		return e.Name(t)
	case ir.ArrayType:
		return w.TypeName(e, inner.Element)
	case ir.RuntimeArrayType:
		return w.TypeName(e, inner.Element)
	case ir.ImageType:
		return w.imageTypeName(inner, false)
	case ir.SampledImageType:
		return w.imageTypeName(m.Inner(inner.Image).(ir.ImageType), false)
	case ir.SamplerType:
		return "SamplerState"
	case ir.OpaqueType:
		w.need(ShaderModel.SupportsRayTracing, FeatureRayTracing, "acceleration structures")
		return "RaytracingAccelerationStructure"
	case ir.PointerType:
		return w.TypeName(e, inner.Pointee)
	}
	ir.Raise(ir.ErrKindMismatch, "type %d has no HLSL spelling", t)
	return ""
}

// TempTypeName implements cross.Dialect. Relaxed-precision temporaries
// use the min16 types when enabled.
func (w *writer) TempTypeName(e *cross.Emitter, id, t ir.ID) string {
	name := w.TypeName(e, t)
	if !w.opts.RelaxedPrecisionMin16 || !e.Relaxed(id) {
		return name
	}
	s := w.m.ScalarOf(t)
	if s.Width != 32 || w.m.IsStruct(t) {
		return name
	}
	for _, prefix := range []string{"float", "uint", "int"} {
		if strings.HasPrefix(name, prefix) {
			return "min16" + name
		}
	}
	return name
}

func (w *writer) scalarName(s ir.Scalar) string {
	w.needScalar(s)
	switch s.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarFloat:
		switch s.Width {
		case 64:
			return "double"
		case 16:
			if w.opts.Enable16BitTypes {
				return "float16_t"
			}
			return "min16float"
		}
		return "float"
	case ir.ScalarSint:
		switch s.Width {
		case 64:
			return "int64_t"
		case 16:
			if w.opts.Enable16BitTypes {
				return "int16_t"
			}
			return "min16int"
		}
		return "int"
	case ir.ScalarUint:
		switch s.Width {
		case 64:
			return "uint64_t"
		case 16:
			if w.opts.Enable16BitTypes {
				return "uint16_t"
			}
			return "min16uint"
		}
		return "uint"
	}
	return "float"
}

// imageTypeName spells a texture type. srv declares a storage image as a
// read-only texture.
func (w *writer) imageTypeName(img ir.ImageType, srv bool) string {
	storage := img.IsStorage()
	var base string
	switch img.Dim {
	case spirv.Dim1D:
		base = "Texture1D"
	case spirv.Dim3D:
		base = "Texture3D"
	case spirv.DimCube:
		base = "TextureCube"
		if storage {
			base = "Texture2D"
			img.Arrayed = true
		}
	case spirv.DimBuffer:
		base = "Buffer"
	default:
		base = "Texture2D"
		if img.Multisampled {
			base = "Texture2DMS"
		}
	}
	if img.Arrayed && img.Dim != spirv.DimBuffer && img.Dim != spirv.Dim3D {
		base += "Array"
	}
	elem := w.sampledElement(img)
	if storage {
		elem = w.storageElement(img)
		if !srv {
			base = "RW" + base
		}
	}
	return fmt.Sprintf("%s<%s>", base, elem)
}

// sampledElement returns the four-component texel type of a sampled
// image.
func (w *writer) sampledElement(img ir.ImageType) string {
	return w.scalarName(w.m.ScalarOf(img.SampledType)) + "4"
}

// storageElement returns the texel type of a storage image, from its
// format when known.
func (w *writer) storageElement(img ir.ImageType) string {
	n := img.Format.Components()
	prefix := ""
	scalar := w.scalarName(w.m.ScalarOf(img.SampledType))
	switch img.Format {
	case spirv.ImageFormatUnknown:
		n = 4
	case spirv.ImageFormatRgba8, spirv.ImageFormatRgba16, spirv.ImageFormatRgb10A2,
		spirv.ImageFormatRg16, spirv.ImageFormatRg8, spirv.ImageFormatR16, spirv.ImageFormatR8:
		prefix = "unorm "
	case spirv.ImageFormatRgba8Snorm, spirv.ImageFormatRgba16Snorm, spirv.ImageFormatRg16Snorm,
		spirv.ImageFormatRg8Snorm, spirv.ImageFormatR16Snorm, spirv.ImageFormatR8Snorm:
		prefix = "snorm "
	}
	if n == 1 {
		return prefix + scalar
	}
	return fmt.Sprintf("%s%s%d", prefix, scalar, n)
}

// ParamDecl implements cross.Dialect. Pointers to private and local
// memory become inout parameters; combined image-samplers take two
// parameters.
func (w *writer) ParamDecl(e *cross.Emitter, param ir.ID) string {
	m := w.m
	t := m.TypeOf(param)
	name := e.LocalName(param)
	if m.IsPointer(t) {
		pointee := m.Pointee(t)
		if !m.IsOpaque(pointee) {
			switch m.PointerStorage(t) {
			case spirv.StorageClassUniform, spirv.StorageClassStorageBuffer, spirv.StorageClassPushConstant,
				spirv.StorageClassPhysicalStorageBuffer:
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, param, spirv.OpFunctionParameter,
					"buffer pointer parameter %q", name)
			}
			return "inout " + e.Decl(pointee, name)
		}
		t = pointee
	}
	switch inner := m.Inner(t).(type) {
	case ir.SampledImageType:
		img := m.Inner(inner.Image).(ir.ImageType)
		return fmt.Sprintf("%s %s, %s %s", w.imageTypeName(img, false), name, w.samplerType(param), w.SamplerRef(e, param))
	case ir.ImageType:
		return fmt.Sprintf("%s %s", w.imageTypeName(inner, w.srvHandle[param]), name)
	case ir.SamplerType:
		return fmt.Sprintf("%s %s", w.samplerType(param), name)
	}
	return e.Decl(t, name)
}

func (w *writer) samplerType(v ir.ID) string {
	if w.comparison[v] {
		return "SamplerComparisonState"
	}
	return "SamplerState"
}

// =============================================================================
// Literals and conversions
// =============================================================================

func (w *writer) floatSuffix(width uint32) string {
	switch {
	case width == 64:
		return "L"
	case width == 16 && w.opts.Enable16BitTypes:
		return "h"
	}
	return "f"
}

// ScalarLiteral implements cross.Dialect.
func (w *writer) ScalarLiteral(e *cross.Emitter, t ir.ID, c *ir.Constant) string {
	m := w.m
	s := m.ScalarOf(t)
	text, _ := cross.ScalarValue(m, c, w.floatSuffix(s.Width))
	switch s.Kind {
	case ir.ScalarSint:
		switch s.Width {
		case 64:
			if int64(c.U64()) == math.MinInt64 {
				return "(-9223372036854775807ll - 1)"
			}
			return text + "ll"
		case 16:
			return w.scalarName(s) + "(" + text + ")"
		}
		if c.I32() == math.MinInt32 {
			return "int(0x80000000)"
		}
		return text
	case ir.ScalarUint:
		switch s.Width {
		case 64:
			return text + "ull"
		case 16:
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
		return fmt.Sprintf("%d", v)
	case ir.ScalarUint:
		return fmt.Sprintf("%du", v)
	}
	return fmt.Sprintf("%d.0%s", v, w.floatSuffix(s.Width))
}

// Zero implements cross.Dialect.
func (w *writer) Zero(e *cross.Emitter, t ir.ID) string {
	m := w.m
	switch {
	case m.IsScalar(t):
		return w.literal(m.ScalarOf(t), 0)
	case m.IsArray(t):
		ir.Raise(ir.ErrUnsupportedAccessPattern, "array value without storage")
	}
	return "(" + w.TypeName(e, t) + ")0"
}

// Construct implements cross.Dialect. Structs and arrays are built with
// initializer lists.
func (w *writer) Construct(e *cross.Emitter, t ir.ID, args []string) (string, bool) {
	m := w.m
	if m.IsStruct(t) || m.IsArray(t) {
		return "", false
	}
	name := w.TypeName(e, t)
	if m.IsVector(t) && len(args) == 1 && m.VectorSize(t) > 1 {
		return "((" + name + ")" + cross.Enclose(args[0]) + ")", true
	}
	return cross.Call(name, args...), true
}

// Cast implements cross.Dialect.
func (w *writer) Cast(e *cross.Emitter, to ir.ID, expr string) string {
	return cross.Call(w.TypeName(e, to), expr)
}

// Bitcast implements cross.Dialect.
func (w *writer) Bitcast(e *cross.Emitter, from, to ir.ID, expr string) string {
	m := w.m
	fs, ts := m.ScalarOf(from), m.ScalarOf(to)
	if fs == ts {
		return expr
	}
	if fs.Width != ts.Width || m.VectorSize(from) != m.VectorSize(to) {
		ir.Raise(ir.ErrUnsupportedOpcode, "bitcast between %d-bit and %d-bit values", fs.Width, ts.Width)
	}
	switch ts.Width {
	case 32:
		switch ts.Kind {
		case ir.ScalarFloat:
			return cross.Call("asfloat", expr)
		case ir.ScalarSint:
			return cross.Call("asint", expr)
		case ir.ScalarUint:
			return cross.Call("asuint", expr)
		}
	case 16:
		w.need(ShaderModel.SupportsFloat16, FeatureFloat16, "16-bit bitcasts")
		switch ts.Kind {
		case ir.ScalarFloat:
			return cross.Call("asfloat16", expr)
		case ir.ScalarSint:
			return cross.Call("asint16", expr)
		case ir.ScalarUint:
			return cross.Call("asuint16", expr)
		}
	case 64:
		if fs.Kind != ir.ScalarFloat && ts.Kind != ir.ScalarFloat {
			return w.Cast(e, to, expr)
		}
	}
	ir.Raise(ir.ErrUnsupportedOpcode, "bitcast to %d-bit %v", ts.Width, ts.Kind)
	return ""
}

// =============================================================================
// Struct declarations
// =============================================================================

// matrixQualifier returns the packing keyword of a struct member. HLSL
// packs matrices by column and its rows are SPIR-V columns, so a
// column-major SPIR-V matrix is declared row_major.
func (w *writer) matrixQualifier(st ir.ID, i int) string {
	m := w.m
	t := m.MemberType(st, ir.Index(i))
	for m.IsArray(t) {
		t = m.ElementType(t)
	}
	if !m.IsMatrix(t) {
		return ""
	}
	if m.HasMemberDecoration(st, ir.Index(i), spirv.DecorationRowMajor) {
		return ""
	}
	return "row_major "
}

func (w *writer) writeStructs(e *cross.Emitter, out *cross.Buffer) {
	m := w.m
	for _, st := range e.Structs() {
		if w.skipStruct[st] || hasBuiltinMember(m, st) {
			continue
		}
		out.Line("struct %s", e.Name(st))
		out.Line("{")
		out.Indent()
		for i := range m.MemberCount(st) {
			mt := m.MemberType(st, ir.Index(i))
			out.Line("%s%s;", w.matrixQualifier(st, i), e.Decl(mt, e.MemberName(st, ir.Index(i))))
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

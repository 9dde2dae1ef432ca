// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"math"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// layoutBuffers matches every struct reachable from a buffer to the byte
// layout SPIR-V declares. Members Metal would place early get explicit
// padding, vec3 members overlapped by their successor are packed, and
// arrays with a wider stride store their elements in four-component
// slots.
func (w *writer) layoutBuffers() {
	done := make(map[ir.ID]bool)
	for _, r := range w.resources {
		if !r.Kind.IsBuffer() || !w.m.IsStruct(r.Type) {
			continue
		}
		l := cross.NewLayout(w.m, cross.RuleFor(w.m.MustVariable(r.Var).Storage))
		w.layoutStruct(l, r.Type, done)
	}
}

func (w *writer) layoutStruct(l cross.Layout, st ir.ID, done map[ir.ID]bool) {
	m := w.m
	if done[st] {
		return
	}
	done[st] = true
	n := m.MemberCount(st)
	var end uint32
	for i := range n {
		mt := m.MemberType(st, ir.Index(i))
		off := l.MemberOffset(st, i)
		limit := uint32(math.MaxUint32)
		if i+1 < n {
			limit = l.MemberOffset(st, i+1)
		}
		decl := w.layoutMember(l, st, i, mt, done)
		packed := false
		if m.IsVector(decl) && m.VectorSize(decl) == 3 &&
			(off%w.typeAlign(decl) != 0 || limit-off < w.typeSize(decl)) {
			packed = true
			w.mark(st, i, ir.ExtPacked, 1)
		}
		align := w.memberAlign(decl, packed)
		switch {
		case off%align != 0:
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
				"member %d at offset %d is misaligned for MSL", i, off)
		case off < end:
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
				"member %d at offset %d overlaps the member before it in MSL", i, off)
		case off > alignUp(end, align):
			w.mark(st, i, ir.ExtPaddingBefore, off-end)
		}
		end = off + w.memberSize(decl, packed)
	}
}

// layoutMember lays out the type of member i and returns the type it is
// declared with.
func (w *writer) layoutMember(l cross.Layout, st ir.ID, i int, mt ir.ID, done map[ir.ID]bool) ir.ID {
	m := w.m
	rowMajor := l.MemberRowMajor(st, i)
	switch {
	case m.IsStruct(mt):
		w.layoutStruct(l, mt, done)
	case m.IsMatrix(mt):
		w.checkMatrix(st, i, mt, rowMajor, l.MatrixStride(st, i))
		if rowMajor {
			t := w.transposed(mt)
			w.mark(st, i, ir.ExtPhysicalType, uint32(t))
			return t
		}
	case m.IsArray(mt):
		decl := w.layoutArray(l, st, i, mt, rowMajor, done)
		if decl != mt {
			w.mark(st, i, ir.ExtPhysicalType, uint32(decl))
		}
		return decl
	}
	return mt
}

// layoutArray checks the stride of an array member and returns the array
// type it is declared with.
func (w *writer) layoutArray(l cross.Layout, st ir.ID, i int, t ir.ID, rowMajor bool, done map[ir.ID]bool) ir.ID {
	m := w.m
	elem := m.ElementType(t)
	stride := l.ArrayStride(t, rowMajor, l.MatrixStride(st, i))
	s := m.ScalarOf(elem)
	bytes := s.Width / 8
	switch {
	case m.IsStruct(elem):
		w.layoutStruct(l, elem, done)
		size := w.typeSize(elem)
		switch {
		case stride < size:
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
				"member %d has array stride %d, smaller than its %d byte element in MSL", i, stride, size)
		case stride > size:
			if pad, ok := w.tailPad[elem]; ok && pad != stride-size {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, elem, spirv.OpTypeStruct,
					"struct is used with conflicting array strides")
			}
			w.tailPad[elem] = stride - size
		}
		return t
	case m.IsArray(elem):
		inner := w.layoutArray(l, st, i, elem, rowMajor, done)
		if stride != w.typeSize(inner) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
				"member %d has nested array stride %d, MSL uses %d", i, stride, w.typeSize(inner))
		}
		if inner != elem {
			return w.rearray(t, inner)
		}
		return t
	case m.IsMatrix(elem):
		w.checkMatrix(st, i, elem, rowMajor, l.MatrixStride(st, i))
		decl := elem
		if rowMajor {
			decl = w.transposed(elem)
		}
		if stride != w.typeSize(decl) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
				"member %d has matrix array stride %d, MSL uses %d", i, stride, w.typeSize(decl))
		}
		if decl != elem {
			return w.rearray(t, decl)
		}
		return t
	}
	switch {
	case stride == w.typeSize(elem):
		return t
	case m.IsVector(elem) && m.VectorSize(elem) == 3 && stride == 3*bytes:
		w.packedArrays[ioKey{st, i}] = true
		return t
	case stride == 4*bytes && w.typeSize(elem) < stride:
		vec4 := m.AddType(ir.VectorType{Component: m.ScalarTypeOf(elem), Count: 4})
		return w.rearray(t, vec4)
	}
	ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
		"member %d has array stride %d, MSL uses %d", i, stride, w.typeSize(elem))
	return t
}

// checkMatrix fails on matrix strides Metal cannot reproduce.
func (w *writer) checkMatrix(st ir.ID, i int, t ir.ID, rowMajor bool, stride uint32) {
	decl := t
	if rowMajor {
		decl = w.transposed(t)
	}
	col := w.m.Inner(decl).(ir.MatrixType).Column
	if want := w.typeSize(col); stride != 0 && stride != want {
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, st, spirv.OpTypeStruct,
			"member %d has matrix stride %d, MSL uses %d", i, stride, want)
	}
}

// transposed returns the matrix type storing t by rows.
func (w *writer) transposed(t ir.ID) ir.ID {
	m := w.m
	mt := m.Inner(t).(ir.MatrixType)
	rows := m.VectorSize(mt.Column)
	col := m.AddType(ir.VectorType{Component: m.ScalarTypeOf(t), Count: mt.Columns})
	return m.AddType(ir.MatrixType{Column: col, Columns: rows})
}

// rearray returns array type t with its element replaced.
func (w *writer) rearray(t, elem ir.ID) ir.ID {
	switch a := w.m.Inner(t).(type) {
	case ir.ArrayType:
		return w.m.AddType(ir.ArrayType{Element: elem, Length: a.Length})
	case ir.RuntimeArrayType:
		return w.m.AddType(ir.RuntimeArrayType{Element: elem})
	}
	return t
}

// memberType returns the type member i of st is declared with.
func (w *writer) memberType(st ir.ID, i int) ir.ID {
	if t, ok := w.m.MemberExtDecoration(st, ir.Index(i), ir.ExtPhysicalType); ok {
		return ir.ID(t)
	}
	return w.m.MemberType(st, ir.Index(i))
}

func (w *writer) isPacked(st ir.ID, i int) bool {
	_, ok := w.m.MemberExtDecoration(st, ir.Index(i), ir.ExtPacked)
	return ok
}

func (w *writer) memberAlign(t ir.ID, packed bool) uint32 {
	if packed {
		return w.m.ScalarOf(t).Width / 8
	}
	return w.typeAlign(t)
}

func (w *writer) memberSize(t ir.ID, packed bool) uint32 {
	if packed {
		return 3 * w.m.ScalarOf(t).Width / 8
	}
	return w.typeSize(t)
}

// typeAlign returns the alignment Metal gives t.
func (w *writer) typeAlign(t ir.ID) uint32 {
	m := w.m
	switch inner := m.Inner(t).(type) {
	case ir.BoolType:
		return 1
	case ir.IntType:
		return inner.Width / 8
	case ir.FloatType:
		return inner.Width / 8
	case ir.VectorType:
		return w.typeSize(t)
	case ir.MatrixType:
		return w.typeAlign(inner.Column)
	case ir.ArrayType:
		return w.typeAlign(inner.Element)
	case ir.RuntimeArrayType:
		return w.typeAlign(inner.Element)
	case ir.StructType:
		var a uint32 = 1
		for i := range inner.Members {
			a = max(a, w.memberAlign(w.memberType(t, i), w.isPacked(t, i)))
		}
		return a
	}
	return 4
}

// typeSize returns the size Metal gives t. Runtime arrays count as empty.
func (w *writer) typeSize(t ir.ID) uint32 {
	m := w.m
	switch inner := m.Inner(t).(type) {
	case ir.VectorType:
		n := inner.Count
		if n == 3 {
			n = 4
		}
		return n * w.typeAlign(inner.Component)
	case ir.MatrixType:
		return inner.Columns * w.typeSize(inner.Column)
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		return n * w.typeSize(inner.Element)
	case ir.RuntimeArrayType:
		return 0
	case ir.StructType:
		var end uint32
		for i := range inner.Members {
			mt := w.memberType(t, i)
			packed := w.isPacked(t, i)
			if pad, ok := m.MemberExtDecoration(t, ir.Index(i), ir.ExtPaddingBefore); ok {
				end += pad
			}
			end = alignUp(end, w.memberAlign(mt, packed)) + w.memberSize(mt, packed)
		}
		end += w.tailPad[t]
		return alignUp(end, w.typeAlign(t))
	}
	return w.typeAlign(t)
}

func alignUp(v, a uint32) uint32 {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// LayoutRule selects the packing rules of a buffer block.
type LayoutRule uint8

const (
	// LayoutStd140 rounds array strides and struct alignment up to 16 bytes.
	LayoutStd140 LayoutRule = iota
	// LayoutStd430 uses natural alignment for arrays and structs.
	LayoutStd430
	// LayoutScalar aligns everything to its scalar component.
	LayoutScalar
)

func (r LayoutRule) String() string {
	switch r {
	case LayoutStd140:
		return "std140"
	case LayoutStd430:
		return "std430"
	case LayoutScalar:
		return "scalar"
	}
	return fmt.Sprintf("LayoutRule(%d)", r)
}

// RuleFor returns the packing rule a block in storage class sc follows
// when it carries no explicit offsets.
func RuleFor(sc spirv.StorageClass) LayoutRule {
	switch sc {
	case spirv.StorageClassUniform:
		return LayoutStd140
	case spirv.StorageClassPhysicalStorageBuffer:
		return LayoutScalar
	}
	return LayoutStd430
}

// Layout computes byte sizes, alignments and offsets of buffer types.
// Explicit Offset, ArrayStride and MatrixStride decorations win over the
// computed values.
type Layout struct {
	m    *ir.Module
	Rule LayoutRule
}

// NewLayout returns a layout calculator for m.
func NewLayout(m *ir.Module, rule LayoutRule) Layout {
	return Layout{m: m, Rule: rule}
}

func alignUp(v, a uint32) uint32 {
	if a == 0 {
		return v
	}
	return (v + a - 1) / a * a
}

func scalarBytes(s ir.Scalar) uint32 {
	if s.Width == 0 {
		return 4
	}
	return s.Width / 8
}

func (l Layout) vectorAlign(s ir.Scalar, n uint32) uint32 {
	b := scalarBytes(s)
	switch {
	case l.Rule == LayoutScalar || n == 1:
		return b
	case n == 2:
		return 2 * b
	}
	return 4 * b
}

// Align returns the base alignment of t. rowMajor applies to matrices.
func (l Layout) Align(t ir.ID, rowMajor bool) uint32 {
	m := l.m
	switch inner := m.Inner(t).(type) {
	case ir.BoolType, ir.IntType, ir.FloatType:
		return scalarBytes(m.ScalarOf(t))
	case ir.VectorType:
		return l.vectorAlign(m.ScalarOf(t), inner.Count)
	case ir.MatrixType:
		n := m.VectorSize(t)
		if rowMajor {
			n = inner.Columns
		}
		return l.roundAggregate(l.vectorAlign(m.ScalarOf(t), n))
	case ir.ArrayType:
		return l.roundAggregate(l.Align(inner.Element, rowMajor))
	case ir.RuntimeArrayType:
		return l.roundAggregate(l.Align(inner.Element, rowMajor))
	case ir.StructType:
		a := uint32(1)
		for i, mt := range inner.Members {
			if ma := l.Align(mt, l.memberRowMajor(t, i)); ma > a {
				a = ma
			}
		}
		return l.roundAggregate(a)
	}
	return 4
}

func (l Layout) roundAggregate(a uint32) uint32 {
	if l.Rule == LayoutStd140 && a < 16 {
		return 16
	}
	return a
}

// MemberRowMajor reports whether member i of st stores its matrices by
// rows.
func (l Layout) MemberRowMajor(st ir.ID, i int) bool { return l.memberRowMajor(st, i) }

func (l Layout) memberRowMajor(st ir.ID, i int) bool {
	return l.m.HasMemberDecoration(st, ir.Index(i), spirv.DecorationRowMajor)
}

// Size returns the byte size of t. Runtime arrays count as empty.
func (l Layout) Size(t ir.ID, rowMajor bool, matrixStride uint32) uint32 {
	m := l.m
	switch inner := m.Inner(t).(type) {
	case ir.BoolType, ir.IntType, ir.FloatType:
		return scalarBytes(m.ScalarOf(t))
	case ir.VectorType:
		return scalarBytes(m.ScalarOf(t)) * inner.Count
	case ir.MatrixType:
		rows := m.VectorSize(t)
		vectors, width := inner.Columns, rows
		if rowMajor {
			vectors, width = rows, inner.Columns
		}
		if matrixStride == 0 {
			matrixStride = l.DefaultMatrixStride(t, rowMajor)
		}
		return matrixStride*(vectors-1) + scalarBytes(m.ScalarOf(t))*width
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		return n * l.ArrayStride(t, rowMajor, matrixStride)
	case ir.RuntimeArrayType:
		return 0
	case ir.StructType:
		return l.StructSize(t)
	}
	return 4
}

// DefaultMatrixStride returns the stride between the column vectors of t,
// or between its row vectors when rowMajor.
func (l Layout) DefaultMatrixStride(t ir.ID, rowMajor bool) uint32 {
	m := l.m
	inner := m.Inner(t).(ir.MatrixType)
	n := m.VectorSize(t)
	if rowMajor {
		n = inner.Columns
	}
	s := m.ScalarOf(t)
	size := scalarBytes(s) * n
	return alignUp(size, l.roundAggregate(l.vectorAlign(s, n)))
}

// ArrayStride returns the byte stride of array t.
func (l Layout) ArrayStride(t ir.ID, rowMajor bool, matrixStride uint32) uint32 {
	if s, ok := l.m.Decoration(t, spirv.DecorationArrayStride); ok {
		return s
	}
	elem := l.m.ElementType(t)
	a := l.Align(elem, rowMajor)
	if l.Rule == LayoutStd140 {
		a = alignUp(a, 16)
	}
	return alignUp(l.Size(elem, rowMajor, matrixStride), a)
}

// MemberOffset returns the byte offset of member i of st.
func (l Layout) MemberOffset(st ir.ID, i int) uint32 {
	if off, ok := l.m.MemberDecoration(st, ir.Index(i), spirv.DecorationOffset); ok {
		return off
	}
	offsets := l.computeOffsets(st)
	return offsets[i]
}

// MatrixStride returns the matrix stride of member i of st.
func (l Layout) MatrixStride(st ir.ID, i int) uint32 {
	if s, ok := l.m.MemberDecoration(st, ir.Index(i), spirv.DecorationMatrixStride); ok {
		return s
	}
	mt := l.innermost(l.m.MemberType(st, ir.Index(i)))
	if !l.m.IsMatrix(mt) {
		return 0
	}
	return l.DefaultMatrixStride(mt, l.memberRowMajor(st, i))
}

func (l Layout) innermost(t ir.ID) ir.ID {
	for l.m.IsArray(t) {
		t = l.m.ElementType(t)
	}
	return t
}

func (l Layout) computeOffsets(st ir.ID) []uint32 {
	inner := l.m.Inner(st).(ir.StructType)
	out := make([]uint32, len(inner.Members))
	var cur uint32
	for i, mt := range inner.Members {
		if off, ok := l.m.MemberDecoration(st, ir.Index(i), spirv.DecorationOffset); ok {
			cur = off
		} else {
			cur = alignUp(cur, l.Align(mt, l.memberRowMajor(st, i)))
		}
		out[i] = cur
		cur += l.memberSize(st, i)
	}
	return out
}

func (l Layout) memberSize(st ir.ID, i int) uint32 {
	mt := l.m.MemberType(st, ir.Index(i))
	return l.Size(mt, l.memberRowMajor(st, i), l.MatrixStride(st, i))
}

// StructSize returns the size of st including trailing padding.
func (l Layout) StructSize(st ir.ID) uint32 {
	n := l.m.MemberCount(st)
	if n == 0 {
		return 0
	}
	last := n - 1
	end := l.MemberOffset(st, last) + l.memberSize(st, last)
	return alignUp(end, l.Align(st, false))
}

// DeclaredEnd returns the end of the last member of st without trailing
// padding. Push constant ranges are measured this way.
func (l Layout) DeclaredEnd(st ir.ID) uint32 {
	n := l.m.MemberCount(st)
	if n == 0 {
		return 0
	}
	return l.MemberOffset(st, n-1) + l.memberSize(st, n-1)
}

// Offset is a byte offset with a constant part and dynamic terms.
type Offset struct {
	Const uint32
	Terms []string
}

// Add returns o displaced by a constant.
func (o Offset) Add(c uint32) Offset {
	return Offset{Const: o.Const + c, Terms: o.Terms}
}

func (o Offset) String() string {
	parts := append([]string(nil), o.Terms...)
	if o.Const != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d", o.Const))
	}
	return strings.Join(parts, " + ")
}

// Leaf describes the value a buffer pointer addresses.
type Leaf struct {
	Type ir.ID
	// RowMajor marks a matrix, or a matrix column, stored by rows.
	RowMajor bool
	// MatrixStride is the stride of the enclosing matrix member.
	MatrixStride uint32
	// ElementStride separates the components of the leaf vector. It is
	// the scalar size unless the vector is a column of a row-major matrix.
	ElementStride uint32
}

// BufferOffset returns the byte offset p addresses from the start of its
// root block, under layout l.
func (e *Emitter) BufferOffset(p *Pointer, l Layout) (Offset, Leaf) {
	m := e.Module
	var off Offset
	leaf := Leaf{Type: p.BaseType}
	addIndex := func(s Step, stride uint32) {
		if s.Const >= 0 {
			off.Const += uint32(s.Const) * stride
			return
		}
		idx := e.IndexText(s)
		if !isAtomic(idx) {
			idx = Enclose(idx)
		}
		off.Terms = append(off.Terms, fmt.Sprintf("%s * %d", idx, stride))
	}
	for _, s := range p.Steps {
		cur := s.Parent
		switch {
		case s.Member >= 0:
			off.Const += l.MemberOffset(cur, s.Member)
			leaf.RowMajor = l.memberRowMajor(cur, s.Member)
			leaf.MatrixStride = l.MatrixStride(cur, s.Member)
			leaf.ElementStride = 0
		case m.IsArray(cur):
			addIndex(s, l.ArrayStride(cur, leaf.RowMajor, leaf.MatrixStride))
		case m.IsMatrix(cur):
			stride := leaf.MatrixStride
			if stride == 0 {
				stride = l.DefaultMatrixStride(cur, leaf.RowMajor)
			}
			elem := scalarBytes(m.ScalarOf(cur))
			if leaf.RowMajor {
				addIndex(s, elem)
				leaf.ElementStride = stride
			} else {
				addIndex(s, stride)
				leaf.ElementStride = elem
			}
		case m.IsVector(cur):
			stride := leaf.ElementStride
			if stride == 0 {
				stride = scalarBytes(m.ScalarOf(cur))
			}
			addIndex(s, stride)
		}
		leaf.Type = s.Type
	}
	if leaf.ElementStride == 0 && !m.IsMatrix(leaf.Type) {
		leaf.RowMajor = false
	}
	return off, leaf
}

// Words converts a byte count to 32-bit words.
func Words(bytes uint32) uint32 { return (bytes + 3) / 4 }


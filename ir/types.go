// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"

	"github.com/gogpu/spvcross/spirv"
)

// Type is an OpType* declaration.
type Type struct {
	ID    ID
	Inner TypeInner
}

// TypeInner is the variant payload of a type.
type TypeInner interface {
	typeInner()
}

// VoidType is OpTypeVoid.
type VoidType struct{}

// BoolType is OpTypeBool.
type BoolType struct{}

// IntType is OpTypeInt.
type IntType struct {
	Width  uint32
	Signed bool
}

// FloatType is OpTypeFloat.
type FloatType struct {
	Width uint32
}

// VectorType is OpTypeVector.
type VectorType struct {
	Component ID
	Count     uint32
}

// MatrixType is OpTypeMatrix. Row-major layout is a member decoration of the
// enclosing struct, not part of the type.
type MatrixType struct {
	Column  ID
	Columns uint32
}

// ArrayType is OpTypeArray. Length names a constant.
type ArrayType struct {
	Element ID
	Length  ID
}

// RuntimeArrayType is OpTypeRuntimeArray.
type RuntimeArrayType struct {
	Element ID
}

// StructType is OpTypeStruct.
type StructType struct {
	Members []ID
}

// ImageType is OpTypeImage.
type ImageType struct {
	SampledType  ID
	Dim          spirv.Dim
	Depth        uint32
	Arrayed      bool
	Multisampled bool
	// Sampled is 1 for sampled images, 2 for storage images.
	Sampled   uint32
	Format    spirv.ImageFormat
	Access    spirv.AccessQualifier
	HasAccess bool
}

// IsStorage reports whether the image is a storage (read/write) image.
func (t ImageType) IsStorage() bool { return t.Sampled == 2 }

// SamplerType is OpTypeSampler.
type SamplerType struct{}

// SampledImageType is OpTypeSampledImage.
type SampledImageType struct {
	Image ID
}

// PointerType is OpTypePointer.
type PointerType struct {
	Storage spirv.StorageClass
	Pointee ID
}

// FunctionType is OpTypeFunction.
type FunctionType struct {
	Return ID
	Params []ID
}

// OpaqueType is OpTypeOpaque.
type OpaqueType struct {
	Name string
}

func (VoidType) typeInner()         {}
func (BoolType) typeInner()         {}
func (IntType) typeInner()          {}
func (FloatType) typeInner()        {}
func (VectorType) typeInner()       {}
func (MatrixType) typeInner()       {}
func (ArrayType) typeInner()        {}
func (RuntimeArrayType) typeInner() {}
func (StructType) typeInner()       {}
func (ImageType) typeInner()        {}
func (SamplerType) typeInner()      {}
func (SampledImageType) typeInner() {}
func (PointerType) typeInner()      {}
func (FunctionType) typeInner()     {}
func (OpaqueType) typeInner()       {}

// ScalarKind is the base kind of a scalar.
type ScalarKind uint8

const (
	ScalarNone ScalarKind = iota
	ScalarBool
	ScalarSint
	ScalarUint
	ScalarFloat
)

var scalarKindNames = [...]string{"none", "bool", "sint", "uint", "float"}

func (k ScalarKind) String() string {
	if int(k) < len(scalarKindNames) {
		return scalarKindNames[k]
	}
	return fmt.Sprintf("scalar(%d)", uint8(k))
}

// Scalar is a scalar kind and bit width.
type Scalar struct {
	Kind  ScalarKind
	Width uint32
}

// Inner returns the variant of a type ID.
func (m *Module) Inner(id ID) TypeInner {
	return m.MustType(id).Inner
}

// ScalarOf returns the scalar element of a scalar, vector or matrix type.
func (m *Module) ScalarOf(id ID) Scalar {
	switch t := m.Inner(id).(type) {
	case BoolType:
		return Scalar{Kind: ScalarBool, Width: 32}
	case IntType:
		if t.Signed {
			return Scalar{Kind: ScalarSint, Width: t.Width}
		}
		return Scalar{Kind: ScalarUint, Width: t.Width}
	case FloatType:
		return Scalar{Kind: ScalarFloat, Width: t.Width}
	case VectorType:
		return m.ScalarOf(t.Component)
	case MatrixType:
		return m.ScalarOf(t.Column)
	}
	return Scalar{}
}

// ScalarTypeOf returns the ID of the scalar element type of a scalar, vector
// or matrix type.
func (m *Module) ScalarTypeOf(id ID) ID {
	switch t := m.Inner(id).(type) {
	case VectorType:
		return m.ScalarTypeOf(t.Component)
	case MatrixType:
		return m.ScalarTypeOf(t.Column)
	}
	return id
}

// VectorSize returns the component count of a vector, 1 for scalars, and the
// column height for matrices.
func (m *Module) VectorSize(id ID) uint32 {
	switch t := m.Inner(id).(type) {
	case VectorType:
		return t.Count
	case MatrixType:
		return m.VectorSize(t.Column)
	}
	return 1
}

// Columns returns the column count of a matrix, 1 otherwise.
func (m *Module) Columns(id ID) uint32 {
	if t, ok := m.Inner(id).(MatrixType); ok {
		return t.Columns
	}
	return 1
}

// IsScalar reports whether id is a bool, int or float type.
func (m *Module) IsScalar(id ID) bool {
	switch m.Inner(id).(type) {
	case BoolType, IntType, FloatType:
		return true
	}
	return false
}

// IsVector reports whether id is a vector type.
func (m *Module) IsVector(id ID) bool {
	_, ok := m.Inner(id).(VectorType)
	return ok
}

// IsMatrix reports whether id is a matrix type.
func (m *Module) IsMatrix(id ID) bool {
	_, ok := m.Inner(id).(MatrixType)
	return ok
}

// IsStruct reports whether id is a struct type.
func (m *Module) IsStruct(id ID) bool {
	_, ok := m.Inner(id).(StructType)
	return ok
}

// IsArray reports whether id is a sized or run-time array type.
func (m *Module) IsArray(id ID) bool {
	switch m.Inner(id).(type) {
	case ArrayType, RuntimeArrayType:
		return true
	}
	return false
}

// IsPointer reports whether id is a pointer type.
func (m *Module) IsPointer(id ID) bool {
	_, ok := m.Inner(id).(PointerType)
	return ok
}

// IsOpaque reports whether id is an image, sampler or sampled-image type,
// or an array of them.
func (m *Module) IsOpaque(id ID) bool {
	switch t := m.Inner(id).(type) {
	case ImageType, SamplerType, SampledImageType:
		return true
	case ArrayType:
		return m.IsOpaque(t.Element)
	case RuntimeArrayType:
		return m.IsOpaque(t.Element)
	}
	return false
}

// Pointee returns the pointee type of a pointer type.
func (m *Module) Pointee(ptrType ID) ID {
	p, ok := m.Inner(ptrType).(PointerType)
	if !ok {
		RaiseAt(ErrKindMismatch, ptrType, 0, "expected pointer type")
	}
	return p.Pointee
}

// PointerStorage returns the storage class of a pointer type.
func (m *Module) PointerStorage(ptrType ID) spirv.StorageClass {
	p, ok := m.Inner(ptrType).(PointerType)
	if !ok {
		RaiseAt(ErrKindMismatch, ptrType, 0, "expected pointer type")
	}
	return p.Storage
}

// ElementType returns the element of an array, the component of a vector,
// or the column of a matrix.
func (m *Module) ElementType(id ID) ID {
	switch t := m.Inner(id).(type) {
	case ArrayType:
		return t.Element
	case RuntimeArrayType:
		return t.Element
	case VectorType:
		return t.Component
	case MatrixType:
		return t.Column
	}
	RaiseAt(ErrKindMismatch, id, 0, "type has no elements")
	return 0
}

// ArrayLength returns the literal length of a sized array. Arrays sized by
// specialization constants report their default value and ok=false.
func (m *Module) ArrayLength(id ID) (length uint32, ok bool) {
	t, isArray := m.Inner(id).(ArrayType)
	if !isArray {
		return 0, false
	}
	c := m.MustConstant(t.Length)
	return c.U32(), !c.Spec
}

// ArrayDims returns the array dimensions of a type from outermost inward and
// the innermost non-array element. Run-time arrays report length 0.
func (m *Module) ArrayDims(id ID) ([]uint32, ID) {
	var dims []uint32
	for {
		switch t := m.Inner(id).(type) {
		case ArrayType:
			n, _ := m.ArrayLength(id)
			dims = append(dims, n)
			id = t.Element
			continue
		case RuntimeArrayType:
			dims = append(dims, 0)
			id = t.Element
			continue
		}
		return dims, id
	}
}

// MemberType returns the type of member i of a struct.
func (m *Module) MemberType(structID ID, i uint32) ID {
	s, ok := m.Inner(structID).(StructType)
	if !ok {
		RaiseAt(ErrKindMismatch, structID, 0, "expected struct type")
	}
	if i >= Index(len(s.Members)) {
		RaiseAt(ErrKindMismatch, structID, 0, "member %d out of range", i)
	}
	return s.Members[i]
}

// MemberCount returns the number of members of a struct type.
func (m *Module) MemberCount(structID ID) int {
	if s, ok := m.Inner(structID).(StructType); ok {
		return len(s.Members)
	}
	return 0
}

// IsBlock reports whether a struct is an interface block.
func (m *Module) IsBlock(structID ID) bool {
	return m.HasDecoration(structID, spirv.DecorationBlock) || m.HasDecoration(structID, spirv.DecorationBufferBlock)
}

// SameType reports whether two type IDs are structurally identical.
func (m *Module) SameType(a, b ID) bool {
	if a == b {
		return true
	}
	return m.typeKey(a) == m.typeKey(b)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"math"

	"github.com/gogpu/spvcross/spirv"
)

// ConstantKind is the variant of a constant.
type ConstantKind uint8

const (
	// ConstScalar is a literal scalar, including booleans.
	ConstScalar ConstantKind = iota
	// ConstComposite is an ordered tuple of constant IDs.
	ConstComposite
	// ConstNull is the zero value of its type.
	ConstNull
	// ConstOp is an operation over other constants (OpSpecConstantOp).
	ConstOp
)

// Constant is an OpConstant*, OpSpecConstant* or OpSpecConstantOp.
type Constant struct {
	ID   ID
	Type ID
	Kind ConstantKind

	// Value holds the literal bits of a scalar, low word first. Booleans
	// are 0 or 1.
	Value []uint32

	// Constituents lists the members of a composite.
	Constituents []ID

	// Spec marks specialization constants; their SpecId is a decoration.
	Spec bool

	// Op and Operands describe a constant operation. Operands holds IDs
	// except for the literal indices of OpCompositeExtract/Insert and
	// OpVectorShuffle.
	Op       spirv.Op
	Operands []uint32
}

// U32 returns the low 32 bits of a scalar constant.
func (c *Constant) U32() uint32 {
	if len(c.Value) == 0 {
		return 0
	}
	return c.Value[0]
}

// I32 returns a scalar constant as a signed 32-bit integer.
func (c *Constant) I32() int32 {
	return int32(c.U32())
}

// U64 returns a 64-bit scalar constant.
func (c *Constant) U64() uint64 {
	switch len(c.Value) {
	case 0:
		return 0
	case 1:
		return uint64(c.Value[0])
	}
	return uint64(c.Value[0]) | uint64(c.Value[1])<<32
}

// F32 returns a 32-bit float constant.
func (c *Constant) F32() float32 {
	return math.Float32frombits(c.U32())
}

// F64 returns a 64-bit float constant.
func (c *Constant) F64() float64 {
	return math.Float64frombits(c.U64())
}

// Bool returns a boolean constant.
func (c *Constant) Bool() bool {
	return c.U32() != 0
}

// IsZero reports whether a scalar or null constant is zero.
func (c *Constant) IsZero() bool {
	if c.Kind == ConstNull {
		return true
	}
	if c.Kind != ConstScalar {
		return false
	}
	for _, w := range c.Value {
		if w != 0 {
			return false
		}
	}
	return true
}

// AddConstant defines a synthetic scalar constant.
func (m *Module) AddConstant(typeID ID, value ...uint32) ID {
	id := m.AllocID()
	m.entities[id] = entity{kind: KindConstant, obj: &Constant{
		ID: id, Type: typeID, Kind: ConstScalar, Value: value,
	}}
	m.GlobalOrder = append(m.GlobalOrder, id)
	return id
}

// AddVariable defines a synthetic global variable of the given pointer type.
func (m *Module) AddVariable(ptrType ID, storage spirv.StorageClass) ID {
	id := m.AllocID()
	m.entities[id] = entity{kind: KindVariable, obj: &Variable{ID: id, Type: ptrType, Storage: storage}}
	m.GlobalOrder = append(m.GlobalOrder, id)
	return id
}

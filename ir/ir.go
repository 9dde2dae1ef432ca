// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gogpu/spvcross/spirv"
)

// ID is a SPIR-V result ID. IDs index the module arena.
type ID uint32

// Kind identifies what an ID names.
type Kind uint8

const (
	KindNone Kind = iota
	KindType
	KindConstant
	KindVariable
	KindFunction
	KindParameter
	KindBlock
	KindValue
	KindUndef
	KindExtInstImport
	KindString
	KindDecorationGroup
)

var kindNames = [...]string{
	KindNone: "none", KindType: "type", KindConstant: "constant", KindVariable: "variable",
	KindFunction: "function", KindParameter: "parameter", KindBlock: "block", KindValue: "value",
	KindUndef: "undef", KindExtInstImport: "ext-inst-import", KindString: "string",
	KindDecorationGroup: "decoration-group",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type entity struct {
	kind Kind
	obj  any
}

// Module is an arena of SPIR-V entities addressed by ID. Identity is
// immutable once defined; analyses and backends only add IDs and
// decorations.
type Module struct {
	Version         spirv.Version
	Capabilities    []spirv.Capability
	Extensions      []string
	AddressingModel spirv.AddressingModel
	MemoryModel     spirv.MemoryModel
	EntryPoints     []*EntryPoint

	// GlobalOrder lists types, constants, undefs and global variables in
	// declaration order.
	GlobalOrder []ID

	// FunctionOrder lists functions in declaration order.
	FunctionOrder []ID

	entities    []entity
	decorations map[ID]*Decorations
	types       *typeInterner
}

// NewModule creates an empty module with the given ID bound.
func NewModule(bound uint32) *Module {
	return &Module{
		entities:    make([]entity, bound),
		decorations: make(map[ID]*Decorations),
	}
}

// Bound returns one past the largest allocatable ID.
func (m *Module) Bound() uint32 {
	return Index(len(m.entities))
}

// Index converts a Go length or position to a SPIR-V operand.
func Index(i int) uint32 {
	u, err := safecast.Conv[uint32](i)
	if err != nil {
		Raise(ErrInvalidIR, "index %d does not fit an operand: %v", i, err)
	}
	return u
}

// Position converts a SPIR-V operand to a Go position.
func Position(u uint32) int {
	i, err := safecast.Conv[int](u)
	if err != nil {
		Raise(ErrInvalidIR, "operand %d does not fit an index: %v", u, err)
	}
	return i
}

// AllocID reserves a fresh ID for a synthetic entity.
func (m *Module) AllocID() ID {
	id := ID(m.Bound())
	m.entities = append(m.entities, entity{})
	return id
}

// Define binds an entity to an ID. Redefinition is InvalidIR.
func (m *Module) Define(id ID, kind Kind, obj any) error {
	if id == 0 || uint32(id) >= m.Bound() {
		return NewErrorAt(ErrUnknownID, id, 0, "id out of range (bound %d)", len(m.entities))
	}
	if m.entities[id].kind != KindNone {
		return NewErrorAt(ErrInvalidIR, id, 0, "id redefined as %s (was %s)", kind, m.entities[id].kind)
	}
	m.entities[id] = entity{kind: kind, obj: obj}
	return nil
}

// KindOf returns what an ID names; KindNone for undefined or out-of-range IDs.
func (m *Module) KindOf(id ID) Kind {
	if uint32(id) >= m.Bound() {
		return KindNone
	}
	return m.entities[id].kind
}

func (m *Module) lookup(id ID, kind Kind) (any, error) {
	if id == 0 || uint32(id) >= m.Bound() || m.entities[id].kind == KindNone {
		return nil, NewErrorAt(ErrUnknownID, id, 0, "unknown id")
	}
	e := m.entities[id]
	if e.kind != kind {
		return nil, NewErrorAt(ErrKindMismatch, id, 0, "expected %s, found %s", kind, e.kind)
	}
	return e.obj, nil
}

func mustLookup[T any](m *Module, id ID, kind Kind) T {
	obj, err := m.lookup(id, kind)
	if err != nil {
		panic(err)
	}
	return obj.(T)
}

// Type returns the type named by id.
func (m *Module) Type(id ID) (*Type, error) {
	obj, err := m.lookup(id, KindType)
	if err != nil {
		return nil, err
	}
	return obj.(*Type), nil
}

// Constant returns the constant named by id.
func (m *Module) Constant(id ID) (*Constant, error) {
	obj, err := m.lookup(id, KindConstant)
	if err != nil {
		return nil, err
	}
	return obj.(*Constant), nil
}

// Variable returns the variable named by id.
func (m *Module) Variable(id ID) (*Variable, error) {
	obj, err := m.lookup(id, KindVariable)
	if err != nil {
		return nil, err
	}
	return obj.(*Variable), nil
}

// Function returns the function named by id.
func (m *Module) Function(id ID) (*Function, error) {
	obj, err := m.lookup(id, KindFunction)
	if err != nil {
		return nil, err
	}
	return obj.(*Function), nil
}

// Block returns the block labeled id.
func (m *Module) Block(id ID) (*Block, error) {
	obj, err := m.lookup(id, KindBlock)
	if err != nil {
		return nil, err
	}
	return obj.(*Block), nil
}

// Instruction returns the instruction defining id.
func (m *Module) Instruction(id ID) (*Instruction, error) {
	obj, err := m.lookup(id, KindValue)
	if err != nil {
		return nil, err
	}
	return obj.(*Instruction), nil
}

// The Must variants panic with *Error; emitters recover at the compile boundary.

// MustType is Type that panics on failure.
func (m *Module) MustType(id ID) *Type { return mustLookup[*Type](m, id, KindType) }

// MustConstant is Constant that panics on failure.
func (m *Module) MustConstant(id ID) *Constant { return mustLookup[*Constant](m, id, KindConstant) }

// MustVariable is Variable that panics on failure.
func (m *Module) MustVariable(id ID) *Variable { return mustLookup[*Variable](m, id, KindVariable) }

// MustFunction is Function that panics on failure.
func (m *Module) MustFunction(id ID) *Function { return mustLookup[*Function](m, id, KindFunction) }

// MustBlock is Block that panics on failure.
func (m *Module) MustBlock(id ID) *Block { return mustLookup[*Block](m, id, KindBlock) }

// MustInstruction is Instruction that panics on failure.
func (m *Module) MustInstruction(id ID) *Instruction {
	return mustLookup[*Instruction](m, id, KindValue)
}

// MustParameter returns the function parameter named by id.
func (m *Module) MustParameter(id ID) *Parameter { return mustLookup[*Parameter](m, id, KindParameter) }

// ExtInstImport returns the extended instruction set name imported by id.
func (m *Module) ExtInstImport(id ID) (string, error) {
	obj, err := m.lookup(id, KindExtInstImport)
	if err != nil {
		return "", err
	}
	return obj.(string), nil
}

// StringLiteral returns the OpString value named by id.
func (m *Module) StringLiteral(id ID) (string, error) {
	obj, err := m.lookup(id, KindString)
	if err != nil {
		return "", err
	}
	return obj.(string), nil
}

// TypeOf returns the type of any value-like ID, or zero when the ID has no
// value type.
func (m *Module) TypeOf(id ID) ID {
	if uint32(id) >= m.Bound() {
		return 0
	}
	switch e := m.entities[id]; e.kind {
	case KindConstant:
		return e.obj.(*Constant).Type
	case KindVariable:
		return e.obj.(*Variable).Type
	case KindParameter:
		return e.obj.(*Parameter).Type
	case KindValue:
		return e.obj.(*Instruction).ResultType
	case KindUndef:
		return e.obj.(*Undef).Type
	}
	return 0
}

// Variables returns the global variables in declaration order.
func (m *Module) Variables() []*Variable {
	var out []*Variable
	for _, id := range m.GlobalOrder {
		if m.KindOf(id) == KindVariable {
			out = append(out, m.entities[id].obj.(*Variable))
		}
	}
	return out
}

// Functions returns the functions in declaration order.
func (m *Module) Functions() []*Function {
	out := make([]*Function, 0, len(m.FunctionOrder))
	for _, id := range m.FunctionOrder {
		out = append(out, m.MustFunction(id))
	}
	return out
}

// HasCapability reports whether the module declares a capability.
func (m *Module) HasCapability(c spirv.Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// EntryPoint is an OpEntryPoint with its execution modes.
type EntryPoint struct {
	Name      string
	Model     spirv.ExecutionModel
	Function  ID
	Interface []ID

	// Modes maps execution modes to their literal operands.
	Modes map[spirv.ExecutionMode][]uint32

	// ModeIDs maps OpExecutionModeId modes to their ID operands.
	ModeIDs map[spirv.ExecutionMode][]ID
}

// HasMode reports whether the entry point declares a mode.
func (e *EntryPoint) HasMode(mode spirv.ExecutionMode) bool {
	_, ok := e.Modes[mode]
	return ok
}

// ModeOperand returns operand i of a mode, or zero.
func (e *EntryPoint) ModeOperand(mode spirv.ExecutionMode, i int) uint32 {
	ops := e.Modes[mode]
	if i < len(ops) {
		return ops[i]
	}
	return 0
}

// FindEntryPoint returns the entry point with the given name and model. An
// empty name matches the first entry point.
func (m *Module) FindEntryPoint(name string, model spirv.ExecutionModel) (*EntryPoint, error) {
	for _, ep := range m.EntryPoints {
		if name == "" || (ep.Name == name && ep.Model == model) {
			return ep, nil
		}
	}
	for _, ep := range m.EntryPoints {
		if ep.Name == name {
			return ep, nil
		}
	}
	return nil, NewError(ErrInvalidIR, "entry point %q not found", name)
}

// Undef is an OpUndef value.
type Undef struct {
	ID   ID
	Type ID
}

// Variable is an OpVariable.
type Variable struct {
	ID ID
	// Type is the pointer type of the variable.
	Type        ID
	Storage     spirv.StorageClass
	Initializer ID
	// Function is the owning function for Function-storage variables.
	Function ID
}

// Parameter is an OpFunctionParameter.
type Parameter struct {
	ID       ID
	Type     ID
	Function ID
}

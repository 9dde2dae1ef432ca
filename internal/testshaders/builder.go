// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package testshaders assembles the SPIR-V modules shared by the backend,
// snapshot and CLI tests.
package testshaders

import (
	"math"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

// Builder wraps spirv.ModuleBuilder with the types every fixture needs.
type Builder struct {
	*spirv.ModuleBuilder

	Void, Bool, Float, Int, Uint uint32
	Vec2, Vec3, Vec4             uint32
	IVec2, UVec3, UVec4          uint32
	Mat4                         uint32
	VoidFn                       uint32
	GLSL                         uint32

	ptrs   map[[2]uint32]uint32
	consts map[[2]uint32]uint32
}

// NewBuilder starts a shader module with the common scalar, vector and
// matrix types declared.
func NewBuilder() *Builder {
	mb := spirv.NewModuleBuilder(spirv.Version1_3)
	b := &Builder{ModuleBuilder: mb, ptrs: make(map[[2]uint32]uint32), consts: make(map[[2]uint32]uint32)}
	b.AddCapability(spirv.CapabilityShader)
	b.GLSL = b.AddExtInstImport(spirv.GLSLStd450ImportName)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.Void = b.AddTypeVoid()
	b.Bool = b.AddTypeBool()
	b.Float = b.AddTypeFloat(32)
	b.Int = b.AddTypeInt(32, true)
	b.Uint = b.AddTypeInt(32, false)
	b.Vec2 = b.AddTypeVector(b.Float, 2)
	b.Vec3 = b.AddTypeVector(b.Float, 3)
	b.Vec4 = b.AddTypeVector(b.Float, 4)
	b.IVec2 = b.AddTypeVector(b.Int, 2)
	b.UVec3 = b.AddTypeVector(b.Uint, 3)
	b.UVec4 = b.AddTypeVector(b.Uint, 4)
	b.Mat4 = b.AddTypeMatrix(b.Vec4, 4)
	b.VoidFn = b.AddTypeFunction(b.Void)
	return b
}

// Ptr returns the pointer type to t in storage class sc.
func (b *Builder) Ptr(sc spirv.StorageClass, t uint32) uint32 {
	key := [2]uint32{uint32(sc), t}
	if id, ok := b.ptrs[key]; ok {
		return id
	}
	id := b.AddTypePointer(sc, t)
	b.ptrs[key] = id
	return id
}

func (b *Builder) constant(t, bits uint32) uint32 {
	key := [2]uint32{t, bits}
	if id, ok := b.consts[key]; ok {
		return id
	}
	id := b.AddConstant(t, bits)
	b.consts[key] = id
	return id
}

// U returns an unsigned integer constant.
func (b *Builder) U(v uint32) uint32 { return b.constant(b.Uint, v) }

// I returns a signed integer constant.
func (b *Builder) I(v int32) uint32 { return b.constant(b.Int, uint32(v)) }

// F returns a float constant.
func (b *Builder) F(v float32) uint32 { return b.constant(b.Float, math.Float32bits(v)) }

// Var declares a named global variable.
func (b *Builder) Var(sc spirv.StorageClass, t uint32, name string) uint32 {
	v := b.AddVariable(b.Ptr(sc, t), sc)
	if name != "" {
		b.AddName(v, name)
	}
	return v
}

// Input declares an input variable at a location.
func (b *Builder) Input(t uint32, location uint32, name string) uint32 {
	v := b.Var(spirv.StorageClassInput, t, name)
	b.AddDecorate(v, spirv.DecorationLocation, location)
	return v
}

// Output declares an output variable at a location.
func (b *Builder) Output(t uint32, location uint32, name string) uint32 {
	v := b.Var(spirv.StorageClassOutput, t, name)
	b.AddDecorate(v, spirv.DecorationLocation, location)
	return v
}

// Builtin declares a builtin variable.
func (b *Builder) Builtin(sc spirv.StorageClass, t uint32, builtin spirv.BuiltIn, name string) uint32 {
	v := b.Var(sc, t, name)
	b.AddDecorate(v, spirv.DecorationBuiltIn, uint32(builtin))
	return v
}

// Bind decorates a resource with its descriptor set and binding.
func (b *Builder) Bind(v, set, binding uint32) {
	b.AddDecorate(v, spirv.DecorationDescriptorSet, set)
	b.AddDecorate(v, spirv.DecorationBinding, binding)
}

// Block declares a block struct with sequential member offsets.
func (b *Builder) Block(name string, members []Member) uint32 {
	types := make([]uint32, len(members))
	for i, m := range members {
		types[i] = m.Type
	}
	st := b.AddTypeStruct(types...)
	b.AddName(st, name)
	b.AddDecorate(st, spirv.DecorationBlock)
	for i, m := range members {
		mi := uint32(i)
		b.AddMemberName(st, mi, m.Name)
		b.AddMemberDecorate(st, mi, spirv.DecorationOffset, m.Offset)
		if m.MatrixStride != 0 {
			b.AddMemberDecorate(st, mi, spirv.DecorationMatrixStride, m.MatrixStride)
			if m.RowMajor {
				b.AddMemberDecorate(st, mi, spirv.DecorationRowMajor)
			} else {
				b.AddMemberDecorate(st, mi, spirv.DecorationColMajor)
			}
		}
		if m.NonWritable {
			b.AddMemberDecorate(st, mi, spirv.DecorationNonWritable)
		}
	}
	return st
}

// Member describes a block member.
type Member struct {
	Name         string
	Type         uint32
	Offset       uint32
	MatrixStride uint32
	RowMajor     bool
	NonWritable  bool
}

// Array declares a sized array with an optional stride decoration.
func (b *Builder) Array(elem, length, stride uint32) uint32 {
	a := b.AddTypeArray(elem, b.U(length))
	if stride != 0 {
		b.AddDecorate(a, spirv.DecorationArrayStride, stride)
	}
	return a
}

// RuntimeArray declares a runtime array with a stride decoration.
func (b *Builder) RuntimeArray(elem, stride uint32) uint32 {
	a := b.AddTypeRuntimeArray(elem)
	b.AddDecorate(a, spirv.DecorationArrayStride, stride)
	return a
}

// Entry declares an entry point named main and opens its function. The
// caller writes the body after the returned entry label and calls End.
func (b *Builder) Entry(model spirv.ExecutionModel, iface ...uint32) (fn, label uint32) {
	fn = b.AddFunction(b.VoidFn, b.Void, spirv.FunctionControlNone)
	b.AddEntryPoint(model, fn, "main", iface)
	b.AddName(fn, "main")
	if model == spirv.ExecutionModelFragment {
		b.AddExecutionMode(fn, spirv.ExecutionModeOriginUpperLeft)
	}
	return fn, b.AddLabel()
}

// End returns from the current function and closes it.
func (b *Builder) End() {
	b.AddReturn()
	b.AddFunctionEnd()
}

// Module parses the assembled words. Fixtures are fixed inputs, so a parse
// failure is a bug in the fixture and panics.
func (b *Builder) Module() *ir.Module {
	m, err := parser.Parse(b.Words())
	if err != nil {
		panic(err)
	}
	return m
}

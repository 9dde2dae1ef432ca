// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Dialect is the target policy driven by an Emitter. Hooks receive the
// emitter so they can read the module, look up names and operand text, and
// write statements.
type Dialect interface {
	// Keywords lists identifiers the namer must avoid.
	Keywords() []string
	// CaseInsensitive reports whether identifiers collide regardless of
	// case.
	CaseInsensitive() bool

	// EmitModule writes one complete pass of the module into e.Out. It
	// calls back into the emitter for functions, constants and helpers.
	EmitModule(e *Emitter)

	// TypeName returns the name of a non-array type.
	TypeName(e *Emitter, t ir.ID) string
	// TempTypeName returns the declared type of the temporary holding
	// value id. Targets with reduced-precision types use it for relaxed
	// values.
	TempTypeName(e *Emitter, id, t ir.ID) string
	// ParamDecl returns the declaration of a function parameter.
	ParamDecl(e *Emitter, param ir.ID) string

	// ScalarLiteral formats a scalar constant of type t.
	ScalarLiteral(e *Emitter, t ir.ID, c *ir.Constant) string
	// Zero returns the zero value of t as an expression.
	Zero(e *Emitter, t ir.ID) string
	// Construct returns an inline constructor for t. ok is false when the
	// target can only build t in an initializer list.
	Construct(e *Emitter, t ir.ID, args []string) (text string, ok bool)
	// Cast converts expr to t by value.
	Cast(e *Emitter, to ir.ID, expr string) string
	// Bitcast reinterprets the bits of expr as t.
	Bitcast(e *Emitter, from, to ir.ID, expr string) string
	// Intrinsic maps a generic function name to the target's spelling.
	Intrinsic(name string) string
	// MatrixMul renders the SPIR-V matrix products.
	MatrixMul(e *Emitter, op spirv.Op, a, b string) string
	// Select renders a componentwise selection.
	Select(e *Emitter, t ir.ID, cond, a, b string) string

	// VariableRef returns the expression naming a global variable in the
	// current function.
	VariableRef(e *Emitter, v ir.ID) string
	// SamplerRef returns the sampler half of a combined image-sampler
	// variable or parameter, or "" when v has none.
	SamplerRef(e *Emitter, v ir.ID) string
	// AdjustPointer may rewrite a resolved pointer, for instance to
	// replace a flattened block member with its standalone variable.
	AdjustPointer(e *Emitter, p *Pointer)
	// NativeRowMajor reports whether row-major matrices in buffers are
	// expressible without transposing.
	NativeRowMajor() bool

	// ForcesTemp reports whether the result of inst must be named.
	ForcesTemp(e *Emitter, inst *ir.Instruction) bool
	// Instruction lets the target emit an instruction itself. It returns
	// false to fall back to the shared lowering.
	Instruction(e *Emitter, inst *ir.Instruction) bool
	// Load lets the target load through p and bind the result of inst.
	Load(e *Emitter, p *Pointer, inst *ir.Instruction) bool
	// Store lets the target store value through p.
	Store(e *Emitter, p *Pointer, value ir.ID) bool
	// CopyArray writes an array copy statement. It returns false when
	// plain assignment copies arrays.
	CopyArray(e *Emitter, t ir.ID, dst, src string, dstStorage, srcStorage spirv.StorageClass) bool

	// Image emits an image instruction.
	Image(e *Emitter, op *ImageOp)
	// Atomic emits an atomic instruction on p.
	Atomic(e *Emitter, inst *ir.Instruction, p *Pointer)
	// Subgroup emits a group non-uniform instruction.
	Subgroup(e *Emitter, inst *ir.Instruction)
	// Barrier emits a control or memory barrier.
	Barrier(e *Emitter, inst *ir.Instruction)

	// Discard ends the invocation of a fragment.
	Discard(e *Emitter, terminate bool)
	// SupportsFallthrough reports whether non-empty switch cases may fall
	// through.
	SupportsFallthrough() bool

	// FunctionHeader returns the signature line of a function.
	FunctionHeader(e *Emitter, fn *ir.Function, entry bool) string
	// FunctionPrologue writes statements at the top of a function body.
	FunctionPrologue(e *Emitter, fn *ir.Function, entry bool)
	// Return writes a return. value is zero for void returns; tail marks
	// the return ending the function body.
	Return(e *Emitter, value ir.ID, tail bool)
	// CallArgs returns the extra arguments a call to callee passes.
	CallArgs(e *Emitter, callee ir.ID) []string

	// PolyfillBody returns the definition of a polyfill.
	PolyfillBody(p Polyfill) string
}

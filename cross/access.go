// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Step is one index of an access chain.
type Step struct {
	// Member is the struct member index, or -1 for array, matrix and
	// vector indices.
	Member int
	// IndexID is the index value of non-member steps.
	IndexID ir.ID
	// Const is the literal index, or -1 when the index is dynamic.
	Const int64
	// Text overrides the rendering of a dynamic index.
	Text string
	// Parent is the type being indexed and Type the type reached.
	Parent, Type ir.ID
}

// Pointer is a resolved pointer: a root variable and the chain of steps
// applied to it.
type Pointer struct {
	Root     ir.ID
	Base     string
	Storage  spirv.StorageClass
	BaseType ir.ID
	Steps    []Step
	// Type is the pointee type.
	Type ir.ID
	// Texel is set for pointers to storage image texels.
	Texel *TexelPointer
}

func (p *Pointer) clone() *Pointer {
	c := *p
	c.Steps = append([]Step(nil), p.Steps...)
	return &c
}

// Member returns the struct member index of step i, or -1.
func (p *Pointer) Member(i int) int {
	if i < 0 || i >= len(p.Steps) {
		return -1
	}
	return p.Steps[i].Member
}

// DropStep removes step i, retyping the chain accordingly. The removed
// step must not change the type, or the caller fixes Type itself.
func (p *Pointer) DropStep(i int) {
	p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
}

// Rebase replaces the root and the first n steps with name.
func (p *Pointer) Rebase(name string, n int, base ir.ID) {
	p.Base = name
	p.Steps = append([]Step(nil), p.Steps[n:]...)
	p.BaseType = base
}

// PointerOf resolves a pointer-valued ID.
func (e *Emitter) PointerOf(id ir.ID) *Pointer {
	m := e.Module
	switch m.KindOf(id) {
	case ir.KindVariable:
		v := m.MustVariable(id)
		var base string
		if v.Function == 0 {
			base = e.Dialect.VariableRef(e, id)
		} else {
			base = e.LocalName(id)
		}
		t := m.Pointee(v.Type)
		return &Pointer{Root: id, Base: base, Storage: v.Storage, BaseType: t, Type: t}
	case ir.KindParameter:
		pt := m.MustParameter(id).Type
		if !m.IsPointer(pt) {
			break
		}
		t := m.Pointee(pt)
		return &Pointer{Root: id, Base: e.LocalName(id), Storage: m.PointerStorage(pt), BaseType: t, Type: t}
	case ir.KindValue:
		if p, ok := e.ptrs[id]; ok {
			return p
		}
		inst := m.MustInstruction(id)
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, id, inst.Op, "pointer is not a variable or access chain")
	}
	ir.RaiseAt(ir.ErrKindMismatch, id, 0, "%s used as a pointer", m.KindOf(id))
	return nil
}

// accessChain resolves OpAccessChain and its variants without emitting
// anything; the chain is rendered where it is used.
func (e *Emitter) accessChain(inst *ir.Instruction) {
	m := e.Module
	base := e.PointerOf(inst.Arg(0))
	p := base.clone()
	idx := inst.IDOperands()[1:]
	if inst.Op == spirv.OpPtrAccessChain || inst.Op == spirv.OpInBoundsPtrAccessChain {
		elem := idx[0]
		idx = idx[1:]
		if !e.isZero(elem) {
			n := len(p.Steps)
			if n == 0 || p.Steps[n-1].Member >= 0 {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, inst.Result, inst.Op,
					"pointer arithmetic on a non-array pointer")
			}
			last := &p.Steps[n-1]
			last.Text = Binary("+", e.IndexText(*last), e.Text(elem))
			last.Const = -1
		}
	}
	for _, id := range idx {
		cur := p.Type
		switch t := m.Inner(cur).(type) {
		case ir.StructType:
			c, err := m.Constant(id)
			if err != nil {
				ir.RaiseAt(ir.ErrInvalidIR, inst.Result, inst.Op, "struct index must be a constant")
			}
			i := ir.Position(c.U32())
			if i >= len(t.Members) {
				ir.RaiseAt(ir.ErrInvalidIR, inst.Result, inst.Op, "member %d out of range", i)
			}
			p.Steps = append(p.Steps, Step{Member: i, Const: int64(i), Parent: cur, Type: t.Members[i]})
			p.Type = t.Members[i]
		case ir.ArrayType, ir.RuntimeArrayType, ir.MatrixType, ir.VectorType:
			elem := m.ElementType(cur)
			p.Steps = append(p.Steps, Step{Member: -1, IndexID: id, Const: e.constIndex(id), Parent: cur, Type: elem})
			p.Type = elem
		default:
			ir.RaiseAt(ir.ErrInvalidIR, inst.Result, inst.Op, "cannot index type %d", cur)
		}
	}
	if !m.SameType(p.Type, m.Pointee(inst.ResultType)) {
		ir.RaiseAt(ir.ErrInvalidIR, inst.Result, inst.Op, "access chain result type mismatch")
	}
	e.ptrs[inst.Result] = p
}

func (e *Emitter) isZero(id ir.ID) bool {
	c, err := e.Module.Constant(id)
	return err == nil && !c.Spec && c.Kind != ir.ConstOp && c.IsZero()
}

func (e *Emitter) constIndex(id ir.ID) int64 {
	c, err := e.Module.Constant(id)
	if err != nil || c.Spec || c.Kind != ir.ConstScalar {
		return -1
	}
	if e.Module.ScalarOf(c.Type).Kind == ir.ScalarSint {
		return int64(c.I32())
	}
	return int64(c.U32())
}

// IndexText renders the index of a non-member step.
func (e *Emitter) IndexText(s Step) string {
	if s.Const >= 0 {
		return fmt.Sprintf("%d", s.Const)
	}
	if s.Text != "" {
		return s.Text
	}
	return e.Text(s.IndexID)
}

// Resolve returns a copy of the pointer behind id after target
// adjustments.
func (e *Emitter) Resolve(id ir.ID) *Pointer {
	p := e.PointerOf(id).clone()
	e.Dialect.AdjustPointer(e, p)
	return p
}

// access is a rendered pointer. Row-major matrices stored transposed
// leave a pending column or a whole matrix to transpose.
type access struct {
	text string
	// column is the pending column index into a transposed matrix.
	column string
	// transposed marks a whole transposed matrix.
	transposed bool
	// swizzle narrows a widened physical element.
	swizzle string
	// packed marks a packed vector member.
	packed bool
}

func (e *Emitter) render(p *Pointer) access {
	m := e.Module
	a := access{text: p.Base}
	rowMajor, physical := false, false
	for i, s := range p.Steps {
		if s.Member >= 0 {
			a.text += "." + e.MemberName(s.Parent, uint32(s.Member))
			rowMajor = !e.Dialect.NativeRowMajor() && m.HasMemberDecoration(s.Parent, uint32(s.Member), spirv.DecorationRowMajor)
			_, physical = m.MemberExtDecoration(s.Parent, uint32(s.Member), ir.ExtPhysicalType)
			_, a.packed = m.MemberExtDecoration(s.Parent, uint32(s.Member), ir.ExtPacked)
			a.packed = a.packed && i == len(p.Steps)-1
			continue
		}
		a.packed = false
		idx := e.IndexText(s)
		switch {
		case m.IsMatrix(s.Parent) && rowMajor:
			a.column = idx
		case a.column != "":
			a.text += "[" + idx + "][" + a.column + "]"
			a.column = ""
		case m.IsVector(s.Parent) && s.Const >= 0 && s.Const < 4:
			a.text += "." + swizzleNames[s.Const:s.Const+1]
		default:
			a.text += "[" + idx + "]"
			if physical && m.IsArray(s.Parent) && !m.IsArray(s.Type) {
				physical = false
				a.swizzle = physicalSwizzle(m, s.Type)
				a.text += a.swizzle
			}
		}
	}
	a.transposed = rowMajor && a.column == "" && m.IsMatrix(p.Type)
	return a
}

const swizzleNames = "xyzw"

// physicalSwizzle narrows an element stored in a four-component slot.
func physicalSwizzle(m *ir.Module, t ir.ID) string {
	if m.IsStruct(t) || m.IsMatrix(t) {
		return ""
	}
	n := m.VectorSize(t)
	if n >= 4 {
		return ""
	}
	return "." + swizzleNames[:n]
}

// Lvalue renders a pointer as an assignable expression.
func (e *Emitter) Lvalue(p *Pointer) string {
	a := e.render(p)
	if a.column != "" {
		ir.Raise(ir.ErrUnsupportedAccessPattern, "pointer to a column of a transposed matrix")
	}
	return a.text
}

// LoadText renders a read through p.
func (e *Emitter) LoadText(p *Pointer) string {
	m := e.Module
	a := e.render(p)
	switch {
	case a.column != "":
		rows := m.VectorSize(p.Type)
		args := make([]string, rows)
		for r := range rows {
			args[r] = fmt.Sprintf("%s[%d][%s]", a.text, r, a.column)
		}
		text, _ := e.Dialect.Construct(e, p.Type, args)
		return text
	case a.transposed:
		return Call(e.Dialect.Intrinsic("transpose"), a.text)
	case a.packed:
		text, _ := e.Dialect.Construct(e, p.Type, []string{a.text})
		return text
	}
	return a.text
}

// samplerOf renders the sampler half of a pointer into an array of
// combined image-samplers by applying its steps to the sampler base.
func (e *Emitter) samplerOf(p *Pointer) string {
	if p.Texel != nil {
		return ""
	}
	base := e.Dialect.SamplerRef(e, p.Root)
	if base == "" {
		return ""
	}
	q := p.clone()
	q.Base = base
	return e.Lvalue(q)
}

// load lowers OpLoad.
func (e *Emitter) load(inst *ir.Instruction) {
	m := e.Module
	if m.IsOpaque(inst.ResultType) {
		x := e.Value(inst.Arg(0))
		e.exprs[inst.Result] = &Expr{Text: x.Text, Type: inst.ResultType, Atomic: x.Atomic, Sampler: x.Sampler}
		return
	}
	p := e.Resolve(inst.Arg(0))
	if e.Dialect.Load(e, p, inst) {
		return
	}
	e.bindExpr(inst, &Expr{Text: e.LoadText(p), Type: inst.ResultType, Memory: true, Storage: p.Storage})
}

// StoreText writes value through p.
func (e *Emitter) StoreText(p *Pointer, x *Expr) {
	m := e.Module
	a := e.render(p)
	switch {
	case a.column != "":
		v := x.Text
		if !x.Atomic || x.Forwarded {
			v = e.FreshLocal("_col")
			e.Out.Line("%s %s = %s;", e.TypeName(p.Type), v, x.Text)
		}
		for r := range m.VectorSize(p.Type) {
			e.Out.Line("%s[%d][%s] = %s.%c;", a.text, r, a.column, v, swizzleNames[r])
		}
	case a.transposed:
		e.Out.Line("%s = %s;", a.text, Call(e.Dialect.Intrinsic("transpose"), x.Text))
	default:
		e.AssignExpr(a.text, p.Storage, x, p.Type)
	}
}

// store lowers OpStore.
func (e *Emitter) store(inst *ir.Instruction) {
	p := e.Resolve(inst.Arg(0))
	if !e.Dialect.Store(e, p, inst.Arg(1)) {
		e.StoreText(p, e.Value(inst.Arg(1)))
	}
	e.Invalidate()
}

// copyMemory lowers OpCopyMemory as a load and a store.
func (e *Emitter) copyMemory(inst *ir.Instruction) {
	dst := e.Resolve(inst.Arg(0))
	src := e.Resolve(inst.Arg(1))
	e.StoreText(dst, &Expr{Text: e.LoadText(src), Type: src.Type, Storage: src.Storage})
	e.Invalidate()
}

// AssignExpr writes dst = x, copying arrays through the dialect.
func (e *Emitter) AssignExpr(dst string, dstStorage spirv.StorageClass, x *Expr, t ir.ID) {
	if e.Module.IsArray(t) {
		src := x.Storage
		if src == 0 && !x.Pointer {
			src = spirv.StorageClassFunction
		}
		if e.Dialect.CopyArray(e, t, dst, x.Text, dstStorage, src) {
			return
		}
	}
	e.Out.Line("%s = %s;", dst, x.Text)
}

// PointerBuiltin returns the builtin decorating the variable or block
// member a pointer addresses.
func (e *Emitter) PointerBuiltin(p *Pointer) (spirv.BuiltIn, bool) {
	if b, ok := e.Module.BuiltIn(p.Root); ok {
		return b, true
	}
	if len(p.Steps) > 0 && p.Steps[0].Member >= 0 {
		return e.Module.MemberBuiltIn(p.Steps[0].Parent, uint32(p.Steps[0].Member))
	}
	return 0, false
}

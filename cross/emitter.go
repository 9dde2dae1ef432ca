// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// DefaultMaxRecompiles is the number of extra passes allowed before
// emission is declared unstable.
const DefaultMaxRecompiles = 3

// Emitter holds the state of one compile. Fields below the per-pass
// marker are reset at the start of every pass; constraints learned by a
// pass (forced temporaries, loop shape caps) persist.
type Emitter struct {
	Module  *ir.Module
	Dialect Dialect
	Entry   *ir.EntryPoint
	Reach   *analysis.Reachability
	Log     logr.Logger

	// MaxRecompiles caps the extra passes; zero means the default.
	MaxRecompiles int

	forceTemp map[ir.ID]bool
	limits    map[ir.ID]analysis.LoopKind
	recompile bool
	pass      int

	// per pass

	// Out receives the text of the current section.
	Out *Buffer
	// Globals names module-scope identifiers.
	Globals *Namer

	names     map[ir.ID]string
	members   map[ir.ID][]string
	polyfills Polyfill
	helpers   []helper
	helperSet map[string]bool

	// per function
	fn         *ir.Function
	fnEntry    bool
	locals     *Namer
	localNames map[ir.ID]string
	tree       *analysis.Tree
	place      *analysis.Placement
	relaxed    map[ir.ID]bool
	exprs      map[ir.ID]*Expr
	ptrs       map[ir.ID]*Pointer
	pending    []*Expr
	memoryRead bool
	frames     []*frame
	indexTemps map[ir.ID]bool
	tempDecls  int
}

// NewEmitter prepares an emitter for one entry point.
func NewEmitter(m *ir.Module, d Dialect, ep *ir.EntryPoint, log logr.Logger) *Emitter {
	return &Emitter{
		Module:    m,
		Dialect:   d,
		Entry:     ep,
		Reach:     analysis.Reach(m, ep.Function),
		Log:       log,
		forceTemp: make(map[ir.ID]bool),
		limits:    make(map[ir.ID]analysis.LoopKind),
	}
}

// Run emits the module until a pass completes without requesting a
// recompile. Errors raised with ir.Raise during emission are returned.
func (e *Emitter) Run() (text string, err error) {
	defer ir.Recover(&err)
	maxPasses := e.MaxRecompiles
	if maxPasses <= 0 {
		maxPasses = DefaultMaxRecompiles
	}
	for e.pass = 0; ; e.pass++ {
		e.reset()
		e.Dialect.EmitModule(e)
		if !e.recompile {
			return e.Out.String(), nil
		}
		if e.pass >= maxPasses {
			return "", ir.NewError(ir.ErrInternalInstability,
				"output did not stabilize after %d recompiles", maxPasses)
		}
		e.Log.V(1).Info("recompiling", "pass", e.pass+1, "forcedTemps", len(e.forceTemp), "loopCaps", len(e.limits))
	}
}

// Pass returns the index of the current pass, starting at zero.
func (e *Emitter) Pass() int { return e.pass }

func (e *Emitter) reset() {
	e.recompile = false
	e.Out = &Buffer{}
	e.Globals = NewNamer(e.Dialect.Keywords(), e.Dialect.CaseInsensitive())
	e.names = make(map[ir.ID]string)
	e.members = make(map[ir.ID][]string)
	e.polyfills = 0
	e.helpers = nil
	e.helperSet = make(map[string]bool)
	e.fn = nil
}

// RequestRecompile asks for another pass. The reason is logged.
func (e *Emitter) RequestRecompile(reason string, id ir.ID) {
	if !e.recompile {
		e.Log.V(1).Info("recompile requested", "reason", reason, "id", id)
	}
	e.recompile = true
}

// ForceTemp makes id a named temporary in later passes.
func (e *Emitter) ForceTemp(id ir.ID) {
	if !e.forceTemp[id] {
		e.forceTemp[id] = true
		e.RequestRecompile("forced temporary", id)
	}
}

// capLoop lowers the allowed shape of a loop and requests a recompile.
func (e *Emitter) capLoop(header ir.ID, k analysis.LoopKind) {
	if cur, ok := e.limits[header]; ok && cur <= k {
		return
	}
	e.limits[header] = k
	e.RequestRecompile("loop shape "+k.String(), header)
}

// Swap replaces Out and returns the previous buffer.
func (e *Emitter) Swap(b *Buffer) *Buffer {
	prev := e.Out
	e.Out = b
	return prev
}

// Naming

// NameGlobals names every module-scope entity. fixed pins names chosen by
// the dialect; they are reserved before anything else is named.
func (e *Emitter) NameGlobals(fixed map[ir.ID]string) {
	for _, id := range sortedIDs(fixed) {
		e.Globals.Reserve(fixed[id])
		e.names[id] = fixed[id]
	}
	name := func(id ir.ID) {
		if _, ok := e.names[id]; ok {
			return
		}
		if n := e.Module.Name(id); n != "" {
			e.names[id] = e.Globals.Call(n)
			return
		}
		e.names[id] = e.Globals.Temp(uint32(id))
	}
	for _, id := range e.Module.GlobalOrder {
		switch e.Module.KindOf(id) {
		case ir.KindType:
			if e.Module.IsStruct(id) {
				name(id)
			}
		case ir.KindConstant, ir.KindVariable, ir.KindUndef:
			name(id)
		}
	}
	for _, id := range e.Module.FunctionOrder {
		name(id)
	}
}

// SetName pins the name of a global entity.
func (e *Emitter) SetName(id ir.ID, name string) {
	e.Globals.Reserve(name)
	e.names[id] = name
}

// Name returns the identifier of a global entity or a local of the
// current function.
func (e *Emitter) Name(id ir.ID) string {
	if n, ok := e.localNames[id]; ok {
		return n
	}
	if n, ok := e.names[id]; ok {
		return n
	}
	if e.isLocal(id) {
		return e.LocalName(id)
	}
	n := e.Module.Name(id)
	if n == "" {
		n = e.Globals.Temp(uint32(id))
	} else {
		n = e.Globals.Call(n)
	}
	e.names[id] = n
	return n
}

func (e *Emitter) isLocal(id ir.ID) bool {
	if e.fn == nil {
		return false
	}
	switch e.Module.KindOf(id) {
	case ir.KindValue, ir.KindParameter:
		return true
	case ir.KindVariable:
		return e.Module.MustVariable(id).Function != 0
	}
	return false
}

// LocalName returns the identifier of a value, parameter or local
// variable of the current function.
func (e *Emitter) LocalName(id ir.ID) string {
	if n, ok := e.localNames[id]; ok {
		return n
	}
	var n string
	if dbg := e.Module.Name(id); dbg != "" {
		n = e.locals.Call(dbg)
	} else {
		n = e.locals.Temp(uint32(id))
	}
	e.localNames[id] = n
	return n
}

// FreshLocal returns a new local identifier derived from base.
func (e *Emitter) FreshLocal(base string) string {
	if e.locals == nil {
		return e.Globals.Call(base)
	}
	return e.locals.Call(base)
}

// MemberName returns the identifier of member i of a struct.
func (e *Emitter) MemberName(st ir.ID, i uint32) string {
	names, ok := e.members[st]
	if !ok {
		count := e.Module.MemberCount(st)
		names = make([]string, count)
		used := NewNamer(e.Dialect.Keywords(), e.Dialect.CaseInsensitive())
		for k := range count {
			ku := ir.Index(k)
			if b, isBuiltin := e.Module.MemberBuiltIn(st, ku); isBuiltin {
				names[k] = BuiltinName(b)
				used.Reserve(names[k])
			}
		}
		for k := range count {
			if names[k] != "" {
				continue
			}
			if dbg := e.Module.MemberName(st, ir.Index(k)); dbg != "" {
				names[k] = used.Call(dbg)
			} else {
				names[k] = used.Call(fmt.Sprintf("m%d", k))
				if names[k] == fmt.Sprintf("m%d", k) {
					names[k] = "_" + names[k]
				}
			}
		}
		e.members[st] = names
	}
	if i >= ir.Index(len(names)) {
		ir.RaiseAt(ir.ErrInvalidIR, st, spirv.OpMemberName, "member %d out of range", i)
	}
	return names[i]
}

// Types

// Decl returns a declaration of name with type t, placing array
// dimensions after the name.
func (e *Emitter) Decl(t ir.ID, name string) string {
	return e.declWith(e.Dialect.TypeName(e, e.baseType(t)), t, name)
}

// DeclTemp is Decl for the temporary of value id.
func (e *Emitter) DeclTemp(id, t ir.ID, name string) string {
	return e.declWith(e.Dialect.TempTypeName(e, id, e.baseType(t)), t, name)
}

func (e *Emitter) declWith(base string, t ir.ID, name string) string {
	return base + " " + name + e.ArraySuffix(t)
}

func (e *Emitter) baseType(t ir.ID) ir.ID {
	for e.Module.IsArray(t) {
		t = e.Module.ElementType(t)
	}
	return t
}

// ArraySuffix returns the bracketed dimensions of an array type, or "".
func (e *Emitter) ArraySuffix(t ir.ID) string {
	var b strings.Builder
	for {
		switch a := e.Module.Inner(t).(type) {
		case ir.ArrayType:
			b.WriteString("[" + e.ArraySize(t) + "]")
			t = a.Element
			continue
		case ir.RuntimeArrayType:
			b.WriteString("[1]")
			t = a.Element
			continue
		}
		return b.String()
	}
}

// ArraySize returns the length of a sized array as text. Lengths given by
// specialization constants are referenced by name.
func (e *Emitter) ArraySize(t ir.ID) string {
	n, literal := e.Module.ArrayLength(t)
	if literal {
		return fmt.Sprintf("%d", n)
	}
	return e.Name(e.Module.Inner(t).(ir.ArrayType).Length)
}

// TypeName returns the dialect name of a non-array type.
func (e *Emitter) TypeName(t ir.ID) string { return e.Dialect.TypeName(e, t) }

// ArrayDepth returns the number of array dimensions of t.
func (e *Emitter) ArrayDepth(t ir.ID) int {
	dims, _ := e.Module.ArrayDims(t)
	return len(dims)
}

// Structs returns the struct types of the module in declaration order.
// Every struct follows the structs it contains.
func (e *Emitter) Structs() []ir.ID {
	var out []ir.ID
	seen := make(map[ir.ID]bool)
	var visit func(t ir.ID)
	visit = func(t ir.ID) {
		switch inner := e.Module.Inner(t).(type) {
		case ir.StructType:
			if seen[t] {
				return
			}
			seen[t] = true
			for _, mt := range inner.Members {
				visit(mt)
			}
			out = append(out, t)
		case ir.ArrayType:
			visit(inner.Element)
		case ir.RuntimeArrayType:
			visit(inner.Element)
		case ir.PointerType:
			visit(inner.Pointee)
		}
	}
	for _, id := range e.Module.GlobalOrder {
		if e.Module.KindOf(id) == ir.KindType {
			visit(id)
		}
	}
	return out
}

// Functions

// Function returns the function being emitted, or nil.
func (e *Emitter) Function() *ir.Function { return e.fn }

// InEntry reports whether the entry point function is being emitted.
func (e *Emitter) InEntry() bool { return e.fnEntry }

// Tree returns the structured form of the current function.
func (e *Emitter) Tree() *analysis.Tree { return e.tree }

// Relaxed reports whether a value of the current function carries relaxed
// precision.
func (e *Emitter) Relaxed(id ir.ID) bool { return e.relaxed[id] }

// EmitFunctions emits every function reachable from the entry point,
// callees first.
func (e *Emitter) EmitFunctions() {
	for _, fn := range e.Reach.Functions {
		e.EmitFunction(fn, fn == e.Entry.Function)
	}
}

// EmitFunction writes one function definition into Out.
func (e *Emitter) EmitFunction(fnID ir.ID, entry bool) {
	m := e.Module
	fn := m.MustFunction(fnID)
	tree, err := analysis.StructurizeLimited(m, fn, e.limits)
	if err != nil {
		panic(err)
	}
	e.fn, e.fnEntry = fn, entry
	e.tree = tree
	e.place = analysis.Place(m, tree)
	e.relaxed = analysis.RelaxedValues(m, fn)
	e.locals = e.Globals.Fork()
	e.localNames = make(map[ir.ID]string)
	e.exprs = make(map[ir.ID]*Expr)
	e.ptrs = make(map[ir.ID]*Pointer)
	e.pending = nil
	e.frames = nil
	e.tempDecls = 0
	e.scanIndexTemps()
	e.Log.V(2).Info("emitting function", "function", e.Name(fnID), "entry", entry,
		"hoisted", e.place.HoistedCount(), "loops", len(tree.Loops))

	for _, p := range fn.Params {
		e.LocalName(p)
	}
	e.Out.Line("%s", e.Dialect.FunctionHeader(e, fn, entry))
	e.Out.Line("{")
	e.Out.Indent()
	e.Dialect.FunctionPrologue(e, fn, entry)
	for _, local := range fn.Locals {
		e.declareLocal(local)
	}
	for _, bid := range fn.Blocks {
		for _, phi := range m.MustBlock(bid).Phis {
			if m.IsPointer(phi.ResultType) {
				ir.RaiseAt(ir.ErrUnsupportedAccessPattern, phi.Result, spirv.OpPhi, "phi of pointers")
			}
			e.exprs[phi.Result] = &Expr{Text: e.LocalName(phi.Result), Type: phi.ResultType, Atomic: true}
		}
	}
	e.emitScope(tree.Root)
	if !endsInReturn(tree.Root) {
		e.Dialect.Return(e, 0, true)
	}
	e.Out.Dedent()
	e.Out.Line("}")
	e.Out.Blank()
	e.fn = nil
	e.localNames = nil
	e.locals = nil
}

func endsInReturn(s *analysis.Scope) bool {
	if len(s.Nodes) == 0 {
		return false
	}
	switch s.Nodes[len(s.Nodes)-1].(type) {
	case *analysis.ReturnNode, *analysis.KillNode, *analysis.UnreachableNode:
		return true
	}
	return false
}

func (e *Emitter) declareLocal(id ir.ID) {
	v := e.Module.MustVariable(id)
	t := e.Module.Pointee(v.Type)
	name := e.LocalName(id)
	if v.Initializer == 0 {
		e.Out.Line("%s;", e.Decl(t, name))
		return
	}
	if e.Module.IsArray(t) {
		e.Out.Line("%s;", e.Decl(t, name))
		e.AssignExpr(name, spirv.StorageClassFunction, e.Value(v.Initializer), t)
		return
	}
	e.Out.Line("%s = %s;", e.Decl(t, name), e.Value(v.Initializer).Text)
}

// scanIndexTemps marks dynamic indices of access chains with several uses.
// The chain text is rebuilt at every use, so its indices must be stable.
func (e *Emitter) scanIndexTemps() {
	e.indexTemps = make(map[ir.ID]bool)
	for _, bid := range e.fn.Blocks {
		for _, inst := range e.Module.MustBlock(bid).Instructions {
			if !analysis.IsPointerOp(inst.Op) || e.tree.Uses.Count(inst.Result) <= 1 {
				continue
			}
			for _, idx := range inst.IDOperands()[1:] {
				if e.Module.KindOf(idx) == ir.KindValue {
					e.indexTemps[idx] = true
				}
			}
		}
	}
}

// Values

// willForward reports whether the result of inst is inlined at its use.
func (e *Emitter) willForward(inst *ir.Instruction) bool {
	id := inst.Result
	if e.Module.IsOpaque(inst.ResultType) {
		return true
	}
	if e.forceTemp[id] || e.tree.ForceTemp[id] || e.indexTemps[id] {
		return false
	}
	if e.tree.Folded[id] {
		return true
	}
	if inst.Op == spirv.OpPhi || !analysis.Forwardable(inst) {
		return false
	}
	u := e.tree.Uses
	if u.Count(id) > 1 || !u.LocalToBlock(id) {
		return false
	}
	return !e.Dialect.ForcesTemp(e, inst)
}

// ForwardsTo reports whether value id will be inlined at its use.
func (e *Emitter) ForwardsTo(id ir.ID) bool {
	if e.Module.KindOf(id) != ir.KindValue {
		return true
	}
	return e.willForward(e.Module.MustInstruction(id))
}

// Bind records the result of inst. Forwardable results keep text; others
// are written to a temporary.
func (e *Emitter) Bind(inst *ir.Instruction, text string) {
	e.bindExpr(inst, &Expr{Text: text, Type: inst.ResultType, Memory: analysis.EffectOf(inst) == analysis.EffectRead})
}

// BindMemory is Bind for results that read memory through text.
func (e *Emitter) BindMemory(inst *ir.Instruction, text string) {
	e.bindExpr(inst, &Expr{Text: text, Type: inst.ResultType, Memory: true})
}

func (e *Emitter) bindExpr(inst *ir.Instruction, x *Expr) {
	x.Memory = x.Memory || e.memoryRead
	e.memoryRead = false
	if e.willForward(inst) {
		x.Forwarded = true
		x.Atomic = isAtomic(x.Text)
		e.exprs[inst.Result] = x
		if x.Memory {
			e.pending = append(e.pending, x)
		}
		return
	}
	e.bindTemp(inst.Result, inst.ResultType, x)
}

// BindTemp writes value id into a named temporary.
func (e *Emitter) BindTemp(id, t ir.ID, text string) {
	e.bindTemp(id, t, &Expr{Text: text, Type: t})
}

func (e *Emitter) bindTemp(id, t ir.ID, x *Expr) {
	name := e.LocalName(id)
	switch {
	case e.Module.IsArray(t):
		if !e.place.IsHoisted(id) {
			e.Out.Line("%s;", e.DeclTemp(id, t, name))
			e.tempDecls++
		}
		e.AssignExpr(name, spirv.StorageClassFunction, x, t)
	case e.place.IsHoisted(id):
		e.Out.Line("%s = %s;", name, x.Text)
	default:
		e.Out.Line("%s = %s;", e.DeclTemp(id, t, name), x.Text)
		e.tempDecls++
	}
	e.exprs[id] = &Expr{Text: name, Type: t, Atomic: true, Storage: spirv.StorageClassFunction}
}

// BindName records that value id is available as name without writing
// anything. Opaque handles and aliases use it.
func (e *Emitter) BindName(id, t ir.ID, name string) {
	e.exprs[id] = &Expr{Text: name, Type: t, Atomic: isAtomic(name)}
}

// BindExpr records a prepared expression for value id.
func (e *Emitter) BindExpr(id ir.ID, x *Expr) {
	e.exprs[id] = x
}

// DeclareResult declares the temporary of value id without initializing
// it and returns its name. The caller assigns it.
func (e *Emitter) DeclareResult(id, t ir.ID) string {
	name := e.LocalName(id)
	if !e.place.IsHoisted(id) {
		e.Out.Line("%s;", e.DeclTemp(id, t, name))
		e.tempDecls++
	}
	e.exprs[id] = &Expr{Text: name, Type: t, Atomic: true}
	return name
}

// Statement writes a side-effecting statement and invalidates forwarded
// reads of memory.
func (e *Emitter) Statement(format string, args ...any) {
	e.Out.Line(format, args...)
	e.Invalidate()
}

// Invalidate marks pending forwarded memory reads as stale. Reading a
// stale expression later forces its value into a temporary.
func (e *Emitter) Invalidate() {
	for _, x := range e.pending {
		x.invalid = true
	}
	e.pending = e.pending[:0]
}

// Value returns the expression of any value-like ID.
func (e *Emitter) Value(id ir.ID) *Expr {
	m := e.Module
	switch m.KindOf(id) {
	case ir.KindConstant:
		return e.constantExpr(id)
	case ir.KindUndef:
		t := m.TypeOf(id)
		text := e.Dialect.Zero(e, t)
		return &Expr{Text: text, Type: t, Atomic: isAtomic(text)}
	case ir.KindVariable:
		v := m.MustVariable(id)
		if v.Function != 0 {
			return &Expr{Text: e.LocalName(id), Type: v.Type, Pointer: true, Atomic: true}
		}
		text := e.Dialect.VariableRef(e, id)
		return &Expr{Text: text, Type: v.Type, Pointer: true, Atomic: isAtomic(text), Sampler: e.Dialect.SamplerRef(e, id)}
	case ir.KindParameter:
		t := m.TypeOf(id)
		return &Expr{Text: e.LocalName(id), Type: t, Atomic: true, Pointer: m.IsPointer(t), Sampler: e.Dialect.SamplerRef(e, id)}
	case ir.KindFunction:
		return &Expr{Text: e.Name(id), Atomic: true}
	case ir.KindValue:
		if _, ok := e.ptrs[id]; ok {
			p := e.Resolve(id)
			text := e.Lvalue(p)
			return &Expr{Text: text, Type: m.TypeOf(id), Pointer: true, Atomic: isAtomic(text), Sampler: e.samplerOf(p)}
		}
		x, ok := e.exprs[id]
		if !ok {
			ir.RaiseAt(ir.ErrInvalidIR, id, 0, "value used before its definition was emitted")
		}
		if x.Forwarded {
			if x.invalid {
				e.ForceTemp(id)
			}
			if x.Memory {
				e.memoryRead = true
			}
		}
		return x
	}
	ir.RaiseAt(ir.ErrKindMismatch, id, 0, "%s used as a value", m.KindOf(id))
	return nil
}

// Text returns the expression text of a value.
func (e *Emitter) Text(id ir.ID) string { return e.Value(id).Text }

// Operand returns the text of a value, parenthesized unless atomic.
func (e *Emitter) Operand(id ir.ID) string { return e.Value(id).Operand() }

// Sampler returns the sampler half of a combined image-sampler value.
func (e *Emitter) Sampler(id ir.ID) string { return e.Value(id).Sampler }

// TypeOf returns the type of a value.
func (e *Emitter) TypeOf(id ir.ID) ir.ID { return e.Module.TypeOf(id) }

// Ladder flags and jumps

type frame struct {
	loop    *analysis.LoopNode
	sw      *analysis.SwitchNode
	wrapper bool
	ladder  string
	cont    string
	ft      string
	sel     string
}

func (e *Emitter) push(f *frame) { e.frames = append(e.frames, f) }
func (e *Emitter) pop()          { e.frames = e.frames[:len(e.frames)-1] }

func sortedIDs[V any](m map[ir.ID]V) []ir.ID {
	out := make([]ir.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

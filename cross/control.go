// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"strings"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

func (e *Emitter) emitScope(s *analysis.Scope) {
	for i, n := range s.Nodes {
		e.declareHoisted(s, i)
		tail := s == e.tree.Root && i == len(s.Nodes)-1
		e.emitNode(n, tail)
	}
}

// declareHoisted declares the temporaries whose definitions and reads
// are spread across the nodes starting at s.Nodes[i].
func (e *Emitter) declareHoisted(s *analysis.Scope, i int) {
	for _, id := range e.place.Hoisted(s, i) {
		inst := e.Module.MustInstruction(id)
		if inst.Op != spirv.OpPhi && e.willForward(inst) {
			continue
		}
		e.Out.Line("%s;", e.DeclTemp(id, inst.ResultType, e.LocalName(id)))
		e.tempDecls++
	}
}

func (e *Emitter) emitNode(n analysis.Node, tail bool) {
	switch n := n.(type) {
	case *analysis.BlockNode:
		e.emitBlock(n.Block)
	case *analysis.BranchNode:
		e.emitBranch(n)
	case *analysis.IfNode:
		e.emitIf(n)
	case *analysis.LoopNode:
		e.emitLoop(n)
	case *analysis.SwitchNode:
		if e.Dialect.SupportsFallthrough() || !n.Fallthrough {
			e.emitSwitch(n)
		} else {
			e.emitSwitchWrapper(n)
		}
	case *analysis.ReturnNode:
		e.Dialect.Return(e, n.Value, tail)
	case *analysis.KillNode:
		e.Dialect.Discard(e, n.Terminate)
	case *analysis.UnreachableNode:
	}
}

func (e *Emitter) emitBlock(b ir.ID) {
	for _, inst := range e.Module.MustBlock(b).Instructions {
		e.emitInstruction(inst)
	}
}

func (e *Emitter) condition(id ir.ID, negate bool) string {
	c := e.Text(id)
	if negate {
		return Unary("!", c)
	}
	return c
}

func (e *Emitter) emitIf(n *analysis.IfNode) {
	e.Out.Open("if (%s)", e.condition(n.Cond, n.Negate))
	e.emitScope(n.Then)
	e.Out.Close("")
	if n.Else != nil {
		e.Out.Open("else")
		e.emitScope(n.Else)
		e.Out.Close("")
	}
}

// Loops

func (e *Emitter) emitLoop(n *analysis.LoopNode) {
	e.push(&frame{loop: n})
	defer e.pop()
	switch n.Kind {
	case analysis.LoopWhile:
		cond := e.loopCondition(n)
		e.Out.Open("while (%s)", cond)
		e.emitScope(n.Body)
		e.emitScope(n.ContinueBody)
		e.Out.Close("")
	case analysis.LoopFor:
		cond := e.loopCondition(n)
		prev := e.Out
		body := prev.Sub()
		body.Indent()
		e.Out = body
		e.emitScope(n.Body)
		e.Out = prev
		update := e.loopUpdate(n)
		e.Out.Line("for (; %s; %s)", cond, update)
		e.Out.Line("{")
		e.Out.Raw(body.String())
		e.Out.Line("}")
	case analysis.LoopDoWhile:
		e.Out.Line("do")
		e.Out.Line("{")
		e.Out.Indent()
		e.emitScope(n.Body)
		e.emitScope(n.ContinueBody)
		e.Out.Close(" while (" + e.condition(n.Cond, n.Negate) + ");")
	default:
		e.Out.Open("for (;;)")
		e.emitScope(n.Body)
		e.emitScope(n.ContinueBody)
		e.Out.Close("")
	}
}

// loopCondition renders the header of a while or for loop as one
// expression. A header that needs statements caps the loop to the
// generic shape.
func (e *Emitter) loopCondition(n *analysis.LoopNode) string {
	scratch := e.Out.Sub()
	prev := e.Swap(scratch)
	e.emitBlock(n.Header)
	cond := e.condition(n.Cond, n.Negate)
	e.Swap(prev)
	if !scratch.Empty() {
		e.capLoop(n.Header, analysis.LoopGeneric)
	}
	return cond
}

// loopUpdate renders the continue block of a for loop as a comma list.
// Declarations or nested blocks cap the loop to the while shape.
func (e *Emitter) loopUpdate(n *analysis.LoopNode) string {
	scratch := &Buffer{}
	prev := e.Swap(scratch)
	decls := e.tempDecls
	e.emitScope(n.ContinueBody)
	e.Swap(prev)
	if e.tempDecls != decls || strings.Contains(scratch.String(), "{") {
		e.capLoop(n.Header, analysis.LoopWhile)
		return ""
	}
	var parts []string
	for _, line := range strings.Split(strings.TrimSpace(scratch.String()), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ";")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", ")
}

// Switches

// caseLabel formats a case literal in the selector's type.
func (e *Emitter) caseLabel(sel ir.ID, v uint64) string {
	t := e.TypeOf(sel)
	c := &ir.Constant{Type: t, Kind: ir.ConstScalar, Value: []uint32{uint32(v), uint32(v >> 32)}}
	if e.Module.ScalarOf(t).Width <= 32 {
		c.Value = c.Value[:1]
	}
	return e.Dialect.ScalarLiteral(e, t, c)
}

func (e *Emitter) emitSwitch(n *analysis.SwitchNode) {
	f := &frame{sw: n}
	if n.LadderBreak {
		f.ladder = e.FreshLocal("_ladder_break")
		e.Out.Line("bool %s = false;", f.ladder)
	}
	e.Out.Open("switch (%s)", e.Text(n.Selector))
	e.push(f)
	for _, c := range n.Cases {
		for _, v := range c.Values {
			e.Out.Line("case %s:", e.caseLabel(n.Selector, v))
		}
		if c.Default {
			e.Out.Line("default:")
		}
		e.Out.Line("{")
		e.Out.Indent()
		e.emitScope(c.Body)
		e.Out.Close("")
	}
	e.pop()
	e.Out.Close("")
	if f.ladder != "" {
		e.Out.Open("if (%s)", f.ladder)
		e.Out.Line("break;")
		e.Out.Close("")
	}
}

// emitSwitchWrapper lowers a switch with fallthrough for targets without
// it: each case becomes a guarded block inside a single-iteration loop,
// and a flag carries execution into the next case.
func (e *Emitter) emitSwitchWrapper(n *analysis.SwitchNode) {
	f := &frame{sw: n, wrapper: true}
	f.sel = e.Text(n.Selector)
	if !isIdentifier(f.sel) {
		name := e.FreshLocal("_selector")
		e.Out.Line("%s %s = %s;", e.TypeName(e.TypeOf(n.Selector)), name, f.sel)
		f.sel = name
	}
	f.ft = e.FreshLocal("_fallthrough")
	e.Out.Line("bool %s = false;", f.ft)
	if n.LadderBreak {
		f.ladder = e.FreshLocal("_ladder_break")
		e.Out.Line("bool %s = false;", f.ladder)
	}
	if n.ContainsContinue {
		f.cont = e.FreshLocal("_ladder_continue")
		e.Out.Line("bool %s = false;", f.cont)
	}
	all := n.Values()
	e.Out.Line("do")
	e.Out.Line("{")
	e.Out.Indent()
	e.push(f)
	for _, c := range n.Cases {
		var match string
		if c.Default {
			match = Unary("!", e.matchAny(n.Selector, f.sel, all))
		} else {
			match = e.matchAny(n.Selector, f.sel, c.Values)
		}
		e.Out.Open("if (%s || %s)", f.ft, Enclose(match))
		e.emitScope(c.Body)
		e.Out.Close("")
	}
	e.pop()
	e.Out.Close(" while (false);")
	if f.ladder != "" {
		e.Out.Open("if (%s)", f.ladder)
		e.Out.Line("break;")
		e.Out.Close("")
	}
	if f.cont != "" {
		e.Out.Open("if (%s)", f.cont)
		e.continueInline(e.enclosingLoop())
		e.Out.Close("")
	}
}

// matchAny renders sel == v0 || sel == v1 ...
func (e *Emitter) matchAny(selID ir.ID, sel string, values []uint64) string {
	if len(values) == 0 {
		return "false"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = sel + " == " + e.caseLabel(selID, v)
	}
	return strings.Join(parts, " || ")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// Branches

func (e *Emitter) emitBranch(n *analysis.BranchNode) {
	if !n.Virtual {
		e.phiCopies(n)
	}
	switch n.Kind {
	case analysis.EdgeBreak:
		e.breakTo(e.frameOf(n.Loop, nil))
	case analysis.EdgeSwitchBreak:
		e.breakTo(e.frameOf(nil, n.Switch))
	case analysis.EdgeContinue:
		if !n.Tail {
			e.continueTo(n.Loop)
		}
	case analysis.EdgeBackEdge:
		if !n.Tail {
			e.continueTo(n.Loop)
		}
	case analysis.EdgeFallthrough:
		if f := e.frames[e.frameOf(nil, n.Switch)]; f.wrapper {
			e.Out.Line("%s = true;", f.ft)
		}
	}
}

func (e *Emitter) frameOf(loop *analysis.LoopNode, sw *analysis.SwitchNode) int {
	for k := len(e.frames) - 1; k >= 0; k-- {
		f := e.frames[k]
		if loop != nil && f.loop == loop || sw != nil && f.sw == sw {
			return k
		}
	}
	ir.Raise(ir.ErrInvalidIR, "branch to a construct that does not enclose it")
	return -1
}

func (e *Emitter) enclosingLoop() *analysis.LoopNode {
	for k := len(e.frames) - 1; k >= 0; k-- {
		if l := e.frames[k].loop; l != nil {
			return l
		}
	}
	ir.Raise(ir.ErrInvalidIR, "continue outside of a loop")
	return nil
}

// breakTo leaves every frame above target and then target itself. Each
// crossed switch raises its ladder flag so the statement after it breaks
// again.
func (e *Emitter) breakTo(target int) {
	for k := len(e.frames) - 1; k > target; k-- {
		f := e.frames[k]
		if f.ladder == "" {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "break crosses a construct that cannot forward it")
		}
		e.Out.Line("%s = true;", f.ladder)
	}
	e.Out.Line("break;")
}

// continueTo continues loop. Switch wrappers are single-iteration loops,
// so a continue inside one is routed through the flags of the outermost
// wrapper.
func (e *Emitter) continueTo(loop *analysis.LoopNode) {
	at := e.frameOf(loop, nil)
	outer := -1
	for k := at + 1; k < len(e.frames); k++ {
		if e.frames[k].wrapper {
			outer = k
			break
		}
	}
	if outer < 0 {
		e.continueInline(loop)
		return
	}
	for k := len(e.frames) - 1; k > outer; k-- {
		f := e.frames[k]
		if f.ladder == "" {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "continue crosses a construct that cannot forward it")
		}
		e.Out.Line("%s = true;", f.ladder)
	}
	e.Out.Line("%s = true;", e.frames[outer].cont)
	e.Out.Line("break;")
}

// continueInline runs the continue construct and jumps to the next
// iteration. For loops run it as their update clause.
func (e *Emitter) continueInline(loop *analysis.LoopNode) {
	if loop.Kind != analysis.LoopFor {
		e.emitScope(loop.ContinueBody)
	}
	e.Out.Line("continue;")
}

// phiCopies assigns the phis of the edge's target. Values the copies
// may clobber are read into temporaries first.
func (e *Emitter) phiCopies(n *analysis.BranchNode) {
	type copyOp struct {
		phi   *ir.Instruction
		value *Expr
	}
	target := e.Module.MustBlock(n.To)
	var copies []copyOp
	for _, phi := range target.Phis {
		for _, edge := range phi.PhiEdges() {
			if edge.Parent == n.From {
				copies = append(copies, copyOp{phi: phi, value: e.Value(edge.Value)})
				break
			}
		}
	}
	if len(copies) == 0 {
		return
	}
	if len(copies) > 1 {
		phis := make(map[string]bool, len(target.Phis))
		for _, phi := range target.Phis {
			phis[e.LocalName(phi.Result)] = true
		}
		for i, c := range copies {
			if phis[c.value.Text] || c.value.Forwarded {
				name := e.FreshLocal("_copy")
				e.Out.Line("%s = %s;", e.Decl(c.phi.ResultType, name), c.value.Text)
				copies[i].value = &Expr{Text: name, Type: c.phi.ResultType, Atomic: true, Storage: spirv.StorageClassFunction}
			}
		}
	}
	for _, c := range copies {
		name := e.LocalName(c.phi.Result)
		t := c.phi.ResultType
		if e.place.DeclaresAtCopy(n, c.phi.Result) {
			if e.Module.IsArray(t) {
				e.Out.Line("%s;", e.DeclTemp(c.phi.Result, t, name))
				e.AssignExpr(name, spirv.StorageClassFunction, c.value, t)
			} else {
				e.Out.Line("%s = %s;", e.DeclTemp(c.phi.Result, t, name), c.value.Text)
			}
			e.tempDecls++
			continue
		}
		e.AssignExpr(name, spirv.StorageClassFunction, c.value, t)
	}
}

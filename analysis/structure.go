// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Node is an element of a structured function body.
type Node interface {
	node()
}

// Scope is a brace-delimited list of nodes.
type Scope struct {
	Nodes []Node
	// Parent is the enclosing scope; nil for the function body.
	Parent *Scope
	// At is the index of the node owning this scope in Parent.Nodes.
	At    int
	depth int
}

func newScope(parent *Scope, at int) *Scope {
	s := &Scope{Parent: parent, At: at}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	return s
}

func (s *Scope) add(n Node) int {
	s.Nodes = append(s.Nodes, n)
	return len(s.Nodes) - 1
}

// Depth returns the nesting depth; the function body is depth zero.
func (s *Scope) Depth() int { return s.depth }

// EdgeKind classifies a control-flow edge relative to the enclosing
// constructs.
type EdgeKind uint8

const (
	// EdgeNext continues with the target in the same scope.
	EdgeNext EdgeKind = iota
	// EdgeMerge leaves a selection through its merge block.
	EdgeMerge
	// EdgeBreak leaves a loop through its merge block.
	EdgeBreak
	// EdgeSwitchBreak leaves a switch through its merge block.
	EdgeSwitchBreak
	// EdgeContinue enters the continue construct of a loop.
	EdgeContinue
	// EdgeBackEdge returns from the continue construct to the loop header.
	EdgeBackEdge
	// EdgeFallthrough enters the next case of a switch.
	EdgeFallthrough
)

var edgeNames = [...]string{"next", "merge", "break", "switch-break", "continue", "back-edge", "fallthrough"}

func (k EdgeKind) String() string {
	if int(k) < len(edgeNames) {
		return edgeNames[k]
	}
	return "edge?"
}

// BlockNode emits the instructions of a block.
type BlockNode struct {
	Block ir.ID
}

// BranchNode is a control transfer. Phi copies for the target are emitted
// on every non-virtual edge.
type BranchNode struct {
	From, To ir.ID
	Kind     EdgeKind
	// Tail marks transfers that end their scope without a statement: the
	// loop body falling into the continue block, or the continue block
	// looping back to the header.
	Tail bool
	// Virtual edges close a construct whose merge is an exit of the
	// enclosing one. They carry no phi copies.
	Virtual bool
	Loop    *LoopNode
	Switch  *SwitchNode
}

// IfNode is a two-way selection.
type IfNode struct {
	Block  ir.ID
	Cond   ir.ID
	Negate bool
	Then   *Scope
	// Else is nil when the false arm is empty.
	Else *Scope
}

// LoopKind is the emitted loop shape.
type LoopKind uint8

const (
	// LoopGeneric is an infinite loop with explicit breaks.
	LoopGeneric LoopKind = iota
	// LoopWhile tests a condition folded from the header before each
	// iteration.
	LoopWhile
	// LoopFor is LoopWhile with the continue block rendered as the update
	// clause.
	LoopFor
	// LoopDoWhile tests the continue block's condition after each
	// iteration.
	LoopDoWhile
)

func (k LoopKind) String() string {
	switch k {
	case LoopWhile:
		return "while"
	case LoopFor:
		return "for"
	case LoopDoWhile:
		return "do-while"
	}
	return "loop"
}

// LoopNode is a structured loop.
type LoopNode struct {
	Header, Merge, Continue ir.ID
	Kind                    LoopKind
	// Cond is the loop condition for while, for and do-while shapes.
	Cond   ir.ID
	Negate bool
	Body   *Scope
	// ContinueBody holds the continue construct. It is emitted at the end
	// of the body, or as the update clause of a for loop, and inlined
	// before every explicit continue.
	ContinueBody *Scope
}

// SwitchCase is one group of labels sharing a target.
type SwitchCase struct {
	Target  ir.ID
	Values  []uint64
	Default bool
	Body    *Scope
	// FallsThrough marks cases whose body ends by entering the next case.
	FallsThrough bool
}

// SwitchNode is a multi-way selection.
type SwitchNode struct {
	Block    ir.ID
	Selector ir.ID
	Merge    ir.ID
	Cases    []*SwitchCase
	// Fallthrough is set when any case falls through.
	Fallthrough bool
	// LadderBreak is set when a case breaks out of an enclosing loop.
	LadderBreak bool
	// ContainsContinue is set when a case continues an enclosing loop.
	ContainsContinue bool
}

// Values returns every case literal of the switch, sorted.
func (s *SwitchNode) Values() []uint64 {
	var out []uint64
	for _, c := range s.Cases {
		out = append(out, c.Values...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReturnNode returns from the function.
type ReturnNode struct {
	Block ir.ID
	Value ir.ID
}

// KillNode discards the fragment.
type KillNode struct {
	Block     ir.ID
	Terminate bool
}

// UnreachableNode marks a block ending in OpUnreachable.
type UnreachableNode struct {
	Block ir.ID
}

func (*BlockNode) node()       {}
func (*BranchNode) node()      {}
func (*IfNode) node()          {}
func (*LoopNode) node()        {}
func (*SwitchNode) node()      {}
func (*ReturnNode) node()      {}
func (*KillNode) node()        {}
func (*UnreachableNode) node() {}

// Tree is the structured form of a function.
type Tree struct {
	Function *ir.Function
	Root     *Scope
	CFG      *CFG
	Uses     *Uses
	// Loops maps loop headers to their nodes.
	Loops map[ir.ID]*LoopNode
	// ForceTemp lists values that must be bound to a temporary.
	ForceTemp map[ir.ID]bool
	// Folded lists header values folded into a loop condition; they are
	// always forwarded.
	Folded map[ir.ID]bool
}

type constructKind uint8

const (
	constructSelection constructKind = iota
	constructSwitch
	constructLoopBody
	constructLoopContinue
)

type construct struct {
	kind                constructKind
	header, merge, cont ir.ID
	loop                *LoopNode
	sw                  *SwitchNode
	cases               map[ir.ID]bool
}

type builder struct {
	m      *ir.Module
	limits map[ir.ID]LoopKind
	cfg    *CFG
	uses   *Uses
	tree   *Tree
	stack  []construct
	placed map[ir.ID]bool
}

// Structurize rebuilds the structured control flow of a function from its
// merge annotations. Unstructured input is reported as InvalidIR.
func Structurize(m *ir.Module, fn *ir.Function) (*Tree, error) {
	return StructurizeLimited(m, fn, nil)
}

// StructurizeLimited is Structurize with per-header caps on the loop
// shape: LoopGeneric disables condition folding and LoopWhile disables the
// for-loop update clause. Emitters lower a cap when a folded condition or
// update clause turns out to need statements.
func StructurizeLimited(m *ir.Module, fn *ir.Function, limits map[ir.ID]LoopKind) (tree *Tree, err error) {
	defer ir.Recover(&err)
	cfg := NewCFG(m, fn)
	b := &builder{
		m:      m,
		limits: limits,
		cfg:    cfg,
		uses:   CountUses(m, cfg),
		tree:   &Tree{
			Function:  fn,
			Root:      newScope(nil, 0),
			CFG:       cfg,
			Loops:     make(map[ir.ID]*LoopNode),
			ForceTemp: make(map[ir.ID]bool),
			Folded:    make(map[ir.ID]bool),
		},
		placed: make(map[ir.ID]bool),
	}
	b.tree.Uses = b.uses
	if entry := fn.Entry(); entry != 0 {
		b.chain(b.tree.Root, entry, 0)
	}
	return b.tree, nil
}

func (c *builder) push(k construct) { c.stack = append(c.stack, k) }
func (c *builder) pop()             { c.stack = c.stack[:len(c.stack)-1] }

// chain appends the blocks reached from b by fall-through edges. The merge
// instruction of loopHeader is ignored so a loop body can start at its own
// header.
func (c *builder) chain(s *Scope, b, loopHeader ir.ID) {
	for b != 0 {
		blk := c.m.MustBlock(b)
		if blk.Merge == ir.MergeLoop && b != loopHeader {
			c.loop(s, blk)
			b = c.after(s, b, blk.MergeBlock)
			continue
		}
		if b != loopHeader {
			if c.placed[b] {
				ir.RaiseAt(ir.ErrInvalidIR, b, spirv.OpLabel, "block reached twice; control flow is not structured")
			}
			c.placed[b] = true
		}
		loopHeader = 0
		s.add(&BlockNode{Block: b})

		t := &blk.Terminator
		switch t.Kind {
		case ir.TermBranch:
			b = c.follow(s, b, t.Target)
		case ir.TermBranchConditional:
			switch {
			case t.True == t.False:
				b = c.follow(s, b, t.True)
			case blk.Merge == ir.MergeSelection:
				c.selection(s, blk)
				b = c.after(s, b, blk.MergeBlock)
			default:
				b = c.conditional(s, blk)
			}
		case ir.TermSwitch:
			if blk.Merge != ir.MergeSelection {
				ir.RaiseAt(ir.ErrInvalidIR, b, spirv.OpSwitch, "switch without selection merge")
			}
			c.switchNode(s, blk)
			b = c.after(s, b, blk.MergeBlock)
		case ir.TermReturn, ir.TermReturnValue:
			s.add(&ReturnNode{Block: b, Value: t.Value})
			return
		case ir.TermKill, ir.TermTerminateInvocation:
			s.add(&KillNode{Block: b, Terminate: t.Kind == ir.TermTerminateInvocation})
			return
		default:
			s.add(&UnreachableNode{Block: b})
			return
		}
	}
}

// classify locates the innermost construct an edge exits or continues.
func (c *builder) classify(to ir.ID) (EdgeKind, int) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		k := &c.stack[i]
		switch k.kind {
		case constructSelection:
			if to == k.merge {
				return EdgeMerge, i
			}
		case constructSwitch:
			if to == k.merge {
				return EdgeSwitchBreak, i
			}
			if k.cases[to] {
				return EdgeFallthrough, i
			}
		case constructLoopBody, constructLoopContinue:
			if to == k.header {
				return EdgeBackEdge, i
			}
			if to == k.cont && k.kind == constructLoopBody {
				return EdgeContinue, i
			}
			if to == k.merge {
				return EdgeBreak, i
			}
		}
	}
	return EdgeNext, -1
}

// edge builds the branch node for from->to. atTop reports whether the
// node is placed directly in the scope owned by the innermost construct.
func (c *builder) edge(from, to ir.ID, atTop bool) *BranchNode {
	kind, i := c.classify(to)
	e := &BranchNode{From: from, To: to, Kind: kind}
	if i < 0 {
		return e
	}
	k := &c.stack[i]
	e.Loop = k.loop
	e.Switch = k.sw
	top := atTop && i == len(c.stack)-1
	switch kind {
	case EdgeContinue:
		e.Tail = top && k.kind == constructLoopBody
	case EdgeBackEdge:
		e.Tail = top && (k.kind == constructLoopContinue || k.header == k.cont)
	}
	if kind == EdgeBreak || kind == EdgeContinue {
		for j := i + 1; j < len(c.stack); j++ {
			if sw := c.stack[j].sw; sw != nil && c.stack[j].kind == constructSwitch {
				if kind == EdgeBreak {
					sw.LadderBreak = true
				} else {
					sw.ContainsContinue = true
				}
			}
		}
	}
	return e
}

// follow appends the edge from->to and returns the next block of the
// chain, or zero when the edge leaves the scope.
func (c *builder) follow(s *Scope, from, to ir.ID) ir.ID {
	e := c.edge(from, to, true)
	s.add(e)
	if e.Kind == EdgeNext {
		return to
	}
	return 0
}

// after continues the chain at a construct's merge block.
func (c *builder) after(s *Scope, header, merge ir.ID) ir.ID {
	if !c.cfg.Reachable(merge) {
		return 0
	}
	e := c.edge(header, merge, true)
	if e.Kind == EdgeNext {
		return merge
	}
	e.Virtual = true
	s.add(e)
	return 0
}

func (c *builder) hasPhis(b ir.ID) bool {
	return len(c.m.MustBlock(b).Phis) > 0
}

// phisFrom reports whether block b has a phi with an incoming edge from
// parent.
func (c *builder) phisFrom(b, parent ir.ID) bool {
	for _, phi := range c.m.MustBlock(b).Phis {
		for _, e := range phi.PhiEdges() {
			if e.Parent == parent {
				return true
			}
		}
	}
	return false
}

// trivial reports whether a scope only holds copy-free merge edges.
func (c *builder) trivial(s *Scope) bool {
	for _, n := range s.Nodes {
		e, ok := n.(*BranchNode)
		if !ok || (e.Kind != EdgeMerge && e.Kind != EdgeNext) {
			return false
		}
		if !e.Virtual && c.phisFrom(e.To, e.From) {
			return false
		}
	}
	return true
}

func (c *builder) selection(s *Scope, blk *ir.Block) {
	t := &blk.Terminator
	node := &IfNode{Block: blk.ID, Cond: t.Condition}
	at := s.add(node)
	c.push(construct{kind: constructSelection, header: blk.ID, merge: blk.MergeBlock})
	node.Then = c.arm(s, at, blk.ID, t.True)
	node.Else = c.arm(s, at, blk.ID, t.False)
	c.pop()
	if c.trivial(node.Else) {
		node.Else = nil
	} else if c.trivial(node.Then) {
		node.Then, node.Else = node.Else, nil
		node.Negate = true
	}
}

func (c *builder) arm(parent *Scope, at int, from, target ir.ID) *Scope {
	sc := newScope(parent, at)
	e := c.edge(from, target, true)
	sc.add(e)
	if e.Kind == EdgeNext {
		c.chain(sc, target, 0)
	}
	return sc
}

// conditional handles a conditional branch without a selection merge; at
// least one side must leave the current construct.
func (c *builder) conditional(s *Scope, blk *ir.Block) ir.ID {
	t := &blk.Terminator
	tk, _ := c.classify(t.True)
	fk, _ := c.classify(t.False)
	if tk == EdgeNext && fk == EdgeNext {
		ir.RaiseAt(ir.ErrInvalidIR, blk.ID, spirv.OpBranchConditional,
			"conditional branch without merge does not leave a construct")
	}
	node := &IfNode{Block: blk.ID, Cond: t.Condition}
	at := s.add(node)
	switch {
	case tk != EdgeNext && fk != EdgeNext:
		node.Then = newScope(s, at)
		node.Then.add(c.edge(blk.ID, t.True, false))
		node.Else = newScope(s, at)
		node.Else.add(c.edge(blk.ID, t.False, false))
		return 0
	case tk != EdgeNext:
		node.Then = newScope(s, at)
		node.Then.add(c.edge(blk.ID, t.True, false))
		return c.follow(s, blk.ID, t.False)
	default:
		node.Negate = true
		node.Then = newScope(s, at)
		node.Then.add(c.edge(blk.ID, t.False, false))
		return c.follow(s, blk.ID, t.True)
	}
}

func (c *builder) switchNode(s *Scope, blk *ir.Block) {
	t := &blk.Terminator
	sw := &SwitchNode{Block: blk.ID, Selector: t.Selector, Merge: blk.MergeBlock}
	at := s.add(sw)

	order := make(map[ir.ID]int, len(c.tree.Function.Blocks))
	for i, id := range c.tree.Function.Blocks {
		order[id] = i
	}
	byTarget := make(map[ir.ID]*SwitchCase)
	caseFor := func(target ir.ID) *SwitchCase {
		if sc, ok := byTarget[target]; ok {
			return sc
		}
		sc := &SwitchCase{Target: target}
		byTarget[target] = sc
		sw.Cases = append(sw.Cases, sc)
		return sc
	}
	for _, cs := range t.Cases {
		sc := caseFor(cs.Target)
		sc.Values = append(sc.Values, cs.Value)
	}
	caseFor(t.Default).Default = true
	sort.SliceStable(sw.Cases, func(i, j int) bool {
		a, b := sw.Cases[i], sw.Cases[j]
		am, bm := a.Target == sw.Merge, b.Target == sw.Merge
		if am != bm {
			return !am
		}
		return order[a.Target] < order[b.Target]
	})

	targets := make(map[ir.ID]bool)
	for _, sc := range sw.Cases {
		if sc.Target != sw.Merge {
			targets[sc.Target] = true
		}
	}
	c.push(construct{kind: constructSwitch, header: blk.ID, merge: sw.Merge, sw: sw, cases: targets})
	for _, sc := range sw.Cases {
		sc.Body = newScope(s, at)
		if sc.Target == sw.Merge {
			sc.Body.add(c.edge(blk.ID, sw.Merge, true))
			continue
		}
		sc.Body.add(c.edge(blk.ID, sc.Target, true))
		c.chain(sc.Body, sc.Target, 0)
		if n := len(sc.Body.Nodes); n > 0 {
			if e, ok := sc.Body.Nodes[n-1].(*BranchNode); ok && e.Kind == EdgeFallthrough {
				sc.FallsThrough = true
				sw.Fallthrough = true
			}
		}
	}
	c.pop()
}

func (c *builder) loop(s *Scope, blk *ir.Block) {
	ln := &LoopNode{Header: blk.ID, Merge: blk.MergeBlock, Continue: blk.ContinueBlock}
	at := s.add(ln)
	c.tree.Loops[blk.ID] = ln
	if c.placed[blk.ID] {
		ir.RaiseAt(ir.ErrInvalidIR, blk.ID, spirv.OpLoopMerge, "loop header reached twice")
	}
	c.placed[blk.ID] = true

	bodyStart := c.loopShape(ln, blk)

	c.push(construct{kind: constructLoopBody, header: ln.Header, merge: ln.Merge, cont: ln.Continue, loop: ln})
	ln.Body = newScope(s, at)
	switch ln.Kind {
	case LoopWhile, LoopFor:
		for _, inst := range blk.Instructions {
			c.tree.Folded[inst.Result] = true
		}
		ln.Body.add(c.edge(ln.Header, bodyStart, true))
		if bodyStart != ln.Continue {
			c.chain(ln.Body, bodyStart, 0)
		}
	default:
		c.chain(ln.Body, ln.Header, ln.Header)
	}
	c.pop()

	c.push(construct{kind: constructLoopContinue, header: ln.Header, merge: ln.Merge, cont: ln.Continue, loop: ln})
	ln.ContinueBody = newScope(s, at)
	if ln.Continue != ln.Header && c.cfg.Reachable(ln.Continue) {
		if ln.Kind == LoopDoWhile {
			c.placed[ln.Continue] = true
			ln.ContinueBody.add(&BlockNode{Block: ln.Continue})
			ln.ContinueBody.add(&BranchNode{
				From: ln.Continue, To: ln.Header, Kind: EdgeBackEdge, Tail: true, Loop: ln,
			})
			if c.m.KindOf(ln.Cond) == ir.KindValue {
				c.tree.ForceTemp[ln.Cond] = true
			}
		} else {
			c.chain(ln.ContinueBody, ln.Continue, 0)
		}
	}
	c.pop()
}

// loopShape picks the loop kind and returns the first body block for
// while and for loops.
func (c *builder) loopShape(ln *LoopNode, blk *ir.Block) ir.ID {
	h, mrg, cont := ln.Header, ln.Merge, ln.Continue
	t := &blk.Terminator
	ln.Kind = LoopGeneric
	if cont == h {
		return 0
	}
	limit, capped := c.limits[h]
	if t.Kind == ir.TermBranchConditional && t.True != t.False && (t.True == mrg) != (t.False == mrg) {
		if capped && limit == LoopGeneric {
			return 0
		}
		body := t.True
		if body == mrg {
			body = t.False
		}
		if c.headerFoldable(blk) && !c.phisFrom(mrg, h) && !c.hasPhis(body) {
			ln.Cond = t.Condition
			ln.Negate = t.True == mrg
			ln.Kind = LoopWhile
			if c.forCandidate(blk, cont) && (!capped || limit != LoopWhile) {
				ln.Kind = LoopFor
			}
			return body
		}
		return 0
	}
	if t.Kind != ir.TermBranch || !c.cfg.Reachable(cont) {
		return 0
	}
	cb := c.m.MustBlock(cont)
	ct := &cb.Terminator
	if ct.Kind != ir.TermBranchConditional || ct.True == ct.False {
		return 0
	}
	backToHeader := (ct.True == h && ct.False == mrg) || (ct.True == mrg && ct.False == h)
	if !backToHeader || len(c.cfg.Preds(cont)) != 1 || c.phisFrom(mrg, cont) || c.headerPhisEscape(blk, mrg) {
		return 0
	}
	ln.Cond = ct.Condition
	ln.Negate = ct.True == mrg
	ln.Kind = LoopDoWhile
	return 0
}

// headerFoldable reports whether every header instruction can be folded
// into the loop condition.
func (c *builder) headerFoldable(blk *ir.Block) bool {
	for _, inst := range blk.Instructions {
		if inst.Result == 0 || !Forwardable(inst) || EffectOf(inst) == EffectWrite {
			return false
		}
		if c.uses.Count(inst.Result) != 1 || !c.uses.LocalToBlock(inst.Result) {
			return false
		}
	}
	return true
}

// forCandidate reports whether the continue block of a while loop only
// performs stores of values computed inside it.
func (c *builder) forCandidate(header *ir.Block, cont ir.ID) bool {
	if len(header.Phis) > 0 || !c.cfg.Reachable(cont) {
		return false
	}
	cb := c.m.MustBlock(cont)
	if len(cb.Phis) > 0 || cb.Terminator.Kind != ir.TermBranch || cb.Terminator.Target != header.ID {
		return false
	}
	stores := 0
	for _, inst := range cb.Instructions {
		if inst.Op == spirv.OpStore {
			stores++
			continue
		}
		if inst.Result == 0 || !Forwardable(inst) {
			return false
		}
		if c.uses.Count(inst.Result) != 1 || !c.uses.LocalToBlock(inst.Result) {
			return false
		}
	}
	return stores > 0
}

// headerPhisEscape reports whether a header phi is read after the loop.
func (c *builder) headerPhisEscape(blk *ir.Block, merge ir.ID) bool {
	for _, phi := range blk.Phis {
		for _, ub := range c.uses.Blocks(phi.Result) {
			if c.cfg.Dominates(merge, ub) {
				return true
			}
		}
	}
	return false
}

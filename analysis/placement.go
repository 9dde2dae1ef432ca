// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Position addresses a node of a structured tree.
type Position struct {
	Scope *Scope
	Index int
}

// Placement says where the variables of non-forwarded values are declared.
// A value is declared at its definition when the definition precedes all
// reads in the same scope; otherwise its declaration is hoisted to the
// innermost scope enclosing every definition and read.
type Placement struct {
	hoisted map[*Scope]map[int][]ir.ID
	isHoist map[ir.ID]bool
	// inline maps phi copy edges to the phis they declare and initialize.
	inline map[*BranchNode][]ir.ID
}

type occurrence struct {
	pos Position
	def bool
	// copy is the edge node for phi copies.
	copy *BranchNode
}

// Place computes declaration sites for every value of a structured tree.
func Place(m *ir.Module, t *Tree) *Placement {
	p := &Placement{
		hoisted: make(map[*Scope]map[int][]ir.ID),
		isHoist: make(map[ir.ID]bool),
		inline:  make(map[*BranchNode][]ir.ID),
	}
	occ := make(map[ir.ID][]occurrence)
	var order []ir.ID
	note := func(id ir.ID, o occurrence) {
		if m.KindOf(id) != ir.KindValue || t.Folded[id] {
			return
		}
		if _, ok := occ[id]; !ok {
			order = append(order, id)
		}
		occ[id] = append(occ[id], o)
	}
	use := func(id ir.ID, pos Position) { note(id, occurrence{pos: pos}) }
	useInst := func(inst *ir.Instruction, pos Position) {
		for _, id := range inst.IDOperands() {
			use(id, pos)
		}
	}

	var visit func(s *Scope)
	visit = func(s *Scope) {
		for i, n := range s.Nodes {
			here := Position{Scope: s, Index: i}
			switch n := n.(type) {
			case *BlockNode:
				blk := m.MustBlock(n.Block)
				for _, inst := range blk.Instructions {
					useInst(inst, here)
					if inst.Result != 0 {
						note(inst.Result, occurrence{pos: here, def: true})
					}
				}
				if blk.Terminator.Kind == ir.TermReturnValue {
					use(blk.Terminator.Value, here)
				}
			case *BranchNode:
				if n.Virtual {
					continue
				}
				for _, phi := range m.MustBlock(n.To).Phis {
					for _, e := range phi.PhiEdges() {
						if e.Parent == n.From {
							use(e.Value, here)
							note(phi.Result, occurrence{pos: here, def: true, copy: n})
						}
					}
				}
			case *IfNode:
				use(n.Cond, here)
				visit(n.Then)
				if n.Else != nil {
					visit(n.Else)
				}
			case *LoopNode:
				if n.Kind == LoopWhile || n.Kind == LoopFor {
					for _, inst := range m.MustBlock(n.Header).Instructions {
						useInst(inst, here)
					}
				}
				if n.Cond != 0 {
					use(n.Cond, here)
				}
				visit(n.Body)
				visit(n.ContinueBody)
			case *SwitchNode:
				use(n.Selector, here)
				for _, c := range n.Cases {
					visit(c.Body)
				}
			}
		}
	}
	visit(t.Root)

	for _, id := range order {
		list := occ[id]
		var defs []occurrence
		for _, o := range list {
			if o.def {
				defs = append(defs, o)
			}
		}
		if len(defs) == 0 {
			continue
		}
		at := commonPosition(list)
		isPhi := m.MustInstruction(id).Op == spirv.OpPhi
		if !isPhi {
			if len(defs) == 1 && defs[0].pos == at {
				continue
			}
		} else if n, ok := at.Scope.Nodes[at.Index].(*BranchNode); ok {
			if first := defs[0]; first.copy == n && first.pos == at {
				p.inline[n] = append(p.inline[n], id)
				continue
			}
		}
		p.isHoist[id] = true
		byIndex := p.hoisted[at.Scope]
		if byIndex == nil {
			byIndex = make(map[int][]ir.ID)
			p.hoisted[at.Scope] = byIndex
		}
		byIndex[at.Index] = append(byIndex[at.Index], id)
	}
	return p
}

// commonPosition returns the first node of the innermost scope enclosing
// every occurrence.
func commonPosition(list []occurrence) Position {
	lca := list[0].pos.Scope
	for _, o := range list[1:] {
		lca = commonScope(lca, o.pos.Scope)
	}
	best := -1
	for _, o := range list {
		i := indexIn(lca, o.pos)
		if best < 0 || i < best {
			best = i
		}
	}
	return Position{Scope: lca, Index: best}
}

func commonScope(a, b *Scope) *Scope {
	for a.depth > b.depth {
		a = a.Parent
	}
	for b.depth > a.depth {
		b = b.Parent
	}
	for a != b {
		a, b = a.Parent, b.Parent
	}
	return a
}

// indexIn returns the index of the node of s that contains pos.
func indexIn(s *Scope, pos Position) int {
	cur, idx := pos.Scope, pos.Index
	for cur != s {
		idx = cur.At
		cur = cur.Parent
	}
	return idx
}

// Hoisted returns the values whose declarations precede node i of s, in
// first-occurrence order.
func (p *Placement) Hoisted(s *Scope, i int) []ir.ID {
	return p.hoisted[s][i]
}

// IsHoisted reports whether a value is declared apart from its definition.
func (p *Placement) IsHoisted(id ir.ID) bool { return p.isHoist[id] }

// InlineCopies returns the phis declared and initialized by a copy edge.
func (p *Placement) InlineCopies(e *BranchNode) []ir.ID { return p.inline[e] }

// DeclaresAtCopy reports whether the copy of phi on edge e declares it.
func (p *Placement) DeclaresAtCopy(e *BranchNode, phi ir.ID) bool {
	for _, id := range p.inline[e] {
		if id == phi {
			return true
		}
	}
	return false
}

// HoistedCount returns the number of hoisted declarations, for tracing.
func (p *Placement) HoistedCount() int { return len(p.isHoist) }

// SortedHoisted returns every hoisted value in ID order.
func (p *Placement) SortedHoisted() []ir.ID {
	out := make([]ir.ID, 0, len(p.isHoist))
	for id := range p.isHoist {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

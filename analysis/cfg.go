// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"github.com/gogpu/spvcross/ir"
)

// CFG is the control flow graph of one function, restricted to blocks
// reachable from the entry block.
type CFG struct {
	Function *ir.Function

	module *ir.Module
	preds  map[ir.ID][]ir.ID
	succs  map[ir.ID][]ir.ID

	// postOrder lists reachable blocks in DFS post-order.
	postOrder []ir.ID
	poIndex   map[ir.ID]int
	idom      map[ir.ID]ir.ID
}

// NewCFG builds the CFG of fn and computes dominators.
func NewCFG(m *ir.Module, fn *ir.Function) *CFG {
	c := &CFG{
		Function: fn,
		module:   m,
		preds:    make(map[ir.ID][]ir.ID),
		succs:    make(map[ir.ID][]ir.ID),
		poIndex:  make(map[ir.ID]int),
		idom:     make(map[ir.ID]ir.ID),
	}
	for _, id := range fn.Blocks {
		b := m.MustBlock(id)
		succ := b.Terminator.Successors()
		c.succs[id] = succ
	}
	c.walk()
	for _, id := range c.postOrder {
		for _, s := range c.succs[id] {
			c.preds[s] = append(c.preds[s], id)
		}
	}
	// Predecessors in declaration order keep emission deterministic.
	order := make(map[ir.ID]int, len(fn.Blocks))
	for i, id := range fn.Blocks {
		order[id] = i
	}
	for _, ps := range c.preds {
		sortByOrder(ps, order)
	}
	c.dominators()
	return c
}

func sortByOrder(ids []ir.ID, order map[ir.ID]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && order[ids[j]] < order[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// walk computes the post-order iteratively.
func (c *CFG) walk() {
	entry := c.Function.Entry()
	if entry == 0 {
		return
	}
	type frame struct {
		block ir.ID
		next  int
	}
	visited := map[ir.ID]bool{entry: true}
	stack := []frame{{block: entry}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succ := c.succs[top.block]
		if top.next < len(succ) {
			s := succ[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{block: s})
			}
			continue
		}
		c.poIndex[top.block] = len(c.postOrder)
		c.postOrder = append(c.postOrder, top.block)
		stack = stack[:len(stack)-1]
	}
}

// dominators runs the Cooper-Harvey-Kennedy iterative algorithm.
func (c *CFG) dominators() {
	entry := c.Function.Entry()
	if entry == 0 {
		return
	}
	c.idom[entry] = entry
	for changed := true; changed; {
		changed = false
		for i := len(c.postOrder) - 1; i >= 0; i-- {
			b := c.postOrder[i]
			if b == entry {
				continue
			}
			var newIdom ir.ID
			for _, p := range c.preds[b] {
				if _, ok := c.idom[p]; !ok {
					continue
				}
				if newIdom == 0 {
					newIdom = p
					continue
				}
				newIdom = c.intersect(p, newIdom)
			}
			if newIdom != 0 && c.idom[b] != newIdom {
				c.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (c *CFG) intersect(a, b ir.ID) ir.ID {
	for a != b {
		for c.poIndex[a] < c.poIndex[b] {
			a = c.idom[a]
		}
		for c.poIndex[b] < c.poIndex[a] {
			b = c.idom[b]
		}
	}
	return a
}

// Reachable reports whether a block is reachable from the entry.
func (c *CFG) Reachable(b ir.ID) bool {
	_, ok := c.poIndex[b]
	return ok
}

// Preds returns the reachable predecessors of a block in declaration order.
func (c *CFG) Preds(b ir.ID) []ir.ID { return c.preds[b] }

// Succs returns the successors of a block in terminator operand order.
func (c *CFG) Succs(b ir.ID) []ir.ID { return c.succs[b] }

// PostOrder returns the reachable blocks in post-order.
func (c *CFG) PostOrder() []ir.ID { return c.postOrder }

// ReversePostOrder returns the reachable blocks in reverse post-order.
func (c *CFG) ReversePostOrder() []ir.ID {
	out := make([]ir.ID, len(c.postOrder))
	for i, b := range c.postOrder {
		out[len(out)-1-i] = b
	}
	return out
}

// IDom returns the immediate dominator of b; the entry block is its own
// immediate dominator. Unreachable blocks return zero.
func (c *CFG) IDom(b ir.ID) ir.ID { return c.idom[b] }

// Dominates reports whether a dominates b. Every block dominates itself.
func (c *CFG) Dominates(a, b ir.ID) bool {
	if !c.Reachable(a) || !c.Reachable(b) {
		return false
	}
	entry := c.Function.Entry()
	for {
		if b == a {
			return true
		}
		if b == entry {
			return false
		}
		b = c.idom[b]
	}
}

// CommonDominator returns the nearest block dominating both a and b.
func (c *CFG) CommonDominator(a, b ir.ID) ir.ID {
	if !c.Reachable(a) {
		return b
	}
	if !c.Reachable(b) {
		return a
	}
	return c.intersect(a, b)
}

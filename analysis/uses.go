// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"github.com/gogpu/spvcross/ir"
)

// Uses records how often and where each SSA value of a function is read.
// Phi operands count as uses in the predecessor block that supplies them,
// since the copy is emitted on that edge.
type Uses struct {
	count  map[ir.ID]int
	blocks map[ir.ID][]ir.ID
	def    map[ir.ID]ir.ID
}

// CountUses scans the reachable blocks of a function.
func CountUses(m *ir.Module, cfg *CFG) *Uses {
	u := &Uses{
		count:  make(map[ir.ID]int),
		blocks: make(map[ir.ID][]ir.ID),
		def:    make(map[ir.ID]ir.ID),
	}
	for _, bid := range cfg.Function.Blocks {
		if !cfg.Reachable(bid) {
			continue
		}
		b := m.MustBlock(bid)
		for _, phi := range b.Phis {
			u.def[phi.Result] = bid
			for _, e := range phi.PhiEdges() {
				u.add(e.Value, e.Parent)
			}
		}
		for _, inst := range b.Instructions {
			if inst.Result != 0 {
				u.def[inst.Result] = bid
			}
			for _, id := range inst.IDOperands() {
				u.add(id, bid)
			}
		}
		t := &b.Terminator
		switch t.Kind {
		case ir.TermBranchConditional:
			u.add(t.Condition, bid)
		case ir.TermSwitch:
			u.add(t.Selector, bid)
		case ir.TermReturnValue:
			u.add(t.Value, bid)
		}
	}
	return u
}

func (u *Uses) add(id, block ir.ID) {
	u.count[id]++
	for _, b := range u.blocks[id] {
		if b == block {
			return
		}
	}
	u.blocks[id] = append(u.blocks[id], block)
}

// Count returns the number of reads of a value.
func (u *Uses) Count(id ir.ID) int { return u.count[id] }

// Blocks returns the distinct blocks reading a value.
func (u *Uses) Blocks(id ir.ID) []ir.ID { return u.blocks[id] }

// DefBlock returns the block defining a value, or zero for values defined
// outside the function.
func (u *Uses) DefBlock(id ir.ID) ir.ID { return u.def[id] }

// LocalToBlock reports whether every read of a value happens in the block
// that defines it.
func (u *Uses) LocalToBlock(id ir.ID) bool {
	def, ok := u.def[id]
	if !ok {
		return false
	}
	for _, b := range u.blocks[id] {
		if b != def {
			return false
		}
	}
	return true
}

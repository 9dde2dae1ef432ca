// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/ir"
)

func TestCFGDominators(t *testing.T) {
	s := buildLoop(t)
	cfg := analysis.NewCFG(s.m, s.fn)

	assert.Equal(t, s.entry, cfg.IDom(s.entry))
	assert.Equal(t, s.entry, cfg.IDom(s.header))
	assert.Equal(t, s.header, cfg.IDom(s.body))
	assert.Equal(t, s.body, cfg.IDom(s.cont))
	assert.Equal(t, s.header, cfg.IDom(s.merge))

	assert.True(t, cfg.Dominates(s.header, s.merge))
	assert.True(t, cfg.Dominates(s.body, s.body))
	assert.False(t, cfg.Dominates(s.body, s.merge))
	assert.Equal(t, s.header, cfg.CommonDominator(s.cont, s.merge))
}

func TestCFGEdges(t *testing.T) {
	s := buildLoop(t)
	cfg := analysis.NewCFG(s.m, s.fn)

	assert.Equal(t, []ir.ID{s.entry, s.cont}, cfg.Preds(s.header))
	assert.Equal(t, []ir.ID{s.body, s.merge}, cfg.Succs(s.header))
	assert.Empty(t, cfg.Preds(s.entry))

	rpo := cfg.ReversePostOrder()
	assert.Len(t, rpo, 5)
	assert.Equal(t, s.entry, rpo[0])
	assert.Equal(t, s.header, rpo[1])
	for _, b := range []ir.ID{s.entry, s.header, s.body, s.cont, s.merge} {
		assert.True(t, cfg.Reachable(b))
	}
	assert.False(t, cfg.Reachable(s.i), "values are not blocks")
}

func TestUses(t *testing.T) {
	s := buildLoop(t)
	uses := analysis.CountUses(s.m, analysis.NewCFG(s.m, s.fn))

	assert.Equal(t, 2, uses.Count(s.i))
	assert.Equal(t, []ir.ID{s.header, s.cont}, uses.Blocks(s.i))
	assert.Equal(t, 2, uses.Count(s.sum))
	assert.Equal(t, []ir.ID{s.body, s.merge}, uses.Blocks(s.sum))
	assert.Equal(t, s.header, uses.DefBlock(s.sum))

	// Phi operands are read on the edge, in the predecessor.
	assert.Equal(t, 1, uses.Count(s.iNext))
	assert.Equal(t, []ir.ID{s.cont}, uses.Blocks(s.iNext))
	assert.True(t, uses.LocalToBlock(s.iNext))
	assert.True(t, uses.LocalToBlock(s.cond))
	assert.False(t, uses.LocalToBlock(s.sum))
}

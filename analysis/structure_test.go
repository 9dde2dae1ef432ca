// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// nodeOf returns the first node of type T in s.
func nodeOf[T analysis.Node](s *analysis.Scope) (T, bool) {
	for _, n := range s.Nodes {
		if v, ok := n.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestStructurizeWhileLoop(t *testing.T) {
	s := buildLoop(t)
	tree, err := analysis.Structurize(s.m, s.fn)
	require.NoError(t, err)

	first, ok := tree.Root.Nodes[0].(*analysis.BlockNode)
	require.True(t, ok)
	assert.Equal(t, s.entry, first.Block)

	loop, ok := nodeOf[*analysis.LoopNode](tree.Root)
	require.True(t, ok)
	assert.Same(t, loop, tree.Loops[s.header])
	assert.Equal(t, s.merge, loop.Merge)
	assert.Equal(t, s.cont, loop.Continue)
	assert.Equal(t, analysis.LoopWhile, loop.Kind, "header phis rule out a for loop")
	assert.Equal(t, s.cond, loop.Cond)
	assert.False(t, loop.Negate)
	assert.True(t, tree.Folded[s.cond])
	assert.Equal(t, 1, loop.Body.Depth())

	ret, ok := tree.Root.Nodes[len(tree.Root.Nodes)-1].(*analysis.ReturnNode)
	require.True(t, ok)
	assert.Equal(t, s.merge, ret.Block)
}

func TestStructurizeGenericLoopLimit(t *testing.T) {
	s := buildLoop(t)
	tree, err := analysis.StructurizeLimited(s.m, s.fn, map[ir.ID]analysis.LoopKind{s.header: analysis.LoopGeneric})
	require.NoError(t, err)
	loop := tree.Loops[s.header]
	require.NotNil(t, loop)
	assert.Equal(t, analysis.LoopGeneric, loop.Kind)
	assert.Empty(t, tree.Folded)

	// The body restarts at the header and leaves through a break.
	_, ok := nodeOf[*analysis.IfNode](loop.Body)
	assert.True(t, ok)
}

// selectionShader writes the input when it is positive and discards the
// fragment otherwise.
func selectionShader(t *testing.T) (m *ir.Module, fn *ir.Function, then, kill, merge ir.ID) {
	t.Helper()
	b := testshaders.NewBuilder()
	in := b.Input(b.Float, 0, "x")
	out := b.Output(b.Float, 0, "y")
	f, _ := b.Entry(spirv.ExecutionModelFragment, in, out)
	thenL, killL, mergeL := b.AllocID(), b.AllocID(), b.AllocID()
	x := b.AddLoad(b.Float, in)
	cond := b.AddBinaryOp(spirv.OpFOrdGreaterThan, b.Bool, x, b.F(0))
	b.AddSelectionMerge(mergeL, spirv.SelectionControlNone)
	b.AddBranchConditional(cond, thenL, killL)

	b.AddLabelID(thenL)
	b.AddStore(out, x)
	b.AddBranch(mergeL)

	b.AddLabelID(killL)
	b.AddKill()

	b.AddLabelID(mergeL)
	b.End()

	m = b.Module()
	return m, m.MustFunction(ir.ID(f)), ir.ID(thenL), ir.ID(killL), ir.ID(mergeL)
}

func TestStructurizeSelection(t *testing.T) {
	m, fn, then, kill, merge := selectionShader(t)
	tree, err := analysis.Structurize(m, fn)
	require.NoError(t, err)

	node, ok := nodeOf[*analysis.IfNode](tree.Root)
	require.True(t, ok)
	require.NotNil(t, node.Then)
	require.NotNil(t, node.Else)
	assert.False(t, node.Negate)

	blk, ok := nodeOf[*analysis.BlockNode](node.Then)
	require.True(t, ok)
	assert.Equal(t, then, blk.Block)
	exit, ok := nodeOf[*analysis.BranchNode](node.Then)
	require.True(t, ok)
	assert.Equal(t, analysis.EdgeNext, exit.Kind, "entering the arm")

	k, ok := nodeOf[*analysis.KillNode](node.Else)
	require.True(t, ok)
	assert.Equal(t, kill, k.Block)
	assert.False(t, k.Terminate)

	ret, ok := tree.Root.Nodes[len(tree.Root.Nodes)-1].(*analysis.ReturnNode)
	require.True(t, ok)
	assert.Equal(t, merge, ret.Block)
}

func TestStructurizeRejectsUnstructured(t *testing.T) {
	b := testshaders.NewBuilder()
	f, _ := b.Entry(spirv.ExecutionModelFragment)
	left, right := b.AllocID(), b.AllocID()
	b.AddBranchConditional(b.AddConstantBool(b.Bool, true), left, right)
	b.AddLabelID(left)
	b.AddReturn()
	b.AddLabelID(right)
	b.End()

	m := b.Module()
	_, err := analysis.Structurize(m, m.MustFunction(ir.ID(f)))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInvalidIR))
}

func TestEdgeKindNames(t *testing.T) {
	assert.Equal(t, "switch-break", analysis.EdgeSwitchBreak.String())
	assert.Equal(t, "fallthrough", analysis.EdgeFallthrough.String())
	assert.Equal(t, "do-while", analysis.LoopDoWhile.String())
	assert.Equal(t, "loop", analysis.LoopGeneric.String())
}

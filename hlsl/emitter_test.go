// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/ir"
)

// unstable asks for another pass after every module it writes.
type unstable struct {
	*writer
	passes int
}

func (u *unstable) EmitModule(e *cross.Emitter) {
	u.passes++
	u.writer.EmitModule(e)
	e.RequestRecompile("unstable output", 0)
}

func TestRecompileLimit(t *testing.T) {
	m := testshaders.All()[0].Module()
	ep := m.EntryPoints[0]
	w, err := newWriter(m, DefaultOptions(), ep, 0)
	require.NoError(t, err)

	u := &unstable{writer: w}
	e := cross.NewEmitter(m, u, ep, w.log)
	e.MaxRecompiles = 2
	w.emitter = e

	text, err := e.Run()
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrInternalInstability), "got %v", err)
	assert.Contains(t, err.Error(), "did not stabilize after 2 recompiles")
	assert.Empty(t, text)
	assert.Equal(t, 3, u.passes)
}

func TestRecompileDefaultLimit(t *testing.T) {
	m := testshaders.All()[0].Module()
	ep := m.EntryPoints[0]
	w, err := newWriter(m, DefaultOptions(), ep, 0)
	require.NoError(t, err)

	u := &unstable{writer: w}
	e := cross.NewEmitter(m, u, ep, w.log)
	w.emitter = e

	_, err = e.Run()
	assert.True(t, ir.IsKind(err, ir.ErrInternalInstability), "got %v", err)
	assert.Equal(t, cross.DefaultMaxRecompiles+1, u.passes)
}

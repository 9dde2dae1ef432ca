// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"slices"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Memory semantics bits selecting what a barrier orders.
const (
	semanticsUniform   = 0x40
	semanticsWorkgroup = 0x100
	semanticsImage     = 0x800
)

// Barrier implements cross.Dialect. Memory barriers without execution
// synchronization only exist in compute and control shaders.
func (w *writer) Barrier(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	control := inst.Op == spirv.OpControlBarrier
	semID := inst.Arg(1)
	if control {
		semID = inst.Arg(2)
	}
	var sem, scope uint32
	if c, err := m.Constant(semID); err == nil {
		sem = c.U32()
	}
	if c, err := m.Constant(inst.Arg(0)); err == nil {
		scope = c.U32()
	}
	tcs := w.tess != nil && w.tess.control
	if !control && w.ep.Model != spirv.ExecutionModelGLCompute && !tcs {
		return
	}
	var flags []string
	if sem&semanticsUniform != 0 || tcs {
		flags = append(flags, "mem_flags::mem_device")
	}
	if sem&semanticsWorkgroup != 0 {
		flags = append(flags, "mem_flags::mem_threadgroup")
	}
	if sem&semanticsImage != 0 {
		w.need(Version2_0, 0, "texture memory barriers")
		flags = append(flags, "mem_flags::mem_texture")
	}
	if len(flags) == 0 {
		if !control {
			return
		}
		flags = append(flags, "mem_flags::mem_none")
	}
	fn := "threadgroup_barrier"
	if control && scope == uint32(spirv.ScopeSubgroup) {
		fn = "simdgroup_barrier"
	}
	e.Out.Line("%s(%s);", fn, joinFlags(flags))
}

func joinFlags(flags []string) string {
	out := flags[0]
	for _, f := range flags[1:] {
		out += " | " + f
	}
	return out
}

// Discard implements cross.Dialect.
func (w *writer) Discard(e *cross.Emitter, terminate bool) {
	w.markHelper(e)
	e.Out.Line("discard_fragment();")
}

// demote lowers OpDemoteToHelperInvocation. Metal has no demotion, so the
// invocation is discarded.
func (w *writer) demote(e *cross.Emitter) {
	w.needOn(Version2_3, Version2_3, FeatureHelperInvocation, "demote to helper invocation")
	w.Discard(e, false)
}

// markHelper updates gl_HelperInvocation before a discard when it is kept
// in a local.
func (w *writer) markHelper(e *cross.Emitter) {
	if !w.opts.ManualHelperInvocationUpdates || w.helperVar == 0 {
		return
	}
	if e.InEntry() || slices.Contains(w.fnGlobals[e.Function().ID], w.helperVar) {
		e.Out.Line("%s = true;", e.Name(w.helperVar))
	}
}

// SupportsFallthrough implements cross.Dialect.
func (w *writer) SupportsFallthrough() bool { return true }

// ForcesTemp implements cross.Dialect.
func (w *writer) ForcesTemp(e *cross.Emitter, inst *ir.Instruction) bool {
	return false
}

// Load implements cross.Dialect for tessellation levels and helper
// invocation reads.
func (w *writer) Load(e *cross.Emitter, p *cross.Pointer, inst *ir.Instruction) bool {
	if tv, ok := w.levelVar(p); ok {
		w.loadLevel(e, tv, p, inst)
		return true
	}
	if p.Root == w.helperVar && w.helperVar != 0 && !w.opts.ManualHelperInvocationUpdates {
		e.BindMemory(inst, "simd_is_helper_thread()")
		return true
	}
	return false
}

// Store implements cross.Dialect. Fragment shaders may skip device memory
// writes of helper invocations.
func (w *writer) Store(e *cross.Emitter, p *cross.Pointer, value ir.ID) bool {
	if tv, ok := w.levelVar(p); ok {
		w.storeLevel(e, tv, p, value)
		return true
	}
	if !w.opts.CheckDiscardedFragStores || w.ep.Model != spirv.ExecutionModelFragment {
		return false
	}
	if p.Storage != spirv.StorageClassStorageBuffer && p.Storage != spirv.StorageClassPhysicalStorageBuffer {
		return false
	}
	w.needOn(Version2_3, Version2_3, FeatureHelperInvocation, "discarded fragment store checks")
	x := e.Value(value)
	e.Out.Line("if (!simd_is_helper_thread())")
	e.Out.Line("{")
	e.Out.Indent()
	e.StoreText(p, x)
	e.Out.Dedent()
	e.Out.Line("}")
	e.Invalidate()
	return true
}

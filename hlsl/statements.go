// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
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

// Barrier implements cross.Dialect. Control barriers synchronize the
// group; memory barriers only order accesses.
func (w *writer) Barrier(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	semID := inst.Arg(1)
	sync := ""
	if inst.Op == spirv.OpControlBarrier {
		semID = inst.Arg(2)
		sync = "WithGroupSync"
	}
	var sem uint32
	if c, err := m.Constant(semID); err == nil {
		sem = c.U32()
	}
	device := sem&(semanticsUniform|semanticsImage) != 0
	group := sem&semanticsWorkgroup != 0
	if w.ep.Model != spirv.ExecutionModelGLCompute {
		if device {
			e.Out.Line("DeviceMemoryBarrier();")
		}
		return
	}
	switch {
	case device && group:
		e.Out.Line("AllMemoryBarrier%s();", sync)
	case device:
		e.Out.Line("DeviceMemoryBarrier%s();", sync)
	case group || sync != "":
		e.Out.Line("GroupMemoryBarrier%s();", sync)
	}
}

// Discard implements cross.Dialect. HLSL discard keeps derivatives of
// the quad defined, so demotion and termination lower alike.
func (w *writer) Discard(e *cross.Emitter, terminate bool) {
	e.Out.Line("discard;")
}

// SupportsFallthrough implements cross.Dialect. FXC rejects non-empty
// cases that fall through.
func (w *writer) SupportsFallthrough() bool { return false }

// CopyArray implements cross.Dialect. HLSL assigns arrays by value.
func (w *writer) CopyArray(e *cross.Emitter, t ir.ID, dst, src string, dstStorage, srcStorage spirv.StorageClass) bool {
	return false
}

// ForcesTemp implements cross.Dialect.
func (w *writer) ForcesTemp(e *cross.Emitter, inst *ir.Instruction) bool {
	return false
}

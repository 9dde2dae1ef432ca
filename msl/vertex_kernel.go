// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/spirv"
)

// kernelGrid names the grid parameters of a vertex kernel. One thread
// runs per vertex and instance: x indexes vertices and y instances.
type kernelGrid struct {
	id     string
	size   string
	origin string
}

// kernelInputs declares the grid parameters of a vertex kernel.
func (w *writer) kernelInputs(e *cross.Emitter, io *stageIO) {
	if !w.vertexKernel {
		return
	}
	w.grid.id = globalName(e, "gl_GlobalInvocationID")
	w.grid.size = globalName(e, "spvStageInputSize")
	io.params = append(io.params,
		fmt.Sprintf("uint3 %s [[thread_position_in_grid]]", w.grid.id),
		fmt.Sprintf("uint3 %s [[grid_size]]", w.grid.size))
}

// kernelOrigin returns the stage input origin, declaring it on first use.
// Its x holds the base vertex and y the base instance.
func (w *writer) kernelOrigin(e *cross.Emitter, io *stageIO) string {
	if w.grid.origin == "" {
		w.grid.origin = globalName(e, "spvStageInputOrigin")
		io.params = append(io.params, fmt.Sprintf("uint3 %s [[stage_in_origin]]", w.grid.origin))
	}
	return w.grid.origin
}

// kernelBuiltin lowers the vertex and instance builtins of a vertex
// kernel and reports whether entry is one of them.
func (w *writer) kernelBuiltin(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) bool {
	var expr string
	switch entry.Builtin {
	case spirv.BuiltInVertexIndex, spirv.BuiltInVertexID:
		if w.opts.VertexIndexType != IndexTypeNone {
			expr = fmt.Sprintf("%s[%s.x]", indexBufferName, w.grid.id)
		} else {
			expr = fmt.Sprintf("%s.x + %s.x", w.kernelOrigin(e, io), w.grid.id)
		}
	case spirv.BuiltInInstanceIndex, spirv.BuiltInInstanceID:
		expr = fmt.Sprintf("%s.y + %s.y", w.kernelOrigin(e, io), w.grid.id)
	case spirv.BuiltInBaseVertex:
		expr = w.kernelOrigin(e, io) + ".x"
	case spirv.BuiltInBaseInstance:
		expr = w.kernelOrigin(e, io) + ".y"
	default:
		return false
	}
	w.builtinLocal(e, io, entry, name, expr)
	return true
}

// kernelPrologue stops threads outside the stage input grid and binds
// the output local to the thread's element of the output buffer.
func (w *writer) kernelPrologue(e *cross.Emitter) {
	out := e.Out
	out.Line("if (any(%s >= %s))", w.grid.id, w.grid.size)
	out.Line("{")
	out.Indent()
	out.Line("return;")
	out.Dedent()
	out.Line("}")
}

// kernelOutput declares the output local of a vertex kernel.
func (w *writer) kernelOutput(e *cross.Emitter) {
	e.Out.Line("device %s& %s = %s[%s.y * %s.x + %s.x];", outputStruct, outputLocal, tessOutName,
		w.grid.id, w.grid.size, w.grid.id)
}

// plainField drops the attributes of a stage struct field. A vertex
// kernel writes its outputs to memory, not to the rasterizer.
func plainField(f string) string {
	for {
		i := strings.Index(f, " [[")
		if i < 0 {
			return f
		}
		j := strings.Index(f[i:], "]]")
		if j < 0 {
			return f
		}
		f = f[:i] + f[i+j+2:]
	}
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Metal runs tessellation control shaders as compute kernels writing
// their outputs to device buffers, and evaluation shaders as post-
// tessellation vertex functions reading the patch through stage_in or,
// with raw buffer input, through the same buffers.

// tessVar classifies one tessellation interface variable.
type tessVar struct {
	input     bool
	perVertex bool
	patch     bool
	// block marks interface blocks, whose members are the fields.
	block bool
	// level marks the tessellation level arrays.
	level bool
	outer bool
}

// setupTessellation decides which buffers a tessellation stage exchanges
// with the runtime.
func (w *writer) setupTessellation() error {
	ep := w.ep
	control := ep.Model == spirv.ExecutionModelTessellationControl
	if !control && ep.Model != spirv.ExecutionModelTessellationEvaluation {
		return nil
	}
	if ep.HasMode(spirv.ExecutionModeIsolines) {
		return ir.NewError(ir.ErrUnsupportedOpcode, "isoline tessellation is not supported by Metal")
	}
	t := &tessInfo{
		control:  control,
		quads:    ep.HasMode(spirv.ExecutionModeQuads),
		vertices: ep.ModeOperand(spirv.ExecutionModeOutputVertices, 0),
		vars:     make(map[ir.ID]tessVar),
	}
	if control && t.vertices == 0 {
		return ir.NewError(ir.ErrInvalidIR, "tessellation control shader without an output patch size")
	}
	if control && !t.quads && !ep.HasMode(spirv.ExecutionModeTriangles) {
		w.log.V(1).Info("tessellation domain not declared, assuming triangles")
	}
	raw := !control && w.opts.RawBufferTeseInput
	var perVertexIn, patchIn, levelIn, patchOut, patchVertices bool
	for k, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		input := k == 0
		for _, entry := range list {
			if !entry.IsBuiltin && input && !control {
				t.levelAttr = max(t.levelAttr, entry.Location+entry.Locations)
			}
			tv := t.vars[entry.Var]
			tv.input = input
			tv.block = entry.Member >= 0
			level := entry.IsBuiltin &&
				(entry.Builtin == spirv.BuiltInTessLevelOuter || entry.Builtin == spirv.BuiltInTessLevelInner)
			switch {
			case level:
				if tv.block {
					return ir.NewErrorAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable, "tessellation levels inside a block")
				}
				tv.level, tv.outer = true, entry.Builtin == spirv.BuiltInTessLevelOuter
				levelIn = levelIn || input
			case entry.PerVertex:
				tv.perVertex = true
				perVertexIn = perVertexIn || input
			case entry.Patch:
				tv.patch = true
				patchIn = patchIn || input
				patchOut = patchOut || !input
			default:
				patchVertices = patchVertices || entry.IsBuiltin && entry.Builtin == spirv.BuiltInPatchVertices
				continue
			}
			t.vars[entry.Var] = tv
		}
	}
	switch {
	case control:
		t.indirect = true
		t.inputBuffer = perVertexIn
		t.patchOut = patchOut
	case raw:
		t.inputBuffer = perVertexIn
		t.patchInBuffer = patchIn
		t.levelBuffer = levelIn
		t.indirect = perVertexIn || patchVertices
	default:
		t.indirect = patchVertices
	}
	w.tess = t
	return nil
}

// tessFactorsType returns the factor buffer element of the domain.
func (w *writer) tessFactorsType() string {
	if w.tess.quads {
		return tessFactorsQuad
	}
	return tessFactorsTri
}

// rawInput reports whether the stage reads its patch from buffers.
func (w *writer) rawInput() bool {
	return w.tess.control || w.opts.RawBufferTeseInput
}

// patchAttribute returns the patch attribute of an evaluation shader.
func (w *writer) patchAttribute() string {
	domain := "triangle"
	if w.tess.quads {
		domain = "quad"
	}
	if w.tess.vertices != 0 {
		return fmt.Sprintf("[[patch(%s, %d)]]", domain, w.tess.vertices)
	}
	return fmt.Sprintf("[[patch(%s)]]", domain)
}

// tessStageIn declares the stage input of an evaluation shader.
func (w *writer) tessStageIn() []string {
	if w.rawInput() || len(w.inputs.patch) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%s %s [[stage_in]]", patchInStruct, patchInName)}
}

// tessNames names the invocation and patch index parameters. Declared
// builtins of the same name read them through a converted local.
func (w *writer) tessNames(e *cross.Emitter, io *stageIO) {
	t := w.tess
	t.attr = t.levelAttr + 2
	name := func(b spirv.BuiltIn) string {
		base := cross.BuiltinName(b)
		for _, entry := range w.iface.Inputs {
			if entry.IsBuiltin && entry.Builtin == b && entry.Member < 0 {
				base += "_in"
				break
			}
		}
		return globalName(e, base)
	}
	declared := func(b spirv.BuiltIn) bool {
		for _, entry := range w.iface.Inputs {
			if entry.IsBuiltin && entry.Builtin == b {
				return true
			}
		}
		return false
	}
	t.invocation, t.primitive, t.global = "", "", ""
	switch {
	case t.control && w.opts.MultiPatchWorkgroup:
		t.global = globalName(e, "gl_GlobalInvocationID")
		t.invocation = name(spirv.BuiltInInvocationID)
		t.primitive = name(spirv.BuiltInPrimitiveID)
		io.params = append(io.params, fmt.Sprintf("uint3 %s [[thread_position_in_grid]]", t.global))
	case t.control:
		t.invocation = name(spirv.BuiltInInvocationID)
		t.primitive = name(spirv.BuiltInPrimitiveID)
		io.params = append(io.params,
			fmt.Sprintf("uint %s [[thread_index_in_threadgroup]]", t.invocation),
			fmt.Sprintf("uint %s [[threadgroup_position_in_grid]]", t.primitive))
	case w.rawInput() || declared(spirv.BuiltInPrimitiveID):
		t.primitive = name(spirv.BuiltInPrimitiveID)
		io.params = append(io.params, fmt.Sprintf("uint %s [[patch_id]]", t.primitive))
	}
}

// tessInput declares one input of a tessellation stage and reports
// whether it handled the entry.
func (w *writer) tessInput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) bool {
	t := w.tess
	tv, tracked := t.vars[entry.Var]
	if !tracked {
		if !entry.IsBuiltin {
			return false
		}
		switch entry.Builtin {
		case spirv.BuiltInInvocationID:
			if t.control {
				w.builtinLocal(e, io, entry, name, t.invocation)
				return true
			}
		case spirv.BuiltInPrimitiveID:
			w.builtinLocal(e, io, entry, name, t.primitive)
			return true
		case spirv.BuiltInPatchVertices:
			w.builtinLocal(e, io, entry, name, indirectParamsName+"[0]")
			return true
		case spirv.BuiltInTessCoord:
			if t.control {
				break
			}
			if !t.quads {
				w.builtinParam(e, io, entry, name, "float3", "position_in_patch")
				return true
			}
			raw := globalName(e, name+"_in")
			io.params = append(io.params, fmt.Sprintf("float2 %s [[position_in_patch]]", raw))
			io.locals = append(io.locals, fmt.Sprintf("%s = float3(%s, 0.0);", e.Decl(entry.Type, name), raw))
			return true
		}
		return false
	}
	switch {
	case tv.level:
	case tv.perVertex:
		io.fields = append(io.fields, w.tessField(e, entry, name))
	case tv.patch:
		io.patch = append(io.patch, w.tessField(e, entry, name))
	}
	return true
}

// tessField declares the struct member of a per-vertex or per-patch
// input. Stage inputs of evaluation shaders carry vertex attributes.
func (w *writer) tessField(e *cross.Emitter, entry cross.IOEntry, name string) string {
	m := w.m
	if w.rawInput() {
		return e.Decl(entry.Type, name) + ";"
	}
	if m.IsArray(entry.Type) || m.IsMatrix(entry.Type) || m.IsStruct(entry.Type) {
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable,
			"aggregate tessellation evaluation input %q read through stage_in", name)
	}
	attr := entry.Location
	if entry.IsBuiltin {
		attr = w.tess.attr
		w.tess.attr++
	}
	return fmt.Sprintf("%s %s [[attribute(%d)]];", w.TypeName(e, entry.Type), name, attr)
}

// tessFinish adds the control point and level members of the
// evaluation stage input.
func (w *writer) tessFinish(io *stageIO) {
	t := w.tess
	if w.rawInput() {
		return
	}
	var outer, inner bool
	for _, tv := range t.vars {
		if tv.level && tv.input {
			outer = outer || tv.outer
			inner = inner || !tv.outer
		}
	}
	if len(io.fields) > 0 {
		io.patch = append(io.patch, fmt.Sprintf("patch_control_point<%s> %s;", inputStruct, controlInName))
	}
	switch {
	case t.quads:
		if outer {
			io.patch = append(io.patch, fmt.Sprintf("float4 gl_TessLevelOuter [[attribute(%d)]];", t.levelAttr))
		}
		if inner {
			io.patch = append(io.patch, fmt.Sprintf("float2 gl_TessLevelInner [[attribute(%d)]];", t.levelAttr+1))
		}
	case outer || inner:
		io.patch = append(io.patch, fmt.Sprintf("float4 gl_TessLevel [[attribute(%d)]];", t.levelAttr))
	}
}

// tessOutput declares one output of a control shader and reports whether
// it handled the entry. Evaluation shaders write ordinary vertex outputs.
func (w *writer) tessOutput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) bool {
	t := w.tess
	if !t.control {
		return false
	}
	tv, tracked := t.vars[entry.Var]
	switch {
	case !tracked:
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, entry.Var, spirv.OpVariable,
			"tessellation control output %q is neither per-vertex nor per-patch", name)
	case tv.level:
	case tv.perVertex:
		io.fields = append(io.fields, e.Decl(entry.Type, name)+";")
	default:
		io.patch = append(io.patch, e.Decl(entry.Type, name)+";")
	}
	return true
}

// tessPrologue binds the patch views of the invocation.
func (w *writer) tessPrologue(e *cross.Emitter) {
	t := w.tess
	out := e.Out
	if !t.control {
		if !w.opts.RawBufferTeseInput {
			return
		}
		if t.inputBuffer {
			out.Line("const device %s* %s = &%s[%s * %s[0]];", inputStruct, controlInName, tessInName, t.primitive, indirectParamsName)
		}
		if t.patchInBuffer {
			out.Line("const device %s& %s = %s[%s];", patchInStruct, patchInName, tessPatchInName, t.primitive)
		}
		return
	}
	if t.global != "" {
		out.Line("uint %s = %s.x %% %d;", t.invocation, t.global, t.vertices)
		out.Line("uint %s = min(%s.x / %d, %s[1] - 1);", t.primitive, t.global, t.vertices, indirectParamsName)
	}
	if len(w.outputs.fields) > 0 {
		out.Line("device %s* %s = &%s[%s * %d];", outputStruct, controlOutName, tessOutName, t.primitive, t.vertices)
	}
	if t.patchOut {
		out.Line("device %s& %s = %s[%s];", patchOutStruct, patchOutName, tessPatchOutName, t.primitive)
	}
	if t.inputBuffer {
		out.Line("device %s* %s = &%s[%s * %s[0]];", inputStruct, controlInName, tessInName, t.primitive, indirectParamsName)
	}
}

// tessPointer moves a pointer to tessellation IO into the patch views.
// Level pointers stay for the load and store hooks.
func (w *writer) tessPointer(e *cross.Emitter, p *cross.Pointer) bool {
	t := w.tess
	tv, ok := t.vars[p.Root]
	if !ok {
		return false
	}
	if tv.level {
		return true
	}
	var base string
	n := 0
	if tv.perVertex {
		if len(p.Steps) == 0 {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "per-vertex array %q accessed as a whole", e.Name(p.Root))
		}
		arr := controlInName
		switch {
		case !tv.input:
			arr = controlOutName
		case !w.rawInput():
			arr = patchInName + "." + controlInName
		}
		base = fmt.Sprintf("%s[%s]", arr, e.IndexText(p.Steps[0]))
		n = 1
	} else {
		base = patchInName
		if !tv.input {
			base = patchOutName
		}
	}
	if tv.block {
		if len(p.Steps) <= n || p.Steps[n].Member < 0 {
			ir.Raise(ir.ErrUnsupportedAccessPattern, "interface block %q accessed as a whole", e.Name(p.Root))
		}
		base += "." + w.ioNames[ioKey{p.Root, p.Steps[n].Member}]
		n++
	} else {
		base += "." + e.Name(p.Root)
	}
	typ := p.BaseType
	if n > 0 {
		typ = p.Steps[n-1].Type
	}
	p.Rebase(base, n, typ)
	return true
}

// levelVar returns the tessellation level behind a pointer.
func (w *writer) levelVar(p *cross.Pointer) (tessVar, bool) {
	if w.tess == nil {
		return tessVar{}, false
	}
	tv, ok := w.tess.vars[p.Root]
	return tv, ok && tv.level
}

// levelRef renders element idx of a tessellation level. Elements the
// domain lacks report false.
func (w *writer) levelRef(tv tessVar, idx string, c int64) (string, bool) {
	t := w.tess
	if !w.rawInput() {
		switch {
		case t.quads && tv.outer:
			return fmt.Sprintf("%s.gl_TessLevelOuter[%s]", patchInName, idx), true
		case t.quads:
			return fmt.Sprintf("%s.gl_TessLevelInner[%s]", patchInName, idx), true
		case tv.outer:
			return fmt.Sprintf("%s.gl_TessLevel[%s]", patchInName, idx), c < 3
		}
		return patchInName + ".gl_TessLevel.w", c < 1
	}
	buf := fmt.Sprintf("%s[%s]", tessLevelName, t.primitive)
	switch {
	case tv.outer:
		return fmt.Sprintf("%s.edgeTessellationFactor[%s]", buf, idx), t.quads || c < 3
	case t.quads:
		return fmt.Sprintf("%s.insideTessellationFactor[%s]", buf, idx), true
	}
	return buf + ".insideTessellationFactor", c < 1
}

// loadLevel reads tessellation levels. Whole arrays are read element by
// element into a temporary.
func (w *writer) loadLevel(e *cross.Emitter, tv tessVar, p *cross.Pointer, inst *ir.Instruction) {
	read := func(idx string, c int64) string {
		ref, ok := w.levelRef(tv, idx, c)
		switch {
		case !ok:
			return "0.0"
		case w.rawInput():
			return "float(" + ref + ")"
		}
		return ref
	}
	if len(p.Steps) == 0 {
		n, _ := w.m.ArrayLength(p.Type)
		name := e.DeclareResult(inst.Result, inst.ResultType)
		for i := range n {
			e.Out.Line("%s[%d] = %s;", name, i, read(fmt.Sprint(i), int64(i)))
		}
		return
	}
	s := p.Steps[0]
	e.BindMemory(inst, read(e.IndexText(s), s.Const))
}

// storeLevel writes tessellation levels into the factor buffer. Elements
// the domain lacks are dropped.
func (w *writer) storeLevel(e *cross.Emitter, tv tessVar, p *cross.Pointer, value ir.ID) {
	if !w.tess.control {
		ir.Raise(ir.ErrInvalidIR, "tessellation levels written outside a control shader")
	}
	x := e.Value(value)
	if len(p.Steps) == 0 {
		n, _ := w.m.ArrayLength(p.Type)
		for i := range n {
			if ref, ok := w.levelRef(tv, fmt.Sprint(i), int64(i)); ok {
				e.Out.Line("%s = half(%s[%d]);", ref, x.Text, i)
			}
		}
	} else if ref, ok := w.levelRef(tv, e.IndexText(p.Steps[0]), p.Steps[0].Const); ok {
		e.Out.Line("%s = half(%s);", ref, x.Text)
	}
	e.Invalidate()
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// =============================================================================
// Functions
// =============================================================================

// FunctionHeader implements cross.Dialect.
func (w *writer) FunctionHeader(e *cross.Emitter, fn *ir.Function, entry bool) string {
	m := w.m
	if m.IsArray(fn.ResultType) {
		ir.RaiseAt(ir.ErrUnsupportedAccessPattern, fn.ID, spirv.OpFunction, "functions returning arrays")
	}
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, w.ParamDecl(e, p))
	}
	ret := "void"
	if _, void := m.Inner(fn.ResultType).(ir.VoidType); !void {
		ret = w.TypeName(e, fn.ResultType)
	}
	return fmt.Sprintf("%s %s(%s)", ret, e.Name(fn.ID), strings.Join(params, ", "))
}

// FunctionPrologue implements cross.Dialect.
func (w *writer) FunctionPrologue(e *cross.Emitter, fn *ir.Function, entry bool) {}

// Return implements cross.Dialect.
func (w *writer) Return(e *cross.Emitter, value ir.ID, tail bool) {
	switch {
	case value != 0:
		e.Out.Line("return %s;", e.Text(value))
	case !tail:
		e.Out.Line("return;")
	}
}

// CallArgs implements cross.Dialect. Resources are globals, so calls
// pass nothing extra.
func (w *writer) CallArgs(e *cross.Emitter, callee ir.ID) []string { return nil }

// =============================================================================
// Builtins
// =============================================================================

// builtinGlobal returns the static global standing in for a builtin.
func builtinGlobal(b spirv.BuiltIn, input bool) string {
	if b == spirv.BuiltInSampleMask && input {
		return "gl_SampleMaskIn"
	}
	return cross.BuiltinName(b)
}

// builtinExpr returns the expression of builtins read from intrinsics or
// constant buffers instead of stage inputs.
func (w *writer) builtinExpr(b spirv.BuiltIn) (string, bool) {
	switch b {
	case spirv.BuiltInSubgroupSize:
		w.needSubgroup("gl_SubgroupSize")
		return "WaveGetLaneCount()", true
	case spirv.BuiltInSubgroupLocalInvocationID:
		w.needSubgroup("gl_SubgroupInvocationID")
		return "WaveGetLaneIndex()", true
	case spirv.BuiltInHelperInvocation:
		w.need(ShaderModel.SupportsHelperLane, 0, "gl_HelperInvocation")
		return "IsHelperLane()", true
	case spirv.BuiltInBaseVertex, spirv.BuiltInBaseInstance:
		if !w.opts.SupportNonzeroBaseVertexBaseInstance {
			ir.Raise(ir.ErrUnsupportedOpcode, "%s requires support_nonzero_base_vertex_base_instance", cross.BuiltinName(b))
		}
		if b == spirv.BuiltInBaseVertex {
			return baseVertexName, true
		}
		return baseInstName, true
	}
	return "", false
}

// builtinSemantic returns the system value semantic of a builtin and the
// HLSL type of its field, or "" when the type is the variable's own.
func (w *writer) builtinSemantic(entry cross.IOEntry, input bool) (semantic, fieldType string) {
	switch entry.Builtin {
	case spirv.BuiltInPosition, spirv.BuiltInFragCoord:
		return "SV_Position", ""
	case spirv.BuiltInVertexIndex, spirv.BuiltInVertexID:
		return "SV_VertexID", "uint"
	case spirv.BuiltInInstanceIndex, spirv.BuiltInInstanceID:
		return "SV_InstanceID", "uint"
	case spirv.BuiltInFrontFacing:
		return "SV_IsFrontFace", ""
	case spirv.BuiltInSampleID:
		return "SV_SampleIndex", "uint"
	case spirv.BuiltInSampleMask:
		return "SV_Coverage", "uint"
	case spirv.BuiltInPrimitiveID:
		return "SV_PrimitiveID", "uint"
	case spirv.BuiltInLayer:
		return "SV_RenderTargetArrayIndex", "uint"
	case spirv.BuiltInViewportIndex:
		return "SV_ViewportArrayIndex", "uint"
	case spirv.BuiltInGlobalInvocationID:
		return "SV_DispatchThreadID", ""
	case spirv.BuiltInLocalInvocationID:
		return "SV_GroupThreadID", ""
	case spirv.BuiltInWorkgroupID:
		return "SV_GroupID", ""
	case spirv.BuiltInLocalInvocationIndex:
		return "SV_GroupIndex", ""
	case spirv.BuiltInViewIndex:
		w.need(ShaderModel.SupportsViewInstancing, 0, "gl_ViewIndex")
		return "SV_ViewID", "uint"
	case spirv.BuiltInFragDepth:
		return "SV_Depth", ""
	case spirv.BuiltInFragStencilRefEXT:
		return "SV_StencilRef", "uint"
	}
	ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable, "builtin %s has no HLSL semantic", cross.BuiltinName(entry.Builtin))
	return "", ""
}

// =============================================================================
// Stage IO
// =============================================================================

// stageIO is the wrapper struct of one direction and the statements
// copying it to or from the IO globals.
type stageIO struct {
	fields []string
	copies []string
}

func (io *stageIO) add(field, copy string) {
	io.fields = append(io.fields, field)
	io.copies = append(io.copies, copy)
}

// interpolation returns the interpolation modifiers of an entry.
func interpolation(entry cross.IOEntry) string {
	var b strings.Builder
	if entry.Flat {
		b.WriteString("nointerpolation ")
	}
	if entry.NoPerspective {
		b.WriteString("noperspective ")
	}
	if entry.Centroid {
		b.WriteString("centroid ")
	}
	if entry.Sample {
		b.WriteString("sample ")
	}
	return b.String()
}

// semanticFor returns the semantic of a user location.
func (w *writer) semanticFor(loc uint32, input bool) string {
	switch {
	case input && w.stage == "vert":
		if name, ok := w.opts.Semantics[loc]; ok {
			return name
		}
	case !input && w.stage == "frag":
		return fmt.Sprintf("SV_Target%d", loc)
	}
	return fmt.Sprintf("TEXCOORD%d", loc)
}

func (w *writer) stageInputs(e *cross.Emitter) stageIO {
	var io stageIO
	for _, entry := range w.iface.Inputs {
		if !w.entryActive(entry) {
			continue
		}
		name := w.ioName(e, entry)
		if !entry.IsBuiltin {
			w.locationInput(e, &io, entry, name)
			continue
		}
		if _, expr := w.builtinExpr(entry.Builtin); expr || entry.Builtin == spirv.BuiltInPointCoord {
			continue
		}
		sem, ft := w.builtinSemantic(entry, true)
		field := name
		if ft == "" {
			ft = w.TypeName(e, entry.Type)
		}
		src := inputParam + "." + field
		switch entry.Builtin {
		case spirv.BuiltInFragCoord:
			io.add(fmt.Sprintf("float4 %s : %s;", field, sem), fmt.Sprintf("%s = %s;", name, src))
			io.copies = append(io.copies, fmt.Sprintf("%s.w = 1.0f / %s.w;", name, name))
		case spirv.BuiltInVertexIndex, spirv.BuiltInInstanceIndex:
			value := w.Cast(e, entry.Type, src)
			if w.usesVertexInfo() {
				base := baseVertexName
				if entry.Builtin == spirv.BuiltInInstanceIndex {
					base = baseInstName
				}
				value = fmt.Sprintf("%s + %s", value, base)
			}
			io.add(fmt.Sprintf("%s %s : %s;", ft, field, sem), fmt.Sprintf("%s = %s;", name, value))
		case spirv.BuiltInSampleMask:
			io.add(fmt.Sprintf("%s %s : %s;", ft, field, sem), fmt.Sprintf("%s[0] = %s;", name, src))
		default:
			io.add(fmt.Sprintf("%s %s : %s;", ft, field, sem), fmt.Sprintf("%s = %s;", name, src))
		}
	}
	return io
}

// locationInput adds a user input, splitting matrix vertex inputs into
// one semantic per column when configured.
func (w *writer) locationInput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	m := w.m
	qual := ""
	if w.stage != "vert" {
		qual = interpolation(entry)
	}
	if w.stage == "vert" && m.IsMatrix(entry.Type) && w.opts.FlattenMatrixVertexInputSemantics {
		col := m.ElementType(entry.Type)
		named, remapped := w.opts.Semantics[entry.Location]
		for i := range m.Columns(entry.Type) {
			sem := fmt.Sprintf("TEXCOORD%d", entry.Location+i)
			if remapped {
				sem = fmt.Sprintf("%s_%d", named, i)
			}
			field := fmt.Sprintf("%s_%d", name, i)
			io.add(fmt.Sprintf("%s %s : %s;", w.TypeName(e, col), field, sem),
				fmt.Sprintf("%s[%d] = %s.%s;", name, i, inputParam, field))
		}
		return
	}
	io.add(fmt.Sprintf("%s%s : %s;", qual, e.Decl(entry.Type, name), w.semanticFor(entry.Location, true)),
		fmt.Sprintf("%s = %s.%s;", name, inputParam, name))
}

func (w *writer) stageOutputs(e *cross.Emitter) stageIO {
	var io stageIO
	for _, entry := range w.iface.Outputs {
		if !w.entryActive(entry) {
			continue
		}
		name := w.ioName(e, entry)
		dst := outputLocal + "." + name
		if !entry.IsBuiltin {
			qual := ""
			if w.stage == "vert" {
				qual = interpolation(entry)
			}
			io.add(fmt.Sprintf("%s%s : %s;", qual, e.Decl(entry.Type, name), w.semanticFor(entry.Location, false)),
				fmt.Sprintf("%s = %s;", dst, name))
			continue
		}
		switch entry.Builtin {
		case spirv.BuiltInPointSize:
			if !w.opts.PointSizeCompat {
				ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable, "gl_PointSize requires point_size_compat")
			}
			continue
		case spirv.BuiltInClipDistance, spirv.BuiltInCullDistance:
			w.distanceOutputs(&io, entry, name)
			continue
		case spirv.BuiltInPosition:
			io.add(fmt.Sprintf("float4 %s : SV_Position;", name), fmt.Sprintf("%s = %s;", dst, name))
			if w.opts.FlipVertexY {
				io.copies = append(io.copies, fmt.Sprintf("%s.y = -%s.y;", dst, dst))
			}
			continue
		case spirv.BuiltInSampleMask:
			io.add(fmt.Sprintf("uint %s : SV_Coverage;", name), fmt.Sprintf("%s = %s[0];", dst, name))
			continue
		}
		sem, ft := w.builtinSemantic(entry, false)
		if ft == "" {
			ft = w.TypeName(e, entry.Type)
		}
		io.add(fmt.Sprintf("%s %s : %s;", ft, name, sem), fmt.Sprintf("%s = %s;", dst, name))
	}
	return io
}

// distanceOutputs packs a clip or cull distance array into float4
// fields, the widest a distance semantic index holds.
func (w *writer) distanceOutputs(io *stageIO, entry cross.IOEntry, name string) {
	n, _ := w.m.ArrayLength(entry.Type)
	sem := "SV_ClipDistance"
	if entry.Builtin == spirv.BuiltInCullDistance {
		sem = "SV_CullDistance"
	}
	for j := uint32(0); j*4 < n; j++ {
		width := min(n-j*4, 4)
		ft := "float"
		if width > 1 {
			ft = fmt.Sprintf("float%d", width)
		}
		field := fmt.Sprintf("%s%d", name, j)
		io.fields = append(io.fields, fmt.Sprintf("%s %s : %s%d;", ft, field, sem, j))
		for k := range width {
			io.copies = append(io.copies, fmt.Sprintf("%s.%s.%c = %s[%d];", outputLocal, field, "xyzw"[k], name, j*4+k))
		}
	}
}

func (w *writer) writeStageStructs(out *cross.Buffer) {
	for _, s := range []struct {
		name string
		io   stageIO
	}{{inputStruct, w.inputs}, {outputStruct, w.outputs}} {
		if len(s.io.fields) == 0 {
			continue
		}
		out.Line("struct %s", s.name)
		out.Line("{")
		out.Indent()
		for _, f := range s.io.fields {
			out.Text(f)
		}
		out.Dedent()
		out.Line("};")
		out.Blank()
	}
}

// writeEntryPoint writes the wrapper copying the stage IO around the
// translated entry function.
func (w *writer) writeEntryPoint(e *cross.Emitter, out *cross.Buffer) {
	switch w.ep.Model {
	case spirv.ExecutionModelGLCompute:
		size, specs := analysis.WorkgroupSize(w.m, w.ep)
		dims := make([]string, 3)
		for i := range dims {
			dims[i] = fmt.Sprintf("%d", size[i])
			if specs[i] != 0 {
				if sid, ok := e.SpecID(specs[i]); ok {
					dims[i] = specMacro(sid)
				}
			}
		}
		out.Line("[numthreads(%s)]", strings.Join(dims, ", "))
	case spirv.ExecutionModelFragment:
		if _, ok := w.ep.Modes[spirv.ExecutionModeEarlyFragmentTests]; ok {
			out.Line("[earlydepthstencil]")
		}
	}
	ret, param := "void", ""
	if len(w.outputs.fields) > 0 {
		ret = outputStruct
	}
	if len(w.inputs.fields) > 0 {
		param = inputStruct + " " + inputParam
	}
	out.Line("%s %s(%s)", ret, w.entryName(), param)
	out.Line("{")
	out.Indent()
	for _, c := range w.inputs.copies {
		out.Text(c)
	}
	out.Line("%s();", e.Name(w.ep.Function))
	if len(w.outputs.fields) > 0 {
		out.Line("%s %s;", outputStruct, outputLocal)
		for _, c := range w.outputs.copies {
			out.Text(c)
		}
		out.Line("return %s;", outputLocal)
	}
	out.Dedent()
	out.Line("}")
}

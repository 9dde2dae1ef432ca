// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// viewNames are the raw instance parameters a multiview vertex shader
// derives its view and instance indices from.
type viewNames struct {
	instance string
	base     string
}

// multiviewVertex reports whether the entry point renders every view of
// an instanced draw, reading the view mask buffer.
func (w *writer) multiviewVertex() bool {
	return w.opts.Multiview && w.ep.Model == spirv.ExecutionModelVertex && !w.vertexKernel
}

// viewInputs declares the instance parameters of a multiview vertex
// shader. The runtime multiplies the instance count by the view count.
func (w *writer) viewInputs(e *cross.Emitter, io *stageIO) {
	if !w.multiviewVertex() {
		return
	}
	w.needOn(Version2_0, Version2_1, FeatureMultiview, "multiview")
	w.view.instance = globalName(e, "spvInstanceIndex")
	io.params = append(io.params, fmt.Sprintf("uint %s [[instance_id]]", w.view.instance))
	if w.opts.EnableBaseIndexZero {
		return
	}
	if w.opts.Platform == PlatformIOS && !w.opts.IOSSupportBaseVertexInstance {
		ir.Raise(ir.ErrUnsupportedShaderModel, "multiview on iOS requires ios_support_base_vertex_instance")
	}
	w.need(Version1_1, 0, "multiview base instance")
	w.view.base = globalName(e, "spvBaseInstance")
	io.params = append(io.params, fmt.Sprintf("uint %s [[base_instance]]", w.view.base))
}

// relativeInstance is the instance index without the base instance.
func (w *writer) relativeInstance() string {
	if w.view.base == "" {
		return w.view.instance
	}
	return fmt.Sprintf("(%s - %s)", w.view.instance, w.view.base)
}

// viewIndex is the view a multiview vertex shader invocation renders.
// Element 0 of the view mask buffer holds the first view and element 1
// the view count.
func (w *writer) viewIndex() string {
	return fmt.Sprintf("%s[0] + %s %% %s[1]", viewMaskName, w.relativeInstance(), viewMaskName)
}

// viewInstance is the application instance index of a multiview vertex
// shader invocation.
func (w *writer) viewInstance() string {
	s := fmt.Sprintf("%s / %s[1]", w.relativeInstance(), viewMaskName)
	if w.view.base != "" {
		s += " + " + w.view.base
	}
	return s
}

// viewIndexInput lowers the ViewIndex builtin. Without multiview every
// invocation renders view 0.
func (w *writer) viewIndexInput(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	switch {
	case !w.opts.Multiview:
		w.builtinLocal(e, io, entry, name, "0u")
	case w.multiviewVertex():
		w.builtinLocal(e, io, entry, name, w.viewIndex())
	case w.ep.Model == spirv.ExecutionModelFragment:
		w.needOn(Version2_2, Version2_3, FeatureMultiview, "gl_ViewIndex in fragment shaders")
		w.builtinLocal(e, io, entry, name, w.ensureLayer(e, io))
	default:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, entry.Var, spirv.OpVariable,
			"gl_ViewIndex is not supported in %s shaders", w.ep.Model)
	}
}

// viewLayer routes the view index of a multiview vertex shader to the
// render target array index unless the shader writes gl_Layer itself.
func (w *writer) viewLayer(e *cross.Emitter, io *stageIO, layerOut bool) {
	if !w.multiviewVertex() || layerOut {
		return
	}
	field := globalName(e, "gl_Layer")
	io.fields = append(io.fields, fmt.Sprintf("uint %s [[render_target_array_index]];", field))
	io.copies = append(io.copies, fmt.Sprintf("%s.%s = %s;", outputLocal, field, w.viewIndex()))
}

// ensureLayer returns the render target array index of a fragment
// shader, declaring it when the shader has none.
func (w *writer) ensureLayer(e *cross.Emitter, io *stageIO) string {
	if w.layer == "" {
		w.needOn(Version2_2, Version2_3, 0, "gl_Layer in fragment shaders")
		w.layer = globalName(e, "gl_Layer")
		io.params = append(io.params, fmt.Sprintf("uint %s [[render_target_array_index]]", w.layer))
	}
	return w.layer
}

// usesDispatchBase reports whether a compute shader reads an ID the
// dispatch base offsets.
func (w *writer) usesDispatchBase() bool {
	if !w.opts.DispatchBase || w.ep.Model != spirv.ExecutionModelGLCompute {
		return false
	}
	for _, entry := range w.iface.Inputs {
		if entry.IsBuiltin && (entry.Builtin == spirv.BuiltInGlobalInvocationID || entry.Builtin == spirv.BuiltInWorkgroupID) {
			return true
		}
	}
	return false
}

// dispatchBaseInputs declares the grid origin parameter. Before MSL 1.2
// the origin comes from the indirect parameters buffer.
func (w *writer) dispatchBaseInputs(io *stageIO) {
	if w.dispatchBase && w.opts.Version.AtLeast(Version1_2) {
		io.params = append(io.params, fmt.Sprintf("uint3 %s [[grid_origin]]", dispatchBaseName))
	}
}

// offsetDispatch adds the dispatch base to a workgroup or global
// invocation ID local.
func (w *writer) offsetDispatch(e *cross.Emitter, io *stageIO, entry cross.IOEntry, name string) {
	if !w.dispatchBase {
		return
	}
	offset := dispatchBaseName
	if entry.Builtin == spirv.BuiltInGlobalInvocationID {
		offset = fmt.Sprintf("%s * %s", dispatchBaseName, w.workgroupSize(e))
	}
	io.locals = append(io.locals, fmt.Sprintf("%s += %s;", name, w.Cast(e, entry.Type, offset)))
}

// workgroupSize is the uint3 workgroup size of a compute shader.
func (w *writer) workgroupSize(e *cross.Emitter) string {
	m := w.m
	for _, id := range m.GlobalOrder {
		if b, ok := m.BuiltIn(id); ok && b == spirv.BuiltInWorkgroupSize && m.KindOf(id) == ir.KindConstant {
			return "uint3(" + e.Name(id) + ")"
		}
	}
	size, _ := analysis.WorkgroupSize(m, w.ep)
	return fmt.Sprintf("uint3(%d, %d, %d)", size[0], size[1], size[2])
}

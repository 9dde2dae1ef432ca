// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Identifiers owned by the generated entry wrapper.
const (
	inputStruct    = "SPIRV_Cross_Input"
	outputStruct   = "SPIRV_Cross_Output"
	inputParam     = "stage_input"
	outputLocal    = "stage_output"
	vertexInfo     = "SPIRV_Cross_VertexInfo"
	baseVertexName = "SPIRV_Cross_BaseVertex"
	baseInstName   = "SPIRV_Cross_BaseInstance"
)

// ioKey names one flattened interface block member.
type ioKey struct {
	v      ir.ID
	member int
}

// writer is the HLSL dialect of one entry point. Fields above the pass
// marker are computed once; the rest are rebuilt on every emission pass.
type writer struct {
	m    *ir.Module
	opts *Options
	ep   *ir.EntryPoint
	log  logr.Logger

	emitter   *cross.Emitter
	reach     *analysis.Reachability
	iface     *cross.Interface
	resources []cross.Resource
	bindings  map[ir.ID]*binding

	// numWorkgroups is the synthetic constant buffer variable and
	// numWorkgroupsBuiltin the gl_NumWorkGroups input it replaces.
	numWorkgroups        ir.ID
	numWorkgroupsBuiltin ir.ID

	stage string
	// comparison holds samplers, combined images and parameters used for
	// depth comparison.
	comparison map[ir.ID]bool
	// srvHandle holds storage images and parameters declared as SRVs.
	srvHandle map[ir.ID]bool
	// structured maps storage buffers declared as structured buffers to
	// their element type.
	structured map[ir.ID]ir.ID
	// byteAddress holds storage buffers declared as byte address buffers.
	byteAddress map[ir.ID]bool
	// flattened holds constant buffers whose members become globals.
	flattened map[ir.ID]bool
	// ioBlocks holds interface variables of block type.
	ioBlocks map[ir.ID]bool
	// activeMembers lists the accessed members of interface blocks.
	activeMembers map[ir.ID]map[int]bool
	skipStruct    map[ir.ID]bool

	features FeatureFlags
	required ShaderModel

	// Pass state.
	members  map[ir.ID][]string
	ioNames  map[ioKey]string
	samplers map[ir.ID]string
	inputs   stageIO
	outputs  stageIO
}

// newWriter validates the entry point against the options and resolves
// its interface, resources and registers.
func newWriter(m *ir.Module, opts *Options, ep *ir.EntryPoint, numWorkgroups ir.ID) (w *writer, err error) {
	defer ir.Recover(&err)
	w = &writer{
		m: m, opts: opts, ep: ep, log: opts.Logger,
		bindings:      make(map[ir.ID]*binding),
		numWorkgroups: numWorkgroups,
		comparison:    make(map[ir.ID]bool),
		srvHandle:     make(map[ir.ID]bool),
		structured:    make(map[ir.ID]ir.ID),
		byteAddress:   make(map[ir.ID]bool),
		flattened:     make(map[ir.ID]bool),
		ioBlocks:      make(map[ir.ID]bool),
		activeMembers: make(map[ir.ID]map[int]bool),
		skipStruct:    make(map[ir.ID]bool),
		required:      ShaderModel5_0,
	}
	if w.log.GetSink() == nil {
		w.log = logr.Discard()
	}
	switch ep.Model {
	case spirv.ExecutionModelVertex:
		w.stage = "vert"
	case spirv.ExecutionModelFragment:
		w.stage = "frag"
	case spirv.ExecutionModelGLCompute:
		w.stage = "comp"
	default:
		return nil, ir.NewError(ir.ErrUnsupportedShaderModel, "%s shaders are not supported by the HLSL backend", ep.Model)
	}
	if err := validateRootConstants(opts.RootConstants); err != nil {
		return nil, err
	}
	if numWorkgroups != 0 {
		builtin, _ := m.ExtDecoration(numWorkgroups, ir.ExtSynthetic)
		w.numWorkgroupsBuiltin = ir.ID(builtin)
	}

	w.reach = analysis.Reach(m, ep.Function)
	var io, res []ir.ID
	for _, v := range w.reach.Variables {
		if v == w.numWorkgroupsBuiltin {
			continue
		}
		switch m.MustVariable(v).Storage {
		case spirv.StorageClassInput, spirv.StorageClassOutput:
			io = append(io, v)
		default:
			res = append(res, v)
		}
	}
	if numWorkgroups != 0 {
		res = append(res, numWorkgroups)
		w.features |= FeatureNumWorkgroups
	}
	w.iface = cross.CollectInterface(m, ep, io)
	w.resources = cross.Resources(m, res)

	w.classifyInterface(io)
	if err := w.classifyResources(); err != nil {
		return nil, err
	}
	w.scanHandles()
	if err := w.checkRootConstants(); err != nil {
		return nil, err
	}
	if err := w.assignRegisters(); err != nil {
		return nil, err
	}
	return w, nil
}

// classifyInterface records interface blocks and the members accessed
// through them.
func (w *writer) classifyInterface(io []ir.ID) {
	m := w.m
	for _, v := range m.Variables() {
		if v.Storage != spirv.StorageClassInput && v.Storage != spirv.StorageClassOutput {
			continue
		}
		t := m.Pointee(v.Type)
		for m.IsArray(t) {
			t = m.ElementType(t)
		}
		if m.IsStruct(t) {
			w.skipStruct[t] = true
		}
	}
	for _, v := range io {
		if m.IsStruct(m.Pointee(m.MustVariable(v).Type)) {
			w.ioBlocks[v] = true
			w.activeMembers[v] = make(map[int]bool)
		}
	}
	if len(w.ioBlocks) == 0 {
		return
	}
	for _, fnID := range w.reach.Functions {
		w.eachInstruction(fnID, func(inst *ir.Instruction) {
			switch inst.Op {
			case spirv.OpAccessChain, spirv.OpInBoundsAccessChain:
				members, ok := w.activeMembers[inst.Arg(0)]
				if !ok || len(inst.Operands) < 2 {
					return
				}
				if c, err := m.Constant(inst.Arg(1)); err == nil {
					members[ir.Position(c.U32())] = true
				}
			case spirv.OpLoad, spirv.OpStore, spirv.OpCopyMemory:
				for _, id := range inst.IDOperands() {
					if members, ok := w.activeMembers[id]; ok {
						st := m.Pointee(m.MustVariable(id).Type)
						for i := range m.MemberCount(st) {
							members[i] = true
						}
					}
				}
			}
		})
	}
}

// classifyResources picks the declaration of every buffer and checks the
// resources HLSL cannot express at the target shader model.
func (w *writer) classifyResources() error {
	m := w.m
	arrayed := make(map[ir.ID]bool)
	for _, r := range w.resources {
		pointee := m.Pointee(m.MustVariable(r.Var).Type)
		switch r.Kind {
		case cross.ResourceUniformBuffer, cross.ResourcePushConstant:
			if r.Kind == cross.ResourcePushConstant || !m.IsArray(pointee) {
				w.flattened[r.Var] = true
				w.skipStruct[r.Type] = true
			} else {
				arrayed[r.Type] = true
			}
		case cross.ResourceStorageBuffer:
			if elem, ok := w.structuredElement(r); ok {
				w.structured[r.Var] = elem
			} else {
				w.byteAddress[r.Var] = true
			}
		case cross.ResourceSubpassInput:
			return ir.NewErrorAt(ir.ErrUnsupportedOpcode, r.Var, spirv.OpVariable, "subpass input %q has no HLSL equivalent", r.Name)
		case cross.ResourceAccelerationStructure:
			if err := w.check(ShaderModel.SupportsRayTracing, FeatureRayTracing, "acceleration structures"); err != nil {
				return err
			}
		}
		if r.Count == 0 && !w.opts.ShaderModel.SupportsUnboundedArrays() {
			if t, ok := w.opts.Bindings.Lookup(r.Key(w.ep.Model)); !ok || t.BindingArraySize == nil {
				return ir.NewErrorAt(ir.ErrUnsupportedShaderModel, r.Var, spirv.OpVariable,
					"runtime-sized resource array %q requires %s, targeting %s",
					r.Name, firstSupporting(ShaderModel.SupportsUnboundedArrays), w.opts.ShaderModel)
			}
		}
	}
	for t := range arrayed {
		delete(w.skipStruct, t)
	}
	return nil
}

// structuredElement returns the element type of a storage buffer tagged
// as a structured buffer.
func (w *writer) structuredElement(r cross.Resource) (ir.ID, bool) {
	m := w.m
	if !w.opts.PreserveStructuredBuffers {
		return 0, false
	}
	ut, ok := m.DecorationString(r.Var, spirv.DecorationUserTypeGOOGLE)
	if !ok {
		return 0, false
	}
	ut = strings.ToLower(ut)
	if !strings.HasPrefix(ut, "structuredbuffer") && !strings.HasPrefix(ut, "rwstructuredbuffer") {
		return 0, false
	}
	if !m.IsStruct(r.Type) || m.MemberCount(r.Type) != 1 {
		return 0, false
	}
	rt, ok := m.Inner(m.MemberType(r.Type, 0)).(ir.RuntimeArrayType)
	if !ok {
		return 0, false
	}
	return rt.Element, true
}

// structuredRW reports whether a structured buffer is tagged read-write.
func (w *writer) structuredRW(v ir.ID) bool {
	ut, _ := w.m.DecorationString(v, spirv.DecorationUserTypeGOOGLE)
	return strings.HasPrefix(strings.ToLower(ut), "rw")
}

// scanHandles finds the samplers used for depth comparison and carries
// comparison and SRV declarations across function parameters.
func (w *writer) scanHandles() {
	m := w.m
	for _, r := range w.resources {
		if (r.Kind == cross.ResourceStorageImage || r.Kind == cross.ResourceStorageTexelBuffer) &&
			w.opts.NonwritableUAVTextureAsSRV && r.ReadOnly {
			w.srvHandle[r.Var] = true
		}
	}
	var calls []*ir.Instruction
	for _, fnID := range w.reach.Functions {
		w.eachInstruction(fnID, func(inst *ir.Instruction) {
			switch inst.Op {
			case spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
				spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod,
				spirv.OpImageDrefGather:
				w.markComparison(inst.Arg(0))
			case spirv.OpFunctionCall:
				calls = append(calls, inst)
			}
		})
	}
	for changed := true; changed; {
		changed = false
		for _, call := range calls {
			params := m.MustFunction(call.Arg(0)).Params
			args := call.IDOperands()[1:]
			for i, p := range params {
				if i >= len(args) {
					break
				}
				base := analysis.BaseVariable(m, args[i])
				if base == 0 {
					continue
				}
				if w.comparison[p] && !w.comparison[base] {
					w.comparison[base] = true
					changed = true
				}
				if w.srvHandle[base] && !w.srvHandle[p] {
					w.srvHandle[p] = true
					changed = true
				}
			}
		}
	}
}

func (w *writer) markComparison(handle ir.ID) {
	m := w.m
	id := handle
	for m.KindOf(id) == ir.KindValue {
		inst := m.MustInstruction(id)
		if inst.Op == spirv.OpSampledImage {
			id = inst.Arg(1)
			break
		}
		if inst.Op != spirv.OpCopyObject {
			break
		}
		id = inst.Arg(0)
	}
	if base := analysis.BaseVariable(m, id); base != 0 {
		w.comparison[base] = true
	}
}

// checkRootConstants verifies every push constant member lies inside one
// root constant range.
func (w *writer) checkRootConstants() error {
	if len(w.opts.RootConstants) == 0 {
		return nil
	}
	m := w.m
	for _, r := range w.resources {
		if r.Kind != cross.ResourcePushConstant {
			continue
		}
		l := cross.NewLayout(m, cross.RuleFor(spirv.StorageClassPushConstant))
		for i := range m.MemberCount(r.Type) {
			off := l.MemberOffset(r.Type, i)
			size := l.Size(m.MemberType(r.Type, ir.Index(i)), l.MemberRowMajor(r.Type, i), l.MatrixStride(r.Type, i))
			rc, ok := w.rootConstantAt(off)
			if !ok {
				return ir.NewErrorAt(ir.ErrConflictingBinding, r.Var, spirv.OpVariable,
					"push constant member %d at offset %d is outside every root constant range", i, off)
			}
			if off+size > rc.End {
				return ir.NewErrorAt(ir.ErrConflictingBinding, r.Var, spirv.OpVariable,
					"push constant member %d at offset %d straddles the end of %s", i, off, rc)
			}
		}
	}
	return nil
}

func (w *writer) rootConstantAt(off uint32) (RootConstant, bool) {
	for _, rc := range w.opts.RootConstants {
		if off >= rc.Start && off < rc.End {
			return rc, true
		}
	}
	return RootConstant{}, false
}

func (w *writer) eachInstruction(fnID ir.ID, fn func(*ir.Instruction)) {
	f := w.m.MustFunction(fnID)
	for _, bid := range f.Blocks {
		for _, inst := range w.m.MustBlock(bid).Instructions {
			fn(inst)
		}
	}
}

// Keywords implements cross.Dialect.
func (w *writer) Keywords() []string {
	out := make([]string, 0, len(reservedKeywords)+len(typeShorthands)+8)
	for k := range reservedKeywords {
		out = append(out, k)
	}
	for k := range typeShorthands {
		out = append(out, k)
	}
	sort.Strings(out)
	return append(out, inputStruct, outputStruct, inputParam, outputLocal,
		vertexInfo, baseVertexName, baseInstName, w.entryName())
}

// CaseInsensitive implements cross.Dialect.
func (w *writer) CaseInsensitive() bool { return false }

// entryName returns the name of the HLSL entry function.
func (w *writer) entryName() string {
	if w.opts.UseEntryPointName && w.ep.Name != "" {
		return cross.Sanitize(w.ep.Name)
	}
	return "main"
}

// EmitModule implements cross.Dialect.
func (w *writer) EmitModule(e *cross.Emitter) {
	w.members = make(map[ir.ID][]string)
	w.ioNames = make(map[ioKey]string)
	w.samplers = make(map[ir.ID]string)

	e.NameGlobals(w.fixedNames())
	w.nameFlattened(e)
	w.inputs = w.stageInputs(e)
	w.outputs = w.stageOutputs(e)

	out := e.Out
	w.writeSpecConstants(e, out)
	w.writeStructs(e, out)
	w.writeConstants(e, out)
	w.writeVertexInfo(out)
	w.writeResources(e, out)
	w.writeGlobals(e, out)
	w.writeStageStructs(out)

	body := &cross.Buffer{}
	prev := e.Swap(body)
	e.EmitFunctions()
	e.Swap(prev)
	e.WriteHelpers(out)
	out.Raw(body.String())
	w.writeEntryPoint(e, out)
}

// fixedNames pins the identifiers the wrapper and runtime rely on.
func (w *writer) fixedNames() map[ir.ID]string {
	m := w.m
	fixed := map[ir.ID]string{w.ep.Function: w.stage + "_main"}
	for _, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		for _, entry := range list {
			if entry.IsBuiltin && entry.Member < 0 {
				input := m.MustVariable(entry.Var).Storage == spirv.StorageClassInput
				fixed[entry.Var] = builtinGlobal(entry.Builtin, input)
			}
		}
	}
	if w.numWorkgroups != 0 {
		fixed[w.numWorkgroups] = numWorkgroupsName
		fixed[m.Pointee(m.MustVariable(w.numWorkgroups).Type)] = numWorkgroupsName
	}
	return fixed
}

// globalName takes name verbatim when free, else a unique variant.
func globalName(e *cross.Emitter, name string) string {
	if e.Globals.Exact(name) {
		return name
	}
	return e.Globals.Call(name)
}

// nameFlattened names the globals standing in for members of flattened
// constant buffers and interface blocks.
func (w *writer) nameFlattened(e *cross.Emitter) {
	m := w.m
	for _, r := range w.resources {
		if !w.flattened[r.Var] {
			continue
		}
		n := m.MemberCount(r.Type)
		names := make([]string, n)
		for i := range n {
			names[i] = globalName(e, e.Name(r.Var)+"_"+e.MemberName(r.Type, ir.Index(i)))
		}
		w.members[r.Var] = names
	}
	for _, list := range [][]cross.IOEntry{w.iface.Inputs, w.iface.Outputs} {
		for _, entry := range list {
			if entry.Member < 0 || !w.entryActive(entry) {
				continue
			}
			key := ioKey{entry.Var, entry.Member}
			if entry.IsBuiltin {
				input := m.MustVariable(entry.Var).Storage == spirv.StorageClassInput
				name := builtinGlobal(entry.Builtin, input)
				e.Globals.Reserve(name)
				w.ioNames[key] = name
				continue
			}
			st := m.Pointee(m.MustVariable(entry.Var).Type)
			w.ioNames[key] = globalName(e, e.Name(entry.Var)+"_"+e.MemberName(st, uint32(entry.Member)))
		}
	}
}

// entryActive reports whether an interface entry is accessed. Members of
// blocks count only when an access chain reaches them.
func (w *writer) entryActive(entry cross.IOEntry) bool {
	if entry.Member < 0 {
		return true
	}
	members, ok := w.activeMembers[entry.Var]
	return !ok || members[entry.Member]
}

// ioName returns the global holding an interface entry.
func (w *writer) ioName(e *cross.Emitter, entry cross.IOEntry) string {
	if entry.Member < 0 {
		return e.Name(entry.Var)
	}
	return w.ioNames[ioKey{entry.Var, entry.Member}]
}

// translationInfo summarizes the last emission.
func (w *writer) translationInfo() *TranslationInfo {
	info := &TranslationInfo{
		EntryPointName:      w.entryName(),
		UsedFeatures:        w.features,
		RequiredShaderModel: w.required,
		RegisterBindings:    make(map[string]string),
		AutomaticBindings:   make(map[ir.ID]BindTarget),
		NumWorkgroupsID:     w.numWorkgroups,
	}
	for _, r := range w.resources {
		b, ok := w.bindings[r.Var]
		if !ok {
			continue
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("_%d", r.Var)
		}
		info.RegisterBindings[name] = fmt.Sprintf("register(%s%d, space%d)", b.regType, b.target.Register, b.target.Space)
		if !b.explicit {
			info.AutomaticBindings[r.Var] = b.target
		}
	}
	for _, k := range w.opts.Bindings.Unused() {
		if k.Stage == w.ep.Model {
			info.UnusedBindings = append(info.UnusedBindings, k)
		}
	}
	info.InputLocations = w.locations(w.iface.Inputs)
	info.OutputLocations = w.locations(w.iface.Outputs)
	if w.emitter != nil {
		w.emitter.Polyfills().Each(func(p cross.Polyfill) {
			info.HelperFunctions = append(info.HelperFunctions, p.Func())
		})
	}
	return info
}

func (w *writer) locations(entries []cross.IOEntry) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, entry := range entries {
		if entry.IsBuiltin || !w.entryActive(entry) {
			continue
		}
		for i := range entry.Locations {
			loc := entry.Location + i
			if !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// storageImageAsSRV reports whether a storage image variable or parameter
// is declared as a read-only texture.
func (w *writer) storageImageAsSRV(v ir.ID) bool { return w.srvHandle[v] }

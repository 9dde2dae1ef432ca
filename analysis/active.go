// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Reachability lists what an entry point statically references.
type Reachability struct {
	// Functions lists the reachable functions with callees before callers;
	// the entry function is last.
	Functions []ir.ID
	// Variables lists the referenced global variables in declaration order.
	Variables []ir.ID
}

// Reach computes the functions and global variables reachable from an
// entry function.
func Reach(m *ir.Module, entry ir.ID) *Reachability {
	r := &Reachability{}
	visited := make(map[ir.ID]bool)
	vars := make(map[ir.ID]bool)
	var visit func(fn ir.ID)
	visit = func(fnID ir.ID) {
		if visited[fnID] {
			return
		}
		visited[fnID] = true
		fn := m.MustFunction(fnID)
		for _, bid := range fn.Blocks {
			b := m.MustBlock(bid)
			scan := func(inst *ir.Instruction) {
				for _, id := range inst.IDOperands() {
					switch m.KindOf(id) {
					case ir.KindVariable:
						if m.MustVariable(id).Function == 0 {
							vars[id] = true
						}
					case ir.KindFunction:
						visit(id)
					}
				}
			}
			for _, phi := range b.Phis {
				scan(phi)
			}
			for _, inst := range b.Instructions {
				scan(inst)
			}
			if b.Terminator.Kind == ir.TermReturnValue && m.KindOf(b.Terminator.Value) == ir.KindVariable {
				vars[b.Terminator.Value] = true
			}
		}
		for _, local := range fn.Locals {
			if init := m.MustVariable(local).Initializer; m.KindOf(init) == ir.KindVariable {
				vars[init] = true
			}
		}
		r.Functions = append(r.Functions, fnID)
	}
	visit(entry)
	for _, id := range m.GlobalOrder {
		if vars[id] {
			r.Variables = append(r.Variables, id)
		}
	}
	return r
}

// HasVariable reports whether a global variable is referenced.
func (r *Reachability) HasVariable(id ir.ID) bool {
	for _, v := range r.Variables {
		if v == id {
			return true
		}
	}
	return false
}

// BaseVariable follows access chains and copies back to the variable or
// function parameter a pointer is derived from. It returns zero when the
// pointer has no such root.
func BaseVariable(m *ir.Module, ptr ir.ID) ir.ID {
	for {
		switch m.KindOf(ptr) {
		case ir.KindVariable, ir.KindParameter:
			return ptr
		case ir.KindValue:
			inst := m.MustInstruction(ptr)
			switch inst.Op {
			case spirv.OpAccessChain, spirv.OpInBoundsAccessChain, spirv.OpPtrAccessChain,
				spirv.OpInBoundsPtrAccessChain, spirv.OpCopyObject, spirv.OpImageTexelPointer,
				spirv.OpLoad, spirv.OpSampledImage, spirv.OpImage, spirv.OpCopyLogical:
				ptr = inst.Arg(0)
				continue
			}
		}
		return 0
	}
}

// StorageOf returns the storage class of a pointer-typed value. Access
// chain results inherit the storage of their base through the pointer type.
func StorageOf(m *ir.Module, ptr ir.ID) spirv.StorageClass {
	t := m.TypeOf(ptr)
	if t == 0 || !m.IsPointer(t) {
		if base := BaseVariable(m, ptr); base != 0 && base != ptr {
			return StorageOf(m, base)
		}
		return spirv.StorageClassFunction
	}
	return m.PointerStorage(t)
}

// BuiltinsUsed returns the builtins declared by the given variables, either
// directly or on members of builtin blocks, sorted.
func BuiltinsUsed(m *ir.Module, vars []ir.ID) []spirv.BuiltIn {
	seen := make(map[spirv.BuiltIn]bool)
	for _, v := range vars {
		if b, ok := m.BuiltIn(v); ok {
			seen[b] = true
			continue
		}
		pointee := m.Pointee(m.MustVariable(v).Type)
		for {
			if !m.IsArray(pointee) {
				break
			}
			pointee = m.ElementType(pointee)
		}
		if !m.IsStruct(pointee) {
			continue
		}
		for i := range m.MemberCount(pointee) {
			if b, ok := m.MemberBuiltIn(pointee, ir.Index(i)); ok {
				seen[b] = true
			}
		}
	}
	out := make([]spirv.BuiltIn, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WorkgroupSize returns the compute workgroup size of an entry point,
// preferring a WorkgroupSize builtin constant over the LocalSize mode. The
// second result names the spec constants when the size is specializable.
func WorkgroupSize(m *ir.Module, ep *ir.EntryPoint) (size [3]uint32, specIDs [3]ir.ID) {
	size = [3]uint32{1, 1, 1}
	if ops := ep.Modes[spirv.ExecutionModeLocalSize]; len(ops) == 3 {
		copy(size[:], ops)
	}
	if ids := ep.ModeIDs[spirv.ExecutionModeLocalSizeID]; len(ids) == 3 {
		for i, id := range ids {
			if c, err := m.Constant(id); err == nil {
				size[i] = c.U32()
				if c.Spec {
					specIDs[i] = id
				}
			}
		}
	}
	for _, id := range m.GlobalOrder {
		if m.KindOf(id) != ir.KindConstant {
			continue
		}
		if b, ok := m.BuiltIn(id); !ok || b != spirv.BuiltInWorkgroupSize {
			continue
		}
		c := m.MustConstant(id)
		if c.Kind != ir.ConstComposite || len(c.Constituents) != 3 {
			continue
		}
		for i, part := range c.Constituents {
			pc := m.MustConstant(part)
			size[i] = pc.U32()
			if pc.Spec {
				specIDs[i] = part
			} else {
				specIDs[i] = 0
			}
		}
	}
	return size, specIDs
}

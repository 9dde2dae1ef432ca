// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"sort"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// IOEntry is one stage input or output after block flattening.
type IOEntry struct {
	// Var is the interface variable.
	Var ir.ID
	// Member is the block member, or -1 when the entry is the variable.
	Member int
	// Type is the value type, with the per-vertex dimension removed.
	Type ir.ID
	// Name is a suggested identifier.
	Name string

	Location  uint32
	Component uint32
	// Locations is the number of consecutive locations consumed.
	Locations uint32

	Builtin   spirv.BuiltIn
	IsBuiltin bool

	Flat          bool
	NoPerspective bool
	Centroid      bool
	Sample        bool
	Invariant     bool
	// Patch marks per-patch tessellation IO.
	Patch bool
	// PerVertex marks IO arrayed over the vertices of a primitive.
	PerVertex bool
	// VertexCount is the per-vertex array length, zero when unsized.
	VertexCount uint32
}

// Interface holds the active stage inputs and outputs of an entry point.
// Location entries come first, by location; builtins follow, by builtin.
type Interface struct {
	Inputs  []IOEntry
	Outputs []IOEntry
}

// Input returns the input entry for variable v and member, or nil.
func (f *Interface) Input(v ir.ID, member int) *IOEntry { return find(f.Inputs, v, member) }

// Output returns the output entry for variable v and member, or nil.
func (f *Interface) Output(v ir.ID, member int) *IOEntry { return find(f.Outputs, v, member) }

func find(entries []IOEntry, v ir.ID, member int) *IOEntry {
	for i := range entries {
		if entries[i].Var == v && entries[i].Member == member {
			return &entries[i]
		}
	}
	return nil
}

// ConsumedLocations sums the locations of non-builtin entries.
func ConsumedLocations(entries []IOEntry) uint32 {
	var n uint32
	for _, e := range entries {
		if !e.IsBuiltin {
			n += e.Locations
		}
	}
	return n
}

// LocationCount returns the number of locations a value of type t
// consumes. Every vector or matrix column takes one location; 64-bit
// vectors of three or four components take two.
func LocationCount(m *ir.Module, t ir.ID) uint32 {
	switch inner := m.Inner(t).(type) {
	case ir.BoolType, ir.IntType, ir.FloatType:
		return 1
	case ir.VectorType:
		if m.ScalarOf(t).Width == 64 && inner.Count > 2 {
			return 2
		}
		return 1
	case ir.MatrixType:
		return inner.Columns * LocationCount(m, inner.Column)
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		return n * LocationCount(m, inner.Element)
	case ir.StructType:
		var n uint32
		for _, mt := range inner.Members {
			n += LocationCount(m, mt)
		}
		return n
	}
	return 1
}

// perVertex reports whether IO of storage sc is arrayed per vertex in the
// execution model.
func perVertex(model spirv.ExecutionModel, sc spirv.StorageClass) bool {
	switch model {
	case spirv.ExecutionModelTessellationControl:
		return true
	case spirv.ExecutionModelTessellationEvaluation, spirv.ExecutionModelGeometry:
		return sc == spirv.StorageClassInput
	case spirv.ExecutionModelMeshEXT:
		return sc == spirv.StorageClassOutput
	}
	return false
}

// CollectInterface gathers the active stage IO of ep. Entries without a
// Location decoration are assigned the next free locations in declaration
// order.
func CollectInterface(m *ir.Module, ep *ir.EntryPoint, active []ir.ID) *Interface {
	f := &Interface{}
	for _, v := range active {
		vr := m.MustVariable(v)
		switch vr.Storage {
		case spirv.StorageClassInput:
			f.Inputs = append(f.Inputs, flatten(m, ep.Model, vr)...)
		case spirv.StorageClassOutput:
			f.Outputs = append(f.Outputs, flatten(m, ep.Model, vr)...)
		}
	}
	assignLocations(f.Inputs)
	assignLocations(f.Outputs)
	sortEntries(f.Inputs)
	sortEntries(f.Outputs)
	return f
}

func flatten(m *ir.Module, model spirv.ExecutionModel, v *ir.Variable) []IOEntry {
	t := m.Pointee(v.Type)
	base := IOEntry{Var: v.ID, Member: -1, Name: m.Name(v.ID)}
	base.Patch = m.HasDecoration(v.ID, spirv.DecorationPatch)
	if perVertex(model, v.Storage) && !base.Patch && m.IsArray(t) {
		if _, ok := m.BuiltIn(v.ID); !ok || !isPatchBuiltin(m, v.ID) {
			base.PerVertex = true
			base.VertexCount, _ = m.ArrayLength(t)
			t = m.ElementType(t)
		}
	}
	readFlags(m, &base, v.ID, -1)
	if b, ok := m.BuiltIn(v.ID); ok {
		base.Builtin, base.IsBuiltin = b, true
		base.Type = t
		return []IOEntry{base}
	}
	if m.IsStruct(t) && m.IsBlock(t) {
		return flattenBlock(m, base, t)
	}
	base.Type = t
	base.Location, _ = m.Decoration(v.ID, spirv.DecorationLocation)
	if !m.HasDecoration(v.ID, spirv.DecorationLocation) {
		base.Location = noLocation
	}
	base.Component, _ = m.Decoration(v.ID, spirv.DecorationComponent)
	base.Locations = LocationCount(m, t)
	return []IOEntry{base}
}

func isPatchBuiltin(m *ir.Module, v ir.ID) bool {
	b, _ := m.BuiltIn(v)
	return b == spirv.BuiltInTessLevelInner || b == spirv.BuiltInTessLevelOuter
}

const noLocation = ^uint32(0)

func flattenBlock(m *ir.Module, base IOEntry, st ir.ID) []IOEntry {
	var out []IOEntry
	next := noLocation
	if loc, ok := m.Decoration(base.Var, spirv.DecorationLocation); ok {
		next = loc
	}
	for i := range m.MemberCount(st) {
		mi := ir.Index(i)
		e := base
		e.Member = i
		e.Type = m.MemberType(st, mi)
		e.Name = m.MemberName(st, mi)
		readFlags(m, &e, st, i)
		if b, ok := m.MemberBuiltIn(st, mi); ok {
			e.Builtin, e.IsBuiltin = b, true
			out = append(out, e)
			continue
		}
		e.Locations = LocationCount(m, e.Type)
		switch loc, ok := m.MemberDecoration(st, mi, spirv.DecorationLocation); {
		case ok:
			e.Location = loc
		case next != noLocation:
			e.Location = next
		default:
			e.Location = noLocation
		}
		if e.Location != noLocation {
			next = e.Location + e.Locations
		}
		e.Component, _ = m.MemberDecoration(st, mi, spirv.DecorationComponent)
		out = append(out, e)
	}
	return out
}

func readFlags(m *ir.Module, e *IOEntry, id ir.ID, member int) {
	has := func(d spirv.Decoration) bool {
		if member < 0 {
			return m.HasDecoration(id, d)
		}
		return m.HasMemberDecoration(id, uint32(member), d)
	}
	e.Flat = e.Flat || has(spirv.DecorationFlat)
	e.NoPerspective = e.NoPerspective || has(spirv.DecorationNoPerspective)
	e.Centroid = e.Centroid || has(spirv.DecorationCentroid)
	e.Sample = e.Sample || has(spirv.DecorationSample)
	e.Invariant = e.Invariant || has(spirv.DecorationInvariant)
	e.Patch = e.Patch || has(spirv.DecorationPatch)
}

func assignLocations(entries []IOEntry) {
	used := make(map[uint32]bool)
	for _, e := range entries {
		if e.IsBuiltin || e.Location == noLocation {
			continue
		}
		for l := e.Location; l < e.Location+e.Locations; l++ {
			used[l] = true
		}
	}
	var next uint32
	for i := range entries {
		e := &entries[i]
		if e.IsBuiltin || e.Location != noLocation {
			continue
		}
		for !free(used, next, e.Locations) {
			next++
		}
		e.Location = next
		for l := next; l < next+e.Locations; l++ {
			used[l] = true
		}
		next += e.Locations
	}
}

func free(used map[uint32]bool, start, n uint32) bool {
	for l := start; l < start+n; l++ {
		if used[l] {
			return false
		}
	}
	return true
}

func sortEntries(entries []IOEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsBuiltin != b.IsBuiltin {
			return !a.IsBuiltin
		}
		if a.IsBuiltin {
			return a.Builtin < b.Builtin
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Component < b.Component
	})
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"sort"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// ResourceKey identifies a descriptor by stage, set and binding.
type ResourceKey struct {
	Stage   spirv.ExecutionModel `yaml:"stage" toml:"stage"`
	Set     uint32               `yaml:"set" toml:"set"`
	Binding uint32               `yaml:"binding" toml:"binding"`
}

func (k ResourceKey) String() string {
	if k.Set == PushConstantSet {
		return fmt.Sprintf("%s push constants", k.Stage)
	}
	return fmt.Sprintf("%s set=%d binding=%d", k.Stage, k.Set, k.Binding)
}

// Push constant blocks have no descriptor; both backends look them up
// under this set and binding.
const (
	PushConstantSet     = ^uint32(0)
	PushConstantBinding = 0
)

// Overrides is a caller table of target bindings keyed by descriptor.
// Lookups mark entries used so unused entries can be reported.
type Overrides[T any] struct {
	entries map[ResourceKey]T
	used    map[ResourceKey]bool
}

// NewOverrides returns an empty table.
func NewOverrides[T any]() *Overrides[T] {
	return &Overrides[T]{entries: make(map[ResourceKey]T), used: make(map[ResourceKey]bool)}
}

// Set adds or replaces an entry.
func (o *Overrides[T]) Set(k ResourceKey, v T) {
	o.entries[k] = v
}

// Lookup returns the entry for k and marks it used.
func (o *Overrides[T]) Lookup(k ResourceKey) (T, bool) {
	if o == nil {
		var zero T
		return zero, false
	}
	v, ok := o.entries[k]
	if ok {
		o.used[k] = true
	}
	return v, ok
}

// Used reports whether the entry for k was looked up.
func (o *Overrides[T]) Used(k ResourceKey) bool { return o != nil && o.used[k] }

// ResetUsage forgets previous lookups.
func (o *Overrides[T]) ResetUsage() {
	if o != nil {
		o.used = make(map[ResourceKey]bool)
	}
}

// Len returns the number of entries.
func (o *Overrides[T]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Keys returns the keys sorted by stage, set and binding.
func (o *Overrides[T]) Keys() []ResourceKey {
	if o == nil {
		return nil
	}
	out := make([]ResourceKey, 0, len(o.entries))
	for k := range o.entries {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

// Unused returns the keys never looked up, sorted.
func (o *Overrides[T]) Unused() []ResourceKey {
	var out []ResourceKey
	for _, k := range o.Keys() {
		if !o.used[k] {
			out = append(out, k)
		}
	}
	return out
}

func sortKeys(keys []ResourceKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.Set != b.Set {
			return a.Set < b.Set
		}
		return a.Binding < b.Binding
	})
}

// ResourceKind classifies a descriptor.
type ResourceKind uint8

const (
	ResourceUniformBuffer ResourceKind = iota + 1
	ResourceStorageBuffer
	ResourcePushConstant
	ResourceSampledImage
	ResourceStorageImage
	ResourceSampler
	ResourceCombinedImageSampler
	ResourceUniformTexelBuffer
	ResourceStorageTexelBuffer
	ResourceSubpassInput
	ResourceAccelerationStructure
)

var resourceKindNames = [...]string{
	"", "uniform buffer", "storage buffer", "push constant", "sampled image", "storage image",
	"sampler", "combined image sampler", "uniform texel buffer", "storage texel buffer",
	"subpass input", "acceleration structure",
}

func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) && k != 0 {
		return resourceKindNames[k]
	}
	return fmt.Sprintf("ResourceKind(%d)", k)
}

// IsBuffer reports whether the kind is a buffer block.
func (k ResourceKind) IsBuffer() bool {
	return k == ResourceUniformBuffer || k == ResourceStorageBuffer || k == ResourcePushConstant
}

// Resource is one descriptor-backed global variable.
type Resource struct {
	Var  ir.ID
	Kind ResourceKind
	Set  uint32
	// Binding is the descriptor binding; push constants use
	// PushConstantBinding.
	Binding uint32
	Name    string
	// Type is the variable pointee with resource arrays removed.
	Type ir.ID
	// Count is the resource array length, 1 for a single resource and 0
	// for a runtime-sized array.
	Count uint32
	// ReadOnly marks buffers and storage images that are never written.
	ReadOnly bool
	// WriteOnly marks storage images that are never read.
	WriteOnly bool
}

// Key returns the descriptor key of r in a stage.
func (r *Resource) Key(stage spirv.ExecutionModel) ResourceKey {
	return ResourceKey{Stage: stage, Set: r.Set, Binding: r.Binding}
}

// ClassifyResource returns the resource description of global variable v,
// or false when v is not a resource.
func ClassifyResource(m *ir.Module, v ir.ID) (Resource, bool) {
	vr := m.MustVariable(v)
	t := m.Pointee(vr.Type)
	r := Resource{Var: v, Name: m.Name(v), Count: 1}
	r.Set, _ = m.Decoration(v, spirv.DecorationDescriptorSet)
	r.Binding, _ = m.Decoration(v, spirv.DecorationBinding)
	inner := t
	switch a := m.Inner(t).(type) {
	case ir.ArrayType:
		if m.IsOpaque(t) || vr.Storage != spirv.StorageClassUniformConstant {
			r.Count, _ = m.ArrayLength(t)
			inner = a.Element
		}
	case ir.RuntimeArrayType:
		r.Count = 0
		inner = a.Element
	}
	r.Type = inner
	switch vr.Storage {
	case spirv.StorageClassPushConstant:
		r.Kind = ResourcePushConstant
		r.Set, r.Binding = PushConstantSet, PushConstantBinding
		r.ReadOnly = true
		r.Count = 1
		r.Type = t
		return r, true
	case spirv.StorageClassStorageBuffer:
		r.Kind = ResourceStorageBuffer
	case spirv.StorageClassUniform:
		r.Kind = ResourceUniformBuffer
		if m.HasDecoration(inner, spirv.DecorationBufferBlock) {
			r.Kind = ResourceStorageBuffer
		}
	case spirv.StorageClassUniformConstant:
		kind, ok := opaqueKind(m, inner)
		if !ok {
			return Resource{}, false
		}
		r.Kind = kind
	default:
		return Resource{}, false
	}
	switch r.Kind {
	case ResourceStorageBuffer:
		r.ReadOnly = m.HasDecoration(v, spirv.DecorationNonWritable) || allMembers(m, inner, spirv.DecorationNonWritable)
	case ResourceUniformBuffer:
		r.ReadOnly = true
	case ResourceStorageImage, ResourceStorageTexelBuffer:
		r.ReadOnly = m.HasDecoration(v, spirv.DecorationNonWritable)
		r.WriteOnly = m.HasDecoration(v, spirv.DecorationNonReadable)
	default:
		r.ReadOnly = true
	}
	return r, true
}

func opaqueKind(m *ir.Module, t ir.ID) (ResourceKind, bool) {
	switch inner := m.Inner(t).(type) {
	case ir.SamplerType:
		return ResourceSampler, true
	case ir.SampledImageType:
		if img, ok := m.Inner(inner.Image).(ir.ImageType); ok && img.Dim == spirv.DimBuffer {
			return ResourceUniformTexelBuffer, true
		}
		return ResourceCombinedImageSampler, true
	case ir.ImageType:
		switch {
		case inner.Dim == spirv.DimSubpassData:
			return ResourceSubpassInput, true
		case inner.Dim == spirv.DimBuffer && inner.IsStorage():
			return ResourceStorageTexelBuffer, true
		case inner.Dim == spirv.DimBuffer:
			return ResourceUniformTexelBuffer, true
		case inner.IsStorage():
			return ResourceStorageImage, true
		}
		return ResourceSampledImage, true
	case ir.OpaqueType:
		return ResourceAccelerationStructure, true
	}
	return 0, false
}

func allMembers(m *ir.Module, st ir.ID, d spirv.Decoration) bool {
	if !m.IsStruct(st) {
		return false
	}
	n := m.MemberCount(st)
	for i := range n {
		if !m.HasMemberDecoration(st, ir.Index(i), d) {
			return false
		}
	}
	return n > 0
}

// Resources returns the resources among the given variables, sorted by
// set, binding and ID.
func Resources(m *ir.Module, vars []ir.ID) []Resource {
	var out []Resource
	for _, v := range vars {
		if r, ok := ClassifyResource(m, v); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Set != b.Set {
			return a.Set < b.Set
		}
		if a.Binding != b.Binding {
			return a.Binding < b.Binding
		}
		return a.Var < b.Var
	})
	return out
}

// Allocator hands out slots in named binding spaces. Explicit claims are
// checked for overlap; automatic slots skip claimed ranges.
type Allocator struct {
	owners map[string]map[uint32]ir.ID
	next   map[string]uint32
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{owners: make(map[string]map[uint32]ir.ID), next: make(map[string]uint32)}
}

func (a *Allocator) space(name string) map[uint32]ir.ID {
	s, ok := a.owners[name]
	if !ok {
		s = make(map[uint32]ir.ID)
		a.owners[name] = s
	}
	return s
}

// Claim takes count slots starting at slot for v. Overlapping a slot owned
// by another variable is a ConflictingBinding error.
func (a *Allocator) Claim(space string, slot, count uint32, v ir.ID) error {
	s := a.space(space)
	if count == 0 {
		count = 1
	}
	for i := slot; i < slot+count; i++ {
		if owner, ok := s[i]; ok && owner != v {
			return ir.NewErrorAt(ir.ErrConflictingBinding, v, 0,
				"%s slot %d is already bound to %%%d", space, i, owner)
		}
	}
	for i := slot; i < slot+count; i++ {
		s[i] = v
	}
	return nil
}

// Next returns the first free run of count slots and claims it for v.
func (a *Allocator) Next(space string, count uint32, v ir.ID) uint32 {
	s := a.space(space)
	if count == 0 {
		count = 1
	}
	slot := a.next[space]
	for {
		ok := true
		for i := slot; i < slot+count; i++ {
			if _, taken := s[i]; taken {
				ok = false
				slot = i + 1
				break
			}
		}
		if ok {
			break
		}
	}
	for i := slot; i < slot+count; i++ {
		s[i] = v
	}
	a.next[space] = slot + count
	return slot
}

// Owner returns the variable owning a slot.
func (a *Allocator) Owner(space string, slot uint32) (ir.ID, bool) {
	v, ok := a.owners[space][slot]
	return v, ok
}

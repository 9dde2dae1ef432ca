// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"sort"

	"github.com/gogpu/spvcross/spirv"
)

// ExtDecoration is an annotation added by analyses and backends. These never
// appear in SPIR-V input.
type ExtDecoration uint8

const (
	// ExtPhysicalType (member): type used for storage layout when packing
	// diverges from the logical member type.
	ExtPhysicalType ExtDecoration = iota + 1
	// ExtPacked (member): the member is a tightly packed vector.
	ExtPacked
	// ExtPaddingBefore (member): bytes of padding emitted before the member.
	ExtPaddingBefore
	// ExtResourceIndexPrimary (variable): assigned register, buffer, texture
	// or argument buffer slot.
	ExtResourceIndexPrimary
	// ExtResourceIndexSecondary (variable): sampler slot of a combined
	// image-sampler.
	ExtResourceIndexSecondary
	// ExtResourceIndexTertiary (variable): first extra plane slot of a
	// multi-planar image.
	ExtResourceIndexTertiary
	// ExtInterfaceMemberIndex (variable): member index inside a synthesized
	// interface struct.
	ExtInterfaceMemberIndex
	// ExtSynthetic (variable): the variable was introduced by a backend.
	ExtSynthetic
	// ExtDynamicOffsetIndex (variable): index into the dynamic offsets buffer.
	ExtDynamicOffsetIndex
	// ExtArgumentBufferID (variable): [[id(N)]] inside its argument buffer.
	ExtArgumentBufferID
)

// Decorations is the decoration set of one ID or struct member.
type Decorations struct {
	Name    string
	values  map[spirv.Decoration]uint32
	strings map[spirv.Decoration]string
	ext     map[ExtDecoration]uint32
	Members []*Decorations
}

func newDecorations() *Decorations {
	return &Decorations{
		values:  make(map[spirv.Decoration]uint32),
		strings: make(map[spirv.Decoration]string),
		ext:     make(map[ExtDecoration]uint32),
	}
}

// Kinds returns the SPIR-V decorations present, sorted.
func (d *Decorations) Kinds() []spirv.Decoration {
	if d == nil {
		return nil
	}
	out := make([]spirv.Decoration, 0, len(d.values)+len(d.strings))
	for k := range d.values {
		out = append(out, k)
	}
	for k := range d.strings {
		if _, dup := d.values[k]; !dup {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Decorations) member(i uint32) *Decorations {
	for Index(len(d.Members)) <= i {
		d.Members = append(d.Members, newDecorations())
	}
	return d.Members[i]
}

func (m *Module) decorationsFor(id ID) *Decorations {
	d, ok := m.decorations[id]
	if !ok {
		d = newDecorations()
		m.decorations[id] = d
	}
	return d
}

// Decorations returns the decoration set of id, or nil.
func (m *Module) Decorations(id ID) *Decorations {
	return m.decorations[id]
}

func (m *Module) checkDecorationTarget(id ID, dec spirv.Decoration) error {
	if id == 0 || uint32(id) >= m.Bound() || m.entities[id].kind == KindNone {
		return NewErrorAt(ErrUnknownID, id, 0, "decoration %s on unknown id", dec)
	}
	kind := m.entities[id].kind
	var want Kind
	switch dec {
	case spirv.DecorationBinding, spirv.DecorationDescriptorSet, spirv.DecorationInputAttachmentIndex:
		want = KindVariable
	case spirv.DecorationArrayStride, spirv.DecorationBlock, spirv.DecorationBufferBlock:
		want = KindType
	case spirv.DecorationSpecID:
		want = KindConstant
	default:
		return nil
	}
	if kind != want {
		return NewErrorAt(ErrKindMismatch, id, 0, "decoration %s requires a %s, found %s", dec, want, kind)
	}
	if dec == spirv.DecorationBlock || dec == spirv.DecorationBufferBlock {
		if _, ok := m.entities[id].obj.(*Type).Inner.(StructType); !ok {
			return NewErrorAt(ErrKindMismatch, id, 0, "decoration %s requires a struct type", dec)
		}
	}
	return nil
}

func (m *Module) checkMember(structID ID, member uint32) error {
	if structID == 0 || uint32(structID) >= m.Bound() || m.entities[structID].kind == KindNone {
		return NewErrorAt(ErrUnknownID, structID, 0, "member decoration on unknown id")
	}
	t, ok := m.entities[structID].obj.(*Type)
	if !ok {
		return NewErrorAt(ErrKindMismatch, structID, 0, "member decoration requires a struct type")
	}
	s, ok := t.Inner.(StructType)
	if !ok {
		return NewErrorAt(ErrKindMismatch, structID, 0, "member decoration requires a struct type")
	}
	if member >= Index(len(s.Members)) {
		return NewErrorAt(ErrKindMismatch, structID, 0, "member %d out of range", member)
	}
	return nil
}

// Decoration returns the value of a decoration on id.
func (m *Module) Decoration(id ID, dec spirv.Decoration) (uint32, bool) {
	d, ok := m.decorations[id]
	if !ok {
		return 0, false
	}
	v, ok := d.values[dec]
	return v, ok
}

// DecorationOr returns the value of a decoration, or def when absent.
func (m *Module) DecorationOr(id ID, dec spirv.Decoration, def uint32) uint32 {
	if v, ok := m.Decoration(id, dec); ok {
		return v
	}
	return def
}

// HasDecoration reports whether id carries a decoration.
func (m *Module) HasDecoration(id ID, dec spirv.Decoration) bool {
	d, ok := m.decorations[id]
	if !ok {
		return false
	}
	if _, ok := d.values[dec]; ok {
		return true
	}
	_, ok = d.strings[dec]
	return ok
}

// SetDecoration sets a decoration on id.
func (m *Module) SetDecoration(id ID, dec spirv.Decoration, value uint32) error {
	if err := m.checkDecorationTarget(id, dec); err != nil {
		return err
	}
	m.decorationsFor(id).values[dec] = value
	return nil
}

// UnsetDecoration removes a decoration from id.
func (m *Module) UnsetDecoration(id ID, dec spirv.Decoration) error {
	if err := m.checkDecorationTarget(id, dec); err != nil {
		return err
	}
	if d, ok := m.decorations[id]; ok {
		delete(d.values, dec)
		delete(d.strings, dec)
	}
	return nil
}

// DecorationString returns a string decoration such as UserTypeGOOGLE.
func (m *Module) DecorationString(id ID, dec spirv.Decoration) (string, bool) {
	d, ok := m.decorations[id]
	if !ok {
		return "", false
	}
	s, ok := d.strings[dec]
	return s, ok
}

// SetDecorationString sets a string decoration on id.
func (m *Module) SetDecorationString(id ID, dec spirv.Decoration, value string) error {
	if err := m.checkDecorationTarget(id, dec); err != nil {
		return err
	}
	m.decorationsFor(id).strings[dec] = value
	return nil
}

// MemberDecoration returns the value of a decoration on a struct member.
func (m *Module) MemberDecoration(structID ID, member uint32, dec spirv.Decoration) (uint32, bool) {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return 0, false
	}
	v, ok := d.Members[member].values[dec]
	return v, ok
}

// HasMemberDecoration reports whether a struct member carries a decoration.
func (m *Module) HasMemberDecoration(structID ID, member uint32, dec spirv.Decoration) bool {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return false
	}
	if _, ok := d.Members[member].values[dec]; ok {
		return true
	}
	_, ok = d.Members[member].strings[dec]
	return ok
}

// SetMemberDecoration sets a decoration on a struct member.
func (m *Module) SetMemberDecoration(structID ID, member uint32, dec spirv.Decoration, value uint32) error {
	if err := m.checkMember(structID, member); err != nil {
		return err
	}
	m.decorationsFor(structID).member(member).values[dec] = value
	return nil
}

// UnsetMemberDecoration removes a decoration from a struct member.
func (m *Module) UnsetMemberDecoration(structID ID, member uint32, dec spirv.Decoration) error {
	if err := m.checkMember(structID, member); err != nil {
		return err
	}
	d := m.decorationsFor(structID).member(member)
	delete(d.values, dec)
	delete(d.strings, dec)
	return nil
}

// MemberDecorationString returns a string decoration of a struct member.
func (m *Module) MemberDecorationString(structID ID, member uint32, dec spirv.Decoration) (string, bool) {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return "", false
	}
	s, ok := d.Members[member].strings[dec]
	return s, ok
}

// SetMemberDecorationString sets a string decoration on a struct member.
func (m *Module) SetMemberDecorationString(structID ID, member uint32, dec spirv.Decoration, value string) error {
	if err := m.checkMember(structID, member); err != nil {
		return err
	}
	m.decorationsFor(structID).member(member).strings[dec] = value
	return nil
}

// Name returns the debug name of id.
func (m *Module) Name(id ID) string {
	if d, ok := m.decorations[id]; ok {
		return d.Name
	}
	return ""
}

// SetName sets the debug name of id.
func (m *Module) SetName(id ID, name string) {
	m.decorationsFor(id).Name = name
}

// MemberName returns the debug name of a struct member.
func (m *Module) MemberName(structID ID, member uint32) string {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return ""
	}
	return d.Members[member].Name
}

// SetMemberName sets the debug name of a struct member.
func (m *Module) SetMemberName(structID ID, member uint32, name string) {
	m.decorationsFor(structID).member(member).Name = name
}

// ExtDecoration returns an extended annotation of id.
func (m *Module) ExtDecoration(id ID, ext ExtDecoration) (uint32, bool) {
	d, ok := m.decorations[id]
	if !ok {
		return 0, false
	}
	v, ok := d.ext[ext]
	return v, ok
}

// SetExtDecoration sets an extended annotation on id.
func (m *Module) SetExtDecoration(id ID, ext ExtDecoration, value uint32) {
	m.decorationsFor(id).ext[ext] = value
}

// UnsetExtDecoration removes an extended annotation from id.
func (m *Module) UnsetExtDecoration(id ID, ext ExtDecoration) {
	if d, ok := m.decorations[id]; ok {
		delete(d.ext, ext)
	}
}

// MemberExtDecoration returns an extended annotation of a struct member.
func (m *Module) MemberExtDecoration(structID ID, member uint32, ext ExtDecoration) (uint32, bool) {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return 0, false
	}
	v, ok := d.Members[member].ext[ext]
	return v, ok
}

// SetMemberExtDecoration sets an extended annotation on a struct member.
func (m *Module) SetMemberExtDecoration(structID ID, member uint32, ext ExtDecoration, value uint32) {
	m.decorationsFor(structID).member(member).ext[ext] = value
}

// UnsetMemberExtDecoration removes an extended annotation from a struct
// member.
func (m *Module) UnsetMemberExtDecoration(structID ID, member uint32, ext ExtDecoration) {
	d, ok := m.decorations[structID]
	if !ok || member >= Index(len(d.Members)) {
		return
	}
	delete(d.Members[member].ext, ext)
}

// BuiltIn returns the builtin decoration of a variable, or of its block type
// when the variable is a builtin block.
func (m *Module) BuiltIn(id ID) (spirv.BuiltIn, bool) {
	v, ok := m.Decoration(id, spirv.DecorationBuiltIn)
	return spirv.BuiltIn(v), ok
}

// MemberBuiltIn returns the builtin decoration of a struct member.
func (m *Module) MemberBuiltIn(structID ID, member uint32) (spirv.BuiltIn, bool) {
	v, ok := m.MemberDecoration(structID, member, spirv.DecorationBuiltIn)
	return spirv.BuiltIn(v), ok
}

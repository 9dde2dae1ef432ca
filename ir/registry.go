// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "strconv"

// typeInterner deduplicates synthetic types so that backends asking for the
// same structural type twice get the same ID. Types declared by the input are
// seeded lazily on first use.
type typeInterner struct {
	byKey  map[string]ID
	seeded bool
	keyBuf []byte
}

// AddType returns an ID for inner, reusing a structurally identical type when
// one exists. Struct types are never merged, since member decorations are
// part of their identity.
func (m *Module) AddType(inner TypeInner) ID {
	if m.types == nil {
		m.types = &typeInterner{byKey: make(map[string]ID)}
	}
	r := m.types
	if !r.seeded {
		for _, id := range m.GlobalOrder {
			if m.KindOf(id) == KindType {
				if _, isStruct := m.Inner(id).(StructType); !isStruct {
					key := m.innerKey(r, m.Inner(id))
					if _, exists := r.byKey[key]; !exists {
						r.byKey[key] = id
					}
				}
			}
		}
		r.seeded = true
	}
	_, isStruct := inner.(StructType)
	key := m.innerKey(r, inner)
	if !isStruct {
		if id, ok := r.byKey[key]; ok {
			return id
		}
	}
	id := m.AllocID()
	m.entities[id] = entity{kind: KindType, obj: &Type{ID: id, Inner: inner}}
	m.GlobalOrder = append(m.GlobalOrder, id)
	if !isStruct {
		r.byKey[key] = id
	}
	return id
}

// typeKey returns a structural key for a declared type.
func (m *Module) typeKey(id ID) string {
	if _, isStruct := m.Inner(id).(StructType); isStruct {
		return "struct:" + strconv.FormatUint(uint64(id), 10)
	}
	return m.innerKey(&typeInterner{}, m.Inner(id))
}

// innerKey creates a unique key for a type based on its structure. Two
// structurally identical types produce the same key.
func (m *Module) innerKey(r *typeInterner, inner TypeInner) string {
	b := r.keyBuf[:0]
	b = m.appendKey(b, inner)
	r.keyBuf = b
	return string(b)
}

func (m *Module) appendKey(b []byte, inner TypeInner) []byte {
	appendID := func(b []byte, id ID) []byte {
		if m.KindOf(id) != KindType {
			b = append(b, '#')
			return strconv.AppendUint(b, uint64(id), 10)
		}
		if _, isStruct := m.Inner(id).(StructType); isStruct {
			b = append(b, "struct#"...)
			return strconv.AppendUint(b, uint64(id), 10)
		}
		b = append(b, '(')
		b = m.appendKey(b, m.Inner(id))
		return append(b, ')')
	}
	switch t := inner.(type) {
	case VoidType:
		b = append(b, "void"...)
	case BoolType:
		b = append(b, "bool"...)
	case IntType:
		if t.Signed {
			b = append(b, 'i')
		} else {
			b = append(b, 'u')
		}
		b = strconv.AppendUint(b, uint64(t.Width), 10)
	case FloatType:
		b = append(b, 'f')
		b = strconv.AppendUint(b, uint64(t.Width), 10)
	case VectorType:
		b = append(b, "vec"...)
		b = strconv.AppendUint(b, uint64(t.Count), 10)
		b = appendID(b, t.Component)
	case MatrixType:
		b = append(b, "mat"...)
		b = strconv.AppendUint(b, uint64(t.Columns), 10)
		b = appendID(b, t.Column)
	case ArrayType:
		b = append(b, "array:"...)
		if c, err := m.Constant(t.Length); err == nil && !c.Spec {
			b = strconv.AppendUint(b, uint64(c.U32()), 10)
		} else {
			b = append(b, '#')
			b = strconv.AppendUint(b, uint64(t.Length), 10)
		}
		b = appendID(b, t.Element)
	case RuntimeArrayType:
		b = append(b, "rtarray"...)
		b = appendID(b, t.Element)
	case StructType:
		b = append(b, "struct{"...)
		for _, mem := range t.Members {
			b = appendID(b, mem)
		}
		b = append(b, '}')
	case ImageType:
		b = append(b, "image:"...)
		b = appendID(b, t.SampledType)
		for _, v := range []uint32{uint32(t.Dim), t.Depth, boolU32(t.Arrayed), boolU32(t.Multisampled),
			t.Sampled, uint32(t.Format), uint32(t.Access), boolU32(t.HasAccess)} {
			b = append(b, ',')
			b = strconv.AppendUint(b, uint64(v), 10)
		}
	case SamplerType:
		b = append(b, "sampler"...)
	case SampledImageType:
		b = append(b, "sampled"...)
		b = appendID(b, t.Image)
	case PointerType:
		b = append(b, "ptr:"...)
		b = strconv.AppendUint(b, uint64(t.Storage), 10)
		b = appendID(b, t.Pointee)
	case FunctionType:
		b = append(b, "fn"...)
		b = appendID(b, t.Return)
		for _, p := range t.Params {
			b = appendID(b, p)
		}
	case OpaqueType:
		b = append(b, "opaque:"...)
		b = append(b, t.Name...)
	}
	return b
}

func boolU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

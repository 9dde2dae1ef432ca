// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
)

// BindTarget specifies the HLSL register binding for a resource.
// HLSL uses register(x#, space#) syntax for resource binding.
type BindTarget struct {
	// Space is the register space (0-based).
	// Spaces allow multiple resources to use the same register index.
	Space uint32 `yaml:"space" toml:"space"`

	// Register is the register index within the space.
	Register uint32 `yaml:"register" toml:"register"`

	// SamplerRegister is the s register of a combined image-sampler. The
	// sampler shares Space.
	SamplerRegister uint32 `yaml:"samplerRegister,omitempty" toml:"sampler_register"`

	// BindingArraySize bounds a runtime-sized resource array.
	// If nil, the array is declared unbounded.
	BindingArraySize *uint32 `yaml:"bindingArraySize,omitempty" toml:"binding_array_size"`
}

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS

	// RegisterTypeU is for unordered access views (UAV).
	RegisterTypeU
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeB:
		return "b"
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	case RegisterTypeU:
		return "u"
	default:
		return "b"
	}
}

// Flag returns the AutoBinding bit of the register type.
func (rt RegisterType) Flag() AutoBinding {
	return AutoBinding(1) << rt
}

// AutoBinding selects register types whose automatically assigned
// registers are left to the D3D compiler instead of written out.
type AutoBinding uint8

const (
	// AutoBindCBV omits register clauses of constant buffers.
	AutoBindCBV AutoBinding = 1 << iota
	// AutoBindSRV omits register clauses of shader resource views.
	AutoBindSRV
	// AutoBindSampler omits register clauses of samplers.
	AutoBindSampler
	// AutoBindUAV omits register clauses of unordered access views.
	AutoBindUAV

	// AutoBindAll omits every automatic register clause.
	AutoBindAll = AutoBindCBV | AutoBindSRV | AutoBindSampler | AutoBindUAV
)

// RootConstant maps the byte range [Start, End) of the push constant
// block to its own constant buffer.
type RootConstant struct {
	Start   uint32 `yaml:"start" toml:"start"`
	End     uint32 `yaml:"end" toml:"end"`
	Binding uint32 `yaml:"binding" toml:"binding"`
	Space   uint32 `yaml:"space" toml:"space"`
}

func (rc RootConstant) String() string {
	return fmt.Sprintf("[%d, %d) -> register(b%d, space%d)", rc.Start, rc.End, rc.Binding, rc.Space)
}

// validateRootConstants checks that the ranges are 4-byte aligned,
// non-empty and disjoint.
func validateRootConstants(ranges []RootConstant) error {
	for i, a := range ranges {
		if a.Start%4 != 0 || a.End%4 != 0 {
			return ir.NewError(ir.ErrConflictingBinding, "root constant range %s is not 4-byte aligned", a)
		}
		if a.End <= a.Start {
			return ir.NewError(ir.ErrConflictingBinding, "root constant range %s is empty", a)
		}
		for _, b := range ranges[:i] {
			if a.Start < b.End && b.Start < a.End {
				return ir.NewError(ir.ErrConflictingBinding, "root constant ranges %s and %s overlap", b, a)
			}
		}
	}
	return nil
}

// rootConstantOwner is the allocator owner of root constant range k,
// outside the ID space of any module.
func rootConstantOwner(k int) ir.ID { return ir.ID(^uint32(k)) }

// binding is the register assignment of one resource variable.
type binding struct {
	res      cross.Resource
	regType  RegisterType
	target   BindTarget
	explicit bool
	// sampler marks combined image-samplers, which also take an s
	// register.
	sampler bool
}

// clause renders the register clause of the main register, or "" when
// it is left to the compiler.
func (b *binding) clause(w *writer) string {
	return w.registerClause(b.regType, b.target.Register, b.target.Space, b.explicit)
}

// samplerClause renders the register clause of the sampler half.
func (b *binding) samplerClause(w *writer) string {
	return w.registerClause(RegisterTypeS, b.target.SamplerRegister, b.target.Space, b.explicit)
}

func (w *writer) registerClause(rt RegisterType, reg, space uint32, explicit bool) string {
	if !explicit && w.opts.AutoBindings&rt.Flag() != 0 {
		return ""
	}
	if w.opts.ShaderModel.SupportsRegisterSpaces() {
		return fmt.Sprintf(" : register(%s%d, space%d)", rt, reg, space)
	}
	return fmt.Sprintf(" : register(%s%d)", rt, reg)
}

// assignRegisters resolves the register of every active resource.
// Overrides are claimed first so automatic registers never collide with
// them.
func (w *writer) assignRegisters() error {
	alloc := cross.NewAllocator()
	space := func(rt RegisterType, s uint32) string { return fmt.Sprintf("%s%d", rt, s) }
	var auto []*binding
	for k, rc := range w.opts.RootConstants {
		if err := alloc.Claim(space(RegisterTypeB, rc.Space), rc.Binding, 1, rootConstantOwner(k)); err != nil {
			return err
		}
	}
	for _, res := range w.resources {
		if res.Kind == cross.ResourcePushConstant && len(w.opts.RootConstants) > 0 {
			continue
		}
		b := &binding{res: res, regType: w.registerType(res), sampler: res.Kind == cross.ResourceCombinedImageSampler}
		w.bindings[res.Var] = b
		count := res.Count
		if res.Var == w.numWorkgroups {
			auto = append(auto, b)
			continue
		}
		if target, ok := w.opts.Bindings.Lookup(res.Key(w.ep.Model)); ok {
			b.target, b.explicit = target, true
			if count == 0 && target.BindingArraySize != nil {
				count = *target.BindingArraySize
			}
			if err := alloc.Claim(space(b.regType, target.Space), target.Register, count, res.Var); err != nil {
				return err
			}
			if b.sampler {
				if err := alloc.Claim(space(RegisterTypeS, target.Space), target.SamplerRegister, count, res.Var); err != nil {
					return err
				}
			}
			w.log.V(1).Info("register override", "resource", res.Name, "register", b.regType.String(), "slot", target.Register, "space", target.Space)
			continue
		}
		b.target.Space = res.Set
		if res.Kind == cross.ResourcePushConstant {
			b.target.Space = 0
		}
		auto = append(auto, b)
	}
	for _, b := range auto {
		count := b.res.Count
		if count == 0 {
			count = 1
		}
		b.target.Register = alloc.Next(space(b.regType, b.target.Space), count, b.res.Var)
		if b.sampler {
			b.target.SamplerRegister = alloc.Next(space(RegisterTypeS, b.target.Space), count, b.res.Var)
		}
		w.log.V(1).Info("register assigned", "resource", b.res.Name, "register", b.regType.String(), "slot", b.target.Register, "space", b.target.Space)
	}
	return nil
}

// registerType returns the register class a resource binds to under the
// storage buffer and SRV policies.
func (w *writer) registerType(res cross.Resource) RegisterType {
	switch res.Kind {
	case cross.ResourceUniformBuffer, cross.ResourcePushConstant:
		return RegisterTypeB
	case cross.ResourceSampler:
		return RegisterTypeS
	case cross.ResourceStorageBuffer:
		if w.isUAVBuffer(res) {
			return RegisterTypeU
		}
		return RegisterTypeT
	case cross.ResourceStorageImage, cross.ResourceStorageTexelBuffer:
		if w.storageImageAsSRV(res.Var) {
			return RegisterTypeT
		}
		return RegisterTypeU
	}
	return RegisterTypeT
}

// isUAVBuffer reports whether a storage buffer is declared read-write.
func (w *writer) isUAVBuffer(res cross.Resource) bool {
	if !res.ReadOnly || w.opts.ForceStorageBufferAsUAV {
		return true
	}
	if _, ok := w.structured[res.Var]; ok && w.structuredRW(res.Var) {
		return true
	}
	key := res.Key(w.ep.Model)
	for _, k := range w.opts.ForceUAV {
		if k == key {
			return true
		}
	}
	return false
}

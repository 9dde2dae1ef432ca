// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"slices"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// BindTarget specifies the Metal indices of a resource. Buffers use
// Buffer, images Texture and samplers Sampler; a combined image-sampler
// uses both Texture and Sampler. Inside an argument buffer the same
// fields hold the [[id(N)]] of the member.
type BindTarget struct {
	Buffer  uint32 `yaml:"buffer" toml:"buffer"`
	Texture uint32 `yaml:"texture" toml:"texture"`
	Sampler uint32 `yaml:"sampler" toml:"sampler"`

	// Count bounds a runtime-sized resource array.
	Count *uint32 `yaml:"count,omitempty" toml:"count"`
}

// Index spaces of discrete bindings.
const (
	spaceBuffer  = "buffer"
	spaceTexture = "texture"
	spaceSampler = "sampler"
)

// argSpace is the [[id(N)]] space of the argument buffer of a set.
func argSpace(set uint32) string { return fmt.Sprintf("arg%d", set) }

// binding is the index assignment of one resource variable.
type binding struct {
	res      cross.Resource
	target   BindTarget
	explicit bool
	// count is the array length with runtime arrays resolved.
	count uint32
	// planes is the number of textures a multi-planar image binds.
	planes uint32
	// argument marks resources declared inside an argument buffer.
	argument bool
	// inline marks uniform blocks embedded in their argument buffer.
	inline bool
	// constexpr replaces the sampler half with an inline sampler.
	constexpr *ConstexprSampler
}

// usesTexture reports whether the resource binds textures.
func (b *binding) usesTexture() bool {
	switch b.res.Kind {
	case cross.ResourceSampledImage, cross.ResourceStorageImage, cross.ResourceCombinedImageSampler,
		cross.ResourceUniformTexelBuffer, cross.ResourceStorageTexelBuffer, cross.ResourceSubpassInput:
		return true
	}
	return false
}

// usesSampler reports whether the resource binds a sampler slot.
func (b *binding) usesSampler() bool {
	switch b.res.Kind {
	case cross.ResourceSampler, cross.ResourceCombinedImageSampler:
		return b.constexpr == nil
	}
	return false
}

// usesBuffer reports whether the resource binds a buffer slot.
func (b *binding) usesBuffer() bool {
	return b.res.Kind.IsBuffer() || b.res.Kind == cross.ResourceAccelerationStructure
}

// auxOwner is the allocator owner of auxiliary buffer k, outside the ID
// space of any module.
func auxOwner(k int) ir.ID { return ir.ID(^uint32(k)) }

// argBufferOwner owns the buffer index of the argument buffer of a set.
func argBufferOwner(set uint32) ir.ID { return ir.ID(^uint32(64 + set)) }

// auxBuffer is a runtime-bound buffer the output declares.
type auxBuffer struct {
	name  string
	index uint32
}

// auxBuffers lists the auxiliary buffers of the entry point.
func (w *writer) auxBuffers() []auxBuffer {
	var out []auxBuffer
	add := func(on bool, name string, index uint32) {
		if on {
			out = append(out, auxBuffer{name, index})
		}
	}
	add(w.needsBufferSize, bufferSizeName, w.opts.BufferSizeBufferIndex)
	add(len(w.dynamic) > 0, dynamicOffsetsName, w.opts.DynamicOffsetsBufferIndex)
	add(w.tess != nil && w.tess.indirect, indirectParamsName, w.opts.IndirectParamsBufferIndex)
	add(w.tess != nil && w.tess.control, tessOutName, w.opts.ShaderOutputBufferIndex)
	add(w.tess != nil && w.tess.control && w.tess.patchOut, tessPatchOutName, w.opts.ShaderPatchOutputBufferIndex)
	add(w.tess != nil && (w.tess.control || w.tess.levelBuffer), tessLevelName, w.opts.ShaderTessFactorBufferIndex)
	add(w.tess != nil && w.tess.inputBuffer, tessInName, w.opts.ShaderInputBufferIndex)
	add(w.tess != nil && w.tess.patchInBuffer, tessPatchInName, w.opts.ShaderPatchInputBufferIndex)
	add(len(w.swizzled) > 0, swizzleName, w.opts.SwizzleBufferIndex)
	add(w.multiviewVertex(), viewMaskName, w.opts.ViewMaskBufferIndex)
	add(w.dispatchBase && !w.opts.Version.AtLeast(Version1_2), dispatchBaseName, w.opts.IndirectParamsBufferIndex)
	add(w.vertexKernel, tessOutName, w.opts.ShaderOutputBufferIndex)
	add(w.vertexKernel && w.opts.VertexIndexType != IndexTypeNone, indexBufferName, w.opts.ShaderIndexBufferIndex)
	return out
}

// assignBindings resolves the index of every active resource. Overrides,
// auxiliary buffers and argument buffers are claimed first so automatic
// indices never collide with them.
func (w *writer) assignBindings() error {
	alloc := cross.NewAllocator()
	for k, aux := range w.auxBuffers() {
		if err := alloc.Claim(spaceBuffer, aux.index, 1, auxOwner(k)); err != nil {
			return err
		}
	}
	for _, set := range w.argSets {
		if err := alloc.Claim(spaceBuffer, set, 1, argBufferOwner(set)); err != nil {
			return err
		}
	}
	var auto []*binding
	for _, res := range w.resources {
		b := &binding{res: res, count: res.Count, planes: 1}
		b.argument = w.inArgumentBuffer(res)
		b.constexpr = w.constexprSampler(res)
		if b.constexpr != nil && res.Kind == cross.ResourceCombinedImageSampler {
			b.planes = b.constexpr.planes()
		}
		b.inline = b.argument && res.Kind == cross.ResourceUniformBuffer && w.isInlineBlock(res)
		w.bindings[res.Var] = b
		target, ok := w.opts.Bindings.Lookup(res.Key(w.ep.Model))
		if ok && target.Count != nil && b.count == 0 {
			b.count = *target.Count
		}
		if b.count == 0 {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, res.Var, spirv.OpVariable,
				"runtime-sized resource array %q needs a binding count", res.Name)
		}
		if !ok {
			auto = append(auto, b)
			continue
		}
		b.target, b.explicit = target, true
		if err := w.claim(alloc, b); err != nil {
			return err
		}
		w.log.V(1).Info("binding override", "resource", res.Name, "buffer", target.Buffer,
			"texture", target.Texture, "sampler", target.Sampler, "argumentBuffer", b.argument)
	}
	for _, b := range auto {
		w.next(alloc, b)
		w.log.V(1).Info("binding assigned", "resource", b.res.Name, "buffer", b.target.Buffer,
			"texture", b.target.Texture, "sampler", b.target.Sampler, "argumentBuffer", b.argument)
	}
	return nil
}

// spaces returns the index spaces of the buffer, texture and sampler
// halves of a binding.
func (b *binding) spaces() (buffer, texture, sampler string) {
	if b.argument {
		s := argSpace(b.res.Set)
		return s, s, s
	}
	return spaceBuffer, spaceTexture, spaceSampler
}

func (w *writer) claim(alloc *cross.Allocator, b *binding) error {
	buf, tex, smp := b.spaces()
	v := b.res.Var
	if b.usesBuffer() {
		if err := alloc.Claim(buf, b.target.Buffer, b.count, v); err != nil {
			return err
		}
	}
	if b.usesTexture() {
		if err := alloc.Claim(tex, b.target.Texture, b.count*b.planes, v); err != nil {
			return err
		}
	}
	if b.usesSampler() {
		if err := alloc.Claim(smp, b.target.Sampler, b.count, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) next(alloc *cross.Allocator, b *binding) {
	buf, tex, smp := b.spaces()
	v := b.res.Var
	if b.usesBuffer() {
		b.target.Buffer = alloc.Next(buf, b.count, v)
	}
	if b.usesTexture() {
		b.target.Texture = alloc.Next(tex, b.count*b.planes, v)
	}
	if b.usesSampler() {
		b.target.Sampler = alloc.Next(smp, b.count, v)
	}
}

// inArgumentBuffer reports whether a resource is grouped into the
// argument buffer of its set.
func (w *writer) inArgumentBuffer(res cross.Resource) bool {
	if !w.opts.ArgumentBuffers || res.Kind == cross.ResourcePushConstant {
		return false
	}
	if res.Kind == cross.ResourceSubpassInput && w.opts.UseFramebufferFetchSubpasses {
		return false
	}
	return !slices.Contains(w.opts.DiscreteDescriptorSets, res.Set)
}

func (w *writer) isInlineBlock(res cross.Resource) bool {
	return slices.Contains(w.opts.InlineUniformBlocks, res.Key(w.ep.Model))
}

// constexprSampler returns the inline sampler replacing the sampler of a
// resource, by variable or by descriptor.
func (w *writer) constexprSampler(res cross.Resource) *ConstexprSampler {
	if res.Kind != cross.ResourceSampler && res.Kind != cross.ResourceCombinedImageSampler {
		return nil
	}
	if s, ok := w.opts.SamplerVars[res.Var]; ok {
		return &s
	}
	if s, ok := w.opts.ConstexprSamplers.Lookup(res.Key(w.ep.Model)); ok {
		return &s
	}
	return nil
}

// attribute renders the binding attribute of a discrete resource half.
func (b *binding) attribute(kind string) string {
	switch kind {
	case spaceTexture:
		return fmt.Sprintf("[[texture(%d)]]", b.target.Texture)
	case spaceSampler:
		return fmt.Sprintf("[[sampler(%d)]]", b.target.Sampler)
	}
	return fmt.Sprintf("[[buffer(%d)]]", b.target.Buffer)
}

// id returns the argument buffer [[id(N)]] of a resource half.
func (b *binding) id(kind string) uint32 {
	switch kind {
	case spaceTexture:
		return b.target.Texture
	case spaceSampler:
		return b.target.Sampler
	}
	return b.target.Buffer
}

// primary returns the index space of the main half of a resource.
func (b *binding) primary() string {
	switch {
	case b.usesBuffer():
		return spaceBuffer
	case b.usesTexture():
		return spaceTexture
	}
	return spaceSampler
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/cross"
)

func TestBindingHalves(t *testing.T) {
	combined := &binding{res: cross.Resource{Kind: cross.ResourceCombinedImageSampler}, target: BindTarget{Texture: 2, Sampler: 5}}
	assert.True(t, combined.usesTexture())
	assert.True(t, combined.usesSampler())
	assert.False(t, combined.usesBuffer())
	assert.Equal(t, spaceTexture, combined.primary())
	assert.Equal(t, "[[texture(2)]]", combined.attribute(spaceTexture))
	assert.Equal(t, "[[sampler(5)]]", combined.attribute(spaceSampler))

	combined.constexpr = &ConstexprSampler{}
	assert.False(t, combined.usesSampler(), "inline samplers take no slot")

	ssbo := &binding{res: cross.Resource{Kind: cross.ResourceStorageBuffer, Set: 2}, target: BindTarget{Buffer: 7}}
	assert.True(t, ssbo.usesBuffer())
	assert.Equal(t, spaceBuffer, ssbo.primary())
	assert.Equal(t, "[[buffer(7)]]", ssbo.attribute(spaceBuffer))
	assert.Equal(t, uint32(7), ssbo.id(spaceBuffer))

	buf, tex, smp := ssbo.spaces()
	assert.Equal(t, []string{spaceBuffer, spaceTexture, spaceSampler}, []string{buf, tex, smp})
	ssbo.argument = true
	buf, tex, smp = ssbo.spaces()
	assert.Equal(t, []string{"arg2", "arg2", "arg2"}, []string{buf, tex, smp})
}

func TestPadMember(t *testing.T) {
	assert.Equal(t, "texture2d<float> _m0_pad [[id(0)]]", padMember("_m0_pad", 0, 1, spaceTexture))
	assert.Equal(t, "array<sampler, 3> _m2_pad [[id(4)]]", padMember("_m2_pad", 4, 3, spaceSampler))
	assert.Equal(t, "constant uint* _m1_pad [[id(1)]] [2]", padMember("_m1_pad", 1, 2, spaceBuffer))
}

func TestArgumentBufferNames(t *testing.T) {
	assert.Equal(t, "spvDescriptorSetBuffer3", argStructName(3))
	assert.Equal(t, "spvDescriptorSet3", argParamName(3))
	assert.Equal(t, "[[id(12)]]", idAttr(12))
}

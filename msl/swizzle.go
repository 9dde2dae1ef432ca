// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

const swizzleName = "spvSwizzleConstants"

// PackSwizzle encodes a component swizzle as the swizzle buffer stores
// it: one byte per output component, red first.
func PackSwizzle(s [4]ComponentSwizzle) uint32 {
	var v uint32
	for i, c := range s {
		v |= uint32(c) << (8 * i)
	}
	return v
}

// scanSwizzle records the textures sampled with swizzling and the helper
// functions that sample them.
func (w *writer) scanSwizzle(fnID ir.ID, inst *ir.Instruction) {
	if !w.opts.SwizzleTextureSamples {
		return
	}
	m := w.m
	if img := w.imageOf(m.TypeOf(inst.Arg(0))); img.Dim == spirv.DimBuffer || img.IsStorage() {
		return
	}
	base := analysis.BaseVariable(m, inst.Arg(0))
	if base == 0 || m.KindOf(base) != ir.KindVariable {
		return
	}
	w.swizzled[base] = true
	w.fnSwizzle[fnID] = true
}

// swizzleConstant returns the swizzle buffer element of the texture an
// image operation reads, or "" when the texture is not swizzled.
func (w *writer) swizzleConstant(o *cross.ImageOp, img ir.ImageType) string {
	if !w.opts.SwizzleTextureSamples || img.Dim == spirv.DimBuffer || img.IsStorage() {
		return ""
	}
	base := analysis.BaseVariable(w.m, o.ImageID)
	if !w.swizzled[base] {
		unsupported(o.Inst, "texture swizzle of an image that is not a module-scope texture")
	}
	b := w.bindings[base]
	if b.argument {
		unsupported(o.Inst, "texture swizzle of %q inside an argument buffer", b.res.Name)
	}
	if w.isResourceArray(base) {
		unsupported(o.Inst, "texture swizzle of texture array %q", b.res.Name)
	}
	w.features |= FeatureTextureSwizzle
	return fmt.Sprintf("%s[%d]", swizzleName, b.target.Texture)
}

// swizzleEnum declares the swizzle encoding shared by the helpers.
func (w *writer) swizzleEnum(e *cross.Emitter) {
	e.Helper("spvSwizzle", func() string {
		return `enum class spvSwizzle : uint
{
    none = 0,
    zero,
    one,
    red,
    green,
    blue,
    alpha
};

template<typename T>
inline T spvGetSwizzle(vec<T, 4> x, T c, spvSwizzle s)
{
    switch (s)
    {
        case spvSwizzle::none:
            return c;
        case spvSwizzle::zero:
            return 0;
        case spvSwizzle::one:
            return 1;
        case spvSwizzle::red:
            return x.r;
        case spvSwizzle::green:
            return x.g;
        case spvSwizzle::blue:
            return x.b;
        case spvSwizzle::alpha:
            return x.a;
    }
    return c;
}`
	})
}

// swizzleSample applies the swizzle constant to a sampled or fetched
// value. Depth samples are scalars.
func (w *writer) swizzleSample(e *cross.Emitter, constant, value string) string {
	w.swizzleEnum(e)
	e.Helper("spvTextureSwizzle", func() string {
		return `template<typename T>
inline vec<T, 4> spvTextureSwizzle(vec<T, 4> x, uint s)
{
    if (!s)
    {
        return x;
    }
    return vec<T, 4>(spvGetSwizzle(x, x.r, spvSwizzle((s >> 0) & 0xFF)), spvGetSwizzle(x, x.g, spvSwizzle((s >> 8) & 0xFF)), spvGetSwizzle(x, x.b, spvSwizzle((s >> 16) & 0xFF)), spvGetSwizzle(x, x.a, spvSwizzle((s >> 24) & 0xFF)));
}

template<typename T>
inline T spvTextureSwizzle(T x, uint s)
{
    return spvTextureSwizzle(vec<T, 4>(x, 0, 0, 1), s).x;
}`
	})
	return cross.Call("spvTextureSwizzle", value, constant)
}

// swizzleGather gathers the source component the swizzle selects for
// component k. args are the gather arguments after the sampler.
func (w *writer) swizzleGather(e *cross.Emitter, o *cross.ImageOp, constant string, k uint32, args []string) string {
	w.swizzleEnum(e)
	e.Helper("spvGatherSwizzle", func() string {
		var b strings.Builder
		b.WriteString(`template<typename T, typename Tex, typename... Ts>
inline vec<T, 4> spvGatherSwizzle(const thread Tex& t, sampler s, uint sw, uint c, Ts... params)
{
    if (sw)
    {
        switch (spvSwizzle((sw >> (c * 8)) & 0xFF))
        {
            case spvSwizzle::none:
                break;
            case spvSwizzle::zero:
                return vec<T, 4>(0, 0, 0, 0);
            case spvSwizzle::one:
                return vec<T, 4>(1, 1, 1, 1);
`)
		for i, name := range []string{"red", "green", "blue", "alpha"} {
			fmt.Fprintf(&b, "            case spvSwizzle::%s:\n                return t.gather(s, params..., %s);\n", name, gatherComponents[i])
		}
		b.WriteString(`        }
    }
    switch (c)
    {
`)
		for i := 1; i < 4; i++ {
			fmt.Fprintf(&b, "        case %d:\n            return t.gather(s, params..., %s);\n", i, gatherComponents[i])
		}
		b.WriteString(`        default:
            return t.gather(s, params..., component::x);
    }
}`)
		return b.String()
	})
	elem := w.scalarName(w.m.ScalarOf(o.Inst.ResultType))
	call := []string{o.Image, o.Sampler, constant, fmt.Sprintf("%du", k)}
	return fmt.Sprintf("spvGatherSwizzle<%s>(%s)", elem, strings.Join(append(call, args...), ", "))
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/cross"
)

var (
	floatTypes = []string{"float", "float2", "float3", "float4"}
	intTypes   = []string{"int", "int2", "int3", "int4"}
	uintTypes  = []string{"uint", "uint2", "uint3", "uint4"}
)

// overloads instantiates tmpl once per type, substituting $T.
func overloads(tmpl string, types ...[]string) string {
	var b strings.Builder
	for _, list := range types {
		for _, t := range list {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(strings.ReplaceAll(tmpl, "$T", t))
		}
	}
	return b.String()
}

// PolyfillBody implements cross.Dialect. Every helper is overloaded for
// the vector widths it may be called with.
func (w *writer) PolyfillBody(p cross.Polyfill) string {
	switch p {
	case cross.PolyMod:
		return overloads(`$T spvMod($T x, $T y)
{
    return x - y * floor(x / y);
}
`, floatTypes)
	case cross.PolySMod:
		return overloads(`$T spvSmod($T x, $T y)
{
    $T r = x % y;
    return r + y * ($T)(r != 0) * ($T)((r < 0) != (y < 0));
}
`, intTypes)
	case cross.PolyInverse2:
		return inverse2
	case cross.PolyInverse3:
		return inverse3
	case cross.PolyInverse4:
		return inverse4
	case cross.PolyReflectScalar:
		return `float spvReflect(float i, float n)
{
    return i - 2.0f * n * i * n;
}
`
	case cross.PolyRefractScalar:
		return `float spvRefract(float i, float n, float eta)
{
    float nv = n * i;
    float k = 1.0f - eta * eta * (1.0f - nv * nv);
    if (k < 0.0f)
    {
        return 0.0f;
    }
    return eta * i - (eta * nv + sqrt(k)) * n;
}
`
	case cross.PolyFaceForwardScalar:
		return `float spvFaceforward(float n, float i, float nref)
{
    return i * nref < 0.0f ? n : -n;
}
`
	case cross.PolyPackHalf2x16:
		return `uint spvPackHalf2x16(float2 v)
{
    uint2 h = f32tof16(v);
    return h.x | (h.y << 16);
}
`
	case cross.PolyUnpackHalf2x16:
		return `float2 spvUnpackHalf2x16(uint v)
{
    return f16tof32(uint2(v & 0xffffu, v >> 16));
}
`
	case cross.PolyPackUnorm4x8:
		return `uint spvPackUnorm4x8(float4 v)
{
    uint4 b = uint4(round(saturate(v) * 255.0f));
    return b.x | (b.y << 8) | (b.z << 16) | (b.w << 24);
}
`
	case cross.PolyUnpackUnorm4x8:
		return `float4 spvUnpackUnorm4x8(uint v)
{
    uint4 b = uint4(v, v >> 8, v >> 16, v >> 24) & 0xffu;
    return float4(b) / 255.0f;
}
`
	case cross.PolyPackSnorm4x8:
		return `uint spvPackSnorm4x8(float4 v)
{
    int4 b = int4(round(clamp(v, -1.0f, 1.0f) * 127.0f)) & 0xff;
    return uint(b.x | (b.y << 8) | (b.z << 16) | (b.w << 24));
}
`
	case cross.PolyUnpackSnorm4x8:
		return `float4 spvUnpackSnorm4x8(uint v)
{
    int4 b = int4(uint4(v << 24, v << 16, v << 8, v)) >> 24;
    return clamp(float4(b) / 127.0f, -1.0f, 1.0f);
}
`
	case cross.PolyPackUnorm2x16:
		return `uint spvPackUnorm2x16(float2 v)
{
    uint2 b = uint2(round(saturate(v) * 65535.0f));
    return b.x | (b.y << 16);
}
`
	case cross.PolyUnpackUnorm2x16:
		return `float2 spvUnpackUnorm2x16(uint v)
{
    return float2(v & 0xffffu, v >> 16) / 65535.0f;
}
`
	case cross.PolyPackSnorm2x16:
		return `uint spvPackSnorm2x16(float2 v)
{
    int2 b = int2(round(clamp(v, -1.0f, 1.0f) * 32767.0f)) & 0xffff;
    return uint(b.x | (b.y << 16));
}
`
	case cross.PolyUnpackSnorm2x16:
		return `float2 spvUnpackSnorm2x16(uint v)
{
    int2 b = int2(uint2(v << 16, v)) >> 16;
    return clamp(float2(b) / 32767.0f, -1.0f, 1.0f);
}
`
	case cross.PolyBitfieldInsert:
		return overloads(`$T spvBitfieldInsert($T base, $T insert, uint offset, uint count)
{
    uint mask = count == 32u ? 0xffffffffu : (((1u << count) - 1u) << offset);
    return (base & ($T)~mask) | ((insert << offset) & ($T)mask);
}
`, intTypes, uintTypes)
	case cross.PolyBitfieldUExtract:
		return overloads(`$T spvBitfieldUExtract($T base, uint offset, uint count)
{
    uint mask = count == 32u ? 0xffffffffu : ((1u << count) - 1u);
    return (base >> offset) & ($T)mask;
}
`, intTypes, uintTypes)
	case cross.PolyBitfieldSExtract:
		signed := overloads(`$T spvBitfieldSExtract($T base, uint offset, uint count)
{
    if (count == 0u)
    {
        return ($T)0;
    }
    uint shift = 32u - count;
    return (base << (shift - offset)) >> shift;
}
`, intTypes)
		var unsigned []string
		for i, t := range uintTypes {
			unsigned = append(unsigned, fmt.Sprintf(`%s spvBitfieldSExtract(%s base, uint offset, uint count)
{
    return (%s)spvBitfieldSExtract((%s)base, offset, count);
}
`, t, t, t, intTypes[i]))
		}
		return signed + "\n" + strings.Join(unsigned, "\n")
	case cross.PolyOuterProduct:
		return outerProducts()
	case cross.PolyQuantizeF16:
		return overloads(`$T spvQuantizeF16($T v)
{
    return f16tof32(f32tof16(v));
}
`, floatTypes)
	}
	return ""
}

// outerProducts defines spvOuterProduct for every vector width pair. A
// product of an R-vector and a C-vector has C columns of R rows, stored
// as floatCxR.
func outerProducts() string {
	var defs []string
	for r := 2; r <= 4; r++ {
		for c := 2; c <= 4; c++ {
			cols := make([]string, c)
			for i := range cols {
				cols[i] = fmt.Sprintf("a * b[%d]", i)
			}
			defs = append(defs, fmt.Sprintf(`float%dx%d spvOuterProduct(float%d a, float%d b)
{
    return float%dx%d(%s);
}
`, c, r, r, c, c, r, strings.Join(cols, ", ")))
		}
	}
	return strings.Join(defs, "\n")
}

const inverse2 = `float2x2 spvInverse2(float2x2 m)
{
    float2x2 adj;
    adj[0][0] = m[1][1];
    adj[0][1] = -m[0][1];
    adj[1][0] = -m[1][0];
    adj[1][1] = m[0][0];
    float det = m[0][0] * m[1][1] - m[0][1] * m[1][0];
    return adj * (1.0f / det);
}
`

const inverse3 = `float3x3 spvInverse3(float3x3 m)
{
    float3 c0 = cross(m[1], m[2]);
    float3 c1 = cross(m[2], m[0]);
    float3 c2 = cross(m[0], m[1]);
    float det = dot(m[0], c0);
    return transpose(float3x3(c0, c1, c2)) * (1.0f / det);
}
`

const inverse4 = `float4x4 spvInverse4(float4x4 m)
{
    float b00 = m[0][0] * m[1][1] - m[0][1] * m[1][0];
    float b01 = m[0][0] * m[1][2] - m[0][2] * m[1][0];
    float b02 = m[0][0] * m[1][3] - m[0][3] * m[1][0];
    float b03 = m[0][1] * m[1][2] - m[0][2] * m[1][1];
    float b04 = m[0][1] * m[1][3] - m[0][3] * m[1][1];
    float b05 = m[0][2] * m[1][3] - m[0][3] * m[1][2];
    float b06 = m[2][0] * m[3][1] - m[2][1] * m[3][0];
    float b07 = m[2][0] * m[3][2] - m[2][2] * m[3][0];
    float b08 = m[2][0] * m[3][3] - m[2][3] * m[3][0];
    float b09 = m[2][1] * m[3][2] - m[2][2] * m[3][1];
    float b10 = m[2][1] * m[3][3] - m[2][3] * m[3][1];
    float b11 = m[2][2] * m[3][3] - m[2][3] * m[3][2];
    float det = b00 * b11 - b01 * b10 + b02 * b09 + b03 * b08 - b04 * b07 + b05 * b06;
    float4x4 r;
    r[0][0] = m[1][1] * b11 - m[1][2] * b10 + m[1][3] * b09;
    r[0][1] = m[0][2] * b10 - m[0][1] * b11 - m[0][3] * b09;
    r[0][2] = m[3][1] * b05 - m[3][2] * b04 + m[3][3] * b03;
    r[0][3] = m[2][2] * b04 - m[2][1] * b05 - m[2][3] * b03;
    r[1][0] = m[1][2] * b08 - m[1][0] * b11 - m[1][3] * b07;
    r[1][1] = m[0][0] * b11 - m[0][2] * b08 + m[0][3] * b07;
    r[1][2] = m[3][2] * b02 - m[3][0] * b05 - m[3][3] * b01;
    r[1][3] = m[2][0] * b05 - m[2][2] * b02 + m[2][3] * b01;
    r[2][0] = m[1][0] * b10 - m[1][1] * b08 + m[1][3] * b06;
    r[2][1] = m[0][1] * b08 - m[0][0] * b10 - m[0][3] * b06;
    r[2][2] = m[3][0] * b04 - m[3][1] * b02 + m[3][3] * b00;
    r[2][3] = m[2][1] * b02 - m[2][0] * b04 - m[2][3] * b00;
    r[3][0] = m[1][1] * b07 - m[1][0] * b09 - m[1][2] * b06;
    r[3][1] = m[0][0] * b09 - m[0][1] * b07 + m[0][2] * b06;
    r[3][2] = m[3][1] * b01 - m[3][0] * b03 - m[3][2] * b00;
    r[3][3] = m[2][0] * b03 - m[2][1] * b01 + m[2][2] * b00;
    return r * (1.0f / det);
}
`

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/cross"
)

// PolyfillBody implements cross.Dialect. Metal accepts templates, so the
// vector-width overloads other targets need collapse into one definition.
func (w *writer) PolyfillBody(p cross.Polyfill) string {
	switch p {
	case cross.PolyMod:
		return `template<typename Tx, typename Ty>
inline Tx spvMod(Tx x, Ty y)
{
    return x - y * floor(x / y);
}
`
	case cross.PolySMod:
		return `template<typename T>
inline T spvSmod(T x, T y)
{
    T r = x % y;
    return r + y * T(r != 0) * T((r < 0) != (y < 0));
}
`
	case cross.PolyInverse2:
		return inverse2
	case cross.PolyInverse3:
		return inverse3
	case cross.PolyInverse4:
		return inverse4
	case cross.PolyReflectScalar:
		return `template<typename T>
inline T spvReflect(T i, T n)
{
    return i - T(2) * i * n * n;
}
`
	case cross.PolyRefractScalar:
		return `template<typename T>
inline T spvRefract(T i, T n, T eta)
{
    T nv = n * i;
    T k = T(1) - eta * eta * (T(1) - nv * nv);
    if (k < T(0))
    {
        return T(0);
    }
    return eta * i - (eta * nv + sqrt(k)) * n;
}
`
	case cross.PolyFaceForwardScalar:
		return `template<typename T>
inline T spvFaceforward(T n, T i, T nref)
{
    return i * nref < T(0) ? n : -n;
}
`
	case cross.PolyPackHalf2x16:
		return `inline uint spvPackHalf2x16(float2 v)
{
    return as_type<uint>(half2(v));
}
`
	case cross.PolyUnpackHalf2x16:
		return `inline float2 spvUnpackHalf2x16(uint v)
{
    return float2(as_type<half2>(v));
}
`
	case cross.PolyFindLSB:
		return `template<typename T>
inline T spvFindLSB(T x)
{
    return select(ctz(x), T(-1), x == T(0));
}
`
	case cross.PolyFindMSB:
		return `template<typename T>
inline T spvFindMSB(T x)
{
    T v = select(x, T(-1) - x, x < T(0));
    return select(clz(T(0)) - (clz(v) + T(1)), T(-1), v == T(0));
}
`
	case cross.PolyOuterProduct:
		return outerProducts()
	case cross.PolyQuantizeF16:
		return `template<typename T>
inline T spvQuantizeF16(T v)
{
    return T(half(v));
}
`
	case cross.PolyBitfieldInsert:
		return `template<typename T>
inline T spvBitfieldInsert(T base, T insert, uint offset, uint count)
{
    return insert_bits(base, insert, offset, count);
}
`
	}
	return ""
}

// outerProducts defines spvOuterProduct for every vector width pair.
func outerProducts() string {
	var defs []string
	for r := 2; r <= 4; r++ {
		for c := 2; c <= 4; c++ {
			cols := make([]string, c)
			for i := range cols {
				cols[i] = fmt.Sprintf("a * b[%d]", i)
			}
			defs = append(defs, fmt.Sprintf(`inline float%dx%d spvOuterProduct(float%d a, float%d b)
{
    return float%dx%d(%s);
}
`, c, r, r, c, c, r, strings.Join(cols, ", ")))
		}
	}
	return strings.Join(defs, "\n")
}

const inverse2 = `inline float2x2 spvInverse2(float2x2 m)
{
    float2x2 adj;
    adj[0][0] = m[1][1];
    adj[0][1] = -m[0][1];
    adj[1][0] = -m[1][0];
    adj[1][1] = m[0][0];
    float det = m[0][0] * m[1][1] - m[0][1] * m[1][0];
    return adj * (1.0 / det);
}
`

const inverse3 = `inline float3x3 spvInverse3(float3x3 m)
{
    float3 c0 = cross(m[1], m[2]);
    float3 c1 = cross(m[2], m[0]);
    float3 c2 = cross(m[0], m[1]);
    float det = dot(m[0], c0);
    return transpose(float3x3(c0, c1, c2)) * (1.0 / det);
}
`

const inverse4 = `inline float4x4 spvInverse4(float4x4 m)
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
    return r * (1.0 / det);
}
`

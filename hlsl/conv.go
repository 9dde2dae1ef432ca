// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// intrinsics maps generic function names to HLSL. Names mapped to ""
// have no HLSL intrinsic and fall back to a polyfill or a custom
// lowering.
var intrinsics = map[string]string{
	// Math
	"round":       "round",
	"roundEven":   "round",
	"trunc":       "trunc",
	"abs":         "abs",
	"sign":        "sign",
	"floor":       "floor",
	"ceil":        "ceil",
	"fract":       "frac",
	"radians":     "radians",
	"degrees":     "degrees",
	"sin":         "sin",
	"cos":         "cos",
	"tan":         "tan",
	"asin":        "asin",
	"acos":        "acos",
	"atan":        "atan",
	"sinh":        "sinh",
	"cosh":        "cosh",
	"tanh":        "tanh",
	"asinh":       "",
	"acosh":       "",
	"atanh":       "",
	"atan2":       "atan2",
	"pow":         "pow",
	"exp":         "exp",
	"log":         "log",
	"exp2":        "exp2",
	"log2":        "log2",
	"sqrt":        "sqrt",
	"inversesqrt": "rsqrt",
	"determinant": "determinant",
	"min":         "min",
	"max":         "max",
	"clamp":       "clamp",
	"mix":         "lerp",
	"step":        "step",
	"smoothstep":  "smoothstep",
	"fma":         "mad",
	"ldexp":       "ldexp",
	"fmod":        "fmod",
	"modf":        "modf",
	"frexp":       "frexp",

	// Geometry
	"length":      "length",
	"distance":    "distance",
	"cross":       "cross",
	"normalize":   "normalize",
	"dot":         "dot",
	"reflect":     "reflect",
	"refract":     "refract",
	"faceforward": "faceforward",
	"transpose":   "transpose",

	// Relational
	"any":      "any",
	"all":      "all",
	"isnan":    "isnan",
	"isinf":    "isinf",
	"isfinite": "isfinite",

	// Derivatives
	"dFdx":         "ddx",
	"dFdy":         "ddy",
	"fwidth":       "fwidth",
	"dFdxFine":     "ddx_fine",
	"dFdyFine":     "ddy_fine",
	"fwidthFine":   "fwidth",
	"dFdxCoarse":   "ddx_coarse",
	"dFdyCoarse":   "ddy_coarse",
	"fwidthCoarse": "fwidth",

	// Interpolation
	"interpolateAtCentroid": "EvaluateAttributeAtCentroid",
	"interpolateAtSample":   "EvaluateAttributeAtSample",

	// Bits
	"bitCount":        "countbits",
	"bitfieldReverse": "reversebits",
	"findLSB":         "firstbitlow",
	"findMSB":         "firstbithigh",
}

// Intrinsic implements cross.Dialect.
func (w *writer) Intrinsic(name string) string {
	return intrinsics[name]
}

// MatrixMul implements cross.Dialect. HLSL matrices are the transposes
// of their SPIR-V counterparts, so every product swaps its operands.
func (w *writer) MatrixMul(e *cross.Emitter, op spirv.Op, a, b string) string {
	return cross.Call("mul", b, a)
}

// Select implements cross.Dialect.
func (w *writer) Select(e *cross.Emitter, t ir.ID, cond, a, b string) string {
	return cross.Enclose(cond) + " ? " + cross.Enclose(a) + " : " + cross.Enclose(b)
}

// NativeRowMajor implements cross.Dialect. Row-major members are declared
// with a packing keyword instead of being transposed on access.
func (w *writer) NativeRowMajor() bool { return true }

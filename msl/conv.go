// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// intrinsics maps generic function names to the Metal standard library.
// Names mapped to "" fall back to a polyfill or a custom lowering.
var intrinsics = map[string]string{
	// Math
	"round":       "round",
	"roundEven":   "rint",
	"trunc":       "trunc",
	"abs":         "abs",
	"sign":        "sign",
	"floor":       "floor",
	"ceil":        "ceil",
	"fract":       "fract",
	"radians":     "",
	"degrees":     "",
	"sin":         "sin",
	"cos":         "cos",
	"tan":         "tan",
	"asin":        "asin",
	"acos":        "acos",
	"atan":        "atan",
	"sinh":        "sinh",
	"cosh":        "cosh",
	"tanh":        "tanh",
	"asinh":       "asinh",
	"acosh":       "acosh",
	"atanh":       "atanh",
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
	"mix":         "mix",
	"step":        "step",
	"smoothstep":  "smoothstep",
	"fma":         "fma",
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

	// Derivatives. Metal has no fine or coarse variants.
	"dFdx":         "dfdx",
	"dFdy":         "dfdy",
	"fwidth":       "fwidth",
	"dFdxFine":     "dfdx",
	"dFdyFine":     "dfdy",
	"fwidthFine":   "fwidth",
	"dFdxCoarse":   "dfdx",
	"dFdyCoarse":   "dfdy",
	"fwidthCoarse": "fwidth",

	// Interpolation is lowered on the input itself.
	"interpolateAtCentroid": "",
	"interpolateAtSample":   "",
	"interpolateAtOffset":   "",

	// Bits
	"bitCount":         "popcount",
	"bitfieldReverse":  "reverse_bits",
	"bitfieldInsert":   "insert_bits",
	"bitfieldSExtract": "extract_bits",
	"bitfieldUExtract": "extract_bits",
	"findLSB":          "",
	"findMSB":          "",

	// Packing
	"packUnorm4x8":    "pack_float_to_unorm4x8",
	"unpackUnorm4x8":  "unpack_unorm4x8_to_float",
	"packSnorm4x8":    "pack_float_to_snorm4x8",
	"unpackSnorm4x8":  "unpack_snorm4x8_to_float",
	"packUnorm2x16":   "pack_float_to_unorm2x16",
	"unpackUnorm2x16": "unpack_unorm2x16_to_float",
	"packSnorm2x16":   "pack_float_to_snorm2x16",
	"unpackSnorm2x16": "unpack_snorm2x16_to_float",
	"packHalf2x16":    "",
	"unpackHalf2x16":  "",
	"outerProduct":    "",
}

// Intrinsic implements cross.Dialect.
func (w *writer) Intrinsic(name string) string {
	return intrinsics[name]
}

// MatrixMul implements cross.Dialect. Metal matrices are column-major
// like SPIR-V, so products keep their operand order.
func (w *writer) MatrixMul(e *cross.Emitter, op spirv.Op, a, b string) string {
	return cross.Binary("*", a, b)
}

// Select implements cross.Dialect. Vector selections use select, whose
// operands come in false, true, condition order.
func (w *writer) Select(e *cross.Emitter, t ir.ID, cond, a, b string) string {
	if w.m.IsVector(t) {
		return cross.Call("select", b, a, cond)
	}
	return cross.Enclose(cond) + " ? " + cross.Enclose(a) + " : " + cross.Enclose(b)
}

// NativeRowMajor implements cross.Dialect. Row-major members are stored
// transposed and transposed again on access.
func (w *writer) NativeRowMajor() bool { return false }

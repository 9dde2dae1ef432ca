// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

// UnnamedIdentifier is the name Escape gives empty identifiers.
const UnnamedIdentifier = "_unnamed"

// reservedKeywords contains the C++14 keywords, the Metal attribute and
// address space keywords, and the metal namespace functions a shader may
// shadow by accident.
var reservedKeywords = map[string]struct{}{
	// =========================================================================
	// C++ keywords
	// =========================================================================
	"alignas":          {},
	"alignof":          {},
	"and":              {},
	"and_eq":           {},
	"asm":              {},
	"auto":             {},
	"bitand":           {},
	"bitor":            {},
	"bool":             {},
	"break":            {},
	"case":             {},
	"catch":            {},
	"char":             {},
	"char16_t":         {},
	"char32_t":         {},
	"class":            {},
	"compl":            {},
	"const":            {},
	"const_cast":       {},
	"constexpr":        {},
	"continue":         {},
	"decltype":         {},
	"default":          {},
	"delete":           {},
	"do":               {},
	"double":           {},
	"dynamic_cast":     {},
	"else":             {},
	"enum":             {},
	"explicit":         {},
	"export":           {},
	"extern":           {},
	"false":            {},
	"float":            {},
	"for":              {},
	"friend":           {},
	"goto":             {},
	"if":               {},
	"inline":           {},
	"int":              {},
	"long":             {},
	"mutable":          {},
	"namespace":        {},
	"new":              {},
	"noexcept":         {},
	"not":              {},
	"not_eq":           {},
	"nullptr":          {},
	"operator":         {},
	"or":               {},
	"or_eq":            {},
	"private":          {},
	"protected":        {},
	"public":           {},
	"register":         {},
	"reinterpret_cast": {},
	"return":           {},
	"short":            {},
	"signed":           {},
	"sizeof":           {},
	"static":           {},
	"static_assert":    {},
	"static_cast":      {},
	"struct":           {},
	"switch":           {},
	"template":         {},
	"this":             {},
	"thread_local":     {},
	"throw":            {},
	"true":             {},
	"try":              {},
	"typedef":          {},
	"typeid":           {},
	"typename":         {},
	"union":            {},
	"unsigned":         {},
	"using":            {},
	"virtual":          {},
	"void":             {},
	"volatile":         {},
	"wchar_t":          {},
	"while":            {},
	"xor":              {},
	"xor_eq":           {},

	// =========================================================================
	// Metal keywords and namespaces
	// =========================================================================
	"metal":                  {},
	"simd":                   {},
	"raytracing":             {},
	"device":                 {},
	"constant":               {},
	"thread":                 {},
	"threadgroup":            {},
	"threadgroup_imageblock": {},
	"ray_data":               {},
	"object_data":            {},
	"kernel":                 {},
	"vertex":                 {},
	"fragment":               {},
	"compute":                {},
	"stage_in":               {},
	"patch":                  {},
	"visible":                {},
	"access":                 {},
	"sampler":                {},
	"texture":                {},
	"buffer":                 {},
	"array":                  {},
	"array_ref":              {},
	"vec":                    {},
	"matrix":                 {},
	"packed_vec":             {},
	"atomic":                 {},
	"atomic_int":             {},
	"atomic_uint":            {},
	"atomic_bool":            {},
	"atomic_float":           {},
	"size_t":                 {},
	"ptrdiff_t":              {},
	"uchar":                  {},
	"ushort":                 {},
	"uint":                   {},
	"ulong":                  {},
	"half":                   {},
	"bfloat":                 {},
	"int8_t":                 {},
	"int16_t":                {},
	"int32_t":                {},
	"int64_t":                {},
	"uint8_t":                {},
	"uint16_t":               {},
	"uint32_t":               {},
	"uint64_t":               {},
	"NAN":                    {},
	"INFINITY":               {},
	"M_PI_F":                 {},
	"main":                   {},

	// Texture types
	"texture1d":           {},
	"texture1d_array":     {},
	"texture2d":           {},
	"texture2d_array":     {},
	"texture2d_ms":        {},
	"texture2d_ms_array":  {},
	"texture3d":           {},
	"texturecube":         {},
	"texturecube_array":   {},
	"texture_buffer":      {},
	"depth2d":             {},
	"depth2d_array":       {},
	"depth2d_ms":          {},
	"depthcube":           {},
	"depthcube_array":     {},
	"patch_control_point": {},

	// Sampler enums
	"coord":         {},
	"filter":        {},
	"mip_filter":    {},
	"address":       {},
	"s_address":     {},
	"t_address":     {},
	"r_address":     {},
	"compare_func":  {},
	"border_color":  {},
	"mem_flags":     {},
	"component":     {},
	"level":         {},
	"bias":          {},
	"gradient2d":    {},
	"gradient3d":    {},
	"gradientcube":  {},
	"min_lod_clamp": {},

	// =========================================================================
	// metal namespace functions
	// =========================================================================
	"abs":                          {},
	"acos":                         {},
	"acosh":                        {},
	"all":                          {},
	"any":                          {},
	"as_type":                      {},
	"asin":                         {},
	"asinh":                        {},
	"atan":                         {},
	"atan2":                        {},
	"atanh":                        {},
	"ceil":                         {},
	"clamp":                        {},
	"clz":                          {},
	"cos":                          {},
	"cosh":                         {},
	"cross":                        {},
	"ctz":                          {},
	"determinant":                  {},
	"dfdx":                         {},
	"dfdy":                         {},
	"discard_fragment":             {},
	"distance":                     {},
	"dot":                          {},
	"exp":                          {},
	"exp2":                         {},
	"extract_bits":                 {},
	"faceforward":                  {},
	"floor":                        {},
	"fma":                          {},
	"fmax":                         {},
	"fmin":                         {},
	"fmod":                         {},
	"fract":                        {},
	"frexp":                        {},
	"fwidth":                       {},
	"insert_bits":                  {},
	"isfinite":                     {},
	"isinf":                        {},
	"isnan":                        {},
	"ldexp":                        {},
	"length":                       {},
	"log":                          {},
	"log2":                         {},
	"max":                          {},
	"min":                          {},
	"mix":                          {},
	"modf":                         {},
	"normalize":                    {},
	"popcount":                     {},
	"pow":                          {},
	"powr":                         {},
	"reflect":                      {},
	"refract":                      {},
	"reverse_bits":                 {},
	"rint":                         {},
	"round":                        {},
	"rsqrt":                        {},
	"saturate":                     {},
	"select":                       {},
	"sign":                         {},
	"sin":                          {},
	"sinh":                         {},
	"smoothstep":                   {},
	"sqrt":                         {},
	"step":                         {},
	"tan":                          {},
	"tanh":                         {},
	"transpose":                    {},
	"trunc":                        {},
	"threadgroup_barrier":          {},
	"simdgroup_barrier":            {},
	"atomic_fetch_add_explicit":    {},
	"atomic_load_explicit":         {},
	"atomic_store_explicit":        {},
	"simd_is_helper_thread":        {},
	"is_function_constant_defined": {},
	"quad_broadcast":               {},
	"simd_broadcast":               {},
	"simd_sum":                     {},
	"simd_ballot":                  {},
	"simd_shuffle":                 {},
}

// typeShorthands contains the Metal vector, packed vector and matrix
// spellings.
var typeShorthands = func() map[string]struct{} {
	result := make(map[string]struct{})
	vectorBases := []string{"bool", "char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "half", "float"}
	for _, base := range vectorBases {
		for i := 2; i <= 4; i++ {
			n := string(rune('0' + i))
			result[base+n] = struct{}{}
			result["packed_"+base+n] = struct{}{}
		}
	}
	for _, base := range []string{"half", "float"} {
		for c := 2; c <= 4; c++ {
			for r := 2; r <= 4; r++ {
				result[base+string(rune('0'+c))+"x"+string(rune('0'+r))] = struct{}{}
			}
		}
	}
	return result
}()

// IsReserved checks if a name is an MSL reserved identifier.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	_, ok := typeShorthands[name]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) {
		return "_" + name
	}
	return name
}

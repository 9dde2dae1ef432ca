// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnclose(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "a"},
		{"a.b[2].c", "a.b[2].c"},
		{"f(a + b, c)", "f(a + b, c)"},
		{"(a + b)", "(a + b)"},
		{"metal::min(a, b)", "metal::min(a, b)"},
		{"1.0e-05", "1.0e-05"},
		{"a + b", "(a + b)"},
		{"-a", "(-a)"},
		{"!a", "(!a)"},
		{"a ? b : c", "(a ? b : c)"},
		{"x-1", "(x-1)"},
		{"(a) + (b)", "((a) + (b))"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Enclose(tt.in), tt.in)
	}
}

func TestOperators(t *testing.T) {
	assert.Equal(t, "max(a, b)", Call("max", "a", "b"))
	assert.Equal(t, "f()", Call("f"))
	assert.Equal(t, "a + (b * c)", Binary("+", "a", "b * c"))
	assert.Equal(t, "-x", Unary("-", "x"))
	assert.Equal(t, "-(-x)", Unary("-", "-x"))
	assert.Equal(t, "!(a && b)", Unary("!", "a && b"))

	x := Expr{Text: "a * b"}
	assert.Equal(t, "(a * b)", x.Operand())
	x.Atomic = true
	assert.Equal(t, "a * b", x.Operand())
}

func TestFloatLiteral(t *testing.T) {
	tests := []struct {
		v      float64
		bits   int
		suffix string
		want   string
	}{
		{1, 32, "", "1.0"},
		{0.5, 32, "f", "0.5f"},
		{-2.25, 32, "h", "-2.25h"},
		{0, 32, "", "0.0"},
		{1e20, 64, "", "1.0e+20"},
		{1e-7, 32, "", "1.0e-07"},
		{1.5e-7, 32, "", "1.5e-07"},
		{math.Inf(1), 32, "", "(1.0 / 0.0)"},
		{math.Inf(-1), 32, "f", "(-1.0f / 0.0f)"},
		{math.NaN(), 32, "", "(0.0 / 0.0)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FloatLiteral(tt.v, tt.bits, tt.suffix))
	}
}

func TestHalfToFloat(t *testing.T) {
	assert.Equal(t, float32(1), halfToFloat(0x3c00))
	assert.Equal(t, float32(-2), halfToFloat(0xc000))
	assert.Equal(t, float32(65504), halfToFloat(0x7bff))
	assert.True(t, math.IsInf(float64(halfToFloat(0x7c00)), 1))
	assert.Equal(t, float32(0), halfToFloat(0))
}

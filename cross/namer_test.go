// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"color", "color"},
		{"", "_"},
		{"a.b", "a_b"},
		{"a..b", "a_b"},
		{"a__b", "a_b"},
		{"1st", "_1st"},
		{"héllo", "h_llo"},
		{"_12", "_12_"},
		{"spvBuffer", "_spvBuffer"},
		{"gl_Position", "_gl_Position"},
		{"SPIRV_Cross_Input", "_SPIRV_Cross_Input"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestNamerCall(t *testing.T) {
	n := NewNamer([]string{"float", "main"}, false)
	assert.Equal(t, "float_1", n.Call("float"))
	assert.Equal(t, "x", n.Call("x"))
	assert.Equal(t, "x_2", n.Call("x"))
	assert.Equal(t, "Float", n.Call("Float"), "case matters")
	assert.True(t, n.Taken("main"))
	assert.False(t, n.Taken("y"))
}

func TestNamerCaseInsensitive(t *testing.T) {
	n := NewNamer([]string{"Texture2D"}, true)
	assert.Equal(t, "texture2d_1", n.Call("texture2d"))
	assert.Equal(t, "color", n.Call("color"))
	assert.Equal(t, "COLOR_2", n.Call("COLOR"))
}

func TestNamerFork(t *testing.T) {
	n := NewNamer(nil, false)
	n.Reserve("a")
	f := n.Fork()
	assert.Equal(t, "a_1", f.Call("a"))
	assert.Equal(t, "b", f.Call("b"))
	assert.False(t, n.Taken("b"), "fork names stay local")
	assert.Equal(t, "a_2", n.Call("a"), "suffix counter is shared")
}

func TestNamerTempAndExact(t *testing.T) {
	n := NewNamer(nil, false)
	assert.Equal(t, "_7", n.Temp(7))
	assert.Equal(t, "_7_", n.Call("_7"))
	assert.True(t, n.Exact("gl_FragCoord"))
	assert.False(t, n.Exact("gl_FragCoord"))
}

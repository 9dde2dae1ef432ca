// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	var b Buffer
	assert.True(t, b.Empty())
	b.Open("void main%s", "()")
	b.Line("int x = %d;", 3)
	b.Open("if (x > 2)")
	b.Line("x = 0;")
	b.Close("")
	b.Close(";")
	b.Blank()

	want := "void main()\n{\n    int x = 3;\n    if (x > 2)\n    {\n        x = 0;\n    }\n};\n\n"
	assert.Equal(t, want, b.String())
	assert.Equal(t, 8, b.Lines())

	sub := b.Sub()
	sub.Line("tail")
	assert.Equal(t, "tail\n", sub.String())

	b.Reset()
	assert.True(t, b.Empty())
	b.Dedent()
	b.Raw("a\nb\n")
	assert.Equal(t, 2, b.Lines())
}

func TestBufferLiteralPercent(t *testing.T) {
	var b Buffer
	b.Text("x % 2;")
	b.Line("y %% %d;", 3)
	assert.Equal(t, "x % 2;\ny % 3;\n", b.String())
}

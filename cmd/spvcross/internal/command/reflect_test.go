// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
)

func TestReflectTable(t *testing.T) {
	in := writeShader(t, t.TempDir(), "ab.spv", testshaders.ArgumentBuffers())
	out, _, err := run(t, "reflect", in)
	require.NoError(t, err)
	assert.Contains(t, out, "main (Fragment)")
	assert.Contains(t, out, "DIRECTION")
	assert.Contains(t, out, "FragColor")
	assert.Contains(t, out, "RESOURCE")
	for _, name := range []string{"params", "tex", "samp", "extra", "detail"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "storage buffer")
	assert.NotContains(t, out, "\x1b[", "no color when writing to a buffer")
}

func TestReflectCompute(t *testing.T) {
	in := writeShader(t, t.TempDir(), "cs.spv", testshaders.NumWorkgroups())
	out, _, err := run(t, "reflect", in)
	require.NoError(t, err)
	assert.Contains(t, out, "main (GLCompute) local size 8 x 1 x 1")
	assert.Contains(t, out, "NumWorkgroups")
	assert.Contains(t, out, "_out")
}

func TestReflectFormats(t *testing.T) {
	in := writeShader(t, t.TempDir(), "ab.spv", testshaders.ArgumentBuffers())

	out, _, err := run(t, "reflect", "--format", "json", in)
	require.NoError(t, err)
	assert.Contains(t, out, `"stage": "Fragment"`)
	assert.Contains(t, out, `"kind": "storage buffer"`)

	out, _, err = run(t, "reflect", "-f", "yaml", in)
	require.NoError(t, err)
	assert.Contains(t, out, "entryPoints:")
	assert.Contains(t, out, "stage: Fragment")

	_, _, err = run(t, "reflect", "--format", "xml", in)
	assert.ErrorContains(t, err, "invalid --format")
}

func TestReflectColor(t *testing.T) {
	in := writeShader(t, t.TempDir(), "ab.spv", testshaders.ArgumentBuffers())
	out, _, err := run(t, "--color", "always", "reflect", in)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

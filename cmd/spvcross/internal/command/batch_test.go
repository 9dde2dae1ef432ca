// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
)

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, f := range testshaders.All() {
		if f.HLSL && f.MSL {
			inputs = append(inputs, writeShader(t, dir, f.Name+".spv", f.Words))
		}
	}
	outDir := filepath.Join(dir, "out")

	args := append([]string{"batch", "--out-dir", outDir, "-j", "4"}, inputs...)
	out, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "compiled")
	for _, in := range inputs {
		base := filepath.Base(in)
		base = base[:len(base)-len(".spv")]
		for _, ext := range []string{".hlsl", ".metal"} {
			_, err := os.Stat(filepath.Join(outDir, base+ext))
			assert.NoError(t, err, base+ext)
		}
	}
}

func TestBatchSingleTarget(t *testing.T) {
	dir := t.TempDir()
	in := writeShader(t, dir, "subgroup.spv", testshaders.Subgroup())
	outDir := filepath.Join(dir, "out")

	out, _, err := run(t, "batch", "--target", "msl", "--out-dir", outDir, in)
	require.NoError(t, err)
	assert.Equal(t, "compiled 1 outputs from 1 inputs into "+outDir+"\n", out)
	_, err = os.Stat(filepath.Join(outDir, "subgroup.metal"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "subgroup.hlsl"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeShader(t, dir, "v.spv", testshaders.VertexPassthrough())
	bad := writeShader(t, dir, "subgroup.spv", testshaders.Subgroup())

	_, _, err := run(t, "batch", "--out-dir", filepath.Join(dir, "out"), good, bad)
	require.Error(t, err, "subgroup operations need shader model 6.0")
	assert.Contains(t, err.Error(), "subgroup.spv")

	_, _, err = run(t, "batch", "--target", "glsl", good)
	assert.ErrorContains(t, err, "invalid --target")

	_, _, err = run(t, "batch")
	assert.Error(t, err)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/ir"
)

func TestCheckReportsRequiredModel(t *testing.T) {
	w := &writer{opts: &Options{ShaderModel: ShaderModel5_1}}

	err := w.check(ShaderModel.SupportsWaveOps, FeatureWaveOps, "wave intrinsics")
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
	assert.Contains(t, err.Error(), "wave intrinsics requires SM 6.0, targeting SM 5.1")
	assert.Equal(t, ShaderModel6_0, w.required)
	assert.True(t, w.features.Has(FeatureWaveOps))

	w.opts.ShaderModel = ShaderModel6_6
	require.NoError(t, w.check(ShaderModel.Supports64BitAtomics, Feature64BitAtomics, "64-bit atomics"))
	assert.Equal(t, ShaderModel6_6, w.required)

	// An older requirement keeps the highest one seen.
	require.NoError(t, w.check(ShaderModel.SupportsFloat16, FeatureFloat16, "16-bit types"))
	assert.Equal(t, ShaderModel6_6, w.required)
}

func TestNeedRaisesDuringEmission(t *testing.T) {
	w := &writer{opts: &Options{ShaderModel: ShaderModel5_1}}
	run := func(fn func()) (err error) {
		defer ir.Recover(&err)
		fn()
		return nil
	}

	err := run(func() { w.needSubgroup("WaveActiveSum") })
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)

	err = run(func() { w.needScalar(ir.Scalar{Kind: ir.ScalarSint, Width: 64}) })
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
	assert.Contains(t, err.Error(), "64-bit integers requires SM 6.0")

	w.opts.ShaderModel = ShaderModel6_0
	assert.NoError(t, run(func() { w.needScalar(ir.Scalar{Kind: ir.ScalarUint, Width: 64}) }))
	assert.True(t, w.features.Has(Feature64BitIntegers))
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/ir"
)

func TestCheckReportsRequiredVersion(t *testing.T) {
	w := &writer{opts: &Options{Version: Version1_2, Platform: PlatformMacOS}, required: Version1_0}

	err := w.check(Version2_0, FeatureArgumentBuffers, "argument buffers")
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)
	assert.Contains(t, err.Error(), "argument buffers requires MSL 2.0, targeting 1.2")
	assert.Equal(t, Version2_0, w.required)
	assert.True(t, w.features.Has(FeatureArgumentBuffers))

	require.NoError(t, w.check(Version1_1, 0, "gl_PointSize"))
	assert.Equal(t, Version2_0, w.required)
}

func TestCheckOnUsesPlatformMinimum(t *testing.T) {
	w := &writer{opts: &Options{Version: Version2_2, Platform: PlatformIOS}, required: Version1_0}
	err := w.checkOn(Version2_2, Version2_3, 0, "gl_Layer in fragment shaders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on iOS")

	w.opts.Platform = PlatformMacOS
	assert.NoError(t, w.checkOn(Version2_2, Version2_3, 0, "gl_Layer in fragment shaders"))
}

func TestNeedRaisesDuringEmission(t *testing.T) {
	w := &writer{opts: &Options{Version: Version2_1, Platform: PlatformMacOS}, required: Version1_0}
	run := func(fn func()) (err error) {
		defer ir.Recover(&err)
		fn()
		return nil
	}
	err := run(func() { w.needScalar(ir.Scalar{Kind: ir.ScalarSint, Width: 64}) })
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedShaderModel), "got %v", err)

	err = run(func() { w.needScalar(ir.Scalar{Kind: ir.ScalarFloat, Width: 64}) })
	assert.True(t, ir.IsKind(err, ir.ErrUnsupportedOpcode), "got %v", err)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// check records that the output uses a feature gated by supported and
// returns an error when the target shader model lacks it.
func (w *writer) check(supported func(ShaderModel) bool, feature FeatureFlags, what string) error {
	w.features |= feature
	if min := firstSupporting(supported); min > w.required {
		w.required = min
	}
	if !supported(w.opts.ShaderModel) {
		return ir.NewError(ir.ErrUnsupportedShaderModel, "%s requires %s, targeting %s",
			what, firstSupporting(supported), w.opts.ShaderModel)
	}
	return nil
}

// need is check for use while emitting function bodies.
func (w *writer) need(supported func(ShaderModel) bool, feature FeatureFlags, what string) {
	if err := w.check(supported, feature, what); err != nil {
		panic(err)
	}
}

// needScalar gates the scalar widths HLSL only has on newer models.
func (w *writer) needScalar(s ir.Scalar) {
	switch {
	case s.Width == 64 && s.Kind != ir.ScalarFloat:
		w.need(ShaderModel.Supports64BitIntegers, Feature64BitIntegers, "64-bit integers")
	case s.Width == 16 && w.opts.Enable16BitTypes:
		w.need(ShaderModel.SupportsFloat16, FeatureFloat16, "16-bit types")
	}
}

// needSubgroup gates wave intrinsics.
func (w *writer) needSubgroup(what string) {
	w.need(ShaderModel.SupportsWaveOps, FeatureWaveOps|FeatureSubgroupOps, what)
}

// unsupported fails translation of an instruction HLSL cannot express.
func unsupported(inst *ir.Instruction, format string, args ...any) {
	op := spirv.OpNop
	var id ir.ID
	if inst != nil {
		op, id = inst.Op, inst.Result
	}
	ir.RaiseAt(ir.ErrUnsupportedOpcode, id, op, format, args...)
}

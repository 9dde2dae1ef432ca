// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// check records that the output uses a feature available from language
// version min and returns an error when the target is older.
func (w *writer) check(min Version, feature FeatureFlags, what string) error {
	w.features |= feature
	if !w.required.AtLeast(min) {
		w.required = min
	}
	if !w.opts.Version.AtLeast(min) {
		return ir.NewError(ir.ErrUnsupportedShaderModel, "%s requires MSL %s, targeting %s", what, min, w.opts.Version)
	}
	return nil
}

// checkOn is check with a separate minimum for iOS.
func (w *writer) checkOn(macOS, iOS Version, feature FeatureFlags, what string) error {
	if w.opts.Platform == PlatformIOS {
		return w.check(iOS, feature, what+" on iOS")
	}
	return w.check(macOS, feature, what)
}

// need is check for use while emitting function bodies.
func (w *writer) need(min Version, feature FeatureFlags, what string) {
	if err := w.check(min, feature, what); err != nil {
		panic(err)
	}
}

// needOn is checkOn for use while emitting function bodies.
func (w *writer) needOn(macOS, iOS Version, feature FeatureFlags, what string) {
	if err := w.checkOn(macOS, iOS, feature, what); err != nil {
		panic(err)
	}
}

// needScalar gates the scalar types Metal lacks or restricts.
func (w *writer) needScalar(s ir.Scalar) {
	switch {
	case s.Kind == ir.ScalarFloat && s.Width == 64:
		ir.Raise(ir.ErrUnsupportedOpcode, "MSL has no 64-bit floating point type")
	case s.Kind == ir.ScalarFloat && s.Width == 16:
		w.features |= FeatureHalf
	case s.Width == 64:
		w.need(Version2_2, 0, "64-bit integers")
	}
}

// unsupported fails translation of an instruction MSL cannot express.
func unsupported(inst *ir.Instruction, format string, args ...any) {
	op := spirv.OpNop
	var id ir.ID
	if inst != nil {
		op, id = inst.Op, inst.Result
	}
	ir.RaiseAt(ir.ErrUnsupportedOpcode, id, op, format, args...)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// ImageOp is a decoded image instruction with its operands rendered.
type ImageOp struct {
	Inst *ir.Instruction
	Op   spirv.Op
	// Image and Sampler are the handle texts; Sampler is empty for
	// separate images.
	Image   string
	Sampler string
	// ImageID is the handle operand; ImageType its OpTypeImage.
	ImageID   ir.ID
	ImageType ir.ID

	Coord     string
	CoordID   ir.ID
	Dref      string
	Component string
	// Texel is the value written by OpImageWrite.
	Texel   string
	TexelID ir.ID

	Mask         spirv.ImageOperands
	Bias         string
	Lod          string
	LodID        ir.ID
	GradX        string
	GradY        string
	Offset       string
	ConstOffset  bool
	ConstOffsets string
	Sample       string
	MinLod       string
}

// Info returns the image type.
func (o *ImageOp) Info(m *ir.Module) ir.ImageType {
	return m.Inner(o.ImageType).(ir.ImageType)
}

// Proj reports whether the coordinate carries a projective divisor.
func (o *ImageOp) Proj() bool {
	switch o.Op {
	case spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod:
		return true
	}
	return false
}

// HasDref reports whether the operation compares against a reference.
func (o *ImageOp) HasDref() bool {
	switch o.Op {
	case spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod,
		spirv.OpImageDrefGather:
		return true
	}
	return false
}

// imageHandleType unwraps sampled-image and array types to the image.
func imageHandleType(m *ir.Module, t ir.ID) ir.ID {
	for {
		switch inner := m.Inner(t).(type) {
		case ir.SampledImageType:
			t = inner.Image
		case ir.ArrayType:
			t = inner.Element
		case ir.RuntimeArrayType:
			t = inner.Element
		case ir.PointerType:
			t = inner.Pointee
		default:
			return t
		}
	}
}

func (e *Emitter) parseImageOp(inst *ir.Instruction) *ImageOp {
	m := e.Module
	o := &ImageOp{Inst: inst, Op: inst.Op}
	handle := inst.Arg(0)
	x := e.Value(handle)
	o.Image, o.Sampler = x.Text, x.Sampler
	o.ImageID = handle
	o.ImageType = imageHandleType(m, e.TypeOf(handle))
	if _, ok := m.Inner(o.ImageType).(ir.ImageType); !ok {
		ir.RaiseAt(ir.ErrKindMismatch, inst.Result, inst.Op, "image operand is not an image")
	}
	switch inst.Op {
	case spirv.OpImageQuerySize, spirv.OpImageQueryLevels, spirv.OpImageQuerySamples:
		return o
	case spirv.OpImageQuerySizeLod:
		o.Lod, o.LodID = e.Text(inst.Arg(1)), inst.Arg(1)
		return o
	}
	o.CoordID = inst.Arg(1)
	o.Coord = e.Text(o.CoordID)
	switch inst.Op {
	case spirv.OpImageQueryLod:
		return o
	case spirv.OpImageWrite:
		o.TexelID = inst.Arg(2)
		o.Texel = e.Text(o.TexelID)
	case spirv.OpImageGather:
		o.Component = e.Text(inst.Arg(2))
	}
	if o.HasDref() {
		o.Dref = e.Text(inst.Arg(2))
	}
	k := inst.ImageOperandIndex()
	if k < 0 || k >= len(inst.Operands) {
		return o
	}
	o.Mask = spirv.ImageOperands(inst.Operands[k])
	next := k + 1
	arg := func() (string, ir.ID) {
		id := inst.Arg(next)
		next++
		return e.Text(id), id
	}
	if o.Mask&spirv.ImageOperandsBias != 0 {
		o.Bias, _ = arg()
	}
	if o.Mask&spirv.ImageOperandsLod != 0 {
		o.Lod, o.LodID = arg()
	}
	if o.Mask&spirv.ImageOperandsGrad != 0 {
		o.GradX, _ = arg()
		o.GradY, _ = arg()
	}
	if o.Mask&spirv.ImageOperandsConstOffset != 0 {
		o.Offset, _ = arg()
		o.ConstOffset = true
	}
	if o.Mask&spirv.ImageOperandsOffset != 0 {
		o.Offset, _ = arg()
	}
	if o.Mask&spirv.ImageOperandsConstOffsets != 0 {
		o.ConstOffsets, _ = arg()
	}
	if o.Mask&spirv.ImageOperandsSample != 0 {
		o.Sample, _ = arg()
	}
	if o.Mask&spirv.ImageOperandsMinLod != 0 {
		o.MinLod, _ = arg()
	}
	return o
}

// CoordComponents returns the number of coordinate components an image of
// this type addresses, including the array layer.
func CoordComponents(t ir.ImageType) int {
	n := 1
	switch t.Dim {
	case spirv.Dim2D, spirv.DimRect, spirv.DimSubpassData:
		n = 2
	case spirv.Dim3D, spirv.DimCube:
		n = 3
	}
	if t.Arrayed {
		n++
	}
	return n
}

// SizeComponents returns the number of components of a size query.
func SizeComponents(t ir.ImageType) int {
	n := 1
	switch t.Dim {
	case spirv.Dim2D, spirv.DimRect, spirv.DimCube, spirv.DimSubpassData:
		n = 2
	case spirv.Dim3D:
		n = 3
	}
	if t.Arrayed {
		n++
	}
	return n
}

// Split returns swizzles selecting the first n components of a vector and
// the component after them, for separating array layers or projective
// divisors.
func Split(n int) (head, last string) {
	return swizzleNames[:n], swizzleNames[n : n+1]
}

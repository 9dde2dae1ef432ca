// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"
	"math"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// ycbcrSampler returns the inline Y'CbCr sampler of a sampling
// operation, or nil.
func (w *writer) ycbcrSampler(o *cross.ImageOp) *ConstexprSampler {
	switch o.Op {
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod:
	default:
		return nil
	}
	b := w.bindings[analysis.BaseVariable(w.m, o.ImageID)]
	if b == nil || b.constexpr == nil || !b.constexpr.YCbCrConversionEnable {
		return nil
	}
	if b.res.Kind != cross.ResourceCombinedImageSampler {
		unsupported(o.Inst, "Y'CbCr conversion of a separate image")
	}
	return b.constexpr
}

// planeRef returns plane k of a multi-planar image. Plane 0 is the image
// itself.
func (w *writer) planeRef(e *cross.Emitter, v ir.ID, k int, image string) string {
	planes := w.planes[v]
	if k == 0 || k >= len(planes) {
		return image
	}
	if b := w.bindings[v]; b != nil && b.argument && e.InEntry() {
		return argParamName(b.res.Set) + "." + planes[k]
	}
	return planes[k]
}

// Y'CbCr model coefficients: the red and blue luma weights.
var ycbcrWeights = map[YCbCrModel][2]float64{
	ModelBT709:  {0.2126, 0.0722},
	ModelBT601:  {0.299, 0.114},
	ModelBT2020: {0.2627, 0.0593},
}

func ycbcrFloat(v float64) string { return cross.FloatLiteral(float64(float32(v)), 32, "") }

// sampleYCbCr samples the planes of a Y'CbCr image and converts the
// result to RGB. Y' lands in green, Cb in blue and Cr in red.
func (w *writer) sampleYCbCr(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType, s *ConstexprSampler) {
	inst := o.Inst
	if img.Dim != spirv.Dim2D || img.Arrayed || o.HasDref() || o.Proj() {
		unsupported(inst, "Y'CbCr conversion of this image operation")
	}
	base := analysis.BaseVariable(w.m, o.ImageID)
	coord, _ := w.coords(o, img, false)
	lod := w.lodOptions(o, img)
	sample := func(k int, c string) string {
		args := append([]string{o.Sampler, c}, lod...)
		return w.planeRef(e, base, k, o.Image) + "." + cross.Call("sample", args...)
	}
	chroma := func(k int) string {
		xs, ys := s.Resolution.subsampled()
		xs = xs && s.XChromaOffset == ChromaCositedEven
		ys = ys && s.YChromaOffset == ChromaCositedEven
		if !xs && !ys {
			return coord
		}
		off := fmt.Sprintf("float2(%s, %s)", ycbcrFloat(cosited(xs)), ycbcrFloat(cosited(ys)))
		plane := w.planeRef(e, base, k, o.Image)
		return fmt.Sprintf("%s + %s / float2(%s.get_width(), %s.get_height())", cross.Enclose(coord), off, plane, plane)
	}

	res := e.DeclareResult(inst.Result, inst.ResultType)
	switch s.planes() {
	case 1:
		e.Out.Line("%s = %s;", res, sample(0, coord))
	case 2:
		e.Out.Line("%s = float4(0.0, 0.0, 0.0, 1.0);", res)
		e.Out.Line("%s.g = %s.r;", res, sample(0, coord))
		e.Out.Line("%s.br = %s.rg;", res, sample(1, chroma(1)))
	case 3:
		e.Out.Line("%s = float4(0.0, 0.0, 0.0, 1.0);", res)
		e.Out.Line("%s.g = %s.r;", res, sample(0, coord))
		e.Out.Line("%s.b = %s.r;", res, sample(1, chroma(1)))
		e.Out.Line("%s.r = %s.r;", res, sample(2, chroma(2)))
	default:
		unsupported(inst, "Y'CbCr image with %d planes", s.planes())
	}
	w.ycbcrSwizzle(e, res, s)
	if s.YCbCrModel == ModelRGBIdentity {
		return
	}
	w.ycbcrRange(e, res, s)
	k, ok := ycbcrWeights[s.YCbCrModel]
	if !ok {
		return
	}
	kr, kb := k[0], k[1]
	kg := 1 - kr - kb
	e.Out.Line("%s.rgb = float3(%s.g + %s * %s.r, %s.g - %s * %s.b - %s * %s.r, %s.g + %s * %s.b);",
		res,
		res, ycbcrFloat(2-2*kr), res,
		res, ycbcrFloat(kb*(2-2*kb)/kg), res, ycbcrFloat(kr*(2-2*kr)/kg), res,
		res, ycbcrFloat(2-2*kb), res)
}

// cosited returns the normalized chroma texel shift of a cosited axis.
func cosited(on bool) float64 {
	if on {
		return 0.25
	}
	return 0
}

// ycbcrSwizzle applies the component swizzle of s.
func (w *writer) ycbcrSwizzle(e *cross.Emitter, res string, s *ConstexprSampler) {
	identity := true
	comps := make([]string, 4)
	for i, sw := range s.Swizzle {
		switch sw {
		case SwizzleIdentity:
			comps[i] = res + "." + "rgba"[i:i+1]
		case SwizzleZero:
			comps[i] = "0.0"
		case SwizzleOne:
			comps[i] = "1.0"
		default:
			comps[i] = res + "." + "rgba"[sw-SwizzleR:sw-SwizzleR+1]
		}
		if sw != SwizzleIdentity && (sw < SwizzleR || int(sw-SwizzleR) != i) {
			identity = false
		}
	}
	if !identity {
		e.Out.Line("%s = %s;", res, cross.Call("float4", comps...))
	}
}

// ycbcrRange expands encoded values to Y' in [0, 1] and chroma centered
// on zero.
func (w *writer) ycbcrRange(e *cross.Emitter, res string, s *ConstexprSampler) {
	n := float64(s.bpc())
	maxv := math.Exp2(n) - 1
	scale := math.Exp2(n - 8)
	if s.YCbCrRange == RangeITUFull {
		e.Out.Line("%s.rb -= %s;", res, ycbcrFloat(math.Exp2(n-1)/maxv))
		return
	}
	e.Out.Line("%s.g = (%s.g * %s - %s) / %s;", res, res,
		ycbcrFloat(maxv), ycbcrFloat(16*scale), ycbcrFloat(219*scale))
	e.Out.Line("%s.rb = (%s.rb * %s - %s) / %s;", res, res,
		ycbcrFloat(maxv), ycbcrFloat(128*scale), ycbcrFloat(224*scale))
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Instruction implements cross.Dialect.
func (w *writer) Instruction(e *cross.Emitter, inst *ir.Instruction) bool {
	switch inst.Op {
	case spirv.OpExtInst:
		return w.extInst(e, inst)
	case spirv.OpArrayLength:
		w.arrayLength(e, inst)
		return true
	case spirv.OpIsHelperInvocationEXT:
		w.needOn(Version2_3, Version2_3, FeatureHelperInvocation, "helper invocation queries")
		e.Bind(inst, "simd_is_helper_thread()")
		return true
	case spirv.OpDemoteToHelperInvocation:
		w.demote(e)
		return true
	}
	return false
}

// extInst lowers the GLSL.std.450 instructions Metal has no function for.
func (w *writer) extInst(e *cross.Emitter, inst *ir.Instruction) bool {
	set, err := w.m.ExtInstImport(inst.Arg(0))
	if err != nil || set != spirv.GLSLStd450ImportName {
		return false
	}
	ids := inst.IDOperands()
	switch op := spirv.GLSLStd450(inst.Literal(1)); op {
	case spirv.GLSLRadians, spirv.GLSLDegrees:
		name, factor := "spvRadians", "0.01745329251994329576923690768489"
		if op == spirv.GLSLDegrees {
			name, factor = "spvDegrees", "57.295779513082320876798154814105"
		}
		e.Helper(name, func() string {
			return fmt.Sprintf("template<typename T>\ninline T %s(T x)\n{\n    return x * T(%s);\n}", name, factor)
		})
		e.Bind(inst, cross.Call(name, e.Text(ids[0])))
	case spirv.GLSLInterpolateAtCentroid, spirv.GLSLInterpolateAtSample, spirv.GLSLInterpolateAtOffset:
		e.Bind(inst, w.interpolate(e, inst, op, ids))
	default:
		return false
	}
	return true
}

// interpolate reads an interpolant field at a centroid, sample or offset.
// Metal measures offsets from the pixel corner.
func (w *writer) interpolate(e *cross.Emitter, inst *ir.Instruction, op spirv.GLSLStd450, ids []ir.ID) string {
	p := e.PointerOf(ids[0])
	field, ok := w.interpFields[p.Root]
	if !ok {
		unsupported(inst, "interpolation of %q", e.Name(p.Root))
	}
	var text string
	switch op {
	case spirv.GLSLInterpolateAtCentroid:
		text = field + ".interpolate_at_centroid()"
	case spirv.GLSLInterpolateAtSample:
		text = fmt.Sprintf("%s.interpolate_at_sample(%s)", field, e.Text(ids[1]))
	default:
		text = fmt.Sprintf("%s.interpolate_at_offset(%s + 0.4375)", field, e.Operand(ids[1]))
	}
	switch {
	case len(p.Steps) == 0:
		return text
	case len(p.Steps) == 1 && p.Steps[0].Const >= 0 && p.Steps[0].Const < 4:
		return text + "." + "xyzw"[p.Steps[0].Const:p.Steps[0].Const+1]
	}
	unsupported(inst, "interpolation of a dynamically indexed input")
	return ""
}

// =============================================================================
// Images
// =============================================================================

// Image implements cross.Dialect.
func (w *writer) Image(e *cross.Emitter, o *cross.ImageOp) {
	m := w.m
	img := o.Info(m)
	inst := o.Inst
	if s := w.ycbcrSampler(o); s != nil {
		w.sampleYCbCr(e, o, img, s)
		return
	}
	switch o.Op {
	case spirv.OpImageFetch, spirv.OpImageRead:
		if img.Dim == spirv.DimSubpassData {
			w.subpassRead(e, o, img)
			return
		}
		text := w.read(e, o, img)
		if c := w.swizzleConstant(o, img); c != "" {
			text = w.swizzleSample(e, c, text)
		}
		e.BindMemory(inst, w.depthResult(e, img, inst.ResultType, text))
	case spirv.OpImageWrite:
		w.write(e, o, img)
	case spirv.OpImageGather, spirv.OpImageDrefGather:
		e.BindMemory(inst, w.gather(e, o, img))
	case spirv.OpImageQuerySize, spirv.OpImageQuerySizeLod:
		e.BindTemp(inst.Result, inst.ResultType, w.querySize(e, o, img))
	case spirv.OpImageQueryLevels:
		if img.Multisampled || img.IsStorage() || img.Dim == spirv.DimBuffer {
			unsupported(inst, "mip level query of an image without mipmaps")
		}
		e.Bind(inst, w.Cast(e, inst.ResultType, o.Image+".get_num_mip_levels()"))
	case spirv.OpImageQuerySamples:
		if !img.Multisampled {
			unsupported(inst, "sample count query of a single-sampled image")
		}
		e.Bind(inst, w.Cast(e, inst.ResultType, o.Image+".get_num_samples()"))
	case spirv.OpImageQueryLod:
		if o.Sampler == "" {
			unsupported(inst, "level of detail query without a sampler")
		}
		w.needOn(Version2_2, Version2_3, 0, "level of detail queries")
		if w.emulatedCube(img) {
			unsupported(inst, "level of detail query of an emulated cube array")
		}
		coord, _ := w.coords(o, img, false)
		e.BindMemory(inst, fmt.Sprintf("float2(%s.calculate_clamped_lod(%s, %s), %s.calculate_unclamped_lod(%s, %s))",
			o.Image, o.Sampler, coord, o.Image, o.Sampler, coord))
	default:
		text := w.sample(e, o, img)
		if o.HasDref() {
			e.BindMemory(inst, w.depthResult(e, img, inst.ResultType, text))
			return
		}
		if c := w.swizzleConstant(o, img); c != "" {
			text = w.swizzleSample(e, c, text)
		}
		e.BindMemory(inst, w.depthResult(e, img, inst.ResultType, text))
	}
}

// spatialDims returns the coordinate components of an image without the
// array layer.
func spatialDims(img ir.ImageType) int {
	n := cross.CoordComponents(img)
	if img.Arrayed {
		n--
	}
	return n
}

// coords splits a coordinate into its spatial part and array layer.
// Integer coordinates are converted to unsigned; float layers round to
// the nearest layer.
func (w *writer) coords(o *cross.ImageOp, img ir.ImageType, integer bool) (coord, layer string) {
	m := w.m
	d := spatialDims(img)
	if img.Dim == spirv.DimBuffer {
		d = 1
	}
	size := ir.Position(m.VectorSize(m.TypeOf(o.CoordID)))
	c := cross.Enclose(o.Coord)
	switch {
	case o.Proj():
		head, last := cross.Split(d)
		coord = fmt.Sprintf("%s.%s / %s.%s", c, head, c, last)
	case size > d:
		coord = c + "." + "xyzw"[:d]
		if img.Arrayed {
			layer = c + "." + "xyzw"[d:d+1]
		}
	default:
		coord = o.Coord
	}
	if integer {
		coord = uintVector(coord, d)
		if layer != "" {
			layer = "uint(" + layer + ")"
		}
	} else if layer != "" {
		layer = "uint(round(" + layer + "))"
	}
	return coord, layer
}

func uintVector(text string, n int) string {
	if n == 1 {
		return "uint(" + text + ")"
	}
	return fmt.Sprintf("uint%d(%s)", n, text)
}

// depthResult widens the scalar result of a depth texture read to the
// vector SPIR-V expects.
func (w *writer) depthResult(e *cross.Emitter, img ir.ImageType, t ir.ID, text string) string {
	if img.Depth != 1 || img.IsStorage() || !w.m.IsVector(t) {
		return text
	}
	return w.TypeName(e, t) + "(" + text + ")"
}

// sample lowers the OpImageSample family.
func (w *writer) sample(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) string {
	if o.Sampler == "" {
		unsupported(o.Inst, "sampling an image without a sampler")
	}
	coord, layer := w.coords(o, img, false)
	if w.emulatedCube(img) {
		if o.GradX != "" {
			unsupported(o.Inst, "gradient sampling of an emulated cube array")
		}
		coord, layer = w.cubeFace(e, coord, layer)
	}
	args := []string{o.Sampler, coord}
	if layer != "" {
		args = append(args, layer)
	}
	method := "sample"
	if o.HasDref() {
		method = "sample_compare"
		dref := o.Dref
		if o.Proj() {
			_, last := cross.Split(spatialDims(img))
			dref = fmt.Sprintf("%s / %s.%s", cross.Enclose(dref), cross.Enclose(o.Coord), last)
		}
		args = append(args, dref)
	}
	args = append(args, w.lodOptions(o, img)...)
	if o.Offset != "" && img.Dim != spirv.DimCube && img.Dim != spirv.Dim1D {
		args = append(args, o.Offset)
	}
	return o.Image + "." + cross.Call(method, args...)
}

// lodOptions renders the level of detail arguments of a sample. One
// dimensional textures have no mipmaps.
func (w *writer) lodOptions(o *cross.ImageOp, img ir.ImageType) []string {
	if img.Dim == spirv.Dim1D {
		return nil
	}
	var out []string
	switch {
	case o.Bias != "":
		out = append(out, "bias("+o.Bias+")")
	case o.Lod != "" && o.HasDref() && img.Arrayed && img.Dim == spirv.Dim2D && w.opts.SampleDrefLodArrayAsGrad:
		grad := fmt.Sprintf("exp2(%s - 0.5) / float2(%s.get_width(), %s.get_height())", o.Lod, o.Image, o.Image)
		out = append(out, fmt.Sprintf("gradient2d(%s, %s)", grad, grad))
	case o.Lod != "":
		out = append(out, "level("+o.Lod+")")
	case o.GradX != "":
		switch img.Dim {
		case spirv.Dim3D:
			out = append(out, fmt.Sprintf("gradient3d(%s, %s)", o.GradX, o.GradY))
		case spirv.DimCube:
			out = append(out, fmt.Sprintf("gradientcube(%s, %s)", o.GradX, o.GradY))
		default:
			out = append(out, fmt.Sprintf("gradient2d(%s, %s)", o.GradX, o.GradY))
		}
	}
	if o.MinLod != "" {
		w.needOn(Version2_2, Version2_3, 0, "minimum level of detail clamps")
		out = append(out, "min_lod_clamp("+o.MinLod+")")
	}
	return out
}

// read lowers image fetches and storage image reads.
func (w *writer) read(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) string {
	if img.Dim == spirv.DimBuffer {
		return fmt.Sprintf("%s.read(%s)", o.Image, w.texelCoord(e, o.Coord))
	}
	coord, layer := w.coords(o, img, true)
	if w.emulatedCube(img) {
		coord, layer = cubeTexel(o.Coord)
	}
	if o.Offset != "" {
		d := spatialDims(img)
		head := o.Coord
		if img.Arrayed {
			head = cross.Enclose(o.Coord) + "." + "xyzw"[:d]
		}
		coord = uintVector(cross.Binary("+", head, o.Offset), d)
	}
	args := []string{coord}
	if layer != "" {
		args = append(args, layer)
	}
	switch {
	case img.Multisampled:
		args = append(args, o.Sample)
	case o.Lod != "" && img.Dim != spirv.Dim1D && !img.IsStorage():
		args = append(args, o.Lod)
	}
	return o.Image + "." + cross.Call("read", args...)
}

// texelCoord converts a texel buffer index to the texture coordinate.
// Without native texture buffers the buffer is a 2D texture of fixed row
// width.
func (w *writer) texelCoord(e *cross.Emitter, index string) string {
	if w.opts.TextureBufferNative {
		return "uint(" + index + ")"
	}
	e.Helper("spvTexelBufferCoord", func() string {
		return fmt.Sprintf("inline uint2 spvTexelBufferCoord(uint tc)\n{\n    return uint2(tc %% %d, tc / %d);\n}",
			w.opts.TexelBufferTextureWidth, w.opts.TexelBufferTextureWidth)
	})
	return "spvTexelBufferCoord(" + index + ")"
}

// subpassRead reads the fragment's own pixel of an input attachment.
func (w *writer) subpassRead(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) {
	inst := o.Inst
	if w.opts.UseFramebufferFetchSubpasses {
		e.BindMemory(inst, o.Image)
		return
	}
	if w.fragCoord == "" {
		unsupported(inst, "subpass read without a fragment position")
	}
	args := []string{fmt.Sprintf("uint2(%s.xy)", w.fragCoord)}
	if w.opts.ArrayedSubpassInput {
		if w.layer == "" {
			unsupported(inst, "arrayed subpass read without a layer index")
		}
		args = append(args, w.layer)
	}
	if img.Multisampled {
		args = append(args, o.Sample)
	}
	e.BindMemory(inst, o.Image+"."+cross.Call("read", args...))
}

// write lowers OpImageWrite. Metal writes four-component texels.
func (w *writer) write(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) {
	m := w.m
	t := m.TypeOf(o.TexelID)
	texel := o.Texel
	if n := m.VectorSize(t); n < 4 {
		s := m.ScalarOf(t)
		args := []string{texel}
		for k := n; k < 4; k++ {
			if k == 3 {
				args = append(args, w.literal(s, 1))
			} else {
				args = append(args, w.literal(s, 0))
			}
		}
		texel = cross.Call(w.scalarName(s)+"4", args...)
	}
	args := []string{texel}
	if img.Dim == spirv.DimBuffer {
		args = append(args, w.texelCoord(e, o.Coord))
	} else {
		coord, layer := w.coords(o, img, true)
		if w.emulatedCube(img) {
			coord, layer = cubeTexel(o.Coord)
		}
		args = append(args, coord)
		if layer != "" {
			args = append(args, layer)
		}
	}
	e.Statement("%s.%s;", o.Image, cross.Call("write", args...))
	if w.opts.ReadWriteTextureFences && w.imageAccess(o.ImageID) == accessReadWrite {
		e.Out.Line("%s.fence();", o.Image)
	}
}

// imageAccess returns the access qualifier of the image behind id.
func (w *writer) imageAccess(id ir.ID) string {
	m := w.m
	base := analysis.BaseVariable(m, id)
	if base == 0 {
		return accessOf(w.imageOf(m.TypeOf(id)))
	}
	if a, ok := w.paramAccess[base]; ok {
		return a
	}
	if b := w.bindings[base]; b != nil {
		return w.resourceAccess(b.res)
	}
	return accessOf(w.imageOf(m.TypeOf(id)))
}

var gatherComponents = [4]string{"component::x", "component::y", "component::z", "component::w"}

// gather lowers OpImageGather and OpImageDrefGather.
func (w *writer) gather(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) string {
	inst := o.Inst
	if o.Sampler == "" {
		unsupported(inst, "gather without a sampler")
	}
	if o.ConstOffsets != "" {
		unsupported(inst, "gather with four offsets")
	}
	coord, layer := w.coords(o, img, false)
	cube := img.Dim == spirv.DimCube
	if w.emulatedCube(img) {
		coord, layer = w.cubeFace(e, coord, layer)
		cube = false
	}
	args := []string{o.Sampler, coord}
	if layer != "" {
		args = append(args, layer)
	}
	if o.Dref != "" {
		args = append(args, o.Dref)
		if o.Offset != "" {
			args = append(args, o.Offset)
		}
		return o.Image + "." + cross.Call("gather_compare", args...)
	}
	k := w.m.MustConstant(inst.Arg(2)).U32()
	if k > 3 {
		unsupported(inst, "gather component %d", k)
	}
	if c := w.swizzleConstant(o, img); c != "" {
		params := args[1:]
		if !cube {
			offset := o.Offset
			if offset == "" {
				offset = "int2(0)"
			}
			params = append(params, offset)
		}
		return w.swizzleGather(e, o, c, k, params)
	}
	offset := o.Offset
	if offset == "" && k > 0 && !cube {
		offset = "int2(0)"
	}
	if offset != "" && !cube {
		args = append(args, offset)
	}
	if k > 0 {
		args = append(args, gatherComponents[k])
	}
	return o.Image + "." + cross.Call("gather", args...)
}

// querySize lowers size queries to the get_* accessors.
func (w *writer) querySize(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) string {
	t := o.Inst.ResultType
	if img.Dim == spirv.DimBuffer {
		size := o.Image + ".get_width()"
		if !w.opts.TextureBufferNative {
			size = fmt.Sprintf("(%s.get_width() * %s.get_height())", o.Image, o.Image)
		}
		return w.Cast(e, t, size)
	}
	lod := ""
	if o.Lod != "" && !img.Multisampled && !img.IsStorage() && img.Dim != spirv.Dim1D {
		lod = "uint(" + o.Lod + ")"
	}
	var parts []string
	get := func(what string) {
		parts = append(parts, fmt.Sprintf("%s.get_%s(%s)", o.Image, what, lod))
	}
	get("width")
	switch img.Dim {
	case spirv.Dim2D, spirv.DimRect, spirv.DimCube, spirv.DimSubpassData:
		get("height")
	case spirv.Dim3D:
		get("height")
		get("depth")
	}
	switch {
	case w.emulatedCube(img):
		parts = append(parts, o.Image+".get_array_size() / 6")
	case img.Arrayed:
		parts = append(parts, o.Image+".get_array_size()")
	}
	if len(parts) == 1 {
		return w.Cast(e, t, parts[0])
	}
	s := w.m.ScalarOf(t)
	for i, p := range parts {
		parts[i] = cross.Call(w.scalarName(s), p)
	}
	return cross.Call(w.TypeName(e, t), parts...)
}

// =============================================================================
// Subgroups
// =============================================================================

// subgroupReductions maps reductions to the Metal function suffix and
// whether a prefix scan exists.
var subgroupReductions = map[spirv.Op]struct {
	fn   string
	scan bool
}{
	spirv.OpGroupNonUniformIAdd:       {"sum", true},
	spirv.OpGroupNonUniformFAdd:       {"sum", true},
	spirv.OpGroupNonUniformIMul:       {"product", true},
	spirv.OpGroupNonUniformFMul:       {"product", true},
	spirv.OpGroupNonUniformSMin:       {"min", false},
	spirv.OpGroupNonUniformUMin:       {"min", false},
	spirv.OpGroupNonUniformFMin:       {"min", false},
	spirv.OpGroupNonUniformSMax:       {"max", false},
	spirv.OpGroupNonUniformUMax:       {"max", false},
	spirv.OpGroupNonUniformFMax:       {"max", false},
	spirv.OpGroupNonUniformBitwiseAnd: {"and", false},
	spirv.OpGroupNonUniformBitwiseOr:  {"or", false},
	spirv.OpGroupNonUniformBitwiseXor: {"xor", false},
	spirv.OpGroupNonUniformLogicalAnd: {"all", false},
	spirv.OpGroupNonUniformLogicalOr:  {"any", false},
}

// subgroupPrefix gates subgroup functions and returns their prefix. iOS
// without simdgroup functions falls back to quadgroups.
func (w *writer) subgroupPrefix(what string) string {
	if w.quadMode() {
		w.need(Version2_0, FeatureQuadGroup, what)
		return "quad_"
	}
	if w.ep.Model != spirv.ExecutionModelGLCompute && (w.tess == nil || !w.tess.control) {
		w.needOn(Version2_1, Version2_2, FeatureSimdGroup, what+" outside compute")
	} else {
		w.needOn(Version2_0, Version2_2, FeatureSimdGroup, what)
	}
	return "simd_"
}

// Subgroup implements cross.Dialect with simdgroup or quadgroup
// functions.
func (w *writer) Subgroup(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	ids := inst.IDOperands()
	if c, err := m.Constant(ids[0]); err == nil && c.U32() != uint32(spirv.ScopeSubgroup) {
		unsupported(inst, "%s outside subgroup scope", inst.Op)
	}
	if w.opts.EmulateSubgroups {
		e.BindTemp(inst.Result, inst.ResultType, w.emulatedSubgroup(e, inst, ids))
		return
	}
	arg := func(i int) string { return e.Text(ids[i]) }
	var text string
	switch inst.Op {
	case spirv.OpGroupNonUniformQuadBroadcast:
		w.need(Version2_0, FeatureQuadGroup, "quad broadcast")
		text = cross.Call("quad_broadcast", arg(1), arg(2))
	case spirv.OpGroupNonUniformQuadSwap:
		w.need(Version2_0, FeatureQuadGroup, "quad swap")
		dir := m.MustConstant(ids[2]).U32()
		if dir > 2 {
			unsupported(inst, "quad swap direction %d", dir)
		}
		text = cross.Call("quad_shuffle_xor", arg(1), fmt.Sprintf("%du", dir+1))
	default:
		text = w.subgroupOp(e, inst, ids, w.subgroupPrefix(inst.Op.String()))
	}
	e.BindTemp(inst.Result, inst.ResultType, text)
}

func (w *writer) subgroupOp(e *cross.Emitter, inst *ir.Instruction, ids []ir.ID, prefix string) string {
	m := w.m
	arg := func(i int) string { return e.Text(ids[i]) }
	fn := func(name string, args ...string) string { return cross.Call(prefix+name, args...) }
	switch inst.Op {
	case spirv.OpGroupNonUniformElect:
		w.need(Version2_1, 0, "subgroup elect")
		return fn("is_first")
	case spirv.OpGroupNonUniformAll:
		return fn("all", arg(1))
	case spirv.OpGroupNonUniformAny:
		return fn("any", arg(1))
	case spirv.OpGroupNonUniformAllEqual:
		t := e.TypeOf(ids[1])
		x := e.Operand(ids[1])
		if m.ScalarOf(t).Kind == ir.ScalarBool {
			return fmt.Sprintf("%s || !%s", fn("all", x), fn("any", x))
		}
		eq := cross.Binary("==", x, fn("broadcast_first", x))
		if m.IsVector(t) {
			return cross.Call("all", eq)
		}
		return eq
	case spirv.OpGroupNonUniformBroadcast:
		return fn("broadcast", arg(1), "ushort("+arg(2)+")")
	case spirv.OpGroupNonUniformBroadcastFirst:
		return fn("broadcast_first", arg(1))
	case spirv.OpGroupNonUniformShuffle:
		return fn("shuffle", arg(1), "ushort("+arg(2)+")")
	case spirv.OpGroupNonUniformShuffleXor:
		return fn("shuffle_xor", arg(1), "ushort("+arg(2)+")")
	case spirv.OpGroupNonUniformShuffleUp:
		return fn("shuffle_up", arg(1), "ushort("+arg(2)+")")
	case spirv.OpGroupNonUniformShuffleDown:
		return fn("shuffle_down", arg(1), "ushort("+arg(2)+")")
	case spirv.OpGroupNonUniformBallot:
		return w.ballot(e, prefix) + "(" + arg(1) + ")"
	case spirv.OpGroupNonUniformInverseBallot:
		unsupported(inst, "inverse ballot")
	case spirv.OpGroupNonUniformBallotBitExtract:
		return ballotBit(e.Operand(ids[1]), e.Operand(ids[2]))
	case spirv.OpGroupNonUniformBallotBitCount:
		if g, _ := inst.GroupOperation(); g != spirv.GroupOperationReduce {
			unsupported(inst, "ballot bit count scans")
		}
		v := e.Operand(ids[1])
		return fmt.Sprintf("popcount(%s.x) + popcount(%s.y) + popcount(%s.z) + popcount(%s.w)", v, v, v, v)
	case spirv.OpGroupNonUniformBallotFindLSB:
		v := e.Operand(ids[1])
		return fmt.Sprintf("(%s.x != 0u ? ctz(%s.x) : %s.y != 0u ? 32u + ctz(%s.y) : %s.z != 0u ? 64u + ctz(%s.z) : 96u + ctz(%s.w))",
			v, v, v, v, v, v, v)
	case spirv.OpGroupNonUniformBallotFindMSB:
		v := e.Operand(ids[1])
		return fmt.Sprintf("(%s.w != 0u ? 127u - clz(%s.w) : %s.z != 0u ? 95u - clz(%s.z) : %s.y != 0u ? 63u - clz(%s.y) : 31u - clz(%s.x))",
			v, v, v, v, v, v, v)
	}
	r, ok := subgroupReductions[inst.Op]
	if !ok {
		unsupported(inst, "%s", inst.Op)
	}
	g, _ := inst.GroupOperation()
	switch g {
	case spirv.GroupOperationReduce:
		return fn(r.fn, arg(1))
	case spirv.GroupOperationInclusiveScan, spirv.GroupOperationExclusiveScan:
		if !r.scan {
			unsupported(inst, "%s scans", inst.Op)
		}
		kind := "inclusive"
		if g == spirv.GroupOperationExclusiveScan {
			kind = "exclusive"
		}
		return fn(fmt.Sprintf("prefix_%s_%s", kind, r.fn), arg(1))
	}
	unsupported(inst, "clustered %s", inst.Op)
	return ""
}

// ballot returns the helper converting a vote to a SPIR-V ballot.
func (w *writer) ballot(e *cross.Emitter, prefix string) string {
	name := "spvSubgroupBallot"
	body := `inline uint4 spvSubgroupBallot(bool value)
{
    simd_vote vote = simd_ballot(value);
    return uint4(as_type<uint2>((simd_vote::vote_t)vote), 0, 0);
}`
	if prefix == "quad_" {
		name = "spvQuadBallot"
		body = `inline uint4 spvQuadBallot(bool value)
{
    return uint4((uint)(quad_vote::vote_t)quad_ballot(value), 0, 0, 0);
}`
	}
	e.Helper(name, func() string { return body })
	return name
}

// ballotBit tests bit index of a uint4 ballot.
func ballotBit(ballot, index string) string {
	i := cross.Enclose(index)
	return fmt.Sprintf("((%s[%s / 32u] >> (%s %% 32u)) & 1u) != 0u", ballot, i, i)
}

// emulatedSubgroup lowers subgroup instructions for subgroups of one
// invocation.
func (w *writer) emulatedSubgroup(e *cross.Emitter, inst *ir.Instruction, ids []ir.ID) string {
	m := w.m
	arg := func(i int) string { return e.Text(ids[i]) }
	switch inst.Op {
	case spirv.OpGroupNonUniformElect, spirv.OpGroupNonUniformAllEqual:
		return "true"
	case spirv.OpGroupNonUniformAll, spirv.OpGroupNonUniformAny,
		spirv.OpGroupNonUniformBroadcast, spirv.OpGroupNonUniformBroadcastFirst,
		spirv.OpGroupNonUniformShuffle, spirv.OpGroupNonUniformShuffleXor,
		spirv.OpGroupNonUniformShuffleUp, spirv.OpGroupNonUniformShuffleDown,
		spirv.OpGroupNonUniformQuadBroadcast, spirv.OpGroupNonUniformQuadSwap:
		return arg(1)
	case spirv.OpGroupNonUniformBallot:
		return fmt.Sprintf("uint4(%s ? 1u : 0u, 0u, 0u, 0u)", e.Operand(ids[1]))
	case spirv.OpGroupNonUniformBallotBitExtract:
		return ballotBit(e.Operand(ids[1]), e.Operand(ids[2]))
	case spirv.OpGroupNonUniformBallotBitCount:
		g, _ := inst.GroupOperation()
		if g == spirv.GroupOperationExclusiveScan {
			return "0u"
		}
		return fmt.Sprintf("(%s.x & 1u)", e.Operand(ids[1]))
	case spirv.OpGroupNonUniformBallotFindLSB, spirv.OpGroupNonUniformBallotFindMSB:
		return "0u"
	}
	if _, ok := subgroupReductions[inst.Op]; !ok {
		unsupported(inst, "%s", inst.Op)
	}
	if g, _ := inst.GroupOperation(); g == spirv.GroupOperationExclusiveScan {
		t := inst.ResultType
		switch inst.Op {
		case spirv.OpGroupNonUniformIAdd, spirv.OpGroupNonUniformFAdd:
			return w.Zero(e, t)
		case spirv.OpGroupNonUniformIMul, spirv.OpGroupNonUniformFMul:
			one := w.literal(m.ScalarOf(t), 1)
			if m.IsVector(t) {
				return cross.Call(w.TypeName(e, t), one)
			}
			return one
		}
		unsupported(inst, "exclusive %s scans", inst.Op)
	}
	return arg(1)
}

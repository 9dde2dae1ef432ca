// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/gogpu/spvcross/spirv"
)

// resultColumn is the width of the "%id = " field; opcodes line up after it.
const resultColumn = 15

type disOptions struct {
	// Friendly names IDs after their OpName instead of their number.
	Friendly bool
	// Color highlights opcodes, IDs and literals.
	Color bool
}

type numType struct {
	width  uint32
	float  bool
	signed bool
}

type disassembler struct {
	w     io.Writer
	opts  disOptions
	names map[uint32]string
	// numeric scalar types by ID, for decoding constant literals.
	types map[uint32]numType

	opColor, idColor, litColor func(a ...any) string
}

func newDisassembler(w io.Writer, opts disOptions) *disassembler {
	d := &disassembler{w: w, opts: opts, types: make(map[uint32]numType)}
	plain := func(a ...any) string { return fmt.Sprint(a...) }
	d.opColor, d.idColor, d.litColor = plain, plain, plain
	if opts.Color {
		d.opColor = colorFunc(color.FgCyan, color.Bold)
		d.idColor = colorFunc(color.FgYellow)
		d.litColor = colorFunc(color.FgGreen)
	}
	return d
}

func colorFunc(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.SprintFunc()
}

// disassemble writes the assembly text of a module.
func disassemble(w io.Writer, words []uint32, opts disOptions) error {
	header, err := spirv.DecodeHeader(words)
	if err != nil {
		return err
	}
	insts, err := spirv.Instructions(words)
	if err != nil {
		return err
	}
	d := newDisassembler(w, opts)
	if opts.Friendly {
		d.names = friendlyNames(insts)
	}
	fmt.Fprintf(w, "; SPIR-V\n; Version: %s\n; Generator: 0x%08X\n; Bound: %d\n; Schema: %d\n",
		header.Version, header.Generator, header.Bound, header.Schema)
	for i := range insts {
		d.instruction(&insts[i])
	}
	return nil
}

// friendlyNames derives unique identifier-safe names from OpName.
func friendlyNames(insts []spirv.RawInstruction) map[uint32]string {
	names := make(map[uint32]string)
	taken := make(map[string]bool)
	for _, inst := range insts {
		if inst.Op != spirv.OpName || len(inst.Operands) < 2 {
			continue
		}
		s, _ := spirv.DecodeString(inst.Operands[1:])
		base := sanitizeName(s)
		if base == "" {
			continue
		}
		name := base
		for n := 1; taken[name] || isNumeric(name); n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		names[inst.Operands[0]] = name
	}
	return names
}

func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

func (d *disassembler) id(v uint32) string {
	if n, ok := d.names[v]; ok {
		return d.idColor("%" + n)
	}
	return d.idColor("%" + strconv.FormatUint(uint64(v), 10))
}

func (d *disassembler) lit(v uint32) string { return d.litColor(strconv.FormatUint(uint64(v), 10)) }

func (d *disassembler) str(words []uint32) (string, int) {
	s, n := spirv.DecodeString(words)
	return d.litColor(strconv.Quote(s)), n
}

func (d *disassembler) ids(words []uint32) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = d.id(w)
	}
	return out
}

func (d *disassembler) lits(words []uint32) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = d.lit(w)
	}
	return out
}

func (d *disassembler) instruction(inst *spirv.RawInstruction) {
	hasResult, hasType := inst.Op.HasResult()
	ops := inst.Operands
	var typ, res uint32
	switch {
	case hasType && len(ops) >= 2:
		typ, res, ops = ops[0], ops[1], ops[2:]
	case hasResult && !hasType && len(ops) >= 1:
		res, ops = ops[0], ops[1:]
	default:
		hasResult, hasType = false, false
	}

	var line strings.Builder
	if hasResult {
		prefix := d.id(res) + " = "
		if pad := resultColumn - d.idWidth(res) - 3; pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
		line.WriteString(prefix)
	} else {
		line.WriteString(strings.Repeat(" ", resultColumn))
	}
	line.WriteString(d.opColor(inst.Op.String()))
	fields := d.operands(inst.Op, typ, res, ops)
	if hasType {
		fields = append([]string{d.id(typ)}, fields...)
	}
	for _, f := range fields {
		line.WriteByte(' ')
		line.WriteString(f)
	}
	fmt.Fprintln(d.w, line.String())
}

// idWidth is the printed width of an ID without color escapes.
func (d *disassembler) idWidth(v uint32) int {
	if n, ok := d.names[v]; ok {
		return len(n) + 1
	}
	return len(strconv.FormatUint(uint64(v), 10)) + 1
}

// operands renders the operands following the result ID.
//
//nolint:gocyclo,cyclop,funlen // one case per operand layout
func (d *disassembler) operands(op spirv.Op, typ, res uint32, ops []uint32) []string {
	need := func(n int) bool { return len(ops) >= n }
	switch op {
	case spirv.OpCapability:
		if need(1) {
			return []string{spirv.Capability(ops[0]).String()}
		}
	case spirv.OpExtension, spirv.OpSourceExtension, spirv.OpModuleProcessed, spirv.OpExtInstImport, spirv.OpString:
		s, _ := d.str(ops)
		return []string{s}
	case spirv.OpSource:
		if need(2) {
			out := []string{lookup(sourceLanguages, ops[0]), d.lit(ops[1])}
			if need(3) {
				out = append(out, d.id(ops[2]))
			}
			if need(4) {
				s, _ := d.str(ops[3:])
				out = append(out, s)
			}
			return out
		}
	case spirv.OpMemoryModel:
		if need(2) {
			return []string{lookup(addressingModels, ops[0]), lookup(memoryModels, ops[1])}
		}
	case spirv.OpEntryPoint:
		if need(3) {
			s, n := d.str(ops[2:])
			out := []string{spirv.ExecutionModel(ops[0]).String(), d.id(ops[1]), s}
			return append(out, d.ids(ops[2+n:])...)
		}
	case spirv.OpExecutionMode:
		if need(2) {
			out := []string{d.id(ops[0]), spirv.ExecutionMode(ops[1]).String()}
			return append(out, d.lits(ops[2:])...)
		}
	case spirv.OpName:
		if need(2) {
			s, _ := d.str(ops[1:])
			return []string{d.id(ops[0]), s}
		}
	case spirv.OpMemberName:
		if need(3) {
			s, _ := d.str(ops[2:])
			return []string{d.id(ops[0]), d.lit(ops[1]), s}
		}
	case spirv.OpDecorate:
		if need(2) {
			return append([]string{d.id(ops[0])}, d.decoration(ops[1:])...)
		}
	case spirv.OpMemberDecorate:
		if need(3) {
			return append([]string{d.id(ops[0]), d.lit(ops[1])}, d.decoration(ops[2:])...)
		}
	case spirv.OpDecorateString:
		if need(3) {
			s, _ := d.str(ops[2:])
			return []string{d.id(ops[0]), spirv.Decoration(ops[1]).String(), s}
		}
	case spirv.OpMemberDecorateString:
		if need(4) {
			s, _ := d.str(ops[3:])
			return []string{d.id(ops[0]), d.lit(ops[1]), spirv.Decoration(ops[2]).String(), s}
		}
	case spirv.OpTypeInt:
		if need(2) {
			d.types[res] = numType{width: ops[0], signed: ops[1] == 1}
		}
		return d.lits(ops)
	case spirv.OpTypeFloat:
		if need(1) {
			d.types[res] = numType{width: ops[0], float: true}
		}
		return d.lits(ops)
	case spirv.OpTypeVector, spirv.OpTypeMatrix:
		if need(2) {
			return []string{d.id(ops[0]), d.lit(ops[1])}
		}
	case spirv.OpTypeImage:
		if need(7) {
			out := []string{d.id(ops[0]), spirv.Dim(ops[1]).String()}
			out = append(out, d.lits(ops[2:6])...)
			out = append(out, imageFormat(ops[6]))
			return append(out, d.lits(ops[7:])...)
		}
	case spirv.OpTypePointer:
		if need(2) {
			return []string{spirv.StorageClass(ops[0]).String(), d.id(ops[1])}
		}
	case spirv.OpVariable:
		if need(1) {
			return append([]string{spirv.StorageClass(ops[0]).String()}, d.ids(ops[1:])...)
		}
	case spirv.OpConstant, spirv.OpSpecConstant:
		return []string{d.constant(typ, ops)}
	case spirv.OpFunction:
		if need(2) {
			return []string{functionControl(ops[0]), d.id(ops[1])}
		}
	case spirv.OpExtInst:
		if need(2) {
			return append([]string{d.id(ops[0]), d.lit(ops[1])}, d.ids(ops[2:])...)
		}
	case spirv.OpCompositeExtract:
		if need(1) {
			return append([]string{d.id(ops[0])}, d.lits(ops[1:])...)
		}
	case spirv.OpCompositeInsert, spirv.OpVectorShuffle:
		if need(2) {
			return append(d.ids(ops[:2]), d.lits(ops[2:])...)
		}
	case spirv.OpSwitch:
		if need(2) {
			out := d.ids(ops[:2])
			for i := 2; i+1 < len(ops); i += 2 {
				out = append(out, d.lit(ops[i]), d.id(ops[i+1]))
			}
			return out
		}
	case spirv.OpSelectionMerge:
		if need(2) {
			return []string{d.id(ops[0]), lookup(selectionControls, ops[1])}
		}
	case spirv.OpLoopMerge:
		if need(3) {
			out := append(d.ids(ops[:2]), lookup(loopControls, ops[2]))
			return append(out, d.lits(ops[3:])...)
		}
	case spirv.OpLine:
		if need(1) {
			return append([]string{d.id(ops[0])}, d.lits(ops[1:])...)
		}
	}
	if n, ok := imageOperandStart[op]; ok && len(ops) > n {
		out := append(d.ids(ops[:n]), d.lit(ops[n]))
		return append(out, d.ids(ops[n+1:])...)
	}
	return d.ids(ops)
}

// decoration renders a decoration and its literal arguments.
func (d *disassembler) decoration(ops []uint32) []string {
	dec := spirv.Decoration(ops[0])
	out := []string{dec.String()}
	if dec == spirv.DecorationBuiltIn && len(ops) > 1 {
		return append(out, spirv.BuiltIn(ops[1]).String())
	}
	return append(out, d.lits(ops[1:])...)
}

// constant decodes a literal by its scalar type; unknown types print the
// raw words.
func (d *disassembler) constant(typ uint32, words []uint32) string {
	t, ok := d.types[typ]
	if !ok || len(words) == 0 {
		return strings.Join(d.lits(words), " ")
	}
	var bits uint64
	for i, w := range words {
		if i < 2 {
			bits |= uint64(w) << (32 * i)
		}
	}
	switch {
	case t.float && t.width == 64:
		return d.litColor(strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64))
	case t.float && t.width == 32:
		return d.litColor(strconv.FormatFloat(float64(math.Float32frombits(uint32(bits))), 'g', -1, 32))
	case t.float:
		return d.litColor(fmt.Sprintf("0x%x", bits))
	case t.signed && t.width <= 32:
		v := int64(int32(uint32(bits)))
		if t.width < 32 {
			shift := 64 - t.width
			v = int64(bits<<shift) >> shift
		}
		return d.litColor(strconv.FormatInt(v, 10))
	case t.signed:
		return d.litColor(strconv.FormatInt(int64(bits), 10))
	}
	return d.litColor(strconv.FormatUint(bits, 10))
}

// imageOperandStart is the operand index of the ImageOperands mask of
// image instructions.
var imageOperandStart = map[spirv.Op]int{
	spirv.OpImageSampleImplicitLod:         2,
	spirv.OpImageSampleExplicitLod:         2,
	spirv.OpImageSampleProjImplicitLod:     2,
	spirv.OpImageSampleProjExplicitLod:     2,
	spirv.OpImageFetch:                     2,
	spirv.OpImageRead:                      2,
	spirv.OpImageSampleDrefImplicitLod:     3,
	spirv.OpImageSampleDrefExplicitLod:     3,
	spirv.OpImageSampleProjDrefImplicitLod: 3,
	spirv.OpImageSampleProjDrefExplicitLod: 3,
	spirv.OpImageGather:                    3,
	spirv.OpImageDrefGather:                3,
	spirv.OpImageWrite:                     3,
}

var (
	sourceLanguages   = map[uint32]string{0: "Unknown", 1: "ESSL", 2: "GLSL", 3: "OpenCL_C", 4: "OpenCL_CPP", 5: "HLSL"}
	addressingModels  = map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64", 5348: "PhysicalStorageBuffer64"}
	memoryModels      = map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}
	selectionControls = map[uint32]string{0: "None", 1: "Flatten", 2: "DontFlatten"}
	loopControls      = map[uint32]string{0: "None", 1: "Unroll", 2: "DontUnroll", 4: "DependencyInfinite", 8: "DependencyLength"}
)

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return strconv.FormatUint(uint64(v), 10)
}

func functionControl(v uint32) string {
	if v == 0 {
		return "None"
	}
	var parts []string
	for bit, name := range []string{"Inline", "DontInline", "Pure", "Const"} {
		if v&(1<<bit) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, "|")
}

func imageFormat(v uint32) string {
	if v == 0 {
		return "Unknown"
	}
	return strconv.FormatUint(uint64(v), 10)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package parser decodes SPIR-V binaries into the ir arena.
//
// The parser is trusted: it does not check SPIR-V legality beyond what is
// needed to build the arena. Truncated streams and references to IDs outside
// the declared bound are reported as InvalidIR.
package parser

import (
	"fmt"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// ParseBytes decodes a SPIR-V binary in either byte order.
func ParseBytes(data []byte) (*ir.Module, error) {
	words, err := spirv.WordsFromBytes(data)
	if err != nil {
		return nil, ir.NewError(ir.ErrInvalidIR, "%v", err)
	}
	return Parse(words)
}

// Parse decodes a SPIR-V word stream.
func Parse(words []uint32) (m *ir.Module, err error) {
	header, err := spirv.DecodeHeader(words)
	if err != nil {
		return nil, ir.NewError(ir.ErrInvalidIR, "%v", err)
	}
	insts, err := spirv.Instructions(words)
	if err != nil {
		return nil, ir.NewError(ir.ErrInvalidIR, "%v", err)
	}

	p := &parser{
		module: ir.NewModule(header.Bound),
		groups: make(map[ir.ID][]decoration),
	}
	p.module.Version = header.Version

	defer ir.Recover(&err)
	for i := range insts {
		if err := p.instruction(&insts[i]); err != nil {
			return nil, err
		}
	}
	if p.function != nil {
		return nil, ir.NewError(ir.ErrInvalidIR, "function %%%d is missing OpFunctionEnd", p.function.ID)
	}
	if err := p.applyDecorations(); err != nil {
		return nil, err
	}
	if err := ir.Check(p.module); err != nil {
		return nil, err
	}
	return p.module, nil
}

// decoration is a deferred OpDecorate/OpMemberDecorate. Decorations precede
// the definitions they target, so they are applied after the whole stream.
type decoration struct {
	target   ir.ID
	member   uint32
	isMember bool
	kind     spirv.Decoration
	value    uint32
	str      string
	isString bool
	op       spirv.Op
}

type parser struct {
	module *ir.Module

	decorations []decoration
	groups      map[ir.ID][]decoration
	groupApply  []groupApply

	modes []executionMode

	function *ir.Function
	block    *ir.Block
}

type groupApply struct {
	group   ir.ID
	targets []ir.ID
	members []uint32
	member  bool
}

type executionMode struct {
	function ir.ID
	mode     spirv.ExecutionMode
	literals []uint32
	ids      bool
}

func (p *parser) define(id ir.ID, kind ir.Kind, obj any, op spirv.Op) error {
	if err := p.module.Define(id, kind, obj); err != nil {
		if e, ok := err.(*ir.Error); ok {
			if e.Kind == ir.ErrUnknownID {
				e.Kind = ir.ErrInvalidIR
			}
			e.Opcode = op
		}
		return err
	}
	return nil
}

func need(inst *spirv.RawInstruction, n int) error {
	if len(inst.Operands) < n {
		return ir.NewError(ir.ErrInvalidIR, "%s at word %d has %d operands, need %d",
			inst.Op, inst.Offset, len(inst.Operands), n)
	}
	return nil
}

func ids(words []uint32) []ir.ID {
	out := make([]ir.ID, len(words))
	for i, w := range words {
		out[i] = ir.ID(w)
	}
	return out
}

//nolint:gocyclo,cyclop,funlen // one case per opcode family
func (p *parser) instruction(inst *spirv.RawInstruction) error {
	ops := inst.Operands
	switch inst.Op {
	case spirv.OpNop, spirv.OpSource, spirv.OpSourceContinued, spirv.OpSourceExtension,
		spirv.OpLine, spirv.OpNoLine, spirv.OpModuleProcessed, spirv.OpDecorateID,
		spirv.OpTypeForwardPointer, spirv.OpLifetimeStart, spirv.OpLifetimeStop:
		return nil

	case spirv.OpCapability:
		if err := need(inst, 1); err != nil {
			return err
		}
		p.module.Capabilities = append(p.module.Capabilities, spirv.Capability(ops[0]))
	case spirv.OpExtension:
		name, _ := spirv.DecodeString(ops)
		p.module.Extensions = append(p.module.Extensions, name)
	case spirv.OpExtInstImport:
		if err := need(inst, 2); err != nil {
			return err
		}
		name, _ := spirv.DecodeString(ops[1:])
		return p.define(ir.ID(ops[0]), ir.KindExtInstImport, name, inst.Op)
	case spirv.OpMemoryModel:
		if err := need(inst, 2); err != nil {
			return err
		}
		p.module.AddressingModel = spirv.AddressingModel(ops[0])
		p.module.MemoryModel = spirv.MemoryModel(ops[1])
	case spirv.OpEntryPoint:
		if err := need(inst, 3); err != nil {
			return err
		}
		name, n := spirv.DecodeString(ops[2:])
		p.module.EntryPoints = append(p.module.EntryPoints, &ir.EntryPoint{
			Name:      name,
			Model:     spirv.ExecutionModel(ops[0]),
			Function:  ir.ID(ops[1]),
			Interface: ids(ops[2+n:]),
			Modes:     make(map[spirv.ExecutionMode][]uint32),
			ModeIDs:   make(map[spirv.ExecutionMode][]ir.ID),
		})
	case spirv.OpExecutionMode, spirv.OpExecutionModeID:
		if err := need(inst, 2); err != nil {
			return err
		}
		p.modes = append(p.modes, executionMode{
			function: ir.ID(ops[0]),
			mode:     spirv.ExecutionMode(ops[1]),
			literals: append([]uint32(nil), ops[2:]...),
			ids:      inst.Op == spirv.OpExecutionModeID,
		})
	case spirv.OpString:
		if err := need(inst, 1); err != nil {
			return err
		}
		s, _ := spirv.DecodeString(ops[1:])
		return p.define(ir.ID(ops[0]), ir.KindString, s, inst.Op)
	case spirv.OpName:
		if err := need(inst, 1); err != nil {
			return err
		}
		name, _ := spirv.DecodeString(ops[1:])
		p.module.SetName(ir.ID(ops[0]), name)
	case spirv.OpMemberName:
		if err := need(inst, 2); err != nil {
			return err
		}
		name, _ := spirv.DecodeString(ops[2:])
		p.module.SetMemberName(ir.ID(ops[0]), ops[1], name)

	case spirv.OpDecorate, spirv.OpDecorateString:
		if err := need(inst, 2); err != nil {
			return err
		}
		d := decoration{target: ir.ID(ops[0]), kind: spirv.Decoration(ops[1]), op: inst.Op}
		p.decorationValue(&d, ops[2:], inst.Op == spirv.OpDecorateString)
		p.decorations = append(p.decorations, d)
	case spirv.OpMemberDecorate, spirv.OpMemberDecorateString:
		if err := need(inst, 3); err != nil {
			return err
		}
		d := decoration{
			target: ir.ID(ops[0]), member: ops[1], isMember: true,
			kind: spirv.Decoration(ops[2]), op: inst.Op,
		}
		p.decorationValue(&d, ops[3:], inst.Op == spirv.OpMemberDecorateString)
		p.decorations = append(p.decorations, d)
	case spirv.OpDecorationGroup:
		if err := need(inst, 1); err != nil {
			return err
		}
		id := ir.ID(ops[0])
		if _, ok := p.groups[id]; !ok {
			p.groups[id] = nil
		}
		return p.define(id, ir.KindDecorationGroup, id, inst.Op)
	case spirv.OpGroupDecorate:
		if err := need(inst, 1); err != nil {
			return err
		}
		p.groupApply = append(p.groupApply, groupApply{group: ir.ID(ops[0]), targets: ids(ops[1:])})
	case spirv.OpGroupMemberDecorate:
		if err := need(inst, 1); err != nil {
			return err
		}
		g := groupApply{group: ir.ID(ops[0]), member: true}
		for k := 1; k+1 < len(ops); k += 2 {
			g.targets = append(g.targets, ir.ID(ops[k]))
			g.members = append(g.members, ops[k+1])
		}
		p.groupApply = append(p.groupApply, g)

	case spirv.OpTypeVoid, spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat, spirv.OpTypeVector,
		spirv.OpTypeMatrix, spirv.OpTypeImage, spirv.OpTypeSampler, spirv.OpTypeSampledImage,
		spirv.OpTypeArray, spirv.OpTypeRuntimeArray, spirv.OpTypeStruct, spirv.OpTypeOpaque,
		spirv.OpTypePointer, spirv.OpTypeFunction:
		return p.typeDecl(inst)

	case spirv.OpConstantTrue, spirv.OpConstantFalse, spirv.OpConstant, spirv.OpConstantComposite,
		spirv.OpConstantNull, spirv.OpConstantSampler, spirv.OpSpecConstantTrue, spirv.OpSpecConstantFalse,
		spirv.OpSpecConstant, spirv.OpSpecConstantComposite, spirv.OpSpecConstantOp:
		return p.constant(inst)

	case spirv.OpUndef:
		if err := need(inst, 2); err != nil {
			return err
		}
		id := ir.ID(ops[1])
		if err := p.define(id, ir.KindUndef, &ir.Undef{ID: id, Type: ir.ID(ops[0])}, inst.Op); err != nil {
			return err
		}
		if p.function == nil {
			p.module.GlobalOrder = append(p.module.GlobalOrder, id)
		}

	case spirv.OpVariable:
		return p.variable(inst)

	case spirv.OpFunction:
		if err := need(inst, 4); err != nil {
			return err
		}
		if p.function != nil {
			return ir.NewErrorAt(ir.ErrInvalidIR, ir.ID(ops[1]), inst.Op, "nested function")
		}
		fn := &ir.Function{
			ID:         ir.ID(ops[1]),
			ResultType: ir.ID(ops[0]),
			Control:    spirv.FunctionControl(ops[2]),
			Type:       ir.ID(ops[3]),
		}
		if err := p.define(fn.ID, ir.KindFunction, fn, inst.Op); err != nil {
			return err
		}
		p.function = fn
		p.module.FunctionOrder = append(p.module.FunctionOrder, fn.ID)
	case spirv.OpFunctionParameter:
		if err := need(inst, 2); err != nil {
			return err
		}
		if p.function == nil {
			return ir.NewErrorAt(ir.ErrInvalidIR, ir.ID(ops[1]), inst.Op, "parameter outside function")
		}
		param := &ir.Parameter{ID: ir.ID(ops[1]), Type: ir.ID(ops[0]), Function: p.function.ID}
		if err := p.define(param.ID, ir.KindParameter, param, inst.Op); err != nil {
			return err
		}
		p.function.Params = append(p.function.Params, param.ID)
	case spirv.OpFunctionEnd:
		if p.function == nil {
			return ir.NewError(ir.ErrInvalidIR, "OpFunctionEnd outside function")
		}
		if p.block != nil {
			return ir.NewErrorAt(ir.ErrInvalidIR, p.block.ID, inst.Op, "block is missing a terminator")
		}
		p.function = nil
	case spirv.OpLabel:
		if err := need(inst, 1); err != nil {
			return err
		}
		if p.function == nil {
			return ir.NewErrorAt(ir.ErrInvalidIR, ir.ID(ops[0]), inst.Op, "label outside function")
		}
		b := &ir.Block{ID: ir.ID(ops[0]), Function: p.function.ID}
		if err := p.define(b.ID, ir.KindBlock, b, inst.Op); err != nil {
			return err
		}
		p.function.Blocks = append(p.function.Blocks, b.ID)
		p.block = b

	default:
		return p.bodyInstruction(inst)
	}
	return nil
}

func (p *parser) decorationValue(d *decoration, rest []uint32, isString bool) {
	switch {
	case isString || d.kind == spirv.DecorationUserTypeGOOGLE || d.kind == spirv.DecorationUserSemantic:
		d.str, _ = spirv.DecodeString(rest)
		d.isString = true
	case len(rest) > 0:
		d.value = rest[0]
	}
}

func (p *parser) typeDecl(inst *spirv.RawInstruction) error {
	ops := inst.Operands
	if err := need(inst, 1); err != nil {
		return err
	}
	id := ir.ID(ops[0])
	var inner ir.TypeInner
	arg := func(i int) uint32 {
		if i >= len(ops) {
			ir.RaiseAt(ir.ErrInvalidIR, id, inst.Op, "missing operand %d", i)
		}
		return ops[i]
	}
	switch inst.Op {
	case spirv.OpTypeVoid:
		inner = ir.VoidType{}
	case spirv.OpTypeBool:
		inner = ir.BoolType{}
	case spirv.OpTypeInt:
		inner = ir.IntType{Width: arg(1), Signed: arg(2) != 0}
	case spirv.OpTypeFloat:
		inner = ir.FloatType{Width: arg(1)}
	case spirv.OpTypeVector:
		inner = ir.VectorType{Component: ir.ID(arg(1)), Count: arg(2)}
	case spirv.OpTypeMatrix:
		inner = ir.MatrixType{Column: ir.ID(arg(1)), Columns: arg(2)}
	case spirv.OpTypeImage:
		img := ir.ImageType{
			SampledType:  ir.ID(arg(1)),
			Dim:          spirv.Dim(arg(2)),
			Depth:        arg(3),
			Arrayed:      arg(4) != 0,
			Multisampled: arg(5) != 0,
			Sampled:      arg(6),
			Format:       spirv.ImageFormat(arg(7)),
		}
		if len(ops) > 8 {
			img.Access = spirv.AccessQualifier(ops[8])
			img.HasAccess = true
		}
		inner = img
	case spirv.OpTypeSampler:
		inner = ir.SamplerType{}
	case spirv.OpTypeSampledImage:
		inner = ir.SampledImageType{Image: ir.ID(arg(1))}
	case spirv.OpTypeArray:
		inner = ir.ArrayType{Element: ir.ID(arg(1)), Length: ir.ID(arg(2))}
	case spirv.OpTypeRuntimeArray:
		inner = ir.RuntimeArrayType{Element: ir.ID(arg(1))}
	case spirv.OpTypeStruct:
		inner = ir.StructType{Members: ids(ops[1:])}
	case spirv.OpTypeOpaque:
		name, _ := spirv.DecodeString(ops[1:])
		inner = ir.OpaqueType{Name: name}
	case spirv.OpTypePointer:
		inner = ir.PointerType{Storage: spirv.StorageClass(arg(1)), Pointee: ir.ID(arg(2))}
	case spirv.OpTypeFunction:
		inner = ir.FunctionType{Return: ir.ID(arg(1)), Params: ids(ops[2:])}
	}
	if err := p.define(id, ir.KindType, &ir.Type{ID: id, Inner: inner}, inst.Op); err != nil {
		return err
	}
	p.module.GlobalOrder = append(p.module.GlobalOrder, id)
	return nil
}

func (p *parser) constant(inst *spirv.RawInstruction) error {
	if err := need(inst, 2); err != nil {
		return err
	}
	ops := inst.Operands
	c := &ir.Constant{ID: ir.ID(ops[1]), Type: ir.ID(ops[0])}
	rest := ops[2:]
	switch inst.Op {
	case spirv.OpConstantTrue, spirv.OpSpecConstantTrue:
		c.Value = []uint32{1}
	case spirv.OpConstantFalse, spirv.OpSpecConstantFalse:
		c.Value = []uint32{0}
	case spirv.OpConstant, spirv.OpSpecConstant:
		c.Value = append([]uint32(nil), rest...)
	case spirv.OpConstantComposite, spirv.OpSpecConstantComposite:
		c.Kind = ir.ConstComposite
		c.Constituents = ids(rest)
	case spirv.OpConstantNull:
		c.Kind = ir.ConstNull
	case spirv.OpConstantSampler:
		c.Value = append([]uint32(nil), rest...)
	case spirv.OpSpecConstantOp:
		if len(rest) == 0 {
			return ir.NewErrorAt(ir.ErrInvalidIR, c.ID, inst.Op, "missing opcode")
		}
		c.Kind = ir.ConstOp
		c.Op = spirv.Op(rest[0])
		c.Operands = append([]uint32(nil), rest[1:]...)
	}
	switch inst.Op {
	case spirv.OpSpecConstantTrue, spirv.OpSpecConstantFalse, spirv.OpSpecConstant,
		spirv.OpSpecConstantComposite, spirv.OpSpecConstantOp:
		c.Spec = true
	}
	if err := p.define(c.ID, ir.KindConstant, c, inst.Op); err != nil {
		return err
	}
	p.module.GlobalOrder = append(p.module.GlobalOrder, c.ID)
	return nil
}

func (p *parser) variable(inst *spirv.RawInstruction) error {
	if err := need(inst, 3); err != nil {
		return err
	}
	ops := inst.Operands
	v := &ir.Variable{ID: ir.ID(ops[1]), Type: ir.ID(ops[0]), Storage: spirv.StorageClass(ops[2])}
	if len(ops) > 3 {
		v.Initializer = ir.ID(ops[3])
	}
	if err := p.define(v.ID, ir.KindVariable, v, inst.Op); err != nil {
		return err
	}
	if p.function != nil {
		v.Function = p.function.ID
		p.function.Locals = append(p.function.Locals, v.ID)
		return nil
	}
	p.module.GlobalOrder = append(p.module.GlobalOrder, v.ID)
	return nil
}

func (p *parser) bodyInstruction(inst *spirv.RawInstruction) error {
	if p.block == nil {
		return ir.NewError(ir.ErrInvalidIR, "%s at word %d outside a block", inst.Op, inst.Offset)
	}
	b := p.block
	ops := inst.Operands
	switch inst.Op {
	case spirv.OpSelectionMerge:
		if err := need(inst, 2); err != nil {
			return err
		}
		b.Merge = ir.MergeSelection
		b.MergeBlock = ir.ID(ops[0])
		b.SelectionControl = spirv.SelectionControl(ops[1])
		return nil
	case spirv.OpLoopMerge:
		if err := need(inst, 3); err != nil {
			return err
		}
		b.Merge = ir.MergeLoop
		b.MergeBlock = ir.ID(ops[0])
		b.ContinueBlock = ir.ID(ops[1])
		b.LoopControl = spirv.LoopControl(ops[2])
		return nil
	case spirv.OpBranch:
		if err := need(inst, 1); err != nil {
			return err
		}
		b.Terminator = ir.Terminator{Kind: ir.TermBranch, Target: ir.ID(ops[0])}
	case spirv.OpBranchConditional:
		if err := need(inst, 3); err != nil {
			return err
		}
		b.Terminator = ir.Terminator{
			Kind: ir.TermBranchConditional, Condition: ir.ID(ops[0]),
			True: ir.ID(ops[1]), False: ir.ID(ops[2]),
		}
	case spirv.OpSwitch:
		if err := need(inst, 2); err != nil {
			return err
		}
		term := ir.Terminator{Kind: ir.TermSwitch, Selector: ir.ID(ops[0]), Default: ir.ID(ops[1])}
		step := 2
		if t := p.module.TypeOf(term.Selector); t != 0 {
			if it, ok := p.module.Inner(t).(ir.IntType); ok && it.Width == 64 {
				step = 3
			}
		}
		for k := 2; k+step <= len(ops); k += step {
			v := uint64(ops[k])
			if step == 3 {
				v |= uint64(ops[k+1]) << 32
			}
			term.Cases = append(term.Cases, ir.SwitchCase{Value: v, Target: ir.ID(ops[k+step-1])})
		}
		b.Terminator = term
	case spirv.OpReturn:
		b.Terminator = ir.Terminator{Kind: ir.TermReturn}
	case spirv.OpReturnValue:
		if err := need(inst, 1); err != nil {
			return err
		}
		b.Terminator = ir.Terminator{Kind: ir.TermReturnValue, Value: ir.ID(ops[0])}
	case spirv.OpKill:
		b.Terminator = ir.Terminator{Kind: ir.TermKill}
	case spirv.OpUnreachable:
		b.Terminator = ir.Terminator{Kind: ir.TermUnreachable}
	case spirv.OpTerminateInvocation:
		b.Terminator = ir.Terminator{Kind: ir.TermTerminateInvocation}
	default:
		return p.value(inst)
	}
	p.block = nil
	return nil
}

func (p *parser) value(inst *spirv.RawInstruction) error {
	b := p.block
	ops := inst.Operands
	out := &ir.Instruction{Op: inst.Op, Block: b.ID}
	hasResult, hasType := inst.Op.HasResult()
	switch {
	case hasResult && hasType:
		if err := need(inst, 2); err != nil {
			return err
		}
		out.ResultType = ir.ID(ops[0])
		out.Result = ir.ID(ops[1])
		out.Operands = ops[2:]
	case hasResult:
		if err := need(inst, 1); err != nil {
			return err
		}
		out.Result = ir.ID(ops[0])
		out.Operands = ops[1:]
	default:
		out.Operands = ops
	}
	if out.Result != 0 {
		if err := p.define(out.Result, ir.KindValue, out, inst.Op); err != nil {
			return err
		}
	}
	if inst.Op == spirv.OpPhi {
		b.Phis = append(b.Phis, out)
		return nil
	}
	b.Instructions = append(b.Instructions, out)
	return nil
}

func (p *parser) applyDecorations() error {
	m := p.module
	for _, d := range p.decorations {
		if _, isGroup := p.groups[d.target]; isGroup {
			p.groups[d.target] = append(p.groups[d.target], d)
			continue
		}
		if err := p.apply(d); err != nil {
			return err
		}
	}
	for _, g := range p.groupApply {
		decs, ok := p.groups[g.group]
		if !ok {
			return ir.NewErrorAt(ir.ErrInvalidIR, g.group, spirv.OpGroupDecorate, "not a decoration group")
		}
		for i, target := range g.targets {
			for _, d := range decs {
				d.target = target
				if g.member {
					d.isMember = true
					d.member = g.members[i]
				}
				if err := p.apply(d); err != nil {
					return err
				}
			}
		}
	}
	for _, em := range p.modes {
		found := false
		for _, ep := range m.EntryPoints {
			if ep.Function != em.function {
				continue
			}
			found = true
			if em.ids {
				ep.ModeIDs[em.mode] = ids(em.literals)
				// Resolve LocalSizeId eagerly when the operands are plain constants.
				lits := make([]uint32, 0, len(em.literals))
				for _, id := range em.literals {
					c, err := m.Constant(ir.ID(id))
					if err != nil {
						lits = nil
						break
					}
					lits = append(lits, c.U32())
				}
				if lits != nil && em.mode == spirv.ExecutionModeLocalSizeID {
					ep.Modes[spirv.ExecutionModeLocalSize] = lits
				}
				continue
			}
			ep.Modes[em.mode] = em.literals
		}
		if !found {
			return ir.NewErrorAt(ir.ErrInvalidIR, em.function, spirv.OpExecutionMode, "execution mode for unknown entry point")
		}
	}
	return nil
}

func (p *parser) apply(d decoration) error {
	m := p.module
	var err error
	switch {
	case d.isMember && d.isString:
		err = m.SetMemberDecorationString(d.target, d.member, d.kind, d.str)
	case d.isMember:
		err = m.SetMemberDecoration(d.target, d.member, d.kind, d.value)
	case d.isString:
		err = m.SetDecorationString(d.target, d.kind, d.str)
	default:
		err = m.SetDecoration(d.target, d.kind, d.value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", d.op, err)
	}
	return nil
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Instruction is an encodable SPIR-V instruction.
type Instruction struct {
	Opcode Op
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{words: make([]uint32, 0, 8)}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords adds several words.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString adds a nul-terminated UTF-8 string.
func (b *InstructionBuilder) AddString(s string) {
	b.words = append(b.words, EncodeString(s)...)
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode Op) Instruction {
	return Instruction{Opcode: opcode, Words: b.words}
}

// Encode encodes the instruction to words.
func (i Instruction) Encode() []uint32 {
	count, err := safecast.Conv[uint32](len(i.Words) + 1)
	if err != nil || count > 0xFFFF {
		panic(fmt.Errorf("spirv: %s has too many operands", i.Opcode))
	}
	result := make([]uint32, 0, count)
	result = append(result, (count<<16)|uint32(i.Opcode))
	return append(result, i.Words...)
}

// ModuleBuilder assembles complete SPIR-V modules. Instructions are kept per
// logical section and emitted in the order the binary layout requires.
type ModuleBuilder struct {
	version   Version
	generator uint32

	capabilities   []Instruction
	extensions     []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction // OpString
	debugNames     []Instruction // OpName, OpMemberName
	annotations    []Instruction // OpDecorate, OpMemberDecorate
	types          []Instruction // OpType*, OpConstant*, global OpVariable
	functions      []Instruction // OpFunction...OpFunctionEnd

	nextID uint32
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *ModuleBuilder) emitType(op Op, words ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(words...)
	b.types = append(b.types, ib.Build(op))
}

func (b *ModuleBuilder) emitCode(op Op, words ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(words...)
	b.functions = append(b.functions, ib.Build(op))
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(capability))
	b.capabilities = append(b.capabilities, ib.Build(OpCapability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	ib := NewInstructionBuilder()
	ib.AddString(name)
	b.extensions = append(b.extensions, ib.Build(OpExtension))
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddString(name)
	b.extInstImports = append(b.extInstImports, ib.Build(OpExtInstImport))
	return id
}

// SetMemoryModel sets the addressing and memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	ib := NewInstructionBuilder()
	ib.AddWords(uint32(addressing), uint32(memory))
	inst := ib.Build(OpMemoryModel)
	b.memoryModel = &inst
}

// AddEntryPoint declares an entry point.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(uint32(execModel), funcID)
	ib.AddString(name)
	ib.AddWords(interfaces...)
	b.entryPoints = append(b.entryPoints, ib.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(entryPoint, uint32(mode))
	ib.AddWords(params...)
	b.executionModes = append(b.executionModes, ib.Build(OpExecutionMode))
}

// AddName names an ID.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddString(name)
	b.debugNames = append(b.debugNames, ib.Build(OpName))
}

// AddMemberName names a struct member.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	ib := NewInstructionBuilder()
	ib.AddWords(structID, member)
	ib.AddString(name)
	b.debugNames = append(b.debugNames, ib.Build(OpMemberName))
}

// AddDecorate decorates an ID.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(id, uint32(decoration))
	ib.AddWords(params...)
	b.annotations = append(b.annotations, ib.Build(OpDecorate))
}

// AddDecorateString decorates an ID with a string operand.
func (b *ModuleBuilder) AddDecorateString(id uint32, decoration Decoration, value string) {
	ib := NewInstructionBuilder()
	ib.AddWords(id, uint32(decoration))
	ib.AddString(value)
	b.annotations = append(b.annotations, ib.Build(OpDecorateString))
}

// AddMemberDecorate decorates a struct member.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWords(structID, member, uint32(decoration))
	ib.AddWords(params...)
	b.annotations = append(b.annotations, ib.Build(OpMemberDecorate))
}

// AddDecorationGroup declares a decoration group. Decorate the returned ID
// with AddDecorate before applying it with AddGroupDecorate.
func (b *ModuleBuilder) AddDecorationGroup() uint32 {
	id := b.AllocID()
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	b.annotations = append(b.annotations, ib.Build(OpDecorationGroup))
	return id
}

// AddGroupDecorate applies a decoration group to targets.
func (b *ModuleBuilder) AddGroupDecorate(group uint32, targets ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(group)
	ib.AddWords(targets...)
	b.annotations = append(b.annotations, ib.Build(OpGroupDecorate))
}

// AddTypeVoid declares void.
func (b *ModuleBuilder) AddTypeVoid() uint32 {
	id := b.AllocID()
	b.emitType(OpTypeVoid, id)
	return id
}

// AddTypeBool declares bool.
func (b *ModuleBuilder) AddTypeBool() uint32 {
	id := b.AllocID()
	b.emitType(OpTypeBool, id)
	return id
}

// AddTypeFloat declares a float type.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeFloat, id, width)
	return id
}

// AddTypeInt declares an integer type.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	id := b.AllocID()
	var s uint32
	if signed {
		s = 1
	}
	b.emitType(OpTypeInt, id, width, s)
	return id
}

// AddTypeVector declares a vector type.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeVector, id, componentType, count)
	return id
}

// AddTypeMatrix declares a matrix type.
func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeMatrix, id, columnType, columnCount)
	return id
}

// AddTypeArray declares a sized array; length is a constant ID.
func (b *ModuleBuilder) AddTypeArray(elementType uint32, length uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeArray, id, elementType, length)
	return id
}

// AddTypeRuntimeArray declares a run-time array.
func (b *ModuleBuilder) AddTypeRuntimeArray(elementType uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeRuntimeArray, id, elementType)
	return id
}

// AddTypeStruct declares a struct type.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeStruct, append([]uint32{id}, memberTypes...)...)
	return id
}

// AddTypePointer declares a pointer type.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypePointer, id, uint32(storageClass), baseType)
	return id
}

// AddTypeFunction declares a function type.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeFunction, append([]uint32{id, returnType}, paramTypes...)...)
	return id
}

// ImageDesc describes an OpTypeImage declaration.
type ImageDesc struct {
	SampledType  uint32
	Dim          Dim
	Depth        uint32
	Arrayed      bool
	Multisampled bool
	// Sampled is 1 for sampled images and 2 for storage images.
	Sampled uint32
	Format  ImageFormat
}

// AddTypeImage declares an image type.
func (b *ModuleBuilder) AddTypeImage(d ImageDesc) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeImage, id, d.SampledType, uint32(d.Dim), d.Depth, boolWord(d.Arrayed),
		boolWord(d.Multisampled), d.Sampled, uint32(d.Format))
	return id
}

// AddTypeSampler declares the sampler type.
func (b *ModuleBuilder) AddTypeSampler() uint32 {
	id := b.AllocID()
	b.emitType(OpTypeSampler, id)
	return id
}

// AddTypeSampledImage declares a combined image-sampler type.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpTypeSampledImage, id, imageType)
	return id
}

// AddConstant declares a scalar constant from raw words.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpConstant, append([]uint32{typeID, id}, values...)...)
	return id
}

// AddConstantFloat32 declares a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

// AddConstantFloat64 declares a 64-bit float constant.
func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.AddConstant(typeID, uint32(bits), uint32(bits>>32))
}

// AddConstantBool declares true or false.
func (b *ModuleBuilder) AddConstantBool(typeID uint32, value bool) uint32 {
	id := b.AllocID()
	op := OpConstantFalse
	if value {
		op = OpConstantTrue
	}
	b.emitType(op, typeID, id)
	return id
}

// AddConstantNull declares a null constant.
func (b *ModuleBuilder) AddConstantNull(typeID uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpConstantNull, typeID, id)
	return id
}

// AddConstantComposite declares a composite constant.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpConstantComposite, append([]uint32{typeID, id}, constituents...)...)
	return id
}

// AddSpecConstant declares a scalar specialization constant.
func (b *ModuleBuilder) AddSpecConstant(typeID uint32, values ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpSpecConstant, append([]uint32{typeID, id}, values...)...)
	return id
}

// AddSpecConstantOp declares a specialization constant operation.
func (b *ModuleBuilder) AddSpecConstantOp(typeID uint32, op Op, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpSpecConstantOp, append([]uint32{typeID, id, uint32(op)}, operands...)...)
	return id
}

// AddVariable declares a global variable.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	id := b.AllocID()
	b.emitType(OpVariable, pointerType, id, uint32(storageClass))
	return id
}

// AddVariableWithInit declares a global variable with an initializer.
func (b *ModuleBuilder) AddVariableWithInit(pointerType uint32, storageClass StorageClass, initID uint32) uint32 {
	id := b.AllocID()
	b.emitType(OpVariable, pointerType, id, uint32(storageClass), initID)
	return id
}

// AddLocalVariable declares a Function-storage variable in the current block.
func (b *ModuleBuilder) AddLocalVariable(pointerType uint32) uint32 {
	id := b.AllocID()
	b.emitCode(OpVariable, pointerType, id, uint32(StorageClassFunction))
	return id
}

// AddFunction starts a function.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	id := b.AllocID()
	b.emitCode(OpFunction, returnType, id, uint32(control), funcType)
	return id
}

// AddFunctionParameter declares a parameter of the current function.
func (b *ModuleBuilder) AddFunctionParameter(typeID uint32) uint32 {
	id := b.AllocID()
	b.emitCode(OpFunctionParameter, typeID, id)
	return id
}

// AddLabel starts a new block and returns its label.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	b.emitCode(OpLabel, id)
	return id
}

// AddLabelID starts a block with a pre-allocated label.
func (b *ModuleBuilder) AddLabelID(id uint32) {
	b.emitCode(OpLabel, id)
}

// AddReturn ends the block with OpReturn.
func (b *ModuleBuilder) AddReturn() {
	b.emitCode(OpReturn)
}

// AddReturnValue ends the block with OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(valueID uint32) {
	b.emitCode(OpReturnValue, valueID)
}

// AddFunctionEnd ends the current function.
func (b *ModuleBuilder) AddFunctionEnd() {
	b.emitCode(OpFunctionEnd)
}

// AddOp appends an instruction with a result type and result ID.
func (b *ModuleBuilder) AddOp(opcode Op, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emitCode(opcode, append([]uint32{resultType, id}, operands...)...)
	return id
}

// AddStatement appends an instruction without a result.
func (b *ModuleBuilder) AddStatement(opcode Op, operands ...uint32) {
	b.emitCode(opcode, operands...)
}

// AddBinaryOp appends a two-operand instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode Op, resultType uint32, left uint32, right uint32) uint32 {
	return b.AddOp(opcode, resultType, left, right)
}

// AddUnaryOp appends a one-operand instruction.
func (b *ModuleBuilder) AddUnaryOp(opcode Op, resultType uint32, operand uint32) uint32 {
	return b.AddOp(opcode, resultType, operand)
}

// AddLoad loads through a pointer.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	return b.AddOp(OpLoad, resultType, pointer)
}

// AddStore stores through a pointer.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	b.emitCode(OpStore, pointer, value)
}

// AddAccessChain forms a pointer into a composite.
func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	return b.AddOp(OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct builds a composite.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.AddOp(OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract extracts a member by literal indices.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indices ...uint32) uint32 {
	return b.AddOp(OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddVectorShuffle shuffles two vectors.
func (b *ModuleBuilder) AddVectorShuffle(resultType uint32, vec1 uint32, vec2 uint32, components []uint32) uint32 {
	return b.AddOp(OpVectorShuffle, resultType, append([]uint32{vec1, vec2}, components...)...)
}

// AddSelect appends OpSelect.
func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	return b.AddOp(OpSelect, resultType, condition, accept, reject)
}

// AddFunctionCall calls a function.
func (b *ModuleBuilder) AddFunctionCall(resultType uint32, function uint32, args ...uint32) uint32 {
	return b.AddOp(OpFunctionCall, resultType, append([]uint32{function}, args...)...)
}

// PhiEdge is an incoming (value, parent block) pair.
type PhiEdge struct {
	Value  uint32
	Parent uint32
}

// AddPhi appends OpPhi.
func (b *ModuleBuilder) AddPhi(resultType uint32, edges ...PhiEdge) uint32 {
	operands := make([]uint32, 0, len(edges)*2)
	for _, e := range edges {
		operands = append(operands, e.Value, e.Parent)
	}
	return b.AddOp(OpPhi, resultType, operands...)
}

// AddPhiID appends OpPhi with a pre-allocated result ID, for phis whose
// incoming values are defined later in the function.
func (b *ModuleBuilder) AddPhiID(resultType, id uint32, edges ...PhiEdge) {
	operands := []uint32{resultType, id}
	for _, e := range edges {
		operands = append(operands, e.Value, e.Parent)
	}
	b.emitCode(OpPhi, operands...)
}

// AddOpID appends an instruction with a pre-allocated result ID.
func (b *ModuleBuilder) AddOpID(opcode Op, resultType, id uint32, operands ...uint32) {
	b.emitCode(opcode, append([]uint32{resultType, id}, operands...)...)
}

// AddSelectionMerge declares a selection merge.
func (b *ModuleBuilder) AddSelectionMerge(mergeLabel uint32, control SelectionControl) {
	b.emitCode(OpSelectionMerge, mergeLabel, uint32(control))
}

// AddLoopMerge declares a loop merge.
func (b *ModuleBuilder) AddLoopMerge(mergeLabel uint32, continueLabel uint32, control LoopControl) {
	b.emitCode(OpLoopMerge, mergeLabel, continueLabel, uint32(control))
}

// AddBranch branches unconditionally.
func (b *ModuleBuilder) AddBranch(target uint32) {
	b.emitCode(OpBranch, target)
}

// AddBranchConditional branches on a condition.
func (b *ModuleBuilder) AddBranchConditional(condition uint32, trueLabel uint32, falseLabel uint32) {
	b.emitCode(OpBranchConditional, condition, trueLabel, falseLabel)
}

// SwitchCase is a literal/target pair of OpSwitch.
type SwitchCase struct {
	Value  uint32
	Target uint32
}

// AddSwitch appends OpSwitch with 32-bit case literals.
func (b *ModuleBuilder) AddSwitch(selector uint32, defaultLabel uint32, cases ...SwitchCase) {
	operands := []uint32{selector, defaultLabel}
	for _, c := range cases {
		operands = append(operands, c.Value, c.Target)
	}
	b.emitCode(OpSwitch, operands...)
}

// AddKill appends OpKill.
func (b *ModuleBuilder) AddKill() {
	b.emitCode(OpKill)
}

// AddExtInst appends an extended instruction.
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	return b.AddOp(OpExtInst, resultType, append([]uint32{extSet, instruction}, operands...)...)
}

// Words returns the assembled module.
func (b *ModuleBuilder) Words() []uint32 {
	out := []uint32{MagicNumber, b.version.Word(), b.generator, b.nextID, 0}
	sections := [][]Instruction{
		b.capabilities, b.extensions, b.extInstImports,
	}
	for _, s := range sections {
		out = appendInstructions(out, s)
	}
	if b.memoryModel != nil {
		out = append(out, b.memoryModel.Encode()...)
	}
	for _, s := range [][]Instruction{
		b.entryPoints, b.executionModes, b.debugStrings, b.debugNames,
		b.annotations, b.types, b.functions,
	} {
		out = appendInstructions(out, s)
	}
	return out
}

// Build returns the assembled module as little-endian bytes.
func (b *ModuleBuilder) Build() []byte {
	return BytesFromWords(b.Words())
}

func appendInstructions(out []uint32, instructions []Instruction) []uint32 {
	for _, inst := range instructions {
		out = append(out, inst.Encode()...)
	}
	return out
}

func boolWord(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

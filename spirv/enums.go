// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a SPIR-V opcode.
type Op uint16

// Opcodes consumed by the parser and the backends.
const (
	OpNop                             Op = 0
	OpUndef                           Op = 1
	OpSourceContinued                 Op = 2
	OpSource                          Op = 3
	OpSourceExtension                 Op = 4
	OpName                            Op = 5
	OpMemberName                      Op = 6
	OpString                          Op = 7
	OpLine                            Op = 8
	OpExtension                       Op = 10
	OpExtInstImport                   Op = 11
	OpExtInst                         Op = 12
	OpMemoryModel                     Op = 14
	OpEntryPoint                      Op = 15
	OpExecutionMode                   Op = 16
	OpCapability                      Op = 17
	OpTypeVoid                        Op = 19
	OpTypeBool                        Op = 20
	OpTypeInt                         Op = 21
	OpTypeFloat                       Op = 22
	OpTypeVector                      Op = 23
	OpTypeMatrix                      Op = 24
	OpTypeImage                       Op = 25
	OpTypeSampler                     Op = 26
	OpTypeSampledImage                Op = 27
	OpTypeArray                       Op = 28
	OpTypeRuntimeArray                Op = 29
	OpTypeStruct                      Op = 30
	OpTypeOpaque                      Op = 31
	OpTypePointer                     Op = 32
	OpTypeFunction                    Op = 33
	OpTypeForwardPointer              Op = 39
	OpConstantTrue                    Op = 41
	OpConstantFalse                   Op = 42
	OpConstant                        Op = 43
	OpConstantComposite               Op = 44
	OpConstantSampler                 Op = 45
	OpConstantNull                    Op = 46
	OpSpecConstantTrue                Op = 48
	OpSpecConstantFalse               Op = 49
	OpSpecConstant                    Op = 50
	OpSpecConstantComposite           Op = 51
	OpSpecConstantOp                  Op = 52
	OpFunction                        Op = 54
	OpFunctionParameter               Op = 55
	OpFunctionEnd                     Op = 56
	OpFunctionCall                    Op = 57
	OpVariable                        Op = 59
	OpImageTexelPointer               Op = 60
	OpLoad                            Op = 61
	OpStore                           Op = 62
	OpCopyMemory                      Op = 63
	OpCopyMemorySized                 Op = 64
	OpAccessChain                     Op = 65
	OpInBoundsAccessChain             Op = 66
	OpPtrAccessChain                  Op = 67
	OpArrayLength                     Op = 68
	OpInBoundsPtrAccessChain          Op = 70
	OpDecorate                        Op = 71
	OpMemberDecorate                  Op = 72
	OpDecorationGroup                 Op = 73
	OpGroupDecorate                   Op = 74
	OpGroupMemberDecorate             Op = 75
	OpVectorExtractDynamic            Op = 77
	OpVectorInsertDynamic             Op = 78
	OpVectorShuffle                   Op = 79
	OpCompositeConstruct              Op = 80
	OpCompositeExtract                Op = 81
	OpCompositeInsert                 Op = 82
	OpCopyObject                      Op = 83
	OpTranspose                       Op = 84
	OpSampledImage                    Op = 86
	OpImageSampleImplicitLod          Op = 87
	OpImageSampleExplicitLod          Op = 88
	OpImageSampleDrefImplicitLod      Op = 89
	OpImageSampleDrefExplicitLod      Op = 90
	OpImageSampleProjImplicitLod      Op = 91
	OpImageSampleProjExplicitLod      Op = 92
	OpImageSampleProjDrefImplicitLod  Op = 93
	OpImageSampleProjDrefExplicitLod  Op = 94
	OpImageFetch                      Op = 95
	OpImageGather                     Op = 96
	OpImageDrefGather                 Op = 97
	OpImageRead                       Op = 98
	OpImageWrite                      Op = 99
	OpImage                           Op = 100
	OpImageQueryFormat                Op = 101
	OpImageQueryOrder                 Op = 102
	OpImageQuerySizeLod               Op = 103
	OpImageQuerySize                  Op = 104
	OpImageQueryLod                   Op = 105
	OpImageQueryLevels                Op = 106
	OpImageQuerySamples               Op = 107
	OpConvertFToU                     Op = 109
	OpConvertFToS                     Op = 110
	OpConvertSToF                     Op = 111
	OpConvertUToF                     Op = 112
	OpUConvert                        Op = 113
	OpSConvert                        Op = 114
	OpFConvert                        Op = 115
	OpQuantizeToF16                   Op = 116
	OpConvertPtrToU                   Op = 117
	OpConvertUToPtr                   Op = 120
	OpBitcast                         Op = 124
	OpSNegate                         Op = 126
	OpFNegate                         Op = 127
	OpIAdd                            Op = 128
	OpFAdd                            Op = 129
	OpISub                            Op = 130
	OpFSub                            Op = 131
	OpIMul                            Op = 132
	OpFMul                            Op = 133
	OpUDiv                            Op = 134
	OpSDiv                            Op = 135
	OpFDiv                            Op = 136
	OpUMod                            Op = 137
	OpSRem                            Op = 138
	OpSMod                            Op = 139
	OpFRem                            Op = 140
	OpFMod                            Op = 141
	OpVectorTimesScalar               Op = 142
	OpMatrixTimesScalar               Op = 143
	OpVectorTimesMatrix               Op = 144
	OpMatrixTimesVector               Op = 145
	OpMatrixTimesMatrix               Op = 146
	OpOuterProduct                    Op = 147
	OpDot                             Op = 148
	OpIAddCarry                       Op = 149
	OpISubBorrow                      Op = 150
	OpUMulExtended                    Op = 151
	OpSMulExtended                    Op = 152
	OpAny                             Op = 154
	OpAll                             Op = 155
	OpIsNan                           Op = 156
	OpIsInf                           Op = 157
	OpIsFinite                        Op = 158
	OpIsNormal                        Op = 159
	OpSignBitSet                      Op = 160
	OpLessOrGreater                   Op = 161
	OpOrdered                         Op = 162
	OpUnordered                       Op = 163
	OpLogicalEqual                    Op = 164
	OpLogicalNotEqual                 Op = 165
	OpLogicalOr                       Op = 166
	OpLogicalAnd                      Op = 167
	OpLogicalNot                      Op = 168
	OpSelect                          Op = 169
	OpIEqual                          Op = 170
	OpINotEqual                       Op = 171
	OpUGreaterThan                    Op = 172
	OpSGreaterThan                    Op = 173
	OpUGreaterThanEqual               Op = 174
	OpSGreaterThanEqual               Op = 175
	OpULessThan                       Op = 176
	OpSLessThan                       Op = 177
	OpULessThanEqual                  Op = 178
	OpSLessThanEqual                  Op = 179
	OpFOrdEqual                       Op = 180
	OpFUnordEqual                     Op = 181
	OpFOrdNotEqual                    Op = 182
	OpFUnordNotEqual                  Op = 183
	OpFOrdLessThan                    Op = 184
	OpFUnordLessThan                  Op = 185
	OpFOrdGreaterThan                 Op = 186
	OpFUnordGreaterThan               Op = 187
	OpFOrdLessThanEqual               Op = 188
	OpFUnordLessThanEqual             Op = 189
	OpFOrdGreaterThanEqual            Op = 190
	OpFUnordGreaterThanEqual          Op = 191
	OpShiftRightLogical               Op = 194
	OpShiftRightArithmetic            Op = 195
	OpShiftLeftLogical                Op = 196
	OpBitwiseOr                       Op = 197
	OpBitwiseXor                      Op = 198
	OpBitwiseAnd                      Op = 199
	OpNot                             Op = 200
	OpBitFieldInsert                  Op = 201
	OpBitFieldSExtract                Op = 202
	OpBitFieldUExtract                Op = 203
	OpBitReverse                      Op = 204
	OpBitCount                        Op = 205
	OpDPdx                            Op = 207
	OpDPdy                            Op = 208
	OpFwidth                          Op = 209
	OpDPdxFine                        Op = 210
	OpDPdyFine                        Op = 211
	OpFwidthFine                      Op = 212
	OpDPdxCoarse                      Op = 213
	OpDPdyCoarse                      Op = 214
	OpFwidthCoarse                    Op = 215
	OpEmitVertex                      Op = 218
	OpEndPrimitive                    Op = 219
	OpControlBarrier                  Op = 224
	OpMemoryBarrier                   Op = 225
	OpAtomicLoad                      Op = 227
	OpAtomicStore                     Op = 228
	OpAtomicExchange                  Op = 229
	OpAtomicCompareExchange           Op = 230
	OpAtomicCompareExchangeWeak       Op = 231
	OpAtomicIIncrement                Op = 232
	OpAtomicIDecrement                Op = 233
	OpAtomicIAdd                      Op = 234
	OpAtomicISub                      Op = 235
	OpAtomicSMin                      Op = 236
	OpAtomicUMin                      Op = 237
	OpAtomicSMax                      Op = 238
	OpAtomicUMax                      Op = 239
	OpAtomicAnd                       Op = 240
	OpAtomicOr                        Op = 241
	OpAtomicXor                       Op = 242
	OpPhi                             Op = 245
	OpLoopMerge                       Op = 246
	OpSelectionMerge                  Op = 247
	OpLabel                           Op = 248
	OpBranch                          Op = 249
	OpBranchConditional               Op = 250
	OpSwitch                          Op = 251
	OpKill                            Op = 252
	OpReturn                          Op = 253
	OpReturnValue                     Op = 254
	OpUnreachable                     Op = 255
	OpLifetimeStart                   Op = 256
	OpLifetimeStop                    Op = 257
	OpImageSparseSampleImplicitLod    Op = 305
	OpImageSparseSampleExplicitLod    Op = 306
	OpImageSparseFetch                Op = 313
	OpImageSparseTexelsResident       Op = 316
	OpNoLine                          Op = 317
	OpModuleProcessed                 Op = 330
	OpExecutionModeID                 Op = 331
	OpDecorateID                      Op = 332
	OpGroupNonUniformElect            Op = 333
	OpGroupNonUniformAll              Op = 334
	OpGroupNonUniformAny              Op = 335
	OpGroupNonUniformAllEqual         Op = 336
	OpGroupNonUniformBroadcast        Op = 337
	OpGroupNonUniformBroadcastFirst   Op = 338
	OpGroupNonUniformBallot           Op = 339
	OpGroupNonUniformInverseBallot    Op = 340
	OpGroupNonUniformBallotBitExtract Op = 341
	OpGroupNonUniformBallotBitCount   Op = 342
	OpGroupNonUniformBallotFindLSB    Op = 343
	OpGroupNonUniformBallotFindMSB    Op = 344
	OpGroupNonUniformShuffle          Op = 345
	OpGroupNonUniformShuffleXor       Op = 346
	OpGroupNonUniformShuffleUp        Op = 347
	OpGroupNonUniformShuffleDown      Op = 348
	OpGroupNonUniformIAdd             Op = 349
	OpGroupNonUniformFAdd             Op = 350
	OpGroupNonUniformIMul             Op = 351
	OpGroupNonUniformFMul             Op = 352
	OpGroupNonUniformSMin             Op = 353
	OpGroupNonUniformUMin             Op = 354
	OpGroupNonUniformFMin             Op = 355
	OpGroupNonUniformSMax             Op = 356
	OpGroupNonUniformUMax             Op = 357
	OpGroupNonUniformFMax             Op = 358
	OpGroupNonUniformBitwiseAnd       Op = 359
	OpGroupNonUniformBitwiseOr        Op = 360
	OpGroupNonUniformBitwiseXor       Op = 361
	OpGroupNonUniformLogicalAnd       Op = 362
	OpGroupNonUniformLogicalOr        Op = 363
	OpGroupNonUniformLogicalXor       Op = 364
	OpGroupNonUniformQuadBroadcast    Op = 365
	OpGroupNonUniformQuadSwap         Op = 366
	OpCopyLogical                     Op = 400
	OpPtrEqual                        Op = 401
	OpPtrNotEqual                     Op = 402
	OpTerminateInvocation             Op = 4416
	OpDemoteToHelperInvocation        Op = 5380
	OpIsHelperInvocationEXT           Op = 5381
	OpDecorateString                  Op = 5632
	OpMemberDecorateString            Op = 5633
)

var opNames = map[Op]string{
	OpNop: "OpNop", OpUndef: "OpUndef", OpSourceContinued: "OpSourceContinued", OpSource: "OpSource",
	OpSourceExtension: "OpSourceExtension", OpName: "OpName", OpMemberName: "OpMemberName", OpString: "OpString",
	OpLine: "OpLine", OpExtension: "OpExtension", OpExtInstImport: "OpExtInstImport", OpExtInst: "OpExtInst",
	OpMemoryModel: "OpMemoryModel", OpEntryPoint: "OpEntryPoint", OpExecutionMode: "OpExecutionMode",
	OpCapability: "OpCapability", OpTypeVoid: "OpTypeVoid", OpTypeBool: "OpTypeBool", OpTypeInt: "OpTypeInt",
	OpTypeFloat: "OpTypeFloat", OpTypeVector: "OpTypeVector", OpTypeMatrix: "OpTypeMatrix",
	OpTypeImage: "OpTypeImage", OpTypeSampler: "OpTypeSampler", OpTypeSampledImage: "OpTypeSampledImage",
	OpTypeArray: "OpTypeArray", OpTypeRuntimeArray: "OpTypeRuntimeArray", OpTypeStruct: "OpTypeStruct",
	OpTypeOpaque: "OpTypeOpaque", OpTypePointer: "OpTypePointer", OpTypeFunction: "OpTypeFunction",
	OpTypeForwardPointer: "OpTypeForwardPointer", OpConstantTrue: "OpConstantTrue",
	OpConstantFalse: "OpConstantFalse", OpConstant: "OpConstant", OpConstantComposite: "OpConstantComposite",
	OpConstantSampler: "OpConstantSampler", OpConstantNull: "OpConstantNull",
	OpSpecConstantTrue: "OpSpecConstantTrue", OpSpecConstantFalse: "OpSpecConstantFalse",
	OpSpecConstant: "OpSpecConstant", OpSpecConstantComposite: "OpSpecConstantComposite",
	OpSpecConstantOp: "OpSpecConstantOp", OpFunction: "OpFunction", OpFunctionParameter: "OpFunctionParameter",
	OpFunctionEnd: "OpFunctionEnd", OpFunctionCall: "OpFunctionCall", OpVariable: "OpVariable",
	OpImageTexelPointer: "OpImageTexelPointer", OpLoad: "OpLoad", OpStore: "OpStore",
	OpCopyMemory: "OpCopyMemory", OpCopyMemorySized: "OpCopyMemorySized", OpAccessChain: "OpAccessChain",
	OpInBoundsAccessChain: "OpInBoundsAccessChain", OpPtrAccessChain: "OpPtrAccessChain",
	OpArrayLength: "OpArrayLength", OpInBoundsPtrAccessChain: "OpInBoundsPtrAccessChain",
	OpDecorate: "OpDecorate", OpMemberDecorate: "OpMemberDecorate", OpDecorationGroup: "OpDecorationGroup",
	OpGroupDecorate: "OpGroupDecorate", OpGroupMemberDecorate: "OpGroupMemberDecorate",
	OpVectorExtractDynamic: "OpVectorExtractDynamic", OpVectorInsertDynamic: "OpVectorInsertDynamic",
	OpVectorShuffle: "OpVectorShuffle", OpCompositeConstruct: "OpCompositeConstruct",
	OpCompositeExtract: "OpCompositeExtract", OpCompositeInsert: "OpCompositeInsert",
	OpCopyObject: "OpCopyObject", OpTranspose: "OpTranspose", OpSampledImage: "OpSampledImage",
	OpImageSampleImplicitLod: "OpImageSampleImplicitLod", OpImageSampleExplicitLod: "OpImageSampleExplicitLod",
	OpImageSampleDrefImplicitLod: "OpImageSampleDrefImplicitLod",
	OpImageSampleDrefExplicitLod: "OpImageSampleDrefExplicitLod",
	OpImageSampleProjImplicitLod: "OpImageSampleProjImplicitLod",
	OpImageSampleProjExplicitLod: "OpImageSampleProjExplicitLod",
	OpImageSampleProjDrefImplicitLod: "OpImageSampleProjDrefImplicitLod",
	OpImageSampleProjDrefExplicitLod: "OpImageSampleProjDrefExplicitLod",
	OpImageFetch: "OpImageFetch", OpImageGather: "OpImageGather", OpImageDrefGather: "OpImageDrefGather",
	OpImageRead: "OpImageRead", OpImageWrite: "OpImageWrite", OpImage: "OpImage",
	OpImageQueryFormat: "OpImageQueryFormat", OpImageQueryOrder: "OpImageQueryOrder",
	OpImageQuerySizeLod: "OpImageQuerySizeLod", OpImageQuerySize: "OpImageQuerySize",
	OpImageQueryLod: "OpImageQueryLod", OpImageQueryLevels: "OpImageQueryLevels",
	OpImageQuerySamples: "OpImageQuerySamples", OpConvertFToU: "OpConvertFToU", OpConvertFToS: "OpConvertFToS",
	OpConvertSToF: "OpConvertSToF", OpConvertUToF: "OpConvertUToF", OpUConvert: "OpUConvert",
	OpSConvert: "OpSConvert", OpFConvert: "OpFConvert", OpQuantizeToF16: "OpQuantizeToF16",
	OpConvertPtrToU: "OpConvertPtrToU", OpConvertUToPtr: "OpConvertUToPtr", OpBitcast: "OpBitcast",
	OpSNegate: "OpSNegate", OpFNegate: "OpFNegate", OpIAdd: "OpIAdd", OpFAdd: "OpFAdd", OpISub: "OpISub",
	OpFSub: "OpFSub", OpIMul: "OpIMul", OpFMul: "OpFMul", OpUDiv: "OpUDiv", OpSDiv: "OpSDiv", OpFDiv: "OpFDiv",
	OpUMod: "OpUMod", OpSRem: "OpSRem", OpSMod: "OpSMod", OpFRem: "OpFRem", OpFMod: "OpFMod",
	OpVectorTimesScalar: "OpVectorTimesScalar", OpMatrixTimesScalar: "OpMatrixTimesScalar",
	OpVectorTimesMatrix: "OpVectorTimesMatrix", OpMatrixTimesVector: "OpMatrixTimesVector",
	OpMatrixTimesMatrix: "OpMatrixTimesMatrix", OpOuterProduct: "OpOuterProduct", OpDot: "OpDot",
	OpIAddCarry: "OpIAddCarry", OpISubBorrow: "OpISubBorrow", OpUMulExtended: "OpUMulExtended",
	OpSMulExtended: "OpSMulExtended", OpAny: "OpAny", OpAll: "OpAll", OpIsNan: "OpIsNan", OpIsInf: "OpIsInf",
	OpIsFinite: "OpIsFinite", OpIsNormal: "OpIsNormal", OpSignBitSet: "OpSignBitSet",
	OpLessOrGreater: "OpLessOrGreater", OpOrdered: "OpOrdered", OpUnordered: "OpUnordered",
	OpLogicalEqual: "OpLogicalEqual", OpLogicalNotEqual: "OpLogicalNotEqual", OpLogicalOr: "OpLogicalOr",
	OpLogicalAnd: "OpLogicalAnd", OpLogicalNot: "OpLogicalNot", OpSelect: "OpSelect", OpIEqual: "OpIEqual",
	OpINotEqual: "OpINotEqual", OpUGreaterThan: "OpUGreaterThan", OpSGreaterThan: "OpSGreaterThan",
	OpUGreaterThanEqual: "OpUGreaterThanEqual", OpSGreaterThanEqual: "OpSGreaterThanEqual",
	OpULessThan: "OpULessThan", OpSLessThan: "OpSLessThan", OpULessThanEqual: "OpULessThanEqual",
	OpSLessThanEqual: "OpSLessThanEqual", OpFOrdEqual: "OpFOrdEqual", OpFUnordEqual: "OpFUnordEqual",
	OpFOrdNotEqual: "OpFOrdNotEqual", OpFUnordNotEqual: "OpFUnordNotEqual", OpFOrdLessThan: "OpFOrdLessThan",
	OpFUnordLessThan: "OpFUnordLessThan", OpFOrdGreaterThan: "OpFOrdGreaterThan",
	OpFUnordGreaterThan: "OpFUnordGreaterThan", OpFOrdLessThanEqual: "OpFOrdLessThanEqual",
	OpFUnordLessThanEqual: "OpFUnordLessThanEqual", OpFOrdGreaterThanEqual: "OpFOrdGreaterThanEqual",
	OpFUnordGreaterThanEqual: "OpFUnordGreaterThanEqual", OpShiftRightLogical: "OpShiftRightLogical",
	OpShiftRightArithmetic: "OpShiftRightArithmetic", OpShiftLeftLogical: "OpShiftLeftLogical",
	OpBitwiseOr: "OpBitwiseOr", OpBitwiseXor: "OpBitwiseXor", OpBitwiseAnd: "OpBitwiseAnd", OpNot: "OpNot",
	OpBitFieldInsert: "OpBitFieldInsert", OpBitFieldSExtract: "OpBitFieldSExtract",
	OpBitFieldUExtract: "OpBitFieldUExtract", OpBitReverse: "OpBitReverse", OpBitCount: "OpBitCount",
	OpDPdx: "OpDPdx", OpDPdy: "OpDPdy", OpFwidth: "OpFwidth", OpDPdxFine: "OpDPdxFine",
	OpDPdyFine: "OpDPdyFine", OpFwidthFine: "OpFwidthFine", OpDPdxCoarse: "OpDPdxCoarse",
	OpDPdyCoarse: "OpDPdyCoarse", OpFwidthCoarse: "OpFwidthCoarse", OpEmitVertex: "OpEmitVertex",
	OpEndPrimitive: "OpEndPrimitive", OpControlBarrier: "OpControlBarrier", OpMemoryBarrier: "OpMemoryBarrier",
	OpAtomicLoad: "OpAtomicLoad", OpAtomicStore: "OpAtomicStore", OpAtomicExchange: "OpAtomicExchange",
	OpAtomicCompareExchange: "OpAtomicCompareExchange", OpAtomicCompareExchangeWeak: "OpAtomicCompareExchangeWeak",
	OpAtomicIIncrement: "OpAtomicIIncrement", OpAtomicIDecrement: "OpAtomicIDecrement",
	OpAtomicIAdd: "OpAtomicIAdd", OpAtomicISub: "OpAtomicISub", OpAtomicSMin: "OpAtomicSMin",
	OpAtomicUMin: "OpAtomicUMin", OpAtomicSMax: "OpAtomicSMax", OpAtomicUMax: "OpAtomicUMax",
	OpAtomicAnd: "OpAtomicAnd", OpAtomicOr: "OpAtomicOr", OpAtomicXor: "OpAtomicXor", OpPhi: "OpPhi",
	OpLoopMerge: "OpLoopMerge", OpSelectionMerge: "OpSelectionMerge", OpLabel: "OpLabel", OpBranch: "OpBranch",
	OpBranchConditional: "OpBranchConditional", OpSwitch: "OpSwitch", OpKill: "OpKill", OpReturn: "OpReturn",
	OpReturnValue: "OpReturnValue", OpUnreachable: "OpUnreachable", OpLifetimeStart: "OpLifetimeStart",
	OpLifetimeStop: "OpLifetimeStop", OpImageSparseSampleImplicitLod: "OpImageSparseSampleImplicitLod",
	OpImageSparseSampleExplicitLod: "OpImageSparseSampleExplicitLod", OpImageSparseFetch: "OpImageSparseFetch",
	OpImageSparseTexelsResident: "OpImageSparseTexelsResident", OpNoLine: "OpNoLine",
	OpModuleProcessed: "OpModuleProcessed", OpExecutionModeID: "OpExecutionModeId", OpDecorateID: "OpDecorateId",
	OpGroupNonUniformElect: "OpGroupNonUniformElect", OpGroupNonUniformAll: "OpGroupNonUniformAll",
	OpGroupNonUniformAny: "OpGroupNonUniformAny", OpGroupNonUniformAllEqual: "OpGroupNonUniformAllEqual",
	OpGroupNonUniformBroadcast: "OpGroupNonUniformBroadcast",
	OpGroupNonUniformBroadcastFirst: "OpGroupNonUniformBroadcastFirst",
	OpGroupNonUniformBallot: "OpGroupNonUniformBallot", OpGroupNonUniformInverseBallot: "OpGroupNonUniformInverseBallot",
	OpGroupNonUniformBallotBitExtract: "OpGroupNonUniformBallotBitExtract",
	OpGroupNonUniformBallotBitCount: "OpGroupNonUniformBallotBitCount",
	OpGroupNonUniformBallotFindLSB: "OpGroupNonUniformBallotFindLSB",
	OpGroupNonUniformBallotFindMSB: "OpGroupNonUniformBallotFindMSB",
	OpGroupNonUniformShuffle: "OpGroupNonUniformShuffle", OpGroupNonUniformShuffleXor: "OpGroupNonUniformShuffleXor",
	OpGroupNonUniformShuffleUp: "OpGroupNonUniformShuffleUp", OpGroupNonUniformShuffleDown: "OpGroupNonUniformShuffleDown",
	OpGroupNonUniformIAdd: "OpGroupNonUniformIAdd", OpGroupNonUniformFAdd: "OpGroupNonUniformFAdd",
	OpGroupNonUniformIMul: "OpGroupNonUniformIMul", OpGroupNonUniformFMul: "OpGroupNonUniformFMul",
	OpGroupNonUniformSMin: "OpGroupNonUniformSMin", OpGroupNonUniformUMin: "OpGroupNonUniformUMin",
	OpGroupNonUniformFMin: "OpGroupNonUniformFMin", OpGroupNonUniformSMax: "OpGroupNonUniformSMax",
	OpGroupNonUniformUMax: "OpGroupNonUniformUMax", OpGroupNonUniformFMax: "OpGroupNonUniformFMax",
	OpGroupNonUniformBitwiseAnd: "OpGroupNonUniformBitwiseAnd", OpGroupNonUniformBitwiseOr: "OpGroupNonUniformBitwiseOr",
	OpGroupNonUniformBitwiseXor: "OpGroupNonUniformBitwiseXor", OpGroupNonUniformLogicalAnd: "OpGroupNonUniformLogicalAnd",
	OpGroupNonUniformLogicalOr: "OpGroupNonUniformLogicalOr", OpGroupNonUniformLogicalXor: "OpGroupNonUniformLogicalXor",
	OpGroupNonUniformQuadBroadcast: "OpGroupNonUniformQuadBroadcast", OpGroupNonUniformQuadSwap: "OpGroupNonUniformQuadSwap",
	OpCopyLogical: "OpCopyLogical", OpPtrEqual: "OpPtrEqual", OpPtrNotEqual: "OpPtrNotEqual",
	OpTerminateInvocation: "OpTerminateInvocation", OpDemoteToHelperInvocation: "OpDemoteToHelperInvocation",
	OpIsHelperInvocationEXT: "OpIsHelperInvocationEXT", OpDecorateString: "OpDecorateString",
	OpMemberDecorateString: "OpMemberDecorateString",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "Op" + strconv.Itoa(int(o))
}

// HasResult reports whether instructions with this opcode define a result ID,
// and whether the result ID is preceded by a result type ID.
func (o Op) HasResult() (hasResult, hasType bool) {
	switch o {
	case OpNop, OpSourceContinued, OpSource, OpSourceExtension, OpName, OpMemberName, OpLine, OpExtension,
		OpMemoryModel, OpEntryPoint, OpExecutionMode, OpCapability, OpTypeForwardPointer, OpFunctionEnd,
		OpStore, OpCopyMemory, OpCopyMemorySized, OpDecorate, OpMemberDecorate, OpGroupDecorate,
		OpGroupMemberDecorate, OpImageWrite, OpEmitVertex, OpEndPrimitive, OpControlBarrier, OpMemoryBarrier,
		OpAtomicStore, OpLoopMerge, OpSelectionMerge, OpBranch, OpBranchConditional, OpSwitch, OpKill,
		OpReturn, OpReturnValue, OpUnreachable, OpLifetimeStart, OpLifetimeStop, OpNoLine, OpModuleProcessed,
		OpExecutionModeID, OpDecorateID, OpTerminateInvocation, OpDemoteToHelperInvocation, OpDecorateString,
		OpMemberDecorateString:
		return false, false
	case OpString, OpExtInstImport, OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix,
		OpTypeImage, OpTypeSampler, OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray, OpTypeStruct,
		OpTypeOpaque, OpTypePointer, OpTypeFunction, OpDecorationGroup, OpLabel:
		return true, false
	default:
		return true, true
	}
}

// Decoration is a SPIR-V decoration kind.
type Decoration uint32

const (
	DecorationRelaxedPrecision     Decoration = 0
	DecorationSpecID               Decoration = 1
	DecorationBlock                Decoration = 2
	DecorationBufferBlock          Decoration = 3
	DecorationRowMajor             Decoration = 4
	DecorationColMajor             Decoration = 5
	DecorationArrayStride          Decoration = 6
	DecorationMatrixStride         Decoration = 7
	DecorationGLSLShared           Decoration = 8
	DecorationGLSLPacked           Decoration = 9
	DecorationCPacked              Decoration = 10
	DecorationBuiltIn              Decoration = 11
	DecorationNoPerspective        Decoration = 13
	DecorationFlat                 Decoration = 14
	DecorationPatch                Decoration = 15
	DecorationCentroid             Decoration = 16
	DecorationSample               Decoration = 17
	DecorationInvariant            Decoration = 18
	DecorationRestrict             Decoration = 19
	DecorationAliased              Decoration = 20
	DecorationVolatile             Decoration = 21
	DecorationConstant             Decoration = 22
	DecorationCoherent             Decoration = 23
	DecorationNonWritable          Decoration = 24
	DecorationNonReadable          Decoration = 25
	DecorationUniform              Decoration = 26
	DecorationSaturatedConversion  Decoration = 28
	DecorationStream               Decoration = 29
	DecorationLocation             Decoration = 30
	DecorationComponent            Decoration = 31
	DecorationIndex                Decoration = 32
	DecorationBinding              Decoration = 33
	DecorationDescriptorSet        Decoration = 34
	DecorationOffset               Decoration = 35
	DecorationXfbBuffer            Decoration = 36
	DecorationXfbStride            Decoration = 37
	DecorationFuncParamAttr        Decoration = 38
	DecorationFPRoundingMode       Decoration = 39
	DecorationFPFastMathMode       Decoration = 40
	DecorationLinkageAttributes    Decoration = 41
	DecorationNoContraction        Decoration = 42
	DecorationInputAttachmentIndex Decoration = 43
	DecorationAlignment            Decoration = 44
	DecorationPerVertexKHR         Decoration = 5285
	DecorationNonUniform           Decoration = 5300
	DecorationCounterBuffer        Decoration = 5634
	DecorationUserSemantic         Decoration = 5635
	DecorationUserTypeGOOGLE       Decoration = 5636
)

var decorationNames = map[Decoration]string{
	DecorationRelaxedPrecision: "RelaxedPrecision", DecorationSpecID: "SpecId", DecorationBlock: "Block",
	DecorationBufferBlock: "BufferBlock", DecorationRowMajor: "RowMajor", DecorationColMajor: "ColMajor",
	DecorationArrayStride: "ArrayStride", DecorationMatrixStride: "MatrixStride", DecorationGLSLShared: "GLSLShared",
	DecorationGLSLPacked: "GLSLPacked", DecorationCPacked: "CPacked", DecorationBuiltIn: "BuiltIn",
	DecorationNoPerspective: "NoPerspective", DecorationFlat: "Flat", DecorationPatch: "Patch",
	DecorationCentroid: "Centroid", DecorationSample: "Sample", DecorationInvariant: "Invariant",
	DecorationRestrict: "Restrict", DecorationAliased: "Aliased", DecorationVolatile: "Volatile",
	DecorationConstant: "Constant", DecorationCoherent: "Coherent", DecorationNonWritable: "NonWritable",
	DecorationNonReadable: "NonReadable", DecorationUniform: "Uniform",
	DecorationSaturatedConversion: "SaturatedConversion", DecorationStream: "Stream",
	DecorationLocation: "Location", DecorationComponent: "Component", DecorationIndex: "Index",
	DecorationBinding: "Binding", DecorationDescriptorSet: "DescriptorSet", DecorationOffset: "Offset",
	DecorationXfbBuffer: "XfbBuffer", DecorationXfbStride: "XfbStride", DecorationFuncParamAttr: "FuncParamAttr",
	DecorationFPRoundingMode: "FPRoundingMode", DecorationFPFastMathMode: "FPFastMathMode",
	DecorationLinkageAttributes: "LinkageAttributes", DecorationNoContraction: "NoContraction",
	DecorationInputAttachmentIndex: "InputAttachmentIndex", DecorationAlignment: "Alignment",
	DecorationPerVertexKHR: "PerVertexKHR", DecorationNonUniform: "NonUniform",
	DecorationCounterBuffer: "CounterBuffer", DecorationUserSemantic: "UserSemantic",
	DecorationUserTypeGOOGLE: "UserTypeGOOGLE",
}

func (d Decoration) String() string {
	if s, ok := decorationNames[d]; ok {
		return s
	}
	return strconv.FormatUint(uint64(d), 10)
}

// StorageClass is the memory class of a pointer.
type StorageClass uint32

const (
	StorageClassUniformConstant         StorageClass = 0
	StorageClassInput                   StorageClass = 1
	StorageClassUniform                 StorageClass = 2
	StorageClassOutput                  StorageClass = 3
	StorageClassWorkgroup               StorageClass = 4
	StorageClassCrossWorkgroup          StorageClass = 5
	StorageClassPrivate                 StorageClass = 6
	StorageClassFunction                StorageClass = 7
	StorageClassGeneric                 StorageClass = 8
	StorageClassPushConstant            StorageClass = 9
	StorageClassAtomicCounter           StorageClass = 10
	StorageClassImage                   StorageClass = 11
	StorageClassStorageBuffer           StorageClass = 12
	StorageClassRayPayloadKHR           StorageClass = 5338
	StorageClassHitAttributeKHR         StorageClass = 5339
	StorageClassIncomingRayPayloadKHR   StorageClass = 5342
	StorageClassShaderRecordBufferKHR   StorageClass = 5343
	StorageClassPhysicalStorageBuffer   StorageClass = 5349
	StorageClassTaskPayloadWorkgroupEXT StorageClass = 5402
)

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant: "UniformConstant", StorageClassInput: "Input", StorageClassUniform: "Uniform",
	StorageClassOutput: "Output", StorageClassWorkgroup: "Workgroup", StorageClassCrossWorkgroup: "CrossWorkgroup",
	StorageClassPrivate: "Private", StorageClassFunction: "Function", StorageClassGeneric: "Generic",
	StorageClassPushConstant: "PushConstant", StorageClassAtomicCounter: "AtomicCounter",
	StorageClassImage: "Image", StorageClassStorageBuffer: "StorageBuffer",
	StorageClassRayPayloadKHR: "RayPayloadKHR", StorageClassHitAttributeKHR: "HitAttributeKHR",
	StorageClassIncomingRayPayloadKHR: "IncomingRayPayloadKHR",
	StorageClassShaderRecordBufferKHR: "ShaderRecordBufferKHR",
	StorageClassPhysicalStorageBuffer: "PhysicalStorageBuffer",
	StorageClassTaskPayloadWorkgroupEXT: "TaskPayloadWorkgroupEXT",
}

func (s StorageClass) String() string {
	if n, ok := storageClassNames[s]; ok {
		return n
	}
	return strconv.FormatUint(uint64(s), 10)
}

// BuiltIn identifies a builtin variable.
type BuiltIn uint32

const (
	BuiltInPosition                  BuiltIn = 0
	BuiltInPointSize                 BuiltIn = 1
	BuiltInClipDistance              BuiltIn = 3
	BuiltInCullDistance              BuiltIn = 4
	BuiltInVertexID                  BuiltIn = 5
	BuiltInInstanceID                BuiltIn = 6
	BuiltInPrimitiveID               BuiltIn = 7
	BuiltInInvocationID              BuiltIn = 8
	BuiltInLayer                     BuiltIn = 9
	BuiltInViewportIndex             BuiltIn = 10
	BuiltInTessLevelOuter            BuiltIn = 11
	BuiltInTessLevelInner            BuiltIn = 12
	BuiltInTessCoord                 BuiltIn = 13
	BuiltInPatchVertices             BuiltIn = 14
	BuiltInFragCoord                 BuiltIn = 15
	BuiltInPointCoord                BuiltIn = 16
	BuiltInFrontFacing               BuiltIn = 17
	BuiltInSampleID                  BuiltIn = 18
	BuiltInSamplePosition            BuiltIn = 19
	BuiltInSampleMask                BuiltIn = 20
	BuiltInFragDepth                 BuiltIn = 22
	BuiltInHelperInvocation          BuiltIn = 23
	BuiltInNumWorkgroups             BuiltIn = 24
	BuiltInWorkgroupSize             BuiltIn = 25
	BuiltInWorkgroupID               BuiltIn = 26
	BuiltInLocalInvocationID         BuiltIn = 27
	BuiltInGlobalInvocationID        BuiltIn = 28
	BuiltInLocalInvocationIndex      BuiltIn = 29
	BuiltInSubgroupSize              BuiltIn = 36
	BuiltInNumSubgroups              BuiltIn = 38
	BuiltInSubgroupID                BuiltIn = 40
	BuiltInSubgroupLocalInvocationID BuiltIn = 41
	BuiltInVertexIndex               BuiltIn = 42
	BuiltInInstanceIndex             BuiltIn = 43
	BuiltInSubgroupEqMask            BuiltIn = 4416
	BuiltInSubgroupGeMask            BuiltIn = 4417
	BuiltInSubgroupGtMask            BuiltIn = 4418
	BuiltInSubgroupLeMask            BuiltIn = 4419
	BuiltInSubgroupLtMask            BuiltIn = 4420
	BuiltInBaseVertex                BuiltIn = 4424
	BuiltInBaseInstance              BuiltIn = 4425
	BuiltInDrawIndex                 BuiltIn = 4426
	BuiltInDeviceIndex               BuiltIn = 4438
	BuiltInViewIndex                 BuiltIn = 4440
	BuiltInFragStencilRefEXT         BuiltIn = 5014
)

var builtInNames = map[BuiltIn]string{
	BuiltInPosition: "Position", BuiltInPointSize: "PointSize", BuiltInClipDistance: "ClipDistance",
	BuiltInCullDistance: "CullDistance", BuiltInVertexID: "VertexId", BuiltInInstanceID: "InstanceId",
	BuiltInPrimitiveID: "PrimitiveId", BuiltInInvocationID: "InvocationId", BuiltInLayer: "Layer",
	BuiltInViewportIndex: "ViewportIndex", BuiltInTessLevelOuter: "TessLevelOuter",
	BuiltInTessLevelInner: "TessLevelInner", BuiltInTessCoord: "TessCoord", BuiltInPatchVertices: "PatchVertices",
	BuiltInFragCoord: "FragCoord", BuiltInPointCoord: "PointCoord", BuiltInFrontFacing: "FrontFacing",
	BuiltInSampleID: "SampleId", BuiltInSamplePosition: "SamplePosition", BuiltInSampleMask: "SampleMask",
	BuiltInFragDepth: "FragDepth", BuiltInHelperInvocation: "HelperInvocation",
	BuiltInNumWorkgroups: "NumWorkgroups", BuiltInWorkgroupSize: "WorkgroupSize", BuiltInWorkgroupID: "WorkgroupId",
	BuiltInLocalInvocationID: "LocalInvocationId", BuiltInGlobalInvocationID: "GlobalInvocationId",
	BuiltInLocalInvocationIndex: "LocalInvocationIndex", BuiltInSubgroupSize: "SubgroupSize",
	BuiltInNumSubgroups: "NumSubgroups", BuiltInSubgroupID: "SubgroupId",
	BuiltInSubgroupLocalInvocationID: "SubgroupLocalInvocationId", BuiltInVertexIndex: "VertexIndex",
	BuiltInInstanceIndex: "InstanceIndex", BuiltInSubgroupEqMask: "SubgroupEqMask",
	BuiltInSubgroupGeMask: "SubgroupGeMask", BuiltInSubgroupGtMask: "SubgroupGtMask",
	BuiltInSubgroupLeMask: "SubgroupLeMask", BuiltInSubgroupLtMask: "SubgroupLtMask",
	BuiltInBaseVertex: "BaseVertex", BuiltInBaseInstance: "BaseInstance", BuiltInDrawIndex: "DrawIndex",
	BuiltInDeviceIndex: "DeviceIndex", BuiltInViewIndex: "ViewIndex", BuiltInFragStencilRefEXT: "FragStencilRefEXT",
}

func (b BuiltIn) String() string {
	if s, ok := builtInNames[b]; ok {
		return s
	}
	return strconv.FormatUint(uint64(b), 10)
}

// ExecutionModel is the shader stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
	ExecutionModelKernel                 ExecutionModel = 6
	ExecutionModelRayGenerationKHR       ExecutionModel = 5313
	ExecutionModelIntersectionKHR        ExecutionModel = 5314
	ExecutionModelAnyHitKHR              ExecutionModel = 5315
	ExecutionModelClosestHitKHR          ExecutionModel = 5316
	ExecutionModelMissKHR                ExecutionModel = 5317
	ExecutionModelCallableKHR            ExecutionModel = 5318
	ExecutionModelTaskEXT                ExecutionModel = 5364
	ExecutionModelMeshEXT                ExecutionModel = 5365
)

var executionModelNames = map[ExecutionModel]string{
	ExecutionModelVertex: "Vertex", ExecutionModelTessellationControl: "TessellationControl",
	ExecutionModelTessellationEvaluation: "TessellationEvaluation", ExecutionModelGeometry: "Geometry",
	ExecutionModelFragment: "Fragment", ExecutionModelGLCompute: "GLCompute", ExecutionModelKernel: "Kernel",
	ExecutionModelRayGenerationKHR: "RayGenerationKHR", ExecutionModelIntersectionKHR: "IntersectionKHR",
	ExecutionModelAnyHitKHR: "AnyHitKHR", ExecutionModelClosestHitKHR: "ClosestHitKHR",
	ExecutionModelMissKHR: "MissKHR", ExecutionModelCallableKHR: "CallableKHR",
	ExecutionModelTaskEXT: "TaskEXT", ExecutionModelMeshEXT: "MeshEXT",
}

func (e ExecutionModel) String() string {
	if s, ok := executionModelNames[e]; ok {
		return s
	}
	return strconv.FormatUint(uint64(e), 10)
}

// Short stage names accepted by ParseExecutionModel.
var executionModelAliases = map[string]ExecutionModel{
	"vert": ExecutionModelVertex, "tesc": ExecutionModelTessellationControl,
	"tese": ExecutionModelTessellationEvaluation, "geom": ExecutionModelGeometry,
	"frag": ExecutionModelFragment, "comp": ExecutionModelGLCompute,
	"mesh": ExecutionModelMeshEXT, "task": ExecutionModelTaskEXT,
}

// ParseExecutionModel parses a stage name such as "Fragment" or "frag".
func ParseExecutionModel(s string) (ExecutionModel, error) {
	if e, ok := executionModelAliases[strings.ToLower(s)]; ok {
		return e, nil
	}
	for e, name := range executionModelNames {
		if strings.EqualFold(name, s) {
			return e, nil
		}
	}
	return 0, fmt.Errorf("spirv: unknown execution model %q", s)
}

// MarshalText renders the stage name.
func (e ExecutionModel) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText parses a stage name.
func (e *ExecutionModel) UnmarshalText(text []byte) error {
	v, err := ParseExecutionModel(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ExecutionMode is a per-entry-point mode declaration.
type ExecutionMode uint32

const (
	ExecutionModeInvocations             ExecutionMode = 0
	ExecutionModeSpacingEqual            ExecutionMode = 1
	ExecutionModeSpacingFractionalEven   ExecutionMode = 2
	ExecutionModeSpacingFractionalOdd    ExecutionMode = 3
	ExecutionModeVertexOrderCw           ExecutionMode = 4
	ExecutionModeVertexOrderCcw          ExecutionMode = 5
	ExecutionModePixelCenterInteger      ExecutionMode = 6
	ExecutionModeOriginUpperLeft         ExecutionMode = 7
	ExecutionModeOriginLowerLeft         ExecutionMode = 8
	ExecutionModeEarlyFragmentTests      ExecutionMode = 9
	ExecutionModePointMode               ExecutionMode = 10
	ExecutionModeXfb                     ExecutionMode = 11
	ExecutionModeDepthReplacing          ExecutionMode = 12
	ExecutionModeDepthGreater            ExecutionMode = 14
	ExecutionModeDepthLess               ExecutionMode = 15
	ExecutionModeDepthUnchanged          ExecutionMode = 16
	ExecutionModeLocalSize               ExecutionMode = 17
	ExecutionModeLocalSizeHint           ExecutionMode = 18
	ExecutionModeInputPoints             ExecutionMode = 19
	ExecutionModeInputLines              ExecutionMode = 20
	ExecutionModeInputLinesAdjacency     ExecutionMode = 21
	ExecutionModeTriangles               ExecutionMode = 22
	ExecutionModeInputTrianglesAdjacency ExecutionMode = 23
	ExecutionModeQuads                   ExecutionMode = 24
	ExecutionModeIsolines                ExecutionMode = 25
	ExecutionModeOutputVertices          ExecutionMode = 26
	ExecutionModeOutputPoints            ExecutionMode = 27
	ExecutionModeOutputLineStrip         ExecutionMode = 28
	ExecutionModeOutputTriangleStrip     ExecutionMode = 29
	ExecutionModeLocalSizeID             ExecutionMode = 38
	ExecutionModePostDepthCoverage       ExecutionMode = 4446
)

var executionModeNames = map[ExecutionMode]string{
	ExecutionModeInvocations: "Invocations", ExecutionModeSpacingEqual: "SpacingEqual",
	ExecutionModeSpacingFractionalEven: "SpacingFractionalEven", ExecutionModeSpacingFractionalOdd: "SpacingFractionalOdd",
	ExecutionModeVertexOrderCw: "VertexOrderCw", ExecutionModeVertexOrderCcw: "VertexOrderCcw",
	ExecutionModePixelCenterInteger: "PixelCenterInteger", ExecutionModeOriginUpperLeft: "OriginUpperLeft",
	ExecutionModeOriginLowerLeft: "OriginLowerLeft", ExecutionModeEarlyFragmentTests: "EarlyFragmentTests",
	ExecutionModePointMode: "PointMode", ExecutionModeXfb: "Xfb", ExecutionModeDepthReplacing: "DepthReplacing",
	ExecutionModeDepthGreater: "DepthGreater", ExecutionModeDepthLess: "DepthLess",
	ExecutionModeDepthUnchanged: "DepthUnchanged", ExecutionModeLocalSize: "LocalSize",
	ExecutionModeLocalSizeHint: "LocalSizeHint", ExecutionModeInputPoints: "InputPoints",
	ExecutionModeInputLines: "InputLines", ExecutionModeInputLinesAdjacency: "InputLinesAdjacency",
	ExecutionModeTriangles: "Triangles", ExecutionModeInputTrianglesAdjacency: "InputTrianglesAdjacency",
	ExecutionModeQuads: "Quads", ExecutionModeIsolines: "Isolines", ExecutionModeOutputVertices: "OutputVertices",
	ExecutionModeOutputPoints: "OutputPoints", ExecutionModeOutputLineStrip: "OutputLineStrip",
	ExecutionModeOutputTriangleStrip: "OutputTriangleStrip", ExecutionModeLocalSizeID: "LocalSizeId",
	ExecutionModePostDepthCoverage: "PostDepthCoverage",
}

func (e ExecutionMode) String() string {
	if s, ok := executionModeNames[e]; ok {
		return s
	}
	return strconv.FormatUint(uint64(e), 10)
}

// Capability is a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix                         Capability = 0
	CapabilityShader                         Capability = 1
	CapabilityGeometry                       Capability = 2
	CapabilityTessellation                   Capability = 3
	CapabilityFloat16                        Capability = 9
	CapabilityFloat64                        Capability = 10
	CapabilityInt64                          Capability = 11
	CapabilityInt64Atomics                   Capability = 12
	CapabilityInt16                          Capability = 22
	CapabilityClipDistance                   Capability = 32
	CapabilityCullDistance                   Capability = 33
	CapabilityImageCubeArray                 Capability = 34
	CapabilitySampleRateShading              Capability = 35
	CapabilityInt8                           Capability = 39
	CapabilityInputAttachment                Capability = 40
	CapabilitySparseResidency                Capability = 41
	CapabilityMinLod                         Capability = 42
	CapabilitySampled1D                      Capability = 43
	CapabilityImage1D                        Capability = 44
	CapabilitySampledBuffer                  Capability = 46
	CapabilityImageBuffer                    Capability = 47
	CapabilityImageQuery                     Capability = 50
	CapabilityDerivativeControl              Capability = 51
	CapabilityStorageImageReadWithoutFormat  Capability = 55
	CapabilityStorageImageWriteWithoutFormat Capability = 56
	CapabilityMultiViewport                  Capability = 57
	CapabilityGroupNonUniform                Capability = 61
	CapabilityGroupNonUniformVote            Capability = 62
	CapabilityGroupNonUniformArithmetic      Capability = 63
	CapabilityGroupNonUniformBallot          Capability = 64
	CapabilityGroupNonUniformShuffle         Capability = 65
	CapabilityGroupNonUniformShuffleRelative Capability = 66
	CapabilityGroupNonUniformClustered       Capability = 67
	CapabilityGroupNonUniformQuad            Capability = 68
	CapabilityDrawParameters                 Capability = 4427
	CapabilityStorageBuffer16BitAccess       Capability = 4433
	CapabilityMultiView                      Capability = 4439
	CapabilityRayQueryKHR                    Capability = 4472
	CapabilityRayTracingKHR                  Capability = 4479
	CapabilityMeshShadingEXT                 Capability = 5283
	CapabilityShaderNonUniform               Capability = 5301
	CapabilityRuntimeDescriptorArray         Capability = 5302
	CapabilityDemoteToHelperInvocation       Capability = 5379
)

var capabilityNames = map[Capability]string{
	CapabilityMatrix: "Matrix", CapabilityShader: "Shader", CapabilityGeometry: "Geometry",
	CapabilityTessellation: "Tessellation", CapabilityFloat16: "Float16", CapabilityFloat64: "Float64",
	CapabilityInt64: "Int64", CapabilityInt64Atomics: "Int64Atomics", CapabilityInt16: "Int16",
	CapabilityClipDistance: "ClipDistance", CapabilityCullDistance: "CullDistance",
	CapabilityImageCubeArray: "ImageCubeArray", CapabilitySampleRateShading: "SampleRateShading",
	CapabilityInt8: "Int8", CapabilityInputAttachment: "InputAttachment",
	CapabilitySparseResidency: "SparseResidency", CapabilityMinLod: "MinLod", CapabilitySampled1D: "Sampled1D",
	CapabilityImage1D: "Image1D", CapabilitySampledBuffer: "SampledBuffer", CapabilityImageBuffer: "ImageBuffer",
	CapabilityImageQuery: "ImageQuery", CapabilityDerivativeControl: "DerivativeControl",
	CapabilityStorageImageReadWithoutFormat:  "StorageImageReadWithoutFormat",
	CapabilityStorageImageWriteWithoutFormat: "StorageImageWriteWithoutFormat",
	CapabilityMultiViewport:                  "MultiViewport", CapabilityGroupNonUniform: "GroupNonUniform",
	CapabilityGroupNonUniformVote: "GroupNonUniformVote", CapabilityGroupNonUniformArithmetic: "GroupNonUniformArithmetic",
	CapabilityGroupNonUniformBallot: "GroupNonUniformBallot", CapabilityGroupNonUniformShuffle: "GroupNonUniformShuffle",
	CapabilityGroupNonUniformShuffleRelative: "GroupNonUniformShuffleRelative",
	CapabilityGroupNonUniformClustered:       "GroupNonUniformClustered", CapabilityGroupNonUniformQuad: "GroupNonUniformQuad",
	CapabilityDrawParameters: "DrawParameters", CapabilityStorageBuffer16BitAccess: "StorageBuffer16BitAccess",
	CapabilityMultiView: "MultiView", CapabilityRayQueryKHR: "RayQueryKHR", CapabilityRayTracingKHR: "RayTracingKHR",
	CapabilityMeshShadingEXT: "MeshShadingEXT", CapabilityShaderNonUniform: "ShaderNonUniform",
	CapabilityRuntimeDescriptorArray:   "RuntimeDescriptorArray",
	CapabilityDemoteToHelperInvocation: "DemoteToHelperInvocation",
}

func (c Capability) String() string {
	if s, ok := capabilityNames[c]; ok {
		return s
	}
	return strconv.FormatUint(uint64(c), 10)
}

// Dim is an image dimensionality.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

func (d Dim) String() string {
	switch d {
	case Dim1D:
		return "1D"
	case Dim2D:
		return "2D"
	case Dim3D:
		return "3D"
	case DimCube:
		return "Cube"
	case DimRect:
		return "Rect"
	case DimBuffer:
		return "Buffer"
	case DimSubpassData:
		return "SubpassData"
	}
	return strconv.FormatUint(uint64(d), 10)
}

// ImageFormat is the texel format of a storage image.
type ImageFormat uint32

const (
	ImageFormatUnknown      ImageFormat = 0
	ImageFormatRgba32f      ImageFormat = 1
	ImageFormatRgba16f      ImageFormat = 2
	ImageFormatR32f         ImageFormat = 3
	ImageFormatRgba8        ImageFormat = 4
	ImageFormatRgba8Snorm   ImageFormat = 5
	ImageFormatRg32f        ImageFormat = 6
	ImageFormatRg16f        ImageFormat = 7
	ImageFormatR11fG11fB10f ImageFormat = 8
	ImageFormatR16f         ImageFormat = 9
	ImageFormatRgba16       ImageFormat = 10
	ImageFormatRgb10A2      ImageFormat = 11
	ImageFormatRg16         ImageFormat = 12
	ImageFormatRg8          ImageFormat = 13
	ImageFormatR16          ImageFormat = 14
	ImageFormatR8           ImageFormat = 15
	ImageFormatRgba16Snorm  ImageFormat = 16
	ImageFormatRg16Snorm    ImageFormat = 17
	ImageFormatRg8Snorm     ImageFormat = 18
	ImageFormatR16Snorm     ImageFormat = 19
	ImageFormatR8Snorm      ImageFormat = 20
	ImageFormatRgba32i      ImageFormat = 21
	ImageFormatRgba16i      ImageFormat = 22
	ImageFormatRgba8i       ImageFormat = 23
	ImageFormatR32i         ImageFormat = 24
	ImageFormatRg32i        ImageFormat = 25
	ImageFormatRg16i        ImageFormat = 26
	ImageFormatRg8i         ImageFormat = 27
	ImageFormatR16i         ImageFormat = 28
	ImageFormatR8i          ImageFormat = 29
	ImageFormatRgba32ui     ImageFormat = 30
	ImageFormatRgba16ui     ImageFormat = 31
	ImageFormatRgba8ui      ImageFormat = 32
	ImageFormatR32ui        ImageFormat = 33
	ImageFormatRgb10a2ui    ImageFormat = 34
	ImageFormatRg32ui       ImageFormat = 35
	ImageFormatRg16ui       ImageFormat = 36
	ImageFormatRg8ui        ImageFormat = 37
	ImageFormatR16ui        ImageFormat = 38
	ImageFormatR8ui         ImageFormat = 39
)

// Components returns the channel count of the format, or 4 when unknown.
func (f ImageFormat) Components() int {
	switch f {
	case ImageFormatR32f, ImageFormatR16f, ImageFormatR16, ImageFormatR8, ImageFormatR16Snorm, ImageFormatR8Snorm,
		ImageFormatR32i, ImageFormatR16i, ImageFormatR8i, ImageFormatR32ui, ImageFormatR16ui, ImageFormatR8ui:
		return 1
	case ImageFormatRg32f, ImageFormatRg16f, ImageFormatRg16, ImageFormatRg8, ImageFormatRg16Snorm, ImageFormatRg8Snorm,
		ImageFormatRg32i, ImageFormatRg16i, ImageFormatRg8i, ImageFormatRg32ui, ImageFormatRg16ui, ImageFormatRg8ui:
		return 2
	case ImageFormatR11fG11fB10f:
		return 3
	}
	return 4
}

// AddressingModel is the module addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical                 AddressingModel = 0
	AddressingModelPhysical32              AddressingModel = 1
	AddressingModelPhysical64              AddressingModel = 2
	AddressingModelPhysicalStorageBuffer64 AddressingModel = 5348
)

// MemoryModel is the module memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
	MemoryModelVulkan  MemoryModel = 3
)

// AccessQualifier restricts storage image access.
type AccessQualifier uint32

const (
	AccessQualifierReadOnly  AccessQualifier = 0
	AccessQualifierWriteOnly AccessQualifier = 1
	AccessQualifierReadWrite AccessQualifier = 2
)

// FunctionControl is the function control mask.
type FunctionControl uint32

const (
	FunctionControlNone       FunctionControl = 0
	FunctionControlInline     FunctionControl = 1
	FunctionControlDontInline FunctionControl = 2
	FunctionControlPure       FunctionControl = 4
	FunctionControlConst      FunctionControl = 8
)

// SelectionControl is the selection merge control mask.
type SelectionControl uint32

const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 1
	SelectionControlDontFlatten SelectionControl = 2
)

// LoopControl is the loop merge control mask.
type LoopControl uint32

const (
	LoopControlNone       LoopControl = 0
	LoopControlUnroll     LoopControl = 1
	LoopControlDontUnroll LoopControl = 2
)

// ImageOperands is the image operand mask.
type ImageOperands uint32

const (
	ImageOperandsBias               ImageOperands = 0x1
	ImageOperandsLod                ImageOperands = 0x2
	ImageOperandsGrad               ImageOperands = 0x4
	ImageOperandsConstOffset        ImageOperands = 0x8
	ImageOperandsOffset             ImageOperands = 0x10
	ImageOperandsConstOffsets       ImageOperands = 0x20
	ImageOperandsSample             ImageOperands = 0x40
	ImageOperandsMinLod             ImageOperands = 0x80
	ImageOperandsMakeTexelAvailable ImageOperands = 0x100
	ImageOperandsMakeTexelVisible   ImageOperands = 0x200
	ImageOperandsNonPrivateTexel    ImageOperands = 0x400
	ImageOperandsVolatileTexel      ImageOperands = 0x800
	ImageOperandsSignExtend         ImageOperands = 0x1000
	ImageOperandsZeroExtend         ImageOperands = 0x2000
	ImageOperandsNontemporal        ImageOperands = 0x4000
	ImageOperandsOffsets            ImageOperands = 0x10000
)

// Scope is an execution or memory scope.
type Scope uint32

const (
	ScopeCrossDevice Scope = 0
	ScopeDevice      Scope = 1
	ScopeWorkgroup   Scope = 2
	ScopeSubgroup    Scope = 3
	ScopeInvocation  Scope = 4
	ScopeQueueFamily Scope = 5
)

// MemorySemantics is the memory semantics mask.
type MemorySemantics uint32

const (
	MemorySemanticsAcquire                MemorySemantics = 0x2
	MemorySemanticsRelease                MemorySemantics = 0x4
	MemorySemanticsAcquireRelease         MemorySemantics = 0x8
	MemorySemanticsSequentiallyConsistent MemorySemantics = 0x10
	MemorySemanticsUniformMemory          MemorySemantics = 0x40
	MemorySemanticsSubgroupMemory         MemorySemantics = 0x80
	MemorySemanticsWorkgroupMemory        MemorySemantics = 0x100
	MemorySemanticsCrossWorkgroupMemory   MemorySemantics = 0x200
	MemorySemanticsAtomicCounterMemory    MemorySemantics = 0x400
	MemorySemanticsImageMemory            MemorySemantics = 0x800
)

// GroupOperation selects reduce or scan for subgroup arithmetic.
type GroupOperation uint32

const (
	GroupOperationReduce          GroupOperation = 0
	GroupOperationInclusiveScan   GroupOperation = 1
	GroupOperationExclusiveScan   GroupOperation = 2
	GroupOperationClusteredReduce GroupOperation = 3
)

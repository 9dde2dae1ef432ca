// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

// GLSLStd450ImportName is the extended instruction set name for GLSL.std.450.
const GLSLStd450ImportName = "GLSL.std.450"

// GLSLStd450 is an instruction number in the GLSL.std.450 set.
type GLSLStd450 uint32

const (
	GLSLRound                 GLSLStd450 = 1
	GLSLRoundEven             GLSLStd450 = 2
	GLSLTrunc                 GLSLStd450 = 3
	GLSLFAbs                  GLSLStd450 = 4
	GLSLSAbs                  GLSLStd450 = 5
	GLSLFSign                 GLSLStd450 = 6
	GLSLSSign                 GLSLStd450 = 7
	GLSLFloor                 GLSLStd450 = 8
	GLSLCeil                  GLSLStd450 = 9
	GLSLFract                 GLSLStd450 = 10
	GLSLRadians               GLSLStd450 = 11
	GLSLDegrees               GLSLStd450 = 12
	GLSLSin                   GLSLStd450 = 13
	GLSLCos                   GLSLStd450 = 14
	GLSLTan                   GLSLStd450 = 15
	GLSLAsin                  GLSLStd450 = 16
	GLSLAcos                  GLSLStd450 = 17
	GLSLAtan                  GLSLStd450 = 18
	GLSLSinh                  GLSLStd450 = 19
	GLSLCosh                  GLSLStd450 = 20
	GLSLTanh                  GLSLStd450 = 21
	GLSLAsinh                 GLSLStd450 = 22
	GLSLAcosh                 GLSLStd450 = 23
	GLSLAtanh                 GLSLStd450 = 24
	GLSLAtan2                 GLSLStd450 = 25
	GLSLPow                   GLSLStd450 = 26
	GLSLExp                   GLSLStd450 = 27
	GLSLLog                   GLSLStd450 = 28
	GLSLExp2                  GLSLStd450 = 29
	GLSLLog2                  GLSLStd450 = 30
	GLSLSqrt                  GLSLStd450 = 31
	GLSLInverseSqrt           GLSLStd450 = 32
	GLSLDeterminant           GLSLStd450 = 33
	GLSLMatrixInverse         GLSLStd450 = 34
	GLSLModf                  GLSLStd450 = 35
	GLSLModfStruct            GLSLStd450 = 36
	GLSLFMin                  GLSLStd450 = 37
	GLSLUMin                  GLSLStd450 = 38
	GLSLSMin                  GLSLStd450 = 39
	GLSLFMax                  GLSLStd450 = 40
	GLSLUMax                  GLSLStd450 = 41
	GLSLSMax                  GLSLStd450 = 42
	GLSLFClamp                GLSLStd450 = 43
	GLSLUClamp                GLSLStd450 = 44
	GLSLSClamp                GLSLStd450 = 45
	GLSLFMix                  GLSLStd450 = 46
	GLSLIMix                  GLSLStd450 = 47
	GLSLStep                  GLSLStd450 = 48
	GLSLSmoothStep            GLSLStd450 = 49
	GLSLFma                   GLSLStd450 = 50
	GLSLFrexp                 GLSLStd450 = 51
	GLSLFrexpStruct           GLSLStd450 = 52
	GLSLLdexp                 GLSLStd450 = 53
	GLSLPackSnorm4x8          GLSLStd450 = 54
	GLSLPackUnorm4x8          GLSLStd450 = 55
	GLSLPackSnorm2x16         GLSLStd450 = 56
	GLSLPackUnorm2x16         GLSLStd450 = 57
	GLSLPackHalf2x16          GLSLStd450 = 58
	GLSLPackDouble2x32        GLSLStd450 = 59
	GLSLUnpackSnorm2x16       GLSLStd450 = 60
	GLSLUnpackUnorm2x16       GLSLStd450 = 61
	GLSLUnpackHalf2x16        GLSLStd450 = 62
	GLSLUnpackSnorm4x8        GLSLStd450 = 63
	GLSLUnpackUnorm4x8        GLSLStd450 = 64
	GLSLUnpackDouble2x32      GLSLStd450 = 65
	GLSLLength                GLSLStd450 = 66
	GLSLDistance              GLSLStd450 = 67
	GLSLCross                 GLSLStd450 = 68
	GLSLNormalize             GLSLStd450 = 69
	GLSLFaceForward           GLSLStd450 = 70
	GLSLReflect               GLSLStd450 = 71
	GLSLRefract               GLSLStd450 = 72
	GLSLFindILsb              GLSLStd450 = 73
	GLSLFindSMsb              GLSLStd450 = 74
	GLSLFindUMsb              GLSLStd450 = 75
	GLSLInterpolateAtCentroid GLSLStd450 = 76
	GLSLInterpolateAtSample   GLSLStd450 = 77
	GLSLInterpolateAtOffset   GLSLStd450 = 78
	GLSLNMin                  GLSLStd450 = 79
	GLSLNMax                  GLSLStd450 = 80
	GLSLNClamp                GLSLStd450 = 81
)

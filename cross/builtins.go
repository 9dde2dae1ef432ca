// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import "github.com/gogpu/spvcross/spirv"

// BuiltinName returns the GLSL-style identifier of a builtin. Targets use
// it for members of builtin blocks they keep as structs.
func BuiltinName(b spirv.BuiltIn) string {
	switch b {
	case spirv.BuiltInPosition:
		return "gl_Position"
	case spirv.BuiltInPointSize:
		return "gl_PointSize"
	case spirv.BuiltInClipDistance:
		return "gl_ClipDistance"
	case spirv.BuiltInCullDistance:
		return "gl_CullDistance"
	case spirv.BuiltInVertexID, spirv.BuiltInVertexIndex:
		return "gl_VertexIndex"
	case spirv.BuiltInInstanceID, spirv.BuiltInInstanceIndex:
		return "gl_InstanceIndex"
	case spirv.BuiltInPrimitiveID:
		return "gl_PrimitiveID"
	case spirv.BuiltInInvocationID:
		return "gl_InvocationID"
	case spirv.BuiltInLayer:
		return "gl_Layer"
	case spirv.BuiltInViewportIndex:
		return "gl_ViewportIndex"
	case spirv.BuiltInTessLevelOuter:
		return "gl_TessLevelOuter"
	case spirv.BuiltInTessLevelInner:
		return "gl_TessLevelInner"
	case spirv.BuiltInTessCoord:
		return "gl_TessCoord"
	case spirv.BuiltInPatchVertices:
		return "gl_PatchVerticesIn"
	case spirv.BuiltInFragCoord:
		return "gl_FragCoord"
	case spirv.BuiltInPointCoord:
		return "gl_PointCoord"
	case spirv.BuiltInFrontFacing:
		return "gl_FrontFacing"
	case spirv.BuiltInSampleID:
		return "gl_SampleID"
	case spirv.BuiltInSamplePosition:
		return "gl_SamplePosition"
	case spirv.BuiltInSampleMask:
		return "gl_SampleMask"
	case spirv.BuiltInFragDepth:
		return "gl_FragDepth"
	case spirv.BuiltInHelperInvocation:
		return "gl_HelperInvocation"
	case spirv.BuiltInNumWorkgroups:
		return "gl_NumWorkGroups"
	case spirv.BuiltInWorkgroupSize:
		return "gl_WorkGroupSize"
	case spirv.BuiltInWorkgroupID:
		return "gl_WorkGroupID"
	case spirv.BuiltInLocalInvocationID:
		return "gl_LocalInvocationID"
	case spirv.BuiltInGlobalInvocationID:
		return "gl_GlobalInvocationID"
	case spirv.BuiltInLocalInvocationIndex:
		return "gl_LocalInvocationIndex"
	case spirv.BuiltInSubgroupSize:
		return "gl_SubgroupSize"
	case spirv.BuiltInNumSubgroups:
		return "gl_NumSubgroups"
	case spirv.BuiltInSubgroupID:
		return "gl_SubgroupID"
	case spirv.BuiltInSubgroupLocalInvocationID:
		return "gl_SubgroupInvocationID"
	case spirv.BuiltInSubgroupEqMask:
		return "gl_SubgroupEqMask"
	case spirv.BuiltInSubgroupGeMask:
		return "gl_SubgroupGeMask"
	case spirv.BuiltInSubgroupGtMask:
		return "gl_SubgroupGtMask"
	case spirv.BuiltInSubgroupLeMask:
		return "gl_SubgroupLeMask"
	case spirv.BuiltInSubgroupLtMask:
		return "gl_SubgroupLtMask"
	case spirv.BuiltInBaseVertex:
		return "gl_BaseVertex"
	case spirv.BuiltInBaseInstance:
		return "gl_BaseInstance"
	case spirv.BuiltInDrawIndex:
		return "gl_DrawID"
	case spirv.BuiltInDeviceIndex:
		return "gl_DeviceIndex"
	case spirv.BuiltInViewIndex:
		return "gl_ViewIndex"
	case spirv.BuiltInFragStencilRefEXT:
		return "gl_FragStencilRefARB"
	}
	return "gl_BuiltIn" + b.String()
}

// IsInputOnly reports whether a builtin can only be read.
func IsInputOnly(b spirv.BuiltIn) bool {
	switch b {
	case spirv.BuiltInPosition, spirv.BuiltInPointSize, spirv.BuiltInClipDistance,
		spirv.BuiltInCullDistance, spirv.BuiltInLayer, spirv.BuiltInViewportIndex,
		spirv.BuiltInTessLevelOuter, spirv.BuiltInTessLevelInner, spirv.BuiltInSampleMask,
		spirv.BuiltInFragDepth, spirv.BuiltInFragStencilRefEXT:
		return false
	}
	return true
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"fmt"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// emulatedCube reports whether img is a cube array declared as a 2D
// array with six layers per cube.
func (w *writer) emulatedCube(img ir.ImageType) bool {
	return w.opts.EmulateCubeArray && img.Dim == spirv.DimCube && img.Arrayed
}

// cubeFace projects a cube direction onto its face and returns the face
// coordinate and the 2D array layer holding it.
func (w *writer) cubeFace(e *cross.Emitter, coord, layer string) (string, string) {
	e.Helper("spvCubemapTo2DArrayFace", func() string {
		return `inline float3 spvCubemapTo2DArrayFace(float3 p)
{
    float3 a = abs(p);
    float face;
    float axis;
    float u;
    float v;
    if (a.x >= a.y && a.x >= a.z)
    {
        face = p.x >= 0.0 ? 0.0 : 1.0;
        axis = a.x;
        u = p.x >= 0.0 ? -p.z : p.z;
        v = -p.y;
    }
    else if (a.y >= a.x && a.y >= a.z)
    {
        face = p.y >= 0.0 ? 2.0 : 3.0;
        axis = a.y;
        u = p.x;
        v = p.y >= 0.0 ? p.z : -p.z;
    }
    else
    {
        face = p.z >= 0.0 ? 4.0 : 5.0;
        axis = a.z;
        u = p.z >= 0.0 ? p.x : -p.x;
        v = -p.y;
    }
    return float3(0.5 * (u / axis + 1.0), 0.5 * (v / axis + 1.0), face);
}`
	})
	face := cross.Call("spvCubemapTo2DArrayFace", coord)
	if layer == "" {
		layer = "0u"
	}
	return face + ".xy", fmt.Sprintf("uint(%s.z) + %s * 6u", face, layer)
}

// cubeTexel splits the integer coordinate of an emulated cube array into
// the texel and the 2D array layer.
func cubeTexel(coord string) (string, string) {
	c := cross.Enclose(coord)
	return fmt.Sprintf("uint2(%s.xy)", c), fmt.Sprintf("uint(%s.z)", c)
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"math/bits"
	"strings"
)

// Polyfill is a set of helper functions the output needs. Emission adds to
// the set; the definitions are written once, before the first function.
type Polyfill uint64

const (
	PolyMod Polyfill = 1 << iota
	PolySMod
	PolyInverse2
	PolyInverse3
	PolyInverse4
	PolyReflectScalar
	PolyRefractScalar
	PolyFaceForwardScalar
	PolyPackHalf2x16
	PolyUnpackHalf2x16
	PolyPackUnorm4x8
	PolyUnpackUnorm4x8
	PolyPackSnorm4x8
	PolyUnpackSnorm4x8
	PolyPackUnorm2x16
	PolyUnpackUnorm2x16
	PolyPackSnorm2x16
	PolyUnpackSnorm2x16
	PolyBitfieldInsert
	PolyBitfieldSExtract
	PolyBitfieldUExtract
	PolyTextureSize
	PolyFindLSB
	PolyFindMSB
	PolyOuterProduct
	PolyQuantizeF16
)

var polyfillNames = [...]string{
	"mod", "smod", "inverse2", "inverse3", "inverse4", "reflect", "refract", "faceforward",
	"packHalf2x16", "unpackHalf2x16", "packUnorm4x8", "unpackUnorm4x8", "packSnorm4x8",
	"unpackSnorm4x8", "packUnorm2x16", "unpackUnorm2x16", "packSnorm2x16", "unpackSnorm2x16",
	"bitfieldInsert", "bitfieldSExtract", "bitfieldUExtract", "textureSize", "findLSB",
	"findMSB", "outerProduct", "quantizeF16",
}

// Has reports whether every polyfill of q is in p.
func (p Polyfill) Has(q Polyfill) bool { return p&q == q }

// Each calls fn for every polyfill in p, lowest bit first.
func (p Polyfill) Each(fn func(Polyfill)) {
	for p != 0 {
		bit := Polyfill(1) << bits.TrailingZeros64(uint64(p))
		fn(bit)
		p &^= bit
	}
}

// Func returns the function name of a single polyfill.
func (p Polyfill) Func() string {
	i := bits.TrailingZeros64(uint64(p))
	if i >= len(polyfillNames) {
		return "spvUnknown"
	}
	name := polyfillNames[i]
	return "spv" + strings.ToUpper(name[:1]) + name[1:]
}

func (p Polyfill) String() string {
	if p == 0 {
		return "none"
	}
	out := ""
	p.Each(func(q Polyfill) {
		if out != "" {
			out += "|"
		}
		i := bits.TrailingZeros64(uint64(q))
		if i < len(polyfillNames) {
			out += polyfillNames[i]
		} else {
			out += "?"
		}
	})
	return out
}

// helper is a named helper definition in first-use order.
type helper struct {
	name string
	body string
}

// Helper records a dialect-defined helper the first time it is requested.
// Helpers are written after polyfills, in request order.
func (e *Emitter) Helper(name string, body func() string) {
	if e.helperSet[name] {
		return
	}
	e.helperSet[name] = true
	e.helpers = append(e.helpers, helper{name: name, body: body()})
}

// Require adds polyfills to the output.
func (e *Emitter) Require(p Polyfill) { e.polyfills |= p }

// Polyfills returns the polyfills required so far.
func (e *Emitter) Polyfills() Polyfill { return e.polyfills }

// WriteHelpers writes every required polyfill and helper definition.
func (e *Emitter) WriteHelpers(b *Buffer) {
	e.polyfills.Each(func(p Polyfill) {
		if body := e.Dialect.PolyfillBody(p); body != "" {
			b.Raw(body)
			b.Blank()
		}
	})
	for _, h := range e.helpers {
		b.Raw(h.body)
		if !strings.HasSuffix(h.body, "\n") {
			b.Blank()
		}
		b.Blank()
	}
}

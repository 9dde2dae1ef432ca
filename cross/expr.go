// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Expr is the rendered form of a value.
type Expr struct {
	Text string
	Type ir.ID
	// Forwarded expressions are inlined at their single use.
	Forwarded bool
	// Memory marks forwarded expressions that read memory; a write before
	// their use makes them stale.
	Memory bool
	// Atomic expressions need no parentheses as operands.
	Atomic bool
	// Pointer marks lvalue text naming a variable or access chain.
	Pointer bool
	// Sampler is the sampler half of a combined image-sampler handle.
	Sampler string
	// Storage is the storage class the text reads from, for array copies.
	Storage spirv.StorageClass

	invalid bool
}

// Operand returns the text parenthesized unless it is atomic.
func (x *Expr) Operand() string {
	if x.Atomic {
		return x.Text
	}
	return "(" + x.Text + ")"
}

// Enclose parenthesizes text unless it is already atomic.
func Enclose(text string) string {
	if isAtomic(text) {
		return text
	}
	return "(" + text + ")"
}

// isAtomic reports whether text binds tighter than any binary operator:
// identifiers, literals, calls, member and index chains, and fully
// parenthesized text.
func isAtomic(text string) bool {
	if text == "" {
		return true
	}
	switch text[0] {
	case '-', '!', '~', '+', '*', '&':
		return false
	}
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '"':
			return false
		default:
			if depth > 0 {
				continue
			}
			if c == ' ' || c == '?' || c == ':' && !(i+1 < len(text) && text[i+1] == ':') && !(i > 0 && text[i-1] == ':') {
				return false
			}
			if strings.IndexByte("+-*/%<>=&|^!~,", c) >= 0 {
				if c == '-' && i > 0 && (text[i-1] == 'e' || text[i-1] == 'E') && isDigitBefore(text, i-1) {
					continue
				}
				return false
			}
		}
	}
	return true
}

// isDigitBefore reports whether text[i] is preceded by a digit, as in the
// exponent of a float literal.
func isDigitBefore(text string, i int) bool {
	return i > 0 && text[i-1] >= '0' && text[i-1] <= '9'
}

// Call renders name(args...).
func Call(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

// Binary renders a binary operation with operands parenthesized as
// needed.
func Binary(op, a, b string) string {
	return Enclose(a) + " " + op + " " + Enclose(b)
}

// Unary renders a prefix operation.
func Unary(op, a string) string {
	if strings.HasPrefix(a, op[:1]) {
		return op + "(" + a + ")"
	}
	return op + Enclose(a)
}

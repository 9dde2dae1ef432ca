// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"errors"
	"fmt"

	"github.com/gogpu/spvcross/spirv"
)

// ErrorKind categorizes compilation errors.
type ErrorKind uint8

const (
	// ErrUnknownID indicates an ID outside the module bound or never defined.
	ErrUnknownID ErrorKind = iota + 1

	// ErrKindMismatch indicates an operation on an entity of the wrong kind.
	ErrKindMismatch

	// ErrInvalidIR indicates malformed input that should have been rejected upstream.
	ErrInvalidIR

	// ErrUnsupportedShaderModel indicates a feature unavailable at the configured
	// shader model or language version.
	ErrUnsupportedShaderModel

	// ErrUnsupportedOpcode indicates an opcode without a target mapping.
	ErrUnsupportedOpcode

	// ErrUnsupportedAccessPattern indicates an access chain the target cannot express.
	ErrUnsupportedAccessPattern

	// ErrUnsupportedArrayNesting indicates arrays nested deeper than the target supports.
	ErrUnsupportedArrayNesting

	// ErrConflictingBinding indicates colliding caller overrides or assignments.
	ErrConflictingBinding

	// ErrInternalInstability indicates the recompile cap was exceeded.
	ErrInternalInstability
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownID:
		return "UnknownID"
	case ErrKindMismatch:
		return "KindMismatch"
	case ErrInvalidIR:
		return "InvalidIR"
	case ErrUnsupportedShaderModel:
		return "UnsupportedShaderModel"
	case ErrUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ErrUnsupportedAccessPattern:
		return "UnsupportedAccessPattern"
	case ErrUnsupportedArrayNesting:
		return "UnsupportedArrayNesting"
	case ErrConflictingBinding:
		return "ConflictingBinding"
	case ErrInternalInstability:
		return "InternalInstability"
	default:
		return "Unknown"
	}
}

// Error is the single failure type of the compiler. ID and Opcode locate the
// offending IR construct when known.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// ID is the offending result or entity ID, zero when unknown.
	ID ID

	// Opcode is the offending instruction, zero when unknown.
	Opcode spirv.Op
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.ID != 0 && e.Opcode != 0:
		return fmt.Sprintf("%s: %s (id %%%d, %s)", e.Kind, e.Message, e.ID, e.Opcode)
	case e.ID != 0:
		return fmt.Sprintf("%s: %s (id %%%d)", e.Kind, e.Message, e.ID)
	case e.Opcode != 0:
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Opcode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates an error without location information.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrorAt creates an error located at an ID and opcode.
func NewErrorAt(kind ErrorKind, id ID, op spirv.Op, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), ID: id, Opcode: op}
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of a wrapped *Error, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Raise panics with an *Error. It is reserved for the instruction walk of
// the emitters and the Must* lookups beneath it, which run under Recover;
// setup and option validation return errors instead. The panic never
// crosses a package API.
func Raise(kind ErrorKind, format string, args ...any) {
	panic(NewError(kind, format, args...))
}

// RaiseAt is Raise with a location.
func RaiseAt(kind ErrorKind, id ID, op spirv.Op, format string, args ...any) {
	panic(NewErrorAt(kind, id, op, format, args...))
}

// Recover converts a panic carrying an *Error into *err. Other panics are
// re-raised.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}

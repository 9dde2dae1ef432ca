// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ir defines the in-memory SPIR-V model used by the cross compiler.
//
// A Module is an arena of entities addressed by SPIR-V result IDs. Each ID
// names exactly one entity (a type, constant, variable, function, parameter,
// block or instruction result) together with an optional decoration set.
//
// # Lifecycle
//
// The parser builds a Module and hands it to a backend. From then on the
// module only grows: analyses and backends allocate fresh IDs for synthetic
// types and variables (AllocID, AddType, AddVariable) and attach decorations,
// but never remove entities.
//
// # Errors
//
// Every failure is an *Error with an ErrorKind. Lookups come in two forms:
// Type, Constant and friends return an error; the Must variants panic with
// *Error so deeply nested emitters can fail fast, and Recover converts the
// panic back into a returned error at the compile boundary.
package ir

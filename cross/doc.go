// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cross is the emission core shared by the HLSL and MSL backends.
//
// An [Emitter] walks the structured form of every reachable function and
// turns SSA values into target expressions. Values that are pure, read once
// and read inside their defining block are forwarded into their single use;
// everything else is bound to a named temporary. Target differences live
// behind the [Dialect] interface: type names, literals, casts, intrinsic
// names, resource references and opcode overrides.
//
// Emission is a bounded fixpoint. When a pass discovers that an earlier
// decision was wrong (a forwarded load read after a store to the same
// memory, a loop condition that needs a statement) it records the
// constraint and requests another pass. [Run] repeats passes until the
// output is stable or the recompile cap is exceeded, which is reported as
// [ir.ErrInternalInstability].
//
// The package also carries the target-independent parts of interface and
// resource mapping: stage I/O flattening and location assignment
// ([Interface]), resource classification ([Resources]), binding override
// tables ([Overrides]) and std140/std430/scalar layout queries ([Layout]).
package cross

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/spirv"
)

// ValidationError represents a structural defect found in a module.
type ValidationError struct {
	Message string
	// Optional context
	Function ID
	ID       ID
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != 0 {
		if e.ID != 0 {
			return fmt.Sprintf("in function %%%d, id %%%d: %s", e.Function, e.ID, e.Message)
		}
		return fmt.Sprintf("in function %%%d: %s", e.Function, e.Message)
	}
	if e.ID != 0 {
		return fmt.Sprintf("id %%%d: %s", e.ID, e.Message)
	}
	return e.Message
}

// Validator checks the structural invariants the emitters rely on. The
// parser is trusted for legality; this catches broken references only.
type Validator struct {
	module   *Module
	errors   []ValidationError
	function ID
}

// Validate checks the module and returns all defects found.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}
	v := &Validator{module: module}
	v.ValidateModule()
	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// Check runs Validate and folds the defects into a single InvalidIR error.
func Check(module *Module) error {
	errs, err := Validate(module)
	if err != nil {
		return NewError(ErrInvalidIR, "%v", err)
	}
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return NewErrorAt(ErrInvalidIR, errs[0].ID, 0, "%s", strings.Join(msgs, "; "))
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateConstants()
	v.validateGlobalVariables()
	for _, id := range v.module.FunctionOrder {
		v.validateFunction(id)
	}
	v.validateEntryPoints()
}

func (v *Validator) addError(id ID, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:  fmt.Sprintf(format, args...),
		Function: v.function,
		ID:       id,
	})
}

func (v *Validator) isType(id ID) bool {
	return v.module.KindOf(id) == KindType
}

func (v *Validator) validateTypes() {
	for _, id := range v.module.GlobalOrder {
		if !v.isType(id) {
			continue
		}
		switch t := v.module.Inner(id).(type) {
		case IntType:
			if t.Width != 8 && t.Width != 16 && t.Width != 32 && t.Width != 64 {
				v.addError(id, "integer width must be 8, 16, 32 or 64, got %d", t.Width)
			}
		case FloatType:
			if t.Width != 16 && t.Width != 32 && t.Width != 64 {
				v.addError(id, "float width must be 16, 32 or 64, got %d", t.Width)
			}
		case VectorType:
			if t.Count < 2 || t.Count > 4 {
				v.addError(id, "vector size must be 2, 3 or 4, got %d", t.Count)
			}
			if !v.isType(t.Component) || !v.module.IsScalar(t.Component) {
				v.addError(id, "vector component %%%d is not a scalar type", t.Component)
			}
		case MatrixType:
			if t.Columns < 2 || t.Columns > 4 {
				v.addError(id, "matrix columns must be 2, 3 or 4, got %d", t.Columns)
			}
			if !v.isType(t.Column) || !v.module.IsVector(t.Column) {
				v.addError(id, "matrix column %%%d is not a vector type", t.Column)
			}
		case ArrayType:
			if !v.isType(t.Element) {
				v.addError(id, "array element type %%%d does not exist", t.Element)
			}
			if v.module.KindOf(t.Length) != KindConstant {
				v.addError(id, "array length %%%d is not a constant", t.Length)
			}
		case RuntimeArrayType:
			if !v.isType(t.Element) {
				v.addError(id, "array element type %%%d does not exist", t.Element)
			}
		case StructType:
			for i, mem := range t.Members {
				if !v.isType(mem) {
					v.addError(id, "struct member %d type %%%d does not exist", i, mem)
				}
			}
		case PointerType:
			// Forward pointers may name a type declared later.
			if v.module.KindOf(t.Pointee) != KindType && v.module.KindOf(t.Pointee) != KindNone {
				v.addError(id, "pointee %%%d is not a type", t.Pointee)
			}
		case SampledImageType:
			if !v.isType(t.Image) {
				v.addError(id, "sampled image type %%%d does not exist", t.Image)
			} else if _, ok := v.module.Inner(t.Image).(ImageType); !ok {
				v.addError(id, "sampled image wraps non-image %%%d", t.Image)
			}
		}
	}
}

func (v *Validator) validateConstants() {
	for _, id := range v.module.GlobalOrder {
		if v.module.KindOf(id) != KindConstant {
			continue
		}
		c := v.module.MustConstant(id)
		if !v.isType(c.Type) {
			v.addError(id, "constant type %%%d does not exist", c.Type)
			continue
		}
		if c.Kind == ConstComposite {
			for _, part := range c.Constituents {
				switch v.module.KindOf(part) {
				case KindConstant, KindUndef:
				default:
					v.addError(id, "composite constituent %%%d is not a constant", part)
				}
			}
		}
	}
}

func (v *Validator) validateGlobalVariables() {
	for _, gv := range v.module.Variables() {
		v.validateVariable(gv)
		if gv.Storage == spirv.StorageClassFunction {
			v.addError(gv.ID, "global variable uses Function storage")
		}
	}
}

func (v *Validator) validateVariable(gv *Variable) {
	if !v.isType(gv.Type) {
		v.addError(gv.ID, "variable type %%%d does not exist", gv.Type)
		return
	}
	p, ok := v.module.Inner(gv.Type).(PointerType)
	if !ok {
		v.addError(gv.ID, "variable type %%%d is not a pointer", gv.Type)
		return
	}
	if p.Storage != gv.Storage {
		v.addError(gv.ID, "variable storage %s does not match pointer storage %s", gv.Storage, p.Storage)
	}
	if gv.Initializer != 0 {
		switch v.module.KindOf(gv.Initializer) {
		case KindConstant, KindVariable, KindUndef:
		default:
			v.addError(gv.ID, "initializer %%%d is not a constant", gv.Initializer)
		}
	}
}

func (v *Validator) validateFunction(id ID) {
	fn, err := v.module.Function(id)
	if err != nil {
		v.addError(id, "function order names a non-function")
		return
	}
	v.function = id
	defer func() { v.function = 0 }()

	if len(fn.Blocks) == 0 {
		v.addError(0, "function has no blocks")
		return
	}
	for _, local := range fn.Locals {
		lv, err := v.module.Variable(local)
		if err != nil {
			v.addError(local, "local is not a variable")
			continue
		}
		v.validateVariable(lv)
	}

	inFunc := make(map[ID]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		inFunc[b] = true
	}
	preds := make(map[ID][]ID)
	for _, bid := range fn.Blocks {
		b, err := v.module.Block(bid)
		if err != nil {
			v.addError(bid, "block label does not name a block")
			continue
		}
		if b.Terminator.Kind == TermNone {
			v.addError(bid, "block has no terminator")
		}
		for _, s := range b.Terminator.Successors() {
			if !inFunc[s] {
				v.addError(bid, "branch target %%%d is not a block of this function", s)
				continue
			}
			preds[s] = append(preds[s], bid)
		}
		if b.Merge != MergeNone && !inFunc[b.MergeBlock] {
			v.addError(bid, "merge block %%%d is not a block of this function", b.MergeBlock)
		}
		if b.Merge == MergeLoop && !inFunc[b.ContinueBlock] {
			v.addError(bid, "continue target %%%d is not a block of this function", b.ContinueBlock)
		}
	}
	for _, bid := range fn.Blocks {
		b, err := v.module.Block(bid)
		if err != nil {
			continue
		}
		for _, phi := range b.Phis {
			for _, edge := range phi.PhiEdges() {
				if !containsID(preds[bid], edge.Parent) {
					v.addError(phi.Result, "phi parent %%%d is not a predecessor of %%%d", edge.Parent, bid)
				}
			}
		}
		for _, inst := range b.Instructions {
			if inst.Result != 0 && inst.ResultType != 0 && !v.isType(inst.ResultType) {
				v.addError(inst.Result, "result type %%%d does not exist", inst.ResultType)
			}
		}
	}
}

func (v *Validator) validateEntryPoints() {
	seen := make(map[string]bool)
	for _, ep := range v.module.EntryPoints {
		key := fmt.Sprintf("%s/%d", ep.Name, ep.Model)
		if seen[key] {
			v.addError(ep.Function, "duplicate entry point %q", ep.Name)
		}
		seen[key] = true
		if v.module.KindOf(ep.Function) != KindFunction {
			v.addError(ep.Function, "entry point %q names a non-function", ep.Name)
		}
		for _, iface := range ep.Interface {
			if v.module.KindOf(iface) != KindVariable {
				v.addError(iface, "entry point %q interface entry is not a variable", ep.Name)
			}
		}
	}
}

func containsID(ids []ID, id ID) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}

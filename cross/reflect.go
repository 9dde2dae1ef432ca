// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Reflection describes the shader interface of a module.
type Reflection struct {
	EntryPoints []EntryReflection `json:"entryPoints" yaml:"entryPoints"`
}

// EntryReflection describes one entry point.
type EntryReflection struct {
	Name          string               `json:"name" yaml:"name"`
	Stage         spirv.ExecutionModel `json:"stage" yaml:"stage"`
	Inputs        []IOReflection       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs       []IOReflection       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Resources     []ResourceReflection `json:"resources,omitempty" yaml:"resources,omitempty"`
	WorkgroupSize [3]uint32            `json:"workgroupSize" yaml:"workgroupSize"`
}

// IOReflection describes a stage input or output.
type IOReflection struct {
	Name      string `json:"name" yaml:"name"`
	Location  uint32 `json:"location" yaml:"location"`
	Locations uint32 `json:"locations" yaml:"locations"`
	Builtin   string `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// ResourceReflection describes a descriptor.
type ResourceReflection struct {
	Name     string       `json:"name" yaml:"name"`
	Kind     ResourceKind `json:"kind" yaml:"kind"`
	Set      uint32       `json:"set" yaml:"set"`
	Binding  uint32       `json:"binding" yaml:"binding"`
	Count    uint32       `json:"count" yaml:"count"`
	ReadOnly bool         `json:"readOnly" yaml:"readOnly"`
	// BlockSize is the declared byte size of buffer blocks.
	BlockSize uint32 `json:"blockSize,omitempty" yaml:"blockSize,omitempty"`
}

// Reflect lists the entry points of m with their active interface and
// resources.
func Reflect(m *ir.Module) (r *Reflection, err error) {
	defer ir.Recover(&err)
	r = &Reflection{}
	for _, ep := range m.EntryPoints {
		reach := analysis.Reach(m, ep.Function)
		er := EntryReflection{Name: ep.Name, Stage: ep.Model}
		if ep.Model == spirv.ExecutionModelGLCompute {
			er.WorkgroupSize, _ = analysis.WorkgroupSize(m, ep)
		}
		f := CollectInterface(m, ep, reach.Variables)
		er.Inputs = reflectIO(f.Inputs)
		er.Outputs = reflectIO(f.Outputs)
		for _, res := range Resources(m, reach.Variables) {
			rr := ResourceReflection{
				Name: res.Name, Kind: res.Kind, Set: res.Set, Binding: res.Binding,
				Count: res.Count, ReadOnly: res.ReadOnly,
			}
			if res.Kind.IsBuffer() && m.IsStruct(res.Type) {
				rule := RuleFor(m.MustVariable(res.Var).Storage)
				rr.BlockSize = NewLayout(m, rule).DeclaredEnd(res.Type)
			}
			er.Resources = append(er.Resources, rr)
		}
		r.EntryPoints = append(r.EntryPoints, er)
	}
	return r, nil
}

func reflectIO(entries []IOEntry) []IOReflection {
	out := make([]IOReflection, 0, len(entries))
	for _, e := range entries {
		io := IOReflection{Name: e.Name}
		if e.IsBuiltin {
			io.Builtin = e.Builtin.String()
		} else {
			io.Location, io.Locations = e.Location, e.Locations
		}
		out = append(out, io)
	}
	return out
}

// MarshalText renders the kind for YAML and JSON output.
func (k ResourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

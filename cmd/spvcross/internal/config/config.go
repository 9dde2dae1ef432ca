// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads backend options from a TOML file and the caller
// tables (bindings, samplers, root constants) from a YAML file.
//
// An options file sets the scalar knobs of each backend:
//
//	[hlsl]
//	shader_model = "6.0"
//	flip_vertex_y = true
//
//	[msl]
//	version = "2.1"
//	platform = "ios"
//	argument_buffers = true
//
// A tables file maps descriptors to targets:
//
//	bindings:
//	  - {stage: frag, set: 0, binding: 1, hlsl: {register: 2}, msl: {buffer: 1}}
//	rootConstants:
//	  - {start: 0, end: 16, binding: 0, space: 0}
//	constexprSamplers:
//	  - stage: frag
//	    set: 0
//	    binding: 2
//	    sampler: {minFilter: linear, magFilter: linear}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/msl"
)

// File is the layout of the TOML options file.
type File struct {
	HLSL hlsl.Options `toml:"hlsl"`
	MSL  msl.Options  `toml:"msl"`
}

// Tables is the layout of the YAML tables file.
type Tables struct {
	Bindings            []Binding           `yaml:"bindings"`
	RootConstants       []hlsl.RootConstant `yaml:"rootConstants"`
	ConstexprSamplers   []Sampler           `yaml:"constexprSamplers"`
	DynamicOffsets      []DynamicOffset     `yaml:"dynamicOffsets"`
	Semantics           map[uint32]string   `yaml:"semantics"`
	ForceUAV            []cross.ResourceKey `yaml:"forceUAV"`
	InlineUniformBlocks []cross.ResourceKey `yaml:"inlineUniformBlocks"`
}

// Binding overrides the targets of one descriptor. Either backend may be
// omitted.
type Binding struct {
	cross.ResourceKey `yaml:",inline"`

	HLSL *hlsl.BindTarget `yaml:"hlsl,omitempty"`
	MSL  *msl.BindTarget  `yaml:"msl,omitempty"`
}

// Sampler replaces a sampler descriptor with an inline MSL sampler.
type Sampler struct {
	cross.ResourceKey `yaml:",inline"`

	Sampler msl.ConstexprSampler `yaml:"sampler"`
}

// DynamicOffset places a buffer in the MSL dynamic offsets buffer.
type DynamicOffset struct {
	cross.ResourceKey `yaml:",inline"`

	Index uint32 `yaml:"index"`
}

// Config holds the decoded files. The zero value is unusable; use Load or
// Default.
type Config struct {
	File   File
	Tables Tables
}

// Default returns the backend defaults with empty tables.
func Default() *Config {
	return &Config{File: File{HLSL: *hlsl.DefaultOptions(), MSL: *msl.DefaultOptions()}}
}

// Load reads the options and tables files. Either path may be empty.
func Load(optionsPath, tablesPath string) (*Config, error) {
	c := Default()
	if optionsPath != "" {
		md, err := toml.DecodeFile(optionsPath, &c.File)
		if err != nil {
			return nil, fmt.Errorf("reading options %s: %w", optionsPath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("reading options %s: unknown keys %s", optionsPath, strings.Join(keys, ", "))
		}
	}
	if tablesPath != "" {
		data, err := os.ReadFile(tablesPath)
		if err != nil {
			return nil, fmt.Errorf("reading tables: %w", err)
		}
		if err := c.decodeTables(data); err != nil {
			return nil, fmt.Errorf("reading tables %s: %w", tablesPath, err)
		}
	}
	return c, nil
}

func (c *Config) decodeTables(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c.Tables); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for _, r := range c.Tables.RootConstants {
		if r.End <= r.Start {
			return fmt.Errorf("root constant range [%d, %d) is empty", r.Start, r.End)
		}
	}
	return nil
}

// HLSLOptions returns a fresh copy of the HLSL options with the tables
// applied. Override tables track their own usage, so every compile needs
// its own copy.
func (c *Config) HLSLOptions(log logr.Logger) *hlsl.Options {
	opts := c.File.HLSL
	opts.Logger = log
	opts.Bindings = cross.NewOverrides[hlsl.BindTarget]()
	for _, b := range c.Tables.Bindings {
		if b.HLSL != nil {
			opts.Bindings.Set(b.ResourceKey, *b.HLSL)
		}
	}
	opts.RootConstants = slices.Clone(c.Tables.RootConstants)
	if len(c.Tables.Semantics) > 0 {
		opts.Semantics = make(map[uint32]string, len(c.Tables.Semantics))
		for loc, s := range c.Tables.Semantics {
			opts.Semantics[loc] = s
		}
	}
	opts.ForceUAV = slices.Clone(c.Tables.ForceUAV)
	return &opts
}

// MSLOptions returns a fresh copy of the MSL options with the tables
// applied.
func (c *Config) MSLOptions(log logr.Logger) *msl.Options {
	opts := c.File.MSL
	opts.Logger = log
	opts.Bindings = cross.NewOverrides[msl.BindTarget]()
	for _, b := range c.Tables.Bindings {
		if b.MSL != nil {
			opts.Bindings.Set(b.ResourceKey, *b.MSL)
		}
	}
	opts.ConstexprSamplers = cross.NewOverrides[msl.ConstexprSampler]()
	for _, s := range c.Tables.ConstexprSamplers {
		opts.ConstexprSamplers.Set(s.ResourceKey, s.Sampler)
	}
	opts.DynamicOffsets = cross.NewOverrides[uint32]()
	for _, d := range c.Tables.DynamicOffsets {
		opts.DynamicOffsets.Set(d.ResourceKey, d.Index)
	}
	opts.InlineUniformBlocks = slices.Clone(c.Tables.InlineUniformBlocks)
	opts.DiscreteDescriptorSets = slices.Clone(opts.DiscreteDescriptorSets)
	opts.DeviceStorageSets = slices.Clone(opts.DeviceStorageSets)
	return &opts
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/cmd/spvcross/internal/command"
	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/spirv"
)

// run executes the command line and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := command.NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeShader stores a fixture as a binary module.
func writeShader(t *testing.T, dir, name string, words []uint32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, spirv.BytesFromWords(words), 0o600))
	return path
}

func writeText(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestNewRootCommand(t *testing.T) {
	cmd := command.NewRootCommand()
	assert.Equal(t, "spvcross", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, command.Version, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.CompletionOptions.DisableDefaultCmd)
	for _, name := range []string{"log-level", "log-format", "color", "options", "tables"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"hlsl", "msl", "reflect", "batch"}, names)
}

func TestVersionFlag(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, command.Version+"\n", out)
}

func TestNoArgsShowsHelp(t *testing.T) {
	out, _, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "spvcross")
	assert.Contains(t, out, "Available Commands")
}

func TestExactArgs(t *testing.T) {
	assert.NoError(t, command.ExactArgs(1)(nil, []string{"a"}))
	err := command.ExactArgs(1)(nil, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 arguments, got 2")

	assert.NoError(t, command.MinimumArgs(1)(nil, []string{"a", "b"}))
	assert.Error(t, command.MinimumArgs(1)(nil, nil))
}

func TestGlobalFlagErrors(t *testing.T) {
	in := writeShader(t, t.TempDir(), "v.spv", testshaders.VertexPassthrough())
	_, _, err := run(t, "--color", "sometimes", "hlsl", in)
	assert.ErrorContains(t, err, "invalid --color")
	_, _, err = run(t, "--log-level", "loud", "hlsl", in)
	assert.ErrorContains(t, err, "invalid --log-level")
	_, _, err = run(t, "--log-format", "xml", "hlsl", in)
	assert.ErrorContains(t, err, "invalid --log-format")
	_, _, err = run(t, "--options", "missing.toml", "hlsl", in)
	assert.Error(t, err)
}

func TestHLSLCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeShader(t, dir, "v.spv", testshaders.VertexPassthrough())

	out, _, err := run(t, "hlsl", in)
	require.NoError(t, err)
	assert.Contains(t, out, "float4 gl_Position : SV_Position;")

	dst := filepath.Join(dir, "v.hlsl")
	out, _, err = run(t, "hlsl", "-o", dst, in)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SPIRV_Cross_Output main(")

	_, _, err = run(t, "hlsl", "--shader-model", "7.9", in)
	assert.ErrorContains(t, err, "unknown shader model")
	_, _, err = run(t, "hlsl", "--entry", "missing", in)
	assert.Error(t, err)
	_, _, err = run(t, "hlsl", filepath.Join(dir, "missing.spv"))
	assert.Error(t, err)
	_, _, err = run(t, "hlsl")
	assert.Error(t, err)
}

func TestFlagsOverrideOptionsFile(t *testing.T) {
	dir := t.TempDir()
	in := writeShader(t, dir, "v.spv", testshaders.VertexPassthrough())
	opts := writeText(t, dir, "opts.toml", "[hlsl]\nflip_vertex_y = true\n")
	const flip = "stage_output.gl_Position.y = -stage_output.gl_Position.y;"

	out, _, err := run(t, "--options", opts, "hlsl", in)
	require.NoError(t, err)
	assert.Contains(t, out, flip)

	out, _, err = run(t, "--options", opts, "hlsl", "--flip-vertex-y=false", in)
	require.NoError(t, err)
	assert.NotContains(t, out, flip)
}

func TestMSLCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeShader(t, dir, "v.spv", testshaders.VertexPassthrough())

	out, _, err := run(t, "msl", in)
	require.NoError(t, err)
	assert.Contains(t, out, "vertex main0_out main0(main0_in in [[stage_in]])")

	_, _, err = run(t, "msl", "--msl-version", "two", in)
	assert.Error(t, err)
	_, _, err = run(t, "msl", "--platform", "android", in)
	assert.Error(t, err)
}

func TestMSLCommandTables(t *testing.T) {
	dir := t.TempDir()
	in := writeShader(t, dir, "ssbo.spv", testshaders.ReadonlySSBO())
	tables := writeText(t, dir, "tables.yaml", `
bindings:
  - {stage: frag, set: 0, binding: 1, msl: {buffer: 5}}
  - {stage: frag, set: 3, binding: 3, msl: {buffer: 6}}
`)
	out, stderr, err := run(t, "--tables", tables, "--log-format", "json", "msl", "--show-bindings", in)
	require.NoError(t, err)
	assert.Contains(t, out, "const device Data& data [[buffer(5)]]")
	assert.Contains(t, stderr, `"msg":"binding override never matched"`)
	assert.Contains(t, stderr, "RESOURCE")
	assert.Contains(t, stderr, "data")
}

func TestLogLevels(t *testing.T) {
	in := writeShader(t, t.TempDir(), "v.spv", testshaders.VertexPassthrough())

	_, stderr, err := run(t, "hlsl", in)
	require.NoError(t, err)
	assert.Empty(t, stderr, "info messages are hidden at the default level")

	_, stderr, err = run(t, "--log-level", "info", "--log-format", "json", "hlsl", in)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"compiled"`)
	assert.Contains(t, stderr, `"target":"hlsl"`)

	_, stderr, err = run(t, "--log-level", "info", "--color", "never", "hlsl", in)
	require.NoError(t, err)
	assert.Contains(t, stderr, "INFO compiled")
	assert.NotContains(t, stderr, "\x1b[")
}

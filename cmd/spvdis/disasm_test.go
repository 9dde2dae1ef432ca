// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
	"github.com/gogpu/spvcross/spirv"
)

func disassembleText(t *testing.T, words []uint32, opts disOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, disassemble(&buf, words, opts))
	return buf.String()
}

func TestDisassembleHeader(t *testing.T) {
	text := disassembleText(t, testshaders.VertexPassthrough(), disOptions{})
	assert.True(t, strings.HasPrefix(text, "; SPIR-V\n; Version: 1."), text)
	assert.Contains(t, text, "; Bound: ")
	assert.Contains(t, text, "               OpCapability Shader\n")
	assert.Contains(t, text, "OpMemoryModel Logical GLSL450")
}

func TestDisassembleFriendlyNames(t *testing.T) {
	words := testshaders.VertexPassthrough()
	friendly := disassembleText(t, words, disOptions{Friendly: true})
	assert.Contains(t, friendly, `OpEntryPoint Vertex %main "main"`)
	assert.Contains(t, friendly, `OpName %gl_Position "gl_Position"`)
	assert.Contains(t, friendly, "OpDecorate %gl_Position BuiltIn Position")
	assert.Contains(t, friendly, "OpDecorate %v Location 0")
	assert.Contains(t, friendly, "OpStore %gl_Position")

	raw := disassembleText(t, words, disOptions{})
	assert.NotContains(t, raw, "%gl_Position")
	assert.Contains(t, raw, `OpName %`)
}

func TestDisassembleAlignment(t *testing.T) {
	text := disassembleText(t, testshaders.VertexPassthrough(), disOptions{})
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.HasPrefix(line, ";") {
			continue
		}
		i := strings.Index(line, "Op")
		require.GreaterOrEqual(t, i, 0, line)
		if len(line) > 0 && line[0] != ' ' {
			continue
		}
		assert.Equal(t, resultColumn, i, "opcode column of %q", line)
	}
}

func TestDisassembleConstants(t *testing.T) {
	b := testshaders.NewBuilder()
	out := b.Output(b.Vec4, 0, "FragColor")
	c := b.AddConstantComposite(b.Vec4, b.F(0.5), b.F(-2), b.F(1e20), b.F(1))
	b.I(-7)
	b.Entry(spirv.ExecutionModelFragment, out)
	b.AddStore(out, c)
	b.End()

	text := disassembleText(t, b.Words(), disOptions{Friendly: true})
	assert.Contains(t, text, "OpConstant %")
	assert.Contains(t, text, " 0.5\n")
	assert.Contains(t, text, " -2\n")
	assert.Contains(t, text, " 1e+20\n")
	assert.Contains(t, text, " -7\n")
	assert.Contains(t, text, "OpExecutionMode %main OriginUpperLeft")
}

func TestDisassembleColor(t *testing.T) {
	text := disassembleText(t, testshaders.VertexPassthrough(), disOptions{Color: true})
	assert.Contains(t, text, "\x1b[")
}

func TestDisassembleErrors(t *testing.T) {
	var buf bytes.Buffer
	err := disassemble(&buf, []uint32{1, 2, 3, 4, 5}, disOptions{})
	assert.ErrorIs(t, err, spirv.ErrBadMagic)

	words := testshaders.VertexPassthrough()
	words[len(words)-1] = uint32(spirv.OpFunctionEnd) | 3<<16
	err = disassemble(&buf, words, disOptions{})
	assert.ErrorIs(t, err, spirv.ErrTruncated)
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "shader.spv")
	require.NoError(t, os.WriteFile(in, spirv.BytesFromWords(testshaders.CombinedSampler()), 0o600))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--raw-id", in})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "OpTypeImage %")
	assert.Contains(t, out.String(), " 2D 0 0 0 1 Unknown")
	assert.Contains(t, out.String(), "OpImageSampleImplicitLod %")

	outFile := filepath.Join(dir, "shader.spvasm")
	cmd = newRootCommand()
	cmd.SetArgs([]string{"-o", outFile, in})
	require.NoError(t, cmd.Execute())
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "; SPIR-V")

	cmd = newRootCommand()
	cmd.SetArgs([]string{"--color", "sometimes", in})
	assert.Error(t, cmd.Execute())
}

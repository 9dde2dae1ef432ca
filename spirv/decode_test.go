// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsFromBytesEndianness(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	b.AddCapability(CapabilityShader)
	words := b.Words()

	little := BytesFromWords(words)
	got, err := WordsFromBytes(little)
	require.NoError(t, err)
	assert.Equal(t, words, got)

	big := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(big[i*4:], w)
	}
	got, err = WordsFromBytes(big)
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestDecodeErrors(t *testing.T) {
	_, err := WordsFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = WordsFromBytes(make([]byte, 20))
	assert.ErrorIs(t, err, ErrBadMagic)

	words := []uint32{MagicNumber, Version1_0.Word(), 0, 10, 0, 5<<16 | uint32(OpTypeVector), 1}
	_, err = Instructions(words)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Instructions([]uint32{MagicNumber, 0, 0, 1, 0, 0})
	assert.ErrorIs(t, err, ErrTruncated, "zero word count")
}

func TestInstructionsOffsets(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	b.AddCapability(CapabilityShader)
	b.AddCapability(CapabilityFloat16)
	insts, err := Instructions(b.Words())
	require.NoError(t, err)
	require.Len(t, insts, 2)
	assert.Equal(t, HeaderWords, insts[0].Offset)
	assert.Equal(t, HeaderWords+2, insts[1].Offset)
	assert.Equal(t, []uint32{uint32(CapabilityFloat16)}, insts[1].Operands)
}

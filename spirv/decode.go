// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Decoding errors.
var (
	ErrBadMagic  = errors.New("spirv: invalid magic number")
	ErrTruncated = errors.New("spirv: truncated module")
)

// RawInstruction is one decoded instruction. Operands excludes the leading
// opcode word.
type RawInstruction struct {
	Op       Op
	Operands []uint32
	// Offset is the word offset of the instruction in the module.
	Offset int
}

// WordsFromBytes converts a binary module to words. Both byte orders are
// accepted; the magic number decides.
func WordsFromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 || len(data) < HeaderWords*4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case binary.LittleEndian.Uint32(data) == MagicNumber:
	case binary.BigEndian.Uint32(data) == MagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, binary.LittleEndian.Uint32(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

// BytesFromWords encodes words little-endian.
func BytesFromWords(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// DecodeHeader reads the five-word header.
func DecodeHeader(words []uint32) (Header, error) {
	if len(words) < HeaderWords {
		return Header{}, fmt.Errorf("%w: %d words", ErrTruncated, len(words))
	}
	if words[0] != MagicNumber {
		return Header{}, fmt.Errorf("%w: 0x%08X", ErrBadMagic, words[0])
	}
	return Header{
		Version:   VersionFromWord(words[1]),
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}, nil
}

// Instructions splits the words following the header into instructions.
func Instructions(words []uint32) ([]RawInstruction, error) {
	if _, err := DecodeHeader(words); err != nil {
		return nil, err
	}
	out := make([]RawInstruction, 0, len(words)/4)
	offset := HeaderWords
	for offset < len(words) {
		first := words[offset]
		count := int(first >> 16)
		if count == 0 || offset+count > len(words) {
			return nil, fmt.Errorf("%w: word count %d at offset %d", ErrTruncated, count, offset)
		}
		out = append(out, RawInstruction{
			Op:       Op(first & 0xFFFF),
			Operands: words[offset+1 : offset+count],
			Offset:   offset,
		})
		offset += count
	}
	return out, nil
}

// DecodeString reads a nul-terminated literal string and returns it with the
// number of words it occupies.
func DecodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(b)
		}
	}
	return sb.String(), len(words)
}

// EncodeString encodes a literal string with nul padding to a word boundary.
func EncodeString(s string) []uint32 {
	data := []byte(s)
	data = append(data, 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

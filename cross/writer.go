// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"strings"
)

// Buffer accumulates indented source lines.
type Buffer struct {
	out    strings.Builder
	indent int
	lines  int
}

// Line writes one indented line built from a format string.
//
//nolint:goprintffuncname
func (b *Buffer) Line(format string, args ...any) {
	b.Text(fmt.Sprintf(format, args...))
}

// Text writes one indented line verbatim.
func (b *Buffer) Text(line string) {
	for i := 0; i < b.indent; i++ {
		b.out.WriteString("    ")
	}
	b.out.WriteString(line)
	b.out.WriteByte('\n')
	b.lines++
}

// Blank writes an empty line.
func (b *Buffer) Blank() {
	b.out.WriteByte('\n')
}

// Raw appends text verbatim.
func (b *Buffer) Raw(text string) {
	b.out.WriteString(text)
	b.lines += strings.Count(text, "\n")
}

// Indent increases the indentation of following lines.
func (b *Buffer) Indent() { b.indent++ }

// Dedent decreases the indentation of following lines.
func (b *Buffer) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// Open writes a line ending a block header and indents.
func (b *Buffer) Open(format string, args ...any) {
	b.Line(format, args...)
	b.Line("{")
	b.Indent()
}

// Close dedents and writes the closing brace with an optional suffix.
func (b *Buffer) Close(suffix string) {
	b.Dedent()
	b.Text("}" + suffix)
}

// Sub returns an empty buffer continuing at the current indentation.
func (b *Buffer) Sub() *Buffer { return &Buffer{indent: b.indent} }

// Lines returns the number of lines written.
func (b *Buffer) Lines() int { return b.lines }

// Empty reports whether nothing was written.
func (b *Buffer) Empty() bool { return b.out.Len() == 0 }

// String returns the accumulated text.
func (b *Buffer) String() string { return b.out.String() }

// Reset clears the buffer and its indentation.
func (b *Buffer) Reset() {
	b.out.Reset()
	b.indent = 0
	b.lines = 0
}

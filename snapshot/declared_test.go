// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package snapshot_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/internal/testshaders"
)

var (
	identRe     = regexp.MustCompile(`\b[A-Za-z_]\w*`)
	generatedRe = regexp.MustCompile(`^_|_\d+$`)
	upperRe     = regexp.MustCompile(`^[A-Z0-9_]*[A-Z][A-Z0-9_]*$`)
	attrRe      = regexp.MustCompile(`\[\[.*?\]\]`)
	stringRe    = regexp.MustCompile(`"[^"]*"`)
	declRe      = regexp.MustCompile(`(\b[A-Za-z_]\w*\s+|\w>\s+|[\w>][*&]\s*)$`)
	notTypeRe   = regexp.MustCompile(`\b(return|case|else)\s+$`)
)

// TestGeneratedNamesDeclaredBeforeUse checks that every generated
// identifier (a leading underscore or a numeric suffix) first appears in
// a declaration.
func TestGeneratedNamesDeclaredBeforeUse(t *testing.T) {
	for _, f := range testshaders.All() {
		for _, b := range backends {
			if !b.accepts(f) {
				continue
			}
			t.Run(f.Name+"/"+b.name, func(t *testing.T) {
				for _, msg := range undeclaredUses(b.compile(t, f.Words)) {
					t.Error(msg)
				}
			})
		}
	}
}

func TestUndeclaredUses(t *testing.T) {
	ok := "static float _12;\nvoid f(inout float4 x_1, device Foo* _5)\n{\n    _12 = x_1.y + _5->_m0;\n}\n"
	assert.Empty(t, undeclaredUses(ok))

	bad := "void f()\n{\n    float a = _7;\n    float _7 = 1.0;\n}\n"
	assert.Equal(t, []string{`line 3: "_7" used before declaration`}, undeclaredUses(bad))
}

// undeclaredUses lists generated identifiers whose first occurrence is not
// a declaration.
func undeclaredUses(code string) []string {
	seen := make(map[string]bool)
	var bad []string
	for n, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#include") || strings.HasPrefix(trimmed, "#pragma") {
			continue
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = stringRe.ReplaceAllString(line, `""`)
		line = attrRe.ReplaceAllString(line, "")
		for _, loc := range identRe.FindAllStringIndex(line, -1) {
			name, prefix := line[loc[0]:loc[1]], line[:loc[0]]
			if seen[name] || !generatedRe.MatchString(name) || upperRe.MatchString(name) {
				continue
			}
			if strings.HasSuffix(prefix, ".") || strings.HasSuffix(prefix, "->") {
				continue
			}
			seen[name] = true
			if !declRe.MatchString(prefix) || notTypeRe.MatchString(prefix) {
				bad = append(bad, fmt.Sprintf("line %d: %q used before declaration", n+1, name))
			}
		}
	}
	return bad
}

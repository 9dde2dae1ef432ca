// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package snapshot_test compares backend output against the golden files
// stored in testdata/golden/{hlsl,msl}/.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
//
// Regeneration writes a golden for every fixture a backend accepts.
// Otherwise each committed golden must name an existing fixture.
package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/internal/testshaders"
)

var backends = []struct {
	name    string
	ext     string
	accepts func(testshaders.Fixture) bool
	compile func(*testing.T, []uint32) string
}{
	{"hlsl", ".hlsl", func(f testshaders.Fixture) bool { return f.HLSL }, compileHLSL},
	{"msl", ".metal", func(f testshaders.Fixture) bool { return f.MSL }, compileMSL},
}

// TestSnapshots compiles the fixture behind each golden file and compares
// the output with it.
func TestSnapshots(t *testing.T) {
	fixtures := make(map[string]testshaders.Fixture)
	for _, f := range testshaders.All() {
		fixtures[f.Name] = f
	}
	update := os.Getenv("UPDATE_GOLDEN") != ""
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			dir := filepath.Join("testdata", "golden", b.name)
			if update {
				for _, f := range testshaders.All() {
					if b.accepts(f) {
						writeGolden(t, filepath.Join(dir, f.Name+b.ext), b.compile(t, f.Words))
					}
				}
				return
			}
			paths, err := filepath.Glob(filepath.Join(dir, "*"+b.ext))
			require.NoError(t, err)
			require.NotEmpty(t, paths, "no golden files in %s", dir)
			for _, path := range paths {
				name := strings.TrimSuffix(filepath.Base(path), b.ext)
				t.Run(name, func(t *testing.T) {
					f, ok := fixtures[name]
					require.True(t, ok, "golden %s has no fixture", path)
					require.True(t, b.accepts(f), "fixture %s is not compiled by %s", name, b.name)
					compareGolden(t, path, b.compile(t, f.Words))
				})
			}
		})
	}
}

// TestDeterministicOutput compiles every fixture repeatedly. Name
// assignment and declaration order must not depend on map iteration.
func TestDeterministicOutput(t *testing.T) {
	const runs = 5
	for _, f := range testshaders.All() {
		t.Run(f.Name, func(t *testing.T) {
			t.Parallel()
			if f.HLSL {
				first := compileHLSL(t, f.Words)
				for range runs {
					assert.Equal(t, first, compileHLSL(t, f.Words), "hlsl")
				}
			}
			if f.MSL {
				first := compileMSL(t, f.Words)
				for range runs {
					assert.Equal(t, first, compileMSL(t, f.Words), "msl")
				}
			}
		})
	}
}

// TestInputUnchanged checks that compiling does not modify the caller's
// words.
func TestInputUnchanged(t *testing.T) {
	for _, f := range testshaders.All() {
		words := append([]uint32(nil), f.Words...)
		if f.HLSL {
			_ = compileHLSL(t, words)
		}
		if f.MSL {
			_ = compileMSL(t, words)
		}
		assert.Equal(t, f.Words, words, f.Name)
	}
}

func compileHLSL(t *testing.T, words []uint32) string {
	t.Helper()
	code, _, err := spvcross.CompileHLSL(words, nil)
	require.NoError(t, err)
	return code
}

func compileMSL(t *testing.T, words []uint32) string {
	t.Helper()
	code, _, err := spvcross.CompileMSL(words, nil)
	require.NoError(t, err)
	return code
}

func writeGolden(t *testing.T, path, actual string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(actual), 0o644))
	t.Logf("updated golden file: %s", path)
}

// compareGolden compares actual output with the golden file at path.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()
	expected, err := os.ReadFile(path)
	require.NoError(t, err)

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")
	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actualStr))
	}
}

// diffStrings shows the first differing line with surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))
	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := range maxLines {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	const contextLines = 3
	for i := max(0, firstDiff-contextLines); i < min(maxLines, firstDiff+contextLines+1); i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(e, 120))
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(a, 120))
		}
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func TestDiffStrings(t *testing.T) {
	d := diffStrings("a\nb\nc", "a\nx\nc")
	assert.Contains(t, d, "first difference at line 2")
	assert.Contains(t, d, "!    2 actual:   x")
	assert.Equal(t, "(no difference found)", diffStrings("a", "a"))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}

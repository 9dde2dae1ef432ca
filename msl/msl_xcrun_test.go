//go:build darwin

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/testshaders"
)

// TestMSLCompilesWithXcrun feeds every fixture through the Metal compiler
// when the toolchain is installed.
func TestMSLCompilesWithXcrun(t *testing.T) {
	if _, err := exec.LookPath("xcrun"); err != nil {
		t.Skip("xcrun not found")
	}
	if err := exec.Command("xcrun", "--find", "metal").Run(); err != nil {
		t.Skip("metal compiler not installed")
	}
	for _, f := range testshaders.All() {
		if !f.MSL {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			source, _, err := Compile(f.Module(), DefaultOptions())
			require.NoError(t, err)

			dir := t.TempDir()
			src := filepath.Join(dir, f.Name+".metal")
			require.NoError(t, os.WriteFile(src, []byte(source), 0o600))
			cmd := exec.Command("xcrun", "-sdk", "macosx", "metal", "-c", src, "-o", filepath.Join(dir, f.Name+".air")) //nolint:gosec // temp paths
			out, err := cmd.CombinedOutput()
			require.NoError(t, err, "%s\nMSL:\n%s", out, source)
		})
	}
}

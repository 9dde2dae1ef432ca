// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTextLogger(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	log, err := newLogger(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("compiled", "target", "msl")
	log.Warn("careful")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO compiled target=msl")
	assert.Contains(t, out, "WARN careful")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, slog.LevelWarn, "json")
	require.NoError(t, err)
	log.Info("hidden")
	log.Error("failed", "input", "a.spv")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"level":"ERROR","msg":"failed","input":"a.spv"`)

	_, err = newLogger(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestLibraryLoggerVerbosity(t *testing.T) {
	withoutColor(t)
	var buf bytes.Buffer
	log, err := newLogger(&buf, slog.LevelDebug, "text")
	require.NoError(t, err)
	cli := &CLI{Logger: log}

	lib := cli.libLogger()
	lib.V(1).Info("recompile", "pass", 2)
	assert.Contains(t, buf.String(), "DEBUG+3 recompile pass=2")

	buf.Reset()
	log, err = newLogger(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)
	cli.Logger = log
	cli.libLogger().V(1).Info("recompile")
	assert.Empty(t, buf.String())
}

func TestRewriteLogLevel(t *testing.T) {
	withoutColor(t)
	a := rewriteLogLevel(nil, slog.Any(slog.LevelKey, slog.LevelWarn))
	assert.Equal(t, "WARN", a.Value.String())
	a = rewriteLogLevel([]string{"group"}, slog.Any(slog.LevelKey, slog.LevelWarn))
	assert.Equal(t, slog.KindAny, a.Value.Kind(), "grouped attributes are left alone")
	a = rewriteLogLevel(nil, slog.String("msg", "x"))
	assert.Equal(t, "x", a.Value.String())
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	on, err := colorEnabled("always", &buf)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = colorEnabled("auto", &buf)
	require.NoError(t, err)
	assert.False(t, on, "buffers are not terminals")
	t.Setenv("NO_COLOR", "1")
	on, err = colorEnabled("auto", &buf)
	require.NoError(t, err)
	assert.False(t, on)
	_, err = colorEnabled("maybe", &buf)
	assert.Error(t, err)
}

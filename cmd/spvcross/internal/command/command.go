// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/spvcross/cmd/spvcross/internal/config"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/spirv"
)

// CLI is the state shared by all commands. It is filled in by the root
// command once flags are parsed.
type CLI struct {
	Logger *slog.Logger
	Config *config.Config

	flags globalFlags
}

type globalFlags struct {
	logLevel  string
	logFormat string
	color     string
	options   string
	tables    string
}

func (c *CLI) setup(cmd *cobra.Command) error {
	colored, err := colorEnabled(c.flags.color, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	color.NoColor = !colored

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.flags.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", c.flags.logLevel)
	}
	c.Logger, err = newLogger(cmd.ErrOrStderr(), level, c.flags.logFormat)
	if err != nil {
		return err
	}
	c.Config, err = config.Load(c.flags.options, c.flags.tables)
	return err
}

// libLogger bridges the CLI logger into the logr logger the backends take.
func (c *CLI) libLogger() logr.Logger {
	return logr.FromSlogHandler(c.Logger.Handler())
}

// reportUnused warns about binding overrides no resource matched.
func (c *CLI) reportUnused(target, input string, keys []cross.ResourceKey) {
	for _, k := range keys {
		c.Logger.Warn("binding override never matched", "target", target, "input", input, "key", k.String())
	}
}

// Highlight renders a usage line in the heading color.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

// ExactArgs returns an error if there is not the exact number of args.
func ExactArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		return fmt.Errorf("expected %d arguments, got %d", number, len(args))
	}
}

// MinimumArgs returns an error if there are fewer than number args.
func MinimumArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= number {
			return nil
		}
		return fmt.Errorf("expected at least %d arguments, got %d", number, len(args))
	}
}

// colorEnabled resolves --color. Auto mode colors terminals unless
// NO_COLOR is set.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color %q: want auto, always or never", mode)
}

// readWords loads a SPIR-V binary.
func readWords(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := spirv.WordsFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// writeOutput writes text to path, or to the command output when path is
// empty.
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

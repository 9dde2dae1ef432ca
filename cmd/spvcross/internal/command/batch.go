// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/spvcross"
)

// Output file extensions per target.
var targetExt = map[string]string{
	"hlsl": ".hlsl",
	"msl":  ".metal",
}

// BatchOptions are the flags of the batch command.
type BatchOptions struct {
	Targets []string
	OutDir  string
	Jobs    int
}

// NewBatchCommand returns the batch command.
func NewBatchCommand(cli *CLI) *cobra.Command {
	var opts BatchOptions
	cmd := &cobra.Command{
		Use:   "batch [flags] <input.spv>...",
		Short: "Compile many modules in parallel",
		Long: Highlight("spvcross batch <input.spv>...") + "\n\n" +
			"Compile every input to each target. Outputs are named after the input\n" +
			"with a .hlsl or .metal extension.\n\n" +
			"Examples:\n" +
			"  spvcross batch --out-dir build -j 8 shaders/*.spv\n" +
			"  spvcross batch --target msl --options ios.toml shaders/*.spv\n",
		Args: MinimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunBatch(cmd.Context(), cmd, cli, args, opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.Targets, "target", "t", []string{"hlsl", "msl"}, "targets to compile: hlsl, msl")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", ".", "directory for the outputs")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of parallel compiles")
	return cmd
}

// RunBatch compiles inputs concurrently. Each compile gets its own options
// so override usage tracking stays per compile.
func RunBatch(ctx context.Context, cmd *cobra.Command, cli *CLI, inputs []string, opts BatchOptions) error {
	for _, t := range opts.Targets {
		if _, ok := targetExt[t]; !ok {
			return fmt.Errorf("invalid --target %q: want hlsl or msl", t)
		}
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var compiled atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(inputs))))
	for _, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := cli.compileAll(input, opts)
			compiled.Add(int64(n))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "compiled %d outputs from %d inputs into %s\n",
		compiled.Load(), len(inputs), opts.OutDir)
	return nil
}

// compileAll compiles one input to every target and returns the number of
// files written.
func (c *CLI) compileAll(input string, opts BatchOptions) (int, error) {
	words, err := readWords(input)
	if err != nil {
		return 0, err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	log := c.libLogger().WithValues("input", input)
	written := 0
	for _, target := range slices.Compact(slices.Sorted(slices.Values(opts.Targets))) {
		var code string
		switch target {
		case "hlsl":
			text, info, err := spvcross.CompileHLSL(words, c.Config.HLSLOptions(log))
			if err != nil {
				return written, fmt.Errorf("%s: %w", input, err)
			}
			c.reportUnused(target, input, info.UnusedBindings)
			code = text
		case "msl":
			text, info, err := spvcross.CompileMSL(words, c.Config.MSLOptions(log))
			if err != nil {
				return written, fmt.Errorf("%s: %w", input, err)
			}
			c.reportUnused(target, input, info.UnusedBindings)
			code = text
		}
		out := filepath.Join(opts.OutDir, base+targetExt[target])
		if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
			return written, err
		}
		c.Logger.Info("compiled", "input", input, "target", target, "output", out)
		written++
	}
	return written, nil
}

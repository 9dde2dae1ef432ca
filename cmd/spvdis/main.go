// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command spvdis prints the assembly text of a SPIR-V binary.
//
// Usage:
//
//	spvdis [flags] <file.spv>
//
// Examples:
//
//	spvdis shader.spv                 # IDs named after OpName
//	spvdis --raw-id shader.spv        # numeric IDs only
//	spvdis -o shader.spvasm shader.spv
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/spvcross/spirv"
)

type options struct {
	output string
	rawID  bool
	color  string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "spvdis <file.spv>",
		Short:         "Disassemble a SPIR-V binary",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.rawID, "raw-id", false, "print numeric IDs instead of OpName names")
	cmd.Flags().StringVar(&opts.color, "color", "auto", "color output: auto, always or never")
	return cmd
}

func run(cmd *cobra.Command, opts *options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	words, err := spirv.WordsFromBytes(data)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	colored := false
	switch opts.color {
	case "always":
		colored = true
	case "never":
	case "auto":
		f, ok := w.(*os.File)
		colored = ok && opts.output == "" && os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(f.Fd()))
	default:
		return fmt.Errorf("invalid --color %q", opts.color)
	}
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return disassemble(w, words, disOptions{Friendly: !opts.rawID, Color: colored})
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

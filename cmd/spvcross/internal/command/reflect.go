// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/spirv"
)

// ReflectOptions are the flags of the reflect command.
type ReflectOptions struct {
	Input  string
	Format string
}

// NewReflectCommand returns the reflect command.
func NewReflectCommand(cli *CLI) *cobra.Command {
	var opts ReflectOptions
	cmd := &cobra.Command{
		Use:   "reflect [flags] <input.spv>",
		Short: "List the entry points, interface and resources of a module",
		Long: Highlight("spvcross reflect <input.spv>") + "\n\n" +
			"List every entry point with its stage inputs, outputs and descriptors.\n\n" +
			"Examples:\n" +
			"  spvcross reflect shader.spv\n" +
			"  spvcross reflect --format json shader.spv\n",
		Args: ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return RunReflect(cmd, cli, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

// RunReflect prints the reflection of opts.Input.
func RunReflect(cmd *cobra.Command, cli *CLI, opts ReflectOptions) error {
	words, err := readWords(opts.Input)
	if err != nil {
		return err
	}
	r, err := spvcross.Reflect(words)
	if err != nil {
		return err
	}
	cli.Logger.Debug("reflected", "input", opts.Input, "entryPoints", len(r.EntryPoints))

	w := cmd.OutOrStdout()
	switch opts.Format {
	case "table":
		renderReflection(w, r)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid --format %q: want table, json or yaml", opts.Format)
}

func renderReflection(w io.Writer, r *cross.Reflection) {
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	for i, ep := range r.EntryPoints {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)", Highlight("%s", ep.Name), ep.Stage)
		if ep.Stage == spirv.ExecutionModelGLCompute {
			fmt.Fprintf(w, " local size %d x %d x %d", ep.WorkgroupSize[0], ep.WorkgroupSize[1], ep.WorkgroupSize[2])
		}
		fmt.Fprintln(w)

		if len(ep.Inputs)+len(ep.Outputs) > 0 {
			tbl := table.New("DIRECTION", "NAME", "LOCATION", "BUILTIN").WithWriter(w)
			tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
			addInterfaceRows(tbl, "in", ep.Inputs)
			addInterfaceRows(tbl, "out", ep.Outputs)
			tbl.Print()
		}
		if len(ep.Resources) > 0 {
			tbl := table.New("RESOURCE", "KIND", "SET", "BINDING", "COUNT", "SIZE").WithWriter(w)
			tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
			for _, res := range ep.Resources {
				tbl.AddRow(res.Name, res.Kind, setText(res.Set), res.Binding, countText(res.Count), sizeText(res.BlockSize))
			}
			tbl.Print()
		}
	}
}

func addInterfaceRows(tbl table.Table, dir string, vars []cross.IOReflection) {
	for _, v := range vars {
		loc := "-"
		if v.Builtin == "" {
			loc = strconv.FormatUint(uint64(v.Location), 10)
			if v.Locations > 1 {
				loc += fmt.Sprintf("-%d", v.Location+v.Locations-1)
			}
		}
		tbl.AddRow(dir, v.Name, loc, v.Builtin)
	}
}

func setText(set uint32) string {
	if set == cross.PushConstantSet {
		return "push"
	}
	return strconv.FormatUint(uint64(set), 10)
}

func countText(n uint32) string {
	if n == 0 {
		return "runtime"
	}
	return strconv.FormatUint(uint64(n), 10)
}

func sizeText(n uint32) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

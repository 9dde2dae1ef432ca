// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/gogpu/spvcross"
	"github.com/gogpu/spvcross/hlsl"
	"github.com/gogpu/spvcross/msl"
)

// CompileOptions are the flags shared by the hlsl and msl commands.
type CompileOptions struct {
	Input        string
	Output       string
	EntryPoint   string
	FlipVertexY  bool
	ShowBindings bool
}

func addCompileFlags(cmd *cobra.Command, opts *CompileOptions) {
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.EntryPoint, "entry", "e", "", "entry point to compile (default: the first)")
	cmd.Flags().BoolVar(&opts.FlipVertexY, "flip-vertex-y", false, "negate the Y of the vertex position")
	cmd.Flags().BoolVar(&opts.ShowBindings, "show-bindings", false, "print the resource bindings to stderr")
}

// override copies the flags the user set over the file options.
func (o *CompileOptions) override(cmd *cobra.Command, entry *string, flipY *bool) {
	if cmd.Flags().Changed("entry") {
		*entry = o.EntryPoint
	}
	if cmd.Flags().Changed("flip-vertex-y") {
		*flipY = o.FlipVertexY
	}
}

// HLSLOptions are the flags of the hlsl command.
type HLSLOptions struct {
	CompileOptions
	ShaderModel string
}

// NewHLSLCommand returns the hlsl command.
func NewHLSLCommand(cli *CLI) *cobra.Command {
	var opts HLSLOptions
	cmd := &cobra.Command{
		Use:   "hlsl [flags] <input.spv>",
		Short: "Compile SPIR-V to HLSL",
		Long: Highlight("spvcross hlsl <input.spv>") + "\n\n" +
			"Compile one entry point of a SPIR-V module to HLSL.\n\n" +
			"Examples:\n" +
			"  # Shader model 6.0 with wave intrinsics\n" +
			"  spvcross hlsl --shader-model 6.0 shader.spv\n",
		Args: ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return RunHLSL(cmd, cli, &opts)
		},
	}
	addCompileFlags(cmd, &opts.CompileOptions)
	cmd.Flags().StringVar(&opts.ShaderModel, "shader-model", "", "target shader model, e.g. 5.1 or 6.0")
	return cmd
}

// RunHLSL compiles opts.Input to HLSL.
func RunHLSL(cmd *cobra.Command, cli *CLI, opts *HLSLOptions) error {
	words, err := readWords(opts.Input)
	if err != nil {
		return err
	}
	o := cli.Config.HLSLOptions(cli.libLogger())
	opts.override(cmd, &o.EntryPoint, &o.FlipVertexY)
	if opts.ShaderModel != "" {
		if o.ShaderModel, err = hlsl.ParseShaderModel(opts.ShaderModel); err != nil {
			return err
		}
	}

	code, info, err := spvcross.CompileHLSL(words, o)
	if err != nil {
		return err
	}
	cli.reportUnused("hlsl", opts.Input, info.UnusedBindings)
	cli.Logger.Info("compiled", "input", opts.Input, "target", "hlsl",
		"entry", info.EntryPointName, "shaderModel", info.RequiredShaderModel.String(),
		"features", info.UsedFeatures.String())
	if opts.ShowBindings {
		printBindings(cmd.ErrOrStderr(), "REGISTER", info.RegisterBindings)
	}
	return writeOutput(cmd, opts.Output, code)
}

// MSLOptions are the flags of the msl command.
type MSLOptions struct {
	CompileOptions
	Version         string
	Platform        string
	ArgumentBuffers bool
}

// NewMSLCommand returns the msl command.
func NewMSLCommand(cli *CLI) *cobra.Command {
	var opts MSLOptions
	cmd := &cobra.Command{
		Use:   "msl [flags] <input.spv>",
		Short: "Compile SPIR-V to the Metal Shading Language",
		Long: Highlight("spvcross msl <input.spv>") + "\n\n" +
			"Compile one entry point of a SPIR-V module to MSL.\n\n" +
			"Examples:\n" +
			"  # iOS with argument buffers\n" +
			"  spvcross msl --platform ios --msl-version 2.0 --argument-buffers shader.spv\n",
		Args: ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return RunMSL(cmd, cli, &opts)
		},
	}
	addCompileFlags(cmd, &opts.CompileOptions)
	cmd.Flags().StringVar(&opts.Version, "msl-version", "", "target MSL version, e.g. 2.1")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "target platform: macos or ios")
	cmd.Flags().BoolVar(&opts.ArgumentBuffers, "argument-buffers", false, "group descriptor sets into argument buffers")
	return cmd
}

// RunMSL compiles opts.Input to MSL.
func RunMSL(cmd *cobra.Command, cli *CLI, opts *MSLOptions) error {
	words, err := readWords(opts.Input)
	if err != nil {
		return err
	}
	o := cli.Config.MSLOptions(cli.libLogger())
	opts.override(cmd, &o.EntryPoint, &o.FlipVertexY)
	if opts.Version != "" {
		if o.Version, err = msl.ParseVersion(opts.Version); err != nil {
			return err
		}
	}
	if opts.Platform != "" {
		if err := o.Platform.UnmarshalText([]byte(opts.Platform)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("argument-buffers") {
		o.ArgumentBuffers = opts.ArgumentBuffers
	}

	code, info, err := spvcross.CompileMSL(words, o)
	if err != nil {
		return err
	}
	cli.reportUnused("msl", opts.Input, info.UnusedBindings)
	cli.Logger.Info("compiled", "input", opts.Input, "target", "msl",
		"entry", info.EntryPointName, "version", info.RequiredVersion.String(),
		"features", info.UsedFeatures.String())
	if opts.ShowBindings {
		printBindings(cmd.ErrOrStderr(), "BINDING", info.ResourceBindings)
	}
	return writeOutput(cmd, opts.Output, code)
}

// printBindings renders a resource-to-binding map sorted by resource name.
func printBindings(w io.Writer, column string, bindings map[string]string) {
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	tbl := table.New("RESOURCE", column).WithWriter(w)
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		tbl.AddRow(name, bindings[name])
	}
	tbl.Print()
}

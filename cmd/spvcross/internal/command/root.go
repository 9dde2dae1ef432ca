// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is the spvcross release.
const Version = "0.1.0-dev"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cli := &CLI{}
	cmd := &cobra.Command{
		Use:   "spvcross",
		Short: "Cross-compile SPIR-V to HLSL and MSL",
		Long: Highlight("Usage: spvcross [global options] <command> [args]") + "\n\n" +
			"spvcross translates SPIR-V modules into HLSL for Direct3D and the Metal\n" +
			"Shading Language. Backend options come from a TOML file, binding tables\n" +
			"from a YAML file, and flags override both.\n",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.setup(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("{{.Version}}\n")

	f := cmd.PersistentFlags()
	f.StringVar(&cli.flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&cli.flags.logFormat, "log-format", "text", "log format: text or json")
	f.StringVar(&cli.flags.color, "color", "auto", "color output: auto, always or never")
	f.StringVar(&cli.flags.options, "options", "", "TOML file with backend options")
	f.StringVar(&cli.flags.tables, "tables", "", "YAML file with binding, sampler and root constant tables")

	AddCommands(cmd, cli)
	setUsageTemplate(cmd)
	return cmd
}

// AddCommands registers the subcommands.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewHLSLCommand(cli),
		NewMSLCommand(cli),
		NewReflectCommand(cli),
		NewBatchCommand(cli),
	)
}

func setUsageTemplate(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	tmpl := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(cmd.UsageTemplate())
	cmd.SetUsageTemplate(tmpl)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portfolio-chat/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// options holds the global flags.
type options struct {
	configPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "portfolio-chat",
		Short: "Portfolio AI chat server and terminal client",
		Long: `portfolio-chat serves a rate-limited, tool-calling AI assistant that answers
questions about a developer portfolio, streamed over server-sent events.

It also ships a terminal client for the same API and an MCP server exposing
the portfolio tools to other assistants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (TOML or JSON)")

	root.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newMCPCmd(opts),
		newPromptCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", RenderConditional(ErrorStyle, "[Error]"), err)
		return 1
	}
	return 0
}

// loadConfig loads the --config file, or the default locations.
// A broken default file is reported and defaults are used.
func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		cfg, err := config.LoadFromPath(o.configPath)
		if err != nil {
			return nil, err
		}
		config.SetGlobal(cfg)
		return cfg, nil
	}

	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", RenderConditional(WarningStyle, "[Warning]"), err)
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jeranaias/portfolio-chat/internal/tools"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the portfolio tools over MCP stdio",
		Long: `Expose searchProjects, searchBlogPosts, getTechStack, getExperience and
generateCodeSnippet as Model Context Protocol tools on stdin/stdout.

Logs go to stderr so they never corrupt the protocol stream.`,
		Example: `  portfolio-chat mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.loadConfig(); err != nil {
				return err
			}
			log.SetOutput(os.Stderr)

			_, exec, err := buildTools()
			if err != nil {
				return err
			}
			s := tools.NewMCPServer(exec, "portfolio-chat", Version)

			log.Printf("MCP_START | tools=%d", len(exec.Registry().All()))
			return server.ServeStdio(s)
		},
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portfolio-chat/internal/client"
)

func newAskCmd(opts *options) *cobra.Command {
	var (
		serverURL string
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Send one question to a running server and print the answer.
Without arguments the question is read from stdin.`,
		Example: `  portfolio-chat ask "What React projects have you built?"
  echo "Which companies have you worked for?" | portfolio-chat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = cfg.Client.ServerURL
			}

			question := strings.Join(args, " ")
			if question == "" {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), client.MaxInputLength*4+1))
				if err != nil {
					return fmt.Errorf("read question: %w", err)
				}
				question = string(data)
			}

			md := newMarkdownRenderer(cfg.Client.RenderMarkdown && !plain)
			session := client.NewSession(client.New(serverURL))
			if err := sendMessage(cmd.Context(), session, cmd.OutOrStdout(), question, md); err != nil {
				return errors.New(userMessage(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Server base URL (overrides config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print plain text instead of rendered markdown")
	return cmd
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portfolio-chat/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (API key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, RenderConditional(TitleStyle, "Configuration"))
			fmt.Fprintf(out, "%s%s\n", RenderLabel("Listen address"), cfg.Server.Addr)
			fmt.Fprintf(out, "%s%s\n", RenderLabel("Model"), cfg.Model.Name)
			fmt.Fprintf(out, "%s%t\n", RenderLabel("Credential set"), cfg.Model.APIKey != "")
			fmt.Fprintf(out, "%s%d / %d per day\n", RenderLabel("Limits"), cfg.Limits.PerClientDaily, cfg.Limits.GlobalDaily)
			fmt.Fprintf(out, "%s%s\n", RenderLabel("Limit store"), cfg.Limits.Store)
			fmt.Fprintf(out, "%s%t\n", RenderLabel("Transcripts"), cfg.Transcripts.Enabled)
			fmt.Fprintln(out)
			fmt.Fprintln(out, cfg.String())
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.toml",
		Long: `Write the default configuration to ~/.portfolio-chat/config.toml (or --path).
The API key is never written; set GOOGLE_GENERATIVE_AI_API_KEY instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				if err := config.EnsureConfigDir(); err != nil {
					return err
				}
				var err error
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Destination file (default ~/.portfolio-chat/config.toml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

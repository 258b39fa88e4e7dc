// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/portfolio-chat/internal/config"
	"github.com/jeranaias/portfolio-chat/internal/server"
)

// shutdownTimeout bounds in-flight streams on exit.
const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat API server",
		Long: `Run the HTTP server exposing POST /api/chat, GET /health and GET /stats.

The model credential is read from GOOGLE_GENERATIVE_AI_API_KEY (or
GEMINI_API_KEY). Without it the server starts but answers chat requests
with a config_error.`,
		Example: `  portfolio-chat serve
  portfolio-chat serve --addr :8080
  PORTFOLIO_CHAT_LIMIT_STORE=badger portfolio-chat serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// runServe serves until ctx is canceled. A nil ln listens on cfg.Server.Addr.
func runServe(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(cfg, a.orch, a.limiter, a.exec).WithVersion(Version)
	if a.transcripts != nil {
		srv.WithTranscripts(a.transcripts)
	}

	if ln == nil {
		if ln, err = net.Listen("tcp", cfg.Server.Addr); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

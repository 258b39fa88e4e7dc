// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/config"
	"github.com/jeranaias/portfolio-chat/internal/content"
	"github.com/jeranaias/portfolio-chat/internal/llm"
	"github.com/jeranaias/portfolio-chat/internal/prompt"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
	"github.com/jeranaias/portfolio-chat/internal/tools"
	"github.com/jeranaias/portfolio-chat/internal/transcript"
)

// app is the assembled chat pipeline shared by serve and mcp.
type app struct {
	catalog     *content.Catalog
	system      string
	exec        *tools.Executor
	store       ratelimit.Store
	limiter     *ratelimit.Limiter
	orch        *chat.Orchestrator
	transcripts *transcript.Store
}

// buildTools loads the portfolio data and registers the tools.
func buildTools() (*content.Catalog, *tools.Executor, error) {
	catalog, err := content.Default()
	if err != nil {
		return nil, nil, fmt.Errorf("load portfolio content: %w", err)
	}
	return catalog, tools.NewExecutor(tools.NewPortfolioRegistry(catalog)), nil
}

// buildApp wires the full server pipeline from cfg.
func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.catalog, a.exec, err = buildTools()
	if err != nil {
		return nil, err
	}
	a.system = prompt.Build(a.catalog)

	a.store, err = openLimitStore(cfg.Limits)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Limits.Location()
	if err != nil {
		return nil, fmt.Errorf("limits time zone: %w", err)
	}
	a.limiter = ratelimit.New(a.store, cfg.Limits.PerClientDaily, cfg.Limits.GlobalDaily, ratelimit.WithLocation(loc))

	model, err := openModel(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	a.orch = chat.NewOrchestrator(model, a.exec, a.system,
		chat.WithMaxSteps(cfg.Model.MaxSteps),
		chat.WithMaxDuration(cfg.Model.MaxDuration()),
	)

	if cfg.Transcripts.Enabled {
		path := cfg.Transcripts.Path
		if path == "" {
			if path, err = config.DataPath("transcripts.db"); err != nil {
				return nil, err
			}
		}
		if a.transcripts, err = transcript.Open(path); err != nil {
			return nil, fmt.Errorf("open transcripts: %w", err)
		}
	}
	return a, nil
}

// openLimitStore returns the configured rate-limit backend.
func openLimitStore(cfg config.LimitsConfig) (ratelimit.Store, error) {
	switch cfg.Store {
	case "badger":
		dir := cfg.BadgerDir
		if dir == "" {
			var err error
			if dir, err = config.DataPath("limits"); err != nil {
				return nil, err
			}
		}
		store, err := ratelimit.OpenBadgerStore(dir)
		if err != nil {
			return nil, fmt.Errorf("open limit store: %w", err)
		}
		return store, nil
	default:
		return ratelimit.NewMemoryStore(), nil
	}
}

// openModel returns the Gemini model, or a placeholder when no credential is
// configured so the server can still start and report config_error.
func openModel(ctx context.Context, cfg config.ModelConfig) (llm.Model, error) {
	model, err := llm.NewGemini(ctx, cfg.APIKey, cfg.Name, llm.WithTemperature(cfg.Temperature))
	if errors.Is(err, llm.ErrNotConfigured) {
		log.Printf("CONFIG_WARNING | no model credential; /api/chat will answer config_error")
		return llm.Unconfigured{Model: cfg.Name}, nil
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Close releases the stores.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("CLOSE_ERROR | component=limit_store error=%v", err)
		}
	}
	if a.transcripts != nil {
		if err := a.transcripts.Close(); err != nil {
			log.Printf("CLOSE_ERROR | component=transcripts error=%v", err)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursewise/coursewise/pkg/budget"
	"github.com/coursewise/coursewise/pkg/cache"
	"github.com/coursewise/coursewise/pkg/catalog"
	"github.com/coursewise/coursewise/pkg/config"
	"github.com/coursewise/coursewise/pkg/llm"
	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/recommend"
	"github.com/coursewise/coursewise/pkg/tracker"
)

// app holds the components shared by the serving commands.
type app struct {
	cfg       *config.Config
	completer llm.Completer
	catalog   *catalog.Store
	ledger    *tracker.SQLiteTracker
	svc       *recommend.Service
}

// loadConfig reads the config file (or defaults when it is absent) and
// configures logging from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.Log)
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := catalog.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	ledger, err := tracker.New(cfg.DBPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init tracker: %w", err)
	}

	completer, err := llm.New(ctx, cfg.Assistant)
	if err != nil {
		_ = store.Close()
		_ = ledger.Close()
		return nil, fmt.Errorf("init model provider: %w", err)
	}

	svc := recommend.New(
		completer,
		cache.New(cache.WithTTL(cfg.Cache.TTL), cache.WithCapacity(cfg.Cache.Capacity)),
		budget.New(cfg.Budget.Limit),
		recommend.WithRecorder(ledger),
		recommend.WithModel(cfg.Assistant.Model),
		recommend.WithTemperature(cfg.Assistant.Temperature),
		recommend.WithMaxTokens(cfg.Assistant.RecommendMaxTokens, cfg.Assistant.ChatMaxTokens),
		recommend.WithTimeout(cfg.Assistant.Timeout),
	)

	logging.Debug().
		Str("provider", cfg.Assistant.Provider).
		Str("model", cfg.Assistant.Model).
		Int("budget", cfg.Budget.Limit).
		Str("db", cfg.DBPath).
		Msg("assistant ready")

	return &app{cfg: cfg, completer: completer, catalog: store, ledger: ledger, svc: svc}, nil
}

func (a *app) Close() error {
	return errors.Join(a.catalog.Close(), a.ledger.Close())
}

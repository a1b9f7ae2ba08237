package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/llm"
	"github.com/gatewayplanning/plancheck/internal/model"
	"github.com/gatewayplanning/plancheck/internal/runner"
	"github.com/gatewayplanning/plancheck/internal/store"
	"github.com/gatewayplanning/plancheck/pkg/anthropic"
)

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "plancheck.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initCatalog loads the configured rule catalog, falling back to the
// built-in householder set when no catalog file exists.
func initCatalog() (*catalog.Catalog, error) {
	path := cfg.Catalog.Path
	if path == "" {
		return catalog.Fixture(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return catalog.Fixture(), nil
	}
	return catalog.Load(path)
}

// initResolver builds the LLM resolver, or returns nil when no API key is
// configured so runs proceed without the resolution step.
func initResolver() runner.FieldResolver {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	client := anthropic.NewClient(cfg.Anthropic.Key)
	return llm.NewResolver(client, llm.ResolverConfig{
		Model:             cfg.Anthropic.Model,
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		MaxAttempts:       cfg.LLM.MaxAttempts,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
}

// initRunner wires store, catalog, and resolver into a Runner. The caller
// owns closing the returned store.
func initRunner(ctx context.Context) (*runner.Runner, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	cat, err := initCatalog()
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return runner.New(cfg, st, cat, initResolver(), nil), st, nil
}

// loadSubmission reads a submission snapshot JSON file.
func loadSubmission(path string) (*model.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read submission %s", path)
	}
	var sub model.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, eris.Wrapf(err, "parse submission %s", path)
	}
	if sub.ID == "" {
		return nil, eris.Errorf("submission %s has no id", path)
	}
	return &sub, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

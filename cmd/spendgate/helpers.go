package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"spendgate/internal/audit"
	"spendgate/internal/classify"
	"spendgate/internal/config"
	"spendgate/internal/engine"
	"spendgate/internal/ledger"
	"spendgate/internal/llm"
	"spendgate/internal/service"
	"spendgate/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newClassifier builds the classification strategy selected in config.
// The returned closer is non-nil for strategies that hold resources.
func newClassifier(logger *slog.Logger) (service.Classifier, func(), error) {
	strategy := viper.GetString("classifier.strategy")
	if strategy == "" {
		strategy = "whitelist"
	}

	switch strategy {
	case "whitelist":
		return classify.NewWhitelistClassifier(), nil, nil

	case "semantic":
		cfg := llm.Config{
			Provider:    viper.GetString("llm.provider"),
			APIKey:      viper.GetString("llm.api_key"),
			Model:       viper.GetString("llm.model"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Timeout:     viper.GetDuration("llm.timeout"),
			CacheTTL:    viper.GetDuration("llm.cache_ttl"),
			RateLimit:   viper.GetInt("llm.rate_limit"),
		}
		judge, err := llm.NewJudge(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create relevance judge: %w", err)
		}

		timeout := viper.GetDuration("classifier.timeout")
		return classify.NewSemanticClassifier(judge, timeout, logger), judge.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown classifier strategy: %s", strategy)
	}
}

// newEngine wires storage, ledger, classifier, and audit into a policy
// engine.
func newEngine(store service.Storage, classifier service.Classifier, logger *slog.Logger) (*engine.PolicyEngine, *ledger.Ledger) {
	ldg := ledger.New(store)
	recorder := audit.NewRecorder(store, logger)
	return engine.New(store, ldg, classifier, recorder, logger), ldg
}

// parseTimestamp renders an audit timestamp in the local timezone.
func parseTimestamp(ts time.Time) string {
	return ts.Local().Format("2006-01-02 15:04:05")
}

package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dwellmetrics/api/analytics"
	"dwellmetrics/api/config"
	"dwellmetrics/api/database"
	"dwellmetrics/api/store"
)

// openEventStore connects the configured event backend. pg is reused for
// the postgres backend and may be nil otherwise.
func openEventStore(ctx context.Context, cfg *config.Config, pg *database.DBClient, logger logrus.FieldLogger) (store.EventStore, func(), error) {
	switch cfg.Analytics.Backend {
	case config.BackendPostgres:
		if pg == nil {
			return nil, nil, fmt.Errorf("postgres backend selected without a postgres connection")
		}
		return store.NewPostgresEventStore(pg.DB, logger), func() {}, nil
	case config.BackendClickHouse:
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := ch.EnsureSchema(ctx); err != nil {
			ch.Close()
			return nil, nil, err
		}
		return store.NewClickHouseEventStore(ch, logger), ch.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid event backend: %s", cfg.Analytics.Backend)
	}
}

// newEngine builds the reconstruction engine from the analytics settings.
func newEngine(cfg config.AnalyticsConfig) *analytics.Engine {
	policy := analytics.DefaultPolicy()
	policy.TopN = cfg.TopN
	if cfg.Location != nil {
		policy.Location = cfg.Location
	}
	return analytics.NewEngine(policy, cfg.Workers)
}

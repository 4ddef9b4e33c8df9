package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/config"
)

type DBClient struct {
	DB     *sql.DB
	logger logrus.FieldLogger
}

// NewPostgresDB opens a connection pool and pings it.
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig, logger logrus.FieldLogger) (*DBClient, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return &DBClient{DB: db, logger: logger}, nil
}

// EnsureSchema creates the users and tracking tables when missing.
func (c *DBClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range PostgresSchema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing database connection")
			return
		}
		c.logger.Info("PostgreSQL connection closed")
	}
}

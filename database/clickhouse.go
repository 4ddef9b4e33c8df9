package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/config"
)

type ClickHouseClient struct {
	Conn   clickhouse.Conn
	logger logrus.FieldLogger
}

// NewClickHouseDB opens a native-protocol connection and pings it.
func NewClickHouseDB(ctx context.Context, cfg config.ClickHouseConfig, logger logrus.FieldLogger) (*ClickHouseClient, error) {
	if cfg.Host == "" || cfg.Database == "" {
		return nil, fmt.Errorf("clickhouse host and database are required")
	}

	options := &clickhouse.Options{
		Addr: []string{cfg.Addr()},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "dwellmetrics", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.WithField("addr", cfg.Addr()).Info("Connected to ClickHouse")
	return &ClickHouseClient{Conn: conn, logger: logger}, nil
}

// EnsureSchema creates the tracking table when it does not exist.
func (c *ClickHouseClient) EnsureSchema(ctx context.Context) error {
	if err := c.Conn.Exec(ctx, ClickHouseSchema); err != nil {
		return fmt.Errorf("failed to create tracking_actions table: %w", err)
	}
	return nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing ClickHouse connection")
			return
		}
		c.logger.Info("ClickHouse connection closed")
	}
}

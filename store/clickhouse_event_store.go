package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dwellmetrics/api/database"
	"dwellmetrics/api/models"
)

// ClickHouseEventStore keeps tracking events in a ClickHouse MergeTree table.
type ClickHouseEventStore struct {
	DB     *database.ClickHouseClient
	logger logrus.FieldLogger
}

func NewClickHouseEventStore(chClient *database.ClickHouseClient, logger logrus.FieldLogger) *ClickHouseEventStore {
	return &ClickHouseEventStore{
		DB:     chClient,
		logger: logger,
	}
}

func (s *ClickHouseEventStore) InsertEvents(ctx context.Context, events []models.TrackingEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, insertEventsQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		if err := batch.Append(recordValues(models.RecordFromEvent(event))...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append event %s to batch: %w", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.WithField("count", len(events)).Debug("Inserted tracking events into ClickHouse")
	return nil
}

func (s *ClickHouseEventStore) FetchEvents(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error) {
	query, args := selectEventsQuery(filter, questionMark)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking events: %w", err)
	}
	defer rows.Close()

	var events []models.TrackingEvent
	for rows.Next() {
		var rec models.EventRecord
		if err := rows.Scan(recordTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan tracking event: %w", err)
		}
		events = append(events, rec.Event())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during tracking events query: %w", err)
	}
	return events, nil
}

func (s *ClickHouseEventStore) ListPaths(ctx context.Context, userID string) ([]string, error) {
	query, args := listPathsQuery(userID, questionMark)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique paths: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique paths: %w", err)
	}
	return paths, nil
}

func (s *ClickHouseEventStore) ListSessions(ctx context.Context, userID string, limit int) ([]models.SessionSummary, error) {
	query := `
		SELECT session_id, any(user_id), min(timestamp) AS session_start, max(timestamp),
			count(), groupUniqArray(action_type)
		FROM tracking_actions`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += `
		GROUP BY session_id
		ORDER BY session_start DESC
		LIMIT ?`
	args = append(args, uint64(clampLimit(limit)))

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionSummary{}
	for rows.Next() {
		var sum models.SessionSummary
		var types []string
		if err := rows.Scan(&sum.SessionID, &sum.UserID, &sum.Start, &sum.End, &sum.ActionCount, &types); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.ActionTypes = sortedTypes(types)
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for sessions: %w", err)
	}
	return sessions, nil
}

func insertEventsQuery() string {
	return fmt.Sprintf("INSERT INTO %s (%s)", trackingTable, strings.Join(eventColumns, ", "))
}

func listPathsQuery(userID string, ph placeholder) (string, []any) {
	query := fmt.Sprintf("SELECT DISTINCT url FROM %s WHERE url IS NOT NULL AND url != ''", trackingTable)
	var args []any
	if userID != "" {
		query += " AND user_id = " + ph(1)
		args = append(args, userID)
	}
	return query + " ORDER BY url", args
}

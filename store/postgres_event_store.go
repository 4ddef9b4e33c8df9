package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/models"
)

// PostgresEventStore keeps tracking events in the relational database, for
// deployments without ClickHouse.
type PostgresEventStore struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func NewPostgresEventStore(db *sql.DB, logger logrus.FieldLogger) *PostgresEventStore {
	return &PostgresEventStore{db: db, logger: logger}
}

// InsertEvents bulk-loads events with COPY inside one transaction.
func (s *PostgresEventStore) InsertEvents(ctx context.Context, events []models.TrackingEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(trackingTable, eventColumns...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, event := range events {
		if _, err := stmt.ExecContext(ctx, recordValues(models.RecordFromEvent(event))...); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy event %s: %w", event.EventID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tracking events: %w", err)
	}

	s.logger.WithField("count", len(events)).Debug("Inserted tracking events into PostgreSQL")
	return nil
}

func (s *PostgresEventStore) FetchEvents(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error) {
	query, args := selectEventsQuery(filter, dollar)

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *PostgresEventStore) ListPaths(ctx context.Context, userID string) ([]string, error) {
	query, args := listPathsQuery(userID, dollar)

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *PostgresEventStore) ListSessions(ctx context.Context, userID string, limit int) ([]models.SessionSummary, error) {
	query := `
		SELECT session_id, MIN(user_id), MIN(timestamp) AS session_start, MAX(timestamp),
			COUNT(*), array_agg(DISTINCT action_type)
		FROM tracking_actions`
	args := []any{}
	if userID != "" {
		args = append(args, userID)
		query += ` WHERE user_id = $1`
	}
	args = append(args, clampLimit(limit))
	query += fmt.Sprintf(`
		GROUP BY session_id
		ORDER BY session_start DESC
		LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionSummary{}
	for rows.Next() {
		var sum models.SessionSummary
		var types []string
		if err := rows.Scan(&sum.SessionID, &sum.UserID, &sum.Start, &sum.End, &sum.ActionCount, pq.Array(&types)); err != nil {
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

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwellmetrics/api/logging"
	"dwellmetrics/api/models"
)

func newMockEventStore(t *testing.T) (*PostgresEventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresEventStore(db, logging.Discard()), mock
}

func TestPostgresFetchEvents(t *testing.T) {
	s, mock := newMockEventStore(t)
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	start := ts.Add(-time.Hour)

	rows := sqlmock.NewRows(eventColumns).
		AddRow("e1", "7", "s1", "click", "/docs", ts,
			nil, nil, int64(10), int64(20),
			"BUTTON", "cta", nil, "Buy",
			nil, nil, nil, nil,
			false, false, false, false,
			nil, nil, nil).
		AddRow("e2", "7", "s1", "path_change", "/docs", ts.Add(-time.Second),
			nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil,
			false, false, false, false,
			nil, "/home", "/docs")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT event_id, user_id")).
		WithArgs("7", start).
		WillReturnRows(rows)

	events, err := s.FetchEvents(context.Background(), models.EventFilter{UserID: "7", Start: start})

	require.NoError(t, err)
	require.Len(t, events, 2)

	clickEvent, ok := events[0].Click()
	require.True(t, ok)
	require.NotNil(t, clickEvent.Position)
	assert.Equal(t, models.Position{X: 10, Y: 20}, *clickEvent.Position)
	assert.Equal(t, "BUTTON", clickEvent.Element.Tag)
	assert.Equal(t, "Buy", clickEvent.Element.Text)

	change, ok := events[1].PathChange()
	require.True(t, ok)
	assert.Equal(t, models.PathChangeDetail{From: "/home", To: "/docs"}, change)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFetchEvents_QueryError(t *testing.T) {
	s, mock := newMockEventStore(t)
	cause := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnError(cause)

	_, err := s.FetchEvents(context.Background(), models.EventFilter{})

	assert.ErrorIs(t, err, cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertEvents(t *testing.T) {
	s, mock := newMockEventStore(t)
	events := []models.TrackingEvent{
		{EventID: "e1", UserID: "7", SessionID: "s1", Type: models.ActionPageView, URL: "/", Timestamp: time.Now().UTC()},
		{EventID: "e2", UserID: "7", SessionID: "s1", Type: models.ActionScroll, URL: "/", Timestamp: time.Now().UTC(),
			Detail: models.ScrollDetail{ScrollY: 300}},
	}

	mock.ExpectBegin()
	copyStmt := mock.ExpectPrepare(regexp.QuoteMeta(`COPY "tracking_actions"`))
	copyStmt.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	copyStmt.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	copyStmt.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.InsertEvents(context.Background(), events))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertEvents_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockEventStore(t)
	events := []models.TrackingEvent{
		{EventID: "e1", UserID: "7", SessionID: "s1", Type: models.ActionClick, Timestamp: time.Now().UTC()},
	}

	mock.ExpectBegin()
	mock.ExpectPrepare("COPY").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := s.InsertEvents(context.Background(), events)

	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertEvents_Empty(t *testing.T) {
	s, mock := newMockEventStore(t)

	assert.NoError(t, s.InsertEvents(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPaths(t *testing.T) {
	s, mock := newMockEventStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT url FROM tracking_actions")).
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"url"}).AddRow("/docs").AddRow("/home"))

	paths, err := s.ListPaths(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, []string{"/docs", "/home"}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPaths_NoRowsIsEmptySlice(t *testing.T) {
	s, mock := newMockEventStore(t)
	mock.ExpectQuery("SELECT DISTINCT url").
		WillReturnRows(sqlmock.NewRows([]string{"url"}))

	paths, err := s.ListPaths(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestPostgresListSessions(t *testing.T) {
	s, mock := newMockEventStore(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("array_agg(DISTINCT action_type)")).
		WithArgs("7", MaxSessionLimit).
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "session_start", "session_end", "count", "types"}).
			AddRow("s1", "7", start, start.Add(time.Minute), int64(12), "{page_view,click}"))

	sessions, err := s.ListSessions(context.Background(), "7", 50000)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionSummary{
		SessionID:   "s1",
		UserID:      "7",
		Start:       start,
		End:         start.Add(time.Minute),
		ActionCount: 12,
		ActionTypes: []string{"click", "page_view"},
	}, sessions[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSessions_AllUsers(t *testing.T) {
	s, mock := newMockEventStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
		WithArgs(DefaultSessionLimit).
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "session_start", "session_end", "count", "types"}))

	sessions, err := s.ListSessions(context.Background(), "", 0)

	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

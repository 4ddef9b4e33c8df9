package database

// ClickHouseSchema is the append-only tracking table. Nullable columns only
// carry data for the action types they describe.
const ClickHouseSchema = `
CREATE TABLE IF NOT EXISTS tracking_actions (
	event_id      String,
	user_id       String,
	session_id    String,
	action_type   LowCardinality(String),
	url           Nullable(String),
	timestamp     DateTime64(3, 'UTC'),
	title         Nullable(String),
	referrer      Nullable(String),
	position_x    Nullable(Int32),
	position_y    Nullable(Int32),
	element_tag   Nullable(String),
	element_id    Nullable(String),
	element_class Nullable(String),
	element_text  Nullable(String),
	scroll_x      Nullable(Int32),
	scroll_y      Nullable(Int32),
	key_pressed   Nullable(String),
	key_code      Nullable(String),
	ctrl_key      Bool,
	shift_key     Bool,
	alt_key       Bool,
	meta_key      Bool,
	hidden        Nullable(Bool),
	path_from     Nullable(String),
	path_to       Nullable(String)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(timestamp)
ORDER BY (user_id, session_id, timestamp)`

// PostgresSchema creates the users table and the relational tracking table.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              SERIAL PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		hashed_password BYTEA NOT NULL,
		role            TEXT NOT NULL DEFAULT 'user',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tracking_actions (
		event_id      UUID PRIMARY KEY,
		user_id       TEXT NOT NULL,
		session_id    TEXT NOT NULL,
		action_type   TEXT NOT NULL,
		url           TEXT,
		timestamp     TIMESTAMPTZ NOT NULL,
		title         TEXT,
		referrer      TEXT,
		position_x    INTEGER,
		position_y    INTEGER,
		element_tag   TEXT,
		element_id    TEXT,
		element_class TEXT,
		element_text  TEXT,
		scroll_x      INTEGER,
		scroll_y      INTEGER,
		key_pressed   TEXT,
		key_code      TEXT,
		ctrl_key      BOOLEAN NOT NULL DEFAULT FALSE,
		shift_key     BOOLEAN NOT NULL DEFAULT FALSE,
		alt_key       BOOLEAN NOT NULL DEFAULT FALSE,
		meta_key      BOOLEAN NOT NULL DEFAULT FALSE,
		hidden        BOOLEAN,
		path_from     TEXT,
		path_to       TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS tracking_actions_user_ts_idx ON tracking_actions (user_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS tracking_actions_session_idx ON tracking_actions (session_id)`,
}

package tracker

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

// Tracker records and queries assistant interactions.
type Tracker interface {
	// Record stores one interaction and updates its session counters.
	Record(ctx context.Context, in models.Interaction) error
	// ResolveSession returns a session ID, using the explicit ID if provided,
	// otherwise reusing the most recent session within gapTimeout.
	ResolveSession(ctx context.Context, explicitID string, gapTimeout time.Duration) (string, error)
	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]models.Session, error)
	// SessionInteractions returns a session's interactions in call order.
	SessionInteractions(ctx context.Context, sessionID string) ([]models.Interaction, error)
	// Summary returns per-model aggregates, optionally filtered to one model.
	Summary(ctx context.Context, model string) ([]models.InteractionSummary, error)
	// DailyCosts rolls up one calendar day (UTC) of usage.
	DailyCosts(ctx context.Context, day time.Time) (models.DailyCostSummary, error)
	// SpendSince sums estimated cost since a given time, optionally per model.
	SpendSince(ctx context.Context, model string, since time.Time) (float64, error)
	// Close releases resources.
	Close() error
}

// SQLiteTracker implements Tracker with a SQLite database.
type SQLiteTracker struct {
	db *sql.DB
}

const createInteractions = `
CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	query_type TEXT NOT NULL DEFAULT 'general_inquiry',
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	estimated_cost REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_interactions_time ON interactions(created_at);
CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);
`

const createSessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	last_activity DATETIME NOT NULL,
	request_count INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	estimated_cost REAL NOT NULL DEFAULT 0
);
`

// New creates a SQLiteTracker and runs auto-migration.
func New(dbPath string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}

	if _, err := db.Exec(createInteractions); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate interactions table: %w", err)
	}
	if _, err := db.Exec(createSessions); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sessions table: %w", err)
	}

	return &SQLiteTracker{db: db}, nil
}

// generateSessionID creates a session ID like sess_20260826_a3f9c2.
func generateSessionID() string {
	b := make([]byte, 3)
	rand.Read(b)
	return fmt.Sprintf("sess_%s_%s", time.Now().UTC().Format("20060102"), hex.EncodeToString(b))
}

// Record stores an interaction and updates session counters.
func (t *SQLiteTracker) Record(ctx context.Context, in models.Interaction) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO interactions (session_id, model, department, query_type, input_tokens, output_tokens, total_tokens, latency_ms, estimated_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.SessionID, in.Model, in.Department, in.QueryType,
		in.InputTokens, in.OutputTokens, in.TotalTokens, in.LatencyMs, in.EstimatedCost, in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}

	if in.SessionID != "" {
		_, err = t.db.ExecContext(ctx,
			`UPDATE sessions SET last_activity = ?, request_count = request_count + 1,
			 total_tokens = total_tokens + ?, estimated_cost = estimated_cost + ? WHERE id = ?`,
			in.CreatedAt, in.TotalTokens, in.EstimatedCost, in.SessionID,
		)
		if err != nil {
			return fmt.Errorf("update session counters: %w", err)
		}
	}

	return nil
}

// ResolveSession returns a session ID. If explicitID is non-empty, it ensures
// the session row exists and returns it. Otherwise it reuses the most recent
// session if it is within gapTimeout, or creates a new one.
func (t *SQLiteTracker) ResolveSession(ctx context.Context, explicitID string, gapTimeout time.Duration) (string, error) {
	now := time.Now().UTC()

	if explicitID != "" {
		_, err := t.db.ExecContext(ctx,
			`INSERT INTO sessions (id, started_at, last_activity) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			explicitID, now, now,
		)
		if err != nil {
			return "", fmt.Errorf("ensure session: %w", err)
		}
		return explicitID, nil
	}

	var lastID string
	var lastActivity time.Time
	err := t.db.QueryRowContext(ctx,
		`SELECT id, last_activity FROM sessions ORDER BY last_activity DESC LIMIT 1`,
	).Scan(&lastID, &lastActivity)

	if err == nil && now.Sub(lastActivity) <= gapTimeout {
		return lastID, nil
	}

	newID := generateSessionID()
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, last_activity) VALUES (?, ?, ?)`,
		newID, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return newID, nil
}

// ListSessions returns all sessions, newest first.
func (t *SQLiteTracker) ListSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, started_at, last_activity, request_count, total_tokens, estimated_cost
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.LastActivity, &s.RequestCount, &s.TotalTokens, &s.EstimatedCost); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// SessionInteractions returns a session's interactions in call order.
func (t *SQLiteTracker) SessionInteractions(ctx context.Context, sessionID string) ([]models.Interaction, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, session_id, model, department, query_type, input_tokens, output_tokens, total_tokens, latency_ms, estimated_cost, created_at
		 FROM interactions WHERE session_id = ? ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("session interactions: %w", err)
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.SessionID, &in.Model, &in.Department, &in.QueryType,
			&in.InputTokens, &in.OutputTokens, &in.TotalTokens, &in.LatencyMs, &in.EstimatedCost, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Summary returns per-model aggregates, optionally filtered to one model.
func (t *SQLiteTracker) Summary(ctx context.Context, model string) ([]models.InteractionSummary, error) {
	query := `SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(total_tokens), SUM(estimated_cost)
		 FROM interactions`
	var args []any
	if model != "" {
		query += ` WHERE model = ?`
		args = append(args, model)
	}
	query += ` GROUP BY model ORDER BY model`

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.InteractionSummary
	for rows.Next() {
		var s models.InteractionSummary
		if err := rows.Scan(&s.Model, &s.RequestCount, &s.InputTokens, &s.OutputTokens, &s.TotalTokens, &s.EstimatedCost); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DailyCosts rolls up one calendar day (UTC) of usage.
func (t *SQLiteTracker) DailyCosts(ctx context.Context, day time.Time) (models.DailyCostSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	summary := models.DailyCostSummary{Date: start.Format("2006-01-02")}

	rows, err := t.db.QueryContext(ctx,
		`SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(total_tokens), SUM(estimated_cost)
		 FROM interactions WHERE created_at >= ? AND created_at < ? GROUP BY model ORDER BY model`,
		start, end,
	)
	if err != nil {
		return summary, fmt.Errorf("daily costs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.InteractionSummary
		if err := rows.Scan(&s.Model, &s.RequestCount, &s.InputTokens, &s.OutputTokens, &s.TotalTokens, &s.EstimatedCost); err != nil {
			return summary, fmt.Errorf("scan daily costs: %w", err)
		}
		summary.ByModel = append(summary.ByModel, s)
		summary.Requests += s.RequestCount
		summary.TokensUsed += s.TotalTokens
		summary.EstimatedCost += s.EstimatedCost
	}
	return summary, rows.Err()
}

// SpendSince sums estimated cost since a given time, optionally per model.
func (t *SQLiteTracker) SpendSince(ctx context.Context, model string, since time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(estimated_cost), 0) FROM interactions WHERE created_at >= ?`
	args := []any{since}
	if model != "" {
		query += ` AND model = ?`
		args = append(args, model)
	}

	var total float64
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("spend since: %w", err)
	}
	return total, nil
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

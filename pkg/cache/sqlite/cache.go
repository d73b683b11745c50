// Package sqlite caches completion responses keyed by a hash of the model
// and conversation, so repeated dashboard questions skip the upstream call.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

const createCache = `
CREATE TABLE IF NOT EXISTS response_cache (
	prompt_hash TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	response BLOB NOT NULL,
	created_at DATETIME NOT NULL,
	ttl_seconds INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_created ON response_cache(created_at);
`

// Cache stores completion responses in SQLite with per-entry TTLs.
type Cache struct {
	db         *sql.DB
	defaultTTL time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

// New opens (or creates) the cache database and runs auto-migration.
func New(dbPath string, defaultTTL time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createCache); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}
	return &Cache{db: db, defaultTTL: defaultTTL}, nil
}

// Key derives the cache key for a model and conversation. Message order is
// significant; the same messages in a different order are a different key.
func Key(model string, messages []models.ChatMessage) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(model)))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for a key, or (nil, false) on a miss.
// Expired entries count as misses and are deleted.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var response []byte
	var createdAt time.Time
	var ttlSeconds int64

	err := c.db.QueryRowContext(ctx,
		`SELECT response, created_at, ttl_seconds FROM response_cache WHERE prompt_hash = ?`,
		key,
	).Scan(&response, &createdAt, &ttlSeconds)
	if err == sql.ErrNoRows {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}

	if time.Since(createdAt) > time.Duration(ttlSeconds)*time.Second {
		c.misses.Add(1)
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM response_cache WHERE prompt_hash = ?`, key); err != nil {
			return nil, false, fmt.Errorf("evict expired entry: %w", err)
		}
		return nil, false, nil
	}

	c.hits.Add(1)
	return response, true, nil
}

// Put stores a response under a key, replacing any existing entry. A zero
// ttl uses the cache default.
func (c *Cache) Put(ctx context.Context, key, model string, response []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO response_cache (prompt_hash, model, response, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(prompt_hash) DO UPDATE SET
		 model = excluded.model, response = excluded.response,
		 created_at = excluded.created_at, ttl_seconds = excluded.ttl_seconds`,
		key, model, response, time.Now().UTC(), int64(ttl.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Purge deletes all expired entries and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM response_cache
		 WHERE (strftime('%s', 'now') - strftime('%s', created_at)) > ttl_seconds`,
	)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache rows: %w", err)
	}
	return n, nil
}

// Stats reports entry count and hit/miss counters for this process.
func (c *Cache) Stats(ctx context.Context) (models.CacheStats, error) {
	stats := models.CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM response_cache`,
	).Scan(&stats.Entries)
	if err != nil {
		return stats, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

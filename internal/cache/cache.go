// Package cache memoizes ingest adapter output in a local sqlite database,
// keyed by (agent, path, mtime, size), per spec §4.7. It is purely an
// optimization: a missing or corrupt cache is always treated as a miss and
// never changes which Findings a session produces.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
)

var log = logging.ForComponent(logging.CompCache)

// Cache wraps a sqlite database holding memoized parsed sessions.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at dbPath, in WAL mode with a
// busy timeout so concurrent batch workers don't collide on writes.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("cache: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", pragma, err)
		}
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close checkpoints the WAL and closes the database.
func (c *Cache) Close() error {
	_, _ = c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return c.db.Close()
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS parse_cache (
			agent         TEXT NOT NULL,
			path          TEXT NOT NULL,
			mtime_unix    INTEGER NOT NULL,
			size_bytes    INTEGER NOT NULL,
			session_json  BLOB NOT NULL,
			warnings_json BLOB NOT NULL,
			cached_at     INTEGER NOT NULL,
			PRIMARY KEY (agent, path)
		)
	`)
	if err != nil {
		return fmt.Errorf("cache: migrate: %w", err)
	}
	return nil
}

// Get returns the memoized Session for (agent, path) if the stored
// mtime/size still matches, signalling the trace file hasn't changed since
// it was cached. Any lookup or unmarshal failure is reported as a miss.
func (c *Cache) Get(agent model.AgentKind, path string, mtime time.Time, size int64, cachedAt int64) (*model.Session, bool) {
	var sessionJSON, warningsJSON []byte
	var storedMTime, storedSize int64

	row := c.db.QueryRow(
		`SELECT mtime_unix, size_bytes, session_json, warnings_json FROM parse_cache WHERE agent = ? AND path = ?`,
		string(agent), path,
	)
	if err := row.Scan(&storedMTime, &storedSize, &sessionJSON, &warningsJSON); err != nil {
		return nil, false
	}
	if storedMTime != mtime.Unix() || storedSize != size {
		return nil, false
	}

	sess, err := decodeSession(sessionJSON, warningsJSON)
	if err != nil {
		log.Warn("cache_decode_failed", "path", path, "error", err)
		return nil, false
	}
	return sess, true
}

// Put stores session under (agent, path), keyed additionally by mtime and
// size so a subsequent Get only hits for an unchanged file.
func (c *Cache) Put(session *model.Session, mtime time.Time, size int64, now int64) error {
	sessionJSON, warningsJSON, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO parse_cache (agent, path, mtime_unix, size_bytes, session_json, warnings_json, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent, path) DO UPDATE SET
			mtime_unix = excluded.mtime_unix,
			size_bytes = excluded.size_bytes,
			session_json = excluded.session_json,
			warnings_json = excluded.warnings_json,
			cached_at = excluded.cached_at
	`, string(session.Agent()), session.SourcePath(), mtime.Unix(), size, sessionJSON, warningsJSON, now)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// turnDTO is session.Turn's wire form: every field NewTurn needs to
// reconstruct an identical turn (usage is re-derived from events, not
// stored separately).
type turnDTO struct {
	Index     int           `json:"index"`
	Role      model.Role    `json:"role"`
	Timestamp time.Time     `json:"timestamp"`
	Events    []model.Event `json:"events"`
	CostUSD   float64       `json:"cost_usd"`
}

type sessionDTO struct {
	ID         string          `json:"id"`
	Agent      model.AgentKind `json:"agent"`
	SourcePath string          `json:"source_path"`
	CWD        string          `json:"cwd"`
	Turns      []turnDTO       `json:"turns"`
}

func encodeSession(session *model.Session) (sessionJSON, warningsJSON []byte, err error) {
	dto := sessionDTO{
		ID:         session.ID(),
		Agent:      session.Agent(),
		SourcePath: session.SourcePath(),
		CWD:        session.CWD(),
	}
	for _, t := range session.Turns() {
		dto.Turns = append(dto.Turns, turnDTO{
			Index:     t.Index(),
			Role:      t.Role(),
			Timestamp: t.Timestamp(),
			Events:    t.Events(),
			CostUSD:   t.CostUSD(),
		})
	}

	sessionJSON, err = json.Marshal(dto)
	if err != nil {
		return nil, nil, err
	}
	warningsJSON, err = json.Marshal(session.Warnings())
	if err != nil {
		return nil, nil, err
	}
	return sessionJSON, warningsJSON, nil
}

func decodeSession(sessionJSON, warningsJSON []byte) (*model.Session, error) {
	var dto sessionDTO
	if err := json.Unmarshal(sessionJSON, &dto); err != nil {
		return nil, err
	}
	var warnings []model.Warning
	if err := json.Unmarshal(warningsJSON, &warnings); err != nil {
		return nil, err
	}

	turns := make([]model.Turn, 0, len(dto.Turns))
	for _, td := range dto.Turns {
		turns = append(turns, model.NewTurn(td.Index, td.Role, td.Timestamp, td.Events, td.CostUSD))
	}

	return model.NewSession(dto.ID, dto.Agent, dto.SourcePath, dto.CWD, turns, warnings)
}

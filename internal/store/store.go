// Package store handles SQLite persistence of playback sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/ghostkeys/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			wpm REAL NOT NULL,
			error_rate REAL NOT NULL,
			total_chars INTEGER NOT NULL,
			typed_chars INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			think_pauses INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_class_delays (
			session_id TEXT NOT NULL,
			class TEXT NOT NULL,
			count INTEGER NOT NULL,
			sum_ms REAL NOT NULL,
			sum_sq_ms REAL NOT NULL,
			min_ms REAL NOT NULL,
			max_ms REAL NOT NULL,
			PRIMARY KEY (session_id, class)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a session and its per-class delay aggregates. A
// record without an ID gets a new UUID, which is returned.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, classes []model.ClassAggregate) (id string, err error) {
	id = rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, outcome, source, target, wpm, error_rate, total_chars, typed_chars, mistakes, think_pauses, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Outcome,
		rec.Source,
		rec.Target,
		rec.WPM,
		rec.ErrorRate,
		rec.TotalChars,
		rec.TypedChars,
		rec.Mistakes,
		rec.ThinkPauses,
		rec.DurationMs,
	)
	if err != nil {
		return "", err
	}

	if len(classes) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_class_delays (session_id, class, count, sum_ms, sum_sq_ms, min_ms, max_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, c := range classes {
			if c.Count == 0 {
				continue
			}
			if _, err = stmt.ExecContext(ctx, id, c.Class, c.Count, c.SumMs, c.SumSqMs, c.MinMs, c.MaxMs); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListSessions returns sessions matching cfg, oldest first. With cfg.Last set
// only the most recent Last sessions are returned.
func (s *Store) ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, outcome, source, target, wpm, error_rate,
			total_chars, typed_chars, mistakes, think_pauses, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.Outcome, &rec.Source, &rec.Target,
			&rec.WPM, &rec.ErrorRate, &rec.TotalChars, &rec.TypedChars, &rec.Mistakes,
			&rec.ThinkPauses, &rec.DurationMs); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// ClassAggregates merges the per-class delays of the given sessions.
func (s *Store) ClassAggregates(ctx context.Context, sessionIDs []string) ([]model.ClassAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT class, SUM(count), SUM(sum_ms), SUM(sum_sq_ms), MIN(min_ms), MAX(max_ms)
		FROM session_class_delays
		WHERE session_id IN (%s)
		GROUP BY class
		ORDER BY class`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ClassAggregate
	for rows.Next() {
		var agg model.ClassAggregate
		if err := rows.Scan(&agg.Class, &agg.Count, &agg.SumMs, &agg.SumSqMs, &agg.MinMs, &agg.MaxMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

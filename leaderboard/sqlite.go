package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	createScores = `CREATE TABLE IF NOT EXISTS scores (
	id        TEXT PRIMARY KEY,
	nickname  TEXT NOT NULL,
	score     INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	level     INTEGER NOT NULL,
	lines     INTEGER NOT NULL,
	duration  INTEGER NOT NULL
)`
	insertScore = `INSERT INTO scores (id, nickname, score, timestamp, level, lines, duration)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	trimScores = `DELETE FROM scores WHERE id NOT IN (
	SELECT id FROM scores ORDER BY score DESC, timestamp ASC LIMIT ?
)`
	selectScores = `SELECT id, nickname, score, timestamp, level, lines, duration
FROM scores ORDER BY score DESC, timestamp ASC LIMIT ?`
)

// SQLite keeps the leaderboard in a local database, one row per entry.
type SQLite struct {
	path   string
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLite(path string, l *slog.Logger) *SQLite {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLite{path: path, logger: l}
}

func (s *SQLite) Name() string { return fmt.Sprintf("SQLite (%s)", s.path) }

func (s *SQLite) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating database dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createScores); err != nil {
		db.Close()
		return fmt.Errorf("creating scores table: %w", err)
	}
	s.db = db
	s.logger.Debug("leaderboard database ready", slog.String("path", s.path))
	return nil
}

func (s *SQLite) Save(ctx context.Context, e Entry) error {
	if s.db == nil {
		return ErrUnavailable
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, insertScore,
		e.ID, e.Nickname, int64(e.Score), e.Timestamp.UnixNano(), //nolint:gosec
		e.Level, e.Lines, int64(e.Duration)); err != nil {
		return fmt.Errorf("inserting score: %w", err)
	}
	if _, err := tx.ExecContext(ctx, trimScores, MaxEntries); err != nil {
		return fmt.Errorf("trimming scores: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing score: %w", err)
	}
	return nil
}

func (s *SQLite) Top(ctx context.Context) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.db.QueryContext(ctx, selectScores, MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			score, ts, d int64
		)
		if err := rows.Scan(&e.ID, &e.Nickname, &score, &ts, &e.Level, &e.Lines, &d); err != nil {
			return nil, fmt.Errorf("reading score: %w", err)
		}
		e.Score = uint64(score) //nolint:gosec
		e.Timestamp = time.Unix(0, ts).UTC()
		e.Duration = time.Duration(d)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading scores: %w", err)
	}
	return entries, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

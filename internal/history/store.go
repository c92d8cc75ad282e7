// Package history keeps scored takes in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	reference TEXT NOT NULL,
	user_take TEXT NOT NULL,
	score INTEGER NOT NULL,
	accuracy REAL NOT NULL,
	compared INTEGER NOT NULL,
	matches INTEGER NOT NULL,
	complete INTEGER NOT NULL,
	tolerance_hz REAL NOT NULL,
	sample_rate INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_created_at ON scores(created_at);
CREATE INDEX IF NOT EXISTS idx_scores_reference ON scores(reference);
`

// Entry is one stored score.
type Entry struct {
	ID          int64     `json:"id" yaml:"id"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	Reference   string    `json:"reference" yaml:"reference"`
	User        string    `json:"user" yaml:"user"`
	Score       int       `json:"score" yaml:"score"`
	Accuracy    float64   `json:"accuracy" yaml:"accuracy"`
	Compared    int       `json:"compared" yaml:"compared"`
	Matches     int       `json:"matches" yaml:"matches"`
	Complete    bool      `json:"complete" yaml:"complete"`
	ToleranceHz float64   `json:"toleranceHz" yaml:"toleranceHz"`
	SampleRate  int       `json:"sampleRate" yaml:"sampleRate"`
}

// Query selects entries for Recent.
type Query struct {
	// Reference restricts results to one reference recording when set.
	Reference string
	// Limit caps the number of rows; <= 0 means 20.
	Limit int
}

// Store is a score history backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores e and returns its id. A zero CreatedAt is set to now.
func (s *Store) Save(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (created_at, reference, user_take, score, accuracy,
			compared, matches, complete, tolerance_hz, sample_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CreatedAt.UnixMilli(), e.Reference, e.User, e.Score, e.Accuracy,
		e.Compared, e.Matches, boolToInt(e.Complete), e.ToleranceHz, e.SampleRate)
	if err != nil {
		return 0, fmt.Errorf("history: insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: insert score: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	const cols = `SELECT id, created_at, reference, user_take, score, accuracy,
		compared, matches, complete, tolerance_hz, sample_rate FROM scores`
	var (
		rows *sql.Rows
		err  error
	)
	if q.Reference != "" {
		rows, err = s.db.QueryContext(ctx, cols+` WHERE reference = ? ORDER BY created_at DESC, id DESC LIMIT ?`, q.Reference, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, cols+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query scores: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: read scores: %w", err)
	}
	return out, nil
}

// Best returns the highest complete score for reference.
func (s *Store) Best(ctx context.Context, reference string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, reference, user_take, score, accuracy,
		compared, matches, complete, tolerance_hz, sample_rate FROM scores
		WHERE reference = ? AND complete = 1
		ORDER BY score DESC, created_at ASC LIMIT 1`, reference)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e        Entry
		created  int64
		complete int
	)
	err := sc.Scan(&e.ID, &created, &e.Reference, &e.User, &e.Score, &e.Accuracy,
		&e.Compared, &e.Matches, &complete, &e.ToleranceHz, &e.SampleRate)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("history: scan score: %w", err)
	}
	e.CreatedAt = time.UnixMilli(created)
	e.Complete = complete != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

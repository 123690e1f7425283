// Package storage persists game saves and simulation results in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lifedeck/internal/game"
)

// ErrNotFound is returned when a save or result id matches no row.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	turn       INTEGER NOT NULL,
	stage      TEXT NOT NULL,
	phase      TEXT NOT NULL,
	vitality   INTEGER NOT NULL,
	snapshot   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sim_results (
	id           TEXT PRIMARY KEY,
	strategy     TEXT NOT NULL,
	games        INTEGER NOT NULL,
	clears       INTEGER NOT NULL,
	overs        INTEGER NOT NULL,
	avg_turns    REAL NOT NULL,
	avg_vitality REAL NOT NULL,
	stats        TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
`

// Store persists saves and simulation results in one SQLite file.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the SQLite store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save is one saved game row. The snapshot itself is returned by
// LoadGame, not carried in listings.
type Save struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Turn      int       `json:"turn"`
	Stage     string    `json:"stage"`
	Phase     string    `json:"phase"`
	Vitality  int       `json:"vitality"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveGame stores a snapshot under a fresh id and returns the row.
func (s *Store) SaveGame(ctx context.Context, name string, state *game.GameState) (Save, error) {
	if err := ctx.Err(); err != nil {
		return Save{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Save{}, fmt.Errorf("storage is not configured")
	}
	if state == nil {
		return Save{}, fmt.Errorf("save game: nil state")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Turn %d", state.Turn)
	}
	snapshot, err := json.Marshal(state)
	if err != nil {
		return Save{}, fmt.Errorf("encode snapshot: %w", err)
	}

	now := time.Now().UTC()
	save := Save{
		ID:        uuid.NewString(),
		Name:      name,
		Turn:      state.Turn,
		Stage:     state.Stage.String(),
		Phase:     state.Phase.String(),
		Vitality:  state.Vitality,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO saves (id, name, turn, stage, phase, vitality, snapshot, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		save.ID,
		save.Name,
		save.Turn,
		save.Stage,
		save.Phase,
		save.Vitality,
		string(snapshot),
		toMillis(save.CreatedAt),
		toMillis(save.UpdatedAt),
	)
	if err != nil {
		return Save{}, fmt.Errorf("save game: %w", err)
	}
	return save, nil
}

// LoadGame returns the snapshot stored under id.
func (s *Store) LoadGame(ctx context.Context, id string) (*game.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("save id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT snapshot FROM saves WHERE id = ?`, id)
	var snapshot string
	if err := row.Scan(&snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	var state game.GameState
	if err := json.Unmarshal([]byte(snapshot), &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, nil
}

// ListSaves returns all save rows, most recently updated first.
func (s *Store) ListSaves(ctx context.Context) ([]Save, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, turn, stage, phase, vitality, created_at, updated_at
		   FROM saves
		  ORDER BY updated_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var saves []Save
	for rows.Next() {
		var save Save
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&save.ID,
			&save.Name,
			&save.Turn,
			&save.Stage,
			&save.Phase,
			&save.Vitality,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list saves: %w", err)
		}
		save.CreatedAt = fromMillis(createdAt)
		save.UpdatedAt = fromMillis(updatedAt)
		saves = append(saves, save)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return saves, nil
}

// DeleteSave removes the save row under id.
func (s *Store) DeleteSave(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("save id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SimResult is one aggregated simulation batch. Stats carries the AI
// service statistics as opaque JSON.
type SimResult struct {
	ID          string          `json:"id"`
	Strategy    string          `json:"strategy"`
	Games       int             `json:"games"`
	Clears      int             `json:"clears"`
	Overs       int             `json:"overs"`
	AvgTurns    float64         `json:"avgTurns"`
	AvgVitality float64         `json:"avgVitality"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RecordSimResult stores one simulation batch under a fresh id.
func (s *Store) RecordSimResult(ctx context.Context, result SimResult) (SimResult, error) {
	if err := ctx.Err(); err != nil {
		return SimResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return SimResult{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(result.Strategy) == "" {
		return SimResult{}, fmt.Errorf("strategy is required")
	}
	if result.Games <= 0 {
		return SimResult{}, fmt.Errorf("games must be greater than zero")
	}

	result.ID = uuid.NewString()
	result.CreatedAt = time.Now().UTC()
	stats := result.Stats
	if len(stats) == 0 {
		stats = json.RawMessage("{}")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sim_results (id, strategy, games, clears, overs, avg_turns, avg_vitality, stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.Strategy,
		result.Games,
		result.Clears,
		result.Overs,
		result.AvgTurns,
		result.AvgVitality,
		string(stats),
		toMillis(result.CreatedAt),
	)
	if err != nil {
		return SimResult{}, fmt.Errorf("record sim result: %w", err)
	}
	return result, nil
}

// ListSimResults returns all simulation batches, newest first.
func (s *Store) ListSimResults(ctx context.Context) ([]SimResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, strategy, games, clears, overs, avg_turns, avg_vitality, stats, created_at
		   FROM sim_results
		  ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sim results: %w", err)
	}
	defer rows.Close()

	var results []SimResult
	for rows.Next() {
		var result SimResult
		var stats string
		var createdAt int64
		if err := rows.Scan(
			&result.ID,
			&result.Strategy,
			&result.Games,
			&result.Clears,
			&result.Overs,
			&result.AvgTurns,
			&result.AvgVitality,
			&stats,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list sim results: %w", err)
		}
		result.Stats = json.RawMessage(stats)
		result.CreatedAt = fromMillis(createdAt)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sim results: %w", err)
	}
	return results, nil
}

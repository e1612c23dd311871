package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
)

// ErrRosterNotFound is returned when a trainer has no saved roster.
var ErrRosterNotFound = errors.New("roster not found")

// RosterRepository persists roster snapshots and the capture log.
type RosterRepository struct {
	db *pgxpool.Pool
}

// NewRosterRepository creates a RosterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{db: db}
}

// Save upserts the trainer's roster snapshot.
//
// Precondition: trainerID must reference an existing trainer.
func (r *RosterRepository) Save(ctx context.Context, trainerID int64, snap roster.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO rosters (trainer_id, snapshot, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (trainer_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`,
		trainerID, doc,
	)
	if err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	return nil
}

// Load returns the trainer's saved roster snapshot.
//
// Postcondition: Returns ErrRosterNotFound if nothing was saved.
func (r *RosterRepository) Load(ctx context.Context, trainerID int64) (roster.Snapshot, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM rosters WHERE trainer_id = $1`, trainerID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Snapshot{}, ErrRosterNotFound
		}
		return roster.Snapshot{}, fmt.Errorf("loading roster: %w", err)
	}
	var snap roster.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return roster.Snapshot{}, fmt.Errorf("decoding roster: %w", err)
	}
	return snap, nil
}

// RecordCapture appends one confirmed capture to the trainer's log.
func (r *RosterRepository) RecordCapture(ctx context.Context, trainerID int64, e capture.Entry) error {
	doc, err := json.Marshal(e.Creature)
	if err != nil {
		return fmt.Errorf("encoding creature: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO captures (trainer_id, member_id, creature, captured_at)
		VALUES ($1, $2, $3, $4)`,
		trainerID, e.MemberID, doc, e.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("recording capture: %w", err)
	}
	return nil
}

// CaptureLog returns up to limit captures, newest first. limit <= 0 returns all.
func (r *RosterRepository) CaptureLog(ctx context.Context, trainerID int64, limit int) ([]capture.Entry, error) {
	query := `SELECT member_id, creature, captured_at FROM captures
		WHERE trainer_id = $1 ORDER BY captured_at DESC, id DESC`
	args := []any{trainerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying captures: %w", err)
	}
	defer rows.Close()

	var out []capture.Entry
	for rows.Next() {
		var (
			e   capture.Entry
			doc []byte
		)
		if err := rows.Scan(&e.MemberID, &doc, &e.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning capture: %w", err)
		}
		var c creature.Creature
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decoding creature: %w", err)
		}
		e.Creature = c
		out = append(out, e)
	}
	return out, rows.Err()
}

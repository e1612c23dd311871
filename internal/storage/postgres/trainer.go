package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
)

// Trainer is a registered trainer account.
type Trainer struct {
	ID           int64
	Name         string
	PasscodeHash string
	CreatedAt    time.Time
}

// ErrTrainerNotFound is returned when a trainer lookup yields no results.
var ErrTrainerNotFound = errors.New("trainer not found")

// ErrTrainerExists is returned when attempting to create a duplicate trainer name.
var ErrTrainerExists = errors.New("trainer already exists")

// TrainerRepository provides trainer account persistence operations.
type TrainerRepository struct {
	db *pgxpool.Pool
}

// NewTrainerRepository creates a TrainerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTrainerRepository(db *pgxpool.Pool) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// Create inserts a new trainer. passcodeHash may be empty.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the created Trainer with ID and CreatedAt set,
// or ErrTrainerExists if the name is taken.
func (r *TrainerRepository) Create(ctx context.Context, name, passcodeHash string) (Trainer, error) {
	var tr Trainer
	err := r.db.QueryRow(ctx,
		`INSERT INTO trainers (name, passcode_hash)
		 VALUES ($1, NULLIF($2, ''))
		 RETURNING id, name, COALESCE(passcode_hash, ''), created_at`,
		name, passcodeHash,
	).Scan(&tr.ID, &tr.Name, &tr.PasscodeHash, &tr.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Trainer{}, ErrTrainerExists
		}
		return Trainer{}, fmt.Errorf("inserting trainer: %w", err)
	}
	return tr, nil
}

// GetByName retrieves a trainer by name.
//
// Postcondition: Returns the Trainer or ErrTrainerNotFound.
func (r *TrainerRepository) GetByName(ctx context.Context, name string) (Trainer, error) {
	var tr Trainer
	err := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(passcode_hash, ''), created_at
		 FROM trainers WHERE name = $1`,
		name,
	).Scan(&tr.ID, &tr.Name, &tr.PasscodeHash, &tr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trainer{}, ErrTrainerNotFound
		}
		return Trainer{}, fmt.Errorf("querying trainer: %w", err)
	}
	return tr, nil
}

// SetPasscode hashes code and stores it as the trainer's passcode.
//
// Postcondition: Returns passcode.ErrInvalidPasscode for a bad code, or
// ErrTrainerNotFound if no trainer has that name.
func (r *TrainerRepository) SetPasscode(ctx context.Context, name, code string) error {
	hash, err := passcode.Hash(code)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE trainers SET passcode_hash = $1 WHERE name = $2`,
		hash, name,
	)
	if err != nil {
		return fmt.Errorf("updating passcode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTrainerNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
)

// Store implements session.Store over the trainer and roster repositories.
type Store struct {
	trainers *TrainerRepository
	rosters  *RosterRepository
}

// NewStore creates a Store backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{trainers: NewTrainerRepository(db), rosters: NewRosterRepository(db)}
}

// Account loads the trainer and, if saved, their roster.
func (s *Store) Account(ctx context.Context, name string) (session.Account, error) {
	tr, err := s.lookup(ctx, name)
	if err != nil {
		return session.Account{}, err
	}
	acct := session.Account{Name: tr.Name, PasscodeHash: tr.PasscodeHash}
	snap, err := s.rosters.Load(ctx, tr.ID)
	switch {
	case err == nil:
		acct.Roster = &snap
	case !errors.Is(err, ErrRosterNotFound):
		return session.Account{}, err
	}
	return acct, nil
}

// CreateAccount inserts a trainer row.
func (s *Store) CreateAccount(ctx context.Context, name, passcodeHash string) error {
	if _, err := s.trainers.Create(ctx, name, passcodeHash); err != nil {
		if errors.Is(err, ErrTrainerExists) {
			return fmt.Errorf("%w: %q", session.ErrAccountExists, name)
		}
		return err
	}
	return nil
}

// SaveRoster stores snap for name.
func (s *Store) SaveRoster(ctx context.Context, name string, snap roster.Snapshot) error {
	tr, err := s.lookup(ctx, name)
	if err != nil {
		return err
	}
	return s.rosters.Save(ctx, tr.ID, snap)
}

// RecordCapture appends e to name's capture history.
func (s *Store) RecordCapture(ctx context.Context, name string, e capture.Entry) error {
	tr, err := s.lookup(ctx, name)
	if err != nil {
		return err
	}
	return s.rosters.RecordCapture(ctx, tr.ID, e)
}

// CaptureLog returns name's capture history, newest first.
func (s *Store) CaptureLog(ctx context.Context, name string) ([]capture.Entry, error) {
	tr, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.rosters.CaptureLog(ctx, tr.ID, 0)
}

func (s *Store) lookup(ctx context.Context, name string) (Trainer, error) {
	tr, err := s.trainers.GetByName(ctx, name)
	if errors.Is(err, ErrTrainerNotFound) {
		return Trainer{}, fmt.Errorf("%w: %q", session.ErrUnknownAccount, name)
	}
	return tr, err
}

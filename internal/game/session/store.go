package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
)

// ErrUnknownAccount is returned by Store.Account for an unregistered trainer.
var ErrUnknownAccount = errors.New("session: unknown trainer account")

// ErrAccountExists is returned by Store.CreateAccount for a taken name.
var ErrAccountExists = errors.New("session: trainer account already exists")

// Account is a trainer's persisted state.
type Account struct {
	Name         string
	PasscodeHash string
	// Roster is nil until the first save.
	Roster *roster.Snapshot
}

// Store persists trainer accounts between sessions.
type Store interface {
	Account(ctx context.Context, name string) (Account, error)
	CreateAccount(ctx context.Context, name, passcodeHash string) error
	SaveRoster(ctx context.Context, name string, snap roster.Snapshot) error
	RecordCapture(ctx context.Context, name string, e capture.Entry) error
	// CaptureLog returns name's recorded captures, newest first.
	CaptureLog(ctx context.Context, name string) ([]capture.Entry, error)
}

// MemoryStore is a Store for standalone mode. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	captures map[string][]capture.Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		captures: make(map[string][]capture.Entry),
	}
}

// Account returns the stored account for name.
func (s *MemoryStore) Account(_ context.Context, name string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[name]
	if !ok {
		return Account{}, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
	}
	return acct, nil
}

// CreateAccount registers name.
func (s *MemoryStore) CreateAccount(_ context.Context, name, passcodeHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[name]; ok {
		return fmt.Errorf("%w: %q", ErrAccountExists, name)
	}
	s.accounts[name] = Account{Name: name, PasscodeHash: passcodeHash}
	return nil
}

// SaveRoster replaces the stored roster for name.
func (s *MemoryStore) SaveRoster(_ context.Context, name string, snap roster.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, name)
	}
	acct.Roster = &snap
	s.accounts[name] = acct
	return nil
}

// RecordCapture appends e to name's capture history.
func (s *MemoryStore) RecordCapture(_ context.Context, name string, e capture.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, name)
	}
	s.captures[name] = append(s.captures[name], e)
	return nil
}

// CaptureLog returns name's capture history, newest first.
func (s *MemoryStore) CaptureLog(_ context.Context, name string) ([]capture.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
	}
	recorded := s.captures[name]
	out := make([]capture.Entry, len(recorded))
	for i, e := range recorded {
		out[len(recorded)-1-i] = e
	}
	return out, nil
}

// Captures returns name's capture history, oldest first.
func (s *MemoryStore) Captures(name string) []capture.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]capture.Entry(nil), s.captures[name]...)
}

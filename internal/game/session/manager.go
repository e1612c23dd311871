// Package session tracks signed-in trainers. Each trainer's roster sits
// behind a Gate that only an authentication ceremony can open.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/observability"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session: not found")

// ErrAlreadySignedIn is returned when a trainer name already has a session.
var ErrAlreadySignedIn = errors.New("session: trainer already signed in")

// Settings are the per-server knobs every trainer session shares.
type Settings struct {
	BoxNames    []string
	LandOnTeam  bool
	RelockAfter time.Duration
	MaxAttempts int
	// Detector backs simulated detections; nil disables them.
	Detector capture.Detector
}

// Manager tracks active trainer sessions. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	trainers map[uuid.UUID]*Trainer
	byName   map[string]uuid.UUID
	// verifiers outlive sessions so a reopen cannot reset a lockout.
	verifiers map[string]*accountVerifier

	reader   capture.Reader
	resolver *capture.Resolver
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates an empty Manager.
//
// Precondition: reader, resolver and logger must be non-nil.
func NewManager(reader capture.Reader, resolver *capture.Resolver, settings Settings, logger *zap.Logger) *Manager {
	return &Manager{
		trainers:  make(map[uuid.UUID]*Trainer),
		byName:    make(map[string]uuid.UUID),
		verifiers: make(map[string]*accountVerifier),
		reader:   reader,
		resolver: resolver,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for new gates and capture timestamps.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Open starts a session for a new trainer whose team holds only starter.
// passcodeHash may be empty when another authenticator is in use.
//
// Postcondition: The trainer's gate is closed.
func (m *Manager) Open(name string, starter creature.Creature, passcodeHash string) (*Trainer, error) {
	r := roster.New(starter, m.settings.BoxNames, roster.WithClock(m.now))
	return m.register(name, r, passcodeHash, nil)
}

// Resume starts a session for a returning trainer from a saved snapshot.
// history seeds the capture log and must be newest first.
//
// Postcondition: Returns an error wrapping roster.ErrInvalidSnapshot for a
// corrupt snapshot.
func (m *Manager) Resume(name string, snap roster.Snapshot, passcodeHash string, history []capture.Entry) (*Trainer, error) {
	r, err := roster.Restore(snap, roster.WithClock(m.now))
	if err != nil {
		return nil, fmt.Errorf("resuming %q: %w", name, err)
	}
	return m.register(name, r, passcodeHash, history)
}

type accountVerifier struct {
	hash string
	v    *passcode.Verifier
}

// verifierLocked returns name's verifier, keeping its failure count unless
// the passcode itself changed.
func (m *Manager) verifierLocked(name, hash string) *passcode.Verifier {
	if av, ok := m.verifiers[name]; ok && av.hash == hash {
		return av.v
	}
	v := passcode.NewVerifier(hash, m.settings.MaxAttempts)
	m.verifiers[name] = &accountVerifier{hash: hash, v: v}
	return v
}

func (m *Manager) register(name string, r *roster.Manager, passcodeHash string, history []capture.Entry) (*Trainer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrAlreadySignedIn, name)
	}

	id := uuid.New()
	logger := observability.ForTrainer(m.logger, id.String()).With(zap.String("trainer", name))
	ctx, cancel := context.WithCancel(context.Background())
	t := &Trainer{
		ID:       id,
		Name:     name,
		OpenedAt: m.now(),
		roster:   r,
		landTeam: m.settings.LandOnTeam,
		gate:     NewGate(m.settings.RelockAfter, logger),
		log:      capture.NewLog(history...),
		scanner:  scan.NewChannelScanner(),
		detector: m.settings.Detector,
		logger:   logger,
		done:     ctx,
		cancel:   cancel,
	}
	if first, ok := r.BoxAt(0); ok {
		t.selectedBox = first.ID
	}
	t.gate.SetClock(m.now)
	if passcodeHash != "" {
		t.passcode = m.verifierLocked(name, passcodeHash)
	}
	t.encounter = capture.NewEncounter(m.reader, m.resolver, t, t.log, logger)

	m.trainers[id] = t
	m.byName[name] = id
	logger.Info("session opened")
	return t, nil
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Trainer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trainers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return t, nil
}

// Close ends the session, discarding any pending capture, and returns the
// trainer so the caller can persist its snapshot.
func (m *Manager) Close(id uuid.UUID) (*Trainer, error) {
	m.mu.Lock()
	t, ok := m.trainers[id]
	if ok {
		delete(m.trainers, id)
		delete(m.byName, t.Name)
	}
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	t.close()
	t.logger.Info("session closed")
	return t, nil
}

// CloseAll ends every session and returns them.
func (m *Manager) CloseAll() []*Trainer {
	m.mu.RLock()
	ids := make([]uuid.UUID, 0, len(m.trainers))
	for id := range m.trainers {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var out []*Trainer
	for _, id := range ids {
		if t, err := m.Close(id); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trainers)
}

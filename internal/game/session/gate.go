package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/auth"
)

// ErrGateClosed is returned by every roster or capture operation while the
// trainer's gate is closed.
var ErrGateClosed = errors.New("session: gate closed")

// Gate guards a trainer's roster behind an external authentication ceremony.
// It starts closed. It is safe for concurrent use.
type Gate struct {
	mu          sync.Mutex
	open        bool
	openedAt    time.Time
	relockAfter time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewGate creates a closed Gate. relockAfter <= 0 keeps the gate open until
// Lock is called.
//
// Precondition: logger must be non-nil.
func NewGate(relockAfter time.Duration, logger *zap.Logger) *Gate {
	return &Gate{relockAfter: relockAfter, now: time.Now, logger: logger}
}

// SetClock replaces the relock clock.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// IsOpen reports whether roster access is allowed, closing the gate first if
// the relock period has elapsed.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open && g.relockAfter > 0 && g.now().Sub(g.openedAt) >= g.relockAfter {
		g.open = false
		g.logger.Info("gate relocked", zap.Duration("after", g.relockAfter))
	}
	return g.open
}

// Unlock runs one ceremony with a and opens the gate if it succeeds.
//
// Postcondition: On error the gate is closed and the error wraps the
// authenticator's failure.
func (g *Gate) Unlock(ctx context.Context, a auth.Authenticator) error {
	if err := a.Authenticate(ctx); err != nil {
		g.Lock()
		return fmt.Errorf("unlocking: %w", err)
	}
	g.mu.Lock()
	g.open = true
	g.openedAt = g.now()
	g.mu.Unlock()
	g.logger.Info("gate opened")
	return nil
}

// Lock closes the gate.
func (g *Gate) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
}

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
)

var (
	// ErrSessionClosed is returned to a scan still waiting when its session closes.
	ErrSessionClosed = errors.New("session: closed")
	// ErrSimulationDisabled is returned by Simulate when no detector is configured.
	ErrSimulationDisabled = errors.New("session: simulated detection disabled")
)

// Trainer is one signed-in trainer: a gated roster, a capture flow and the
// caller-held box selection. A single mutex serializes roster access so
// concurrent RPCs behave as one logical actor.
type Trainer struct {
	ID       uuid.UUID
	Name     string
	OpenedAt time.Time

	mu          sync.Mutex
	roster      *roster.Manager
	selectedBox int
	landTeam    bool

	gate      *Gate
	passcode  *passcode.Verifier
	encounter *capture.Encounter
	log       *capture.Log
	scanner   *scan.ChannelScanner
	detector  capture.Detector
	logger    *zap.Logger

	// done is cancelled when the session closes.
	done   context.Context
	cancel context.CancelFunc
}

// Gate returns the trainer's access gate.
func (t *Trainer) Gate() *Gate { return t.gate }

// Passcode returns the trainer's passcode verifier, or nil if none is set.
func (t *Trainer) Passcode() *passcode.Verifier { return t.passcode }

// Scanner returns the event-fed code scanner for this trainer.
func (t *Trainer) Scanner() *scan.ChannelScanner { return t.scanner }

// Unlock runs a through the gate.
func (t *Trainer) Unlock(ctx context.Context, a auth.Authenticator) error {
	err := t.gate.Unlock(ctx, a)
	if err != nil {
		t.logger.Info("unlock failed", zap.Error(err))
	}
	return err
}

// Lock closes the gate.
func (t *Trainer) Lock() { t.gate.Lock() }

func (t *Trainer) guard() error {
	if !t.gate.IsOpen() {
		return ErrGateClosed
	}
	return nil
}

// AddToTeamOrBox implements capture.Placer under the roster lock.
func (t *Trainer) AddToTeamOrBox(c creature.Creature, dest roster.Destination) (roster.Member, roster.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roster.AddToTeamOrBox(c, dest)
}

// Landing returns the default destination for a confirmed capture: the team
// or the currently selected box.
func (t *Trainer) Landing() roster.Destination {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.landTeam {
		return roster.ToTeam()
	}
	return roster.ToBox(t.selectedBox)
}

// Scan feeds raw into the capture flow.
func (t *Trainer) Scan(raw string) (capture.Outcome, error) {
	if err := t.guard(); err != nil {
		return capture.Outcome{}, err
	}
	return t.encounter.Scan(raw)
}

// ScanWithPermission asks perm for camera access and then waits on the
// trainer's scanner for one code.
//
// Postcondition: Closing the session releases the wait with ErrSessionClosed.
func (t *Trainer) ScanWithPermission(ctx context.Context, perm scan.CameraPermission) (capture.Outcome, error) {
	if t.done.Err() != nil {
		return capture.Outcome{}, ErrSessionClosed
	}
	if err := t.guard(); err != nil {
		return capture.Outcome{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.done, cancel)
	defer stop()

	out, err := t.encounter.ScanFrom(ctx, permissionScanner{perm: perm, inner: t.scanner})
	if err != nil && t.done.Err() != nil {
		return capture.Outcome{}, ErrSessionClosed
	}
	return out, err
}

// Simulate runs a capture attempt on a simulated detection.
func (t *Trainer) Simulate() (capture.Outcome, error) {
	if err := t.guard(); err != nil {
		return capture.Outcome{}, err
	}
	if t.detector == nil {
		return capture.Outcome{}, ErrSimulationDisabled
	}
	return t.encounter.Simulate(t.detector)
}

type permissionScanner struct {
	perm  scan.CameraPermission
	inner scan.CodeScanner
}

func (p permissionScanner) Scan(ctx context.Context) (string, error) {
	return scan.ScanWithPermission(ctx, p.perm, p.inner)
}

// Pending returns the outcome awaiting confirmation.
func (t *Trainer) Pending() (capture.Outcome, bool) {
	return t.encounter.Pending()
}

// Confirm places a pending successful capture at dest, or at Landing when
// dest is nil.
func (t *Trainer) Confirm(dest *roster.Destination) (roster.Member, roster.Result, error) {
	if err := t.guard(); err != nil {
		return roster.Member{}, roster.Result{}, err
	}
	d := t.Landing()
	if dest != nil {
		d = *dest
	}
	return t.encounter.Confirm(d)
}

// Dismiss discards the pending outcome.
func (t *Trainer) Dismiss() error {
	if err := t.guard(); err != nil {
		return err
	}
	return t.encounter.Dismiss()
}

// CaptureLog returns confirmed captures, newest first.
func (t *Trainer) CaptureLog() ([]capture.Entry, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.log.Entries(), nil
}

// View is a consistent copy of the roster plus the box selection.
type View struct {
	Team        []roster.Member
	Boxes       []roster.Box
	SelectedBox int
}

// View returns the roster layout.
func (t *Trainer) View() (View, error) {
	if err := t.guard(); err != nil {
		return View{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{Team: t.roster.Team(), Boxes: t.roster.ListBoxes(), SelectedBox: t.selectedBox}, nil
}

// SelectBox changes the box shown to the caller and used as the box landing.
//
// Postcondition: Returns Applied == false with ReasonUnknownBox for a bad id.
func (t *Trainer) SelectBox(boxID int) (roster.Result, error) {
	if err := t.guard(); err != nil {
		return roster.Result{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.roster.Box(boxID); !ok {
		return roster.Result{Reason: roster.ReasonUnknownBox}, nil
	}
	t.selectedBox = boxID
	return roster.Result{Applied: true}, nil
}

// MoveToBox moves a member to a box.
func (t *Trainer) MoveToBox(memberID uuid.UUID, boxID int) (roster.Result, error) {
	return t.mutate(func(m *roster.Manager) roster.Result { return m.MoveToBox(memberID, boxID) })
}

// MoveToTeam moves a box member to the team.
func (t *Trainer) MoveToTeam(memberID uuid.UUID) (roster.Result, error) {
	return t.mutate(func(m *roster.Manager) roster.Result { return m.MoveToTeam(memberID) })
}

// Reorder splices within the team or one box.
func (t *Trainer) Reorder(ref roster.CollectionRef, from, to int) (roster.Result, error) {
	return t.mutate(func(m *roster.Manager) roster.Result { return m.Reorder(ref, from, to) })
}

// Release removes a member from the roster.
func (t *Trainer) Release(memberID uuid.UUID) (roster.Result, error) {
	return t.mutate(func(m *roster.Manager) roster.Result {
		_, res := m.Release(memberID)
		return res
	})
}

func (t *Trainer) mutate(op func(*roster.Manager) roster.Result) (roster.Result, error) {
	if err := t.guard(); err != nil {
		return roster.Result{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	res := op(t.roster)
	if !res.Applied {
		t.logger.Debug("roster operation rejected", zap.String("reason", string(res.Reason)))
	}
	return res, nil
}

// Snapshot returns the persisted roster layout. It bypasses the gate so a
// closing session can always be saved.
func (t *Trainer) Snapshot() roster.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roster.Snapshot()
}

func (t *Trainer) close() {
	t.cancel()
	t.encounter.Close()
	t.scanner.Drain()
	t.gate.Lock()
}

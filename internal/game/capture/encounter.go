package capture

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
)

var (
	// ErrBusy is returned by Scan while an outcome is still being presented.
	ErrBusy = errors.New("capture: outcome pending")
	// ErrNotPresenting is returned by Confirm and Dismiss with nothing pending.
	ErrNotPresenting = errors.New("capture: no outcome pending")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("capture: encounter closed")
)

// ReasonEscaped is reported by Confirm when the attempt failed.
const ReasonEscaped roster.Reason = "creature escaped"

// State is the encounter's position in the scan flow.
type State int

const (
	StateIdle State = iota
	StatePresenting
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reader decodes raw scan payloads.
type Reader interface {
	Read(raw string) scan.Result
}

// Placer receives confirmed captures.
type Placer interface {
	AddToTeamOrBox(c creature.Creature, dest roster.Destination) (roster.Member, roster.Result)
}

// Encounter is one trainer's capture flow:
//
//	Idle --Scan|Simulate--> Presenting --Confirm|Dismiss--> Idle
//	any --Close--> Closed
//
// The roster only ever sees a capture through Confirm of a successful
// outcome, and at most once per outcome.
type Encounter struct {
	mu       sync.Mutex
	state    State
	pending  Outcome
	reader   Reader
	resolver *Resolver
	placer   Placer
	log      *Log
	logger   *zap.Logger
}

// NewEncounter creates an idle Encounter.
//
// Precondition: all arguments must be non-nil.
func NewEncounter(reader Reader, resolver *Resolver, placer Placer, log *Log, logger *zap.Logger) *Encounter {
	return &Encounter{
		reader:   reader,
		resolver: resolver,
		placer:   placer,
		log:      log,
		logger:   logger,
	}
}

// State returns the current state.
func (e *Encounter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending returns the outcome being presented, if any.
func (e *Encounter) Pending() (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending, e.state == StatePresenting
}

// Scan decodes raw and, if it names a creature, attempts the capture and
// presents the outcome.
//
// Postcondition: An unrecognized payload returns a *scan.Unrecognized error
// and leaves the encounter Idle. Otherwise the encounter is Presenting.
func (e *Encounter) Scan(raw string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.readyLocked(); err != nil {
		return Outcome{}, err
	}

	res := e.reader.Read(raw)
	if !res.OK() {
		return Outcome{}, res.Unrecognized
	}
	out := e.resolver.Attempt(res.Creature)
	e.pending = out
	e.state = StatePresenting
	return out, nil
}

// ScanFrom blocks on scanner for one code and feeds it to Scan.
//
// Postcondition: Scanner errors, including scan.ErrScanCancelled and ctx
// errors, are returned unchanged and leave the encounter Idle.
func (e *Encounter) ScanFrom(ctx context.Context, scanner scan.CodeScanner) (Outcome, error) {
	e.mu.Lock()
	err := e.readyLocked()
	e.mu.Unlock()
	if err != nil {
		return Outcome{}, err
	}

	text, err := scanner.Scan(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return e.Scan(text)
}

// Simulate attempts a capture of whatever d detects, exactly as if its
// payload had been scanned.
//
// Postcondition: Returns ErrNothingDetected and stays Idle when d has
// nothing; otherwise the encounter is Presenting.
func (e *Encounter) Simulate(d Detector) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.readyLocked(); err != nil {
		return Outcome{}, err
	}
	c, ok := d.Detect()
	if !ok {
		return Outcome{}, ErrNothingDetected
	}
	out := e.resolver.Attempt(c.Normalize())
	e.pending = out
	e.state = StatePresenting
	e.logger.Debug("simulated detection", zap.String("name", c.Name))
	return out, nil
}

func (e *Encounter) readyLocked() error {
	switch e.state {
	case StateClosed:
		return ErrClosed
	case StatePresenting:
		return ErrBusy
	default:
		return nil
	}
}

// Confirm acknowledges the presented outcome. A successful capture is placed
// at dest and recorded in the log; a failed one is simply cleared.
//
// Postcondition: If placement is rejected (for example an unknown box) the
// outcome stays pending so the caller can choose another destination.
func (e *Encounter) Confirm(dest roster.Destination) (roster.Member, roster.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateClosed:
		return roster.Member{}, roster.Result{}, ErrClosed
	case StateIdle:
		return roster.Member{}, roster.Result{}, ErrNotPresenting
	}

	if !e.pending.Success {
		e.clearLocked()
		return roster.Member{}, roster.Result{Reason: ReasonEscaped}, nil
	}

	member, res := e.placer.AddToTeamOrBox(e.pending.Creature, dest)
	if !res.Applied {
		e.logger.Info("capture placement rejected", zap.String("reason", string(res.Reason)))
		return member, res, nil
	}
	e.log.Record(Entry{MemberID: member.ID, Creature: member.Creature, CapturedAt: member.CapturedAt})
	e.logger.Info("creature captured",
		zap.String("member_id", member.ID.String()),
		zap.String("name", member.Creature.Name),
		zap.String("location", string(member.Location)),
		zap.Int("box_id", member.BoxID),
	)
	e.clearLocked()
	return member, res, nil
}

// Dismiss discards the presented outcome without touching the roster.
func (e *Encounter) Dismiss() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateClosed:
		return ErrClosed
	case StateIdle:
		return ErrNotPresenting
	}
	e.clearLocked()
	return nil
}

// Close ends the encounter and discards any pending outcome.
func (e *Encounter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = Outcome{}
	e.state = StateClosed
}

func (e *Encounter) clearLocked() {
	e.pending = Outcome{}
	e.state = StateIdle
}

// Package trainerserver serves poketrainer.v1.TrainerService: the gRPC
// surface the presentation layer drives for sessions, capture and roster
// management.
package trainerserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
	"github.com/cory-johannsen/poketrainer/internal/config"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
	trainerv1 "github.com/cory-johannsen/poketrainer/internal/trainerserver/trainerv1"
)

// Options are the service-level settings taken from configuration.
type Options struct {
	// Authenticator is config.AuthenticatorPasscode, AuthenticatorPasskey or
	// AuthenticatorStatic.
	Authenticator string
	StarterID     int
}

// TrainerService implements trainerv1.TrainerServiceServer.
type TrainerService struct {
	trainerv1.UnimplementedTrainerServiceServer
	sessions *session.Manager
	catalog  *creature.Catalog
	store    session.Store
	opts     Options
	logger   *zap.Logger
}

// NewTrainerService creates a TrainerService.
//
// Precondition: sessions, catalog, store and logger must be non-nil.
func NewTrainerService(sessions *session.Manager, catalog *creature.Catalog, store session.Store, opts Options, logger *zap.Logger) *TrainerService {
	return &TrainerService{
		sessions: sessions,
		catalog:  catalog,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

func (s *TrainerService) trainer(id string) (*session.Trainer, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid session id %q", id)
	}
	t, err := s.sessions.Get(sid)
	if err != nil {
		return nil, toStatus(err)
	}
	return t, nil
}

func parseMemberID(id string) (uuid.UUID, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid member id %q", id)
	}
	return mid, nil
}

// OpenSession signs a trainer in, creating the account with a starter on
// first use. The new session's gate is closed.
func (s *TrainerService) OpenSession(ctx context.Context, req *trainerv1.OpenSessionRequest) (*trainerv1.OpenSessionResponse, error) {
	name := strings.TrimSpace(req.TrainerName)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "trainer name required")
	}

	acct, err := s.store.Account(ctx, name)
	newTrainer := errors.Is(err, session.ErrUnknownAccount)
	switch {
	case newTrainer:
		acct, err = s.register(ctx, name, req.Passcode)
		if err != nil {
			return nil, toStatus(err)
		}
	case err != nil:
		return nil, toStatus(err)
	}

	var t *session.Trainer
	if acct.Roster != nil {
		var history []capture.Entry
		history, err = s.store.CaptureLog(ctx, name)
		if err != nil {
			return nil, toStatus(err)
		}
		t, err = s.sessions.Resume(name, *acct.Roster, acct.PasscodeHash, history)
	} else {
		t, err = s.openFresh(ctx, name, acct.PasscodeHash)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info("trainer signed in",
		zap.String("trainer", name),
		zap.String("session_id", t.ID.String()),
		zap.Bool("new_trainer", newTrainer),
	)
	return &trainerv1.OpenSessionResponse{
		SessionId:     t.ID.String(),
		NewTrainer:    newTrainer,
		HasPasscode:   t.Passcode() != nil,
		Authenticator: s.opts.Authenticator,
	}, nil
}

func (s *TrainerService) register(ctx context.Context, name, code string) (session.Account, error) {
	var hash string
	if code != "" {
		h, err := passcode.Hash(code)
		if err != nil {
			return session.Account{}, err
		}
		hash = h
	}
	if err := s.store.CreateAccount(ctx, name, hash); err != nil {
		return session.Account{}, err
	}
	return session.Account{Name: name, PasscodeHash: hash}, nil
}

func (s *TrainerService) openFresh(ctx context.Context, name, hash string) (*session.Trainer, error) {
	starter, ok := s.catalog.ByID(s.opts.StarterID)
	if !ok {
		return nil, fmt.Errorf("starter species %d not in catalog", s.opts.StarterID)
	}
	t, err := s.sessions.Open(name, starter.Creature, hash)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRoster(ctx, name, t.Snapshot()); err != nil {
		s.logger.Warn("saving initial roster", zap.String("trainer", name), zap.Error(err))
	}
	return t, nil
}

// Unlock runs the configured authenticator against the session's gate.
// Passkey sessions unlock through the web ceremony instead.
func (s *TrainerService) Unlock(ctx context.Context, req *trainerv1.UnlockRequest) (*trainerv1.UnlockResponse, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}

	var a auth.Authenticator
	switch s.opts.Authenticator {
	case config.AuthenticatorStatic:
		a = auth.Allow
	case config.AuthenticatorPasscode:
		if t.Passcode() == nil {
			return nil, toStatus(fmt.Errorf("%w: no passcode set", auth.ErrUnavailable))
		}
		a = t.Passcode().With(req.Passcode)
	default:
		return nil, status.Error(codes.FailedPrecondition, "this server unlocks with a passkey ceremony")
	}

	if err := t.Unlock(ctx, a); err != nil {
		return nil, toStatus(err)
	}
	resp := &trainerv1.UnlockResponse{}
	if v := t.Passcode(); v != nil {
		resp.AttemptsRemaining = v.Remaining()
	}
	return resp, nil
}

// Lock closes the session's gate.
func (s *TrainerService) Lock(_ context.Context, req *trainerv1.SessionRequest) (*trainerv1.Empty, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	t.Lock()
	return &trainerv1.Empty{}, nil
}

// Scan resolves a capture from a payload, from the next camera event when
// UseCamera is set, or from a simulated detection when Simulate is set.
func (s *TrainerService) Scan(ctx context.Context, req *trainerv1.ScanRequest) (*trainerv1.ScanResponse, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	if req.Simulate {
		out, err := t.Simulate()
		if err != nil {
			return nil, toStatus(err)
		}
		return outcomeToProto(out), nil
	}
	if req.UseCamera {
		perm := scan.FixedPermission{Status: scan.Permission(req.CameraPermission), Reason: req.PermissionReason}
		out, err := t.ScanWithPermission(ctx, perm)
		if err != nil {
			return nil, toStatus(err)
		}
		return outcomeToProto(out), nil
	}
	out, err := t.Scan(req.Payload)
	if err != nil {
		return nil, toStatus(err)
	}
	return outcomeToProto(out), nil
}

// PushScanEvent feeds one camera event into the session's scanner.
func (s *TrainerService) PushScanEvent(_ context.Context, req *trainerv1.ScanEventRequest) (*trainerv1.Empty, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	switch req.Kind {
	case trainerv1.ScanEventDecoded:
		err = t.Scanner().Decoded(req.Text)
	case trainerv1.ScanEventCancelled:
		err = t.Scanner().Cancelled()
	case trainerv1.ScanEventFailed:
		err = t.Scanner().Failed(req.Reason)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown scan event kind %q", req.Kind)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &trainerv1.Empty{}, nil
}

// ConfirmCapture acknowledges the presented outcome and records an applied
// capture.
func (s *TrainerService) ConfirmCapture(ctx context.Context, req *trainerv1.ConfirmCaptureRequest) (*trainerv1.ConfirmCaptureResponse, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	var dest *roster.Destination
	if req.Destination != nil {
		d := collectionFromProto(req.Destination)
		dest = &d
	}
	member, res, err := t.Confirm(dest)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &trainerv1.ConfirmCaptureResponse{Result: resultToProto(res)}
	if res.Applied {
		resp.Member = memberToProto(member)
		entry := capturedEntry(member)
		if err := s.store.RecordCapture(ctx, t.Name, entry); err != nil {
			s.logger.Warn("recording capture", zap.String("trainer", t.Name), zap.Error(err))
		}
	}
	return resp, nil
}

// DismissCapture discards the presented outcome.
func (s *TrainerService) DismissCapture(_ context.Context, req *trainerv1.SessionRequest) (*trainerv1.Empty, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	if err := t.Dismiss(); err != nil {
		return nil, toStatus(err)
	}
	return &trainerv1.Empty{}, nil
}

// GetRoster returns the team, the boxes and the selected box.
func (s *TrainerService) GetRoster(_ context.Context, req *trainerv1.SessionRequest) (*trainerv1.RosterView, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	v, err := t.View()
	if err != nil {
		return nil, toStatus(err)
	}
	return viewToProto(v), nil
}

// SelectBox changes the selected box.
func (s *TrainerService) SelectBox(_ context.Context, req *trainerv1.SelectBoxRequest) (*trainerv1.Result, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	res, err := t.SelectBox(req.BoxId)
	if err != nil {
		return nil, toStatus(err)
	}
	return resultToProto(res), nil
}

// MoveToBox moves a member into a box.
func (s *TrainerService) MoveToBox(_ context.Context, req *trainerv1.MemberRequest) (*trainerv1.Result, error) {
	return s.memberOp(req, func(t *session.Trainer, id uuid.UUID) (roster.Result, error) {
		return t.MoveToBox(id, req.BoxId)
	})
}

// MoveToTeam moves a box member onto the team.
func (s *TrainerService) MoveToTeam(_ context.Context, req *trainerv1.MemberRequest) (*trainerv1.Result, error) {
	return s.memberOp(req, (*session.Trainer).MoveToTeam)
}

// Release removes a member from the roster.
func (s *TrainerService) Release(_ context.Context, req *trainerv1.MemberRequest) (*trainerv1.Result, error) {
	return s.memberOp(req, (*session.Trainer).Release)
}

func (s *TrainerService) memberOp(req *trainerv1.MemberRequest, op func(*session.Trainer, uuid.UUID) (roster.Result, error)) (*trainerv1.Result, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	id, err := parseMemberID(req.MemberId)
	if err != nil {
		return nil, err
	}
	res, err := op(t, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return resultToProto(res), nil
}

// Reorder splices within the team or one box.
func (s *TrainerService) Reorder(_ context.Context, req *trainerv1.ReorderRequest) (*trainerv1.Result, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	res, err := t.Reorder(collectionFromProto(req.Collection), req.From, req.To)
	if err != nil {
		return nil, toStatus(err)
	}
	return resultToProto(res), nil
}

// GetCaptureLog returns the trainer's confirmed captures, newest first,
// including those from earlier sessions.
func (s *TrainerService) GetCaptureLog(_ context.Context, req *trainerv1.SessionRequest) (*trainerv1.CaptureLogResponse, error) {
	t, err := s.trainer(req.SessionId)
	if err != nil {
		return nil, err
	}
	entries, err := t.CaptureLog()
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &trainerv1.CaptureLogResponse{Entries: make([]*trainerv1.CaptureEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, entryToProto(e))
	}
	return resp, nil
}

// SearchCatalog pages through the species catalog. It needs no session.
func (s *TrainerService) SearchCatalog(_ context.Context, req *trainerv1.SearchCatalogRequest) (*trainerv1.SearchCatalogResponse, error) {
	page := s.catalog.Search(creature.Query{Name: req.Name, Type: req.Type, Offset: req.Offset, Limit: req.Limit})
	resp := &trainerv1.SearchCatalogResponse{
		Species: make([]*trainerv1.Creature, 0, len(page.Species)),
		Total:   page.Total,
		HasMore: page.HasMore,
		Types:   s.catalog.Types(),
	}
	for _, sp := range page.Species {
		resp.Species = append(resp.Species, creatureToProto(sp.Creature))
	}
	return resp, nil
}

// CloseSession ends the session and saves the roster.
func (s *TrainerService) CloseSession(ctx context.Context, req *trainerv1.SessionRequest) (*trainerv1.Empty, error) {
	sid, err := uuid.Parse(req.SessionId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid session id %q", req.SessionId)
	}
	t, err := s.sessions.Close(sid)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.Save(ctx, t); err != nil {
		return nil, toStatus(err)
	}
	return &trainerv1.Empty{}, nil
}

// Save persists t's roster snapshot.
func (s *TrainerService) Save(ctx context.Context, t *session.Trainer) error {
	if err := s.store.SaveRoster(ctx, t.Name, t.Snapshot()); err != nil {
		return fmt.Errorf("saving roster for %q: %w", t.Name, err)
	}
	return nil
}

// Shutdown closes every session and saves each roster.
func (s *TrainerService) Shutdown(ctx context.Context) {
	for _, t := range s.sessions.CloseAll() {
		if err := s.Save(ctx, t); err != nil {
			s.logger.Error("saving roster on shutdown", zap.Error(err))
		}
	}
}

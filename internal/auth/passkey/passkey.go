// Package passkey runs WebAuthn registration and login ceremonies for
// trainers. A finished login is exposed as an auth.Authenticator so the
// session gate stays the only place that opens.
package passkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/config"
)

// CeremonyTTL bounds how long a begun ceremony may wait for its finish call.
const CeremonyTTL = 5 * time.Minute

var (
	// ErrUnknownCeremony is returned for missing, expired or mismatched ceremonies.
	ErrUnknownCeremony = errors.New("passkey: unknown or expired ceremony")
	// ErrNoCredentials is returned by BeginLogin for a trainer with no passkey.
	ErrNoCredentials = fmt.Errorf("%w: no passkey registered", auth.ErrUnavailable)
)

// Provider is the subset of *webauthn.WebAuthn the Service drives.
type Provider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidateLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error)
}

// Parser decodes browser ceremony responses.
type Parser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type protocolParser struct{}

func (protocolParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (protocolParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

// CredentialStore persists registered credentials per trainer.
type CredentialStore interface {
	Credentials(ctx context.Context, trainer string) ([]webauthn.Credential, error)
	PutCredential(ctx context.Context, trainer string, cred webauthn.Credential) error
}

type ceremonyKind string

const (
	kindRegistration ceremonyKind = "registration"
	kindLogin        ceremonyKind = "login"
)

type ceremony struct {
	kind      ceremonyKind
	trainer   string
	data      webauthn.SessionData
	expiresAt time.Time
}

// Service runs passkey ceremonies. It is safe for concurrent use.
type Service struct {
	provider Provider
	parser   Parser
	store    CredentialStore

	mu         sync.Mutex
	ceremonies map[string]ceremony

	now   func() time.Time
	newID func() string
}

// New builds a Service backed by go-webauthn configured from cfg.
//
// Precondition: cfg must have passed config validation.
func New(cfg config.PasskeyConfig, store CredentialStore) (*Service, error) {
	w, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring webauthn: %w", err)
	}
	return NewWithProvider(w, protocolParser{}, store), nil
}

// NewWithProvider builds a Service around an explicit provider and parser.
func NewWithProvider(provider Provider, parser Parser, store CredentialStore) *Service {
	return &Service{
		provider:   provider,
		parser:     parser,
		store:      store,
		ceremonies: make(map[string]ceremony),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetClock replaces the ceremony expiry clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// UserHandle is the stable WebAuthn user handle for a trainer name.
func UserHandle(trainer string) []byte {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("poketrainer:trainer:"+trainer))
	return id[:]
}

type trainerUser struct {
	name        string
	credentials []webauthn.Credential
}

func (u *trainerUser) WebAuthnID() []byte                         { return UserHandle(u.name) }
func (u *trainerUser) WebAuthnName() string                       { return u.name }
func (u *trainerUser) WebAuthnDisplayName() string                { return u.name }
func (u *trainerUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

func (s *Service) loadUser(ctx context.Context, trainer string) (*trainerUser, error) {
	creds, err := s.store.Credentials(ctx, trainer)
	if err != nil {
		return nil, fmt.Errorf("loading passkeys for %q: %w", trainer, err)
	}
	return &trainerUser{name: trainer, credentials: creds}, nil
}

// HasCredentials reports whether trainer has registered a passkey.
func (s *Service) HasCredentials(ctx context.Context, trainer string) (bool, error) {
	user, err := s.loadUser(ctx, trainer)
	if err != nil {
		return false, err
	}
	return len(user.credentials) > 0, nil
}

// BeginRegistration starts passkey creation for trainer.
//
// Postcondition: Returns a ceremony id to pass to FinishRegistration and the
// creation options to hand to the browser.
func (s *Service) BeginRegistration(ctx context.Context, trainer string) (string, *protocol.CredentialCreation, error) {
	user, err := s.loadUser(ctx, trainer)
	if err != nil {
		return "", nil, err
	}
	opts := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
	}
	if len(user.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(user.credentials).CredentialDescriptors()))
	}
	creation, data, err := s.provider.BeginRegistration(user, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("beginning passkey registration: %w", err)
	}
	return s.remember(kindRegistration, trainer, data), creation, nil
}

// FinishRegistration validates the browser's creation response and stores
// the new credential.
//
// Postcondition: Returns ErrUnknownCeremony if the ceremony was begun for a
// trainer other than trainer.
func (s *Service) FinishRegistration(ctx context.Context, ceremonyID, trainer string, response []byte) error {
	c, err := s.take(ceremonyID, kindRegistration, trainer)
	if err != nil {
		return err
	}
	parsed, err := s.parser.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return fmt.Errorf("parsing credential response: %w", err)
	}
	user, err := s.loadUser(ctx, c.trainer)
	if err != nil {
		return err
	}
	cred, err := s.provider.CreateCredential(user, c.data, parsed)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrAuthenticationFailed, err)
	}
	if err := s.store.PutCredential(ctx, c.trainer, *cred); err != nil {
		return fmt.Errorf("storing passkey: %w", err)
	}
	return nil
}

// BeginLogin starts an assertion for trainer.
//
// Postcondition: Returns ErrNoCredentials if trainer has not registered.
func (s *Service) BeginLogin(ctx context.Context, trainer string) (string, *protocol.CredentialAssertion, error) {
	user, err := s.loadUser(ctx, trainer)
	if err != nil {
		return "", nil, err
	}
	if len(user.credentials) == 0 {
		return "", nil, ErrNoCredentials
	}
	assertion, data, err := s.provider.BeginLogin(user)
	if err != nil {
		return "", nil, fmt.Errorf("beginning passkey login: %w", err)
	}
	return s.remember(kindLogin, trainer, data), assertion, nil
}

// FinishLogin validates the browser's assertion for trainer.
func (s *Service) FinishLogin(ctx context.Context, ceremonyID, trainer string, response []byte) error {
	c, err := s.take(ceremonyID, kindLogin, trainer)
	if err != nil {
		return err
	}
	parsed, err := s.parser.ParseCredentialRequestResponseBytes(response)
	if err != nil {
		return fmt.Errorf("%w: parsing assertion: %v", auth.ErrAuthenticationFailed, err)
	}
	user, err := s.loadUser(ctx, trainer)
	if err != nil {
		return err
	}
	cred, err := s.provider.ValidateLogin(user, c.data, parsed)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrAuthenticationFailed, err)
	}
	if err := s.store.PutCredential(ctx, trainer, *cred); err != nil {
		return fmt.Errorf("updating passkey: %w", err)
	}
	return nil
}

// Assertion returns an Authenticator that finishes the login ceremony when run.
func (s *Service) Assertion(ceremonyID, trainer string, response []byte) auth.Authenticator {
	return auth.Func(func(ctx context.Context) error {
		return s.FinishLogin(ctx, ceremonyID, trainer, response)
	})
}

func (s *Service) remember(kind ceremonyKind, trainer string, data *webauthn.SessionData) string {
	id := s.newID()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.ceremonies {
		if now.After(c.expiresAt) {
			delete(s.ceremonies, k)
		}
	}
	s.ceremonies[id] = ceremony{kind: kind, trainer: trainer, data: *data, expiresAt: now.Add(CeremonyTTL)}
	return id
}

// take removes and returns the ceremony owned by trainer.
func (s *Service) take(id string, kind ceremonyKind, trainer string) (ceremony, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ceremonies[id]
	if !ok || c.kind != kind || c.trainer != trainer {
		return ceremony{}, ErrUnknownCeremony
	}
	delete(s.ceremonies, id)
	if s.now().After(c.expiresAt) {
		return ceremony{}, ErrUnknownCeremony
	}
	return c, nil
}

// Pending returns the number of ceremonies awaiting a finish call.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ceremonies)
}

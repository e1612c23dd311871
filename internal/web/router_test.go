package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/poketrainer/internal/auth/passkey"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
	"github.com/cory-johannsen/poketrainer/internal/web"
)

// stubProvider accepts every ceremony unless reject is set.
type stubProvider struct{ reject bool }

func (p *stubProvider) BeginRegistration(webauthn.User, ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	return &protocol.CredentialCreation{}, &webauthn.SessionData{Challenge: "c"}, nil
}

func (p *stubProvider) CreateCredential(webauthn.User, webauthn.SessionData, *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	return &webauthn.Credential{ID: []byte("key")}, nil
}

func (p *stubProvider) BeginLogin(webauthn.User, ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	return &protocol.CredentialAssertion{}, &webauthn.SessionData{Challenge: "c"}, nil
}

func (p *stubProvider) ValidateLogin(user webauthn.User, _ webauthn.SessionData, _ *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
	if p.reject {
		return nil, errors.New("bad signature")
	}
	c := user.WebAuthnCredentials()[0]
	return &c, nil
}

type stubParser struct{}

func (stubParser) ParseCredentialCreationResponseBytes([]byte) (*protocol.ParsedCredentialCreationData, error) {
	return &protocol.ParsedCredentialCreationData{}, nil
}

func (stubParser) ParseCredentialRequestResponseBytes([]byte) (*protocol.ParsedCredentialAssertionData, error) {
	return &protocol.ParsedCredentialAssertionData{}, nil
}

type fixture struct {
	router   http.Handler
	provider *stubProvider
	sessions *session.Manager
	trainer  *session.Trainer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	resolver := capture.NewResolver(&dice.FixedSource{Values: []int{0}}, logger, nil)
	sessions := session.NewManager(scan.NewIntake(nil, logger), resolver, session.Settings{}, logger)
	tr, err := sessions.Open("ash", creature.Creature{ID: 25, Name: "Pikachu", Rarity: "common"}, "")
	require.NoError(t, err)

	p := &stubProvider{}
	svc := passkey.NewWithProvider(p, stubParser{}, passkey.NewMemoryStore())
	return fixture{
		router:   web.NewRouter(web.NewHandler(svc, sessions, logger)),
		provider: p,
		sessions: sessions,
		trainer:  tr,
	}
}

func (f fixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf)))
	return rec
}

func (f fixture) begin(t *testing.T, path string) string {
	t.Helper()
	rec := f.post(t, path, map[string]string{"sessionId": f.trainer.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		CeremonyID string `json:"ceremonyId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.CeremonyID)
	return resp.CeremonyID
}

func (f fixture) finish(t *testing.T, path, ceremonyID string) *httptest.ResponseRecorder {
	t.Helper()
	return f.post(t, path, map[string]any{
		"sessionId":  f.trainer.ID.String(),
		"ceremonyId": ceremonyID,
		"response":   map[string]string{"id": "key"},
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegisterThenLoginOpensGate(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/passkey/login/begin", map[string]string{"sessionId": f.trainer.ID.String()})
	assert.Equal(t, http.StatusConflict, rec.Code, "no passkey yet")

	id := f.begin(t, "/passkey/register/begin")
	rec = f.finish(t, "/passkey/register/finish", id)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.post(t, "/passkey/register/begin", map[string]string{"sessionId": f.trainer.ID.String()})
	assert.Equal(t, http.StatusForbidden, rec.Code, "second passkey needs an open gate")

	id = f.begin(t, "/passkey/login/begin")
	rec = f.finish(t, "/passkey/login/finish", id)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.True(t, f.trainer.Gate().IsOpen())
}

func TestLoginFinish_RejectedAssertionKeepsGateClosed(t *testing.T) {
	f := newFixture(t)
	f.finish(t, "/passkey/register/finish", f.begin(t, "/passkey/register/begin"))

	f.provider.reject = true
	rec := f.finish(t, "/passkey/login/finish", f.begin(t, "/passkey/login/begin"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, f.trainer.Gate().IsOpen())
}

func TestCeremonyRequestErrors(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/passkey/login/begin", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/passkey/login/begin", map[string]string{"sessionId": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/passkey/login/begin", map[string]string{"sessionId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.finish(t, "/passkey/register/finish", "missing")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterFinish_OtherTrainerCannotUseCeremony(t *testing.T) {
	f := newFixture(t)
	id := f.begin(t, "/passkey/register/begin")

	gary, err := f.sessions.Open("gary", creature.Creature{ID: 4, Name: "Charmander", Rarity: "common"}, "")
	require.NoError(t, err)
	rec := f.post(t, "/passkey/register/finish", map[string]any{
		"sessionId":  gary.ID.String(),
		"ceremonyId": id,
		"response":   map[string]string{"id": "key"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.finish(t, "/passkey/register/finish", id)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

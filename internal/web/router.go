// Package web serves the browser-facing WebAuthn ceremonies. A finished
// passkey login opens the trainer's session gate.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/auth/passkey"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
)

// Handler serves the passkey endpoints.
type Handler struct {
	passkeys *passkey.Service
	sessions *session.Manager
	logger   *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: passkeys, sessions and logger must be non-nil.
func NewHandler(passkeys *passkey.Service, sessions *session.Manager, logger *zap.Logger) *Handler {
	return &Handler{passkeys: passkeys, sessions: sessions, logger: logger}
}

// NewRouter registers the health check and the passkey ceremony routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.HandleFunc("/passkey/register/begin", h.RegisterBegin).Methods("POST")
	r.HandleFunc("/passkey/register/finish", h.RegisterFinish).Methods("POST")
	r.HandleFunc("/passkey/login/begin", h.LoginBegin).Methods("POST")
	r.HandleFunc("/passkey/login/finish", h.LoginFinish).Methods("POST")
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type ceremonyRequest struct {
	SessionID  string          `json:"sessionId"`
	CeremonyID string          `json:"ceremonyId,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}

type beginResponse struct {
	CeremonyID string `json:"ceremonyId"`
	Options    any    `json:"options"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ceremonyRequest, *session.Trainer, bool) {
	var req ceremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, nil, false
	}
	sid, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return req, nil, false
	}
	t, err := h.sessions.Get(sid)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return req, nil, false
	}
	return req, t, true
}

// RegisterBegin starts passkey creation. A trainer who already has a
// passkey must unlock before adding another.
func (h *Handler) RegisterBegin(w http.ResponseWriter, r *http.Request) {
	_, t, ok := h.decode(w, r)
	if !ok {
		return
	}
	has, err := h.passkeys.HasCredentials(r.Context(), t.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	if has && !t.Gate().IsOpen() {
		writeError(w, http.StatusForbidden, session.ErrGateClosed.Error())
		return
	}
	id, opts, err := h.passkeys.BeginRegistration(r.Context(), t.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, beginResponse{CeremonyID: id, Options: opts})
}

// RegisterFinish stores the credential the browser created.
func (h *Handler) RegisterFinish(w http.ResponseWriter, r *http.Request) {
	req, t, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.passkeys.FinishRegistration(r.Context(), req.CeremonyID, t.Name, req.Response); err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("passkey registered", zap.String("trainer", t.Name))
	w.WriteHeader(http.StatusNoContent)
}

// LoginBegin starts an assertion for the session's trainer.
func (h *Handler) LoginBegin(w http.ResponseWriter, r *http.Request) {
	_, t, ok := h.decode(w, r)
	if !ok {
		return
	}
	id, opts, err := h.passkeys.BeginLogin(r.Context(), t.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, beginResponse{CeremonyID: id, Options: opts})
}

// LoginFinish validates the assertion and, on success, opens the gate.
func (h *Handler) LoginFinish(w http.ResponseWriter, r *http.Request) {
	req, t, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := t.Unlock(r.Context(), h.passkeys.Assertion(req.CeremonyID, t.Name, req.Response)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, passkey.ErrUnknownCeremony):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("passkey ceremony failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// Package auth defines the authentication capability the session gate runs.
// Each platform supplies one Authenticator implementation, selected at
// startup; the gate itself performs no cryptography.
package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is wrapped by every rejected ceremony.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrUnavailable is returned when the platform cannot authenticate at all.
	ErrUnavailable = errors.New("authentication unavailable")
)

// Authenticator runs one authentication ceremony.
type Authenticator interface {
	// Authenticate returns nil when the user proved their identity.
	Authenticate(ctx context.Context) error
}

// Func adapts a function into an Authenticator.
type Func func(ctx context.Context) error

// Authenticate calls f.
func (f Func) Authenticate(ctx context.Context) error { return f(ctx) }

// Static always returns the same verdict. It backs dev mode and tests.
type Static struct {
	Accept bool
	Reason string
}

// Allow accepts every ceremony.
var Allow = Static{Accept: true}

// Deny returns a Static that rejects with reason.
func Deny(reason string) Static { return Static{Reason: reason} }

// Authenticate returns nil if s.Accept, else an ErrAuthenticationFailed wrap.
func (s Static) Authenticate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Accept {
		return nil
	}
	if s.Reason == "" {
		return ErrAuthenticationFailed
	}
	return fmt.Errorf("%w: %s", ErrAuthenticationFailed, s.Reason)
}

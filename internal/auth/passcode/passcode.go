// Package passcode authenticates a trainer with a bcrypt-hashed device
// passcode, the fallback when platform biometrics are unavailable.
package passcode

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/poketrainer/internal/auth"
)

const (
	// MinLength is the shortest accepted passcode.
	MinLength = 4
	// MaxLength stays under bcrypt's 72-byte input limit.
	MaxLength = 64
	// DefaultMaxAttempts is the failure budget before lockout.
	DefaultMaxAttempts = 5
)

// ErrLockedOut is returned once the failure budget is spent.
var ErrLockedOut = fmt.Errorf("%w: too many failed attempts", auth.ErrAuthenticationFailed)

// ErrInvalidPasscode is returned by Hash for passcodes outside the length bounds.
var ErrInvalidPasscode = errors.New("passcode: length must be between 4 and 64")

// Hash creates a bcrypt hash of code.
//
// Precondition: MinLength <= len(code) <= MaxLength.
// Postcondition: Returns a bcrypt hash string or ErrInvalidPasscode.
func Hash(code string) (string, error) {
	if len(code) < MinLength || len(code) > MaxLength {
		return "", ErrInvalidPasscode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing passcode: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether code matches hash.
func Matches(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// Verifier checks passcode attempts for one trainer and enforces the failure
// budget. It is safe for concurrent use.
type Verifier struct {
	mu          sync.Mutex
	hash        string
	maxAttempts int
	failures    int
}

// NewVerifier creates a Verifier for hash. maxAttempts <= 0 uses
// DefaultMaxAttempts.
func NewVerifier(hash string, maxAttempts int) *Verifier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Verifier{hash: hash, maxAttempts: maxAttempts}
}

// Check verifies code.
//
// Postcondition: A match resets the failure count. A mismatch consumes one
// attempt. Once attempts are spent every call returns ErrLockedOut.
func (v *Verifier) Check(code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failures >= v.maxAttempts {
		return ErrLockedOut
	}
	if Matches(code, v.hash) {
		v.failures = 0
		return nil
	}
	v.failures++
	if v.failures >= v.maxAttempts {
		return ErrLockedOut
	}
	return fmt.Errorf("%w: wrong passcode, %d attempts left", auth.ErrAuthenticationFailed, v.maxAttempts-v.failures)
}

// Remaining returns the attempts left before lockout.
func (v *Verifier) Remaining() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxAttempts - v.failures
}

// Reset clears the failure count.
func (v *Verifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failures = 0
}

// With returns an Authenticator that checks code when the gate runs it.
func (v *Verifier) With(code string) auth.Authenticator {
	return auth.Func(func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return v.Check(code)
	})
}

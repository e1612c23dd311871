package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/poketrainer/internal/auth"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, auth.Allow.Authenticate(ctx))

	err := auth.Deny("no enrolled biometrics").Authenticate(ctx)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "no enrolled biometrics")

	assert.ErrorIs(t, auth.Static{}.Authenticate(ctx), auth.ErrAuthenticationFailed)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, auth.Allow.Authenticate(ctx), context.Canceled)
}

func TestFunc(t *testing.T) {
	boom := errors.New("sensor offline")
	var a auth.Authenticator = auth.Func(func(context.Context) error { return boom })
	assert.ErrorIs(t, a.Authenticate(context.Background()), boom)
}

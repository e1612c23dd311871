package postgres_test

import (
	"context"
	"testing"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/poketrainer/internal/auth/passkey"
	"github.com/cory-johannsen/poketrainer/internal/storage/postgres"
	"github.com/cory-johannsen/poketrainer/internal/testutil"
)

func TestPasskeyRepository_PutAndList(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	name := uniqueName("ash")
	_, err := postgres.NewTrainerRepository(pool).Create(ctx, name, "")
	require.NoError(t, err)

	var repo passkey.CredentialStore = postgres.NewPasskeyRepository(pool)
	creds, err := repo.Credentials(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, creds)

	cred := webauthn.Credential{ID: []byte("cred-1"), PublicKey: []byte{1, 2, 3}}
	require.NoError(t, repo.PutCredential(ctx, name, cred))

	cred.Authenticator.SignCount = 7
	require.NoError(t, repo.PutCredential(ctx, name, cred))

	creds, err = repo.Credentials(ctx, name)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, uint32(7), creds[0].Authenticator.SignCount)
	assert.Equal(t, []byte{1, 2, 3}, creds[0].PublicKey)
}

func TestPasskeyRepository_UnknownTrainer(t *testing.T) {
	repo := postgres.NewPasskeyRepository(testutil.NewPool(t))
	err := repo.PutCredential(context.Background(), uniqueName("nobody"), webauthn.Credential{ID: []byte("x")})
	assert.ErrorIs(t, err, postgres.ErrTrainerNotFound)
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PasskeyRepository stores WebAuthn credentials keyed by trainer name.
// It satisfies passkey.CredentialStore.
type PasskeyRepository struct {
	db *pgxpool.Pool
}

// NewPasskeyRepository creates a PasskeyRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPasskeyRepository(db *pgxpool.Pool) *PasskeyRepository {
	return &PasskeyRepository{db: db}
}

// Credentials returns every credential registered by trainer, oldest first.
// An unknown trainer has no credentials.
func (r *PasskeyRepository) Credentials(ctx context.Context, trainer string) ([]webauthn.Credential, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.credential
		FROM passkeys p JOIN trainers t ON t.id = p.trainer_id
		WHERE t.name = $1
		ORDER BY p.created_at, p.credential_id`,
		trainer,
	)
	if err != nil {
		return nil, fmt.Errorf("querying passkeys: %w", err)
	}
	defer rows.Close()

	var out []webauthn.Credential
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning passkey: %w", err)
		}
		var cred webauthn.Credential
		if err := json.Unmarshal(doc, &cred); err != nil {
			return nil, fmt.Errorf("decoding passkey: %w", err)
		}
		out = append(out, cred)
	}
	return out, rows.Err()
}

// PutCredential inserts cred for trainer, replacing a credential with the
// same ID.
//
// Postcondition: Returns ErrTrainerNotFound if no trainer has that name.
func (r *PasskeyRepository) PutCredential(ctx context.Context, trainer string, cred webauthn.Credential) error {
	doc, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding passkey: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO passkeys (trainer_id, credential_id, credential)
		SELECT id, $2, $3 FROM trainers WHERE name = $1
		ON CONFLICT (trainer_id, credential_id) DO UPDATE
		SET credential = EXCLUDED.credential, updated_at = NOW()`,
		trainer, cred.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("storing passkey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTrainerNotFound
	}
	return nil
}

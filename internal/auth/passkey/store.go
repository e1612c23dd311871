package passkey

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-webauthn/webauthn/webauthn"
)

// MemoryStore is a CredentialStore for standalone mode.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string][]webauthn.Credential
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string][]webauthn.Credential)}
}

// Credentials returns a copy of trainer's credentials.
func (m *MemoryStore) Credentials(_ context.Context, trainer string) ([]webauthn.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]webauthn.Credential(nil), m.creds[trainer]...), nil
}

// PutCredential inserts cred, replacing any credential with the same ID.
func (m *MemoryStore) PutCredential(_ context.Context, trainer string, cred webauthn.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.creds[trainer]
	for i := range list {
		if bytes.Equal(list[i].ID, cred.ID) {
			list[i] = cred
			return nil
		}
	}
	m.creds[trainer] = append(list, cred)
	return nil
}

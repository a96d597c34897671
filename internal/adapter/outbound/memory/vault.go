// Package memory provides in-memory implementations of outbound ports.
// Thread-safe. For testing: lets the session service be exercised without
// touching real storage.
package memory

import (
	"sync"

	"github.com/spss-platform/adminsync/internal/domain/session"
)

// Vault implements session.TokenVault with an in-memory string.
type Vault struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewVault creates an empty in-memory vault.
func NewVault() *Vault {
	return &Vault{}
}

// NewVaultWithToken creates a vault pre-seeded with a token, mimicking a
// previous run that persisted a credential.
func NewVaultWithToken(token string) *Vault {
	return &Vault{token: token, set: true}
}

// Load returns the stored token or session.ErrNoToken.
func (v *Vault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.set || v.token == "" {
		return "", session.ErrNoToken
	}
	return v.token, nil
}

// Store replaces the stored token.
func (v *Vault) Store(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = token
	v.set = true
	return nil
}

// Clear removes the stored token.
func (v *Vault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = ""
	v.set = false
	return nil
}

// Compile-time interface verification.
var _ session.TokenVault = (*Vault)(nil)

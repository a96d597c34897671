package session

import "errors"

// TokenVault persists the bearer token between runs.
// This interface is defined in the domain to avoid circular imports.
// Implementations: file-backed (prod), in-memory (test).
type TokenVault interface {
	// Load returns the persisted token.
	// Returns ErrNoToken when nothing is stored.
	Load() (string, error)

	// Store persists a token, replacing any previous one.
	Store(token string) error

	// Clear removes the persisted token. Clearing an empty vault is not
	// an error.
	Clear() error
}

// ErrNoToken is returned by Load when no token has been persisted.
var ErrNoToken = errors.New("no token stored")

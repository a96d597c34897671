// Package session owns the authentication credential and the identity it
// belongs to. Domain stores gate their fetches on this package's state and
// escalate credential rejection back into it.
package session

import (
	"sync"

	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Principal is the authenticated identity resolved for the current token.
type Principal = records.User

// State is the session lifecycle state.
//
//	Unresolved -> Resolving -> Authenticated | Anonymous
//	Authenticated -> Anonymous on logout or credential rejection
//	Anonymous -> Resolving on a login attempt
type State int

const (
	// StateUnresolved is the startup state: a persisted token may exist
	// but has not been validated yet.
	StateUnresolved State = iota

	// StateResolving means a principal fetch is in flight.
	StateResolving

	// StateAuthenticated means a principal is present for the token.
	StateAuthenticated

	// StateAnonymous means no token exists or the token was rejected.
	StateAnonymous
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// TokenCell is a concurrency-safe holder for the current bearer token.
// The session service writes it; the API client and the stores read it.
// It implements api.TokenSource.
type TokenCell struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current token, or "" when none exists.
func (c *TokenCell) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *TokenCell) set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

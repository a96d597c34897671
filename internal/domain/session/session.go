package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spss-platform/adminsync/internal/api"
)

// subscriberBuffer is the per-subscriber channel depth. Slow subscribers
// drop transitions rather than block the session service.
const subscriberBuffer = 16

// loginRequest is the body of POST /Auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service is the single source of truth for "is there a usable credential,
// and who does it belong to". All state transitions flow through it and are
// broadcast to subscribers so dependent stores can re-arm or reset.
type Service struct {
	client *api.Client
	vault  TokenVault
	tokens *TokenCell
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	principal *Principal
	lastErr   error
	subs      map[int]chan State
	nextSub   int
}

// NewService creates a session service. The TokenCell must be the same one
// the api.Client reads its bearer token from.
func NewService(client *api.Client, vault TokenVault, tokens *TokenCell, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		vault:  vault,
		tokens: tokens,
		logger: logger,
		state:  StateUnresolved,
		subs:   make(map[int]chan State),
	}
}

// Init loads the persisted token and, if one exists, resolves the principal
// against the backend. With no persisted token the session settles to
// Anonymous immediately.
func (s *Service) Init(ctx context.Context) error {
	token, err := s.vault.Load()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			s.logger.Debug("no persisted token, starting anonymous")
			s.transition(StateAnonymous, nil, nil)
			return nil
		}
		s.transition(StateAnonymous, nil, err)
		return fmt.Errorf("load persisted token: %w", err)
	}

	s.tokens.set(token)
	return s.ResolvePrincipal(ctx)
}

// Login authenticates with the backend and, on success, persists the token
// and resolves the principal. Credential rejection returns (false, nil);
// transport and server failures return (false, err). Login never panics or
// leaks a half-authenticated state: any failure lands in Anonymous.
func (s *Service) Login(ctx context.Context, email, password string) (bool, error) {
	s.transition(StateResolving, nil, nil)

	var resp api.Envelope[string]
	err := s.client.Do(ctx, http.MethodPost, "/Auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			// Rejected credentials are a normal outcome, not an error.
			s.logger.Info("login rejected", "status", apiErr.Status)
			s.transition(StateAnonymous, nil, nil)
			return false, nil
		}
		s.transition(StateAnonymous, nil, err)
		return false, fmt.Errorf("login request failed: %w", err)
	}

	if !resp.Success || resp.Data == "" {
		s.logger.Info("login rejected by server response")
		s.transition(StateAnonymous, nil, nil)
		return false, nil
	}

	if err := s.vault.Store(resp.Data); err != nil {
		// The token is usable this run even if persistence failed.
		s.logger.Warn("failed to persist token", "error", err)
	}
	s.tokens.set(resp.Data)

	if err := s.ResolvePrincipal(ctx); err != nil {
		return false, err
	}
	return s.State() == StateAuthenticated, nil
}

// ResolvePrincipal validates the current token against the who-am-I
// endpoint. A 401 means the token is invalid or expired and performs the
// same reset as Logout. Any other failure leaves the token in place with
// the principal unresolved: transient trouble must not strand the admin
// logged out.
func (s *Service) ResolvePrincipal(ctx context.Context) error {
	if s.tokens.Token() == "" {
		s.transition(StateAnonymous, nil, nil)
		return ErrNoToken
	}

	s.transition(StateResolving, nil, nil)

	var resp api.Envelope[Principal]
	err := s.client.Do(ctx, http.MethodGet, "/User/user-profile", nil, &resp)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.logger.Info("persisted token rejected, resetting session")
			s.reset(nil)
			return fmt.Errorf("token rejected: %w", err)
		}
		s.transition(StateUnresolved, nil, err)
		return fmt.Errorf("resolve principal: %w", err)
	}

	if !resp.Success {
		s.transition(StateUnresolved, nil, fmt.Errorf("profile response not successful"))
		return fmt.Errorf("resolve principal: server reported failure")
	}

	p := resp.Data
	s.logger.Info("session authenticated", "user", p.Email, "role", p.Role)
	s.transition(StateAuthenticated, &p, nil)
	return nil
}

// Logout clears the persisted and in-memory credential and broadcasts the
// reset. It is synchronous and requires no network call to succeed.
func (s *Service) Logout() {
	s.logger.Info("logout")
	s.reset(nil)
}

// Invalidate is the escalation path for a credential rejection reported by
// a domain store. It performs the same reset as Logout.
func (s *Service) Invalidate() {
	s.logger.Warn("credential rejected by backend, resetting session")
	s.reset(errors.New("session expired, please log in again"))
}

// Token returns the current bearer token, or "" when anonymous.
func (s *Service) Token() string { return s.tokens.Token() }

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns the resolved principal, or nil.
func (s *Service) Principal() *Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Err returns the last session-level error, or nil.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers for state transitions. The returned cancel function
// must be called to release the subscription. Transitions are delivered
// best-effort: a full channel drops rather than blocks.
func (s *Service) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, subscriberBuffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// reset clears all credential state and lands in Anonymous.
func (s *Service) reset(cause error) {
	if err := s.vault.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted token", "error", err)
	}
	s.tokens.set("")
	s.transition(StateAnonymous, nil, cause)
}

// transition updates state under lock and notifies subscribers.
// Re-entering the same state is still broadcast so edge-triggered watchers
// stay simple; watchers de-duplicate if they care.
func (s *Service) transition(next State, p *Principal, cause error) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.principal = p
	s.lastErr = cause
	// Sends happen under the lock so a racing cancel cannot close a
	// channel mid-broadcast. They never block: full channels drop.
	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
		}
	}
	s.mu.Unlock()

	if prev != next {
		s.logger.Debug("session state", "from", prev, "to", next)
	}
}

// Package collection implements the authenticated resource store shared by
// every domain: one server-backed collection, token-gated fetches,
// wholesale replace on read, targeted splice on write, and escalation of
// credential rejection back to the session.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/spss-platform/adminsync/internal/api"
)

// SessionControl is the slice of the session service a store depends on:
// reading the token to guard requests, and invalidating the session when
// the backend rejects it.
type SessionControl interface {
	Token() string
	Invalidate()
}

// Sentinel errors for store operations.
var (
	// ErrNotAuthenticated is returned when an operation is attempted
	// without a token. No network call is issued.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrClosed is returned after Close. Late responses arriving for a
	// closed store are discarded, never applied.
	ErrClosed = errors.New("store closed")
)

// Config parameterizes a Store for one domain.
type Config[T any] struct {
	// Name identifies the store in logs ("users", "payments", ...).
	Name string

	// ListPath is the collection endpoint, fetched with GET.
	ListPath string

	// Key extracts the identity key used for splicing mutations into the
	// collection.
	Key func(T) string

	// FilterList, when set, post-processes a fetched collection before it
	// replaces the current items (e.g. dropping empty orders).
	FilterList func([]T) []T
}

// Store keeps one server-backed collection consistent with local actions.
// All mutable state is owned by the store and guarded by its mutex; racing
// operations resolve last-write-wins, with wholesale replacement for
// fetches and targeted splices for mutations.
type Store[T any] struct {
	cfg     Config[T]
	client  *api.Client
	session SessionControl
	logger  *slog.Logger

	mu          sync.Mutex
	items       []T
	loading     bool
	errText     string
	fingerprint uint64
	closed      bool
}

// New creates a store for the given domain configuration.
func New[T any](cfg Config[T], client *api.Client, sess SessionControl, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		cfg:     cfg,
		client:  client,
		session: sess,
		logger:  logger.With("store", cfg.Name),
	}
}

// FetchAll replaces the collection wholesale with the server's response.
// On failure the previous items are kept (stale-but-available) and the
// store error is set; a 401 additionally resets the session.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}

	var fetched []T
	err := s.client.Do(ctx, http.MethodGet, s.cfg.ListPath, nil, &fetched)
	return s.finishFetch(fetched, err)
}

// FetchOne runs the given single-record fetch without touching the
// collection. Returns nil on any failure after recording the store error.
func (s *Store[T]) FetchOne(ctx context.Context, fetch func(context.Context) (*T, error)) *T {
	if err := s.begin(); err != nil {
		return nil
	}

	rec, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return nil
	}
	if err != nil {
		s.recordFailureLocked(err)
		return nil
	}
	s.errText = ""
	return rec
}

// Mutate guards on the token, runs op, and on success applies patch to the
// collection. A nil patch leaves the collection for the caller to refresh.
// On failure the collection is untouched and the error is surfaced; no
// retry is attempted.
func (s *Store[T]) Mutate(ctx context.Context, action string, op func(context.Context) error, patch func([]T) []T) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if s.session.Token() == "" {
		s.setError(ErrNotAuthenticated.Error())
		return ErrNotAuthenticated
	}

	err := op(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		s.recordFailureLocked(err)
		return fmt.Errorf("%s %s: %w", s.cfg.Name, action, err)
	}

	if patch != nil {
		s.items = patch(s.items)
	}
	s.errText = ""
	s.logger.Debug("mutation applied", "action", action, "count", len(s.items))
	return nil
}

// RemoveByKey returns a patch that splices out the record with the given
// identity key, leaving every other element untouched.
func (s *Store[T]) RemoveByKey(key string) func([]T) []T {
	return func(items []T) []T {
		out := items[:0:len(items)]
		for _, it := range items {
			if s.cfg.Key(it) != key {
				out = append(out, it)
			}
		}
		return out
	}
}

// ReplaceByKey returns a patch that replaces in place the record whose
// identity key matches the given one.
func (s *Store[T]) ReplaceByKey(rec T) func([]T) []T {
	key := s.cfg.Key(rec)
	return func(items []T) []T {
		for i := range items {
			if s.cfg.Key(items[i]) == key {
				items[i] = rec
				break
			}
		}
		return items
	}
}

// Items returns a snapshot copy of the collection in server order.
// Consumers needing a specific order sort at read time; splices do not
// guarantee position stability.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Find returns the record with the given identity key.
func (s *Store[T]) Find(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if s.cfg.Key(it) == key {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the collection size.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Loading reports whether a fetch is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the store-level error text, or "" when the last operation
// succeeded.
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// Fingerprint returns a hash of the current collection contents, used to
// detect whether a refetch actually changed anything.
func (s *Store[T]) Fingerprint() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// Reset clears the collection and error state. Called when the session
// transitions to anonymous.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.errText = ""
	s.loading = false
	s.fingerprint = 0
}

// Close marks the store disposed. In-flight results are discarded at the
// point of application, not at the point of issuing the request.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loading = false
}

// begin validates the store is open and a token exists, then marks the
// fetch in flight. Returns without any network call on guard failure.
func (s *Store[T]) begin() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.session.Token() == "" {
		s.errText = ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.loading = true
	s.mu.Unlock()
	return nil
}

func (s *Store[T]) finishFetch(fetched []T, err error) error {
	if err == nil && s.cfg.FilterList != nil {
		fetched = s.cfg.FilterList(fetched)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.closed {
		// Late result for a disposed store.
		return ErrClosed
	}
	if err != nil {
		s.recordFailureLocked(err)
		return fmt.Errorf("%s fetch: %w", s.cfg.Name, err)
	}

	prev := s.fingerprint
	s.items = fetched
	s.errText = ""
	s.fingerprint = fingerprintOf(fetched)
	if prev != 0 && prev != s.fingerprint {
		s.logger.Debug("collection changed on refetch", "count", len(fetched))
	}
	return nil
}

// recordFailureLocked classifies a failure: only a credential rejection
// escalates to a session reset, everything else stays store-local.
func (s *Store[T]) recordFailureLocked(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		s.errText = "session expired, please log in again"
		s.logger.Warn("unauthorized response, escalating to session reset")
		// Invalidate only broadcasts; the coordinator resets the stores
		// from its own goroutine, so holding our lock here is safe.
		s.session.Invalidate()
		return
	}
	s.errText = err.Error()
}

func (s *Store[T]) setError(text string) {
	s.mu.Lock()
	s.errText = text
	s.mu.Unlock()
}

func fingerprintOf[T any](items []T) uint64 {
	h := xxhash.New()
	enc := json.NewEncoder(h)
	for _, it := range items {
		_ = enc.Encode(it)
	}
	return h.Sum64()
}

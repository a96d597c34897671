package collection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spss-platform/adminsync/internal/api"
)

type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.token = ""
}

func (f *fakeSession) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T, handler http.Handler, sess *fakeSession) *Store[item] {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, sess)
	return New(Config[item]{
		Name:     "items",
		ListPath: "/items",
		Key:      func(it item) string { return it.ID },
	}, client, sess, nil)
}

func listHandler(body *string, hits *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Write([]byte(*body))
	})
}

func TestFetchAllReplacesWholesale(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	// A refetch discards everything local, including records the server
	// no longer returns.
	body = `[{"id":"3","name":"c"}]`
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].ID != "3" {
		t.Errorf("Items() = %+v, want only id 3", items)
	}
}

func TestFetchAllWithoutTokenIssuesNoRequest(t *testing.T) {
	hits := 0
	body := `[]`
	sess := &fakeSession{token: ""}
	s := newTestStore(t, listHandler(&body, &hits), sess)

	err := s.FetchAll(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("FetchAll() error = %v, want ErrNotAuthenticated", err)
	}
	if hits != 0 {
		t.Errorf("server hits = %d, want 0", hits)
	}
	if s.Err() == "" {
		t.Error("store error must be set")
	}
}

func TestFetchAllKeepsStaleItemsOnFailure(t *testing.T) {
	fail := false
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":"1","name":"a"}]`))
	})
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, mux, sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	fail = true
	if err := s.FetchAll(context.Background()); err == nil {
		t.Fatal("expected fetch failure")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after failure, want stale 1", s.Len())
	}
	if s.Err() == "" {
		t.Error("store error must be non-empty after failure")
	}
	if sess.invalidations() != 0 {
		t.Error("a 500 must not escalate to session reset")
	}
}

func TestFetchAllUnauthorizedEscalates(t *testing.T) {
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, mux, sess)

	if err := s.FetchAll(context.Background()); err == nil {
		t.Fatal("expected fetch failure")
	}
	if sess.invalidations() != 1 {
		t.Errorf("invalidations = %d, want 1", sess.invalidations())
	}
	if s.Err() == "" {
		t.Error("store error must explain the expired session")
	}
}

func TestFetchAllIdempotentFingerprint(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	first := s.Fingerprint()
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if got := s.Fingerprint(); got != first {
		t.Errorf("fingerprint changed across identical fetches: %d != %d", got, first)
	}

	body = `[{"id":"1","name":"a"}]`
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if got := s.Fingerprint(); got == first {
		t.Error("fingerprint must change when the collection changes")
	}
}

func TestFetchAllAppliesListFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"1","name":"keep"},{"id":"2","name":""}]`))
	}))
	t.Cleanup(srv.Close)

	sess := &fakeSession{token: "tok"}
	client := api.NewClient(srv.URL, sess)
	s := New(Config[item]{
		Name:     "items",
		ListPath: "/items",
		Key:      func(it item) string { return it.ID },
		FilterList: func(items []item) []item {
			out := items[:0:len(items)]
			for _, it := range items {
				if it.Name != "" {
					out = append(out, it)
				}
			}
			return out
		},
	}, client, sess, nil)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after filtering", s.Len())
	}
}

func TestMutateWithoutTokenIssuesNoRequest(t *testing.T) {
	sess := &fakeSession{token: ""}
	body := `[]`
	s := newTestStore(t, listHandler(&body, nil), sess)

	called := false
	err := s.Mutate(context.Background(), "delete", func(ctx context.Context) error {
		called = true
		return nil
	}, nil)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Mutate() error = %v, want ErrNotAuthenticated", err)
	}
	if called {
		t.Error("operation must not run without a token")
	}
}

func TestMutateRemoveByKeySplicesOnlyTarget(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"},{"id":"3","name":"c"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	err := s.Mutate(context.Background(), "delete", func(ctx context.Context) error {
		return nil
	}, s.RemoveByKey("2"))
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	items := s.Items()
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "3" {
		t.Errorf("Items() = %+v, want ids 1 and 3 in order", items)
	}
}

func TestMutateFailureLeavesCollectionUntouched(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	opErr := errors.New("server refused")
	err := s.Mutate(context.Background(), "delete", func(ctx context.Context) error {
		return opErr
	}, s.RemoveByKey("2"))
	if err == nil {
		t.Fatal("expected mutation failure")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2: failed mutation must not splice", s.Len())
	}
	if s.Err() == "" {
		t.Error("store error must be set")
	}
}

func TestMutateReplaceByKey(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	err := s.Mutate(context.Background(), "update", func(ctx context.Context) error {
		return nil
	}, s.ReplaceByKey(item{ID: "2", Name: "renamed"}))
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	items := s.Items()
	if items[0].Name != "a" {
		t.Error("untargeted record must not change")
	}
	if items[1].Name != "renamed" {
		t.Errorf("target record = %+v, want renamed", items[1])
	}
}

func TestFetchOneDoesNotTouchCollection(t *testing.T) {
	body := `[{"id":"1","name":"a"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	rec := s.FetchOne(context.Background(), func(ctx context.Context) (*item, error) {
		return &item{ID: "99", Name: "detail"}, nil
	})
	if rec == nil || rec.ID != "99" {
		t.Fatalf("FetchOne() = %+v, want id 99", rec)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1: detail fetch must not modify the collection", s.Len())
	}
}

func TestFetchOneFailureRecordsError(t *testing.T) {
	body := `[]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	rec := s.FetchOne(context.Background(), func(ctx context.Context) (*item, error) {
		return nil, errors.New("lookup failed")
	})
	if rec != nil {
		t.Fatalf("FetchOne() = %+v, want nil", rec)
	}
	if s.Err() == "" {
		t.Error("store error must be set after a failed detail fetch")
	}
}

func TestResetClearsState(t *testing.T) {
	body := `[{"id":"1","name":"a"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	s.Reset()

	if s.Len() != 0 || s.Err() != "" || s.Fingerprint() != 0 {
		t.Errorf("Reset() left state behind: len=%d err=%q fp=%d", s.Len(), s.Err(), s.Fingerprint())
	}
}

func TestClosedStoreRefusesOperations(t *testing.T) {
	hits := 0
	body := `[]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, &hits), sess)

	s.Close()

	if err := s.FetchAll(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("FetchAll() after Close = %v, want ErrClosed", err)
	}
	err := s.Mutate(context.Background(), "delete", func(ctx context.Context) error { return nil }, nil)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Mutate() after Close = %v, want ErrClosed", err)
	}
	if hits != 0 {
		t.Errorf("server hits = %d, want 0", hits)
	}
}

func TestFindAndLen(t *testing.T) {
	body := `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`
	sess := &fakeSession{token: "tok"}
	s := newTestStore(t, listHandler(&body, nil), sess)

	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if it, ok := s.Find("2"); !ok || it.Name != "b" {
		t.Errorf("Find(2) = (%+v, %v), want b", it, ok)
	}
	if _, ok := s.Find("nope"); ok {
		t.Error("Find(nope) = true, want false")
	}
}

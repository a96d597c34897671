package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Visits holds the visit-log aggregates backing the overview charts. It is
// not a record collection: three independent aggregate endpoints are
// fetched together and stored side by side.
type Visits struct {
	client  *api.Client
	session collection.SessionControl
	logger  *slog.Logger

	mu      sync.Mutex
	today   *records.TodayVisits
	history []records.DailyVisit
	monthly *records.MonthlyRegistrations
	loading bool
	errText string
	closed  bool
}

// NewVisits creates the visit-log store.
func NewVisits(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Visits {
	if logger == nil {
		logger = slog.Default()
	}
	return &Visits{
		client:  client,
		session: sess,
		logger:  logger.With("store", "visits"),
	}
}

// FetchAll loads the three aggregates concurrently. Any failure surfaces
// as the store error; successfully fetched aggregates are still applied.
// History is sorted by date ascending, the order the charts consume.
func (v *Visits) FetchAll(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return collection.ErrClosed
	}
	if v.session.Token() == "" {
		v.errText = collection.ErrNotAuthenticated.Error()
		v.mu.Unlock()
		return collection.ErrNotAuthenticated
	}
	v.loading = true
	v.mu.Unlock()

	var (
		today   records.TodayVisits
		history records.VisitHistory
		monthly records.MonthlyRegistrations
	)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = v.client.Do(ctx, http.MethodGet, "/Log/today", nil, &today)
	}()
	go func() {
		defer wg.Done()
		errs[1] = v.client.Do(ctx, http.MethodGet, "/Log/all", nil, &history)
	}()
	go func() {
		defer wg.Done()
		errs[2] = v.client.Do(ctx, http.MethodGet, "/Log/get-newUser-this-month", nil, &monthly)
	}()
	wg.Wait()

	days := history.VisitDays
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if v.closed {
		return collection.ErrClosed
	}

	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, api.ErrUnauthorized) {
			v.errText = "session expired, please log in again"
			v.session.Invalidate()
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if errs[0] == nil {
		v.today = &today
	}
	if errs[1] == nil {
		v.history = days
	}
	if errs[2] == nil {
		v.monthly = &monthly
	}

	if firstErr != nil {
		v.errText = firstErr.Error()
		return firstErr
	}
	v.errText = ""
	return nil
}

// Today returns today's visit aggregate, or nil before the first fetch.
func (v *Visits) Today() *records.TodayVisits {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.today
}

// History returns the per-day visit counts, oldest first.
func (v *Visits) History() []records.DailyVisit {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]records.DailyVisit, len(v.history))
	copy(out, v.history)
	return out
}

// Monthly returns this month's registration aggregate, or nil.
func (v *Visits) Monthly() *records.MonthlyRegistrations {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.monthly
}

// Loading reports whether a fetch is in flight.
func (v *Visits) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Err returns the store-level error text.
func (v *Visits) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errText
}

// Reset clears all aggregates on logout.
func (v *Visits) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.today = nil
	v.history = nil
	v.monthly = nil
	v.errText = ""
	v.loading = false
}

// Close marks the store disposed; late results are discarded.
func (v *Visits) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.loading = false
}

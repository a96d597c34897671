package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/session"
)

func TestLiveStatusBeforeLoginIssuesNoRequest(t *testing.T) {
	b := newBackend()
	c := newConsole(t, b)

	_, err := c.Payments.LiveStatus(context.Background(), 1001)
	if !errors.Is(err, collection.ErrNotAuthenticated) {
		t.Fatalf("LiveStatus() error = %v, want ErrNotAuthenticated", err)
	}
	if got := b.hitCount("/Payment/check-payment-status"); got != 0 {
		t.Errorf("status endpoint hits = %d, want 0", got)
	}
}

func TestLiveStatusUnauthorizedResetsSession(t *testing.T) {
	b := newBackend()
	c := newConsole(t, b)
	login(t, c)
	waitFor(t, "payments fetched", func() bool { return c.Payments.Len() == 2 })

	b.setExpired(true)
	if _, err := c.Payments.LiveStatus(context.Background(), 1001); err == nil {
		t.Fatal("expected LiveStatus to fail with 401")
	}

	waitFor(t, "session reset", func() bool {
		return c.Session.State() == session.StateAnonymous &&
			c.Payments.Len() == 0 && c.Users.Len() == 0
	})

	// Subsequent calls refuse without dialing.
	hits := b.hitCount("/Payment/check-payment-status")
	if _, err := c.Payments.LiveStatus(context.Background(), 1001); !errors.Is(err, collection.ErrNotAuthenticated) {
		t.Errorf("LiveStatus() after reset error = %v, want ErrNotAuthenticated", err)
	}
	if got := b.hitCount("/Payment/check-payment-status"); got != hits {
		t.Errorf("status endpoint dialed after reset: %d -> %d", hits, got)
	}
}

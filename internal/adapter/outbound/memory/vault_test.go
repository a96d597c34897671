package memory

import (
	"errors"
	"testing"

	"github.com/spss-platform/adminsync/internal/domain/session"
)

func TestVaultRoundTrip(t *testing.T) {
	v := NewVault()

	if _, err := v.Load(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Load() on empty vault error = %v, want ErrNoToken", err)
	}

	if err := v.Store("tok"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err := v.Load()
	if err != nil || got != "tok" {
		t.Errorf("Load() = (%q, %v), want (tok, nil)", got, err)
	}

	if err := v.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := v.Load(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Load() after Clear error = %v, want ErrNoToken", err)
	}
}

func TestVaultPreSeeded(t *testing.T) {
	v := NewVaultWithToken("persisted")
	got, err := v.Load()
	if err != nil || got != "persisted" {
		t.Errorf("Load() = (%q, %v), want (persisted, nil)", got, err)
	}
}

package tokenfile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spss-platform/adminsync/internal/domain/session"
)

func newVault(t *testing.T) *Vault {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "sub", "token"), nil)
}

func TestLoadMissingFile(t *testing.T) {
	v := newVault(t)
	if _, err := v.Load(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Load() error = %v, want ErrNoToken", err)
	}
}

func TestStoreThenLoad(t *testing.T) {
	v := newVault(t)
	if err := v.Store("jwt-abc"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err := v.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "jwt-abc" {
		t.Errorf("Load() = %q, want jwt-abc", got)
	}
}

func TestStoreReplacesPrevious(t *testing.T) {
	v := newVault(t)
	if err := v.Store("old"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := v.Store("new"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err := v.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "new" {
		t.Errorf("Load() = %q, want new", got)
	}
}

func TestStoreSetsTightPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no Unix permission bits on Windows")
	}
	v := newVault(t)
	if err := v.Store("secret"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	info, err := os.Stat(v.path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("token file mode = %04o, want 0600", mode)
	}
}

func TestLoadTrimsWhitespace(t *testing.T) {
	v := newVault(t)
	if err := os.MkdirAll(filepath.Dir(v.path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(v.path, []byte("  jwt-abc\n\n"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := v.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "jwt-abc" {
		t.Errorf("Load() = %q, want jwt-abc", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	v := newVault(t)
	if err := os.MkdirAll(filepath.Dir(v.path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(v.path, []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Load(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Load() error = %v, want ErrNoToken", err)
	}
}

func TestClear(t *testing.T) {
	v := newVault(t)
	if err := v.Store("jwt"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := v.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := v.Load(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Load() after Clear error = %v, want ErrNoToken", err)
	}
	// Clearing again is not an error.
	if err := v.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

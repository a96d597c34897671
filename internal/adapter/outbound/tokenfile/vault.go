// Package tokenfile persists the bearer token in a single file, the CLI
// analog of the dashboard's fixed localStorage slot.
package tokenfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spss-platform/adminsync/internal/domain/session"
)

// Vault stores the token at a fixed path with 0600 permissions.
// Writes are atomic (write-tmp-then-rename) so a crash mid-write never
// leaves a truncated credential behind.
type Vault struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Vault for the given file path.
func New(path string, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{path: path, logger: logger}
}

// Load reads the persisted token.
// Returns session.ErrNoToken when the file does not exist or is empty.
func (v *Vault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", session.ErrNoToken
		}
		return "", fmt.Errorf("read token file: %w", err)
	}

	// Warn if the credential file is readable by group/other.
	// Skip on Windows where Unix permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(v.path); statErr == nil {
			if mode := info.Mode().Perm(); mode&0077 != 0 {
				v.logger.Warn("token file has too-open permissions, should be 0600",
					"path", v.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", session.ErrNoToken
	}
	return token, nil
}

// Store persists the token atomically with 0600 permissions.
func (v *Vault) Store(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	dir := filepath.Dir(v.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp := v.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open temp token file: %w", err)
	}
	if _, err := f.WriteString(token + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write token: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync token file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close token file: %w", err)
	}

	if err := os.Rename(tmp, v.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

// Clear removes the persisted token. A missing file is not an error.
func (v *Vault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Compile-time interface verification.
var _ session.TokenVault = (*Vault)(nil)

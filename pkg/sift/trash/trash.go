// Package trash removes files either permanently or through the desktop
// trash, where one is available.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout bounds a single trash helper invocation.
const commandTimeout = 30 * time.Second

// Method reports how a file was removed.
type Method string

// Removal methods.
const (
	MethodTrash   Method = "trash"
	MethodDeleted Method = "deleted"
)

// Remover removes a single file.
type Remover interface {
	Remove(ctx context.Context, path string) (Method, error)
}

// Permanent unlinks files. Directories are refused.
type Permanent struct{}

var _ Remover = Permanent{}

// Remove deletes path.
func (Permanent) Remove(_ context.Context, path string) (Method, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", fmt.Errorf("cannot delete %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot delete %q: is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return MethodDeleted, nil
}

// System moves files to the platform trash, falling back to permanent
// deletion when no trash helper succeeds.
type System struct {
	// helpers overrides the platform helper list; used by tests.
	helpers []helper
}

var _ Remover = (*System)(nil)

// helper is a trash command; args receives the absolute path.
type helper struct {
	name string
	args func(path string) []string
}

func platformHelpers() []helper {
	switch runtime.GOOS {
	case "darwin":
		return []helper{{
			name: "osascript",
			args: func(p string) []string {
				return []string{"-e", fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, p)}
			},
		}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []helper{
			{name: "gio", args: func(p string) []string { return []string{"trash", p} }},
			{name: "trash-put", args: func(p string) []string { return []string{p} }},
			{name: "kioclient5", args: func(p string) []string { return []string{"move", p, "trash:/"} }},
		}
	default:
		return nil
	}
}

// Remove trashes path, or deletes it when trashing is unavailable.
func (s *System) Remove(ctx context.Context, path string) (Method, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("cannot trash %q: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	helpers := s.helpers
	if helpers == nil {
		helpers = platformHelpers()
	}

	for _, h := range helpers {
		bin, err := exec.LookPath(h.name)
		if err != nil {
			continue
		}
		runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		err = exec.CommandContext(runCtx, bin, h.args(abs)...).Run()
		cancel()
		if err == nil {
			if _, statErr := os.Lstat(abs); os.IsNotExist(statErr) {
				return MethodTrash, nil
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return Permanent{}.Remove(ctx, abs)
}

// New returns the System remover when useTrash is set, otherwise Permanent.
func New(useTrash bool) Remover {
	if useTrash {
		return &System{}
	}
	return Permanent{}
}

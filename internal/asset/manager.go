// Package asset manages uploaded image files on local disk.
//
// An upload is written under <root>/staging and renamed into <root>/images
// once complete, before any database write references it. <root>/images is
// served publicly under /uploads/images, so a stored place always names a file
// that exists. Files whose database write fails are discarded.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/placeshare/placeshare/internal/metrics"
)

const (
	stagingDir = "staging"
	imagesDir  = "images"

	// PublicPrefix is the path prefix of committed assets. It is also the
	// URL path they are served from.
	PublicPrefix = "uploads/images/"
)

// Asset errors.
var (
	ErrInvalidRef       = errors.New("invalid asset reference")
	ErrInvalidExtension = errors.New("invalid file extension")
)

// StagedRef identifies an uploaded file not yet referenced by a stored place.
type StagedRef struct {
	Name string
}

// IsZero reports whether the reference is empty.
func (r StagedRef) IsZero() bool {
	return r.Name == ""
}

// String returns the reference form accepted by Manager.Discard.
func (r StagedRef) String() string {
	if r.Name == "" {
		return ""
	}
	return PublicPrefix + r.Name
}

// Manager stages, commits and discards image files under a root directory.
type Manager struct {
	root    string
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewManager creates a Manager rooted at root, creating its directories.
func NewManager(root string, logger *slog.Logger, recorder metrics.Recorder) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	for _, dir := range []string{stagingDir, imagesDir} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Manager{
		root:    abs,
		logger:  logger.With("component", "asset"),
		metrics: recorder,
	}, nil
}

// ImagesDir returns the directory holding committed assets.
func (m *Manager) ImagesDir() string {
	return filepath.Join(m.root, imagesDir)
}

// Stage writes r to a new file with the given extension. The file only
// appears in the images directory once fully written.
func (m *Manager) Stage(ctx context.Context, r io.Reader, ext string) (StagedRef, error) {
	if err := ctx.Err(); err != nil {
		return StagedRef{}, err
	}
	if !validExtension(ext) {
		return StagedRef{}, fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}

	ref := StagedRef{Name: uuid.NewString() + strings.ToLower(ext)}
	tmp := filepath.Join(m.root, stagingDir, ref.Name)

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StagedRef{}, fmt.Errorf("create staged file: %w", err)
	}
	_, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp)
		return StagedRef{}, fmt.Errorf("write staged file: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(m.root, imagesDir, ref.Name)); err != nil {
		_ = os.Remove(tmp)
		return StagedRef{}, fmt.Errorf("publish staged file: %w", err)
	}

	return ref, nil
}

// CommittedPath returns the permanent path ref will have once committed.
func (m *Manager) CommittedPath(ref StagedRef) string {
	return PublicPrefix + ref.Name
}

// Commit confirms a staged file is still in place and returns its permanent
// path. The file does not move.
func (m *Manager) Commit(ctx context.Context, ref StagedRef) (string, error) {
	if !validName(ref.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref.Name)
	}

	info, err := os.Lstat(filepath.Join(m.root, imagesDir, ref.Name))
	if err != nil {
		return "", fmt.Errorf("commit asset: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("commit asset %s: %w", ref.Name, ErrInvalidRef)
	}

	m.metrics.IncAssetCommitted()
	m.logger.DebugContext(ctx, "asset committed", "name", ref.Name)
	return m.CommittedPath(ref), nil
}

// Discard deletes an asset by its public path. It never fails the caller:
// errors are logged and counted. A file that is already gone is not an error.
// References outside the images directory are ignored.
func (m *Manager) Discard(ctx context.Context, ref string) {
	path, ok := m.resolve(ref)
	if !ok {
		m.logger.WarnContext(ctx, "refusing to discard unmanaged asset", "ref", ref)
		return
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.DebugContext(ctx, "asset already removed", "ref", ref)
			return
		}
		m.metrics.IncAssetCleanupFailed("discard")
		m.logger.ErrorContext(ctx, "failed to discard asset", "ref", ref, "error", err)
		return
	}
	m.logger.DebugContext(ctx, "asset discarded", "ref", ref)
}

// resolve maps a reference to a file path inside the root.
func (m *Manager) resolve(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, PublicPrefix)
	if !ok || !validName(name) {
		return "", false
	}
	return filepath.Join(m.root, imagesDir, name), true
}

// validName accepts a single path element.
func validName(name string) bool {
	return name != "" &&
		name != "." &&
		name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}

func validExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 8 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

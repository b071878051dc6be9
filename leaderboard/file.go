package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// File keeps the leaderboard in a JSON file. It's always available as long as the file
// can be written.
type File struct {
	path    string
	logger  *slog.Logger
	mu      sync.Mutex
	entries []Entry
}

func NewFile(path string, l *slog.Logger) *File {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &File{path: path, logger: l}
}

func (f *File) Name() string { return fmt.Sprintf("JSON (%s)", f.path) }

// Init loads the file, creating an empty one when it doesn't exist. A corrupted file
// is replaced.
func (f *File) Init(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	switch {
	case err == nil:
		var entries []Entry
		err := json.Unmarshal(b, &entries)
		if err == nil {
			f.entries = Rank(entries)
			f.logger.Debug("leaderboard loaded", slog.String("path", f.path), slog.Int("entries", len(f.entries)))
			return nil
		}
		f.logger.Warn("corrupted leaderboard file, starting over",
			slog.String("path", f.path),
			slog.String("error", err.Error()))
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", f.path, err)
	}

	f.entries = nil
	if err := f.write(); err != nil {
		return err
	}
	f.logger.Info("leaderboard file created", slog.String("path", f.path))
	return nil
}

func (f *File) Save(_ context.Context, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.entries
	f.entries = insert(f.entries, e)
	if err := f.write(); err != nil {
		f.entries = prev
		return err
	}
	return nil
}

func (f *File) Top(context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Rank(f.entries), nil
}

// write replaces the file atomically.
func (f *File) write() error {
	entries := f.entries
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating leaderboard dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

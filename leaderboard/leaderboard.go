package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoProvider  = errors.New("no leaderboard provider available")
	ErrUnavailable = errors.New("provider not available")
)

// Provider stores the leaderboard entries.
type Provider interface {
	// Name describes the provider for logs and screens. It must not leak credentials.
	Name() string
	// Init connects to the storage. A provider that fails to init is not used.
	Init(ctx context.Context) error
	// Save adds the entry and keeps the best MaxEntries.
	Save(ctx context.Context, e Entry) error
	// Top returns the entries sorted by Compare.
	Top(ctx context.Context) ([]Entry, error)
}

type Leaderboard struct {
	providers []Provider
	active    Provider
	logger    *slog.Logger
}

// New returns a leaderboard that will use the first provider, in order, that inits.
func New(l *slog.Logger, providers ...Provider) *Leaderboard {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Leaderboard{providers: providers, logger: l}
}

// Init probes every provider at once and picks the first available one in order.
func (lb *Leaderboard) Init(ctx context.Context) error {
	errs := make([]error, len(lb.providers))
	var g errgroup.Group
	for i, p := range lb.providers {
		g.Go(func() error {
			errs[i] = p.Init(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for i, p := range lb.providers {
		if errs[i] != nil {
			lb.logger.Warn("leaderboard provider not available",
				slog.String("provider", p.Name()),
				slog.String("error", errs[i].Error()))
			continue
		}
		if lb.active == nil {
			lb.active = p
			lb.logger.Info("leaderboard initialized", slog.String("provider", p.Name()))
		}
	}
	if lb.active == nil {
		lb.logger.Error("no leaderboard provider available")
		return ErrNoProvider
	}
	return nil
}

// ProviderName is the name of the active provider, "none" if there isn't one.
func (lb *Leaderboard) ProviderName() string {
	if lb.active == nil {
		return "none"
	}
	return lb.active.Name()
}

// Qualifies reports whether score makes it into the leaderboard. It's false when the
// entries can't be read.
func (lb *Leaderboard) Qualifies(ctx context.Context, score uint64) bool {
	entries, err := lb.Top(ctx)
	if err != nil {
		return false
	}
	return qualifies(entries, score)
}

func (lb *Leaderboard) Save(ctx context.Context, e Entry) error {
	if lb.active == nil {
		return ErrNoProvider
	}
	if err := lb.active.Save(ctx, e); err != nil {
		lb.logger.Error("failed to save score",
			slog.String("provider", lb.active.Name()),
			slog.String("error", err.Error()))
		return fmt.Errorf("saving to %s: %w", lb.active.Name(), err)
	}
	lb.logger.Info("score saved",
		slog.String("nickname", e.Nickname),
		slog.Uint64("score", e.Score),
		slog.String("provider", lb.active.Name()))
	return nil
}

func (lb *Leaderboard) Top(ctx context.Context) ([]Entry, error) {
	if lb.active == nil {
		return nil, ErrNoProvider
	}
	entries, err := lb.active.Top(ctx)
	if err != nil {
		lb.logger.Error("failed to read scores",
			slog.String("provider", lb.active.Name()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("reading from %s: %w", lb.active.Name(), err)
	}
	return entries, nil
}

// Close releases every provider that holds resources.
func (lb *Leaderboard) Close() error {
	var errs []error
	for _, p := range lb.providers {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

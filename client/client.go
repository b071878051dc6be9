// Package client runs the terminal front end: it reads the keyboard, drives the screen
// state machine and draws the game snapshots.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/eiannone/keyboard"

	"termtris/leaderboard"
	"termtris/session"
	"termtris/tetris"
)

// softDropRelease is how long after the last down key event the soft drop is
// released. Terminals don't report key releases so holding the key is inferred from
// its auto repeat.
const softDropRelease = 150 * time.Millisecond

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Snapshot) string
	message(lines ...string)
	clear()
}

// scoreboard is the part of the leaderboard the screens use.
type scoreboard interface {
	ProviderName() string
	Qualifies(ctx context.Context, score uint64) bool
	Save(ctx context.Context, e leaderboard.Entry) error
	Top(ctx context.Context) ([]leaderboard.Entry, error)
}

// screen is a session handler that also handles the keys pressed while it's shown.
type screen interface {
	session.Handler
	key(keyboard.KeyEvent)
}

type Client struct {
	manager *session.Manager
	screens map[session.State]screen
	play    *playScreen
	render  renderer
	board   scoreboard
	newGame func() tetrisGame
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	now     func() time.Time
	// savedID is the leaderboard ID of the last game's score, empty if it wasn't saved.
	savedID string

	releaseAfter time.Duration
	quit         bool
}

type Options struct {
	Name    string
	NoGhost bool
	// TetrisOptions returns the options of every new game. Nil uses the defaults.
	TetrisOptions func() *tetris.Options
	// Leaderboard keeps the best scores. Nil disables saving them.
	Leaderboard *leaderboard.Leaderboard
}

// New opens the keyboard and returns a client that draws on stdout.
func New(l *slog.Logger, o *Options) (*Client, error) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r, err := newRender(os.Stdout, l, o.NoGhost, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	c := newClient(l, o, r, kb)
	if o.Leaderboard != nil {
		c.board = o.Leaderboard
	}
	return c, nil
}

func newClient(l *slog.Logger, o *Options, r renderer, kb <-chan keyboard.KeyEvent) *Client {
	c := &Client{
		manager:      session.NewManager(l),
		render:       r,
		options:      o,
		logger:       l,
		kbCh:         kb,
		now:          time.Now,
		releaseAfter: softDropRelease,
	}
	c.newGame = func() tetrisGame {
		var opts *tetris.Options
		if o.TetrisOptions != nil {
			opts = o.TetrisOptions()
		}
		return tetris.NewGame(opts)
	}
	c.play = &playScreen{c: c}
	c.screens = map[session.State]screen{
		session.Menu:        &menuScreen{c: c},
		session.Playing:     c.play,
		session.GameOver:    &gameOverScreen{c: c},
		session.Leaderboard: &scoresScreen{c: c},
	}
	for s, h := range c.screens {
		c.manager.Register(s, h)
	}
	return c
}

// Start shows the menu and handles keys and game updates until the player quits.
func (c *Client) Start() {
	defer c.play.stop()
	c.render.clear()
	c.manager.SwitchTo(session.Menu)
	for !c.quit {
		select {
		case event, ok := <-c.kbCh:
			if !ok {
				c.logger.Error("Keyboard events channel closed unexpectedly")
				return
			}
			if event.Err != nil {
				c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
				return
			}
			if event.Key == keyboard.KeyCtrlC {
				return
			}
			if s, ok := c.screens[c.manager.Current()]; ok {
				s.key(event)
			}
		case u, ok := <-c.play.updates():
			if !ok {
				c.logger.Debug("game updates channel closed")
				c.play.game = nil
				continue
			}
			c.play.update(u)
		case <-c.play.released():
			c.play.stopSoftDrop()
		}
	}
}

// Close releases the keyboard.
func (c *Client) Close() {
	keyboard.Close() //nolint:errcheck
}

package tetris

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Action string

const (
	MoveLeft     Action = "left"         // Moves the Tetromino one step to the left.
	MoveRight    Action = "right"        // Moves the Tetromino one step to the right.
	SoftDrop     Action = "softdrop"     // Starts the soft drop.
	SoftDropStop Action = "softdropstop" // Stops the soft drop.
	DropDown     Action = "drop"         // Drops the Tetromino down the stack.
	RotateRight  Action = "rotatecw"     // Rotates the Tetromino clockwise.
	RotateLeft   Action = "rotateccw"    // Rotates the Tetromino counter-clockwise.
	HoldPiece    Action = "hold"         // Holds the Tetromino for later.
	Pause        Action = "pause"        // Pauses or resumes the game.
)

// Do applies a player action. Unknown actions are ignored.
func (t *Tetris) Do(a Action) {
	switch a {
	case MoveLeft:
		t.MoveLeft()
	case MoveRight:
		t.MoveRight()
	case SoftDrop:
		t.StartSoftDrop()
	case SoftDropStop:
		t.StopSoftDrop()
	case DropDown:
		t.HardDrop()
	case RotateRight:
		t.RotateClockwise()
	case RotateLeft:
		t.RotateCounterClockwise()
	case HoldPiece:
		t.Hold()
	case Pause:
		t.TogglePause()
	}
}

// frameRate is the target update rate of the game loop.
const frameRate = time.Second / 60

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game runs a Tetris session in its own goroutine. Ticks and actions are applied in
// order and every change is published as a Snapshot.
type Game struct {
	tetris   *Tetris
	ticker   Ticker
	logger   *slog.Logger
	actionCh chan Action
	updateCh chan *Snapshot
	doneCh   chan struct{}
	exitCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

func NewGame(o *Options) *Game {
	var l *slog.Logger
	if o != nil {
		l = o.Logger
	}
	return NewConfigurableGame(NewTetris(o), newWrappedTicker(time.Hour), l)
}

func NewConfigurableGame(t *Tetris, ticker Ticker, l *slog.Logger) *Game {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Game{
		tetris:   t,
		ticker:   ticker,
		logger:   l,
		actionCh: make(chan Action),
		updateCh: make(chan *Snapshot),
		doneCh:   make(chan struct{}),
		exitCh:   make(chan struct{}),
	}
}

// Start launches the game loop. The first snapshot is published straight away.
func (g *Game) Start() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	go g.listen()
}

// Stop ends the game loop and waits for it to return. It's safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.doneCh) })
	if g.started.Load() {
		<-g.exitCh
	}
}

// Action sends a player action to the game loop and blocks until the loop takes it.
// Call Start first. It's dropped once the game is stopped or the loop is over.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.doneCh:
	case <-g.exitCh:
	}
}

// GetUpdate returns the snapshots channel. It's closed when the loop returns, right
// after the game over snapshot.
func (g *Game) GetUpdate() <-chan *Snapshot { return g.updateCh }

func (g *Game) listen() {
	defer close(g.exitCh)
	defer close(g.updateCh)
	g.ticker.Reset(frameRate)
	defer g.ticker.Stop()

	// the first tick only sets the reference time for the next delta.
	var last time.Time
	version := g.tetris.version
	if !g.publish() {
		return
	}
	for {
		select {
		case now := <-g.ticker.C():
			if !last.IsZero() {
				g.tetris.Update(now.Sub(last))
			}
			last = now
		case a := <-g.actionCh:
			g.tetris.Do(a)
		case <-g.doneCh:
			return
		}
		if g.tetris.version == version {
			continue
		}
		version = g.tetris.version
		if !g.publish() {
			return
		}
		if g.tetris.IsGameOver() {
			g.logger.Info("game over", slog.Int("score", g.tetris.Score()), slog.Int("level", g.tetris.Level()))
			return
		}
	}
}

func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.tetris.Snapshot():
		return true
	case <-g.doneCh:
		return false
	}
}

// Package tetris contains the logic of the game
// based on https://tetris.wiki/Tetris_Guideline
package tetris

import (
	"io"
	"log/slog"
	"time"
)

// soft drop only kicks in after the key has been held for 8 frames,
// so tapping down doesn't throw the piece to the floor.
const softDropDelay = 133 * time.Millisecond

// base points for 0 to 4 lines cleared at once, multiplied by the level.
var linePoints = [...]int{0, 100, 300, 500, 800}

// wall kick offsets tried in order after a rotation collides.
var wallKicks = [...][2]int{{-1, 0}, {1, 0}, {-2, 0}, {2, 0}, {0, -1}}

type Options struct {
	Width, Height int
	Randomizer    Randomizer
	Speed         Speed
	Logger        *slog.Logger
}

// Tetris is a single play session. It is not safe for concurrent use: Game owns it
// from a single goroutine and publishes copies through Snapshot.
type Tetris struct {
	board      *Board
	randomizer Randomizer
	speed      Speed
	logger     *slog.Logger

	current, next *Tetromino
	held          Shape
	canHold       bool

	score, level, lines int

	fallTimer, fallInterval time.Duration

	softDropPressed bool
	softDropActive  bool
	softDropHeld    time.Duration

	paused, gameOver bool

	// version is bumped on every change a renderer could notice.
	version uint64
}

// NewTetris returns a session ready to play. Nil options default to a 10x20 board,
// the 7-bag randomizer and the guideline speed curve.
func NewTetris(o *Options) *Tetris {
	if o == nil {
		o = &Options{}
	}
	t := &Tetris{
		board:      NewBoard(o.Width, o.Height),
		randomizer: o.Randomizer,
		speed:      o.Speed,
		logger:     o.Logger,
	}
	if t.randomizer == nil {
		t.randomizer = NewBag(nil)
	}
	if t.speed == nil {
		t.speed = Modern{}
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t.Start()
	return t
}

// Start resets the session and spawns the first two tetrominoes.
func (t *Tetris) Start() {
	t.board.Clear()
	t.randomizer.Reset()
	t.score, t.level, t.lines = 0, 1, 0
	t.fallTimer = 0
	t.fallInterval = t.speed.Fall(t.level)
	t.held = ""
	t.canHold = true
	t.resetSoftDrop()
	t.paused, t.gameOver = false, false
	t.current = t.spawn(t.randomizer.Next())
	t.next = t.spawn(t.randomizer.Next())
	t.changed()
	t.logger.Debug("new game", slog.String("current", string(t.current.Shape)), slog.String("next", string(t.next.Shape)))
}

// Update advances the session by dt. The tetromino falls one row every time the fall
// timer reaches the current interval and locks when it can't fall any further.
func (t *Tetris) Update(dt time.Duration) {
	if t.gameOver || t.paused || dt <= 0 {
		return
	}
	if t.softDropPressed && !t.softDropActive {
		t.softDropHeld += dt
		if t.softDropHeld >= softDropDelay {
			t.softDropActive = true
			t.changed()
		}
	}

	t.fallTimer += dt
	interval := t.fallInterval
	if t.softDropActive {
		interval = t.speed.SoftDrop(t.level)
	}
	if t.fallTimer < interval {
		return
	}
	// a row that gravity alone wouldn't have taken yet is worth a point.
	forced := t.softDropActive && t.fallTimer < t.fallInterval
	t.fallTimer = 0
	if t.tryMove(0, 1) {
		if forced {
			t.score++
		}
		return
	}
	t.lock()
}

func (t *Tetris) MoveLeft()  { t.tryMove(-1, 0) }
func (t *Tetris) MoveRight() { t.tryMove(1, 0) }

// StartSoftDrop registers the down key as pressed. Key repeats don't restart the
// activation delay.
func (t *Tetris) StartSoftDrop() {
	if !t.playable() || t.softDropPressed {
		return
	}
	t.softDropPressed = true
	t.softDropHeld = 0
}

// StopSoftDrop goes back to normal gravity without touching the fall timer.
func (t *Tetris) StopSoftDrop() {
	if t.softDropActive {
		t.changed()
	}
	t.resetSoftDrop()
}

func (t *Tetris) resetSoftDrop() {
	t.softDropPressed, t.softDropActive = false, false
	t.softDropHeld = 0
}

// HardDrop drops the tetromino to the bottom of the stack and locks it. Every row
// dropped is worth 2 points.
func (t *Tetris) HardDrop() {
	if !t.playable() {
		return
	}
	var rows int
	for t.tryMove(0, 1) {
		rows++
	}
	t.score += 2 * rows
	t.lock()
}

func (t *Tetris) RotateClockwise()        { t.rotate((*Tetromino).RotateCW) }
func (t *Tetris) RotateCounterClockwise() { t.rotate((*Tetromino).RotateCCW) }

// rotate applies r and tries the wall kicks when the result collides. If no kick
// fits, the tetromino goes back to where it was.
func (t *Tetris) rotate(r func(*Tetromino)) {
	if !t.playable() {
		return
	}
	prev := *t.current
	r(t.current)
	if !t.board.Valid(t.current) && !t.wallKick() {
		*t.current = prev
		return
	}
	t.changed()
}

func (t *Tetris) wallKick() bool {
	for _, k := range wallKicks {
		t.current.Move(k[0], k[1])
		if t.board.Valid(t.current) {
			return true
		}
		t.current.Move(-k[0], -k[1])
	}
	return false
}

// Hold stores the current tetromino. With an empty hold the next tetromino comes in,
// otherwise the held one is swapped back. Only once per locked piece.
func (t *Tetris) Hold() {
	if !t.playable() || !t.canHold {
		return
	}
	t.canHold = false
	if t.held == "" {
		t.held = t.current.Shape
		t.current = t.next
		t.next = t.spawn(t.randomizer.Next())
	} else {
		t.held, t.current = t.current.Shape, t.spawn(t.held)
	}
	if !t.board.Valid(t.current) {
		t.setGameOver()
	}
	t.changed()
}

// TogglePause freezes or resumes the session.
func (t *Tetris) TogglePause() {
	if t.gameOver {
		return
	}
	t.paused = !t.paused
	t.changed()
}

func (t *Tetris) tryMove(dx, dy int) bool {
	if !t.playable() {
		return false
	}
	t.current.Move(dx, dy)
	if !t.board.Valid(t.current) {
		t.current.Move(-dx, -dy)
		return false
	}
	t.changed()
	return true
}

// lock transfers the current tetromino to the stack, clears lines and brings in the
// next one. The game is over when the new tetromino doesn't fit.
func (t *Tetris) lock() {
	t.board.Place(t.current)
	if n := len(t.board.ClearLines()); n > 0 {
		t.addLines(n)
	}
	t.current = t.next
	t.next = t.spawn(t.randomizer.Next())
	t.fallTimer = 0
	t.canHold = true
	if !t.board.Valid(t.current) {
		t.setGameOver()
	}
	t.changed()
}

func (t *Tetris) addLines(n int) {
	t.lines += n
	t.score += linePoints[min(n, len(linePoints)-1)] * t.level
	t.logger.Debug("lines cleared", slog.Int("lines", n), slog.Int("score", t.score))

	if level := t.lines/10 + 1; level != t.level {
		t.level = level
		t.fallInterval = t.speed.Fall(level)
		t.logger.Debug("level up", slog.Int("level", level), slog.Duration("interval", t.fallInterval))
	}
}

func (t *Tetris) setGameOver() {
	t.gameOver = true
	t.resetSoftDrop()
	t.logger.Debug("game over", slog.Int("score", t.score), slog.Int("level", t.level), slog.Int("lines", t.lines))
}

// spawn centers a new tetromino at the top of the stack.
func (t *Tetris) spawn(s Shape) *Tetromino {
	tm := newTetromino(s)
	tm.X = (t.board.Width() - tm.Width()) / 2
	return tm
}

func (t *Tetris) playable() bool {
	return t.current != nil && !t.gameOver && !t.paused
}

func (t *Tetris) changed() { t.version++ }

// Board gives read access to the stack. It must not be modified.
func (t *Tetris) Board() *Board { return t.board }

func (t *Tetris) Current() *Tetromino { return t.current.copy() }
func (t *Tetris) Next() *Tetromino    { return t.next.copy() }

// Held returns the held tetromino in its spawn position, or nil.
func (t *Tetris) Held() *Tetromino {
	if t.held == "" {
		return nil
	}
	return t.spawn(t.held)
}

// Ghost returns where the current tetromino would land if dropped.
func (t *Tetris) Ghost() *Tetromino {
	if t.current == nil {
		return nil
	}
	g := t.current.copy()
	for {
		g.Move(0, 1)
		if !t.board.Valid(g) {
			g.Move(0, -1)
			return g
		}
	}
}

func (t *Tetris) Score() int           { return t.score }
func (t *Tetris) Level() int           { return t.level }
func (t *Tetris) Lines() int           { return t.lines }
func (t *Tetris) CanHold() bool        { return t.canHold }
func (t *Tetris) IsGameOver() bool     { return t.gameOver }
func (t *Tetris) IsPaused() bool       { return t.paused }
func (t *Tetris) IsSoftDropping() bool { return t.softDropActive }

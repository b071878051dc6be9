package tetris

// Snapshot is a copy of a session that's safe to read from another goroutine.
type Snapshot struct {
	Stack     [][]Shape
	Tetromino *Tetromino
	Ghost     *Tetromino
	Next      *Tetromino
	Held      *Tetromino
	Score     int
	Level     int
	Lines     int
	CanHold   bool
	GameOver  bool
	Paused    bool
}

// Snapshot copies the current state of the session.
func (t *Tetris) Snapshot() *Snapshot {
	return &Snapshot{
		Stack:     t.board.Rows(),
		Tetromino: t.Current(),
		Ghost:     t.Ghost(),
		Next:      t.Next(),
		Held:      t.Held(),
		Score:     t.score,
		Level:     t.level,
		Lines:     t.lines,
		CanHold:   t.canHold,
		GameOver:  t.gameOver,
		Paused:    t.paused,
	}
}

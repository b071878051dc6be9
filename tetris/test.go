package tetris

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface. Every Tick advances its
// clock by one frame so tests control the elapsed time.
type MockTicker struct {
	ch          chan time.Time
	now         time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker {
	return &MockTicker{ch: make(chan time.Time), now: time.Unix(0, 0)}
}

func (m *MockTicker) C() <-chan time.Time { return m.ch }

// Tick sends a tick one frame after the previous one.
func (m *MockTicker) Tick() { m.Advance(frameRate) }

// Advance sends a tick d after the previous one.
func (m *MockTicker) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	m.mu.Unlock()
	m.ch <- now
}

func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}

func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// Sequence is a randomizer that cycles through a fixed list of shapes.
type Sequence struct {
	shapes []Shape
	i      int
}

func NewSequence(shapes ...Shape) *Sequence {
	if len(shapes) == 0 {
		shapes = allShapes[:]
	}
	return &Sequence{shapes: shapes}
}

func (s *Sequence) Next() Shape {
	sh := s.shapes[s.i%len(s.shapes)]
	s.i++
	return sh
}

func (s *Sequence) Reset() { s.i = 0 }

// NewTestTetris creates a 10x20 session where every tetromino is shape.
func NewTestTetris(shape Shape) *Tetris {
	return NewTetris(&Options{Randomizer: NewSequence(shape)})
}

// NewTestGame creates a game over t driven by a manual ticker.
func NewTestGame(t *Tetris) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return NewConfigurableGame(t, ticker, nil), ticker
}

// Package session holds the outer screen state machine and the summary handed between
// screens when a game ends.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Level and lines are also rejected when they don't fit in 32 bits.
var (
	ErrNegativeScore = errors.New("score cannot be negative")
	ErrNegativeLevel = errors.New("level must be between 0 and 4294967295")
	ErrNegativeLines = errors.New("lines cleared must be between 0 and 4294967295")
)

// Summary is the final state of a play session. The zero value is the empty summary.
type Summary struct {
	score uint64
	level uint32
	lines uint32
	start time.Time
	end   time.Time
	frame string
}

// NewSummary validates and builds a Summary. frame is the last rendered frame.
func NewSummary(score int64, level, lines int, start, end time.Time, frame string) (Summary, error) {
	switch {
	case score < 0:
		return Summary{}, fmt.Errorf("%w: %d", ErrNegativeScore, score)
	case level < 0 || uint64(level) > math.MaxUint32:
		return Summary{}, fmt.Errorf("%w: %d", ErrNegativeLevel, level)
	case lines < 0 || uint64(lines) > math.MaxUint32:
		return Summary{}, fmt.Errorf("%w: %d", ErrNegativeLines, lines)
	}
	return Summary{
		score: uint64(score),
		level: uint32(level), //nolint:gosec // checked above
		lines: uint32(lines), //nolint:gosec // checked above
		start: start,
		end:   end,
		frame: frame,
	}, nil
}

func (s Summary) Score() uint64     { return s.score }
func (s Summary) Level() uint32     { return s.level }
func (s Summary) Lines() uint32     { return s.lines }
func (s Summary) Start() time.Time  { return s.start }
func (s Summary) End() time.Time    { return s.end }
func (s Summary) LastFrame() string { return s.frame }

// Duration is zero unless both timestamps are set.
func (s Summary) Duration() time.Duration {
	if s.start.IsZero() || s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// IsEmpty reports whether the summary carries no game results.
func (s Summary) IsEmpty() bool {
	return s.score == 0 && s.level == 0 && s.lines == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("score=%d level=%d lines=%d duration=%s", s.score, s.level, s.lines, s.Duration())
}

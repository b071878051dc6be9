// Package leaderboard keeps the best scores in the first available storage provider.
package leaderboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"termtris/session"
)

// MaxEntries is the size of the leaderboard.
const MaxEntries = 10

type Entry struct {
	ID        string        `json:"id"`
	Nickname  string        `json:"nickname"`
	Score     uint64        `json:"score"`
	Timestamp time.Time     `json:"timestamp"`
	Level     uint32        `json:"level"`
	Lines     uint32        `json:"lines"`
	Duration  time.Duration `json:"duration"`
}

// NewEntry records a finished game. The timestamp is the end of the game, or now if
// the summary has none.
func NewEntry(nickname string, s session.Summary) Entry {
	ts := s.End()
	if ts.IsZero() {
		ts = time.Now()
	}
	return Entry{
		ID:        uuid.NewString(),
		Nickname:  nickname,
		Score:     s.Score(),
		Timestamp: ts.UTC(),
		Level:     s.Level(),
		Lines:     s.Lines(),
		Duration:  s.Duration(),
	}
}

// Compare orders entries by score, highest first, then by timestamp, oldest first.
func Compare(a, b Entry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return a.Timestamp.Compare(b.Timestamp)
}

// Rank returns a sorted copy of entries cut down to MaxEntries.
func Rank(entries []Entry) []Entry {
	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, Compare)
	return ranked[:min(len(ranked), MaxEntries)]
}

func insert(entries []Entry, e Entry) []Entry {
	return Rank(append(slices.Clone(entries), e))
}

// qualifies reports whether score would make it into entries.
func qualifies(entries []Entry, score uint64) bool {
	if len(entries) < MaxEntries {
		return true
	}
	ranked := Rank(entries)
	return score > ranked[len(ranked)-1].Score
}

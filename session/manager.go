package session

import (
	"io"
	"log/slog"
	"slices"
)

// State is a screen of the application.
type State int

const (
	None State = iota
	Menu
	Playing
	Paused // declared for completeness, no transition leads here
	GameOver
	Leaderboard
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case GameOver:
		return "gameover"
	case Leaderboard:
		return "leaderboard"
	}
	return "unknown"
}

var transitions = map[State][]State{
	None:        {Menu},
	Menu:        {Playing, Leaderboard},
	Playing:     {GameOver, Menu},
	GameOver:    {Menu, Playing, Leaderboard},
	Leaderboard: {Menu},
}

// Handler is the controller of a single State.
type Handler interface {
	// Enter is called when the state becomes current, with the summary produced by the
	// previous state.
	Enter(Summary)
	// Exit is called when leaving the state. It returns the summary to hand over to the
	// next state, empty if there is none.
	Exit() Summary
}

// Manager switches between states following a fixed transition table. It is not safe
// for concurrent use.
type Manager struct {
	current  State
	handlers map[State]Handler
	logger   *slog.Logger
}

func NewManager(l *slog.Logger) *Manager {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		handlers: make(map[State]Handler),
		logger:   l,
	}
}

// Register sets the handler for s, replacing any previous one.
func (m *Manager) Register(s State, h Handler) { m.handlers[s] = h }

// CanTransition reports whether the table allows going from one state to the other.
func (m *Manager) CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// SwitchTo moves to target. It returns false and leaves everything untouched if the
// transition isn't allowed or target has no handler.
func (m *Manager) SwitchTo(target State) bool {
	h, ok := m.handlers[target]
	if !ok || !m.CanTransition(m.current, target) {
		m.logger.Warn("transition rejected",
			slog.String("from", m.current.String()),
			slog.String("to", target.String()),
			slog.Bool("registered", ok))
		return false
	}

	var summary Summary
	if prev, ok := m.handlers[m.current]; ok && m.current != None {
		summary = prev.Exit()
	}
	m.logger.Info("transition",
		slog.String("from", m.current.String()),
		slog.String("to", target.String()),
		slog.String("summary", summary.String()))
	m.current = target
	h.Enter(summary)
	return true
}

func (m *Manager) Current() State { return m.current }

// Handler returns the handler of the current state, or nil.
func (m *Manager) Handler() Handler { return m.handlers[m.current] }

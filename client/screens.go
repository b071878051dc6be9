package client

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eiannone/keyboard"

	"termtris/leaderboard"
	"termtris/session"
	"termtris/tetris"
)

// storageTimeout bounds every leaderboard call made from a screen.
const storageTimeout = 3 * time.Second

type menuScreen struct {
	c *Client
}

func (m *menuScreen) Enter(session.Summary) {
	m.c.render.clear()
	m.c.render.game(nil)
	m.c.render.message(
		"Welcome to Terminal Tetris",
		"",
		"playing as "+m.c.options.Name,
		"",
		"(p)lay  (l)eaderboard  (q)uit",
	)
}

func (m *menuScreen) Exit() session.Summary { return session.Summary{} }

func (m *menuScreen) key(event keyboard.KeyEvent) {
	switch event.Rune {
	case 'p':
		m.c.manager.SwitchTo(session.Playing)
	case 'l':
		m.c.manager.SwitchTo(session.Leaderboard)
	case 'q':
		m.c.quit = true
	}
}

type playScreen struct {
	c       *Client
	game    tetrisGame
	last    *tetris.Snapshot
	frame   string
	start   time.Time
	end     time.Time
	release *time.Timer
}

func (p *playScreen) Enter(session.Summary) {
	p.game = p.c.newGame()
	p.last, p.frame = nil, ""
	p.start, p.end = p.c.now(), time.Time{}
	p.c.render.clear()
	p.game.Start()
}

// Exit stops the game. The summary is empty unless the game was over.
func (p *playScreen) Exit() session.Summary {
	p.stop()
	if p.last == nil || !p.last.GameOver {
		return session.Summary{}
	}
	s, err := session.NewSummary(int64(p.last.Score), p.last.Level, p.last.Lines, p.start, p.end, p.frame)
	if err != nil {
		p.c.logger.Error("unable to build game summary", slog.String("error", err.Error()))
		return session.Summary{}
	}
	return s
}

func (p *playScreen) stop() {
	p.stopSoftDrop()
	if p.game != nil {
		p.game.Stop()
		p.game = nil
	}
}

// updates is nil, and blocks forever, while there's no game.
func (p *playScreen) updates() <-chan *tetris.Snapshot {
	if p.game == nil {
		return nil
	}
	return p.game.GetUpdate()
}

func (p *playScreen) update(s *tetris.Snapshot) {
	p.last = s
	p.frame = p.c.render.game(s)
	if s.Paused {
		p.c.render.message("Paused", "", "(p) resume  (esc) menu")
	}
	if s.GameOver {
		p.end = p.c.now()
		p.c.manager.SwitchTo(session.GameOver)
	}
}

func (p *playScreen) key(event keyboard.KeyEvent) {
	if p.game == nil {
		return
	}
	var a tetris.Action
	switch {
	case event.Key == keyboard.KeyEsc:
		p.c.manager.SwitchTo(session.Menu)
		return
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		p.softDrop()
		return
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		a = tetris.MoveLeft
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		a = tetris.MoveRight
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e' || event.Rune == 'w':
		a = tetris.RotateRight
	case event.Rune == 'q':
		a = tetris.RotateLeft
	case event.Key == keyboard.KeySpace:
		a = tetris.DropDown
	case event.Rune == 'c':
		a = tetris.HoldPiece
	case event.Rune == 'p':
		a = tetris.Pause
	default:
		return
	}
	p.game.Action(a)
}

// softDrop starts the soft drop on the first down key event and keeps it going while
// the key repeats.
func (p *playScreen) softDrop() {
	if p.release != nil {
		p.release.Reset(p.c.releaseAfter)
		return
	}
	p.game.Action(tetris.SoftDrop)
	p.release = time.NewTimer(p.c.releaseAfter)
}

func (p *playScreen) released() <-chan time.Time {
	if p.release == nil {
		return nil
	}
	return p.release.C
}

func (p *playScreen) stopSoftDrop() {
	if p.release == nil {
		return
	}
	p.release.Stop()
	p.release = nil
	if p.game != nil {
		p.game.Action(tetris.SoftDropStop)
	}
}

type gameOverScreen struct {
	c       *Client
	summary session.Summary
}

func (g *gameOverScreen) Enter(s session.Summary) {
	g.summary = s
	g.c.savedID = ""
	g.c.render.message(
		"Game Over",
		"",
		"score "+humanize.Comma(int64(s.Score())), //nolint:gosec
		fmt.Sprintf("level %d  lines %d", s.Level(), s.Lines()),
		"time "+s.Duration().Round(time.Second).String(),
		"",
		g.submit(s),
		"",
		"(p)lay  (l)eaderboard  (m)enu",
	)
}

// Exit hands the summary over so the leaderboard can highlight the new entry.
func (g *gameOverScreen) Exit() session.Summary { return g.summary }

func (g *gameOverScreen) key(event keyboard.KeyEvent) {
	switch {
	case event.Rune == 'p':
		g.c.manager.SwitchTo(session.Playing)
	case event.Rune == 'l':
		g.c.manager.SwitchTo(session.Leaderboard)
	case event.Rune == 'm' || event.Key == keyboard.KeyEsc:
		g.c.manager.SwitchTo(session.Menu)
	}
}

// submit saves the score when it makes it into the leaderboard and describes the
// outcome.
func (g *gameOverScreen) submit(s session.Summary) string {
	if g.c.board == nil {
		return "scores are not saved"
	}
	if s.Score() == 0 {
		return "no score to save"
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if !g.c.board.Qualifies(ctx, s.Score()) {
		return "not a high score"
	}
	e := leaderboard.NewEntry(g.c.options.Name, s)
	if err := g.c.board.Save(ctx, e); err != nil {
		g.c.logger.Error("unable to save score", slog.String("error", err.Error()))
		return "unable to save your score"
	}
	g.c.savedID = e.ID
	top, err := g.c.board.Top(ctx)
	if err != nil {
		return "new high score!"
	}
	if i := slices.IndexFunc(top, func(t leaderboard.Entry) bool { return t.ID == e.ID }); i >= 0 {
		return "new high score! " + humanize.Ordinal(i+1) + " place"
	}
	return "new high score!"
}

type scoresScreen struct {
	c *Client
}

func (l *scoresScreen) Enter(s session.Summary) {
	l.c.render.clear()
	l.c.render.game(nil)
	l.c.render.message(l.lines(s)...)
}

func (l *scoresScreen) Exit() session.Summary { return session.Summary{} }

func (l *scoresScreen) key(event keyboard.KeyEvent) {
	if event.Rune == 'm' || event.Rune == 'q' || event.Key == keyboard.KeyEsc {
		l.c.manager.SwitchTo(session.Menu)
	}
}

// lines lists the leaderboard. The score saved by the game of the summary, if any, is
// marked.
func (l *scoresScreen) lines(s session.Summary) []string {
	out := []string{"Leaderboard", ""}
	if l.c.board == nil {
		return append(out, "scores are not saved", "", "(m)enu")
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	top, err := l.c.board.Top(ctx)
	switch {
	case err != nil:
		l.c.logger.Error("unable to read scores", slog.String("error", err.Error()))
		out = append(out, "leaderboard not available")
	case len(top) == 0:
		out = append(out, "no scores yet")
	}
	for i, e := range top {
		mark := " "
		if !s.IsEmpty() && l.c.savedID != "" && e.ID == l.c.savedID {
			mark = ">"
		}
		out = append(out, fmt.Sprintf("%s%-4s %-12.12s %10s", mark, humanize.Ordinal(i+1), e.Nickname, humanize.Comma(int64(e.Score)))) //nolint:gosec
	}
	return append(out, "", l.c.board.ProviderName(), "(m)enu")
}

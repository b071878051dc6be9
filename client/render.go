package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"termtris/tetris"
)

const (
	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Clears the whole screen

	cellFormat = "\x1b[7m\x1b[%sm[]\x1b[0m"
	emptyCell  = "  "
	ghostCell  = "[]"

	defaultRows = 20
	defaultCols = 10
	frameRows   = defaultRows + 3
	panelWidth  = 14

	// inner width and column of the message box drawn over the stack.
	boxWidth = 30
	boxCol   = 5
)

//go:embed "layout.tmpl"
var layout string

type templateData struct {
	Snapshot *tetris.Snapshot
	Name     string
	NoGhost  bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(w io.Writer, l *slog.Logger, noGhost bool, name string) (*render, error) {
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if w == nil {
		w = os.Stdout
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmpl,
		templateData: &templateData{
			Name:    name,
			NoGhost: noGhost,
		},
	}, nil
}

// game draws the snapshot and returns the frame it drew. A nil snapshot draws an
// empty stack.
func (r *render) game(s *tetris.Snapshot) string {
	r.Snapshot = s
	var b strings.Builder
	if err := r.template.Execute(&b, r.templateData); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
	fmt.Fprint(r.writer, resetPos+b.String())
	return b.String()
}

// message draws a box with one centered line per entry over the current frame.
func (r *render) message(lines ...string) {
	border := "+" + strings.Repeat("-", boxWidth) + "+"
	top := max(1, (frameRows-len(lines)-2)/2+1)
	fmt.Fprintf(r.writer, "\033[%d;%dH%s", top, boxCol, border)
	for i, l := range lines {
		fmt.Fprintf(r.writer, "\033[%d;%dH|%s|", top+1+i, boxCol, center(l, boxWidth))
	}
	fmt.Fprintf(r.writer, "\033[%d;%dH%s", top+1+len(lines), boxCol, border)
}

func (r *render) clear() { fmt.Fprint(r.writer, clearScreen) }

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack": stack,
		"panel": panel,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetris", "\033[1mTerminal Tetris\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func cell(s tetris.Shape) string {
	return fmt.Sprintf(cellFormat, s.Color())
}

// stack renders the locked cells, the ghost and the falling tetromino.
func stack(t *templateData) [][]string {
	if t == nil || t.Snapshot == nil {
		return emptyRows(defaultRows, defaultCols)
	}
	s := t.Snapshot
	rows, cols := len(s.Stack), defaultCols
	if rows > 0 {
		cols = len(s.Stack[0])
	}
	rendered := emptyRows(rows, cols)
	for y, row := range s.Stack {
		for x, v := range row {
			if v != "" {
				rendered[y][x] = cell(v)
			}
		}
	}
	if s.Ghost != nil && !t.NoGhost {
		draw(rendered, s.Ghost, ghostCell)
	}
	if s.Tetromino != nil {
		draw(rendered, s.Tetromino, cell(s.Tetromino.Shape))
	}
	return rendered
}

// draw paints the visible cells of p. Cells above the stack are skipped.
func draw(rendered [][]string, p *tetris.Tetromino, out string) {
	for y, x := range p.Cells() {
		if y < 0 || y >= len(rendered) || x < 0 || x >= len(rendered[y]) {
			continue
		}
		rendered[y][x] = out
	}
}

func emptyRows(rows, cols int) [][]string {
	rendered := make([][]string, rows)
	for y := range rendered {
		rendered[y] = make([]string, cols)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	return rendered
}

// panel renders the side panel, one line per stack row.
func panel(t *templateData) []string {
	rows := defaultRows
	if t != nil && t.Snapshot != nil && len(t.Snapshot.Stack) > 0 {
		rows = len(t.Snapshot.Stack)
	}
	p := make([]string, rows)
	for i := range p {
		p[i] = strings.Repeat(" ", panelWidth)
	}
	if t == nil {
		return p
	}
	set := func(i int, s string) {
		if i < len(p) {
			p[i] = s
		}
	}
	text := func(i int, s string) { set(i, pad(s, panelWidth)) }

	text(17, t.Name)
	s := t.Snapshot
	if s == nil {
		return p
	}
	text(0, "NEXT")
	next := piece(s.Next)
	set(1, next[0])
	set(2, next[1])
	if s.CanHold {
		text(4, "HOLD")
	} else {
		text(4, "HOLD (used)")
	}
	held := piece(s.Held)
	set(5, held[0])
	set(6, held[1])
	text(8, "SCORE")
	text(9, humanize.Comma(int64(s.Score)))
	text(11, "LEVEL")
	text(12, strconv.Itoa(s.Level))
	text(14, "LINES")
	text(15, strconv.Itoa(s.Lines))
	switch {
	case s.GameOver:
		text(18, "GAME OVER")
	case s.Paused:
		text(18, "PAUSED")
	}
	return p
}

// piece renders the filled rows of a preview piece, at most two, as 4 cells each padded
// to the panel width.
func piece(t *tetris.Tetromino) [2]string {
	rendered := [2]string{pad("", panelWidth), pad("", panelWidth)}
	if t == nil {
		return rendered
	}
	i := 0
	for _, r := range t.Grid() {
		if i == len(rendered) {
			break
		}
		filled := false
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		for x, v := range r {
			if v && x < len(row) {
				row[x] = cell(t.Shape)
				filled = true
			}
		}
		if !filled {
			continue
		}
		rendered[i] = strings.Join(row, "") + strings.Repeat(" ", panelWidth-2*len(row))
		i++
	}
	return rendered
}

// pad left aligns s in a w wide column, cutting it when it doesn't fit.
func pad(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return string([]rune(s)[:w])
}

// center centers s in a w wide column, cutting it when it doesn't fit.
func center(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return string([]rune(s)[:w])
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}

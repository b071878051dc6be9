package tetris

const (
	// standard playfield size.
	stackWidth  = 10
	stackHeight = 20
)

// Board is the playfield. Row 0 is the top of the stack and row Height()-1 the
// bottom. An empty Shape is an empty cell, otherwise the cell holds the shape of the
// tetromino that was locked there.
type Board struct {
	width, height int
	cells         [][]Shape
}

// NewBoard returns an empty board. Non-positive sizes fall back to 10x20.
func NewBoard(width, height int) *Board {
	if width <= 0 || height <= 0 {
		width, height = stackWidth, stackHeight
	}
	return &Board{
		width:  width,
		height: height,
		cells:  emptyStack(width, height),
	}
}

func emptyStack(width, height int) [][]Shape {
	s := make([][]Shape, height)
	for i := range s {
		s[i] = make([]Shape, width)
	}
	return s
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// Cell returns the content of a cell and whether it is occupied. Out of range
// coordinates are reported as empty.
func (b *Board) Cell(row, col int) (Shape, bool) {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		return "", false
	}
	s := b.cells[row][col]
	return s, s != ""
}

// Rows returns a copy of the stack.
func (b *Board) Rows() [][]Shape {
	rows := make([][]Shape, len(b.cells))
	for i := range b.cells {
		rows[i] = make([]Shape, len(b.cells[i]))
		copy(rows[i], b.cells[i])
	}
	return rows
}

// Valid reports whether the tetromino fits on the board. Cells above the playfield
// are only checked against the side walls so pieces can spawn partially hidden.
func (b *Board) Valid(t *Tetromino) bool {
	for row, col := range t.Cells() {
		if col < 0 || col >= b.width || row >= b.height {
			return false
		}
		if row >= 0 && b.cells[row][col] != "" {
			return false
		}
	}
	return true
}

// Place writes the tetromino into the stack. Cells outside the playfield are dropped,
// so callers must check Valid first.
func (b *Board) Place(t *Tetromino) {
	for row, col := range t.Cells() {
		if row >= 0 && row < b.height && col >= 0 && col < b.width {
			b.cells[row][col] = t.Shape
		}
	}
}

// ClearLines removes every complete row, shifting the rows above it down. It returns
// the indexes the removed rows had before the clear, from the bottom up.
func (b *Board) ClearLines() []int {
	var cleared []int
	dest := b.height - 1
	for src := b.height - 1; src >= 0; src-- {
		if b.full(src) {
			cleared = append(cleared, src)
			continue
		}
		b.cells[dest] = b.cells[src]
		dest--
	}
	for ; dest >= 0; dest-- {
		b.cells[dest] = make([]Shape, b.width)
	}
	return cleared
}

// Clear empties the whole board.
func (b *Board) Clear() {
	for _, r := range b.cells {
		clear(r)
	}
}

func (b *Board) full(row int) bool {
	for _, c := range b.cells[row] {
		if c == "" {
			return false
		}
	}
	return true
}

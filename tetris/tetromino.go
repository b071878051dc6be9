package tetris

import "iter"

// Tetromino is a falling piece. X and Y locate the top-left corner of its grid on the
// stack: columns grow to the right, rows grow downwards and Y may be negative while the
// piece is still above the playfield.
//
//	.	Spawn Location (J)		.	Shape
//
//	.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
//
//	0	. . . O . . . . . .		0	O . .
//
//	1	. . . O O O . . . .		1	O O O
//
//	2	. . . . . . . . . .		2	. . .
type Tetromino struct {
	Shape    Shape
	Rotation int // 0 spawn, 1 right, 2 reverse, 3 left
	X, Y     int
}

func newTetromino(s Shape) *Tetromino {
	return &Tetromino{Shape: s}
}

// Grid returns the occupancy matrix of the current rotation. It is shared with every
// other piece of the same shape and must not be modified.
func (t *Tetromino) Grid() [][]bool {
	return shapeTable[t.Shape][t.Rotation&3]
}

// Width of the current rotation's bounding box.
func (t *Tetromino) Width() int { return len(t.Grid()[0]) }

// Height of the current rotation's bounding box.
func (t *Tetromino) Height() int { return len(t.Grid()) }

// Move translates the piece. Callers are responsible for checking the new position.
func (t *Tetromino) Move(dx, dy int) {
	t.X += dx
	t.Y += dy
}

func (t *Tetromino) RotateCW()  { t.Rotation = (t.Rotation + 1) % 4 }
func (t *Tetromino) RotateCCW() { t.Rotation = (t.Rotation + 3) % 4 }

// Cells yields the stack row and column of every filled cell of the piece.
func (t *Tetromino) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for ir, r := range t.Grid() {
			for ic, c := range r {
				if c && !yield(t.Y+ir, t.X+ic) {
					return
				}
			}
		}
	}
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

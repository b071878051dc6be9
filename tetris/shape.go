package tetris

// Shape identifies one of the seven tetrominoes. An empty Shape marks an empty cell
// in the stack.
type Shape string

const (
	I Shape = "I"
	J Shape = "J"
	L Shape = "L"
	O Shape = "O"
	S Shape = "S"
	Z Shape = "Z"
	T Shape = "T"
)

var allShapes = [7]Shape{I, J, L, O, S, Z, T}

// AllShapes returns the seven tetrominoes in a fixed order.
func AllShapes() [7]Shape { return allShapes }

// ASCII color codes.
const (
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"
)

var colorMap = map[Shape]string{
	I: Cyan,
	J: Blue,
	L: Orange,
	O: Yellow,
	S: Green,
	Z: Red,
	T: Magenta,
}

// Color returns the ANSI color code the shape is rendered with, or an empty string
// for an empty cell.
func (s Shape) Color() string { return colorMap[s] }

// Valid reports whether s is one of the seven tetrominoes.
func (s Shape) Valid() bool {
	_, ok := shapeTable[s]
	return ok
}

// shapeTable holds the four rotation states of every tetromino, clockwise from the
// spawn state. The grids are shared by every Tetromino and must never be modified.
var shapeTable = map[Shape][4][][]bool{
	I: {
		grid("....", "OOOO", "....", "...."),
		grid("..O.", "..O.", "..O.", "..O."),
		grid("....", "....", "OOOO", "...."),
		grid(".O..", ".O..", ".O..", ".O.."),
	},
	J: {
		grid("O..", "OOO", "..."),
		grid(".OO", ".O.", ".O."),
		grid("...", "OOO", "..O"),
		grid(".O.", ".O.", "OO."),
	},
	L: {
		grid("..O", "OOO", "..."),
		grid(".O.", ".O.", ".OO"),
		grid("...", "OOO", "O.."),
		grid("OO.", ".O.", ".O."),
	},
	O: {
		grid("OO", "OO"),
		grid("OO", "OO"),
		grid("OO", "OO"),
		grid("OO", "OO"),
	},
	S: {
		grid(".OO", "OO.", "..."),
		grid(".O.", ".OO", "..O"),
		grid("...", ".OO", "OO."),
		grid("O..", "OO.", ".O."),
	},
	Z: {
		grid("OO.", ".OO", "..."),
		grid("..O", ".OO", ".O."),
		grid("...", "OO.", ".OO"),
		grid(".O.", "OO.", "O.."),
	},
	T: {
		grid(".O.", "OOO", "..."),
		grid(".O.", ".OO", ".O."),
		grid("...", "OOO", ".O."),
		grid(".O.", "OO.", ".O."),
	},
}

// grid builds a rotation state from one string per row where 'O' is a filled cell.
func grid(rows ...string) [][]bool {
	g := make([][]bool, len(rows))
	for i, r := range rows {
		g[i] = make([]bool, len(r))
		for j, c := range r {
			g[i][j] = c == 'O'
		}
	}
	return g
}

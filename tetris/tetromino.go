package tetris

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownShape is returned by Spawn for a value outside the seven tetromino kinds.
var ErrUnknownShape = errors.New("unknown shape")

type Shape int

const (
	O Shape = iota
	I
	S
	Z
	L
	J
	T
)

// Shapes lists every tetromino kind in table order.
var Shapes = [...]Shape{O, I, S, Z, L, J, T}

func (s Shape) String() string {
	switch s {
	case O:
		return "O"
	case I:
		return "I"
	case S:
		return "S"
	case Z:
		return "Z"
	case L:
		return "L"
	case J:
		return "J"
	case T:
		return "T"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Color is an index into Palette. Pieces cycle through it in spawn order.
type Color int

const (
	Red Color = iota
	Blue
	Green
	Yellow
)

// Palette holds the display colors a piece can take.
var Palette = [...]Color{Red, Blue, Green, Yellow}

// Point is a cell coordinate. X grows to the right, Y grows downwards: row 0 is the top.
type Point struct {
	X, Y int
}

// Piece is the active tetromino. Blocks[0] is the pivot used by Rotate.
// Piece is a value: assigning it takes a snapshot.
type Piece struct {
	Shape  Shape
	Blocks [4]Point
	Color  Color
}

/*
.	Spawn layouts, column offsets from the spawn column.
.	The number is the block index, 0 is the pivot.

.	I	0 1 2 3		L	1 2 3		J	0 . .
.				0 . .			1 2 3

.	S	. 2 3		Z	0 1 .		O	0 1
.		0 1 .			. 2 3			2 3

.	T	0 1 3
.		. 2 .
*/
var spawnTable = map[Shape][4]Point{
	I: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	L: {{0, 1}, {0, 0}, {1, 0}, {2, 0}},
	J: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
	S: {{0, 1}, {1, 1}, {1, 0}, {2, 0}},
	Z: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
	O: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	T: {{0, 0}, {1, 0}, {1, 1}, {2, 0}},
}

// Spawn returns the initial layout of shape with its leftmost column at column.
func Spawn(shape Shape, color Color, column int) (Piece, error) {
	layout, ok := spawnTable[shape]
	if !ok {
		return Piece{}, fmt.Errorf("spawn %v: %w", shape, ErrUnknownShape)
	}
	p := Piece{Shape: shape, Color: color}
	for i, b := range layout {
		p.Blocks[i] = Point{X: b.X + column, Y: b.Y}
	}
	return p, nil
}

// Rotate turns blocks 1..3 a quarter turn clockwise around the pivot, keeping the
// bottom row of the piece where it was, then pulls it back inside the top edge and
// the width columns.
func (p *Piece) Rotate(width int) {
	_, bottom := p.rows()

	pivot := p.Blocks[0]
	sin, cos := math.Sincos(math.Pi / 2)
	for i := 1; i < len(p.Blocks); i++ {
		rx := float64(p.Blocks[i].X - pivot.X)
		ry := float64(p.Blocks[i].Y - pivot.Y)
		p.Blocks[i].X = int(math.Round(float64(pivot.X) + rx*cos - ry*sin))
		p.Blocks[i].Y = int(math.Round(float64(pivot.Y) + ry*cos + rx*sin))
	}

	_, low := p.rows()
	p.ShiftY(bottom - low)
	if top, _ := p.rows(); top < 0 {
		p.ShiftY(-top)
	}
	p.boundX(width)
}

// ShiftX moves the piece delta columns and keeps it inside the width columns.
func (p *Piece) ShiftX(delta, width int) {
	if delta == 0 {
		return
	}
	for i := range p.Blocks {
		p.Blocks[i].X += delta
	}
	p.boundX(width)
}

// ShiftY moves the piece delta rows. Positive values move it down.
func (p *Piece) ShiftY(delta int) {
	for i := range p.Blocks {
		p.Blocks[i].Y += delta
	}
}

// Bounds returns the top-left and bottom-right corners of the cells the piece covers.
func (p Piece) Bounds() (minP, maxP Point) {
	minP, maxP = p.Blocks[0], p.Blocks[0]
	for _, b := range p.Blocks[1:] {
		minP.X = min(minP.X, b.X)
		minP.Y = min(minP.Y, b.Y)
		maxP.X = max(maxP.X, b.X)
		maxP.Y = max(maxP.Y, b.Y)
	}
	return minP, maxP
}

func (p Piece) rows() (top, bottom int) {
	minP, maxP := p.Bounds()
	return minP.Y, maxP.Y
}

func (p *Piece) boundX(width int) {
	minP, maxP := p.Bounds()
	switch {
	case minP.X < 0:
		p.ShiftX(-minP.X, width)
	case maxP.X > width-1:
		p.ShiftX(width-1-maxP.X, width)
	}
}

// Package tetris contains the logic of the game: pieces, the playfield grid and
// the per-frame loop that moves, locks and clears them.
package tetris

// Grid is the playfield. A cell is true iff a locked piece occupies it.
// Columns are 0 > Width-1 left to right, rows are 0 > Height-1 top to bottom.
type Grid struct {
	cells [][]bool
}

func NewGrid(width, height int) *Grid {
	cells := make([][]bool, height)
	for i := range cells {
		cells[i] = make([]bool, width)
	}
	return &Grid{cells: cells}
}

func (g *Grid) Width() int  { return len(g.cells[0]) }
func (g *Grid) Height() int { return len(g.cells) }

func (g *Grid) inside(p Point) bool {
	return p.X >= 0 && p.X < g.Width() && p.Y >= 0 && p.Y < g.Height()
}

// Occupied reports whether the cell is locked. Cells outside the grid are never occupied.
func (g *Grid) Occupied(p Point) bool {
	return g.inside(p) && g.cells[p.Y][p.X]
}

// Set marks a cell. Points outside the grid are ignored.
func (g *Grid) Set(p Point, v bool) {
	if g.inside(p) {
		g.cells[p.Y][p.X] = v
	}
}

// Valid reports whether every block of p is inside the grid and on a free cell.
func (g *Grid) Valid(p Piece) bool {
	for _, b := range p.Blocks {
		if !g.inside(b) || g.cells[b.Y][b.X] {
			return false
		}
	}
	return true
}

// Landed reports whether any block of p rests on the floor or on a locked cell.
func (g *Grid) Landed(p Piece) bool {
	// 		0 1 2 3 4 5 6 7 8 9
	// 17	. . . . O O . . . .
	// 18	. . . . . O O . . .
	// 19	. . . . . X . . . .   <- the cell below block at (5,18) is locked
	for _, b := range p.Blocks {
		below := Point{X: b.X, Y: b.Y + 1}
		if below.Y >= g.Height() || g.Occupied(below) {
			return true
		}
	}
	return false
}

// Lock fixes the blocks of p into the grid.
func (g *Grid) Lock(p Piece) {
	for _, b := range p.Blocks {
		g.Set(b, true)
	}
}

// ClearLines removes every full row, shifting the rows above it down by one and
// leaving an empty row at the top. It returns the number of rows removed.
func (g *Grid) ClearLines() int {
	var cleared int
	for y, row := range g.cells {
		if !full(row) {
			continue
		}
		for k := y; k > 0; k-- {
			copy(g.cells[k], g.cells[k-1])
		}
		clear(g.cells[0])
		cleared++
	}
	return cleared
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for _, row := range g.cells {
		clear(row)
	}
}

// Rows returns a copy of the cells that's safe to keep after the grid changes.
func (g *Grid) Rows() [][]bool {
	rows := make([][]bool, len(g.cells))
	for i := range g.cells {
		rows[i] = make([]bool, len(g.cells[i]))
		copy(rows[i], g.cells[i])
	}
	return rows
}

func full(row []bool) bool {
	for _, c := range row {
		if !c {
			return false
		}
	}
	return true
}

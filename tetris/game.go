package tetris

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

type Action string

const (
	None      Action = ""
	MoveLeft  Action = "left"   // Moves the piece one column to the left.
	MoveRight Action = "right"  // Moves the piece one column to the right.
	MoveDown  Action = "down"   // Moves the piece DropStep rows down.
	Rotate    Action = "rotate" // Rotates the piece clockwise.
)

// Randomizer picks the shape of the next piece.
type Randomizer interface {
	Next() Shape
}

type uniform struct {
	r *rand.Rand
}

func newUniform(seed uint64) *uniform {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec
	}
	return &uniform{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec
}

func (u *uniform) Next() Shape { return Shapes[u.r.IntN(len(Shapes))] }

// Game owns the grid and the active piece. It's driven one frame at a time by
// Update and is not safe for concurrent use.
type Game struct {
	cfg     Config
	logger  *slog.Logger
	shapes  Randomizer
	grid    *Grid
	piece   Piece
	timer   time.Duration
	spawned int
	lines   int
	over    bool
}

func NewGame(cfg Config, l *slog.Logger) (*Game, error) {
	return NewConfigurableGame(cfg, l, newUniform(cfg.Seed))
}

func NewConfigurableGame(cfg Config, l *slog.Logger, r Randomizer) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	g := &Game{
		cfg:    cfg,
		logger: l,
		shapes: r,
		grid:   NewGrid(cfg.Width, cfg.Height),
	}
	if err := g.spawn(); err != nil {
		return nil, err
	}
	return g, nil
}

// Update runs one frame: the action, the gravity timer, then locking, line
// clearing and spawning when the piece has landed.
func (g *Game) Update(dt time.Duration, a Action) error {
	if g.over {
		return nil
	}

	g.action(a)

	g.timer += dt
	if g.timer > g.cfg.FallInterval {
		g.timer = 0
		g.down(g.cfg.FallStep)
	}

	if !g.grid.Landed(g.piece) {
		return nil
	}
	g.grid.Lock(g.piece)
	g.logger.Debug("piece locked", slog.String("shape", g.piece.Shape.String()), slog.Any("blocks", g.piece.Blocks))
	if n := g.grid.ClearLines(); n > 0 {
		g.lines += n
		g.logger.Debug("lines cleared", slog.Int("count", n), slog.Int("total", g.lines))
	}
	return g.spawn()
}

// Reset empties the grid and starts a new round with the same config.
func (g *Game) Reset() error {
	g.grid.Reset()
	g.timer = 0
	g.spawned = 0
	g.lines = 0
	g.over = false
	return g.spawn()
}

func (g *Game) Over() bool    { return g.over }
func (g *Game) Config() Config { return g.cfg }

// Snapshot is a copy of the game state for renderers. It doesn't change when the
// game moves on.
type Snapshot struct {
	Grid  [][]bool
	Piece Piece
	Lines int
	Over  bool
}

func (g *Game) Read() *Snapshot {
	return &Snapshot{
		Grid:  g.grid.Rows(),
		Piece: g.piece,
		Lines: g.lines,
		Over:  g.over,
	}
}

func (g *Game) action(a Action) {
	switch a {
	case Rotate:
		g.try(func(p *Piece) { p.Rotate(g.cfg.Width) })
	case MoveLeft:
		g.try(func(p *Piece) { p.ShiftX(-1, g.cfg.Width) })
	case MoveRight:
		g.try(func(p *Piece) { p.ShiftX(1, g.cfg.Width) })
	case MoveDown:
		g.down(g.cfg.DropStep)
	}
}

// down moves the piece up to n rows, stopping at the first row it can't take.
func (g *Game) down(n int) {
	for range n {
		if !g.try(func(p *Piece) { p.ShiftY(1) }) {
			return
		}
	}
}

// try applies move to the piece and restores the previous position if the result
// leaves the grid or overlaps a locked cell.
func (g *Game) try(move func(*Piece)) bool {
	old := g.piece
	move(&g.piece)
	if !g.grid.Valid(g.piece) {
		g.piece = old
		return false
	}
	return true
}

func (g *Game) spawn() error {
	shape := g.shapes.Next()
	p, err := Spawn(shape, Palette[g.spawned%len(Palette)], g.cfg.SpawnColumn)
	if err != nil {
		return fmt.Errorf("failed to spawn piece: %w", err)
	}
	g.spawned++
	g.piece = p
	if !g.grid.Valid(p) {
		g.over = true
		g.logger.Info("game over", slog.Int("lines", g.lines), slog.Int("pieces", g.spawned))
		return nil
	}
	g.logger.Debug("piece spawned", slog.String("shape", shape.String()))
	return nil
}

// Package window runs the game in a desktop window through ebiten.
package window

import (
	"blockdrop/tetris"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const tps = 60

var (
	background = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	lockedCell = color.RGBA{R: 130, G: 130, B: 130, A: 255}

	colorMap = map[tetris.Color]color.RGBA{
		tetris.Red:    {R: 230, G: 41, B: 55, A: 255},
		tetris.Blue:   {R: 0, G: 121, B: 241, A: 255},
		tetris.Green:  {R: 0, G: 228, B: 48, A: 255},
		tetris.Yellow: {R: 253, G: 249, B: 0, A: 255},
	}
)

// keyboard tells which keys went down since the previous tick.
type keyboard interface {
	justPressed(ebiten.Key) bool
}

type ebitenKeyboard struct{}

func (ebitenKeyboard) justPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// Window implements ebiten.Game on top of a tetris.Game.
type Window struct {
	game   *tetris.Game
	cfg    tetris.Config
	keys   keyboard
	logger *slog.Logger
}

func New(g *tetris.Game, l *slog.Logger) *Window {
	return &Window{
		game:   g,
		cfg:    g.Config(),
		keys:   ebitenKeyboard{},
		logger: l,
	}
}

// Run opens the window and blocks until it's closed.
func (w *Window) Run() error {
	width, height := w.cfg.ScreenSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Tetris")
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("failed to run window: %w", err)
	}
	return nil
}

func (w *Window) Update() error {
	if w.keys.justPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if w.game.Over() {
		if w.keys.justPressed(ebiten.KeyR) {
			w.logger.Debug("restarting game")
			return w.game.Reset()
		}
		return nil
	}
	return w.game.Update(time.Second/tps, w.action())
}

// action reads at most one move per tick.
func (w *Window) action() tetris.Action {
	switch {
	case w.keys.justPressed(ebiten.KeyArrowUp):
		return tetris.Rotate
	case w.keys.justPressed(ebiten.KeyArrowRight):
		return tetris.MoveRight
	case w.keys.justPressed(ebiten.KeyArrowLeft):
		return tetris.MoveLeft
	case w.keys.justPressed(ebiten.KeyArrowDown):
		return tetris.MoveDown
	}
	return tetris.None
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	s := w.game.Read()

	size := float32(w.cfg.CellSize)
	for y, row := range s.Grid {
		for x, locked := range row {
			if locked {
				vector.DrawFilledRect(screen, float32(x)*size, float32(y)*size, size, size, lockedCell, false)
			}
		}
	}

	// the active piece is drawn with a small inset so adjacent blocks stay apart.
	inset := size / 10
	for _, b := range s.Piece.Blocks {
		vector.DrawFilledRect(screen, float32(b.X)*size+inset/2, float32(b.Y)*size+inset/2, size-inset, size-inset, colorMap[s.Piece.Color], true)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("lines: %d", s.Lines))
	if s.Over {
		width, height := w.cfg.ScreenSize()
		ebitenutil.DebugPrintAt(screen, "GAME OVER - press R", width/2-55, height/2)
	}
}

func (w *Window) Layout(int, int) (int, int) {
	return w.cfg.ScreenSize()
}

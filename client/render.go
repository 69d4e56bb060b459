package client

import (
	"blockdrop/pb"
	"blockdrop/tetris"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/template"
)

const (
	// ASCII colors.
	Red    = "31"
	Blue   = "34"
	Green  = "32"
	Yellow = "33"
	Gray   = "90"
	White  = "37"

	resetPos    = "\033[H"       // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // Clear the screen and reset the cursor

	emptyCell = "  "
	boxWidth  = 24
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Color]string{
	tetris.Red:    Red,
	tetris.Blue:   Blue,
	tetris.Green:  Green,
	tetris.Yellow: Yellow,
}

func cell(color string) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", color)
}

type templateData struct {
	Local  *tetris.Snapshot
	Remote *pb.GameMessage
	Name   string
	Width  int
	Height int
}

type mpData struct {
	local  *tetris.Snapshot
	remote *pb.GameMessage
}

// message is shown in a box over the board while in the lobby.
type message struct {
	title, keys string
}

const lobbyKeys = "(p)lay (o)nline (q)uit"

func defaultLobby() *message         { return &message{"Terminal Tetris", lobbyKeys} }
func gameOver() *message             { return &message{"Game Over :)", lobbyKeys} }
func youWon() *message               { return &message{"You Won :D", lobbyKeys} }
func waitingOpponent() *message      { return &message{"waiting opponent...", "(c)ancel"} }
func waitingOpponentError() *message { return &message{"opponent left :(", lobbyKeys} }
func errorMessage() *message         { return &message{"something went wrong :(", lobbyKeys} }

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(l *slog.Logger, name string, width, height int) *render {
	return &render{
		writer:   os.Stdout,
		logger:   l,
		template: loadTemplate(),
		templateData: &templateData{
			Name:   name,
			Width:  width,
			Height: height,
		},
	}
}

func (r *render) singlePlayer(s *tetris.Snapshot) {
	r.Local = s
	r.Remote = nil
	r.execute()
}

func (r *render) multiPlayer(d *mpData) {
	r.Local = d.local
	r.Remote = d.remote
	r.execute()
}

func (r *render) reset() {
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) lobby(m *message) {
	r.execute()
	row := r.Height/2 - 1
	border := "+" + strings.Repeat("-", boxWidth) + "+"
	fmt.Fprintf(r.writer, "\033[%d;2H%s", row, border)
	fmt.Fprintf(r.writer, "\033[%d;2H|%s|", row+1, center(m.title, boxWidth))
	fmt.Fprintf(r.writer, "\033[%d;2H|%s|", row+2, center(m.keys, boxWidth))
	fmt.Fprintf(r.writer, "\033[%d;2H%s", row+3, border)
}

func (r *render) execute() {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() *template.Template {
	funcMap := template.FuncMap{
		"localStack":  localStack,
		"remoteStack": remoteStack,
		"border":      func(w int) string { return strings.Repeat("--", w) },
		"join":        func(row []string) string { return strings.Join(row, "") },
		"lines":       func(s *tetris.Snapshot) int { return linesOf(s) },
		"vs":          vs,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.Must(template.New("layout").Funcs(funcMap).Parse(l))
}

func linesOf(s *tetris.Snapshot) int {
	if s == nil {
		return 0
	}
	return s.Lines
}

func blank(width, height int) [][]string {
	rendered := make([][]string, height)
	for y := range rendered {
		rendered[y] = make([]string, width)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}
	return rendered
}

func localStack(t *templateData) [][]string {
	if t == nil {
		return blank(tetris.DefaultConfig().Width, tetris.DefaultConfig().Height)
	}
	rendered := blank(t.Width, t.Height)
	if t.Local == nil {
		return rendered
	}

	for y, row := range t.Local.Grid {
		for x, locked := range row {
			if locked {
				rendered[y][x] = cell(Gray)
			}
		}
	}
	if !t.Local.Over {
		for _, b := range t.Local.Piece.Blocks {
			rendered[b.Y][b.X] = cell(colorMap[t.Local.Piece.Color])
		}
	}
	return rendered
}

func remoteStack(t *templateData) [][]string {
	if t == nil {
		return blank(tetris.DefaultConfig().Width, tetris.DefaultConfig().Height)
	}
	rendered := blank(t.Width, t.Height)
	if t.Remote == nil {
		return rendered
	}

	// the opponent may play a different grid size, what doesn't fit is left out.
	for y, row := range t.Remote.Rows {
		if y >= t.Height {
			break
		}
		for x, c := range row {
			if x >= t.Width {
				break
			}
			switch c {
			case pb.Locked:
				rendered[y][x] = cell(Gray)
			case pb.Active:
				rendered[y][x] = cell(White)
			}
		}
	}
	return rendered
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func vs(lName, rName string) string {
	maxL := 9
	l := len(lName)
	switch {
	case l > maxL:
		lName = lName[:maxL]
	case l < maxL:
		lName = strings.Repeat(" ", maxL-len(lName)) + lName
	}

	r := len(rName)
	switch {
	case r > maxL:
		rName = rName[:maxL]
	case r < maxL:
		rName += strings.Repeat(" ", maxL-len(rName))
	}
	return fmt.Sprintf(" %s <- vs -> %s ", lName, rName)
}

// snapshot2Proto packs the board the opponent sees: locked cells and the active piece.
func snapshot2Proto(name string, s *tetris.Snapshot) *pb.GameMessage {
	rows := make([][]byte, len(s.Grid))
	for y, row := range s.Grid {
		rows[y] = make([]byte, len(row))
		for x, locked := range row {
			if locked {
				rows[y][x] = pb.Locked
			}
		}
	}
	if !s.Over {
		for _, b := range s.Piece.Blocks {
			rows[b.Y][b.X] = pb.Active
		}
	}
	return &pb.GameMessage{
		Name:     name,
		Started:  true,
		GameOver: s.Over,
		Lines:    int32(s.Lines), //nolint:gosec
		Rows:     rows,
	}
}

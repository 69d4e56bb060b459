package client

import (
	"blockdrop/pb"
	"blockdrop/tetris"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
)

type mockRender struct {
	mu          sync.Mutex
	singleCount int
	multiCount  int
	resetCount  int
	lastLobby   *message
	lastMulti   *mpData
}

func (m *mockRender) singlePlayer(*tetris.Snapshot) { m.mu.Lock(); m.singleCount++; m.mu.Unlock() }
func (m *mockRender) reset()                        { m.mu.Lock(); m.resetCount++; m.mu.Unlock() }
func (m *mockRender) lobby(msg *message)            { m.mu.Lock(); m.lastLobby = msg; m.mu.Unlock() }
func (m *mockRender) multiPlayer(d *mpData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multiCount++
	m.lastMulti = d
}

func (m *mockRender) lobbyIs(want *message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLobby != nil && *m.lastLobby == *want
}

type mockTicker struct {
	ch      chan time.Time
	stopped bool
}

func (m *mockTicker) C() <-chan time.Time { return m.ch }
func (m *mockTicker) Stop()               { m.stopped = true }

type mockVersus struct {
	sent     []*pb.GameMessage
	ch       chan *pb.GameMessage
	finished bool
	closed   bool
	sendErr  error
}

func newMockVersus() *mockVersus { return &mockVersus{ch: make(chan *pb.GameMessage)} }

func (m *mockVersus) send(msg *pb.GameMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}
func (m *mockVersus) updates() <-chan *pb.GameMessage { return m.ch }
func (m *mockVersus) finish()                         { m.finished = true }
func (m *mockVersus) close()                          { m.closed = true }

func newTestClient(g *tetris.Game) (*Client, *mockRender) {
	r := &mockRender{}
	return &Client{
		game:    g,
		render:  r,
		options: &Options{Address: "localhost:9000", Name: "local"},
		logger:  slog.New(slog.DiscardHandler),
		ticker:  &mockTicker{ch: make(chan time.Time)},
		dial:    func(string, string) (versus, error) { return newMockVersus(), nil },
	}, r
}

func TestLobbyKeys(t *testing.T) {
	t.Run("p starts a single player game", func(t *testing.T) {
		c, r := newTestClient(tetris.NewTestGame(tetris.T))
		if quit := c.key(keyboard.KeyEvent{Rune: 'p'}); quit {
			t.Fatal("wanted 'p' not to quit")
		}
		if c.state != playing {
			t.Errorf("wanted state playing, got %d", c.state)
		}
		if r.resetCount != 1 {
			t.Errorf("wanted the screen to be reset once, got %d", r.resetCount)
		}
	})

	t.Run("q quits", func(t *testing.T) {
		c, _ := newTestClient(tetris.NewTestGame(tetris.T))
		if quit := c.key(keyboard.KeyEvent{Rune: 'q'}); !quit {
			t.Error("wanted 'q' to quit from the lobby")
		}
	})

	t.Run("o waits for an opponent", func(t *testing.T) {
		c, r := newTestClient(tetris.NewTestGame(tetris.T))
		c.key(keyboard.KeyEvent{Rune: 'o'})
		if c.state != waiting {
			t.Errorf("wanted state waiting, got %d", c.state)
		}
		if c.session == nil {
			t.Fatal("wanted a session")
		}
		if !r.lobbyIs(waitingOpponent()) {
			t.Errorf("wanted the waiting opponent message, got %v", r.lastLobby)
		}

		s := c.session.(*mockVersus)
		c.key(keyboard.KeyEvent{Rune: 'c'})
		if c.state != lobby || c.session != nil || !s.closed {
			t.Errorf("wanted 'c' to close the session and go back to the lobby")
		}
		if !r.lobbyIs(defaultLobby()) {
			t.Errorf("wanted the default lobby message, got %v", r.lastLobby)
		}
	})

	t.Run("o shows an error when the server is unreachable", func(t *testing.T) {
		c, r := newTestClient(tetris.NewTestGame(tetris.T))
		c.dial = func(string, string) (versus, error) { return nil, errors.New("connection refused") }
		c.key(keyboard.KeyEvent{Rune: 'o'})
		if c.state != lobby {
			t.Errorf("wanted state lobby, got %d", c.state)
		}
		if !r.lobbyIs(errorMessage()) {
			t.Errorf("wanted the error message, got %v", r.lastLobby)
		}
	})
}

func TestPlayingKeys(t *testing.T) {
	keys := []struct {
		key    keyboard.KeyEvent
		action tetris.Action
	}{
		{key: keyboard.KeyEvent{Rune: 's'}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, action: tetris.MoveDown},
		{key: keyboard.KeyEvent{Rune: 'a'}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'w'}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Rune: 'x'}, action: tetris.None},
	}
	for _, k := range keys {
		c, _ := newTestClient(tetris.NewTestGame(tetris.T))
		c.state = playing
		c.key(k.key)
		if c.pending != k.action {
			t.Errorf("key %v: wanted action %q, got %q", k.key, k.action, c.pending)
		}
	}

	t.Run("only the first move of a frame is kept", func(t *testing.T) {
		c, _ := newTestClient(tetris.NewTestGame(tetris.T))
		c.state = playing
		c.key(keyboard.KeyEvent{Rune: 'a'})
		c.key(keyboard.KeyEvent{Rune: 'd'})
		if c.pending != tetris.MoveLeft {
			t.Errorf("wanted action %q, got %q", tetris.MoveLeft, c.pending)
		}
	})

	t.Run("game keys do nothing in the lobby", func(t *testing.T) {
		c, _ := newTestClient(tetris.NewTestGame(tetris.T))
		c.key(keyboard.KeyEvent{Rune: 'a'})
		if c.pending != tetris.None {
			t.Errorf("wanted no action, got %q", c.pending)
		}
	})
}

func TestFrame(t *testing.T) {
	start := time.Now()

	t.Run("pending action is applied once", func(t *testing.T) {
		g := tetris.NewTestGame(tetris.I)
		c, r := newTestClient(g)
		c.state = playing
		c.pending = tetris.MoveLeft
		c.frame(start)
		c.frame(start.Add(time.Millisecond))

		want := [4]tetris.Point{{X: 3, Y: 0}, {X: 4, Y: 0}, {X: 5, Y: 0}, {X: 6, Y: 0}}
		if got := g.Read().Piece.Blocks; got != want {
			t.Errorf("wanted %v, got %v", want, got)
		}
		if c.pending != tetris.None {
			t.Errorf("wanted the pending action to be cleared, got %q", c.pending)
		}
		if r.singleCount != 2 {
			t.Errorf("wanted 2 single player renders, got %d", r.singleCount)
		}
	})

	t.Run("elapsed time drives gravity", func(t *testing.T) {
		g := tetris.NewTestGame(tetris.I)
		c, _ := newTestClient(g)
		c.state = playing
		c.frame(start)
		if y := g.Read().Piece.Blocks[0].Y; y != 0 {
			t.Errorf("wanted the first frame to keep the piece on row 0, got %d", y)
		}
		c.frame(start.Add(600 * time.Millisecond))
		if y := g.Read().Piece.Blocks[0].Y; y != 1 {
			t.Errorf("wanted the piece on row 1, got %d", y)
		}
	})

	t.Run("frames are ignored outside a game", func(t *testing.T) {
		c, r := newTestClient(tetris.NewTestGame(tetris.I))
		c.frame(start)
		if r.singleCount != 0 || r.multiCount != 0 {
			t.Error("wanted nothing rendered in the lobby")
		}
	})

	t.Run("game over goes back to the lobby", func(t *testing.T) {
		c, r := newTestClient(tetris.NewTestGame(tetris.O, tetris.Point{X: 4, Y: 2}))
		c.state = playing
		c.frame(start)
		if c.state != lobby {
			t.Errorf("wanted state lobby, got %d", c.state)
		}
		if !r.lobbyIs(gameOver()) {
			t.Errorf("wanted the game over message, got %v", r.lastLobby)
		}
	})
}

func TestOnline(t *testing.T) {
	start := time.Now()

	online := func(t *testing.T, g *tetris.Game) (*Client, *mockRender, *mockVersus) {
		t.Helper()
		c, r := newTestClient(g)
		c.key(keyboard.KeyEvent{Rune: 'o'})
		s := c.session.(*mockVersus)
		c.remoteUpdate(&pb.GameMessage{GameID: "id", Name: "remote", Started: true}, true)
		if c.state != playing {
			t.Fatalf("wanted state playing, got %d", c.state)
		}
		return c, r, s
	}

	t.Run("messages before the start are ignored", func(t *testing.T) {
		c, _ := newTestClient(tetris.NewTestGame(tetris.T))
		c.key(keyboard.KeyEvent{Rune: 'o'})
		c.remoteUpdate(&pb.GameMessage{Name: "remote"}, true)
		if c.state != waiting {
			t.Errorf("wanted state waiting, got %d", c.state)
		}
	})

	t.Run("frames are rendered side by side and sent", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.T))
		c.frame(start)
		if r.multiCount != 1 {
			t.Errorf("wanted 1 multiplayer render, got %d", r.multiCount)
		}
		if got := r.lastMulti.remote.GetName(); got != "remote" {
			t.Errorf("wanted the opponent name 'remote', got %q", got)
		}
		if len(s.sent) != 1 {
			t.Fatalf("wanted 1 message sent, got %d", len(s.sent))
		}
		if m := s.sent[0]; m.GetName() != "local" || !m.GetStarted() || m.GetGameOver() {
			t.Errorf("unexpected message %+v", m)
		}

		c.remoteUpdate(&pb.GameMessage{Name: "remote", Started: true, Lines: 3}, true)
		c.frame(start.Add(time.Millisecond))
		if got := r.lastMulti.remote.GetLines(); got != 3 {
			t.Errorf("wanted the opponent lines to be 3, got %d", got)
		}
	})

	t.Run("opponent game over is a win", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.T))
		c.remoteUpdate(&pb.GameMessage{Name: "remote", Started: true, GameOver: true}, true)
		if c.state != lobby || c.session != nil || !s.closed {
			t.Error("wanted the session closed and the client back in the lobby")
		}
		if !r.lobbyIs(youWon()) {
			t.Errorf("wanted the you won message, got %v", r.lastLobby)
		}
	})

	t.Run("local game over is sent before finishing", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.O))
		// the reset on start emptied the grid, block the spawn column again.
		c.game = tetris.NewTestGame(tetris.O, tetris.Point{X: 4, Y: 2})
		c.frame(start)
		if len(s.sent) != 1 || !s.sent[0].GetGameOver() {
			t.Fatalf("wanted a game over message, got %v", s.sent)
		}
		if !s.finished {
			t.Error("wanted the session to stop sending")
		}
		if !r.lobbyIs(gameOver()) {
			t.Errorf("wanted the game over message, got %v", r.lastLobby)
		}

		// the server closes the stream afterwards.
		c.remoteUpdate(nil, false)
		if c.session != nil || !s.closed {
			t.Error("wanted the session closed")
		}
		if !r.lobbyIs(gameOver()) {
			t.Errorf("wanted the game over message to stay, got %v", r.lastLobby)
		}
	})

	t.Run("a solo game after a loss drops the old session", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.O))
		c.game = tetris.NewTestGame(tetris.O, tetris.Point{X: 4, Y: 2})
		c.frame(start)
		if !s.finished {
			t.Fatal("wanted the session to stop sending")
		}

		c.key(keyboard.KeyEvent{Rune: 'p'})
		if c.session != nil || !s.closed {
			t.Fatal("wanted the old session closed")
		}
		c.frame(start.Add(time.Millisecond))
		if len(s.sent) != 1 {
			t.Errorf("wanted nothing sent after the loss, got %d messages", len(s.sent))
		}
		if r.singleCount != 1 {
			t.Errorf("wanted a single player render, got %d", r.singleCount)
		}
		if c.updates() != nil {
			t.Error("wanted no stream updates while playing solo")
		}
	})

	t.Run("opponent leaving shows an error", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.T))
		c.remoteUpdate(nil, false)
		if c.state != lobby || !s.closed {
			t.Error("wanted the session closed and the client back in the lobby")
		}
		if !r.lobbyIs(waitingOpponentError()) {
			t.Errorf("wanted the opponent left message, got %v", r.lastLobby)
		}
	})

	t.Run("send errors end the game", func(t *testing.T) {
		c, r, s := online(t, tetris.NewTestGame(tetris.T))
		s.sendErr = errors.New("broken pipe")
		c.frame(start)
		if c.state != lobby || !s.closed {
			t.Error("wanted the session closed and the client back in the lobby")
		}
		if !r.lobbyIs(errorMessage()) {
			t.Errorf("wanted the error message, got %v", r.lastLobby)
		}
	})
}

func TestStart(t *testing.T) {
	tests := []struct {
		name string
		keys []keyboard.KeyEvent
	}{
		{name: "q quits from the lobby", keys: []keyboard.KeyEvent{{Rune: 'q'}}},
		{name: "ctrl+c quits while playing", keys: []keyboard.KeyEvent{{Rune: 'p'}, {Key: keyboard.KeyCtrlC}}},
		{name: "keyboard errors quit", keys: []keyboard.KeyEvent{{Err: errors.New("tty gone")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := newTestClient(tetris.NewTestGame(tetris.T))
			kbCh := make(chan keyboard.KeyEvent)
			c.kbCh = kbCh
			var kbClosed bool
			c.kbClose = func() error { kbClosed = true; return nil }
			ticker := c.ticker.(*mockTicker)

			done := make(chan struct{})
			go func() { c.Start(); close(done) }()

			for _, k := range tt.keys {
				kbCh <- k
			}

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("timeout waiting for quit")
			}
			if !ticker.stopped || !kbClosed {
				t.Error("wanted the ticker stopped and the keyboard closed")
			}
			if !r.lobbyIs(defaultLobby()) {
				t.Errorf("wanted the default lobby on start, got %v", r.lastLobby)
			}
		})
	}
}

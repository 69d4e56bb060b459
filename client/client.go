// Package client plays the game in a terminal, alone or against an opponent
// through the versus relay server.
package client

import (
	"blockdrop/pb"
	"blockdrop/tetris"
	"fmt"
	"log/slog"
	"time"

	"github.com/eiannone/keyboard"
)

const fps = 60

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

// Ticker paces the frames of the game loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time { return t.ticker.C }
func (t *wrappedTicker) Stop()               { t.ticker.Stop() }

type renderer interface {
	singlePlayer(*tetris.Snapshot)
	multiPlayer(*mpData)
	lobby(*message)
	reset()
}

type Client struct {
	game    *tetris.Game
	render  renderer
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	kbClose func() error
	ticker  Ticker
	dial    dialer

	// everything below is owned by the Start loop.
	state   clientState
	session versus
	remote  *pb.GameMessage
	pending tetris.Action
	last    time.Time
}

type Options struct {
	Address string
	Name    string
}

func New(l *slog.Logger, g *tetris.Game, o *Options) (*Client, error) {
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	cfg := g.Config()
	return &Client{
		game:    g,
		render:  newRender(l, o.Name, cfg.Width, cfg.Height),
		options: o,
		logger:  l,
		kbCh:    kb,
		kbClose: keyboard.Close,
		ticker:  newWrappedTicker(time.Second / fps),
		dial:    dialVersus(l),
		state:   lobby,
	}, nil
}

// Start runs the lobby and the game loop until the player quits.
func (c *Client) Start() {
	defer c.stop()
	c.render.reset()
	c.render.lobby(defaultLobby())
	for {
		select {
		case event, ok := <-c.kbCh:
			if !ok {
				c.logger.Error("Keyboard events channel closed unexpectedly")
				return
			}
			if event.Err != nil {
				c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
				return
			}
			if event.Key == keyboard.KeyCtrlC {
				return
			}
			if quit := c.key(event); quit {
				return
			}
		case now := <-c.ticker.C():
			c.frame(now)
		case msg, ok := <-c.updates():
			c.remoteUpdate(msg, ok)
		}
	}
}

func (c *Client) stop() {
	c.ticker.Stop()
	if c.session != nil {
		c.session.close()
	}
	if c.kbClose != nil {
		if err := c.kbClose(); err != nil {
			c.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}
}

// updates is nil while offline, which blocks its select case.
func (c *Client) updates() <-chan *pb.GameMessage {
	if c.session == nil {
		return nil
	}
	return c.session.updates()
}

func (c *Client) key(event keyboard.KeyEvent) bool {
	switch c.state {
	case lobby:
		switch event.Rune {
		case 'p':
			// a lost online game keeps its session until the server closes it.
			c.endSession()
			c.play()
		case 'o':
			c.online()
		case 'q':
			return true
		}
	case waiting:
		if event.Rune == 'c' {
			c.endSession()
			c.render.lobby(defaultLobby())
		}
	case playing:
		var a tetris.Action
		switch {
		case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
			a = tetris.MoveDown
		case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
			a = tetris.MoveLeft
		case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
			a = tetris.MoveRight
		case event.Key == keyboard.KeyArrowUp || event.Rune == 'w':
			a = tetris.Rotate
		}
		// one move per frame, extra keys before the next frame are dropped.
		if c.pending == tetris.None {
			c.pending = a
		}
	}
	return false
}

func (c *Client) play() {
	if err := c.game.Reset(); err != nil {
		c.logger.Error("unable to start game", slog.String("error", err.Error()))
		c.render.lobby(errorMessage())
		return
	}
	c.state = playing
	c.pending = tetris.None
	c.last = time.Time{}
	c.render.reset()
}

func (c *Client) online() {
	c.endSession()
	s, err := c.dial(c.options.Address, c.options.Name)
	if err != nil {
		c.logger.Error("unable to join online game", slog.String("error", err.Error()))
		c.render.lobby(errorMessage())
		return
	}
	c.session = s
	c.state = waiting
	c.render.lobby(waitingOpponent())
}

func (c *Client) endSession() {
	if c.session != nil {
		c.session.close()
		c.session = nil
	}
	c.remote = nil
	c.state = lobby
}

func (c *Client) frame(now time.Time) {
	if c.state != playing {
		return
	}
	var dt time.Duration
	if !c.last.IsZero() {
		dt = now.Sub(c.last)
	}
	c.last = now

	err := c.game.Update(dt, c.pending)
	c.pending = tetris.None
	if err != nil {
		c.logger.Error("unable to update game", slog.String("error", err.Error()))
		c.endSession()
		c.render.lobby(errorMessage())
		return
	}

	s := c.game.Read()
	if c.session == nil {
		c.render.singlePlayer(s)
	} else {
		c.render.multiPlayer(&mpData{local: s, remote: c.remote})
		if err := c.session.send(snapshot2Proto(c.options.Name, s)); err != nil {
			c.logger.Error("unable to send game update", slog.String("error", err.Error()))
			c.endSession()
			c.render.lobby(errorMessage())
			return
		}
	}

	if s.Over {
		c.state = lobby
		if c.session != nil {
			// the opponent still has to get the game over, the stream closes from the server.
			c.session.finish()
		}
		c.render.lobby(gameOver())
	}
}

func (c *Client) remoteUpdate(msg *pb.GameMessage, ok bool) {
	if !ok {
		c.logger.Debug("online game stream ended")
		wasOnline := c.state != lobby
		c.endSession()
		if wasOnline {
			c.render.lobby(waitingOpponentError())
		}
		return
	}

	switch c.state {
	case waiting:
		if !msg.GetStarted() {
			return
		}
		c.logger.Info("online game started", slog.String("game", msg.GameID), slog.String("opponent", msg.GetName()))
		c.remote = &pb.GameMessage{Name: msg.GetName()}
		c.play()
	case playing:
		c.remote = msg
		if msg.GetGameOver() {
			c.endSession()
			c.render.lobby(youWon())
		}
	}
}

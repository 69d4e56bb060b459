package server

import (
	"blockdrop/pb"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

type player struct {
	name  string
	inbox chan *pb.GameMessage
}

type game struct {
	id      string
	players [2]*player
	started chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newGame(name string) *game {
	return &game{
		id:      uuid.New().String(),
		players: [2]*player{newPlayer(name)},
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func newPlayer(name string) *player {
	return &player{name: name, inbox: make(chan *pb.GameMessage, 10)}
}

// end lets the other player's session know the game finished.
func (g *game) end() {
	g.once.Do(func() { close(g.done) })
}

type versusServer struct {
	pb.UnimplementedVersusServer
	logger  *slog.Logger
	waiting *game
	mu      sync.Mutex
}

func New(l *slog.Logger) pb.VersusServer {
	return &versusServer{logger: l}
}

// join pairs a player with the one waiting, or makes them wait for the next one.
func (s *versusServer) join(name string) (*game, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiting == nil {
		s.waiting = newGame(name)
		s.logger.Debug("player waiting", slog.String("game", s.waiting.id), slog.String("name", name))
		return s.waiting, 0
	}
	g := s.waiting
	s.waiting = nil
	g.players[1] = newPlayer(name)
	close(g.started)
	s.logger.Info("game started", slog.String("game", g.id), slog.String("p1", g.players[0].name), slog.String("p2", name))
	return g, 1
}

func (s *versusServer) abandon(g *game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiting == g {
		s.waiting = nil
		s.logger.Debug("player left before the game started", slog.String("game", g.id))
	}
}

// wait blocks until an opponent joins g. A player leaving first also ends g, so an
// opponent that joined in the meantime doesn't wait on them.
func (s *versusServer) wait(ctx context.Context, g *game) error {
	select {
	case <-g.started:
		return nil
	case <-ctx.Done():
		s.abandon(g)
		g.end()
		return ctx.Err()
	}
}

func (s *versusServer) Play(stream grpc.BidiStreamingServer[pb.GameMessage, pb.GameMessage]) error {
	first, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to receive first Play message: %w", err)
	}

	g, idx := s.join(first.GetName())
	ctx := stream.Context()
	defer g.end()
	if err := s.wait(ctx, g); err != nil {
		return err
	}

	me, opponent := g.players[idx], g.players[1-idx]
	if err := stream.Send(&pb.GameMessage{GameID: g.id, Name: opponent.name, Started: true}); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	rcvErr := make(chan error, 1)
	go func() { rcvErr <- s.forward(stream, g, opponent) }()

	for {
		select {
		case msg := <-me.inbox:
			if err := stream.Send(msg); err != nil {
				return fmt.Errorf("failed to send Play message: %w", err)
			}
		case err := <-rcvErr:
			return err
		case <-g.done:
			// the opponent left. whatever it sent last still goes out.
			for {
				select {
				case msg := <-me.inbox:
					if err := stream.Send(msg); err != nil {
						return fmt.Errorf("failed to send Play message: %w", err)
					}
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// forward relays what the player sends to the opponent's inbox until the stream closes.
func (s *versusServer) forward(stream grpc.BidiStreamingServer[pb.GameMessage, pb.GameMessage], g *game, opponent *player) error {
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to receive Play message: %w", err)
		}
		msg.GameID = g.id
		select {
		case opponent.inbox <- msg:
		case <-g.done:
			return nil
		}
	}
}

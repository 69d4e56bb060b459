package client

import (
	"blockdrop/pb"
	"context"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// versus is an online game against another player through the relay server.
type versus interface {
	send(*pb.GameMessage) error
	// updates delivers the opponent's messages and is closed when the stream ends.
	updates() <-chan *pb.GameMessage
	// finish stops sending. The server ends the stream once it relayed what was sent.
	finish()
	close()
}

type dialer func(addr, name string) (versus, error)

type session struct {
	conn   *grpc.ClientConn
	stream grpc.BidiStreamingClient[pb.GameMessage, pb.GameMessage]
	cancel context.CancelFunc
	rcvCh  chan *pb.GameMessage
	logger *slog.Logger
}

func dialVersus(l *slog.Logger) dialer {
	return func(addr, name string) (versus, error) {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("unable to create gRPC client: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		stream, err := pb.NewVersusClient(conn).Play(ctx)
		if err != nil {
			cancel()
			conn.Close() //nolint:errcheck
			return nil, fmt.Errorf("unable to create gRPC Play stream: %w", err)
		}
		// Send initial message, the server answers once an opponent joins.
		if err := stream.Send(&pb.GameMessage{Name: name}); err != nil {
			cancel()
			conn.Close() //nolint:errcheck
			return nil, fmt.Errorf("unable to send initial message: %w", err)
		}

		s := &session{
			conn:   conn,
			stream: stream,
			cancel: cancel,
			rcvCh:  make(chan *pb.GameMessage),
			logger: l,
		}
		go s.receive(ctx)
		return s, nil
	}
}

func (s *session) receive(ctx context.Context) {
	defer close(s.rcvCh)
	for {
		rcv, err := s.stream.Recv()
		if err != nil {
			if err == io.EOF {
				s.logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
				return
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled { //nolint: gocritic
				s.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			} else if ok && st.Code() == codes.DeadlineExceeded {
				s.logger.Debug("stream.Recv() closed with DeadlineExceeded", slog.String("msg", st.Message()))
			} else {
				s.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		select {
		case s.rcvCh <- rcv:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) send(m *pb.GameMessage) error {
	if err := s.stream.Send(m); err != nil {
		if err == io.EOF {
			return fmt.Errorf("opponent closed the game: %w", err)
		}
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}

func (s *session) updates() <-chan *pb.GameMessage { return s.rcvCh }

func (s *session) finish() {
	if err := s.stream.CloseSend(); err != nil {
		s.logger.Debug("unable to close gRPC stream", slog.String("error", err.Error()))
	}
}

func (s *session) close() {
	if err := s.stream.CloseSend(); err != nil {
		s.logger.Debug("unable to close gRPC stream", slog.String("error", err.Error()))
	}
	s.cancel()
	if err := s.conn.Close(); err != nil {
		s.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
	}
}

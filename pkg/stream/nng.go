package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/push"
	// register all transports (tcp, ipc, inproc, ws)
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// EndOfStream is the message a producer sends to end an NNG stream.
const EndOfStream = "EOF"

// nngPollInterval bounds how long Next blocks before rechecking its context.
const nngPollInterval = 100 * time.Millisecond

// NNGSource receives edges on a PULL socket, one edge line per message.
type NNGSource struct {
	sock mangos.Socket
	addr string
	msgs int64
}

// ListenNNG binds a PULL socket at addr, e.g. "tcp://127.0.0.1:9100".
func ListenNNG(addr string) (*NNGSource, error) {
	sock, err := pull.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("stream: create pull socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, nngPollInterval); err != nil {
		sock.Close()
		return nil, fmt.Errorf("stream: set recv deadline: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("stream: listen on %s: %w", addr, err)
	}
	return &NNGSource{sock: sock, addr: addr}, nil
}

// Next blocks until an edge arrives, the producer sends EndOfStream, or ctx
// is done.
func (s *NNGSource) Next(ctx context.Context) (triest.Edge, error) {
	for {
		if err := ctx.Err(); err != nil {
			return triest.Edge{}, err
		}
		msg, err := s.sock.Recv()
		if errors.Is(err, mangos.ErrRecvTimeout) {
			continue
		}
		if err != nil {
			return triest.Edge{}, fmt.Errorf("stream: recv on %s: %w", s.addr, err)
		}
		s.msgs++

		text := strings.TrimSpace(string(msg))
		if text == EndOfStream {
			return triest.Edge{}, io.EOF
		}
		edge, ok, err := parseLine(text, s.msgs)
		if err != nil {
			return triest.Edge{}, err
		}
		if ok {
			return edge, nil
		}
	}
}

// Addr returns the listen address.
func (s *NNGSource) Addr() string { return s.addr }

func (s *NNGSource) Name() string { return "nng" }

func (s *NNGSource) Close() error {
	return s.sock.Close()
}

// NNGSink pushes edges to an NNGSource.
type NNGSink struct {
	sock mangos.Socket
}

// DialNNG connects a PUSH socket to addr.
func DialNNG(addr string, sendTimeout time.Duration) (*NNGSink, error) {
	sock, err := push.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("stream: create push socket: %w", err)
	}
	if sendTimeout > 0 {
		if err := sock.SetOption(mangos.OptionSendDeadline, sendTimeout); err != nil {
			sock.Close()
			return nil, fmt.Errorf("stream: set send deadline: %w", err)
		}
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("stream: dial %s: %w", addr, err)
	}
	return &NNGSink{sock: sock}, nil
}

// Send pushes one edge.
func (s *NNGSink) Send(e triest.Edge) error {
	return s.sock.Send(fmt.Appendf(nil, "%d %d", e.U, e.V))
}

// Finish tells the receiver the stream has ended.
func (s *NNGSink) Finish() error {
	return s.sock.Send([]byte(EndOfStream))
}

func (s *NNGSink) Close() error {
	return s.sock.Close()
}

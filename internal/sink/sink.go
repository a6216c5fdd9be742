// Package sink delivers payloads leaving the process. A sink is called from a
// channel listener once per publish and does not retry.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/nats-io/nats.go"
)

var ErrNoSubject = errors.New("nats subject is required")

type Sink interface {
	Deliver(ctx context.Context, payload []byte) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, payload []byte) error

func (fn Func) Deliver(ctx context.Context, payload []byte) error {
	return fn(ctx, payload)
}

// NATS publishes every payload to a subject. The connection stays owned by the
// caller.
type NATS struct {
	conn    *nats.Conn
	subject string
}

func NewNATS(conn *nats.Conn, subject string) (*NATS, error) {
	var err error
	if conn == nil {
		err = errors.Join(err, errors.New("nats connection is required"))
	}
	if subject == "" {
		err = errors.Join(err, ErrNoSubject)
	}
	if err != nil {
		return nil, err
	}
	return &NATS{conn: conn, subject: subject}, nil
}

func (s *NATS) Subject() string {
	return s.subject
}

// Deliver hands payload to the connection's outbound buffer without waiting
// for the server, so it also succeeds with a done ctx during shutdown. Flush
// bounds the wait for the buffered payloads.
func (s *NATS) Deliver(_ context.Context, payload []byte) error {
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	return nil
}

// Flush waits until the server has processed every published payload.
func (s *NATS) Flush(ctx context.Context) error {
	return s.conn.FlushWithContext(ctx)
}

// Log writes payloads to a logger at info level.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With(slogx.LoggerName("sink"))}
}

func (s *Log) Deliver(ctx context.Context, payload []byte) error {
	s.logger.InfoContext(ctx, "payload delivered", slogx.ByteString("payload", payload))
	return nil
}

package conduit

import (
	"context"
	"log/slog"

	"github.com/casualjim/conduit/events"
	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/casualjim/conduit/pkg/stdx"
	"github.com/casualjim/conduit/pkg/uuidx"
)

// Process is the handle application components use to talk to a broker.
type Process struct {
	broker *Broker
	name   string
	logger *slog.Logger
}

// NewProcess binds a named process to b. An empty name gets a generated one.
func NewProcess(b *Broker, name string) *Process {
	if name == "" {
		name = uuidx.Named("process")
	}
	return &Process{
		broker: b,
		name:   name,
		logger: b.logger.With(slogx.Process(name)),
	}
}

func (p *Process) Name() string {
	return p.name
}

func (p *Process) Logger() *slog.Logger {
	return p.logger
}

func (p *Process) SubscribeEvent(eventType string, handler EventHandler) {
	p.broker.SubscribeEvent(eventType, handler)
}

func (p *Process) PublishEvent(eventType string, ev events.Event) {
	p.broker.PublishEvent(eventType, ev)
}

// Subscribe registers listener for data published to channel.
func Subscribe[T any](p *Process, channel string, listener ChannelListener[T]) error {
	return SubscribeChannel(p.broker, channel, listener)
}

// SendToChannel fans data out to the listeners of channel.
func SendToChannel[T any](p *Process, channel string, data T) error {
	return PublishToChannel(p.broker, channel, data)
}

// Send appends data to the queue of channel for a later Receive.
func Send[T any](p *Process, channel string, data T) error {
	ch, err := GetOrCreateChannel[T](p.broker, channel)
	if err != nil {
		return err
	}
	ch.Send(data)
	return nil
}

// Receive blocks until channel holds a value or ctx is done.
func Receive[T any](ctx context.Context, p *Process, channel string) (T, error) {
	ch, err := GetOrCreateChannel[T](p.broker, channel)
	if err != nil {
		return stdx.Zero[T](), err
	}
	return ch.ReceiveContext(ctx)
}

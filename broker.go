package conduit

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/casualjim/conduit/events"
	"github.com/casualjim/conduit/internal/executor"
	"github.com/casualjim/conduit/internal/registry"
	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/casualjim/conduit/pkg/stdx"
	"github.com/casualjim/conduit/queue"
	"github.com/fogfish/opts"
)

// State is the lifecycle state of a broker's event loop.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// EventHandler reacts to an event. Handlers run one at a time on the event
// loop; ctx is done when the loop stops.
type EventHandler func(ctx context.Context, ev events.Event) error

// ChannelListener receives data published to a channel. Listeners run on the
// worker pool; ctx is done once the broker is closed.
type ChannelListener[T any] func(ctx context.Context, data T) error

type pendingTask struct {
	eventType string
	event     events.Event
	handler   EventHandler
}

// channelEntry pairs a *Channel[T] with the type it was created for.
type channelEntry struct {
	typ     reflect.Type
	channel any
}

type handlerList struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

func (l *handlerList) add(h EventHandler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

func (l *handlerList) snapshot() []EventHandler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handlers[:len(l.handlers):len(l.handlers)]
}

type listenerList[T any] struct {
	mu        sync.RWMutex
	listeners []ChannelListener[T]
}

func (l *listenerList[T]) add(fn ChannelListener[T]) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *listenerList[T]) snapshot() []ChannelListener[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.listeners[:len(l.listeners):len(l.listeners)]
}

// Broker owns the channel registry, the event subscriptions with their event
// loop, and the worker pool delivering channel data to listeners.
//
// The channel registry, the event handlers, the channel listeners and the
// pending event queue are independent structures; none of them shares a lock
// with another.
type Broker struct {
	opts    brokerOptions
	logger  *slog.Logger
	metrics *metrics

	channels  registry.Registry[*channelEntry]
	handlers  registry.Registry[*handlerList]
	listeners registry.Registry[any]
	pending   queue.Queue[pendingTask]
	pool      *executor.Pool

	// ctx is handed to listeners and cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	state    atomic.Int32
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates an idle broker. It panics when an option fails to apply.
func New(options ...opts.Option[brokerOptions]) *Broker {
	o := defaultOptions()
	if err := opts.Apply(&o, options); err != nil {
		panic(err)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.pollInterval <= 0 {
		o.pollInterval = defaultPollInterval
	}

	logger := o.logger.With(slogx.LoggerName("broker"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		opts:      o,
		logger:    logger,
		metrics:   newMetrics(o.registerer),
		channels:  registry.New[*channelEntry](),
		handlers:  registry.New[*handlerList](),
		listeners: registry.New[any](),
		pending:   queue.NewBlocking[pendingTask](),
		pool:      executor.NewPool(o.workers, o.logger),
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
	}
}

func (b *Broker) State() State {
	return State(b.state.Load())
}

// Pending is the number of event tasks waiting for the loop. The value is a
// snapshot and may be stale by the time it is read.
func (b *Broker) Pending() int {
	return b.pending.Size()
}

// SubscribeEvent registers handler for events of eventType. Handlers for the
// same type are invoked in registration order.
func (b *Broker) SubscribeEvent(eventType string, handler EventHandler) {
	list, _ := b.handlers.GetOrAdd(eventType, func() *handlerList { return &handlerList{} })
	list.add(handler)
	b.logger.Debug("event handler registered", slogx.EventType(eventType))
}

// PublishEvent queues ev for every handler registered for eventType. Handlers
// run later on the event loop. Events without a handler are dropped.
func (b *Broker) PublishEvent(eventType string, ev events.Event) {
	list, ok := b.handlers.Get(eventType)
	var handlers []EventHandler
	if ok {
		handlers = list.snapshot()
	}
	if len(handlers) == 0 {
		b.metrics.dropped.WithLabelValues(eventType).Inc()
		b.logger.Debug("no handler for event", slogx.EventType(eventType))
		return
	}
	for _, h := range handlers {
		b.pending.Push(pendingTask{eventType: eventType, event: ev, handler: h})
	}
	b.metrics.published.WithLabelValues(eventType).Add(float64(len(handlers)))
	b.metrics.pending.Set(float64(b.pending.Size()))
}

// Run executes pending event tasks one at a time on the calling goroutine
// until d has elapsed, ctx is done or Stop is called. When nothing is pending
// the loop sleeps for the poll interval, never past the deadline. Tasks still
// pending when the loop stops stay queued.
//
// Run returns ErrLoopState when the broker is not idle.
func (b *Broker) Run(ctx context.Context, d time.Duration) error {
	if !b.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("%w: broker is %s", ErrLoopState, b.State())
	}
	start := time.Now()
	ctx, cancel := context.WithDeadline(ctx, start.Add(d))
	defer cancel()

	b.logger.Info("event loop started", slog.Duration("duration", d))
	defer func() {
		b.state.Store(int32(StateStopped))
		b.logger.Info("event loop stopped",
			slogx.Elapsed(start),
			slog.Int("pending", b.pending.Size()),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.stopped:
			return nil
		default:
		}

		if t, err := b.pending.Pop(); err == nil {
			b.metrics.pending.Set(float64(b.pending.Size()))
			b.dispatch(ctx, t)
			continue
		}

		remaining := d - time.Since(start)
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(min(b.opts.pollInterval, remaining))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		case <-b.stopped:
			timer.Stop()
		}
	}
}

func (b *Broker) dispatch(ctx context.Context, t pendingTask) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.failures.WithLabelValues(sourceEvent).Inc()
			b.logger.Error("event handler panicked",
				slogx.EventType(t.eventType),
				slog.Any("panic", r),
			)
		}
	}()
	if err := t.handler(ctx, t.event); err != nil {
		b.metrics.failures.WithLabelValues(sourceEvent).Inc()
		b.logger.Error("event handler failed", slogx.EventType(t.eventType), slogx.Error(err))
	}
}

// Stop makes a running loop return. A broker stopped before Run was called
// can no longer run.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopped)
	})
	b.state.CompareAndSwap(int32(StateIdle), int32(StateStopped))
}

// Close stops the loop and shuts the worker pool down. Listener deliveries
// already queued keep running with a live context; if they have not finished
// within the shutdown grace period the listener context is cancelled so that
// blocked listeners can return. Publishing to a channel afterwards fails with
// ErrPoolStopped.
func (b *Broker) Close() error {
	b.Stop()

	drained := make(chan struct{})
	go func() {
		b.pool.Shutdown()
		close(drained)
	}()

	timer := time.NewTimer(b.opts.shutdownGrace)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		b.logger.Warn("listener deliveries outlived the shutdown grace, cancelling",
			slog.Int("queued", b.pool.Pending()),
			slog.Duration("grace", b.opts.shutdownGrace),
		)
		b.cancel()
		<-drained
	}
	b.cancel()

	b.logger.Debug("broker closed",
		slog.Int("channels", b.channels.Len()),
		slog.Int("event_types", b.handlers.Len()),
	)
	return nil
}

// Channels returns the names of every channel created so far, in no
// particular order.
func (b *Broker) Channels() []string {
	names := make([]string, 0, b.channels.Len())
	b.channels.Range(func(name string, _ *channelEntry) bool {
		names = append(names, name)
		return true
	})
	return names
}

// GetOrCreateChannel returns the channel registered under name, creating it
// for type T on first use.
func GetOrCreateChannel[T any](b *Broker, name string) (*Channel[T], error) {
	typ := reflect.TypeFor[T]()
	entry, loaded := b.channels.GetOrAdd(name, func() *channelEntry {
		return &channelEntry{typ: typ, channel: newChannel[T](name, b.opts.queueKind)}
	})
	if entry.typ != typ {
		return nil, fmt.Errorf("%w: channel %q carries %s, requested %s", ErrTypeMismatch, name, entry.typ, typ)
	}
	if !loaded {
		b.logger.Debug("channel created", slogx.Channel(name), slog.String("type", typ.String()))
	}
	return entry.channel.(*Channel[T]), nil
}

// MustChannel is GetOrCreateChannel that panics on a type mismatch.
func MustChannel[T any](b *Broker, name string) *Channel[T] {
	return stdx.Must(GetOrCreateChannel[T](b, name))
}

// SubscribeChannel registers listener for data published to name.
func SubscribeChannel[T any](b *Broker, name string, listener ChannelListener[T]) error {
	if _, err := GetOrCreateChannel[T](b, name); err != nil {
		return err
	}
	v, _ := b.listeners.GetOrAdd(name, func() any { return &listenerList[T]{} })
	list, ok := v.(*listenerList[T])
	if !ok {
		return fmt.Errorf("%w: listeners of %q", ErrTypeMismatch, name)
	}
	list.add(listener)
	b.logger.Debug("channel listener registered", slogx.Channel(name))
	return nil
}

// PublishToChannel submits one delivery of data per listener of name to the
// worker pool. Deliveries run concurrently and in no particular order. Data
// published to a name without listeners is dropped.
//
// A closed broker is reported with ErrPoolStopped before any listener is
// scheduled. When Close races with an ongoing publish, the listeners scheduled
// before the pool stopped still receive data and ErrPoolStopped is returned
// for the rest.
func PublishToChannel[T any](b *Broker, name string, data T) error {
	if _, err := GetOrCreateChannel[T](b, name); err != nil {
		return err
	}
	if b.pool.Stopped() {
		return ErrPoolStopped
	}
	v, ok := b.listeners.Get(name)
	if !ok {
		b.logger.Debug("no listener for channel", slogx.Channel(name))
		return nil
	}
	list, ok := v.(*listenerList[T])
	if !ok {
		return fmt.Errorf("%w: listeners of %q", ErrTypeMismatch, name)
	}
	for _, listener := range list.snapshot() {
		err := b.pool.Go(func() {
			b.deliver(name, func() error { return listener(b.ctx, data) })
		})
		if err != nil {
			return err
		}
		b.metrics.deliveries.WithLabelValues(name).Inc()
	}
	return nil
}

func (b *Broker) deliver(channel string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.failures.WithLabelValues(sourceListener).Inc()
			b.logger.Error("channel listener panicked", slogx.Channel(channel), slog.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		b.metrics.failures.WithLabelValues(sourceListener).Inc()
		b.logger.Error("channel listener failed", slogx.Channel(channel), slogx.Error(err))
	}
}

/*
Package conduit provides an in-process publish/subscribe runtime for programs that move data
between many goroutines.

The package is built around a few small abstractions:

  - Channels: named, typed FIFO queues carrying data from producers to consumers
  - Events: typed notifications dispatched one at a time by the broker's event loop
  - Listeners: callbacks fanned out concurrently on a fixed worker pool when data is published
  - Processes: a façade application code uses instead of touching the broker directly

# Basic Usage

A broker is constructed explicitly and handed to every component that needs it:

	b := conduit.New(
		conduit.WithWorkers(4),
		conduit.WithPollInterval(100*time.Millisecond),
	)
	defer b.Close()

	producer := conduit.NewProcess(b, "producer")
	consumer := conduit.NewProcess(b, "consumer")

	consumer.SubscribeEvent(events.StatusChangeType, func(ctx context.Context, ev events.Event) error {
		// react to status changes, one handler at a time
		return nil
	})

	_ = conduit.Subscribe(consumer, "DataChannel", func(ctx context.Context, data []byte) error {
		// runs on a pool worker for every publish
		return nil
	})

	go func() {
		_ = conduit.SendToChannel(producer, "DataChannel", []byte(`{"temperature":21}`))
	}()

	if err := b.Run(ctx, 10*time.Second); err != nil {
		// the broker was already running or stopped
	}

# Channels

A channel is created lazily the first time a name is looked up and is bound to the type used in
that lookup. Later lookups with the same type return the same instance; lookups with another type
fail with ErrTypeMismatch. The queue backing a channel is selected once per broker with
WithQueueKind.

# Event loop

PublishEvent never runs handlers on the caller's goroutine. It enqueues one pending task per
registered handler and Run executes them in publication order on the goroutine that called Run.
A handler that returns an error or panics is logged and counted; the loop keeps going. Tasks still
pending when Run stops are left in place.

# Listener fan-out

PublishToChannel submits one task per registered listener to the broker's worker pool, so
listeners for the same publish run concurrently and in no particular order. Close stops accepting
new deliveries, runs the ones already queued and joins the workers.
*/
package conduit

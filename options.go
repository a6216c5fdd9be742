package conduit

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/casualjim/conduit/queue"
	"github.com/fogfish/opts"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultPollInterval  = 200 * time.Millisecond
	defaultShutdownGrace = 5 * time.Second
)

type brokerOptions struct {
	workers       int
	pollInterval  time.Duration
	queueKind     queue.Kind
	shutdownGrace time.Duration
	logger        *slog.Logger
	registerer    prometheus.Registerer
}

func defaultOptions() brokerOptions {
	return brokerOptions{
		workers:       runtime.NumCPU(),
		pollInterval:  defaultPollInterval,
		queueKind:     queue.KindBlocking,
		shutdownGrace: defaultShutdownGrace,
	}
}

var (
	// WithWorkers sets the number of goroutines delivering to channel listeners.
	WithWorkers = opts.ForName[brokerOptions, int]("workers")
	// WithPollInterval sets how long the event loop sleeps when nothing is pending.
	WithPollInterval = opts.ForName[brokerOptions, time.Duration]("pollInterval")
	// WithQueueKind selects the queue variant backing every channel of the broker.
	WithQueueKind = opts.ForName[brokerOptions, queue.Kind]("queueKind")
	// WithShutdownGrace bounds how long Close lets queued listener deliveries
	// run with a live context before cancelling it.
	WithShutdownGrace = opts.ForName[brokerOptions, time.Duration]("shutdownGrace")
	// WithLogger sets the logger, slog.Default() otherwise.
	WithLogger = opts.ForName[brokerOptions, *slog.Logger]("logger")
)

// WithMetrics registers the broker's collectors on reg. Without it the
// collectors are still updated but never exported.
func WithMetrics(reg prometheus.Registerer) opts.Option[brokerOptions] {
	return opts.Type[brokerOptions](func(o *brokerOptions) error {
		o.registerer = reg
		return nil
	})
}

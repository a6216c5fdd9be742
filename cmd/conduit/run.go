package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/casualjim/conduit"
	"github.com/casualjim/conduit/internal/config"
	"github.com/casualjim/conduit/internal/sensor"
	"github.com/casualjim/conduit/internal/sink"
	"github.com/casualjim/conduit/pkg/natsx"
	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/casualjim/conduit/queue"
	"github.com/fatih/color"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	configPath  string
	duration    time.Duration
	workers     int
	queueKind   string
	poll        time.Duration
	natsURL     string
	subject     string
	statusDelay time.Duration
	metricsAddr string
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sensor pipeline for a fixed duration",
	Long: `Run starts one producer per configured sensor, a consumer forwarding readings
to NATS (or to the log when no NATS URL is set) and a status changer that
enables the consumer after a delay. The event loop runs on the main goroutine
for --duration.

Example:
  conduit run --config configs/sensors.json --duration 10s
  conduit run --queue write-priority --workers 8 --nats-url nats://localhost:4222`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), cmd.OutOrStdout(), runOpts)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runOpts.configPath, "config", "c", "configs/sensors.json", "Path to the sensors configuration file")
	f.DurationVarP(&runOpts.duration, "duration", "d", 10*time.Second, "How long the event loop runs")
	f.IntVar(&runOpts.workers, "workers", 4, "Worker goroutines delivering channel data")
	f.StringVar(&runOpts.queueKind, "queue", queue.KindBlocking.String(), "Channel queue: blocking|concurrent-read|write-priority")
	f.DurationVar(&runOpts.poll, "poll", 200*time.Millisecond, "Event loop poll interval")
	f.StringVar(&runOpts.natsURL, "nats-url", "", "NATS server URL (defaults to $NATS_URL)")
	f.StringVar(&runOpts.subject, "subject", "", "NATS subject for readings (defaults to $CONDUIT_SUBJECT)")
	f.DurationVar(&runOpts.statusDelay, "status-delay", 2*time.Second, "Delay before consumers start receiving")
	f.StringVar(&runOpts.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
}

func runPipeline(ctx context.Context, out io.Writer, o runOptions) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.natsURL != "" {
		cfg.NATSURL = o.natsURL
	}
	if o.subject != "" {
		cfg.Subject = o.subject
	}
	kind, err := queue.ParseKind(o.queueKind)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if o.metricsAddr != "" {
		srv := &http.Server{
			Addr:              o.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slogx.Error(err))
			}
		}()
		defer srv.Close()
	}

	dst, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	b := conduit.New(
		conduit.WithWorkers(o.workers),
		conduit.WithPollInterval(o.poll),
		conduit.WithQueueKind(kind),
		conduit.WithMetrics(reg),
	)
	defer b.Close()

	consumer := sensor.NewConsumer(b, "Consumer", dst, printAlert(out))
	if err := consumer.Start(); err != nil {
		return err
	}

	appCtx, cancelApp := context.WithCancel(ctx)
	defer cancelApp()
	g, gctx := errgroup.WithContext(appCtx)
	for _, pc := range cfg.Producers {
		p, err := sensor.NewProducer(b, pc)
		if err != nil {
			return err
		}
		g.Go(func() error { return ignoreCanceled(p.Run(gctx)) })
	}
	changer := sensor.NewStatusChanger(b, o.statusDelay)
	g.Go(func() error { return ignoreCanceled(changer.Run(gctx)) })

	slog.Info("pipeline started",
		slog.Int("producers", len(cfg.Producers)),
		slogx.Stringer("queue", kind),
		slog.Duration("duration", o.duration),
	)
	if err := b.Run(ctx, o.duration); err != nil {
		return err
	}

	cancelApp()
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("pipeline stopped",
		slog.Int("pending_events", b.Pending()),
		slog.Any("channels", b.Channels()),
	)
	return nil
}

type flusher interface {
	Flush(ctx context.Context) error
}

func newSink(cfg *config.Config) (sink.Sink, func(), error) {
	if cfg.NATSURL == "" {
		return sink.NewLog(nil), func() {}, nil
	}
	nc, err := natsx.NewClient(cfg.NATSURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}
	s, err := sink.NewNATS(nc, cfg.Subject)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	slog.Info("forwarding readings to nats", slog.String("subject", cfg.Subject), slog.String("url", nc.ConnectedUrlRedacted()))
	return s, func() { closeNATS(nc, s) }, nil
}

func closeNATS(nc *nats.Conn, f flusher) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.Flush(ctx); err != nil {
		slog.Warn("flushing nats", slogx.Error(err))
	}
	nc.Close()
}

func printAlert(w io.Writer) sensor.AlertFunc {
	var mu sync.Mutex
	return func(_ context.Context, alert sensor.Alert, reading gjson.Result) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s %s\n",
			color.CyanString("[%s]", reading.Get("name").String()),
			color.YellowString(string(alert)),
		)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

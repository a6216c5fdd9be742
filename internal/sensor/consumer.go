package sensor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/casualjim/conduit"
	"github.com/casualjim/conduit/events"
	"github.com/casualjim/conduit/internal/sink"
	"github.com/casualjim/conduit/pkg/slogx"
	"github.com/tidwall/gjson"
)

const (
	TemperatureThreshold = 10.0
	HumidityThreshold    = 30.0
)

type Alert string

const (
	AlertHeater     Alert = "Temperature is too low. Turn on the heater."
	AlertHumidifier Alert = "Humidity is too low. Turn on the humidifier."
)

// AlertFunc is told about every threshold a reading falls below.
type AlertFunc func(ctx context.Context, alert Alert, reading gjson.Result)

// Consumer forwards readings from DataChannel to a sink. Deliveries wait
// until a StatusChange event sets the status to Receive.
type Consumer struct {
	process *conduit.Process
	sink    sink.Sink
	onAlert AlertFunc

	mu      sync.Mutex
	status  string
	changed chan struct{} // closed and replaced on every status change
}

// NewConsumer creates a paused consumer. A nil onAlert logs alerts at warn
// level.
func NewConsumer(b *conduit.Broker, name string, s sink.Sink, onAlert AlertFunc) *Consumer {
	c := &Consumer{
		process: conduit.NewProcess(b, name),
		sink:    s,
		onAlert: onAlert,
		status:  events.StatusPause,
		changed: make(chan struct{}),
	}
	if c.onAlert == nil {
		logger := c.process.Logger()
		c.onAlert = func(ctx context.Context, alert Alert, reading gjson.Result) {
			logger.WarnContext(ctx, string(alert), slog.String("sensor", reading.Get("name").String()))
		}
	}
	return c
}

func (c *Consumer) Name() string {
	return c.process.Name()
}

// Start subscribes the consumer to readings and status changes.
func (c *Consumer) Start() error {
	if err := conduit.Subscribe(c.process, DataChannel, c.handleData); err != nil {
		return err
	}
	c.process.SubscribeEvent(events.StatusChangeType, c.handleStatus)
	return nil
}

func (c *Consumer) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Consumer) handleStatus(_ context.Context, ev events.Event) error {
	sc, ok := ev.(events.StatusChange)
	if !ok {
		return nil
	}
	c.mu.Lock()
	c.status = sc.Status
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	c.process.Logger().Info("status changed", slog.String("status", sc.Status), slog.String("sender", sc.Sender))
	return nil
}

// waitReady blocks until the status is Receive or ctx is done.
func (c *Consumer) waitReady(ctx context.Context) error {
	c.mu.Lock()
	for c.status != events.StatusReceive {
		changed := c.changed
		c.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	c.mu.Unlock()
	return nil
}

func (c *Consumer) handleData(ctx context.Context, data []byte) error {
	if err := c.waitReady(ctx); err != nil {
		return err
	}

	reading := gjson.ParseBytes(data)
	temperature := reading.Get("temperature")
	humidity := reading.Get("humidity")
	if temperature.Exists() && humidity.Exists() {
		if temperature.Float() < TemperatureThreshold {
			c.onAlert(ctx, AlertHeater, reading)
		}
		if humidity.Float() < HumidityThreshold {
			c.onAlert(ctx, AlertHumidifier, reading)
		}
	}

	if err := c.sink.Deliver(ctx, data); err != nil {
		c.process.Logger().Error("sink delivery failed", slogx.Error(err))
		return err
	}
	return nil
}

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/casualjim/conduit"
	"github.com/casualjim/conduit/internal/config"
	"github.com/fogfish/opts"
)

const (
	defaultReadings    = 10
	defaultMinInterval = 500 * time.Millisecond
	defaultMaxInterval = time.Second
)

// Producer publishes a fixed number of readings from one sensor.
type Producer struct {
	process   *conduit.Process
	location  config.Producer
	reader    Reader
	count     int
	minPause  time.Duration
	maxPause  time.Duration
	published int
}

var (
	// WithReader replaces the simulated sensor.
	WithReader = opts.ForName[Producer, Reader]("reader")
	// WithCount sets how many readings are published.
	WithCount = opts.ForName[Producer, int]("count")
)

// WithInterval sets the bounds of the random pause between two readings.
func WithInterval(lo, hi time.Duration) opts.Option[Producer] {
	return opts.Type[Producer](func(p *Producer) error {
		if lo < 0 || hi < lo {
			return fmt.Errorf("invalid interval [%s, %s]", lo, hi)
		}
		p.minPause, p.maxPause = lo, hi
		return nil
	})
}

func NewProducer(b *conduit.Broker, location config.Producer, options ...opts.Option[Producer]) (*Producer, error) {
	p := &Producer{
		process:  conduit.NewProcess(b, location.Name),
		location: location,
		reader:   Simulated{},
		count:    defaultReadings,
		minPause: defaultMinInterval,
		maxPause: defaultMaxInterval,
	}
	if err := opts.Apply(p, options); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Producer) Name() string {
	return p.process.Name()
}

// Published is the number of readings sent so far. It is only meaningful once
// Run has returned.
func (p *Producer) Published() int {
	return p.published
}

// Run publishes the readings, pausing between them. It returns ctx.Err() when
// ctx is done first.
func (p *Producer) Run(ctx context.Context) error {
	logger := p.process.Logger()
	for i := 1; i <= p.count; i++ {
		reading := Reading{
			ID:               i,
			Name:             p.location.Name,
			Temperature:      p.reader.ReadTemperature(),
			Humidity:         p.reader.ReadHumidity(),
			CO2Concentration: p.reader.ReadCO2Concentration(),
			Latitude:         p.location.Latitude,
			Longitude:        p.location.Longitude,
		}
		data, err := reading.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode reading %d: %w", i, err)
		}
		if err := conduit.SendToChannel(p.process, DataChannel, data); err != nil {
			return fmt.Errorf("publish reading %d: %w", i, err)
		}
		p.published++
		logger.Debug("reading sent", slog.Int("id", i), slog.String("data", string(data)))

		if i == p.count {
			break
		}
		timer := time.NewTimer(p.pause())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (p *Producer) pause() time.Duration {
	if p.maxPause <= p.minPause {
		return p.minPause
	}
	return p.minPause + rand.N(p.maxPause-p.minPause+1)
}

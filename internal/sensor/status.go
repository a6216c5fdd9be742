package sensor

import (
	"context"
	"time"

	"github.com/casualjim/conduit"
	"github.com/casualjim/conduit/events"
)

// StatusChanger tells consumers when to start receiving.
type StatusChanger struct {
	process *conduit.Process
	delay   time.Duration
}

func NewStatusChanger(b *conduit.Broker, delay time.Duration) *StatusChanger {
	return &StatusChanger{
		process: conduit.NewProcess(b, "StatusChanger"),
		delay:   delay,
	}
}

// Change publishes a StatusChange event carrying status.
func (s *StatusChanger) Change(status string) {
	s.process.PublishEvent(events.StatusChangeType, events.NewStatusChange(s.process.Name(), status))
}

// Run waits for the configured delay and switches consumers to Receive.
func (s *StatusChanger) Run(ctx context.Context) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	s.Change(events.StatusReceive)
	return nil
}

// Package progress defines the callback contract batch callers use to
// observe completion, plus ready-made sinks for terminals, logs and tests.
package progress

import (
	"sync"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

// Sink receives (fraction, status) notifications as work completes.
// Fraction is in [0,1]; status describes the last completed unit. A sink
// must not assume any particular goroutine: callers that need UI-thread
// delivery marshal on their side.
type Sink func(fraction float64, status string)

// Discard ignores all notifications.
func Discard(float64, string) {}

// NewLogSink returns a sink that writes each notification to log at debug level.
func NewLogSink(log logger.Logger) Sink {
	return func(fraction float64, status string) {
		log.Debug("progress",
			logger.Float64("fraction", fraction),
			logger.String("status", status),
		)
	}
}

// Update is a single recorded notification.
type Update struct {
	Fraction float64
	Status   string
}

// Collector is a thread-safe sink for tests; it records every notification.
type Collector struct {
	mu      sync.Mutex
	updates []Update
}

func NewCollector() *Collector {
	return &Collector{}
}

// Sink returns the recording callback bound to c.
func (c *Collector) Sink() Sink {
	return func(fraction float64, status string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.updates = append(c.updates, Update{Fraction: fraction, Status: status})
	}
}

// Updates returns a copy of all recorded notifications in delivery order.
func (c *Collector) Updates() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Update, len(c.updates))
	copy(out, c.updates)
	return out
}

package worker

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

// Worker is a long-running task consumer.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config tunes the asynq server backing a worker.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queues        map[string]int
}

// DefaultQueues weights the priority queues the submission side uses.
func DefaultQueues() map[string]int {
	return map[string]int{
		"critical": 6,
		"default":  3,
		"low":      1,
	}
}

type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopOnce sync.Once
	stopChan chan struct{}
}

// Stop shuts the server down. Safe to call more than once; the context
// watcher and the signal handler may both reach it.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.server.Stop()
	})
	return nil
}

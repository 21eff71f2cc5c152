package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
)

// BatchWorker consumes queued batch jobs and runs them through the
// coordinator, mirroring each job's progress into the queue's status
// store so clients can poll it.
type BatchWorker struct {
	BaseWorker
	coordinator *batch.Coordinator
	queue       queue.Queue
}

func NewBatchWorker(cfg *Config, coordinator *batch.Coordinator, q queue.Queue, log logger.Logger) (*BatchWorker, error) {
	queues := cfg.Queues
	if len(queues) == 0 {
		queues = DefaultQueues()
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      queues,
		},
	)

	w := &BatchWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log.Named("batch-worker"),
			stopChan: make(chan struct{}),
		},
		coordinator: coordinator,
		queue:       q,
	}

	w.mux.HandleFunc(queue.TaskTypeBatchProcess, w.handleBatchTask)
	return w, nil
}

func (w *BatchWorker) handleBatchTask(ctx context.Context, t *asynq.Task) error {
	var job queue.BatchJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		w.logger.Error("failed to unmarshal job",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	ctx = logger.WithJobID(ctx, job.ID)
	log := logger.FromContext(ctx, w.logger)
	log.Info("processing batch job",
		logger.String("operation", job.Operation),
		logger.Int("inputs", len(job.Inputs)),
	)

	params, err := batch.DecodeParams(batch.OperationKind(job.Operation), job.Params)
	if err != nil {
		w.failJob(ctx, job.ID, err)
		return err
	}
	req, err := batch.NewRequest(job.Inputs, job.OutputDir, params)
	if err != nil {
		w.failJob(ctx, job.ID, err)
		return err
	}

	startedAt := time.Now()
	w.saveStatus(ctx, &queue.JobStatus{
		JobID:     job.ID,
		State:     queue.StateRunning,
		StartedAt: startedAt,
	})

	sink := func(fraction float64, status string) {
		w.saveStatus(ctx, &queue.JobStatus{
			JobID:      job.ID,
			State:      queue.StateRunning,
			Progress:   fraction,
			StatusLine: status,
			StartedAt:  startedAt,
		})
	}

	summary, err := w.coordinator.Run(ctx, req, sink)
	if err != nil {
		w.failJob(ctx, job.ID, err)
		return err
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		log.Warn("failed to serialize summary", logger.Error(err))
	}
	w.saveStatus(ctx, &queue.JobStatus{
		JobID:      job.ID,
		State:      queue.StateCompleted,
		Progress:   1.0,
		Summary:    summaryJSON,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})

	log.Info("batch job finished",
		logger.Int("succeeded", summary.SuccessCount),
		logger.Int("failed", summary.FailedCount),
	)
	return nil
}

func (w *BatchWorker) failJob(ctx context.Context, jobID string, cause error) {
	w.logger.Error("batch job failed",
		logger.String("jobId", jobID),
		logger.Error(cause),
	)
	w.saveStatus(ctx, &queue.JobStatus{
		JobID:      jobID,
		State:      queue.StateFailed,
		Error:      cause.Error(),
		FinishedAt: time.Now(),
	})
}

// saveStatus writes through to Redis; a failed write never fails the job.
func (w *BatchWorker) saveStatus(ctx context.Context, status *queue.JobStatus) {
	if err := w.queue.SaveStatus(ctx, status); err != nil {
		w.logger.Warn("failed to save job status",
			logger.String("jobId", status.JobID),
			logger.Error(err),
		)
	}
}

func (w *BatchWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

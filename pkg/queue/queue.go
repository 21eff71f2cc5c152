package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskTypeBatchProcess is the asynq task type for one queued batch run.
const TaskTypeBatchProcess = "batch:process"

// Job states reported through JobStatus.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// BatchJob is the wire form of a queued batch submission. Params is the
// operation's parameter bag, serialized; the worker decodes it against
// the operation kind.
type BatchJob struct {
	ID          string          `json:"id"`
	Operation   string          `json:"operation"`
	Inputs      []string        `json:"inputs"`
	OutputDir   string          `json:"outputDir"`
	Params      json.RawMessage `json:"params"`
	Priority    int             `json:"priority"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// JobStatus is the externally visible state of a queued batch.
type JobStatus struct {
	JobID      string          `json:"jobId"`
	State      string          `json:"state"`
	Progress   float64         `json:"progress"`
	StatusLine string          `json:"statusLine,omitempty"`
	Error      string          `json:"error,omitempty"`
	Summary    json.RawMessage `json:"summary,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
}

// Queue is the submission side of the batch queue.
type Queue interface {
	Enqueue(ctx context.Context, job *BatchJob) error
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
	CancelJob(ctx context.Context, jobID string) error
	SaveStatus(ctx context.Context, status *JobStatus) error
}

// QueueConfig tunes the asynq client and server side.
type QueueConfig struct {
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MaxRetries     int
	RetryDelay     time.Duration
	ProcessTimeout time.Duration
	Concurrency    int
	ResultTTL      time.Duration
}

// AsynqQueue backs Queue with asynq over Redis. Job progress and final
// summaries live in plain Redis keys next to asynq's own state, so a
// finished or cancelled job stays inspectable after asynq forgets it.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	resultTTL time.Duration
}

func NewAsynqQueue(cfg *QueueConfig) (*AsynqQueue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	resultTTL := cfg.ResultTTL
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
		resultTTL: resultTTL,
	}, nil
}

// queueNames in priority order; the weights match the worker config.
var queueNames = []string{"critical", "default", "low"}

// Enqueue submits a batch job and records its pending status.
func (q *AsynqQueue) Enqueue(ctx context.Context, job *BatchJob) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(0), // a failed batch is reported, not retried
		asynq.Timeout(2 * time.Hour),
		asynq.TaskID(job.ID),
	}

	switch job.Priority {
	case 1:
		opts = append(opts, asynq.Queue("critical"))
	case 2:
		opts = append(opts, asynq.Queue("default"))
	default:
		opts = append(opts, asynq.Queue("low"))
	}

	t := asynq.NewTask(TaskTypeBatchProcess, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return q.SaveStatus(ctx, &JobStatus{
		JobID:     job.ID,
		State:     StatePending,
		StartedAt: time.Now(),
	})
}

// GetJobStatus reads the job's status record, falling back to asynq's
// own task state for jobs the worker has not touched yet.
func (q *AsynqQueue) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	key := statusKey(jobID)
	data, err := q.redis.Get(ctx, key).Bytes()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	if err == nil {
		var status JobStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	}

	var info *asynq.TaskInfo
	var lastErr error
	for _, queueName := range queueNames {
		info, err = q.inspector.GetTaskInfo(queueName, jobID)
		if err == nil {
			break
		}
		lastErr = err
	}
	if info == nil {
		return nil, fmt.Errorf("job not found in any queue: %w", lastErr)
	}

	return convertTaskInfo(info), nil
}

// CancelJob removes a still-queued job. A job already running finishes
// its current file and then observes the cancellation through its
// context; one already finished cannot be cancelled.
func (q *AsynqQueue) CancelJob(ctx context.Context, jobID string) error {
	var lastErr error
	for _, queueName := range queueNames {
		err := q.inspector.DeleteTask(queueName, jobID)
		if err == nil {
			return q.SaveStatus(ctx, &JobStatus{
				JobID:      jobID,
				State:      StateCancelled,
				FinishedAt: time.Now(),
			})
		}
		lastErr = err
	}
	return fmt.Errorf("failed to cancel job: %w", lastErr)
}

// SaveStatus persists the job status with the configured TTL.
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *JobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.JobID), data, q.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// Close releases the underlying clients.
func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func statusKey(jobID string) string {
	return fmt.Sprintf("batch_status:%s", jobID)
}

func convertTaskInfo(info *asynq.TaskInfo) *JobStatus {
	status := &JobStatus{
		JobID:     info.ID,
		StartedAt: info.NextProcessAt,
	}

	switch info.State {
	case asynq.TaskStatePending, asynq.TaskStateScheduled:
		status.State = StatePending
	case asynq.TaskStateActive:
		status.State = StateRunning
	case asynq.TaskStateCompleted:
		status.State = StateCompleted
		status.Progress = 1.0
		status.FinishedAt = info.CompletedAt
	default:
		status.State = StateFailed
		status.Error = info.LastErr
	}

	return status
}

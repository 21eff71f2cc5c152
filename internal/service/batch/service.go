package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/progress"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
	"github.com/feichai0017/pdf-toolbox/pkg/storage"
)

// Submission is one batch request as it arrives from the API or CLI,
// with the operation parameters still in wire form.
type Submission struct {
	Operation string          `json:"operation"`
	Inputs    []string        `json:"inputs"`
	OutputDir string          `json:"outputDir"`
	Params    json.RawMessage `json:"params"`
	Priority  int             `json:"priority,omitempty"`
}

// BatchProcessor is the application-facing batch surface: run a batch in
// the calling process, or hand it to the queue and poll it.
type BatchProcessor interface {
	RunSync(ctx context.Context, sub *Submission, sink progress.Sink) (*batch.Summary, error)
	Submit(ctx context.Context, sub *Submission) (string, error)
	Status(ctx context.Context, jobID string) (*queue.JobStatus, error)
	Cancel(ctx context.Context, jobID string) error
}

type ServiceConfig struct {
	MaxInputs       int
	AllowedTypes    []string
	DefaultOutput   string
	RetentionPeriod time.Duration
}

type BatchService struct {
	coordinator *batch.Coordinator
	queue       queue.Queue
	storage     storage.Storage // nil means artifacts stay local only
	logger      logger.Logger
	config      *ServiceConfig
}

// NewService wires the batch service. queue may be nil for CLI-only use
// (Submit then fails), storage may be nil to skip artifact archiving.
func NewService(
	coordinator *batch.Coordinator,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) *BatchService {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxInputs:       500,
			AllowedTypes:    []string{".pdf"},
			DefaultOutput:   "output",
			RetentionPeriod: 24 * time.Hour,
		}
	}

	return &BatchService{
		coordinator: coordinator,
		queue:       q,
		storage:     store,
		logger:      log.Named("batch-service"),
		config:      cfg,
	}
}

// RunSync validates and runs the submission in the calling process.
func (s *BatchService) RunSync(ctx context.Context, sub *Submission, sink progress.Sink) (*batch.Summary, error) {
	req, err := s.buildRequest(sub)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	ctx = logger.WithBatchID(ctx, batchID)

	summary, err := s.coordinator.Run(ctx, req, sink)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		s.archive(ctx, batchID, summary)
	}
	return summary, nil
}

// Submit validates the submission and enqueues it, returning the job ID.
func (s *BatchService) Submit(ctx context.Context, sub *Submission) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("no queue configured")
	}
	// Build the request purely for validation; the worker rebuilds its
	// own from the payload.
	if _, err := s.buildRequest(sub); err != nil {
		return "", err
	}

	job := &queue.BatchJob{
		ID:          uuid.New().String(),
		Operation:   sub.Operation,
		Inputs:      sub.Inputs,
		OutputDir:   s.outputDir(sub),
		Params:      sub.Params,
		Priority:    sub.Priority,
		SubmittedAt: time.Now(),
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to enqueue batch job",
			logger.String("operation", sub.Operation),
			logger.Error(err),
		)
		return "", err
	}

	s.logger.Info("batch job queued",
		logger.String("jobId", job.ID),
		logger.String("operation", job.Operation),
		logger.Int("inputs", len(job.Inputs)),
	)
	return job.ID, nil
}

// Status reports the state of a queued job.
func (s *BatchService) Status(ctx context.Context, jobID string) (*queue.JobStatus, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("no queue configured")
	}
	return s.queue.GetJobStatus(ctx, jobID)
}

// Cancel removes a queued job.
func (s *BatchService) Cancel(ctx context.Context, jobID string) error {
	if s.queue == nil {
		return fmt.Errorf("no queue configured")
	}
	return s.queue.CancelJob(ctx, jobID)
}

// CleanupArchive deletes archived artifacts older than the retention
// period. No-op without a storage backend.
func (s *BatchService) CleanupArchive(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	threshold := time.Now().Add(-s.config.RetentionPeriod)
	return s.storage.CleanupBefore(ctx, threshold)
}

func (s *BatchService) buildRequest(sub *Submission) (*batch.Request, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is required")
	}
	if err := s.validateInputs(sub.Inputs); err != nil {
		return nil, err
	}

	params, err := batch.DecodeParams(batch.OperationKind(sub.Operation), sub.Params)
	if err != nil {
		return nil, err
	}
	return batch.NewRequest(sub.Inputs, s.outputDir(sub), params)
}

func (s *BatchService) validateInputs(inputs []string) error {
	if len(inputs) == 0 {
		return batch.ErrNoInputs
	}
	if s.config.MaxInputs > 0 && len(inputs) > s.config.MaxInputs {
		return fmt.Errorf("too many inputs: %d exceeds limit %d", len(inputs), s.config.MaxInputs)
	}

	for _, input := range inputs {
		ext := strings.ToLower(filepath.Ext(input))
		allowed := false
		for _, t := range s.config.AllowedTypes {
			if ext == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("unsupported input type %q for %s", ext, input)
		}
	}
	return nil
}

func (s *BatchService) outputDir(sub *Submission) string {
	if strings.TrimSpace(sub.OutputDir) != "" {
		return sub.OutputDir
	}
	return s.config.DefaultOutput
}

// archive uploads every artifact the batch produced.
func (s *BatchService) archive(ctx context.Context, batchID string, summary *batch.Summary) {
	var files []string
	for _, r := range summary.Results {
		if r.Success {
			files = append(files, r.Outputs...)
		}
	}
	if len(files) == 0 {
		return
	}

	keys := storage.ArchiveArtifacts(ctx, s.storage, batchID, files, s.logger)
	s.logger.Info("archived batch artifacts",
		logger.String("batchId", batchID),
		logger.Int("uploaded", len(keys)),
		logger.Int("total", len(files)),
	)
}

package batch

import (
	"errors"
	"time"
)

// ErrNoInputs is the batch-fatal error for an empty input list.
var ErrNoInputs = errors.New("batch: no input files")

// FileResult is the outcome of processing one input document. Workers
// build it locally and hand it to the coordinator by value; it is never
// mutated after being reported.
type FileResult struct {
	Input     string        `json:"input"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Outputs   []string      `json:"outputs,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt"`
	Duration  time.Duration `json:"duration"`
}

// Summary aggregates one batch run. Results are in completion order,
// which is nondeterministic; consumers must not rely on it matching the
// request's input order. For merge the slice holds a single aggregate
// result while Total still counts the inputs.
type Summary struct {
	Operation    OperationKind `json:"operation"`
	Total        int           `json:"totalFiles"`
	SuccessCount int           `json:"successCount"`
	FailedCount  int           `json:"failedCount"`
	Duration     time.Duration `json:"totalDuration"`
	Results      []FileResult  `json:"results"`
}

func (s *Summary) add(r FileResult) {
	s.Results = append(s.Results, r)
	if r.Success {
		s.SuccessCount++
	} else {
		s.FailedCount++
	}
}

// Failed reports whether any result in the summary failed.
func (s *Summary) Failed() bool {
	return s.FailedCount > 0
}

package queue

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestConvertTaskInfo(t *testing.T) {
	finished := time.Now()

	tests := []struct {
		name      string
		state     asynq.TaskState
		wantState string
	}{
		{"pending", asynq.TaskStatePending, StatePending},
		{"scheduled", asynq.TaskStateScheduled, StatePending},
		{"active", asynq.TaskStateActive, StateRunning},
		{"completed", asynq.TaskStateCompleted, StateCompleted},
		{"retry maps to failed", asynq.TaskStateRetry, StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := convertTaskInfo(&asynq.TaskInfo{
				ID:          "job-1",
				State:       tt.state,
				CompletedAt: finished,
			})
			assert.Equal(t, "job-1", status.JobID)
			assert.Equal(t, tt.wantState, status.State)
			if tt.state == asynq.TaskStateCompleted {
				assert.Equal(t, 1.0, status.Progress)
				assert.Equal(t, finished, status.FinishedAt)
			}
		})
	}
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "batch_status:abc", statusKey("abc"))
}

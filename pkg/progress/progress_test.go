package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

func TestLogSinkWritesDebugEntries(t *testing.T) {
	log := logger.NewTestLogger()
	sink := NewLogSink(log)

	sink(0.25, "report.pdf done")
	sink(1.0, "invoice.pdf done")

	entries := log.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0].Level)
	assert.Equal(t, "progress", entries[0].Message)
	require.Len(t, entries[0].Fields, 2)
	assert.Equal(t, "fraction", entries[0].Fields[0].Key)
	assert.Equal(t, "status", entries[0].Fields[1].Key)
	assert.Equal(t, "invoice.pdf done", entries[1].Fields[1].String)
}

func TestCollectorRecordsConcurrentUpdates(t *testing.T) {
	collector := NewCollector()
	sink := collector.Sink()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sink(float64(n)/8, "working")
		}(i)
	}
	wg.Wait()

	assert.Len(t, collector.Updates(), 8)
}

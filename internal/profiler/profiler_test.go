package profiler

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_AddAccumulates(t *testing.T) {
	rec := New()
	rec.Add(StageRead, 10*time.Millisecond)
	rec.Add(StageRead, 5*time.Millisecond)

	var buf bytes.Buffer
	rec.Report(&buf, 20*time.Millisecond)

	assert.Contains(t, buf.String(), StageRead)
	assert.Contains(t, buf.String(), "(2 calls)")
}

func TestRecorder_StartStop(t *testing.T) {
	rec := New()
	stop := rec.Start(StageSegment)
	time.Sleep(time.Millisecond)
	stop()

	var buf bytes.Buffer
	rec.Report(&buf, time.Millisecond)
	assert.Contains(t, buf.String(), StageSegment)
}

func TestRecorder_MergeCombinesWorkers(t *testing.T) {
	total := New()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := New()
			worker.Add(StageCompress, time.Millisecond)
			total.Merge(worker)
		}()
	}
	wg.Wait()

	var buf bytes.Buffer
	total.Report(&buf, 4*time.Millisecond)
	assert.Contains(t, buf.String(), "(4 calls)")
}

func TestRecorder_ConcurrentAdd(t *testing.T) {
	rec := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Add(StageWrite, time.Microsecond)
		}()
	}
	wg.Wait()

	var buf bytes.Buffer
	rec.Report(&buf, time.Millisecond)
	require.Contains(t, buf.String(), "(100 calls)")
}

package thumbnail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/files-manager/internal/queue"
)

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	proc, content, job := newTestPipeline(t, testPNG(t, 400, 300))

	jobs := queue.NewMemoryQueue(4)
	worker := NewWorker(jobs, proc, 2, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.NoError(t, jobs.Enqueue(ctx, job))

	node, err := proc.repo.FindOwnedFile(ctx, job.UserID, job.FileID)
	require.NoError(t, err)

	// All three renditions show up once the job is consumed.
	deadline := time.After(5 * time.Second)
	for {
		if _, err := content.Get(ctx, node.ContentRef+"_500"); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for renditions")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
}

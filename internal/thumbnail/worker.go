package thumbnail

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/files-manager/internal/queue"
)

// Worker pulls jobs from the queue and hands each one to the processor.
// It shares no in-memory state with the request path; everything goes
// through the queue and the shared stores.
type Worker struct {
	jobs        queue.Queue
	processor   *Processor
	concurrency int
	logger      *logrus.Logger
}

func NewWorker(jobs queue.Queue, processor *Processor, concurrency int, logger *logrus.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		jobs:        jobs,
		processor:   processor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		job, err := w.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.WithError(err).Error("dequeue failed")
			continue
		}

		entry := w.logger.WithFields(logrus.Fields{
			"file_id": job.FileID,
			"user_id": job.UserID,
		})

		err = w.processor.Process(ctx, job)
		switch {
		case err == nil:
			entry.Info("thumbnail job completed")
		case errors.Is(err, ErrMalformedJob), errors.Is(err, ErrFileNotFound):
			entry.WithError(err).Error("thumbnail job rejected")
		default:
			entry.WithError(err).Error("thumbnail job failed")
		}
	}
}

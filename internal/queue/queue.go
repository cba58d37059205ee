// Package queue carries thumbnail jobs from the upload path to the
// worker pool. Delivery is at-least-once and unordered; consumers must
// tolerate duplicates.
package queue

import (
	"context"

	"github.com/google/uuid"
)

// Job asks the pipeline to render thumbnails for one uploaded image.
// Jobs are transient: they exist only while queued.
type Job struct {
	UserID uuid.UUID `json:"userId"`
	FileID uuid.UUID `json:"fileId"`
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is cancelled.
	Dequeue(ctx context.Context) (Job, error)
}

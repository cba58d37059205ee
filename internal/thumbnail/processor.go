// Package thumbnail renders resized derivatives of uploaded images.
// Each job produces one rendition per target width, stored next to the
// original under the key <contentRef>_<width>. Re-running a width just
// overwrites its rendition, which is what makes at-least-once queue
// delivery safe.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/models"
	"github.com/files-manager/internal/queue"
	"github.com/files-manager/internal/storage"
)

// Widths are the rendition targets generated for every image.
var Widths = []int{100, 250, 500}

var (
	// ErrMalformedJob marks a job missing its file or user id.
	// Non-retryable: reported, never requeued.
	ErrMalformedJob = errors.New("malformed thumbnail job")
	// ErrFileNotFound marks a job whose file no longer resolves for
	// its user. Non-retryable.
	ErrFileNotFound = errors.New("file not found")
)

// PipelineError reports the widths that failed within one job run.
type PipelineError struct {
	FailedWidths []int
}

func (e *PipelineError) Error() string {
	parts := make([]string, len(e.FailedWidths))
	for i, w := range e.FailedWidths {
		parts[i] = fmt.Sprint(w)
	}
	return "failed to generate thumbnail of sizes: " + strings.Join(parts, ", ")
}

// FileFinder is the slice of the metadata store the pipeline needs.
type FileFinder interface {
	FindOwnedFile(ctx context.Context, ownerID, id uuid.UUID) (*models.FileNode, error)
}

type Processor struct {
	repo    FileFinder
	content storage.Store
	logger  *logrus.Logger
}

func NewProcessor(repo FileFinder, content storage.Store, logger *logrus.Logger) *Processor {
	return &Processor{repo: repo, content: content, logger: logger}
}

// Process runs one job to completion. Widths are attempted
// independently: a failure on one does not abort the others. The job
// succeeds only if every width succeeded; otherwise the returned
// PipelineError carries the widths that failed.
func (p *Processor) Process(ctx context.Context, job queue.Job) error {
	if job.FileID == uuid.Nil {
		return fmt.Errorf("%w: missing fileId", ErrMalformedJob)
	}
	if job.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing userId", ErrMalformedJob)
	}

	node, err := p.repo.FindOwnedFile(ctx, job.UserID, job.FileID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("look up file: %w", err)
	}

	var failed []int
	for _, width := range Widths {
		if err := p.renderWidth(ctx, node, width); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"file_id": node.ID,
				"width":   width,
			}).Error("thumbnail rendition failed")
			failed = append(failed, width)
		}
	}

	if len(failed) > 0 {
		return &PipelineError{FailedWidths: failed}
	}
	return nil
}

func (p *Processor) renderWidth(ctx context.Context, node *models.FileNode, width int) error {
	data, err := p.content.Get(ctx, node.ContentRef)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	rendition, err := Scale(data, width)
	if err != nil {
		return fmt.Errorf("scale to %d: %w", width, err)
	}

	key := fmt.Sprintf("%s_%d", node.ContentRef, width)
	if err := p.content.Put(ctx, key, rendition); err != nil {
		return fmt.Errorf("write rendition: %w", err)
	}
	return nil
}

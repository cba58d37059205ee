// Package files is the file hierarchy manager: it validates and
// mutates the ownership-scoped tree of folders, files and images, and
// serves their content under the authorization engine's decisions.
package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/files-manager/internal/auth"
	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/models"
	"github.com/files-manager/internal/queue"
	"github.com/files-manager/internal/storage"
)

// PageSize is the fixed number of nodes per listing page.
const PageSize = 20

// Repository is the slice of the metadata store the manager needs.
type Repository interface {
	CreateFile(ctx context.Context, node *models.FileNode) error
	GetFile(ctx context.Context, id uuid.UUID) (*models.FileNode, error)
	FindOwnedFile(ctx context.Context, ownerID, id uuid.UUID) (*models.FileNode, error)
	ListFiles(ctx context.Context, ownerID, parentID uuid.UUID) ([]models.FileNode, error)
	SetFilePublic(ctx context.Context, ownerID, id uuid.UUID, isPublic bool) error
}

type Service struct {
	repo    Repository
	content storage.Store
	jobs    queue.Queue
	logger  *logrus.Logger
}

func NewService(repo Repository, content storage.Store, jobs queue.Queue, logger *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		content: content,
		jobs:    jobs,
		logger:  logger,
	}
}

// Create validates the upload and persists it. For non-folder types the
// content is written to the content store before the metadata record,
// so a record never references missing bytes; if the content write
// fails nothing is recorded. Image uploads enqueue a thumbnail job, and
// a failed enqueue does not fail the upload.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req models.FileCreateRequest) (*models.FileNode, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if !models.ValidFileType(req.Type) {
		return nil, ErrMissingType
	}
	if req.Type != models.TypeFolder && req.Data == "" {
		return nil, ErrMissingData
	}

	parentID, err := models.ParseParentID(req.ParentID)
	if err != nil {
		return nil, ErrParentNotFound
	}
	if parentID != uuid.Nil {
		parent, err := s.repo.GetFile(ctx, parentID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("look up parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotAFolder
		}
	}

	node := &models.FileNode{
		ID:        uuid.New(),
		Name:      req.Name,
		Type:      req.Type,
		ParentID:  parentID,
		IsPublic:  req.IsPublic,
		OwnerID:   actor,
		CreatedAt: time.Now().UTC(),
	}

	if req.Type != models.TypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, ErrMissingData
		}

		node.ContentRef = uuid.NewString()
		if err := s.content.Put(ctx, node.ContentRef, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	if err := s.repo.CreateFile(ctx, node); err != nil {
		// The content object written above is orphaned here; accepted
		// as a non-fatal leak rather than attempting a cross-store
		// rollback.
		return nil, fmt.Errorf("create file record: %w", err)
	}

	if node.Type == models.TypeImage {
		job := queue.Job{UserID: actor, FileID: node.ID}
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			s.logger.WithError(err).WithField("file_id", node.ID).
				Warn("failed to enqueue thumbnail job")
		}
	}

	return node, nil
}

// Get returns the node if the actor may read it. Missing and denied are
// both ErrNotFound.
func (s *Service) Get(ctx context.Context, actor uuid.UUID, id string) (*models.FileNode, error) {
	node, err := s.resolveReadable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// List returns the actor's own nodes under parentID (empty or "0" for
// root). A nil page returns the full unpaginated result; this mirrors
// the long-standing behavior of silently ignoring a non-integer page
// parameter instead of defaulting to page zero.
func (s *Service) List(ctx context.Context, actor uuid.UUID, parentID string, page *int) ([]models.FileNode, error) {
	parent, err := models.ParseParentID(parentID)
	if err != nil {
		return []models.FileNode{}, nil
	}

	nodes, err := s.repo.ListFiles(ctx, actor, parent)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if page == nil {
		return nodes, nil
	}

	start := *page * PageSize
	if *page < 0 || start >= len(nodes) {
		return []models.FileNode{}, nil
	}
	end := start + PageSize
	if end > len(nodes) {
		end = len(nodes)
	}
	return nodes[start:end], nil
}

// SetVisibility toggles isPublic on a node the actor owns. An absent
// node and a node owned by someone else both match zero rows and come
// back as ErrNotFound. Repeated calls converge without error.
func (s *Service) SetVisibility(ctx context.Context, actor uuid.UUID, id string, isPublic bool) (*models.FileNode, error) {
	if actor == auth.Anonymous {
		return nil, ErrNotFound
	}
	fileID, err := models.ParseID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := s.repo.SetFilePublic(ctx, actor, fileID, isPublic); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set visibility: %w", err)
	}

	node, err := s.repo.FindOwnedFile(ctx, actor, fileID)
	if err != nil {
		return nil, fmt.Errorf("reload file: %w", err)
	}
	return node, nil
}

// ReadContent returns the stored bytes for a readable node. Folders
// have no content. When size is given and the node is an image, the
// pre-rendered rendition at that width is served instead; a rendition
// the pipeline has not produced is ErrNotFound.
func (s *Service) ReadContent(ctx context.Context, actor uuid.UUID, id string, size *int) ([]byte, error) {
	node, err := s.resolveReadable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if node.IsFolder() {
		return nil, ErrNotAFile
	}

	key := node.ContentRef
	if size != nil && node.Type == models.TypeImage {
		key = fmt.Sprintf("%s_%d", node.ContentRef, *size)
	}

	data, err := s.content.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return data, nil
}

func (s *Service) resolveReadable(ctx context.Context, actor uuid.UUID, id string) (*models.FileNode, error) {
	fileID, err := models.ParseID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	node, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("look up file: %w", err)
	}

	if auth.ReadDecision(actor, node) != auth.Allowed {
		return nil, ErrNotFound
	}
	return node, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/files-manager/internal/models"
)

const fileColumns = `id, name, type, parent_id, is_public, owner_id, content_ref, created_at`

func (d *DB) CreateFile(ctx context.Context, node *models.FileNode) error {
	query := `INSERT INTO files (` + fileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := d.db.ExecContext(ctx, query,
		node.ID.String(), node.Name, node.Type, node.ParentID.String(),
		node.IsPublic, node.OwnerID.String(), node.ContentRef, node.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetFile looks a node up by id alone. Callers apply access decisions.
func (d *DB) GetFile(ctx context.Context, id uuid.UUID) (*models.FileNode, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(d.db.QueryRowContext(ctx, query, id.String()))
}

// FindOwnedFile looks a node up by (owner, id); a node owned by someone
// else is indistinguishable from a missing one.
func (d *DB) FindOwnedFile(ctx context.Context, ownerID, id uuid.UUID) (*models.FileNode, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`
	return scanFile(d.db.QueryRowContext(ctx, query, id.String(), ownerID.String()))
}

// ListFiles returns the nodes owned by ownerID under parentID
// (uuid.Nil for root), oldest first.
func (d *DB) ListFiles(ctx context.Context, ownerID, parentID uuid.UUID) ([]models.FileNode, error) {
	query := `SELECT ` + fileColumns + ` FROM files
	          WHERE owner_id = $1 AND parent_id = $2
	          ORDER BY created_at, id`

	rows, err := d.db.QueryContext(ctx, query, ownerID.String(), parentID.String())
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	nodes := []models.FileNode{}
	for rows.Next() {
		node, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return nodes, nil
}

// SetFilePublic flips visibility on the node owned by ownerID. A miss on
// either id or owner matches zero rows and returns ErrNotFound.
func (d *DB) SetFilePublic(ctx context.Context, ownerID, id uuid.UUID, isPublic bool) error {
	query := `UPDATE files SET is_public = $1 WHERE id = $2 AND owner_id = $3`

	res, err := d.db.ExecContext(ctx, query, isPublic, id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("update file visibility: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update file visibility: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.FileNode, error) {
	var (
		node              models.FileNode
		id, parent, owner string
	)
	err := row.Scan(&id, &node.Name, &node.Type, &parent,
		&node.IsPublic, &owner, &node.ContentRef, &node.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	if node.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse file id: %w", err)
	}
	if node.ParentID, err = uuid.Parse(parent); err != nil {
		return nil, fmt.Errorf("parse parent id: %w", err)
	}
	if node.OwnerID, err = uuid.Parse(owner); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	return &node, nil
}

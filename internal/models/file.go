package models

import (
	"time"

	"github.com/google/uuid"
)

// FileType enumerates the three kinds of nodes in the tree.
// Folders carry no content; files and images reference stored bytes.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

func ValidFileType(t string) bool {
	return t == TypeFolder || t == TypeFile || t == TypeImage
}

// FileNode is one metadata record in the ownership-scoped hierarchy.
// ParentID is uuid.Nil for root-level nodes. ContentRef is the opaque
// content-store key, empty for folders.
type FileNode struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	ParentID   uuid.UUID `json:"parentId"`
	IsPublic   bool      `json:"isPublic"`
	OwnerID    uuid.UUID `json:"userId"`
	ContentRef string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (n *FileNode) IsFolder() bool {
	return n.Type == TypeFolder
}

// FileCreateRequest carries the already-parsed upload fields. Data is
// base64-encoded content, required unless Type is folder. ParentID is the
// raw string from the request; empty or "0" means root.
type FileCreateRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

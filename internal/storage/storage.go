// Package storage is the content-store capability: opaque keys mapped
// to raw bytes. Metadata records reference content by key and are only
// written after the content itself, so a key held by a record always
// resolves.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

package models

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid id")

// ParseID is the single entry point for turning untrusted identifier
// strings into store keys. Malformed values fail here instead of
// propagating into store queries.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// ParseParentID additionally accepts the root sentinel: an empty string
// or "0" denotes a root-level node and maps to uuid.Nil.
func ParseParentID(s string) (uuid.UUID, error) {
	if s == "" || s == "0" {
		return uuid.Nil, nil
	}
	return ParseID(s)
}

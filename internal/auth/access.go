package auth

import (
	"github.com/google/uuid"

	"github.com/files-manager/internal/models"
)

// Anonymous is the actor id for requests with no resolved identity.
var Anonymous = uuid.Nil

// Decision is the outcome of an access check. Denials on private
// resources are reported as not-found so their existence never leaks;
// DeniedExplicit is reserved for cases that are safe to surface.
type Decision int

const (
	Allowed Decision = iota
	DeniedAsNotFound
	DeniedExplicit
)

// ReadDecision allows public nodes to anyone and private nodes to their
// owner only.
func ReadDecision(actor uuid.UUID, node *models.FileNode) Decision {
	if node.IsPublic {
		return Allowed
	}
	if actor != Anonymous && actor == node.OwnerID {
		return Allowed
	}
	return DeniedAsNotFound
}

// WriteDecision allows only the owner. There is no sharing or ACL
// concept; anonymous writers are denied outright.
func WriteDecision(actor uuid.UUID, node *models.FileNode) Decision {
	if actor == Anonymous {
		return DeniedExplicit
	}
	if actor == node.OwnerID {
		return Allowed
	}
	return DeniedAsNotFound
}

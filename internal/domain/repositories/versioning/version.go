package versioning

import (
	"context"

	"inkwell/internal/domain/models/versioning"
)

// VersionRepository defines data access operations for version rows.
// Rows are append-only: after insert, only the two milestone fields change.
type VersionRepository interface {
	// Create inserts a new version row
	Create(ctx context.Context, v *versioning.Version) error

	// GetByID retrieves a version by ID
	GetByID(ctx context.Context, id string) (*versioning.Version, error)

	// ListByDocument retrieves all versions of a document, newest first
	ListByDocument(ctx context.Context, documentID string) ([]versioning.Version, error)

	// ListMilestones retrieves the milestone versions of a document, newest first
	ListMilestones(ctx context.Context, documentID string) ([]versioning.Version, error)

	// NextVersionNumber computes max(version_number)+1 for a document,
	// starting at 1. Only safe against concurrent writers when the caller
	// holds the document row lock (DocumentRepository.GetForUpdate).
	NextVersionNumber(ctx context.Context, documentID string) (int, error)

	// SetMilestone updates the milestone flag and name of a version and
	// returns the updated row. name must be non-nil iff isMilestone is true.
	SetMilestone(ctx context.Context, id string, isMilestone bool, name *string) (*versioning.Version, error)
}

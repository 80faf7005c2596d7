package versioning

import (
	"context"

	"inkwell/internal/diff"
	"inkwell/internal/domain/models/versioning"
)

// VersionService is the append-only version store for documents.
type VersionService interface {
	// CreateVersion commits a new content snapshot for a document. It assigns
	// the next contiguous version number and advances the document's
	// current-version pointer in the same transaction. Serialized per
	// document: concurrent calls never produce duplicate or skipped numbers.
	CreateVersion(ctx context.Context, documentID string, req *CreateVersionRequest) (*versioning.Version, error)

	// GetVersion retrieves a single version
	GetVersion(ctx context.Context, versionID string) (*versioning.Version, error)

	// ListVersions retrieves a document's versions, newest first
	ListVersions(ctx context.Context, documentID string) ([]versioning.Version, error)

	// CompareVersions diffs the plain-text projections of two versions of the
	// same document at the requested granularity.
	CompareVersions(ctx context.Context, documentID, oldVersionID, newVersionID string, granularity diff.Granularity) (*VersionComparison, error)
}

// CreateVersionRequest represents a snapshot commit
type CreateVersionRequest struct {
	Content      versioning.Snapshot `json:"content"`
	QualityScore *int                `json:"quality_score,omitempty"`
	CreatedBy    string              `json:"-"` // Set by handler from identity context
}

// VersionComparison is the result of diffing two versions
type VersionComparison struct {
	DocumentID  string           `json:"document_id"`
	OldVersion  int              `json:"old_version"`
	NewVersion  int              `json:"new_version"`
	Granularity diff.Granularity `json:"granularity"`
	Segments    []diff.Segment   `json:"segments"`
	Stats       diff.Stats       `json:"stats"`
}

// LockManager provides soft, single-holder exclusivity over a document for
// editing. Locks are advisory: the storage layer does not reject writes from
// non-holders, editors are expected to check ownership before saving.
type LockManager interface {
	// Acquire takes the edit lock. Re-entry by the current holder refreshes
	// the lock timestamp. A stale lock (older than the TTL) held by another
	// user is silently displaced. A fresh lock held by another user fails
	// with *domain.LockConflictError.
	Acquire(ctx context.Context, documentID, userID string) (*versioning.Document, error)

	// Release clears the lock only if held by userID; otherwise it is a
	// no-op, so a delayed duplicate release cannot evict a newer holder.
	Release(ctx context.Context, documentID, userID string) error

	// ForceUnlock is an administrative override that clears the lock
	// unconditionally.
	ForceUnlock(ctx context.Context, documentID string) error
}

// MilestoneService tags versions as named checkpoints. Pure metadata over the
// version store: the two milestone fields are the only mutable part of a
// version.
type MilestoneService interface {
	// Mark flags a version as a milestone. Idempotent; re-marking with a new
	// name overwrites it.
	Mark(ctx context.Context, versionID, name string) (*versioning.Version, error)

	// Unmark clears the milestone fields. Not an error if the version was not
	// a milestone.
	Unmark(ctx context.Context, versionID string) (*versioning.Version, error)

	// ListMilestones retrieves a document's milestone versions, newest first
	ListMilestones(ctx context.Context, documentID string) ([]versioning.Version, error)
}

// RestoreService re-materializes a past snapshot as a new current version.
// History is never rewound: restore is always a forward-moving append.
type RestoreService interface {
	// Restore creates version N+1 with content copied from the target
	// version. The target itself is untouched. Restoring the current version
	// is permitted and creates a duplicate snapshot.
	Restore(ctx context.Context, documentID, versionID, userID string) (*versioning.Version, error)
}

package versioning

import (
	"context"
	"time"

	"inkwell/internal/domain/models/versioning"
)

// DocumentRepository defines data access operations for documents.
// The document row is the only mutable shared resource: it carries the
// current-version pointer and the edit-lock fields.
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *versioning.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*versioning.Document, error)

	// GetForUpdate retrieves a document and holds a write lock on its row for
	// the remainder of the surrounding transaction. Callers must be inside a
	// transaction; this is what serializes version numbering and lock
	// transitions per document.
	GetForUpdate(ctx context.Context, id string) (*versioning.Document, error)

	// List retrieves all documents, most recently updated first
	List(ctx context.Context) ([]versioning.Document, error)

	// SetCurrentVersion advances the current-version pointer
	SetCurrentVersion(ctx context.Context, id, versionID string, updatedAt time.Time) error

	// SetLock writes the lock fields. Passing nils clears the lock.
	SetLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error

	// Delete hard-deletes a document; version rows cascade at the storage layer
	Delete(ctx context.Context, id string) error
}

package versioning

import (
	"context"

	"inkwell/internal/domain/models/versioning"
)

// DocumentService handles the document parent-entity lifecycle.
// Documents start empty: no versions, nil current-version pointer, unlocked.
type DocumentService interface {
	// CreateDocument creates a new, empty document
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*versioning.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*versioning.Document, error)

	// ListDocuments retrieves all documents, most recently updated first
	ListDocuments(ctx context.Context) ([]versioning.Document, error)

	// DeleteDocument deletes a document and all of its versions
	DeleteDocument(ctx context.Context, id string) error
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title     string `json:"title"`
	CreatedBy string `json:"-"` // Set by handler from identity context, not from request body
}

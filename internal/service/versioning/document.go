package versioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verRepo "inkwell/internal/domain/repositories/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo verRepo.DocumentRepository
	logger  *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(docRepo verRepo.DocumentRepository, logger *slog.Logger) verSvc.DocumentService {
	return &documentService{
		docRepo: docRepo,
		logger:  logger,
	}
}

// CreateDocument creates a new, empty document. The first CreateVersion call
// sets the current-version pointer; until then it is nil.
func (s *documentService) CreateDocument(ctx context.Context, req *verSvc.CreateDocumentRequest) (*models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		Title:     req.Title,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"created_by", doc.CreatedBy,
	)

	return doc, nil
}

// GetDocument retrieves a document by ID
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments retrieves all documents, most recently updated first
func (s *documentService) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.docRepo.List(ctx)
}

// DeleteDocument deletes a document and all of its versions
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *verSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxDocumentTitleLength),
		),
		validation.Field(&req.CreatedBy, validation.Required),
	)
}

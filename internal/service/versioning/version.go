package versioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sethvargo/go-retry"

	"inkwell/internal/config"
	"inkwell/internal/diff"
	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	"inkwell/internal/domain/repositories"
	verRepo "inkwell/internal/domain/repositories/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
	"inkwell/internal/notify"
)

// createVersionRetries bounds retries of the whole commit transaction when a
// concurrent writer wins the version number race.
const createVersionRetries = 3

// versionService implements the VersionService interface
type versionService struct {
	docRepo     verRepo.DocumentRepository
	versionRepo verRepo.VersionRepository
	txManager   repositories.TransactionManager
	projector   *Projector
	events      notify.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewVersionService creates a new version service
func NewVersionService(
	docRepo verRepo.DocumentRepository,
	versionRepo verRepo.VersionRepository,
	txManager repositories.TransactionManager,
	projector *Projector,
	events notify.Publisher,
	logger *slog.Logger,
) verSvc.VersionService {
	return &versionService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		projector:   projector,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateVersion commits a new content snapshot. Numbering happens inside one
// transaction under the document row lock, so two concurrent saves for the
// same document can never collide or skip a number. The unique constraint on
// (document_id, version_number) is the backstop; if it fires, the whole
// transaction is retried with backoff before the ConcurrencyError is
// surfaced to the caller.
func (s *versionService) CreateVersion(ctx context.Context, documentID string, req *verSvc.CreateVersionRequest) (*models.Version, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var version *models.Version
	backoff := retry.WithMaxRetries(createVersionRetries, retry.NewFibonacci(10*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := s.createVersionTx(ctx, documentID, req)
		if err != nil {
			if errors.Is(err, domain.ErrConcurrency) {
				return retry.RetryableError(err)
			}
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version created",
		"document_id", documentID,
		"version_id", version.ID,
		"version_number", version.VersionNumber,
		"word_count", version.WordCount,
		"created_by", version.CreatedBy,
	)

	s.events.Publish(notify.Event{
		DocumentID: documentID,
		Type:       notify.EventVersionCreated,
		Payload: map[string]interface{}{
			"version_id":     version.ID,
			"version_number": version.VersionNumber,
			"created_by":     version.CreatedBy,
		},
		OccurredAt: version.CreatedAt,
	})

	return version, nil
}

// createVersionTx runs the read-increment-insert-and-point sequence as one
// atomic unit of work.
func (s *versionService) createVersionTx(ctx context.Context, documentID string, req *verSvc.CreateVersionRequest) (*models.Version, error) {
	var version *models.Version

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Row lock on the document serializes numbering per document and
		// doubles as the existence check.
		doc, err := s.docRepo.GetForUpdate(txCtx, documentID)
		if err != nil {
			return err
		}

		number, err := s.versionRepo.NextVersionNumber(txCtx, doc.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		v := &models.Version{
			DocumentID:    doc.ID,
			VersionNumber: number,
			Content:       req.Content,
			WordCount:     s.projector.WordCount(req.Content),
			QualityScore:  req.QualityScore,
			CreatedBy:     req.CreatedBy,
			CreatedAt:     now,
		}

		if err := s.versionRepo.Create(txCtx, v); err != nil {
			return err
		}

		if err := s.docRepo.SetCurrentVersion(txCtx, doc.ID, v.ID, now); err != nil {
			return err
		}

		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return version, nil
}

// GetVersion retrieves a single version
func (s *versionService) GetVersion(ctx context.Context, versionID string) (*models.Version, error) {
	return s.versionRepo.GetByID(ctx, versionID)
}

// ListVersions retrieves a document's versions, newest first
func (s *versionService) ListVersions(ctx context.Context, documentID string) ([]models.Version, error) {
	// Surface NotFound for unknown documents instead of an empty list
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	return s.versionRepo.ListByDocument(ctx, documentID)
}

// CompareVersions diffs the plain-text projections of two versions of the
// same document. Pure CPU work; both versions are read at whatever state is
// currently committed.
func (s *versionService) CompareVersions(ctx context.Context, documentID, oldVersionID, newVersionID string, granularity diff.Granularity) (*verSvc.VersionComparison, error) {
	oldVersion, err := s.versionOfDocument(ctx, documentID, oldVersionID)
	if err != nil {
		return nil, err
	}
	newVersion, err := s.versionOfDocument(ctx, documentID, newVersionID)
	if err != nil {
		return nil, err
	}

	script, err := diff.Compute(
		s.projector.PlainText(oldVersion.Content),
		s.projector.PlainText(newVersion.Content),
		granularity,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return &verSvc.VersionComparison{
		DocumentID:  documentID,
		OldVersion:  oldVersion.VersionNumber,
		NewVersion:  newVersion.VersionNumber,
		Granularity: granularity,
		Segments:    script,
		Stats:       diff.ComputeStats(script),
	}, nil
}

// versionOfDocument fetches a version and checks it belongs to the document.
// A version of another document is NotFound from this document's view.
func (s *versionService) versionOfDocument(ctx context.Context, documentID, versionID string) (*models.Version, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v.DocumentID != documentID {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("version %s does not belong to document %s", versionID, documentID),
		}
	}
	return v, nil
}

// validateCreateRequest validates a snapshot commit request
func (s *versionService) validateCreateRequest(req *verSvc.CreateVersionRequest) error {
	if len(req.Content) == 0 {
		return fmt.Errorf("content is required")
	}
	if len(req.Content) > config.MaxSnapshotBytes {
		return fmt.Errorf("content exceeds %d bytes", config.MaxSnapshotBytes)
	}
	if !json.Valid(req.Content) {
		return fmt.Errorf("content is not valid JSON")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.QualityScore,
			validation.Min(0),
			validation.Max(config.MaxQualityScore),
		),
		validation.Field(&req.CreatedBy, validation.Required),
	)
}

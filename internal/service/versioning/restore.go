package versioning

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verRepo "inkwell/internal/domain/repositories/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
)

// restoreService implements the RestoreService interface. Restore is the only
// form of undo: it re-materializes a past snapshot as a new current version,
// never rewinding or mutating history.
type restoreService struct {
	versionRepo verRepo.VersionRepository
	versions    verSvc.VersionService
	logger      *slog.Logger
}

// NewRestoreService creates a new restore service
func NewRestoreService(
	versionRepo verRepo.VersionRepository,
	versions verSvc.VersionService,
	logger *slog.Logger,
) verSvc.RestoreService {
	return &restoreService{
		versionRepo: versionRepo,
		versions:    versions,
		logger:      logger,
	}
}

// Restore creates version N+1 with content copied from the target version.
// The target's own fields are untouched. Restoring the already-current
// version is permitted and simply creates a duplicate snapshot; the
// operation's contract stays uniform.
func (s *restoreService) Restore(ctx context.Context, documentID, versionID, userID string) (*models.Version, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Message: "user id is required"}
	}

	target, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if target.DocumentID != documentID {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("version %s does not belong to document %s", versionID, documentID),
		}
	}

	restored, err := s.versions.CreateVersion(ctx, documentID, &verSvc.CreateVersionRequest{
		Content:      target.Content,
		QualityScore: target.QualityScore,
		CreatedBy:    userID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version restored",
		"document_id", documentID,
		"source_version", target.VersionNumber,
		"new_version", restored.VersionNumber,
		"restored_by", userID,
	)

	return restored, nil
}

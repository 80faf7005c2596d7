package versioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verRepo "inkwell/internal/domain/repositories/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
)

// milestoneService implements the MilestoneService interface. Pure metadata
// over the version store: only the two milestone fields are ever written.
type milestoneService struct {
	docRepo     verRepo.DocumentRepository
	versionRepo verRepo.VersionRepository
	logger      *slog.Logger
}

// NewMilestoneService creates a new milestone service
func NewMilestoneService(
	docRepo verRepo.DocumentRepository,
	versionRepo verRepo.VersionRepository,
	logger *slog.Logger,
) verSvc.MilestoneService {
	return &milestoneService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		logger:      logger,
	}
}

// Mark flags a version as a named checkpoint. Idempotent: marking an already
// marked version overwrites its name, it never creates a new version.
func (s *milestoneService) Mark(ctx context.Context, versionID, name string) (*models.Version, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "milestone name is required"}
	}
	if len(name) > config.MaxMilestoneNameLength {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("milestone name exceeds %d characters", config.MaxMilestoneNameLength),
		}
	}

	v, err := s.versionRepo.SetMilestone(ctx, versionID, true, &name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("milestone marked",
		"version_id", v.ID,
		"document_id", v.DocumentID,
		"version_number", v.VersionNumber,
		"name", name,
	)

	return v, nil
}

// Unmark clears the milestone fields. Unmarking a non-milestone is a no-op,
// not an error.
func (s *milestoneService) Unmark(ctx context.Context, versionID string) (*models.Version, error) {
	v, err := s.versionRepo.SetMilestone(ctx, versionID, false, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("milestone unmarked",
		"version_id", v.ID,
		"document_id", v.DocumentID,
	)

	return v, nil
}

// ListMilestones retrieves a document's milestone versions, newest first
func (s *milestoneService) ListMilestones(ctx context.Context, documentID string) ([]models.Version, error) {
	// Surface NotFound for unknown documents instead of an empty list
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	return s.versionRepo.ListMilestones(ctx, documentID)
}

package versioning

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verRepo "inkwell/internal/domain/repositories/versioning"
	"inkwell/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const versionColumns = "id, document_id, version_number, content, word_count, quality_score, is_milestone, milestone_name, created_by, created_at"

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) verRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// Create inserts a new version row. A unique constraint on
// (document_id, version_number) is the storage-level backstop for the
// contiguous-numbering invariant; violations surface as ConcurrencyError.
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.Version) error {
	query := `
		INSERT INTO document_versions
			(document_id, version_number, content, word_count, quality_score, is_milestone, milestone_name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.DocumentID,
		v.VersionNumber,
		v.Content,
		v.WordCount,
		v.QualityScore,
		v.IsMilestone,
		v.MilestoneName,
		v.CreatedBy,
		v.CreatedAt,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConcurrencyError{
				Message: fmt.Sprintf("version %d of document %s was written concurrently", v.VersionNumber, v.DocumentID),
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", v.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// GetByID retrieves a version by ID
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	query := fmt.Sprintf(`SELECT %s FROM document_versions WHERE id = $1`, versionColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return v, nil
}

// ListByDocument retrieves all versions of a document, newest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, versionColumns)

	return r.list(ctx, query, documentID)
}

// ListMilestones retrieves the milestone versions of a document, newest first
func (r *PostgresVersionRepository) ListMilestones(ctx context.Context, documentID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM document_versions
		WHERE document_id = $1 AND is_milestone = TRUE
		ORDER BY version_number DESC
	`, versionColumns)

	return r.list(ctx, query, documentID)
}

// NextVersionNumber computes max(version_number)+1 for a document. Only safe
// against concurrent writers when the caller holds the document row lock.
func (r *PostgresVersionRepository) NextVersionNumber(ctx context.Context, documentID string) (int, error) {
	query := `
		SELECT COALESCE(MAX(version_number), 0) + 1
		FROM document_versions
		WHERE document_id = $1
	`

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}

	return next, nil
}

// SetMilestone updates the milestone flag and name of a version and returns
// the updated row. These are the only two version fields that ever change.
func (r *PostgresVersionRepository) SetMilestone(ctx context.Context, id string, isMilestone bool, name *string) (*models.Version, error) {
	query := fmt.Sprintf(`
		UPDATE document_versions
		SET is_milestone = $1, milestone_name = $2
		WHERE id = $3
		RETURNING %s
	`, versionColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, isMilestone, name, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("set milestone: %w", err)
	}

	return v, nil
}

func (r *PostgresVersionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Version, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	// Return empty slice instead of nil
	if versions == nil {
		versions = []models.Version{}
	}

	return versions, nil
}

func scanVersion(row pgx.Row) (*models.Version, error) {
	var v models.Version
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Content,
		&v.WordCount,
		&v.QualityScore,
		&v.IsMilestone,
		&v.MilestoneName,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

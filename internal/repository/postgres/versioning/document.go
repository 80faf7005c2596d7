package versioning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verRepo "inkwell/internal/domain/repositories/versioning"
	"inkwell/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = "id, title, current_version_id, locked_by, locked_at, created_by, created_at, updated_at"

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) verRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (title, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.CreatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)
	return r.getOne(ctx, query, id)
}

// GetForUpdate retrieves a document holding a write lock on its row for the
// remainder of the surrounding transaction. This serializes version numbering
// and lock transitions per document.
func (r *PostgresDocumentRepository) GetForUpdate(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 FOR UPDATE`, documentColumns)
	return r.getOne(ctx, query, id)
}

func (r *PostgresDocumentRepository) getOne(ctx context.Context, query, id string) (*models.Document, error) {
	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.CurrentVersionID,
		&doc.LockedBy,
		&doc.LockedAt,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// List retrieves all documents, most recently updated first
func (r *PostgresDocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents ORDER BY updated_at DESC`, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.CurrentVersionID,
			&doc.LockedBy,
			&doc.LockedAt,
			&doc.CreatedBy,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Return empty slice instead of nil
	if documents == nil {
		documents = []models.Document{}
	}

	return documents, nil
}

// SetCurrentVersion advances the current-version pointer
func (r *PostgresDocumentRepository) SetCurrentVersion(ctx context.Context, id, versionID string, updatedAt time.Time) error {
	query := `
		UPDATE documents
		SET current_version_id = $1, updated_at = $2
		WHERE id = $3
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, versionID, updatedAt, id)
	if err != nil {
		return fmt.Errorf("set current version: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetLock writes the lock fields; nils clear the lock
func (r *PostgresDocumentRepository) SetLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error {
	query := `
		UPDATE documents
		SET locked_by = $1, locked_at = $2
		WHERE id = $3
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, lockedBy, lockedAt, id)
	if err != nil {
		return fmt.Errorf("set lock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete hard-deletes a document; versions cascade via the FK
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

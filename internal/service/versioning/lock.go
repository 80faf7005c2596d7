package versioning

import (
	"context"
	"log/slog"
	"time"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	"inkwell/internal/domain/repositories"
	verRepo "inkwell/internal/domain/repositories/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
	"inkwell/internal/notify"
)

// lockManager implements the LockManager interface. Staleness is evaluated
// lazily at acquisition time against the TTL, never by a background reaper,
// and only here: the TTL policy has one source of truth.
type lockManager struct {
	docRepo   verRepo.DocumentRepository
	txManager repositories.TransactionManager
	ttl       time.Duration
	events    notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewLockManager creates a new lock manager with the given TTL
func NewLockManager(
	docRepo verRepo.DocumentRepository,
	txManager repositories.TransactionManager,
	ttl time.Duration,
	events notify.Publisher,
	logger *slog.Logger,
) verSvc.LockManager {
	return &lockManager{
		docRepo:   docRepo,
		txManager: txManager,
		ttl:       ttl,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Acquire takes the edit lock. State transitions, evaluated under the
// document row lock:
//   - unlocked: lock for userID
//   - held by userID: refresh the timestamp (idempotent re-entry)
//   - held by another user, stale: displace
//   - held by another user, fresh: LockConflictError
func (l *lockManager) Acquire(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Message: "user id is required"}
	}

	var doc *models.Document
	var displaced *string

	err := l.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := l.docRepo.GetForUpdate(txCtx, documentID)
		if err != nil {
			return err
		}

		if current.LockedBy != nil && *current.LockedBy != userID && !l.stale(current) {
			return &domain.LockConflictError{
				HeldBy:   *current.LockedBy,
				LockedAt: *current.LockedAt,
			}
		}

		if current.LockedBy != nil && *current.LockedBy != userID {
			displaced = current.LockedBy
		}

		now := l.now().UTC()
		if err := l.docRepo.SetLock(txCtx, current.ID, &userID, &now); err != nil {
			return err
		}

		current.LockedBy = &userID
		current.LockedAt = &now
		doc = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if displaced != nil {
		l.logger.Info("stale lock displaced",
			"document_id", documentID,
			"previous_holder", *displaced,
			"new_holder", userID,
		)
	}

	l.publishLockChanged(documentID, doc.LockedBy)

	return doc, nil
}

// Release clears the lock only if held by userID. Releasing a lock held by
// someone else (or no one) is a silent no-op, so a delayed duplicate release
// never evicts a newer holder.
func (l *lockManager) Release(ctx context.Context, documentID, userID string) error {
	if userID == "" {
		return &domain.ValidationError{Message: "user id is required"}
	}

	var released bool
	err := l.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := l.docRepo.GetForUpdate(txCtx, documentID)
		if err != nil {
			return err
		}

		if current.LockedBy == nil || *current.LockedBy != userID {
			return nil
		}

		if err := l.docRepo.SetLock(txCtx, current.ID, nil, nil); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return err
	}

	if released {
		l.logger.Info("lock released", "document_id", documentID, "user_id", userID)
		l.publishLockChanged(documentID, nil)
	}

	return nil
}

// ForceUnlock clears the lock unconditionally. Administrative override.
func (l *lockManager) ForceUnlock(ctx context.Context, documentID string) error {
	var wasLocked bool
	err := l.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := l.docRepo.GetForUpdate(txCtx, documentID)
		if err != nil {
			return err
		}

		wasLocked = current.Locked()
		if !wasLocked {
			return nil
		}
		return l.docRepo.SetLock(txCtx, current.ID, nil, nil)
	})
	if err != nil {
		return err
	}

	if wasLocked {
		l.logger.Warn("lock force-released", "document_id", documentID)
		l.publishLockChanged(documentID, nil)
	}

	return nil
}

// stale reports whether the document's lock has outlived the TTL.
// A lock is stale strictly after the TTL: at exactly TTL it still blocks.
func (l *lockManager) stale(doc *models.Document) bool {
	if doc.LockedAt == nil {
		return true
	}
	return l.now().Sub(*doc.LockedAt) > l.ttl
}

func (l *lockManager) publishLockChanged(documentID string, lockedBy *string) {
	payload := map[string]interface{}{"locked": lockedBy != nil}
	if lockedBy != nil {
		payload["locked_by"] = *lockedBy
	}

	l.events.Publish(notify.Event{
		DocumentID: documentID,
		Type:       notify.EventLockChanged,
		Payload:    payload,
		OccurredAt: l.now().UTC(),
	})
}

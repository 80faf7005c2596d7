package versioning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/notify"
)

// fakeTxManager serializes all transactions behind one mutex, emulating the
// per-document row lock the postgres transaction manager provides.
type fakeTxManager struct {
	mu sync.Mutex
}

var _ repositories.TransactionManager = (*fakeTxManager)(nil)

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// fakeDocumentRepo is an in-memory DocumentRepository
type fakeDocumentRepo struct {
	mu   sync.RWMutex
	docs map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = uuid.NewString()
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) GetForUpdate(ctx context.Context, id string) (*models.Document, error) {
	// The fake tx manager already serializes writers
	return r.GetByID(ctx, id)
}

func (r *fakeDocumentRepo) List(ctx context.Context) ([]models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]models.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })
	return docs, nil
}

func (r *fakeDocumentRepo) SetCurrentVersion(ctx context.Context, id, versionID string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.CurrentVersionID = &versionID
	doc.UpdatedAt = updatedAt
	return nil
}

func (r *fakeDocumentRepo) SetLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.LockedBy = lockedBy
	doc.LockedAt = lockedAt
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

// fakeVersionRepo is an in-memory VersionRepository enforcing the same
// unique (document_id, version_number) constraint as the schema.
type fakeVersionRepo struct {
	mu       sync.RWMutex
	versions map[string]*models.Version
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string]*models.Version)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, v *models.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.versions {
		if existing.DocumentID == v.DocumentID && existing.VersionNumber == v.VersionNumber {
			return &domain.ConcurrencyError{
				Message: fmt.Sprintf("version %d of document %s was written concurrently", v.VersionNumber, v.DocumentID),
			}
		}
	}
	v.ID = uuid.NewString()
	stored := *v
	stored.Content = append(models.Snapshot(nil), v.Content...)
	r.versions[v.ID] = &stored
	return nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, id string) (*models.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.Version, error) {
	return r.listWhere(func(v *models.Version) bool { return v.DocumentID == documentID }), nil
}

func (r *fakeVersionRepo) ListMilestones(ctx context.Context, documentID string) ([]models.Version, error) {
	return r.listWhere(func(v *models.Version) bool {
		return v.DocumentID == documentID && v.IsMilestone
	}), nil
}

func (r *fakeVersionRepo) NextVersionNumber(ctx context.Context, documentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, v := range r.versions {
		if v.DocumentID == documentID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max + 1, nil
}

func (r *fakeVersionRepo) SetMilestone(ctx context.Context, id string, isMilestone bool, name *string) (*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	v.IsMilestone = isMilestone
	v.MilestoneName = name
	copied := *v
	return &copied, nil
}

func (r *fakeVersionRepo) listWhere(keep func(*models.Version) bool) []models.Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var versions []models.Version
	for _, v := range r.versions {
		if keep(v) {
			versions = append(versions, *v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	if versions == nil {
		versions = []models.Version{}
	}
	return versions
}

// capturePublisher records published events for assertions
type capturePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *capturePublisher) Publish(event notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) byType(t notify.EventType) []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notify.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

package versioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	"inkwell/internal/notify"
)

type lockFixture struct {
	docs   *fakeDocumentRepo
	events *capturePublisher
	lm     *lockManager
	clock  *fakeClock
}

// fakeClock lets tests move the lock manager's notion of now.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newLockFixture(t *testing.T) *lockFixture {
	t.Helper()
	f := &lockFixture{
		docs:   newFakeDocumentRepo(),
		events: &capturePublisher{},
		clock:  &fakeClock{current: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
	}
	svc := NewLockManager(f.docs, &fakeTxManager{}, config.DefaultLockTTL, f.events, testLogger())
	f.lm = svc.(*lockManager)
	f.lm.now = f.clock.Now
	return f
}

func (f *lockFixture) createDocument(t *testing.T) *models.Document {
	t.Helper()
	doc := &models.Document{
		Title:     "Quarterly report",
		CreatedBy: "user-1",
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.docs.Create(context.Background(), doc))
	return doc
}

func TestAcquire_UnlockedDocument(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)

	locked, err := f.lm.Acquire(context.Background(), doc.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, locked.LockedBy)
	assert.Equal(t, "alice", *locked.LockedBy)
	assert.Equal(t, f.clock.Now(), *locked.LockedAt)

	events := f.events.byType(notify.EventLockChanged)
	require.Len(t, events, 1)
	assert.Equal(t, true, events[0].Payload["locked"])
	assert.Equal(t, "alice", events[0].Payload["locked_by"])
}

func TestAcquire_FreshLockConflicts(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)
	lockedAt := f.clock.Now()

	f.clock.Advance(5 * time.Minute)

	_, err = f.lm.Acquire(ctx, doc.ID, "bob")
	require.ErrorIs(t, err, domain.ErrLockConflict)

	var conflict *domain.LockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "alice", conflict.HeldBy)
	assert.Equal(t, lockedAt, conflict.LockedAt)
}

func TestAcquire_ExactlyAtTTLStillConflicts(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	f.clock.Advance(config.DefaultLockTTL)

	_, err = f.lm.Acquire(ctx, doc.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrLockConflict)
}

func TestAcquire_StaleLockDisplaced(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	f.clock.Advance(config.DefaultLockTTL + time.Second)

	locked, err := f.lm.Acquire(ctx, doc.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", *locked.LockedBy)
	assert.Equal(t, f.clock.Now(), *locked.LockedAt)
}

func TestAcquire_ReentryRefreshesTimestamp(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	locked, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", *locked.LockedBy)
	assert.Equal(t, f.clock.Now(), *locked.LockedAt)
}

func TestAcquire_RequiresUser(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)

	_, err := f.lm.Acquire(context.Background(), doc.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAcquire_UnknownDocument(t *testing.T) {
	f := newLockFixture(t)

	_, err := f.lm.Acquire(context.Background(), "missing", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelease_ByHolder(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, f.lm.Release(ctx, doc.ID, "alice"))

	got, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedBy)
	assert.Nil(t, got.LockedAt)

	events := f.events.byType(notify.EventLockChanged)
	require.Len(t, events, 2)
	assert.Equal(t, false, events[1].Payload["locked"])
}

func TestRelease_ByNonHolderIsNoOp(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, f.lm.Release(ctx, doc.ID, "bob"))

	got, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockedBy)
	assert.Equal(t, "alice", *got.LockedBy)

	// No release event for the no-op
	assert.Len(t, f.events.byType(notify.EventLockChanged), 1)
}

func TestRelease_UnlockedDocumentIsNoOp(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)

	require.NoError(t, f.lm.Release(context.Background(), doc.ID, "alice"))
	assert.Empty(t, f.events.byType(notify.EventLockChanged))
}

func TestForceUnlock(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	_, err := f.lm.Acquire(ctx, doc.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, f.lm.ForceUnlock(ctx, doc.ID))

	got, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedBy)

	events := f.events.byType(notify.EventLockChanged)
	require.Len(t, events, 2)
	assert.Equal(t, false, events[1].Payload["locked"])
}

func TestForceUnlock_UnlockedDocumentIsNoOp(t *testing.T) {
	f := newLockFixture(t)
	doc := f.createDocument(t)

	require.NoError(t, f.lm.ForceUnlock(context.Background(), doc.ID))
	assert.Empty(t, f.events.byType(notify.EventLockChanged))
}

package versioning

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/diff"
	"inkwell/internal/domain"
	models "inkwell/internal/domain/models/versioning"
	verSvc "inkwell/internal/domain/services/versioning"
	"inkwell/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type versionFixture struct {
	docs     *fakeDocumentRepo
	versions *fakeVersionRepo
	events   *capturePublisher
	service  verSvc.VersionService
}

func newVersionFixture(t *testing.T) *versionFixture {
	t.Helper()
	f := &versionFixture{
		docs:     newFakeDocumentRepo(),
		versions: newFakeVersionRepo(),
		events:   &capturePublisher{},
	}
	f.service = NewVersionService(
		f.docs, f.versions, &fakeTxManager{}, NewProjector(), f.events, testLogger(),
	)
	return f
}

func (f *versionFixture) createDocument(t *testing.T) *models.Document {
	t.Helper()
	doc := &models.Document{
		Title:     "Launch announcement",
		CreatedBy: "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.docs.Create(context.Background(), doc))
	return doc
}

func snapshot(body string) models.Snapshot {
	return models.Snapshot(`{"headline":"Hello","body":"` + body + `"}`)
}

func TestCreateVersion_SequentialNumbering(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		v, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
			Content:   snapshot("draft"),
			CreatedBy: "user-1",
		})
		require.NoError(t, err)
		assert.Equal(t, i, v.VersionNumber)
	}
}

func TestCreateVersion_AdvancesCurrentPointer(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	first, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("first"),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	got, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVersionID)
	assert.Equal(t, first.ID, *got.CurrentVersionID)

	second, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("second"),
		CreatedBy: "user-2",
	})
	require.NoError(t, err)

	got, err = f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *got.CurrentVersionID)
}

func TestCreateVersion_ConcurrentWritersGetContiguousNumbers(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
				Content:   snapshot("concurrent"),
				CreatedBy: "user-1",
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	versions, err := f.versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, writers)

	// Newest first, numbered N down to 1 with no gaps or duplicates
	for i, v := range versions {
		assert.Equal(t, writers-i, v.VersionNumber)
	}

	got, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVersionID)
	latest, err := f.versions.GetByID(ctx, *got.CurrentVersionID)
	require.NoError(t, err)
	assert.Equal(t, writers, latest.VersionNumber)
}

func TestCreateVersion_ComputesWordCount(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)

	v, err := f.service.CreateVersion(context.Background(), doc.ID, &verSvc.CreateVersionRequest{
		Content:   models.Snapshot(`{"headline":"Big News","body":"<p>The quick brown fox</p>"}`),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, v.WordCount)
}

func TestCreateVersion_PublishesEvent(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)

	v, err := f.service.CreateVersion(context.Background(), doc.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("draft"),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	events := f.events.byType(notify.EventVersionCreated)
	require.Len(t, events, 1)
	assert.Equal(t, doc.ID, events[0].DocumentID)
	assert.Equal(t, v.ID, events[0].Payload["version_id"])
}

func TestCreateVersion_Validation(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	badScore := 150
	cases := []struct {
		name string
		req  *verSvc.CreateVersionRequest
	}{
		{"empty content", &verSvc.CreateVersionRequest{CreatedBy: "user-1"}},
		{"malformed JSON", &verSvc.CreateVersionRequest{Content: models.Snapshot(`{"body":`), CreatedBy: "user-1"}},
		{"missing author", &verSvc.CreateVersionRequest{Content: snapshot("draft")}},
		{"quality score out of range", &verSvc.CreateVersionRequest{
			Content: snapshot("draft"), QualityScore: &badScore, CreatedBy: "user-1",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateVersion(ctx, doc.ID, tc.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateVersion_UnknownDocument(t *testing.T) {
	f := newVersionFixture(t)

	_, err := f.service.CreateVersion(context.Background(), "missing", &verSvc.CreateVersionRequest{
		Content:   snapshot("draft"),
		CreatedBy: "user-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListVersions_UnknownDocumentIsNotFound(t *testing.T) {
	f := newVersionFixture(t)

	_, err := f.service.ListVersions(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListVersions_NewestFirst(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
			Content:   snapshot("draft"),
			CreatedBy: "user-1",
		})
		require.NoError(t, err)
	}

	versions, err := f.service.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].VersionNumber)
	assert.Equal(t, 1, versions[2].VersionNumber)
}

func TestCompareVersions(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	oldVersion, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
		Content:   models.Snapshot(`{"body":"Hello"}`),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	newVersion, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
		Content:   models.Snapshot(`{"body":"Hello world"}`),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	cmp, err := f.service.CompareVersions(ctx, doc.ID, oldVersion.ID, newVersion.ID, diff.GranularityWord)
	require.NoError(t, err)

	assert.Equal(t, 1, cmp.OldVersion)
	assert.Equal(t, 2, cmp.NewVersion)
	require.Len(t, cmp.Segments, 2)
	assert.Equal(t, diff.KindUnchanged, cmp.Segments[0].Kind)
	assert.Equal(t, "Hello", cmp.Segments[0].Text)
	assert.Equal(t, diff.KindAdded, cmp.Segments[1].Kind)
	assert.Equal(t, " world", cmp.Segments[1].Text)
	assert.Equal(t, 6, cmp.Stats.Additions)
	assert.Equal(t, 0, cmp.Stats.Deletions)
}

func TestCompareVersions_ForeignVersionIsNotFound(t *testing.T) {
	f := newVersionFixture(t)
	docA := f.createDocument(t)
	docB := f.createDocument(t)
	ctx := context.Background()

	vA, err := f.service.CreateVersion(ctx, docA.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("a"),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)
	vB, err := f.service.CreateVersion(ctx, docB.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("b"),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	_, err = f.service.CompareVersions(ctx, docA.ID, vA.ID, vB.ID, diff.GranularityWord)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompareVersions_UnknownGranularity(t *testing.T) {
	f := newVersionFixture(t)
	doc := f.createDocument(t)
	ctx := context.Background()

	v, err := f.service.CreateVersion(ctx, doc.ID, &verSvc.CreateVersionRequest{
		Content:   snapshot("a"),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)

	_, err = f.service.CompareVersions(ctx, doc.ID, v.ID, v.ID, diff.Granularity("sentence"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

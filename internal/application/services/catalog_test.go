package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/mq"
)

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	failPutFor    string // blob content marker that makes Put fail
	deleteFailFor map[string]bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}, deleteFailFor: map[string]bool{}}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPutFor != "" && string(content) == f.failPutFor {
		return errors.New("disk full")
	}
	f.blobs[key] = append([]byte(nil), content...)
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return b, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFailFor[key] {
		return errors.New("delete failed")
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobStore) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.blobs))
	for k := range f.blobs {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

type fakeMetaIndex struct {
	mu      sync.Mutex
	records file.Records
}

func (f *fakeMetaIndex) Load() (file.Records, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(file.Records, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeMetaIndex) Store(records file.Records) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = make(file.Records, len(records))
	copy(f.records, records)
	return nil
}

type fakeEvents struct {
	in chan mq.Event
}

func newFakeEvents() *fakeEvents {
	f := &fakeEvents{in: make(chan mq.Event, 256)}
	return f
}

func (f *fakeEvents) GetInputChan() chan mq.Event    { return f.in }
func (f *fakeEvents) PublisherWorker(context.Context) {}

func testCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "test", Name: "general_counters"},
		[]string{"result"},
	)
}

func newCatalog(t *testing.T, blobs *fakeBlobStore, index *fakeMetaIndex, maxBytes int64) *CatalogService {
	t.Helper()
	svc := NewCatalogService(zap.NewNop(), blobs, index, newFakeEvents(), testCounter(), maxBytes)
	return svc.(*CatalogService)
}

func input(name, mimeType, content string) file.Input {
	return file.Input{
		Name:         name,
		MimeType:     mimeType,
		LastModified: time.Now(),
		Content:      []byte(content),
	}
}

func TestCatalog_UploadListRoundTrip(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	res, err := cs.Upload(ctx, owner, []file.Input{
		input("photo.png", "image/png", "png-bytes"),
		input("notes.txt", "text/plain", "some notes"),
	})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 2)
	assert.Empty(t, res.Rejected)

	listed, err := cs.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	wantByID := map[uuid.UUID]*file.Record{}
	for _, rec := range res.Accepted {
		wantByID[rec.ID] = rec
	}
	for _, rec := range listed {
		want, ok := wantByID[rec.ID]
		require.True(t, ok, "listed record not in upload result")
		assert.Equal(t, want.BlobKey, rec.BlobKey)
	}

	// each blob byte-equals the original input
	content, err := cs.Content(ctx, listed[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), content)

	assert.Equal(t, file.CategoryImages, res.Accepted[0].Category)
	assert.Equal(t, file.CategoryDocuments, res.Accepted[1].Category)
}

func TestCatalog_ListIsOwnerScoped(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := cs.Upload(ctx, alice, []file.Input{input("a.txt", "text/plain", "a")})
	require.NoError(t, err)
	_, err = cs.Upload(ctx, bob, []file.Input{input("b.txt", "text/plain", "b")})
	require.NoError(t, err)

	aliceFiles, err := cs.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFiles, 1)
	assert.Equal(t, "a.txt", aliceFiles[0].Name)
}

func TestCatalog_UploadSizeBoundary(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	const limit = 64
	cs := newCatalog(t, blobs, index, limit)
	ctx := context.Background()
	owner := uuid.New()

	atLimit := make([]byte, limit)
	overLimit := make([]byte, limit+1)

	res, err := cs.Upload(ctx, owner, []file.Input{
		{Name: "exact.bin", Content: atLimit},
		{Name: "over.bin", Content: overLimit},
	})
	require.NoError(t, err)

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "exact.bin", res.Accepted[0].Name)
	// rejected inputs are reported with a reason, never silently dropped
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "over.bin", res.Rejected[0].Name)
	assert.Contains(t, res.Rejected[0].Reason, "limit")
}

func TestCatalog_UploadDefaultsMimeType(t *testing.T) {
	cs := newCatalog(t, newFakeBlobStore(), &fakeMetaIndex{}, 1<<20)

	res, err := cs.Upload(context.Background(), uuid.New(), []file.Input{
		{Name: "mystery", Content: []byte("x")},
	})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, file.DefaultMimeType, res.Accepted[0].MimeType)
	assert.Equal(t, file.CategoryOthers, res.Accepted[0].Category)
}

func TestCatalog_UploadBlobFailureRollsBackBatch(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.failPutFor = "poison"
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()

	_, err := cs.Upload(ctx, uuid.New(), []file.Input{
		input("ok.txt", "text/plain", "fine"),
		input("bad.txt", "text/plain", "poison"),
	})
	require.ErrorIs(t, err, ErrUploadFailed)

	// no partial batch: earlier blobs removed, index untouched
	assert.Equal(t, 0, blobs.count())
	records, _ := index.Load()
	assert.Empty(t, records)
}

func TestCatalog_RemoveIsIdempotentlyNotFound(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	res, err := cs.Upload(ctx, owner, []file.Input{input("a.txt", "text/plain", "a")})
	require.NoError(t, err)
	id := res.Accepted[0].ID

	require.NoError(t, cs.Remove(ctx, owner, id))
	assert.Equal(t, 0, blobs.count())

	// second remove finds nothing and changes nothing
	err = cs.Remove(ctx, owner, id)
	assert.ErrorIs(t, err, ErrFileNotFound)
	records, _ := index.Load()
	assert.Empty(t, records)
	assert.Equal(t, 0, blobs.count())
}

func TestCatalog_RemoveOtherOwnersFileNotFound(t *testing.T) {
	cs := newCatalog(t, newFakeBlobStore(), &fakeMetaIndex{}, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	res, err := cs.Upload(ctx, owner, []file.Input{input("a.txt", "text/plain", "a")})
	require.NoError(t, err)

	err = cs.Remove(ctx, uuid.New(), res.Accepted[0].ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCatalog_RemoveRestoresRecordOnBlobDeleteFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	res, err := cs.Upload(ctx, owner, []file.Input{input("a.txt", "text/plain", "a")})
	require.NoError(t, err)
	rec := res.Accepted[0]
	blobs.deleteFailFor[rec.BlobKey] = true

	err = cs.Remove(ctx, owner, rec.ID)
	require.Error(t, err)

	// the record came back, so the catalog never shows a dangling entry
	records, _ := index.Load()
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestCatalog_ConcurrentUploadsDoNotLoseUpdates(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := cs.Upload(ctx, owner, []file.Input{
				input(fmt.Sprintf("f-%d.txt", i), "text/plain", fmt.Sprintf("content-%d", i)),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// the mutation mutex means every append survives
	records, err := cs.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, records, n)
}

func TestCatalog_Reconcile(t *testing.T) {
	blobs := newFakeBlobStore()
	index := &fakeMetaIndex{}
	cs := newCatalog(t, blobs, index, 1<<20)
	ctx := context.Background()
	owner := uuid.New()

	res, err := cs.Upload(ctx, owner, []file.Input{input("keep.txt", "text/plain", "keep")})
	require.NoError(t, err)

	// orphan blob: written, never indexed
	require.NoError(t, blobs.Put(ctx, "orphan-key", []byte("orphan")))

	// dangling record: indexed, blob gone
	records, _ := index.Load()
	records = append(records, &file.Record{
		ID:      uuid.New(),
		BlobKey: "missing-key",
		OwnerID: owner,
		Name:    "ghost.txt",
	})
	require.NoError(t, index.Store(records))

	require.NoError(t, cs.Reconcile(ctx))

	listed, err := cs.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, res.Accepted[0].ID, listed[0].ID)

	keys, err := blobs.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Accepted[0].BlobKey}, keys)
}

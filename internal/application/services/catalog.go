package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/mq"
	dtoFile "filevault-api/internal/interface/api/rest/dto/file"
)

var (
	ErrUploadFailed = errors.New("upload failed")
	ErrFileNotFound = errors.New("file not found")
)

// CatalogService keeps the blob store and the metadata index consistent.
// There is no transaction spanning the two stores, so every mutation runs
// the load-modify-store cycle under a single service-owned mutex: one
// in-flight mutation at a time, which rules out the lost-update anomaly of
// concurrent index writes.
type CatalogService struct {
	logger       *zap.Logger
	blobs        ports.BlobStore
	index        ports.MetaIndex
	events       ports.VaultEvents
	mCounter     *prometheus.CounterVec
	maxFileBytes int64

	mu sync.Mutex
}

func NewCatalogService(
	logger *zap.Logger,
	blobs ports.BlobStore,
	index ports.MetaIndex,
	events ports.VaultEvents,
	mCounter *prometheus.CounterVec,
	maxFileBytes int64,
) ports.CatalogService {
	return &CatalogService{
		logger:       logger,
		blobs:        blobs,
		index:        index,
		events:       events,
		mCounter:     mCounter,
		maxFileBytes: maxFileBytes,
	}
}

// Upload stores a batch of files. Oversized inputs are reported back, not
// silently dropped. All blobs are written before the index is touched; if any
// blob write fails, blobs already written for this batch are removed again and
// the whole batch fails, so a partial batch never reaches the index.
func (cs *CatalogService) Upload(
	ctx context.Context,
	ownerID user.UUID,
	inputs []file.Input,
) (*file.UploadResult, error) {
	res := &file.UploadResult{}

	type staged struct {
		rec     *file.Record
		content []byte
	}
	var batch []staged

	for _, in := range inputs {
		if int64(len(in.Content)) > cs.maxFileBytes {
			res.Rejected = append(res.Rejected, file.Rejected{
				Name:   in.Name,
				Reason: fmt.Sprintf("exceeds the %s per-file limit", FormatFileSize(cs.maxFileBytes)),
			})
			continue
		}

		mimeType := in.MimeType
		if mimeType == "" {
			mimeType = file.DefaultMimeType
		}
		lastModified := in.LastModified
		if lastModified.IsZero() {
			lastModified = time.Now()
		}

		batch = append(batch, staged{
			rec: &file.Record{
				ID:           uuid.New(),
				BlobKey:      uuid.NewString(),
				OwnerID:      ownerID,
				Name:         in.Name,
				MimeType:     mimeType,
				SizeBytes:    int64(len(in.Content)),
				LastModified: lastModified,
				Category:     file.Classify(mimeType),
			},
			content: in.Content,
		})
	}

	if len(batch) == 0 {
		return res, nil
	}

	written := make([]string, 0, len(batch))
	cleanup := func() {
		for _, key := range written {
			if err := cs.blobs.Delete(ctx, key); err != nil {
				cs.logger.Error("batch cleanup: blob delete failed",
					zap.String("blob_key", key), zap.Error(err))
			}
		}
	}

	for _, st := range batch {
		if err := cs.blobs.Put(ctx, st.rec.BlobKey, st.content); err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: blob write for %q: %v", ErrUploadFailed, st.rec.Name, err)
		}
		written = append(written, st.rec.BlobKey)
	}

	cs.mu.Lock()
	records, err := cs.index.Load()
	if err == nil {
		for _, st := range batch {
			records = append(records, st.rec)
		}
		err = cs.index.Store(records)
	}
	cs.mu.Unlock()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	for _, st := range batch {
		res.Accepted = append(res.Accepted, st.rec)
		cs.publish(mq.ActionFileUploaded, st.rec)
	}
	cs.mCounter.WithLabelValues("vault_files_uploaded_total").Add(float64(len(res.Accepted)))

	return res, nil
}

// Remove deletes the record first and its blob second. If the blob delete
// fails, the record is restored so the catalog never shows a dangling entry.
func (cs *CatalogService) Remove(ctx context.Context, ownerID user.UUID, id uuid.UUID) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	records, err := cs.index.Load()
	if err != nil {
		return err
	}

	var removed *file.Record
	kept := make(file.Records, 0, len(records))
	for _, rec := range records {
		if rec.ID == id && rec.OwnerID == ownerID {
			removed = rec
			continue
		}
		kept = append(kept, rec)
	}
	if removed == nil {
		return ErrFileNotFound
	}

	if err = cs.index.Store(kept); err != nil {
		return err
	}

	if err = cs.blobs.Delete(ctx, removed.BlobKey); err != nil {
		if restoreErr := cs.index.Store(records); restoreErr != nil {
			cs.logger.Error("record restore after blob delete failure failed",
				zap.String("file_id", id.String()), zap.Error(restoreErr))
		}
		return fmt.Errorf("blob delete for %q: %w", removed.Name, err)
	}

	cs.publish(mq.ActionFileDeleted, removed)
	cs.mCounter.WithLabelValues("vault_files_deleted_total").Inc()

	return nil
}

func (cs *CatalogService) List(ctx context.Context, ownerID user.UUID) (file.Records, error) {
	records, err := cs.index.Load()
	if err != nil {
		return nil, err
	}

	owned := make(file.Records, 0, len(records))
	for _, rec := range records {
		if rec.OwnerID == ownerID {
			owned = append(owned, rec)
		}
	}

	return owned, nil
}

func (cs *CatalogService) Get(ctx context.Context, ownerID user.UUID, id uuid.UUID) (*file.Record, error) {
	records, err := cs.index.Load()
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.ID == id && rec.OwnerID == ownerID {
			return rec, nil
		}
	}

	return nil, ErrFileNotFound
}

func (cs *CatalogService) Content(ctx context.Context, rec *file.Record) ([]byte, error) {
	return cs.blobs.Get(ctx, rec.BlobKey)
}

// Reconcile runs at startup: a reload or crash mid-upload can leave a blob
// with no record (orphan) or a record whose blob is gone (dangling). Orphan
// blobs are deleted, dangling records dropped.
func (cs *CatalogService) Reconcile(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	records, err := cs.index.Load()
	if err != nil {
		return err
	}
	keys, err := cs.blobs.Keys(ctx)
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		live[k] = struct{}{}
	}

	kept := make(file.Records, 0, len(records))
	referenced := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, ok := live[rec.BlobKey]; !ok {
			cs.logger.Warn("dropping dangling record",
				zap.String("file_id", rec.ID.String()), zap.String("name", rec.Name))
			continue
		}
		referenced[rec.BlobKey] = struct{}{}
		kept = append(kept, rec)
	}

	for _, k := range keys {
		if _, ok := referenced[k]; ok {
			continue
		}
		cs.logger.Warn("deleting orphan blob", zap.String("blob_key", k))
		if err = cs.blobs.Delete(ctx, k); err != nil {
			return err
		}
	}

	if len(kept) != len(records) {
		if err = cs.index.Store(kept); err != nil {
			return err
		}
	}

	return nil
}

func (cs *CatalogService) publish(action string, rec *file.Record) {
	cs.events.GetInputChan() <- mq.Event{
		Id:      uuid.New(),
		TS:      time.Now(),
		Action:  action,
		OwnerID: rec.OwnerID.String(),
		Payload: dtoFile.ToResponseFile(*rec),
	}
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/user"
)

type CatalogService interface {
	Upload(ctx context.Context, ownerID user.UUID, inputs []file.Input) (*file.UploadResult, error)
	Remove(ctx context.Context, ownerID user.UUID, id uuid.UUID) error
	List(ctx context.Context, ownerID user.UUID) (file.Records, error)
	Get(ctx context.Context, ownerID user.UUID, id uuid.UUID) (*file.Record, error)
	Content(ctx context.Context, rec *file.Record) ([]byte, error)
	Reconcile(ctx context.Context) error
}

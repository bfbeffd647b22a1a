package ports

import (
	"context"

	"filevault-api/internal/infrastructure/mq"
)

// VaultEvents receives catalog events (file uploaded / deleted) from the
// services and delivers them from a worker goroutine.
type VaultEvents interface {
	GetInputChan() chan mq.Event
	PublisherWorker(ctx context.Context)
}

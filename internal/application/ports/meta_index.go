package ports

import (
	"filevault-api/internal/domain/file"
)

// MetaIndex persists the full record collection as one document. Load returns
// the whole ordered sequence; Store replaces it. There is no per-record write.
type MetaIndex interface {
	Load() (file.Records, error)
	Store(records file.Records) error
}

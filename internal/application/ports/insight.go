package ports

import "context"

// InsightProvider turns a file description into a short natural-language
// sentence. Implementations never retry; callers fall back to a fixed string.
type InsightProvider interface {
	Describe(ctx context.Context, fileName, mimeType, snippet string) (string, error)
}

type InsightService interface {
	FileInsight(ctx context.Context, fileName, mimeType string, content []byte) string
}

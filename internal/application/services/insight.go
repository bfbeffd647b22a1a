package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
)

// FallbackInsight is returned whenever the provider cannot produce a
// description. There is no retry.
const FallbackInsight = "No AI insight is available for this file right now."

const maxSnippetLen = 500

type InsightService struct {
	logger   *zap.Logger
	provider ports.InsightProvider
}

func NewInsightService(
	logger *zap.Logger,
	provider ports.InsightProvider,
) ports.InsightService {
	return &InsightService{
		logger:   logger,
		provider: provider,
	}
}

func (is *InsightService) FileInsight(ctx context.Context, fileName, mimeType string, content []byte) string {
	snippet := snippetFrom(mimeType, content)

	text, err := is.provider.Describe(ctx, fileName, mimeType, snippet)
	if err != nil {
		is.logger.Warn("insight provider failed, using fallback",
			zap.String("file_name", fileName), zap.Error(err))
		return FallbackInsight
	}

	return text
}

// snippetFrom extracts up to 500 characters of leading content from text-like
// files; binary content yields no snippet.
func snippetFrom(mimeType string, content []byte) string {
	mt := strings.ToLower(mimeType)
	textLike := strings.HasPrefix(mt, "text/") ||
		strings.Contains(mt, "json") ||
		strings.Contains(mt, "xml")
	if !textLike || len(content) == 0 {
		return ""
	}

	s := string(content)
	if !utf8.ValidString(s) {
		return ""
	}

	runes := []rune(s)
	if len(runes) > maxSnippetLen {
		runes = runes[:maxSnippetLen]
	}

	return strings.TrimSpace(string(runes))
}

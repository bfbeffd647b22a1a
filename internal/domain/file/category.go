package file

import "strings"

type Category string

const (
	CategoryImages    Category = "images"
	CategoryVideos    Category = "videos"
	CategoryDocuments Category = "documents"
	CategoryOthers    Category = "others"
)

// DefaultMimeType is assumed when the source file carries no type.
const DefaultMimeType = "application/octet-stream"

var documentMarkers = []string{"pdf", "text", "word", "presentation", "spreadsheet"}

// Classify maps a MIME type onto the closed category set. The result is
// persisted on the record at upload time and never recomputed, so the
// mapping must stay stable for a given input.
func Classify(mimeType string) Category {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImages
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideos
	}
	for _, m := range documentMarkers {
		if strings.Contains(mt, m) {
			return CategoryDocuments
		}
	}
	return CategoryOthers
}

// ValidCategory reports whether s names a known category or the "all" filter.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryImages, CategoryVideos, CategoryDocuments, CategoryOthers:
		return true
	}
	return s == "all"
}

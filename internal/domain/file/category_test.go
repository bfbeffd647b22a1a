package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     Category
	}{
		{"png image", "image/png", CategoryImages},
		{"jpeg image", "image/jpeg", CategoryImages},
		{"mp4 video", "video/mp4", CategoryVideos},
		{"pdf", "application/pdf", CategoryDocuments},
		{"plain text", "text/plain", CategoryDocuments},
		{"word", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", CategoryDocuments},
		{"presentation", "application/vnd.ms-powerpoint.presentation.macroEnabled.12", CategoryDocuments},
		{"spreadsheet", "application/vnd.oasis.opendocument.spreadsheet", CategoryDocuments},
		{"audio falls through", "audio/mpeg", CategoryOthers},
		{"generic binary", DefaultMimeType, CategoryOthers},
		{"empty", "", CategoryOthers},
		{"case insensitive", "IMAGE/PNG", CategoryImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mimeType))
			// persisted results are never recomputed, so the mapping
			// must be referentially transparent
			assert.Equal(t, Classify(tt.mimeType), Classify(tt.mimeType))
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, ok := range []string{"all", "images", "videos", "documents", "others"} {
		assert.True(t, ValidCategory(ok), ok)
	}
	for _, bad := range []string{"", "music", "Images"} {
		assert.False(t, ValidCategory(bad), bad)
	}
}

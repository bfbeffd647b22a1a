package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID           uuid.UUID `json:"id"`
		Name         string    `json:"name"`
		MimeType     string    `json:"mime_type"`
		SizeBytes    int64     `json:"size_bytes"`
		LastModified time.Time `json:"last_modified"`
		Category     string    `json:"category"`
	}
	Files        []File
	RejectedFile struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}
	ResponseData struct {
		Data Files `json:"data"`
	}
	UploadResponse struct {
		Accepted Files          `json:"accepted"`
		Rejected []RejectedFile `json:"rejected"`
	}
	UsageResponse struct {
		TotalBytes     int64   `json:"total_bytes"`
		TotalFormatted string  `json:"total_formatted"`
		Percent        float64 `json:"percent"`
	}
	InsightResponse struct {
		Insight string `json:"insight"`
	}
)

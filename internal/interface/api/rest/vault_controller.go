package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/jwt"
	dtoFile "filevault-api/internal/interface/api/rest/dto/file"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type VaultController struct {
	catalogService ports.CatalogService
	insightService ports.InsightService
	logger         *zap.Logger
	quotaBytes     int64
}

func NewVaultController(
	r *gin.Engine,
	catalogService ports.CatalogService,
	insightService ports.InsightService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	quotaBytes int64,
) *VaultController {
	vc := &VaultController{
		catalogService: catalogService,
		insightService: insightService,
		logger:         logger,
		quotaBytes:     quotaBytes,
	}

	authed := []gin.HandlerFunc{middleware.AuthMiddleware(jwtService), middleware.OwnerGuard()}

	r.GET(RouteUserFiles, append(authed, vc.ListFilesHandler)...)
	r.POST(RouteUserFiles, append(authed, vc.UploadFilesHandler)...)
	r.DELETE(RouteUserFile, append(authed, vc.DeleteFileHandler)...)
	r.GET(RouteFileDownload, append(authed, vc.DownloadFileHandler)...)
	r.GET(RouteFileInsight, append(authed, vc.FileInsightHandler)...)
	r.GET(RouteUserUsage, append(authed, vc.UsageHandler)...)

	return vc
}

func (vc *VaultController) ListFilesHandler(c *gin.Context) {
	ok, ownerID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	category, sortKey, sortOrder, vErr := validator.ValidateListQuery(
		c.Query("category"), c.Query("sort"), c.Query("order"),
	)
	if vErr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr})
		return
	}

	records, err := vc.catalogService.List(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to list files"},
		)
		vc.logger.Error("List() error", zap.Error(err))
		return
	}

	view := services.FilterAndSort(records, c.Query("q"), category, sortKey, sortOrder)

	c.JSON(http.StatusOK, dtoFile.ResponseData{
		Data: dtoFile.ToResponseFiles(view),
	})
}

func (vc *VaultController) UploadFilesHandler(c *gin.Context) {
	ok, ownerID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	// last_modified values pair up with the files by position, epoch ms.
	// Absent or unparsable entries leave the timestamp to the catalog.
	lastModified := form.Value["last_modified"]

	inputs := make([]file.Input, 0, len(headers))
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot open %q", fh.Filename)})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot read %q", fh.Filename)})
			return
		}

		var modified time.Time
		if i < len(lastModified) {
			if ms, err := strconv.ParseInt(lastModified[i], 10, 64); err == nil && ms > 0 {
				modified = time.UnixMilli(ms)
			}
		}

		inputs = append(inputs, file.Input{
			Name:         path.Base(fh.Filename),
			MimeType:     fh.Header.Get("Content-Type"),
			LastModified: modified,
			Content:      content,
		})
	}

	res, err := vc.catalogService.Upload(c.Request.Context(), ownerID, inputs)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to upload files"},
		)
		vc.logger.Error("Upload() error", zap.Error(err))
		return
	}

	status := http.StatusCreated
	if len(res.Rejected) > 0 {
		status = http.StatusOK
	}
	c.JSON(status, dtoFile.ToUploadResponse(res))
}

func (vc *VaultController) DeleteFileHandler(c *gin.Context) {
	ok, ownerID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	err := vc.catalogService.Remove(c.Request.Context(), ownerID, fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to delete file"},
		)
		vc.logger.Error("Remove() error", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (vc *VaultController) DownloadFileHandler(c *gin.Context) {
	rec, done := vc.lookupFile(c)
	if done {
		return
	}

	content, err := vc.catalogService.Content(c.Request.Context(), rec)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to read file content"},
		)
		vc.logger.Error("Content() error", zap.Error(err))
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", sanitizeFileName(rec.Name)))
	c.Data(http.StatusOK, rec.MimeType, content)
}

func (vc *VaultController) FileInsightHandler(c *gin.Context) {
	rec, done := vc.lookupFile(c)
	if done {
		return
	}

	content, err := vc.catalogService.Content(c.Request.Context(), rec)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to read file content"},
		)
		vc.logger.Error("Content() error", zap.Error(err))
		return
	}

	insight := vc.insightService.FileInsight(c.Request.Context(), rec.Name, rec.MimeType, content)

	c.JSON(http.StatusOK, dtoFile.InsightResponse{Insight: insight})
}

func (vc *VaultController) UsageHandler(c *gin.Context) {
	ok, ownerID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	records, err := vc.catalogService.List(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to list files"},
		)
		vc.logger.Error("List() error", zap.Error(err))
		return
	}

	u := services.UsageSummary(records, vc.quotaBytes)

	c.JSON(http.StatusOK, dtoFile.UsageResponse{
		TotalBytes:     u.TotalBytes,
		TotalFormatted: u.TotalFormatted,
		Percent:        u.Percent,
	})
}

// lookupFile resolves :user_id/:file_id, writing the error response itself.
// The second return is true when the request has already been answered.
func (vc *VaultController) lookupFile(c *gin.Context) (*file.Record, bool) {
	ok, ownerID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return nil, true
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return nil, true
	}

	rec, err := vc.catalogService.Get(c.Request.Context(), ownerID, fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return nil, true
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get file"},
		)
		vc.logger.Error("Get() error", zap.Error(err))
		return nil, true
	}

	return rec, false
}

// sanitizeFileName strips diacritics and control characters so the name is
// safe inside a Content-Disposition header. Display names in the catalog are
// stored untouched.
func sanitizeFileName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	if s == "." || s == ".." || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' {
			return -1
		}
		return r
	}, s)

	if s == "" {
		return "file"
	}
	return s
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }

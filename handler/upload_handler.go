package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/service"
	"github.com/insightdesk/insightdesk-be/types"
)

type UploadHandler struct {
	ingestService *service.IngestService
}

func NewUploadHandler(ingestService *service.IngestService) *UploadHandler {
	return &UploadHandler{
		ingestService: ingestService,
	}
}

// HandleUpload accepts a multipart upload and returns as soon as the
// document row exists and the bytes are stored; ingestion continues in the
// background with the document in processing.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Missing required fields: file, projectId, companyId",
		})
		return
	}
	defer file.Close()

	projectID := c.Request.FormValue("projectId")
	companyID := c.Request.FormValue("companyId")
	if projectID == "" || companyID == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Missing required fields: file, projectId, companyId",
		})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeTypeFromFilename(header.Filename)
	}

	if err := h.ingestService.ValidateUpload(header.Filename, mimeType, header.Size); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, types.MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to read file"})
		return
	}
	if len(data) > types.MaxUploadSize {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "file size exceeds 10MB limit"})
		return
	}

	doc, err := h.ingestService.AcceptUpload(c.Request.Context(), companyID, projectID, header.Filename, mimeType, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Success: true,
		Document: types.UploadedDocument{
			ID:     doc.ID,
			Name:   doc.Name,
			Status: doc.Status,
		},
	})
}

var extensionMimeTypes = map[string]string{
	".pdf":      types.MimeTypePDF,
	".txt":      types.MimeTypePlain,
	".md":       types.MimeTypeMarkdown,
	".markdown": types.MimeTypeMarkdown,
	".csv":      types.MimeTypeCSV,
}

func mimeTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mimeType, ok := extensionMimeTypes[ext]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

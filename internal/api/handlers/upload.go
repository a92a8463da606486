package handlers

import (
	"strings"

	"collab-service/internal/database"
	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20 // 10 MiB

type UploadHandler struct {
	storage *database.MinIOClient
}

func NewUploadHandler(storage *database.MinIOClient) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Upload stores an image (avatar or attachment) and returns its URL.
// POST /api/v1/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.storage == nil {
		response.InternalError(c, "file storage is not configured")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file field is required")
		return
	}
	if file.Size > maxUploadSize {
		response.BadRequest(c, "file exceeds 10MB limit")
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		response.BadRequest(c, "only image uploads are allowed")
		return
	}

	url, err := h.storage.UploadFile(c.Request.Context(), file)
	if err != nil {
		response.InternalError(c, "failed to store file")
		return
	}

	response.Created(c, gin.H{"url": url})
}

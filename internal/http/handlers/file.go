package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/services"
)

const uploadField = "file"

type FileHandler struct {
	files    services.FileService
	maxBytes int64
}

func NewFileHandler(files services.FileService, maxBytes int64) *FileHandler {
	return &FileHandler{files: files, maxBytes: maxBytes}
}

// POST /files/product (multipart field "file")
func (h *FileHandler) UploadProductImage(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	var upload *services.UploadedFile
	fh, err := c.FormFile(uploadField)
	switch {
	case err == nil:
		f, openErr := fh.Open()
		if openErr != nil {
			respondServiceError(c, "upload_open_failed", openErr)
			return
		}
		defer f.Close()
		upload = &services.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		}
	case isBodyTooLarge(err):
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("File exceeds the %d byte limit", h.maxBytes))
		return
	default:
		// missing field or malformed form: same answer as a filtered file
	}

	res, err := h.files.SaveProductImage(c.Request.Context(), upload)
	if err != nil {
		respondServiceError(c, "upload_failed", err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /files/product/:imageName
func (h *FileHandler) FindProductImage(c *gin.Context) {
	path, err := h.files.FindProductImage(c.Param("imageName"))
	if err != nil {
		respondServiceError(c, "image_lookup_failed", err)
		return
	}
	c.File(path)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/localstore"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	ProductImageRoute = "/files/product/"
	sniffLen          = 3072
)

var allowedImageSubtypes = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// UploadedFile is one multipart part as received by the transport.
type UploadedFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type UploadResult struct {
	SecureURL string `json:"secureUrl"`
	FileName  string `json:"-"`
}

type FileService interface {
	SaveProductImage(ctx context.Context, file *UploadedFile) (*UploadResult, error)
	// FindProductImage returns the on-disk path of a stored image.
	FindProductImage(name string) (string, error)
}

type fileService struct {
	log     *logger.Logger
	store   *localstore.Store
	hostAPI string
	metrics *observability.Metrics
}

func NewFileService(log *logger.Logger, store *localstore.Store, hostAPI string, metrics *observability.Metrics) FileService {
	return &fileService{
		log:     log.With("service", "FileService"),
		store:   store,
		hostAPI: strings.TrimRight(strings.TrimSpace(hostAPI), "/"),
		metrics: metrics,
	}
}

func errNotAnImage() error {
	return apierr.BadRequest("invalid_file", "Make sure that the file is an image")
}

func (s *fileService) SaveProductImage(ctx context.Context, file *UploadedFile) (*UploadResult, error) {
	if file == nil || file.Content == nil {
		s.metrics.ObserveUpload("rejected", 0)
		return nil, errNotAnImage()
	}
	subtype, ok := imageSubtype(file.ContentType)
	if !ok {
		s.log.Debug("rejected upload by declared type", "content_type", file.ContentType, "filename", file.Filename)
		s.metrics.ObserveUpload("rejected", 0)
		return nil, errNotAnImage()
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.log.Error("failed to read upload", "error", err)
		s.metrics.ObserveUpload("failed", 0)
		return nil, apierr.Internal("upload_read_failed")
	}
	head = head[:n]
	if detected := mimetype.Detect(head); !strings.HasPrefix(detected.String(), "image/") {
		s.log.Debug("rejected upload by content", "declared", file.ContentType, "detected", detected.String())
		s.metrics.ObserveUpload("rejected", 0)
		return nil, errNotAnImage()
	}

	if err := ctx.Err(); err != nil {
		return nil, apierr.New(http.StatusRequestTimeout, "upload_canceled", err)
	}

	name := uuid.NewString() + "." + subtype
	written, err := s.store.Create(name, io.MultiReader(bytes.NewReader(head), file.Content))
	if err != nil {
		s.log.Error("failed to store upload", "file", name, "error", err)
		s.metrics.ObserveUpload("failed", 0)
		return nil, apierr.Internal("upload_store_failed")
	}
	s.metrics.ObserveUpload("accepted", written)

	return &UploadResult{
		SecureURL: s.hostAPI + ProductImageRoute + name,
		FileName:  name,
	}, nil
}

func (s *fileService) FindProductImage(name string) (string, error) {
	path, err := s.store.Path(name)
	if err != nil {
		return "", apierr.BadRequest("invalid_image_name", "Invalid image name")
	}
	ok, err := s.store.Exists(name)
	if err != nil {
		s.log.Error("failed to stat image", "file", name, "error", err)
		return "", apierr.Internal("image_lookup_failed")
	}
	if !ok {
		return "", apierr.NotFound("image_not_found", fmt.Sprintf("No product found with image %s", name))
	}
	return path, nil
}

// imageSubtype accepts image/<subtype> for the supported subtypes and returns
// the subtype, which doubles as the stored file extension.
func imageSubtype(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		return "", false
	}
	major, sub, ok := strings.Cut(strings.ToLower(mediaType), "/")
	if !ok || major != "image" {
		return "", false
	}
	if _, ok := allowedImageSubtypes[sub]; !ok {
		return "", false
	}
	return sub, true
}

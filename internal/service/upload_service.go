package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/storage"
)

// blogUploadSubdir is the directory under the uploads root holding blog images.
const blogUploadSubdir = "activity-blogs"

type imageRecorder interface {
	CreateImage(ctx context.Context, image *models.ActivityImage) error
}

// UploadResult is the payload returned after a successful upload.
type UploadResult struct {
	ID           *int64 `json:"id"`
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// UploadService validates and stores multipart image uploads.
type UploadService struct {
	store          *storage.LocalStorage
	images         imageRecorder
	metrics        *MetricsService
	maxSizeBytes   int64
	publicBasePath string
	logger         *zap.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(store *storage.LocalStorage, images imageRecorder, metrics *MetricsService, maxSizeBytes int64, publicBasePath string, logger *zap.Logger) *UploadService {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 10 * 1024 * 1024
	}
	if publicBasePath == "" {
		publicBasePath = "/api/images"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		store:          store,
		images:         images,
		metrics:        metrics,
		maxSizeBytes:   maxSizeBytes,
		publicBasePath: strings.TrimRight(publicBasePath, "/"),
		logger:         logger,
	}
}

// Save validates the uploaded file and writes it to disk, recording an
// ActivityImage row when a blog id is supplied. All validation happens
// before any disk write.
func (s *UploadService) Save(ctx context.Context, header *multipart.FileHeader, activityBlogID int64) (*UploadResult, error) {
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file provided")
	}
	if header.Size > s.maxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file too large (max %d MB)", s.maxSizeBytes/(1024*1024)))
	}
	mimetype := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimetype, "image/") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only image files are allowed")
	}

	filename := generateFilename(header.Filename)
	relPath := path.Join(blogUploadSubdir, filename)

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close() //nolint:errcheck

	written, err := s.store.SaveStream(relPath, file)
	if err != nil {
		s.logger.Error("upload write failed", zap.String("path", relPath), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	if s.metrics != nil {
		s.metrics.RecordUpload(written)
	}

	result := &UploadResult{
		URL:          fmt.Sprintf("%s/%s/%s", s.publicBasePath, blogUploadSubdir, filename),
		Filename:     filename,
		OriginalName: header.Filename,
		Size:         written,
	}

	if activityBlogID > 0 && s.images != nil {
		image := &models.ActivityImage{
			ActivityBlogID: activityBlogID,
			Filename:       filename,
			OriginalName:   header.Filename,
			Mimetype:       mimetype,
			Size:           written,
			URL:            result.URL,
		}
		if err := s.images.CreateImage(ctx, image); err != nil {
			// The file is on disk; losing the metadata row is recoverable.
			s.logger.Warn("failed to record image metadata", zap.Int64("blog_id", activityBlogID), zap.Error(err))
		} else {
			result.ID = &image.ID
		}
	}

	return result, nil
}

// Open returns a stored file for serving, guarding against path traversal.
func (s *UploadService) Open(relPath string) (io.ReadCloser, *FileInfo, error) {
	file, info, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, err
	}
	return file, &FileInfo{
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: storage.ContentTypeByExt(relPath),
	}, nil
}

// FileInfo describes a stored file for response headers.
type FileInfo struct {
	Size        int64
	ModTime     time.Time
	ContentType string
}

func generateFilename(original string) string {
	ext := strings.ToLower(path.Ext(original))
	random := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), random, ext)
}

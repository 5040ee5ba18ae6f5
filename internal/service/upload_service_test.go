package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/storage"
)

type mockImageRecorder struct {
	image *models.ActivityImage
	err   error
}

func (m *mockImageRecorder) CreateImage(ctx context.Context, image *models.ActivityImage) error {
	if m.err != nil {
		return m.err
	}
	image.ID = 77
	m.image = image
	return nil
}

func buildFileHeader(t *testing.T, field, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() }) //nolint:errcheck
	files := form.File[field]
	require.Len(t, files, 1)
	return files[0]
}

func newUploadServiceForTest(t *testing.T, recorder *mockImageRecorder, maxSize int64) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewUploadService(store, recorder, nil, maxSize, "/api/images", zap.NewNop()), dir
}

func dirEntryCount(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestUploadServiceSaveSuccess(t *testing.T) {
	recorder := &mockImageRecorder{}
	svc, dir := newUploadServiceForTest(t, recorder, 0)

	header := buildFileHeader(t, "file", "photo.PNG", "image/png", []byte("pngdata"))
	result, err := svc.Save(context.Background(), header, 3)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]+\.png$`), result.Filename)
	assert.Equal(t, "/api/images/activity-blogs/"+result.Filename, result.URL)
	assert.Equal(t, "photo.PNG", result.OriginalName)
	assert.Equal(t, int64(len("pngdata")), result.Size)
	require.NotNil(t, result.ID)
	assert.Equal(t, int64(77), *result.ID)

	require.NotNil(t, recorder.image)
	assert.Equal(t, int64(3), recorder.image.ActivityBlogID)
	assert.Equal(t, "image/png", recorder.image.Mimetype)

	stored, err := os.ReadFile(filepath.Join(dir, "activity-blogs", result.Filename))
	require.NoError(t, err)
	assert.Equal(t, "pngdata", string(stored))
}

func TestUploadServiceSaveWithoutRecorderStillStoresFile(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewUploadService(store, nil, nil, 0, "/api/images", zap.NewNop())

	header := buildFileHeader(t, "file", "photo.png", "image/png", []byte("png"))
	result, err := svc.Save(context.Background(), header, 3)

	require.NoError(t, err)
	assert.Nil(t, result.ID)
	assert.NotEmpty(t, result.Filename)
}

func TestUploadServiceSaveWithoutBlogSkipsRecord(t *testing.T) {
	recorder := &mockImageRecorder{}
	svc, _ := newUploadServiceForTest(t, recorder, 0)

	header := buildFileHeader(t, "file", "photo.jpg", "image/jpeg", []byte("jpg"))
	result, err := svc.Save(context.Background(), header, 0)
	require.NoError(t, err)
	assert.Nil(t, result.ID)
	assert.Nil(t, recorder.image)
}

func TestUploadServiceRejectsNonImageBeforeWrite(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, &mockImageRecorder{}, 0)

	header := buildFileHeader(t, "file", "notes.txt", "text/plain", []byte("hello"))
	_, err := svc.Save(context.Background(), header, 0)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "image")
	assert.Zero(t, dirEntryCount(t, dir))
}

func TestUploadServiceRejectsOversizeBeforeWrite(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, &mockImageRecorder{}, 4)

	header := buildFileHeader(t, "file", "big.png", "image/png", []byte("12345"))
	_, err := svc.Save(context.Background(), header, 0)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "too large")
	assert.Zero(t, dirEntryCount(t, dir))
}

func TestUploadServiceRejectsNilHeader(t *testing.T) {
	svc, _ := newUploadServiceForTest(t, &mockImageRecorder{}, 0)

	_, err := svc.Save(context.Background(), nil, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadServiceRecordFailureStillReturnsFile(t *testing.T) {
	recorder := &mockImageRecorder{err: assert.AnError}
	svc, _ := newUploadServiceForTest(t, recorder, 0)

	header := buildFileHeader(t, "file", "photo.png", "image/png", []byte("data"))
	result, err := svc.Save(context.Background(), header, 3)
	require.NoError(t, err)
	assert.Nil(t, result.ID)
	assert.True(t, strings.HasSuffix(result.URL, result.Filename))
}

func TestUploadServiceOpenTraversalRejected(t *testing.T) {
	svc, _ := newUploadServiceForTest(t, &mockImageRecorder{}, 0)

	_, _, err := svc.Open("../secrets.txt")
	assert.ErrorIs(t, err, storage.ErrUnsafePath)
}

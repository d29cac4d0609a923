package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/directory"
	"sweetshop/internal/models"
)

type putCall struct {
	bucket, key, contentType string
	body                     []byte
}

type fakeObjects struct {
	calls []putCall
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.calls = append(f.calls, putCall{bucket: bucket, key: key, contentType: opts.ContentType, body: body})
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

// upload builds the multipart file the gin handler would pass through.
func upload(t *testing.T, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="pic"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageBytes))
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func newImageService(h *harness, objects ObjectPutter) *ImageService {
	return NewImageService(objects, "item-images", "cdn.example.com", h.inventory, h.sessions, zerolog.Nop())
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

func TestAttach_StoresAndSetsImageRef(t *testing.T) {
	h := newHarness(t)
	objects := &fakeObjects{}
	svc := newImageService(h, objects)
	admin := h.login(t, directory.AdminEmail, directory.AdminPassword)
	item := h.item(t, 1)

	file, header := upload(t, "image/png", pngBytes)
	got, err := svc.Attach(context.Background(), admin, ImageInput{ItemID: item.ID, File: file, Header: header})
	require.NoError(t, err)

	require.Len(t, objects.calls, 1)
	call := objects.calls[0]
	assert.Equal(t, "item-images", call.bucket)
	assert.Equal(t, "image/png", call.contentType)
	assert.True(t, strings.HasPrefix(call.key, "items/"+item.ID+"/"))
	assert.True(t, strings.HasSuffix(call.key, ".png"))

	require.NotNil(t, got.ImageRef)
	assert.Equal(t, "https://cdn.example.com/item-images/"+call.key, *got.ImageRef)
}

func TestAttach_SanitizesSVG(t *testing.T) {
	h := newHarness(t)
	objects := &fakeObjects{}
	svc := newImageService(h, objects)
	admin := h.login(t, directory.AdminEmail, directory.AdminPassword)
	item := h.item(t, 1)

	file, header := upload(t, "image/svg+xml", []byte(`<svg><script>alert(1)</script></svg>`))
	_, err := svc.Attach(context.Background(), admin, ImageInput{ItemID: item.ID, File: file, Header: header})
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(objects.calls[0].body))
}

func TestAttach_Rejections(t *testing.T) {
	h := newHarness(t)
	objects := &fakeObjects{}
	svc := newImageService(h, objects)
	admin := h.login(t, directory.AdminEmail, directory.AdminPassword)
	user := h.login(t, directory.UserEmail, directory.UserPassword)
	item := h.item(t, 1)
	ctx := context.Background()

	file, header := upload(t, "image/png", pngBytes)
	_, err := svc.Attach(ctx, user, ImageInput{ItemID: item.ID, File: file, Header: header})
	var forbidden *models.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	file, header = upload(t, "image/png", pngBytes)
	_, err = svc.Attach(ctx, admin, ImageInput{ItemID: "missing", File: file, Header: header})
	assert.True(t, models.IsNotFound(err))

	file, header = upload(t, "text/plain", []byte("just text"))
	_, err = svc.Attach(ctx, admin, ImageInput{ItemID: item.ID, File: file, Header: header})
	assert.True(t, models.IsValidation(err))

	file, header = upload(t, "image/jpeg", pngBytes)
	_, err = svc.Attach(ctx, admin, ImageInput{ItemID: item.ID, File: file, Header: header})
	assert.True(t, models.IsValidation(err), "declared type must match the content")

	file, header = upload(t, "image/png", append(append([]byte{}, pngBytes...), make([]byte, MaxImageBytes)...))
	_, err = svc.Attach(ctx, admin, ImageInput{ItemID: item.ID, File: file, Header: header})
	assert.True(t, models.IsValidation(err))

	assert.Empty(t, objects.calls)
}

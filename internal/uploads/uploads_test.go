package uploads

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/apperr"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveImage(t *testing.T) {
	store := NewStore(t.TempDir())

	rel, err := store.SaveImage(fileHeader(t, "photo.png", pngBytes(t, 400, 200)), "avatars", 100)
	require.NoError(t, err)
	assert.Equal(t, "avatars", filepath.Dir(rel))
	assert.True(t, strings.HasSuffix(rel, ".jpg"))

	f, err := os.Open(filepath.Join(store.Root, rel))
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestSaveImageKeepsSmallImages(t *testing.T) {
	store := NewStore(t.TempDir())

	rel, err := store.SaveImage(fileHeader(t, "logo.png", pngBytes(t, 60, 40)), "logos", 800)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(store.Root, rel))
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestSaveImageRejections(t *testing.T) {
	store := NewStore(t.TempDir())

	t.Run("oversized file", func(t *testing.T) {
		fh := fileHeader(t, "photo.png", pngBytes(t, 10, 10))
		fh.Size = MaxUploadBytes + 1
		_, err := store.SaveImage(fh, "avatars", 100)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindBadRequest, e.Kind)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := store.SaveImage(fileHeader(t, "photo.gif", pngBytes(t, 10, 10)), "avatars", 100)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindBadRequest, e.Kind)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := store.SaveImage(fileHeader(t, "photo.png", []byte("plain text")), "avatars", 100)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindBadRequest, e.Kind)
	})
}

func TestRemove(t *testing.T) {
	store := NewStore(t.TempDir())

	rel, err := store.SaveImage(fileHeader(t, "photo.png", pngBytes(t, 10, 10)), "avatars", 100)
	require.NoError(t, err)

	require.NoError(t, store.Remove(rel))
	_, statErr := os.Stat(filepath.Join(store.Root, rel))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, store.Remove(rel))
	assert.NoError(t, store.Remove(""))
}

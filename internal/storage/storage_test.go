package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore_Unit(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	filePath := "test/dir/my-file.txt"
	fileContent := "hello world, this is a test"

	t.Run("Save", func(t *testing.T) {
		bytesWritten, err := store.Save(ctx, filePath, bytes.NewReader([]byte(fileContent)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Open", func(t *testing.T) {
		file, err := store.Open(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, filePath))

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.False(t, exists, "file should not exist after deleting")
	})

	t.Run("Open non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "path/to/nothing.txt")
		assert.Error(t, err)
	})

	t.Run("paths stay inside the root", func(t *testing.T) {
		_, err := store.Save(ctx, "../../escape.txt", strings.NewReader("x"))
		require.NoError(t, err)
		exists, _ := afero.Exists(memFs, "escape.txt")
		assert.True(t, exists)

		_, err = store.Save(ctx, "  ", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestLocalImages_Upload(t *testing.T) {
	memFs := afero.NewMemMapFs()
	images := NewLocalImages(NewAferoStore(memFs), "http://api.test")

	url, err := images.Upload(context.Background(), strings.NewReader("jpeg bytes"), FolderAvatars)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://api.test/uploads/goonies/avatars/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	stored := strings.TrimPrefix(url, "http://api.test/uploads/")
	data, err := afero.ReadFile(memFs, stored)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	other, err := images.Upload(context.Background(), strings.NewReader("more"), FolderAvatars)
	require.NoError(t, err)
	assert.NotEqual(t, url, other, "each upload gets a fresh name")
}

func TestFileHandler_Serve(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "goonies/a.jpg", []byte("img"), 0o644))

	e := echo.New()
	e.GET(LocalPrefix+"/*", NewFileHandler(NewAferoStore(memFs)).Serve)

	t.Run("existing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/goonies/a.jpg", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, "img", rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/goonies/none.jpg", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewImages(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		cfg := &config.Config{StorageProvider: "local", StorageLocalDir: t.TempDir(), AppBaseURL: "http://api.test/"}
		images, store, err := NewImages(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &LocalImages{}, images)
		assert.NotNil(t, store)
	})

	t.Run("cloudinary without credentials", func(t *testing.T) {
		_, _, err := NewImages(&config.Config{StorageProvider: "cloudinary"}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := NewImages(&config.Config{StorageProvider: "s3"}, nil)
		assert.ErrorContains(t, err, "unknown storage provider")
	})
}

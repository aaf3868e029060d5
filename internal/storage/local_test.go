package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

func TestLocalStorage_StoreAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	obj, err := store.Store(context.Background(), strings.NewReader("some bytes"), "attachments", "shot.png", "image/png")
	require.NoError(t, err)
	require.Equal(t, models.AttachmentImage, obj.ResourceType)
	require.True(t, strings.HasPrefix(obj.URL, "http://localhost:8080/uploads/attachments/"))
	require.True(t, strings.HasSuffix(obj.PublicID, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(obj.PublicID)))
	require.NoError(t, err)
	require.Equal(t, "some bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), obj.PublicID, obj.ResourceType))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(obj.PublicID)))
	require.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	require.NoError(t, store.Delete(context.Background(), obj.PublicID, obj.ResourceType))
}

func TestLocalStorage_DeleteRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	require.Error(t, store.Delete(context.Background(), "../../etc/passwd", models.AttachmentFile))
}

func TestResourceTypeFor(t *testing.T) {
	require.Equal(t, models.AttachmentImage, ResourceTypeFor("image/jpeg"))
	require.Equal(t, models.AttachmentImage, ResourceTypeFor("image/gif"))
	require.Equal(t, models.AttachmentVideo, ResourceTypeFor("video/mp4"))
	require.Equal(t, models.AttachmentPDF, ResourceTypeFor("application/pdf"))
	require.Equal(t, models.AttachmentFile, ResourceTypeFor("application/octet-stream"))
}

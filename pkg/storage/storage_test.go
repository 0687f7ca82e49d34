package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "essay/abc.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/essay/abc.pdf", url)

	got, err := os.ReadFile(filepath.Join(dir, "essay", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(got))

	t.Run("Should keep traversal inside the upload dir", func(t *testing.T) {
		url, err := s.Put(context.Background(), "../../escape.txt", "text/plain", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/files/escape.txt", url)
		_, err = os.Stat(filepath.Join(dir, "escape.txt"))
		assert.NoError(t, err)
	})
	assert.NoError(t, s.Ping(context.Background()))
}

func TestS3PublicURL(t *testing.T) {
	aws := S3Config{Provider: ProviderAWS, Bucket: "rise", Region: "ap-southeast-1"}
	assert.Equal(t, "https://rise.s3.ap-southeast-1.amazonaws.com/a/b.pdf", aws.PublicURL("a/b.pdf"))

	wasabi := S3Config{Provider: ProviderWasabi, Bucket: "rise", Region: "eu-central-1"}
	assert.Equal(t, "https://s3.eu-central-1.wasabisys.com/rise/k", wasabi.PublicURL("k"))

	cdn := S3Config{Bucket: "rise", PublicBaseURL: "https://cdn.rise.id/"}
	assert.Equal(t, "https://cdn.rise.id/k", cdn.PublicURL("k"))

	custom := S3Config{Bucket: "rise", Endpoint: "https://minio.local:9000"}
	assert.Equal(t, "https://minio.local:9000/rise/k", custom.PublicURL("k"))
}

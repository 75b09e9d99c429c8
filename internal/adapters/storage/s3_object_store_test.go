package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves path-style object requests for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/"+f.bucket+"/")
	if !ok {
		http.Error(w, "unknown bucket", http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
	case http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(b)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newS3Store(t *testing.T) (*S3ObjectStore, *fakeS3) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	fake := &fakeS3{bucket: "backups", objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3ObjectStore(context.Background(), S3Options{
		Region:       "us-east-1",
		Bucket:       "backups",
		Endpoint:     srv.URL,
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3ObjectStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, fake := newS3Store(t)

	require.NoError(t, s.Put(ctx, "backups/a1/b1.json.zst", []byte("archive"), "application/zstd"))
	assert.Equal(t, "application/zstd", fake.types["backups/a1/b1.json.zst"])

	b, err := s.Get(ctx, "backups/a1/b1.json.zst")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive"), b)

	require.NoError(t, s.Delete(ctx, "backups/a1/b1.json.zst"))
	assert.Empty(t, fake.objects)
}

func TestS3ObjectStore_MissingKeyIsNotFound(t *testing.T) {
	s, _ := newS3Store(t)

	_, err := s.Get(context.Background(), "backups/a1/missing.json.zst")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewS3ObjectStore_RequiresBucket(t *testing.T) {
	_, err := NewS3ObjectStore(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}

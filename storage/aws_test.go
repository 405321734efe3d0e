package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

// fakeS3 serves HEAD and DELETE for path style object URLs.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	deletes []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/bucket/")
	body, ok := f.objects[key]
	switch r.Method {
	case http.MethodHead:
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deletes = append(f.deletes, key)
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Storage(t *testing.T, objects map[string]string) (*AWSStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: objects}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
	return &AWSStorage{client: client, bucket: "bucket"}, fake
}

func TestAWSDeleteFileReportsExistence(t *testing.T) {
	ctx := context.Background()
	store, fake := newFakeS3Storage(t, map[string]string{"users/alice/a.pdf": "%PDF-"})

	deleted, err := store.DeleteFile(ctx, "users/alice/missing.pdf")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, fake.deletes)

	deleted, err = store.DeleteFile(ctx, "users/alice/a.pdf")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"users/alice/a.pdf"}, fake.deletes)

	deleted, err = store.DeleteFile(ctx, "users/alice/a.pdf")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAWSMetadataNotFound(t *testing.T) {
	store, _ := newFakeS3Storage(t, map[string]string{})
	_, err := store.GetFileMetadata(context.Background(), "users/alice/missing.pdf")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

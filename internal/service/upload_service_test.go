package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedObject struct {
	Key         string
	ContentType string
	Size        int64
}

// fakeRepo records writes and lets tests inject failures.
type fakeRepo struct {
	mu      sync.Mutex
	stored  []storedObject
	aclKeys []string
	failKey string
	aclErr  error
	delay   time.Duration
}

func (f *fakeRepo) UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failKey != "" && strings.Contains(key, f.failKey) {
		return errors.New("storage unavailable")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, storedObject{Key: key, ContentType: contentType, Size: size})
	return nil
}

func (f *fakeRepo) MakePublicRead(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aclKeys = append(f.aclKeys, key)
	return f.aclErr
}

func (f *fakeRepo) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func TestBatchPreservesArrivalOrder(t *testing.T) {
	repo := &fakeRepo{delay: 5 * time.Millisecond}
	svc := NewUploadService(repo, zap.NewNop())

	batch := svc.NewBatch(context.Background(), "sess-1")
	for i := 1; i <= 5; i++ {
		batch.Add(fmt.Sprintf("photo-%02d.jpg", i), "image/jpeg", []byte("data"))
	}

	urls, err := batch.Wait()
	require.NoError(t, err)
	require.Len(t, urls, 5)
	for i, url := range urls {
		require.Contains(t, url, fmt.Sprintf("photo-%02d.jpg", i+1))
	}
}

func TestBatchObjectKeyFormat(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewUploadService(repo, zap.NewNop())

	batch := svc.NewBatch(context.Background(), "sess-1")
	batch.Add("photo-01.jpg", "image/jpeg", []byte("data"))

	urls, err := batch.Wait()
	require.NoError(t, err)
	require.Regexp(t,
		regexp.MustCompile(`^https://cdn\.test/sess-1/\d+-[0-9a-f]{8}-photo-01\.jpg$`),
		urls[0])

	require.Len(t, repo.stored, 1)
	require.Equal(t, "image/jpeg", repo.stored[0].ContentType)
	require.Equal(t, int64(4), repo.stored[0].Size)
}

func TestBatchSanitizesKeyParts(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewUploadService(repo, zap.NewNop())

	batch := svc.NewBatch(context.Background(), "sess/../one two")
	batch.Add("my photo (1)?.jpg", "image/jpeg", []byte("data"))

	_, err := batch.Wait()
	require.NoError(t, err)

	key := repo.stored[0].Key
	prefix, name, found := strings.Cut(key, "/")
	require.True(t, found)
	require.Equal(t, "sess..onetwo", prefix)
	require.NotContains(t, name, " ")
	require.NotContains(t, name, "(")
	require.NotContains(t, name, "?")
	require.True(t, strings.HasSuffix(name, "myphoto1.jpg"))
}

func TestBatchSingleFailureFailsAll(t *testing.T) {
	repo := &fakeRepo{failKey: "photo-02"}
	svc := NewUploadService(repo, zap.NewNop())

	batch := svc.NewBatch(context.Background(), "sess-1")
	batch.Add("photo-01.jpg", "image/jpeg", []byte("data"))
	batch.Add("photo-02.jpg", "image/jpeg", []byte("data"))
	batch.Add("photo-03.jpg", "image/jpeg", []byte("data"))

	_, err := batch.Wait()
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage unavailable")
}

func TestBatchSwallowsACLFailure(t *testing.T) {
	repo := &fakeRepo{aclErr: errors.New("access denied")}
	svc := NewUploadService(repo, zap.NewNop())

	batch := svc.NewBatch(context.Background(), "sess-1")
	batch.Add("photo-01.jpg", "image/jpeg", []byte("data"))

	urls, err := batch.Wait()
	require.NoError(t, err)
	require.Len(t, urls, 1)
	require.Len(t, repo.aclKeys, 1)
}

func TestAllowedImageType(t *testing.T) {
	cases := []struct {
		contentType string
		allowed     bool
	}{
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"image/webp", true},
		{"image/jpeg; charset=binary", true},
		{"image/gif", false},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.allowed, AllowedImageType(tc.contentType), tc.contentType)
	}
}

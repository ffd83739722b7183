package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photolister/internal/repository"
)

// ErrFileTooLarge aborts the whole upload request; a single oversized part
// never degrades into a partial batch.
var ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// AllowedImageType reports whether a declared multipart content type is in
// the accepted whitelist. Parameters after ";" are ignored.
func AllowedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	_, ok := allowedImageTypes[ct]
	return ok
}

type UploadService interface {
	NewBatch(ctx context.Context, sessionID string) *Batch
}

type uploadService struct {
	s3Repo repository.S3Repository
	log    *zap.Logger
}

func NewUploadService(s3Repo repository.S3Repository, log *zap.Logger) UploadService {
	return &uploadService{
		s3Repo: s3Repo,
		log:    log,
	}
}

// Batch collects the storage writes of one upload request. Each accepted
// file starts its write immediately while the request body is still being
// parsed; Wait joins them all before the response is produced.
type Batch struct {
	svc       *uploadService
	sessionID string
	group     *errgroup.Group
	ctx       context.Context

	// One cell per accepted file, in arrival order. Each write task owns
	// exactly its own cell, so appending here never races with the tasks.
	urls []*string
}

func (s *uploadService) NewBatch(ctx context.Context, sessionID string) *Batch {
	g, gctx := errgroup.WithContext(ctx)
	return &Batch{
		svc:       s,
		sessionID: sessionID,
		group:     g,
		ctx:       gctx,
	}
}

// Add schedules the storage write for one file. It must be called from the
// single goroutine parsing the multipart body; each call reserves the next
// URL slot so that Wait returns URLs in part-arrival order.
func (b *Batch) Add(filename, contentType string, data []byte) {
	cell := new(string)
	b.urls = append(b.urls, cell)

	key := b.svc.objectKey(b.sessionID, filename)
	svc := b.svc

	b.group.Go(func() error {
		if err := svc.s3Repo.UploadFile(b.ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}

		// Best effort only. A bucket that is already public by policy makes
		// this redundant; a failure here is flagged for operators but never
		// fails the upload.
		if err := svc.s3Repo.MakePublicRead(b.ctx, key); err != nil {
			svc.log.Warn("Failed to mark object public-read",
				zap.String("key", key),
				zap.Error(err))
		}

		*cell = svc.s3Repo.PublicURL(key)
		return nil
	})
}

// Wait blocks until every scheduled write has settled. Any single failure
// fails the whole batch.
func (b *Batch) Wait() ([]string, error) {
	if err := b.group.Wait(); err != nil {
		return nil, err
	}
	urls := make([]string, len(b.urls))
	for i, cell := range b.urls {
		urls[i] = *cell
	}
	return urls, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeKeyPart(s string) string {
	cleaned := unsafeKeyChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

func (s *uploadService) objectKey(sessionID, filename string) string {
	return fmt.Sprintf("%s/%d-%s-%s",
		sanitizeKeyPart(sessionID),
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		sanitizeKeyPart(filepath.Base(filename)))
}

package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/storage"
	"github.com/inkwell/blog-api/utils"
)

// MaxUploadSize is the per-file limit.
const MaxUploadSize = 500 * 1024 * 1024 // 500 MiB

// TempMaxAge is how long an orphaned temp upload survives before the sweep
// reclaims it.
const TempMaxAge = 24 * time.Hour

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,

	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/x-msvideo": true,
}

// UploadInput describes one file to store.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProgressFunc receives (completed, total) after each finished upload in a
// batch.
type ProgressFunc func(completed, total int)

// MediaService owns the media lifecycle: validation, upload to a
// (user, post-or-temp) derived path, the temp-to-post move, and the
// orphaned-temp sweep.
type MediaService struct {
	Blobs storage.BlobStore

	now func() time.Time
}

func NewMediaService(blobs storage.BlobStore) *MediaService {
	return &MediaService{Blobs: blobs, now: time.Now}
}

// Validate rejects oversized files and MIME types outside the allowed
// image/video set. It runs before any byte reaches the blob store.
func (s *MediaService) Validate(filename, contentType string, size int64) error {
	if size > MaxUploadSize {
		return utils.NewValidationError("file %s exceeds the %d MiB limit", filename, MaxUploadSize/(1024*1024))
	}
	if !allowedMediaTypes[contentType] {
		return utils.NewValidationError("unsupported file type %s for %s", contentType, filename)
	}
	return nil
}

// mediaType classifies from the MIME prefix.
func mediaType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return models.MediaTypeImage
	}
	return models.MediaTypeVideo
}

// objectKey derives the storage path: posts/{postID}/... once the post
// exists, temp/{userID}/... before it does.
func (s *MediaService) objectKey(userID, postID uint, filename string) string {
	name := fmt.Sprintf("%d-%s", s.now().Unix(), filepath.Base(filename))
	if postID != 0 {
		return fmt.Sprintf("posts/%d/%s", postID, name)
	}
	return fmt.Sprintf("temp/%d/%s", userID, name)
}

// Upload validates and stores one file, returning its MediaItem. The item
// ID is the generated filename (the last key segment).
func (s *MediaService) Upload(ctx context.Context, in UploadInput, userID, postID uint) (*models.MediaItem, error) {
	if err := s.Validate(in.Filename, in.ContentType, in.Size); err != nil {
		return nil, err
	}

	key := s.objectKey(userID, postID, in.Filename)
	url, err := s.Blobs.Put(ctx, key, in.ContentType, in.Body)
	if err != nil {
		return nil, &utils.BackendError{Op: "upload " + key, Err: err}
	}

	return &models.MediaItem{
		ID:        filepath.Base(key),
		PostID:    postID,
		Key:       key,
		URL:       url,
		Type:      mediaType(in.ContentType),
		Filename:  in.Filename,
		Size:      in.Size,
		CreatedAt: s.now(),
	}, nil
}

// UploadMany validates everything up front, then issues all uploads
// concurrently. onProgress fires after each completion. The batch fails as
// a whole on the first error; uploads already in flight still settle, but
// no partial result is returned.
func (s *MediaService) UploadMany(ctx context.Context, inputs []UploadInput, userID, postID uint, onProgress ProgressFunc) ([]*models.MediaItem, error) {
	for _, in := range inputs {
		if err := s.Validate(in.Filename, in.ContentType, in.Size); err != nil {
			return nil, err
		}
	}

	items := make([]*models.MediaItem, len(inputs))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		firstErr  error
	)

	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in UploadInput) {
			defer wg.Done()
			item, err := s.Upload(ctx, in, userID, postID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			items[i] = item
			completed++
			if onProgress != nil {
				onProgress(completed, len(inputs))
			}
		}(i, in)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

// MoveToPost relocates temp items under the post's prefix, one
// copy-then-delete cycle at a time. Every source key must lie under the
// caller's own temp prefix. The pair is not atomic: a crash mid-loop
// leaves items duplicated, and a failed delete after a successful copy
// leaves an orphaned temp object for the sweep to reclaim.
func (s *MediaService) MoveToPost(ctx context.Context, items []models.MediaItem, userID, postID uint) ([]models.MediaItem, error) {
	ownTempPrefix := fmt.Sprintf("temp/%d/", userID)
	for _, item := range items {
		if !strings.HasPrefix(item.Key, ownTempPrefix) {
			return nil, utils.NewValidationError("key %s is not a temp upload of the caller", item.Key)
		}
	}

	moved := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		dstKey := fmt.Sprintf("posts/%d/%s", postID, item.ID)

		if err := s.Blobs.Copy(ctx, item.Key, dstKey); err != nil {
			return nil, &utils.BackendError{Op: "move " + item.Key, Err: err}
		}
		if err := s.Blobs.Delete(ctx, item.Key); err != nil {
			return nil, &utils.BackendError{Op: "delete temp " + item.Key, Err: err}
		}

		item.PostID = postID
		item.Key = dstKey
		item.URL = s.Blobs.URL(dstKey)
		moved = append(moved, item)
	}
	return moved, nil
}

// CleanupTemp deletes the user's temp objects strictly older than maxAge
// and returns how many it removed. Per-item failures (the object may
// already be gone) are logged and skipped; the sweep itself never fails.
func (s *MediaService) CleanupTemp(ctx context.Context, userID uint, maxAge time.Duration) int {
	prefix := fmt.Sprintf("temp/%d/", userID)

	keys, err := s.Blobs.List(ctx, prefix)
	if err != nil {
		log.Printf("temp sweep: list %s: %v", prefix, err)
		return 0
	}

	deleted := 0
	now := s.now()
	for _, key := range keys {
		info, err := s.Blobs.Metadata(ctx, key)
		if err != nil {
			continue
		}
		if now.Sub(info.CreatedAt) <= maxAge {
			continue
		}
		if err := s.Blobs.Delete(ctx, key); err != nil {
			log.Printf("temp sweep: delete %s: %v", key, err)
			continue
		}
		deleted++
	}
	return deleted
}

// DeletePostMedia removes a post's blob objects best-effort: failures are
// logged, never retried, and never abort the caller.
func (s *MediaService) DeletePostMedia(ctx context.Context, items []models.MediaItem) {
	for _, item := range items {
		if err := s.Blobs.Delete(ctx, item.Key); err != nil {
			log.Printf("delete media %s: %v", item.Key, err)
		}
	}
}

package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/storage"
	"github.com/inkwell/blog-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mebibyte = 1024 * 1024

func newTestMediaService() (*MediaService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	svc := NewMediaService(store)
	return svc, store
}

func TestValidate(t *testing.T) {
	svc, _ := newTestMediaService()

	assert.Error(t, svc.Validate("big.mp4", "video/mp4", 501*mebibyte))
	assert.NoError(t, svc.Validate("ok.jpg", "image/jpeg", 499*mebibyte))
	assert.Error(t, svc.Validate("notes.txt", "text/plain", 10))

	err := svc.Validate("big.mp4", "video/mp4", 501*mebibyte)
	assert.True(t, utils.IsValidation(err))
}

func TestUploadDerivesPathAndItem(t *testing.T) {
	svc, store := newTestMediaService()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	item, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "sunset.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Body:        strings.NewReader("data"),
	}, 3, 0)
	require.NoError(t, err)

	wantKey := fmt.Sprintf("temp/3/%d-sunset.jpg", fixed.Unix())
	assert.Equal(t, wantKey, item.Key)
	assert.Equal(t, fmt.Sprintf("%d-sunset.jpg", fixed.Unix()), item.ID)
	assert.Equal(t, models.MediaTypeImage, item.Type)
	assert.Equal(t, store.URL(wantKey), item.URL)
	assert.Zero(t, item.PostID)

	clip, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Size:        4,
		Body:        strings.NewReader("mp4!"),
	}, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("posts/9/%d-clip.mp4", fixed.Unix()), clip.Key)
	assert.Equal(t, models.MediaTypeVideo, clip.Type)
	assert.Equal(t, uint(9), clip.PostID)
}

func TestUploadRejectsBeforeStoring(t *testing.T) {
	svc, store := newTestMediaService()

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Size:        10,
		Body:        strings.NewReader("plain text"),
	}, 1, 0)
	assert.True(t, utils.IsValidation(err))

	keys, _ := store.List(context.Background(), "")
	assert.Empty(t, keys)
}

func TestUploadManyReportsProgress(t *testing.T) {
	svc, _ := newTestMediaService()

	inputs := []UploadInput{
		{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("a")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("b")},
		{Filename: "c.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("c")},
	}

	var progress [][2]int
	items, err := svc.UploadMany(context.Background(), inputs, 1, 0, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		require.NotNil(t, item)
	}

	// The callback fires once per completion, counting up to the total.
	require.Len(t, progress, 3)
	assert.Equal(t, [2]int{1, 3}, progress[0])
	assert.Equal(t, [2]int{3, 3}, progress[2])
}

func TestUploadManyFailsFast(t *testing.T) {
	svc, store := newTestMediaService()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	store.FailKeys = map[string]bool{
		fmt.Sprintf("temp/1/%d-b.jpg", fixed.Unix()): true,
	}

	inputs := []UploadInput{
		{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("a")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("b")},
	}

	items, err := svc.UploadMany(context.Background(), inputs, 1, 0, nil)
	assert.Error(t, err)
	assert.Nil(t, items)
}

func TestUploadManyRejectsInvalidBatchUpfront(t *testing.T) {
	svc, store := newTestMediaService()

	inputs := []UploadInput{
		{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("a")},
		{Filename: "huge.mp4", ContentType: "video/mp4", Size: 501 * mebibyte, Body: strings.NewReader("x")},
	}

	_, err := svc.UploadMany(context.Background(), inputs, 1, 0, nil)
	assert.True(t, utils.IsValidation(err))

	keys, _ := store.List(context.Background(), "")
	assert.Empty(t, keys, "nothing may be stored when the batch is invalid")
}

func TestMoveToPostKeepsBytesAndDeletesTemp(t *testing.T) {
	svc, store := newTestMediaService()

	item, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        9,
		Body:        strings.NewReader("png-bytes"),
	}, 4, 0)
	require.NoError(t, err)
	tempKey := item.Key

	moved, err := svc.MoveToPost(context.Background(), []models.MediaItem{*item}, 4, 11)
	require.NoError(t, err)
	require.Len(t, moved, 1)

	assert.Equal(t, uint(11), moved[0].PostID)
	assert.Equal(t, "posts/11/"+item.ID, moved[0].Key)
	assert.Equal(t, store.URL(moved[0].Key), moved[0].URL)

	body, err := store.Get(context.Background(), moved[0].Key)
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	assert.Equal(t, "png-bytes", string(data))

	_, err = store.Get(context.Background(), tempKey)
	assert.Error(t, err, "temp original must be deleted")
}

func TestMoveToPostRejectsForeignKeys(t *testing.T) {
	svc, store := newTestMediaService()

	item, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "private.jpg",
		ContentType: "image/jpeg",
		Size:        7,
		Body:        strings.NewReader("private"),
	}, 99, 0)
	require.NoError(t, err)

	// User 4 may not move user 99's temp upload.
	_, err = svc.MoveToPost(context.Background(), []models.MediaItem{*item}, 4, 7)
	assert.True(t, utils.IsValidation(err))

	body, err := store.Get(context.Background(), item.Key)
	require.NoError(t, err, "the foreign temp object must be untouched")
	body.Close()
	keys, _ := store.List(context.Background(), "posts/")
	assert.Empty(t, keys)

	// Keys outside temp/ entirely are rejected too.
	_, err = svc.MoveToPost(context.Background(), []models.MediaItem{{ID: "x.jpg", Key: "posts/2/x.jpg"}}, 4, 7)
	assert.True(t, utils.IsValidation(err))
}

func TestCleanupTempDeletesOnlyExpired(t *testing.T) {
	svc, store := newTestMediaService()
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	put := func(key string, age time.Duration) {
		_, err := store.Put(context.Background(), key, "image/jpeg", strings.NewReader("x"))
		require.NoError(t, err)
		store.SetCreated(key, now.Add(-age))
	}
	put("temp/5/stale.jpg", 25*time.Hour)
	put("temp/5/boundary.jpg", 24*time.Hour)
	put("temp/5/fresh.jpg", time.Hour)
	put("temp/6/other-user.jpg", 48*time.Hour)

	deleted := svc.CleanupTemp(context.Background(), 5, 24*time.Hour)
	assert.Equal(t, 1, deleted)

	keys, _ := store.List(context.Background(), "temp/")
	assert.ElementsMatch(t, []string{
		"temp/5/boundary.jpg", // exactly at the boundary is retained
		"temp/5/fresh.jpg",
		"temp/6/other-user.jpg",
	}, keys)
}

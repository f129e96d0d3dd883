package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/inkwell/blog-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostValidatesTags(t *testing.T) {
	r, _ := setupRouter(t)

	tags := make([]string, models.MaxTagsPerPost+1)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%d", i)
	}

	w := doJSON(t, r, http.MethodPost, "/api/posts", authToken(t, 1), map[string]interface{}{
		"title":   "Too many tags",
		"content": "body",
		"tags":    tags,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndFetchPost(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/posts", authToken(t, 1), map[string]interface{}{
		"title":   "Morning ride",
		"content": "# Hello\n\nSome *markdown*.",
		"tags":    []string{"cycling"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.Data.ID)
	assert.Equal(t, "owner@example.com", created.Data.AuthorEmail)

	// Detail renders markdown and bumps the view count.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.Data.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Data struct {
			models.Post
			ContentHTML string `json:"contentHtml"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.Data.ViewCount)
	assert.Contains(t, detail.Data.ContentHTML, "<h1")
	assert.Contains(t, detail.Data.ContentHTML, "<em>markdown</em>")
}

func TestListPostsPagesOverHTTP(t *testing.T) {
	r, db := setupRouter(t)
	for i := 0; i < 7; i++ {
		require.NoError(t, db.Create(&models.Post{Title: fmt.Sprintf("post %d", i)}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/api/posts?pageSize=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Posts      []models.Post `json:"posts"`
			HasMore    bool          `json:"hasMore"`
			NextCursor string        `json:"nextCursor"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Posts, 5)
	assert.True(t, resp.Data.HasMore)
	require.NotEmpty(t, resp.Data.NextCursor)

	w = doJSON(t, r, http.MethodGet, "/api/posts?pageSize=5&cursor="+resp.Data.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Posts, 2)
	assert.False(t, resp.Data.HasMore)
}

func TestCreatePostInvalidatesListingsEvenWhenMediaMoveFails(t *testing.T) {
	r, db := setupRouter(t)
	require.NoError(t, db.Create(&models.Post{Title: "existing"}).Error)

	// Warm the listing cache.
	w := doJSON(t, r, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The temp key belongs to the caller but no such object exists, so the
	// move fails after the post row was created.
	w = doJSON(t, r, http.MethodPost, "/api/posts", authToken(t, 1), map[string]interface{}{
		"title":   "half landed",
		"content": "body",
		"tempMedia": []map[string]interface{}{
			{"id": "gone.jpg", "key": "temp/1/gone.jpg"},
		},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Posts []models.Post `json:"posts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Posts, 2, "the new post must be visible despite the failed media move")
}

func TestDeletePostCascades(t *testing.T) {
	r, db := setupRouter(t)

	post := models.Post{Title: "doomed"}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, Content: "bye", AuthorID: 1}).Error)
	require.NoError(t, db.Create(&models.Rating{PostID: post.ID, AuthorID: 1, Rating: 5}).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), authToken(t, 1), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var comments, ratings int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Model(&models.Rating{}).Where("post_id = ?", post.ID).Count(&ratings)
	assert.Zero(t, comments)
	assert.Zero(t, ratings)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

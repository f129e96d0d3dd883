package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/utils"
	"gorm.io/gorm"
)

type MediaController struct {
	DB    *gorm.DB
	Media *services.MediaService
}

func NewMediaController(db *gorm.DB, media *services.MediaService) *MediaController {
	return &MediaController{DB: db, Media: media}
}

type MoveMediaRequest struct {
	PostID uint               `json:"postId" binding:"required"`
	Items  []models.MediaItem `json:"items" binding:"required,min=1"`
}

func uploadInput(header *multipart.FileHeader) (services.UploadInput, error) {
	file, err := header.Open()
	if err != nil {
		return services.UploadInput{}, err
	}
	return services.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, nil
}

// UploadMedia stores one file. Without a postId it lands under the
// caller's temp prefix until the post is saved.
func (mc *MediaController) UploadMedia(c *gin.Context) {
	user := utils.GetUser(c)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	postID, _ := strconv.ParseUint(c.PostForm("postId"), 10, 32)

	in, err := uploadInput(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer in.Body.(multipart.File).Close()

	item, err := mc.Media.Upload(c.Request.Context(), in, user.UserID, uint(postID))
	if err != nil {
		respondError(c, err)
		return
	}

	if item.PostID != 0 {
		if err := mc.DB.Create(item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record media"})
			return
		}
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: item})
}

// UploadMediaBatch stores several files concurrently; the whole batch
// fails on the first error.
func (mc *MediaController) UploadMediaBatch(c *gin.Context) {
	user := utils.GetUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	postID, _ := strconv.ParseUint(c.PostForm("postId"), 10, 32)

	inputs := make([]services.UploadInput, 0, len(headers))
	for _, header := range headers {
		in, err := uploadInput(header)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("could not read %s", header.Filename)})
			return
		}
		defer in.Body.(multipart.File).Close()
		inputs = append(inputs, in)
	}

	items, err := mc.Media.UploadMany(c.Request.Context(), inputs, user.UserID, uint(postID), nil)
	if err != nil {
		respondError(c, err)
		return
	}

	if postID != 0 {
		for _, item := range items {
			if err := mc.DB.Create(item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record media"})
				return
			}
		}
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: items})
}

// MoveMedia relocates temp uploads under an existing post and persists
// the media rows.
func (mc *MediaController) MoveMedia(c *gin.Context) {
	user := utils.GetUser(c)

	var req MoveMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownTempPrefix := fmt.Sprintf("temp/%d/", user.UserID)
	for _, item := range req.Items {
		if !strings.HasPrefix(item.Key, ownTempPrefix) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
	}

	var post models.Post
	if err := mc.DB.First(&post, req.PostID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	moved, err := mc.Media.MoveToPost(c.Request.Context(), req.Items, user.UserID, post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range moved {
		if err := mc.DB.Create(&moved[i]).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record media"})
			return
		}
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: moved})
}

// CleanupTemp sweeps the caller's temp prefix. Best-effort: the response
// only reports how many objects were reclaimed.
func (mc *MediaController) CleanupTemp(c *gin.Context) {
	user := utils.GetUser(c)

	deleted := mc.Media.CleanupTemp(c.Request.Context(), user.UserID, services.TempMaxAge)

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"deleted": deleted}})
}

// DeleteMedia removes one object by key. Temp keys must belong to the
// caller; post keys carry no per-post ACL.
func (mc *MediaController) DeleteMedia(c *gin.Context) {
	user := utils.GetUser(c)
	key := c.Query("key")

	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File key is required"})
		return
	}

	ownTempPrefix := fmt.Sprintf("temp/%d/", user.UserID)
	if !strings.HasPrefix(key, ownTempPrefix) && !strings.HasPrefix(key, "posts/") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if err := mc.Media.Blobs.Delete(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}
	mc.DB.Where("key = ?", key).Delete(&models.MediaItem{})

	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "File deleted successfully"})
}

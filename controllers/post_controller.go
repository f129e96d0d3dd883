package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const listCacheTTL = time.Minute

type PostController struct {
	DB    *gorm.DB
	Posts *services.PostService
	Media *services.MediaService
	Cache *utils.TTLCache
}

type CreatePostRequest struct {
	Title     string             `json:"title" binding:"required"`
	Content   string             `json:"content" binding:"required"`
	Excerpt   string             `json:"excerpt"`
	Tags      []string           `json:"tags"`
	TempMedia []models.MediaItem `json:"tempMedia"`
}

type UpdatePostRequest struct {
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Excerpt   string             `json:"excerpt"`
	Tags      []string           `json:"tags"`
	TempMedia []models.MediaItem `json:"tempMedia"`
}

type PostDetailResponse struct {
	models.Post
	ContentHTML string `json:"contentHtml"`
}

func NewPostController(db *gorm.DB, posts *services.PostService, media *services.MediaService, cache *utils.TTLCache) *PostController {
	return &PostController{DB: db, Posts: posts, Media: media, Cache: cache}
}

// CreatePost stores the post, then relocates any temp media under the new
// post's storage prefix and persists the media rows.
func (pc *PostController) CreatePost(c *gin.Context) {
	user := utils.GetUser(c)
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Tags) > models.MaxTagsPerPost {
		respondError(c, utils.NewValidationError("a post may carry at most %d tags", models.MaxTagsPerPost))
		return
	}

	post := models.Post{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Tags:        req.Tags,
		AuthorID:    user.UserID,
		AuthorName:  user.Name,
		AuthorEmail: user.Email,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := pc.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	// The post exists from here on, even if attaching media fails below.
	pc.Cache.Purge()

	if len(req.TempMedia) > 0 {
		moved, err := pc.Media.MoveToPost(c.Request.Context(), req.TempMedia, user.UserID, post.ID)
		if err != nil {
			// The post row exists; the move is not atomic. Surface the
			// failure and leave the already-moved items attached.
			respondError(c, err)
			return
		}
		for i := range moved {
			if err := pc.DB.Create(&moved[i]).Error; err != nil {
				log.Printf("attach media %s to post %d: %v", moved[i].ID, post.ID, err)
			}
		}
		post.Media = moved
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: post})
}

// GetPostDetail returns one post with rendered content and bumps its view
// count atomically.
func (pc *PostController) GetPostDetail(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := pc.DB.Preload("Media").First(&post, postID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	if err := pc.DB.Model(&post).
		Update("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		log.Printf("increment view count for post %d: %v", post.ID, err)
	} else {
		post.ViewCount++
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: PostDetailResponse{
		Post:        post,
		ContentHTML: utils.RenderMarkdown(post.Content),
	}})
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	user := utils.GetUser(c)
	postID := c.Param("id")
	var req UpdatePostRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Tags) > models.MaxTagsPerPost {
		respondError(c, utils.NewValidationError("a post may carry at most %d tags", models.MaxTagsPerPost))
		return
	}

	var post models.Post
	if err := pc.DB.First(&post, postID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.Excerpt != "" {
		updates["excerpt"] = req.Excerpt
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	updates["updated_at"] = time.Now()

	if err := pc.DB.Model(&post).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	// The row changed from here on, even if attaching media fails below.
	pc.Cache.Purge()

	if len(req.TempMedia) > 0 {
		moved, err := pc.Media.MoveToPost(c.Request.Context(), req.TempMedia, user.UserID, post.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		for i := range moved {
			if err := pc.DB.Create(&moved[i]).Error; err != nil {
				log.Printf("attach media %s to post %d: %v", moved[i].ID, post.ID, err)
			}
		}
	}

	pc.DB.Preload("Media").First(&post, post.ID)
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post})
}

// DeletePost removes the post with its comments and ratings in one
// transaction, then deletes the blob objects best-effort.
func (pc *PostController) DeletePost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := pc.DB.Preload("Media").First(&post, postID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.MediaItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	// Blob cleanup after the primary delete; failures are logged, not
	// retried.
	pc.Media.DeletePostMedia(c.Request.Context(), post.Media)

	pc.Cache.Purge()
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Post successfully deleted"})
}

// ListPosts serves cursor pages through the TTL cache. A failed read is
// retried once before the error surfaces.
func (pc *PostController) ListPosts(c *gin.Context) {
	sortBy := c.DefaultQuery("sortBy", services.SortNewest)
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(services.DefaultPageSize)))
	cursor := c.Query("cursor")

	cacheKey := fmt.Sprintf("posts:%s:%d:%s", sortBy, pageSize, cursor)
	if cached := pc.Cache.Get(cacheKey); cached != nil {
		c.JSON(http.StatusOK, StandardResponse{Success: true, Data: cached})
		return
	}

	page, err := pc.Posts.List(c.Request.Context(), sortBy, pageSize, cursor)
	if err != nil && !utils.IsValidation(err) {
		page, err = pc.Posts.List(c.Request.Context(), sortBy, pageSize, cursor)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	pc.Cache.Set(cacheKey, page, listCacheTTL)
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: page})
}

func (pc *PostController) SearchPosts(c *gin.Context) {
	query := c.Query("q")

	posts, err := pc.Posts.Search(c.Request.Context(), query)
	if err != nil {
		posts, err = pc.Posts.Search(c.Request.Context(), query)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

func (pc *PostController) PostsByTag(c *gin.Context) {
	tag := c.Param("tag")

	posts, err := pc.Posts.ByTag(c.Request.Context(), tag)
	if err != nil && !utils.IsValidation(err) {
		posts, err = pc.Posts.ByTag(c.Request.Context(), tag)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

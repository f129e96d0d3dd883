package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/utils"
	"gorm.io/gorm"
)

type CommentController struct {
	DB *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{DB: db}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment attaches a comment to a live post; a missing post is a 404,
// never a dangling reference.
func (cc *CommentController) CreateComment(c *gin.Context) {
	user := utils.GetUser(c)
	postID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := cc.DB.First(&post, postID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	comment := models.Comment{
		PostID:      post.ID,
		Content:     req.Content,
		AuthorID:    user.UserID,
		AuthorName:  user.Name,
		AuthorEmail: user.Email,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := cc.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: comment})
}

func (cc *CommentController) ListComments(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := cc.DB.First(&post, postID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "post"})
		return
	}

	var comments []models.Comment
	if err := cc.DB.Where("post_id = ?", post.ID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching comments"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comments})
}

func (cc *CommentController) UpdateComment(c *gin.Context) {
	commentID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	if err := cc.DB.First(&comment, commentID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "comment"})
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = time.Now()
	if err := cc.DB.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comment})
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	commentID := c.Param("id")

	var comment models.Comment
	if err := cc.DB.First(&comment, commentID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "comment"})
		return
	}

	if err := cc.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Comment deleted"})
}

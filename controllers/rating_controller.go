package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/utils"
)

type RatingController struct {
	Ratings *services.RatingService
	Cache   *utils.TTLCache
}

func NewRatingController(ratings *services.RatingService, cache *utils.TTLCache) *RatingController {
	return &RatingController{Ratings: ratings, Cache: cache}
}

type RateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// RatePost submits or overwrites the caller's rating and returns the
// recomputed post aggregate.
func (rc *RatingController) RatePost(c *gin.Context) {
	user := utils.GetUser(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := rc.Ratings.Submit(c.Request.Context(), uint(postID), services.Author{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	rc.Cache.Purge()
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{
		"postId":       post.ID,
		"avgRating":    post.AvgRating,
		"totalRatings": post.TotalRatings,
	}})
}

func (rc *RatingController) DeleteRating(c *gin.Context) {
	user := utils.GetUser(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := rc.Ratings.Remove(c.Request.Context(), uint(postID), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	rc.Cache.Purge()
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{
		"postId":       post.ID,
		"avgRating":    post.AvgRating,
		"totalRatings": post.TotalRatings,
	}})
}

package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/middleware"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/storage"
	"github.com/inkwell/blog-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Post{},
		&models.MediaItem{}, &models.Comment{}, &models.Rating{},
	))
	return db
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	db := setupTestDB(t)
	blobs := storage.NewMemoryStore()

	cache, err := utils.NewTTLCache(100)
	require.NoError(t, err)

	postService := services.NewPostService(db)
	ratingService := services.NewRatingService(db)
	mediaService := services.NewMediaService(blobs)

	postController := NewPostController(db, postService, mediaService, cache)
	commentController := NewCommentController(db)
	ratingController := NewRatingController(ratingService, cache)
	mediaController := NewMediaController(db, mediaService)

	r := gin.New()
	public := r.Group("/api")
	public.GET("/posts", postController.ListPosts)
	public.GET("/posts/search", postController.SearchPosts)
	public.GET("/posts/:id", postController.GetPostDetail)
	public.GET("/posts/:id/comments", commentController.ListComments)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/comments", commentController.CreateComment)
	protected.PUT("/posts/:id/rating", ratingController.RatePost)
	protected.DELETE("/posts/:id/rating", ratingController.DeleteRating)
	protected.POST("/media", mediaController.UploadMedia)
	protected.POST("/media/move", mediaController.MoveMedia)
	protected.DELETE("/media", mediaController.DeleteMedia)

	return r, db
}

func authToken(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   "owner@example.com",
		"name":    "Owner",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

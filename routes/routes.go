package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/controllers"
	"github.com/inkwell/blog-api/middleware"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/storage"
	"github.com/inkwell/blog-api/utils"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, blobs storage.BlobStore, identity *services.IdentityBroadcaster) {
	listCache, err := utils.NewTTLCache(500)
	if err != nil {
		log.Fatalf("Failed to create listing cache: %v", err)
	}

	postService := services.NewPostService(db)
	ratingService := services.NewRatingService(db)
	mediaService := services.NewMediaService(blobs)

	authController := controllers.NewAuthController(db, identity)
	postController := controllers.NewPostController(db, postService, mediaService, listCache)
	commentController := controllers.NewCommentController(db)
	ratingController := controllers.NewRatingController(ratingService, listCache)
	mediaController := controllers.NewMediaController(db, mediaService)

	// Public routes: authentication plus every read path.
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/refresh-token", authController.RefreshToken)

		public.GET("/posts", postController.ListPosts)
		public.GET("/posts/search", postController.SearchPosts)
		public.GET("/posts/tag/:tag", postController.PostsByTag)
		public.GET("/posts/:id", postController.GetPostDetail)
		public.GET("/posts/:id/comments", commentController.ListComments)
	}

	// Protected routes: every mutation requires the configured identity.
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)

		SetupPostRoutes(protected, postController)
		SetupInteractionRoutes(protected, commentController, ratingController)
		SetupMediaRoutes(protected, mediaController)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/controllers"
)

func SetupInteractionRoutes(protected *gin.RouterGroup, commentController *controllers.CommentController, ratingController *controllers.RatingController) {
	posts := protected.Group("/posts")
	{
		posts.POST("/:id/comments", commentController.CreateComment)
		posts.PUT("/:id/rating", ratingController.RatePost)
		posts.DELETE("/:id/rating", ratingController.DeleteRating)
	}

	comments := protected.Group("/comments")
	{
		comments.PUT("/:id", commentController.UpdateComment)
		comments.DELETE("/:id", commentController.DeleteComment)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/controllers"
)

func SetupMediaRoutes(protected *gin.RouterGroup, mediaController *controllers.MediaController) {
	media := protected.Group("/media")
	{
		media.POST("", mediaController.UploadMedia)
		media.POST("/batch", mediaController.UploadMediaBatch)
		media.POST("/move", mediaController.MoveMedia)
		media.POST("/temp/cleanup", mediaController.CleanupTemp)
		media.DELETE("", mediaController.DeleteMedia)
	}
}

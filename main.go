package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blog-api/config"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/routes"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/storage"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using process environment")
	}

	db := config.InitDB()
	blobs := storage.NewR2Store(config.GetR2Options())
	identity := services.NewIdentityBroadcaster()

	// Reclaim orphaned temp uploads in the background.
	go runTempSweep(db, blobs)

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	routes.SetupRoutes(r, db, blobs, identity)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	r.Run(":" + port)
}

// runTempSweep periodically deletes temp uploads older than the retention
// window for the configured blog owner.
func runTempSweep(db *gorm.DB, blobs storage.BlobStore) {
	media := services.NewMediaService(blobs)
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		var owner models.User
		if err := db.Where("email = ?", config.AllowedEmail()).First(&owner).Error; err != nil {
			continue
		}
		deleted := media.CleanupTemp(context.Background(), owner.ID, services.TempMaxAge)
		if deleted > 0 {
			log.Printf("temp sweep reclaimed %d objects", deleted)
		}
	}
}

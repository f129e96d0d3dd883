package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/utils"
	"gorm.io/gorm"
)

// Author identifies who is rating or commenting.
type Author struct {
	ID    uint
	Name  string
	Email string
}

// RatingService keeps a post's denormalized avgRating/totalRatings in sync
// with its rating rows. Every mutation recomputes from the full set; no
// cached delta is ever trusted.
type RatingService struct {
	DB *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{DB: db}
}

// Submit records stars for (postID, author). An existing rating from the
// same author is overwritten and its timestamp refreshed, so re-rating
// never grows the count. The check-then-write and the recompute run in one
// transaction to close the race a concurrent writer would otherwise open.
func (s *RatingService) Submit(ctx context.Context, postID uint, author Author, stars int) (*models.Post, error) {
	if stars < 1 || stars > 5 {
		return nil, utils.NewValidationError("rating must be between 1 and 5, got %d", stars)
	}

	var post models.Post
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &utils.NotFoundError{Resource: "post"}
			}
			return err
		}

		var existing models.Rating
		err := tx.Where("post_id = ? AND author_id = ?", postID, author.ID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = stars
			existing.CreatedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating := models.Rating{
				PostID:    postID,
				AuthorID:  author.ID,
				Rating:    stars,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return s.recompute(tx, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Remove deletes the author's rating if present (no-op otherwise) and
// recomputes the post aggregate either way.
func (s *RatingService) Remove(ctx context.Context, postID uint, authorID uint) (*models.Post, error) {
	var post models.Post
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &utils.NotFoundError{Resource: "post"}
			}
			return err
		}

		if err := tx.Where("post_id = ? AND author_id = ?", postID, authorID).
			Delete(&models.Rating{}).Error; err != nil {
			return err
		}

		return s.recompute(tx, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// recompute derives avgRating/totalRatings from every rating row of the
// post and persists them. An empty set resets both to zero; the average is
// rounded to one decimal.
func (s *RatingService) recompute(tx *gorm.DB, post *models.Post) error {
	var agg struct {
		Avg float64
		Cnt int64
	}
	if err := tx.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as cnt").
		Where("post_id = ?", post.ID).
		Scan(&agg).Error; err != nil {
		return err
	}

	post.AvgRating = math.Round(agg.Avg*10) / 10
	post.TotalRatings = int(agg.Cnt)

	return tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"avg_rating":    post.AvgRating,
		"total_ratings": post.TotalRatings,
	}).Error
}

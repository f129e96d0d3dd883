package models

import (
	"time"

	"github.com/lib/pq"
)

// MaxTagsPerPost caps the number of tags a post may carry.
const MaxTagsPerPost = 10

type Post struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string         `gorm:"not null;type:varchar(255)" json:"title"`
	Content      string         `gorm:"type:text" json:"content"`
	Excerpt      string         `gorm:"type:text" json:"excerpt"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
	Media        []MediaItem    `gorm:"foreignKey:PostID" json:"media"`
	AuthorID     uint           `gorm:"not null;index" json:"authorId"`
	AuthorName   string         `json:"authorName"`
	AuthorEmail  string         `json:"authorEmail"`
	ViewCount    int            `gorm:"default:0" json:"viewCount"`
	AvgRating    float64        `gorm:"default:0" json:"avgRating"`
	TotalRatings int            `gorm:"default:0" json:"totalRatings"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

package models

import "time"

// Media type values, derived from the MIME prefix of the uploaded file.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem describes one uploaded image or video. Items uploaded before
// their post exists live under a temp storage prefix and are not persisted;
// a row is created once the item is attached to a post.
type MediaItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(255)" json:"id"` // generated storage filename
	PostID    uint      `gorm:"index" json:"postId"`
	Key       string    `gorm:"not null" json:"key"` // full object key in the blob store
	URL       string    `gorm:"not null" json:"url"`
	Type      string    `gorm:"type:varchar(10)" json:"type"` // "image" or "video"
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

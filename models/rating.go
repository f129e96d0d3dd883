package models

import "time"

// Rating is a 1-5 star score. At most one row exists per (PostID, AuthorID);
// re-rating overwrites the value and refreshes CreatedAt.
type Rating struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

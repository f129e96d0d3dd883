package models

import "time"

// Comment always references a live post; deleting a post deletes its comments.
type Comment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"postId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorID    uint      `gorm:"not null" json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

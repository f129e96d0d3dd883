package models

import "time"

type User struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar"`
	Password      *string        `gorm:"type:varchar(255)" json:"-"` // nil for OAuth-only accounts
	Posts         []Post         `json:"posts,omitempty" gorm:"foreignKey:AuthorID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

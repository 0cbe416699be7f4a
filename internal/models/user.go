package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account with its public profile fields.
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Username          string         `gorm:"unique;not null" json:"username"`
	Email             string         `gorm:"unique;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"`
	Title             string         `json:"title"`
	Bio               string         `json:"bio"`
	Skills            string         `json:"skills"`
	Location          string         `json:"location"`
	Phone             string         `json:"phone"`
	Languages         string         `json:"languages"`
	Avatar            string         `json:"avatar"`
	Connections       int            `gorm:"not null;default:0" json:"connections"`
	MutualConnections int            `gorm:"not null;default:0" json:"mutualConnections"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Posts             []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

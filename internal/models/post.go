// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post represents a user-authored post in the Prok application.
// Tags are stored as a single comma-joined string; use TagList to split.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	MediaURL      *string        `json:"media_url"`
	AllowComments bool           `gorm:"not null;default:true" json:"allow_comments"`
	PublicPost    bool           `gorm:"not null;default:true" json:"public_post"`
	Category      string         `gorm:"index" json:"category"`
	Tags          string         `json:"-"`
	LikesCount    int            `gorm:"not null;default:0" json:"likes_count"`
	ViewsCount    int            `gorm:"not null;default:0" json:"views_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TagList splits the stored tag blob into tokens. The raw comma-split is
// intentional: output tokens mirror the stored string exactly.
func (p *Post) TagList() []string {
	if p.Tags == "" {
		return []string{}
	}
	return strings.Split(p.Tags, ",")
}

// PostResponse is the JSON shape returned by the post endpoints.
type PostResponse struct {
	ID            uint     `json:"id"`
	UserID        uint     `json:"user_id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	MediaURL      *string  `json:"media_url"`
	AllowComments bool     `json:"allow_comments"`
	PublicPost    bool     `json:"public_post"`
	CreatedAt     string   `json:"created_at"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	LikesCount    int      `json:"likes_count"`
	ViewsCount    int      `json:"views_count"`
}

// ToResponse converts a Post into its response representation with the
// creation timestamp rendered as RFC3339 UTC.
func (p *Post) ToResponse() PostResponse {
	return PostResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		Content:       p.Content,
		MediaURL:      p.MediaURL,
		AllowComments: p.AllowComments,
		PublicPost:    p.PublicPost,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		Category:      p.Category,
		Tags:          p.TagList(),
		LikesCount:    p.LikesCount,
		ViewsCount:    p.ViewsCount,
	}
}

// PostsToResponse converts a slice of posts, returning an empty (non-nil)
// slice for empty input so JSON serializes as [].
func PostsToResponse(posts []*Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ToResponse())
	}
	return out
}

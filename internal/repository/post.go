// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"prok/internal/models"

	"gorm.io/gorm"
)

// PostFilter describes one listing request: conjunctive filters, a sort
// order, and offset pagination.
type PostFilter struct {
	Limit      int
	Offset     int
	Search     string
	Category   string
	Visibility string // "public", "private", or "" for no filter
	Tag        string
	Sort       string // "newest" (default), "oldest", "likes", "views"
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, publicOnly bool) ([]*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	TagStrings(ctx context.Context) ([]string, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, publicOnly bool) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if publicOnly {
		q = q.Where("public_post = ?", true)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// List applies the filters conjunctively (visibility, category, tag, search),
// then sort and offset pagination. An offset past the last row yields an
// empty result, not an error.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})

	switch filter.Visibility {
	case "public":
		q = q.Where("public_post = ?", true)
	case "private":
		q = q.Where("public_post = ?", false)
	}

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	// Substring match against the raw comma-joined tag blob, not per-token
	// equality: tag=go also matches a post tagged "django". Kept
	// deliberately to mirror the original behavior.
	if filter.Tag != "" {
		q = q.Where("tags LIKE ?", "%"+filter.Tag+"%")
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}

	var posts []*models.Post
	err := applySort(q, filter.Sort).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// applySort appends the ORDER BY clause for the requested sort type.
func applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "oldest":
		return db.Order("created_at ASC")
	case "likes":
		return db.Order("likes_count DESC")
	case "views":
		return db.Order("views_count DESC")
	default: // "newest" and anything unrecognized
		return db.Order("created_at DESC")
	}
}

func (r *postRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// TagStrings returns every non-empty tag blob ordered by post id so the
// aggregate's tie-breaking stays deterministic across scans.
func (r *postRepository) TagStrings(ctx context.Context) ([]string, error) {
	var blobs []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("tags IS NOT NULL AND tags <> ''").
		Order("id").
		Pluck("tags", &blobs).Error
	if err != nil {
		return nil, err
	}
	return blobs, nil
}

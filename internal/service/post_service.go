// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"strings"

	"prok/internal/cache"
	"prok/internal/models"
	"prok/internal/repository"
)

const defaultPerPage = 10

// PostService handles post listing, creation, and the derived
// category/tag aggregates.
type PostService struct {
	postRepo repository.PostRepository
	tagIndex *cache.TagIndex
}

// ListPostsInput carries the query parameters of a listing request.
type ListPostsInput struct {
	Page       int
	PerPage    int
	Search     string
	Category   string
	Visibility string
	Tag        string
	Sort       string
}

// CreatePostInput carries the fields of a post creation request. MediaURL is
// whatever reference the upload collaborator produced, or nil.
type CreatePostInput struct {
	UserID        uint
	Title         string
	Content       string
	MediaURL      *string
	AllowComments bool
	PublicPost    bool
	Category      string
	Tags          string
}

// NewPostService wires the repository and an unpopulated aggregate index.
// The index is owned here: creation invalidates it before returning, so a
// read that follows a write in this process never sees stale aggregates.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		tagIndex: cache.NewTagIndex(postRepo),
	}
}

// ListPosts returns the filtered, sorted page of posts. Non-positive page
// and per_page fall back to 1 and 10; a page past the end yields an empty
// slice. Note the listing is not scoped to the caller: without a visibility
// filter it includes other users' private posts, mirroring the original
// endpoint's behavior.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	return s.postRepo.List(ctx, repository.PostFilter{
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
		Search:     in.Search,
		Category:   in.Category,
		Visibility: in.Visibility,
		Tag:        in.Tag,
		Sort:       in.Sort,
	})
}

// CreatePost validates and persists a new post, then invalidates the
// aggregate index before returning.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if title == "" {
		return nil, models.NewValidationError("Title is required.")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required.")
	}

	post := &models.Post{
		UserID:        in.UserID,
		Title:         title,
		Content:       content,
		MediaURL:      in.MediaURL,
		AllowComments: in.AllowComments,
		PublicPost:    in.PublicPost,
		Category:      strings.TrimSpace(in.Category),
		Tags:          strings.TrimSpace(in.Tags),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Synchronous: the next aggregate read must reflect this post.
	s.tagIndex.Invalidate()

	return post, nil
}

// GetPost returns one post. Private posts are visible to their owner only;
// for anyone else they are reported as not found.
func (s *PostService) GetPost(ctx context.Context, id, callerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.PublicPost && post.UserID != callerID {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// GetUserPosts lists a user's posts newest first. Callers other than the
// owner see public posts only.
func (s *PostService) GetUserPosts(ctx context.Context, userID, callerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, userID != callerID)
}

// Categories returns the distinct category values, served from the
// aggregate index.
func (s *PostService) Categories(ctx context.Context) ([]string, error) {
	return s.tagIndex.Categories(ctx)
}

// PopularTags returns up to 20 tags by descending frequency, served from
// the aggregate index.
func (s *PostService) PopularTags(ctx context.Context) ([]string, error) {
	return s.tagIndex.PopularTags(ctx)
}

package service

import (
	"context"
	"testing"

	"prok/internal/models"
	"prok/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPostRepo implements repository.PostRepository with function fields so
// each test overrides only what it needs.
type stubPostRepo struct {
	createFn             func(ctx context.Context, post *models.Post) error
	getByIDFn            func(ctx context.Context, id uint) (*models.Post, error)
	getByUserIDFn        func(ctx context.Context, userID uint, limit, offset int, publicOnly bool) ([]*models.Post, error)
	listFn               func(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error)
	distinctCategoriesFn func(ctx context.Context) ([]string, error)
	tagStringsFn         func(ctx context.Context) ([]string, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return nil
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubPostRepo) GetByUserID(ctx context.Context, userID uint, limit, offset int, publicOnly bool) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, publicOnly)
}

func (s *stubPostRepo) List(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	return s.listFn(ctx, filter)
}

func (s *stubPostRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	if s.distinctCategoriesFn != nil {
		return s.distinctCategoriesFn(ctx)
	}
	return []string{}, nil
}

func (s *stubPostRepo) TagStrings(ctx context.Context) ([]string, error) {
	if s.tagStringsFn != nil {
		return s.tagStringsFn(ctx)
	}
	return []string{}, nil
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "some content"},
		{"whitespace title", "   ", "some content"},
		{"empty content", "a title", ""},
		{"whitespace content", "a title", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			repo := &stubPostRepo{
				createFn: func(_ context.Context, _ *models.Post) error {
					created = true
					return nil
				},
			}
			svc := NewPostService(repo)

			_, err := svc.CreatePost(context.Background(), CreatePostInput{
				UserID: 1, Title: tt.title, Content: tt.content,
			})
			require.Error(t, err)

			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.False(t, created, "invalid input must not be persisted")
		})
	}
}

func TestPostService_CreatePost_TrimsFields(t *testing.T) {
	var saved *models.Post
	repo := &stubPostRepo{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 42
			saved = post
			return nil
		},
	}
	svc := NewPostService(repo)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:        7,
		Title:         "  Launch notes  ",
		Content:       "\tShipping today\n",
		AllowComments: true,
		PublicPost:    true,
		Category:      " technology ",
		Tags:          " go,redis ",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, uint(42), post.ID)
	assert.Equal(t, "Launch notes", saved.Title)
	assert.Equal(t, "Shipping today", saved.Content)
	assert.Equal(t, "technology", saved.Category)
	assert.Equal(t, "go,redis", saved.Tags)
	assert.Equal(t, uint(7), saved.UserID)
}

func TestPostService_CreatePost_InvalidatesAggregates(t *testing.T) {
	categoryScans := 0
	repo := &stubPostRepo{
		distinctCategoriesFn: func(_ context.Context) ([]string, error) {
			categoryScans++
			return []string{"technology"}, nil
		},
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	_, err := svc.Categories(ctx)
	require.NoError(t, err)
	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, categoryScans, "second read should be cached")

	// A failed create must not invalidate.
	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "", Content: "c"})
	require.Error(t, err)
	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, categoryScans)

	// A successful create invalidates, so the next read rescans.
	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, categoryScans)
}

func TestPostService_ListPosts_NormalizesPaging(t *testing.T) {
	var captured repository.PostFilter
	repo := &stubPostRepo{
		listFn: func(_ context.Context, filter repository.PostFilter) ([]*models.Post, error) {
			captured = filter
			return []*models.Post{}, nil
		},
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	tests := []struct {
		name       string
		page       int
		perPage    int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 10, 0},
		{"negative page", -3, 5, 5, 0},
		{"second page", 2, 10, 10, 10},
		{"custom per_page", 3, 25, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListPosts(ctx, ListPostsInput{Page: tt.page, PerPage: tt.perPage})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, captured.Limit)
			assert.Equal(t, tt.wantOffset, captured.Offset)
		})
	}
}

func TestPostService_ListPosts_PassesFiltersThrough(t *testing.T) {
	var captured repository.PostFilter
	repo := &stubPostRepo{
		listFn: func(_ context.Context, filter repository.PostFilter) ([]*models.Post, error) {
			captured = filter
			return []*models.Post{}, nil
		},
	}
	svc := NewPostService(repo)

	_, err := svc.ListPosts(context.Background(), ListPostsInput{
		Page: 1, PerPage: 10,
		Search: "grpc", Category: "technology", Visibility: "public",
		Tag: "go", Sort: "likes",
	})
	require.NoError(t, err)
	assert.Equal(t, "grpc", captured.Search)
	assert.Equal(t, "technology", captured.Category)
	assert.Equal(t, "public", captured.Visibility)
	assert.Equal(t, "go", captured.Tag)
	assert.Equal(t, "likes", captured.Sort)
}

func TestPostService_GetPost_PrivateVisibility(t *testing.T) {
	private := &models.Post{ID: 9, UserID: 2, Title: "Draft", PublicPost: false}
	repo := &stubPostRepo{
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) {
			return private, nil
		},
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	// Owner sees their private post.
	post, err := svc.GetPost(ctx, 9, 2)
	require.NoError(t, err)
	assert.Equal(t, "Draft", post.Title)

	// Anyone else gets not-found, not forbidden: existence stays hidden.
	_, err = svc.GetPost(ctx, 9, 3)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostService_GetUserPosts_ScopesOtherCallersToPublic(t *testing.T) {
	var gotPublicOnly bool
	repo := &stubPostRepo{
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, publicOnly bool) ([]*models.Post, error) {
			gotPublicOnly = publicOnly
			return []*models.Post{}, nil
		},
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	_, err := svc.GetUserPosts(ctx, 5, 5, 10, 0)
	require.NoError(t, err)
	assert.False(t, gotPublicOnly, "owner sees private posts too")

	_, err = svc.GetUserPosts(ctx, 5, 6, 10, 0)
	require.NoError(t, err)
	assert.True(t, gotPublicOnly, "other callers see public posts only")
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prok/internal/models"
	"prok/internal/repository"
	"prok/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePostRepo implements repository.PostRepository with canned data for
// handler tests.
type fakePostRepo struct {
	posts      []*models.Post
	categories []string
	blobs      []string

	lastFilter *repository.PostFilter
}

func (f *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	post.ID = uint(len(f.posts) + 1)
	post.CreatedAt = time.Now()
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (f *fakePostRepo) GetByUserID(_ context.Context, userID uint, _, _ int, publicOnly bool) ([]*models.Post, error) {
	out := []*models.Post{}
	for _, p := range f.posts {
		if p.UserID != userID {
			continue
		}
		if publicOnly && !p.PublicPost {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePostRepo) List(_ context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	f.lastFilter = &filter
	return f.posts, nil
}

func (f *fakePostRepo) DistinctCategories(_ context.Context) ([]string, error) {
	return f.categories, nil
}

func (f *fakePostRepo) TagStrings(_ context.Context) ([]string, error) {
	return f.blobs, nil
}

// newTestApp wires a Fiber app with the post routes and a fixed userID in
// locals, skipping real authentication.
func newTestApp(repo *fakePostRepo, userID uint) *fiber.App {
	s := &Server{postService: service.NewPostService(repo)}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Get("/posts", s.GetPosts)
	app.Post("/posts", s.CreatePost)
	app.Get("/posts/categories", s.GetCategories)
	app.Get("/posts/popular-tags", s.GetPopularTags)
	app.Get("/posts/:id", s.GetPost)
	app.Get("/users/:id/posts", s.GetUserPosts)
	return app
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dest))
}

func TestGetPosts_MalformedNumericParams(t *testing.T) {
	app := newTestApp(&fakePostRepo{}, 1)

	tests := []struct {
		name string
		url  string
	}{
		{"page not a number", "/posts?page=abc"},
		{"per_page not a number", "/posts?per_page=ten"},
		{"page float", "/posts?page=1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			decodeJSON(t, resp, &body)
			assert.Equal(t, "VALIDATION_ERROR", body.Code)
		})
	}
}

func TestGetPosts_SerializesTagsAndTimestamps(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	repo := &fakePostRepo{posts: []*models.Post{{
		ID: 1, UserID: 4, Title: "Hello", Content: "World",
		PublicPost: true, AllowComments: true,
		Category: "technology", Tags: "go, redis",
		CreatedAt: created,
	}}}
	app := newTestApp(repo, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.PostResponse `json:"posts"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Posts, 1)

	// Raw comma split: tokens keep their surrounding whitespace.
	assert.Equal(t, []string{"go", " redis"}, body.Posts[0].Tags)
	assert.Equal(t, "2026-02-01T09:30:00Z", body.Posts[0].CreatedAt)
}

func TestGetPosts_EmptyStoreReturnsEmptyArray(t *testing.T) {
	app := newTestApp(&fakePostRepo{}, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"posts":[]}`, string(body))
}

func TestGetPosts_ForwardsFilterParams(t *testing.T) {
	repo := &fakePostRepo{}
	app := newTestApp(repo, 1)

	url := "/posts?page=2&per_page=5&search=grpc&category=technology&visibility=public&tag=go&sort=likes"
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, repo.lastFilter)
	assert.Equal(t, 5, repo.lastFilter.Limit)
	assert.Equal(t, 5, repo.lastFilter.Offset)
	assert.Equal(t, "grpc", repo.lastFilter.Search)
	assert.Equal(t, "technology", repo.lastFilter.Category)
	assert.Equal(t, "public", repo.lastFilter.Visibility)
	assert.Equal(t, "go", repo.lastFilter.Tag)
	assert.Equal(t, "likes", repo.lastFilter.Sort)
}

// multipartBody builds a multipart form from string fields.
func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		expectedStatus int
	}{
		{
			name: "Success",
			fields: map[string]string{
				"title":    "New Post",
				"content":  "Hello world",
				"category": "technology",
				"tags":     "go,fiber",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing title",
			fields: map[string]string{
				"content": "Hello world",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing content",
			fields: map[string]string{
				"title": "New Post",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakePostRepo{}, 3)

			body, contentType := multipartBody(t, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/posts", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var post models.PostResponse
				decodeJSON(t, resp, &post)
				assert.Equal(t, "New Post", post.Title)
				assert.Equal(t, uint(3), post.UserID)
				assert.Equal(t, "technology", post.Category)
				assert.Equal(t, []string{"go", "fiber"}, post.Tags)
				assert.True(t, post.AllowComments)
				assert.True(t, post.PublicPost)
			}
		})
	}
}

func TestCreatePost_VisibilityFlags(t *testing.T) {
	tests := []struct {
		name          string
		publicPost    string
		allowComments string
		wantPublic    bool
		wantComments  bool
	}{
		{"lowercase false", "false", "false", false, false},
		{"capitalized true", "True", "True", true, true},
		{"uppercase false", "FALSE", "FALSE", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakePostRepo{}, 3)

			body, contentType := multipartBody(t, map[string]string{
				"title":          "Quiet post",
				"content":        "not for everyone",
				"public_post":    tt.publicPost,
				"allow_comments": tt.allowComments,
			})
			req := httptest.NewRequest(http.MethodPost, "/posts", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var post models.PostResponse
			decodeJSON(t, resp, &post)
			assert.Equal(t, tt.wantPublic, post.PublicPost)
			assert.Equal(t, tt.wantComments, post.AllowComments)
		})
	}
}

func TestGetCategories(t *testing.T) {
	repo := &fakePostRepo{categories: []string{"career", "technology"}}
	app := newTestApp(repo, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/categories", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Categories []string `json:"categories"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, []string{"career", "technology"}, body.Categories)
}

func TestGetPopularTags(t *testing.T) {
	repo := &fakePostRepo{blobs: []string{"go,redis", "go"}}
	app := newTestApp(repo, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/popular-tags", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Tags []string `json:"tags"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, []string{"go", "redis"}, body.Tags)
}

func TestAggregatesRefreshAfterCreate(t *testing.T) {
	repo := &fakePostRepo{blobs: []string{"go"}}
	app := newTestApp(repo, 1)

	// Warm the aggregate.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/popular-tags", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	// Creating a post invalidates it; a changed store is visible right away.
	repo.blobs = []string{"go", "redis,go"}
	body, contentType := multipartBody(t, map[string]string{
		"title": "t", "content": "c", "tags": "redis,go",
	})
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts/popular-tags", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var tagsBody struct {
		Tags []string `json:"tags"`
	}
	decodeJSON(t, resp, &tagsBody)
	assert.Equal(t, []string{"go", "redis"}, tagsBody.Tags)
}

func TestGetPost_PrivateHiddenFromOthers(t *testing.T) {
	repo := &fakePostRepo{posts: []*models.Post{{
		ID: 1, UserID: 2, Title: "Draft", Content: "x", PublicPost: false,
	}}}

	// Caller 2 is the owner.
	ownerApp := newTestApp(repo, 2)
	resp, err := ownerApp.Test(httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Caller 3 is not.
	otherApp := newTestApp(repo, 3)
	resp, err = otherApp.Test(httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPost_InvalidID(t *testing.T) {
	app := newTestApp(&fakePostRepo{}, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserPosts_PublicOnlyForOtherCallers(t *testing.T) {
	repo := &fakePostRepo{posts: []*models.Post{
		{ID: 1, UserID: 2, Title: "Public", Content: "x", PublicPost: true},
		{ID: 2, UserID: 2, Title: "Private", Content: "x", PublicPost: false},
	}}

	otherApp := newTestApp(repo, 3)
	resp, err := otherApp.Test(httptest.NewRequest(http.MethodGet, "/users/2/posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.PostResponse `json:"posts"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "Public", body.Posts[0].Title)

	ownerApp := newTestApp(repo, 2)
	resp, err = ownerApp.Test(httptest.NewRequest(http.MethodGet, "/users/2/posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var ownBody struct {
		Posts []models.PostResponse `json:"posts"`
	}
	decodeJSON(t, resp, &ownBody)
	assert.Len(t, ownBody.Posts, 2)
}

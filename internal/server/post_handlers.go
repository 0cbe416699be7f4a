// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"strings"

	"prok/internal/models"
	"prok/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts. Filters (search, category, visibility,
// tag) apply conjunctively; sort is one of newest, oldest, likes, views.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()

	page, perPage, err := parsePageParams(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Page:       page,
		PerPage:    perPage,
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Visibility: c.Query("visibility"),
		Tag:        c.Query("tag"),
		Sort:       c.Query("sort"),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"posts": models.PostsToResponse(posts)})
}

// CreatePost handles POST /api/posts. The body is multipart form data with
// an optional media attachment.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var mediaURL *string
	if file, err := c.FormFile("media"); err == nil && file != nil {
		url, saveErr := s.media.SavePostMedia(file, userID)
		if saveErr != nil {
			return models.RespondWithError(c, statusForError(saveErr), saveErr)
		}
		mediaURL = &url
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:        userID,
		Title:         c.FormValue("title"),
		Content:       c.FormValue("content"),
		MediaURL:      mediaURL,
		AllowComments: formBool(c, "allow_comments"),
		PublicPost:    formBool(c, "public_post"),
		Category:      c.FormValue("category"),
		Tags:          c.FormValue("tags"),
	})
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post.ToResponse())
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id, userID)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(post.ToResponse())
}

// GetCategories handles GET /api/posts/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.postService.Categories(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetPopularTags handles GET /api/posts/popular-tags
func (s *Server) GetPopularTags(c *fiber.Ctx) error {
	tags, err := s.postService.PopularTags(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	callerID := c.Locals("userID").(uint)

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page, perPage, err := parsePageParams(c)
	if err != nil {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	posts, err := s.postService.GetUserPosts(ctx, targetID, callerID, perPage, (page-1)*perPage)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"posts": models.PostsToResponse(posts)})
}

// formBool reads a form value that defaults to true when absent. The
// comparison ignores case so clients sending "True" or "TRUE" are accepted.
func formBool(c *fiber.Ctx, name string) bool {
	return strings.EqualFold(c.FormValue(name, "true"), "true")
}

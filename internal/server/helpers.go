// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"errors"
	"strconv"

	"prok/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// queryIntStrict parses an integer query parameter. A missing or empty
// parameter yields the default; anything non-numeric is a client error, not
// a silent fallback.
func queryIntStrict(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return v, nil
}

// parsePageParams extracts page and per_page. On a malformed value it writes
// a 400 JSON response and returns errResponseWritten; callers should check:
// if err != nil { return nil }
func parsePageParams(c *fiber.Ctx) (page, perPage int, err error) {
	page, err = queryIntStrict(c, "page", 1)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return 0, 0, errResponseWritten
	}
	perPage, err = queryIntStrict(c, "per_page", 10)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return 0, 0, errResponseWritten
	}
	return page, perPage, nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// statusForError maps application error codes to HTTP status codes.
func statusForError(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return fiber.StatusBadRequest
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		case "NOT_FOUND":
			return fiber.StatusNotFound
		}
	}
	return fiber.StatusInternalServerError
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/validation"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status, payload := mapError(err)
	c.AbortWithStatusJSON(status, payload)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if posts.IsNotFound(err) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	if errors.Is(err, posts.ErrFrontMatterInvalid) {
		resp := errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		}
		if errors.Is(err, validation.ErrSchemaValidation) {
			resp.Issues = validation.Issues(err)
		}
		return http.StatusUnprocessableEntity, resp
	}

	if errors.Is(err, posts.ErrSlugCollision) {
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

// parseIntQuery reads a non negative integer query value. Missing values
// return fallback.
func parseIntQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non negative integer", key)
	}
	return value, nil
}

func isDayKey(value string) bool {
	day, ok := posts.Calendar{}.Day(value)
	return ok && day.Key() == value
}

func isYear(value string) bool {
	if len(value) != 4 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package commands

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/posts"
)

// Text codes attached to every error a Handler returns.
const (
	CodeInvalidMessage       = "BLOG_COMMAND_INVALID"
	CodeCanceled             = "BLOG_COMMAND_CANCELED"
	CodeTimeout              = "BLOG_COMMAND_TIMEOUT"
	CodeContextError         = "BLOG_COMMAND_CONTEXT_ERROR"
	CodeFailed               = "BLOG_COMMAND_FAILED"
	CodeCatalogRefreshFailed = "BLOG_CATALOG_REFRESH_FAILED"
	CodeSiteBuildFailed      = "BLOG_SITE_BUILD_FAILED"
	CodeSlugCollision        = "BLOG_SLUG_COLLISION"
	CodeFrontMatterInvalid   = "BLOG_FRONT_MATTER_INVALID"
)

// Failure names how a handler reports execution errors that are not
// content problems.
type Failure struct {
	Code    string
	Message string
}

var defaultFailure = Failure{Code: CodeFailed, Message: "command failed"}

func wrapValidationError(err error, messageType string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("%s: message rejected", messageType)).
		WithTextCode(CodeInvalidMessage)
}

func wrapContextError(err error, messageType string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, messageType+": cancelled").
			WithTextCode(CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, messageType+": deadline exceeded").
			WithTextCode(CodeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, messageType+": context error").
			WithTextCode(CodeContextError)
	}
}

// wrapExecuteError tags content tree problems as validation errors so
// callers can tell a broken post from a failing build.
func wrapExecuteError(err error, failure Failure) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	var collision *posts.SlugCollisionError
	switch {
	case errors.As(err, &collision):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "slug "+collision.Slug+" is claimed by more than one file").
			WithTextCode(CodeSlugCollision)
	case errors.Is(err, posts.ErrFrontMatterInvalid):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "front matter is invalid").
			WithTextCode(CodeFrontMatterInvalid)
	}
	if failure.Code == "" {
		failure = defaultFailure
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, failure.Message).
		WithTextCode(failure.Code)
}

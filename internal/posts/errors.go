package posts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPostNotFound       = errors.New("posts: post not found")
	ErrFrontMatterInvalid = errors.New("posts: front matter invalid")
	ErrSlugCollision      = errors.New("posts: slug collision")
)

// NotFoundError reports a slug that resolved to no file.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Slug) == "" {
		return ErrPostNotFound.Error()
	}
	return fmt.Sprintf("%s: slug=%s", ErrPostNotFound.Error(), e.Slug)
}

func (e *NotFoundError) Unwrap() error {
	return ErrPostNotFound
}

// ParseError reports a file whose front matter could not be turned into
// post metadata. Both ErrFrontMatterInvalid and the cause match errors.Is.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ErrFrontMatterInvalid.Error()
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: path=%s", ErrFrontMatterInvalid.Error(), e.Path)
	}
	return fmt.Sprintf("%s: path=%s: %v", ErrFrontMatterInvalid.Error(), e.Path, e.Cause)
}

func (e *ParseError) Unwrap() []error {
	if e == nil || e.Cause == nil {
		return []error{ErrFrontMatterInvalid}
	}
	return []error{ErrFrontMatterInvalid, e.Cause}
}

// SlugCollisionError reports two files that derive the same slug.
type SlugCollisionError struct {
	Slug  string
	Paths []string
}

func (e *SlugCollisionError) Error() string {
	if e == nil {
		return ErrSlugCollision.Error()
	}
	return fmt.Sprintf("%s: slug=%s paths=%s", ErrSlugCollision.Error(), e.Slug, strings.Join(e.Paths, ","))
}

func (e *SlugCollisionError) Unwrap() error {
	return ErrSlugCollision
}

package interfaces

import "context"

// Post is one blog article projected from a content file. Content is only
// populated by single post lookups; catalog listings leave it empty.
type Post struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Date        string         `json:"date"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Content     string         `json:"content,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	// SourcePath is the slash separated path relative to the content root.
	SourcePath string `json:"-"`
}

// HasTag reports whether the post carries tag (exact match).
func (p Post) HasTag(tag string) bool {
	for _, candidate := range p.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// PostIndex serves the two read paths over the content tree: the date
// sorted catalog and single post resolution by slug.
type PostIndex interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, slug string) (*Post, error)
}

package interfaces

import "context"

// ParseOptions customises Markdown rendering. Names stay readable for config
// unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// TocEntry is one heading collected for a post's table of contents.
type TocEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// RenderedPost pairs a post with its rendered body.
type RenderedPost struct {
	Post           Post       `json:"post"`
	HTML           string     `json:"html"`
	TOC            []TocEntry `json:"toc,omitempty"`
	ReadingMinutes int        `json:"reading_minutes"`
	// Diagrams counts fenced mermaid blocks emitted for client side rendering.
	Diagrams int `json:"diagrams,omitempty"`
}

// PostRenderer converts a post body into HTML.
type PostRenderer interface {
	Render(ctx context.Context, post *Post) (*RenderedPost, error)
}

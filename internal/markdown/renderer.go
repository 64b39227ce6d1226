package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

// Renderer implements interfaces.PostRenderer. The goldmark engine is built
// once and is safe to share between goroutines.
type Renderer struct {
	engine goldmark.Markdown
	logger interfaces.Logger
}

var _ interfaces.PostRenderer = (*Renderer)(nil)

// NewRenderer builds a renderer for opts. A nil logger discards output.
func NewRenderer(opts interfaces.ParseOptions, logger interfaces.Logger) *Renderer {
	return &Renderer{
		engine: newGoldmarkEngine(opts),
		logger: logging.Or(logger),
	}
}

// Output is the result of rendering a markdown body.
type Output struct {
	HTML     string
	TOC      []interfaces.TocEntry
	Diagrams int
}

// Render converts the post body. Posts from catalog listings carry no body
// and render to empty HTML.
func (r *Renderer) Render(ctx context.Context, post *interfaces.Post) (*interfaces.RenderedPost, error) {
	if post == nil {
		return nil, errors.New("markdown: post is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := r.Convert([]byte(post.Content))
	if err != nil {
		logging.WithPostContext(r.logger, post.Slug, post.SourcePath).Error("markdown.render.failed", "error", err)
		return nil, err
	}
	logging.WithPostContext(r.logger, post.Slug, post.SourcePath).Debug("markdown.render.completed",
		"headings", len(out.TOC),
		"diagrams", out.Diagrams,
	)

	return &interfaces.RenderedPost{
		Post:           *post,
		HTML:           out.HTML,
		TOC:            out.TOC,
		ReadingMinutes: ReadingMinutes(post.Content),
		Diagrams:       out.Diagrams,
	}, nil
}

// Convert renders source and collects its outline in one parse.
func (r *Renderer) Convert(source []byte) (Output, error) {
	doc := r.engine.Parser().Parse(text.NewReader(source))

	toc, diagrams := inspect(doc, source)

	var buf bytes.Buffer
	if err := r.engine.Renderer().Render(&buf, source, doc); err != nil {
		return Output{}, fmt.Errorf("markdown render: %w", err)
	}
	return Output{
		HTML:     buf.String(),
		TOC:      toc,
		Diagrams: diagrams,
	}, nil
}

// inspect walks the document for h2/h3 headings and diagram fences.
func inspect(doc ast.Node, source []byte) ([]interfaces.TocEntry, int) {
	toc := []interfaces.TocEntry{}
	diagrams := 0

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level < 2 || n.Level > 3 {
				return ast.WalkSkipChildren, nil
			}
			entry := interfaces.TocEntry{
				Text:  strings.TrimSpace(string(n.Text(source))),
				Level: n.Level,
			}
			if id, ok := n.AttributeString("id"); ok {
				switch v := id.(type) {
				case []byte:
					entry.ID = string(v)
				case string:
					entry.ID = v
				}
			}
			toc = append(toc, entry)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if string(n.Language(source)) == DiagramLanguage {
				diagrams++
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return toc, diagrams
}

// ReadingMinutes estimates reading time at WordsPerMinute, never below one.
func ReadingMinutes(body string) int {
	minutes := len(strings.Fields(body)) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

package posts

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Metadata is the typed view over a post's front matter. Keys other than
// title, date, description and tags land in Extra unchanged.
type Metadata struct {
	Title       string
	Date        string
	Description string
	Tags        []string
	Extra       map[string]any
}

// Document is a parsed content file.
type Document struct {
	Path     string
	Metadata Metadata
	Body     []byte
}

type frontMatterEnvelope struct {
	Title       any            `yaml:"title"`
	Date        any            `yaml:"date"`
	Description any            `yaml:"description"`
	Tags        any            `yaml:"tags"`
	Custom      map[string]any `yaml:",inline"`
}

// ParseFrontMatter splits source into metadata and body. Files without a
// front matter block parse to empty metadata and the full source as body.
func ParseFrontMatter(source []byte) (Metadata, []byte, error) {
	var env frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	meta, err := envelopeToMetadata(env)
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, body, nil
}

// BuildDocument parses source read from path.
func BuildDocument(path string, source []byte) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	return &Document{
		Path:     path,
		Metadata: meta,
		Body:     body,
	}, nil
}

// Fields flattens the metadata back into a single map, the shape used for
// schema validation.
func (m Metadata) Fields() map[string]any {
	out := make(map[string]any, len(m.Extra)+4)
	for key, value := range m.Extra {
		out[key] = value
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.Date != "" {
		out["date"] = m.Date
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.Tags != nil {
		tags := make([]any, len(m.Tags))
		for i, tag := range m.Tags {
			tags[i] = tag
		}
		out["tags"] = tags
	}
	return out
}

func envelopeToMetadata(env frontMatterEnvelope) (Metadata, error) {
	title, err := scalarString("title", env.Title)
	if err != nil {
		return Metadata{}, err
	}
	description, err := scalarString("description", env.Description)
	if err != nil {
		return Metadata{}, err
	}
	date, err := dateString(env.Date)
	if err != nil {
		return Metadata{}, err
	}
	tags, err := tagList(env.Tags)
	if err != nil {
		return Metadata{}, err
	}

	extra := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		extra[key] = normalizeValue(value)
	}

	return Metadata{
		Title:       title,
		Date:        date,
		Description: description,
		Tags:        tags,
		Extra:       extra,
	}, nil
}

func scalarString(field string, value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(typed), nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(typed), nil
	default:
		return "", fmt.Errorf("front matter field %q must be a scalar, got %T", field, value)
	}
}

// dateString keeps dates in a lexically sortable form. YAML timestamps at
// midnight UTC come back as YYYY-MM-DD, anything else as RFC 3339.
func dateString(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case time.Time:
		utc := typed.UTC()
		if typed.Location() == time.UTC && utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 && utc.Nanosecond() == 0 {
			return utc.Format(time.DateOnly), nil
		}
		return typed.Format(time.RFC3339), nil
	case string:
		return strings.TrimSpace(typed), nil
	case int, int64, uint64:
		return fmt.Sprint(typed), nil
	default:
		return "", fmt.Errorf("front matter field %q must be a date, got %T", "date", value)
	}
}

// tagList accepts a sequence or a single scalar. Order and duplicates are
// preserved as authored.
func tagList(value any) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			return []string{trimmed}, nil
		}
		return nil, nil
	case []string:
		return append([]string(nil), typed...), nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			tag, err := scalarString("tags", item)
			if err != nil {
				return nil, err
			}
			if tag != "" {
				out = append(out, tag)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("front matter field %q must be a list, got %T", "tags", value)
	}
}

// normalizeValue converts YAML decoded maps keyed by any into map[string]any
// so extra fields encode cleanly as JSON.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		if d, err := dateString(typed); err == nil {
			return d
		}
		return typed
	default:
		return value
	}
}

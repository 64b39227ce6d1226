package generator

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const defaultFeedLimit = 20

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Categories  []string
	PublishedAt time.Time
}

// buildFeedItems takes the newest limit posts in catalog order. The GUID is
// derived from the slug so it survives rebuilds.
func buildFeedItems(site SiteMetadata, catalog []interfaces.Post, cal posts.Calendar, limit int) []feedItem {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	items := make([]feedItem, 0, min(limit, len(catalog)))
	for _, post := range catalog {
		if len(items) == limit {
			break
		}
		title := strings.TrimSpace(post.Title)
		if title == "" {
			title = post.Slug
		}
		items = append(items, feedItem{
			Title:       title,
			Summary:     normalizeWhitespace(post.Description),
			Link:        absoluteURL(site.BaseURL, site.postRoute(post.Slug)),
			GUID:        "urn:uuid:" + identity.PostUUID(post.Slug).String(),
			Categories:  append([]string(nil), post.Tags...),
			PublishedAt: postTime(cal, post.Date),
		})
	}
	return items
}

func buildRSSFeed(site SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(site.title())))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(absoluteURL(baseLink, site.postsRoute()))))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(site.description())))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

// postTime reads a post date as midnight UTC of its calendar day.
func postTime(cal posts.Calendar, value string) time.Time {
	day, ok := cal.Day(value)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.DateOnly, day.Key())
	if err != nil {
		return time.Time{}
	}
	return ts
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" || normalized == "/" {
		return targetBase + "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

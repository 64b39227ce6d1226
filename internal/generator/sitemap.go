package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// buildSitemap lists entries once each, sorted by location.
func buildSitemap(baseURL string, entries []sitemapEntry) string {
	unique := make([]sitemapEntry, 0, len(entries))
	seen := map[string]struct{}{}
	for _, entry := range entries {
		location := absoluteURL(baseURL, entry.Location)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		unique = append(unique, sitemapEntry{Location: location, LastMod: entry.LastMod})
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Location < unique[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range unique {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.DateOnly)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL string) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", baseURLWithFallback(baseURL)))
	return builder.String()
}

// Package markdown renders post bodies to HTML with goldmark. Besides the
// HTML it collects the h2/h3 outline and counts diagram fences, which the
// reader page uses for its table of contents and diagram loader.
package markdown

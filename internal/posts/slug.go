package posts

import (
	"io/fs"
	"path"
	"regexp"
	"strings"

	goslug "github.com/goliatone/go-slug"
)

// DefaultExtensions lists the recognised post extensions. Matching is by
// case sensitive suffix.
var DefaultExtensions = []string{".md", ".mdx"}

var datePrefixPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// SlugFromPath derives the slug for a file path relative to the content
// root: the extension is dropped, separators are normalised to "/", and the
// remaining segments are joined with "-".
func SlugFromPath(rel string, exts []string) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	rel = trimExtension(rel, exts)
	return strings.Join(strings.Split(rel, "/"), "-")
}

// IsURLSafe reports whether slug satisfies the go-slug default rules.
// Derived slugs that fail the check still work; the index only warns.
func IsURLSafe(value string) bool {
	return goslug.IsValid(value)
}

func trimExtension(name string, exts []string) string {
	if ext := matchExtension(name, exts); ext != "" {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// matchExtension returns the longest recognised extension name ends with.
func matchExtension(name string, exts []string) string {
	best := ""
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best
}

func isCandidate(name string, exts []string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := matchExtension(name, exts)
	return ext != "" && len(name) > len(ext)
}

// datePathCandidates reconstructs YYYY/MM/DD/<rest><ext> for every
// extension when slug carries a date prefix.
func datePathCandidates(slug string, exts []string) []string {
	match := datePrefixPattern.FindStringSubmatch(slug)
	if match == nil {
		return nil
	}
	base := match[1] + "/" + match[2] + "/" + match[3] + "/" + match[4]
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		candidate := base + ext
		if fs.ValidPath(candidate) && SlugFromPath(candidate, exts) == slug {
			out = append(out, candidate)
		}
	}
	return out
}

package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ParseFailurePolicy decides what List does with a file it cannot parse.
type ParseFailurePolicy string

const (
	// ParseFailureSkip logs the file and leaves it out of the catalog.
	ParseFailureSkip ParseFailurePolicy = "skip"
	// ParseFailureAbort fails the whole listing.
	ParseFailureAbort ParseFailurePolicy = "abort"
)

// CollisionPolicy decides what List does when two files derive one slug.
type CollisionPolicy string

const (
	// CollisionError fails the listing with a SlugCollisionError.
	CollisionError CollisionPolicy = "error"
	// CollisionFirst keeps the first file in walk order and logs the rest.
	CollisionFirst CollisionPolicy = "first"
)

// MetadataValidator checks parsed metadata before it becomes a post.
type MetadataValidator interface {
	Validate(fields map[string]any) error
}

// IndexConfig configures an Index.
type IndexConfig struct {
	Extensions   []string
	ParseFailure ParseFailurePolicy
	Collision    CollisionPolicy
	Validator    MetadataValidator
	Logger       interfaces.Logger
}

// Index discovers posts under a content root. It keeps no state between
// calls, so every List and Get reflects the tree as it is at call time.
type Index struct {
	fsys         fs.FS
	exts         []string
	parseFailure ParseFailurePolicy
	collision    CollisionPolicy
	validator    MetadataValidator
	logger       interfaces.Logger
}

var _ interfaces.PostIndex = (*Index)(nil)

// NewIndex builds an index over filesystem, whose root is the content root.
func NewIndex(filesystem fs.FS, cfg IndexConfig) *Index {
	exts := append([]string(nil), cfg.Extensions...)
	if len(exts) == 0 {
		exts = append(exts, DefaultExtensions...)
	}
	parseFailure := cfg.ParseFailure
	if parseFailure == "" {
		parseFailure = ParseFailureSkip
	}
	collision := cfg.Collision
	if collision == "" {
		collision = CollisionError
	}
	return &Index{
		fsys:         filesystem,
		exts:         exts,
		parseFailure: parseFailure,
		collision:    collision,
		validator:    cfg.Validator,
		logger:       logging.Or(cfg.Logger),
	}
}

// NewDirIndex builds an index rooted at the directory root.
func NewDirIndex(root string, cfg IndexConfig) *Index {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return NewIndex(os.DirFS(root), cfg)
}

// List returns every post sorted by date, newest first, without bodies.
// Equal dates keep walk order. A missing or unreadable root is an empty
// catalog.
func (ix *Index) List(ctx context.Context) ([]interfaces.Post, error) {
	files, err := ix.discover(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		ix.logger.Warn("posts.list.root_unavailable", "error", err)
		return []interfaces.Post{}, nil
	}

	out := make([]interfaces.Post, 0, len(files))
	seen := make(map[string]string, len(files))

	for _, file := range files {
		slug := SlugFromPath(file, ix.exts)
		previous, taken := seen[slug]
		if taken && ix.collision == CollisionFirst {
			logging.WithPostContext(ix.logger, slug, file).Warn("posts.list.slug_collision", "kept", previous)
			continue
		}

		// Only files that load claim a slug, so a broken file never
		// shadows a valid one.
		doc, err := ix.load(file)
		if err != nil {
			if ix.parseFailure == ParseFailureAbort {
				return nil, err
			}
			logging.WithPostContext(ix.logger, slug, file).Warn("posts.list.skip_file", "error", err)
			continue
		}
		if taken {
			return nil, &SlugCollisionError{Slug: slug, Paths: []string{previous, file}}
		}
		seen[slug] = file
		out = append(out, ix.toPost(slug, doc, false))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out, nil
}

// Get resolves slug to a single post including its body. The file it
// reads is the one List keeps for slug.
func (ix *Index) Get(ctx context.Context, slug string) (*interfaces.Post, error) {
	slug = strings.TrimSpace(slug)
	file, doc, err := ix.locate(ctx, slug)
	if err != nil {
		return nil, err
	}
	logging.WithPostContext(ix.logger, slug, file).Debug("posts.get.resolved")
	post := ix.toPost(slug, doc, true)
	return &post, nil
}

// Resolve maps slug to the source path Get reads. A file that fails to
// parse still resolves when no other file claims slug.
func (ix *Index) Resolve(ctx context.Context, slug string) (string, error) {
	file, _, err := ix.locate(ctx, strings.TrimSpace(slug))
	if file != "" {
		return file, nil
	}
	return "", err
}

// locate finds the file List keeps for slug and loads it. Date prefixed
// slugs are tried at YYYY/MM/DD/<rest> first unless the first-wins
// collision policy is active, since then only the walk knows which file
// came first. On a load failure the failing path is returned with the
// error.
func (ix *Index) locate(ctx context.Context, slug string) (string, *Document, error) {
	if slug == "" {
		return "", nil, &NotFoundError{Slug: slug}
	}
	if ix.collision != CollisionFirst {
		if file, ok := ix.resolveDatePath(slug); ok {
			doc, err := ix.load(file)
			if err == nil || ix.parseFailure == ParseFailureAbort {
				return file, doc, err
			}
		}
	}

	matches, err := ix.resolveByWalk(ctx, slug)
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		return "", nil, &NotFoundError{Slug: slug}
	}
	var (
		failedPath string
		failure    error
	)
	for _, file := range matches {
		doc, err := ix.load(file)
		if err == nil {
			return file, doc, nil
		}
		if ix.parseFailure == ParseFailureAbort {
			return file, nil, err
		}
		if failure == nil {
			failedPath, failure = file, err
		}
	}
	return failedPath, nil, failure
}

func (ix *Index) resolveDatePath(slug string) (string, bool) {
	for _, candidate := range datePathCandidates(slug, ix.exts) {
		info, err := fs.Stat(ix.fsys, candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (ix *Index) resolveByWalk(ctx context.Context, slug string) ([]string, error) {
	files, err := ix.discover(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, nil
	}
	var matches []string
	for _, file := range files {
		if SlugFromPath(file, ix.exts) == slug {
			matches = append(matches, file)
		}
	}
	return matches, nil
}

// discover walks the tree in lexical order and returns candidate files.
// Unreadable subdirectories are logged and skipped; an unreadable root is
// returned as an error.
func (ix *Index) discover(ctx context.Context) ([]string, error) {
	var files []string
	err := fs.WalkDir(ix.fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			ix.logger.Warn("posts.walk.skip", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isCandidate(d.Name(), ix.exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (ix *Index) load(file string) (*Document, error) {
	source, err := fs.ReadFile(ix.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("posts: read %s: %w", file, err)
	}
	doc, err := BuildDocument(file, source)
	if err != nil {
		return nil, err
	}
	if ix.validator != nil {
		if err := ix.validator.Validate(doc.Metadata.Fields()); err != nil {
			return nil, &ParseError{Path: file, Cause: err}
		}
	}
	return doc, nil
}

func (ix *Index) toPost(slug string, doc *Document, withBody bool) interfaces.Post {
	logger := logging.WithPostContext(ix.logger, slug, doc.Path)
	if doc.Metadata.Title == "" {
		logger.Warn("posts.frontmatter.title_missing")
	}
	if doc.Metadata.Date == "" {
		logger.Warn("posts.frontmatter.date_missing")
	}
	if !IsURLSafe(slug) {
		logger.Debug("posts.slug.not_url_safe")
	}

	post := interfaces.Post{
		ID:          slug,
		Slug:        slug,
		Title:       doc.Metadata.Title,
		Date:        doc.Metadata.Date,
		Description: doc.Metadata.Description,
		Tags:        doc.Metadata.Tags,
		Extra:       doc.Metadata.Extra,
		SourcePath:  doc.Path,
	}
	if withBody {
		post.Content = string(doc.Body)
	}
	return post
}

// IsNotFound reports whether err is a slug lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound)
}

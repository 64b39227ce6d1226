package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrOutputDirRequired indicates a build was requested without a target directory.
	ErrOutputDirRequired = errors.New("generator: output directory is required")
	errIndexRequired     = errors.New("generator: post index is required")
	errRendererRequired  = errors.New("generator: post renderer is required")
)

// DefaultPostsPath is the route prefix of the blog pages.
const DefaultPostsPath = "/blog"

// Service describes the static export contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// SiteMetadata describes the site the export is published under.
type SiteMetadata struct {
	Title       string
	Description string
	BaseURL     string
	PostsPath   string
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir string
	Site      SiteMetadata
	FeedLimit int
	Workers   int
}

// BuildOptions narrows or overrides a single run.
type BuildOptions struct {
	// OutputDir and BaseURL override the configured values when set.
	OutputDir string
	BaseURL   string
	DryRun    bool
}

// Artifact is one file produced by a build.
type Artifact struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	OutputDir   string
	PostsBuilt  int
	PostsFailed int
	Years       int
	Tags        int
	FeedItems   int
	SitemapURLs int
	Artifacts   []Artifact
	Duration    time.Duration
	Errors      []error
	DryRun      bool
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Posts    interfaces.PostIndex
	Renderer interfaces.PostRenderer
	Calendar posts.Calendar
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logging.Or(deps.Logger),
		now:    time.Now,
	}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type renderOutcome struct {
	index    int
	rendered *interfaces.RenderedPost
	err      error
}

// yearPage is the payload of years/<year>.json.
type yearPage struct {
	Year   string             `json:"year"`
	Count  int                `json:"count"`
	Months []posts.MonthGroup `json:"months"`
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Posts == nil {
		return nil, errIndexRequired
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	outputDir := firstNonEmpty(opts.OutputDir, s.cfg.OutputDir)
	if outputDir == "" && !opts.DryRun {
		return nil, ErrOutputDirRequired
	}
	site := s.cfg.Site
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		site.BaseURL = base
	}
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")

	start := s.now()
	logger := logging.WithFields(s.logger, map[string]any{"output_dir": outputDir, "dry_run": opts.DryRun})
	logger.Info("generator.build.start")

	catalog, err := s.deps.Posts.List(ctx)
	if err != nil {
		logger.Error("generator.build.catalog_failed", "error", err)
		return nil, fmt.Errorf("generator: list posts: %w", err)
	}

	result := &BuildResult{
		OutputDir: outputDir,
		DryRun:    opts.DryRun,
	}

	rendered, renderErrs := s.renderAll(ctx, catalog)
	for _, item := range rendered {
		if item != nil {
			result.PostsBuilt++
		}
	}
	result.PostsFailed = len(renderErrs)
	errorsSlice := append([]error(nil), renderErrs...)
	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, err
	}

	writer := newArtifactWriter(outputDir, opts.DryRun)
	emit := func(rel string, category writeCategory, contentType string, payload []byte) {
		if err := s.writeArtifact(ctx, writer, result, rel, category, contentType, payload); err != nil {
			logger.Error("generator.build.write_failed", "path", rel, "error", err)
			errorsSlice = append(errorsSlice, err)
		}
	}
	emitJSON := func(rel string, category writeCategory, value any) {
		payload, err := encodeJSON(value)
		if err != nil {
			errorsSlice = append(errorsSlice, fmt.Errorf("generator: encode %s: %w", rel, err))
			return
		}
		emit(rel, category, "application/json", payload)
	}

	if err := writer.EnsureDir(ctx, "."); err != nil {
		return result, fmt.Errorf("generator: prepare output: %w", err)
	}

	emitJSON("posts.json", categoryCatalog, catalog)

	if err := writer.EnsureDir(ctx, "posts"); err != nil {
		errorsSlice = append(errorsSlice, err)
	}
	for _, item := range rendered {
		if item == nil {
			continue
		}
		emitJSON(path.Join("posts", item.Post.Slug+".json"), categoryPost, item)
	}

	cal := s.deps.Calendar
	years := posts.Years(catalog, cal)
	result.Years = len(years)
	if len(years) > 0 {
		if err := writer.EnsureDir(ctx, "years"); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	for _, year := range years {
		inYear := posts.PostsInYear(catalog, year, cal)
		emitJSON(path.Join("years", year+".json"), categoryYear, yearPage{
			Year:   year,
			Count:  len(inYear),
			Months: posts.GroupByMonth(inYear, cal),
		})
	}

	emitJSON("archive.json", categoryArchive, posts.BuildArchive(catalog, cal))

	tags := posts.TagCounts(catalog)
	result.Tags = len(tags)
	emitJSON("tags.json", categoryTags, tags)

	entries := s.sitemapEntries(site, catalog, years)
	result.SitemapURLs = len(entries)
	emit("sitemap.xml", categorySitemap, "application/xml", []byte(buildSitemap(site.BaseURL, entries)))

	items := buildFeedItems(site, catalog, cal, s.cfg.FeedLimit)
	result.FeedItems = len(items)
	emit("feed.xml", categoryFeed, "application/rss+xml", []byte(buildRSSFeed(site, items, start)))

	emit("robots.txt", categoryRobots, "text/plain; charset=utf-8", []byte(buildRobots(site.BaseURL)))

	result.Duration = s.now().Sub(start)
	logger.Info("generator.build.completed",
		"posts", result.PostsBuilt,
		"failed", result.PostsFailed,
		"artifacts", len(result.Artifacts),
		"duration", result.Duration,
	)

	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// renderAll loads and renders every catalog post on a bounded worker pool.
// The returned slice is aligned with catalog; failed posts leave a nil slot.
func (s *service) renderAll(ctx context.Context, catalog []interfaces.Post) ([]*interfaces.RenderedPost, []error) {
	rendered := make([]*interfaces.RenderedPost, len(catalog))
	if len(catalog) == 0 {
		return rendered, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			return
		}
		rendered[outcome.index] = outcome.rendered
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < s.effectiveWorkerCount(len(catalog)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				collect(s.renderPost(ctx, idx, catalog[idx].Slug))
			}
		}()
	}

feed:
	for idx := range catalog {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	return rendered, errs
}

func (s *service) renderPost(ctx context.Context, idx int, slug string) renderOutcome {
	if err := ctx.Err(); err != nil {
		return renderOutcome{index: idx, err: err}
	}
	post, err := s.deps.Posts.Get(ctx, slug)
	if err != nil {
		s.logger.Warn("generator.render.load_failed", "slug", slug, "error", err)
		return renderOutcome{index: idx, err: fmt.Errorf("generator: load %s: %w", slug, err)}
	}
	out, err := s.deps.Renderer.Render(ctx, post)
	if err != nil {
		s.logger.Warn("generator.render.failed", "slug", slug, "error", err)
		return renderOutcome{index: idx, err: fmt.Errorf("generator: render %s: %w", slug, err)}
	}
	return renderOutcome{index: idx, rendered: out}
}

func (s *service) writeArtifact(
	ctx context.Context,
	writer artifactWriter,
	result *BuildResult,
	rel string,
	category writeCategory,
	contentType string,
	payload []byte,
) error {
	checksum := computeHash(payload)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        rel,
		Content:     bytes.NewReader(payload),
		Size:        int64(len(payload)),
		Category:    category,
		ContentType: contentType,
		Checksum:    checksum,
	}); err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, Artifact{
		Path:     rel,
		Category: string(category),
		Size:     int64(len(payload)),
		Checksum: checksum,
	})
	return nil
}

func (s *service) sitemapEntries(site SiteMetadata, catalog []interfaces.Post, years []string) []sitemapEntry {
	var newest time.Time
	entries := make([]sitemapEntry, 0, len(catalog)+len(years)+2)
	for _, post := range catalog {
		lastMod := postTime(s.deps.Calendar, post.Date)
		if lastMod.After(newest) {
			newest = lastMod
		}
		entries = append(entries, sitemapEntry{Location: site.postRoute(post.Slug), LastMod: lastMod})
	}
	for _, year := range years {
		entries = append(entries, sitemapEntry{Location: site.yearRoute(year)})
	}
	entries = append(entries,
		sitemapEntry{Location: "/", LastMod: newest},
		sitemapEntry{Location: site.postsRoute(), LastMod: newest},
	)
	return entries
}

func (s *service) effectiveWorkerCount(jobs int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}

func (m SiteMetadata) postsRoute() string {
	route := strings.TrimSpace(m.PostsPath)
	if route == "" {
		route = DefaultPostsPath
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if route != "/" {
		route = strings.TrimRight(route, "/")
	}
	return route
}

func (m SiteMetadata) postRoute(slug string) string {
	return path.Join(m.postsRoute(), slug)
}

func (m SiteMetadata) yearRoute(year string) string {
	return path.Join(m.postsRoute(), "year", year)
}

func (m SiteMetadata) title() string {
	if title := strings.TrimSpace(m.Title); title != "" {
		return title
	}
	if base := strings.TrimSpace(m.BaseURL); base != "" {
		return base
	}
	return "Blog"
}

func (m SiteMetadata) description() string {
	if desc := strings.TrimSpace(m.Description); desc != "" {
		return desc
	}
	return "Latest posts"
}

func encodeJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

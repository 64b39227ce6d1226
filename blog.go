package blog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-blog/internal/commands"
	blogcmd "github.com/goliatone/go-blog/internal/commands/blog"
	"github.com/goliatone/go-blog/internal/generator"
	bloghttp "github.com/goliatone/go-blog/internal/http"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type (
	Post         = interfaces.Post
	RenderedPost = interfaces.RenderedPost
	TocEntry     = interfaces.TocEntry
	PostIndex    = interfaces.PostIndex
	PostRenderer = interfaces.PostRenderer

	BuildOptions = generator.BuildOptions
	BuildResult  = generator.BuildResult

	Filter     = posts.Filter
	Page       = posts.Page
	Archive    = posts.Archive
	TagCount   = posts.TagCount
	MonthGroup = posts.MonthGroup
	Calendar   = posts.Calendar

	RefreshCatalogCommand = blogcmd.RefreshCatalogCommand
	BuildSiteCommand      = blogcmd.BuildSiteCommand
)

// Option customises module construction.
type Option func(*options)

type options struct {
	provider interfaces.LoggerProvider
	fsys     fs.FS
	now      func() time.Time
}

// WithLoggerProvider replaces the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithFS reads posts from fsys instead of Config.ContentDir.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// Module wires the content index, renderer, generator and read API for one
// content tree.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	index    *posts.Index
	cache    *posts.Cache
	renderer *markdown.Renderer
	calendar posts.Calendar
	gen      generator.Service
	commands *blogcmd.HandlerSet
}

// New validates cfg and constructs a Module.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	provider := o.provider
	if provider == nil {
		built, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	location, err := loadLocation(cfg.Index.Location)
	if err != nil {
		return nil, err
	}
	calendar := posts.Calendar{Location: location}

	indexCfg := posts.IndexConfig{
		Extensions:   cfg.Extensions,
		ParseFailure: posts.ParseFailurePolicy(strings.ToLower(strings.TrimSpace(cfg.Index.ParseFailurePolicy))),
		Collision:    posts.CollisionPolicy(strings.ToLower(strings.TrimSpace(cfg.Index.CollisionPolicy))),
		Logger:       logging.PostsLogger(provider),
	}
	if path := strings.TrimSpace(cfg.Index.SchemaPath); path != "" {
		schema, err := validation.LoadFrontMatterSchema(path)
		if err != nil {
			return nil, fmt.Errorf("blog: load front matter schema: %w", err)
		}
		indexCfg.Validator = schema
	}

	fsys := o.fsys
	if fsys == nil {
		fsys = os.DirFS(cfg.ContentDir)
	}
	index := posts.NewIndex(fsys, indexCfg)

	m := &Module{
		cfg:      cfg,
		provider: provider,
		index:    index,
		calendar: calendar,
		renderer: markdown.NewRenderer(interfaces.ParseOptions{
			Extensions: cfg.Markdown.Extensions,
			Sanitize:   cfg.Markdown.Sanitize,
			HardWraps:  cfg.Markdown.HardWraps,
			SafeMode:   cfg.Markdown.SafeMode,
		}, logging.MarkdownLogger(provider)),
	}
	if cfg.Cache.Enabled {
		m.cache = posts.NewCache(index, posts.CacheOptions{Revalidate: cfg.Cache.Revalidate})
	}

	m.gen = generator.NewService(generator.Config{
		OutputDir: cfg.Generator.OutputDir,
		Site: generator.SiteMetadata{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
			PostsPath:   cfg.Site.PostsPath,
		},
		FeedLimit: cfg.Generator.FeedLimit,
		Workers:   cfg.Generator.Workers,
	}, generator.Dependencies{
		Posts:    m.Posts(),
		Renderer: m.renderer,
		Calendar: calendar,
		Logger:   logging.GeneratorLogger(provider),
	})

	set, err := blogcmd.RegisterBlogCommands(nil, blogcmd.Services{
		Posts:     m.Posts(),
		Generator: m.gen,
	}, provider)
	if err != nil {
		return nil, err
	}
	m.commands = set

	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider returns the provider every component logs through.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Posts returns the catalog, cached when Config.Cache.Enabled is set.
func (m *Module) Posts() PostIndex {
	if m.cache != nil {
		return m.cache
	}
	return m.index
}

// Index returns the uncached content index.
func (m *Module) Index() *posts.Index {
	return m.index
}

// Renderer returns the post body renderer.
func (m *Module) Renderer() PostRenderer {
	return m.renderer
}

// Calendar returns the calendar posts are grouped by.
func (m *Module) Calendar() Calendar {
	return m.calendar
}

// Generator returns the static export service.
func (m *Module) Generator() generator.Service {
	return m.gen
}

// Render loads slug and renders its body.
func (m *Module) Render(ctx context.Context, slug string) (*RenderedPost, error) {
	post, err := m.Posts().Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return m.renderer.Render(ctx, post)
}

// Build runs the static export. Unless opts overrides it or asks for a dry
// run, the configured output directory must be set.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	cfg := m.cfg
	if opts.OutputDir != "" {
		cfg.Generator.OutputDir = opts.OutputDir
	}
	if !opts.DryRun {
		if err := cfg.ValidateForBuild(); err != nil {
			return nil, err
		}
	}
	return m.gen.Build(ctx, opts)
}

// Invalidate drops the cached catalog. It is a no-op without a cache.
func (m *Module) Invalidate() {
	if m.cache != nil {
		m.cache.Invalidate()
	}
}

// Router returns the read API engine.
func (m *Module) Router() (*gin.Engine, error) {
	return bloghttp.NewRouter(bloghttp.Dependencies{
		Posts:    m.Posts(),
		Renderer: m.renderer,
		Calendar: m.calendar,
		Logger:   logging.HTTPLogger(m.provider),
	})
}

// RefreshHandler returns the command handler that rebuilds the catalog.
func (m *Module) RefreshHandler() *blogcmd.RefreshCatalogHandler {
	return m.commands.Refresh
}

// BuildHandler returns the command handler that runs the static export.
// report, when set, receives the result of every build it runs.
func (m *Module) BuildHandler(report func(*BuildResult)) *blogcmd.BuildSiteHandler {
	if report == nil {
		return m.commands.Build
	}
	return blogcmd.NewBuildSiteHandler(m.gen, commands.MessageLogger(m.provider, BuildSiteCommand{}), report)
}

// Subscribe attaches the command handlers to the go-command dispatcher.
func (m *Module) Subscribe() []blogcmd.Subscription {
	return blogcmd.Subscribe(m.commands)
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "noop":
		return nil, nil
	default:
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	}
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("blog: load time zone %q: %w", name, err)
	}
	return location, nil
}

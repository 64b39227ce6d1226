package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrExtensionsRequired = errors.New("blog config: at least one post extension is required")
var ErrExtensionInvalid = errors.New("blog config: post extensions must start with a dot")
var ErrParseFailurePolicyInvalid = errors.New("blog config: parse failure policy is invalid")
var ErrCollisionPolicyInvalid = errors.New("blog config: slug collision policy is invalid")
var ErrRevalidateRequiresCache = errors.New("blog config: cache revalidation requires the cache to be enabled")
var ErrBaseURLInvalid = errors.New("blog config: site base url must be an absolute http(s) url")
var ErrFeedLimitInvalid = errors.New("blog config: feed limit must be zero or positive")
var ErrGeneratorOutputDirRequired = errors.New("blog config: generator output directory is required")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// EnvPrefix namespaces the environment overrides read by ApplyEnv.
const EnvPrefix = "BLOG_"

// Config aggregates every setting of the blog module. Fields use simple
// types so flags, env vars and host applications can fill them directly.
type Config struct {
	ContentDir string
	Extensions []string
	Index      IndexConfig
	Cache      CacheConfig
	Markdown   MarkdownConfig
	Site       SiteConfig
	Generator  GeneratorConfig
	Server     ServerConfig
	Logging    LoggingConfig
}

// IndexConfig captures how the content tree is read.
type IndexConfig struct {
	ParseFailurePolicy string
	CollisionPolicy    string
	// SchemaPath optionally points at a JSON schema for front matter.
	SchemaPath string
	// Location names the time zone used to group posts by day. Empty means
	// the process local zone.
	Location string
}

// CacheConfig captures catalog cache behaviour.
type CacheConfig struct {
	Enabled    bool
	Revalidate bool
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// SiteConfig describes where the blog is published.
type SiteConfig struct {
	Title       string
	Description string
	BaseURL     string
	PostsPath   string
}

// GeneratorConfig captures behaviour for the static export.
type GeneratorConfig struct {
	OutputDir string
	FeedLimit int
	Workers   int
}

// ServerConfig captures the read API listener.
type ServerConfig struct {
	Addr string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults matching the content layout the blog reads.
func DefaultConfig() Config {
	return Config{
		ContentDir: "content/blog",
		Extensions: []string{".md", ".mdx"},
		Index: IndexConfig{
			ParseFailurePolicy: "skip",
			CollisionPolicy:    "error",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm", "linkify", "tasklist"},
		},
		Site: SiteConfig{
			Title:     "Blog",
			BaseURL:   "http://localhost:8080",
			PostsPath: "/blog",
		},
		Generator: GeneratorConfig{
			OutputDir: "dist",
			FeedLimit: 20,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if len(cfg.Extensions) == 0 {
		return ErrExtensionsRequired
	}
	for _, ext := range cfg.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrExtensionInvalid, ext)
		}
	}
	switch normalize(cfg.Index.ParseFailurePolicy) {
	case "", "skip", "abort":
	default:
		return fmt.Errorf("%w: %s", ErrParseFailurePolicyInvalid, cfg.Index.ParseFailurePolicy)
	}
	switch normalize(cfg.Index.CollisionPolicy) {
	case "", "error", "first":
	default:
		return fmt.Errorf("%w: %s", ErrCollisionPolicyInvalid, cfg.Index.CollisionPolicy)
	}
	if cfg.Cache.Revalidate && !cfg.Cache.Enabled {
		return ErrRevalidateRequiresCache
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrBaseURLInvalid, base)
		}
	}
	if cfg.Generator.FeedLimit < 0 {
		return ErrFeedLimitInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ValidateForBuild adds the checks only a static export needs.
func (cfg Config) ValidateForBuild() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	return nil
}

// ApplyEnv overlays BLOG_* variables read through lookup onto cfg. A nil
// lookup reads the process environment. Malformed booleans and integers
// are reported, the rest of the overlay still applies.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var errs []error

	str := func(key string, target *string) {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = strings.TrimSpace(value)
		}
	}
	list := func(key string, target *[]string) {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = splitList(value)
		}
	}
	boolean := func(key string, target *bool) {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			return
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*target = parsed
	}
	integer := func(key string, target *int) {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			return
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*target = parsed
	}

	str("CONTENT_DIR", &cfg.ContentDir)
	list("EXTENSIONS", &cfg.Extensions)
	str("PARSE_FAILURE_POLICY", &cfg.Index.ParseFailurePolicy)
	str("COLLISION_POLICY", &cfg.Index.CollisionPolicy)
	str("SCHEMA_PATH", &cfg.Index.SchemaPath)
	str("TIMEZONE", &cfg.Index.Location)
	boolean("CACHE_ENABLED", &cfg.Cache.Enabled)
	boolean("CACHE_REVALIDATE", &cfg.Cache.Revalidate)
	list("MARKDOWN_EXTENSIONS", &cfg.Markdown.Extensions)
	boolean("MARKDOWN_HARD_WRAPS", &cfg.Markdown.HardWraps)
	boolean("MARKDOWN_SAFE_MODE", &cfg.Markdown.SafeMode)
	str("SITE_TITLE", &cfg.Site.Title)
	str("SITE_DESCRIPTION", &cfg.Site.Description)
	str("BASE_URL", &cfg.Site.BaseURL)
	str("POSTS_PATH", &cfg.Site.PostsPath)
	str("OUTPUT_DIR", &cfg.Generator.OutputDir)
	integer("FEED_LIMIT", &cfg.Generator.FeedLimit)
	integer("WORKERS", &cfg.Generator.Workers)
	str("ADDR", &cfg.Server.Addr)
	str("LOG_PROVIDER", &cfg.Logging.Provider)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	boolean("LOG_ADD_SOURCE", &cfg.Logging.AddSource)
	list("LOG_FOCUS", &cfg.Logging.Focus)

	return errors.Join(errs...)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

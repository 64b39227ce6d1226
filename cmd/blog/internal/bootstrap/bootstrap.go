package bootstrap

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	blog "github.com/goliatone/go-blog"
)

// EnvName selects which .env.<name> files LoadDotEnvs reads.
const EnvName = "BLOG_ENV"

// Options captures the flags shared by every blog CLI. Empty values keep
// whatever the environment or the defaults set.
type Options struct {
	EnvDir     string
	ContentDir string
	Timezone   string
	SchemaPath string
	LogLevel   string
	LogFormat  string
	Quiet      bool
}

// RegisterFlags binds the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Options {
	opts := &Options{}
	fs.StringVar(&opts.EnvDir, "env-dir", ".", "Directory holding .env files")
	fs.StringVar(&opts.ContentDir, "content-dir", "", "Path to the blog content root")
	fs.StringVar(&opts.Timezone, "timezone", "", "IANA time zone used to group posts by day")
	fs.StringVar(&opts.SchemaPath, "schema", "", "JSON schema applied to front matter")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Log format (json, console, pretty)")
	fs.BoolVar(&opts.Quiet, "quiet", false, "Disable logging")
	return opts
}

// LoadDotEnvs reads .env files from dir. Variables already set win, then
// .env.<env>.local, .env.local, .env.<env> and .env in that order. Missing
// files are skipped.
func LoadDotEnvs(dir string) error {
	env := strings.TrimSpace(os.Getenv(EnvName))
	if env == "" {
		env = "dev"
	}
	prefix := strings.TrimRight(dir, "/")
	if prefix == "" {
		prefix = "."
	}
	for _, name := range []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"} {
		path := prefix + "/" + name
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig layers defaults, .env files, BLOG_* variables and opts.
func LoadConfig(opts Options) (blog.Config, error) {
	cfg := blog.DefaultConfig()
	if err := LoadDotEnvs(opts.EnvDir); err != nil {
		return cfg, err
	}
	if err := blog.ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}

	set := func(target *string, value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*target = trimmed
		}
	}
	set(&cfg.ContentDir, opts.ContentDir)
	set(&cfg.Index.Location, opts.Timezone)
	set(&cfg.Index.SchemaPath, opts.SchemaPath)
	set(&cfg.Logging.Level, opts.LogLevel)
	set(&cfg.Logging.Format, opts.LogFormat)
	if opts.Quiet {
		cfg.Logging.Provider = "noop"
	}
	return cfg, nil
}

// BuildModule loads configuration and constructs the blog module.
func BuildModule(opts Options, mutate ...func(*blog.Config)) (*blog.Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, fn := range mutate {
		if fn != nil {
			fn(&cfg)
		}
	}
	module, err := blog.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}
	return module, nil
}

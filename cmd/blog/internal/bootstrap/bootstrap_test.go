package bootstrap

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigLayersEnvFilesAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvName, "test")
	t.Setenv("BLOG_SITE_TITLE", "From Process")

	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write(".env", "BLOG_CONTENT_DIR=from-dotenv\nBLOG_FEED_LIMIT=3\nBLOG_SITE_TITLE=From Dotenv\n")
	write(".env.test", "BLOG_FEED_LIMIT=7\n")

	// godotenv sets what it loads in the process; clear it afterwards.
	t.Cleanup(func() {
		os.Unsetenv("BLOG_CONTENT_DIR")
		os.Unsetenv("BLOG_FEED_LIMIT")
	})

	cfg, err := LoadConfig(Options{EnvDir: dir, Timezone: "UTC", Quiet: true})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ContentDir != "from-dotenv" {
		t.Fatalf("expected content dir from .env, got %q", cfg.ContentDir)
	}
	if cfg.Generator.FeedLimit != 7 {
		t.Fatalf("expected .env.test to win over .env, got %d", cfg.Generator.FeedLimit)
	}
	if cfg.Site.Title != "From Process" {
		t.Fatalf("expected process env to win, got %q", cfg.Site.Title)
	}
	if cfg.Index.Location != "UTC" || cfg.Logging.Provider != "noop" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("BLOG_CONTENT_DIR", "from-env")

	cfg, err := LoadConfig(Options{EnvDir: t.TempDir(), ContentDir: "from-flag"})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ContentDir != "from-flag" {
		t.Fatalf("expected flag to win, got %q", cfg.ContentDir)
	}
}

func TestRegisterFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := RegisterFlags(fs)
	if err := fs.Parse([]string{"-content-dir", "posts", "-quiet"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.ContentDir != "posts" || !opts.Quiet || opts.EnvDir != "." {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestBuildModule(t *testing.T) {
	content := t.TempDir()
	module, err := BuildModule(Options{EnvDir: t.TempDir(), ContentDir: content, Timezone: "UTC", Quiet: true})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	if module.Config().ContentDir != content {
		t.Fatalf("unexpected content dir %q", module.Config().ContentDir)
	}
}

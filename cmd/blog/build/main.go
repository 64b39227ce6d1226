package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runBuild(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("blog build: %v", err)
	}
}

func runBuild(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blog-build", flag.ContinueOnError)
	opts := bootstrap.RegisterFlags(fs)
	outputDir := fs.String("output", "", "Directory the export is written to")
	baseURL := fs.String("base-url", "", "Absolute URL the site is published under")
	dryRun := fs.Bool("dry-run", false, "Report artifacts without writing them")
	workers := fs.Int("workers", 0, "Posts rendered concurrently (0 uses GOMAXPROCS)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts, func(cfg *blog.Config) {
		if *workers > 0 {
			cfg.Generator.Workers = *workers
		}
	})
	if err != nil {
		return err
	}

	var result *blog.BuildResult
	cmd := blog.BuildSiteCommand{
		OutputDir: *outputDir,
		BaseURL:   *baseURL,
		DryRun:    *dryRun,
	}
	execErr := module.BuildHandler(func(r *blog.BuildResult) { result = r }).Execute(ctx, cmd)
	if result != nil {
		printResult(out, result)
	}
	return execErr
}

func printResult(out io.Writer, result *blog.BuildResult) {
	mode := "wrote"
	if result.DryRun {
		mode = "would write"
	}
	fmt.Fprintf(out, "%s %d artifacts to %s in %s\n", mode, len(result.Artifacts), result.OutputDir, result.Duration)
	fmt.Fprintf(out, "posts: %d built, %d failed\n", result.PostsBuilt, result.PostsFailed)
	fmt.Fprintf(out, "years: %d  tags: %d  feed items: %d  sitemap urls: %d\n",
		result.Years, result.Tags, result.FeedItems, result.SitemapURLs)
	for _, err := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}

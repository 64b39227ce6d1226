package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

var errSlugRequired = errors.New("a slug argument is required")

func main() {
	if err := runShow(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("blog show: %v", err)
	}
}

func runShow(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blog-show", flag.ContinueOnError)
	opts := bootstrap.RegisterFlags(fs)
	renderHTML := fs.Bool("render-html", true, "Render the body into HTML")
	asJSON := fs.Bool("json", false, "Print the post as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	slug := strings.TrimSpace(fs.Arg(0))
	if slug == "" {
		return errSlugRequired
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if !*renderHTML {
		post, err := module.Posts().Get(ctx, slug)
		if err != nil {
			return err
		}
		if *asJSON {
			return encode(out, post)
		}
		fmt.Fprintf(out, "Title: %s\nDate: %s\nSource: %s\n\n%s", post.Title, post.Date, post.SourcePath, post.Content)
		return nil
	}

	rendered, err := module.Render(ctx, slug)
	if err != nil {
		return err
	}
	if *asJSON {
		return encode(out, rendered)
	}

	fmt.Fprintf(out, "Title: %s\nDate: %s\nTags: %s\nReading time: %d min\n",
		rendered.Post.Title, rendered.Post.Date, strings.Join(rendered.Post.Tags, ", "), rendered.ReadingMinutes)
	if len(rendered.TOC) > 0 {
		fmt.Fprintln(out, "Contents:")
		for _, entry := range rendered.TOC {
			fmt.Fprintf(out, "%s- %s (#%s)\n", strings.Repeat("  ", entry.Level-2), entry.Text, entry.ID)
		}
	}
	fmt.Fprintf(out, "\n%s", rendered.HTML)
	return nil
}

func encode(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

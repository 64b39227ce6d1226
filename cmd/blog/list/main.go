package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
	"github.com/goliatone/go-blog/internal/posts"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runList(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("blog list: %v", err)
	}
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blog-list", flag.ContinueOnError)
	opts := bootstrap.RegisterFlags(fs)
	tag := fs.String("tag", "", "Only list posts carrying this tag")
	date := fs.String("date", "", "Only list posts published on this day (YYYY-MM-DD)")
	asJSON := fs.Bool("json", false, "Print the catalog as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return err
	}

	catalog, err := module.Posts().List(context.Background())
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	catalog = blog.Filter{Tag: *tag, Date: *date}.Apply(catalog, module.Calendar())

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSLUG\tTITLE\tTAGS")
	for _, post := range catalog {
		day := post.Date
		if d, ok := module.Calendar().Day(post.Date); ok {
			day = d.Key()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", day, post.Slug, post.Title, strings.Join(post.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d posts, %d tags\n", len(catalog), len(posts.TagCounts(catalog)))
	return nil
}

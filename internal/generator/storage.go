package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryCatalog writeCategory = "catalog"
	categoryPost    writeCategory = "post"
	categoryYear    writeCategory = "year"
	categoryArchive writeCategory = "archive"
	categoryTags    writeCategory = "tags"
	categorySitemap writeCategory = "sitemap"
	categoryFeed    writeCategory = "feed"
	categoryRobots  writeCategory = "robots"
)

// writeFileRequest describes a file write operation routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
}

// artifactWriter abstracts where generator outputs land.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
}

func newArtifactWriter(root string, dryRun bool) artifactWriter {
	if dryRun {
		return noopWriter{}
	}
	return &dirWriter{root: root}
}

// dirWriter writes artifacts below root. Files are written to a temporary
// sibling and renamed so readers never observe a partial artifact.
type dirWriter struct {
	root string
}

func (w *dirWriter) resolve(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("generator: write requires path")
	}
	cleaned := path.Clean("/" + filepath.ToSlash(rel))
	return filepath.Join(w.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

func (w *dirWriter) EnsureDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(dir) == "" || dir == "." {
		return os.MkdirAll(w.root, 0o755)
	}
	target, err := w.resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(target, 0o755)
}

func (w *dirWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	target, err := w.resolve(req.Path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".artifact-*")
	if err != nil {
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if _, err := io.Copy(tmp, req.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

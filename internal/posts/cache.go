package posts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Revalidate recomputes the content fingerprint on every List and
	// rebuilds when it changed. Without it only Invalidate forces a rebuild.
	Revalidate bool
}

// Cache owns one catalog built from an Index. It is meant to live as long
// as a single build or server process and be dropped with it. Get always
// reads through to the index.
type Cache struct {
	index      *Index
	revalidate bool

	mu          sync.Mutex
	built       bool
	posts       []interfaces.Post
	fingerprint string
}

var _ interfaces.PostIndex = (*Cache)(nil)

// NewCache wraps index.
func NewCache(index *Index, opts CacheOptions) *Cache {
	return &Cache{
		index:      index,
		revalidate: opts.Revalidate,
	}
}

// List returns a copy of the cached catalog, building it when needed.
func (c *Cache) List(ctx context.Context) ([]interfaces.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fingerprint string
	if c.revalidate {
		fp, err := c.index.Fingerprint(ctx)
		if err != nil {
			return nil, err
		}
		fingerprint = fp
	}

	if !c.built || (c.revalidate && fingerprint != c.fingerprint) {
		posts, err := c.index.List(ctx)
		if err != nil {
			return nil, err
		}
		c.posts = posts
		c.fingerprint = fingerprint
		c.built = true
		c.index.logger.Debug("posts.cache.rebuilt", "count", len(posts))
	}

	return clonePosts(c.posts), nil
}

// Get reads slug through to the index.
func (c *Cache) Get(ctx context.Context, slug string) (*interfaces.Post, error) {
	return c.index.Get(ctx, slug)
}

// Invalidate drops the cached catalog; the next List rebuilds it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.posts = nil
	c.fingerprint = ""
}

// Fingerprint digests the path, size and modification time of every
// candidate file. A missing root has the digest of an empty tree.
func (ix *Index) Fingerprint(ctx context.Context) (string, error) {
	hash := sha256.New()
	files, err := ix.discover(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		files = nil
	}
	for _, file := range files {
		info, err := fs.Stat(ix.fsys, file)
		if err != nil {
			fmt.Fprintf(hash, "%s|missing\n", file)
			continue
		}
		fmt.Fprintf(hash, "%s|%d|%d\n", file, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func clonePosts(posts []interfaces.Post) []interfaces.Post {
	out := make([]interfaces.Post, len(posts))
	for i, post := range posts {
		post.Tags = append([]string(nil), post.Tags...)
		if post.Extra != nil {
			extra := make(map[string]any, len(post.Extra))
			for k, v := range post.Extra {
				extra[k] = v
			}
			post.Extra = extra
		}
		out[i] = post
	}
	return out
}

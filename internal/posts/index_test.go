package posts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func fixtureIndex(t *testing.T, cfg IndexConfig) *Index {
	t.Helper()
	return NewDirIndex(filepath.Join("testdata", "content"), cfg)
}

func postSlugs(posts []interfaces.Post) []string {
	out := make([]string, len(posts))
	for i, post := range posts {
		out[i] = post.Slug
	}
	return out
}

func TestIndexListSortsNewestFirst(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})

	posts, err := ix.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{
		"2024-06-01-summer",
		"2024-05-01-spring",
		"2024-03-15-my-post",
		"2024-03-15-series-part-1",
		"2023-12-31-year-end",
		"notes-draft-ideas",
	}
	if diff := cmp.Diff(want, postSlugs(posts)); diff != "" {
		t.Fatalf("catalog order mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(posts); i++ {
		if posts[i-1].Date < posts[i].Date {
			t.Fatalf("posts not sorted descending at %d: %q before %q", i, posts[i-1].Date, posts[i].Date)
		}
	}
}

func TestIndexListOmitsBodies(t *testing.T) {
	posts, err := fixtureIndex(t, IndexConfig{}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, post := range posts {
		if post.Content != "" {
			t.Fatalf("expected empty body for %s in listing", post.Slug)
		}
		if post.ID != post.Slug {
			t.Fatalf("expected id to equal slug, got %q vs %q", post.ID, post.Slug)
		}
	}
}

func TestIndexListSkipsHiddenAndForeignFiles(t *testing.T) {
	posts, err := fixtureIndex(t, IndexConfig{}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, post := range posts {
		if post.Title == "Hidden" || post.Slug == "README.txt" {
			t.Fatalf("unexpected post %q in catalog", post.Slug)
		}
	}
}

func TestIndexListSlugsAreReversible(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})
	ctx := context.Background()

	posts, err := ix.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, listed := range posts {
		got, err := ix.Get(ctx, listed.Slug)
		if err != nil {
			t.Fatalf("Get(%q): %v", listed.Slug, err)
		}
		if got.Slug != listed.Slug || got.Title != listed.Title || got.Date != listed.Date {
			t.Fatalf("Get(%q) returned a different post: %#v", listed.Slug, got)
		}
		if got.Content == "" {
			t.Fatalf("Get(%q) returned an empty body", listed.Slug)
		}
	}
}

func TestIndexListMissingRootIsEmpty(t *testing.T) {
	ix := NewDirIndex(filepath.Join(t.TempDir(), "missing"), IndexConfig{})

	posts, err := ix.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty non-nil catalog, got %#v", posts)
	}
}

func TestIndexGetUnknownSlug(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})

	for _, slug := range []string{"does-not-exist", "2024-01-01-nothing", ""} {
		_, err := ix.Get(context.Background(), slug)
		if err == nil {
			t.Fatalf("expected error for %q", slug)
		}
		if !IsNotFound(err) {
			t.Fatalf("expected not found for %q, got %v", slug, err)
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %T", err)
		}
	}
}

func TestIndexGetReturnsBodyAndMetadata(t *testing.T) {
	post, err := fixtureIndex(t, IndexConfig{}).Get(context.Background(), "2024-03-15-my-post")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Title != "My Post" || post.Date != "2024-03-15" {
		t.Fatalf("unexpected metadata: %#v", post)
	}
	if post.SourcePath != "2024/03/15/my-post.mdx" {
		t.Fatalf("unexpected source path %q", post.SourcePath)
	}
	if post.Extra["author"] != "Jadilson" {
		t.Fatalf("expected extra fields to pass through, got %#v", post.Extra)
	}
}

func TestIndexResolveFastPathMatchesWalk(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})
	ctx := context.Background()

	for _, slug := range []string{"2024-03-15-my-post", "2024-06-01-summer", "2023-12-31-year-end"} {
		fast, ok := ix.resolveDatePath(slug)
		if !ok {
			t.Fatalf("expected fast path hit for %q", slug)
		}
		walked, ok, err := ix.resolveByWalk(ctx, slug)
		if err != nil || !ok {
			t.Fatalf("expected walk hit for %q: ok=%v err=%v", slug, ok, err)
		}
		if fast != walked {
			t.Fatalf("fast path %q and walk %q disagree for %q", fast, walked, slug)
		}
	}
}

func TestIndexResolveFallsBackToWalk(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})

	if _, ok := ix.resolveDatePath("2024-03-15-series-part-1"); ok {
		t.Fatalf("nested slug should miss the fast path")
	}
	file, err := ix.Resolve(context.Background(), "2024-03-15-series-part-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if file != "2024/03/15/series/part-1.md" {
		t.Fatalf("unexpected path %q", file)
	}

	file, err = ix.Resolve(context.Background(), "notes-draft-ideas")
	if err != nil {
		t.Fatalf("Resolve undated: %v", err)
	}
	if file != "notes/draft-ideas.md" {
		t.Fatalf("unexpected path %q", file)
	}
}

func TestIndexSlugCollisionPolicies(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/01/02/post.md": {Data: []byte("---\ntitle: Nested\ndate: 2024-01-02\n---\nA\n")},
		"2024-01-02-post.md": {Data: []byte("---\ntitle: Flat\ndate: 2024-01-02\n---\nB\n")},
	}

	_, err := NewIndex(fsys, IndexConfig{}).List(context.Background())
	if !errors.Is(err, ErrSlugCollision) {
		t.Fatalf("expected slug collision by default, got %v", err)
	}
	var collision *SlugCollisionError
	if !errors.As(err, &collision) || collision.Slug != "2024-01-02-post" || len(collision.Paths) != 2 {
		t.Fatalf("unexpected collision detail: %#v", collision)
	}

	posts, err := NewIndex(fsys, IndexConfig{Collision: CollisionFirst}).List(context.Background())
	if err != nil {
		t.Fatalf("List with first policy: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected one post, got %d", len(posts))
	}
	// The "2024" directory sorts before "2024-01-02-post.md".
	if posts[0].Title != "Nested" {
		t.Fatalf("expected first file in walk order to win, got %q", posts[0].Title)
	}
}

func TestIndexFirstPolicyGetMatchesList(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/03/15/my/post.md": {Data: []byte("---\ntitle: Nested\ndate: 2024-03-15\n---\nnested body\n")},
		"2024/03/15/my-post.md": {Data: []byte("---\ntitle: Flat\ndate: 2024-03-15\n---\nflat body\n")},
	}
	ix := NewIndex(fsys, IndexConfig{Collision: CollisionFirst})

	listed, err := ix.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].SourcePath != "2024/03/15/my/post.md" {
		t.Fatalf("expected the nested file to be kept, got %+v", listed)
	}

	post, err := ix.Get(context.Background(), listed[0].Slug)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Title != listed[0].Title || post.SourcePath != listed[0].SourcePath {
		t.Fatalf("Get returned %q (%s), List kept %q (%s)", post.Title, post.SourcePath, listed[0].Title, listed[0].SourcePath)
	}

	file, err := ix.Resolve(context.Background(), listed[0].Slug)
	if err != nil || file != listed[0].SourcePath {
		t.Fatalf("Resolve = %q, %v", file, err)
	}
}

func TestIndexBrokenFileDoesNotClaimSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/03/15/my/post.md": {Data: []byte("---\ntitle: [unterminated\n---\n")},
		"2024/03/15/my-post.md": {Data: []byte("---\ntitle: Flat\ndate: 2024-03-15\n---\nflat body\n")},
	}

	for _, policy := range []CollisionPolicy{CollisionError, CollisionFirst} {
		ix := NewIndex(fsys, IndexConfig{Collision: policy})
		listed, err := ix.List(context.Background())
		if err != nil {
			t.Fatalf("%s: List: %v", policy, err)
		}
		if len(listed) != 1 || listed[0].Title != "Flat" {
			t.Fatalf("%s: expected the valid file to be listed, got %+v", policy, listed)
		}
		post, err := ix.Get(context.Background(), listed[0].Slug)
		if err != nil {
			t.Fatalf("%s: Get: %v", policy, err)
		}
		if post.Title != "Flat" {
			t.Fatalf("%s: expected Flat, got %q", policy, post.Title)
		}
	}
}

func TestIndexGetTrimsSlug(t *testing.T) {
	ix := fixtureIndex(t, IndexConfig{})

	post, err := ix.Get(context.Background(), " 2024-06-01-summer ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Slug != "2024-06-01-summer" || post.ID != "2024-06-01-summer" {
		t.Fatalf("expected canonical slug, got slug=%q id=%q", post.Slug, post.ID)
	}
}

func TestIndexParseFailurePolicies(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/01/01/good.md":   {Data: []byte("---\ntitle: Good\ndate: 2024-01-01\n---\nok\n")},
		"2024/01/02/broken.md": {Data: []byte("---\ntitle: [unterminated\n---\nbad\n")},
	}

	posts, err := NewIndex(fsys, IndexConfig{}).List(context.Background())
	if err != nil {
		t.Fatalf("List with skip policy: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-01-01-good"}, postSlugs(posts)); diff != "" {
		t.Fatalf("skip policy mismatch (-want +got):\n%s", diff)
	}

	_, err = NewIndex(fsys, IndexConfig{ParseFailure: ParseFailureAbort}).List(context.Background())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError with abort policy, got %v", err)
	}
	if parseErr.Path != "2024/01/02/broken.md" {
		t.Fatalf("unexpected path %q", parseErr.Path)
	}

	_, err = NewIndex(fsys, IndexConfig{}).Get(context.Background(), "2024-01-02-broken")
	if !errors.Is(err, ErrFrontMatterInvalid) {
		t.Fatalf("expected Get to surface parse error, got %v", err)
	}
}

type rejectingValidator struct{ field string }

func (v rejectingValidator) Validate(fields map[string]any) error {
	if _, ok := fields[v.field]; ok {
		return errors.New("field not allowed: " + v.field)
	}
	return nil
}

func TestIndexValidatorRejectsFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/01/01/a.md": {Data: []byte("---\ntitle: A\ndate: 2024-01-01\n---\n")},
		"2024/01/02/b.md": {Data: []byte("---\ntitle: B\ndate: 2024-01-02\nforbidden: true\n---\n")},
	}
	ix := NewIndex(fsys, IndexConfig{Validator: rejectingValidator{field: "forbidden"}})

	posts, err := ix.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-01-01-a"}, postSlugs(posts)); diff != "" {
		t.Fatalf("validator filter mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexCustomExtensions(t *testing.T) {
	fsys := fstest.MapFS{
		"a.markdown": {Data: []byte("---\ntitle: A\ndate: 2024-01-01\n---\n")},
		"b.md":       {Data: []byte("---\ntitle: B\ndate: 2024-01-02\n---\n")},
	}
	posts, err := NewIndex(fsys, IndexConfig{Extensions: []string{".markdown"}}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, postSlugs(posts)); diff != "" {
		t.Fatalf("extension filter mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexListHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixtureIndex(t, IndexConfig{}).List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package blogcmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type stubCatalog struct {
	posts       []interfaces.Post
	listErr     error
	failFirst   bool
	lists       int
	invalidated int
}

func (s *stubCatalog) List(context.Context) ([]interfaces.Post, error) {
	s.lists++
	if s.listErr != nil && (!s.failFirst || s.lists == 1) {
		return nil, s.listErr
	}
	return s.posts, nil
}

func (s *stubCatalog) Get(context.Context, string) (*interfaces.Post, error) {
	return nil, errors.New("not used")
}

func (s *stubCatalog) Invalidate() { s.invalidated++ }

type stubGenerator struct {
	calls  []generator.BuildOptions
	result *generator.BuildResult
	err    error
}

func (s *stubGenerator) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	s.calls = append(s.calls, opts)
	return s.result, s.err
}

func TestRefreshCatalogInvalidatesAndLists(t *testing.T) {
	catalog := &stubCatalog{posts: []interfaces.Post{{Slug: "a"}, {Slug: "b"}}}
	h := NewRefreshCatalogHandler(catalog, nil)

	if err := h.Execute(context.Background(), RefreshCatalogCommand{Reason: "manual"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if catalog.invalidated != 1 || catalog.lists != 1 {
		t.Fatalf("expected one invalidate and one list, got %d/%d", catalog.invalidated, catalog.lists)
	}
}

func TestRefreshCatalogWrapsListError(t *testing.T) {
	catalog := &stubCatalog{listErr: errors.New("disk gone")}
	h := NewRefreshCatalogHandler(catalog, nil)

	err := h.Execute(context.Background(), RefreshCatalogCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	var tagged *goerrors.Error
	if !errors.As(err, &tagged) || tagged.TextCode != commands.CodeCatalogRefreshFailed {
		t.Fatalf("expected %s, got %v", commands.CodeCatalogRefreshFailed, err)
	}
}

func TestBuildSiteForwardsOptionsAndReports(t *testing.T) {
	gen := &stubGenerator{result: &generator.BuildResult{OutputDir: "public", PostsBuilt: 3}}
	var reported *generator.BuildResult
	h := NewBuildSiteHandler(gen, nil, func(r *generator.BuildResult) { reported = r })

	cmd := BuildSiteCommand{OutputDir: "public", BaseURL: "https://example.com", DryRun: true}
	if err := h.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected one build, got %d", len(gen.calls))
	}
	want := generator.BuildOptions{OutputDir: "public", BaseURL: "https://example.com", DryRun: true}
	if gen.calls[0] != want {
		t.Fatalf("unexpected options %+v", gen.calls[0])
	}
	if reported == nil || reported.PostsBuilt != 3 {
		t.Fatalf("expected result to be reported, got %+v", reported)
	}
}

func TestBuildSiteReportsPartialResultOnError(t *testing.T) {
	gen := &stubGenerator{
		result: &generator.BuildResult{PostsBuilt: 1, PostsFailed: 1},
		err:    errors.New("render failed"),
	}
	var reported *generator.BuildResult
	h := NewBuildSiteHandler(gen, nil, func(r *generator.BuildResult) { reported = r })

	err := h.Execute(context.Background(), BuildSiteCommand{})
	if err == nil {
		t.Fatal("expected build error")
	}
	if reported == nil || reported.PostsFailed != 1 {
		t.Fatalf("expected partial result, got %+v", reported)
	}
}

func TestBuildSiteRejectsInvalidMessage(t *testing.T) {
	gen := &stubGenerator{}
	h := NewBuildSiteHandler(gen, nil, nil)

	err := h.Execute(context.Background(), BuildSiteCommand{BaseURL: "not a url"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatal("generator must not run for invalid messages")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterBlogCommands(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterBlogCommands(reg, Services{Posts: &stubCatalog{}, Generator: &stubGenerator{}}, nil)
	if err != nil {
		t.Fatalf("RegisterBlogCommands: %v", err)
	}
	if set.Refresh == nil || set.Build == nil {
		t.Fatalf("expected both handlers, got %+v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(reg.handlers))
	}
}

func TestRegisterBlogCommandsWithoutGenerator(t *testing.T) {
	set, err := RegisterBlogCommands(nil, Services{Posts: &stubCatalog{}}, nil)
	if err != nil {
		t.Fatalf("RegisterBlogCommands: %v", err)
	}
	if set.Build != nil {
		t.Fatal("build handler requires a generator")
	}

	if _, err := RegisterBlogCommands(nil, Services{}, nil); err == nil {
		t.Fatal("expected error without a post index")
	}
}

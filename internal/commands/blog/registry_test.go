package blogcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
)

func subscribeForTest(t *testing.T, services Services) *HandlerSet {
	t.Helper()
	set, err := RegisterBlogCommands(nil, services, nil)
	if err != nil {
		t.Fatalf("RegisterBlogCommands: %v", err)
	}
	subs := Subscribe(set)
	t.Cleanup(func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	})
	return set
}

func TestSubscribeRoutesDispatchedMessages(t *testing.T) {
	catalog := &stubCatalog{}
	set := subscribeForTest(t, Services{Posts: catalog})
	if set.Build != nil {
		t.Fatal("expected no build handler without a generator")
	}

	if err := dispatcher.Dispatch(context.Background(), RefreshCatalogCommand{Reason: "test"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if catalog.invalidated != 1 {
		t.Fatalf("expected dispatched refresh to invalidate, got %d", catalog.invalidated)
	}
}

func TestDispatchedRefreshRetriesTransientFailure(t *testing.T) {
	catalog := &stubCatalog{
		posts:     []interfaces.Post{{Slug: "2024-01-02-hello"}},
		listErr:   errors.New("content dir busy"),
		failFirst: true,
	}
	subscribeForTest(t, Services{Posts: catalog})

	if err := dispatcher.Dispatch(context.Background(), RefreshCatalogCommand{Reason: "watch"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if catalog.lists != 2 {
		t.Fatalf("expected initial list plus one retry, got %d", catalog.lists)
	}
	if catalog.invalidated != 2 {
		t.Fatalf("expected each attempt to invalidate, got %d", catalog.invalidated)
	}
}

func TestDispatchedRefreshGivesUpAfterRetry(t *testing.T) {
	catalog := &stubCatalog{listErr: errors.New("content dir missing")}
	subscribeForTest(t, Services{Posts: catalog})

	if err := dispatcher.Dispatch(context.Background(), RefreshCatalogCommand{}); err == nil {
		t.Fatal("expected dispatch to fail once retries are exhausted")
	}
	if catalog.lists != 2 {
		t.Fatalf("expected initial list plus one retry, got %d", catalog.lists)
	}
}

func TestDispatchedBuildForwardsOptions(t *testing.T) {
	gen := &stubGenerator{result: &generator.BuildResult{OutputDir: "public", PostsBuilt: 3}}
	var reported []*generator.BuildResult
	subscribeForTest(t, Services{
		Posts:     &stubCatalog{},
		Generator: gen,
		Report:    func(r *generator.BuildResult) { reported = append(reported, r) },
	})

	msg := BuildSiteCommand{OutputDir: "public", BaseURL: "https://blog.example.com", DryRun: true}
	if err := dispatcher.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected a single build, got %d", len(gen.calls))
	}
	want := generator.BuildOptions{OutputDir: "public", BaseURL: "https://blog.example.com", DryRun: true}
	if gen.calls[0] != want {
		t.Fatalf("unexpected build options: %+v", gen.calls[0])
	}
	if len(reported) != 1 || reported[0].PostsBuilt != 3 {
		t.Fatalf("expected the build result to be reported, got %+v", reported)
	}
}

func TestDispatchedBuildRejectsRelativeBaseURL(t *testing.T) {
	gen := &stubGenerator{result: &generator.BuildResult{}}
	subscribeForTest(t, Services{Posts: &stubCatalog{}, Generator: gen})

	if err := dispatcher.Dispatch(context.Background(), BuildSiteCommand{BaseURL: "/blog"}); err == nil {
		t.Fatal("expected validation to reject a relative base url")
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected no build for an invalid message, got %d", len(gen.calls))
	}
}

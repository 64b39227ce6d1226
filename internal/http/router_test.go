package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"2024/03/15/my-post.mdx":   {Data: []byte("---\ntitle: My Post\ndate: 2024-03-15\ntags: [go, devops]\n---\n\n## Setup\n\nBody.\n")},
		"2024/03/15/series/one.md": {Data: []byte("---\ntitle: One\ndate: 2024-03-15\ntags: [devops]\n---\n\nOne.\n")},
		"2024/06/01/summer.md":     {Data: []byte("---\ntitle: Summer\ndate: 2024-06-01\ntags: [go]\n---\n\nSummer.\n")},
		"2023/12/31/year-end.md":   {Data: []byte("---\ntitle: Year End\ndate: 2023-12-31\n---\n\nClosing.\n")},
		"2023/01/01/broken.md":     {Data: []byte("---\ntitle: [unterminated\n---\n")},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router, err := NewRouter(Dependencies{
		Posts:    posts.NewIndex(testFS(), posts.IndexConfig{}),
		Renderer: markdown.NewRenderer(interfaces.ParseOptions{}, nil),
		Calendar: posts.Calendar{Location: time.UTC},
	})
	require.NoError(t, err)
	return router
}

func perform(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := perform(newTestRouter(t), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListPostsPaginates(t *testing.T) {
	router := newTestRouter(t)

	w := perform(router, "/posts?limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var page posts.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 4, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, page.NextOffset)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "2024-06-01-summer", page.Posts[0].Slug)
	assert.Empty(t, page.Posts[0].Content)

	w = perform(router, "/posts?offset=2&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.False(t, page.HasMore)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "2023-12-31-year-end", page.Posts[1].Slug)
}

func TestListPostsFilters(t *testing.T) {
	router := newTestRouter(t)

	w := perform(router, "/posts?tag=devops&date=2024-03-15")
	require.Equal(t, http.StatusOK, w.Code)

	var page posts.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "2024-03-15-my-post", page.Posts[0].Slug)
	assert.Equal(t, "2024-03-15-series-one", page.Posts[1].Slug)
}

func TestListPostsRejectsBadQuery(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/posts?offset=-1", "/posts?limit=abc", "/posts?date=15-03-2024"} {
		w := perform(router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetPostRendersBody(t *testing.T) {
	w := perform(newTestRouter(t), "/posts/2024-03-15-my-post")
	require.Equal(t, http.StatusOK, w.Code)

	var rendered interfaces.RenderedPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rendered))
	assert.Equal(t, "My Post", rendered.Post.Title)
	assert.Contains(t, rendered.HTML, `<h2 id="setup">Setup</h2>`)
	require.Len(t, rendered.TOC, 1)
	assert.Equal(t, "setup", rendered.TOC[0].ID)
}

func TestGetPostFallsBackForNestedSlug(t *testing.T) {
	w := perform(newTestRouter(t), "/posts/2024-03-15-series-one")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPostErrors(t *testing.T) {
	router := newTestRouter(t)

	w := perform(router, "/posts/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"not_found"`)

	w = perform(router, "/posts/2023-01-01-broken")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"validation_failed"`)
}

func TestTagsArchiveAndYears(t *testing.T) {
	router := newTestRouter(t)

	w := perform(router, "/tags")
	require.Equal(t, http.StatusOK, w.Code)
	var tags struct {
		Tags []posts.TagCount `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Equal(t, []posts.TagCount{{Tag: "go", Count: 2}, {Tag: "devops", Count: 2}}, tags.Tags)

	w = perform(router, "/archive")
	require.Equal(t, http.StatusOK, w.Code)
	var archive posts.Archive
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &archive))
	require.Len(t, archive.Years, 2)
	assert.Equal(t, "2024", archive.Years[0].Year)
	assert.Equal(t, 3, archive.Years[0].Count)

	w = perform(router, "/years")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"years":["2024","2023"]}`, w.Body.String())

	w = perform(router, "/years/2024")
	require.Equal(t, http.StatusOK, w.Code)
	var year struct {
		Year   string             `json:"year"`
		Count  int                `json:"count"`
		Months []posts.MonthGroup `json:"months"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &year))
	assert.Equal(t, 3, year.Count)
	require.Len(t, year.Months, 2)
	assert.Equal(t, "06", year.Months[0].Month)

	assert.Equal(t, http.StatusNotFound, perform(router, "/years/1999").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, "/years/99").Code)
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(Dependencies{})
	assert.Error(t, err)
}

func TestMapErrorDefaults(t *testing.T) {
	status, payload := mapError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Error)
}

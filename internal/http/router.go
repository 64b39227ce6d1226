package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

var (
	errIndexRequired    = errors.New("http: post index is required")
	errRendererRequired = errors.New("http: post renderer is required")
)

// Dependencies lists the services the API reads from.
type Dependencies struct {
	Posts    interfaces.PostIndex
	Renderer interfaces.PostRenderer
	Calendar posts.Calendar
	Logger   interfaces.Logger
}

// Handler serves the read API.
type Handler struct {
	posts    interfaces.PostIndex
	renderer interfaces.PostRenderer
	calendar posts.Calendar
	logger   interfaces.Logger
}

// NewHandler validates deps and builds a Handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Posts == nil {
		return nil, errIndexRequired
	}
	if deps.Renderer == nil {
		return nil, errRendererRequired
	}
	return &Handler{
		posts:    deps.Posts,
		renderer: deps.Renderer,
		calendar: deps.Calendar,
		logger:   logging.Or(deps.Logger),
	}, nil
}

// NewRouter returns a gin engine with recovery, request logging, the
// default CORS policy and every route registered.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	handler, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(handler.logger), cors.Default())
	handler.Register(router)
	return router, nil
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)
	r.GET("/posts", h.listPosts)
	r.GET("/posts/:slug", h.getPost)
	r.GET("/tags", h.tags)
	r.GET("/archive", h.archive)
	r.GET("/years", h.years)
	r.GET("/years/:year", h.year)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listPosts(c *gin.Context) {
	filter := posts.Filter{
		Tag:  c.Query("tag"),
		Date: c.Query("date"),
	}
	if filter.Date != "" && !isDayKey(filter.Date) {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, err := parseIntQuery(c, "limit", posts.DefaultPageSize)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if limit == 0 {
		limit = posts.DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	catalog, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.logger.Error("http.posts.list_failed", "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts.Paginate(filter.Apply(catalog, h.calendar), offset, limit))
}

func (h *Handler) getPost(c *gin.Context) {
	slug := c.Param("slug")
	post, err := h.posts.Get(c.Request.Context(), slug)
	if err != nil {
		if !posts.IsNotFound(err) {
			h.logger.Warn("http.posts.get_failed", "slug", slug, "error", err)
		}
		writeError(c, err)
		return
	}
	rendered, err := h.renderer.Render(c.Request.Context(), post)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

func (h *Handler) tags(c *gin.Context) {
	catalog, ok := h.catalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": posts.TagCounts(catalog)})
}

func (h *Handler) archive(c *gin.Context) {
	catalog, ok := h.catalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, posts.BuildArchive(catalog, h.calendar))
}

func (h *Handler) years(c *gin.Context) {
	catalog, ok := h.catalog(c)
	if !ok {
		return
	}
	years := posts.Years(catalog, h.calendar)
	if years == nil {
		years = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

func (h *Handler) year(c *gin.Context) {
	year := c.Param("year")
	if !isYear(year) {
		badRequest(c, "year must be four digits")
		return
	}
	catalog, ok := h.catalog(c)
	if !ok {
		return
	}
	inYear := posts.PostsInYear(catalog, year, h.calendar)
	if len(inYear) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "no posts in " + year,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":   year,
		"count":  len(inYear),
		"months": posts.GroupByMonth(inYear, h.calendar),
	})
}

func (h *Handler) catalog(c *gin.Context) ([]interfaces.Post, bool) {
	catalog, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.logger.Error("http.posts.list_failed", "error", err)
		writeError(c, err)
		return nil, false
	}
	return catalog, true
}

func requestLogger(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithContext(c.Request.Context()).Debug("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

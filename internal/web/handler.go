package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/dfryer1193/postfeed/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the feed and post detail pages and their actions.
type Handler struct {
	feed     *application.FeedService
	detail   *application.DetailService
	renderer application.MarkdownRenderer
	baseURL  string
	tmpl     *template.Template
}

// NewHandler parses the embedded templates. baseURL, when set, is used as the
// origin of share links instead of the request's host.
func NewHandler(feed *application.FeedService, detail *application.DetailService, renderer application.MarkdownRenderer, baseURL string) (*Handler, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		feed:     feed,
		detail:   detail,
		renderer: renderer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		tmpl:     tmpl,
	}, nil
}

// Register installs the templates and routes on router. Write routes are
// wrapped in limit.
func (h *Handler) Register(router *gin.Engine, limit gin.HandlerFunc) {
	router.SetHTMLTemplate(h.tmpl)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", h.Feed)

	posts := router.Group("/posts")
	{
		posts.POST("", limit, h.CreatePost)
		posts.POST("/:postId/like", limit, h.ToggleLike)
		posts.POST("/:postId/bookmark", limit, h.ToggleBookmark)
		posts.GET("/:postId/share", h.Share)
	}

	detail := router.Group("/p")
	{
		detail.GET("/:postId", h.PostDetail)
		detail.POST("/:postId/like", limit, h.ToggleDetailLike)
		detail.POST("/:postId/comments", limit, h.SubmitComment)
	}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// identity returns the session identity, aborting the request if the session
// middleware did not run.
func identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		log.Error().Str("path", c.FullPath()).Msg("Request reached handler without a session")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
	return id, ok
}

// origin is the configured base URL, or scheme and host of the request.
func (h *Handler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") || c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	if host == "" {
		host = "localhost:8080"
	}
	return scheme + "://" + host
}

// fragment renders a named template to a string for JSON responses.
func (h *Handler) fragment(name string, data any) string {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render fragment")
		return ""
	}
	return buf.String()
}

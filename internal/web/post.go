package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	d, err := h.detail.LoadPost(c.Request.Context(), id, c.Param("postId"))
	if err != nil {
		h.renderNotFound(c)
		return
	}
	c.HTML(http.StatusOK, "post.html", newDetailPage(id, h.renderer, d, false))
}

func (h *Handler) renderNotFound(c *gin.Context) {
	if wantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"notice": failure(msgPostUnavailable)})
		return
	}
	c.HTML(http.StatusNotFound, "post.html", detailPage{NotFound: true})
}

// loadedDetail returns the session's detail of postID, fetching it again when
// the session state no longer holds it.
func (h *Handler) loadedDetail(ctx context.Context, id domain.Identity, postID string) (domain.PostDetail, bool, error) {
	d, pending, err := h.detail.Detail(ctx, id, postID)
	if errors.Is(err, application.ErrPostNotFound) {
		d, err = h.detail.LoadPost(ctx, id, postID)
		pending = false
	}
	return d, pending, err
}

func (h *Handler) ToggleDetailLike(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	postID := c.Param("postId")

	if _, _, err := h.loadedDetail(ctx, id, postID); err != nil {
		h.renderNotFound(c)
		return
	}

	d, err := h.detail.ToggleLike(ctx, id, postID)
	status, notice := likeOutcome(err, d.Liked)
	if errors.Is(err, application.ErrLikeInProgress) {
		d, _, _ = h.detail.Detail(ctx, id, postID)
	}

	if wantsJSON(c) {
		c.JSON(status, gin.H{
			"notice":     notice,
			"id":         postID,
			"liked":      d.Liked,
			"like_count": d.LikeCount,
		})
		return
	}

	if d.Post.ID == "" {
		h.renderNotFound(c)
		return
	}
	page := newDetailPage(id, h.renderer, d, false)
	page.Notice = notice
	c.HTML(statusForPage(status), "post.html", page)
}

// SubmitComment handles both the composer's format helpers (format=<name>)
// and the actual submit.
func (h *Handler) SubmitComment(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	postID := c.Param("postId")
	content := c.PostForm("content")

	if name := c.PostForm("format"); name != "" {
		h.applyFormat(c, id, postID, content, name)
		return
	}

	if _, _, err := h.loadedDetail(ctx, id, postID); err != nil {
		h.renderNotFound(c)
		return
	}

	comment, count, err := h.detail.AddComment(ctx, id, postID, content)

	if wantsJSON(c) {
		switch {
		case err == nil:
			view := newCommentView(id, h.renderer, comment)
			c.JSON(http.StatusCreated, gin.H{
				"comment":       view,
				"comment_count": count,
				"html":          h.fragment("comment", view),
			})
		case errors.Is(err, application.ErrEmptyComment):
			c.JSON(http.StatusBadRequest, gin.H{"content": content})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"content": content})
		}
		return
	}

	d, pending, loadErr := h.loadedDetail(ctx, id, postID)
	if loadErr != nil {
		h.renderNotFound(c)
		return
	}
	page := newDetailPage(id, h.renderer, d, pending)
	status := http.StatusOK
	if err != nil {
		// the draft survives a rejected or failed submit
		page.Draft, page.Editing = content, true
		if errors.Is(err, application.ErrEmptyComment) {
			status = http.StatusBadRequest
		}
	}
	c.HTML(status, "post.html", page)
}

func (h *Handler) applyFormat(c *gin.Context, id domain.Identity, postID, content, name string) {
	f, ok := application.ParseFormat(name)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown format"})
		return
	}
	buffer := application.ApplyFormat(content, f)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"content": buffer})
		return
	}

	d, pending, err := h.loadedDetail(c.Request.Context(), id, postID)
	if err != nil {
		h.renderNotFound(c)
		return
	}
	page := newDetailPage(id, h.renderer, d, pending)
	page.Draft, page.Editing = buffer, true
	c.HTML(http.StatusOK, "post.html", page)
}

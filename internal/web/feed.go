package web

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/gin-gonic/gin"
)

const (
	msgLoadFailed      = "Failed to load posts."
	msgInvalidPost     = "Please enter both title and content."
	msgPostCreated     = "Post created!"
	msgCreateFailed    = "Failed to create post."
	msgLiked           = "Liked!"
	msgUnliked         = "Unliked!"
	msgLikeFailed      = "Failed to toggle like."
	msgBookmarked      = "Bookmarked"
	msgUnbookmarked    = "Removed bookmark"
	msgBookmarkFailed  = "Failed to save bookmark."
	msgPostUnavailable = "Post not found."
)

// Feed always reloads the session's feed from the posts API.
func (h *Handler) Feed(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	snap, err := h.feed.LoadFeed(c.Request.Context(), id)
	page := newFeedPage(id, snap)
	if err != nil {
		page.Notice = failure(msgLoadFailed)
	}
	c.HTML(http.StatusOK, "feed.html", page)
}

// renderFeed shows the session's current feed without reloading it.
func (h *Handler) renderFeed(c *gin.Context, id domain.Identity, status int, notice *Notice) {
	page := newFeedPage(id, h.feed.Snapshot(c.Request.Context(), id))
	page.Notice = notice
	c.HTML(status, "feed.html", page)
}

func (h *Handler) CreatePost(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	title := c.PostForm("title")
	content := c.PostForm("content")

	view, err := h.feed.CreatePost(c.Request.Context(), id, title, content)
	var status int
	var notice *Notice
	switch {
	case err == nil:
		status, notice = http.StatusCreated, success(msgPostCreated)
	case errors.Is(err, application.ErrInvalidPost):
		status, notice = http.StatusBadRequest, failure(msgInvalidPost)
	default:
		status, notice = http.StatusBadGateway, failure(msgCreateFailed)
	}

	if wantsJSON(c) {
		body := gin.H{"notice": notice}
		if err == nil {
			card := newPostCard(id, view, application.FeedSnapshot{})
			body["post"] = card
			body["html"] = h.fragment("post-card", card)
		}
		c.JSON(status, body)
		return
	}

	page := newFeedPage(id, h.feed.Snapshot(c.Request.Context(), id))
	page.Notice = notice
	if err != nil {
		page.Title, page.Content = title, content
	}
	if status == http.StatusCreated {
		status = http.StatusOK
	}
	c.HTML(status, "feed.html", page)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	postID := c.Param("postId")

	view, err := h.feed.ToggleLike(c.Request.Context(), id, postID)
	status, notice := likeOutcome(err, view.LikedBy(id.AuthorID()))

	if wantsJSON(c) {
		body := gin.H{"notice": notice}
		if view.ID != "" {
			snap := h.feed.Snapshot(c.Request.Context(), id)
			body["post"] = newPostCard(id, view, snap)
		}
		c.JSON(status, body)
		return
	}
	h.renderFeed(c, id, statusForPage(status), notice)
}

// likeOutcome maps a like toggle result to a response status and notice.
// A toggle dropped by the in-flight guard gets no notice.
func likeOutcome(err error, liked bool) (int, *Notice) {
	switch {
	case err == nil && liked:
		return http.StatusOK, success(msgLiked)
	case err == nil:
		return http.StatusOK, success(msgUnliked)
	case errors.Is(err, application.ErrLikeInProgress):
		return http.StatusConflict, nil
	case errors.Is(err, application.ErrPostNotFound):
		return http.StatusNotFound, failure(msgLikeFailed)
	default:
		return http.StatusBadGateway, failure(msgLikeFailed)
	}
}

// statusForPage keeps full page renders at 200 unless the post is gone.
func statusForPage(status int) int {
	if status == http.StatusNotFound {
		return status
	}
	return http.StatusOK
}

func (h *Handler) ToggleBookmark(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	postID := c.Param("postId")

	bookmarked, err := h.feed.ToggleBookmark(c.Request.Context(), id, postID)
	status := http.StatusOK
	notice := success(msgUnbookmarked)
	switch {
	case err != nil:
		status, notice = http.StatusInternalServerError, failure(msgBookmarkFailed)
	case bookmarked:
		notice = success(msgBookmarked)
	}

	if wantsJSON(c) {
		c.JSON(status, gin.H{"notice": notice, "id": postID, "bookmarked": bookmarked})
		return
	}
	h.renderFeed(c, id, statusForPage(status), notice)
}

// Share returns the permalink of a post. Browsers without script are sent
// straight to it.
func (h *Handler) Share(c *gin.Context) {
	url := application.Permalink(h.origin(c), c.Param("postId"))
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

package web

import (
	"html/template"
	"time"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/rs/zerolog/log"
)

const dateLayout = "Jan 2, 2006 15:04"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-off message shown to the user as a toast.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func success(msg string) *Notice { return &Notice{Level: NoticeSuccess, Message: msg} }
func failure(msg string) *Notice { return &Notice{Level: NoticeError, Message: msg} }

func formatTime(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// postCard is one post in the feed.
type postCard struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	CreatedAt    string `json:"created_at"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
	Liked        bool   `json:"liked"`
	Bookmarked   bool   `json:"bookmarked"`
	Pending      bool   `json:"pending"`
}

func newPostCard(identity domain.Identity, v domain.PostView, snap application.FeedSnapshot) postCard {
	return postCard{
		ID:           v.ID,
		Title:        v.Title,
		Content:      v.Content,
		Author:       identity.DisplayName(v.AuthorID),
		CreatedAt:    formatTime(v.CreatedAt),
		LikeCount:    v.LikeCount,
		CommentCount: v.CommentCount,
		Liked:        v.LikedBy(identity.AuthorID()),
		Bookmarked:   snap.Bookmarked[v.ID],
		Pending:      snap.Pending[v.ID],
	}
}

type feedPage struct {
	Posts  []postCard
	Notice *Notice
	// Title and Content refill the create form after a rejected submit.
	Title   string
	Content string
}

func newFeedPage(identity domain.Identity, snap application.FeedSnapshot) feedPage {
	page := feedPage{Posts: make([]postCard, 0, len(snap.Posts))}
	for _, v := range snap.Posts {
		page.Posts = append(page.Posts, newPostCard(identity, v, snap))
	}
	return page
}

type commentView struct {
	ID        string        `json:"id"`
	Author    string        `json:"author"`
	CreatedAt string        `json:"created_at"`
	HTML      template.HTML `json:"html"`
}

type detailPage struct {
	NotFound bool
	Notice   *Notice

	ID           string
	Title        string
	Author       string
	CreatedAt    string
	ContentHTML  template.HTML
	LikeCount    int
	Liked        bool
	Pending      bool
	Comments     []commentView
	CommentCount int

	// Draft is the composer buffer; Editing focuses the composer.
	Draft   string
	Editing bool
}

// renderMarkdown falls back to escaped text when conversion fails.
func renderMarkdown(renderer application.MarkdownRenderer, src string) template.HTML {
	out, err := renderer.Render(src)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to render markdown")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return out
}

func newCommentView(identity domain.Identity, renderer application.MarkdownRenderer, c domain.Comment) commentView {
	return commentView{
		ID:        c.ID,
		Author:    identity.DisplayName(c.AuthorID),
		CreatedAt: formatTime(c.CreatedAt),
		HTML:      renderMarkdown(renderer, c.Content),
	}
}

func newDetailPage(identity domain.Identity, renderer application.MarkdownRenderer, d domain.PostDetail, pending bool) detailPage {
	page := detailPage{
		ID:           d.Post.ID,
		Title:        d.Post.Title,
		Author:       identity.DisplayName(d.Post.AuthorID),
		CreatedAt:    formatTime(d.Post.CreatedAt),
		ContentHTML:  renderMarkdown(renderer, d.Post.Content),
		LikeCount:    d.LikeCount,
		Liked:        d.Liked,
		Pending:      pending,
		Comments:     make([]commentView, 0, len(d.Comments)),
		CommentCount: d.CommentCount,
	}
	for _, c := range d.Comments {
		page.Comments = append(page.Comments, newCommentView(identity, renderer, c))
	}
	return page
}

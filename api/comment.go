package api

type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type CommentList struct {
	PostID       string    `json:"postID"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"comment_count"`
}

type CommentProto struct {
	PostID  string `json:"post_id"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

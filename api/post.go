package api

// Post is the posts API representation of a post.
// Likes may be null on the wire.
type Post struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt int64    `json:"created_at"`
	Likes     []string `json:"likes"`
}

type PostList struct {
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"total_posts"`
}

type PostWithLikes struct {
	Post      Post `json:"post"`
	LikeCount *int `json:"like_count"`
}

type PostProto struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// LikeProto is the body of both the like and the unlike call.
type LikeProto struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

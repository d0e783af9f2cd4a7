package posts

import "time"

// MaxContentLength bounds post and comment bodies, in runes.
const MaxContentLength = 280

type Post struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"timestamp"`
	Username      string    `json:"username,omitempty"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	HasLiked      bool      `json:"has_liked"`
	Comments      []Comment `json:"comments"`
}

type Like struct {
	PostID        int64     `json:"post_id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

type Comment struct {
	ID            int64     `json:"id"`
	PostID        int64     `json:"post_id"`
	WalletAddress string    `json:"wallet_address"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"timestamp"`
	Username      string    `json:"username,omitempty"`
}

type contentRequest struct {
	Content string `json:"content"`
}

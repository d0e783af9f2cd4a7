package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ShaileshBisht/DecentraLink/internal/posts"
	"github.com/ShaileshBisht/DecentraLink/internal/users"
)

type contentBody struct {
	Content string `json:"content"`
}

// Whoami returns the wallet the stored token belongs to.
func (s *Session) Whoami(ctx context.Context) (string, error) {
	var out struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := s.do(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		return "", err
	}
	return out.WalletAddress, nil
}

func (s *Session) CreatePost(ctx context.Context, content string) (posts.Post, error) {
	var post posts.Post
	err := s.do(ctx, http.MethodPost, "/posts", contentBody{Content: content}, &post)
	return post, err
}

func (s *Session) ListPosts(ctx context.Context) ([]posts.Post, error) {
	var list []posts.Post
	err := s.do(ctx, http.MethodGet, "/posts", nil, &list)
	return list, err
}

func (s *Session) GetPost(ctx context.Context, postID int64) (posts.Post, error) {
	var post posts.Post
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", postID), nil, &post)
	return post, err
}

func (s *Session) LikePost(ctx context.Context, postID int64) (posts.Like, error) {
	var like posts.Like
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, &like)
	return like, err
}

func (s *Session) UnlikePost(ctx context.Context, postID int64) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/like", postID), nil, nil)
}

func (s *Session) CommentOnPost(ctx context.Context, postID int64, content string) (posts.Comment, error) {
	var comment posts.Comment
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comment", postID), contentBody{Content: content}, &comment)
	return comment, err
}

func (s *Session) DeletePost(ctx context.Context, postID int64) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil)
}

func (s *Session) DeleteComment(ctx context.Context, postID, commentID int64) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/comments/%d", postID, commentID), nil, nil)
}

func (s *Session) ListUsers(ctx context.Context) ([]users.User, error) {
	var list []users.User
	err := s.do(ctx, http.MethodGet, "/users", nil, &list)
	return list, err
}

func (s *Session) GetUser(ctx context.Context, wallet string) (users.User, error) {
	var user users.User
	err := s.do(ctx, http.MethodGet, "/users/"+wallet, nil, &user)
	return user, err
}

func (s *Session) UserStats(ctx context.Context, wallet string) (users.Stats, error) {
	var stats users.Stats
	err := s.do(ctx, http.MethodGet, "/users/"+wallet+"/stats", nil, &stats)
	return stats, err
}

func (s *Session) UpdateProfile(ctx context.Context, patch users.ProfilePatch) (users.User, error) {
	var user users.User
	err := s.do(ctx, http.MethodPost, "/users", patch, &user)
	return user, err
}

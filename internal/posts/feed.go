package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"

	"github.com/jackc/pgx/v5"
)

const feedSelect = `
	SELECT p.id, p.wallet_address, p.content, p.created_at,
	       COALESCE(u.username, ''), COALESCE(u.profile_pic_url, ''),
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	       EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.wallet_address = $1)
	FROM posts p
	LEFT JOIN users u ON u.wallet_address = p.wallet_address
`

// ListPosts returns every post, newest first, with engagement aggregates
// computed for viewer. An empty viewer never has likes.
func (s *Service) ListPosts(ctx context.Context, viewer string) ([]Post, error) {
	viewer = wallet.Normalize(viewer)
	rows, err := s.db.Query(ctx, feedSelect+`ORDER BY p.created_at DESC, p.id DESC`, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	var ids []int64
	for rows.Next() {
		p, err := scanPost(rows, viewer)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if c, ok := comments[posts[i].ID]; ok {
			posts[i].Comments = c
		}
	}
	return sortPosts(posts), nil
}

func (s *Service) GetPost(ctx context.Context, postID int64, viewer string) (Post, error) {
	viewer = wallet.Normalize(viewer)
	row := s.db.QueryRow(ctx, feedSelect+`WHERE p.id = $2`, viewer, postID)
	p, err := scanPost(row, viewer)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, fmt.Errorf("post not found: %w", errs.ErrNotFound)
	}
	if err != nil {
		return Post{}, err
	}

	comments, err := s.loadComments(ctx, []int64{p.ID})
	if err != nil {
		return Post{}, err
	}
	if c, ok := comments[p.ID]; ok {
		p.Comments = c
	}
	return p, nil
}

func scanPost(row pgx.Row, viewer string) (Post, error) {
	p := Post{Comments: []Comment{}}
	if err := row.Scan(&p.ID, &p.WalletAddress, &p.Content, &p.CreatedAt,
		&p.Username, &p.ProfilePicURL, &p.LikesCount, &p.CommentsCount, &p.HasLiked); err != nil {
		return Post{}, err
	}
	if viewer == "" {
		p.HasLiked = false
	}
	return p, nil
}

func (s *Service) loadComments(ctx context.Context, postIDs []int64) (map[int64][]Comment, error) {
	if len(postIDs) == 0 {
		return map[int64][]Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.wallet_address, c.content, c.created_at, COALESCE(u.username, '')
		FROM comments c
		LEFT JOIN users u ON u.wallet_address = c.wallet_address
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at, c.id
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := map[int64][]Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.WalletAddress, &c.Content, &c.CreatedAt, &c.Username); err != nil {
			return nil, err
		}
		comments[c.PostID] = append(comments[c.PostID], c)
	}
	return comments, rows.Err()
}

func sortPosts(posts []Post) []Post {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

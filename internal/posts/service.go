package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ShaileshBisht/DecentraLink/internal/db"
	"github.com/ShaileshBisht/DecentraLink/internal/logging"
	"github.com/ShaileshBisht/DecentraLink/internal/metrics"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"
	"github.com/ShaileshBisht/DecentraLink/internal/stream"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Publisher receives feed events after a mutation commits.
type Publisher interface {
	Publish(ctx context.Context, ev stream.Event)
}

// Service owns posts, likes and comments. Uniqueness of likes and the
// delete cascade are enforced by the database, not by in-process locks.
type Service struct {
	db     db.TxQuerier
	events Publisher
	log    logging.Logger
}

func NewService(db db.TxQuerier, events Publisher, log logging.Logger) *Service {
	return &Service{db: db, events: events, log: log}
}

func (s *Service) CreatePost(ctx context.Context, actor, content string) (Post, error) {
	content, err := validateContent(content)
	if err != nil {
		return Post{}, err
	}
	actor = wallet.Normalize(actor)
	if err := ensureUser(ctx, s.db, actor); err != nil {
		return Post{}, err
	}

	post := Post{WalletAddress: actor, Content: content, Comments: []Comment{}}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (wallet_address, content)
		VALUES ($1,$2)
		RETURNING id, created_at
	`, actor, content)
	if err := row.Scan(&post.ID, &post.CreatedAt); err != nil {
		return Post{}, err
	}

	s.mutated(ctx, "post.created", post.ID, 0, actor)
	return post, nil
}

func (s *Service) LikePost(ctx context.Context, actor string, postID int64) (Like, error) {
	actor = wallet.Normalize(actor)
	if err := postExists(ctx, s.db, postID); err != nil {
		return Like{}, err
	}
	if err := ensureUser(ctx, s.db, actor); err != nil {
		return Like{}, err
	}

	like := Like{PostID: postID, WalletAddress: actor}
	row := s.db.QueryRow(ctx, `
		INSERT INTO likes (post_id, wallet_address)
		VALUES ($1,$2)
		ON CONFLICT (post_id, wallet_address) DO NOTHING
		RETURNING created_at
	`, postID, actor)
	if err := row.Scan(&like.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgUniqueViolation {
			return Like{}, fmt.Errorf("post already liked: %w", errs.ErrConflict)
		}
		if pgCode(err) == pgForeignKeyViolation {
			return Like{}, fmt.Errorf("post not found: %w", errs.ErrNotFound)
		}
		return Like{}, err
	}

	s.mutated(ctx, "post.liked", postID, 0, actor)
	return like, nil
}

// UnlikePost is deliberately not idempotent: removing a like that does not
// exist reports ErrNotFound.
func (s *Service) UnlikePost(ctx context.Context, actor string, postID int64) error {
	actor = wallet.Normalize(actor)
	if err := postExists(ctx, s.db, postID); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM likes WHERE post_id=$1 AND wallet_address=$2`, postID, actor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("like not found: %w", errs.ErrNotFound)
	}

	s.mutated(ctx, "post.unliked", postID, 0, actor)
	return nil
}

func (s *Service) CommentOnPost(ctx context.Context, actor string, postID int64, content string) (Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return Comment{}, err
	}
	actor = wallet.Normalize(actor)
	if err := postExists(ctx, s.db, postID); err != nil {
		return Comment{}, err
	}
	if err := ensureUser(ctx, s.db, actor); err != nil {
		return Comment{}, err
	}

	comment := Comment{PostID: postID, WalletAddress: actor, Content: content}
	row := s.db.QueryRow(ctx, `
		INSERT INTO comments (post_id, wallet_address, content)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, postID, actor, content)
	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return Comment{}, fmt.Errorf("post not found: %w", errs.ErrNotFound)
		}
		return Comment{}, err
	}

	s.mutated(ctx, "comment.created", postID, comment.ID, actor)
	return comment, nil
}

// DeletePost removes the post together with its likes and comments in one
// transaction. The post row is locked first so concurrent likes and comments
// either commit before the cascade or fail their foreign key afterwards.
func (s *Service) DeletePost(ctx context.Context, actor string, postID int64) error {
	actor = wallet.Normalize(actor)
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.Querier) error {
		var author string
		err := tx.QueryRow(ctx, `SELECT wallet_address FROM posts WHERE id=$1 FOR UPDATE`, postID).Scan(&author)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("post not found: %w", errs.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !wallet.Equal(author, actor) {
			return fmt.Errorf("only the author can delete this post: %w", errs.ErrForbidden)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE post_id=$1`, postID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id=$1`, postID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, postID)
		return err
	})
	if err != nil {
		return err
	}

	s.mutated(ctx, "post.deleted", postID, 0, actor)
	return nil
}

func (s *Service) DeleteComment(ctx context.Context, actor string, postID, commentID int64) error {
	actor = wallet.Normalize(actor)
	if err := postExists(ctx, s.db, postID); err != nil {
		return err
	}

	var storedPostID int64
	var author string
	err := s.db.QueryRow(ctx, `SELECT post_id, wallet_address FROM comments WHERE id=$1`, commentID).Scan(&storedPostID, &author)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("comment not found: %w", errs.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if storedPostID != postID {
		return fmt.Errorf("comment not found on this post: %w", errs.ErrNotFound)
	}
	if !wallet.Equal(author, actor) {
		return fmt.Errorf("only the author can delete this comment: %w", errs.ErrForbidden)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id=$1 AND post_id=$2`, commentID, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment not found: %w", errs.ErrNotFound)
	}

	s.mutated(ctx, "comment.deleted", postID, commentID, actor)
	return nil
}

func (s *Service) mutated(ctx context.Context, action string, postID, commentID int64, actor string) {
	metrics.RecordMutation(action)
	s.log.Debug(ctx, "engagement mutation", "action", action, "post_id", postID, "comment_id", commentID, "wallet", actor)
	if s.events != nil {
		s.events.Publish(ctx, stream.Event{Type: action, PostID: postID, CommentID: commentID, Wallet: actor})
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("content required: %w", errs.ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", fmt.Errorf("content exceeds %d characters: %w", MaxContentLength, errs.ErrValidation)
	}
	return content, nil
}

func postExists(ctx context.Context, q db.Querier, postID int64) error {
	var one int
	err := q.QueryRow(ctx, `SELECT 1 FROM posts WHERE id=$1`, postID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("post not found: %w", errs.ErrNotFound)
	}
	return err
}

// ensureUser creates the implicit profile row a wallet gets on its first write.
func ensureUser(ctx context.Context, q db.Querier, addr string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO users (wallet_address)
		VALUES ($1)
		ON CONFLICT (wallet_address) DO NOTHING
	`, addr)
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ShaileshBisht/DecentraLink/internal/db"
	"github.com/ShaileshBisht/DecentraLink/internal/logging"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"

	"github.com/jackc/pgx/v5"
)

const userColumns = `wallet_address, COALESCE(username, ''), COALESCE(bio, ''), COALESCE(profile_pic_url, ''), created_at, updated_at`

type Service struct {
	db  db.TxQuerier
	log logging.Logger
}

func NewService(db db.TxQuerier, log logging.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(ctx context.Context, addr string) (User, error) {
	addr = wallet.Normalize(addr)
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE wallet_address=$1`, addr))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user not found: %w", errs.ErrNotFound)
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, wallet_address`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Stats counts activity for any address, including ones without a profile.
func (s *Service) Stats(ctx context.Context, addr string) (Stats, error) {
	stats := Stats{WalletAddress: wallet.Normalize(addr)}
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE wallet_address=$1),
			(SELECT COUNT(*) FROM likes WHERE wallet_address=$1)
	`, stats.WalletAddress).Scan(&stats.PostsCount, &stats.LikesGivenCount)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Upsert creates the actor's profile or applies patch to the existing one.
func (s *Service) Upsert(ctx context.Context, actor string, patch ProfilePatch) (User, error) {
	if err := validatePatch(patch); err != nil {
		return User{}, err
	}
	actor = wallet.Normalize(actor)

	var saved User
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.Querier) error {
		current, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE wallet_address=$1 FOR UPDATE`, actor))
		if errors.Is(err, pgx.ErrNoRows) {
			current = User{WalletAddress: actor}
		} else if err != nil {
			return err
		}

		merged := mergeProfile(current, patch)
		saved, err = scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (wallet_address, username, bio, profile_pic_url)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
			ON CONFLICT (wallet_address) DO UPDATE
			SET username = EXCLUDED.username,
			    bio = EXCLUDED.bio,
			    profile_pic_url = EXCLUDED.profile_pic_url,
			    updated_at = now()
			RETURNING `+userColumns,
			merged.WalletAddress, merged.Username, merged.Bio, merged.ProfilePicURL))
		return err
	})
	if err != nil {
		return User{}, err
	}

	s.log.Debug(ctx, "profile saved", "wallet", actor)
	return saved, nil
}

// mergeProfile copies only the updatable profile fields from patch.
func mergeProfile(current User, patch ProfilePatch) User {
	merged := current
	if patch.Username != nil {
		merged.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Bio != nil {
		merged.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.ProfilePicURL != nil {
		merged.ProfilePicURL = strings.TrimSpace(*patch.ProfilePicURL)
	}
	return merged
}

func validatePatch(patch ProfilePatch) error {
	if patch.Username != nil && utf8.RuneCountInString(strings.TrimSpace(*patch.Username)) > MaxUsernameLength {
		return fmt.Errorf("username exceeds %d characters: %w", MaxUsernameLength, errs.ErrValidation)
	}
	if patch.Bio != nil && utf8.RuneCountInString(strings.TrimSpace(*patch.Bio)) > MaxBioLength {
		return fmt.Errorf("bio exceeds %d characters: %w", MaxBioLength, errs.ErrValidation)
	}
	if patch.ProfilePicURL != nil {
		if raw := strings.TrimSpace(*patch.ProfilePicURL); raw != "" && !isHTTPURL(raw) {
			return fmt.Errorf("profile_pic_url must be an http(s) URL: %w", errs.ErrValidation)
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.WalletAddress, &u.Username, &u.Bio, &u.ProfilePicURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

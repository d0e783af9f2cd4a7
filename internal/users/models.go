package users

import "time"

const (
	MaxUsernameLength = 50
	MaxBioLength      = 280
)

type User struct {
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched,
// an empty string clears the field.
type ProfilePatch struct {
	Username      *string `json:"username"`
	Bio           *string `json:"bio"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

type Stats struct {
	WalletAddress   string `json:"wallet_address"`
	PostsCount      int    `json:"posts_count"`
	LikesGivenCount int    `json:"likes_given_count"`
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpiredToken   = fmt.Errorf("token expired: %w", errs.ErrUnauthorized)
	ErrMalformedToken = fmt.Errorf("token invalid: %w", errs.ErrUnauthorized)
)

type Claims struct {
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

// Issuer signs and validates stateless session tokens. There is no revocation:
// a token stays valid for its whole window even after the client signs out.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(walletAddress string) (string, error) {
	addr := wallet.Normalize(walletAddress)
	if addr == "" {
		return "", errors.New("wallet address required")
	}
	issuedAt := i.now()
	claims := Claims{
		WalletAddress: addr,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Validate returns the wallet address embedded in token.
func (i *Issuer) Validate(token string) (string, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrMalformedToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.WalletAddress == "" {
		return "", ErrMalformedToken
	}
	return wallet.Normalize(claims.WalletAddress), nil
}

var parseClaimsFn = jwt.ParseWithClaims

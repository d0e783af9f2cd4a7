package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ShaileshBisht/DecentraLink/internal/logging"
	"github.com/ShaileshBisht/DecentraLink/internal/metrics"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"
)

// Challenges timestamped further than this into the future are rejected.
const maxClockSkew = time.Minute

var errRejected = fmt.Errorf("signature verification failed: %w", errs.ErrUnauthorized)

// Service runs the server side of wallet sign-in: verify the signed
// challenge, consume its nonce, issue a session token.
type Service struct {
	verifier        Verifier
	issuer          *Issuer
	nonces          NonceStore
	challengeMaxAge time.Duration
	now             func() time.Time
	log             logging.Logger
}

func NewService(issuer *Issuer, nonces NonceStore, challengeMaxAge time.Duration, log logging.Logger) *Service {
	if nonces == nil {
		nonces = NewMemoryNonceStore()
	}
	return &Service{
		issuer:          issuer,
		nonces:          nonces,
		challengeMaxAge: challengeMaxAge,
		now:             time.Now,
		log:             log,
	}
}

func (s *Service) Verify(ctx context.Context, req VerifyRequest) (TokenResponse, error) {
	addr := wallet.Normalize(req.WalletAddress)
	if !wallet.IsAddress(addr) || req.Signature == "" || req.Message == "" {
		return TokenResponse{}, fmt.Errorf("walletAddress, signature and message required: %w", errs.ErrValidation)
	}
	log := s.log.With("wallet", addr)

	sig, err := DecodeSignature(req.Signature)
	if err != nil {
		return TokenResponse{}, s.reject(ctx, log, "malformed", err)
	}
	ok, err := s.verifier.Verify(req.Message, sig, addr)
	if err != nil {
		return TokenResponse{}, s.reject(ctx, log, "invalid_signature", err)
	}
	if !ok {
		return TokenResponse{}, s.reject(ctx, log, "mismatch", nil)
	}

	if ch, hasNonce := ParseChallenge(req.Message); hasNonce {
		outcome, err := s.checkChallenge(ctx, addr, ch)
		if err != nil {
			log.Error(ctx, "nonce store unavailable", "error", err)
			return TokenResponse{}, fmt.Errorf("consume nonce: %w", err)
		}
		if outcome != "" {
			return TokenResponse{}, s.reject(ctx, log, outcome, nil)
		}
	}

	token, err := s.issuer.Issue(addr)
	if err != nil {
		return TokenResponse{}, err
	}
	metrics.RecordSignIn("success")
	log.Info(ctx, "wallet authenticated")
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
	}, nil
}

// checkChallenge returns a non-empty rejection outcome when the challenge is
// bound to another wallet, stale, or already used.
func (s *Service) checkChallenge(ctx context.Context, addr string, ch Challenge) (string, error) {
	if ch.Wallet != "" && !wallet.Equal(ch.Wallet, addr) {
		return "wallet_mismatch", nil
	}

	ttl := s.issuer.TTL()
	if s.challengeMaxAge > 0 {
		age := s.now().Sub(ch.IssuedAt)
		if ch.IssuedAt.IsZero() || age > s.challengeMaxAge || age < -maxClockSkew {
			return "stale_challenge", nil
		}
		ttl = s.challengeMaxAge + maxClockSkew
	}

	fresh, err := s.nonces.Consume(ctx, addr+":"+ch.Nonce, ttl)
	if err != nil {
		return "", err
	}
	if !fresh {
		return "replayed", nil
	}
	return "", nil
}

func (s *Service) reject(ctx context.Context, log logging.Logger, outcome string, cause error) error {
	metrics.RecordSignIn(outcome)
	if cause != nil {
		log.Warn(ctx, "wallet sign-in rejected", "outcome", outcome, "error", cause)
	} else {
		log.Warn(ctx, "wallet sign-in rejected", "outcome", outcome)
	}
	return errRejected
}

// Validate resolves a session token to its wallet address.
func (s *Service) Validate(token string) (string, error) {
	return s.issuer.Validate(token)
}

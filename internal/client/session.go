// Package client implements the wallet side of the sign-in protocol and a
// typed HTTP client for the DecentraLink API.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ShaileshBisht/DecentraLink/internal/auth"

	"github.com/google/uuid"
)

type State int

const (
	Unauthenticated State = iota
	Challenged
	Verifying
	Authenticated
	Rejected
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Challenged:
		return "challenged"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Signer produces EIP-191 personal_sign signatures for a wallet.
// *auth.KeySigner satisfies it.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, message string) ([]byte, error)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Store      CredentialStore
	HTTPClient *http.Client
}

// Session drives sign-in and attaches the stored token to every request.
type Session struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore

	mu    sync.Mutex
	state State

	now      func() time.Time
	newNonce func() string
}

func NewSession(cfg Config) *Session {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	s := &Session{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		store:      store,
		state:      Unauthenticated,
		now:        time.Now,
		newNonce:   uuid.NewString,
	}
	if _, ok := store.Get(); ok {
		s.state = Authenticated
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// SignIn signs a fresh challenge with signer and exchanges it for a session
// token. A 401 from the server leaves the session Rejected; any other failure
// returns it to Unauthenticated.
func (s *Session) SignIn(ctx context.Context, signer Signer) error {
	s.mu.Lock()
	if s.state == Challenged || s.state == Verifying {
		s.mu.Unlock()
		return ErrSignInInProgress
	}
	s.state = Challenged
	s.mu.Unlock()

	addr := signer.Address()
	message := auth.BuildChallenge(addr, s.now(), s.newNonce())
	sig, err := signer.SignMessage(ctx, message)
	if err != nil {
		s.setState(Unauthenticated)
		return fmt.Errorf("sign challenge: %w", err)
	}

	s.setState(Verifying)
	var tok auth.TokenResponse
	err = s.send(ctx, http.MethodPost, "/auth/verify", "", auth.VerifyRequest{
		WalletAddress: addr,
		Signature:     "0x" + hex.EncodeToString(sig),
		Message:       message,
	}, &tok)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			s.store.Clear()
			s.setState(Rejected)
			return err
		}
		s.setState(Unauthenticated)
		return err
	}

	s.store.Set(tok.AccessToken)
	s.setState(Authenticated)
	return nil
}

func (s *Session) SignOut() {
	s.store.Clear()
	s.setState(Unauthenticated)
}

// do sends an API request carrying the stored token. A 401 clears the token.
func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	token, _ := s.store.Get()
	err := s.send(ctx, method, path, token, body, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && token != "" {
		s.store.Clear()
		s.setState(Unauthenticated)
	}
	return err
}

func (s *Session) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const walletLocalsKey = "wallet_address"

// TokenValidator resolves a bearer token to a wallet address.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireWallet validates bearer tokens and stores the wallet address in locals.
func RequireWallet(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		addr, err := tokens.Validate(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(walletLocalsKey, addr)
		return c.Next()
	}
}

// OptionalWallet records the viewer when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalWallet(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerFromHeader(c.Get(fiber.HeaderAuthorization)); token != "" {
			if addr, err := tokens.Validate(token); err == nil {
				c.Locals(walletLocalsKey, addr)
			}
		}
		return c.Next()
	}
}

// WalletFromCtx returns the authenticated wallet, or "" for anonymous requests.
func WalletFromCtx(c *fiber.Ctx) string {
	addr, _ := c.Locals(walletLocalsKey).(string)
	return addr
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

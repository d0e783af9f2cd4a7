package auth

import (
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/verify", func(c *fiber.Ctx) error {
		var req VerifyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		resp, err := svc.Verify(c.UserContext(), req)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(resp)
	})

	r.Get("/session", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"wallet_address": WalletFromCtx(c)})
	})
}

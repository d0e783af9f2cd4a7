package users

import (
	"github.com/ShaileshBisht/DecentraLink/internal/auth"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(users)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var patch ProfilePatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Upsert(c.UserContext(), auth.WalletFromCtx(c), patch)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(user)
	})

	r.Get("/:wallet", func(c *fiber.Ctx) error {
		addr := c.Params("wallet")
		if !wallet.IsAddress(addr) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid wallet address")
		}
		user, err := svc.Get(c.UserContext(), addr)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(user)
	})

	r.Get("/:wallet/stats", func(c *fiber.Ctx) error {
		addr := c.Params("wallet")
		if !wallet.IsAddress(addr) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid wallet address")
		}
		stats, err := svc.Stats(c.UserContext(), addr)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(stats)
	})
}

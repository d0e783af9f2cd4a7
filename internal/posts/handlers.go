package posts

import (
	"strconv"

	"github.com/ShaileshBisht/DecentraLink/internal/auth"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireWallet, optionalWallet fiber.Handler) {
	r.Post("/", requireWallet, func(c *fiber.Ctx) error {
		var req contentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		post, err := svc.CreatePost(c.UserContext(), auth.WalletFromCtx(c), req.Content)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Get("/", optionalWallet, func(c *fiber.Ctx) error {
		posts, err := svc.ListPosts(c.UserContext(), auth.WalletFromCtx(c))
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(posts)
	})

	r.Get("/:id", optionalWallet, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		post, err := svc.GetPost(c.UserContext(), id, auth.WalletFromCtx(c))
		if err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(post)
	})

	r.Post("/:id/like", requireWallet, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		like, err := svc.LikePost(c.UserContext(), auth.WalletFromCtx(c), id)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(like)
	})

	r.Delete("/:id/like", requireWallet, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.UnlikePost(c.UserContext(), auth.WalletFromCtx(c), id); err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(fiber.Map{"message": "Post unliked successfully"})
	})

	r.Post("/:id/comment", requireWallet, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var req contentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		comment, err := svc.CommentOnPost(c.UserContext(), auth.WalletFromCtx(c), id, req.Content)
		if err != nil {
			return errs.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Delete("/:id", requireWallet, func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeletePost(c.UserContext(), auth.WalletFromCtx(c), id); err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(fiber.Map{"message": "Post deleted successfully"})
	})

	r.Delete("/:postId/comments/:commentId", requireWallet, func(c *fiber.Ctx) error {
		postID, err := paramID(c, "postId")
		if err != nil {
			return err
		}
		commentID, err := paramID(c, "commentId")
		if err != nil {
			return err
		}
		if err := svc.DeleteComment(c.UserContext(), auth.WalletFromCtx(c), postID, commentID); err != nil {
			return errs.HTTP(err)
		}
		return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
	})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

package social

import (
	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the graph reads and mutations. Search is public; every
// other route is gated by authMiddleware.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/users/search", func(c *fiber.Ctx) error {
		users, err := svc.SearchUsers(c.UserContext(), c.Query("keyword"))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/users/:id", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.GetUserByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(profile)
	})

	r.Get("/posts", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.ListFeed(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(posts)
	})

	r.Get("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		post, err := svc.GetPostByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(post)
	})

	r.Post("/posts", authMiddleware, func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		var req AddPostRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		post, err := svc.CreatePost(c.UserContext(), caller, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Post("/posts/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		var req CommentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		msg, err := svc.CommentPost(c.UserContext(), caller, c.Params("id"), req.Content)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})

	r.Post("/posts/:id/likes", authMiddleware, func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		msg, err := svc.LikePost(c.UserContext(), caller, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})

	r.Post("/follows", authMiddleware, func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		var req FollowRequest
		if err := c.BodyParser(&req); err != nil || req.FollowingID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "followingId required")
		}
		msg, err := svc.FollowUser(c.UserContext(), caller, req.FollowingID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})
}

func callerOf(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, apperr.ErrUnauthenticated
	}
	return id, nil
}

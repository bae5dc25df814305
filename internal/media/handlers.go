package media

import (
	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/uploads", authMiddleware, func(c *fiber.Ctx) error {
		caller, ok := auth.IdentityFrom(c)
		if !ok {
			return apperr.ErrUnauthenticated
		}
		var body struct {
			FileName string `json:"file_name"`
		}
		_ = c.BodyParser(&body)
		slot, err := svc.Reserve(c.UserContext(), caller.UserID, body.FileName)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(slot)
	})
}

// handlers/auth_routes.go
package handlers

import (
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

func SetupAuthRoutes(app *fiber.App, auth *services.AuthService) {
	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid registration", err)
		}
		res, err := auth.Register(c.UserContext(), req.Username, req.Email, req.Password)
		if err != nil {
			return fail(c, "registration failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid login", err)
		}
		res, err := auth.Login(c.UserContext(), req.Login, req.Password)
		if err != nil {
			return fail(c, "login failed", err)
		}
		return c.JSON(res)
	})
}

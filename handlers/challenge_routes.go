// handlers/challenge_routes.go
package handlers

import (
	"coding-edu-platform/middleware"
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

type submitAttemptRequest struct {
	Code      string `json:"code"`
	TimeSpent int    `json:"time_spent" validate:"min=0"` // seconds
}

func SetupChallengeRoutes(app *fiber.App, admin fiber.Router, secured fiber.Handler, challenges *services.ChallengeService) {
	app.Get("/challenges", func(c *fiber.Ctx) error {
		list, err := challenges.ListChallenges(c.UserContext(), services.ChallengeFilter{
			Difficulty: c.Query("difficulty"),
			Search:     c.Query("q"),
		})
		if err != nil {
			return fail(c, "failed to list challenges", err)
		}
		return c.JSON(list)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		ch, err := challenges.GetChallenge(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, "challenge not available", err)
		}
		return c.JSON(ch)
	})

	app.Post("/challenges/:id/attempts", secured, func(c *fiber.Ctx) error {
		var req submitAttemptRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid attempt", err)
		}
		res, err := challenges.SubmitAttempt(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Code, req.TimeSpent)
		if err != nil {
			return fail(c, "failed to submit attempt", err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	app.Get("/challenges/:id/attempts", secured, func(c *fiber.Ctx) error {
		attempts, err := challenges.ListAttempts(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return fail(c, "failed to list attempts", err)
		}
		return c.JSON(attempts)
	})

	admin.Post("/challenges", func(c *fiber.Ctx) error {
		var req services.CreateChallengeInput
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid challenge", err)
		}
		ch, err := challenges.CreateChallenge(c.UserContext(), req)
		if err != nil {
			return fail(c, "failed to create challenge", err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})
}

// handlers/roadmap_routes.go
package handlers

import (
	"coding-edu-platform/middleware"
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

type replaceStepsRequest struct {
	Steps []services.StepInput `json:"steps" validate:"dive"`
}

func SetupRoadmapRoutes(app *fiber.App, secured, optionalUser fiber.Handler, roadmaps *services.RoadmapService) {
	app.Get("/roadmaps", func(c *fiber.Ctx) error {
		page, err := roadmaps.ListPublic(c.UserContext(), queryInt(c, "page", 1), queryInt(c, "size", 20))
		if err != nil {
			return fail(c, "failed to list roadmaps", err)
		}
		return c.JSON(page)
	})

	app.Get("/roadmaps/:id", optionalUser, func(c *fiber.Ctx) error {
		rm, err := roadmaps.GetRoadmap(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return fail(c, "roadmap not available", err)
		}
		return c.JSON(rm)
	})

	app.Get("/user/roadmaps", secured, func(c *fiber.Ctx) error {
		list, err := roadmaps.ListByOwner(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to list roadmaps", err)
		}
		return c.JSON(list)
	})

	app.Post("/roadmaps", secured, func(c *fiber.Ctx) error {
		var req services.CreateRoadmapInput
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid roadmap", err)
		}
		rm, err := roadmaps.CreateRoadmap(c.UserContext(), middleware.UserID(c), req)
		if err != nil {
			return fail(c, "failed to create roadmap", err)
		}
		return c.Status(fiber.StatusCreated).JSON(rm)
	})

	app.Patch("/roadmaps/:id", secured, func(c *fiber.Ctx) error {
		var req services.UpdateRoadmapInput
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid roadmap", err)
		}
		rm, err := roadmaps.UpdateRoadmap(c.UserContext(), c.Params("id"), middleware.UserID(c), req)
		if err != nil {
			return fail(c, "failed to update roadmap", err)
		}
		return c.JSON(rm)
	})

	app.Delete("/roadmaps/:id", secured, func(c *fiber.Ctx) error {
		if err := roadmaps.DeleteRoadmap(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
			return fail(c, "failed to delete roadmap", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Put("/roadmaps/:id/steps", secured, func(c *fiber.Ctx) error {
		var req replaceStepsRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid steps", err)
		}
		steps, err := roadmaps.ReplaceSteps(c.UserContext(), c.Params("id"), middleware.UserID(c), req.Steps)
		if err != nil {
			return fail(c, "failed to replace steps", err)
		}
		return c.JSON(steps)
	})

	app.Patch("/roadmaps/:id/steps/:step_id/toggle", secured, func(c *fiber.Ctx) error {
		step, err := roadmaps.ToggleStep(c.UserContext(), c.Params("id"), c.Params("step_id"), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to toggle step", err)
		}
		return c.JSON(step)
	})

	app.Post("/roadmaps/:id/like", secured, func(c *fiber.Ctx) error {
		likes, err := roadmaps.LikeRoadmap(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to like roadmap", err)
		}
		return c.JSON(fiber.Map{"likes": likes})
	})
}

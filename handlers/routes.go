package handlers

import (
	"coding-edu-platform/middleware"
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth        *services.AuthService
	Progression *services.ProgressionService
	Progress    *services.ProgressService
	Courses     *services.CourseService
	Challenges  *services.ChallengeService
	Roadmaps    *services.RoadmapService
	Leaderboard *services.LeaderboardService
	Badges      *services.BadgeService
	Profiles    *services.ProfileService

	Images       ImageStore // nil disables upload routes
	ServiceToken string
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 🔐 Secured routes take the middleware explicitly so public routes on the
	// same prefixes stay open.
	secured := middleware.UserContextMiddleware(d.Auth)
	optionalUser := middleware.OptionalUserContext(d.Auth)
	admin := app.Group("/admin", middleware.ServiceTokenMiddleware(d.ServiceToken))

	SetupAuthRoutes(app, d.Auth)
	SetupProgressionRoutes(app, admin, secured, d)
	SetupCourseRoutes(app, admin, secured, d)
	SetupChallengeRoutes(app, admin, secured, d.Challenges)
	SetupRoadmapRoutes(app, secured, optionalUser, d.Roadmaps)
}

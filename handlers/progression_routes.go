// handlers/progression_routes.go
package handlers

import (
	"fmt"

	"coding-edu-platform/middleware"
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

type grantXPRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	XP     int64  `json:"xp" validate:"min=0"`
	Reason string `json:"reason" validate:"max=128"`
}

func SetupProgressionRoutes(app *fiber.App, admin fiber.Router, secured fiber.Handler, d Deps) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := d.Leaderboard.TopUsers(c.UserContext(), queryInt(c, "limit", services.MaxLeaderboardSize))
		if err != nil {
			return fail(c, "failed to load leaderboard", err)
		}
		return c.JSON(entries)
	})

	app.Get("/user/profile", secured, func(c *fiber.Ctx) error {
		profile, err := d.Profiles.GetProfile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to load profile", err)
		}
		return c.JSON(profile)
	})

	app.Post("/user/avatar", secured, func(c *fiber.Ctx) error {
		if d.Images == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "uploads are not configured"})
		}
		userID := middleware.UserID(c)
		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return fail(c, "avatar file required", fmt.Errorf("%v: %w", err, services.ErrValidation))
		}
		url, err := d.Images.UploadImage(c.UserContext(), fileHeader, "avatars", userID)
		if err != nil {
			return fail(c, "avatar upload failed", fmt.Errorf("%v: %w", err, services.ErrValidation))
		}
		if err := d.Profiles.SetAvatarURL(c.UserContext(), userID, url); err != nil {
			return fail(c, "failed to save avatar", err)
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})

	app.Get("/user/progress", secured, func(c *fiber.Ctx) error {
		rows, err := d.Progress.GetProgress(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to load progress", err)
		}
		return c.JSON(rows)
	})

	app.Get("/user/xp/history", secured, func(c *fiber.Ctx) error {
		page, err := d.Progression.XPHistory(c.UserContext(), middleware.UserID(c),
			queryInt(c, "page", 1), queryInt(c, "size", 20))
		if err != nil {
			return fail(c, "failed to get history", err)
		}
		return c.JSON(page)
	})

	app.Get("/user/badges", secured, func(c *fiber.Ctx) error {
		badges, err := d.Badges.UserBadges(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to get badges", err)
		}
		return c.JSON(badges)
	})

	// Admin endpoints
	admin.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req grantXPRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid XP grant", err)
		}
		reason := req.Reason
		if reason == "" {
			reason = "admin_grant"
		}
		award, err := d.Progression.AwardXP(c.UserContext(), req.UserID, req.XP, reason)
		if err != nil {
			return fail(c, "XP award failed", err)
		}
		return c.JSON(award)
	})

	admin.Post("/levels/reconcile", func(c *fiber.Ctx) error {
		fixed, err := d.Progression.ReconcileLevels(c.UserContext())
		if err != nil {
			return fail(c, "level reconcile failed", err)
		}
		return c.JSON(fiber.Map{"repaired": fixed})
	})
}

// handlers/course_routes.go
package handlers

import (
	"fmt"

	"coding-edu-platform/middleware"
	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

type saveProgressRequest struct {
	Code      string `json:"code"`
	Completed bool   `json:"completed"`
}

func SetupCourseRoutes(app *fiber.App, admin fiber.Router, secured fiber.Handler, d Deps) {
	app.Get("/courses", func(c *fiber.Ctx) error {
		courses, err := d.Courses.ListCourses(c.UserContext(), services.CourseFilter{
			Category:   c.Query("category"),
			Difficulty: c.Query("difficulty"),
		})
		if err != nil {
			return fail(c, "failed to list courses", err)
		}
		return c.JSON(courses)
	})

	app.Get("/courses/:id", func(c *fiber.Ctx) error {
		course, err := d.Courses.GetCourse(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, "course not available", err)
		}
		return c.JSON(course)
	})

	app.Get("/courses/:id/progress", secured, func(c *fiber.Ctx) error {
		progress, err := d.Progress.CourseProgress(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return fail(c, "failed to load course progress", err)
		}
		return c.JSON(progress)
	})

	app.Post("/courses/:id/enroll", secured, func(c *fiber.Ctx) error {
		enrollment, err := d.Courses.Enroll(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return fail(c, "enrollment failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(enrollment)
	})

	app.Get("/user/enrollments", secured, func(c *fiber.Ctx) error {
		enrollments, err := d.Courses.ListEnrollments(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, "failed to list enrollments", err)
		}
		return c.JSON(enrollments)
	})

	app.Put("/lessons/:id/progress", secured, func(c *fiber.Ctx) error {
		var req saveProgressRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid progress", err)
		}
		res, err := d.Progress.SaveProgress(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Code, req.Completed)
		if err != nil {
			return fail(c, "failed to save progress", err)
		}
		return c.JSON(res)
	})

	// Admin endpoints
	admin.Post("/courses", func(c *fiber.Ctx) error {
		var req services.CreateCourseInput
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid course", err)
		}
		course, err := d.Courses.CreateCourse(c.UserContext(), req)
		if err != nil {
			return fail(c, "failed to create course", err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	})

	admin.Post("/courses/:id/lessons", func(c *fiber.Ctx) error {
		var req services.CreateLessonInput
		if err := bindJSON(c, &req); err != nil {
			return fail(c, "invalid lesson", err)
		}
		lesson, err := d.Courses.AddLesson(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return fail(c, "failed to add lesson", err)
		}
		return c.Status(fiber.StatusCreated).JSON(lesson)
	})

	admin.Post("/courses/:id/cover", func(c *fiber.Ctx) error {
		if d.Images == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "uploads are not configured"})
		}
		course, err := d.Courses.GetCourse(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, "course not available", err)
		}
		fileHeader, err := c.FormFile("cover")
		if err != nil {
			return fail(c, "cover file required", fmt.Errorf("%v: %w", err, services.ErrValidation))
		}
		url, err := d.Images.UploadImage(c.UserContext(), fileHeader, "covers", course.ID)
		if err != nil {
			return fail(c, "cover upload failed", fmt.Errorf("%v: %w", err, services.ErrValidation))
		}
		if err := d.Courses.SetCoverURL(c.UserContext(), course.ID, url); err != nil {
			return fail(c, "failed to save cover", err)
		}
		return c.JSON(fiber.Map{"cover_url": url})
	})
}

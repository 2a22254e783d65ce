package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"

	"coding-edu-platform/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ImageStore uploads images and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, prefix, owner string) (string, error)
}

// bindJSON parses the body into req and runs its validate tags.
func bindJSON(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("invalid JSON: %v: %w", err, services.ErrValidation)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, services.ErrValidation)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes {"error", "cause"} with the status mapped from err. Server
// errors are logged and answered without a cause.
func fail(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ [HTTP] %s %s: %s: %v", c.Method(), c.Path(), msg, err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

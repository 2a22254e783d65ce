package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"coding-edu-platform/services"

	"github.com/gofiber/fiber/v2"
)

func TestFail(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return fail(c, "failed to load", errors.New(`relation "users" does not exist`))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fail(c, "failed to load", fmt.Errorf("roadmap x: %w", services.ErrNotFound))
	})

	tests := []struct {
		path      string
		status    int
		wantCause bool
	}{
		{"/internal", fiber.StatusInternalServerError, false},
		{"/missing", fiber.StatusNotFound, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != "failed to load" {
				t.Errorf("unexpected error %q", body["error"])
			}
			if _, ok := body["cause"]; ok != tt.wantCause {
				t.Fatalf("cause present=%v, want %v (%v)", ok, tt.wantCause, body)
			}
		})
	}
}

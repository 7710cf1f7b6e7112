// Package http exposes the review services over fiber.
package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/infra/middleware"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
)

// requireUser returns the authenticated user or an Unauthorized error.
func requireUser(c *fiber.Ctx) (uuid.UUID, error) {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		return uuid.Nil, apperr.Unauthorized("인증이 필요합니다.")
	}
	return id, nil
}

// billedContext attaches the caller to the request context so model calls
// are logged against them.
func billedContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if id := middleware.UserID(c); id != uuid.Nil {
		ctx = usage.WithUser(ctx, id)
	}
	return ctx
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	return nil
}

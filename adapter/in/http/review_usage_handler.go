package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/response"
)

type UsageHandler struct {
	service in.UsageService
}

func NewUsageHandler(service in.UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

func (h *UsageHandler) Register(router fiber.Router) {
	router.Get("/usage", h.Stats)
}

// Stats returns today's and this month's usage with the caller's quota.
// GET /api/v1/usage
func (h *UsageHandler) Stats(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return apperr.DatabaseError("usage stats", err)
	}
	return response.OK(c, stats)
}

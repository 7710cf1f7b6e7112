package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/service/reply"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/response"
)

// ReplyHandler handles reply drafting and history.
type ReplyHandler struct {
	service in.ReplyService
}

func NewReplyHandler(service in.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

func (h *ReplyHandler) Register(router fiber.Router) {
	replies := router.Group("/reply")
	replies.Post("/generate", h.Generate)
	replies.Get("/history", h.History)
}

type GenerateReplyRequest struct {
	ReviewContent string `json:"review_content"`
	BrandContext  string `json:"brand_context"`
	BrandTone     string `json:"brand_tone"`
	SaveHistory   *bool  `json:"save_history"` // defaults to true
}

// Generate drafts a reply for one review.
// POST /api/v1/reply/generate
func (h *ReplyHandler) Generate(c *fiber.Ctx) error {
	var req GenerateReplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ReviewContent) == "" {
		return apperr.MissingField("review_content")
	}
	if req.BrandTone != "" && !reply.IsBrandTone(req.BrandTone) {
		return apperr.ValidationFailed("unknown brand_tone: " + req.BrandTone)
	}

	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	opts := &in.ReplyOptions{
		UserID:       userID,
		BrandContext: req.BrandContext,
		BrandTone:    req.BrandTone,
		SaveHistory:  req.SaveHistory == nil || *req.SaveHistory,
	}

	result, err := h.service.GenerateReply(c.UserContext(), req.ReviewContent, opts)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// History lists the caller's saved replies, newest first.
// GET /api/v1/reply/history?limit=20
func (h *ReplyHandler) History(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	records, err := h.service.History(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, records, &response.Meta{Total: len(records)})
}

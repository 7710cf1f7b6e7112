package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/response"
)

// DefaultBatchMaxItems caps a batch request when no limit is configured.
const DefaultBatchMaxItems = 50

// SentimentHandler handles review analysis requests.
type SentimentHandler struct {
	service  in.SentimentService
	maxBatch int
}

func NewSentimentHandler(service in.SentimentService, maxBatch int) *SentimentHandler {
	if maxBatch <= 0 {
		maxBatch = DefaultBatchMaxItems
	}
	return &SentimentHandler{service: service, maxBatch: maxBatch}
}

func (h *SentimentHandler) Register(router fiber.Router) {
	sentiment := router.Group("/sentiment")
	sentiment.Post("/analyze", h.Analyze)
	sentiment.Post("/batch", h.Batch)
}

type AnalyzeRequest struct {
	ReviewContent string `json:"review_content"`
}

type BatchRequest struct {
	Reviews []string `json:"reviews"`
}

// BatchResult is one entry of a batch response. Exactly one of Result and
// Error is set.
type BatchResult struct {
	Index  int                    `json:"index"`
	Result *domain.AnalysisResult `json:"result,omitempty"`
	Error  *BatchError            `json:"error,omitempty"`
}

type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Analyze analyzes one review.
// POST /api/v1/sentiment/analyze
func (h *SentimentHandler) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ReviewContent) == "" {
		return apperr.MissingField("review_content")
	}

	result, err := h.service.Analyze(billedContext(c), req.ReviewContent)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Batch analyzes up to maxBatch reviews; items fail independently.
// POST /api/v1/sentiment/batch
func (h *SentimentHandler) Batch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.Reviews) == 0 {
		return apperr.MissingField("reviews")
	}
	if len(req.Reviews) > h.maxBatch {
		return apperr.ValidationFailed(fmt.Sprintf("too many reviews: %d (max %d)", len(req.Reviews), h.maxBatch)).
			WithDetail("max_items", h.maxBatch)
	}

	items := h.service.AnalyzeBatch(billedContext(c), req.Reviews)

	results := make([]BatchResult, len(items))
	meta := &response.Meta{Total: len(items)}
	for i, item := range items {
		results[i] = BatchResult{Index: item.Index, Result: item.Result}
		if item.Err != nil {
			appErr := apperr.AsAppError(item.Err)
			results[i].Result = nil
			results[i].Error = &BatchError{Code: appErr.Code, Message: appErr.Message}
			meta.Failed++
			continue
		}
		meta.Succeeded++
	}
	return response.OKWithMeta(c, results, meta)
}

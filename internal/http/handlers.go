package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobfetch/internal/config"
	"jobfetch/internal/services"
)

// validateRequestURL accepts only absolute http/https URLs with a
// host, so obviously broken input never reaches the cascade.
func validateRequestURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	return nil
}

// extractJobHandler implements POST /v1/jobs/extract: one URL in, a
// structured posting out.
func extractJobHandler(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ExtractResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ExtractResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'url'",
		})
	}
	if err := validateRequestURL(rawURL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ExtractResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_URL",
			Error:   err.Error(),
		})
	}

	svc := c.Locals("extract_service").(services.JobExtractService)
	posting, err := svc.Extract(c.Context(), rawURL)
	if err != nil {
		status, code := statusForError(err)
		return c.Status(status).JSON(ExtractResponse{
			Success: false,
			Code:    code,
			Error:   err.Error(),
		})
	}

	return c.JSON(ExtractResponse{Success: true, Posting: posting})
}

// batchExtractHandler implements POST /v1/jobs/extract/batch. The
// response is always 200 when the batch ran; per-URL failures live in
// the results slice.
func batchExtractHandler(c *fiber.Ctx) error {
	var req BatchExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(BatchExtractResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if len(req.URLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(BatchExtractResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'urls'",
		})
	}

	cfg := c.Locals("config").(*config.Config)
	if max := cfg.Batch.MaxURLs; max > 0 && len(req.URLs) > max {
		return c.Status(fiber.StatusBadRequest).JSON(BatchExtractResponse{
			Success: false,
			Code:    "BATCH_TOO_LARGE",
			Error:   fmt.Sprintf("Batch exceeds %d URLs", max),
		})
	}

	for i, raw := range req.URLs {
		trimmed := strings.TrimSpace(raw)
		if err := validateRequestURL(trimmed); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(BatchExtractResponse{
				Success: false,
				Code:    "BAD_REQUEST_INVALID_URL",
				Error:   fmt.Sprintf("Invalid URL at index %d", i),
			})
		}
		req.URLs[i] = trimmed
	}

	svc := c.Locals("batch_service").(services.BatchExtractService)
	results := svc.ExtractBatch(c.Context(), req.URLs)

	return c.JSON(BatchExtractResponse{Success: true, Results: results})
}

// attemptsHandler implements GET /v1/attempts, newest first.
func attemptsHandler(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(AttemptsResponse{
				Success: false,
				Code:    "BAD_REQUEST",
				Error:   "limit must be a non-negative integer",
			})
		}
		limit = n
	}

	svc := c.Locals("attempts_service").(services.AttemptsService)
	attempts, err := svc.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(AttemptsResponse{
			Success: false,
			Code:    "ATTEMPTS_LOOKUP_FAILED",
			Error:   err.Error(),
		})
	}

	return c.JSON(AttemptsResponse{Success: true, Attempts: attempts})
}

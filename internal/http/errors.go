package http

import (
	"github.com/gofiber/fiber/v2"

	"jobfetch/internal/extract"
)

// statusForError maps pipeline error kinds to an HTTP status and a
// stable machine-readable code. Unknown errors are internal.
func statusForError(err error) (int, string) {
	kind, ok := extract.KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
	switch kind {
	case extract.KindNotExtractable:
		return fiber.StatusBadRequest, "BAD_REQUEST_INVALID_URL"
	case extract.KindUnscrapableAggregator:
		return fiber.StatusUnprocessableEntity, "AGGREGATOR_UNSUPPORTED"
	case extract.KindKnownBlockedSite:
		return fiber.StatusUnprocessableEntity, "SITE_BLOCKED"
	case extract.KindValidationRejected:
		return fiber.StatusUnprocessableEntity, "CONTENT_REJECTED"
	case extract.KindParseFailure:
		return fiber.StatusUnprocessableEntity, "PARSE_FAILED"
	case extract.KindAllTiersExhausted:
		return fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

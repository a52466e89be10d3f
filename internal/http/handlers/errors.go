// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The constants give clients a stable, machine-readable taxonomy
// that supplements the human-readable message in the error envelope.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes cover outcomes a status alone cannot convey, such
//     as the difference between "the generation backend is down" and "the
//     backend answered but produced nothing usable".
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeRecipeUnavailable    = "recipe_unavailable"
	ErrCodeAssistantUnavailable = "assistant_unavailable"
	ErrCodeAnswerFailed         = "answer_failed"
	ErrCodeListFailed           = "list_failed"
	ErrCodeExportFailed         = "export_failed"
)

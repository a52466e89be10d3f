// Package services defines the business logic of the recipe assistant. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes should be performed at the
// handler layer.
package services

import "errors"

var (
	// ErrEmptyQuery is returned when a request contains an empty or
	// whitespace-only query. The generation pipeline is never invoked for
	// such queries.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryTooLong is returned when a query exceeds the maximum
	// configured length limit.
	ErrQueryTooLong = errors.New("query too long")

	// ErrAssistantUnavailable indicates the completion service could not be
	// reached or refused the request: the caller could not even ask for a
	// new recipe. Distinct from ErrNoRecipe.
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	// ErrNoRecipe indicates that no catalog match existed and the generated
	// completion could not be turned into a valid recipe. The catalog is
	// unchanged.
	ErrNoRecipe = errors.New("could not produce a recipe for this query")

	// ErrSessionNotFound indicates an export was requested for a session id
	// with no recorded turns.
	ErrSessionNotFound = errors.New("session not found")
)

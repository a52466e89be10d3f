// Package llm turns a free-text query into a validated, persisted recipe by
// prompting an external text-completion service and parsing its reply. This
// file centralizes the pipeline's error values so callers can distinguish a
// service outage ("could not ask") from an unusable completion ("asked, but
// no recipe came back").
package llm

import "errors"

var (
	// ErrService indicates the completion service was unreachable or refused
	// the request. Transport failures are wrapped with this sentinel and
	// surfaced unchanged; retry policy belongs to the transport, not here.
	ErrService = errors.New("completion service unavailable")

	// ErrGenerationFormat indicates the completion could not be decomposed
	// into the required recipe fields even after repair. Nothing is persisted
	// when this is returned.
	ErrGenerationFormat = errors.New("generated text is not a parsable recipe")
)

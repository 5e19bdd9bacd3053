package domain

import "errors"

var (
	// ErrModelUnavailable reports that the inference service cannot serve a
	// required model even after an availability check. Fatal to the turn.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrRetrieval reports a failed vector-index query. Recovered inside the
	// tools stage and turned into a search_error message.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrMalformedToolRequest reports tool arguments that failed validation.
	// Treated as "no search", never surfaced to the user.
	ErrMalformedToolRequest = errors.New("malformed tool request")

	// ErrEmptyDocument reports an ingestion attempt on text that produced
	// zero chunks.
	ErrEmptyDocument = errors.New("document text is empty")
)

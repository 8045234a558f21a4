package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedDocument indicates the input bytes are not a parsable
	// PDF. Fatal to that ingestion call; no partial catalog write occurs.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidQuery indicates an empty or whitespace-only search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIngestInProgress indicates an ingestion is already running for
	// the same document. At most one ingestion may be in flight per
	// document id; concurrent re-ingestion is rejected, not queued.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")
)

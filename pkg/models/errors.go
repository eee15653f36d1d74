package models

import "errors"

// Error taxonomy shared by every source. Call sites wrap these with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
var (
	// ErrInvalidDate is returned when a date string matches no known pattern.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidCode is returned when a series code has the wrong shape for its source.
	ErrInvalidCode = errors.New("invalid code")

	// ErrUnknownMetadataField is returned when an OData query names a field
	// outside the IPEA metadata catalog.
	ErrUnknownMetadataField = errors.New("unknown metadata field")

	// ErrDisallowedLocation is returned when a SIDRA request targets a
	// territorial level the aggregate does not publish.
	ErrDisallowedLocation = errors.New("disallowed location")

	// ErrTransport is returned when the HTTP request fails after retries.
	ErrTransport = errors.New("transport error")

	// ErrInvalidPayload is returned when a response body cannot be decoded
	// or lacks the expected shape.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrNoResults is returned when a search or metadata lookup comes back empty.
	ErrNoResults = errors.New("no results")

	// ErrOversizedQuery is returned when SIDRA rejects a request as too large.
	ErrOversizedQuery = errors.New("oversized query")
)

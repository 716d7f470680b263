package ingest

import "errors"

// Error taxonomy of the projection engine. Handlers match with errors.Is and
// map every member to a structured error response; anything else is treated
// as an internal fault.
var (
	// ErrMalformedReference is returned when a cross-reference string does
	// not carry an identifier in the expected trailing position.
	ErrMalformedReference = errors.New("malformed reference")

	// ErrMalformedTimestamp is returned for date or datetime strings that
	// cannot be parsed.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrUnsupportedVariant is returned for a recognized resource kind whose
	// internal shape is not handled (dosing pattern, activity status,
	// observation value shape). Rejecting loudly beats guessing.
	ErrUnsupportedVariant = errors.New("unsupported resource variant")

	// ErrUnrecognizedKind is returned for a resourceType outside the
	// handled set.
	ErrUnrecognizedKind = errors.New("unrecognized resource kind")

	// ErrDanglingReference is returned by the preflight pass when an entry
	// references a patient, encounter or condition that no entry of the
	// bundle declares.
	ErrDanglingReference = errors.New("dangling reference")
)

// Recognized reports whether err belongs to the ingestion error taxonomy,
// i.e. describes a problem with the submitted bundle rather than with this
// service or its storage.
func Recognized(err error) bool {
	return errors.Is(err, ErrMalformedReference) ||
		errors.Is(err, ErrMalformedTimestamp) ||
		errors.Is(err, ErrUnsupportedVariant) ||
		errors.Is(err, ErrUnrecognizedKind) ||
		errors.Is(err, ErrDanglingReference)
}

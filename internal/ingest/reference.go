package ingest

import (
	"fmt"
	"strings"
)

// refIDSegment is the position of the bare identifier within a reference
// string of the form "urn:uuid:<id>".
const refIDSegment = 2

// RefID extracts the bare identifier from a colon-separated reference
// string. The synthetic dataset encodes every cross-reference as
// "urn:uuid:<id>", so the identifier always sits in the third segment.
func RefID(ref string) (string, error) {
	parts := strings.Split(ref, ":")
	if len(parts) <= refIDSegment {
		return "", fmt.Errorf("%w: %q has %d segments, need at least %d",
			ErrMalformedReference, ref, len(parts), refIDSegment+1)
	}
	return parts[refIDSegment], nil
}

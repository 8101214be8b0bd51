package export

import "errors"

// Export errors.
var (
	// ErrOpenIntervals is returned when a document is serialized before the
	// episode was finalized and its open intervals terminated.
	ErrOpenIntervals = errors.New("document has open intervals; finalize before serializing")

	// ErrUnsupportedFormat is returned for unknown output formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

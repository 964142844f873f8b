package gpx

import (
	"fmt"

	"github.com/planbiir/gpxkit/internal/gpxfield"
)

// SemanticError is returned for documents or requests that break a GPX rule
type SemanticError = gpxfield.SemanticError

// SyntaxError wraps a failure of the XML backend
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid GPX document: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func semanticf(format string, args ...any) error {
	return gpxfield.Semanticf(format, args...)
}

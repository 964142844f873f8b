package gpxfield

import (
	"fmt"
	"strings"
)

// SemanticError is a well-formed document or request that breaks a GPX rule:
// a missing mandatory field, a value outside its enumeration, a malformed
// number, an unsupported version or conflicting arguments.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string {
	return e.Msg
}

// Semanticf builds a SemanticError
func Semanticf(format string, args ...any) *SemanticError {
	return &SemanticError{Msg: fmt.Sprintf(format, args...)}
}

// SchemaError reports a defect in a field table. It never depends on
// document content.
type SchemaError struct {
	Entity   string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("inconsistent schema for %s: %s", e.Entity, strings.Join(e.Problems, "; "))
}

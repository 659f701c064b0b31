// Package diagnostic formats reader errors with their source
// location. It is the one error family that has a position to report
// before any heap value exists to attach it to — analyzer, evaluator,
// and heap failures carry their context through internal/errors
// instead, and surface alongside read errors at the CLI boundary via
// errors.Message.
package diagnostic

import (
	"fmt"

	"github.com/oxischeme/oxischeme/internal/position"
)

// Diagnostic is a single reported read error.
type Diagnostic struct {
	Message string
	Span    position.Span
	HasSpan bool
}

// PlainString renders the diagnostic's position and message with no
// level prefix, so the CLI boundary can apply the spec's "Error: "
// prefix uniformly across every error family, not just this one.
func (d Diagnostic) PlainString() string {
	if d.HasSpan && d.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", d.Span.Start.String(), d.Message)
	}

	return d.Message
}

// ReadError reports a malformed external form from the reader.
func ReadError(span position.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		HasSpan: true,
	}
}

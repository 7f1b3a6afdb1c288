package types

import "sort"

// Span is a half-open byte range [Start, End) in a source file.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// NewSpan returns the span [start, end).
func NewSpan(start, end uint32) Span { return Span{Start: start, End: end} }

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset uint32) bool { return s.Start <= offset && offset < s.End }

// Len returns the span width in bytes.
func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Cover returns the smallest span enclosing both s and o.
func (s Span) Cover(o Span) Span {
	if o.Start < s.Start {
		s.Start = o.Start
	}
	if o.End > s.End {
		s.End = o.End
	}
	return s
}

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured finding. Checking never fails on malformed
// input; it reports diagnostics and keeps going.
type Diagnostic struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Span     *Span    `json:"span,omitempty"`
	Severity Severity `json:"severity"`
}

// ErrAt returns an error diagnostic anchored at span.
func ErrAt(code, message string, span Span) Diagnostic {
	return Diagnostic{Code: code, Message: message, Span: &span, Severity: SeverityError}
}

// Err returns an error diagnostic with no source anchor.
func Err(code, message string) Diagnostic {
	return Diagnostic{Code: code, Message: message, Severity: SeverityError}
}

// WarnAt returns a warning diagnostic anchored at span.
func WarnAt(code, message string, span Span) Diagnostic {
	return Diagnostic{Code: code, Message: message, Span: &span, Severity: SeverityWarning}
}

// Warn returns a warning diagnostic with no source anchor.
func Warn(code, message string) Diagnostic {
	return Diagnostic{Code: code, Message: message, Severity: SeverityWarning}
}

// SortDiagnostics orders diagnostics by start offset then message, with
// spanless diagnostics last. The order is stable across runs.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		switch {
		case a.Span == nil && b.Span == nil:
			return a.Message < b.Message
		case a.Span == nil:
			return false
		case b.Span == nil:
			return true
		case a.Span.Start != b.Span.Start:
			return a.Span.Start < b.Span.Start
		default:
			return a.Message < b.Message
		}
	})
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

package save

import "fmt"

// StructuralError reports malformed input that the parser cannot recover
// from: unbalanced braces, truncated binary records, corrupt section
// headers. Offset is the byte position within the parsed data.
type StructuralError struct {
	Message string
	Offset  int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("save: %s at offset %d", e.Message, e.Offset)
}

func structural(offset int, format string, args ...any) *StructuralError {
	return &StructuralError{Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Warning reports a recoverable oddity found during parsing, such as a
// binary field token the resolver does not know. The parse continues and
// the result remains usable.
type Warning struct {
	Message string
	Offset  int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at offset %d", w.Message, w.Offset)
}

// ParseResult is a parsed section body plus any warnings produced while
// building it.
type ParseResult struct {
	Object   *Object
	Warnings []Warning
}

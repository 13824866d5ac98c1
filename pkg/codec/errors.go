package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrMalformedHeader    = errors.New("malformed header")
	ErrTruncatedRecord    = errors.New("truncated record")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrInvalidString      = errors.New("invalid string")
	ErrUnencodableValue   = errors.New("unencodable value")
	ErrSchemaMismatch     = errors.New("schema mismatch")
)

// FormatError locates a codec failure inside the binary or text form.
// Offset, Record and Field are -1/empty when not applicable.
type FormatError struct {
	Kind   error
	Offset int64
	Record int
	Field  string
	Detail string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Record >= 0 {
		fmt.Fprintf(&b, ": record %d", e.Record)
		if e.Field != "" {
			fmt.Fprintf(&b, " field %q", e.Field)
		}
	} else if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (at offset 0x%x)", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func headerError(offset int64, format string, args ...any) error {
	return &FormatError{Kind: ErrMalformedHeader, Offset: offset, Record: -1, Detail: fmt.Sprintf(format, args...)}
}

func recordError(kind error, record int, field string, offset int64, format string, args ...any) error {
	return &FormatError{Kind: kind, Offset: offset, Record: record, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// SchemaError reports a text-form field that does not match the schema.
// Record is -1 for document-level problems.
func SchemaError(record int, field string, format string, args ...any) error {
	return &FormatError{Kind: ErrSchemaMismatch, Offset: -1, Record: record, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the codec error kind wrapped by err, or nil
func KindOf(err error) error {
	for _, kind := range []error{
		ErrMalformedHeader,
		ErrTruncatedRecord,
		ErrUnterminatedString,
		ErrInvalidString,
		ErrUnencodableValue,
		ErrSchemaMismatch,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

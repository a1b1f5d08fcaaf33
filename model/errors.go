package model

import "fmt"

// ErrorKind classifies a per-record parse failure.
type ErrorKind string

const (
	// MalformedHeader marks a header line that is neither a field, a
	// continuation, nor blank. The line is skipped, the record survives.
	MalformedHeader ErrorKind = "malformed_header"
	// EncodingError marks a record whose text was not valid UTF-8 and was
	// re-decoded with a fallback charset.
	EncodingError ErrorKind = "encoding_error"
	// DelimiterAmbiguity marks content recovered without a valid "From "
	// delimiter, kept as a best-effort record.
	DelimiterAmbiguity ErrorKind = "delimiter_ambiguity"
	// CriticalParseFailure marks a record that could not be converted to a
	// Message at all. The record is excluded; the parse continues.
	CriticalParseFailure ErrorKind = "critical_parse_failure"
)

// ParseError tags one record index with a classification and cause. Only
// CriticalParseFailure drops the record; every other kind is recoverable.
type ParseError struct {
	Record int
	Kind   ErrorKind
	Cause  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Record, e.Kind, e.Cause)
}

func (e ParseError) Recoverable() bool {
	return e.Kind != CriticalParseFailure
}

// ExportError reports a single export entry that could not be honored, such
// as an overlay edit naming an unknown message. Other entries still export.
type ExportError struct {
	MessageID string
	Cause     string
}

func (e ExportError) Error() string {
	return fmt.Sprintf("export %s: %s", e.MessageID, e.Cause)
}

package model

import "time"

// SubjectPlaceholder is the subject assigned to messages whose Subject
// header is missing or empty.
const SubjectPlaceholder = "(no subject)"

// Envelope holds the pieces of the mbox "From " delimiter line so the
// exporter can reproduce it.
type Envelope struct {
	// Sender is the envelope sender token following "From ".
	Sender string
	// Date is the free-form trailer after the sender token, usually an
	// asctime date. Empty when the delimiter carried none.
	Date string
}

// Body is the message text following the header block. Raw keeps the
// ">From "-stuffed form as framed; Text is the unescaped form shown to
// callers and re-escaped on export.
type Body struct {
	Raw  string
	Text string
}

// Metadata is a derived, read-only view over a message's header table.
type Metadata struct {
	Subject    string
	From       []string
	To         []string
	Cc         []string
	Date       time.Time
	InReplyTo  string
	References []string
}

// Message is one parsed mbox record. Messages are never mutated after the
// parse; export-time edits live in an EditOverlay instead.
type Message struct {
	// ID is assigned by the engine, unique per parse call.
	ID       string
	Envelope Envelope
	Headers  *HeaderTable
	Body     Body
	Meta     Metadata
	// Size is the byte length of the record span in the normalized
	// container, delimiter line included.
	Size int64
}

// EditOverlay maps a message ID to header replacements applied during
// export. An entry replaces the full value list of its header name with the
// single given value.
type EditOverlay map[string]map[string]string

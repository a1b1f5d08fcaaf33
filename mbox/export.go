package mbox

import (
	"strings"
	"time"

	"github.com/kjans/mboxkit/model"
)

// syntheticSender labels delimiter lines for records that were recovered
// without an envelope, matching long-standing mbox practice.
const syntheticSender = "MAILER-DAEMON"

// Export reconstructs an mbox container from the given messages in order,
// applying overlay header edits. An overlay edit replaces the full value
// list of its header name with the single new value; it never merges.
// Messages themselves are not mutated. Overlay entries naming a message
// outside the selection are reported per entry and do not block the rest.
//
// Export is pure and synchronous: re-parsing its output yields messages
// whose headers (after overlay) and body text equal the inputs, identifiers
// aside.
func Export(messages []*model.Message, overlay model.EditOverlay) ([]byte, []model.ExportError) {
	var exportErrs []model.ExportError
	if len(overlay) > 0 {
		selected := make(map[string]bool, len(messages))
		for _, msg := range messages {
			selected[msg.ID] = true
		}
		for id := range overlay {
			if !selected[id] {
				exportErrs = append(exportErrs, model.ExportError{
					MessageID: id,
					Cause:     "overlay edit references a message outside the selection",
				})
			}
		}
	}

	var b strings.Builder
	for _, msg := range messages {
		writeRecord(&b, msg, overlay[msg.ID])
	}
	return []byte(b.String()), exportErrs
}

func writeRecord(b *strings.Builder, msg *model.Message, edits map[string]string) {
	b.WriteString(delimiterLine(msg))
	b.WriteByte('\n')

	headers := msg.Headers
	if len(edits) > 0 {
		headers = headers.Clone()
		for name, value := range edits {
			headers.Set(name, value)
		}
	}
	// One physical line per value, original relative order and name casing.
	// Re-folding is not required; the parser unfolds either form.
	for _, f := range headers.Fields() {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	body := escapeBody(msg.Body.Text)
	b.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	// Separator blank line; the next delimiter must follow a blank line.
	b.WriteByte('\n')
}

// delimiterLine reuses the original envelope when present and synthesizes a
// minimal valid delimiter otherwise.
func delimiterLine(msg *model.Message) string {
	sender := msg.Envelope.Sender
	date := msg.Envelope.Date
	if sender == "" {
		sender = syntheticSender
	}
	if date == "" {
		ts := msg.Meta.Date
		if ts.IsZero() {
			ts = time.Unix(0, 0)
		}
		date = ts.UTC().Format(time.ANSIC)
	}
	return "From " + sender + " " + date
}

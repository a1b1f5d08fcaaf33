package mbox

import (
	"strings"

	"github.com/kjans/mboxkit/model"
)

// rawRecord is one message span in the normalized container, delimiter line
// included. A recovered leading record without a delimiter has delim == "".
type rawRecord struct {
	index int
	text  string
	delim string
}

// isDelimiter reports whether line matches the mbox record delimiter shape:
// "From " followed immediately by a non-whitespace sender token. Callers
// must additionally apply the blank-line boundary rule.
func isDelimiter(line string) bool {
	rest, ok := strings.CutPrefix(line, "From ")
	if !ok || rest == "" {
		return false
	}
	return rest[0] != ' ' && rest[0] != '\t'
}

// splitDelimiter breaks a delimiter line into the sender token and the
// free-form date trailer.
func splitDelimiter(delim string) model.Envelope {
	rest, ok := strings.CutPrefix(delim, "From ")
	if !ok {
		return model.Envelope{}
	}
	sender, date, found := strings.Cut(rest, " ")
	if !found {
		return model.Envelope{Sender: rest}
	}
	return model.Envelope{Sender: sender, Date: strings.TrimSpace(date)}
}

// frame splits normalized container text into record spans. A line opens a
// new record iff it matches the delimiter shape and is either the first
// line of the container or immediately preceded by a blank line; everything
// else, blank lines included, belongs to the open record. Content before
// the first delimiter is recovered as a malformed record rather than
// aborting the parse. frame is stateless across calls.
func frame(text string) ([]rawRecord, []model.ParseError) {
	var (
		records []rawRecord
		errs    []model.ParseError
		cur     strings.Builder
		delim   string
		open    bool
	)

	flush := func() {
		if !open {
			return
		}
		records = append(records, rawRecord{index: len(records), text: cur.String(), delim: delim})
		cur.Reset()
		open = false
	}

	first := true
	prevBlank := false
	pos := 0
	for pos < len(text) {
		var line string
		if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
			line = text[pos : pos+nl]
			pos += nl + 1
		} else {
			line = text[pos:]
			pos = len(text)
		}

		switch {
		case isDelimiter(line) && (first || prevBlank):
			flush()
			open = true
			delim = line
		case isDelimiter(line):
			// A body line that happens to start with "From " without a
			// blank-line boundary stays body text.
			errs = append(errs, model.ParseError{
				Record: len(records),
				Kind:   model.DelimiterAmbiguity,
				Cause:  `"From " line without preceding blank line kept as body text`,
			})
		case !open && line != "":
			// Container does not open with a delimiter: isolate the
			// leading content as a best-effort record and continue.
			open = true
			delim = ""
			errs = append(errs, model.ParseError{
				Record: len(records),
				Kind:   model.DelimiterAmbiguity,
				Cause:  "content before first delimiter recovered as record",
			})
		case !open:
			// Blank lines before the first record carry nothing.
			first = false
			prevBlank = true
			continue
		}

		cur.WriteString(line)
		cur.WriteByte('\n')
		prevBlank = line == ""
		first = false
	}
	flush()

	return records, errs
}

// delimiterMatches counts the records opened by a true delimiter line.
func delimiterMatches(records []rawRecord) int {
	n := 0
	for _, r := range records {
		if r.delim != "" {
			n++
		}
	}
	return n
}

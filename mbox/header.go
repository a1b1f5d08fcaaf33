package mbox

import (
	"strings"

	"github.com/kjans/mboxkit/model"
)

// parseHeaderBlock consumes the header block at the start of content (the
// record text with its delimiter line already removed). It returns the
// ordered header table, the offset where the body begins, and any
// recoverable errors. A name occurring N times yields N table entries in
// source order.
//
// Rules, per RFC 5322 unfolding semantics: a "name: value" line starts a
// field (the name must contain no whitespace); a line opening with space or
// tab continues the in-progress field, its content joined by a single
// space; a blank line ends the block and starts the body; anything else is
// a malformed fragment that is flagged and skipped without failing the
// record.
func parseHeaderBlock(content string, record int) (*model.HeaderTable, int, []model.ParseError) {
	table := model.NewHeaderTable()
	var errs []model.ParseError

	var curName, curValue string
	inField := false
	finalize := func() {
		if !inField {
			return
		}
		table.Add(curName, strings.TrimSpace(curValue))
		inField = false
	}

	pos := 0
	for pos < len(content) {
		var line string
		next := len(content)
		if nl := strings.IndexByte(content[pos:], '\n'); nl >= 0 {
			line = content[pos : pos+nl]
			next = pos + nl + 1
		} else {
			line = content[pos:]
		}

		if line == "" {
			// Blank line: header block ends, body follows.
			finalize()
			return table, next, errs
		}

		if line[0] == ' ' || line[0] == '\t' {
			if inField {
				curValue += " " + strings.TrimLeft(line, " \t")
				pos = next
				continue
			}
			errs = append(errs, model.ParseError{
				Record: record,
				Kind:   model.MalformedHeader,
				Cause:  "continuation line without an open header field",
			})
			pos = next
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found || name == "" || strings.ContainsAny(name, " \t") {
			errs = append(errs, model.ParseError{
				Record: record,
				Kind:   model.MalformedHeader,
				Cause:  "header line is neither a field nor a continuation: " + line,
			})
			pos = next
			continue
		}

		finalize()
		curName = name
		curValue = strings.TrimSpace(value)
		inField = true
		pos = next
	}

	// Ran out of lines without a blank separator: headers only, no body.
	finalize()
	return table, len(content), errs
}

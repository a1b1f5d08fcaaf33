package mbox

import (
	"net/mail"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/kjans/mboxkit/model"
)

// extractMetadata derives the typed view over a finalized header table. It
// is a pure function: failures degrade to absent values, never errors.
func extractMetadata(t *model.HeaderTable) model.Metadata {
	m := model.Metadata{
		Subject:    strings.TrimSpace(t.Get("Subject")),
		From:       parseAddressList(t.Get("From")),
		To:         parseAddressList(t.Get("To")),
		Cc:         parseAddressList(t.Get("Cc")),
		InReplyTo:  strings.TrimSpace(t.Get("In-Reply-To")),
		References: parseReferences(t.Get("References")),
	}
	if m.Subject == "" {
		m.Subject = model.SubjectPlaceholder
	}
	if date := t.Get("Date"); date != "" {
		if ts, err := mail.ParseDate(date); err == nil {
			m.Date = ts
		} else if ts, err := dateparse.ParseAny(date); err == nil {
			m.Date = ts
		}
	}
	return m
}

// parseAddressList extracts the bare address of each comma-delimited entry.
// Commas inside quoted display names do not split. An entry with no
// recognizable address is kept as its raw trimmed text rather than dropped.
func parseAddressList(list string) []string {
	var out []string
	for _, entry := range splitQuoted(list, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out = append(out, extractAddress(entry))
	}
	return out
}

// splitQuoted splits s on sep, ignoring separators inside double quotes.
func splitQuoted(s string, sep byte) []string {
	var parts []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case sep:
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func extractAddress(entry string) string {
	if open := strings.LastIndexByte(entry, '<'); open >= 0 {
		if end := strings.IndexByte(entry[open:], '>'); end > 1 {
			return strings.TrimSpace(entry[open+1 : open+end])
		}
	}
	if addr, err := mail.ParseAddress(entry); err == nil {
		return addr.Address
	}
	return entry
}

// parseReferences returns the angle-bracketed tokens of a References value,
// order and duplicates preserved.
func parseReferences(value string) []string {
	var refs []string
	for _, token := range strings.Fields(value) {
		if strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">") {
			refs = append(refs, token)
		}
	}
	return refs
}

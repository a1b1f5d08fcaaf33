package mbox

import "strings"

// normalizeLines reduces CRLF and bare CR line endings to LF. It runs once
// per parse call before any structural scanning and never changes bytes
// inside a line.
func normalizeLines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteByte('\n')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

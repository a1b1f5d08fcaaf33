package mbox

import "strings"

// The mboxrd stuffing convention: a body line that would collide with the
// record delimiter carries one extra leading '>' on disk. Encoding adds
// exactly one '>' to every line matching ^(>*)From , decoding strips
// exactly one from every line matching ^(>+)From , so multi-level escapes
// survive and decode∘encode is the identity.

// stuffDepth returns the count of leading '>' characters and whether the
// line continues with "From " after them.
func stuffDepth(line string) (int, bool) {
	i := 0
	for i < len(line) && line[i] == '>' {
		i++
	}
	return i, strings.HasPrefix(line[i:], "From ")
}

// unescapeBody removes one level of '>' stuffing from every escaped
// delimiter-collision line.
func unescapeBody(body string) string {
	return mapLines(body, func(line string) string {
		if depth, from := stuffDepth(line); from && depth > 0 {
			return line[1:]
		}
		return line
	})
}

// escapeBody adds one level of '>' stuffing to every line that would
// otherwise collide with the record delimiter.
func escapeBody(body string) string {
	return mapLines(body, func(line string) string {
		if _, from := stuffDepth(line); from {
			return ">" + line
		}
		return line
	})
}

// mapLines applies fn per line, leaving line structure untouched.
func mapLines(body string, fn func(string) string) string {
	if body == "" {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

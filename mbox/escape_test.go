package mbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescapeBodyStripsOneLevel(t *testing.T) {
	body := ">From x\n>>From y\n>>>From z\n"
	assert.Equal(t, "From x\n>From y\n>>From z\n", unescapeBody(body))
}

func TestEscapeBodyAddsOneLevel(t *testing.T) {
	body := "From x\n>From y\n>>From z\n"
	assert.Equal(t, ">From x\n>>From y\n>>>From z\n", escapeBody(body))
}

func TestEscapeLeavesUnrelatedLinesAlone(t *testing.T) {
	body := "plain text\n> quoted reply\n>Fromage is cheese\nFromage too\n"
	assert.Equal(t, body, escapeBody(body))
	assert.Equal(t, body, unescapeBody(body))
}

func TestEscapeCodecIdempotence(t *testing.T) {
	bodies := []string{
		"",
		"\n",
		"hello\nworld\n",
		"From x\n",
		">From x\n>>From y\n",
		"From x\nmiddle\n>>>From deep\n",
		"no trailing newline",
		">From ",
	}

	for _, body := range bodies {
		assert.Equal(t, body, unescapeBody(escapeBody(body)), "unescape(escape(%q))", body)
	}

	// The inverse direction holds for well-formed mbox bodies, i.e. those
	// with no bare "From " line (such a line would have been a delimiter).
	wellFormed := []string{
		"",
		"hello\n",
		">From x\n>>From y\n",
		"> quoted\n",
	}
	for _, body := range wellFormed {
		assert.Equal(t, body, escapeBody(unescapeBody(body)), "escape(unescape(%q))", body)
	}
}

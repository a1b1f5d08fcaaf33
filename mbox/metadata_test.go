package mbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kjans/mboxkit/model"
)

func tableOf(pairs ...[2]string) *model.HeaderTable {
	t := model.NewHeaderTable()
	for _, p := range pairs {
		t.Add(p[0], p[1])
	}
	return t
}

func TestExtractMetadataSubject(t *testing.T) {
	meta := extractMetadata(tableOf([2]string{"Subject", "Hello"}))
	assert.Equal(t, "Hello", meta.Subject)

	meta = extractMetadata(tableOf())
	assert.Equal(t, model.SubjectPlaceholder, meta.Subject)

	meta = extractMetadata(tableOf([2]string{"Subject", "   "}))
	assert.Equal(t, model.SubjectPlaceholder, meta.Subject)
}

func TestParseAddressList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"bare", "alice@example.com", []string{"alice@example.com"}},
		{"display name", "Alice Doe <alice@example.com>", []string{"alice@example.com"}},
		{
			"quoted comma",
			`"Smith, John" <john@corp.example>, jane@example.org`,
			[]string{"john@corp.example", "jane@example.org"},
		},
		{
			"mixed forms",
			"a@x.org, Bob <b@y.org>, \"C, Inc.\" <c@z.org>",
			[]string{"a@x.org", "b@y.org", "c@z.org"},
		},
		{"fallback raw text", "undisclosed-recipients:;", []string{"undisclosed-recipients:;"}},
		{"empty entries dropped", "a@x.org, , b@y.org", []string{"a@x.org", "b@y.org"}},
		{"empty list", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAddressList(tt.in))
		})
	}
}

func TestParseReferences(t *testing.T) {
	refs := parseReferences("<a@x> <b@y>  <a@x>\n\t<c@z>")
	assert.Equal(t, []string{"<a@x>", "<b@y>", "<a@x>", "<c@z>"}, refs)

	assert.Empty(t, parseReferences("not-a-reference"))
	assert.Empty(t, parseReferences(""))
}

func TestExtractMetadataDate(t *testing.T) {
	meta := extractMetadata(tableOf([2]string{"Date", "Mon, 02 Jan 2006 15:04:05 -0700"}))
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	assert.True(t, meta.Date.Equal(want))

	// Non-RFC dates go through the lenient parser.
	meta = extractMetadata(tableOf([2]string{"Date", "2006-01-02T15:04:05Z"}))
	assert.False(t, meta.Date.IsZero())

	// Unparseable dates are absent, never an error.
	meta = extractMetadata(tableOf([2]string{"Date", "the day after the reorg"}))
	assert.True(t, meta.Date.IsZero())
}

func TestExtractMetadataThreading(t *testing.T) {
	meta := extractMetadata(tableOf(
		[2]string{"In-Reply-To", " <parent@x> "},
		[2]string{"References", "<root@x> <parent@x>"},
	))
	assert.Equal(t, "<parent@x>", meta.InReplyTo)
	assert.Equal(t, []string{"<root@x>", "<parent@x>"}, meta.References)
}

package mbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjans/mboxkit/model"
)

const twoRecordContainer = "From alice@example.com Mon Jan  2 15:04:05 2006\n" +
	"From: Alice <alice@example.com>\n" +
	"To: bob@example.com\n" +
	"Subject: First\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 -0700\n" +
	"\n" +
	"Hello Bob.\n" +
	"\n" +
	"From bob@example.com Tue Jan  3 10:00:00 2006\n" +
	"From: bob@example.com\n" +
	"Subject: Second\n" +
	"\n" +
	"Hi again.\n" +
	">From the archive.\n"

func mustParse(t *testing.T, input string, opts Options) *Result {
	t.Helper()
	res, err := Parse(context.Background(), []byte(input), opts, nil)
	require.NoError(t, err)
	return res
}

func TestParseTwoRecords(t *testing.T) {
	res := mustParse(t, twoRecordContainer, Options{})

	require.Len(t, res.Messages, 2)
	assert.Empty(t, res.Errors)

	first, second := res.Messages[0], res.Messages[1]
	assert.Equal(t, "First", first.Meta.Subject)
	assert.Equal(t, "Second", second.Meta.Subject)
	assert.Equal(t, "alice@example.com", first.Envelope.Sender)
	assert.Equal(t, []string{"alice@example.com"}, first.Meta.From)
	assert.Equal(t, []string{"bob@example.com"}, first.Meta.To)
	assert.Equal(t, "Hello Bob.\n", first.Body.Text)

	// The stuffed body line is unescaped once; the raw form is kept.
	assert.Equal(t, "Hi again.\nFrom the archive.\n", second.Body.Text)
	assert.Equal(t, "Hi again.\n>From the archive.\n", second.Body.Raw)

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParseConservation(t *testing.T) {
	// Messages plus critical failures always account for every delimiter
	// match the framer found.
	inputs := []string{
		twoRecordContainer,
		"",
		"From a@x Mon Jan  2 15:04:05 2006\n\nbody\n",
		"From a@x Mon Jan  2 15:04:05 2006\nSubject: one\n\nx\n\nFrom b@y Tue Jan  3 10:00:00 2006\n\ny\n",
	}

	for _, input := range inputs {
		res := mustParse(t, input, Options{})
		critical := 0
		for _, perr := range res.Errors {
			if perr.Kind == model.CriticalParseFailure {
				critical++
			}
		}
		assert.Equal(t, res.Stats.DelimiterMatches, len(res.Messages)+critical, "input %q", input)
	}
}

func TestParseCriticalFailureExcludesRecord(t *testing.T) {
	res := mustParse(t, twoRecordContainer, Options{MaxRecordSize: 16})

	assert.Empty(t, res.Messages)
	require.Len(t, res.Errors, 2)
	for _, perr := range res.Errors {
		assert.Equal(t, model.CriticalParseFailure, perr.Kind)
		assert.False(t, perr.Recoverable())
	}
	assert.Equal(t, 2, res.Stats.DelimiterMatches)
	assert.Equal(t, 0, res.Stats.TotalEmails)
	assert.Equal(t, int64(0), res.Stats.AvgEmailSize)
}

func TestParseMissingSubjectGetsPlaceholder(t *testing.T) {
	input := "From a@x Mon Jan  2 15:04:05 2006\n" +
		"To: b@y\n" +
		"\n" +
		"body\n"
	res := mustParse(t, input, Options{})
	require.Len(t, res.Messages, 1)
	assert.Equal(t, model.SubjectPlaceholder, res.Messages[0].Meta.Subject)
}

func TestParseMalformedHeaderIsRecoverable(t *testing.T) {
	input := "From a@x Mon Jan  2 15:04:05 2006\n" +
		"Subject: ok\n" +
		"ThisHasNoColon\n" +
		"To: b@y\n" +
		"\n" +
		"body\n"

	res := mustParse(t, input, Options{})
	require.Len(t, res.Messages, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, model.MalformedHeader, res.Errors[0].Kind)
	assert.True(t, res.Errors[0].Recoverable())

	msg := res.Messages[0]
	assert.Equal(t, "ok", msg.Meta.Subject)
	assert.Equal(t, "b@y", msg.Headers.Get("To"))
}

func TestParseEncodingFallback(t *testing.T) {
	input := "From a@x Mon Jan  2 15:04:05 2006\n" +
		"Subject: Caf\xe9\n" +
		"\n" +
		"body\n"

	res := mustParse(t, input, Options{})
	require.Len(t, res.Messages, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, model.EncodingError, res.Errors[0].Kind)
	assert.Equal(t, "Café", res.Messages[0].Meta.Subject)
}

func TestParseNormalizesLineEndings(t *testing.T) {
	input := "From a@x Mon Jan  2 15:04:05 2006\r\n" +
		"Subject: crlf\r\n" +
		"\r\n" +
		"body line\r\n"

	res := mustParse(t, input, Options{})
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "crlf", res.Messages[0].Meta.Subject)
	assert.Equal(t, "body line\n", res.Messages[0].Body.Text)
}

func TestParseEmptyContainer(t *testing.T) {
	res := mustParse(t, "", Options{})
	assert.Empty(t, res.Messages)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Stats.TotalEmails)
	assert.Equal(t, int64(0), res.Stats.TotalBytes)
	assert.Equal(t, int64(0), res.Stats.AvgEmailSize)
}

func TestParseStats(t *testing.T) {
	res := mustParse(t, twoRecordContainer, Options{})
	assert.Equal(t, 2, res.Stats.TotalEmails)
	assert.Equal(t, int64(len(twoRecordContainer)), res.Stats.TotalBytes)
	assert.Equal(t, int64(len(twoRecordContainer))/2, res.Stats.AvgEmailSize)
	assert.GreaterOrEqual(t, res.Stats.ParseTime.Nanoseconds(), int64(0))
}

func TestParseProgressNotifications(t *testing.T) {
	var notes []model.Progress
	_, err := Parse(context.Background(), []byte(twoRecordContainer), Options{ProgressEvery: 1}, func(p model.Progress) {
		notes = append(notes, p)
	})
	require.NoError(t, err)
	// Two per-record checkpoints plus the final notification.
	require.Len(t, notes, 3)

	for i := 1; i < len(notes); i++ {
		assert.GreaterOrEqual(t, notes[i].Records, notes[i-1].Records)
		assert.GreaterOrEqual(t, notes[i].Bytes, notes[i-1].Bytes)
		assert.GreaterOrEqual(t, notes[i].Percent, notes[i-1].Percent)
	}
	assert.Equal(t, float64(100), notes[len(notes)-1].Percent)
	assert.Equal(t, "Second", notes[len(notes)-1].Subject)
}

func TestParseCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res, err := Parse(ctx, []byte(twoRecordContainer), Options{ProgressEvery: 1}, func(model.Progress) {
		calls++
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestParseInputNotMutated(t *testing.T) {
	input := []byte(twoRecordContainer)
	snapshot := string(input)
	_ = mustParse(t, string(input), Options{})
	assert.Equal(t, snapshot, string(input))
}

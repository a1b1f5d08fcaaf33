package mbox

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/kjans/mboxkit/model"
)

const (
	// DefaultProgressEvery is the record interval between progress
	// notifications.
	DefaultProgressEvery = 100
	// DefaultMaxRecordSize caps a single record span. A span beyond the
	// cap cannot be converted and is excluded as a critical failure.
	DefaultMaxRecordSize = 64 << 20
)

// Options tunes a parse call. The zero value uses the defaults above.
type Options struct {
	ProgressEvery int
	MaxRecordSize int64
}

func (o Options) withDefaults() Options {
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if o.MaxRecordSize <= 0 {
		o.MaxRecordSize = DefaultMaxRecordSize
	}
	return o
}

// ProgressFunc receives parse progress notifications. It may be nil. Calls
// arrive on the parsing goroutine with monotonically increasing record and
// byte counts.
type ProgressFunc func(model.Progress)

// Result is the outcome of one parse call: messages in container order,
// non-fatal errors, and aggregate statistics.
type Result struct {
	Messages []*model.Message
	Errors   []model.ParseError
	Stats    model.ParseStats
}

// Parse converts an mbox container into structured messages. The input is
// never mutated; each call owns an independent working set, so concurrent
// calls do not interfere. No per-record error aborts the container: failed
// records are excluded and reported in Result.Errors. An empty container
// yields an empty result, not an error.
//
// Cancellation via ctx discards all in-flight state: Parse returns the
// context error, emits no further progress, and commits no partial result.
func Parse(ctx context.Context, data []byte, opts Options, progress ProgressFunc) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := normalizeLines(string(data))
	records, errs := frame(text)

	res := &Result{Errors: errs}
	var bytesDone int64
	lastSubject := ""

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, recErrs, err := parseRecord(rec, opts.MaxRecordSize)
		res.Errors = append(res.Errors, recErrs...)
		if err != nil {
			res.Errors = append(res.Errors, model.ParseError{
				Record: rec.index,
				Kind:   model.CriticalParseFailure,
				Cause:  err.Error(),
			})
		} else {
			res.Messages = append(res.Messages, msg)
			lastSubject = msg.Meta.Subject
		}

		bytesDone += int64(len(rec.text))
		if progress != nil && (i+1)%opts.ProgressEvery == 0 {
			progress(notification(i+1, bytesDone, int64(len(text)), lastSubject))
		}
	}

	if progress != nil {
		progress(model.Progress{
			Percent: 100,
			Records: len(records),
			Bytes:   bytesDone,
			Subject: lastSubject,
		})
	}

	res.Stats = model.ParseStats{
		TotalEmails:      len(res.Messages),
		TotalBytes:       int64(len(data)),
		DelimiterMatches: delimiterMatches(records),
		ParseTime:        time.Since(start),
	}
	if n := res.Stats.TotalEmails; n > 0 {
		res.Stats.AvgEmailSize = res.Stats.TotalBytes / int64(n)
	}

	return res, nil
}

func notification(records int, done, total int64, subject string) model.Progress {
	percent := float64(100)
	if total > 0 {
		percent = float64(done) * 100 / float64(total)
	}
	return model.Progress{Percent: percent, Records: records, Bytes: done, Subject: subject}
}

// parseRecord converts one framed span into a Message. Recoverable problems
// come back as ParseErrors alongside the message; a non-nil error means the
// record cannot be converted at all.
func parseRecord(rec rawRecord, maxSize int64) (*model.Message, []model.ParseError, error) {
	if int64(len(rec.text)) > maxSize {
		return nil, nil, fmt.Errorf("record span of %d bytes exceeds limit %d", len(rec.text), maxSize)
	}

	text := rec.text
	var errs []model.ParseError
	if !utf8.ValidString(text) {
		// Legacy 8-bit mail: re-decode the whole span as Windows-1252,
		// which covers every byte, and flag the substitution.
		decoded, err := charmap.Windows1252.NewDecoder().String(text)
		if err != nil {
			decoded = strings.ToValidUTF8(text, string(utf8.RuneError))
		}
		text = decoded
		errs = append(errs, model.ParseError{
			Record: rec.index,
			Kind:   model.EncodingError,
			Cause:  "record is not valid UTF-8, fell back to windows-1252",
		})
	}

	content := text
	var envelope model.Envelope
	if rec.delim != "" {
		envelope = splitDelimiter(rec.delim)
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			content = text[nl+1:]
		} else {
			content = ""
		}
	}

	headers, bodyStart, headerErrs := parseHeaderBlock(content, rec.index)
	errs = append(errs, headerErrs...)

	raw := trimRecordSeparator(content[bodyStart:])
	msg := &model.Message{
		ID:       uuid.NewString(),
		Envelope: envelope,
		Headers:  headers,
		Body:     model.Body{Raw: raw, Text: unescapeBody(raw)},
		Size:     int64(len(rec.text)),
	}
	msg.Meta = extractMetadata(headers)
	return msg, errs, nil
}

// trimRecordSeparator drops the blank line that separates a record from its
// successor. The framer keeps it inside the span; it is framing, not body.
func trimRecordSeparator(body string) string {
	if body == "\n" {
		return ""
	}
	if strings.HasSuffix(body, "\n\n") {
		return body[:len(body)-1]
	}
	return body
}

package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/kjans/mboxkit/model"
)

type EventType string

const (
	EventTypeParsed          EventType = "parsed"
	EventTypeMalformedHeader EventType = "malformed_header"
	EventTypeEncodingError   EventType = "encoding_error"
	EventTypeAmbiguity       EventType = "delimiter_ambiguity"
	EventTypeCritical        EventType = "critical_failure"
	EventTypeExported        EventType = "exported"
	EventTypeExportError     EventType = "export_error"
)

// Event is one observation on a session's stream.
type Event struct {
	Type      EventType
	MessageID string
	Record    int
	Subject   string
	Err       error
}

// EventForParseError maps an engine error onto the stream.
func EventForParseError(perr model.ParseError) Event {
	evt := Event{Record: perr.Record, Err: perr}
	switch perr.Kind {
	case model.MalformedHeader:
		evt.Type = EventTypeMalformedHeader
	case model.EncodingError:
		evt.Type = EventTypeEncodingError
	case model.DelimiterAmbiguity:
		evt.Type = EventTypeAmbiguity
	default:
		evt.Type = EventTypeCritical
	}
	return evt
}

type Summary struct {
	Parsed           int
	MalformedHeaders int
	EncodingErrors   int
	Ambiguities      int
	CriticalFailures int
	Exported         int
	ExportErrors     int
	LastError        error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"parsed", s.Parsed,
		"malformedHeaders", s.MalformedHeaders,
		"encodingErrors", s.EncodingErrors,
		"ambiguities", s.Ambiguities,
		"criticalFailures", s.CriticalFailures,
	}
	if s.Exported > 0 || s.ExportErrors > 0 {
		attrs = append(attrs, "exported", s.Exported, "exportErrors", s.ExportErrors)
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			c.apply(evt)
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

func (c *Collector) apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeParsed:
		c.summary.Parsed++
	case EventTypeMalformedHeader:
		c.summary.MalformedHeaders++
	case EventTypeEncodingError:
		c.summary.EncodingErrors++
	case EventTypeAmbiguity:
		c.summary.Ambiguities++
	case EventTypeCritical:
		c.summary.CriticalFailures++
	case EventTypeExported:
		c.summary.Exported++
	case EventTypeExportError:
		c.summary.ExportErrors++
	}
	if evt.Err != nil {
		c.summary.LastError = evt.Err
	}
}

type EventStream interface {
	SubscribeStats(name string, fn func(context.Context, <-chan Event) error)
}

// Reporter subscribes a collector to a stream and logs the final summary.
type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(stream EventStream, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
	stream.SubscribeStats("stats-reporter", reporter.consume)
	return reporter
}

func (r *Reporter) consume(ctx context.Context, events <-chan Event) error {
	r.collector.Run(ctx, events)
	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
	if ctx.Err() != nil {
		if r.logger != nil {
			r.logger.Debug("stats collection stopped", append(attrs, "err", ctx.Err())...)
		}
		return nil
	}
	if r.logger != nil {
		r.logger.Info("stats summary", attrs...)
	}
	return nil
}

func (r *Reporter) Summary() Summary {
	return r.collector.Snapshot()
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(m map[string]int, limit int) {
	type pair struct {
		Key   string
		Value int
	}

	var pairs []pair
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})

	for i := 0; i < limit && i < len(pairs); i++ {
		fmt.Printf("%d. %s (%d)\n", i+1, pairs[i].Key, pairs[i].Value)
	}
}

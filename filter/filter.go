package filter

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kjans/mboxkit/model"
)

// Options captures the message selection configuration. Include and exclude
// modes are mutually exclusive.
type Options struct {
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// Filter selects parsed messages by regex matches over their serialized
// header block or decoded body text. It counts hits per pattern so the
// stats command can report which filters did any work.
type Filter struct {
	includeMode   bool
	excludeMode   bool
	includeHeader []*regexp.Regexp
	includeBody   []*regexp.Regexp
	excludeHeader []*regexp.Regexp
	excludeBody   []*regexp.Regexp

	mu   sync.Mutex
	hits map[string]int
}

// Stats reports per-pattern hit counts keyed by pattern source.
type Stats struct {
	Hits map[string]int
}

func New(opts Options) (*Filter, error) {
	includeHeader, err := compilePatterns(opts.IncludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile include-header pattern: %w", err)
	}
	includeBody, err := compilePatterns(opts.IncludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile include-body pattern: %w", err)
	}
	excludeHeader, err := compilePatterns(opts.ExcludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-header pattern: %w", err)
	}
	excludeBody, err := compilePatterns(opts.ExcludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-body pattern: %w", err)
	}

	includeActive := len(includeHeader) > 0 || len(includeBody) > 0
	excludeActive := len(excludeHeader) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:   includeActive,
		excludeMode:   excludeActive,
		includeHeader: includeHeader,
		includeBody:   includeBody,
		excludeHeader: excludeHeader,
		excludeBody:   excludeBody,
		hits:          make(map[string]int),
	}, nil
}

// Allows reports whether msg passes the filter.
func (f *Filter) Allows(msg *model.Message) bool {
	if !f.includeMode && !f.excludeMode {
		return true
	}

	headerText := HeaderText(msg.Headers)
	bodyText := msg.Body.Text

	if f.includeMode {
		return f.matchAny(f.includeHeader, headerText) || f.matchAny(f.includeBody, bodyText)
	}

	if f.matchAny(f.excludeHeader, headerText) || f.matchAny(f.excludeBody, bodyText) {
		return false
	}
	return true
}

// Select returns the messages that pass the filter, in input order.
func (f *Filter) Select(msgs []*model.Message) []*model.Message {
	if !f.includeMode && !f.excludeMode {
		return msgs
	}
	var out []*model.Message
	for _, msg := range msgs {
		if f.Allows(msg) {
			out = append(out, msg)
		}
	}
	return out
}

func (f *Filter) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	hits := make(map[string]int, len(f.hits))
	for k, v := range f.hits {
		hits[k] = v
	}
	return Stats{Hits: hits}
}

func (f *Filter) matchAny(patterns []*regexp.Regexp, text string) bool {
	matched := false
	for _, re := range patterns {
		if re.MatchString(text) {
			f.recordHit(re.String())
			matched = true
		}
	}
	return matched
}

func (f *Filter) recordHit(pattern string) {
	f.mu.Lock()
	f.hits[pattern]++
	f.mu.Unlock()
}

// HeaderText serializes a header table the way the exporter would, for
// regex matching.
func HeaderText(t *model.HeaderTable) string {
	var sb strings.Builder
	for _, field := range t.Fields() {
		sb.WriteString(field.Name)
		sb.WriteString(": ")
		sb.WriteString(field.Value)
		sb.WriteString("\n")
	}
	return sb.String()
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

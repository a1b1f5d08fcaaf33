package progress

import (
	"context"
	"sync"

	"github.com/pterm/pterm"

	"github.com/kjans/mboxkit/model"
	"github.com/kjans/mboxkit/stats"
)

// Bar renders parse progress as a byte-based pterm progress bar. It is
// purely cosmetic: the engine is correct without any consumer.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar over totalBytes. The bar only renders at the
// "info" log level so debug output stays readable.
func New(totalBytes int, logLevel string) *Bar {
	enabled := logLevel == "info" && totalBytes > 0

	bar := &Bar{
		total:   totalBytes,
		enabled: enabled,
	}

	if enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(totalBytes).
			WithTitle("Parsing mbox").
			Start()
		bar.pb = pb
	}

	return bar
}

// Update advances the bar to the notification's byte count.
func (b *Bar) Update(p model.Progress) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if n := int(p.Bytes); n > b.pb.Current {
		b.pb.Add(n - b.pb.Current)
	}
	if p.Subject != "" {
		title := p.Subject
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		b.pb.UpdateTitle("Parsing: " + title)
	}
}

// Stop finalizes the bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Add(b.total - b.pb.Current)
	}
	b.pb.Stop()
}

// Consume drains a session's progress channel into the bar until the
// channel closes or ctx ends.
func (b *Bar) Consume(ctx context.Context, notifications <-chan model.Progress) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-notifications:
			if !ok {
				return
			}
			b.Update(p)
		}
	}
}

// PrintSummary renders the end-of-run statistics the way the progress bar
// user expects them: as a pterm section below the finished bar.
func PrintSummary(parseStats model.ParseStats, summary stats.Summary) {
	pterm.Println()
	pterm.DefaultSection.Println("Parse Summary")
	pterm.Info.Printf("Messages: %d\n", parseStats.TotalEmails)
	pterm.Info.Printf("Container bytes: %d\n", parseStats.TotalBytes)
	pterm.Info.Printf("Average message size: %d\n", parseStats.AvgEmailSize)
	pterm.Info.Printf("Delimiter matches: %d\n", parseStats.DelimiterMatches)
	pterm.Info.Printf("Parse time: %v\n", parseStats.ParseTime)
	pterm.Info.Printf("Malformed headers: %d\n", summary.MalformedHeaders)
	pterm.Info.Printf("Encoding fallbacks: %d\n", summary.EncodingErrors)
	pterm.Info.Printf("Delimiter ambiguities: %d\n", summary.Ambiguities)
	pterm.Info.Printf("Critical failures: %d\n", summary.CriticalFailures)
	if summary.LastError != nil {
		pterm.Warning.Printf("Last error: %v\n", summary.LastError)
	}
}

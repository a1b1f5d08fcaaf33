package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kjans/mboxkit/mbox"
	"github.com/kjans/mboxkit/model"
	"github.com/kjans/mboxkit/stats"
)

// ErrCanceled is returned by Wait when the session was canceled before the
// parse finished.
var ErrCanceled = errors.New("parse session canceled")

// Session runs one parse on its own goroutine and talks to the caller over
// channels only: progress notifications, stats events, and a final result
// or error from Wait. Each session owns an independent working set, so
// concurrent sessions never interfere. Cancel discards in-flight state;
// nothing is emitted afterwards and no partial result is committed.
type Session struct {
	logger *slog.Logger

	data []byte
	opts mbox.Options

	ctx    context.Context
	cancel context.CancelFunc

	progress chan model.Progress
	events   chan stats.Event
	done     chan struct{}

	statsWG     sync.WaitGroup
	subscribers atomic.Int32

	startOnce       sync.Once
	closeEventsOnce sync.Once

	errMu  sync.Mutex
	subErr error

	result *mbox.Result
	err    error
}

// New prepares a parse session without launching it. Attach stats
// subscribers between New and Start so every event is observed.
func New(parent context.Context, data []byte, opts mbox.Options, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		logger:   logger,
		data:     data,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		progress: make(chan model.Progress, 16),
		events:   make(chan stats.Event, 128),
		done:     make(chan struct{}),
	}
}

// Start launches the parse on its own goroutine. Calling Start more than
// once is a no-op.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.run(s.data, s.opts)
	})
}

// Progress returns the notification channel. Notifications are best-effort:
// when the consumer lags they are dropped, never blocked on. The channel is
// closed when the session ends.
func (s *Session) Progress() <-chan model.Progress {
	return s.progress
}

// SubscribeStats attaches a consumer to the session's event stream.
func (s *Session) SubscribeStats(name string, fn func(context.Context, <-chan stats.Event) error) {
	s.subscribers.Add(1)
	s.statsWG.Add(1)
	go func() {
		defer s.statsWG.Done()
		if err := fn(s.ctx, s.events); err != nil && !errors.Is(err, context.Canceled) {
			s.failSub(fmt.Errorf("%s stats: %w", name, err))
		}
	}()
}

// Cancel stops the parse and discards in-flight state.
func (s *Session) Cancel() {
	s.cancel()
}

// Wait blocks until the parse and all stats subscribers finish, then
// returns the result, or an error when the session failed or was canceled.
func (s *Session) Wait() (*mbox.Result, error) {
	s.Start()
	<-s.done
	s.statsWG.Wait()
	s.cancel()

	// A failing subscriber cancels the session, so its error outranks the
	// cancellation it caused.
	s.errMu.Lock()
	subErr := s.subErr
	s.errMu.Unlock()
	if subErr != nil {
		return nil, subErr
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *Session) run(data []byte, opts mbox.Options) {
	defer close(s.done)
	defer close(s.progress)
	defer s.closeEvents()

	res, err := mbox.Parse(s.ctx, data, opts, s.emitProgress)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			err = ErrCanceled
		}
		s.err = err
		s.drainProgress()
		if s.logger != nil {
			s.logger.Debug("parse session ended early", "err", err)
		}
		return
	}

	s.result = res
	s.publishEvents(res)
	if s.logger != nil {
		s.logger.Info("parse session completed",
			"messages", res.Stats.TotalEmails,
			"bytes", res.Stats.TotalBytes,
			"errors", len(res.Errors),
			"duration", res.Stats.ParseTime)
	}
}

// emitProgress forwards a notification without ever blocking the parse.
// A done context is checked first so a canceled session never queues
// another notification.
func (s *Session) emitProgress(p model.Progress) {
	if s.ctx.Err() != nil {
		return
	}
	select {
	case s.progress <- p:
	default:
	}
}

// drainProgress discards buffered notifications; a canceled session goes
// silent rather than delivering stale progress.
func (s *Session) drainProgress() {
	for {
		select {
		case <-s.progress:
		default:
			return
		}
	}
}

func (s *Session) publishEvents(res *mbox.Result) {
	// Without a subscriber there is nothing to drain the stream.
	if s.subscribers.Load() == 0 {
		return
	}
	for _, msg := range res.Messages {
		s.emitEvent(stats.Event{Type: stats.EventTypeParsed, MessageID: msg.ID, Subject: msg.Meta.Subject})
	}
	for _, perr := range res.Errors {
		s.emitEvent(stats.EventForParseError(perr))
	}
}

func (s *Session) emitEvent(evt stats.Event) {
	select {
	case <-s.ctx.Done():
	case s.events <- evt:
	}
}

func (s *Session) closeEvents() {
	s.closeEventsOnce.Do(func() {
		close(s.events)
	})
}

func (s *Session) failSub(err error) {
	s.errMu.Lock()
	if s.subErr == nil {
		s.subErr = err
		s.cancel()
	}
	s.errMu.Unlock()
}

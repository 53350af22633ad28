package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"paper-core/internal/market"
	"paper-core/internal/monitor"
	"paper-core/pkg/db"
	"paper-core/pkg/i18n"
)

// Loop drives the engine on a fixed interval. Ticks run sequentially: a
// slow quote fetch delays the next round instead of overlapping it.
type Loop struct {
	Engine       *Engine
	Source       market.QuoteSource
	Store        *db.Store
	Metrics      *monitor.SystemMetrics
	Interval     time.Duration
	QuoteTimeout time.Duration
}

// Run blocks until ctx is cancelled. The first tick fires immediately.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	if l.Engine.Paused() {
		return
	}

	quotes, err := l.fetchQuotes(ctx)
	if err != nil {
		if l.Metrics != nil {
			l.Metrics.IncrementQuoteErrors()
		}
		l.Engine.noticeQuoteError(err)
		log.Printf(i18n.M().QuoteFetchFailed, err)
		return
	}

	l.Engine.Tick(quotes)

	if l.Store != nil {
		if err := l.Engine.Save(ctx, l.Store); err != nil {
			log.Printf(i18n.M().SnapshotSaveFailed, err)
		}
	}
}

func (l *Loop) fetchQuotes(ctx context.Context) (map[string]market.Quote, error) {
	timeout := l.QuoteTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var timer *monitor.Timer
	if l.Metrics != nil {
		timer = monitor.NewTimer(l.Metrics.QuoteLatency)
	}
	quotes, err := l.Source.Quotes(fetchCtx, l.Engine.AssetIDs())
	if timer != nil {
		timer.Stop()
	}
	return quotes, err
}

// noticeQuoteError records a failed quote round in the activity feed.
func (e *Engine) noticeQuoteError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addNotice(NoticeError, fmt.Sprintf(i18n.M().QuoteFetchFailed, err), e.now())
}

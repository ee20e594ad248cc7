package inquiry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Watcher surfaces new inquiries without a push channel: it polls the
// newest created_at on a fixed interval and compares it against a held
// watermark. The watermark advances only when a newer record is seen,
// never on a failed poll, so a transient error cannot swallow a
// notification.
type Watcher struct {
	source   LatestSource
	interval time.Duration
	notify   func(latest time.Time)
	log      *zap.SugaredLogger

	primed    bool
	watermark time.Time
}

func NewWatcher(source LatestSource, interval time.Duration, notify func(time.Time), log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		source:   source,
		interval: interval,
		notify:   notify,
		log:      log,
	}
}

// Run polls until ctx is cancelled. The first successful poll primes
// the watermark silently; records that existed before the watcher
// started are not news.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll performs one comparison cycle.
func (w *Watcher) Poll(ctx context.Context) {
	latest, err := w.source.LatestCreatedAt(ctx)
	if err != nil {
		w.log.Warnw("inquiry poll failed", "err", err)
		return
	}

	if !w.primed {
		w.primed = true
		w.watermark = latest
		return
	}

	if latest.After(w.watermark) {
		w.watermark = latest
		if w.notify != nil {
			w.notify(latest)
		}
	}
}

// Watermark returns the timestamp of the most recently acknowledged
// inquiry.
func (w *Watcher) Watermark() time.Time {
	return w.watermark
}

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/metrics"
)

// Publisher receives the output of every synchronization.
// server.CalendarServer implements it.
type Publisher interface {
	UpdateCache(ics []byte)
	SetContacts(contacts []ContactAdvice)
}

// Worker runs the generator once at start, then on every tick.
type Worker struct {
	Generator *Generator
	Sink      Publisher

	// Config is evaluated before each run so settings changes apply on the next tick.
	Config   func() SyncConfig
	Interval time.Duration

	// Trigger requests an immediate run; it may be nil.
	Trigger <-chan struct{}
}

// Run blocks until ctx is cancelled. It always returns nil; failed
// runs are logged and retried on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	interval := w.Interval
	if interval <= 0 {
		interval = config.DefaultRefreshMin * time.Minute
	}

	w.sync(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil

		case <-w.Trigger:
			log.Info(config.MsgSyncReq)
			w.sync(ctx)
			ticker.Reset(interval)

		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

// sync performs one run and publishes whatever it produced.
func (w *Worker) sync(ctx context.Context) {
	res, err := w.Generator.RunSync(ctx, w.Config())
	if ctx.Err() != nil {
		return
	}
	metrics.RecordSync(err)

	if len(res.ICS) > 0 {
		w.Sink.UpdateCache(res.ICS)
		metrics.FeedEvents.Set(float64(res.Events))
	}
	if err != nil {
		slog.Error(config.MsgSyncFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
		return
	}
	w.Sink.SetContacts(res.Contacts)
	metrics.ContactsSurveyed.Set(float64(len(res.Contacts)))
}

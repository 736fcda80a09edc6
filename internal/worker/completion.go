package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
)

// Completer completes approved bookings whose stay has ended.
type Completer interface {
	CompleteDue(ctx context.Context, now time.Time) (booking.CompletionResult, error)
}

// CompletionWorker periodically moves finished stays from approved to completed.
type CompletionWorker struct {
	completer Completer
	interval  time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewCompletionWorker(completer Completer, interval time.Duration, log logrus.FieldLogger) *CompletionWorker {
	return &CompletionWorker{
		completer: completer,
		interval:  interval,
		log:       log.WithField("component", "completion_worker"),
		now:       time.Now,
	}
}

// Start runs one pass immediately and then one per interval until ctx is done.
func (w *CompletionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval.String()).Info("completion worker started")
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("completion worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single completion pass.
func (w *CompletionWorker) RunOnce(ctx context.Context) {
	res, err := w.completer.CompleteDue(ctx, w.now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.WithError(err).Error("completion pass failed")
		return
	}

	if res.Completed == 0 && res.Failed == 0 {
		w.log.Debug("no bookings due for completion")
		return
	}

	entry := w.log.WithFields(logrus.Fields{"completed": res.Completed, "failed": res.Failed})
	if res.Failed > 0 {
		entry.Warn("completion pass finished with failures")
		return
	}
	entry.Info("completion pass finished")
}

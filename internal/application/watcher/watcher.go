package watcher

import (
	"context"
	"sync"

	"github.com/go-attendance-push/internal/application/notification"
	"github.com/go-attendance-push/internal/domain"
	"github.com/go-attendance-push/internal/infrastructure/metrics"
	"github.com/go-attendance-push/internal/pkg/id"
	"github.com/go-attendance-push/internal/pkg/logger"
	"github.com/go-attendance-push/internal/pkg/validate"
	"go.uber.org/zap"
)

// Feed delivers batches of changes to the notifications collection until ctx
// is cancelled or the subscription fails. handle may be called from several
// goroutines at once.
type Feed interface {
	Subscribe(ctx context.Context, handle func([]domain.Change)) error
}

// Watcher turns newly added notification records into pipeline runs.
type Watcher struct {
	feed     Feed
	pipeline notification.Service
	metrics  *metrics.Metrics
	log      *zap.Logger
	newID    func() string

	wg sync.WaitGroup
}

func New(feed Feed, pipeline notification.Service, m *metrics.Metrics, log *zap.Logger) *Watcher {
	return &Watcher{feed: feed, pipeline: pipeline, metrics: m, log: logger.OrNop(log), newID: id.New}
}

// Run subscribes to the feed and blocks until the subscription ends. Each
// valid added record is processed on its own goroutine; Run waits for those
// to finish before returning the subscription error.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watching notifications")
	err := w.feed.Subscribe(ctx, func(changes []domain.Change) {
		for _, c := range changes {
			w.handle(ctx, c)
		}
	})
	w.wg.Wait()
	return err
}

func (w *Watcher) handle(ctx context.Context, c domain.Change) {
	w.metrics.Change(string(c.Kind))
	if c.Kind != domain.ChangeAdded {
		return
	}

	rec := c.Record
	if rec.ID == "" {
		rec.ID = c.Key
	}
	if missing := validate.Missing(rec); len(missing) > 0 {
		w.log.Debug("ignoring incomplete notification",
			zap.String("notification_id", rec.ID),
			zap.Strings("missing", missing))
		return
	}

	eventID := w.newID()
	// In-flight pipelines outlive shutdown of the feed; the HTTP client
	// timeout bounds them.
	pctx := context.WithoutCancel(ctx)

	w.wg.Add(1)
	w.metrics.PipelineStarted()
	go func() {
		defer w.wg.Done()
		defer w.metrics.PipelineDone()
		w.pipeline.Process(pctx, eventID, rec)
	}()
}

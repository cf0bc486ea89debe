package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Deps holds what the liveness router needs from the rest of the process.
type Deps struct {
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
	// Now stamps health responses; defaults to time.Now.
	Now func() time.Time
}

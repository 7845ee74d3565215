package dm

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/gogpu/dm"

// Stats contains controller statistics for monitoring.
type Stats struct {
	// Records is the number of records the controller currently tracks.
	Records int
	// Cached is the number of tracked records holding an artifact.
	Cached int

	Builds    uint64 // artifacts compiled
	Replays   uint64 // artifact replays on the fast path
	Immediate uint64 // raw emissions because the build was over budget
	Fallbacks uint64 // raw emissions after a failed compile
	Releases  uint64 // artifacts released
	Reclaims  uint64 // source geometries discarded
	Reingests uint64 // ErrNeedsReingest results
}

// counters are the controller statistics. The atomic values back Stats;
// the instruments mirror them to OpenTelemetry.
type counters struct {
	builds    atomic.Uint64
	replays   atomic.Uint64
	immediate atomic.Uint64
	fallbacks atomic.Uint64
	releases  atomic.Uint64
	reclaims  atomic.Uint64
	reingests atomic.Uint64

	renders  metric.Int64Counter
	releaseC metric.Int64Counter
	reclaimC metric.Int64Counter
	bytesC   metric.Int64Counter
}

var (
	attrReplayed  = metric.WithAttributes(attribute.String("outcome", OutcomeReplayed.String()))
	attrBuilt     = metric.WithAttributes(attribute.String("outcome", OutcomeBuilt.String()))
	attrImmediate = metric.WithAttributes(attribute.String("outcome", OutcomeImmediate.String()))
	attrFallback  = metric.WithAttributes(attribute.String("outcome", OutcomeFallback.String()))
	attrReingest  = metric.WithAttributes(attribute.String("outcome", "needs_reingest"))
)

func newCounters(mp metric.MeterProvider) *counters {
	c := &counters{}
	m := mp.Meter(meterName)
	var err error
	if c.renders, err = m.Int64Counter("dm.render",
		metric.WithDescription("Render calls by outcome")); err != nil {
		c.renders = noop.Int64Counter{}
	}
	if c.releaseC, err = m.Int64Counter("dm.artifact.release",
		metric.WithDescription("Artifacts released")); err != nil {
		c.releaseC = noop.Int64Counter{}
	}
	if c.reclaimC, err = m.Int64Counter("dm.source.reclaim",
		metric.WithDescription("Source geometries discarded after a build")); err != nil {
		c.reclaimC = noop.Int64Counter{}
	}
	if c.bytesC, err = m.Int64Counter("dm.source.reclaimed_bytes",
		metric.WithDescription("Estimated bytes of source geometry discarded"),
		metric.WithUnit("By")); err != nil {
		c.bytesC = noop.Int64Counter{}
	}
	return c
}

func (c *counters) outcome(o Outcome) {
	ctx := context.Background()
	switch o {
	case OutcomeReplayed:
		c.replays.Add(1)
		c.renders.Add(ctx, 1, attrReplayed)
	case OutcomeBuilt:
		c.builds.Add(1)
		c.renders.Add(ctx, 1, attrBuilt)
	case OutcomeImmediate:
		c.immediate.Add(1)
		c.renders.Add(ctx, 1, attrImmediate)
	case OutcomeFallback:
		c.fallbacks.Add(1)
		c.renders.Add(ctx, 1, attrFallback)
	}
}

func (c *counters) reingest() {
	c.reingests.Add(1)
	c.renders.Add(context.Background(), 1, attrReingest)
}

func (c *counters) release() {
	c.releases.Add(1)
	c.releaseC.Add(context.Background(), 1)
}

func (c *counters) reclaim(size int64) {
	c.reclaims.Add(1)
	ctx := context.Background()
	c.reclaimC.Add(ctx, 1)
	c.bytesC.Add(ctx, size)
}

func (c *counters) reset() {
	c.builds.Store(0)
	c.replays.Store(0)
	c.immediate.Store(0)
	c.fallbacks.Store(0)
	c.releases.Store(0)
	c.reclaims.Store(0)
	c.reingests.Store(0)
}

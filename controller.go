package dm

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/dm/memory"
	"github.com/gogpu/dm/policy"
	"go.opentelemetry.io/otel"
)

// Outcome reports how a record was drawn by [Controller.Render].
type Outcome uint8

const (
	// OutcomeNone means nothing was drawn.
	OutcomeNone Outcome = iota
	// OutcomeReplayed means an existing artifact was replayed.
	OutcomeReplayed
	// OutcomeBuilt means a new artifact was compiled and replayed.
	OutcomeBuilt
	// OutcomeImmediate means the record was too large to cache and was
	// emitted raw.
	OutcomeImmediate
	// OutcomeFallback means compiling failed and the record was emitted raw.
	OutcomeFallback
)

var outcomeNames = [...]string{
	OutcomeNone:      "none",
	OutcomeReplayed:  "replayed",
	OutcomeBuilt:     "built",
	OutcomeImmediate: "immediate",
	OutcomeFallback:  "fallback",
}

// String returns the outcome name.
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Drawn reports whether the record reached the backend.
func (o Outcome) Drawn() bool { return o != OutcomeNone }

// Controller decides, per record and per frame, whether to replay a
// compiled artifact, compile a new one, or emit raw drawing calls.
//
// A Controller is used from the goroutine that owns the backend's drawing
// context. Only SetPolicy and Policy may be called concurrently.
type Controller struct {
	backend Backend
	oracle  memory.Oracle
	policy  atomic.Pointer[policy.Policy]
	light   LightLevel

	// records that have been rendered and not released.
	records map[*Record]struct{}

	stats *counters
}

// NewController creates a controller drawing through b.
func NewController(b Backend, opts ...Option) (*Controller, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.policy.Validate(); err != nil {
		return nil, err
	}
	if !o.lighting.Valid() {
		return nil, fmt.Errorf("dm: invalid light level %v", o.lighting)
	}
	if o.oracle == nil {
		o.oracle = memory.System()
	}
	if o.meter == nil {
		o.meter = otel.GetMeterProvider()
	}

	c := &Controller{
		backend: b,
		oracle:  o.oracle,
		light:   o.lighting,
		records: make(map[*Record]struct{}),
		stats:   newCounters(o.meter),
	}
	p := o.policy
	c.policy.Store(&p)
	return c, nil
}

// Backend returns the backend the controller draws through.
func (c *Controller) Backend() Backend { return c.backend }

// Policy returns the current memory policy.
func (c *Controller) Policy() policy.Policy { return *c.policy.Load() }

// SetPolicy replaces the memory policy. It takes effect at the next
// build decision; existing artifacts are kept. SetPolicy is safe to call
// from any goroutine.
func (c *Controller) SetPolicy(p policy.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.policy.Store(&p)
	Logger().Info("dm: policy updated",
		slog.Float64("budget_fraction", p.BudgetFraction),
		slog.Float64("reclaim_fraction", p.ReclaimFraction),
		slog.Bool("reclaim_source", p.ReclaimSource))
	return nil
}

// Lighting returns the light level used for shaded emission.
func (c *Controller) Lighting() LightLevel { return c.light }

// SetLighting changes the light level. Shaded artifacts bake the lit
// material and are marked stale; wireframe artifacts are drawn unlit and
// stay valid.
func (c *Controller) SetLighting(l LightLevel) error {
	if !l.Valid() {
		return fmt.Errorf("dm: invalid light level %v", l)
	}
	if l == c.light {
		return nil
	}
	c.light = l
	for rec := range c.records {
		if rec.artifact != NoArtifact && rec.mode == ModeShaded {
			rec.stale = true
		}
	}
	return nil
}

// MarkStale marks rec and its subtree stale. Their artifacts are released
// at their next Render.
func (c *Controller) MarkStale(rec *Record) {
	if rec != nil {
		rec.MarkStale()
	}
}

// Render draws rec in the given mode. It returns the outcome and an error
// only for conditions the caller must act on: an invalid mode, a nil or
// released record, or a record that needs re-ingestion. Backend compile
// failures are recovered by raw emission and reported as OutcomeFallback.
func (c *Controller) Render(rec *Record, mode Mode) (Outcome, error) {
	if !mode.Valid() {
		return OutcomeNone, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	if rec == nil {
		return OutcomeNone, ErrNilRecord
	}
	if rec.released {
		return OutcomeNone, fmt.Errorf("%w: %s", ErrReleased, rec.name)
	}
	c.records[rec] = struct{}{}

	if rec.stale {
		rec.stale = false
		if rec.artifact != NoArtifact {
			Logger().Debug("dm: releasing stale artifact", slog.String("record", rec.name))
			c.release(rec)
		}
	}

	if rec.artifact != NoArtifact {
		if rec.mode == mode {
			err := c.backend.Replay(rec.artifact)
			if err == nil {
				c.stats.outcome(OutcomeReplayed)
				return OutcomeReplayed, nil
			}
			Logger().Warn("dm: artifact replay failed",
				slog.String("record", rec.name),
				slog.String("error", err.Error()))
			c.release(rec)
		} else {
			Logger().Debug("dm: mode changed, releasing artifact",
				slog.String("record", rec.name),
				slog.String("from", rec.mode.String()),
				slog.String("to", mode.String()))
			c.release(rec)
		}
	}

	if rec.source == nil {
		rec.state = StateEmpty
		c.stats.reingest()
		return OutcomeNone, fmt.Errorf("%w: %s", ErrNeedsReingest, rec.name)
	}
	return c.build(rec, mode), nil
}

// build decides between compiling and raw emission and carries it out.
func (c *Controller) build(rec *Record, mode Mode) Outcome {
	pol := c.Policy()
	size := pol.SizeEstimate(rec.source.Counts())
	avail := c.oracle.AvailableBytes()

	if !pol.ShouldCompile(size, avail) {
		Logger().Debug("dm: over budget, drawing immediate",
			slog.String("record", rec.name),
			slog.Int64("size", size),
			slog.Uint64("avail", avail))
		emit(c.backend, rec.source, mode, rec.material, c.light)
		c.stats.outcome(OutcomeImmediate)
		return OutcomeImmediate
	}

	h, err := c.backend.BeginCompile(mode)
	if err != nil {
		return c.fallback(rec, mode, NoArtifact, "begin compile", err)
	}
	emit(c.backend, rec.source, mode, rec.material, c.light)
	if err := c.backend.EndCompile(); err != nil {
		return c.fallback(rec, mode, h, "end compile", err)
	}
	if err := c.backend.Replay(h); err != nil {
		return c.fallback(rec, mode, h, "replay", err)
	}

	rec.setArtifact(h, mode)
	Logger().Debug("dm: artifact built",
		slog.String("record", rec.name),
		slog.String("mode", mode.String()),
		slog.Int64("size", size),
		slog.Uint64("avail", avail))
	c.stats.outcome(OutcomeBuilt)

	if (Reclaimer{Policy: pol}).Reclaim(rec, size, avail) {
		c.stats.reclaim(size)
	}
	return OutcomeBuilt
}

// fallback discards a partial artifact and emits rec raw for this frame.
func (c *Controller) fallback(rec *Record, mode Mode, h Artifact, step string, err error) Outcome {
	if h != NoArtifact {
		c.backend.ReleaseArtifact(h)
		c.stats.release()
	}
	Logger().Warn("dm: compile failed, drawing immediate",
		slog.String("record", rec.name),
		slog.String("mode", mode.String()),
		slog.String("step", step),
		slog.String("error", err.Error()))
	emit(c.backend, rec.source, mode, rec.material, c.light)
	c.stats.outcome(OutcomeFallback)
	return OutcomeFallback
}

func (c *Controller) release(rec *Record) {
	c.backend.ReleaseArtifact(rec.artifact)
	rec.dropArtifact()
	c.stats.release()
}

// Release destroys rec and its subtree: artifacts are released, source
// geometry is dropped and the records can no longer be rendered.
func (c *Controller) Release(rec *Record) {
	if rec == nil || rec.released {
		return
	}
	for _, ch := range rec.children {
		c.Release(ch)
	}
	if rec.artifact != NoArtifact {
		c.release(rec)
	}
	rec.source = nil
	rec.state = StateEmpty
	rec.stale = false
	rec.released = true
	delete(c.records, rec)
}

// ReleaseAll releases the artifacts of every tracked record, as when the
// backend context is torn down. Records keep their source geometry;
// records whose source was reclaimed need re-ingestion afterwards.
func (c *Controller) ReleaseAll() {
	for rec := range c.records {
		if rec.artifact != NoArtifact {
			c.release(rec)
		}
		rec.stale = false
	}
	clear(c.records)
}

// Stats returns current controller statistics.
func (c *Controller) Stats() Stats {
	s := Stats{
		Records:   len(c.records),
		Builds:    c.stats.builds.Load(),
		Replays:   c.stats.replays.Load(),
		Immediate: c.stats.immediate.Load(),
		Fallbacks: c.stats.fallbacks.Load(),
		Releases:  c.stats.releases.Load(),
		Reclaims:  c.stats.reclaims.Load(),
		Reingests: c.stats.reingests.Load(),
	}
	for rec := range c.records {
		if rec.artifact != NoArtifact {
			s.Cached++
		}
	}
	return s
}

// ResetStats resets the counters to zero.
func (c *Controller) ResetStats() {
	c.stats.reset()
}

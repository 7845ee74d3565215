package record

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/dm"
	"github.com/gogpu/dm/backend"
	"github.com/gogpu/dm/internal/handle"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"
)

func init() {
	backend.Register(backend.NameRecord, func() dm.Backend {
		return New()
	})
}

// Backend errors.
var (
	ErrCompileInProgress = errors.New("record: compile already in progress")
	ErrNoCompile         = errors.New("record: no compile in progress")
	ErrUnknownArtifact   = errors.New("record: unknown artifact")
	ErrInjected          = errors.New("record: injected failure")
)

// EventKind identifies an artifact lifecycle call.
type EventKind uint8

const (
	EventBeginCompile EventKind = iota
	EventEndCompile
	EventReplay
	EventRelease
)

var eventNames = [...]string{
	EventBeginCompile: "BeginCompile",
	EventEndCompile:   "EndCompile",
	EventReplay:       "Replay",
	EventRelease:      "Release",
}

// String returns the event name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "Unknown"
}

// Event is one artifact lifecycle call made on the backend.
type Event struct {
	Kind     EventKind
	Artifact dm.Artifact
	Mode     dm.Mode // BeginCompile only
	Err      error
}

func (e Event) String() string {
	s := fmt.Sprintf("%v(%d)", e.Kind, e.Artifact)
	if e.Kind == EventBeginCompile {
		s = fmt.Sprintf("%v(%v)=%d", e.Kind, e.Mode, e.Artifact)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Option configures a Backend.
type Option func(*Backend)

// WithCompileFailures makes the next n BeginCompile calls fail.
func WithCompileFailures(n int) Option {
	return func(b *Backend) { b.failBegin = n }
}

// WithEndCompileFailures makes the next n EndCompile calls fail, leaving
// their artifacts incomplete.
func WithEndCompileFailures(n int) Option {
	return func(b *Backend) { b.failEnd = n }
}

// WithReplayFailures makes the next n Replay calls fail.
func WithReplayFailures(n int) Option {
	return func(b *Backend) { b.failReplay = n }
}

type artifact struct {
	mode dm.Mode
	rec  *Recording // nil until EndCompile succeeds
}

// Backend is a [dm.Backend] that records every drawn call into a trace
// and every compiled artifact into its own recording.
//
// Backend is not safe for concurrent use.
type Backend struct {
	trace     *Recorder
	compiling *Recorder
	current   dm.Artifact

	artifacts *handle.Table[*artifact]
	events    []Event

	failBegin  int
	failEnd    int
	failReplay int
}

var _ dm.Backend = (*Backend)(nil)

// New creates a recording backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		trace:     NewRecorder(),
		artifacts: handle.New[*artifact](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// target returns the recorder calls go to right now.
func (b *Backend) target() *Recorder {
	if b.compiling != nil {
		return b.compiling
	}
	return b.trace
}

// Emitter calls go to the artifact being compiled, or to the trace.

func (b *Backend) Begin(p dm.Primitive)                { b.target().Begin(p) }
func (b *Backend) End()                                { b.target().End() }
func (b *Backend) Vertex(v f64.Vec3)                   { b.target().Vertex(v) }
func (b *Backend) Normal(n f64.Vec3)                   { b.target().Normal(n) }
func (b *Backend) SetColor(c gputypes.Color)           { b.target().SetColor(c) }
func (b *Backend) SetMaterial(f dm.Face, s dm.Surface) { b.target().SetMaterial(f, s) }
func (b *Backend) SetLighting(lit, twoSided bool)      { b.target().SetLighting(lit, twoSided) }
func (b *Backend) SetBlend(enabled bool)               { b.target().SetBlend(enabled) }
func (b *Backend) LineWidth(w float64)                 { b.target().LineWidth(w) }
func (b *Backend) PointSize(s float64)                 { b.target().PointSize(s) }

// BeginCompile starts capturing calls into a new artifact.
func (b *Backend) BeginCompile(mode dm.Mode) (dm.Artifact, error) {
	if b.compiling != nil {
		b.events = append(b.events, Event{Kind: EventBeginCompile, Mode: mode, Err: ErrCompileInProgress})
		return dm.NoArtifact, ErrCompileInProgress
	}
	if b.failBegin > 0 {
		b.failBegin--
		err := fmt.Errorf("%w: begin compile", ErrInjected)
		b.events = append(b.events, Event{Kind: EventBeginCompile, Mode: mode, Err: err})
		return dm.NoArtifact, err
	}
	h := dm.Artifact(b.artifacts.Insert(&artifact{mode: mode}))
	b.compiling = NewRecorder()
	b.current = h
	b.events = append(b.events, Event{Kind: EventBeginCompile, Artifact: h, Mode: mode})
	return h, nil
}

// EndCompile finishes the artifact started by BeginCompile.
func (b *Backend) EndCompile() error {
	if b.compiling == nil {
		b.events = append(b.events, Event{Kind: EventEndCompile, Err: ErrNoCompile})
		return ErrNoCompile
	}
	h := b.current
	rec := b.compiling.Finish()
	b.compiling = nil
	b.current = dm.NoArtifact

	if b.failEnd > 0 {
		b.failEnd--
		err := fmt.Errorf("%w: end compile", ErrInjected)
		b.events = append(b.events, Event{Kind: EventEndCompile, Artifact: h, Err: err})
		return err
	}
	if a, ok := b.artifacts.Get(uint64(h)); ok {
		b.artifacts.Replace(uint64(h), &artifact{mode: a.mode, rec: rec})
	}
	b.events = append(b.events, Event{Kind: EventEndCompile, Artifact: h})
	return nil
}

// Replay plays a compiled artifact into the trace, or into the artifact
// being compiled.
func (b *Backend) Replay(h dm.Artifact) error {
	a, ok := b.artifacts.Get(uint64(h))
	if !ok || a.rec == nil {
		err := fmt.Errorf("%w: %d", ErrUnknownArtifact, h)
		b.events = append(b.events, Event{Kind: EventReplay, Artifact: h, Err: err})
		return err
	}
	if b.failReplay > 0 {
		b.failReplay--
		err := fmt.Errorf("%w: replay", ErrInjected)
		b.events = append(b.events, Event{Kind: EventReplay, Artifact: h, Err: err})
		return err
	}
	b.events = append(b.events, Event{Kind: EventReplay, Artifact: h})
	a.rec.Playback(b)
	return nil
}

// ReleaseArtifact frees an artifact. Unknown handles are ignored.
func (b *Backend) ReleaseArtifact(h dm.Artifact) {
	b.artifacts.Delete(uint64(h))
	b.events = append(b.events, Event{Kind: EventRelease, Artifact: h})
}

// Trace returns a snapshot of every call drawn so far, including
// replayed artifacts.
func (b *Backend) Trace() *Recording {
	return &Recording{
		commands: slices.Clone(b.trace.commands),
		vertices: b.trace.vertices,
	}
}

// ResetTrace discards the trace and the event log.
func (b *Backend) ResetTrace() {
	b.trace.Reset()
	b.events = nil
}

// Events returns the artifact lifecycle calls made so far.
func (b *Backend) Events() []Event {
	return slices.Clone(b.events)
}

// Count returns the number of successful events of the given kind.
func (b *Backend) Count(kind EventKind) int {
	n := 0
	for _, e := range b.events {
		if e.Kind == kind && e.Err == nil {
			n++
		}
	}
	return n
}

// Artifact returns the recording of a compiled artifact and the mode it
// was compiled for.
func (b *Backend) Artifact(h dm.Artifact) (*Recording, dm.Mode, bool) {
	a, ok := b.artifacts.Get(uint64(h))
	if !ok || a.rec == nil {
		return nil, 0, false
	}
	return a.rec, a.mode, true
}

// Live returns the number of artifacts not yet released, including
// incomplete ones.
func (b *Backend) Live() int {
	return b.artifacts.Len()
}

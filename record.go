package dm

import "fmt"

// State is the lifecycle state of a [Record].
type State uint8

const (
	// StateEmpty has neither source geometry nor an artifact.
	StateEmpty State = iota
	// StateSourceOnly has source geometry and no artifact.
	StateSourceOnly
	// StateCached has both source geometry and an artifact.
	StateCached
	// StateCachedSourceFreed has an artifact only; the source was reclaimed.
	StateCachedSourceFreed
)

var stateNames = [...]string{
	StateEmpty:             "Empty",
	StateSourceOnly:        "SourceOnly",
	StateCached:            "Cached",
	StateCachedSourceFreed: "CachedSourceFreed",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// HasSource reports whether a record in this state holds source geometry.
func (s State) HasSource() bool {
	return s == StateSourceOnly || s == StateCached
}

// HasArtifact reports whether a record in this state holds an artifact.
func (s State) HasArtifact() bool {
	return s == StateCached || s == StateCachedSourceFreed
}

// Record is the per-drawable cache record: source geometry, the compiled
// artifact and the mode it was built for, and the stale flag.
//
// A record is created when an object enters the scene, marked stale when
// its geometry, transform topology or material changes, and released
// through [Controller.Release] when it leaves.
//
// Records are not safe for concurrent use.
type Record struct {
	name     string
	source   Source
	material Material

	artifact Artifact
	mode     Mode
	stale    bool
	state    State
	released bool

	children []*Record
}

// NewRecord creates a record. src may be nil for a record whose geometry
// is ingested later.
func NewRecord(name string, src Source, mat Material) (*Record, error) {
	r := &Record{name: name, material: mat}
	if src != nil {
		if err := r.Ingest(src); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// State returns the lifecycle state.
func (r *Record) State() State { return r.state }

// Source returns the source geometry, or nil once it has been reclaimed.
func (r *Record) Source() Source { return r.source }

// Material returns the drawing material.
func (r *Record) Material() Material { return r.material }

// Artifact returns the compiled artifact handle, or NoArtifact.
func (r *Record) Artifact() Artifact { return r.artifact }

// ArtifactMode returns the mode the artifact was compiled for.
// It is meaningless when Artifact returns NoArtifact.
func (r *Record) ArtifactMode() Mode { return r.mode }

// Stale reports whether the artifact must be discarded before the next draw.
func (r *Record) Stale() bool { return r.stale }

// Released reports whether the record was released.
func (r *Record) Released() bool { return r.released }

// Children returns the child records.
func (r *Record) Children() []*Record { return r.children }

// AddChild attaches c below r; marking r stale marks c stale too.
// It returns ErrCycle if r is already part of c's subtree.
func (r *Record) AddChild(c *Record) error {
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNilRecord, r.name)
	}
	if c.contains(r) {
		return fmt.Errorf("%w: %s below %s", ErrCycle, c.name, r.name)
	}
	r.children = append(r.children, c)
	return nil
}

// contains reports whether x is r or a record below r.
func (r *Record) contains(x *Record) bool {
	if r == x {
		return true
	}
	for _, c := range r.children {
		if c.contains(x) {
			return true
		}
	}
	return false
}

// Ingest replaces the source geometry. An existing artifact was built
// from the old geometry, so the record is marked stale.
func (r *Record) Ingest(src Source) error {
	if r.released {
		return fmt.Errorf("%w: %s", ErrReleased, r.name)
	}
	if src == nil {
		return fmt.Errorf("%w: %s: nil source", ErrInvalidGeometry, r.name)
	}
	if err := src.validate(); err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}
	r.source = src
	if r.artifact != NoArtifact {
		r.stale = true
		r.state = StateCached
	} else {
		r.state = StateSourceOnly
	}
	return nil
}

// SetMaterial replaces the material and marks the record stale.
func (r *Record) SetMaterial(m Material) {
	if m == r.material {
		return
	}
	r.material = m
	r.MarkStale()
}

// MarkStale marks the record and its whole subtree stale.
func (r *Record) MarkStale() {
	r.stale = true
	for _, c := range r.children {
		c.MarkStale()
	}
}

// dropArtifact forgets the artifact handle and updates the state.
func (r *Record) dropArtifact() {
	r.artifact = NoArtifact
	if r.source != nil {
		r.state = StateSourceOnly
	} else {
		r.state = StateEmpty
	}
}

// setArtifact stores a freshly built artifact.
func (r *Record) setArtifact(a Artifact, mode Mode) {
	r.artifact = a
	r.mode = mode
	r.state = StateCached
}

// freeSource discards the source geometry of a cached record.
func (r *Record) freeSource() {
	r.source = nil
	if r.artifact != NoArtifact {
		r.state = StateCachedSourceFreed
	} else {
		r.state = StateEmpty
	}
}

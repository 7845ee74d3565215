package dm

import "errors"

// Sentinel errors returned by the cache controller and records.
var (
	// ErrInvalidMode is returned when a render mode is not one of the
	// defined modes. No backend call is made.
	ErrInvalidMode = errors.New("dm: invalid render mode")

	// ErrNeedsReingest is returned for a record that has no renderable
	// representation left: its artifact was discarded (stale or lost) after
	// its source geometry had been reclaimed, or it never had any source.
	// The caller must call Record.Ingest before the record can be drawn.
	ErrNeedsReingest = errors.New("dm: record needs re-ingestion")

	// ErrNilRecord is returned when a nil record is passed.
	ErrNilRecord = errors.New("dm: nil record")

	// ErrReleased is returned when a record is used after Controller.Release.
	ErrReleased = errors.New("dm: record released")

	// ErrInvalidGeometry is returned by Ingest for malformed meshes or
	// command streams.
	ErrInvalidGeometry = errors.New("dm: invalid geometry")

	// ErrCycle is returned by Record.AddChild when the child already
	// contains the parent.
	ErrCycle = errors.New("dm: record hierarchy cycle")

	// ErrNilBackend is returned by NewController without a backend.
	ErrNilBackend = errors.New("dm: nil backend")
)

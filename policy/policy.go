// Package policy holds the tunable memory policy of the draw-artifact
// cache: how much of the available memory one artifact build may use,
// when compiled source geometry is discarded, and the per-element byte
// costs used to estimate geometry size.
//
// Policies can be loaded from TOML or YAML files and reloaded while the
// viewer runs:
//
//	p, err := policy.Load("dm.toml")
//	w, err := policy.Watch("dm.toml", func(p policy.Policy) {
//	    ctrl.SetPolicy(p)
//	}, nil)
//	defer w.Close()
package policy

import (
	"errors"
	"fmt"
)

// Default policy values.
const (
	// DefaultBudgetFraction leaves half of the available memory to other
	// subsystems and to the transient source+artifact overlap of a compile.
	DefaultBudgetFraction = 0.5

	// DefaultReclaimFraction is the share of available memory above which
	// keeping compiled source geometry around is considered wasteful.
	DefaultReclaimFraction = 0.01

	// DefaultBytesPerCommand is the cost of one command-stream entry:
	// a command word plus a three-component float64 point.
	DefaultBytesPerCommand = 32

	// DefaultBytesPerVertex is the cost of one float64 position or normal.
	DefaultBytesPerVertex = 24

	// DefaultBytesPerFace is the cost of three face indices.
	DefaultBytesPerFace = 24
)

// ErrInvalidPolicy is returned by Validate and by the loaders for
// out-of-range values.
var ErrInvalidPolicy = errors.New("policy: invalid policy")

// Policy configures the cache/no-cache and reclaim decisions.
// The zero value is not valid; start from [Default].
type Policy struct {
	// BudgetFraction is the share of available memory a single artifact
	// build may use. A build is attempted only when size < avail*BudgetFraction.
	BudgetFraction float64 `toml:"budget_fraction" yaml:"budget_fraction"`

	// ReclaimFraction is the share of available memory above which source
	// geometry is discarded after a successful build.
	ReclaimFraction float64 `toml:"reclaim_fraction" yaml:"reclaim_fraction"`

	// ReclaimSource enables discarding source geometry at all.
	ReclaimSource bool `toml:"reclaim_source" yaml:"reclaim_source"`

	// Per-element byte costs for size estimation.
	BytesPerCommand int64 `toml:"bytes_per_command" yaml:"bytes_per_command"`
	BytesPerVertex  int64 `toml:"bytes_per_vertex" yaml:"bytes_per_vertex"`
	BytesPerFace    int64 `toml:"bytes_per_face" yaml:"bytes_per_face"`
}

// Default returns the default policy.
func Default() Policy {
	return Policy{
		BudgetFraction:  DefaultBudgetFraction,
		ReclaimFraction: DefaultReclaimFraction,
		ReclaimSource:   true,
		BytesPerCommand: DefaultBytesPerCommand,
		BytesPerVertex:  DefaultBytesPerVertex,
		BytesPerFace:    DefaultBytesPerFace,
	}
}

// Validate checks that fractions lie in (0, 1] and byte costs are not negative.
func (p Policy) Validate() error {
	if !(p.BudgetFraction > 0 && p.BudgetFraction <= 1) {
		return fmt.Errorf("%w: budget_fraction %v not in (0, 1]", ErrInvalidPolicy, p.BudgetFraction)
	}
	if !(p.ReclaimFraction > 0 && p.ReclaimFraction <= 1) {
		return fmt.Errorf("%w: reclaim_fraction %v not in (0, 1]", ErrInvalidPolicy, p.ReclaimFraction)
	}
	if p.BytesPerCommand < 0 || p.BytesPerVertex < 0 || p.BytesPerFace < 0 {
		return fmt.Errorf("%w: negative byte cost", ErrInvalidPolicy)
	}
	return nil
}

// Counts are the element counts of one piece of source geometry.
type Counts struct {
	Commands int
	Vertices int
	Normals  int
	Faces    int
}

// SizeEstimate returns the estimated size of geometry with the given
// counts in bytes. Normals are charged at the vertex cost.
func (p Policy) SizeEstimate(c Counts) int64 {
	return int64(c.Commands)*p.BytesPerCommand +
		int64(c.Vertices+c.Normals)*p.BytesPerVertex +
		int64(c.Faces)*p.BytesPerFace
}

// Budget returns the number of bytes a single build may use when avail
// bytes are available.
func (p Policy) Budget(avail uint64) float64 {
	return float64(avail) * p.BudgetFraction
}

// ShouldCompile reports whether an artifact of the given size may be built.
func (p Policy) ShouldCompile(size int64, avail uint64) bool {
	return float64(size) < p.Budget(avail)
}

// ShouldReclaim reports whether source geometry of the given size is
// discarded after a successful build.
func (p Policy) ShouldReclaim(size int64, avail uint64) bool {
	return p.ReclaimSource && float64(size) > float64(avail)*p.ReclaimFraction
}

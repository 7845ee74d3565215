// Package memory reports how much system memory is available right now.
//
// The answer changes constantly as other subsystems allocate and free, so
// callers query an [Oracle] for every decision instead of caching a value.
package memory

import "sync/atomic"

// Oracle reports the number of bytes currently available for allocation.
// Implementations return 0 when the amount cannot be determined, which
// makes every budget check fail closed.
type Oracle interface {
	AvailableBytes() uint64
}

// Func adapts a function to an [Oracle].
type Func func() uint64

// AvailableBytes calls f.
func (f Func) AvailableBytes() uint64 { return f() }

// Fixed is an Oracle whose reported amount can be changed at run time.
// It is safe for concurrent use.
type Fixed struct {
	n atomic.Uint64
}

// NewFixed returns a Fixed oracle reporting n bytes.
func NewFixed(n uint64) *Fixed {
	f := &Fixed{}
	f.n.Store(n)
	return f
}

// AvailableBytes returns the stored amount.
func (f *Fixed) AvailableBytes() uint64 { return f.n.Load() }

// Set changes the reported amount.
func (f *Fixed) Set(n uint64) { f.n.Store(n) }

// Common sizes.
const (
	KiB uint64 = 1 << 10
	MiB uint64 = 1 << 20
	GiB uint64 = 1 << 30
)

type system struct{}

// System returns the oracle backed by the operating system.
func System() Oracle { return system{} }

// AvailableBytes queries the operating system.
func (system) AvailableBytes() uint64 {
	n, err := available()
	if err != nil {
		return 0
	}
	return n
}

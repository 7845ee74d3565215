//go:build !linux && !windows && !darwin

package memory

import (
	"errors"
	"math"
	"runtime/debug"
	"runtime/metrics"
)

var errNoLimit = errors.New("memory: no memory limit configured")

// available reports the headroom below the Go memory limit. Without a
// configured GOMEMLIMIT there is no meaningful bound.
func available() (uint64, error) {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return 0, errNoLimit
	}
	s := []metrics.Sample{{Name: "/memory/classes/total:bytes"}}
	metrics.Read(s)
	used := s[0].Value.Uint64()
	if used >= uint64(limit) {
		return 0, nil
	}
	return uint64(limit) - used, nil
}

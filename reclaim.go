package dm

import (
	"log/slog"

	"github.com/gogpu/dm/policy"
)

// Reclaimer discards source geometry that an artifact has made redundant.
//
// After a build the artifact is the renderable representation. Keeping
// the source of a small object is cheap and makes later edits cheaper;
// keeping a large one is not. Once discarded, the source must be
// ingested again before the record can be rebuilt.
type Reclaimer struct {
	Policy policy.Policy
}

// Reclaim discards rec's source when size exceeds the reclaim share of
// avail. size and avail must be the values the build decision was made
// with. It reports whether the source was discarded.
func (r Reclaimer) Reclaim(rec *Record, size int64, avail uint64) bool {
	if rec.state != StateCached {
		return false
	}
	if !r.Policy.ShouldReclaim(size, avail) {
		Logger().Debug("dm: source retained",
			slog.String("record", rec.name),
			slog.Int64("size", size),
			slog.Uint64("avail", avail))
		return false
	}
	rec.freeSource()
	Logger().Debug("dm: source reclaimed",
		slog.String("record", rec.name),
		slog.Int64("size", size),
		slog.Uint64("avail", avail))
	return true
}

package memory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoMemAvailable is returned when /proc/meminfo has no MemAvailable line.
var ErrNoMemAvailable = errors.New("memory: MemAvailable not reported")

// parseMemInfo extracts MemAvailable, in bytes, from /proc/meminfo content.
func parseMemInfo(r io.Reader) (uint64, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok || key != "MemAvailable" {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0, fmt.Errorf("memory: malformed MemAvailable line %q", sc.Text())
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("memory: MemAvailable: %w", err)
		}
		if len(fields) > 1 && fields[1] == "kB" {
			n *= KiB
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("memory: read meminfo: %w", err)
	}
	return 0, ErrNoMemAvailable
}

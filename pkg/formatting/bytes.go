// Package formatting renders and parses the human-readable values shown to
// users and read from config: byte sizes, percentages, and truncated text.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const unitBase = 1024

// Binary size units, indexed by power of 1024.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

var bytesPattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes renders n in the largest unit that keeps the value at or
// above one, e.g. 1536 with precision 1 is "1.5 KB". Negative precision is
// treated as zero and negative sizes keep their sign.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	size := math.Abs(float64(n))
	i := 0
	for size >= unitBase && i < len(units)-1 {
		size /= unitBase
		i++
	}

	sign := ""
	if n < 0 {
		sign = "-"
	}
	return sign + strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads a size such as "20MB", "1.5 gb" or "512". Units are
// base-1024 and case-insensitive; a bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := bytesPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	idx := 0
	if unit := strings.ToUpper(matches[2]); unit != "" {
		idx = slices.Index(units, unit)
		if idx == -1 {
			return 0, fmt.Errorf("unknown byte size unit: %q", unit)
		}
	}

	total := value * math.Pow(unitBase, float64(idx))
	if total >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return int64(total), nil
}

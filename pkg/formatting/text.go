package formatting

import (
	"strconv"
	"unicode/utf8"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// Truncate shortens s to at most limit runes followed by Ellipsis.
// Strings within the limit, and non-positive limits, are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

// FormatPercent renders a 0-100 score with a trailing percent sign,
// dropping the fraction when the score is whole.
func FormatPercent(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}

// RoundPercent renders a progress value rounded to the nearest whole percent.
func RoundPercent(value float64) string {
	return strconv.Itoa(int(value+0.5)) + "%"
}

package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumber renders a document number as PREFIX-YYYY-NNN with the suffix
// zero-padded to three digits. Values past 999 simply widen (1000 ->
// "DEV-2025-1000"); there is no wraparound.
func FormatNumber(prefix string, year int, n int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, n)
}

// Suffix extracts the numeric suffix of a number matching PREFIX-YYYY-*.
// The second return is false when the number does not belong to that
// prefix/year scope or carries a non-numeric suffix.
func Suffix(number, prefix string, year int) (int, bool) {
	scope := fmt.Sprintf("%s-%d-", prefix, year)
	rest, ok := strings.CutPrefix(number, scope)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextAfter returns the number following the highest existing suffix in the
// given prefix/year scope, or PREFIX-YYYY-001 when the scope is empty.
//
// This is the legacy scan-max+1 contract; it is racy under concurrent
// creation and is only used where the caller already holds the full existing
// set (imports, backfills). Live allocation goes through the NumberSequence
// counter instead.
func NextAfter(existing []string, prefix string, year int) string {
	max := 0
	for _, num := range existing {
		if n, ok := Suffix(num, prefix, year); ok && n > max {
			max = n
		}
	}
	return FormatNumber(prefix, year, max+1)
}

package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "DEV-2025-001", FormatNumber("DEV", 2025, 1))
	assert.Equal(t, "FACT-2025-042", FormatNumber("FACT", 2025, 42))
	assert.Equal(t, "DEV-2025-999", FormatNumber("DEV", 2025, 999))
	// past 999 the suffix widens, no wraparound
	assert.Equal(t, "DEV-2025-1000", FormatNumber("DEV", 2025, 1000))
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		number string
		prefix string
		year   int
		want   int
		ok     bool
	}{
		{"DEV-2025-003", "DEV", 2025, 3, true},
		{"DEV-2025-1000", "DEV", 2025, 1000, true},
		{"FACT-2025-003", "DEV", 2025, 0, false}, // wrong prefix
		{"DEV-2024-003", "DEV", 2025, 0, false},  // wrong year
		{"DEV-2025-abc", "DEV", 2025, 0, false},  // non-numeric suffix
	}

	for _, tt := range tests {
		n, ok := Suffix(tt.number, tt.prefix, tt.year)
		assert.Equal(t, tt.ok, ok, tt.number)
		assert.Equal(t, tt.want, n, tt.number)
	}
}

func TestNextAfter(t *testing.T) {
	existing := []string{"DEV-2025-001", "DEV-2025-002"}
	assert.Equal(t, "DEV-2025-003", NextAfter(existing, "DEV", 2025))

	// no existing numbers for the scope
	assert.Equal(t, "DEV-2025-001", NextAfter(nil, "DEV", 2025))
	assert.Equal(t, "FACT-2025-001", NextAfter(existing, "FACT", 2025))

	// numbers from other years and prefixes are ignored
	mixed := []string{"DEV-2024-050", "FACT-2025-009", "DEV-2025-007", "DEV-2025-003"}
	assert.Equal(t, "DEV-2025-008", NextAfter(mixed, "DEV", 2025))
}

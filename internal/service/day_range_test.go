package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDayRange(t *testing.T) {
	tests := map[string]int{
		"7d":    7,
		"1d":    1,
		"30d":   30,
		"366d":  366,
		"030d":  30,
		"":      7,
		"0d":    7,
		"367d":  7,
		"-3d":   7,
		"7":     7,
		"7D":    7,
		"7days": 7,
		" 7d":   7,
		"abc":   7,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseDayRange(raw), "range %q", raw)
	}
	assert.Equal(t, 7, ParseDayRange("99999999999999999999d"))
}

func TestParseDayRangeOr(t *testing.T) {
	assert.Equal(t, 14, ParseDayRangeOr("bogus", 14))
	assert.Equal(t, 3, ParseDayRangeOr("3d", 14))
	assert.Equal(t, DefaultReportDays, ParseDayRangeOr("bogus", 0))
	assert.Equal(t, DefaultReportDays, ParseDayRangeOr("bogus", 1000))
}

package service

import (
	"regexp"
	"strconv"
)

const (
	// DefaultReportDays is the window used when no valid range is given.
	DefaultReportDays = 7
	// MaxReportDays bounds accepted ranges.
	MaxReportDays = 366
)

var dayRangePattern = regexp.MustCompile(`^(\d+)d$`)

// ParseDayRange parses "{n}d" and falls back to DefaultReportDays. It never fails.
func ParseDayRange(raw string) int {
	return ParseDayRangeOr(raw, DefaultReportDays)
}

// ParseDayRangeOr is ParseDayRange with a configurable fallback. A fallback
// outside 1..MaxReportDays is replaced by DefaultReportDays.
func ParseDayRangeOr(raw string, fallback int) int {
	if fallback < 1 || fallback > MaxReportDays {
		fallback = DefaultReportDays
	}
	match := dayRangePattern.FindStringSubmatch(raw)
	if match == nil {
		return fallback
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 || n > MaxReportDays {
		return fallback
	}
	return n
}

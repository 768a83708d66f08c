package utils

import "strconv"

// ParsePage safely converts query values to positive page numbers.
func ParsePage(value string, defaultVal int) int {
	if value == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return defaultVal
}

// ParseLimit converts a limit query value and clamps it into [1, max].
// Malformed values fall back to the default rather than failing the request.
func ParseLimit(value string, defaultVal, max int) int {
	limit := defaultVal
	if value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			limit = v
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ParseFloat coerces optional numeric filters, falling back on malformed input.
func ParseFloat(value string, defaultVal float64) float64 {
	if value == "" {
		return defaultVal
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	}
	return defaultVal
}

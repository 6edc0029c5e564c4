package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseHours reads a comma separated list of clock hours in [0, 24).
func parseHours(s string) ([]float64, error) {
	var hours []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q: %w", part, err)
		}
		if h < 0 || h >= 24 {
			return nil, fmt.Errorf("hour %g out of range [0, 24)", h)
		}
		hours = append(hours, h)
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("no hours in %q", s)
	}
	return hours, nil
}

// hourTag formats an hour as HHMM for file names.
func hourTag(h float64) string {
	minutes := int(h*60+0.5) % (24 * 60)
	return fmt.Sprintf("%02d%02d", minutes/60, minutes%60)
}

// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package duration parses and formats the colon-separated video duration
// strings used throughout the course catalogue.
//
// # Formats
//
// Individual videos carry durations as "M:SS" or "H:MM:SS" (e.g. "5:30",
// "1:02:45"). Course-level totals are always rendered as zero-padded
// "HH:MM:SS" so they can be parsed back without ambiguity.
package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSeconds converts a "M:SS" or "H:MM:SS" duration string into a total
// second count.
//
// A malformed string is an error, never a silent zero: totals aggregated
// from these values must stay exact, so bad input has to be rejected at the
// boundary instead of corrupting the aggregate.
func ParseSeconds(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")

	switch len(parts) {
	case 2:
		minutes, err := parseComponent(parts[0], 0)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid minutes in %q: %w", value, err)
		}
		seconds, err := parseComponent(parts[1], 59)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid seconds in %q: %w", value, err)
		}
		return minutes*60 + seconds, nil

	case 3:
		hours, err := parseComponent(parts[0], 0)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid hours in %q: %w", value, err)
		}
		minutes, err := parseComponent(parts[1], 59)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid minutes in %q: %w", value, err)
		}
		seconds, err := parseComponent(parts[2], 59)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid seconds in %q: %w", value, err)
		}
		return hours*3600 + minutes*60 + seconds, nil

	default:
		return 0, fmt.Errorf("duration: %q is not in M:SS or H:MM:SS form", value)
	}
}

// FormatHMS renders a second count as zero-padded "HH:MM:SS".
//
// Hours are not capped at two digits; a 100-hour course renders as
// "100:00:00" rather than overflowing.
func FormatHMS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// parseComponent parses a single non-negative numeric component.
// A max of 0 disables the upper-bound check (used for the leading component).
func parseComponent(raw string, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty component")
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative component %d", n)
	}
	if max > 0 && n > max {
		return 0, fmt.Errorf("component %d exceeds %d", n, max)
	}

	return n, nil
}

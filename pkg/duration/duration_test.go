// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package duration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/pkg/duration"
)

/*
TestParseSeconds covers both accepted shapes and the rejection of anything else.
*/
func TestParseSeconds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		seconds int
		wantErr bool
	}{
		{"minutes_seconds", "5:30", 330, false},
		{"double_digit_minutes", "10:45", 645, false},
		{"hours_minutes_seconds", "1:02:45", 3765, false},
		{"zero", "0:00", 0, false},
		{"surrounding_space", " 3:15 ", 195, false},
		{"bare_number", "90", 0, true},
		{"empty", "", 0, true},
		{"words", "five minutes", 0, true},
		{"seconds_overflow", "5:75", 0, true},
		{"negative_minutes", "-2:30", 0, true},
		{"too_many_parts", "1:2:3:4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, err := duration.ParseSeconds(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.seconds, seconds)
		})
	}
}

/*
TestFormatHMS checks the zero-padded rendering used for course totals.
*/
func TestFormatHMS(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected string
	}{
		{"zero", 0, "00:00:00"},
		{"under_a_minute", 59, "00:00:59"},
		{"minutes_only", 975, "00:16:15"},
		{"over_an_hour", 3765, "01:02:45"},
		{"three_digit_hours", 360000, "100:00:00"},
		{"negative_clamped", -5, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, duration.FormatHMS(tt.seconds))
		})
	}
}

/*
TestRoundTrip verifies that summing parsed inputs and formatting the total is
lossless: "5:30" + "10:45" must come back as exactly 975 seconds.
*/
func TestRoundTrip(t *testing.T) {
	inputs := []string{"5:30", "10:45"}

	total := 0
	for _, input := range inputs {
		seconds, err := duration.ParseSeconds(input)
		require.NoError(t, err)
		total += seconds
	}

	assert.Equal(t, 975, total)

	formatted := duration.FormatHMS(total)
	assert.Equal(t, "00:16:15", formatted)

	reparsed, err := duration.ParseSeconds(formatted)
	require.NoError(t, err)
	assert.Equal(t, total, reparsed)
}

// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradewayhq/tradeway/pkg/slug"
)

// validSlug is the shape every derived slug must satisfy: lowercase letters,
// digits, and single interior hyphens only.
var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

/*
TestFrom covers the deterministic title-to-slug transform.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Trading Basics", "trading-basics"},
		{"punctuation_and_digits", "Hello, World! 2025", "hello-world-2025"},
		{"runs_of_specials", "Risk -- Management!!!", "risk-management"},
		{"leading_trailing_specials", "  !Candlesticks?  ", "candlesticks"},
		{"accents", "Évaluation du Marché", "evaluation-du-marche"},
		{"already_clean", "swing-trading-101", "swing-trading-101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := slug.From(tt.input)
			assert.Equal(t, tt.expected, result)
			assert.Regexp(t, validSlug, result)
		})
	}
}

/*
TestFrom_NeverProducesEdgeHyphens checks the boundary guarantees on a set of
hostile inputs.
*/
func TestFrom_NeverProducesEdgeHyphens(t *testing.T) {
	inputs := []string{
		"---",
		"-leading hyphen",
		"trailing hyphen-",
		"middle---run",
		"!!!",
	}

	for _, input := range inputs {
		result := slug.From(input)
		if result == "" {
			continue // nothing salvageable is an acceptable outcome
		}
		assert.Regexp(t, validSlug, result, "input %q", input)
	}
}

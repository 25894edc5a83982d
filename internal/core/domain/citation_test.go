package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCitation_String(t *testing.T) {
	c := Citation{Standard: "NR-L2-TRK-001.pdf", Clause: "3.2.1", Page: 5}
	assert.Equal(t, "NR-L2-TRK-001.pdf - Cl 3.2.1 (Pg 5)", c.String())
}

func TestCoercePage(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
	}{
		{name: "float from JSON", input: float64(7), expected: 7},
		{name: "int", input: 3, expected: 3},
		{name: "int64", input: int64(12), expected: 12},
		{name: "fractional truncates", input: 4.9, expected: 4},
		{name: "numeric string", input: " 9 ", expected: 9},
		{name: "zero defaults", input: 0, expected: 1},
		{name: "negative defaults", input: -3, expected: 1},
		{name: "garbage string defaults", input: "page five", expected: 1},
		{name: "nil defaults", input: nil, expected: 1},
		{name: "NaN defaults", input: math.NaN(), expected: 1},
		{name: "bool defaults", input: true, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoercePage(tt.input))
		})
	}
}
